// Package middleware provides HTTP middleware components for the mobil-cari server.
//
// Available middleware:
//   - RateLimiter: Per-client rate limiting using token bucket algorithm
//   - RequestID: Unique request identifier propagation
//
// Usage:
//
//	rl := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
//	handler = middleware.RequestID(rl.Middleware(handler))
package middleware
