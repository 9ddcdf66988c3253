// Package ml provides embedding inference backed by an Ollama server.
package ml

import (
	"context"
)

// Service generates dense embeddings for listing documents and queries.
type Service interface {
	// Embed generates dense embeddings for texts.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Health returns the service health status.
	Health(ctx context.Context) HealthStatus

	// Close releases resources.
	Close() error
}

// HealthStatus represents embedding backend health.
type HealthStatus struct {
	Healthy bool   `json:"healthy"`
	Model   string `json:"model"`
	Error   string `json:"error,omitempty"`
}
