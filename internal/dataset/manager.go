package dataset

import (
	"sync/atomic"

	"github.com/mobilcari/mobil-cari/internal/pkg/logger"
)

// Manager owns the current dataset snapshot and supports reload without
// process restart. Readers always observe a complete snapshot; a reload
// swaps the pointer atomically.
type Manager struct {
	path        string
	currentYear int
	log         *logger.Logger

	current atomic.Pointer[Snapshot]
}

// NewManager creates a manager for the CSV at path. Call Reload once before
// serving requests.
func NewManager(path string, currentYear int, log *logger.Logger) *Manager {
	return &Manager{
		path:        path,
		currentYear: currentYear,
		log:         log,
	}
}

// Snapshot returns the current snapshot, or nil if nothing has been loaded.
func (m *Manager) Snapshot() *Snapshot {
	return m.current.Load()
}

// Reload loads the CSV from disk and swaps it in. On failure the previous
// snapshot stays active.
func (m *Manager) Reload() (*Snapshot, error) {
	snap, err := Load(m.path, m.currentYear)
	if err != nil {
		m.log.Error("Dataset reload failed", "path", m.path, "error", err)
		return nil, err
	}

	m.current.Store(snap)
	m.log.Info("Dataset loaded", "path", m.path, "records", snap.Len())
	return snap, nil
}
