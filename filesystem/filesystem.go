// Package filesystem routes every file access of the wall through afero so
// tests can run against memory.
package filesystem

import (
	"sync"

	"github.com/spf13/afero"
)

var (
	mu      sync.RWMutex
	backend = afero.Afero{Fs: afero.NewOsFs()}
)

// API returns the active backend.
func API() afero.Afero {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// Use replaces the backend with fs.
func Use(fs afero.Fs) {
	mu.Lock()
	defer mu.Unlock()
	backend = afero.Afero{Fs: fs}
}

func SetOsFs() { Use(afero.NewOsFs()) }

// SetMemMapFs switches to a fresh in-memory backend.
func SetMemMapFs() { Use(afero.NewMemMapFs()) }
