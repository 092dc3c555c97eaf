package fs

import (
	"sort"
	"time"

	"github.com/aretw0/introspection"
)

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Path          string     `json:"path"`
	SystemDir     string     `json:"system_dir"`
	CacheEnabled  bool       `json:"cache_enabled"`
	CacheSize     int        `json:"cache_size"`
	Ignore        []string   `json:"ignore,omitempty"`
	Extensions    []string   `json:"extensions"`
	WatcherActive bool       `json:"watcher_active"`
	LastScan      *time.Time `json:"last_scan,omitempty"`
	LastScanDocs  int        `json:"last_scan_documents"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	extensions := make([]string, 0, len(r.serializers))
	for ext := range r.serializers {
		extensions = append(extensions, ext)
	}
	sort.Strings(extensions)

	return RepositoryState{
		Path:          r.Path,
		SystemDir:     r.config.SystemDir,
		CacheEnabled:  !r.config.NoCache,
		CacheSize:     r.cache.Len(),
		Ignore:        r.config.Ignore,
		Extensions:    extensions,
		WatcherActive: r.watcherActive,
		LastScan:      r.lastScan,
		LastScanDocs:  r.lastScanDocs,
	}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "repository"
}

var _ introspection.Introspectable = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)

func (r *Repository) setWatcherActive(active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.watcherActive = active
}

func (r *Repository) recordScan(documents int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.lastScan = &now
	r.lastScanDocs = documents
}
