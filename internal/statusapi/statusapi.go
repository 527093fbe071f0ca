// Package statusapi exposes a read-only HTTP status endpoint over a
// Session: cache hit ratio, device table, and open-file count. It is
// purely additive visibility, not required by any file-API call,
// grounded on the teacher's pkg/http gateway
// (schemas.go/handlers.go/server.go), which exposes SDO access over
// HTTP in the same request/JSON-response shape.
package statusapi

import (
	"encoding/json"
	"net/http"
	"sync"
)

// DeviceStatus is the JSON-serializable view of one cluster device.
type DeviceStatus struct {
	ID      uint8  `json:"id"`
	NumSec  uint16 `json:"num_sec"`
	NumBlk  uint16 `json:"num_blk"`
	NextSec uint16 `json:"next_sec"`
	NextBlk uint16 `json:"next_blk"`
	Full    bool   `json:"full"`
}

// Snapshot is a point-in-time view of session state.
type Snapshot struct {
	Powered     bool           `json:"powered"`
	OpenFiles   int            `json:"open_files"`
	CacheHits   uint64         `json:"cache_hits"`
	CacheMisses uint64         `json:"cache_misses"`
	CacheRatio  float64        `json:"cache_ratio"`
	Devices     []DeviceStatus `json:"devices"`
}

// StatsProvider is implemented by *lcloud.Session.
type StatsProvider interface {
	Snapshot() Snapshot
}

// Handler serves GET /status with provider's current Snapshot as JSON.
// Building the snapshot takes a lock around the provider call since the
// HTTP handler runs on its own goroutine outside the caller's
// single-threaded session loop -- the one place this port adds
// synchronization, and it never re-enters any other Session method.
type Handler struct {
	mu       sync.Mutex
	provider StatsProvider
}

// NewHandler wraps provider in an http.Handler.
func NewHandler(provider StatsProvider) *Handler {
	return &Handler{provider: provider}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.mu.Lock()
	snap := h.provider.Snapshot()
	h.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
