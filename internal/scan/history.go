package scan

import (
	"context"
	"sync"
)

// DefaultHistorySize is the number of scans kept per device by MemoryHistory.
const DefaultHistorySize = 50

// History is a Recorder that can list past scans.
type History interface {
	Recorder
	Recent(ctx context.Context, deviceID string, limit int) ([]Record, error)
}

// MemoryHistory keeps the most recent scans per device in memory.
type MemoryHistory struct {
	mu      sync.RWMutex
	size    int
	records map[string][]Record
}

// NewMemoryHistory creates a history that keeps up to size scans per device.
func NewMemoryHistory(size int) *MemoryHistory {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &MemoryHistory{
		size:    size,
		records: make(map[string][]Record),
	}
}

// RecordScan appends rec, dropping the oldest entry when full.
func (h *MemoryHistory) RecordScan(_ context.Context, rec Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	recs := append(h.records[rec.DeviceID], rec)
	if len(recs) > h.size {
		recs = recs[len(recs)-h.size:]
	}
	h.records[rec.DeviceID] = recs
	return nil
}

// Recent returns up to limit scans for deviceID, newest first.
func (h *MemoryHistory) Recent(_ context.Context, deviceID string, limit int) ([]Record, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	recs := h.records[deviceID]
	if limit <= 0 || limit > len(recs) {
		limit = len(recs)
	}

	out := make([]Record, 0, limit)
	for i := len(recs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, recs[i])
	}
	return out, nil
}

var _ History = (*MemoryHistory)(nil)
