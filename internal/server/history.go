package server

import (
	"sync"

	"github.com/nhdewitt/netscope/internal/protocol"
)

const defaultHistorySize = 32

// ReportHistory keeps the most recent reports by ID. Callers get copies,
// so a stored report never changes after Add.
type ReportHistory struct {
	mu      sync.Mutex
	size    int
	order   []string
	reports map[string]protocol.Report
}

func NewReportHistory(size int) *ReportHistory {
	if size <= 0 {
		size = defaultHistorySize
	}
	return &ReportHistory{
		size:    size,
		reports: make(map[string]protocol.Report, size),
	}
}

// Add stores r, evicting the oldest report once the history is full.
func (h *ReportHistory) Add(r protocol.Report) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.reports[r.ID]; !exists {
		h.order = append(h.order, r.ID)
	}
	h.reports[r.ID] = r.Clone()

	for len(h.order) > h.size {
		oldest := h.order[0]
		h.order = h.order[1:]
		delete(h.reports, oldest)
	}
}

func (h *ReportHistory) Get(id string) (protocol.Report, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.reports[id]
	if !ok {
		return protocol.Report{}, false
	}
	return r.Clone(), true
}

func (h *ReportHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.order)
}
