package crossmap

import (
	"sync"

	"github.com/agentstation/crossmap/pkg/match"
)

// Hook function types for join events
type (
	// ProgressHook is called periodically while master rows are resolved.
	ProgressHook func(processed, total int)

	// RowMatchedHook is called for each matched result row, in master order.
	RowMatchedHook func(row match.ResultRow)

	// RowUnmatchedHook is called for each unmatched result row, in master order.
	RowUnmatchedHook func(row match.ResultRow)
)

// hooks manages event callbacks for join runs
type hooks struct {
	mu          sync.RWMutex
	onProgress  []ProgressHook
	onMatched   []RowMatchedHook
	onUnmatched []RowUnmatchedHook
}

func newHooks() *hooks {
	return &hooks{}
}

func (h *hooks) addProgress(fn ProgressHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onProgress = append(h.onProgress, fn)
}

func (h *hooks) addMatched(fn RowMatchedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onMatched = append(h.onMatched, fn)
}

func (h *hooks) addUnmatched(fn RowUnmatchedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onUnmatched = append(h.onUnmatched, fn)
}

func (h *hooks) triggerProgress(processed, total int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onProgress {
		fn(processed, total)
	}
}

func (h *hooks) triggerRowMatched(row match.ResultRow) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onMatched {
		fn(row)
	}
}

func (h *hooks) triggerRowUnmatched(row match.ResultRow) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onUnmatched {
		fn(row)
	}
}

// OnProgress registers a callback fired as master rows are resolved.
func (c *Client) OnProgress(fn ProgressHook) {
	c.hooks.addProgress(fn)
}

// OnRowMatched registers a callback fired for each matched row.
func (c *Client) OnRowMatched(fn RowMatchedHook) {
	c.hooks.addMatched(fn)
}

// OnRowUnmatched registers a callback fired for each unmatched row.
func (c *Client) OnRowUnmatched(fn RowUnmatchedHook) {
	c.hooks.addUnmatched(fn)
}
