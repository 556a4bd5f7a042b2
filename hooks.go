package orgmap

import (
	"sync"

	"github.com/agentstation/orgmap/pkg/provenance"
	"github.com/agentstation/orgmap/pkg/tree"
)

// Hook function types for run events.
type (
	// SourceExcludedHook is called when a source is dropped from a run.
	SourceExcludedHook func(provenance.Excluded)

	// WarningHook is called for every ingestion warning.
	WarningHook func(tree.Warning)

	// ConflictHook is called for every parent conflict the merge resolved.
	ConflictHook func(provenance.Conflict)
)

// hooks manages run event callbacks.
type hooks struct {
	mu         sync.RWMutex
	onExcluded []SourceExcludedHook
	onWarning  []WarningHook
	onConflict []ConflictHook
}

func newHooks() *hooks {
	return &hooks{}
}

// OnSourceExcluded registers a callback for excluded sources.
func (c *client) OnSourceExcluded(fn SourceExcludedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onExcluded = append(c.hooks.onExcluded, fn)
}

// OnWarning registers a callback for ingestion warnings.
func (c *client) OnWarning(fn WarningHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onWarning = append(c.hooks.onWarning, fn)
}

// OnConflict registers a callback for parent conflicts.
func (c *client) OnConflict(fn ConflictHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onConflict = append(c.hooks.onConflict, fn)
}

// trigger fires hooks for a finished run in report order.
func (h *hooks) trigger(excluded []provenance.Excluded, warnings []tree.Warning, conflicts []provenance.Conflict) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, e := range excluded {
		for _, fn := range h.onExcluded {
			fn(e)
		}
	}
	for _, w := range warnings {
		for _, fn := range h.onWarning {
			fn(w)
		}
	}
	for _, c := range conflicts {
		for _, fn := range h.onConflict {
			fn(c)
		}
	}
}
