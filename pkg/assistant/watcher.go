package assistant

import (
	"context"
	"sync"
	"time"

	"legal-assistant-be/internal/pkg/logger"
	"legal-assistant-be/pkg/docctx"
)

const DefaultPollInterval = 2 * time.Second

// Watcher polls the context store for a newer document fingerprint and
// resets the session when one appears. Document upload can happen in a
// different part of the UI than the chat widget, so there is no event
// channel to subscribe to; polling is the contract.
type Watcher struct {
	controller *Controller
	store      docctx.Store
	interval   time.Duration
	logger     logger.ILogger

	mu      sync.Mutex
	visible bool
	wake    chan struct{}
}

func NewWatcher(controller *Controller, store docctx.Store, interval time.Duration, log logger.ILogger) *Watcher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Watcher{
		controller: controller,
		store:      store,
		interval:   interval,
		logger:     log,
		visible:    true, // panel is open when the session is created
		wake:       make(chan struct{}, 1),
	}
}

// Run polls until ctx is cancelled. Polling is suspended while the panel is
// hidden; SetVisible(true) triggers an immediate check rather than waiting
// a full interval.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if w.isVisible() {
				w.CheckNow(ctx)
			}
		case <-w.wake:
			w.CheckNow(ctx)
		}
	}
}

// SetVisible pauses or resumes polling with the panel's open/closed state.
func (w *Watcher) SetVisible(visible bool) {
	w.mu.Lock()
	wasVisible := w.visible
	w.visible = visible
	w.mu.Unlock()

	if visible && !wasVisible {
		select {
		case w.wake <- struct{}{}:
		default:
		}
	}
}

func (w *Watcher) isVisible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visible
}

// CheckNow performs one poll. Re-reading an unchanged fingerprint is a
// no-op; a failed or malformed read leaves the session untouched. Returns
// whether a reset happened.
func (w *Watcher) CheckNow(ctx context.Context) bool {
	doc, err := w.store.Load(ctx, w.controller.Owner())
	if err != nil {
		// Never reset a healthy session over a transient read error.
		w.logger.Warn("Watcher", "Context store read failed, keeping session", map[string]interface{}{
			"session_id": w.controller.Id().String(),
			"error":      err.Error(),
		})
		return false
	}
	if doc == nil {
		return false
	}

	changed := w.controller.ApplyExternalContext(doc)
	if changed {
		w.logger.Info("Watcher", "Document change detected, session reset", map[string]interface{}{
			"session_id":  w.controller.Id().String(),
			"fingerprint": doc.Fingerprint,
		})
	}
	return changed
}
