package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"legal-assistant-be/pkg/assistant"
)

// Entry bundles a live session controller with its context watcher.
// The stop func tears the watcher goroutine down.
type Entry struct {
	Controller *assistant.Controller
	Watcher    *assistant.Watcher
	stop       context.CancelFunc
}

func (e *Entry) Stop() {
	if e.stop != nil {
		e.stop()
	}
}

type SessionRegistry struct {
	sessions *cache.Cache
}

func NewSessionRegistry() *SessionRegistry {
	c := cache.New(1*time.Hour, 10*time.Minute)
	c.OnEvicted(func(_ string, v interface{}) {
		if entry, ok := v.(*Entry); ok {
			entry.Stop()
		}
	})
	return &SessionRegistry{sessions: c}
}

func (r *SessionRegistry) Put(sessionID uuid.UUID, controller *assistant.Controller, watcher *assistant.Watcher, stop context.CancelFunc) {
	r.sessions.Set(sessionID.String(), &Entry{
		Controller: controller,
		Watcher:    watcher,
		stop:       stop,
	}, cache.DefaultExpiration)
}

func (r *SessionRegistry) Get(sessionID uuid.UUID) (*Entry, bool) {
	v, found := r.sessions.Get(sessionID.String())
	if !found {
		return nil, false
	}
	entry, ok := v.(*Entry)
	return entry, ok
}

// Touch extends the session lifetime on activity.
func (r *SessionRegistry) Touch(sessionID uuid.UUID) {
	if v, found := r.sessions.Get(sessionID.String()); found {
		r.sessions.Set(sessionID.String(), v, cache.DefaultExpiration)
	}
}

func (r *SessionRegistry) Delete(sessionID uuid.UUID) {
	r.sessions.Delete(sessionID.String())
}
