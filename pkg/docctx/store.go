package docctx

import (
	"context"
	"sync"
)

// Store is the shared key/value storage holding the active document context
// for an owner (one owner per browser tab / widget instance). It is the only
// resource shared between the session controller, the context watcher and the
// external upload flow, so writes must replace the whole record atomically.
type Store interface {
	// Load returns the active document context, or nil when none has been
	// written yet.
	Load(ctx context.Context, owner string) (*DocumentContext, error)

	// Save replaces the active document context wholesale.
	Save(ctx context.Context, owner string, doc *DocumentContext) error
}

// MemoryStore is an in-process Store used in tests and single-node setups.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]DocumentContext
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]DocumentContext)}
}

func (s *MemoryStore) Load(_ context.Context, owner string) (*DocumentContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[owner]
	if !ok {
		return nil, nil
	}
	cp := doc
	return &cp, nil
}

func (s *MemoryStore) Save(_ context.Context, owner string, doc *DocumentContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[owner] = *doc
	return nil
}
