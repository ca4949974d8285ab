package assistant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"legal-assistant-be/internal/pkg/logger"
	"legal-assistant-be/pkg/conversation"
	"legal-assistant-be/pkg/docctx"
)

func newWatcherFixture(store docctx.Store) (*Controller, *Watcher) {
	c := NewController(
		uuid.New(), "owner-1", store, &fakeAnalyzer{}, &fakeProvider{reply: "ok"},
		nil, nil, logger.NewNopLogger(), Options{},
	)
	w := NewWatcher(c, store, 10*time.Millisecond, logger.NewNopLogger())
	return c, w
}

func saveDoc(t *testing.T, store docctx.Store, fingerprint string) {
	t.Helper()
	err := store.Save(context.Background(), "owner-1", &docctx.DocumentContext{
		Fingerprint: fingerprint,
		Summary: docctx.SummaryFields{
			DocumentType:   "NDA",
			RiskLevel:      "low",
			RiskScore:      12,
			Recommendation: "Standard terms, safe to sign",
		},
		AnalyzedAt: time.Now(),
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestWatcherUnchangedFingerprintIsIdempotent(t *testing.T) {
	store := docctx.NewMemoryStore()
	c, w := newWatcherFixture(store)

	saveDoc(t, store, "doc-A")

	if !w.CheckNow(context.Background()) {
		t.Fatal("first check should reset the session")
	}
	turnsAfterFirst := c.History(0)

	// Re-reading the same fingerprint repeatedly must be a no-op.
	for i := 0; i < 3; i++ {
		if w.CheckNow(context.Background()) {
			t.Fatal("unchanged fingerprint produced a reset")
		}
	}
	if got := len(c.History(0)); got != len(turnsAfterFirst) {
		t.Errorf("turn count drifted from %d to %d without a document change", len(turnsAfterFirst), got)
	}
}

func TestWatcherDetectsChange(t *testing.T) {
	store := docctx.NewMemoryStore()
	c, w := newWatcherFixture(store)

	saveDoc(t, store, "doc-A")
	w.CheckNow(context.Background())
	c.SubmitMessage(context.Background(), "about doc-A")

	saveDoc(t, store, "doc-B")
	if !w.CheckNow(context.Background()) {
		t.Fatal("changed fingerprint should reset the session")
	}

	turns := c.History(0)
	if len(turns) != 1 {
		t.Fatalf("turns after reset = %d, want exactly 1 system summary turn", len(turns))
	}
	if turns[0].Role != conversation.RoleSystem {
		t.Errorf("turn role = %q, want system", turns[0].Role)
	}
	if got := c.BoundDocument(); got == nil || got.Fingerprint != "doc-B" {
		t.Errorf("bound document = %+v, want doc-B", got)
	}
}

func TestWatcherFirstDocumentBindsSession(t *testing.T) {
	store := docctx.NewMemoryStore()
	c, w := newWatcherFixture(store)

	// No document yet: nothing to do.
	if w.CheckNow(context.Background()) {
		t.Fatal("empty store should not reset")
	}

	saveDoc(t, store, "doc-A")
	if !w.CheckNow(context.Background()) {
		t.Fatal("session without a binding should adopt the stored document")
	}
	if c.BoundDocument() == nil {
		t.Error("bound document still nil after check")
	}
}

type erroringStore struct {
	docctx.Store
}

func (erroringStore) Load(context.Context, string) (*docctx.DocumentContext, error) {
	return nil, errors.New("malformed record")
}

func TestWatcherAbsorbsReadErrors(t *testing.T) {
	healthy := docctx.NewMemoryStore()
	c, _ := newWatcherFixture(healthy)

	saveDoc(t, healthy, "doc-A")
	w := NewWatcher(c, healthy, 10*time.Millisecond, logger.NewNopLogger())
	w.CheckNow(context.Background())
	c.SubmitMessage(context.Background(), "question")
	before := len(c.History(0))

	// Swap in a store that fails every read: the session must be untouched.
	broken := NewWatcher(c, erroringStore{}, 10*time.Millisecond, logger.NewNopLogger())
	for i := 0; i < 3; i++ {
		if broken.CheckNow(context.Background()) {
			t.Fatal("read error produced a reset")
		}
	}
	if got := len(c.History(0)); got != before {
		t.Errorf("turn count changed from %d to %d on read errors", before, got)
	}
	if got := c.BoundDocument(); got == nil || got.Fingerprint != "doc-A" {
		t.Errorf("bound document = %+v, want doc-A preserved", got)
	}
}

func TestWatcherPausesWhileHidden(t *testing.T) {
	store := docctx.NewMemoryStore()
	c, w := newWatcherFixture(store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	w.SetVisible(false)
	saveDoc(t, store, "doc-A")

	time.Sleep(60 * time.Millisecond)
	if c.BoundDocument() != nil {
		t.Fatal("hidden watcher still polled")
	}

	// Reopening checks immediately instead of waiting a full interval.
	w.SetVisible(true)
	waitFor(t, func() bool { return c.BoundDocument() != nil }, "no check after panel reopened")
}
