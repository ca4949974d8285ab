package narration

import (
	"sync"
	"testing"

	"legal-assistant-be/internal/pkg/logger"
)

// fakeEngine records utterances and exposes their completion callbacks.
type fakeEngine struct {
	mu        sync.Mutex
	nextId    int
	spoken    []string
	cancelled []Handle
	onDone    map[Handle]func()
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{onDone: make(map[Handle]func())}
}

func (e *fakeEngine) Speak(text string, onDone func()) (Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextId++
	h := Handle(rune('a' + e.nextId - 1))
	e.spoken = append(e.spoken, text)
	e.onDone[h] = onDone
	return h, nil
}

func (e *fakeEngine) Cancel(handle Handle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelled = append(e.cancelled, handle)
}

func (e *fakeEngine) complete(h Handle) {
	e.mu.Lock()
	fn := e.onDone[h]
	e.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (e *fakeEngine) cancelCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.cancelled)
}

func TestToggleStartsNarration(t *testing.T) {
	engine := newFakeEngine()
	c := NewCoordinator(engine, logger.NewNopLogger())

	started, err := c.Toggle("Hello world", "msg-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !started {
		t.Fatal("expected narration to start")
	}
	if c.ActiveID() != "msg-1" {
		t.Errorf("ActiveID = %q, want %q", c.ActiveID(), "msg-1")
	}
}

func TestToggleSameIdStops(t *testing.T) {
	engine := newFakeEngine()
	c := NewCoordinator(engine, logger.NewNopLogger())

	c.Toggle("Hello world", "msg-1")
	started, err := c.Toggle("Hello world", "msg-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if started {
		t.Fatal("expected toggle-off, got a new start")
	}
	if c.ActiveID() != "" {
		t.Errorf("ActiveID = %q, want empty", c.ActiveID())
	}
	if engine.cancelCount() != 1 {
		t.Errorf("cancel count = %d, want 1", engine.cancelCount())
	}
}

func TestToggleNewIdCancelsPrevious(t *testing.T) {
	engine := newFakeEngine()
	c := NewCoordinator(engine, logger.NewNopLogger())

	c.Toggle("first", "msg-1")
	started, err := c.Toggle("second", "msg-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !started {
		t.Fatal("expected replacement narration to start")
	}
	if c.ActiveID() != "msg-2" {
		t.Errorf("ActiveID = %q, want %q", c.ActiveID(), "msg-2")
	}
	if engine.cancelCount() != 1 {
		t.Errorf("previous utterance not cancelled: cancel count = %d", engine.cancelCount())
	}
}

func TestNaturalCompletionClearsSlot(t *testing.T) {
	engine := newFakeEngine()
	c := NewCoordinator(engine, logger.NewNopLogger())

	c.Toggle("Hello", "msg-1")
	engine.complete(Handle('a'))

	if c.ActiveID() != "" {
		t.Errorf("ActiveID after completion = %q, want empty", c.ActiveID())
	}
	if engine.cancelCount() != 0 {
		t.Errorf("natural completion should not cancel, cancel count = %d", engine.cancelCount())
	}
}

func TestCancelActiveWhenIdleIsNoop(t *testing.T) {
	engine := newFakeEngine()
	c := NewCoordinator(engine, logger.NewNopLogger())

	c.CancelActive()

	if engine.cancelCount() != 0 {
		t.Errorf("cancel count = %d, want 0", engine.cancelCount())
	}
}

func TestStateListenerObservesChanges(t *testing.T) {
	engine := newFakeEngine()
	c := NewCoordinator(engine, logger.NewNopLogger())

	var states []string
	c.SetStateListener(func(activeID string) { states = append(states, activeID) })

	c.Toggle("Hello", "msg-1")
	c.CancelActive()

	if len(states) != 2 || states[0] != "msg-1" || states[1] != "" {
		t.Errorf("states = %v, want [msg-1 \"\"]", states)
	}
}

func TestSpeechTextIsStripped(t *testing.T) {
	engine := newFakeEngine()
	c := NewCoordinator(engine, logger.NewNopLogger())

	c.Toggle("**Important:** review [clause 7](https://example.com)", "msg-1")

	if len(engine.spoken) != 1 {
		t.Fatalf("spoken count = %d, want 1", len(engine.spoken))
	}
	want := "Important: review clause 7"
	if engine.spoken[0] != want {
		t.Errorf("spoken = %q, want %q", engine.spoken[0], want)
	}
}
