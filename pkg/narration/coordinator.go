package narration

import (
	"sync"

	"legal-assistant-be/internal/pkg/logger"
)

// Coordinator owns the single "currently speaking" slot. At most one
// utterance is active at any instant; starting a new one cancels the
// previous one first.
type Coordinator struct {
	mu     sync.Mutex
	engine Engine
	logger logger.ILogger

	activeID     string
	activeHandle Handle
	activeSeq    uint64

	seq         uint64
	finishedSeq uint64

	// Notified with the active utterance id ("" when idle) after every
	// state change. Optional.
	stateListener func(activeID string)
}

func NewCoordinator(engine Engine, log logger.ILogger) *Coordinator {
	return &Coordinator{
		engine: engine,
		logger: log,
	}
}

// SetStateListener registers a callback observing the active utterance id.
func (c *Coordinator) SetStateListener(fn func(activeID string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stateListener = fn
}

// Toggle implements stop/start semantics on a single control. Calling with
// the currently active utterance id cancels it and returns started=false.
// Any other id cancels whatever is active, strips markup from text and
// starts a new utterance.
func (c *Coordinator) Toggle(text, utteranceID string) (started bool, err error) {
	c.mu.Lock()

	if c.activeID == utteranceID && c.activeID != "" {
		handle := c.activeHandle
		c.clearActiveLocked()
		listener := c.stateListener
		c.mu.Unlock()

		c.engine.Cancel(handle)
		if listener != nil {
			listener("")
		}
		return false, nil
	}

	if c.activeID != "" {
		handle := c.activeHandle
		c.clearActiveLocked()
		// Cancel before the replacement starts so two utterances never
		// overlap.
		c.engine.Cancel(handle)
	}

	c.seq++
	mySeq := c.seq
	c.mu.Unlock()

	handle, err := c.engine.Speak(StripMarkup(text), func() { c.utteranceDone(mySeq) })
	if err != nil {
		c.logger.Warn("Narration", "Engine failed to start utterance", map[string]interface{}{
			"utterance_id": utteranceID,
			"error":        err.Error(),
		})
		return false, err
	}

	c.mu.Lock()
	if c.seq != mySeq {
		// Superseded by a later Toggle while we were starting.
		c.mu.Unlock()
		c.engine.Cancel(handle)
		return false, nil
	}
	if c.finishedSeq >= mySeq {
		// Completed before we could record it (very short utterance).
		c.mu.Unlock()
		return true, nil
	}
	c.activeID = utteranceID
	c.activeHandle = handle
	c.activeSeq = mySeq
	listener := c.stateListener
	c.mu.Unlock()

	if listener != nil {
		listener(utteranceID)
	}
	return true, nil
}

// CancelActive silences any in-progress narration. Used when history is
// cleared or the session resets.
func (c *Coordinator) CancelActive() {
	c.mu.Lock()
	if c.activeID == "" {
		c.mu.Unlock()
		return
	}
	handle := c.activeHandle
	c.clearActiveLocked()
	listener := c.stateListener
	c.mu.Unlock()

	c.engine.Cancel(handle)
	if listener != nil {
		listener("")
	}
}

// ActiveID returns the id of the speaking utterance, or "" when idle.
func (c *Coordinator) ActiveID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeID
}

func (c *Coordinator) utteranceDone(seq uint64) {
	c.mu.Lock()
	if seq > c.finishedSeq {
		c.finishedSeq = seq
	}
	var listener func(string)
	if c.activeSeq == seq {
		c.clearActiveLocked()
		listener = c.stateListener
	}
	c.mu.Unlock()

	if listener != nil {
		listener("")
	}
}

func (c *Coordinator) clearActiveLocked() {
	c.activeID = ""
	c.activeHandle = ""
	c.activeSeq = 0
}
