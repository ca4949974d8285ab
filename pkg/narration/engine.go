package narration

// Handle identifies one engine utterance.
type Handle string

// Engine is the platform text-to-speech capability. Speak starts an
// utterance and invokes onDone exactly once when it completes naturally
// (not when cancelled). Cancel must be synchronous: after it returns the
// utterance is no longer speaking.
type Engine interface {
	Speak(text string, onDone func()) (Handle, error)
	Cancel(handle Handle)
}
