package assistant

import (
	"github.com/google/uuid"

	"legal-assistant-be/pkg/docctx"
)

// Notifier receives session events for delivery to the widget (websocket
// push) and the platform event bus. Implementations must not call back into
// the controller.
type Notifier interface {
	// DocumentChanged fires after the session rebinds to a new document,
	// whether from a direct upload or a watcher-detected change.
	DocumentChanged(sessionID uuid.UUID, doc *docctx.DocumentContext)

	// NarrationState fires with the active utterance id, or "" when
	// narration goes idle.
	NarrationState(sessionID uuid.UUID, activeID string)
}

// NopNotifier discards all events.
type NopNotifier struct{}

func (NopNotifier) DocumentChanged(uuid.UUID, *docctx.DocumentContext) {}
func (NopNotifier) NarrationState(uuid.UUID, string)                   {}
