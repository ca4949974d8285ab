package websocket

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"legal-assistant-be/internal/pkg/logger"
)

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal(msg)
}

func (h *Hub) sessionClientCount(sessionID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

func TestStalledClientIsDroppedNotPanicked(t *testing.T) {
	hub := NewHub(nil, logger.NewNopLogger())
	go hub.Run()

	sessionID := uuid.New()
	client := &Client{Hub: hub, SessionID: sessionID, Send: make(chan []byte, 1)}
	client.Send <- []byte("backlog") // buffer already full

	hub.register <- client
	waitFor(t, func() bool { return hub.sessionClientCount(sessionID) == 1 }, "client never registered")

	// Both sends hit a full buffer. The first drops the client; the second
	// must find it gone rather than close its channel again.
	hub.SendToSession(sessionID, "narration_state", map[string]string{"active_utterance_id": ""})
	waitFor(t, func() bool { return hub.sessionClientCount(sessionID) == 0 }, "stalled client never unregistered")
	hub.SendToSession(sessionID, "narration_state", map[string]string{"active_utterance_id": ""})

	// The unregister branch closed Send exactly once.
	<-client.Send // drain the backlog entry
	if _, open := <-client.Send; open {
		t.Fatal("send channel left open after unregister")
	}
}

func TestHealthyClientStillReceivesAfterPeerDropped(t *testing.T) {
	hub := NewHub(nil, logger.NewNopLogger())
	go hub.Run()

	sessionID := uuid.New()
	stalled := &Client{Hub: hub, SessionID: sessionID, Send: make(chan []byte, 1)}
	stalled.Send <- []byte("backlog")
	healthy := &Client{Hub: hub, SessionID: sessionID, Send: make(chan []byte, 4)}

	hub.register <- stalled
	hub.register <- healthy
	waitFor(t, func() bool { return hub.sessionClientCount(sessionID) == 2 }, "clients never registered")

	hub.SendToSession(sessionID, "document_changed", map[string]string{"fingerprint": "doc-A"})
	waitFor(t, func() bool { return hub.sessionClientCount(sessionID) == 1 }, "stalled client never unregistered")

	select {
	case msg := <-healthy.Send:
		if len(msg) == 0 {
			t.Fatal("empty message delivered")
		}
	case <-time.After(time.Second):
		t.Fatal("healthy client never received the event")
	}
}
