package conversation

import (
	"fmt"
	"testing"
)

func TestStoreRetentionCap(t *testing.T) {
	tests := []struct {
		name      string
		cap       int
		appends   int
		wantLen   int
		wantFirst string
	}{
		{
			name:      "under cap",
			cap:       5,
			appends:   3,
			wantLen:   3,
			wantFirst: "msg-0",
		},
		{
			name:      "exactly cap",
			cap:       5,
			appends:   5,
			wantLen:   5,
			wantFirst: "msg-0",
		},
		{
			name:      "over cap evicts oldest",
			cap:       5,
			appends:   8,
			wantLen:   5,
			wantFirst: "msg-3",
		},
		{
			name:      "far over cap",
			cap:       3,
			appends:   50,
			wantLen:   3,
			wantFirst: "msg-47",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(tt.cap)
			for i := 0; i < tt.appends; i++ {
				s.Append(NewTurn(RoleUser, fmt.Sprintf("msg-%d", i)))
			}

			if s.Len() != tt.wantLen {
				t.Errorf("Len = %d, want %d", s.Len(), tt.wantLen)
			}

			snap := s.Snapshot(0)
			if snap[0].Text != tt.wantFirst {
				t.Errorf("first retained = %q, want %q", snap[0].Text, tt.wantFirst)
			}
		})
	}
}

func TestStoreSnapshotWindow(t *testing.T) {
	s := NewStore(20)
	for i := 0; i < 15; i++ {
		s.Append(NewTurn(RoleUser, fmt.Sprintf("msg-%d", i)))
	}

	snap := s.Snapshot(10)
	if len(snap) != 10 {
		t.Fatalf("snapshot length = %d, want 10", len(snap))
	}
	// Last 10 in original order: msg-5 .. msg-14
	for i, turn := range snap {
		want := fmt.Sprintf("msg-%d", i+5)
		if turn.Text != want {
			t.Errorf("snapshot[%d] = %q, want %q", i, turn.Text, want)
		}
	}

	// Snapshot must not mutate the store
	if s.Len() != 15 {
		t.Errorf("Len after snapshot = %d, want 15", s.Len())
	}
}

func TestStoreSnapshotIsCopy(t *testing.T) {
	s := NewStore(5)
	s.Append(NewTurn(RoleUser, "hello"))

	snap := s.Snapshot(0)
	snap[0].Text = "mutated"

	if got := s.Snapshot(0)[0].Text; got != "hello" {
		t.Errorf("store turn = %q, want %q", got, "hello")
	}
}

func TestStoreClear(t *testing.T) {
	s := NewStore(5)
	s.Append(NewTurn(RoleUser, "a"))
	s.Append(NewTurn(RoleAssistant, "b"))

	s.Clear()

	if s.Len() != 0 {
		t.Errorf("Len after clear = %d, want 0", s.Len())
	}
	if snap := s.Snapshot(10); len(snap) != 0 {
		t.Errorf("snapshot after clear has %d turns", len(snap))
	}
}

func TestStoreLastUserText(t *testing.T) {
	s := NewStore(10)

	if _, ok := s.LastUserText(); ok {
		t.Error("expected no user turn in empty store")
	}

	s.Append(NewTurn(RoleUser, "first"))
	s.Append(NewTurn(RoleAssistant, "reply"))
	s.Append(NewTurn(RoleUser, "second"))
	s.Append(NewTurn(RoleAssistant, "reply 2"))

	text, ok := s.LastUserText()
	if !ok || text != "second" {
		t.Errorf("LastUserText = %q, %v; want %q, true", text, ok, "second")
	}
}
