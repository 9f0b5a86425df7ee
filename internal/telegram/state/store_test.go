package state

import (
	"testing"
	"time"
)

func TestStore_TakePendingOnce(t *testing.T) {
	s := NewStore(time.Minute)
	s.SetPending(42, ActionIngest)

	got, ok := s.TakePending(42)
	if !ok || got != ActionIngest {
		t.Fatalf("TakePending = %q, %v", got, ok)
	}
	if _, ok := s.TakePending(42); ok {
		t.Error("action must be consumed")
	}
}

func TestStore_ChatsAreIndependent(t *testing.T) {
	s := NewStore(time.Minute)
	s.SetPending(1, ActionIngest)

	if _, ok := s.TakePending(2); ok {
		t.Error("chat 2 has nothing pending")
	}
	s.Clear(1)
	if _, ok := s.TakePending(1); ok {
		t.Error("cleared action still pending")
	}
}

func TestStore_Expires(t *testing.T) {
	s := NewStore(20 * time.Millisecond)
	s.SetPending(1, ActionIngest)

	time.Sleep(50 * time.Millisecond)
	if _, ok := s.TakePending(1); ok {
		t.Error("action must expire")
	}
}
