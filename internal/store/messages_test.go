package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/gigstage/console/chat-bridge/internal/domain"
)

func msg(id string, at time.Time) *domain.Message {
	return &domain.Message{
		ID:             id,
		ConversationID: "conv-1",
		Content:        "message " + id,
		Type:           domain.MessageTypeText,
		Status:         domain.StatusSent,
		CreatedAt:      at,
	}
}

func ids(messages []*domain.Message) []string {
	out := make([]string, len(messages))
	for i, m := range messages {
		out[i] = m.ID
	}
	return out
}

func assertOrder(t *testing.T, got []*domain.Message, want ...string) {
	t.Helper()
	gotIDs := ids(got)
	if len(gotIDs) != len(want) {
		t.Fatalf("expected %d messages, got %d (%v)", len(want), len(gotIDs), gotIDs)
	}
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Fatalf("position %d: expected %s, got %s (%v)", i, want[i], gotIDs[i], gotIDs)
		}
	}
}

func TestMessageStoreReplaceAll(t *testing.T) {
	s := NewMessageStore()
	now := time.Now()

	s.Append(msg("old", now.Add(-time.Hour)))
	s.ReplaceAll([]*domain.Message{
		msg("a", now.Add(-3*time.Minute)),
		msg("b", now.Add(-2*time.Minute)),
		msg("c", now.Add(-time.Minute)),
	})

	assertOrder(t, s.All(), "a", "b", "c")
	if _, ok := s.Get("old"); ok {
		t.Error("ReplaceAll should drop previous contents")
	}
}

func TestMessageStoreReplaceAllDeduplicates(t *testing.T) {
	s := NewMessageStore()
	now := time.Now()

	s.ReplaceAll([]*domain.Message{
		msg("a", now),
		msg("a", now),
		msg("b", now),
	})

	assertOrder(t, s.All(), "a", "b")
}

func TestMessageStorePrependPage(t *testing.T) {
	s := NewMessageStore()
	now := time.Now()

	s.ReplaceAll([]*domain.Message{
		msg("c", now.Add(-2*time.Minute)),
		msg("d", now.Add(-time.Minute)),
	})
	s.PrependPage([]*domain.Message{
		msg("a", now.Add(-4*time.Minute)),
		msg("b", now.Add(-3*time.Minute)),
	})

	assertOrder(t, s.All(), "a", "b", "c", "d")
}

func TestMessageStorePrependPageSkipsSeen(t *testing.T) {
	s := NewMessageStore()
	now := time.Now()

	s.ReplaceAll([]*domain.Message{msg("b", now), msg("c", now)})
	s.PrependPage([]*domain.Message{msg("a", now), msg("b", now)})

	assertOrder(t, s.All(), "a", "b", "c")
}

func TestMessageStoreAppend(t *testing.T) {
	s := NewMessageStore()
	now := time.Now()

	if !s.Append(msg("a", now)) {
		t.Fatal("first append should succeed")
	}
	if s.Append(msg("a", now)) {
		t.Fatal("duplicate append should be rejected")
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 message, got %d", s.Len())
	}
}

func TestMessageStoreUpdate(t *testing.T) {
	s := NewMessageStore()
	now := time.Now()
	s.Append(msg("a", now))

	edited := msg("a", now)
	edited.Content = "edited"
	if !s.Update(edited) {
		t.Fatal("update of existing message should succeed")
	}
	got, _ := s.Get("a")
	if got.Content != "edited" {
		t.Errorf("expected edited content, got %q", got.Content)
	}

	if s.Update(msg("missing", now)) {
		t.Error("update of unknown message should fail")
	}
}

func TestMessageStoreReconcileKeepsPosition(t *testing.T) {
	s := NewMessageStore()
	now := time.Now()

	s.Append(msg("a", now.Add(-2*time.Minute)))
	s.Append(msg("local-1", now.Add(-time.Minute)))
	s.Append(msg("b", now))

	server := msg("srv-1", now.Add(-time.Minute))
	if !s.Reconcile("local-1", server) {
		t.Fatal("reconcile should succeed for a present local id")
	}

	assertOrder(t, s.All(), "a", "srv-1", "b")
	if _, ok := s.Get("local-1"); ok {
		t.Error("local id should be gone after reconcile")
	}
}

func TestMessageStoreReconcileUnknownLocal(t *testing.T) {
	s := NewMessageStore()
	if s.Reconcile("local-missing", msg("srv-1", time.Now())) {
		t.Error("reconcile of unknown local id should fail")
	}
}

func TestMessageStoreRemove(t *testing.T) {
	s := NewMessageStore()
	now := time.Now()

	for i := 0; i < 3; i++ {
		s.Append(msg(fmt.Sprintf("m%d", i), now.Add(time.Duration(i)*time.Minute)))
	}

	if !s.Remove("m1") {
		t.Fatal("remove of existing message should succeed")
	}
	assertOrder(t, s.All(), "m0", "m2")

	if s.Remove("m1") {
		t.Error("second remove should fail")
	}
}

func TestMessageStoreClear(t *testing.T) {
	s := NewMessageStore()
	s.Append(msg("a", time.Now()))
	s.Clear()

	if s.Len() != 0 {
		t.Fatalf("expected empty store, got %d", s.Len())
	}
	if _, ok := s.Get("a"); ok {
		t.Error("cleared store should not resolve ids")
	}
}
