package demo

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/gigstage/console/chat-bridge/internal/domain"
	"github.com/gigstage/console/chat-bridge/internal/gateway"
)

var self = domain.Identity{ID: "admin-1", Name: "Admin", Email: "admin@gigstage.io"}

func newTestGateway(t *testing.T) *Gateway {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "demo.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return NewGateway(db, self)
}

func TestConversationRoundTrip(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	conv, err := g.CreateConversation(ctx, []string{self.Email, "mia.torres@gigstage.io"}, false, "", "")
	if err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}
	if len(conv.Participants) != len(conv.ParticipantNames) {
		t.Fatal("participants and names must stay aligned")
	}
	if conv.ParticipantNames[0] != "Admin" {
		t.Errorf("self name should resolve from identity, got %q", conv.ParticipantNames[0])
	}
	// No user record yet, so the name falls back to the email local part.
	if conv.ParticipantNames[1] != "mia.torres" {
		t.Errorf("unknown user should fall back to local part, got %q", conv.ParticipantNames[1])
	}

	sent, err := g.SendMessage(ctx, conv.ID, gateway.OutgoingMessage{Content: "is Saturday open?"})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if sent.Status != domain.StatusSent || sent.Type != domain.MessageTypeText {
		t.Errorf("unexpected message: %+v", sent)
	}

	page, err := g.ListConversations(ctx, gateway.ListFilters{})
	if err != nil {
		t.Fatalf("ListConversations: %v", err)
	}
	if len(page.Conversations) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(page.Conversations))
	}
	if lm := page.Conversations[0].LastMessage; lm == nil || lm.ID != sent.ID {
		t.Error("listing should surface the latest message")
	}
}

func TestCreateConversationValidation(t *testing.T) {
	g := newTestGateway(t)
	if _, err := g.CreateConversation(context.Background(), []string{self.Email}, false, "", ""); err == nil {
		t.Error("one participant should be rejected")
	}
	if _, err := g.CreateGroup(context.Background(), []string{self.Email, "a@b.c"}, "  ", ""); err == nil {
		t.Error("blank group name should be rejected")
	}
}

func TestListMessagesNewestFirstPaging(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	conv, err := g.CreateConversation(ctx, []string{self.Email, "mia.torres@gigstage.io"}, false, "", "")
	if err != nil {
		t.Fatal(err)
	}

	var last *domain.Message
	for i := 0; i < 5; i++ {
		last, err = g.SendMessage(ctx, conv.ID, gateway.OutgoingMessage{Content: "message"})
		if err != nil {
			t.Fatal(err)
		}
	}

	page, err := g.ListMessages(ctx, conv.ID, 2, 0)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(page.Messages) != 2 || page.Total != 5 || !page.HasMore {
		t.Fatalf("unexpected page: %d messages, total %d, hasMore %v", len(page.Messages), page.Total, page.HasMore)
	}
	if page.Messages[0].ID != last.ID {
		t.Error("first page should start with the newest message")
	}

	tail, err := g.ListMessages(ctx, conv.ID, 10, 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(tail.Messages) != 1 || tail.HasMore {
		t.Errorf("expected the single oldest message with no more pages, got %d/%v", len(tail.Messages), tail.HasMore)
	}
}

func TestEditAndDeleteMessage(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	conv, _ := g.CreateConversation(ctx, []string{self.Email, "mia.torres@gigstage.io"}, false, "", "")
	sent, err := g.SendMessage(ctx, conv.ID, gateway.OutgoingMessage{Content: "draft"})
	if err != nil {
		t.Fatal(err)
	}

	edited, err := g.EditMessage(ctx, conv.ID, sent.ID, "final")
	if err != nil {
		t.Fatalf("EditMessage: %v", err)
	}
	if edited.Content != "final" {
		t.Errorf("unexpected content: %q", edited.Content)
	}

	if _, err := g.EditMessage(ctx, "other-conv", sent.ID, "x"); err == nil {
		t.Error("editing through the wrong conversation should fail")
	}

	if err := g.DeleteMessage(ctx, conv.ID, sent.ID); err != nil {
		t.Fatalf("DeleteMessage: %v", err)
	}
	page, _ := g.ListMessages(ctx, conv.ID, 10, 0)
	if len(page.Messages) != 0 {
		t.Error("deleted message still listed")
	}
}

func TestGroupMembership(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	conv, err := g.CreateGroup(ctx, []string{self.Email, "mia.torres@gigstage.io"}, "Jazz Night", "")
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}

	if err := g.AddGroupParticipants(ctx, conv.ID, []string{"jonas.keller@gigstage.io", "mia.torres@gigstage.io"}); err != nil {
		t.Fatalf("AddGroupParticipants: %v", err)
	}

	got, err := g.GetConversation(ctx, conv.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Participants) != 3 {
		t.Fatalf("duplicate add should be skipped, got %v", got.Participants)
	}
	if len(got.Participants) != len(got.ParticipantNames) {
		t.Fatal("participants and names must stay aligned")
	}

	if err := g.RemoveGroupParticipants(ctx, conv.ID, []string{"mia.torres@gigstage.io"}); err != nil {
		t.Fatalf("RemoveGroupParticipants: %v", err)
	}
	got, _ = g.GetConversation(ctx, conv.ID)
	if got.HasParticipant("mia.torres@gigstage.io") {
		t.Error("removed participant still present")
	}
	if len(got.Participants) != len(got.ParticipantNames) {
		t.Fatal("participants and names must stay aligned after removal")
	}
}

func TestMarkConversationRead(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	conv, _ := g.CreateConversation(ctx, []string{self.Email, "mia.torres@gigstage.io"}, false, "", "")
	if _, err := g.SendMessage(ctx, conv.ID, gateway.OutgoingMessage{Content: "hello"}); err != nil {
		t.Fatal(err)
	}

	if err := g.MarkConversationRead(ctx, conv.ID); err != nil {
		t.Fatalf("MarkConversationRead: %v", err)
	}
	got, err := g.GetConversation(ctx, conv.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.UnreadCount != 0 {
		t.Errorf("expected 0 unread, got %d", got.UnreadCount)
	}
}

func TestUnreadCountIncrements(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	conv, err := g.CreateConversation(ctx, []string{self.Email, "mia.torres@gigstage.io"}, false, "", "")
	if err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := g.convRepo.IncrementUnreadCount(ctx, conv.ID); err != nil {
			t.Fatalf("IncrementUnreadCount: %v", err)
		}
	}
	got, err := g.GetConversation(ctx, conv.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.UnreadCount != 3 {
		t.Errorf("expected 3 unread, got %d", got.UnreadCount)
	}

	if err := g.MarkConversationRead(ctx, conv.ID); err != nil {
		t.Fatalf("MarkConversationRead: %v", err)
	}
	got, _ = g.GetConversation(ctx, conv.ID)
	if got.UnreadCount != 0 {
		t.Errorf("expected 0 unread after mark-read, got %d", got.UnreadCount)
	}
}

func TestMarkMessageRead(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	conv, _ := g.CreateConversation(ctx, []string{self.Email, "mia.torres@gigstage.io"}, false, "", "")
	sent, err := g.SendMessage(ctx, conv.ID, gateway.OutgoingMessage{Content: "hello"})
	if err != nil {
		t.Fatal(err)
	}
	if sent.IsRead {
		t.Fatal("new messages must not start read")
	}

	if err := g.MarkMessageRead(ctx, conv.ID, sent.ID); err != nil {
		t.Fatalf("MarkMessageRead: %v", err)
	}
	page, err := g.ListMessages(ctx, conv.ID, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Messages) != 1 || !page.Messages[0].IsRead {
		t.Error("message should read as read after marking")
	}
}

func TestAvailableUsersExcludesSelf(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	users := []*domain.User{
		{ID: "u0", Name: self.Name, Email: self.Email},
		{ID: "u1", Name: "Mia Torres", Email: "mia.torres@gigstage.io"},
		{ID: "u2", Name: "Jonas Keller", Email: "jonas.keller@gigstage.io"},
	}
	for _, u := range users {
		if err := g.userRepo.Upsert(ctx, u); err != nil {
			t.Fatal(err)
		}
	}

	got, err := g.AvailableUsers(ctx, "")
	if err != nil {
		t.Fatalf("AvailableUsers: %v", err)
	}
	for _, u := range got {
		if u.Email == self.Email {
			t.Error("current user must not be offered as a chat target")
		}
	}
	if len(got) != 2 {
		t.Errorf("expected 2 users, got %d", len(got))
	}

	filtered, err := g.AvailableUsers(ctx, "jonas")
	if err != nil {
		t.Fatal(err)
	}
	if len(filtered) != 1 || filtered[0].Email != "jonas.keller@gigstage.io" {
		t.Errorf("unexpected search result: %+v", filtered)
	}
}
