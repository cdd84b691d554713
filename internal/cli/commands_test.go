package cli

import (
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"

	"github.com/gigstage/console/chat-bridge/internal/chat"
	"github.com/gigstage/console/chat-bridge/internal/domain"
	"github.com/gigstage/console/chat-bridge/internal/gateway"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input    string
		wantName string
		wantArgs []string
		wantErr  bool
	}{
		{"/help", "help", nil, false},
		{"/send hello there", "send", []string{"hello", "there"}, false},
		{"  /open 3  ", "open", []string{"3"}, false},
		{"", "", nil, true},
		{"hello", "", nil, true},
	}

	for _, tt := range tests {
		cmd, err := ParseCommand(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseCommand(%q): expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseCommand(%q): %v", tt.input, err)
			continue
		}
		if cmd.Name != tt.wantName {
			t.Errorf("ParseCommand(%q): name %q, want %q", tt.input, cmd.Name, tt.wantName)
		}
		if len(cmd.Args) != len(tt.wantArgs) {
			t.Errorf("ParseCommand(%q): args %v, want %v", tt.input, cmd.Args, tt.wantArgs)
		}
	}
}

// stubGateway serves one fixed conversation; everything else is a no-op.
type stubGateway struct {
	conv *domain.Conversation
}

func (s *stubGateway) ListConversations(ctx context.Context, filters gateway.ListFilters) (*gateway.ConversationPage, error) {
	return &gateway.ConversationPage{Conversations: []*domain.Conversation{s.conv}, Total: 1}, nil
}

func (s *stubGateway) CreateConversation(ctx context.Context, participants []string, isGroup bool, groupName, groupAvatar string) (*domain.Conversation, error) {
	return s.conv, nil
}

func (s *stubGateway) GetConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	return s.conv, nil
}

func (s *stubGateway) DeleteConversation(ctx context.Context, id string) error         { return nil }
func (s *stubGateway) MarkConversationRead(ctx context.Context, id string) error       { return nil }
func (s *stubGateway) DeleteMessage(ctx context.Context, convID, msgID string) error   { return nil }
func (s *stubGateway) MarkMessageRead(ctx context.Context, convID, msgID string) error { return nil }

func (s *stubGateway) ListMessages(ctx context.Context, conversationID string, limit, offset int) (*gateway.MessagePage, error) {
	return &gateway.MessagePage{}, nil
}

func (s *stubGateway) SendMessage(ctx context.Context, conversationID string, out gateway.OutgoingMessage) (*domain.Message, error) {
	return &domain.Message{ID: "srv-1", ConversationID: conversationID, Content: out.Content, Type: out.Type, Status: domain.StatusSent}, nil
}

func (s *stubGateway) EditMessage(ctx context.Context, conversationID, messageID, content string) (*domain.Message, error) {
	return &domain.Message{ID: messageID, ConversationID: conversationID, Content: content, Status: domain.StatusSent}, nil
}

func (s *stubGateway) Upload(ctx context.Context, conversationID, fileName string, r io.Reader) (*gateway.Attachment, error) {
	return &gateway.Attachment{FileName: fileName}, nil
}

func (s *stubGateway) CreateGroup(ctx context.Context, participants []string, groupName, groupAvatar string) (*domain.Conversation, error) {
	return s.conv, nil
}

func (s *stubGateway) AddGroupParticipants(ctx context.Context, id string, participants []string) error {
	return nil
}

func (s *stubGateway) RemoveGroupParticipants(ctx context.Context, id string, participants []string) error {
	return nil
}

func (s *stubGateway) SearchMessages(ctx context.Context, query, conversationID string) ([]*domain.Message, error) {
	return nil, nil
}

func (s *stubGateway) AvailableUsers(ctx context.Context, search string) ([]*domain.User, error) {
	return []*domain.User{{ID: "u1", Name: "Mia Torres", Email: "mia.torres@gigstage.io"}}, nil
}

func newTestHandler() *CommandHandler {
	gw := &stubGateway{
		conv: domain.NewDirectConversation("conv-1",
			[]string{"admin@gigstage.io", "mia.torres@gigstage.io"},
			[]string{"Admin", "Mia Torres"},
		),
	}
	user := domain.Identity{ID: "admin-1", Name: "Admin", Email: "admin@gigstage.io"}
	ctrl := chat.NewController(gw, user, nil, zerolog.Nop())
	return NewCommandHandler(ctrl, domain.NewEventBus())
}

func TestExecuteConversationsListing(t *testing.T) {
	h := newTestHandler()

	result, err := h.Execute(context.Background(), &Command{Name: "ls"})
	if err != nil {
		t.Fatalf("Execute(ls): %v", err)
	}

	m, ok := result.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected result type %T", result)
	}
	conversations, _ := m["conversations"].([]ConversationInfo)
	if len(conversations) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(conversations))
	}
	if conversations[0].Name != "Mia Torres" {
		t.Errorf("display name should hide the current user, got %q", conversations[0].Name)
	}
}

func TestExecuteOpenByNumber(t *testing.T) {
	h := newTestHandler()
	ctx := context.Background()

	if _, err := h.Execute(ctx, &Command{Name: "ls"}); err != nil {
		t.Fatal(err)
	}
	if _, err := h.Execute(ctx, &Command{Name: "open", Args: []string{"1"}}); err != nil {
		t.Fatalf("Execute(open 1): %v", err)
	}

	status, err := h.Execute(ctx, &Command{Name: "status"})
	if err != nil {
		t.Fatal(err)
	}
	if s := status.(SessionStatus); s.Selected != "conv-1" {
		t.Errorf("expected conv-1 selected, got %q", s.Selected)
	}
}

func TestExecuteOpenOutOfRange(t *testing.T) {
	h := newTestHandler()
	if _, err := h.Execute(context.Background(), &Command{Name: "open", Args: []string{"7"}}); err == nil {
		t.Error("expected error for out-of-range index")
	}
}

func TestExecuteUnknownCommand(t *testing.T) {
	h := newTestHandler()
	if _, err := h.Execute(context.Background(), &Command{Name: "bogus"}); err == nil {
		t.Error("expected error for unknown command")
	}
}

func TestExecuteSendWithoutSelection(t *testing.T) {
	h := newTestHandler()
	if _, err := h.Execute(context.Background(), &Command{Name: "send", Args: []string{"hi"}}); err == nil {
		t.Error("send without an open conversation should error")
	}
}

func TestExecuteQuit(t *testing.T) {
	h := newTestHandler()
	result, err := h.Execute(context.Background(), &Command{Name: "quit"})
	if err != nil {
		t.Fatal(err)
	}
	if m, ok := result.(map[string]bool); !ok || !m["quit"] {
		t.Errorf("expected quit marker, got %v", result)
	}
}
