package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gigstage/console/chat-bridge/internal/chat"
	"github.com/gigstage/console/chat-bridge/internal/domain"
	"github.com/gigstage/console/chat-bridge/internal/gateway"
)

// CommandHandler handles CLI commands
type CommandHandler struct {
	ctrl *chat.Controller
	bus  domain.EventBus
}

// NewCommandHandler creates a new command handler
func NewCommandHandler(ctrl *chat.Controller, bus domain.EventBus) *CommandHandler {
	return &CommandHandler{ctrl: ctrl, bus: bus}
}

// Command represents a parsed command
type Command struct {
	Name string
	Args []string
}

// ParseCommand parses a command string (e.g., "/send hello there")
func ParseCommand(input string) (*Command, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("empty command")
	}

	if !strings.HasPrefix(input, "/") {
		return nil, fmt.Errorf("commands must start with /")
	}

	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	name := strings.TrimPrefix(parts[0], "/")
	args := parts[1:]

	return &Command{Name: name, Args: args}, nil
}

// Execute executes a command and returns the result
func (h *CommandHandler) Execute(ctx context.Context, cmd *Command) (interface{}, error) {
	switch cmd.Name {
	case "help", "h":
		return h.cmdHelp()
	case "status", "s":
		return h.cmdStatus()
	case "conversations", "ls":
		return h.cmdConversations(ctx, cmd.Args)
	case "unread":
		return h.cmdUnread(ctx)
	case "open", "o":
		return h.cmdOpen(ctx, cmd.Args)
	case "messages", "msg":
		return h.cmdMessages(ctx, cmd.Args)
	case "more":
		return h.cmdMore(ctx, cmd.Args)
	case "send":
		return h.cmdSend(ctx, cmd.Args)
	case "edit":
		return h.cmdEdit(ctx, cmd.Args)
	case "rm-msg":
		return h.cmdDeleteMessage(ctx, cmd.Args)
	case "read-msg":
		return h.cmdReadMessage(ctx, cmd.Args)
	case "new":
		return h.cmdNew(ctx, cmd.Args)
	case "group":
		return h.cmdGroup(ctx, cmd.Args)
	case "invite":
		return h.cmdInvite(ctx, cmd.Args)
	case "kick":
		return h.cmdKick(ctx, cmd.Args)
	case "rm":
		return h.cmdDeleteConversation(ctx, cmd.Args)
	case "read":
		return h.cmdRead(ctx)
	case "search":
		return h.cmdSearch(ctx, cmd.Args)
	case "users":
		return h.cmdUsers(ctx, cmd.Args)
	case "attach":
		return h.cmdAttach(ctx, cmd.Args)
	case "errors":
		return h.cmdErrors()
	case "clear-errors":
		h.ctrl.ClearErrors()
		return map[string]string{"message": "Errors cleared"}, nil
	case "reset":
		h.ctrl.Reset()
		return map[string]string{"message": "Chat state reset"}, nil
	case "quit", "exit", "q":
		return map[string]bool{"quit": true}, nil
	default:
		return nil, fmt.Errorf("unknown command: %s. Type /help for available commands", cmd.Name)
	}
}

func (h *CommandHandler) cmdHelp() (interface{}, error) {
	help := `Available commands:

Conversations:
  /conversations, /ls [search]  List conversations, optionally filtered
  /unread                       List conversations with unread messages
  /open, /o <n|id>              Open a conversation by list number or id
  /new <email> [email...]       Start a conversation
  /group <name> <email...>      Create a group conversation
  /invite <email...>            Add members to the open group
  /kick <email...>              Remove members from the open group
  /rm <id>                      Delete a conversation
  /read                         Mark the open conversation as read

Messages:
  /messages, /msg [limit]       Reload the open conversation's latest page
  /more [limit]                 Load an older page of messages
  /send <text>                  Send a message
  /edit <msg_id> <text>         Edit a message
  /rm-msg <msg_id>              Delete a message
  /read-msg <msg_id>            Mark a single message as read
  /attach <path> [caption]      Upload a file and send it
  /search <query>               Search messages (scoped when a chat is open)

Other:
  /users [search]               List users available for a new chat
  /status, /s                   Show session status
  /errors                       Show current error flags
  /clear-errors                 Clear error flags
  /reset                        Reset all chat state
  /help, /h                     Show this help
  /quit, /exit, /q              Exit the CLI`

	return map[string]string{"help": help}, nil
}

func (h *CommandHandler) cmdStatus() (interface{}, error) {
	selected := ""
	if conv := h.ctrl.Selected(); conv != nil {
		selected = conv.ID
	}
	return SessionStatus{
		User:          h.ctrl.User().Email,
		Selected:      selected,
		Conversations: len(h.ctrl.Conversations()),
		Messages:      len(h.ctrl.Messages()),
		HasMore:       h.ctrl.HasMoreMessages(),
		Errors:        h.ctrl.Errors().Any(),
	}, nil
}

func (h *CommandHandler) cmdConversations(ctx context.Context, args []string) (interface{}, error) {
	var err error
	if len(args) > 0 {
		err = h.ctrl.SearchConversations(ctx, strings.Join(args, " "))
	} else {
		err = h.ctrl.FetchConversations(ctx, gateway.ListFilters{})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return h.conversationListing(), nil
}

func (h *CommandHandler) cmdUnread(ctx context.Context) (interface{}, error) {
	if err := h.ctrl.FetchConversations(ctx, gateway.ListFilters{UnreadOnly: true}); err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return h.conversationListing(), nil
}

func (h *CommandHandler) conversationListing() map[string]interface{} {
	self := h.ctrl.User().Email
	conversations := h.ctrl.Conversations()
	result := make([]ConversationInfo, len(conversations))
	for i, conv := range conversations {
		result[i] = ConversationInfo{
			ID:          conv.ID,
			Name:        conv.DisplayName(self),
			IsGroup:     conv.IsGroup,
			Members:     conv.ParticipantNames,
			UnreadCount: conv.UnreadCount,
			LastMessage: conv.LastMessage.Preview(),
			UpdatedAt:   conv.UpdatedAt,
		}
	}
	return map[string]interface{}{"conversations": result, "count": len(result)}
}

func (h *CommandHandler) cmdOpen(ctx context.Context, args []string) (interface{}, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("usage: /open <number|id>")
	}

	id := args[0]
	if n, err := strconv.Atoi(id); err == nil {
		conversations := h.ctrl.Conversations()
		if n < 1 || n > len(conversations) {
			return nil, fmt.Errorf("no conversation numbered %d, run /ls first", n)
		}
		id = conversations[n-1].ID
	}

	if err := h.ctrl.SelectConversation(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to open conversation: %w", err)
	}
	return h.messageListing(), nil
}

func (h *CommandHandler) cmdMessages(ctx context.Context, args []string) (interface{}, error) {
	conv := h.ctrl.Selected()
	if conv == nil {
		return nil, fmt.Errorf("no conversation open, use /open first")
	}

	limit := chat.DefaultPageSize
	if len(args) > 0 {
		if l, err := strconv.Atoi(args[0]); err == nil && l > 0 {
			limit = l
		}
	}

	if err := h.ctrl.FetchMessages(ctx, conv.ID, limit, 0); err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	return h.messageListing(), nil
}

func (h *CommandHandler) cmdMore(ctx context.Context, args []string) (interface{}, error) {
	if h.ctrl.Selected() == nil {
		return nil, fmt.Errorf("no conversation open, use /open first")
	}
	if !h.ctrl.HasMoreMessages() {
		return map[string]string{"message": "No older messages"}, nil
	}

	limit := chat.DefaultPageSize
	if len(args) > 0 {
		if l, err := strconv.Atoi(args[0]); err == nil && l > 0 {
			limit = l
		}
	}

	if err := h.ctrl.FetchOlderMessages(ctx, limit); err != nil {
		return nil, fmt.Errorf("failed to load older messages: %w", err)
	}
	return h.messageListing(), nil
}

func (h *CommandHandler) messageListing() map[string]interface{} {
	messages := h.ctrl.Messages()
	result := make([]MessageInfo, len(messages))
	for i, msg := range messages {
		result[i] = messageInfo(msg)
	}
	return map[string]interface{}{"messages": result, "count": len(result), "has_more": h.ctrl.HasMoreMessages()}
}

func (h *CommandHandler) cmdSend(ctx context.Context, args []string) (interface{}, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("usage: /send <text>")
	}

	text := strings.Join(args, " ")
	msg := h.ctrl.SendMessage(ctx, text, domain.MessageTypeText, nil)
	if msg == nil {
		return nil, fmt.Errorf("nothing sent: open a conversation and provide non-empty text")
	}
	if msg.Status == domain.StatusFailed {
		return nil, fmt.Errorf("send failed: %s", h.ctrl.Errors().Send)
	}
	return messageInfo(msg), nil
}

func (h *CommandHandler) cmdEdit(ctx context.Context, args []string) (interface{}, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("usage: /edit <message_id> <text>")
	}

	id := args[0]
	text := strings.Join(args[1:], " ")
	if err := h.ctrl.EditMessage(ctx, id, text); err != nil {
		return nil, fmt.Errorf("failed to edit message: %w", err)
	}
	return map[string]string{"message": "Message updated", "message_id": id}, nil
}

func (h *CommandHandler) cmdDeleteMessage(ctx context.Context, args []string) (interface{}, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("usage: /rm-msg <message_id>")
	}

	if err := h.ctrl.DeleteMessage(ctx, args[0]); err != nil {
		return nil, fmt.Errorf("failed to delete message: %w", err)
	}
	return map[string]string{"message": "Message deleted", "message_id": args[0]}, nil
}

func (h *CommandHandler) cmdReadMessage(ctx context.Context, args []string) (interface{}, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("usage: /read-msg <message_id>")
	}

	if err := h.ctrl.MarkMessageRead(ctx, args[0]); err != nil {
		return nil, fmt.Errorf("failed to mark message read: %w", err)
	}
	return map[string]string{"message": "Message marked as read", "message_id": args[0]}, nil
}

func (h *CommandHandler) cmdNew(ctx context.Context, args []string) (interface{}, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("usage: /new <email> [email...]")
	}

	conv := h.ctrl.CreateConversation(ctx, args, false, "")
	if conv == nil {
		return nil, fmt.Errorf("failed to create conversation: %s", h.ctrl.Errors().Mutation)
	}
	return map[string]string{"message": "Conversation created", "id": conv.ID}, nil
}

func (h *CommandHandler) cmdGroup(ctx context.Context, args []string) (interface{}, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("usage: /group <name> <email> [email...]")
	}

	conv := h.ctrl.CreateGroup(ctx, args[1:], args[0], "")
	if conv == nil {
		return nil, fmt.Errorf("failed to create group: %s", h.ctrl.Errors().Mutation)
	}
	return map[string]string{"message": "Group created", "id": conv.ID, "name": conv.GroupName}, nil
}

func (h *CommandHandler) cmdInvite(ctx context.Context, args []string) (interface{}, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("usage: /invite <email> [email...]")
	}
	conv := h.ctrl.Selected()
	if conv == nil || !conv.IsGroup {
		return nil, fmt.Errorf("open a group conversation first")
	}

	if err := h.ctrl.AddParticipantsToGroup(ctx, args); err != nil {
		return nil, fmt.Errorf("failed to add members: %w", err)
	}
	return map[string]interface{}{"message": "Members added", "members": args}, nil
}

func (h *CommandHandler) cmdKick(ctx context.Context, args []string) (interface{}, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("usage: /kick <email> [email...]")
	}
	conv := h.ctrl.Selected()
	if conv == nil || !conv.IsGroup {
		return nil, fmt.Errorf("open a group conversation first")
	}

	if err := h.ctrl.RemoveParticipantsFromGroup(ctx, args); err != nil {
		return nil, fmt.Errorf("failed to remove members: %w", err)
	}
	return map[string]interface{}{"message": "Members removed", "members": args}, nil
}

func (h *CommandHandler) cmdDeleteConversation(ctx context.Context, args []string) (interface{}, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("usage: /rm <conversation_id>")
	}

	if err := h.ctrl.DeleteConversation(ctx, args[0]); err != nil {
		return nil, fmt.Errorf("failed to delete conversation: %w", err)
	}
	return map[string]string{"message": "Conversation deleted", "id": args[0]}, nil
}

func (h *CommandHandler) cmdRead(ctx context.Context) (interface{}, error) {
	if h.ctrl.Selected() == nil {
		return nil, fmt.Errorf("no conversation open, use /open first")
	}
	h.ctrl.MarkConversationAsRead(ctx)
	return map[string]string{"message": "Conversation marked as read"}, nil
}

func (h *CommandHandler) cmdSearch(ctx context.Context, args []string) (interface{}, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("usage: /search <query>")
	}

	query := strings.Join(args, " ")
	messages, err := h.ctrl.SearchMessages(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	result := make([]MessageInfo, len(messages))
	for i, msg := range messages {
		result[i] = messageInfo(msg)
	}
	return map[string]interface{}{"query": query, "messages": result, "count": len(result)}, nil
}

func (h *CommandHandler) cmdUsers(ctx context.Context, args []string) (interface{}, error) {
	search := strings.Join(args, " ")
	users, err := h.ctrl.AvailableUsers(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	result := make([]UserInfo, len(users))
	for i, u := range users {
		result[i] = UserInfo{ID: u.ID, Name: u.Name, Email: u.Email}
	}
	return map[string]interface{}{"users": result, "count": len(result)}, nil
}

func (h *CommandHandler) cmdAttach(ctx context.Context, args []string) (interface{}, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("usage: /attach <path> [caption]")
	}
	if h.ctrl.Selected() == nil {
		return nil, fmt.Errorf("no conversation open, use /open first")
	}

	path := args[0]
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	att := h.ctrl.UploadFile(ctx, filepath.Base(path), f)
	if att == nil {
		return nil, fmt.Errorf("upload failed: %s", h.ctrl.Errors().Mutation)
	}

	caption := filepath.Base(path)
	if len(args) > 1 {
		caption = strings.Join(args[1:], " ")
	}

	msg := h.ctrl.SendMessage(ctx, caption, domain.MessageTypeFile, att)
	if msg == nil || msg.Status == domain.StatusFailed {
		return nil, fmt.Errorf("file uploaded but send failed: %s", h.ctrl.Errors().Send)
	}
	return messageInfo(msg), nil
}

func (h *CommandHandler) cmdErrors() (interface{}, error) {
	errs := h.ctrl.Errors()
	return map[string]string{
		"conversations": errs.Conversations,
		"messages":      errs.Messages,
		"send":          errs.Send,
		"mutation":      errs.Mutation,
	}, nil
}

// SubscribeEvents subscribes to chat events for live display
func (h *CommandHandler) SubscribeEvents(eventTypes []domain.EventType) <-chan Event {
	if len(eventTypes) == 0 {
		eventTypes = []domain.EventType{
			domain.EventTypeMessageSent,
			domain.EventTypeMessageFailed,
			domain.EventTypeErrorRaised,
		}
	}

	domainChan := h.bus.Subscribe(eventTypes)
	resultChan := make(chan Event)

	go func() {
		defer close(resultChan)
		for evt := range domainChan {
			var eventType string
			var data interface{}

			switch e := evt.(type) {
			case domain.MessageSentEvent:
				eventType = "message_sent"
				data = messageInfo(e.Message)
			case domain.MessageFailedEvent:
				eventType = "message_failed"
				data = map[string]interface{}{
					"message": messageInfo(e.Message),
					"reason":  e.Reason,
				}
			case domain.ConversationUpdatedEvent:
				eventType = "conversation_updated"
				data = map[string]string{"id": e.Conversation.ID}
			case domain.ErrorRaisedEvent:
				eventType = "error"
				data = map[string]string{"scope": e.Scope, "message": e.Message}
			default:
				continue
			}

			resultChan <- Event{
				Type:      eventType,
				Timestamp: time.Now(),
				Data:      data,
			}
		}
	}()

	return resultChan
}

func messageInfo(msg *domain.Message) MessageInfo {
	return MessageInfo{
		ID:           msg.ID,
		Conversation: msg.ConversationID,
		Sender:       msg.SenderName,
		SenderEmail:  msg.SenderEmail,
		Type:         string(msg.Type),
		Content:      msg.Content,
		FileName:     msg.FileName,
		Status:       string(msg.Status),
		Edited:       msg.Edited(),
		IsRead:       msg.IsRead,
		CreatedAt:    msg.CreatedAt,
	}
}
