package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gigstage/console/chat-bridge/internal/domain"
	"github.com/gigstage/console/chat-bridge/internal/gateway"
)

func (s *Server) handleListConversations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filters := gateway.ListFilters{
		Search:     request.GetString("search", ""),
		UnreadOnly: request.GetBool("unread_only", false),
	}

	if err := s.ctrl.FetchConversations(ctx, filters); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list conversations: %v", err)), nil
	}

	conversations := s.ctrl.Conversations()
	if len(conversations) == 0 {
		return mcp.NewToolResultText("No conversations found."), nil
	}

	self := s.ctrl.User().Email

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Found %d conversation(s):\n\n", len(conversations)))

	for i, conv := range conversations {
		kind := "Direct"
		if conv.IsGroup {
			kind = "Group"
		}

		result.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, conv.DisplayName(self), kind))
		result.WriteString(fmt.Sprintf("   ID: %s\n", conv.ID))

		if conv.UnreadCount > 0 {
			result.WriteString(fmt.Sprintf("   Unread: %d message(s)\n", conv.UnreadCount))
		}

		if preview := conv.LastMessage.Preview(); preview != "" {
			if len(preview) > 60 {
				preview = preview[:60] + "..."
			}
			result.WriteString(fmt.Sprintf("   Last: %s\n", preview))
			if !conv.UpdatedAt.IsZero() {
				result.WriteString(fmt.Sprintf("   Time: %s\n", conv.UpdatedAt.Format("2006-01-02 15:04")))
			}
		}
		result.WriteString("\n")
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (s *Server) handleGetMessages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conversationID := request.GetString("conversation_id", "")
	if conversationID == "" {
		return mcp.NewToolResultError("conversation_id is required"), nil
	}

	limit := request.GetInt("limit", 50)
	if limit > 200 {
		limit = 200
	}
	if limit <= 0 {
		limit = 50
	}

	if err := s.ensureSelected(ctx, conversationID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to open conversation: %v", err)), nil
	}

	if err := s.ctrl.FetchMessages(ctx, conversationID, limit, 0); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get messages: %v", err)), nil
	}

	messages := s.ctrl.Messages()
	if len(messages) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No messages found in conversation %s", conversationID)), nil
	}

	return mcp.NewToolResultText(s.renderMessages(conversationID, messages)), nil
}

func (s *Server) handleLoadOlderMessages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conv := s.ctrl.Selected()
	if conv == nil {
		return mcp.NewToolResultError("No conversation is open. Call chat_get_messages first."), nil
	}
	if !s.ctrl.HasMoreMessages() {
		return mcp.NewToolResultText("No older messages."), nil
	}

	limit := request.GetInt("limit", 50)
	if limit > 200 {
		limit = 200
	}
	if limit <= 0 {
		limit = 50
	}

	if err := s.ctrl.FetchOlderMessages(ctx, limit); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to load older messages: %v", err)), nil
	}

	return mcp.NewToolResultText(s.renderMessages(conv.ID, s.ctrl.Messages())), nil
}

func (s *Server) handleSendMessage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conversationID := request.GetString("conversation_id", "")
	if conversationID == "" {
		return mcp.NewToolResultError("conversation_id is required"), nil
	}

	text := request.GetString("text", "")
	if text == "" {
		return mcp.NewToolResultError("text is required"), nil
	}

	if err := s.ensureSelected(ctx, conversationID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to open conversation: %v", err)), nil
	}

	msg := s.ctrl.SendMessage(ctx, text, domain.MessageTypeText, nil)
	if msg == nil {
		return mcp.NewToolResultError("Nothing sent: message text was empty"), nil
	}
	if msg.Status == domain.StatusFailed {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to send message: %s", s.ctrl.Errors().Send)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Message sent successfully!\nID: %s\nTimestamp: %s\nTo: %s",
		msg.ID, msg.CreatedAt.Format("2006-01-02 15:04:05"), conversationID)), nil
}

func (s *Server) handleEditMessage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	messageID := request.GetString("message_id", "")
	text := request.GetString("text", "")

	if messageID == "" {
		return mcp.NewToolResultError("message_id is required"), nil
	}
	if text == "" {
		return mcp.NewToolResultError("text is required"), nil
	}

	if err := s.ctrl.EditMessage(ctx, messageID, text); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to edit message: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Message %s updated", messageID)), nil
}

func (s *Server) handleDeleteMessage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	messageID := request.GetString("message_id", "")
	if messageID == "" {
		return mcp.NewToolResultError("message_id is required"), nil
	}

	if err := s.ctrl.DeleteMessage(ctx, messageID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete message: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Message %s deleted", messageID)), nil
}

func (s *Server) handleCreateConversation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	emails := splitEmails(request.GetString("emails", ""))
	if len(emails) == 0 {
		return mcp.NewToolResultError("emails is required"), nil
	}

	conv := s.ctrl.CreateConversation(ctx, emails, false, "")
	if conv == nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create conversation: %s", s.ctrl.Errors().Mutation)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Conversation created.\nID: %s", conv.ID)), nil
}

func (s *Server) handleCreateGroup(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := request.GetString("name", "")
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	emails := splitEmails(request.GetString("emails", ""))
	if len(emails) == 0 {
		return mcp.NewToolResultError("emails is required"), nil
	}

	conv := s.ctrl.CreateGroup(ctx, emails, name, "")
	if conv == nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create group: %s", s.ctrl.Errors().Mutation)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Group '%s' created.\nID: %s", conv.GroupName, conv.ID)), nil
}

func (s *Server) handleMarkRead(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conversationID := request.GetString("conversation_id", "")
	if conversationID == "" {
		return mcp.NewToolResultError("conversation_id is required"), nil
	}

	if err := s.ensureSelected(ctx, conversationID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to open conversation: %v", err)), nil
	}

	s.ctrl.MarkConversationAsRead(ctx)
	return mcp.NewToolResultText(fmt.Sprintf("Conversation %s marked as read", conversationID)), nil
}

func (s *Server) handleSearchMessages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := request.GetString("query", "")
	if query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}

	messages, err := s.ctrl.SearchMessages(ctx, query)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Search failed: %v", err)), nil
	}

	if len(messages) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No messages found matching '%s'", query)), nil
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Search results for '%s' (%d found):\n\n", query, len(messages)))

	for i, msg := range messages {
		result.WriteString(fmt.Sprintf("%d. [%s] %s:\n", i+1, msg.CreatedAt.Format("2006-01-02 15:04"), msg.SenderName))
		result.WriteString(fmt.Sprintf("   Conversation: %s\n", msg.ConversationID))

		text := msg.Content
		if len(text) > 100 {
			text = text[:100] + "..."
		}
		result.WriteString(fmt.Sprintf("   %s\n", text))
		result.WriteString(fmt.Sprintf("   ID: %s\n\n", msg.ID))
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (s *Server) handleListUsers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	users, err := s.ctrl.AvailableUsers(ctx, request.GetString("search", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list users: %v", err)), nil
	}

	if len(users) == 0 {
		return mcp.NewToolResultText("No users found."), nil
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Found %d user(s):\n\n", len(users)))
	for i, u := range users {
		result.WriteString(fmt.Sprintf("%d. %s <%s>\n", i+1, u.Name, u.Email))
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (s *Server) handleSessionStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	selected := "(none)"
	if conv := s.ctrl.Selected(); conv != nil {
		selected = conv.ID
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"User: %s\nOpen conversation: %s\nConversations loaded: %d\nMessages loaded: %d\nOlder messages available: %v\nErrors pending: %v",
		s.ctrl.User().Email, selected, len(s.ctrl.Conversations()), len(s.ctrl.Messages()),
		s.ctrl.HasMoreMessages(), s.ctrl.Errors().Any())), nil
}

// ensureSelected opens the conversation unless it is already open. Opening an
// unknown conversation requires the list to be loaded first.
func (s *Server) ensureSelected(ctx context.Context, conversationID string) error {
	if conv := s.ctrl.Selected(); conv != nil && conv.ID == conversationID {
		return nil
	}
	if _, ok := s.ctrl.ConversationByID(conversationID); !ok {
		if err := s.ctrl.FetchConversations(ctx, gateway.ListFilters{}); err != nil {
			return err
		}
	}
	return s.ctrl.SelectConversation(ctx, conversationID)
}

func (s *Server) renderMessages(conversationID string, messages []*domain.Message) string {
	self := s.ctrl.User().Email

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Messages from %s (%d):\n\n", conversationID, len(messages)))

	for _, msg := range messages {
		sender := msg.SenderName
		if msg.SenderEmail == self {
			sender = "Me"
		}

		timestamp := msg.CreatedAt.Format("2006-01-02 15:04")
		flags := ""
		if msg.Status != domain.StatusSent {
			flags = " (" + string(msg.Status) + ")"
		}
		if msg.Edited() {
			flags += " (edited)"
		}

		result.WriteString(fmt.Sprintf("[%s] %s%s:\n", timestamp, sender, flags))

		switch msg.Type {
		case domain.MessageTypeText:
			result.WriteString(fmt.Sprintf("  %s\n", msg.Content))
		case domain.MessageTypeImage:
			caption := msg.Content
			if caption == "" {
				caption = "(no caption)"
			}
			result.WriteString(fmt.Sprintf("  [Image] %s\n", caption))
		case domain.MessageTypeFile:
			result.WriteString(fmt.Sprintf("  [File: %s]\n", msg.FileName))
		case domain.MessageTypeAudio:
			result.WriteString("  [Audio message]\n")
		default:
			result.WriteString(fmt.Sprintf("  [%s]\n", msg.Type))
		}

		result.WriteString(fmt.Sprintf("  ID: %s\n\n", msg.ID))
	}

	if s.ctrl.HasMoreMessages() {
		result.WriteString("Older messages available via chat_load_older_messages.\n")
	}

	return result.String()
}

func splitEmails(s string) []string {
	var emails []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			emails = append(emails, part)
		}
	}
	return emails
}
