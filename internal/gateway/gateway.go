// Package gateway defines the remote chat API surface the bridge consumes
// and its implementations (REST, local demo).
package gateway

import (
	"context"
	"io"

	"github.com/gigstage/console/chat-bridge/internal/domain"
)

// ListFilters narrow a conversation listing. Zero values mean "no filter".
type ListFilters struct {
	Search      string
	UnreadOnly  bool
	Participant string
	Limit       int
	Offset      int
}

type ConversationPage struct {
	Conversations []*domain.Conversation
	Total         int
	HasMore       bool
}

// MessagePage is one page of a conversation's history, newest first.
// Offset counts back from the most recent message.
type MessagePage struct {
	Messages []*domain.Message
	Total    int
	HasMore  bool
}

type OutgoingMessage struct {
	Content  string
	Type     domain.MessageType
	FileURL  string
	FileName string
	FileSize int64
}

type Attachment struct {
	FileURL  string
	FileName string
	FileSize int64
}

type Gateway interface {
	ListConversations(ctx context.Context, filters ListFilters) (*ConversationPage, error)
	CreateConversation(ctx context.Context, participants []string, isGroup bool, groupName, groupAvatar string) (*domain.Conversation, error)
	GetConversation(ctx context.Context, id string) (*domain.Conversation, error)
	DeleteConversation(ctx context.Context, id string) error
	MarkConversationRead(ctx context.Context, id string) error

	ListMessages(ctx context.Context, conversationID string, limit, offset int) (*MessagePage, error)
	SendMessage(ctx context.Context, conversationID string, out OutgoingMessage) (*domain.Message, error)
	EditMessage(ctx context.Context, conversationID, messageID, content string) (*domain.Message, error)
	DeleteMessage(ctx context.Context, conversationID, messageID string) error
	MarkMessageRead(ctx context.Context, conversationID, messageID string) error

	Upload(ctx context.Context, conversationID, fileName string, r io.Reader) (*Attachment, error)

	CreateGroup(ctx context.Context, participants []string, groupName, groupAvatar string) (*domain.Conversation, error)
	AddGroupParticipants(ctx context.Context, id string, participants []string) error
	RemoveGroupParticipants(ctx context.Context, id string, participants []string) error

	SearchMessages(ctx context.Context, query, conversationID string) ([]*domain.Message, error)
	AvailableUsers(ctx context.Context, search string) ([]*domain.User, error)
}
