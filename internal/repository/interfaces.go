// Package repository persists conversations, messages, and marketplace
// users for the local demo gateway.
package repository

import (
	"context"
	"time"

	"github.com/gigstage/console/chat-bridge/internal/domain"
)

// ListFilter narrows a conversation listing.
type ListFilter struct {
	Search      string
	UnreadOnly  bool
	Participant string
	Limit       int
	Offset      int
}

type ConversationRepository interface {
	Upsert(ctx context.Context, conv *domain.Conversation) error
	GetByID(ctx context.Context, id string) (*domain.Conversation, error)
	List(ctx context.Context, filter ListFilter) ([]*domain.Conversation, int64, error)
	SetUnreadCount(ctx context.Context, id string, count int) error
	IncrementUnreadCount(ctx context.Context, id string) error
	Touch(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, id string) (*domain.Message, error)
	GetByConversation(ctx context.Context, conversationID string, limit, offset int) ([]*domain.Message, error)
	CountByConversation(ctx context.Context, conversationID string) (int64, error)
	LatestByConversation(ctx context.Context, conversationID string) (*domain.Message, error)
	Update(ctx context.Context, msg *domain.Message) error
	UpdateReadStatus(ctx context.Context, ids []string, isRead bool) error
	MarkConversationRead(ctx context.Context, conversationID string) error
	Search(ctx context.Context, query, conversationID string, limit int) ([]*domain.Message, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteByConversation(ctx context.Context, conversationID string) error
}

type UserRepository interface {
	Upsert(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Search(ctx context.Context, query string) ([]*domain.User, error)
}
