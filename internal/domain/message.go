package domain

import "time"

type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeImage MessageType = "image"
	MessageTypeFile  MessageType = "file"
	MessageTypeAudio MessageType = "audio"
)

// DeliveryStatus tracks an outgoing message through the optimistic send
// path. Messages loaded from the gateway are always StatusSent.
type DeliveryStatus string

const (
	StatusPending DeliveryStatus = "pending"
	StatusSent    DeliveryStatus = "sent"
	StatusFailed  DeliveryStatus = "failed"
)

type Message struct {
	ID             string
	ConversationID string
	SenderID       string
	SenderName     string
	SenderEmail    string
	Content        string
	Type           MessageType
	FileURL        string
	FileName       string
	FileSize       int64
	IsRead         bool
	Status         DeliveryStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func NewTextMessage(id, conversationID string, sender Identity, content string, at time.Time) *Message {
	return &Message{
		ID:             id,
		ConversationID: conversationID,
		SenderID:       sender.ID,
		SenderName:     sender.Name,
		SenderEmail:    sender.Email,
		Content:        content,
		Type:           MessageTypeText,
		Status:         StatusSent,
		CreatedAt:      at,
		UpdatedAt:      at,
	}
}

// Edited reports whether the message content was changed after sending.
func (m *Message) Edited() bool {
	return !m.UpdatedAt.IsZero() && m.UpdatedAt.After(m.CreatedAt)
}

// Preview returns the text shown in a conversation list entry.
func (m *Message) Preview() string {
	if m == nil {
		return ""
	}
	if m.Type == MessageTypeText || m.Content != "" {
		return m.Content
	}
	return "[" + string(m.Type) + "]"
}

// Identity is the authenticated console user on whose behalf the bridge
// operates. It is injected at construction, never read from ambient state.
type Identity struct {
	ID    string
	Name  string
	Email string
}

// User is a marketplace account that can be offered as a new-chat target.
type User struct {
	ID        string
	Name      string
	Email     string
	AvatarURL string
}
