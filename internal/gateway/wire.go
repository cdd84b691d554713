package gateway

import (
	"time"

	"github.com/gigstage/console/chat-bridge/internal/domain"
)

// Wire shapes for the chat gateway's JSON bodies.

type conversationJSON struct {
	ID               string       `json:"id"`
	Participants     []string     `json:"participants"`
	ParticipantNames []string     `json:"participantNames"`
	IsGroup          bool         `json:"isGroup"`
	GroupName        string       `json:"groupName,omitempty"`
	GroupAvatar      string       `json:"groupAvatar,omitempty"`
	LastMessage      *messageJSON `json:"lastMessage,omitempty"`
	UnreadCount      int          `json:"unreadCount"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`
}

type messageJSON struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	SenderName     string    `json:"senderName"`
	SenderEmail    string    `json:"senderEmail"`
	Content        string    `json:"content"`
	MessageType    string    `json:"messageType"`
	FileURL        string    `json:"fileUrl,omitempty"`
	FileName       string    `json:"fileName,omitempty"`
	FileSize       int64     `json:"fileSize,omitempty"`
	IsRead         bool      `json:"isRead"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type conversationListJSON struct {
	Conversations []conversationJSON `json:"conversations"`
	Total         int                `json:"total"`
	HasMore       bool               `json:"hasMore"`
}

type messageListJSON struct {
	Messages []messageJSON `json:"messages"`
	Total    int           `json:"total"`
	HasMore  bool          `json:"hasMore"`
}

type createConversationJSON struct {
	Participants []string `json:"participants"`
	IsGroup      bool     `json:"isGroup,omitempty"`
	GroupName    string   `json:"groupName,omitempty"`
	GroupAvatar  string   `json:"groupAvatar,omitempty"`
}

type createGroupJSON struct {
	Participants []string `json:"participants"`
	GroupName    string   `json:"groupName"`
	GroupAvatar  string   `json:"groupAvatar,omitempty"`
}

type sendMessageJSON struct {
	Content     string `json:"content"`
	MessageType string `json:"messageType,omitempty"`
	FileURL     string `json:"fileUrl,omitempty"`
	FileName    string `json:"fileName,omitempty"`
	FileSize    int64  `json:"fileSize,omitempty"`
}

type editMessageJSON struct {
	Content string `json:"content"`
}

type participantsJSON struct {
	Participants []string `json:"participants"`
}

type attachmentJSON struct {
	FileURL  string `json:"fileUrl"`
	FileName string `json:"fileName"`
	FileSize int64  `json:"fileSize"`
}

type userJSON struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

type usersListJSON struct {
	Users []userJSON `json:"users"`
}

type searchResultJSON struct {
	Messages []messageJSON `json:"messages"`
}

type errorJSON struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func conversationToDomain(c conversationJSON) *domain.Conversation {
	return &domain.Conversation{
		ID:               c.ID,
		Participants:     c.Participants,
		ParticipantNames: c.ParticipantNames,
		IsGroup:          c.IsGroup,
		GroupName:        c.GroupName,
		GroupAvatar:      c.GroupAvatar,
		LastMessage:      messageToDomain(c.LastMessage),
		UnreadCount:      c.UnreadCount,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

func messageToDomain(m *messageJSON) *domain.Message {
	if m == nil {
		return nil
	}
	return &domain.Message{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		SenderName:     m.SenderName,
		SenderEmail:    m.SenderEmail,
		Content:        m.Content,
		Type:           domain.MessageType(m.MessageType),
		FileURL:        m.FileURL,
		FileName:       m.FileName,
		FileSize:       m.FileSize,
		IsRead:         m.IsRead,
		Status:         domain.StatusSent,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func messagesToDomain(ms []messageJSON) []*domain.Message {
	out := make([]*domain.Message, len(ms))
	for i := range ms {
		out[i] = messageToDomain(&ms[i])
	}
	return out
}

func userToDomain(u userJSON) *domain.User {
	return &domain.User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
	}
}
