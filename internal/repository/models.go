package repository

import (
	"encoding/json"
	"time"

	"github.com/gigstage/console/chat-bridge/internal/domain"
)

type ConversationModel struct {
	ID               string    `gorm:"primaryKey;column:id"`
	Participants     string    `gorm:"column:participants"`
	ParticipantNames string    `gorm:"column:participant_names"`
	IsGroup          bool      `gorm:"column:is_group"`
	GroupName        string    `gorm:"column:group_name"`
	GroupAvatar      string    `gorm:"column:group_avatar"`
	UnreadCount      int       `gorm:"column:unread_count"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at;index"`
}

func (ConversationModel) TableName() string { return "conversations" }

type MessageModel struct {
	ID             string    `gorm:"primaryKey;column:id"`
	ConversationID string    `gorm:"column:conversation_id;index:idx_conv_created"`
	SenderID       string    `gorm:"column:sender_id"`
	SenderName     string    `gorm:"column:sender_name"`
	SenderEmail    string    `gorm:"column:sender_email"`
	Content        string    `gorm:"column:content"`
	Type           string    `gorm:"column:type"`
	FileURL        string    `gorm:"column:file_url"`
	FileName       string    `gorm:"column:file_name"`
	FileSize       int64     `gorm:"column:file_size"`
	IsRead         bool      `gorm:"column:is_read;index"`
	CreatedAt      time.Time `gorm:"column:created_at;index:idx_conv_created"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (MessageModel) TableName() string { return "messages" }

type UserModel struct {
	ID        string    `gorm:"primaryKey;column:id"`
	Name      string    `gorm:"column:name"`
	Email     string    `gorm:"column:email;uniqueIndex"`
	AvatarURL string    `gorm:"column:avatar_url"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (UserModel) TableName() string { return "users" }

// Participant lists are stored as JSON arrays in text columns; SQLite has
// no native array type and the lists are only ever read whole.
func encodeList(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func decodeList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil
	}
	return out
}

func ConversationDomainToModel(conv *domain.Conversation) *ConversationModel {
	if conv == nil {
		return nil
	}
	return &ConversationModel{
		ID:               conv.ID,
		Participants:     encodeList(conv.Participants),
		ParticipantNames: encodeList(conv.ParticipantNames),
		IsGroup:          conv.IsGroup,
		GroupName:        conv.GroupName,
		GroupAvatar:      conv.GroupAvatar,
		UnreadCount:      conv.UnreadCount,
		CreatedAt:        conv.CreatedAt,
		UpdatedAt:        conv.UpdatedAt,
	}
}

func ConversationModelToDomain(m *ConversationModel) *domain.Conversation {
	if m == nil {
		return nil
	}
	return &domain.Conversation{
		ID:               m.ID,
		Participants:     decodeList(m.Participants),
		ParticipantNames: decodeList(m.ParticipantNames),
		IsGroup:          m.IsGroup,
		GroupName:        m.GroupName,
		GroupAvatar:      m.GroupAvatar,
		UnreadCount:      m.UnreadCount,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func MessageDomainToModel(msg *domain.Message) *MessageModel {
	if msg == nil {
		return nil
	}
	return &MessageModel{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		SenderID:       msg.SenderID,
		SenderName:     msg.SenderName,
		SenderEmail:    msg.SenderEmail,
		Content:        msg.Content,
		Type:           string(msg.Type),
		FileURL:        msg.FileURL,
		FileName:       msg.FileName,
		FileSize:       msg.FileSize,
		IsRead:         msg.IsRead,
		CreatedAt:      msg.CreatedAt,
		UpdatedAt:      msg.UpdatedAt,
	}
}

func MessageModelToDomain(m *MessageModel) *domain.Message {
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
		Type:           domain.MessageType(m.Type),
		FileURL:        m.FileURL,
		FileName:       m.FileName,
		FileSize:       m.FileSize,
		IsRead:         m.IsRead,
		Status:         domain.StatusSent,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func UserDomainToModel(u *domain.User) *UserModel {
	if u == nil {
		return nil
	}
	return &UserModel{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
	}
}

func UserModelToDomain(m *UserModel) *domain.User {
	if m == nil {
		return nil
	}
	return &domain.User{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		AvatarURL: m.AvatarURL,
	}
}
