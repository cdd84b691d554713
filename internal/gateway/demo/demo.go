// Package demo is a Gateway implementation backed by a local SQLite
// database. It exists so the console can be exercised, demoed, and tested
// without the remote chat API; it is selected by an explicit mode flag,
// never by fallback inside individual calls.
package demo

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/gigstage/console/chat-bridge/internal/domain"
	"github.com/gigstage/console/chat-bridge/internal/gateway"
	"github.com/gigstage/console/chat-bridge/internal/repository"
)

// Open opens (or creates) the demo database and migrates its schema.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL keeps the seed tool and the bridge from blocking each other.
	db.Exec("PRAGMA journal_mode=WAL")

	err = db.AutoMigrate(
		&repository.ConversationModel{},
		&repository.MessageModel{},
		&repository.UserModel{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

// Gateway serves the chat API contract from local storage.
type Gateway struct {
	convRepo repository.ConversationRepository
	msgRepo  repository.MessageRepository
	userRepo repository.UserRepository
	self     domain.Identity
}

var _ gateway.Gateway = (*Gateway)(nil)

func NewGateway(db *gorm.DB, self domain.Identity) *Gateway {
	return &Gateway{
		convRepo: repository.NewConversationRepository(db),
		msgRepo:  repository.NewMessageRepository(db),
		userRepo: repository.NewUserRepository(db),
		self:     self,
	}
}

func (g *Gateway) ListConversations(ctx context.Context, filters gateway.ListFilters) (*gateway.ConversationPage, error) {
	conversations, total, err := g.convRepo.List(ctx, repository.ListFilter{
		Search:      filters.Search,
		UnreadOnly:  filters.UnreadOnly,
		Participant: filters.Participant,
		Limit:       filters.Limit,
		Offset:      filters.Offset,
	})
	if err != nil {
		return nil, err
	}

	for _, conv := range conversations {
		last, err := g.msgRepo.LatestByConversation(ctx, conv.ID)
		if err != nil {
			return nil, err
		}
		conv.LastMessage = last
	}

	hasMore := filters.Limit > 0 && int64(filters.Offset+len(conversations)) < total
	return &gateway.ConversationPage{
		Conversations: conversations,
		Total:         int(total),
		HasMore:       hasMore,
	}, nil
}

func (g *Gateway) CreateConversation(ctx context.Context, participants []string, isGroup bool, groupName, groupAvatar string) (*domain.Conversation, error) {
	if len(participants) < 2 {
		return nil, fmt.Errorf("conversation needs at least two participants")
	}

	now := time.Now()
	conv := &domain.Conversation{
		ID:               uuid.NewString(),
		Participants:     participants,
		ParticipantNames: g.resolveNames(ctx, participants),
		IsGroup:          isGroup,
		GroupName:        groupName,
		GroupAvatar:      groupAvatar,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := g.convRepo.Upsert(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

func (g *Gateway) GetConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	conv, err := g.convRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, fmt.Errorf("conversation %s not found", id)
	}
	last, err := g.msgRepo.LatestByConversation(ctx, id)
	if err != nil {
		return nil, err
	}
	conv.LastMessage = last
	return conv, nil
}

func (g *Gateway) DeleteConversation(ctx context.Context, id string) error {
	if err := g.msgRepo.DeleteByConversation(ctx, id); err != nil {
		return err
	}
	return g.convRepo.Delete(ctx, id)
}

func (g *Gateway) MarkConversationRead(ctx context.Context, id string) error {
	if err := g.msgRepo.MarkConversationRead(ctx, id); err != nil {
		return err
	}
	return g.convRepo.SetUnreadCount(ctx, id, 0)
}

func (g *Gateway) ListMessages(ctx context.Context, conversationID string, limit, offset int) (*gateway.MessagePage, error) {
	conv, err := g.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, fmt.Errorf("conversation %s not found", conversationID)
	}

	if limit <= 0 {
		limit = 50
	}
	messages, err := g.msgRepo.GetByConversation(ctx, conversationID, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := g.msgRepo.CountByConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	return &gateway.MessagePage{
		Messages: messages,
		Total:    int(total),
		HasMore:  int64(offset+len(messages)) < total,
	}, nil
}

func (g *Gateway) SendMessage(ctx context.Context, conversationID string, out gateway.OutgoingMessage) (*domain.Message, error) {
	conv, err := g.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, fmt.Errorf("conversation %s not found", conversationID)
	}

	now := time.Now()
	msg := &domain.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		SenderID:       g.self.ID,
		SenderName:     g.self.Name,
		SenderEmail:    g.self.Email,
		Content:        out.Content,
		Type:           out.Type,
		FileURL:        out.FileURL,
		FileName:       out.FileName,
		FileSize:       out.FileSize,
		Status:         domain.StatusSent,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if msg.Type == "" {
		msg.Type = domain.MessageTypeText
	}
	if err := g.msgRepo.Create(ctx, msg); err != nil {
		return nil, err
	}
	if err := g.convRepo.Touch(ctx, conversationID, now); err != nil {
		return nil, err
	}
	return msg, nil
}

func (g *Gateway) EditMessage(ctx context.Context, conversationID, messageID, content string) (*domain.Message, error) {
	msg, err := g.msgRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg == nil || msg.ConversationID != conversationID {
		return nil, fmt.Errorf("message %s not found", messageID)
	}

	msg.Content = content
	msg.UpdatedAt = time.Now()
	if err := g.msgRepo.Update(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (g *Gateway) DeleteMessage(ctx context.Context, conversationID, messageID string) error {
	msg, err := g.msgRepo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if msg == nil || msg.ConversationID != conversationID {
		return fmt.Errorf("message %s not found", messageID)
	}
	return g.msgRepo.DeleteByID(ctx, messageID)
}

func (g *Gateway) MarkMessageRead(ctx context.Context, conversationID, messageID string) error {
	return g.msgRepo.UpdateReadStatus(ctx, []string{messageID}, true)
}

func (g *Gateway) Upload(ctx context.Context, conversationID, fileName string, r io.Reader) (*gateway.Attachment, error) {
	size, err := io.Copy(io.Discard, r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return &gateway.Attachment{
		FileURL:  "demo://files/" + uuid.NewString() + "/" + fileName,
		FileName: fileName,
		FileSize: size,
	}, nil
}

func (g *Gateway) CreateGroup(ctx context.Context, participants []string, groupName, groupAvatar string) (*domain.Conversation, error) {
	if strings.TrimSpace(groupName) == "" {
		return nil, fmt.Errorf("group name is required")
	}
	return g.CreateConversation(ctx, participants, true, groupName, groupAvatar)
}

func (g *Gateway) AddGroupParticipants(ctx context.Context, id string, participants []string) error {
	conv, err := g.convRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if conv == nil || !conv.IsGroup {
		return fmt.Errorf("group %s not found", id)
	}

	for _, p := range participants {
		if conv.HasParticipant(p) {
			continue
		}
		conv.Participants = append(conv.Participants, p)
		conv.ParticipantNames = append(conv.ParticipantNames, g.resolveName(ctx, p))
	}
	conv.UpdatedAt = time.Now()
	return g.convRepo.Upsert(ctx, conv)
}

func (g *Gateway) RemoveGroupParticipants(ctx context.Context, id string, participants []string) error {
	conv, err := g.convRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if conv == nil || !conv.IsGroup {
		return fmt.Errorf("group %s not found", id)
	}

	drop := make(map[string]bool, len(participants))
	for _, p := range participants {
		drop[strings.ToLower(p)] = true
	}

	var emails, names []string
	for i, p := range conv.Participants {
		if drop[strings.ToLower(p)] {
			continue
		}
		emails = append(emails, p)
		if i < len(conv.ParticipantNames) {
			names = append(names, conv.ParticipantNames[i])
		}
	}
	conv.Participants = emails
	conv.ParticipantNames = names
	conv.UpdatedAt = time.Now()
	return g.convRepo.Upsert(ctx, conv)
}

func (g *Gateway) SearchMessages(ctx context.Context, query, conversationID string) ([]*domain.Message, error) {
	return g.msgRepo.Search(ctx, query, conversationID, 50)
}

func (g *Gateway) AvailableUsers(ctx context.Context, search string) ([]*domain.User, error) {
	users, err := g.userRepo.Search(ctx, search)
	if err != nil {
		return nil, err
	}

	out := users[:0]
	for _, u := range users {
		if strings.EqualFold(u.Email, g.self.Email) {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (g *Gateway) resolveNames(ctx context.Context, emails []string) []string {
	names := make([]string, len(emails))
	for i, e := range emails {
		names[i] = g.resolveName(ctx, e)
	}
	return names
}

func (g *Gateway) resolveName(ctx context.Context, email string) string {
	if strings.EqualFold(email, g.self.Email) && g.self.Name != "" {
		return g.self.Name
	}
	if u, err := g.userRepo.GetByEmail(ctx, email); err == nil && u != nil {
		return u.Name
	}
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}
