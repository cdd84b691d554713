package domain

import (
	"strings"
	"time"
)

// Conversation is a participant set plus unread/preview metadata for one
// thread. Participants and ParticipantNames are positionally aligned.
type Conversation struct {
	ID               string
	Participants     []string
	ParticipantNames []string
	IsGroup          bool
	GroupName        string
	GroupAvatar      string
	LastMessage      *Message
	UnreadCount      int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func NewDirectConversation(id string, participants, names []string) *Conversation {
	return &Conversation{
		ID:               id,
		Participants:     participants,
		ParticipantNames: names,
	}
}

func NewGroupConversation(id, groupName string, participants, names []string) *Conversation {
	return &Conversation{
		ID:               id,
		IsGroup:          true,
		GroupName:        groupName,
		Participants:     participants,
		ParticipantNames: names,
	}
}

// DisplayName returns the group name for groups, otherwise the name of the
// first participant who is not the given user.
func (c *Conversation) DisplayName(selfEmail string) string {
	if c == nil {
		return ""
	}
	if c.IsGroup {
		return c.GroupName
	}
	for i, p := range c.Participants {
		if !strings.EqualFold(p, selfEmail) && i < len(c.ParticipantNames) {
			return c.ParticipantNames[i]
		}
	}
	if len(c.ParticipantNames) > 0 {
		return c.ParticipantNames[0]
	}
	return c.ID
}

// HasParticipant reports whether email is a member of the conversation.
func (c *Conversation) HasParticipant(email string) bool {
	for _, p := range c.Participants {
		if strings.EqualFold(p, email) {
			return true
		}
	}
	return false
}

// Clone returns a shallow copy with its own participant slices, so callers
// can hand conversations across the store boundary without aliasing.
func (c *Conversation) Clone() *Conversation {
	if c == nil {
		return nil
	}
	out := *c
	out.Participants = append([]string(nil), c.Participants...)
	out.ParticipantNames = append([]string(nil), c.ParticipantNames...)
	return &out
}
