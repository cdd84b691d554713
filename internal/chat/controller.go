// Package chat implements the conversation core of the GigStage admin
// console: one coherent view over the user's conversations and the
// selected conversation's messages, backed by a remote chat gateway.
package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gigstage/console/chat-bridge/internal/domain"
	"github.com/gigstage/console/chat-bridge/internal/gateway"
	"github.com/gigstage/console/chat-bridge/internal/store"
)

// DefaultPageSize is the message page size used by SelectConversation and
// FetchOlderMessages.
const DefaultPageSize = 50

// Errors holds the per-concern error strings surfaced to the presentation
// layer. An empty string means the last call of that kind succeeded.
type Errors struct {
	Conversations string
	Messages      string
	Send          string
	Mutation      string
}

func (e Errors) Any() bool {
	return e.Conversations != "" || e.Messages != "" || e.Send != "" || e.Mutation != ""
}

// Controller is the only component the presentation layer talks to. It owns
// the current-selection pointer and both stores; nothing else mutates them.
type Controller struct {
	gw   gateway.Gateway
	user domain.Identity
	bus  domain.EventBus
	log  zerolog.Logger

	conversations *store.ConversationStore
	messages      *store.MessageStore

	mu          sync.Mutex
	selectedID  string
	epoch       uint64
	cancelFetch context.CancelFunc
	hasMore     bool
	errs        Errors
}

func NewController(gw gateway.Gateway, user domain.Identity, bus domain.EventBus, log zerolog.Logger) *Controller {
	return &Controller{
		gw:            gw,
		user:          user,
		bus:           bus,
		log:           log,
		conversations: store.NewConversationStore(),
		messages:      store.NewMessageStore(),
	}
}

func (c *Controller) User() domain.Identity { return c.user }

func (c *Controller) Conversations() []*domain.Conversation { return c.conversations.All() }

func (c *Controller) Messages() []*domain.Message { return c.messages.All() }

// ConversationByID looks up a loaded conversation.
func (c *Controller) ConversationByID(id string) (*domain.Conversation, bool) {
	return c.conversations.Get(id)
}

func (c *Controller) Selected() *domain.Conversation {
	c.mu.Lock()
	id := c.selectedID
	c.mu.Unlock()
	if id == "" {
		return nil
	}
	conv, _ := c.conversations.Get(id)
	return conv
}

func (c *Controller) HasMoreMessages() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasMore
}

func (c *Controller) Errors() Errors {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errs
}

// ClearErrors resets all error flags without touching data.
func (c *Controller) ClearErrors() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = Errors{}
}

// Reset returns the controller to its initial empty state. Used on logout.
func (c *Controller) Reset() {
	c.mu.Lock()
	if c.cancelFetch != nil {
		c.cancelFetch()
		c.cancelFetch = nil
	}
	c.selectedID = ""
	c.epoch++
	c.hasMore = false
	c.errs = Errors{}
	c.mu.Unlock()

	c.conversations.Clear()
	c.messages.Clear()
}

// FetchConversations loads or replaces the conversation list from the
// gateway. On failure the list is emptied, never left silently stale.
func (c *Controller) FetchConversations(ctx context.Context, filters gateway.ListFilters) error {
	page, err := c.gw.ListConversations(ctx, filters)
	if err != nil {
		c.conversations.Clear()
		c.setErr(func(e *Errors) { e.Conversations = err.Error() }, "conversations", err)
		return err
	}

	c.conversations.ReplaceAll(page.Conversations)

	c.mu.Lock()
	c.errs.Conversations = ""
	selected := c.selectedID
	c.mu.Unlock()

	// The selected conversation is open, so it reads as caught up even if
	// the server has not applied the mark-read yet.
	if selected != "" {
		if conv, ok := c.conversations.Get(selected); ok && conv.UnreadCount > 0 {
			cc := conv.Clone()
			cc.UnreadCount = 0
			c.conversations.Update(cc)
		}
	}
	return nil
}

// SearchConversations narrows the conversation list by free text.
func (c *Controller) SearchConversations(ctx context.Context, query string) error {
	return c.FetchConversations(ctx, gateway.ListFilters{Search: strings.TrimSpace(query)})
}

// SelectConversation makes id the current selection: clears the message
// working set, optimistically zeroes the unread count, issues the gateway
// mark-read, and loads the first message page.
func (c *Controller) SelectConversation(ctx context.Context, id string) error {
	conv, ok := c.conversations.Get(id)
	if !ok {
		return fmt.Errorf("unknown conversation %q", id)
	}

	c.mu.Lock()
	if c.cancelFetch != nil {
		c.cancelFetch()
		c.cancelFetch = nil
	}
	c.selectedID = id
	c.epoch++
	c.hasMore = false
	c.mu.Unlock()

	c.messages.Clear()
	c.publish(domain.SelectionChangedEvent{ConversationID: id, EventTime: time.Now()})

	if conv.UnreadCount > 0 {
		cc := conv.Clone()
		cc.UnreadCount = 0
		c.conversations.Update(cc)
		// Eventually consistent: a failed mark-read is reconciled by the
		// next FetchConversations.
		if err := c.gw.MarkConversationRead(ctx, id); err != nil {
			c.log.Warn().Err(err).Str("conversation", id).Msg("mark read failed")
		}
	}

	return c.FetchMessages(ctx, id, DefaultPageSize, 0)
}

// MarkConversationAsRead zeroes the selected conversation's unread count
// locally and notifies the gateway. Idempotent; gateway failure is ignored.
func (c *Controller) MarkConversationAsRead(ctx context.Context) {
	c.mu.Lock()
	id := c.selectedID
	c.mu.Unlock()
	if id == "" {
		return
	}

	if conv, ok := c.conversations.Get(id); ok && conv.UnreadCount > 0 {
		cc := conv.Clone()
		cc.UnreadCount = 0
		c.conversations.Update(cc)
	}
	if err := c.gw.MarkConversationRead(ctx, id); err != nil {
		c.log.Warn().Err(err).Str("conversation", id).Msg("mark read failed")
	}
}

// CreateConversation asks the gateway for a new conversation and prepends
// the result. The current user is always among the participants. Returns
// nil on failure; the error is recorded, not thrown.
func (c *Controller) CreateConversation(ctx context.Context, participants []string, isGroup bool, groupName string) *domain.Conversation {
	participants = c.withSelf(participants)
	if len(participants) < 2 {
		return nil
	}

	conv, err := c.gw.CreateConversation(ctx, participants, isGroup, groupName, "")
	if err != nil {
		c.setErr(func(e *Errors) { e.Mutation = err.Error() }, "create conversation", err)
		return nil
	}

	c.conversations.Prepend(conv)
	c.mu.Lock()
	c.errs.Mutation = ""
	c.mu.Unlock()
	c.publish(domain.ConversationUpdatedEvent{Conversation: conv, EventTime: time.Now()})
	return conv
}

// CreateGroup is CreateConversation with isGroup set and a mandatory name.
func (c *Controller) CreateGroup(ctx context.Context, participants []string, groupName, groupAvatar string) *domain.Conversation {
	if strings.TrimSpace(groupName) == "" {
		return nil
	}
	participants = c.withSelf(participants)
	if len(participants) < 2 {
		return nil
	}

	conv, err := c.gw.CreateGroup(ctx, participants, groupName, groupAvatar)
	if err != nil {
		c.setErr(func(e *Errors) { e.Mutation = err.Error() }, "create group", err)
		return nil
	}

	c.conversations.Prepend(conv)
	c.mu.Lock()
	c.errs.Mutation = ""
	c.mu.Unlock()
	c.publish(domain.ConversationUpdatedEvent{Conversation: conv, EventTime: time.Now()})
	return conv
}

// DeleteConversation removes the conversation from the gateway and the
// list. If it was selected, selection and messages are cleared too.
func (c *Controller) DeleteConversation(ctx context.Context, id string) error {
	if err := c.gw.DeleteConversation(ctx, id); err != nil {
		c.setErr(func(e *Errors) { e.Mutation = err.Error() }, "delete conversation", err)
		return err
	}

	c.conversations.Remove(id)

	c.mu.Lock()
	wasSelected := c.selectedID == id
	if wasSelected {
		if c.cancelFetch != nil {
			c.cancelFetch()
			c.cancelFetch = nil
		}
		c.selectedID = ""
		c.epoch++
		c.hasMore = false
	}
	c.errs.Mutation = ""
	c.mu.Unlock()

	if wasSelected {
		c.messages.Clear()
		c.publish(domain.SelectionChangedEvent{ConversationID: "", EventTime: time.Now()})
	}
	return nil
}

// AddParticipantsToGroup adds members to the selected group conversation,
// then re-fetches it so the store holds the authoritative membership.
// No-op unless a group is selected.
func (c *Controller) AddParticipantsToGroup(ctx context.Context, participants []string) error {
	return c.changeGroupMembership(ctx, participants, c.gw.AddGroupParticipants)
}

// RemoveParticipantsFromGroup removes members from the selected group
// conversation. No-op unless a group is selected.
func (c *Controller) RemoveParticipantsFromGroup(ctx context.Context, participants []string) error {
	return c.changeGroupMembership(ctx, participants, c.gw.RemoveGroupParticipants)
}

func (c *Controller) changeGroupMembership(ctx context.Context, participants []string, op func(context.Context, string, []string) error) error {
	c.mu.Lock()
	id := c.selectedID
	c.mu.Unlock()

	if id == "" || len(participants) == 0 {
		return nil
	}
	conv, ok := c.conversations.Get(id)
	if !ok || !conv.IsGroup {
		return nil
	}

	if err := op(ctx, id, participants); err != nil {
		c.setErr(func(e *Errors) { e.Mutation = err.Error() }, "group membership", err)
		return err
	}

	fresh, err := c.gw.GetConversation(ctx, id)
	if err != nil {
		c.setErr(func(e *Errors) { e.Mutation = err.Error() }, "refresh conversation", err)
		return err
	}

	c.conversations.Update(fresh)
	c.mu.Lock()
	c.errs.Mutation = ""
	c.mu.Unlock()
	c.publish(domain.ConversationUpdatedEvent{Conversation: fresh, EventTime: time.Now()})
	return nil
}

// AvailableUsers lists marketplace accounts that can be added to a chat.
func (c *Controller) AvailableUsers(ctx context.Context, search string) ([]*domain.User, error) {
	return c.gw.AvailableUsers(ctx, search)
}

func (c *Controller) withSelf(participants []string) []string {
	out := make([]string, 0, len(participants)+1)
	seen := make(map[string]bool, len(participants)+1)
	for _, p := range append([]string{c.user.Email}, participants...) {
		p = strings.TrimSpace(p)
		if p == "" || seen[strings.ToLower(p)] {
			continue
		}
		seen[strings.ToLower(p)] = true
		out = append(out, p)
	}
	return out
}

func (c *Controller) setErr(set func(*Errors), scope string, err error) {
	c.mu.Lock()
	set(&c.errs)
	c.mu.Unlock()
	c.log.Error().Err(err).Str("scope", scope).Msg("gateway call failed")
	c.publish(domain.ErrorRaisedEvent{Scope: scope, Message: err.Error(), EventTime: time.Now()})
}

func (c *Controller) publish(e domain.Event) {
	if c.bus != nil {
		c.bus.Publish(e)
	}
}
