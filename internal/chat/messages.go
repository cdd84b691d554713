package chat

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gigstage/console/chat-bridge/internal/domain"
	"github.com/gigstage/console/chat-bridge/internal/gateway"
)

// FetchMessages loads one page of the selected conversation's history.
// offset 0 replaces the working set; offset > 0 prepends the older page in
// front of what is already loaded. Responses issued for a superseded
// selection are discarded.
func (c *Controller) FetchMessages(ctx context.Context, conversationID string, limit, offset int) error {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	c.mu.Lock()
	if c.selectedID != conversationID {
		c.mu.Unlock()
		return nil
	}
	epoch := c.epoch
	fctx, cancel := context.WithCancel(ctx)
	c.cancelFetch = cancel
	c.mu.Unlock()

	page, err := c.gw.ListMessages(fctx, conversationID, limit, offset)
	cancel()

	c.mu.Lock()
	if c.epoch != epoch || c.selectedID != conversationID {
		// Selection moved on while this page was in flight.
		c.mu.Unlock()
		return nil
	}

	if err != nil {
		c.errs.Messages = err.Error()
		c.mu.Unlock()
		if offset == 0 {
			c.messages.Clear()
		}
		c.log.Error().Err(err).Str("conversation", conversationID).Msg("fetch messages failed")
		c.publish(domain.ErrorRaisedEvent{Scope: "messages", Message: err.Error(), EventTime: time.Now()})
		return err
	}

	c.errs.Messages = ""
	c.hasMore = page.HasMore
	c.mu.Unlock()

	// The gateway pages newest-first; the store keeps ascending time.
	asc := make([]*domain.Message, len(page.Messages))
	for i, m := range page.Messages {
		asc[len(asc)-1-i] = m
	}
	if offset == 0 {
		c.messages.ReplaceAll(asc)
	} else {
		c.messages.PrependPage(asc)
	}
	return nil
}

// FetchOlderMessages pages backwards from what is already loaded.
func (c *Controller) FetchOlderMessages(ctx context.Context, limit int) error {
	c.mu.Lock()
	id := c.selectedID
	hasMore := c.hasMore
	c.mu.Unlock()

	if id == "" || !hasMore {
		return nil
	}
	return c.FetchMessages(ctx, id, limit, c.messages.Len())
}

// SendMessage sends trimmed content to the selected conversation. The send
// is optimistic: a pending local record is appended immediately and
// reconciled with the gateway's authoritative message on success, or marked
// failed on error so the caller can tell a confirmed send from a local
// placeholder. Returns nil without error when there is no selection or the
// content is empty.
func (c *Controller) SendMessage(ctx context.Context, content string, msgType domain.MessageType, att *gateway.Attachment) *domain.Message {
	content = strings.TrimSpace(content)

	c.mu.Lock()
	conversationID := c.selectedID
	c.mu.Unlock()
	if content == "" || conversationID == "" {
		return nil
	}

	if msgType == "" {
		msgType = domain.MessageTypeText
	}

	now := time.Now()
	local := &domain.Message{
		ID:             "local-" + uuid.NewString(),
		ConversationID: conversationID,
		SenderID:       c.user.ID,
		SenderName:     c.user.Name,
		SenderEmail:    c.user.Email,
		Content:        content,
		Type:           msgType,
		Status:         domain.StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	out := gateway.OutgoingMessage{Content: content, Type: msgType}
	if att != nil {
		local.FileURL, local.FileName, local.FileSize = att.FileURL, att.FileName, att.FileSize
		out.FileURL, out.FileName, out.FileSize = att.FileURL, att.FileName, att.FileSize
	}
	c.messages.Append(local)

	sent, err := c.gw.SendMessage(ctx, conversationID, out)

	c.mu.Lock()
	stillSelected := c.selectedID == conversationID
	c.mu.Unlock()

	if err != nil {
		failed := *local
		failed.Status = domain.StatusFailed
		if stillSelected {
			c.messages.Update(&failed)
		}
		c.setErr(func(e *Errors) { e.Send = err.Error() }, "send", err)
		c.publish(domain.MessageFailedEvent{Message: &failed, Reason: err.Error(), EventTime: time.Now()})
		return &failed
	}

	c.mu.Lock()
	c.errs.Send = ""
	c.mu.Unlock()

	if stillSelected {
		c.messages.Reconcile(local.ID, sent)
	}
	c.bumpLastMessage(conversationID, sent)
	c.publish(domain.MessageSentEvent{Message: sent, EventTime: time.Now()})
	return sent
}

// EditMessage replaces a message's content in place. Empty content is a
// silent no-op. Messages that never reached the gateway are edited locally.
func (c *Controller) EditMessage(ctx context.Context, id, content string) error {
	content = strings.TrimSpace(content)

	c.mu.Lock()
	conversationID := c.selectedID
	c.mu.Unlock()

	m, ok := c.messages.Get(id)
	if content == "" || conversationID == "" || !ok {
		return nil
	}

	if m.Status != domain.StatusSent {
		mm := *m
		mm.Content = content
		mm.UpdatedAt = time.Now()
		c.messages.Update(&mm)
		return nil
	}

	updated, err := c.gw.EditMessage(ctx, conversationID, id, content)
	if err != nil {
		c.setErr(func(e *Errors) { e.Mutation = err.Error() }, "edit message", err)
		return err
	}

	c.messages.Update(updated)
	c.mu.Lock()
	c.errs.Mutation = ""
	c.mu.Unlock()

	// Keep the list preview in sync when the newest message was edited.
	if conv, ok := c.conversations.Get(conversationID); ok &&
		conv.LastMessage != nil && conv.LastMessage.ID == id {
		cc := conv.Clone()
		cc.LastMessage = updated
		c.conversations.Update(cc)
	}
	return nil
}

// DeleteMessage removes a message after the gateway confirms; there is no
// optimistic removal for confirmed sends. Local-only records (pending or
// failed) are simply dropped.
func (c *Controller) DeleteMessage(ctx context.Context, id string) error {
	c.mu.Lock()
	conversationID := c.selectedID
	c.mu.Unlock()

	m, ok := c.messages.Get(id)
	if conversationID == "" || !ok {
		return nil
	}

	if m.Status == domain.StatusSent {
		if err := c.gw.DeleteMessage(ctx, conversationID, id); err != nil {
			c.setErr(func(e *Errors) { e.Mutation = err.Error() }, "delete message", err)
			return err
		}
	}

	c.messages.Remove(id)
	c.mu.Lock()
	c.errs.Mutation = ""
	c.mu.Unlock()
	c.publish(domain.MessageDeletedEvent{ConversationID: conversationID, MessageID: id, EventTime: time.Now()})
	return nil
}

// MarkMessageRead flags one loaded message as read, locally and at the
// gateway. Already-read messages and missing ids are silent no-ops; records
// the gateway never confirmed are only flipped locally.
func (c *Controller) MarkMessageRead(ctx context.Context, id string) error {
	c.mu.Lock()
	conversationID := c.selectedID
	c.mu.Unlock()

	m, ok := c.messages.Get(id)
	if conversationID == "" || !ok || m.IsRead {
		return nil
	}

	if m.Status == domain.StatusSent {
		if err := c.gw.MarkMessageRead(ctx, conversationID, id); err != nil {
			c.setErr(func(e *Errors) { e.Mutation = err.Error() }, "mark message read", err)
			return err
		}
	}

	mm := *m
	mm.IsRead = true
	c.messages.Update(&mm)
	return nil
}

// UploadFile stores an attachment with the gateway, scoped to the selected
// conversation. It does not send a message; the caller composes a follow-up
// SendMessage with the returned attachment. Returns nil on failure or when
// nothing is selected.
func (c *Controller) UploadFile(ctx context.Context, fileName string, r io.Reader) *gateway.Attachment {
	c.mu.Lock()
	conversationID := c.selectedID
	c.mu.Unlock()
	if conversationID == "" {
		return nil
	}

	att, err := c.gw.Upload(ctx, conversationID, fileName, r)
	if err != nil {
		c.setErr(func(e *Errors) { e.Mutation = err.Error() }, "upload", err)
		return nil
	}
	return att
}

// SearchMessages searches message content, scoped to the selected
// conversation when one is open.
func (c *Controller) SearchMessages(ctx context.Context, query string) ([]*domain.Message, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	c.mu.Lock()
	conversationID := c.selectedID
	c.mu.Unlock()

	return c.gw.SearchMessages(ctx, query, conversationID)
}

func (c *Controller) bumpLastMessage(conversationID string, m *domain.Message) {
	conv, ok := c.conversations.Get(conversationID)
	if !ok {
		return
	}
	cc := conv.Clone()
	cc.LastMessage = m
	cc.UpdatedAt = m.CreatedAt
	c.conversations.Update(cc)
	c.publish(domain.ConversationUpdatedEvent{Conversation: cc, EventTime: time.Now()})
}
