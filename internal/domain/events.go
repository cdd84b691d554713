package domain

import (
	"sync"
	"time"
)

type EventType string

const (
	EventTypeMessageSent         EventType = "message.sent"
	EventTypeMessageFailed       EventType = "message.failed"
	EventTypeMessageDeleted      EventType = "message.deleted"
	EventTypeConversationUpdated EventType = "conversation.updated"
	EventTypeSelectionChanged    EventType = "selection.changed"
	EventTypeErrorRaised         EventType = "error.raised"
)

type Event interface {
	Type() EventType
	Timestamp() time.Time
}

type MessageSentEvent struct {
	Message   *Message
	EventTime time.Time
}

func (e MessageSentEvent) Type() EventType      { return EventTypeMessageSent }
func (e MessageSentEvent) Timestamp() time.Time { return e.EventTime }

type MessageFailedEvent struct {
	Message   *Message
	Reason    string
	EventTime time.Time
}

func (e MessageFailedEvent) Type() EventType      { return EventTypeMessageFailed }
func (e MessageFailedEvent) Timestamp() time.Time { return e.EventTime }

type MessageDeletedEvent struct {
	ConversationID string
	MessageID      string
	EventTime      time.Time
}

func (e MessageDeletedEvent) Type() EventType      { return EventTypeMessageDeleted }
func (e MessageDeletedEvent) Timestamp() time.Time { return e.EventTime }

type ConversationUpdatedEvent struct {
	Conversation *Conversation
	EventTime    time.Time
}

func (e ConversationUpdatedEvent) Type() EventType      { return EventTypeConversationUpdated }
func (e ConversationUpdatedEvent) Timestamp() time.Time { return e.EventTime }

type SelectionChangedEvent struct {
	ConversationID string
	EventTime      time.Time
}

func (e SelectionChangedEvent) Type() EventType      { return EventTypeSelectionChanged }
func (e SelectionChangedEvent) Timestamp() time.Time { return e.EventTime }

type ErrorRaisedEvent struct {
	Scope     string
	Message   string
	EventTime time.Time
}

func (e ErrorRaisedEvent) Type() EventType      { return EventTypeErrorRaised }
func (e ErrorRaisedEvent) Timestamp() time.Time { return e.EventTime }

// EventBus provides pub/sub for domain events
type EventBus interface {
	Publish(event Event)
	Subscribe(eventTypes []EventType) <-chan Event
	Unsubscribe(ch <-chan Event)
}

// SimpleEventBus is a basic in-memory implementation of EventBus
type SimpleEventBus struct {
	mu          sync.RWMutex
	subscribers map[<-chan Event]subscription
}

type subscription struct {
	ch         chan Event
	eventTypes map[EventType]bool
}

func NewEventBus() *SimpleEventBus {
	return &SimpleEventBus{
		subscribers: make(map[<-chan Event]subscription),
	}
}

func (b *SimpleEventBus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subscribers {
		if len(sub.eventTypes) == 0 || sub.eventTypes[event.Type()] {
			select {
			case sub.ch <- event:
			default:
				// Channel full, skip this subscriber
			}
		}
	}
}

func (b *SimpleEventBus) Subscribe(eventTypes []EventType) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, 100)
	typeMap := make(map[EventType]bool)
	for _, t := range eventTypes {
		typeMap[t] = true
	}

	b.subscribers[ch] = subscription{
		ch:         ch,
		eventTypes: typeMap,
	}

	return ch
}

func (b *SimpleEventBus) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sub, ok := b.subscribers[ch]; ok {
		close(sub.ch)
		delete(b.subscribers, ch)
	}
}
