package cli

import "time"

// Mode represents the CLI operation mode
type Mode string

const (
	ModeInteractive Mode = "interactive"
	ModeHeadless    Mode = "headless"
)

// Request represents a JSON request in headless mode
type Request struct {
	ID      string                 `json:"id,omitempty"`
	Command string                 `json:"command"`
	Params  map[string]interface{} `json:"params,omitempty"`
}

// Response represents a JSON response in headless mode
type Response struct {
	ID      string      `json:"id,omitempty"`
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Event represents a real-time event in headless mode
type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// ConversationInfo represents conversation information for responses
type ConversationInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	IsGroup     bool      `json:"is_group"`
	Members     []string  `json:"members"`
	UnreadCount int       `json:"unread_count"`
	LastMessage string    `json:"last_message,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// MessageInfo represents message information for responses
type MessageInfo struct {
	ID           string    `json:"id"`
	Conversation string    `json:"conversation_id"`
	Sender       string    `json:"sender"`
	SenderEmail  string    `json:"sender_email"`
	Type         string    `json:"type"`
	Content      string    `json:"content"`
	FileName     string    `json:"file_name,omitempty"`
	Status       string    `json:"status"`
	Edited       bool      `json:"edited,omitempty"`
	IsRead       bool      `json:"is_read"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserInfo represents an available chat target for responses
type UserInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SessionStatus represents the controller state for responses
type SessionStatus struct {
	User          string `json:"user"`
	Selected      string `json:"selected,omitempty"`
	Conversations int    `json:"conversations"`
	Messages      int    `json:"messages"`
	HasMore       bool   `json:"has_more"`
	Errors        bool   `json:"errors"`
}
