package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gigstage/console/chat-bridge/internal/domain"
)

// InteractiveCLI handles interactive command-line interface
type InteractiveCLI struct {
	handler *CommandHandler
	reader  *bufio.Reader
	writer  io.Writer
}

// NewInteractiveCLI creates a new interactive CLI
func NewInteractiveCLI(handler *CommandHandler) *InteractiveCLI {
	return &InteractiveCLI{
		handler: handler,
		reader:  bufio.NewReader(os.Stdin),
		writer:  os.Stdout,
	}
}

// Run starts the interactive CLI loop
func (cli *InteractiveCLI) Run(ctx context.Context) error {
	cli.printWelcome()

	// Subscribe to events in background
	eventChan := cli.handler.SubscribeEvents([]domain.EventType{
		domain.EventTypeMessageSent,
		domain.EventTypeMessageFailed,
		domain.EventTypeErrorRaised,
	})

	go cli.handleEvents(eventChan)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			cli.print("\n> ")
			line, err := cli.reader.ReadString('\n')
			if err != nil {
				if err == io.EOF {
					return nil
				}
				return err
			}

			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			if err := cli.processCommand(ctx, line); err != nil {
				if err.Error() == "quit" {
					cli.println("Goodbye!")
					return nil
				}
				cli.printf("Error: %s\n", err)
			}
		}
	}
}

func (cli *InteractiveCLI) printWelcome() {
	cli.println("===========================================")
	cli.println("  GigStage Chat Bridge CLI")
	cli.println("===========================================")
	cli.println("Type /help for available commands")
	cli.println("")

	status, _ := cli.handler.cmdStatus()
	if s, ok := status.(SessionStatus); ok {
		cli.printf("Signed in as: %s\n", s.User)
	}
}

func (cli *InteractiveCLI) processCommand(ctx context.Context, input string) error {
	cmd, err := ParseCommand(input)
	if err != nil {
		return err
	}

	result, err := cli.handler.Execute(ctx, cmd)
	if err != nil {
		return err
	}

	// Check for quit command
	if m, ok := result.(map[string]bool); ok && m["quit"] {
		return fmt.Errorf("quit")
	}

	// Format and display result
	cli.displayResult(cmd.Name, result)
	return nil
}

func (cli *InteractiveCLI) displayResult(cmdName string, result interface{}) {
	switch cmdName {
	case "help", "h":
		if m, ok := result.(map[string]string); ok {
			cli.println(m["help"])
		}

	case "status", "s":
		if s, ok := result.(SessionStatus); ok {
			cli.printf("User: %s\n", s.User)
			if s.Selected != "" {
				cli.printf("  Open conversation: %s\n", s.Selected)
			}
			cli.printf("  Conversations loaded: %d\n", s.Conversations)
			cli.printf("  Messages loaded: %d\n", s.Messages)
			cli.printf("  Errors pending: %v\n", s.Errors)
		}

	case "conversations", "ls", "unread":
		if m, ok := result.(map[string]interface{}); ok {
			conversations, _ := m["conversations"].([]ConversationInfo)
			cli.printf("Found %d conversation(s):\n\n", len(conversations))
			for i, conv := range conversations {
				unread := ""
				if conv.UnreadCount > 0 {
					unread = fmt.Sprintf(" [%d unread]", conv.UnreadCount)
				}
				kind := "direct"
				if conv.IsGroup {
					kind = "group"
				}
				cli.printf("%d. %s (%s)%s\n", i+1, conv.Name, kind, unread)
				cli.printf("   ID: %s\n", conv.ID)
				if conv.LastMessage != "" {
					preview := conv.LastMessage
					if len(preview) > 50 {
						preview = preview[:50] + "..."
					}
					cli.printf("   Last: %s\n", preview)
				}
			}
		}

	case "open", "o", "messages", "msg", "more":
		if m, ok := result.(map[string]interface{}); ok {
			messages, _ := m["messages"].([]MessageInfo)
			cli.printf("Showing %d message(s):\n\n", len(messages))
			for _, msg := range messages {
				timestamp := msg.CreatedAt.Format("2006-01-02 15:04")
				flags := ""
				if msg.Status != string(domain.StatusSent) {
					flags = " (" + msg.Status + ")"
				}
				if msg.Edited {
					flags += " (edited)"
				}
				cli.printf("[%s] %s%s:\n", timestamp, msg.Sender, flags)
				if msg.Content != "" {
					cli.printf("  %s\n", msg.Content)
				} else {
					cli.printf("  [%s] %s\n", msg.Type, msg.FileName)
				}
				cli.printf("  ID: %s\n\n", msg.ID)
			}
			if hasMore, _ := m["has_more"].(bool); hasMore {
				cli.println("Older messages available, use /more")
			}
		}

	case "send", "attach":
		if msg, ok := result.(MessageInfo); ok {
			cli.printf("Message sent!\n")
			cli.printf("  ID: %s\n", msg.ID)
			cli.printf("  Time: %s\n", msg.CreatedAt.Format("2006-01-02 15:04:05"))
		}

	case "search":
		if m, ok := result.(map[string]interface{}); ok {
			query, _ := m["query"].(string)
			messages, _ := m["messages"].([]MessageInfo)
			cli.printf("Search results for '%s' (%d found):\n\n", query, len(messages))
			for i, msg := range messages {
				cli.printf("%d. [%s] %s:\n", i+1, msg.CreatedAt.Format("2006-01-02 15:04"), msg.Sender)
				text := msg.Content
				if len(text) > 80 {
					text = text[:80] + "..."
				}
				cli.printf("   %s\n", text)
				cli.printf("   Conversation: %s | ID: %s\n\n", msg.Conversation, msg.ID)
			}
		}

	case "users":
		if m, ok := result.(map[string]interface{}); ok {
			users, _ := m["users"].([]UserInfo)
			cli.printf("Found %d user(s):\n\n", len(users))
			for i, u := range users {
				cli.printf("%d. %s <%s>\n", i+1, u.Name, u.Email)
			}
		}

	default:
		// Generic JSON output for other commands
		if m, ok := result.(map[string]string); ok {
			if msg, exists := m["message"]; exists {
				cli.println(msg)
				return
			}
		}
		// Pretty print JSON
		data, _ := json.MarshalIndent(result, "", "  ")
		cli.println(string(data))
	}
}

func (cli *InteractiveCLI) handleEvents(eventChan <-chan Event) {
	for event := range eventChan {
		switch event.Type {
		case "message_failed":
			if data, ok := event.Data.(map[string]interface{}); ok {
				reason, _ := data["reason"].(string)
				cli.printf("\n[Send failed: %s]\n", reason)
				cli.print("> ")
			}
		case "error":
			if data, ok := event.Data.(map[string]string); ok {
				cli.printf("\n[%s error: %s]\n", data["scope"], data["message"])
				cli.print("> ")
			}
		}
	}
}

func (cli *InteractiveCLI) print(s string) {
	fmt.Fprint(cli.writer, s)
}

func (cli *InteractiveCLI) println(s string) {
	fmt.Fprintln(cli.writer, s)
}

func (cli *InteractiveCLI) printf(format string, args ...interface{}) {
	fmt.Fprintf(cli.writer, format, args...)
}
