package mcp

import (
	"context"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gigstage/console/chat-bridge/internal/chat"
)

type ServerConfig struct {
	Address string
}

type Server struct {
	mcpServer  *server.MCPServer
	sseServer  *server.SSEServer
	httpServer *http.Server
	ctrl       *chat.Controller
	config     ServerConfig
}

func NewServer(ctrl *chat.Controller, config ServerConfig) *Server {
	s := &Server{
		ctrl:   ctrl,
		config: config,
	}

	s.mcpServer = server.NewMCPServer(
		"gigstage-chat-bridge",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s.registerTools()

	s.sseServer = server.NewSSEServer(s.mcpServer,
		server.WithKeepAliveInterval(30*time.Second),
	)

	return s
}

func (s *Server) registerTools() {
	// List conversations tool
	s.mcpServer.AddTool(
		mcp.NewTool("chat_list_conversations",
			mcp.WithDescription("List the signed-in user's conversations sorted by most recent activity"),
			mcp.WithString("search",
				mcp.Description("Filter conversations by participant name or group name"),
			),
			mcp.WithBoolean("unread_only",
				mcp.Description("Only return conversations with unread messages"),
			),
		),
		s.handleListConversations,
	)

	// Get messages tool
	s.mcpServer.AddTool(
		mcp.NewTool("chat_get_messages",
			mcp.WithDescription("Open a conversation and return its latest page of messages. Opening marks the conversation as read."),
			mcp.WithString("conversation_id",
				mcp.Required(),
				mcp.Description("ID of the conversation"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of messages to return (default 50, max 200)"),
			),
		),
		s.handleGetMessages,
	)

	// Load older messages tool
	s.mcpServer.AddTool(
		mcp.NewTool("chat_load_older_messages",
			mcp.WithDescription("Load an older page of messages into the open conversation"),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of messages to load (default 50, max 200)"),
			),
		),
		s.handleLoadOlderMessages,
	)

	// Send message tool
	s.mcpServer.AddTool(
		mcp.NewTool("chat_send_message",
			mcp.WithDescription("Send a text message to a conversation"),
			mcp.WithString("conversation_id",
				mcp.Required(),
				mcp.Description("ID of the conversation to send to"),
			),
			mcp.WithString("text",
				mcp.Required(),
				mcp.Description("Message text to send"),
			),
		),
		s.handleSendMessage,
	)

	// Edit message tool
	s.mcpServer.AddTool(
		mcp.NewTool("chat_edit_message",
			mcp.WithDescription("Edit a message in the open conversation"),
			mcp.WithString("message_id",
				mcp.Required(),
				mcp.Description("ID of the message to edit"),
			),
			mcp.WithString("text",
				mcp.Required(),
				mcp.Description("Replacement text"),
			),
		),
		s.handleEditMessage,
	)

	// Delete message tool
	s.mcpServer.AddTool(
		mcp.NewTool("chat_delete_message",
			mcp.WithDescription("Delete a message from the open conversation"),
			mcp.WithString("message_id",
				mcp.Required(),
				mcp.Description("ID of the message to delete"),
			),
		),
		s.handleDeleteMessage,
	)

	// Create conversation tool
	s.mcpServer.AddTool(
		mcp.NewTool("chat_create_conversation",
			mcp.WithDescription("Start a direct conversation with one or more users"),
			mcp.WithString("emails",
				mcp.Required(),
				mcp.Description("Comma-separated participant emails"),
			),
		),
		s.handleCreateConversation,
	)

	// Create group tool
	s.mcpServer.AddTool(
		mcp.NewTool("chat_create_group",
			mcp.WithDescription("Create a named group conversation"),
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("Group name"),
			),
			mcp.WithString("emails",
				mcp.Required(),
				mcp.Description("Comma-separated participant emails"),
			),
		),
		s.handleCreateGroup,
	)

	// Mark read tool
	s.mcpServer.AddTool(
		mcp.NewTool("chat_mark_read",
			mcp.WithDescription("Mark a conversation as read"),
			mcp.WithString("conversation_id",
				mcp.Required(),
				mcp.Description("ID of the conversation"),
			),
		),
		s.handleMarkRead,
	)

	// Search messages tool
	s.mcpServer.AddTool(
		mcp.NewTool("chat_search_messages",
			mcp.WithDescription("Search messages by text content, scoped to the open conversation when one is open"),
			mcp.WithString("query",
				mcp.Required(),
				mcp.Description("Search query text"),
			),
		),
		s.handleSearchMessages,
	)

	// List users tool
	s.mcpServer.AddTool(
		mcp.NewTool("chat_list_users",
			mcp.WithDescription("List marketplace users available for a new conversation"),
			mcp.WithString("search",
				mcp.Description("Filter users by name or email"),
			),
		),
		s.handleListUsers,
	)

	// Session status tool
	s.mcpServer.AddTool(
		mcp.NewTool("chat_session_status",
			mcp.WithDescription("Get the current chat session state"),
		),
		s.handleSessionStatus,
	)
}

func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.Handle("/sse", s.sseServer.SSEHandler())
	mux.Handle("/message", s.sseServer.MessageHandler())

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	s.httpServer = &http.Server{
		Addr:    s.config.Address,
		Handler: mux,
	}

	return s.httpServer.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
