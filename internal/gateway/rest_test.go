package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gigstage/console/chat-bridge/internal/domain"
)

func TestListConversations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/chat/conversations" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("unexpected auth header: %q", got)
		}
		q := r.URL.Query()
		if q.Get("search") != "mia" || q.Get("unreadOnly") != "true" || q.Get("limit") != "25" {
			t.Errorf("unexpected query: %v", q)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"conversations": [{
				"id": "conv-1",
				"participants": ["admin@gigstage.io", "mia.torres@gigstage.io"],
				"participantNames": ["Admin", "Mia Torres"],
				"isGroup": false,
				"unreadCount": 2,
				"lastMessage": {
					"id": "msg-9",
					"conversationId": "conv-1",
					"senderEmail": "mia.torres@gigstage.io",
					"content": "see you at soundcheck",
					"messageType": "text",
					"createdAt": "2025-08-20T12:00:00Z",
					"updatedAt": "2025-08-20T12:00:00Z"
				}
			}],
			"total": 1,
			"hasMore": false
		}`))
	}))
	defer srv.Close()

	g := NewRESTGateway(srv.URL, "tok-123")
	page, err := g.ListConversations(context.Background(), ListFilters{Search: "mia", UnreadOnly: true, Limit: 25})
	if err != nil {
		t.Fatalf("ListConversations: %v", err)
	}
	if page.Total != 1 || len(page.Conversations) != 1 {
		t.Fatalf("unexpected page: %+v", page)
	}

	conv := page.Conversations[0]
	if conv.ID != "conv-1" || conv.UnreadCount != 2 {
		t.Errorf("unexpected conversation: %+v", conv)
	}
	if len(conv.Participants) != len(conv.ParticipantNames) {
		t.Error("participants and names must stay aligned")
	}
	if conv.LastMessage == nil || conv.LastMessage.Content != "see you at soundcheck" {
		t.Errorf("last message not decoded: %+v", conv.LastMessage)
	}
	if conv.LastMessage.Status != domain.StatusSent {
		t.Error("server messages must come back with sent status")
	}
}

func TestListMessagesQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/conversations/conv-1/messages" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("limit") != "20" || q.Get("offset") != "40" {
			t.Errorf("unexpected query: %v", q)
		}
		w.Write([]byte(`{"messages": [], "total": 60, "hasMore": true}`))
	}))
	defer srv.Close()

	g := NewRESTGateway(srv.URL, "")
	page, err := g.ListMessages(context.Background(), "conv-1", 20, 40)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if page.Total != 60 || !page.HasMore {
		t.Errorf("unexpected page: %+v", page)
	}
}

func TestSendMessageBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/chat/conversations/conv-1/messages" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type: %q", ct)
		}

		var body map[string]interface{}
		if err := jsonDecode(r, &body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["content"] != "hello" || body["messageType"] != "text" {
			t.Errorf("unexpected body: %v", body)
		}

		w.Write([]byte(`{
			"id": "srv-1",
			"conversationId": "conv-1",
			"senderEmail": "admin@gigstage.io",
			"content": "hello",
			"messageType": "text",
			"createdAt": "2025-08-20T12:00:00Z",
			"updatedAt": "2025-08-20T12:00:00Z"
		}`))
	}))
	defer srv.Close()

	g := NewRESTGateway(srv.URL, "")
	msg, err := g.SendMessage(context.Background(), "conv-1", OutgoingMessage{Content: "hello", Type: domain.MessageTypeText})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if msg.ID != "srv-1" || msg.Status != domain.StatusSent {
		t.Errorf("unexpected message: %+v", msg)
	}
}

func TestEditAndDeleteMessageRoutes(t *testing.T) {
	var gotMethods []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/conversations/conv-1/messages/msg-1" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		gotMethods = append(gotMethods, r.Method)
		if r.Method == http.MethodPut {
			w.Write([]byte(`{"id": "msg-1", "conversationId": "conv-1", "content": "fixed", "messageType": "text"}`))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	g := NewRESTGateway(srv.URL, "")
	ctx := context.Background()

	msg, err := g.EditMessage(ctx, "conv-1", "msg-1", "fixed")
	if err != nil {
		t.Fatalf("EditMessage: %v", err)
	}
	if msg.Content != "fixed" {
		t.Errorf("unexpected content: %q", msg.Content)
	}

	if err := g.DeleteMessage(ctx, "conv-1", "msg-1"); err != nil {
		t.Fatalf("DeleteMessage: %v", err)
	}

	if len(gotMethods) != 2 || gotMethods[0] != http.MethodPut || gotMethods[1] != http.MethodDelete {
		t.Errorf("unexpected methods: %v", gotMethods)
	}
}

func TestMarkConversationRead(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/chat/conversations/conv-1/read" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	g := NewRESTGateway(srv.URL, "")
	if err := g.MarkConversationRead(context.Background(), "conv-1"); err != nil {
		t.Fatalf("MarkConversationRead: %v", err)
	}
}

func TestUploadMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/chat/upload" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("conversationId"); got != "conv-1" {
			t.Errorf("unexpected conversationId: %q", got)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer file.Close()
		if header.Filename != "rider.pdf" {
			t.Errorf("unexpected file name: %q", header.Filename)
		}

		w.Write([]byte(`{"fileUrl": "https://cdn.gigstage.io/rider.pdf", "fileName": "rider.pdf", "fileSize": 11}`))
	}))
	defer srv.Close()

	g := NewRESTGateway(srv.URL, "")
	att, err := g.Upload(context.Background(), "conv-1", "rider.pdf", strings.NewReader("pdf content"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if att.FileURL != "https://cdn.gigstage.io/rider.pdf" || att.FileSize != 11 {
		t.Errorf("unexpected attachment: %+v", att)
	}
}

func TestSearchMessagesScoping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("query") != "soundcheck" || q.Get("conversationId") != "conv-1" {
			t.Errorf("unexpected query: %v", q)
		}
		w.Write([]byte(`{"messages": [{"id": "msg-1", "conversationId": "conv-1", "content": "soundcheck at 5", "messageType": "text"}]}`))
	}))
	defer srv.Close()

	g := NewRESTGateway(srv.URL, "")
	messages, err := g.SearchMessages(context.Background(), "soundcheck", "conv-1")
	if err != nil {
		t.Fatalf("SearchMessages: %v", err)
	}
	if len(messages) != 1 || messages[0].Content != "soundcheck at 5" {
		t.Errorf("unexpected result: %+v", messages)
	}
}

func TestErrorBodySurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": "not a participant"}`))
	}))
	defer srv.Close()

	g := NewRESTGateway(srv.URL, "")
	_, err := g.ListConversations(context.Background(), ListFilters{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "not a participant") || !strings.Contains(err.Error(), "403") {
		t.Errorf("error should carry the server message and status, got %q", err)
	}
}

func TestErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	g := NewRESTGateway(srv.URL, "")
	if err := g.MarkConversationRead(context.Background(), "conv-1"); err == nil {
		t.Fatal("expected error")
	} else if !strings.Contains(err.Error(), "502") {
		t.Errorf("error should carry the status, got %q", err)
	}
}

func TestNoAuthHeaderWithoutToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("expected no auth header, got %q", got)
		}
		w.Write([]byte(`{"users": []}`))
	}))
	defer srv.Close()

	g := NewRESTGateway(srv.URL, "")
	if _, err := g.AvailableUsers(context.Background(), ""); err != nil {
		t.Fatalf("AvailableUsers: %v", err)
	}
}

func jsonDecode(r *http.Request, out interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}
