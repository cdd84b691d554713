package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gigstage/console/chat-bridge/internal/domain"
)

// RESTGateway talks to the GigStage chat API over HTTP/JSON. Any non-2xx
// response is a failure; the server's error message is surfaced when the
// body carries one.
type RESTGateway struct {
	baseURL string
	token   string
	client  *http.Client
}

var _ Gateway = (*RESTGateway)(nil)

type RESTOption func(*RESTGateway)

func WithHTTPClient(c *http.Client) RESTOption {
	return func(g *RESTGateway) { g.client = c }
}

func NewRESTGateway(baseURL, token string, opts ...RESTOption) *RESTGateway {
	g := &RESTGateway{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *RESTGateway) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	u := g.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return g.statusError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (g *RESTGateway) statusError(resp *http.Response) error {
	var e errorJSON
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if json.Unmarshal(data, &e) == nil {
		if e.Error != "" {
			return fmt.Errorf("gateway: %s (status %d)", e.Error, resp.StatusCode)
		}
		if e.Message != "" {
			return fmt.Errorf("gateway: %s (status %d)", e.Message, resp.StatusCode)
		}
	}
	return fmt.Errorf("gateway: unexpected status %d", resp.StatusCode)
}

func (g *RESTGateway) ListConversations(ctx context.Context, filters ListFilters) (*ConversationPage, error) {
	q := url.Values{}
	if filters.Search != "" {
		q.Set("search", filters.Search)
	}
	if filters.UnreadOnly {
		q.Set("unreadOnly", "true")
	}
	if filters.Participant != "" {
		q.Set("participant", filters.Participant)
	}
	if filters.Limit > 0 {
		q.Set("limit", strconv.Itoa(filters.Limit))
	}
	if filters.Offset > 0 {
		q.Set("offset", strconv.Itoa(filters.Offset))
	}

	var list conversationListJSON
	if err := g.do(ctx, http.MethodGet, "/chat/conversations", q, nil, &list); err != nil {
		return nil, err
	}

	page := &ConversationPage{Total: list.Total, HasMore: list.HasMore}
	for _, c := range list.Conversations {
		page.Conversations = append(page.Conversations, conversationToDomain(c))
	}
	return page, nil
}

func (g *RESTGateway) CreateConversation(ctx context.Context, participants []string, isGroup bool, groupName, groupAvatar string) (*domain.Conversation, error) {
	body := createConversationJSON{
		Participants: participants,
		IsGroup:      isGroup,
		GroupName:    groupName,
		GroupAvatar:  groupAvatar,
	}
	var c conversationJSON
	if err := g.do(ctx, http.MethodPost, "/chat/conversations", nil, body, &c); err != nil {
		return nil, err
	}
	return conversationToDomain(c), nil
}

func (g *RESTGateway) GetConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	var c conversationJSON
	if err := g.do(ctx, http.MethodGet, "/chat/conversations/"+url.PathEscape(id), nil, nil, &c); err != nil {
		return nil, err
	}
	return conversationToDomain(c), nil
}

func (g *RESTGateway) DeleteConversation(ctx context.Context, id string) error {
	return g.do(ctx, http.MethodDelete, "/chat/conversations/"+url.PathEscape(id), nil, nil, nil)
}

func (g *RESTGateway) MarkConversationRead(ctx context.Context, id string) error {
	return g.do(ctx, http.MethodPatch, "/chat/conversations/"+url.PathEscape(id)+"/read", nil, nil, nil)
}

func (g *RESTGateway) ListMessages(ctx context.Context, conversationID string, limit, offset int) (*MessagePage, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}

	var list messageListJSON
	path := "/chat/conversations/" + url.PathEscape(conversationID) + "/messages"
	if err := g.do(ctx, http.MethodGet, path, q, nil, &list); err != nil {
		return nil, err
	}

	return &MessagePage{
		Messages: messagesToDomain(list.Messages),
		Total:    list.Total,
		HasMore:  list.HasMore,
	}, nil
}

func (g *RESTGateway) SendMessage(ctx context.Context, conversationID string, out OutgoingMessage) (*domain.Message, error) {
	body := sendMessageJSON{
		Content:     out.Content,
		MessageType: string(out.Type),
		FileURL:     out.FileURL,
		FileName:    out.FileName,
		FileSize:    out.FileSize,
	}
	var m messageJSON
	path := "/chat/conversations/" + url.PathEscape(conversationID) + "/messages"
	if err := g.do(ctx, http.MethodPost, path, nil, body, &m); err != nil {
		return nil, err
	}
	return messageToDomain(&m), nil
}

func (g *RESTGateway) EditMessage(ctx context.Context, conversationID, messageID, content string) (*domain.Message, error) {
	var m messageJSON
	path := "/chat/conversations/" + url.PathEscape(conversationID) + "/messages/" + url.PathEscape(messageID)
	if err := g.do(ctx, http.MethodPut, path, nil, editMessageJSON{Content: content}, &m); err != nil {
		return nil, err
	}
	return messageToDomain(&m), nil
}

func (g *RESTGateway) DeleteMessage(ctx context.Context, conversationID, messageID string) error {
	path := "/chat/conversations/" + url.PathEscape(conversationID) + "/messages/" + url.PathEscape(messageID)
	return g.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (g *RESTGateway) MarkMessageRead(ctx context.Context, conversationID, messageID string) error {
	path := "/chat/conversations/" + url.PathEscape(conversationID) + "/messages/" + url.PathEscape(messageID) + "/read"
	return g.do(ctx, http.MethodPatch, path, nil, nil, nil)
}

func (g *RESTGateway) Upload(ctx context.Context, conversationID, fileName string, r io.Reader) (*Attachment, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}
	if _, err := io.Copy(fw, r); err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if err := mw.WriteField("conversationId", conversationID); err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/upload", &buf)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST /chat/upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, g.statusError(resp)
	}

	var a attachmentJSON
	if err := json.NewDecoder(resp.Body).Decode(&a); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &Attachment{FileURL: a.FileURL, FileName: a.FileName, FileSize: a.FileSize}, nil
}

func (g *RESTGateway) CreateGroup(ctx context.Context, participants []string, groupName, groupAvatar string) (*domain.Conversation, error) {
	body := createGroupJSON{
		Participants: participants,
		GroupName:    groupName,
		GroupAvatar:  groupAvatar,
	}
	var c conversationJSON
	if err := g.do(ctx, http.MethodPost, "/chat/groups", nil, body, &c); err != nil {
		return nil, err
	}
	return conversationToDomain(c), nil
}

func (g *RESTGateway) AddGroupParticipants(ctx context.Context, id string, participants []string) error {
	path := "/chat/groups/" + url.PathEscape(id) + "/participants"
	return g.do(ctx, http.MethodPost, path, nil, participantsJSON{Participants: participants}, nil)
}

func (g *RESTGateway) RemoveGroupParticipants(ctx context.Context, id string, participants []string) error {
	path := "/chat/groups/" + url.PathEscape(id) + "/participants"
	return g.do(ctx, http.MethodDelete, path, nil, participantsJSON{Participants: participants}, nil)
}

func (g *RESTGateway) SearchMessages(ctx context.Context, query, conversationID string) ([]*domain.Message, error) {
	q := url.Values{}
	q.Set("query", query)
	if conversationID != "" {
		q.Set("conversationId", conversationID)
	}

	var res searchResultJSON
	if err := g.do(ctx, http.MethodGet, "/chat/search", q, nil, &res); err != nil {
		return nil, err
	}
	return messagesToDomain(res.Messages), nil
}

func (g *RESTGateway) AvailableUsers(ctx context.Context, search string) ([]*domain.User, error) {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}

	var res usersListJSON
	if err := g.do(ctx, http.MethodGet, "/chat/users/available", q, nil, &res); err != nil {
		return nil, err
	}

	users := make([]*domain.User, len(res.Users))
	for i, u := range res.Users {
		users[i] = userToDomain(u)
	}
	return users, nil
}
