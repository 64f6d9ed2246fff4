// Copyright (c) 2025 The Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"parley/internal/model"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the backend client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeUnreachable
	ErrTypeInvalidResponse
	ErrTypeUnauthorized
	ErrTypeNotFound
	ErrTypeRejected
)

// Sentinel errors for easy checking.
var (
	ErrUnreachable  = &ClientError{Type: ErrTypeUnreachable, Message: "chat backend is unreachable"}
	ErrUnauthorized = &ClientError{Type: ErrTypeUnauthorized, Message: "invalid credentials"}
	ErrNotFound     = &ClientError{Type: ErrTypeNotFound, Message: "resource not found"}
	// ErrMalformedPayload is returned when a response does not match the
	// expected shape (e.g. not an array where an array is required).
	ErrMalformedPayload = &ClientError{Type: ErrTypeInvalidResponse, Message: "malformed response payload"}
)

// IsUnreachable reports whether err indicates the backend could not be reached.
func IsUnreachable(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeUnreachable
	}
	return false
}

// IsMalformed reports whether err indicates a malformed response payload.
func IsMalformed(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeInvalidResponse
	}
	return false
}

// IsCanceled reports whether err is the result of context cancellation.
// Cancellation is never surfaced to the user: it means a newer user action
// intentionally superseded the request.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the parley backend.
// It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the given base URL, e.g.
// "http://127.0.0.1:8000". The underlying http.Client carries no timeout;
// lifetimes are governed by the contexts passed to each call.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// CHAT LISTING
// =============================================================================

// ListChats returns the conversations belonging to a user, newest first as
// ordered by the backend.
func (c *Client) ListChats(ctx context.Context, userID string) ([]model.SessionMeta, error) {
	var entries []ChatListEntry
	if err := c.getJSON(ctx, "/chats/get_chats/"+url.PathEscape(userID), &entries); err != nil {
		return nil, err
	}
	metas := make([]model.SessionMeta, 0, len(entries))
	for _, e := range entries {
		metas = append(metas, e.Meta())
	}
	return metas, nil
}

// SearchChats queries the backend full-text search over a user's chats.
func (c *Client) SearchChats(ctx context.Context, userID, query string) ([]model.SessionMeta, error) {
	path := "/chats/search_chats/" + url.PathEscape(userID) + "?q=" + url.QueryEscape(query)
	var resp searchResponse
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &ClientError{Type: ErrTypeRejected, Message: "search rejected by backend"}
	}
	metas := make([]model.SessionMeta, 0, len(resp.Results))
	for _, e := range resp.Results {
		metas = append(metas, e.Meta())
	}
	return metas, nil
}

// =============================================================================
// TRANSCRIPTS
// =============================================================================

// GetChat fetches the full transcript of one conversation. The backend
// returns a bare JSON array; anything else is a malformed payload.
func (c *Client) GetChat(ctx context.Context, chatID string) ([]model.Message, error) {
	var raw json.RawMessage
	if err := c.getJSON(ctx, "/chats/get_chat/"+url.PathEscape(chatID), &raw); err != nil {
		return nil, err
	}

	var wire []ChatMessage
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, ErrMalformedPayload
	}

	messages := make([]model.Message, 0, len(wire))
	for i, m := range wire {
		messages = append(messages, m.ToMessage(i))
	}
	return messages, nil
}

// =============================================================================
// SESSION CREATION AND SENDING
// =============================================================================

// CreateChat asks the backend to mint a new session for an authenticated
// user and returns its id.
func (c *Client) CreateChat(ctx context.Context, userID string) (string, error) {
	var resp createChatResponse
	if err := c.postJSON(ctx, "/chats/create_chat", createChatRequest{UserID: userID}, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", ErrMalformedPayload
	}
	return resp.ID, nil
}

// SendMessage submits one user message. Guest sends pass a nil sessionID,
// which serializes as an explicit null: guest conversations are never
// persisted server-side.
func (c *Client) SendMessage(ctx context.Context, userID, message string, sessionID *string) (*SendResult, error) {
	var resp SendResult
	req := sendRequest{UserID: userID, Message: message, SessionID: sessionID}
	if err := c.postJSON(ctx, "/chats/chat", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// =============================================================================
// DELETION
// =============================================================================

// DeleteChat removes a conversation from the backend.
func (c *Client) DeleteChat(ctx context.Context, chatID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/chats/delete_chat/"+url.PathEscape(chatID), nil)
	if err != nil {
		return &ClientError{Type: ErrTypeUnknown, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.wrapTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ClientError{Type: ErrTypeRejected, Message: "delete failed: " + resp.Status}
	}
	return nil
}

// =============================================================================
// ACCOUNT
// =============================================================================

// GetUserInfo fetches the profile record for an authenticated user.
func (c *Client) GetUserInfo(ctx context.Context, userID string) (*UserInfo, error) {
	var resp userInfoResponse
	if err := c.getJSON(ctx, "/chats/userinfo/"+url.PathEscape(userID), &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, ErrNotFound
	}
	return &resp.Data, nil
}

// Login authenticates a user and returns the session token.
func (c *Client) Login(ctx context.Context, userID, password string) (*LoginResult, error) {
	var resp LoginResult
	if err := c.postJSON(ctx, "/auth/login", loginRequest{UserID: userID, Password: password}, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = "invalid credentials"
		}
		return nil, &ClientError{Type: ErrTypeUnauthorized, Message: msg}
	}
	return &resp, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	var resp RegisterResult
	if err := c.postJSON(ctx, "/auth/register", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = "registration rejected"
		}
		return nil, &ClientError{Type: ErrTypeRejected, Message: msg}
	}
	return &resp, nil
}

// =============================================================================
// TRANSPORT HELPERS
// =============================================================================

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &ClientError{Type: ErrTypeUnknown, Message: "failed to create request", Cause: err}
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return &ClientError{Type: ErrTypeUnknown, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return &ClientError{Type: ErrTypeUnknown, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.wrapTransport(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return &ClientError{Type: ErrTypeRejected, Message: "request failed: " + resp.Status}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return nil
}

// wrapTransport converts a transport error, preserving context cancellation
// so callers can treat superseded requests as silent.
func (c *Client) wrapTransport(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &ClientError{Type: ErrTypeUnreachable, Message: "chat backend is unreachable", Cause: err}
}
