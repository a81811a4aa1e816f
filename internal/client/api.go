package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "minimalistnotes/internal/errors"
	"minimalistnotes/internal/model"
)

const defaultHTTPTimeout = 15 * time.Second

// TransportError means the server could not be reached or answered with
// something that is not an API response. The request may be retried.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "transport: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// AuthResult is a successful sign-in response.
type AuthResult struct {
	IsNewUser bool        `json:"isNewUser"`
	Token     string      `json:"token"`
	User      *model.User `json:"user"`
}

// APIClient calls the notes API. Failures come back as the typed errors of
// the errors package, so callers switch on errors.Is/As instead of flags.
type APIClient struct {
	baseURL string
	http    *http.Client
}

// NewAPIClient creates a client for baseURL. A nil httpClient gets a default with a timeout.
func NewAPIClient(baseURL string, httpClient *http.Client) *APIClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &APIClient{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// SignIn signs in with email and password.
func (c *APIClient) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	var res AuthResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/signin", "", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// SignInWithGoogle exchanges a Google ID token for a session.
func (c *APIClient) SignInWithGoogle(ctx context.Context, idToken string) (*AuthResult, error) {
	var res AuthResult
	body := map[string]string{"idToken": idToken}
	if err := c.do(ctx, http.MethodPost, "/auth/google", "", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Verify resolves the user behind a session token.
func (c *APIClient) Verify(ctx context.Context, token string) (*model.User, error) {
	var res struct {
		User *model.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/verify", token, nil, &res); err != nil {
		return nil, err
	}
	if res.User == nil {
		return nil, &TransportError{Err: errors.New("verify response without user")}
	}
	return res.User, nil
}

// ListNotes returns the notes of userID.
func (c *APIClient) ListNotes(ctx context.Context, bearer, userID string) ([]model.Note, error) {
	var notes []model.Note
	if err := c.do(ctx, http.MethodGet, ownerPath("/api/notes", userID), bearer, nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// ListTodos returns the todos of userID.
func (c *APIClient) ListTodos(ctx context.Context, bearer, userID string) ([]model.Todo, error) {
	var todos []model.Todo
	if err := c.do(ctx, http.MethodGet, ownerPath("/api/todos", userID), bearer, nil, &todos); err != nil {
		return nil, err
	}
	return todos, nil
}

// ListTimers returns the timers of userID.
func (c *APIClient) ListTimers(ctx context.Context, bearer, userID string) ([]model.Timer, error) {
	var timers []model.Timer
	if err := c.do(ctx, http.MethodGet, ownerPath("/api/timers", userID), bearer, nil, &timers); err != nil {
		return nil, err
	}
	return timers, nil
}

// CreateNote adds a note owned by userID.
func (c *APIClient) CreateNote(ctx context.Context, bearer, userID, title, content string) (*model.Note, error) {
	var note model.Note
	body := map[string]string{"title": title, "content": content, "userId": userID}
	if err := c.do(ctx, http.MethodPost, "/api/notes", bearer, body, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func ownerPath(path, userID string) string {
	if userID == "" {
		return path
	}
	return path + "?userId=" + url.QueryEscape(userID)
}

func (c *APIClient) do(ctx context.Context, method, path, bearer string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &TransportError{Err: err}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var errResp apperrors.ErrorResponse
		if err := json.Unmarshal(data, &errResp); err != nil || errResp.Code == "" {
			return &TransportError{Err: fmt.Errorf("unexpected %d response", resp.StatusCode)}
		}
		return apperrors.FromResponse(resp.StatusCode, errResp)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &TransportError{Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
