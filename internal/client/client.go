// Package client is a typed consumer of the taskboard HTTP API. It
// holds no UI concerns: callers decide how results and failures are
// presented to the user.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"taskboard/internal/domain"
	"taskboard/internal/usecase"
)

type Client struct {
	baseURL string
	http    *http.Client
	session *Session
}

func New(baseURL string, session *Session) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		session: session,
	}
}

// APIError is a non-2xx response, carrying the server's message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %s (HTTP %d)", e.Message, e.StatusCode)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type AuthResult struct {
	User  domain.PublicUser `json:"user"`
	Token string            `json:"token"`
}

// Register creates an account and caches the returned session.
func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, http.MethodPost, "/api/auth/register", map[string]string{
		"name": name, "email": email, "password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, c.storeSession(out)
}

// Login authenticates and caches the returned session.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email": email, "password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, c.storeSession(out)
}

func (c *Client) Logout() error {
	return c.session.Clear()
}

func (c *Client) Me(ctx context.Context) (*domain.PublicUser, error) {
	var out struct {
		User domain.PublicUser `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// TaskFilter narrows a listing; zero values are omitted from the query
// string entirely, matching the server's "unset means no constraint".
type TaskFilter struct {
	Status   string
	Priority string
	Tags     []string
	Search   string
	Page     int
	Limit    int
}

func (f TaskFilter) query() string {
	params := url.Values{}
	if f.Status != "" {
		params.Set("status", f.Status)
	}
	if f.Priority != "" {
		params.Set("priority", f.Priority)
	}
	for _, tag := range f.Tags {
		params.Add("tags", tag)
	}
	if f.Search != "" {
		params.Set("search", f.Search)
	}
	if f.Page > 0 {
		params.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		params.Set("limit", strconv.Itoa(f.Limit))
	}
	if len(params) == 0 {
		return ""
	}
	return "?" + params.Encode()
}

type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Tags        []string   `json:"tags"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type TaskList struct {
	Tasks      []Task             `json:"tasks"`
	Pagination usecase.Pagination `json:"pagination"`
}

func (c *Client) ListTasks(ctx context.Context, filter TaskFilter) (*TaskList, error) {
	var out TaskList
	if err := c.do(ctx, http.MethodGet, "/api/tasks"+filter.query(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetTask(ctx context.Context, id string) (*Task, error) {
	var out struct {
		Task Task `json:"task"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/tasks/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out.Task, nil
}

// TaskInput carries task fields for create and update. Nil pointers are
// omitted from the body, so updates stay partial.
type TaskInput struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

func (c *Client) CreateTask(ctx context.Context, input TaskInput) (*Task, error) {
	var out struct {
		Task Task `json:"task"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/tasks", input, &out); err != nil {
		return nil, err
	}
	return &out.Task, nil
}

func (c *Client) UpdateTask(ctx context.Context, id string, input TaskInput) (*Task, error) {
	var out struct {
		Task Task `json:"task"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/tasks/"+url.PathEscape(id), input, &out); err != nil {
		return nil, err
	}
	return &out.Task, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil, nil)
}

type Stats struct {
	TotalTasks   int            `json:"totalTasks"`
	StatusCounts map[string]int `json:"statusCounts"`
}

func (c *Client) GetStats(ctx context.Context) (*Stats, error) {
	var out Stats
	if err := c.do(ctx, http.MethodGet, "/api/tasks/stats/overview", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) storeSession(res AuthResult) error {
	c.session.Token = res.Token
	c.session.User = res.User
	return c.session.Save()
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.session.Authenticated() {
		req.Header.Set("Authorization", "Bearer "+c.session.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// Session is stale; drop it like the browser client dropped
		// localStorage.
		_ = c.session.Clear()
	}

	if !env.Success {
		return &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}
