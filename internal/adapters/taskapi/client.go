// Package taskapi implements app.TaskAPI against the remote JSON task API.
package taskapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/evanschultz/ticklist/internal/domain"
)

const (
	// BasePath is the fixed path prefix of every task endpoint.
	BasePath = "/api/task"

	// StatusSuccess is the envelope status of an accepted request.
	StatusSuccess = "success"

	// RequestIDHeader carries a per-request correlation id.
	RequestIDHeader = "X-Request-ID"

	// maxResponseBytes bounds decoded response bodies.
	maxResponseBytes = 1 << 20
)

var (
	// ErrRejected reports an envelope whose status is not "success".
	ErrRejected = errors.New("task api rejected request")
	// ErrUnexpectedStatus reports an HTTP status the endpoint does not define as success.
	ErrUnexpectedStatus = errors.New("unexpected http status")
)

// Config configures a Client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
	// RequestID generates X-Request-ID values; defaults to uuid v4.
	RequestID func() string
}

// Client talks to one task API base URL.
type Client struct {
	baseURL   *url.URL
	timeout   time.Duration
	userAgent string
	http      *http.Client
	requestID func() string
}

// Envelope is the response wrapper used by every JSON endpoint.
type Envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// wireTask mirrors the remote task record; timestamps are decoded leniently.
type wireTask struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsCompleted bool   `json:"is_completed"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type createRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type completedRequest struct {
	IsCompleted bool `json:"is_completed"`
}

type updateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	UpdatedAt   string `json:"updated_at"`
}

// New validates cfg and builds a client.
func New(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, errors.New("task api base url is required")
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse task api base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("task api base url %q must use http or https", raw)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("task api base url %q has no host", raw)
	}
	base.Path = strings.TrimRight(base.Path, "/")

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	requestID := cfg.RequestID
	if requestID == nil {
		requestID = func() string { return uuid.NewString() }
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = "ticklist"
	}
	return &Client{
		baseURL:   base,
		timeout:   cfg.Timeout,
		userAgent: userAgent,
		http:      httpClient,
		requestID: requestID,
	}, nil
}

// ListTasks fetches one page of tasks.
func (c *Client) ListTasks(ctx context.Context, page int, filter domain.TaskFilter) ([]domain.Task, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("type", string(filter))

	env, status, err := c.do(ctx, http.MethodGet, c.endpoint("", query), nil)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if err := requireSuccess(env, status); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	var wire []wireTask
	if len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, &wire); err != nil {
			return nil, fmt.Errorf("list tasks: decode data: %w", err)
		}
	}
	out := make([]domain.Task, 0, len(wire))
	for _, w := range wire {
		out = append(out, w.toDomain())
	}
	return out, nil
}

// CreateTask creates one task and returns the server's record.
func (c *Client) CreateTask(ctx context.Context, in domain.TaskInput) (domain.Task, error) {
	env, status, err := c.do(ctx, http.MethodPost, c.endpoint("", nil), createRequest{
		Name:        in.Name,
		Description: in.Description,
	})
	if err != nil {
		return domain.Task{}, fmt.Errorf("create task: %w", err)
	}
	task, err := decodeTask(env, status)
	if err != nil {
		return domain.Task{}, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

// SetTaskCompleted sends a partial update of the completion flag.
func (c *Client) SetTaskCompleted(ctx context.Context, id int64, completed bool) error {
	env, status, err := c.do(ctx, http.MethodPatch, c.endpoint(taskPath(id), nil), completedRequest{IsCompleted: completed})
	if err != nil {
		return fmt.Errorf("set task %d completed: %w", id, err)
	}
	if err := requireSuccess(env, status); err != nil {
		return fmt.Errorf("set task %d completed: %w", id, err)
	}
	return nil
}

// UpdateTask replaces name and description and returns the server's record.
func (c *Client) UpdateTask(ctx context.Context, id int64, in domain.TaskUpdate) (domain.Task, error) {
	env, status, err := c.do(ctx, http.MethodPut, c.endpoint(taskPath(id), nil), updateRequest{
		Name:        in.Name,
		Description: in.Description,
		UpdatedAt:   in.UpdatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return domain.Task{}, fmt.Errorf("update task %d: %w", id, err)
	}
	task, err := decodeTask(env, status)
	if err != nil {
		return domain.Task{}, fmt.Errorf("update task %d: %w", id, err)
	}
	return task, nil
}

// DeleteTask deletes one task. Only 204 No Content counts as success.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	_, status, err := c.do(ctx, http.MethodDelete, c.endpoint(taskPath(id), nil), nil)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	if status != http.StatusNoContent {
		return fmt.Errorf("delete task %d: %w: %d", id, ErrUnexpectedStatus, status)
	}
	return nil
}

func taskPath(id int64) string {
	return "/" + strconv.FormatInt(id, 10)
}

func (c *Client) endpoint(suffix string, query url.Values) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + BasePath + suffix
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do performs one request. The envelope is zero for empty bodies and
// non-JSON bodies; callers decide what the status code means.
func (c *Client) do(ctx context.Context, method, target string, body any) (Envelope, int, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return Envelope{}, 0, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return Envelope{}, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(RequestIDHeader, c.requestID())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Envelope{}, 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Envelope{}, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	var env Envelope
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			env = Envelope{}
		}
	}
	return env, resp.StatusCode, nil
}

// requireSuccess accepts only a 2xx response carrying a success envelope. A
// non-2xx error envelope matches both ErrUnexpectedStatus and ErrRejected.
func requireSuccess(env Envelope, status int) error {
	if status < 200 || status > 299 {
		if env.Status != "" && env.Status != StatusSuccess {
			return fmt.Errorf("%w: %d: %w", ErrUnexpectedStatus, status, rejection(env))
		}
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, status)
	}
	if env.Status != StatusSuccess {
		return rejection(env)
	}
	return nil
}

func rejection(env Envelope) error {
	if env.Message != "" {
		return fmt.Errorf("%w: status %q: %s", ErrRejected, env.Status, env.Message)
	}
	return fmt.Errorf("%w: status %q", ErrRejected, env.Status)
}

func decodeTask(env Envelope, status int) (domain.Task, error) {
	if err := requireSuccess(env, status); err != nil {
		return domain.Task{}, err
	}
	var w wireTask
	if err := json.Unmarshal(env.Data, &w); err != nil {
		return domain.Task{}, fmt.Errorf("decode data: %w", err)
	}
	return w.toDomain(), nil
}

func (w wireTask) toDomain() domain.Task {
	return domain.Task{
		ID:          w.ID,
		Name:        w.Name,
		Description: w.Description,
		IsCompleted: w.IsCompleted,
		CreatedAt:   ParseTimestamp(w.CreatedAt),
		UpdatedAt:   ParseTimestamp(w.UpdatedAt),
	}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	time.DateTime,
}

// ParseTimestamp decodes the timestamp forms the API is known to emit.
// Unparseable and empty values decode to the zero time.
func ParseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}
