// Package remote is a thin JSON client for the remote todo collection:
// list, get, create, update (full replace), patch (partial) and delete.
//
// Every call is a single request/response round trip. There is no retry and
// no timeout beyond the transport defaults; callers cancel through ctx.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/idilsaglam/tada/internal/logging"
	"github.com/idilsaglam/tada/internal/model"
)

const collectionPath = "/todos"

// Client talks to one fixed base endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

type Option func(*Client)

// WithHTTPClient swaps the transport, e.g. for httptest servers.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(logger *log.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Status)
}

// todoBody is the wire shape sent on create and update. It deliberately
// leaves out the local-only provisional flag.
type todoBody struct {
	ID          int    `json:"id,omitempty"`
	UserID      int    `json:"userId"`
	Title       string `json:"title"`
	Completed   bool   `json:"completed"`
	Description string `json:"description,omitempty"`
}

type patchBody struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

func bodyFor(t model.Todo) todoBody {
	return todoBody{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Completed:   t.Completed,
		Description: t.Description,
	}
}

func itemPath(id int) string {
	return collectionPath + "/" + strconv.Itoa(id)
}

// List returns the whole remote collection.
func (c *Client) List(ctx context.Context) (model.Collection, error) {
	var todos model.Collection
	if err := c.do(ctx, http.MethodGet, collectionPath, nil, &todos); err != nil {
		return nil, err
	}
	if todos == nil {
		todos = model.Collection{}
	}
	return todos, nil
}

func (c *Client) Get(ctx context.Context, id int) (model.Todo, error) {
	var t model.Todo
	err := c.do(ctx, http.MethodGet, itemPath(id), nil, &t)
	return t, err
}

// Create posts t without its id; the server assigns one.
func (c *Client) Create(ctx context.Context, t model.Todo) (model.Todo, error) {
	body := bodyFor(t)
	body.ID = 0
	var out model.Todo
	err := c.do(ctx, http.MethodPost, collectionPath, body, &out)
	return out, err
}

// Update replaces the remote todo with t.
func (c *Client) Update(ctx context.Context, id int, t model.Todo) (model.Todo, error) {
	body := bodyFor(t)
	body.ID = id
	var out model.Todo
	err := c.do(ctx, http.MethodPut, itemPath(id), body, &out)
	return out, err
}

// Patch sends only the submitted fields.
func (c *Client) Patch(ctx context.Context, id int, f model.Fields) (model.Todo, error) {
	body := patchBody{Title: f.Title, Description: f.Description, Completed: f.Completed}
	var out model.Todo
	err := c.do(ctx, http.MethodPatch, itemPath(id), body, &out)
	return out, err
}

func (c *Client) Delete(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, itemPath(id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s %s: marshal: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", reqID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}

	c.logger.Debug("remote request", "method", method, "path", path, "request_id", reqID)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("remote request failed", "method", method, "path", path, "request_id", reqID, "err", err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		c.logger.Warn("remote request rejected", "method", method, "path", path, "request_id", reqID, "status", resp.StatusCode)
		return &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode, Status: resp.Status}
	}
	c.logger.Debug("remote response", "method", method, "path", path, "request_id", reqID, "status", resp.StatusCode)

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	return nil
}
