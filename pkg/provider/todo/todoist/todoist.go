// Package todoist provides a to-do client backed by the Todoist REST API v2.
// It implements the todo.Client interface.
//
// TasksToday queries with the filter "(today | overdue) & !subtask", drops
// tasks whose content starts with "*" (Todoist's non-completable style), and
// orders the rest by priority, most urgent first. Markdown links in task
// content are reduced to their link text.
package todoist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/aidekit/aide/pkg/provider/todo"
)

const (
	defaultBaseURL = "https://api.todoist.com/rest/v2"
	todayFilter    = "(today | overdue) & !subtask"
)

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Used in tests.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(u, "/")
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// Client implements todo.Client against the Todoist REST API.
type Client struct {
	token   string
	baseURL string
	http    *http.Client
}

var _ todo.Client = (*Client)(nil)

// New creates a new Todoist client. token must be non-empty.
func New(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, errors.New("todoist: token must not be empty")
	}
	c := &Client{
		token:   token,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// task is the subset of the Todoist task payload the client consumes.
// Priority runs 1 (normal) to 4 (urgent).
type task struct {
	Content  string `json:"content"`
	Priority int    `json:"priority"`
}

// TasksToday implements todo.Client.
func (c *Client) TasksToday(ctx context.Context) ([]string, error) {
	q := url.Values{}
	q.Set("filter", todayFilter)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/tasks?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("todoist: build request: %w", err)
	}

	var tasks []task
	if err := c.do(req, &tasks); err != nil {
		return nil, err
	}

	kept := tasks[:0]
	for _, t := range tasks {
		if strings.HasPrefix(t.Content, "*") {
			continue
		}
		kept = append(kept, t)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Priority > kept[j].Priority
	})

	out := make([]string, len(kept))
	for i, t := range kept {
		out[i] = cleanContent(t.Content)
	}
	return out, nil
}

// AddTask implements todo.Client.
func (c *Client) AddTask(ctx context.Context, content string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"content":     content,
		"description": "Added by Aide",
	})
	if err != nil {
		return "", fmt.Errorf("todoist: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tasks", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("todoist: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var created task
	if err := c.do(req, &created); err != nil {
		return "", err
	}
	return cleanContent(created.Content), nil
}

// do executes one authorized API call and decodes the payload.
func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("todoist: request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("todoist: %w", todo.ErrInvalidKey)
	default:
		return fmt.Errorf("todoist: unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("todoist: decode response: %w", err)
	}
	return nil
}

// cleanContent strips markdown link formatting, keeping the link text:
// "[call mum](tel:...)" becomes "call mum".
func cleanContent(content string) string {
	before, _, _ := strings.Cut(content, "](")
	return strings.ReplaceAll(before, "[", "")
}
