package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/trustvest/trustvest/session"
)

const DefaultTimeout = 20 * time.Second

// Client is the HTTP client for the advisory backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type ClientOption func(*Client)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.httpClient.Timeout = d }
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

var _ Advisor = (*Client)(nil)

func (c *Client) Debate(ctx context.Context, req DebateRequest) (DebateResult, error) {
	var out DebateResult
	if err := c.postJSON(ctx, "/debate", req, &out); err != nil {
		return DebateResult{}, fmt.Errorf("debate: %w", err)
	}
	if !out.Verdict.Valid() {
		out.Verdict = Caution
	}
	return out, nil
}

type chatRequest struct {
	History  []ChatMessage `json:"history"`
	UserName string        `json:"user_name"`
}

type chatResponse struct {
	Text string `json:"text"`
}

func (c *Client) Chat(ctx context.Context, history []ChatMessage, p session.Profile) (string, error) {
	var out chatResponse
	if err := c.postJSON(ctx, "/chat", chatRequest{History: history, UserName: p.Name}, &out); err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}
	return out.Text, nil
}

func (c *Client) postJSON(ctx context.Context, path string, in any, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %w", ErrUnavailable, err)
	}
	return nil
}
