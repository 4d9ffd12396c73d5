package leaderboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout bounds every Client request.
const DefaultTimeout = 5 * time.Second

// Client is a Board backed by the leaderboard HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ Board = (*Client)(nil)

// envelope is the union of the API response bodies.
type envelope struct {
	Success     bool     `json:"success"`
	Message     string   `json:"message"`
	Errors      []string `json:"errors"`
	User        *Player  `json:"user"`
	Score       *Entry   `json:"score"`
	Leaderboard []Entry  `json:"leaderboard"`
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Login finds or creates the player on the server.
func (c *Client) Login(ctx context.Context, username string) (Player, error) {
	var env envelope
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", loginRequest{Username: username}, &env); err != nil {
		return Player{}, err
	}
	if env.User == nil {
		return Player{}, fmt.Errorf("leaderboard: login response has no user")
	}
	return *env.User, nil
}

// SaveScore submits a score.
func (c *Client) SaveScore(ctx context.Context, username, gameID string, score int) (Entry, error) {
	s := float64(score)
	req := saveRequest{Username: username, Score: &s, Game: gameID}

	var env envelope
	if err := c.do(ctx, http.MethodPost, "/api/leaderboard/save", req, &env); err != nil {
		return Entry{}, err
	}
	if env.Score == nil {
		return Entry{}, fmt.Errorf("leaderboard: save response has no score")
	}
	return *env.Score, nil
}

// Global fetches each player's best score.
func (c *Client) Global(ctx context.Context, gameID string, limit int) ([]Entry, error) {
	path := "/api/leaderboard/global"
	if limit > 0 {
		path += "/" + strconv.Itoa(limit)
	}
	if gameID != "" {
		path += "?game=" + url.QueryEscape(gameID)
	}

	var env envelope
	if err := c.do(ctx, http.MethodGet, path, nil, &env); err != nil {
		return nil, err
	}
	return env.Leaderboard, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out *envelope) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("leaderboard: cannot encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("leaderboard: cannot build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("leaderboard: request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("leaderboard: cannot decode response (status %d): %w", resp.StatusCode, err)
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(out.Errors, "; "))
	case resp.StatusCode >= 300:
		msg := out.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("leaderboard: server error (status %d): %s", resp.StatusCode, msg)
	}
	return nil
}
