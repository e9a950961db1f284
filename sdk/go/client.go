package dailyweesdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a minimal Daily Wee HTTP API client.
type Client struct {
	BaseURL     string
	BearerToken string
	HTTPClient  *http.Client
	Timeout     time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		Timeout: 10 * time.Second,
	}
}

// Score is a leaderboard submission.
type Score struct {
	ID          string `json:"id"`
	Seed        string `json:"seed"`
	DayNumber   int    `json:"day_number"`
	PlayerName  string `json:"player_name"`
	Score       int    `json:"score"`
	SubmittedAt string `json:"submitted_at"`
}

// Entry is the compact calendar entry of a day.
type Entry struct {
	ID    string `json:"id"`
	Theme string `json:"t"`
	Label string `json:"j"`
	Score int    `json:"s"`
	Twos  int    `json:"w"`
}

// Daily is a deployed day.
type Daily struct {
	Day        int    `json:"day"`
	Date       string `json:"date"`
	Seed       string `json:"seed"`
	Theme      string `json:"theme"`
	Entry      Entry  `json:"entry"`
	DeployedAt string `json:"deployed_at"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error: status=%d code=%s message=%s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// Today fetches today's seed.
func (c *Client) Today(ctx context.Context) (Daily, error) {
	var resp Daily
	err := c.do(ctx, http.MethodGet, "v0/daily/today", nil, &resp)
	return resp, err
}

// Daily fetches the seed of a 1-based day.
func (c *Client) Daily(ctx context.Context, day int) (Daily, error) {
	var resp Daily
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("v0/daily/%d", day), nil, &resp)
	return resp, err
}

// SubmitScore posts a score for a day.
func (c *Client) SubmitScore(ctx context.Context, seed string, day int, player string, score int) (Score, error) {
	body := map[string]any{
		"seed":        seed,
		"day_number":  day,
		"player_name": player,
		"score":       score,
	}
	var resp Score
	err := c.do(ctx, http.MethodPost, "v0/scores", body, &resp)
	return resp, err
}

// Leaderboard lists the top scores of a day. A zero limit uses the server default.
func (c *Client) Leaderboard(ctx context.Context, day, limit int) ([]Score, error) {
	q := url.Values{}
	q.Set("day", fmt.Sprint(day))
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}
	var resp struct {
		Scores []Score `json:"scores"`
	}
	err := c.do(ctx, http.MethodGet, "v0/scores?"+q.Encode(), nil, &resp)
	return resp.Scores, err
}

// Winners lists the best score of each recent day.
func (c *Client) Winners(ctx context.Context) ([]Score, error) {
	var resp struct {
		Winners []Score `json:"winners"`
	}
	err := c.do(ctx, http.MethodGet, "v0/scores/winners", nil, &resp)
	return resp.Winners, err
}

// DeleteScore removes a score. Needs a moderator bearer token.
func (c *Client) DeleteScore(ctx context.Context, id string) (Score, error) {
	var resp Score
	err := c.do(ctx, http.MethodDelete, "v0/scores/"+url.PathEscape(id), nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	url := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(b)}
		var env struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(b, &env) == nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
