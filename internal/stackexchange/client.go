// internal/stackexchange/client.go
package stackexchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

var (
	// ErrNoQuestionFound is returned when a search yields no question.
	ErrNoQuestionFound = errors.New("no question found")
	// ErrNoAnswerFound is returned when a question has no answers.
	ErrNoAnswerFound = errors.New("no answer found")
)

// Question is the relevant search hit for a query.
type Question struct {
	ID    int64  `json:"question_id"`
	Title string `json:"title"`
}

// Answer is one answer body as returned with filter=withbody.
type Answer struct {
	ID   int64  `json:"answer_id"`
	Body string `json:"body"`
}

// Client talks to the StackExchange API. One instance serves all sites;
// the site is a query parameter, not client state.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     *zap.SugaredLogger
}

func NewClient(baseURL, apiKey string, client *http.Client, log *zap.SugaredLogger) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, client: client, log: log}
}

// SearchRelevantQuestion returns the most relevant answered question for a
// free-text query on one site.
func (c *Client) SearchRelevantQuestion(ctx context.Context, query string, site Site) (Question, error) {
	params := url.Values{}
	params.Set("order", "desc")
	params.Set("sort", "relevance")
	params.Set("q", query)
	params.Set("answers", "1")
	params.Set("site", site.Slug)
	params.Set("filter", "withbody")

	var out struct {
		Items []Question `json:"items"`
	}
	if err := c.get(ctx, "/search/advanced", params, &out); err != nil {
		return Question{}, err
	}
	if len(out.Items) == 0 {
		return Question{}, fmt.Errorf("%w for %q on %s", ErrNoQuestionFound, query, site.Slug)
	}
	return out.Items[0], nil
}

// SearchBestAnswer returns the top-voted answer of a question.
func (c *Client) SearchBestAnswer(ctx context.Context, questionID int64, site Site) (Answer, error) {
	params := url.Values{}
	params.Set("order", "desc")
	params.Set("sort", "votes")
	params.Set("site", site.Slug)
	params.Set("filter", "withbody")

	var out struct {
		Items []Answer `json:"items"`
	}
	if err := c.get(ctx, fmt.Sprintf("/questions/%d/answers", questionID), params, &out); err != nil {
		return Answer{}, err
	}
	if len(out.Items) == 0 {
		return Answer{}, fmt.Errorf("%w for question %d on %s", ErrNoAnswerFound, questionID, site.Slug)
	}
	return out.Items[0], nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("stackexchange get %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("stackexchange get %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	// Decode into a wrapper first to pick up throttling hints.
	var envelope struct {
		Backoff        int `json:"backoff"`
		QuotaRemaining int `json:"quota_remaining"`
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if envelope.Backoff > 0 {
			c.log.Warnw("stackexchange backoff requested", "path", path, "seconds", envelope.Backoff)
		}
		if envelope.QuotaRemaining > 0 && envelope.QuotaRemaining < 100 {
			c.log.Warnw("stackexchange quota low", "remaining", envelope.QuotaRemaining)
		}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("stackexchange decode %s: %w", path, err)
	}
	return nil
}
