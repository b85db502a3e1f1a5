package feed

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

const StatusFinished = "finished"

var ErrFeedDisabled = errors.New("results feed is not configured")

// MatchResult is one match as reported by the results feed.
type MatchResult struct {
	Ref         string   `json:"ref"`
	HomeScore   int      `json:"homeScore"`
	AwayScore   int      `json:"awayScore"`
	HomeScorers []string `json:"homeScorers"`
	AwayScorers []string `json:"awayScorers"`
	Status      string   `json:"status"`
}

func (m MatchResult) Finished() bool {
	return m.Status == StatusFinished
}

type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	RetryCount int
}

type Client struct {
	http *resty.Client
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, ErrFeedDisabled
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RetryCount < 0 {
		cfg.RetryCount = 0
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Accept", "application/json").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500 || r.StatusCode() == 429
		})
	if cfg.APIKey != "" {
		httpClient.SetHeader("X-API-Key", cfg.APIKey)
	}

	return &Client{http: httpClient}, nil
}

// Results returns the feed's matches for the gameweek.
func (c *Client) Results(ctx context.Context, gameweek int) ([]MatchResult, error) {
	var results []MatchResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("gameweek", strconv.Itoa(gameweek)).
		SetResult(&results).
		Get("/results")
	if err != nil {
		return nil, fmt.Errorf("results feed request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("results feed returned status %d for gameweek %d", resp.StatusCode(), gameweek)
	}
	if results == nil {
		results = []MatchResult{}
	}
	return results, nil
}
