package opendota

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"
)

const (
	DefaultBaseURL = "https://api.opendota.com/api"

	// OpenDota free tier allows 60 requests per minute.
	requestsPerMinute = 60

	listingPageSize = 100
)

type Client struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	minInterval time.Duration

	mu          sync.Mutex
	lastRequest time.Time
}

func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:     baseURL,
		apiKey:      apiKey,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		minInterval: time.Minute / requestsPerMinute,
	}
}

// GetProMatches returns one page of the professional match listing,
// newest first. A non-zero lessThanMatchID acts as the pagination
// cursor: only matches with a smaller ID are returned.
func (c *Client) GetProMatches(ctx context.Context, limit int, lessThanMatchID int64) ([]ProMatch, error) {
	if limit <= 0 || limit > listingPageSize {
		limit = listingPageSize
	}
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	if lessThanMatchID > 0 {
		q.Set("less_than_match_id", strconv.FormatInt(lessThanMatchID, 10))
	}

	var matches []ProMatch
	if err := c.get(ctx, "proMatches", q, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

// GetMatchDetails returns the full payload for a single match,
// including the draft and the game patch.
func (c *Client) GetMatchDetails(ctx context.Context, matchID int64) (*MatchDetails, error) {
	var details MatchDetails
	if err := c.get(ctx, fmt.Sprintf("matches/%d", matchID), nil, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

func (c *Client) GetHeroes(ctx context.Context) ([]RawHero, error) {
	var heroes []RawHero
	if err := c.get(ctx, "heroes", nil, &heroes); err != nil {
		return nil, err
	}
	return heroes, nil
}

func (c *Client) GetProTeams(ctx context.Context) ([]RawTeam, error) {
	var teams []RawTeam
	if err := c.get(ctx, "teams", nil, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

func (c *Client) GetLeagues(ctx context.Context) ([]RawLeague, error) {
	var leagues []RawLeague
	if err := c.get(ctx, "leagues", nil, &leagues); err != nil {
		return nil, err
	}
	return leagues, nil
}

func (c *Client) get(ctx context.Context, endpoint string, query url.Values, out interface{}) error {
	if err := c.throttle(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if query == nil {
		query = url.Values{}
	}
	if c.apiKey != "" {
		query.Set("api_key", c.apiKey)
	}
	req.URL.RawQuery = query.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &TransientError{Err: fmt.Errorf("request %s: %w", endpoint, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode, Endpoint: endpoint}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return &TransientError{Err: apiErr}
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}

// throttle spaces requests so the client stays inside the API rate
// limit. The wait is context-aware.
func (c *Client) throttle(ctx context.Context) error {
	c.mu.Lock()
	now := time.Now()
	next := c.lastRequest.Add(c.minInterval)
	var wait time.Duration
	if next.After(now) {
		wait = next.Sub(now)
	}
	c.lastRequest = now.Add(wait)
	c.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
