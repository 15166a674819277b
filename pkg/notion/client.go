package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrUnauthorized is returned when the integration token is missing, revoked
// or expired. Callers map this onto their own "reconnect required" handling.
var ErrUnauthorized = errors.New("notion: unauthorized")

// ErrNotFound is returned when the referenced database or page does not exist
// or is not shared with the integration.
var ErrNotFound = errors.New("notion: object not found")

type ClientOptions struct {
	BaseURL    string
	HTTPClient *http.Client
	APIVersion string
	UserAgent  string
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// Client is a minimal Notion API client covering database queries and page
// upserts. Tokens are passed per call since each user connects their own
// workspace.
type Client struct {
	baseURL    string
	httpClient *http.Client
	apiVersion string
	userAgent  string
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

func NewClient(opts ClientOptions) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.notion.com"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	apiVersion := strings.TrimSpace(opts.APIVersion)
	if apiVersion == "" {
		apiVersion = "2022-06-28"
	}
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	baseDelay := opts.BaseDelay
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}
	maxDelay := opts.MaxDelay
	if maxDelay <= 0 {
		maxDelay = 2 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		apiVersion: apiVersion,
		userAgent:  strings.TrimSpace(opts.UserAgent),
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		maxDelay:   maxDelay,
	}
}

// Page is one Notion page as returned by a database query.
type Page struct {
	ID             string                     `json:"id"`
	LastEditedTime time.Time                  `json:"last_edited_time"`
	Archived       bool                       `json:"archived"`
	Properties     map[string]json.RawMessage `json:"properties"`
}

// QueryResult is one page of a database query; NextCursor is empty when the
// query is exhausted.
type QueryResult struct {
	Pages      []Page
	NextCursor string
}

type queryRequest struct {
	StartCursor string `json:"start_cursor,omitempty"`
	PageSize    int    `json:"page_size,omitempty"`
}

type queryResponse struct {
	Results    []Page  `json:"results"`
	NextCursor *string `json:"next_cursor"`
	HasMore    bool    `json:"has_more"`
}

// QueryDatabase fetches one page of results from a Notion database, starting
// at cursor ("" for the first page).
func (c *Client) QueryDatabase(ctx context.Context, token, databaseID, cursor string, pageSize int) (*QueryResult, error) {
	body, err := c.do(ctx, token, http.MethodPost, "/v1/databases/"+databaseID+"/query", queryRequest{
		StartCursor: cursor,
		PageSize:    pageSize,
	})
	if err != nil {
		return nil, err
	}
	var resp queryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("notion: decoding query response: %w", err)
	}
	result := &QueryResult{Pages: resp.Results}
	if resp.HasMore && resp.NextCursor != nil {
		result.NextCursor = *resp.NextCursor
	}
	return result, nil
}

type createPageRequest struct {
	Parent     map[string]string          `json:"parent"`
	Properties map[string]json.RawMessage `json:"properties"`
}

type updatePageRequest struct {
	Properties map[string]json.RawMessage `json:"properties"`
}

type pageResponse struct {
	ID string `json:"id"`
}

// UpsertPage creates a page under databaseID when pageID is empty, otherwise
// patches the existing page's properties. Returns the page id.
func (c *Client) UpsertPage(ctx context.Context, token, databaseID, pageID string, properties map[string]json.RawMessage) (string, error) {
	var (
		body []byte
		err  error
	)
	if pageID == "" {
		body, err = c.do(ctx, token, http.MethodPost, "/v1/pages", createPageRequest{
			Parent:     map[string]string{"database_id": databaseID},
			Properties: properties,
		})
	} else {
		body, err = c.do(ctx, token, http.MethodPatch, "/v1/pages/"+pageID, updatePageRequest{
			Properties: properties,
		})
	}
	if err != nil {
		return "", err
	}
	var resp pageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("notion: decoding page response: %w", err)
	}
	return resp.ID, nil
}

func (c *Client) do(ctx context.Context, token, method, path string, payload any) ([]byte, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrUnauthorized
	}
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	url := c.baseURL + path

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(bodyBytes))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Notion-Version", c.apiVersion)
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if attempt < c.maxRetries {
				if waitErr := sleepContext(ctx, c.retryDelay(attempt+1, "")); waitErr != nil {
					return nil, waitErr
				}
				continue
			}
			return nil, err
		}

		respBody, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, readErr
		}
		if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
			return respBody, nil
		}

		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return nil, fmt.Errorf("%w: status=%d", ErrUnauthorized, resp.StatusCode)
		}
		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		if (resp.StatusCode == http.StatusTooManyRequests || (resp.StatusCode >= 500 && resp.StatusCode <= 599)) && attempt < c.maxRetries {
			if waitErr := sleepContext(ctx, c.retryDelay(attempt+1, resp.Header.Get("Retry-After"))); waitErr != nil {
				return nil, waitErr
			}
			continue
		}

		errCode := ""
		errMessage := strings.TrimSpace(string(respBody))
		var parsed map[string]any
		if json.Unmarshal(respBody, &parsed) == nil {
			if code, ok := parsed["code"].(string); ok {
				errCode = code
			}
			if message, ok := parsed["message"].(string); ok && strings.TrimSpace(message) != "" {
				errMessage = message
			}
		}
		if errCode != "" {
			return nil, fmt.Errorf("notion: request failed: status=%d code=%s message=%s", resp.StatusCode, errCode, errMessage)
		}
		return nil, fmt.Errorf("notion: request failed: status=%d message=%s", resp.StatusCode, errMessage)
	}
}

func (c *Client) retryDelay(attempt int, retryAfterHeader string) time.Duration {
	if retryAfter := parseRetryAfterSeconds(retryAfterHeader); retryAfter > 0 {
		if retryAfter > c.maxDelay {
			return c.maxDelay
		}
		return retryAfter
	}
	delay := c.baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= c.maxDelay {
			return c.maxDelay
		}
	}
	if delay > c.maxDelay {
		return c.maxDelay
	}
	return delay
}

func parseRetryAfterSeconds(header string) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0
	}
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func sleepContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
