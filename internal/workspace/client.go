package workspace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/atelier-ops/projectflow/internal/logging"
)

const (
	// notionVersion is the fixed API version header sent on every request
	notionVersion = "2022-06-28"

	// placeholderTitle marks a record that is not ready for processing
	placeholderTitle = "untitled"

	defaultTimeout        = 30 * time.Second
	defaultIconRetryDelay = 500 * time.Millisecond

	// queryPageSize is the page size used when paginating database queries
	queryPageSize = 100
)

// ClientConfig configures a workspace API client.
type ClientConfig struct {
	BaseURL           string
	Token             string
	TitleProperty     string // defaults to "Project Name"
	FolderURLProperty string // defaults to "Project Folder"
	IconRetryDelay    time.Duration
}

// Client talks to the workspace (Notion) API for a single integration token.
type Client struct {
	baseURL        string
	token          string
	titleProp      string
	folderURLProp  string
	iconRetryDelay time.Duration
	httpClient     *http.Client
	limiter        *rate.Limiter
}

// NewClient creates a workspace API client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.TitleProperty == "" {
		cfg.TitleProperty = "Project Name"
	}
	if cfg.FolderURLProperty == "" {
		cfg.FolderURLProperty = "Project Folder"
	}
	if cfg.IconRetryDelay == 0 {
		cfg.IconRetryDelay = defaultIconRetryDelay
	}
	return &Client{
		baseURL:        strings.TrimSuffix(cfg.BaseURL, "/"),
		token:          cfg.Token,
		titleProp:      cfg.TitleProperty,
		folderURLProp:  cfg.FolderURLProperty,
		iconRetryDelay: cfg.IconRetryDelay,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		// Notion allows ~3 requests/second per integration
		limiter: rate.NewLimiter(rate.Limit(3), 5),
	}
}

type richText struct {
	PlainText string `json:"plain_text,omitempty"`
	Text      *struct {
		Content string `json:"content"`
	} `json:"text,omitempty"`
}

func (r richText) content() string {
	if r.Text != nil && r.Text.Content != "" {
		return r.Text.Content
	}
	return r.PlainText
}

type relationRef struct {
	ID string `json:"id"`
}

type rollupValue struct {
	Type   string   `json:"type"`
	Number *float64 `json:"number"`
}

type pageProperty struct {
	Type     string        `json:"type"`
	Title    []richText    `json:"title"`
	Relation []relationRef `json:"relation"`
	Rollup   *rollupValue  `json:"rollup"`
}

type page struct {
	ID         string                  `json:"id"`
	Properties map[string]pageProperty `json:"properties"`
}

// GetTitle reads the record's title property. The second return is false when
// the title is empty or still the "untitled" placeholder; that is not an error.
func (c *Client) GetTitle(ctx context.Context, pageID string) (string, bool, error) {
	p, err := c.getPage(ctx, pageID)
	if err != nil {
		return "", false, fmt.Errorf("get title: %w", err)
	}

	prop, ok := p.Properties[c.titleProp]
	if !ok || len(prop.Title) == 0 {
		return "", false, nil
	}

	title := prop.Title[0].content()
	trimmed := strings.TrimSpace(title)
	if trimmed == "" || strings.Contains(strings.ToLower(trimmed), placeholderTitle) {
		return "", false, nil
	}
	return title, true, nil
}

// SetTitle patches the record's title property.
func (c *Client) SetTitle(ctx context.Context, pageID, title string) error {
	payload := map[string]any{
		"properties": map[string]any{
			c.titleProp: map[string]any{
				"title": []map[string]any{
					{"text": map[string]any{"content": title}},
				},
			},
		},
	}
	if _, err := c.do(ctx, http.MethodPatch, "/pages/"+pageID, payload); err != nil {
		return fmt.Errorf("set title: %w", err)
	}
	return nil
}

// SetFolderURL patches the record's folder-url property.
func (c *Client) SetFolderURL(ctx context.Context, pageID, folderURL string) error {
	payload := map[string]any{
		"properties": map[string]any{
			c.folderURLProp: map[string]any{
				"url": folderURL,
			},
		},
	}
	if _, err := c.do(ctx, http.MethodPatch, "/pages/"+pageID, payload); err != nil {
		return fmt.Errorf("set folder url: %w", err)
	}
	return nil
}

// SetIcon sets an external image as the record's icon. A conflicting
// concurrent edit (HTTP 409) is retried once after a fixed delay.
func (c *Client) SetIcon(ctx context.Context, pageID, imageURL string) error {
	payload := map[string]any{
		"icon": map[string]any{
			"type":     "external",
			"external": map[string]any{"url": imageURL},
		},
	}

	_, err := c.do(ctx, http.MethodPatch, "/pages/"+pageID, payload)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict {
		logging.NewLogger(ctx).LogWarn("set_icon", "conflict while saving icon, retrying once")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.iconRetryDelay):
		}
		_, err = c.do(ctx, http.MethodPatch, "/pages/"+pageID, payload)
	}
	if err != nil {
		return fmt.Errorf("set icon: %w", err)
	}
	return nil
}

// GetRelatedName reads the first linked record off a relation property and
// returns that record's title. Lookup failures degrade to ok=false and are
// logged rather than propagated.
func (c *Client) GetRelatedName(ctx context.Context, pageID, relationProp, targetProp string) (string, bool) {
	logger := logging.NewLogger(ctx)

	p, err := c.getPage(ctx, pageID)
	if err != nil {
		logger.LogError("get_related_name", err)
		return "", false
	}

	rel, ok := p.Properties[relationProp]
	if !ok || len(rel.Relation) == 0 {
		return "", false
	}

	related, err := c.getPage(ctx, rel.Relation[0].ID)
	if err != nil {
		logger.LogError("get_related_name", err)
		return "", false
	}

	target, ok := related.Properties[targetProp]
	if !ok || len(target.Title) == 0 {
		return "", false
	}

	name := strings.TrimSpace(target.Title[0].content())
	if name == "" {
		return "", false
	}
	return name, true
}

// AppendTemplateBlock appends a synced block mirroring a fixed source block
// into the record's body.
func (c *Client) AppendTemplateBlock(ctx context.Context, pageID, templateBlockID string) error {
	payload := map[string]any{
		"children": []map[string]any{
			{
				"object": "block",
				"type":   "synced_block",
				"synced_block": map[string]any{
					"synced_from": map[string]any{
						"type":     "block_id",
						"block_id": templateBlockID,
					},
				},
			},
		},
	}
	if _, err := c.do(ctx, http.MethodPatch, "/blocks/"+pageID+"/children", payload); err != nil {
		return fmt.Errorf("append template block: %w", err)
	}
	return nil
}

type queryResponse struct {
	Results    []json.RawMessage `json:"results"`
	HasMore    bool              `json:"has_more"`
	NextCursor *string           `json:"next_cursor"`
}

// QueryDatabaseCount counts the records in a database by paginating the
// query endpoint and accumulating result counts.
func (c *Client) QueryDatabaseCount(ctx context.Context, databaseID string) (int, error) {
	total := 0
	var cursor *string

	for {
		payload := map[string]any{
			"page_size": queryPageSize,
		}
		if cursor != nil {
			payload["start_cursor"] = *cursor
		}

		data, err := c.do(ctx, http.MethodPost, "/databases/"+databaseID+"/query", payload)
		if err != nil {
			return 0, fmt.Errorf("query database: %w", err)
		}

		var resp queryResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return 0, fmt.Errorf("decode query response: %w", err)
		}

		total += len(resp.Results)
		if !resp.HasMore || resp.NextCursor == nil {
			return total, nil
		}
		cursor = resp.NextCursor
	}
}

// GetSequenceRollup reads a precomputed numeric rollup property off the
// record. The second return is false when the property is absent or not a
// number.
func (c *Client) GetSequenceRollup(ctx context.Context, pageID, rollupProp string) (int, bool, error) {
	p, err := c.getPage(ctx, pageID)
	if err != nil {
		return 0, false, fmt.Errorf("get sequence rollup: %w", err)
	}

	prop, ok := p.Properties[rollupProp]
	if !ok || prop.Rollup == nil || prop.Rollup.Number == nil {
		return 0, false, nil
	}
	return int(*prop.Rollup.Number), true, nil
}

func (c *Client) getPage(ctx context.Context, pageID string) (*page, error) {
	data, err := c.do(ctx, http.MethodGet, "/pages/"+pageID, nil)
	if err != nil {
		return nil, err
	}

	var p page
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}
	return &p, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", notionVersion)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("workspace request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}
