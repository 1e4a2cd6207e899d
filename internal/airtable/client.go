// Package airtable is a thin HTTP client for the external tabular store
// holding profiles, experience records, dimension scores and inbound leads.
//
// Read paths degrade to empty results when no credentials are configured so
// the rest of the system keeps serving; write paths fail instead.
package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"sei-core/internal/common/config"
	stderrors "sei-core/internal/common/errors"
	"sei-core/internal/common/logger"
	"sei-core/internal/common/metrics"
)

// ErrNotConfigured is returned by write operations when API credentials are
// missing. Read operations return empty results instead.
var ErrNotConfigured = fmt.Errorf("airtable client not configured")

// Record is a single row returned by the store API.
type Record[T any] struct {
	ID          string `json:"id"`
	Fields      T      `json:"fields"`
	CreatedTime string `json:"createdTime"`
}

type listResponse[T any] struct {
	Records []Record[T] `json:"records"`
	Offset  string      `json:"offset,omitempty"`
}

type createRequest struct {
	Records []createEntry `json:"records"`
}

type createEntry struct {
	Fields map[string]interface{} `json:"fields"`
}

type createResponse struct {
	Records []struct {
		ID string `json:"id"`
	} `json:"records"`
}

// Client issues authenticated requests against one base of the store API.
type Client struct {
	cfg        config.AirtableConfig
	httpClient *http.Client
	logger     logger.Logger
}

func NewClient(cfg config.AirtableConfig, log logger.Logger) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Millisecond
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
	}
}

// Configured reports whether both the API key and base ID are present.
func (c *Client) Configured() bool {
	return c.cfg.APIKey != "" && c.cfg.BaseID != ""
}

func (c *Client) tableURL(table string) string {
	return fmt.Sprintf("%s/%s/%s", c.cfg.BaseURL, c.cfg.BaseID, url.PathEscape(table))
}

func (c *Client) do(ctx context.Context, method, rawURL string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	return c.httpClient.Do(req)
}

// fetchPage retrieves a single page and returns the raw body plus status.
func (c *Client) fetchPage(ctx context.Context, table string, params url.Values) ([]byte, error) {
	u := c.tableURL(table)
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	resp, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		metrics.StoreRequests.WithLabelValues(table, "list", "error").Inc()
		return nil, stderrors.NewUpstreamError(0, err.Error())
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.StoreRequests.WithLabelValues(table, "list", "error").Inc()
		return nil, stderrors.NewUpstreamError(resp.StatusCode, err.Error())
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.StoreRequests.WithLabelValues(table, "list", "error").Inc()
		c.logger.Error("store list request failed", map[string]interface{}{
			"table":  table,
			"status": resp.StatusCode,
			"body":   truncate(string(payload), 512),
		})
		return nil, stderrors.NewUpstreamError(resp.StatusCode, string(payload))
	}
	metrics.StoreRequests.WithLabelValues(table, "list", "success").Inc()
	return payload, nil
}

// FetchAll lists every row of a table, following offset tokens until the
// store stops returning one. Returns nil without error when the client has
// no credentials.
func FetchAll[T any](ctx context.Context, c *Client, table string, params url.Values) ([]Record[T], error) {
	if !c.Configured() {
		c.logger.Warn("store not configured, returning empty results", map[string]interface{}{
			"table": table,
		})
		return nil, nil
	}

	query := url.Values{}
	for k, vs := range params {
		query[k] = vs
	}

	var all []Record[T]
	for {
		payload, err := c.fetchPage(ctx, table, query)
		if err != nil {
			return nil, err
		}
		var page listResponse[T]
		if err := json.Unmarshal(payload, &page); err != nil {
			return nil, stderrors.NewUpstreamError(0, fmt.Sprintf("decode %s response: %v", table, err))
		}
		all = append(all, page.Records...)
		if page.Offset == "" {
			return all, nil
		}
		query.Set("offset", page.Offset)
	}
}

// CreateRecord inserts one row and returns its record ID.
func (c *Client) CreateRecord(ctx context.Context, table string, fields map[string]interface{}) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(createRequest{Records: []createEntry{{Fields: fields}}})
	if err != nil {
		return "", err
	}

	resp, err := c.do(ctx, http.MethodPost, c.tableURL(table), bytes.NewReader(body))
	if err != nil {
		metrics.StoreRequests.WithLabelValues(table, "create", "error").Inc()
		return "", stderrors.NewUpstreamError(0, err.Error())
	}
	defer resp.Body.Close()

	payload, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.StoreRequests.WithLabelValues(table, "create", "error").Inc()
		c.logger.Error("store create request failed", map[string]interface{}{
			"table":  table,
			"status": resp.StatusCode,
			"body":   truncate(string(payload), 512),
		})
		return "", stderrors.NewUpstreamError(resp.StatusCode, string(payload))
	}

	var created createResponse
	if err := json.Unmarshal(payload, &created); err != nil {
		metrics.StoreRequests.WithLabelValues(table, "create", "error").Inc()
		return "", stderrors.NewUpstreamError(resp.StatusCode, fmt.Sprintf("decode create response: %v", err))
	}
	if len(created.Records) == 0 {
		metrics.StoreRequests.WithLabelValues(table, "create", "error").Inc()
		return "", stderrors.NewUpstreamError(resp.StatusCode, "create response contained no records")
	}

	metrics.StoreRequests.WithLabelValues(table, "create", "success").Inc()
	return created.Records[0].ID, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
