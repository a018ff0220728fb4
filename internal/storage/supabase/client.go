package supabase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/pranishuprety/Respondrr/pkg/logger"
)

// ErrNotFound is returned by single-row lookups when no row matched.
var ErrNotFound = errors.New("row not found")

// Client talks to a Supabase PostgREST row store. It exposes the three
// primitives the pipeline needs (select, insert, update by table) plus typed
// per-table helpers in store.go.
type Client struct {
	http       *resty.Client
	serviceKey string
}

// Query narrows a select. Filter values are PostgREST operator expressions,
// e.g. {"email": "eq.a@b.c", "timestamp": "gte.2024-01-01T00:00:00Z"}.
type Query struct {
	Filters map[string]string
	Order   string
	Limit   int
}

func NewClient(baseURL, serviceKey string, timeout time.Duration) *Client {
	http := resty.New().
		SetBaseURL(baseURL+"/rest/v1").
		SetTimeout(timeout).
		SetHeader("apikey", serviceKey).
		SetHeader("Authorization", "Bearer "+serviceKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	logger.Info("Supabase store client initialized", zap.String("base_url", baseURL))

	return &Client{http: http, serviceKey: serviceKey}
}

// Select fetches rows from table into dest (a pointer to a slice).
func (c *Client) Select(ctx context.Context, table string, q Query, dest any) error {
	params := url.Values{}
	params.Set("select", "*")
	for column, expr := range q.Filters {
		params.Set(column, expr)
	}
	if q.Order != "" {
		params.Set("order", q.Order)
	}
	if q.Limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", q.Limit))
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(params).
		SetResult(dest).
		Get("/" + table)
	if err != nil {
		return fmt.Errorf("failed to select from %s: %w", table, err)
	}
	if resp.IsError() {
		return fmt.Errorf("select from %s returned %d: %s", table, resp.StatusCode(), resp.String())
	}

	return nil
}

// Insert writes rows into table. When dest is non-nil the inserted
// representation is decoded into it (PostgREST returns an array).
func (c *Client) Insert(ctx context.Context, table string, body any, dest any) error {
	req := c.http.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetBody(body)
	if dest != nil {
		req.SetResult(dest)
	}

	resp, err := req.Post("/" + table)
	if err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	if resp.IsError() {
		return fmt.Errorf("insert into %s returned %d: %s", table, resp.StatusCode(), resp.String())
	}

	logger.Debug("Row inserted", zap.String("table", table))
	return nil
}

// Update patches rows matching filters.
func (c *Client) Update(ctx context.Context, table string, patch any, filters map[string]string) error {
	params := url.Values{}
	for column, expr := range filters {
		params.Set(column, expr)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(params).
		SetBody(patch).
		Patch("/" + table)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", table, err)
	}
	if resp.IsError() {
		return fmt.Errorf("update %s returned %d: %s", table, resp.StatusCode(), resp.String())
	}

	logger.Debug("Rows updated", zap.String("table", table))
	return nil
}
