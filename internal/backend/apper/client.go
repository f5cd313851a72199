// Package apper implements recordstore.Store over the hosted record store's
// JSON HTTP API.
package apper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"taskflow/internal/recordstore"
)

// APITimeout is the default timeout for a single API call.
const APITimeout = 10 * time.Second

// Options configure a Client.
type Options struct {
	BaseURL   string
	ProjectID string
	PublicKey string

	// Timeout bounds each call. Zero means APITimeout.
	Timeout time.Duration

	// HTTPClient is the base client the bearer transport wraps.
	// Nil means http.DefaultClient.
	HTTPClient *http.Client

	Logger zerolog.Logger
}

// Client implements recordstore.Store using the hosted record store API.
type Client struct {
	base    string
	project string
	http    *http.Client
	timeout time.Duration
	log     zerolog.Logger
}

// New creates a client. Requests carry the public key as a bearer token.
func New(ctx context.Context, opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("base url required")
	}
	if _, err := url.Parse(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if opts.ProjectID == "" || opts.PublicKey == "" {
		return nil, errors.New("project id and public key required")
	}

	if opts.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, opts.HTTPClient)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.PublicKey, TokenType: "Bearer"})

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = APITimeout
	}

	return &Client{
		base:    strings.TrimRight(opts.BaseURL, "/"),
		project: opts.ProjectID,
		http:    oauth2.NewClient(ctx, ts),
		timeout: timeout,
		log:     opts.Logger.With().Str("backend", "apper").Logger(),
	}, nil
}

// Fetch and get replies may omit success; only an explicit false is a failure.
type listResponse struct {
	Success *bool                `json:"success"`
	Data    []recordstore.Record `json:"data"`
	Message string               `json:"message"`
}

type recordResponse struct {
	Success *bool              `json:"success"`
	Data    recordstore.Record `json:"data"`
	Message string             `json:"message"`
}

type recordsBody struct {
	Records []recordstore.Record `json:"records"`
}

type deleteBody struct {
	RecordIDs []string `json:"RecordIds"`
}

// FetchRecords returns the records of a table matching p.
func (c *Client) FetchRecords(ctx context.Context, table string, p recordstore.FetchParams) ([]recordstore.Record, error) {
	var resp listResponse
	if err := c.do(ctx, http.MethodPost, c.recordsURL(table, "fetch"), p, &resp); err != nil {
		return nil, err
	}
	if rejected(resp.Success) {
		return nil, failure(resp.Message)
	}
	if resp.Data == nil {
		return []recordstore.Record{}, nil
	}
	return resp.Data, nil
}

// GetRecordByID returns one record, or recordstore.ErrNotFound.
func (c *Client) GetRecordByID(ctx context.Context, table, id string, fields []string) (recordstore.Record, error) {
	u := c.recordsURL(table, url.PathEscape(id))
	if len(fields) > 0 {
		u += "?" + url.Values{"fields": {strings.Join(fields, ",")}}.Encode()
	}

	var resp recordResponse
	if err := c.do(ctx, http.MethodGet, u, nil, &resp); err != nil {
		return nil, err
	}
	if rejected(resp.Success) {
		return nil, failure(resp.Message)
	}
	if resp.Data == nil {
		return nil, recordstore.ErrNotFound
	}
	return resp.Data, nil
}

// CreateRecords inserts records.
func (c *Client) CreateRecords(ctx context.Context, table string, records []recordstore.Record) (recordstore.WriteResult, error) {
	var resp recordstore.WriteResult
	err := c.do(ctx, http.MethodPost, c.recordsURL(table, ""), recordsBody{Records: records}, &resp)
	return resp, err
}

// UpdateRecords updates records identified by their Id field.
func (c *Client) UpdateRecords(ctx context.Context, table string, records []recordstore.Record) (recordstore.WriteResult, error) {
	var resp recordstore.WriteResult
	err := c.do(ctx, http.MethodPut, c.recordsURL(table, ""), recordsBody{Records: records}, &resp)
	return resp, err
}

// DeleteRecords deletes records by id.
func (c *Client) DeleteRecords(ctx context.Context, table string, ids []string) (recordstore.DeleteResult, error) {
	var resp recordstore.DeleteResult
	err := c.do(ctx, http.MethodDelete, c.recordsURL(table, ""), deleteBody{RecordIDs: ids}, &resp)
	return resp, err
}

func (c *Client) recordsURL(table, suffix string) string {
	u := fmt.Sprintf("%s/projects/%s/tables/%s/records",
		c.base, url.PathEscape(c.project), url.PathEscape(table))
	if suffix != "" {
		u += "/" + suffix
	}
	return u
}

// do sends one JSON request and decodes the response into out.
func (c *Client) do(ctx context.Context, method, u string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, r)
	if err != nil {
		return err
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Project-Id", c.project)
	req.Header.Set("X-Request-Id", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return wrapError(err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("request_id", reqID).
		Str("method", method).
		Str("url", u).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("record store call")

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return wrapError(err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return recordstore.ErrNotFound
	}
	if resp.StatusCode >= 400 {
		return statusError(resp.StatusCode, data)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("invalid response: %w", err)
	}
	return nil
}

func rejected(success *bool) bool {
	return success != nil && !*success
}

func failure(msg string) error {
	if msg == "" {
		msg = "request failed"
	}
	return errors.New(msg)
}

// statusError renders an HTTP error status with the server message, if any.
func statusError(status int, body []byte) error {
	var payload struct {
		Message string `json:"message"`
	}
	msg := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &payload) == nil && payload.Message != "" {
		msg = payload.Message
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("unauthorized (%d): check TASKFLOW_PUBLIC_KEY", status)
	}
	if msg == "" {
		return fmt.Errorf("status %d", status)
	}
	return fmt.Errorf("status %d: %s", status, msg)
}

// wrapError wraps transport errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out")
	}
	return err
}
