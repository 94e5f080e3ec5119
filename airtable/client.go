// Package airtable is a small client for the Airtable Web API: the
// metadata endpoints a form builder needs, record writes, and webhook
// notification payloads.
package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// New returns a client authenticating with the given access token. Requests
// are throttled to rps per second, which Airtable enforces per base.
func New(baseURL, accessToken string, rps float64) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    oauth2.NewClient(context.Background(), ts),
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// APIError is a non-2xx reply of the Airtable API.
type APIError struct {
	Status  int
	Type    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("airtable: %d %s", e.Status, e.Type)
	}
	return fmt.Sprintf("airtable: %d %s: %s", e.Status, e.Type, e.Message)
}

type Base struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	PermissionLevel string `json:"permissionLevel"`
}

type Record struct {
	ID          string         `json:"id"`
	CreatedTime string         `json:"createdTime"`
	Fields      map[string]any `json:"fields"`
}

func (c *Client) Bases(ctx context.Context) ([]Base, error) {
	var bases []Base
	offset := ""
	for {
		path := "/v0/meta/bases"
		if offset != "" {
			path += "?offset=" + url.QueryEscape(offset)
		}
		var page struct {
			Bases  []Base `json:"bases"`
			Offset string `json:"offset"`
		}
		if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
			return nil, err
		}
		bases = append(bases, page.Bases...)
		if page.Offset == "" {
			return bases, nil
		}
		offset = page.Offset
	}
}

func (c *Client) Tables(ctx context.Context, baseID string) ([]Table, error) {
	var reply struct {
		Tables []Table `json:"tables"`
	}
	err := c.do(ctx, http.MethodGet, "/v0/meta/bases/"+url.PathEscape(baseID)+"/tables", nil, &reply)
	return reply.Tables, err
}

// TableSchema returns the table with the given id, or a 404 APIError.
func (c *Client) TableSchema(ctx context.Context, baseID, tableID string) (Table, error) {
	tables, err := c.Tables(ctx, baseID)
	if err != nil {
		return Table{}, err
	}
	for _, t := range tables {
		if t.ID == tableID {
			return t, nil
		}
	}
	return Table{}, &APIError{Status: http.StatusNotFound, Type: "TABLE_NOT_FOUND", Message: tableID}
}

func (c *Client) CreateRecord(ctx context.Context, baseID, tableID string, fields map[string]any) (Record, error) {
	var rec Record
	err := c.do(ctx, http.MethodPost, recordsPath(baseID, tableID), map[string]any{"fields": fields}, &rec)
	return rec, err
}

func (c *Client) DeleteRecord(ctx context.Context, baseID, tableID, recordID string) error {
	return c.do(ctx, http.MethodDelete, recordsPath(baseID, tableID)+"/"+url.PathEscape(recordID), nil, nil)
}

func recordsPath(baseID, tableID string) string {
	return "/v0/" + url.PathEscape(baseID) + "/" + url.PathEscape(tableID)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("airtable: encode request: %w", err)
		}
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("airtable: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("airtable: decode reply: %w", err)
	}
	return nil
}

// decodeError reads either {"error": "TYPE"} or
// {"error": {"type": "...", "message": "..."}}.
func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Type: http.StatusText(resp.StatusCode)}

	var reply struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil || len(reply.Error) == 0 {
		return apiErr
	}

	var typ string
	if json.Unmarshal(reply.Error, &typ) == nil {
		apiErr.Type = typ
		return apiErr
	}
	var detail struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	if json.Unmarshal(reply.Error, &detail) == nil {
		apiErr.Type = detail.Type
		apiErr.Message = detail.Message
	}
	return apiErr
}
