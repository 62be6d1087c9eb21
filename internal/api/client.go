// Package api talks to the remote document store: the credentialed
// document-stream endpoint and the per-document annotation collection.
package api

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

	"github.com/avern/pagemark/internal/annotation"
)

// Classified request failures. Callers match with errors.Is.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrServer       = errors.New("server error")
)

const defaultTimeout = 30 * time.Second

// Client performs authenticated requests against the document store.
// Credentials ride on a session cookie supplied by the surrounding
// application; the client never manages sessions itself.
type Client struct {
	baseURL string
	cookie  *http.Cookie
	http    *http.Client
}

// New returns a client for the given base URL. The cookie value may be
// empty when the store does not require credentials (local testing).
func New(baseURL, cookieName, cookieValue string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
	if cookieValue != "" {
		c.cookie = &http.Cookie{Name: cookieName, Value: cookieValue}
	}
	return c
}

// DocumentStream issues the credentialed GET for a document's PDF bytes
// and returns the raw response. extra headers (If-None-Match, Range)
// pass through untouched so the cache layer can revalidate and resume.
// The caller owns the response body.
func (c *Client) DocumentStream(ctx context.Context, docID string, extra http.Header) (*http.Response, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.documentPath(docID)+"/file", nil)
	if err != nil {
		return nil, err
	}
	for key, values := range extra {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("document stream: %w", err)
	}
	// 2xx, 304 and 206 are all meaningful to the cache.
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		return nil, classify(resp)
	}
	return resp, nil
}

// ListAnnotations fetches the persisted annotation records for a
// document. LocalIDs are not assigned here; the loader owns that.
func (c *Client) ListAnnotations(ctx context.Context, docID string) ([]annotation.Annotation, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.documentPath(docID)+"/annotations", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list annotations: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, classify(resp)
	}
	var records []annotation.Annotation
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode annotation list: %w", err)
	}
	return records, nil
}

// CreateAnnotation posts {page, kind, payload} and returns the server
// id assigned to the new record.
func (c *Client) CreateAnnotation(ctx context.Context, docID string, a annotation.Annotation) (int64, error) {
	body := struct {
		Page    int                `json:"page"`
		Kind    annotation.Kind    `json:"kind"`
		Payload annotation.Payload `json:"payload"`
	}{Page: a.Page, Kind: a.Kind, Payload: a.Payload}
	encoded, err := json.Marshal(body)
	if err != nil {
		return 0, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, c.documentPath(docID)+"/annotations", bytes.NewReader(encoded))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("create annotation: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return 0, classify(resp)
	}
	var created struct {
		ID int64 `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return 0, fmt.Errorf("decode create response: %w", err)
	}
	if created.ID == 0 {
		return 0, fmt.Errorf("create annotation: server returned no id")
	}
	return created.ID, nil
}

// DeleteAnnotation removes a persisted record by server id.
func (c *Client) DeleteAnnotation(ctx context.Context, docID string, serverID int64) error {
	path := fmt.Sprintf("%s/annotations/%d", c.documentPath(docID), serverID)
	req, err := c.newRequest(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("delete annotation %d: %w", serverID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return classify(resp)
	}
	return nil
}

func (c *Client) documentPath(docID string) string {
	return c.baseURL + "/documents/" + url.PathEscape(docID)
}

func (c *Client) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	return req, nil
}

func classify(resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	base := ErrServer
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		base = ErrUnauthorized
	case http.StatusNotFound:
		base = ErrNotFound
	}
	return fmt.Errorf("%w: %s (%s)", base, resp.Status, strings.TrimSpace(string(snippet)))
}
