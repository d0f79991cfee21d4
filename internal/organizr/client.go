package organizr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/expectedbehaviors/organizr-tab-controller/pkg/logging"
	"github.com/expectedbehaviors/organizr-tab-controller/pkg/tabs"
)

const subsystem = "Organizr"

// APIVersion selects the wire dialect the client speaks.
type APIVersion string

const (
	// APIVersionV2 is the JSON REST API. Preferred.
	APIVersionV2 APIVersion = "v2"
	// APIVersionV1 is the legacy form-encoded data[...] API.
	APIVersionV1 APIVersion = "v1"
)

// APIError is returned when Organizr answers with a non-2xx status.
type APIError struct {
	Context    string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("organizr API error during %s: HTTP %d", e.Context, e.StatusCode)
}

// Client talks to a single Organizr instance.
//
// The API token is guarded by a mutex so it can be swapped at runtime
// when the mounted secret rotates; in-flight requests keep the token
// they started with.
type Client struct {
	baseURL string
	version APIVersion
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithAPIVersion selects the wire dialect. Defaults to v2.
func WithAPIVersion(v APIVersion) Option {
	return func(c *Client) { c.version = v }
}

// WithTimeout sets the per-request HTTP timeout. Defaults to 30s.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client, mainly for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient creates a client for the Organizr instance at baseURL,
// authenticating every request with apiKey via the Token header.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		version: APIVersionV2,
		token:   apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the API token used for subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	logging.Info(subsystem, "API token updated")
}

func (c *Client) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) tabsURL(suffix string) string {
	return c.baseURL + "/api/v2/tabs" + suffix
}

func (c *Client) v1EditorURL() string {
	return c.baseURL + "/api/?v1/settings/tab/editor/tabs"
}

func (c *Client) v1TabListURL() string {
	return c.baseURL + "/api/?v1/tab/list"
}

// HealthCheck reports whether the Organizr instance answers its ping
// endpoint. Transport errors are treated as unhealthy, not fatal.
func (c *Client) HealthCheck(ctx context.Context) bool {
	_, err := c.do(ctx, http.MethodGet, c.baseURL+"/api/v2/ping", nil, "", "health check")
	return err == nil
}

// ListTabs fetches every tab configured in Organizr.
func (c *Client) ListTabs(ctx context.Context) ([]tabs.Tab, error) {
	if c.version == APIVersionV1 {
		return c.listTabsV1(ctx)
	}
	return c.listTabsV2(ctx)
}

func (c *Client) listTabsV2(ctx context.Context) ([]tabs.Tab, error) {
	body, err := c.do(ctx, http.MethodGet, c.tabsURL(""), nil, "", "list tabs")
	if err != nil {
		return nil, err
	}

	raw, ok := extractList(body, "tabs")
	if !ok {
		logging.Warn(subsystem, "Unexpected tab list response shape: %s", truncate(body))
		return nil, nil
	}
	return parseTabs(raw), nil
}

func (c *Client) listTabsV1(ctx context.Context) ([]tabs.Tab, error) {
	body, err := c.do(ctx, http.MethodGet, c.v1TabListURL(), nil, "", "list tabs (v1)")
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data struct {
			Tabs []map[string]any `json:"tabs"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode v1 tab list: %w", err)
	}
	return parseTabs(envelope.Data.Tabs), nil
}

// CreateTab creates a new tab and returns it with the server-assigned ID
// when the server reports one.
func (c *Client) CreateTab(ctx context.Context, tab tabs.Tab) (tabs.Tab, error) {
	logging.Info(subsystem, "Creating tab %q (%s)", tab.Name, tab.URL)
	if c.version == APIVersionV1 {
		return c.createTabV1(ctx, tab)
	}
	return c.createTabV2(ctx, tab)
}

func (c *Client) createTabV2(ctx context.Context, tab tabs.Tab) (tabs.Tab, error) {
	payload := v2Payload(tab)
	delete(payload, "id")

	body, err := c.doJSON(ctx, http.MethodPost, c.tabsURL(""), payload, "create tab")
	if err != nil {
		return tabs.Tab{}, err
	}

	if created, ok := extractObject(body); ok {
		if id := intField(created, 0, "id"); id != 0 {
			tab.ID = id
		}
	}
	return tab, nil
}

func (c *Client) createTabV1(ctx context.Context, tab tabs.Tab) (tabs.Tab, error) {
	form := v1Payload(tab, "addNewTab")
	if _, err := c.do(ctx, http.MethodPost, c.v1EditorURL(), strings.NewReader(form.Encode()),
		"application/x-www-form-urlencoded", "create tab (v1)"); err != nil {
		return tabs.Tab{}, err
	}

	// v1 does not return the new ID; re-list to find it.
	all, err := c.listTabsV1(ctx)
	if err != nil {
		return tab, nil
	}
	for _, t := range all {
		if t.Name == tab.Name && t.URL == tab.URL {
			tab.ID = t.ID
			return tab, nil
		}
	}
	return tab, nil
}

// UpdateTab updates an existing tab in place. The tab's ID must be set.
func (c *Client) UpdateTab(ctx context.Context, tab tabs.Tab) error {
	if tab.ID == 0 {
		return fmt.Errorf("cannot update tab %q without an ID", tab.Name)
	}
	logging.Info(subsystem, "Updating tab %d (%q)", tab.ID, tab.Name)
	if c.version == APIVersionV1 {
		return c.updateTabV1(ctx, tab)
	}

	_, err := c.doJSON(ctx, http.MethodPut, c.tabsURL(fmt.Sprintf("/%d", tab.ID)),
		v2Payload(tab), fmt.Sprintf("update tab %d", tab.ID))
	return err
}

func (c *Client) updateTabV1(ctx context.Context, tab tabs.Tab) error {
	form := v1Payload(tab, "editTab")
	if _, err := c.do(ctx, http.MethodPost, c.v1EditorURL(), strings.NewReader(form.Encode()),
		"application/x-www-form-urlencoded", fmt.Sprintf("update tab %d (v1)", tab.ID)); err != nil {
		return err
	}

	// The v1 editTab action silently ignores type changes; a separate
	// changeType call is required.
	change := v1Payload(tab, "changeType")
	_, err := c.do(ctx, http.MethodPost, c.v1EditorURL(), strings.NewReader(change.Encode()),
		"application/x-www-form-urlencoded", fmt.Sprintf("change tab type %d (v1)", tab.ID))
	return err
}

// DeleteTab removes a tab by ID.
func (c *Client) DeleteTab(ctx context.Context, id int) error {
	logging.Info(subsystem, "Deleting tab %d", id)
	if c.version == APIVersionV1 {
		form := v1Payload(tabs.Tab{ID: id}, "deleteTab")
		// deleteTab only consumes the action and ID fields.
		_, err := c.do(ctx, http.MethodPost, c.v1EditorURL(), strings.NewReader(form.Encode()),
			"application/x-www-form-urlencoded", fmt.Sprintf("delete tab %d (v1)", id))
		return err
	}

	_, err := c.do(ctx, http.MethodDelete, c.tabsURL(fmt.Sprintf("/%d", id)), nil, "",
		fmt.Sprintf("delete tab %d", id))
	return err
}

// doJSON marshals payload and performs a JSON request.
func (c *Client) doJSON(ctx context.Context, method, url string, payload any, opContext string) ([]byte, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", opContext, err)
	}
	return c.do(ctx, method, url, bytes.NewReader(buf), "application/json", opContext)
}

// do performs one authenticated request and returns the response body,
// mapping non-2xx statuses to *APIError.
func (c *Client) do(ctx context.Context, method, url string, body io.Reader, contentType, opContext string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", opContext, err)
	}
	req.Header.Set("Token", c.currentToken())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opContext, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", opContext, err)
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{
			Context:    opContext,
			StatusCode: resp.StatusCode,
			Body:       string(data),
		}
	}
	return data, nil
}

// extractList digs a list of objects out of the varying response
// envelopes Organizr versions produce: a bare array, {"data": [...]},
// or {"data": {"<nested>": [...]}}.
func extractList(body []byte, nestedKey string) ([]map[string]any, bool) {
	var bare []map[string]any
	if err := json.Unmarshal(body, &bare); err == nil {
		return bare, true
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, false
	}
	data, ok := wrapped["data"]
	if !ok {
		return nil, false
	}

	if err := json.Unmarshal(data, &bare); err == nil {
		return bare, true
	}

	var nested map[string]json.RawMessage
	if err := json.Unmarshal(data, &nested); err != nil {
		return nil, false
	}
	inner, ok := nested[nestedKey]
	if !ok {
		return nil, false
	}
	if err := json.Unmarshal(inner, &bare); err != nil {
		return nil, false
	}
	return bare, true
}

// extractObject unwraps a single object from either a bare JSON object
// or a {"data": {...}} envelope.
func extractObject(body []byte) (map[string]any, bool) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, false
	}
	if data, ok := raw["data"].(map[string]any); ok {
		return data, true
	}
	return raw, true
}

func parseTabs(raw []map[string]any) []tabs.Tab {
	out := make([]tabs.Tab, 0, len(raw))
	for _, r := range raw {
		out = append(out, parseTab(r))
	}
	return out
}

func truncate(body []byte) string {
	const max = 200
	if len(body) <= max {
		return string(body)
	}
	return string(body[:max]) + "..."
}
