package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPDoer describes the HTTP client used by Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the presentation backend.
type Client struct {
	baseURL string
	http    HTTPDoer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) { c.http = doer }
}

// WithTimeout sets a per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d}
		}
	}
}

// New creates a client for the backend rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root the client was created with.
func (c *Client) BaseURL() string { return c.baseURL }

// AssetBase returns the path under which a project's slide files and their
// relative assets are served.
func AssetBase(project string) string {
	return "/projects/" + url.PathEscape(project) + "/html_files/"
}

// ListFiles returns the ordered slide filenames of a project.
func (c *Client) ListFiles(ctx context.Context, project string) ([]string, error) {
	q := url.Values{"project": {project}}
	body, err := c.do(ctx, http.MethodGet, "/api/files?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("listing files of %s: %w", project, err)
	}

	var files []string
	if err := json.Unmarshal(body, &files); err != nil {
		return nil, fmt.Errorf("listing files of %s: %w", project, ErrMalformedResponse)
	}
	// A JSON null decodes without error but is not a list.
	if files == nil {
		return nil, fmt.Errorf("listing files of %s: %w", project, ErrMalformedResponse)
	}
	return files, nil
}

// FetchSlide returns the raw markup of one slide file.
func (c *Client) FetchSlide(ctx context.Context, project, file string) (string, error) {
	body, err := c.do(ctx, http.MethodGet, AssetBase(project)+url.PathEscape(file), nil)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", file, err)
	}
	return string(body), nil
}

// SaveSlide replaces the stored markup of one slide file.
func (c *Client) SaveSlide(ctx context.Context, project, file, content string) error {
	req := struct {
		Project string `json:"project"`
		File    string `json:"file"`
		Content string `json:"content"`
	}{project, file, content}
	if _, err := c.doJSON(ctx, http.MethodPost, "/api/save", req); err != nil {
		return fmt.Errorf("saving %s: %w", file, err)
	}
	return nil
}

// getJSON fetches path and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return decode(body, out)
}

// postJSON sends in as a JSON body and decodes the reply into out when
// out is non-nil.
func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := c.doJSON(ctx, http.MethodPost, path, in)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decode(body, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, in any) ([]byte, error) {
	var payload io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		payload = bytes.NewReader(data)
	}
	return c.do(ctx, method, path, payload)
}

func (c *Client) do(ctx context.Context, method, path string, payload io.Reader) ([]byte, error) {
	resp, err := c.send(ctx, method, path, payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp.StatusCode, body)
	}
	return body, nil
}

// send issues the request and returns the raw response. The caller closes
// the body.
func (c *Client) send(ctx context.Context, method, path string, payload io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func decode(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
