package backend

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// GetSettings returns the editable backend settings and their metadata.
func (c *Client) GetSettings(ctx context.Context) (*Settings, error) {
	var out Settings
	if err := c.getJSON(ctx, "/api/config", &out); err != nil {
		return nil, fmt.Errorf("getting settings: %w", err)
	}
	return &out, nil
}

// UpdateSettings applies a partial update and returns the resulting settings.
func (c *Client) UpdateSettings(ctx context.Context, updates map[string]any) (*Settings, error) {
	req := struct {
		Updates map[string]any `json:"updates"`
	}{updates}
	var out Settings
	if err := c.postJSON(ctx, "/api/config", req, &out); err != nil {
		return nil, fmt.Errorf("updating settings: %w", err)
	}
	return &out, nil
}

// ListSettingTests returns the connectivity checks the backend offers.
func (c *Client) ListSettingTests(ctx context.Context) ([]SettingTest, error) {
	var out struct {
		Tests []SettingTest `json:"tests"`
	}
	if err := c.getJSON(ctx, "/api/config/tests", &out); err != nil {
		return nil, fmt.Errorf("listing setting tests: %w", err)
	}
	return out.Tests, nil
}

// RunSettingTest runs one connectivity check. A non-2xx reply is returned
// as an *APIError carrying the backend's detail text.
func (c *Client) RunSettingTest(ctx context.Context, key string) (map[string]any, error) {
	out := map[string]any{}
	if err := c.postJSON(ctx, "/api/config/tests/"+url.PathEscape(key), nil, &out); err != nil {
		return nil, fmt.Errorf("running test %s: %w", key, err)
	}
	return out, nil
}

// ParseSettingUpdates turns KEY=VALUE assignments into an update map.
// Keys must appear in meta; values of number settings are sent as numbers.
// Empty values are skipped.
func ParseSettingUpdates(meta []SettingMeta, assignments []string) (map[string]any, error) {
	types := make(map[string]string, len(meta))
	for _, m := range meta {
		types[m.Key] = m.Type
	}

	updates := make(map[string]any)
	for _, a := range assignments {
		key, value, ok := strings.Cut(a, "=")
		if !ok {
			return nil, fmt.Errorf("invalid assignment %q: expected KEY=VALUE", a)
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		typ, known := types[key]
		if !known {
			return nil, fmt.Errorf("unknown setting %q", key)
		}
		if value == "" {
			continue
		}
		if typ == "number" {
			n, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, fmt.Errorf("setting %s expects a number, got %q", key, value)
			}
			if n == float64(int64(n)) {
				updates[key] = int64(n)
			} else {
				updates[key] = n
			}
			continue
		}
		updates[key] = value
	}
	return updates, nil
}
