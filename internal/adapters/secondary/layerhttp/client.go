package layerhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// errNotFound marks a 404 from a lower layer so the typed clients can
// translate it into the matching domain sentinel.
var errNotFound = errors.New("not found")

// client is the shared HTTP plumbing for the lower vTDS layer APIs.
type client struct {
	httpClient *http.Client
	baseURL    string
}

func newClient(baseURL string, timeout time.Duration) *client {
	return &client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

func (c *client) getJSON(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

func (c *client) putJSON(ctx context.Context, path string, body any) error {
	return c.doJSON(ctx, http.MethodPut, path, body, nil)
}

func (c *client) doJSON(ctx context.Context, method, path string, body, out any) error {
	url := c.baseURL + path

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("create layer request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log.WithFields(log.Fields{
		"method": method,
		"url":    url,
	}).Debug("calling lower layer API")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("layer request %s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("layer request %s %s: %w: %s", method, url, errNotFound, data)
		}
		return fmt.Errorf("layer request %s %s: status %d: %s", method, url, resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode layer response %s %s: %w", method, url, err)
	}
	return nil
}
