package storage

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
)

// ErrNotConfigured is returned when the Supabase settings are missing. Handlers
// map it to 503 so callers can tell "dependency absent" from "your input was bad".
var ErrNotConfigured = errors.New("storage is not configured")

// UpstreamError wraps a failed Supabase call. Handlers map it to 502.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("supabase error: status %d body: %s", e.Status, e.Body)
}

// Client talks to the Supabase storage REST API for a single bucket.
type Client struct {
	BaseURL    string
	SecretKey  string
	Bucket     string
	HTTPClient *http.Client
}

func (c *Client) configured() bool {
	return c != nil && c.BaseURL != "" && c.SecretKey != "" && c.Bucket != ""
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	return c.HTTPClient
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	// Supabase expects both headers carrying the service_role key.
	req.Header.Set("apikey", c.SecretKey)
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, &UpstreamError{Status: 0, Body: err.Error()}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// Upload stores bytes at path inside the bucket and returns the stored path.
func (c *Client) Upload(ctx context.Context, path string, data []byte, contentType string, upsert bool) (string, error) {
	if !c.configured() {
		return "", ErrNotConfigured
	}
	path = strings.TrimLeft(path, "/")
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", strings.TrimRight(c.BaseURL, "/"), c.Bucket, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if upsert {
		req.Header.Set("x-upsert", "true")
	}
	if _, err := c.do(req); err != nil {
		return "", err
	}
	return path, nil
}

// PublicURL builds the public object URL for a path in the bucket.
func (c *Client) PublicURL(path string) (string, error) {
	if !c.configured() {
		return "", ErrNotConfigured
	}
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s",
		strings.TrimRight(c.BaseURL, "/"), c.Bucket, strings.TrimLeft(path, "/")), nil
}

type signedURLResponse struct {
	SignedURL      string `json:"signedURL"`
	SignedURLCamel string `json:"signedUrl"`
}

// SignedURL creates a temporary signed URL for a private object.
func (c *Client) SignedURL(ctx context.Context, path string, expiresIn time.Duration) (string, error) {
	if !c.configured() {
		return "", ErrNotConfigured
	}
	path = strings.TrimLeft(path, "/")
	base := strings.TrimRight(c.BaseURL, "/")
	endpoint := fmt.Sprintf("%s/storage/v1/object/sign/%s/%s", base, c.Bucket, path)

	payload, _ := json.Marshal(map[string]interface{}{"expiresIn": int(expiresIn.Seconds())})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return "", err
	}
	var data signedURLResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return "", &UpstreamError{Status: 200, Body: string(body)}
	}
	signed := data.SignedURL
	if signed == "" {
		signed = data.SignedURLCamel
	}
	if signed == "" {
		return "", &UpstreamError{Status: 200, Body: string(body)}
	}
	if !strings.HasPrefix(signed, "http") {
		if !strings.HasPrefix(signed, "/") {
			signed = "/" + signed
		}
		if !strings.HasPrefix(signed, "/storage/v1") {
			signed = "/storage/v1" + signed
		}
		signed = base + signed
	}
	return signed, nil
}

// Delete removes objects from the bucket.
func (c *Client) Delete(ctx context.Context, paths []string) error {
	if !c.configured() {
		return ErrNotConfigured
	}
	cleaned := make([]string, 0, len(paths))
	for _, p := range paths {
		cleaned = append(cleaned, strings.TrimLeft(p, "/"))
	}
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s", strings.TrimRight(c.BaseURL, "/"), url.PathEscape(c.Bucket))

	payload, _ := json.Marshal(map[string]interface{}{"prefixes": cleaned})
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	_, err = c.do(req)
	return err
}
