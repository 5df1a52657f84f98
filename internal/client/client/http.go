package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/phishguard/internal/client/models"
)

// HTTPClient talks to the PhishGuard backend REST API with a bearer
// credential. Transport failures and 5xx responses surface as
// ErrUnavailable; 401/403 as ErrUnauthorized.
type HTTPClient struct {
	baseURL     string
	accessToken string
	hc          *http.Client
}

func NewHTTPClient(baseURL, accessToken string) *HTTPClient {
	return &HTTPClient{
		baseURL:     baseURL,
		accessToken: accessToken,
		hc:          &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *HTTPClient) Close() error { return nil }

func (c *HTTPClient) GetEncryptionStatus(ctx context.Context) (*EncryptionStatus, error) {
	var status EncryptionStatus
	if err := c.doJSON(ctx, http.MethodGet, "/api/encryption/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *HTTPClient) SaveSalt(ctx context.Context, salt []byte) error {
	body := struct {
		Salt []byte `json:"salt"`
	}{Salt: salt}
	return c.doJSON(ctx, http.MethodPost, "/api/encryption/salt", body, nil)
}

func (c *HTTPClient) ListAnalyses(ctx context.Context, limit int) ([]models.EncryptedAnalysis, error) {
	var page struct {
		Analyses []models.EncryptedAnalysis `json:"analyses"`
	}
	path := "/api/analyses?limit=" + strconv.Itoa(limit)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return page.Analyses, nil
}

func (c *HTTPClient) SaveAnalysis(ctx context.Context, analysis *models.EncryptedAnalysis) error {
	return c.doJSON(ctx, http.MethodPost, "/api/analyses", analysis, nil)
}

func (c *HTTPClient) GetUnlockStatus(ctx context.Context) (*models.UnlockAttempts, error) {
	var status models.UnlockAttempts
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/unlock-status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// doJSON performs one request/response cycle: marshals in (when non-nil),
// sets the bearer header, maps the status code to sentinel errors, and
// unmarshals the body into out (when non-nil).
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, resp.Status)
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %s", ErrUnavailable, resp.Status)
	case resp.StatusCode >= http.StatusBadRequest:
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("request failed: %s; body: %s", resp.Status, string(b))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
