package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/Afrawles/teampulse/internal/report"
)

const requestTimeout = 30 * time.Second

// APIError is a structured provider error body with a human-readable message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("provider returned status %d", e.Status)
	}
	return fmt.Sprintf("provider returned status %d: %s", e.Status, e.Message)
}

// Client is the shared HTTP client for all metric providers. Every provider
// call is a POST with the query parameters in the body; responses decode
// into provider-specific result types. Calls pass through one rate limiter
// so a report fanning out to four backends does not burst past internal API
// quotas.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	endpoints  map[report.Kind]string
}

func NewClient(endpoints map[report.Kind]string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		limiter:    rate.NewLimiter(rate.Limit(10), 20),
		endpoints:  endpoints,
	}
}

// metricsRequest is the common POST body accepted by every provider.
type metricsRequest struct {
	StartDate string            `json:"startDate"`
	EndDate   string            `json:"endDate"`
	Subjects  []string          `json:"subjects"`
	Options   map[string]string `json:"options,omitempty"`
}

type errorBody struct {
	Message string `json:"message"`
}

func newMetricsRequest(q report.Query) metricsRequest {
	req := metricsRequest{Subjects: q.Subjects, Options: q.Options}
	if !q.Start.IsZero() {
		req.StartDate = q.Start.Format("2006-01-02")
	}
	if !q.End.IsZero() {
		req.EndDate = q.End.Format("2006-01-02")
	}
	return req
}

func (c *Client) post(ctx context.Context, kind report.Kind, path string, q report.Query, out any) error {
	base, ok := c.endpoints[kind]
	if !ok || base == "" {
		return fmt.Errorf("no endpoint configured for provider %s", kind)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(newMetricsRequest(q))
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		var eb errorBody
		_ = json.Unmarshal(raw, &eb)
		return &APIError{Status: resp.StatusCode, Message: eb.Message}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
