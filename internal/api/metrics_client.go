package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/annolens/annolens-cli/internal/retry"
)

// DefaultBaseURL is the annotation server a locally-started instance listens on.
const DefaultBaseURL = "http://localhost:6900"

// MetricQuery carries the optional parameters of a metric computation.
// Zero values are omitted from the request.
type MetricQuery struct {
	// Query is a search expression restricting the records the metric is
	// computed over.
	Query string

	// Interval is the histogram bucket size (or the variability threshold
	// for consistency metrics).
	Interval float64

	// Size is the number of top elements to retrieve.
	Size int
}

// MetricResponse is the decoded response of a metric summary computation.
// Results stays raw: each metric decodes it into its natural shape.
type MetricResponse struct {
	Results     json.RawMessage `json:"results"`
	Description string          `json:"description"`
}

// MetricsClient computes named server-side metrics over a dataset's
// token-classification annotations and predictions.
type MetricsClient struct {
	Client  *http.Client
	BaseURL string // optional; defaults to DefaultBaseURL

	// Retry controls backoff for transient failures. Zero value disables
	// retries.
	Retry retry.Config

	// Logger, when non-nil, receives retry attempt logs.
	Logger retry.Logger
}

// isRetryable reports whether a metric request should be re-attempted.
// Network errors, server errors and rate limiting are transient.
func isRetryable(err error, statusCode int) bool {
	if statusCode == 0 {
		return err != nil
	}
	return statusCode >= 500 || statusCode == http.StatusTooManyRequests
}

// ComputeMetric requests the computation of metricID over the given dataset.
// The endpoint is
//
//	POST {base}/api/datasets/token-classification/{dataset}/metrics/{metricID}:summary
//
// with interval/size as query parameters and the search query in the body.
func (c *MetricsClient) ComputeMetric(ctx context.Context, dataset, metricID string, q MetricQuery) (*MetricResponse, error) {
	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	dataset = strings.TrimSpace(dataset)
	if dataset == "" {
		return nil, fmt.Errorf("dataset name is required")
	}

	baseURL := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	endpoint := fmt.Sprintf("%s/api/datasets/token-classification/%s/metrics/%s:summary",
		baseURL, url.PathEscape(dataset), url.PathEscape(metricID))

	params := url.Values{}
	if q.Interval != 0 {
		params.Set("interval", strconv.FormatFloat(q.Interval, 'f', -1, 64))
	}
	if q.Size != 0 {
		params.Set("size", strconv.Itoa(q.Size))
	}
	if len(params) > 0 {
		endpoint = endpoint + "?" + params.Encode()
	}

	body := map[string]string{}
	if strings.TrimSpace(q.Query) != "" {
		body["query_text"] = q.Query
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode metric query: %w", err)
	}

	opts := retry.Options{
		Config:       c.Retry,
		ErrorChecker: isRetryable,
		Logger:       c.Logger,
		Name:         "metrics",
	}

	result, err := retry.Execute(ctx, opts, func(attempt int) (any, int, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, 0, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return nil, 0, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, resp.StatusCode, &APIError{StatusCode: resp.StatusCode}
		}

		var parsed MetricResponse
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return nil, resp.StatusCode, fmt.Errorf("decode metric response: %w", err)
		}
		return &parsed, resp.StatusCode, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*MetricResponse), nil
}
