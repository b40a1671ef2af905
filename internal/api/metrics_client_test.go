package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/annolens/annolens-cli/internal/retry"
)

func TestComputeMetric(t *testing.T) {
	var gotPath, gotMethod, gotAccept string
	var gotQuery map[string][]string
	var gotBody map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		gotAccept = r.Header.Get("Accept")
		gotQuery = r.URL.Query()

		payload, _ := io.ReadAll(r.Body)
		json.Unmarshal(payload, &gotBody)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results": {"1": 2, "2": 7}, "description": "Tokens length"}`))
	}))
	defer server.Close()

	client := &MetricsClient{BaseURL: server.URL}
	resp, err := client.ComputeMetric(context.Background(), "wikiner-es", "tokens_length", MetricQuery{
		Query:    "status:Validated",
		Interval: 0.5,
		Size:     10,
	})
	if err != nil {
		t.Fatalf("ComputeMetric failed: %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("expected POST, got %s", gotMethod)
	}
	wantPath := "/api/datasets/token-classification/wikiner-es/metrics/tokens_length:summary"
	if gotPath != wantPath {
		t.Errorf("expected path %q, got %q", wantPath, gotPath)
	}
	if gotAccept != "application/json" {
		t.Errorf("expected Accept application/json, got %q", gotAccept)
	}
	if got := gotQuery["interval"]; len(got) != 1 || got[0] != "0.5" {
		t.Errorf("expected interval=0.5, got %v", got)
	}
	if got := gotQuery["size"]; len(got) != 1 || got[0] != "10" {
		t.Errorf("expected size=10, got %v", got)
	}
	if gotBody["query_text"] != "status:Validated" {
		t.Errorf("expected query_text in body, got %v", gotBody)
	}

	if resp.Description != "Tokens length" {
		t.Errorf("unexpected description: %q", resp.Description)
	}
	var results map[string]float64
	if err := json.Unmarshal(resp.Results, &results); err != nil {
		t.Fatalf("results not decodable: %v", err)
	}
	if results["2"] != 7 {
		t.Errorf("unexpected results: %v", results)
	}
}

func TestComputeMetricOmitsZeroParams(t *testing.T) {
	var gotRawQuery string
	var gotBody map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRawQuery = r.URL.RawQuery
		payload, _ := io.ReadAll(r.Body)
		json.Unmarshal(payload, &gotBody)
		w.Write([]byte(`{"results": {}}`))
	}))
	defer server.Close()

	client := &MetricsClient{BaseURL: server.URL}
	_, err := client.ComputeMetric(context.Background(), "ds", "predicted_entity_capitalness", MetricQuery{})
	if err != nil {
		t.Fatalf("ComputeMetric failed: %v", err)
	}

	if gotRawQuery != "" {
		t.Errorf("expected no query parameters, got %q", gotRawQuery)
	}
	if _, ok := gotBody["query_text"]; ok {
		t.Errorf("expected no query_text in body, got %v", gotBody)
	}
}

func TestComputeMetricEscapesDatasetName(t *testing.T) {
	var gotEscapedPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotEscapedPath = r.URL.EscapedPath()
		w.Write([]byte(`{"results": {}}`))
	}))
	defer server.Close()

	client := &MetricsClient{BaseURL: server.URL}
	_, err := client.ComputeMetric(context.Background(), "team/dataset", "tokens_length", MetricQuery{})
	if err != nil {
		t.Fatalf("ComputeMetric failed: %v", err)
	}

	want := "/api/datasets/token-classification/team%2Fdataset/metrics/tokens_length:summary"
	if gotEscapedPath != want {
		t.Errorf("expected path %q, got %q", want, gotEscapedPath)
	}
}

func TestComputeMetricAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := &MetricsClient{BaseURL: server.URL}
	_, err := client.ComputeMetric(context.Background(), "missing", "tokens_length", MetricQuery{})
	if err == nil {
		t.Fatal("expected error for 404 response")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", apiErr.StatusCode)
	}
	if !IsNotFound(err) {
		t.Error("IsNotFound should report true")
	}
}

func TestComputeMetricRetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"results": {"1": 1}}`))
	}))
	defer server.Close()

	client := &MetricsClient{
		BaseURL: server.URL,
		Retry: retry.Config{
			MaxRetries:      3,
			BaseDelay:       time.Millisecond,
			MaxDelay:        5 * time.Millisecond,
			BackoffMultiple: 2.0,
		},
	}

	_, err := client.ComputeMetric(context.Background(), "ds", "tokens_length", MetricQuery{})
	if err != nil {
		t.Fatalf("ComputeMetric failed after retries: %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestComputeMetricDoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := &MetricsClient{
		BaseURL: server.URL,
		Retry: retry.Config{
			MaxRetries:      3,
			BaseDelay:       time.Millisecond,
			BackoffMultiple: 2.0,
		},
	}

	_, err := client.ComputeMetric(context.Background(), "ds", "tokens_length", MetricQuery{})
	if err == nil {
		t.Fatal("expected error for 400 response")
	}
	if attempts != 1 {
		t.Errorf("expected a single attempt for a client error, got %d", attempts)
	}
}

func TestComputeMetricRequiresDataset(t *testing.T) {
	client := &MetricsClient{BaseURL: "http://localhost:1"}
	_, err := client.ComputeMetric(context.Background(), "", "tokens_length", MetricQuery{})
	if err == nil {
		t.Fatal("expected error for empty dataset name")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		statusCode int
		want       bool
	}{
		{name: "network error", err: errors.New("connection refused"), statusCode: 0, want: true},
		{name: "server error", err: &APIError{StatusCode: 500}, statusCode: 500, want: true},
		{name: "rate limited", err: &APIError{StatusCode: 429}, statusCode: 429, want: true},
		{name: "not found", err: &APIError{StatusCode: 404}, statusCode: 404, want: false},
		{name: "bad request", err: &APIError{StatusCode: 400}, statusCode: 400, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryable(tt.err, tt.statusCode); got != tt.want {
				t.Errorf("isRetryable(%v, %d) = %v, want %v", tt.err, tt.statusCode, got, tt.want)
			}
		})
	}
}

func TestNewClientInjectsBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"results": {}}`))
	}))
	defer server.Close()

	client := &MetricsClient{
		Client:  NewClient(5*time.Second, "secret-key"),
		BaseURL: server.URL,
	}
	_, err := client.ComputeMetric(context.Background(), "ds", "tokens_length", MetricQuery{})
	if err != nil {
		t.Fatalf("ComputeMetric failed: %v", err)
	}

	if gotAuth != "Bearer secret-key" {
		t.Errorf("expected Bearer token header, got %q", gotAuth)
	}
}

func TestNewClientWithoutToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"results": {}}`))
	}))
	defer server.Close()

	client := &MetricsClient{
		Client:  NewClient(5*time.Second, "  "),
		BaseURL: server.URL,
	}
	if _, err := client.ComputeMetric(context.Background(), "ds", "tokens_length", MetricQuery{}); err != nil {
		t.Fatalf("ComputeMetric failed: %v", err)
	}

	if gotAuth != "" {
		t.Errorf("expected no Authorization header, got %q", gotAuth)
	}
}
