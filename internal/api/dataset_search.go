package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// DatasetSearchResult represents a single dataset in search results
type DatasetSearchResult struct {
	Name        string   `json:"name"`
	Task        string   `json:"task"`
	Owner       string   `json:"owner"`
	Tags        []string `json:"tags"`
	Records     int      `json:"records"`
	LastUpdated string   `json:"last_updated"`
}

// DatasetSearcher lists datasets available on the annotation server.
type DatasetSearcher struct {
	Client  *http.Client
	BaseURL string // optional; defaults to DefaultBaseURL
}

// Search queries the server for datasets matching the search term.
// An empty term lists the most recently updated datasets.
func (s *DatasetSearcher) Search(ctx context.Context, query string, limit int) ([]DatasetSearchResult, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	baseURL := strings.TrimRight(strings.TrimSpace(s.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	if limit <= 0 {
		limit = 20
	}

	searchURL := fmt.Sprintf("%s/api/datasets", baseURL)
	params := url.Values{}
	if query != "" {
		params.Add("search", query)
	}
	params.Add("limit", fmt.Sprintf("%d", limit))
	params.Add("sort", "last_updated")
	searchURL = searchURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode}
	}

	var results []DatasetSearchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decode dataset list: %w", err)
	}
	return results, nil
}
