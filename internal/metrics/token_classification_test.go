package metrics

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/annolens/annolens-cli/internal/api"
)

// stubClient records every metric request and replays canned responses.
type stubClient struct {
	calls []stubCall

	results     string
	description string
	err         error
}

type stubCall struct {
	dataset  string
	metricID string
	query    api.MetricQuery
}

func (s *stubClient) ComputeMetric(_ context.Context, dataset, metricID string, q api.MetricQuery) (*api.MetricResponse, error) {
	s.calls = append(s.calls, stubCall{dataset: dataset, metricID: metricID, query: q})
	if s.err != nil {
		return nil, s.err
	}
	results := s.results
	if results == "" {
		results = `{}`
	}
	return &api.MetricResponse{
		Results:     json.RawMessage(results),
		Description: s.description,
	}, nil
}

func (s *stubClient) lastCall(t *testing.T) stubCall {
	t.Helper()
	if len(s.calls) == 0 {
		t.Fatal("expected a metric request, got none")
	}
	return s.calls[len(s.calls)-1]
}

func TestTokensLengthDefaults(t *testing.T) {
	client := &stubClient{results: `{"1": 3, "2": 5}`, description: "Tokens length"}

	summary, err := TokensLength(context.Background(), client, "wikiner-es", TokensLengthOptions{})
	if err != nil {
		t.Fatalf("TokensLength failed: %v", err)
	}

	call := client.lastCall(t)
	if call.metricID != "tokens_length" {
		t.Errorf("expected metric id tokens_length, got %q", call.metricID)
	}
	if call.query.Interval != 1 {
		t.Errorf("expected default interval 1, got %v", call.query.Interval)
	}
	if summary.Description != "Tokens length" {
		t.Errorf("unexpected description: %q", summary.Description)
	}

	data, ok := summary.Data.(Distribution)
	if !ok {
		t.Fatalf("expected Distribution data, got %T", summary.Data)
	}
	if data["2"] != 5 {
		t.Errorf("expected bucket 2 count 5, got %v", data["2"])
	}
}

func TestTokensLengthRequiresDataset(t *testing.T) {
	client := &stubClient{}

	_, err := TokensLength(context.Background(), client, "  ", TokensLengthOptions{})
	if err == nil {
		t.Fatal("expected error for empty dataset name")
	}
	if len(client.calls) != 0 {
		t.Errorf("expected no metric request, got %d", len(client.calls))
	}
}

func TestMentionLengthLevels(t *testing.T) {
	tests := []struct {
		name       string
		level      string
		computeFor ComputeFor
		wantID     string
	}{
		{name: "default level is token", level: "", wantID: "predicted_mention_token_length"},
		{name: "token level", level: "token", wantID: "predicted_mention_token_length"},
		{name: "char level", level: "char", wantID: "predicted_mention_char_length"},
		{name: "level is normalized", level: "  CHAR ", wantID: "predicted_mention_char_length"},
		{name: "annotations selector", level: "token", computeFor: Annotations, wantID: "annotated_mention_token_length"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &stubClient{}
			_, err := MentionLength(context.Background(), client, "conll2002", MentionLengthOptions{
				Level:      tt.level,
				ComputeFor: tt.computeFor,
			})
			if err != nil {
				t.Fatalf("MentionLength failed: %v", err)
			}
			if got := client.lastCall(t).metricID; got != tt.wantID {
				t.Errorf("expected metric id %q, got %q", tt.wantID, got)
			}
		})
	}
}

func TestMentionLengthRejectsUnknownLevel(t *testing.T) {
	client := &stubClient{}

	_, err := MentionLength(context.Background(), client, "conll2002", MentionLengthOptions{Level: "word"})
	if err == nil {
		t.Fatal("expected error for unknown level")
	}
	if !strings.Contains(err.Error(), `unexpected level "word"`) {
		t.Errorf("unexpected error message: %v", err)
	}
	if len(client.calls) != 0 {
		t.Errorf("expected no metric request for invalid level, got %d", len(client.calls))
	}
}

func TestInvalidComputeForFailsBeforeRequest(t *testing.T) {
	client := &stubClient{}

	_, err := EntityLabels(context.Background(), client, "conll2002", EntityLabelsOptions{
		ComputeFor: ComputeFor(99),
	})
	if err == nil {
		t.Fatal("expected error for out-of-range compute-for value")
	}
	if !strings.Contains(err.Error(), "invalid compute-for value") {
		t.Errorf("unexpected error message: %v", err)
	}
	if len(client.calls) != 0 {
		t.Errorf("expected no metric request, got %d", len(client.calls))
	}
}

func TestEntityLabelsDefaults(t *testing.T) {
	client := &stubClient{results: `{"PER": 50, "ORG": 12}`}

	_, err := EntityLabels(context.Background(), client, "conll2002", EntityLabelsOptions{})
	if err != nil {
		t.Fatalf("EntityLabels failed: %v", err)
	}

	call := client.lastCall(t)
	if call.metricID != "predicted_entity_labels" {
		t.Errorf("expected metric id predicted_entity_labels, got %q", call.metricID)
	}
	if call.query.Size != 50 {
		t.Errorf("expected default size 50, got %d", call.query.Size)
	}
}

func TestEntityDensityDefaults(t *testing.T) {
	client := &stubClient{}

	_, err := EntityDensity(context.Background(), client, "conll2002", EntityDensityOptions{
		ComputeFor: Annotations,
	})
	if err != nil {
		t.Fatalf("EntityDensity failed: %v", err)
	}

	call := client.lastCall(t)
	if call.metricID != "annotated_entity_density" {
		t.Errorf("expected metric id annotated_entity_density, got %q", call.metricID)
	}
	if call.query.Interval != 0.005 {
		t.Errorf("expected default interval 0.005, got %v", call.query.Interval)
	}
}

func TestEntityCapitalness(t *testing.T) {
	client := &stubClient{results: `{"LOWER": 10, "UPPER": 2}`}

	summary, err := EntityCapitalness(context.Background(), client, "conll2002", EntityCapitalnessOptions{})
	if err != nil {
		t.Fatalf("EntityCapitalness failed: %v", err)
	}

	call := client.lastCall(t)
	if call.metricID != "predicted_entity_capitalness" {
		t.Errorf("expected metric id predicted_entity_capitalness, got %q", call.metricID)
	}
	data := summary.Data.(Distribution)
	if data["LOWER"] != 10 {
		t.Errorf("expected LOWER count 10, got %v", data["LOWER"])
	}
}

func TestEntityConsistencyThresholdClamp(t *testing.T) {
	tests := []struct {
		name      string
		threshold int
		want      float64
	}{
		{name: "zero threshold clamps to 2", threshold: 0, want: 2},
		{name: "threshold below minimum clamps to 2", threshold: 1, want: 2},
		{name: "minimum threshold passes through", threshold: 2, want: 2},
		{name: "higher threshold passes through", threshold: 5, want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &stubClient{results: `{"mentions": []}`}
			_, err := EntityConsistency(context.Background(), client, "conll2002", EntityConsistencyOptions{
				Threshold: tt.threshold,
			})
			if err != nil {
				t.Fatalf("EntityConsistency failed: %v", err)
			}
			call := client.lastCall(t)
			if call.query.Interval != tt.want {
				t.Errorf("expected threshold %v, got %v", tt.want, call.query.Interval)
			}
			if call.query.Size != 10 {
				t.Errorf("expected default size 10, got %d", call.query.Size)
			}
		})
	}
}

func TestEntityConsistencyDecodesMentions(t *testing.T) {
	client := &stubClient{
		results: `{"mentions": [
			{"mention": "first", "entities": [{"label": "Cardinal", "count": 3}]},
			{"mention": "Peter", "entities": [{"label": "Person", "count": 5}]}
		]}`,
		description: "Entity consistency",
	}

	summary, err := EntityConsistency(context.Background(), client, "conll2002", EntityConsistencyOptions{})
	if err != nil {
		t.Fatalf("EntityConsistency failed: %v", err)
	}

	data, ok := summary.Data.(ConsistencyResults)
	if !ok {
		t.Fatalf("expected ConsistencyResults data, got %T", summary.Data)
	}
	if len(data.Mentions) != 2 {
		t.Fatalf("expected 2 mentions, got %d", len(data.Mentions))
	}
	if data.Mentions[1].Mention != "Peter" {
		t.Errorf("expected second mention Peter, got %q", data.Mentions[1].Mention)
	}
	if data.Mentions[1].Entities[0].Count != 5 {
		t.Errorf("expected Person count 5, got %d", data.Mentions[1].Entities[0].Count)
	}
}

func TestMetricErrorIsWrapped(t *testing.T) {
	client := &stubClient{err: context.DeadlineExceeded}

	_, err := TokensLength(context.Background(), client, "conll2002", TokensLengthOptions{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "compute tokens_length") {
		t.Errorf("expected wrapped metric id in error, got: %v", err)
	}
}

func TestQueryIsForwarded(t *testing.T) {
	client := &stubClient{}

	_, err := EntityLabels(context.Background(), client, "conll2002", EntityLabelsOptions{
		Query: "status:Validated",
	})
	if err != nil {
		t.Fatalf("EntityLabels failed: %v", err)
	}
	if got := client.lastCall(t).query.Query; got != "status:Validated" {
		t.Errorf("expected query to be forwarded, got %q", got)
	}
}
