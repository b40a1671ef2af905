// Package metrics requests named server-side metric computations for
// token-classification datasets and wraps the results in summaries that can
// be inspected as raw data or rendered as terminal charts.
package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/annolens/annolens-cli/internal/api"
	"github.com/annolens/annolens-cli/internal/viz"
)

// Client computes a named metric over a dataset on the annotation server.
// *api.MetricsClient is the production implementation.
type Client interface {
	ComputeMetric(ctx context.Context, dataset, metricID string, q api.MetricQuery) (*api.MetricResponse, error)
}

// Distribution is the decoded result shape of histogram and bar metrics:
// a mapping from bucket (or category) to count.
type Distribution map[string]float64

func decodeDistribution(raw json.RawMessage) (Distribution, error) {
	var d Distribution
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode metric results: %w", err)
	}
	return d, nil
}

func checkDataset(dataset string) error {
	if strings.TrimSpace(dataset) == "" {
		return fmt.Errorf("dataset name is required")
	}
	return nil
}

// TokensLengthOptions are the optional parameters of TokensLength.
type TokensLengthOptions struct {
	// Query restricts the records the metric is computed over.
	Query string
	// Interval is the histogram bucket size. Defaults to 1.
	Interval float64
}

// TokensLength computes the tokens length distribution of a dataset.
func TokensLength(ctx context.Context, c Client, dataset string, opts TokensLengthOptions) (*Summary, error) {
	if err := checkDataset(dataset); err != nil {
		return nil, err
	}
	if opts.Interval == 0 {
		opts.Interval = 1
	}

	logf(dataset, "computing metric=tokens_length interval=%v", opts.Interval)
	resp, err := c.ComputeMetric(ctx, dataset, "tokens_length", api.MetricQuery{
		Query:    opts.Query,
		Interval: opts.Interval,
	})
	if err != nil {
		return nil, fmt.Errorf("compute tokens_length: %w", err)
	}

	data, err := decodeDistribution(resp.Results)
	if err != nil {
		return nil, err
	}
	return NewSummary(data, resp.Description, func() string {
		return viz.Histogram(data, resp.Description, "# tokens")
	}), nil
}

// MentionLengthOptions are the optional parameters of MentionLength.
type MentionLengthOptions struct {
	// Query restricts the records the metric is computed over.
	Query string
	// Level is the unit mention lengths are measured in: "token" or
	// "char". Defaults to "token".
	Level string
	// ComputeFor selects annotations or predictions. Defaults to
	// Predictions.
	ComputeFor ComputeFor
	// Interval is the histogram bucket size. Defaults to 1.
	Interval float64
}

// MentionLength computes the mention length distribution of a dataset, in
// tokens or characters.
func MentionLength(ctx context.Context, c Client, dataset string, opts MentionLengthOptions) (*Summary, error) {
	if err := checkDataset(dataset); err != nil {
		return nil, err
	}

	level := strings.TrimSpace(strings.ToLower(opts.Level))
	if level == "" {
		level = "token"
	}
	if level != "token" && level != "char" {
		return nil, fmt.Errorf("unexpected level %q (accepted values are token, char)", opts.Level)
	}

	selector, err := opts.ComputeFor.selector()
	if err != nil {
		return nil, err
	}
	if opts.Interval == 0 {
		opts.Interval = 1
	}

	metricID := fmt.Sprintf("%s_mention_%s_length", selector, level)
	logf(dataset, "computing metric=%s interval=%v", metricID, opts.Interval)
	resp, err := c.ComputeMetric(ctx, dataset, metricID, api.MetricQuery{
		Query:    opts.Query,
		Interval: opts.Interval,
	})
	if err != nil {
		return nil, fmt.Errorf("compute %s: %w", metricID, err)
	}

	data, err := decodeDistribution(resp.Results)
	if err != nil {
		return nil, err
	}
	return NewSummary(data, resp.Description, func() string {
		return viz.Histogram(data, resp.Description, "# "+level)
	}), nil
}

// EntityLabelsOptions are the optional parameters of EntityLabels.
type EntityLabelsOptions struct {
	// Query restricts the records the metric is computed over.
	Query string
	// ComputeFor selects annotations or predictions. Defaults to
	// Predictions.
	ComputeFor ComputeFor
	// Labels is the number of top entity labels to retrieve. Defaults
	// to 50.
	Labels int
}

// EntityLabels computes the entity label distribution of a dataset.
func EntityLabels(ctx context.Context, c Client, dataset string, opts EntityLabelsOptions) (*Summary, error) {
	if err := checkDataset(dataset); err != nil {
		return nil, err
	}
	selector, err := opts.ComputeFor.selector()
	if err != nil {
		return nil, err
	}
	if opts.Labels == 0 {
		opts.Labels = 50
	}

	metricID := selector + "_entity_labels"
	logf(dataset, "computing metric=%s size=%d", metricID, opts.Labels)
	resp, err := c.ComputeMetric(ctx, dataset, metricID, api.MetricQuery{
		Query: opts.Query,
		Size:  opts.Labels,
	})
	if err != nil {
		return nil, fmt.Errorf("compute %s: %w", metricID, err)
	}

	data, err := decodeDistribution(resp.Results)
	if err != nil {
		return nil, err
	}
	return NewSummary(data, resp.Description, func() string {
		return viz.Bar(data, resp.Description)
	}), nil
}

// EntityDensityOptions are the optional parameters of EntityDensity.
type EntityDensityOptions struct {
	// Query restricts the records the metric is computed over.
	Query string
	// ComputeFor selects annotations or predictions. Defaults to
	// Predictions.
	ComputeFor ComputeFor
	// Interval is the histogram bucket size. The density is defined in
	// the range 0-1; defaults to 0.005.
	Interval float64
}

// EntityDensity computes the entity density distribution of a dataset. The
// density is calculated per record as mention_length/tokens_length.
func EntityDensity(ctx context.Context, c Client, dataset string, opts EntityDensityOptions) (*Summary, error) {
	if err := checkDataset(dataset); err != nil {
		return nil, err
	}
	selector, err := opts.ComputeFor.selector()
	if err != nil {
		return nil, err
	}
	if opts.Interval == 0 {
		opts.Interval = 0.005
	}

	metricID := selector + "_entity_density"
	logf(dataset, "computing metric=%s interval=%v", metricID, opts.Interval)
	resp, err := c.ComputeMetric(ctx, dataset, metricID, api.MetricQuery{
		Query:    opts.Query,
		Interval: opts.Interval,
	})
	if err != nil {
		return nil, fmt.Errorf("compute %s: %w", metricID, err)
	}

	data, err := decodeDistribution(resp.Results)
	if err != nil {
		return nil, err
	}
	return NewSummary(data, resp.Description, func() string {
		return viz.Histogram(data, resp.Description, "")
	}), nil
}

// EntityCapitalnessOptions are the optional parameters of EntityCapitalness.
type EntityCapitalnessOptions struct {
	// Query restricts the records the metric is computed over.
	Query string
	// ComputeFor selects annotations or predictions. Defaults to
	// Predictions.
	ComputeFor ComputeFor
}

// EntityCapitalness computes the capitalization-shape distribution of
// entity mentions. The server groups mentions into UPPER, LOWER, FIRST and
// MIDDLE.
func EntityCapitalness(ctx context.Context, c Client, dataset string, opts EntityCapitalnessOptions) (*Summary, error) {
	if err := checkDataset(dataset); err != nil {
		return nil, err
	}
	selector, err := opts.ComputeFor.selector()
	if err != nil {
		return nil, err
	}

	metricID := selector + "_entity_capitalness"
	logf(dataset, "computing metric=%s", metricID)
	resp, err := c.ComputeMetric(ctx, dataset, metricID, api.MetricQuery{
		Query: opts.Query,
	})
	if err != nil {
		return nil, fmt.Errorf("compute %s: %w", metricID, err)
	}

	data, err := decodeDistribution(resp.Results)
	if err != nil {
		return nil, err
	}
	return NewSummary(data, resp.Description, func() string {
		return viz.Bar(data, resp.Description)
	}), nil
}

// EntityConsistencyOptions are the optional parameters of EntityConsistency.
type EntityConsistencyOptions struct {
	// Query restricts the records the metric is computed over.
	Query string
	// ComputeFor selects annotations or predictions. Defaults to
	// Predictions.
	ComputeFor ComputeFor
	// Mentions is the number of top mentions to retrieve. Defaults to 10.
	Mentions int
	// Threshold is the minimum label variability of a retrieved mention.
	// Values below 2 are clamped to 2.
	Threshold int
}

// EntityConsistency computes the label variability of the top entity
// mentions in a dataset. A mention labeled as Cardinal, Person and Time
// across the dataset is less consistent than one always labeled Person.
func EntityConsistency(ctx context.Context, c Client, dataset string, opts EntityConsistencyOptions) (*Summary, error) {
	if err := checkDataset(dataset); err != nil {
		return nil, err
	}
	selector, err := opts.ComputeFor.selector()
	if err != nil {
		return nil, err
	}
	if opts.Mentions == 0 {
		opts.Mentions = 10
	}
	if opts.Threshold < 2 {
		opts.Threshold = 2
	}

	metricID := selector + "_entity_consistency"
	logf(dataset, "computing metric=%s size=%d threshold=%d", metricID, opts.Mentions, opts.Threshold)
	resp, err := c.ComputeMetric(ctx, dataset, metricID, api.MetricQuery{
		Query:    opts.Query,
		Size:     opts.Mentions,
		Interval: float64(opts.Threshold),
	})
	if err != nil {
		return nil, fmt.Errorf("compute %s: %w", metricID, err)
	}

	data, err := decodeConsistency(resp.Results)
	if err != nil {
		return nil, fmt.Errorf("decode metric results: %w", err)
	}
	mentions, series := pivotMentions(data)
	return NewSummary(data, resp.Description, func() string {
		return viz.StackedBar(mentions, series, resp.Description)
	}), nil
}
