package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/annolens/annolens-cli/internal/apperr"
	"github.com/annolens/annolens-cli/internal/metrics"
	"github.com/annolens/annolens-cli/internal/ui"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Compute token-classification metrics for a dataset",
	Long:  "Requests server-side metric computations over a token-classification dataset and renders the results as terminal charts.",
}

var (
	metricsDataset    string
	metricsQuery      string
	metricsComputeFor string
	metricsJSON       bool
	metricsOutput     string
)

func init() {
	rootCmd.AddCommand(metricsCmd)

	metricsCmd.PersistentFlags().StringVarP(&metricsDataset, "dataset", "d", "", "Dataset name (prompted when omitted)")
	metricsCmd.PersistentFlags().StringVarP(&metricsQuery, "query", "q", "", "Search query restricting the records")
	metricsCmd.PersistentFlags().StringVar(&metricsComputeFor, "compute-for", "", "Compute over predictions or annotations (default predictions)")
	metricsCmd.PersistentFlags().BoolVar(&metricsJSON, "json", false, "Print raw metric results as JSON instead of a chart")
	metricsCmd.PersistentFlags().StringVarP(&metricsOutput, "output", "o", "", "Write raw metric results to a file (.json or .yaml)")

	viper.BindPFlag("metrics.dataset", metricsCmd.PersistentFlags().Lookup("dataset"))
	viper.BindPFlag("metrics.query", metricsCmd.PersistentFlags().Lookup("query"))
	viper.BindPFlag("metrics.compute-for", metricsCmd.PersistentFlags().Lookup("compute-for"))

	metricsCmd.AddCommand(
		tokensLengthCmd,
		mentionLengthCmd,
		entityLabelsCmd,
		entityDensityCmd,
		entityCapitalnessCmd,
		entityConsistencyCmd,
	)

	mentionLengthCmd.Flags().Float64Var(&mentionLengthInterval, "interval", 0, "Histogram bucket size (default 1)")
	mentionLengthCmd.Flags().StringVar(&mentionLengthLevel, "level", "", "Mention length unit: token|char (default token)")
	tokensLengthCmd.Flags().Float64Var(&tokensLengthInterval, "interval", 0, "Histogram bucket size (default 1)")
	entityLabelsCmd.Flags().IntVar(&entityLabelsTop, "labels", 0, "Number of top entity labels to retrieve (default 50)")
	entityDensityCmd.Flags().Float64Var(&entityDensityInterval, "interval", 0, "Histogram bucket size (default 0.005)")
	entityConsistencyCmd.Flags().IntVar(&entityConsistencyMentions, "mentions", 0, "Number of top mentions to retrieve (default 10)")
	entityConsistencyCmd.Flags().IntVar(&entityConsistencyThreshold, "threshold", 0, "Minimum label variability of a mention (minimum 2)")
}

var (
	tokensLengthInterval       float64
	mentionLengthInterval      float64
	mentionLengthLevel         string
	entityLabelsTop            int
	entityDensityInterval      float64
	entityConsistencyMentions  int
	entityConsistencyThreshold int
)

var tokensLengthCmd = &cobra.Command{
	Use:   "tokens-length",
	Short: "Tokens length distribution of the dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMetric(cmd, "Computing tokens length", func(ctx context.Context, c metrics.Client, dataset string) (*metrics.Summary, error) {
			return metrics.TokensLength(ctx, c, dataset, metrics.TokensLengthOptions{
				Query:    resolvedQuery(),
				Interval: tokensLengthInterval,
			})
		})
	},
}

var mentionLengthCmd = &cobra.Command{
	Use:   "mention-length",
	Short: "Mention length distribution, in tokens or characters",
	RunE: func(cmd *cobra.Command, args []string) error {
		computeFor, err := resolvedComputeFor()
		if err != nil {
			return err
		}
		return runMetric(cmd, "Computing mention length", func(ctx context.Context, c metrics.Client, dataset string) (*metrics.Summary, error) {
			return metrics.MentionLength(ctx, c, dataset, metrics.MentionLengthOptions{
				Query:      resolvedQuery(),
				Level:      mentionLengthLevel,
				ComputeFor: computeFor,
				Interval:   mentionLengthInterval,
			})
		})
	},
}

var entityLabelsCmd = &cobra.Command{
	Use:   "entity-labels",
	Short: "Entity label distribution of the dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		computeFor, err := resolvedComputeFor()
		if err != nil {
			return err
		}
		return runMetric(cmd, "Computing entity labels", func(ctx context.Context, c metrics.Client, dataset string) (*metrics.Summary, error) {
			return metrics.EntityLabels(ctx, c, dataset, metrics.EntityLabelsOptions{
				Query:      resolvedQuery(),
				ComputeFor: computeFor,
				Labels:     entityLabelsTop,
			})
		})
	},
}

var entityDensityCmd = &cobra.Command{
	Use:   "entity-density",
	Short: "Entity density distribution (mentions per token)",
	RunE: func(cmd *cobra.Command, args []string) error {
		computeFor, err := resolvedComputeFor()
		if err != nil {
			return err
		}
		return runMetric(cmd, "Computing entity density", func(ctx context.Context, c metrics.Client, dataset string) (*metrics.Summary, error) {
			return metrics.EntityDensity(ctx, c, dataset, metrics.EntityDensityOptions{
				Query:      resolvedQuery(),
				ComputeFor: computeFor,
				Interval:   entityDensityInterval,
			})
		})
	},
}

var entityCapitalnessCmd = &cobra.Command{
	Use:   "entity-capitalness",
	Short: "Capitalization shape distribution of entity mentions",
	RunE: func(cmd *cobra.Command, args []string) error {
		computeFor, err := resolvedComputeFor()
		if err != nil {
			return err
		}
		return runMetric(cmd, "Computing entity capitalness", func(ctx context.Context, c metrics.Client, dataset string) (*metrics.Summary, error) {
			return metrics.EntityCapitalness(ctx, c, dataset, metrics.EntityCapitalnessOptions{
				Query:      resolvedQuery(),
				ComputeFor: computeFor,
			})
		})
	},
}

var entityConsistencyCmd = &cobra.Command{
	Use:   "entity-consistency",
	Short: "Label consistency of the top entity mentions",
	RunE: func(cmd *cobra.Command, args []string) error {
		computeFor, err := resolvedComputeFor()
		if err != nil {
			return err
		}
		return runMetric(cmd, "Computing entity consistency", func(ctx context.Context, c metrics.Client, dataset string) (*metrics.Summary, error) {
			return metrics.EntityConsistency(ctx, c, dataset, metrics.EntityConsistencyOptions{
				Query:      resolvedQuery(),
				ComputeFor: computeFor,
				Mentions:   entityConsistencyMentions,
				Threshold:  entityConsistencyThreshold,
			})
		})
	},
}

// runMetric resolves the dataset, runs the metric with a progress display and
// prints or exports the result.
func runMetric(cmd *cobra.Command, step string, compute func(ctx context.Context, c metrics.Client, dataset string) (*metrics.Summary, error)) error {
	dataset, err := resolvedDataset()
	if err != nil {
		return err
	}

	client := newMetricsClient()

	tracker := ui.NewProgressTracker([]string{step})
	tracker.Start()
	tracker.UpdateStep(0, ui.StatusRunning, "")

	summary, err := compute(cmd.Context(), client, dataset)
	if err != nil {
		tracker.UpdateStep(0, ui.StatusFailed, err.Error())
		tracker.Complete(err)
		return err
	}
	tracker.UpdateStep(0, ui.StatusComplete, "")
	tracker.Complete(nil)

	return printSummary(cmd, summary)
}

// printSummary renders a summary according to the output flags: a terminal
// chart by default, raw JSON with --json, and a file export with --output.
func printSummary(cmd *cobra.Command, summary *metrics.Summary) error {
	if metricsOutput != "" {
		if err := exportSummary(summary, metricsOutput); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.FormatStatus("success", "Results written to "+ui.Secondary.Render(metricsOutput)))
		return nil
	}

	if metricsJSON {
		payload, err := json.MarshalIndent(summary.Data, "", "  ")
		if err != nil {
			return fmt.Errorf("encode results: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(payload))
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), summary.Visualize())
	return nil
}

// exportSummary writes the raw results to path. The extension picks the
// encoding: .yaml/.yml for YAML, anything else for JSON.
func exportSummary(summary *metrics.Summary, path string) error {
	var payload []byte
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		payload, err = yaml.Marshal(summary.Data)
	default:
		payload, err = json.MarshalIndent(summary.Data, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}

	return os.WriteFile(path, payload, 0o644)
}

func resolvedQuery() string {
	if metricsQuery != "" {
		return metricsQuery
	}
	return viper.GetString("metrics.query")
}

func resolvedComputeFor() (metrics.ComputeFor, error) {
	value := metricsComputeFor
	if value == "" {
		value = viper.GetString("metrics.compute-for")
	}
	computeFor, err := metrics.ParseComputeFor(value)
	if err != nil {
		return computeFor, apperr.User(err.Error())
	}
	return computeFor, nil
}

// resolvedDataset returns the dataset from the flag or config, prompting
// interactively when neither is set.
func resolvedDataset() (string, error) {
	dataset := metricsDataset
	if dataset == "" {
		dataset = viper.GetString("metrics.dataset")
	}
	if dataset != "" {
		return dataset, nil
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Dataset").
				Description("Name of the token-classification dataset on the server").
				Value(&dataset).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("dataset name is required")
					}
					return nil
				}),
		),
	)
	if err := form.Run(); err != nil {
		return "", apperr.ErrCancelled
	}

	return strings.TrimSpace(dataset), nil
}
