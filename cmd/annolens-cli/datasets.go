package cmd

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/annolens/annolens-cli/internal/api"
	"github.com/annolens/annolens-cli/internal/apperr"
	"github.com/annolens/annolens-cli/internal/ui"
)

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List datasets available on the annotation server",
	Long:  "Lists datasets hosted on the annotation server, most recently updated first. With --interactive, opens a searchable selector.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if datasetsInteractive {
			return runDatasetSelector(cmd)
		}
		return listDatasets(cmd)
	},
}

// longListingThreshold is the number of datasets above which listing asks
// for confirmation first.
const longListingThreshold = 25

var (
	datasetsSearch      string
	datasetsLimit       int
	datasetsInteractive bool
)

func init() {
	rootCmd.AddCommand(datasetsCmd)

	datasetsCmd.Flags().StringVarP(&datasetsSearch, "search", "s", "", "Filter datasets by name")
	datasetsCmd.Flags().IntVar(&datasetsLimit, "limit", 20, "Maximum number of datasets to list")
	datasetsCmd.Flags().BoolVarP(&datasetsInteractive, "interactive", "i", false, "Pick datasets in an interactive selector")
}

func listDatasets(cmd *cobra.Command) error {
	searcher := &api.DatasetSearcher{
		Client:  api.NewClient(viper.GetDuration("server.timeout"), viper.GetString("server.api-key")),
		BaseURL: viper.GetString("server.url"),
	}

	results, err := searcher.Search(cmd.Context(), datasetsSearch, datasetsLimit)
	if err != nil {
		if api.IsUnauthorized(err) {
			return fmt.Errorf("server rejected the request, check --api-key: %w", err)
		}
		return fmt.Errorf("list datasets: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintln(out, ui.Dim.Render("No datasets found."))
		return nil
	}

	// Long listings scroll the terminal; ask before dumping them.
	if len(results) > longListingThreshold {
		var confirm bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Print %d datasets?", len(results))).
					Value(&confirm).
					Affirmative("Yes").
					Negative("No"),
			),
		)
		if err := form.Run(); err != nil {
			return apperr.ErrCancelled
		}
		if !confirm {
			return apperr.ErrCancelled
		}
	}

	for _, ds := range results {
		fmt.Fprintf(out, "%s %s\n", ui.GetBullet(), ui.Highlight.Render(ds.Name))
		fmt.Fprintf(out, "  %s\n", ui.FormatKeyValue("owner", ds.Owner))
		fmt.Fprintf(out, "  %s\n", ui.FormatKeyValue("task", ds.Task))
		fmt.Fprintf(out, "  %s\n", ui.FormatKeyValue("records", fmt.Sprintf("%d", ds.Records)))
		if ds.LastUpdated != "" {
			fmt.Fprintf(out, "  %s\n", ui.FormatKeyValue("updated", ds.LastUpdated))
		}
	}
	return nil
}

func runDatasetSelector(cmd *cobra.Command) error {
	selected, err := ui.RunDatasetSelector(ui.DatasetSelectorConfig{
		BaseURL: viper.GetString("server.url"),
		APIKey:  viper.GetString("server.api-key"),
		Timeout: viper.GetDuration("server.timeout"),
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(selected) == 0 {
		fmt.Fprintln(out, ui.Dim.Render("No datasets selected."))
		return nil
	}
	for _, name := range selected {
		fmt.Fprintln(out, ui.FormatStatus("success", name))
	}
	return nil
}
