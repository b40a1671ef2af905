package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/annolens/annolens-cli/internal/api"
	"github.com/annolens/annolens-cli/internal/metrics"
	"github.com/annolens/annolens-cli/internal/retry"
	"github.com/annolens/annolens-cli/internal/ui"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "annolens-cli",
	Short: "Dataset metrics for annotation servers",
	Long:  longDescription,

	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initUIAndBanner(cmd)
	},

	// When invoked without a subcommand, show help (with banner) instead of
	// printing a plain usage output.
	RunE: func(cmd *cobra.Command, args []string) error {
		initUIAndBanner(cmd)
		return cmd.Help()
	},
}

var cfgFile string
var version string

// SetVersion sets the version for the CLI
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// GetRootCmd returns the root command for use with fang
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.annolens-cli.yaml or ./config/defaults.yaml)")
	rootCmd.PersistentFlags().String("url", api.DefaultBaseURL, "Annotation server base URL")
	rootCmd.PersistentFlags().String("api-key", "", "API key for private datasets")
	rootCmd.PersistentFlags().Duration("timeout", 30*time.Second, "Per-request timeout")
	rootCmd.PersistentFlags().Bool("verbose", false, "Print request logs to stderr")

	viper.BindPFlag("server.url", rootCmd.PersistentFlags().Lookup("url"))
	viper.BindPFlag("server.api-key", rootCmd.PersistentFlags().Lookup("api-key"))
	viper.BindPFlag("server.timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Ensure `--help` (and help subcommands) show the banner consistently.
	defaultHelp := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		initUIAndBanner(cmd)
		defaultHelp(cmd, args)
	})
}

func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.SetConfigType("yaml")
		viper.AddConfigPath(home)
		viper.AddConfigPath("./config")

		// Try .annolens-cli first
		viper.SetConfigName(".annolens-cli")
		err = viper.ReadInConfig()

		// If not found, try defaults.yaml
		notFound := &viper.ConfigFileNotFoundError{}
		if err != nil && errors.As(err, notFound) {
			viper.SetConfigName("defaults")
			err = viper.ReadInConfig()
		}

		if err != nil && !errors.As(err, notFound) {
			cobra.CheckErr(err)
		}

		if err == nil {
			configMsg := ui.Dim.Render("Using config file: ") + ui.Secondary.Render(viper.ConfigFileUsed())
			fmt.Fprintln(os.Stderr, configMsg)
		}
	}

	// Enable environment variable support (e.g., ANNOLENS_SERVER_API_KEY)
	// Replace dots with underscores: server.api-key -> ANNOLENS_SERVER_API_KEY
	viper.SetEnvPrefix("ANNOLENS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
}

const longDescription = "Compute and visualize token-classification metrics for datasets hosted on an annotation server: token and mention length distributions, entity labels, density, capitalization shape and label consistency."

func initUIAndBanner(cmd *cobra.Command) {
	if cmd == nil {
		return
	}
	cmd.Root().Long = ui.RenderBanner(ui.BannerASCII) + "\n" + longDescription
}

// newMetricsClient builds the metrics client from the resolved configuration.
// Verbose mode routes request and retry logs to stderr.
func newMetricsClient() *api.MetricsClient {
	verbose := viper.GetBool("verbose")
	if verbose {
		metrics.SetLogger(os.Stderr)
	} else {
		metrics.SetLogger(nil)
	}

	client := &api.MetricsClient{
		Client:  api.NewClient(viper.GetDuration("server.timeout"), viper.GetString("server.api-key")),
		BaseURL: viper.GetString("server.url"),
		Retry:   retry.DefaultConfig(),
	}
	if verbose {
		client.Logger = func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}
	}

	return client
}
