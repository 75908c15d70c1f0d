package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dollpublish/dollpublish/internal/config"
)

var dataDir string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dollctl",
	Short: "dollctl - operator tool for a dollpublish data directory",
	Long: `dollctl works directly on a dollpublish data directory. It manages the
credential registry, previews how a markdown file will be rendered and
generates document identifiers.

The data directory defaults to MOON_DATA_DIR (or ./data), the same
setting the server reads.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

// resolveDataDir returns --data-dir, falling back to the server configuration.
func resolveDataDir() (string, error) {
	if dataDir != "" {
		return dataDir, nil
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return "", err
	}
	return cfg.Storage.DataDir, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", "", "data directory (default: $MOON_DATA_DIR or ./data)")
}
