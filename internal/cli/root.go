package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gdsfactory/gf/internal/config"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gf",
	Short: "gf - the gdsfactory command line interface",
	Long: `gf is the gdsfactory command line interface.
It migrates source trees between gdsfactory major versions and converts
KLayout layer properties files into YAML layer views.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .gdsfactory/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig resolves the effective configuration: the explicit --config
// file when given, otherwise .gdsfactory/config.yml under the working
// directory, falling back to defaults when no file exists.
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		cfg, err := config.LoadConfigFromFile(cfgFile)
		if err != nil {
			return nil, err
		}
		if verbose {
			fmt.Fprintln(os.Stderr, "Using config file:", cfgFile)
		}
		return cfg, nil
	}

	rootDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return config.LoadConfigFromDir(rootDir)
}
