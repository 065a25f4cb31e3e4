package cli

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var (
	// Version information - typically set via ldflags at build time
	Version   = "dev"
	GitCommit = "none"
	BuildDate = "unknown"
)

var pluginsFlag bool

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of gf",
	Long:  `All software has versions. This is gf's.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gf %s\n", Version)
		fmt.Printf("Git commit: %s\n", GitCommit)
		fmt.Printf("Build date: %s\n", BuildDate)

		if pluginsFlag {
			fmt.Println("\nPlugins:")
			printPluginVersions()
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVar(&pluginsFlag, "plugins", false, "List dependency versions")
}

// printPluginVersions lists the versions of the modules this binary was
// built against, the closest analog of the original's plugin report.
func printPluginVersions() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		fmt.Println("  build info not available")
		return
	}
	for _, dep := range info.Deps {
		fmt.Printf("  %s %s\n", dep.Path, dep.Version)
	}
}
