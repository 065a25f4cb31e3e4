package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gdsfactory/gf/internal/klayout"
)

var (
	layermapForceFlag    bool
	layermapPatternsFlag string
)

// layermapCmd represents the layermap command
var layermapCmd = &cobra.Command{
	Use:   "layermap <file.lyp> [output]",
	Short: "Convert KLayout layer properties to YAML layer views",
	Long: `Layermap reads a KLayout layer properties file (.lyp) and writes the
layer views it defines as a YAML document keyed by layer name.

Layer groups become nested group_members mappings, wildcard sources
('*/*') leave the layer unset, and a 'layer/datatype' pair embedded in a
display name is stripped into the layer_in_name flag.

The output path defaults to the input with a .yml extension. An existing
output file is not overwritten unless --force is given.

Examples:
  # Convert next to the input (generic.lyp -> generic.yml)
  gf layermap generic.lyp

  # Convert to an explicit path, overwriting a previous run
  gf layermap generic.lyp tech/layers.yml --force

  # Also export custom dither patterns and line styles
  gf layermap generic.lyp --patterns patterns.yml
`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runLayermap,
}

func init() {
	rootCmd.AddCommand(layermapCmd)
	layermapCmd.Flags().BoolVarP(&layermapForceFlag, "force", "f", false, "Overwrite the output file if it exists")
	layermapCmd.Flags().StringVar(&layermapPatternsFlag, "patterns", "", "Also write custom dither patterns and line styles to this file")
}

func runLayermap(cmd *cobra.Command, args []string) error {
	input := args[0]
	if _, err := os.Stat(input); os.IsNotExist(err) {
		return fmt.Errorf("%s not found", input)
	}

	output := strings.TrimSuffix(input, ".lyp") + ".yml"
	if len(args) == 2 {
		output = args[1]
	}
	if !layermapForceFlag {
		if _, err := os.Stat(output); err == nil {
			return fmt.Errorf("found %s, use --force to overwrite", output)
		}
	}

	props, err := klayout.ReadLYP(input)
	if err != nil {
		return err
	}

	doc, err := props.ToYAML()
	if err != nil {
		return fmt.Errorf("encode layer views: %w", err)
	}
	if err := os.WriteFile(output, doc, 0644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	fmt.Printf("✓ Wrote %d layer views to %s\n", props.LayerViews.Len(), output)

	if layermapPatternsFlag != "" {
		patterns, err := props.PatternsToYAML()
		if err != nil {
			return fmt.Errorf("encode custom patterns: %w", err)
		}
		if err := os.WriteFile(layermapPatternsFlag, patterns, 0644); err != nil {
			return fmt.Errorf("write %s: %w", layermapPatternsFlag, err)
		}
		fmt.Printf("✓ Wrote custom patterns to %s\n", layermapPatternsFlag)
	}

	return nil
}
