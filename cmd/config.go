package cmd

import (
	"fmt"
	"io"
	"strings"

	"resistorkit/pkg/model"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configShowDiff bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspects the configuration",
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Prints the effective configuration",
	Long: `The show command prints the configuration after includes, defaults and
command line overrides have been applied, in YAML format.
Use --diff to only see how it differs from the built-in defaults.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := configFrom(cmd)

		yamlData, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("error marshaling to YAML: %w", err)
		}
		if !configShowDiff {
			fmt.Fprint(cmd.OutOrStdout(), string(yamlData))
			return nil
		}

		defaults := model.DefaultConfig()
		defaultData, err := yaml.Marshal(&defaults)
		if err != nil {
			return fmt.Errorf("error marshaling to YAML: %w", err)
		}
		writeLineDiff(cmd.OutOrStdout(), string(defaultData), string(yamlData))
		return nil
	},
}

// writeLineDiff prints a line based diff of from and to, prefixing removed
// lines with "- ", added lines with "+ " and unchanged lines with "  ".
func writeLineDiff(w io.Writer, from, to string) {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(from, to)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			fmt.Fprint(w, prefix+line)
		}
	}
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configShowCmd.Flags().BoolVar(&configShowDiff, "diff", false, "Show only the differences from the default configuration")
}
