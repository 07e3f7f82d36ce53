package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"mercator-hq/mpl-builtins/pkg/cli"
	"mercator-hq/mpl-builtins/pkg/mpl/builtins"
)

var listFlags struct {
	family string
	format string
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered builtins",
	Long: `List the builtins registered for the configured families with their
family and arity.

Examples:
  # All builtins
  mpl-builtins list

  # Only one family, as JSON
  mpl-builtins list --family yaml --format json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listFlags.family, "family", "", "only list builtins of this family")
	listCmd.Flags().StringVar(&listFlags.format, "format", "text", "output format: text, json, yaml, csv")
}

func runList(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(listFlags.format)
	if err != nil {
		return err
	}

	var family builtins.Family
	if listFlags.family != "" {
		family, err = builtins.ParseFamily(listFlags.family)
		if err != nil {
			return err
		}
	}

	families := appConfig.Builtins.EnabledFamilies()
	registry := builtins.NewRegistry(families...)

	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), builtinTable(registry, family))
}

// builtinTable lists the registry's builtins, optionally of one family.
func builtinTable(registry *builtins.Registry, family builtins.Family) *cli.Table {
	table := &cli.Table{Headers: []string{"name", "family", "arity"}}
	for _, b := range registry.Builtins() {
		if family != "" && b.Family != family {
			continue
		}
		table.Rows = append(table.Rows, []string{b.Name, string(b.Family), strconv.Itoa(b.Arity)})
	}
	return table
}
