package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/imagetranslator/internal/languages"
)

func newLanguagesCmd() *cobra.Command {
	var (
		category string
		format   string
	)

	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List the supported target languages",
		Example: `  imagetranslator languages
  imagetranslator languages --category European --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			groups := languages.Grouped()
			if category != "" {
				groups = []languages.Group{{Category: category, Languages: languages.ByCategory(category)}}
			}
			return writeLanguages(cmd.OutOrStdout(), format, groups)
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Only list languages of this category")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, json, yaml")

	return cmd
}

func writeLanguages(w io.Writer, format string, groups []languages.Group) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(groups)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(groups)
	case "table", "":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, g := range groups {
			fmt.Fprintf(tw, "%s\n", g.Category)
			for _, l := range g.Languages {
				fmt.Fprintf(tw, "  %s\t%s\t%s\n", l.Code, l.Name, l.NativeName)
			}
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown format %q (want table, json or yaml)", format)
	}
}
