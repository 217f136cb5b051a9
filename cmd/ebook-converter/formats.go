package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/ebook-converter/internal/convert"
	"github.com/pdiddy/ebook-converter/pkg/types"
)

// formatsReport is what the formats command prints.
type formatsReport struct {
	Formats     []types.Format `json:"formats" yaml:"formats"`
	Conversions []convert.Pair `json:"conversions" yaml:"conversions"`
}

func newFormatsReport() formatsReport {
	return formatsReport{
		Formats:     types.Formats(),
		Conversions: convert.SupportedPairs(),
	}
}

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List supported formats and conversion paths",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		asYAML, _ := cmd.Flags().GetBool("yaml")
		return writeFormats(cmd.OutOrStdout(), newFormatsReport(), asJSON, asYAML)
	},
}

func init() {
	formatsCmd.Flags().Bool("json", false, "print as JSON")
	formatsCmd.Flags().Bool("yaml", false, "print as YAML")
	formatsCmd.MarkFlagsMutuallyExclusive("json", "yaml")

	rootCmd.AddCommand(formatsCmd)
}

func writeFormats(w io.Writer, r formatsReport, asJSON, asYAML bool) error {
	switch {
	case asJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case asYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	}

	fmt.Fprintf(w, "Formats: %s\n\n", types.FormatList())
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tTARGET")
	for _, p := range r.Conversions {
		fmt.Fprintf(tw, "%s\t%s\n", p.Source, p.Target)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w, "\nAny format converts to itself unchanged.")
	return nil
}
