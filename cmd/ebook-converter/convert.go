package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/ebook-converter/internal/convert"
	"github.com/pdiddy/ebook-converter/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Convert one ebook to another format",
	Long: `Convert reads an EPUB, MOBI or AZW3 file, converts it to the format
given by --to, and writes <name>.<format> into --out-dir. The output name
defaults to the input file's base name.

Supported paths: epub to mobi or azw3, mobi to epub, azw3 to epub or mobi.
Converting a file to its own format copies it unchanged.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().String("to", "", "target format: epub, mobi, or azw3 (required)")
	convertCmd.Flags().String("name", "", "output file name without extension (default: input base name)")
	convertCmd.Flags().String("out-dir", ".", "directory the converted file is written to")
	_ = convertCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	to, _ := cmd.Flags().GetString("to")
	name, _ := cmd.Flags().GetString("name")
	outDir, _ := cmd.Flags().GetString("out-dir")

	target, err := types.ParseFormat(to)
	if err != nil {
		return err
	}

	in := args[0]
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
	}

	data, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("reading %s: %w", in, err)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.log.Sync() }()

	art, err := a.dispatcher.Convert(convert.Request{
		Data:       data,
		Filename:   filepath.Base(in),
		Target:     target,
		OutputName: name,
	})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", outDir, err)
	}
	out := filepath.Join(outDir, art.FileName())
	if err := os.WriteFile(out, art.Data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Converted %s to %s (%d bytes)\n", in, out, art.Size())
	return nil
}
