package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"go-openclaw-highlighter/internal/engine"
	"go-openclaw-highlighter/internal/keywords"

	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Highlight a saved HTML page",
	Long: `Runs one card pass and one description pass over a saved page and writes
the highlighted HTML. Reads stdin when no file or "-" is given. Keywords come
from --keywords or, without it, from the keyword file in the config.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringP("keywords", "k", "", "comma separated keywords, overrides the keyword file")
	renderCmd.Flags().StringP("out", "o", "", "output file (default stdout)")
	renderCmd.Flags().Bool("report", false, "print a JSON report to stderr")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ecfg, err := cfg.Engine()
	if err != nil {
		return err
	}

	set, err := renderKeywords(cmd, cfg.KeywordsPath)
	if err != nil {
		return err
	}

	in := io.Reader(os.Stdin)
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening %s: %w", args[0], err)
		}
		defer f.Close()
		in = f
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	out, report, err := engine.Render(string(data), set, ecfg)
	if err != nil {
		return err
	}

	outPath, _ := cmd.Flags().GetString("out")
	if outPath == "" {
		if _, err := io.WriteString(cmd.OutOrStdout(), out); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	} else if err := os.WriteFile(outPath, []byte(out), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}

	log.Printf("✨ %d highlights (%d sensitive), %d cards emphasized, %d dimmed",
		report.Markers, report.Sensitive, report.Emphasis, report.Dimmed)

	if withReport, _ := cmd.Flags().GetBool("report"); withReport {
		enc := json.NewEncoder(cmd.ErrOrStderr())
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
	}
	return nil
}

func renderKeywords(cmd *cobra.Command, path string) ([]string, error) {
	if cmd.Flags().Changed("keywords") {
		raw, _ := cmd.Flags().GetString("keywords")
		return keywords.Parse(raw), nil
	}
	src, err := keywords.OpenFile(path)
	if err != nil {
		return nil, err
	}
	return src.Get(), nil
}
