package main

import (
	"fmt"
	"log"
	"os"

	"go-openclaw-highlighter/internal/config"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "highlighter",
	Short: "Keyword highlighting for job listing pages",
	Long: `Highlighter marks your keywords in job descriptions, emphasizes
listing cards whose title matches one of them and dims cards you already
viewed, saved or applied to. It works on saved HTML pages or keeps a live
browser page highlighted while it changes.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func main() {
	log.SetFlags(log.Ltime)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
