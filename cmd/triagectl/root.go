package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"email-triage/internal/config"
	"email-triage/internal/extract"
	"email-triage/internal/nlp"
	"email-triage/internal/pipeline"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "triagectl",
		Short:         "Classify e-mails and draft replies from the command line",
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
		},
	}

	defaultConfig := os.Getenv("TRIAGE_CONFIG")
	if defaultConfig == "" {
		defaultConfig = "configs/config.yml"
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfig, "path to YAML config")

	cmd.AddCommand(newAnalyzeCmd(opts), newNormalizeCmd())
	return cmd
}

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	var text string

	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Run the full pipeline on a .txt/.pdf file or on --text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var file *extract.File
			if len(args) == 1 {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return err
				}
				file = &extract.File{Name: args[0], Data: data}
			}

			raw, err := extract.Payload(text, file)
			if err != nil {
				return err
			}

			cfg, err := config.LoadConfig(root.configPath)
			if err != nil {
				return err
			}
			// Logs go to stderr; stdout carries only the JSON result.
			cfg.Log.Development = true
			if cfg.Log.Level == "info" {
				cfg.Log.Level = "warn"
			}
			logger, err := pipeline.NewLogger(cfg)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			p, err := pipeline.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer p.Close()

			analysis, err := p.Analyzer.Analyze(ctx, raw)
			if err != nil {
				return err
			}

			return writeJSON(cmd.OutOrStdout(), analysis)
		},
	}

	cmd.Flags().StringVarP(&text, "text", "t", "", "e-mail text (wins over the file argument)")
	return cmd
}

func newNormalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize [text]",
		Short: "Print the cleaned text and token count; reads stdin without arguments",
		RunE: func(cmd *cobra.Command, args []string) error {
			input := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				input = string(data)
			}

			return writeJSON(cmd.OutOrStdout(), nlp.Normalize(input))
		},
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(v)
}
