package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/job-intel/internal/ingestion"
	"github.com/jonathan/job-intel/internal/observability"
	"github.com/jonathan/job-intel/internal/pipeline"
	"github.com/jonathan/job-intel/internal/schemas"
	"github.com/jonathan/job-intel/internal/taxonomy"
	"github.com/jonathan/job-intel/internal/types"
)

type analyzeOptions struct {
	TextFile   string
	URL        string
	ResumeFile string
	JSON       bool
	Out        string
	Verbose    bool

	// progress receives --verbose output; stderr when nil.
	progress io.Writer
}

var analyzeOpts analyzeOptions

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a job posting from a text file or URL",
	Long:  "Analyze a job posting and print its skills, critiques and quality grade, or the full profile as JSON.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts := analyzeOpts
		opts.progress = cmd.ErrOrStderr()
		return runAnalyze(cmd.Context(), configPath, opts, cmd.OutOrStdout())
	},
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeOpts.TextFile, "text-file", "t", "", "Path to text file containing job posting")
	analyzeCmd.Flags().StringVarP(&analyzeOpts.URL, "url", "u", "", "URL to fetch job posting from")
	analyzeCmd.Flags().StringVarP(&analyzeOpts.ResumeFile, "resume", "r", "", "Resume file (.txt, .md, .pdf or .docx) to align against")
	analyzeCmd.Flags().BoolVar(&analyzeOpts.JSON, "json", false, "Print the response as JSON")
	analyzeCmd.Flags().StringVarP(&analyzeOpts.Out, "out", "o", "", "Write the JSON response to this file")
	analyzeCmd.Flags().BoolVarP(&analyzeOpts.Verbose, "verbose", "v", false, "Print pipeline progress to stderr")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(ctx context.Context, cfgPath string, opts analyzeOptions, out io.Writer) error {
	if opts.TextFile == "" && opts.URL == "" {
		return fmt.Errorf("either --text-file or --url must be provided")
	}
	if opts.TextFile != "" && opts.URL != "" {
		return fmt.Errorf("--text-file and --url are mutually exclusive; provide only one")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, logger, err := loadRuntime(cfgPath)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	req := &types.AnalyzeRequest{}
	var fetcher pipeline.Fetcher
	if opts.TextFile != "" {
		content, err := os.ReadFile(opts.TextFile)
		if err != nil {
			return fmt.Errorf("failed to read posting: %w", err)
		}
		req.JobPosting.Text = string(content)
	} else {
		req.JobPosting.URL = opts.URL
		cached, err := newFetcher(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := cached.Close(); err != nil {
				logger.Warn("failed to close cache store", zap.Error(err))
			}
		}()
		fetcher = cached
	}

	if opts.ResumeFile != "" {
		resume, err := ingestion.ReadResumeFile(opts.ResumeFile)
		if err != nil {
			return fmt.Errorf("failed to read resume: %w", err)
		}
		req.ResumeText = &resume
	}

	pipelineOpts := []pipeline.Option{
		pipeline.WithThresholds(cfg.Thresholds()),
		pipeline.WithLogger(logger),
	}
	if opts.Verbose {
		pipelineOpts = append(pipelineOpts, pipeline.WithProgress(progressPrinter(opts.progress)))
	}
	analyzer := pipeline.New(taxonomy.Default(), fetcher, pipelineOpts...)
	resp, err := analyzer.Analyze(ctx, req)
	if err != nil {
		return err
	}

	if opts.JSON || opts.Out != "" {
		data, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal response: %w", err)
		}
		if err := schemas.ValidateAnalyzeResponseJSON(data); err != nil {
			return fmt.Errorf("response failed schema validation: %w", err)
		}
		data = append(data, '\n')

		if opts.Out != "" {
			if err := os.WriteFile(opts.Out, data, 0o644); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			if err := schemas.ValidateAnalyzeResponseFile(opts.Out); err != nil {
				return fmt.Errorf("written output failed schema validation: %w", err)
			}
			if !opts.JSON {
				_, _ = fmt.Fprintf(out, "Wrote analysis to %s\n", opts.Out)
			}
		}
		if opts.JSON {
			_, err = out.Write(data)
			return err
		}
		return nil
	}

	observability.NewPrinter(out).PrintAnalysis(resp)
	return nil
}

// progressPrinter writes one line per pipeline state.
func progressPrinter(w io.Writer) pipeline.ProgressCallback {
	if w == nil {
		w = os.Stderr
	}
	return func(e pipeline.ProgressEvent) {
		_, _ = fmt.Fprintf(w, "[%s] %s\n", e.State, e.Message)
	}
}
