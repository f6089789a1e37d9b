package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docsplice/internal/artifact"
	"github.com/dgallion1/docsplice/internal/config"
	"github.com/dgallion1/docsplice/internal/doctree"
	"github.com/dgallion1/docsplice/internal/inject"
	"github.com/dgallion1/docsplice/internal/outline"
	"github.com/dgallion1/docsplice/internal/parser"
	"github.com/dgallion1/docsplice/internal/verify"
)

var (
	outPath   string
	outFormat string

	siteDir   string
	rulesPath string
	dryRun    bool

	shotDir  string
	headless bool
)

func init() {
	parseCmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the artifact to this file instead of stdout")
	parseCmd.Flags().StringVar(&outFormat, "format", "json", "Artifact format when writing to stdout (json|yaml)")

	injectCmd.Flags().StringVar(&siteDir, "site", "", "Site template directory")
	injectCmd.Flags().StringVar(&rulesPath, "rules", "", "Injection rules YAML")
	injectCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would change without writing pages")
	_ = injectCmd.MarkFlagRequired("site")
	_ = injectCmd.MarkFlagRequired("rules")

	shootCmd.Flags().StringVar(&siteDir, "site", "", "Site template directory")
	shootCmd.Flags().StringVar(&shotDir, "out", "screenshots", "Screenshot output directory")
	shootCmd.Flags().BoolVar(&headless, "headless", true, "Run Chrome headless")
	_ = shootCmd.MarkFlagRequired("site")
}

// loadOutline parses a source document, or loads a saved artifact when the
// path has an artifact extension.
func loadOutline(path string) (*doctree.Outline, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return artifact.Load(path)
	}
	res, err := parseDocument(path)
	if err != nil {
		return nil, err
	}
	return res.Outline, nil
}

func parseDocument(path string) (*outline.Result, error) {
	cfg := config.Load()
	p, err := parser.ForFile(path, parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext})
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	paragraphs, err := p.Parse(bytes.NewReader(data), filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", path, err)
	}

	res := outline.Parse(paragraphs)
	for _, w := range res.Warnings {
		logger.Warn("structure warning", "kind", w.Kind, "line", w.Line, "text", w.Text, "message", w.Message)
	}
	logger.Info("parsed document",
		"paragraphs", res.Paragraphs,
		"pages", len(res.Outline.Pages),
		"sections", res.Outline.SectionCount(),
	)
	return res, nil
}

var parseCmd = &cobra.Command{
	Use:   "parse <document>",
	Short: "Parse a document into its page/section artifact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := parseDocument(args[0])
		if err != nil {
			return err
		}
		if outPath != "" {
			if err := artifact.Save(outPath, res.Outline); err != nil {
				return err
			}
			logger.Info("artifact written", "path", outPath)
			fmt.Fprint(cmd.ErrOrStderr(), outline.Summary(res.Outline))
			return nil
		}
		format, err := artifact.ParseFormat(outFormat)
		if err != nil {
			return err
		}
		return artifact.Encode(cmd.OutOrStdout(), res.Outline, format)
	},
}

var injectCmd = &cobra.Command{
	Use:   "inject <document|artifact>",
	Short: "Splice parsed sections into the site template pages",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := loadOutline(args[0])
		if err != nil {
			return err
		}
		rules, err := inject.LoadRules(rulesPath)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		reports, err := inject.New(siteDir, rules, dryRun, logger).Apply(ctx, o)
		for _, r := range reports {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d applied, %d missed, %d removed", r.Page, len(r.Applied), len(r.Missed), r.Removed)
			if dryRun {
				fmt.Fprint(cmd.OutOrStdout(), " (dry run)")
			}
			fmt.Fprintln(cmd.OutOrStdout())
			for _, m := range r.Missed {
				fmt.Fprintf(cmd.OutOrStdout(), "  missed: %s\n", m)
			}
		}
		return err
	},
}

var shootCmd = &cobra.Command{
	Use:   "shoot [page...]",
	Short: "Capture full-page screenshots of site pages",
	RunE: func(cmd *cobra.Command, args []string) error {
		pages := args
		if len(pages) == 0 {
			matches, err := filepath.Glob(filepath.Join(siteDir, "*.html"))
			if err != nil {
				return err
			}
			for _, m := range matches {
				pages = append(pages, filepath.Base(m))
			}
		}
		if len(pages) == 0 {
			return fmt.Errorf("no pages found in %s", siteDir)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		written, err := verify.New(headless, logger).Capture(ctx, siteDir, pages, shotDir)
		for _, p := range written {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return err
	},
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <page.html>",
	Short: "Print a Markdown text snapshot of a page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := verify.SnapshotFile(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}
