// audit is the one-shot CLI: it extracts and audits invoice PDFs against a
// local SQLite history and prints each report, optionally exporting an XLSX
// workbook for the batch.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/bgv-audit/invoice-audit/constants"
	"github.com/bgv-audit/invoice-audit/internal/audit"
	"github.com/bgv-audit/invoice-audit/internal/common"
	"github.com/bgv-audit/invoice-audit/internal/export"
	"github.com/bgv-audit/invoice-audit/internal/linesource"
	"github.com/bgv-audit/invoice-audit/internal/pipeline"
	"github.com/bgv-audit/invoice-audit/internal/provider"
	"github.com/bgv-audit/invoice-audit/internal/repository"
	"github.com/bgv-audit/invoice-audit/internal/schema"
)

func main() {
	_ = godotenv.Load()

	providerName := flag.String("provider", "", "vendor name; empty = auto-detect")
	dbPath := flag.String("db", "audit.db", "SQLite fingerprint history")
	xlsxPath := flag.String("xlsx", "", "write an XLSX workbook for the batch")
	jsonOut := flag.Bool("json", false, "print full audit reports as JSON")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: audit [flags] <invoice.pdf|directory> ...")
		flag.PrintDefaults()
		os.Exit(2)
	}
	if *providerName != "" && !constants.IsProvider(*providerName) {
		fmt.Fprintf(os.Stderr, "unknown provider %q; supported: %v\n", *providerName, constants.ProviderNames())
		os.Exit(2)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx := context.Background()
	cfg := common.LoadConfig()

	store, err := repository.OpenSQLite(*dbPath, logger)
	if err != nil {
		fatal("open history: %v", err)
	}
	defer func() { _ = store.Close() }()

	poppler := linesource.NewPopplerSource(linesource.PopplerConfig{
		Pdftotext: cfg.OCR.Pdftotext,
	}, logger)
	var docai *linesource.DocAISource
	if cfg.HasDocAI() {
		docai, err = linesource.NewDocAISource(ctx, linesource.DocAIConfig{
			ProjectID:       cfg.OCR.DocAIProjectID,
			Location:        cfg.OCR.DocAILocation,
			ProcessorID:     cfg.OCR.DocAIProcessorID,
			CredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
			RowTolerance:    cfg.OCR.RowGroupTolerance,
		}, logger)
		if err != nil {
			fatal("document ai: %v", err)
		}
		defer func() { _ = docai.Close() }()
	}
	source := linesource.NewCompositeSource(poppler, docai, logger)

	registry := provider.NewRegistry(logger)
	extractor := pipeline.NewExtractor(registry, source, logger)
	engine := audit.NewEngine(store, logger)
	proc := pipeline.NewProcessor(extractor, engine, store, store, logger)

	var results []*pipeline.Result
	failed := 0
	for _, path := range collectPDFs(flag.Args()) {
		runCtx, cancel := context.WithTimeout(ctx, cfg.OCR.ExtractionTimeout)
		res, err := proc.Process(runCtx, path, *providerName)
		cancel()
		if err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "FAILED  %s: %v\n", path, err)
			continue
		}
		results = append(results, res)
		printResult(res, *jsonOut)
	}

	if *xlsxPath != "" && len(results) > 0 {
		data, err := export.NewService(logger).WorkbookXLSX(results)
		if err != nil {
			fatal("export: %v", err)
		}
		if err := os.WriteFile(*xlsxPath, data, 0o644); err != nil {
			fatal("write %s: %v", *xlsxPath, err)
		}
		fmt.Printf("workbook written to %s\n", *xlsxPath)
	}

	if failed > 0 {
		os.Exit(1)
	}
}

// collectPDFs expands directories into the PDF files they contain.
func collectPDFs(args []string) []string {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skipping %s: %v\n", arg, err)
			continue
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skipping %s: %v\n", arg, err)
			continue
		}
		for _, e := range entries {
			if !e.IsDir() && constants.IsIngestible(e.Name()) {
				paths = append(paths, filepath.Join(arg, e.Name()))
			}
		}
	}
	return paths
}

func printResult(res *pipeline.Result, asJSON bool) {
	report := res.Report.ToMap()
	if err := schema.ValidateReport(report); err != nil {
		fmt.Fprintf(os.Stderr, "report contract violation for %s: %v\n", res.Invoice.ID, err)
	}
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(report)
		return
	}
	fmt.Printf("%-6s %s  provider=%s  items=%d  total=$%.2f  processed=%s\n",
		string(res.Invoice.AuditStatus),
		res.Invoice.ID,
		res.Invoice.ProviderName,
		len(res.Extracted.LineItems),
		res.Invoice.GrandTotal,
		res.Invoice.ProcessedAt.Format(time.RFC3339),
	)
	for _, r := range res.Report.Results {
		mark := "ok"
		if !r.Passed {
			mark = "!!"
		}
		fmt.Printf("  [%s] %-30s %s\n", mark, r.CheckName, r.Message)
	}
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
