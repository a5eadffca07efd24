// Package main converts one spreadsheet to a Shopify CSV from the command line,
// with the same configuration and pipeline as the server.
//
// Usage:
//
//	refyne-catalog-convert -in stock.xlsx
//	refyne-catalog-convert -in stock.csv -out - -policy skip -map title=Name > shop.csv
//	refyne-catalog-convert -in stock.csv -inspect
//
// Logs go to stderr so the CSV can be written to stdout.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jmylchreest/refyne-catalog/internal/config"
	"github.com/jmylchreest/refyne-catalog/internal/http/handlers"
	"github.com/jmylchreest/refyne-catalog/internal/logging"
	"github.com/jmylchreest/refyne-catalog/internal/service"
	"github.com/jmylchreest/refyne-catalog/internal/version"
)

func main() {
	in := flag.String("in", "", inputUsage())
	out := flag.String("out", "", `Output CSV path, "-" for stdout (default: <input>_shopify.csv next to the input)`)
	policy := flag.String("policy", "", "Image policy: placeholder or skip")
	brandMode := flag.String("brand-mode", "", "Brand strategy: auto, explicit, corpus or regex")
	rowFailure := flag.String("row-failure", "", "Row failure mode: isolate or abort")
	concurrency := flag.String("concurrency", "", "Rows enriched in parallel")
	placeholder := flag.String("placeholder-url", "", "Image used by the placeholder policy")
	inspect := flag.Bool("inspect", false, "Print the column mapping and a preview as JSON, without converting")
	showVersion := flag.Bool("version", false, "Print version and exit")
	var mappings roleMappings
	flag.Var(&mappings, "map", "Pin a role to a column, role=Column (repeatable)")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Get().String())
		return
	}
	if *in == "" {
		fmt.Fprintln(os.Stderr, "error: -in is required")
		flag.Usage()
		os.Exit(2)
	}

	logger := logging.NewWith(logging.FromEnv(os.Stderr))
	slog.SetDefault(logger)

	values := mappings.values()
	setIf(values, handlers.FormImagePolicy, *policy)
	setIf(values, handlers.FormBrandMode, *brandMode)
	setIf(values, handlers.FormRowFailure, *rowFailure)
	setIf(values, handlers.FormConcurrency, *concurrency)
	setIf(values, handlers.FormPlaceholderURL, *placeholder)
	opts, err := handlers.OptionsFromForm(values)
	if err != nil {
		fatal(logger, "invalid options", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fatal(logger, "failed to load configuration", err)
	}
	services, err := service.NewServices(cfg, logger)
	if err != nil {
		fatal(logger, "failed to initialize services", err)
	}

	f, err := os.Open(*in)
	if err != nil {
		fatal(logger, "failed to open input", err)
	}
	defer f.Close()

	if *inspect {
		res, err := services.Conversion.Inspect(*in, f, opts)
		if err != nil {
			fatal(logger, "inspection failed", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			fatal(logger, "failed to write inspection", err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.ConvertTimeout)
	defer cancel()

	res, err := services.Conversion.Convert(ctx, service.ConvertInput{Filename: *in, Body: f, Options: opts})
	if err != nil {
		fatal(logger, "conversion failed", err)
	}
	for _, rowErr := range res.Errors {
		logger.Warn("row dropped", "row", rowErr.Row, "title", rowErr.Title, "error", rowErr.Err)
	}

	dest := *out
	if dest == "" {
		dest = filepath.Join(filepath.Dir(*in), res.Filename)
	}
	if dest == "-" {
		_, err = os.Stdout.Write(res.CSV)
	} else {
		err = os.WriteFile(dest, res.CSV, 0644)
	}
	if err != nil {
		fatal(logger, "failed to write output", err)
	}

	logger.Info("conversion written",
		"output", dest,
		"run_id", res.Report.RunID,
		"rows_in", res.Report.RowsIn,
		"rows_out", res.Report.RowsOut,
		"products", res.Report.Products,
		"failed", res.Report.Failed,
		"skipped", res.Report.Skipped,
		"archive_key", res.ArchiveKey,
	)
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
