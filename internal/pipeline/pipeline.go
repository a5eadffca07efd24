// Package pipeline converts a parsed upload into Shopify output records.
//
// A run has two phases. Analyze looks at the whole table once, on the calling
// goroutine: it infers the column map, builds the brand resolver (the corpus
// strategy needs every title) and assigns handles. Run then enriches rows on a
// bounded errgroup pool. Each worker writes only its own result slot, so the
// output keeps input row order whatever the completion order.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/jmylchreest/refyne-catalog/internal/brand"
	"github.com/jmylchreest/refyne-catalog/internal/catalog"
	"github.com/jmylchreest/refyne-catalog/internal/constants"
	"github.com/jmylchreest/refyne-catalog/internal/content"
	"github.com/jmylchreest/refyne-catalog/internal/images"
	"github.com/jmylchreest/refyne-catalog/internal/llm"
	"github.com/jmylchreest/refyne-catalog/internal/schema"
	"github.com/jmylchreest/refyne-catalog/internal/table"
)

// FailureMode decides what a row enrichment failure does to the run.
type FailureMode string

const (
	// FailureIsolate drops the failed row, records a RowError and carries on.
	FailureIsolate FailureMode = "isolate"

	// FailureAbort fails the whole run with the first row error.
	FailureAbort FailureMode = "abort"
)

var ErrUnknownFailureMode = errors.New("unknown row failure mode")

// ParseFailureMode parses a failure mode. An empty string means FailureIsolate.
func ParseFailureMode(s string) (FailureMode, error) {
	switch m := FailureMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return FailureIsolate, nil
	case FailureIsolate, FailureAbort:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q (valid: isolate, abort)", ErrUnknownFailureMode, s)
	}
}

// Describer is implemented by *content.Describer.
type Describer interface {
	Describe(ctx context.Context, title, category string) (string, error)
}

// ImageResolver is implemented by *images.Resolver.
type ImageResolver interface {
	Resolve(ctx context.Context, link, identifier string) images.ImageSet
}

// Options tune a single run. Zero values inherit the pipeline defaults.
type Options struct {
	Overrides      schema.Overrides
	BrandMode      brand.Mode
	ImagePolicy    images.Policy
	PlaceholderURL string
	Concurrency    int
	FailureMode    FailureMode
}

// merge returns o with its zero fields taken from defaults. Overrides are
// combined, o winning per role.
func (o Options) merge(defaults Options) Options {
	out := o
	out.Overrides = defaults.Overrides.Merge(o.Overrides)
	if out.BrandMode == "" {
		out.BrandMode = defaults.BrandMode
	}
	if out.ImagePolicy == "" {
		out.ImagePolicy = defaults.ImagePolicy
	}
	if out.PlaceholderURL == "" {
		out.PlaceholderURL = defaults.PlaceholderURL
	}
	if out.Concurrency <= 0 {
		out.Concurrency = defaults.Concurrency
	}
	if out.FailureMode == "" {
		out.FailureMode = defaults.FailureMode
	}

	if out.BrandMode == "" {
		out.BrandMode = brand.ModeAuto
	}
	if out.ImagePolicy == "" {
		out.ImagePolicy = images.PolicyPlaceholder
	}
	if out.FailureMode == "" {
		out.FailureMode = FailureIsolate
	}
	out.Concurrency = constants.ClampConcurrency(out.Concurrency)
	return out
}

// RowError records why one row produced no output.
type RowError struct {
	// Row is the 1-based data row number.
	Row   int
	Title string
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d (%q): %v", e.Row, e.Title, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Report summarises a run.
type Report struct {
	RunID string `json:"run_id"`

	// RowsIn counts data rows in the upload.
	RowsIn int `json:"rows_in"`

	// RowsOut counts CSV rows written (one per image).
	RowsOut int `json:"rows_out"`

	Products int `json:"products"`
	Failed   int `json:"failed"`
	Skipped  int `json:"skipped"`
}

// Result is the outcome of Run.
type Result struct {
	Plan    *Plan
	Records []catalog.OutputRecord
	Errors  []*RowError
	Report  Report
}

// Pipeline enriches tables. It is safe for concurrent use.
type Pipeline struct {
	describer Describer
	images    ImageResolver
	defaults  Options
	logger    *slog.Logger
}

// New creates a pipeline. defaults apply to every run unless the run's own
// Options set a field.
func New(describer Describer, resolver ImageResolver, defaults Options, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		describer: describer,
		images:    resolver,
		defaults:  defaults,
		logger:    logger.With("component", "pipeline"),
	}
}

// Defaults returns the effective options used when a run sets none.
func (p *Pipeline) Defaults() Options {
	return Options{}.merge(p.defaults)
}

// Analyze runs phase one with the pipeline defaults applied to opts.
func (p *Pipeline) Analyze(t *table.Table, opts Options) (*Plan, error) {
	return Analyze(t, opts.merge(p.defaults))
}

type rowOutcome struct {
	records []catalog.OutputRecord
	err     *RowError
}

// Run converts t. An input error (bad override, unknown mode) fails the run
// before any row is enriched. Row failures are isolated or abort the run
// depending on the failure mode. Cancelling ctx stops queuing new rows and
// fails the run.
func (p *Pipeline) Run(ctx context.Context, t *table.Table, opts Options) (*Result, error) {
	opts = opts.merge(p.defaults)
	runID := ulid.Make().String()
	logger := p.logger.With("run_id", runID)

	plan, err := Analyze(t, opts)
	if err != nil {
		return nil, err
	}
	for _, col := range plan.Columns.SharedColumns() {
		logger.Warn("column mapped to several roles", "column", col, "roles", plan.Shared[col])
	}
	logger.Info("conversion started",
		"rows", len(plan.Products),
		"brand_mode", plan.BrandMode,
		"image_policy", opts.ImagePolicy,
		"concurrency", opts.Concurrency,
	)

	outcomes := make([]rowOutcome, len(plan.Products))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i := range plan.Products {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			outcomes[i] = p.enrich(gctx, logger, plan, i, opts)
			if outcomes[i].err != nil && opts.FailureMode == FailureAbort {
				return outcomes[i].err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("conversion aborted", "error", err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		logger.Warn("conversion cancelled", "error", err)
		return nil, fmt.Errorf("conversion cancelled: %w", err)
	}

	res := &Result{Plan: plan, Report: Report{RunID: runID, RowsIn: t.Len()}}
	for _, o := range outcomes {
		switch {
		case o.err != nil:
			res.Errors = append(res.Errors, o.err)
			res.Report.Failed++
		case len(o.records) == 0:
			res.Report.Skipped++
		default:
			res.Records = append(res.Records, o.records...)
			res.Report.Products++
		}
	}
	res.Report.RowsOut = len(res.Records)

	logger.Info("conversion finished",
		"rows_in", res.Report.RowsIn,
		"rows_out", res.Report.RowsOut,
		"products", res.Report.Products,
		"failed", res.Report.Failed,
		"skipped", res.Report.Skipped,
	)
	return res, nil
}

// enrich runs phase two for one row: brand, copy, SEO, images, expansion.
func (p *Pipeline) enrich(ctx context.Context, logger *slog.Logger, plan *Plan, i int, opts Options) rowOutcome {
	rec := plan.Products[i]
	fail := func(err error) rowOutcome {
		logger.Warn("row failed",
			"row", rec.Row,
			"title", rec.Title,
			"llm_category", llm.Category(err),
			"retryable", llm.IsRetryable(err),
			"error", err,
		)
		return rowOutcome{err: &RowError{Row: rec.Row, Title: rec.Title, Err: err}}
	}
	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	rec.Brand = plan.Brand(i)

	text, err := p.describer.Describe(ctx, rec.Title, rec.Category)
	if err != nil {
		return fail(err)
	}
	rec.BodyHTML = content.BodyHTML(text)
	rec.SEOTitle = content.SEOTitle(rec.Title, rec.Brand, rec.Category)
	rec.SEODescription = content.SEODescription(rec.Title, rec.Brand, rec.Category, rec.Origin)

	set := images.ImageSet{Source: images.SourceNone}
	if p.images != nil {
		set = p.images.Resolve(ctx, rec.SourceLink, images.SearchQuery(rec.Barcode, rec.SKU, rec.Title))
	}
	set = opts.ImagePolicy.Apply(set, opts.PlaceholderURL)
	if set.Empty() {
		logger.Info("row skipped, no images", "row", rec.Row, "title", rec.Title)
		return rowOutcome{}
	}
	logger.Debug("row enriched", "row", rec.Row, "handle", rec.Handle, "images", len(set.URLs), "image_source", set.Source)
	return rowOutcome{records: catalog.Expand(rec, set.URLs)}
}
