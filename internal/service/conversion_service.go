package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmylchreest/refyne-catalog/internal/brand"
	"github.com/jmylchreest/refyne-catalog/internal/catalog"
	"github.com/jmylchreest/refyne-catalog/internal/pipeline"
	"github.com/jmylchreest/refyne-catalog/internal/schema"
	"github.com/jmylchreest/refyne-catalog/internal/table"
)

// archiveURLExpiry is how long the presigned archive link stays valid.
const archiveURLExpiry = 24 * time.Hour

// inspectSampleSize is the number of products previewed by Inspect.
const inspectSampleSize = 5

// ConversionService turns uploaded spreadsheets into Shopify CSV files.
type ConversionService struct {
	pipeline *pipeline.Pipeline
	storage  *StorageService
	archive  bool
	logger   *slog.Logger
}

// NewConversionService creates a conversion service. Outputs are archived when
// archive is set and storage is enabled.
func NewConversionService(p *pipeline.Pipeline, storage *StorageService, archive bool, logger *slog.Logger) *ConversionService {
	return &ConversionService{
		pipeline: p,
		storage:  storage,
		archive:  archive,
		logger:   logger.With("component", "conversion"),
	}
}

// ConvertInput is one uploaded file plus per-request options.
type ConvertInput struct {
	Filename string
	Body     io.Reader
	Options  pipeline.Options
}

// ConvertOutput is a finished conversion.
type ConvertOutput struct {
	// Filename is the suggested download name, "<base>_shopify.csv".
	Filename string
	CSV      []byte
	Report   pipeline.Report
	Errors   []*pipeline.RowError

	// ArchiveKey and ArchiveURL are set when the output was archived.
	ArchiveKey string
	ArchiveURL string
}

// OutputName derives the output base name from the uploaded filename.
func OutputName(filename string) string {
	base := filepath.Base(strings.TrimSpace(filename))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "catalog"
	}
	return base + "_shopify"
}

// Convert parses the upload, runs the pipeline and renders the CSV. A format
// error or input error fails before any row is enriched. Archiving failures
// are logged and do not fail the conversion.
func (s *ConversionService) Convert(ctx context.Context, in ConvertInput) (*ConvertOutput, error) {
	tbl, err := table.Parse(in.Filename, in.Body)
	if err != nil {
		return nil, err
	}

	res, err := s.pipeline.Run(ctx, tbl, in.Options)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := catalog.WriteAll(&buf, res.Records); err != nil {
		return nil, fmt.Errorf("write output: %w", err)
	}

	name := OutputName(in.Filename)
	out := &ConvertOutput{
		Filename: name + ".csv",
		CSV:      buf.Bytes(),
		Report:   res.Report,
		Errors:   res.Errors,
	}

	if s.archive && s.storage.IsEnabled() {
		key, err := s.storage.StoreOutput(ctx, res.Report.RunID, name, out.CSV)
		if err != nil {
			s.logger.Warn("failed to archive output", "run_id", res.Report.RunID, "error", err)
			return out, nil
		}
		out.ArchiveKey = key
		if url, err := s.storage.OutputPresignedURL(ctx, key, archiveURLExpiry); err == nil {
			out.ArchiveURL = url
		}
	}
	return out, nil
}

// ProductPreview is the phase-one view of one row.
type ProductPreview struct {
	Row      int    `json:"row"`
	Title    string `json:"title"`
	Brand    string `json:"brand"`
	Handle   string `json:"handle"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
	Link     string `json:"link,omitempty"`
}

// InspectOutput describes how an upload would be converted.
type InspectOutput struct {
	Columns     []string                 `json:"columns"`
	Assignments []schema.Assignment      `json:"assignments"`
	Shared      map[string][]schema.Role `json:"shared,omitempty"`
	BrandMode   brand.Mode               `json:"brand_mode"`

	// BrandCandidates is filled for the corpus strategy only.
	BrandCandidates []brand.Candidate `json:"brand_candidates,omitempty"`

	Rows   int              `json:"rows"`
	Sample []ProductPreview `json:"sample"`
}

// Inspect runs schema inference and brand selection without any external
// calls.
func (s *ConversionService) Inspect(filename string, body io.Reader, opts pipeline.Options) (*InspectOutput, error) {
	tbl, err := table.Parse(filename, body)
	if err != nil {
		return nil, err
	}
	plan, err := s.pipeline.Analyze(tbl, opts)
	if err != nil {
		return nil, err
	}

	out := &InspectOutput{
		Columns:         tbl.Columns,
		Assignments:     plan.Columns.Assignments(),
		Shared:          plan.Shared,
		BrandMode:       plan.BrandMode,
		BrandCandidates: plan.BrandCandidates(inspectSampleSize),
		Rows:            tbl.Len(),
		Sample:          make([]ProductPreview, 0, min(inspectSampleSize, len(plan.Products))),
	}
	for i, rec := range plan.Products {
		if i == inspectSampleSize {
			break
		}
		out.Sample = append(out.Sample, ProductPreview{
			Row:      rec.Row,
			Title:    rec.Title,
			Brand:    plan.Brand(i),
			Handle:   rec.Handle,
			Price:    rec.Price,
			Quantity: rec.Quantity,
			Link:     rec.SourceLink,
		})
	}
	return out, nil
}
