package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/refyne-catalog/internal/brand"
	"github.com/jmylchreest/refyne-catalog/internal/catalog"
	"github.com/jmylchreest/refyne-catalog/internal/constants"
	"github.com/jmylchreest/refyne-catalog/internal/images"
	"github.com/jmylchreest/refyne-catalog/internal/pipeline"
	"github.com/jmylchreest/refyne-catalog/internal/schema"
	"github.com/jmylchreest/refyne-catalog/internal/service"
	"github.com/jmylchreest/refyne-catalog/internal/table"
)

// Multipart form fields accepted by inspect and convert.
const (
	FormFile           = "file"
	FormImagePolicy    = "image_policy"
	FormBrandMode      = "brand_mode"
	FormRowFailure     = "row_failure"
	FormConcurrency    = "concurrency"
	FormPlaceholderURL = "placeholder_url"

	// FormMapPrefix + role pins a role to a column, e.g. map_title=Name.
	FormMapPrefix = "map_"
)

// Response headers set by convert.
const (
	HeaderRunID      = "X-Catalog-Run-ID"
	HeaderRowsIn     = "X-Catalog-Rows-In"
	HeaderRowsOut    = "X-Catalog-Rows-Out"
	HeaderProducts   = "X-Catalog-Products"
	HeaderFailed     = "X-Catalog-Rows-Failed"
	HeaderSkipped    = "X-Catalog-Rows-Skipped"
	HeaderFailedRows = "X-Catalog-Failed-Rows"
	HeaderArchiveKey = "X-Catalog-Archive-Key"
	HeaderArchiveURL = "X-Catalog-Archive-URL"
)

// multipartMemory is kept in memory by ParseMultipartForm; larger uploads
// spill to temporary files.
const multipartMemory = 8 << 20

var errInvalidForm = errors.New("invalid form")

// Converter is implemented by *service.ConversionService.
type Converter interface {
	Convert(ctx context.Context, in service.ConvertInput) (*service.ConvertOutput, error)
	Inspect(filename string, body io.Reader, opts pipeline.Options) (*service.InspectOutput, error)
}

// CatalogHandler serves the catalogue endpoints.
type CatalogHandler struct {
	conv           Converter
	defaults       pipeline.Options
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewCatalogHandler creates a catalog handler. defaults are only reported by
// the schema endpoint; the pipeline applies them itself.
func NewCatalogHandler(conv Converter, defaults pipeline.Options, maxUploadBytes int64, logger *slog.Logger) *CatalogHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = constants.DefaultMaxUploadBytes
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogHandler{
		conv:           conv,
		defaults:       defaults,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With("component", "catalog_handler"),
	}
}

// ----------------------------------------------------------------------------
// Schema
// ----------------------------------------------------------------------------

// RoleInfo describes one canonical role.
type RoleInfo struct {
	Role      schema.Role `json:"role" doc:"Canonical role name"`
	Keywords  []string    `json:"keywords" doc:"Header substrings that select a column for this role"`
	FormField string      `json:"form_field" doc:"Multipart field that pins this role to a column"`
}

// DefaultsInfo reports the options used when a request sets none.
type DefaultsInfo struct {
	BrandMode      brand.Mode           `json:"brand_mode"`
	ImagePolicy    images.Policy        `json:"image_policy"`
	RowFailure     pipeline.FailureMode `json:"row_failure"`
	Concurrency    int                  `json:"concurrency"`
	MaxConcurrency int                  `json:"max_concurrency"`
	PlaceholderURL string               `json:"placeholder_url"`
}

// SchemaOutput describes what the converter accepts and produces.
type SchemaOutput struct {
	Body struct {
		Formats        []string               `json:"formats" doc:"Accepted upload file extensions"`
		MaxUploadBytes int64                  `json:"max_upload_bytes"`
		Roles          []RoleInfo             `json:"roles"`
		OutputColumns  []string               `json:"output_columns" doc:"Shopify CSV header, in order"`
		BrandModes     []brand.Mode           `json:"brand_modes"`
		ImagePolicies  []images.Policy        `json:"image_policies"`
		RowFailures    []pipeline.FailureMode `json:"row_failures"`
		Defaults       DefaultsInfo           `json:"defaults"`
	}
}

// GetSchema reports the roles, modes and defaults of the converter.
func (h *CatalogHandler) GetSchema(ctx context.Context, input *struct{}) (*SchemaOutput, error) {
	out := &SchemaOutput{}
	out.Body.Formats = table.SupportedExtensions()
	out.Body.MaxUploadBytes = h.maxUploadBytes
	for _, role := range schema.Roles {
		out.Body.Roles = append(out.Body.Roles, RoleInfo{
			Role:      role,
			Keywords:  schema.DefaultKeywords[role],
			FormField: FormMapPrefix + string(role),
		})
	}
	out.Body.OutputColumns = catalog.Columns
	out.Body.BrandModes = []brand.Mode{brand.ModeAuto, brand.ModeExplicit, brand.ModeCorpus, brand.ModeRegex}
	out.Body.ImagePolicies = []images.Policy{images.PolicyPlaceholder, images.PolicySkip}
	out.Body.RowFailures = []pipeline.FailureMode{pipeline.FailureIsolate, pipeline.FailureAbort}
	out.Body.Defaults = DefaultsInfo{
		BrandMode:      h.defaults.BrandMode,
		ImagePolicy:    h.defaults.ImagePolicy,
		RowFailure:     h.defaults.FailureMode,
		Concurrency:    h.defaults.Concurrency,
		MaxConcurrency: constants.MaxConcurrency,
		PlaceholderURL: h.defaults.PlaceholderURL,
	}
	return out, nil
}

// ----------------------------------------------------------------------------
// Uploads
// ----------------------------------------------------------------------------

type upload struct {
	filename string
	file     multipart.File
	opts     pipeline.Options
}

func (h *CatalogHandler) readUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, tooLarge
		}
		return nil, fmt.Errorf("%w: %w", errInvalidForm, err)
	}

	file, header, err := r.FormFile(FormFile)
	if err != nil {
		return nil, fmt.Errorf("%w: field %q: %w", errInvalidForm, FormFile, err)
	}
	opts, err := OptionsFromForm(r.MultipartForm.Value)
	if err != nil {
		file.Close()
		return nil, err
	}
	return &upload{filename: header.Filename, file: file, opts: opts}, nil
}

// OptionsFromForm reads per-request options from form values. Empty or
// missing fields leave the option unset so the pipeline default applies.
func OptionsFromForm(values url.Values) (pipeline.Options, error) {
	var opts pipeline.Options
	var err error

	if v := strings.TrimSpace(values.Get(FormImagePolicy)); v != "" {
		if opts.ImagePolicy, err = images.ParsePolicy(v); err != nil {
			return opts, fmt.Errorf("%w: field %q: %w", errInvalidForm, FormImagePolicy, err)
		}
	}
	if v := strings.TrimSpace(values.Get(FormBrandMode)); v != "" {
		if opts.BrandMode, err = brand.ParseMode(v); err != nil {
			return opts, fmt.Errorf("%w: field %q: %w", errInvalidForm, FormBrandMode, err)
		}
	}
	if v := strings.TrimSpace(values.Get(FormRowFailure)); v != "" {
		if opts.FailureMode, err = pipeline.ParseFailureMode(v); err != nil {
			return opts, fmt.Errorf("%w: field %q: %w", errInvalidForm, FormRowFailure, err)
		}
	}
	if v := strings.TrimSpace(values.Get(FormConcurrency)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return opts, fmt.Errorf("%w: field %q: want a positive integer, got %q", errInvalidForm, FormConcurrency, v)
		}
		opts.Concurrency = n
	}
	if v := strings.TrimSpace(values.Get(FormPlaceholderURL)); v != "" {
		if !images.IsHTTP(v) {
			return opts, fmt.Errorf("%w: field %q: want an http(s) URL, got %q", errInvalidForm, FormPlaceholderURL, v)
		}
		opts.PlaceholderURL = v
	}

	for key, vals := range values {
		name, ok := strings.CutPrefix(key, FormMapPrefix)
		if !ok || len(vals) == 0 || strings.TrimSpace(vals[0]) == "" {
			continue
		}
		role, err := schema.ParseRole(name)
		if err != nil {
			return opts, fmt.Errorf("%w: field %q: %w", errInvalidForm, key, err)
		}
		if opts.Overrides == nil {
			opts.Overrides = make(schema.Overrides)
		}
		opts.Overrides[role] = strings.TrimSpace(vals[0])
	}
	return opts, nil
}

// Inspect reports the inferred column map and a preview of the first rows
// without calling the LLM or fetching any page.
func (h *CatalogHandler) Inspect(w http.ResponseWriter, r *http.Request) {
	up, err := h.readUpload(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer up.file.Close()

	out, err := h.conv.Inspect(up.filename, up.file, up.opts)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(out); err != nil {
		h.logger.Warn("failed to write inspect response", "error", err)
	}
}

// Convert enriches the upload and answers with the Shopify CSV as an
// attachment. The run report travels in X-Catalog-* headers.
func (h *CatalogHandler) Convert(w http.ResponseWriter, r *http.Request) {
	up, err := h.readUpload(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer up.file.Close()

	out, err := h.conv.Convert(r.Context(), service.ConvertInput{
		Filename: up.filename,
		Body:     up.file,
		Options:  up.opts,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	hdr := w.Header()
	hdr.Set("Content-Type", "text/csv; charset=utf-8")
	hdr.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.Filename))
	hdr.Set("Content-Length", strconv.Itoa(len(out.CSV)))
	hdr.Set(HeaderRunID, out.Report.RunID)
	hdr.Set(HeaderRowsIn, strconv.Itoa(out.Report.RowsIn))
	hdr.Set(HeaderRowsOut, strconv.Itoa(out.Report.RowsOut))
	hdr.Set(HeaderProducts, strconv.Itoa(out.Report.Products))
	hdr.Set(HeaderFailed, strconv.Itoa(out.Report.Failed))
	hdr.Set(HeaderSkipped, strconv.Itoa(out.Report.Skipped))
	if len(out.Errors) > 0 {
		rows := make([]string, len(out.Errors))
		for i, e := range out.Errors {
			rows[i] = strconv.Itoa(e.Row)
		}
		hdr.Set(HeaderFailedRows, strings.Join(rows, ","))
	}
	if out.ArchiveKey != "" {
		hdr.Set(HeaderArchiveKey, out.ArchiveKey)
	}
	if out.ArchiveURL != "" {
		hdr.Set(HeaderArchiveURL, out.ArchiveURL)
	}

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(out.CSV); err != nil {
		h.logger.Warn("failed to write conversion output", "run_id", out.Report.RunID, "error", err)
	}
}

// ----------------------------------------------------------------------------
// Errors
// ----------------------------------------------------------------------------

// StatusFor maps a conversion error to an HTTP status.
func StatusFor(err error) int {
	var tooLarge *http.MaxBytesError
	var rowErr *pipeline.RowError

	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, table.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, errInvalidForm),
		table.IsFormatError(err),
		errors.Is(err, table.ErrEmptyTable),
		errors.Is(err, schema.ErrUnknownColumn),
		errors.Is(err, schema.ErrAmbiguousMapping),
		errors.Is(err, schema.ErrUnknownRole),
		errors.Is(err, brand.ErrUnknownMode),
		errors.Is(err, images.ErrUnknownPolicy),
		errors.Is(err, pipeline.ErrUnknownFailureMode):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &rowErr):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *CatalogHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	detail := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "path", r.URL.Path, "error", err)
		detail = "internal error"
	} else {
		h.logger.Warn("request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	WriteProblem(w, status, detail)
}

// WriteProblem writes an RFC 9457 problem document, the same shape huma uses
// for its own errors.
func WriteProblem(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(&huma.ErrorModel{
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	})
}
