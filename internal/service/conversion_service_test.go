package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"github.com/jmylchreest/refyne-catalog/internal/brand"
	"github.com/jmylchreest/refyne-catalog/internal/catalog"
	"github.com/jmylchreest/refyne-catalog/internal/images"
	"github.com/jmylchreest/refyne-catalog/internal/llm"
	"github.com/jmylchreest/refyne-catalog/internal/pipeline"
	"github.com/jmylchreest/refyne-catalog/internal/schema"
	"github.com/jmylchreest/refyne-catalog/internal/table"

	appconfig "github.com/jmylchreest/refyne-catalog/internal/config"
)

type stubDescriber struct{}

func (stubDescriber) Describe(_ context.Context, title, _ string) (string, error) {
	if title == "Broken" {
		return "", llm.ErrEmptyResponse
	}
	return "Great " + title + ".", nil
}

type stubImages map[string][]string

func (s stubImages) Resolve(_ context.Context, link, _ string) images.ImageSet {
	return images.ImageSet{URLs: s[link], Source: images.SourceScrape}
}

func newTestConversion(t *testing.T, imgs stubImages, storage *StorageService) *ConversionService {
	t.Helper()
	if storage == nil {
		storage, _ = NewStorageService(&appconfig.Config{}, quietLogger())
	}
	p := pipeline.New(stubDescriber{}, imgs, pipeline.Options{}, quietLogger())
	return NewConversionService(p, storage, true, quietLogger())
}

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	return records
}

func column(name string) int {
	for i, c := range catalog.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// ========================================
// ConversionService Tests
// ========================================

func TestConvert_SingleRow(t *testing.T) {
	svc := newTestConversion(t, stubImages{}, nil)

	out, err := svc.Convert(context.Background(), ConvertInput{
		Filename: "products.csv",
		Body:     strings.NewReader("Name,Price\nNivea Soft Cream,\"4,50\"\n"),
	})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if out.Filename != "products_shopify.csv" {
		t.Errorf("Filename = %q", out.Filename)
	}

	rows := readCSV(t, out.CSV)
	if len(rows) != 2 {
		t.Fatalf("CSV rows = %d, want header + 1", len(rows))
	}
	if strings.Join(rows[0], ",") != strings.Join(catalog.Columns, ",") {
		t.Errorf("header = %v", rows[0])
	}
	row := rows[1]
	if got := row[column("Vendor")]; got != "Nivea Soft Cream" {
		t.Errorf("Vendor = %q", got)
	}
	if got := row[column("Variant Price")]; got != "4.50" {
		t.Errorf("Variant Price = %q, want 4.50", got)
	}
	if got := row[column("Image Src")]; got != images.PlaceholderURL {
		t.Errorf("Image Src = %q, want placeholder", got)
	}
	if out.ArchiveKey != "" {
		t.Errorf("ArchiveKey = %q, want none with storage disabled", out.ArchiveKey)
	}
}

func TestConvert_TwoImages(t *testing.T) {
	svc := newTestConversion(t, stubImages{
		"https://shop.test/p": {"https://shop.test/1.jpg", "https://shop.test/2.jpg"},
	}, nil)

	out, err := svc.Convert(context.Background(), ConvertInput{
		Filename: "stock.csv",
		Body:     strings.NewReader("Title,URL\nShampoo,https://shop.test/p\n"),
	})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	rows := readCSV(t, out.CSV)
	if len(rows) != 3 {
		t.Fatalf("CSV rows = %d, want header + 2", len(rows))
	}
	for i, row := range rows[1:] {
		if row[column("Handle")] != "shampoo" {
			t.Errorf("row %d handle = %q", i, row[column("Handle")])
		}
		if want := []string{"1", "2"}[i]; row[column("Image Position")] != want {
			t.Errorf("row %d position = %q, want %s", i, row[column("Image Position")], want)
		}
	}
	if rows[1][column("Image Src")] != "https://shop.test/1.jpg" {
		t.Errorf("first image = %q", rows[1][column("Image Src")])
	}
	if out.Report.RowsOut != 2 {
		t.Errorf("Report.RowsOut = %d", out.Report.RowsOut)
	}
}

func TestConvert_UnsupportedFormat(t *testing.T) {
	svc := newTestConversion(t, stubImages{}, nil)

	out, err := svc.Convert(context.Background(), ConvertInput{
		Filename: "products.txt",
		Body:     strings.NewReader("Name,Price\nSoap,1\n"),
	})
	if out != nil {
		t.Errorf("Convert() output = %+v, want nil", out)
	}
	if !errors.Is(err, table.ErrUnsupportedFormat) || !table.IsFormatError(err) {
		t.Errorf("Convert() error = %v, want a format error", err)
	}
}

func TestConvert_RowErrorsReported(t *testing.T) {
	svc := newTestConversion(t, stubImages{}, nil)

	out, err := svc.Convert(context.Background(), ConvertInput{
		Filename: "products.csv",
		Body:     strings.NewReader("Title\nSoap\nBroken\n"),
	})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if out.Report.Failed != 1 || len(out.Errors) != 1 || out.Errors[0].Row != 2 {
		t.Errorf("Report = %+v, Errors = %v", out.Report, out.Errors)
	}
	if rows := readCSV(t, out.CSV); len(rows) != 2 {
		t.Errorf("CSV rows = %d, want header + 1", len(rows))
	}
}

func TestConvert_Archives(t *testing.T) {
	fake, srv := newFakeS3(t)
	svc := newTestConversion(t, stubImages{}, enabledStorage(t, srv.URL))

	out, err := svc.Convert(context.Background(), ConvertInput{
		Filename: "spring.csv",
		Body:     strings.NewReader("Title\nSoap\n"),
	})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	want := ArchiveKey(out.Report.RunID, "spring_shopify")
	if out.ArchiveKey != want {
		t.Errorf("ArchiveKey = %q, want %q", out.ArchiveKey, want)
	}
	if out.ArchiveURL == "" {
		t.Error("ArchiveURL should be set")
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()
	if len(fake.puts) != 1 {
		t.Errorf("uploads = %d, want 1", len(fake.puts))
	}
}

func TestConvert_ArchiveFailureIsNotFatal(t *testing.T) {
	_, srv := newFakeS3(t)
	storage := enabledStorage(t, srv.URL)
	srv.Close()

	svc := newTestConversion(t, stubImages{}, storage)
	out, err := svc.Convert(context.Background(), ConvertInput{
		Filename: "spring.csv",
		Body:     strings.NewReader("Title\nSoap\n"),
	})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if out.ArchiveKey != "" || len(out.CSV) == 0 {
		t.Errorf("ArchiveKey = %q, CSV = %d bytes", out.ArchiveKey, len(out.CSV))
	}
}

func TestConvert_OverrideErrors(t *testing.T) {
	svc := newTestConversion(t, stubImages{}, nil)

	_, err := svc.Convert(context.Background(), ConvertInput{
		Filename: "products.csv",
		Body:     strings.NewReader("Title,Price\nSoap,1\n"),
		Options:  pipeline.Options{Overrides: schema.Overrides{schema.RoleBrand: "Maker"}},
	})
	if !errors.Is(err, schema.ErrUnknownColumn) {
		t.Errorf("Convert() error = %v, want ErrUnknownColumn", err)
	}
}

// ----------------------------------------
// Inspect Tests
// ----------------------------------------

func TestInspect(t *testing.T) {
	svc := newTestConversion(t, stubImages{}, nil)

	var b strings.Builder
	b.WriteString("Артикул;Наименование;Цена;Линк\n")
	for i := range 7 {
		b.WriteString("A" + string(rune('0'+i)) + ";Bioderma Sensibio " + string(rune('A'+i)) + ";10,5;https://shop.test/" + string(rune('a'+i)) + "\n")
	}

	out, err := svc.Inspect("bg.csv", strings.NewReader(b.String()), pipeline.Options{})
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if out.Rows != 7 || len(out.Sample) != inspectSampleSize {
		t.Errorf("Rows = %d, Sample = %d", out.Rows, len(out.Sample))
	}
	if out.BrandMode != brand.ModeCorpus {
		t.Errorf("BrandMode = %q, want corpus", out.BrandMode)
	}
	if len(out.BrandCandidates) == 0 || out.BrandCandidates[0].Text != "Bioderma Sensibio" || out.BrandCandidates[0].Count != 7 {
		t.Errorf("BrandCandidates = %+v", out.BrandCandidates)
	}
	roles := map[schema.Role]string{}
	for _, a := range out.Assignments {
		roles[a.Role] = a.Column
	}
	if roles[schema.RoleTitle] != "Наименование" || roles[schema.RoleSKU] != "Артикул" ||
		roles[schema.RolePrice] != "Цена" || roles[schema.RoleLink] != "Линк" {
		t.Errorf("Assignments = %+v", out.Assignments)
	}
	first := out.Sample[0]
	if first.Price != "10.5" || first.Brand != "Bioderma Sensibio" {
		t.Errorf("Sample[0] = %+v", first)
	}
}

func TestOutputName(t *testing.T) {
	tests := map[string]string{
		"products.csv":         "products_shopify",
		"/tmp/upload/May.xlsx": "May_shopify",
		"":                     "catalog_shopify",
		".csv":                 "catalog_shopify",
	}
	for in, want := range tests {
		if got := OutputName(in); got != want {
			t.Errorf("OutputName(%q) = %q, want %q", in, got, want)
		}
	}
}
