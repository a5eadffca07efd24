// Package catalog holds the product records of a conversion and serializes
// them as a Shopify product import CSV.
package catalog

import (
	"strconv"
	"strings"
)

// ProductRecord is the resolved form of one input row.
type ProductRecord struct {
	// Row is the 1-based data row number in the upload.
	Row int

	Title       string
	Brand       string
	SKU         string
	Barcode     string
	Quantity    int
	Price       string
	Content     string
	Category    string
	Subcategory string
	Origin      string
	SourceLink  string

	Handle         string
	Tags           string
	SEOTitle       string
	SEODescription string
	BodyHTML       string
}

// OutputRecord is one CSV row: a product plus exactly one of its images.
type OutputRecord struct {
	ProductRecord

	ImageSrc      string
	ImagePosition int
	ImageAltText  string
}

// Expand returns one OutputRecord per image with 1-based positions. An empty
// image set yields no records.
func Expand(rec ProductRecord, images []string) []OutputRecord {
	if len(images) == 0 {
		return nil
	}
	alt := strings.TrimSpace(strings.TrimSpace(rec.Brand) + " " + strings.TrimSpace(rec.Title))
	out := make([]OutputRecord, len(images))
	for i, src := range images {
		out[i] = OutputRecord{
			ProductRecord: rec,
			ImageSrc:      src,
			ImagePosition: i + 1,
			ImageAltText:  alt,
		}
	}
	return out
}

// Tags joins the non-empty values with ", ".
func Tags(values ...string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}

// Handles hands out unique product handles within one conversion.
type Handles struct {
	used map[string]struct{}
}

// NewHandles creates an empty handle registry.
func NewHandles() *Handles {
	return &Handles{used: make(map[string]struct{})}
}

// Assign derives the handle for a row: the title slug, else the SKU slug,
// else the barcode slug, else "product-<row>". Repeats get "-2", "-3", ...
func (h *Handles) Assign(row int, title, sku, barcode string) string {
	base := ""
	for _, candidate := range []string{title, sku, barcode} {
		if base = Slugify(candidate); base != "" {
			break
		}
	}
	if base == "" {
		base = "product-" + strconv.Itoa(row)
	}

	handle := base
	for n := 2; ; n++ {
		if _, taken := h.used[handle]; !taken {
			break
		}
		handle = base + "-" + strconv.Itoa(n)
	}
	h.used[handle] = struct{}{}
	return handle
}
