package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// Columns is the Shopify product import header, in order.
var Columns = []string{
	"Handle",
	"Title",
	"Body (HTML)",
	"Vendor",
	"Product Category",
	"Type",
	"Tags",
	"Published",
	"Option1 Name",
	"Option1 Value",
	"Variant SKU",
	"Variant Grams",
	"Variant Inventory Tracker",
	"Variant Inventory Qty",
	"Variant Inventory Policy",
	"Variant Fulfillment Service",
	"Variant Price",
	"Variant Compare At Price",
	"Variant Requires Shipping",
	"Variant Taxable",
	"Variant Barcode",
	"Image Src",
	"Image Position",
	"Image Alt Text",
	"Gift Card",
	"SEO Title",
	"SEO Description",
	"Status",
}

// Literal values for fields the source never supplies.
const (
	published          = "TRUE"
	status             = "active"
	inventoryTracker   = "shopify"
	inventoryPolicy    = "deny"
	fulfillmentService = "manual"
	requiresShipping   = "TRUE"
	taxable            = "TRUE"
	giftCard           = "FALSE"
	defaultOptionName  = "Title"
	defaultOptionValue = "Default Title"
	contentOptionName  = "Size"
)

// Fields returns the record as a row aligned with Columns.
func (r OutputRecord) Fields() []string {
	optionName, optionValue := defaultOptionName, defaultOptionValue
	if r.Content != "" {
		optionName, optionValue = contentOptionName, r.Content
	}
	position := ""
	if r.ImagePosition > 0 {
		position = strconv.Itoa(r.ImagePosition)
	}

	return []string{
		r.Handle,
		r.Title,
		r.BodyHTML,
		r.Brand,
		"",
		r.Category,
		r.Tags,
		published,
		optionName,
		optionValue,
		r.SKU,
		"",
		inventoryTracker,
		strconv.Itoa(r.Quantity),
		inventoryPolicy,
		fulfillmentService,
		r.Price,
		"",
		requiresShipping,
		taxable,
		r.Barcode,
		r.ImageSrc,
		position,
		r.ImageAltText,
		giftCard,
		r.SEOTitle,
		r.SEODescription,
		status,
	}
}

// Writer serializes OutputRecords as Shopify CSV. The header is written
// before the first record, or by Close when there are none.
type Writer struct {
	csv           *csv.Writer
	headerWritten bool
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

func (w *Writer) writeHeader() error {
	if w.headerWritten {
		return nil
	}
	w.headerWritten = true
	if err := w.csv.Write(Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}

// Write appends one record.
func (w *Writer) Write(rec OutputRecord) error {
	if err := w.writeHeader(); err != nil {
		return err
	}
	if err := w.csv.Write(rec.Fields()); err != nil {
		return fmt.Errorf("write %s #%d: %w", rec.Handle, rec.ImagePosition, err)
	}
	return nil
}

// Close writes the header if needed and flushes buffered output.
func (w *Writer) Close() error {
	if err := w.writeHeader(); err != nil {
		return err
	}
	w.csv.Flush()
	return w.csv.Error()
}

// WriteAll writes the header and every record to w.
func WriteAll(w io.Writer, records []OutputRecord) error {
	cw := NewWriter(w)
	for _, rec := range records {
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	return cw.Close()
}
