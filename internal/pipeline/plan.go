package pipeline

import (
	"fmt"

	"github.com/jmylchreest/refyne-catalog/internal/brand"
	"github.com/jmylchreest/refyne-catalog/internal/catalog"
	"github.com/jmylchreest/refyne-catalog/internal/schema"
	"github.com/jmylchreest/refyne-catalog/internal/table"
)

// Plan is the read-only result of phase one.
type Plan struct {
	Columns   schema.ColumnMap
	BrandMode brand.Mode

	// Shared lists columns claimed by more than one role.
	Shared map[string][]schema.Role

	// Products holds the coerced scalars and handle of every row. Brand and
	// copy are filled in during phase two.
	Products []catalog.ProductRecord

	brandCells []string
	brands     brand.Resolver
}

// Brand resolves the brand of product i with the run's strategy.
func (p *Plan) Brand(i int) string {
	return p.brands.Resolve(brand.RowContext{Title: p.Products[i].Title, Brand: p.brandCells[i]})
}

// BrandCandidates returns the n best corpus candidates, or nil when the run
// does not use the corpus strategy.
func (p *Plan) BrandCandidates(n int) []brand.Candidate {
	if c, ok := p.brands.(*brand.Corpus); ok {
		return c.Candidates(n)
	}
	return nil
}

// Analyze infers the column map, selects the brand strategy and builds the
// product scalars of every row. It makes no external calls. opts is used as
// given; Pipeline.Analyze applies the pipeline defaults first.
func Analyze(t *table.Table, opts Options) (*Plan, error) {
	if t == nil {
		return nil, table.ErrEmptyTable
	}
	cols, err := schema.Infer(t.Columns, opts.Overrides)
	if err != nil {
		return nil, fmt.Errorf("infer columns: %w", err)
	}

	titles := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		titles[i] = cols.Value(row, schema.RoleTitle)
	}
	resolver, mode, err := brand.Select(opts.BrandMode, cols.Has(schema.RoleBrand), titles)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		Columns:    cols,
		BrandMode:  mode,
		Shared:     cols.Shared(),
		Products:   make([]catalog.ProductRecord, len(t.Rows)),
		brandCells: make([]string, len(t.Rows)),
		brands:     resolver,
	}

	handles := catalog.NewHandles()
	for i, row := range t.Rows {
		rec := catalog.ProductRecord{
			Row:         i + 1,
			Title:       titles[i],
			SKU:         cols.Value(row, schema.RoleSKU),
			Barcode:     cols.Value(row, schema.RoleBarcode),
			Quantity:    catalog.ParseQuantity(cols.Value(row, schema.RoleQuantity)),
			Price:       catalog.NormalizePrice(cols.Value(row, schema.RolePrice)),
			Content:     cols.Value(row, schema.RoleContent),
			Category:    cols.Value(row, schema.RoleCategory),
			Subcategory: cols.Value(row, schema.RoleSubcategory),
			Origin:      cols.Value(row, schema.RoleOrigin),
			SourceLink:  cols.Value(row, schema.RoleLink),
		}
		rec.Handle = handles.Assign(rec.Row, rec.Title, rec.SKU, rec.Barcode)
		rec.Tags = catalog.Tags(rec.Category, rec.Subcategory, rec.Origin)
		plan.Products[i] = rec
		plan.brandCells[i] = cols.Value(row, schema.RoleBrand)
	}
	return plan, nil
}
