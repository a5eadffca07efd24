package handlers

import (
	"net/http"
	"reflect"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/refyne-catalog/internal/http/mw"
	"github.com/jmylchreest/refyne-catalog/internal/schema"
	"github.com/jmylchreest/refyne-catalog/internal/service"
)

// RegisterRawEndpoints documents the multipart endpoints in the OpenAPI
// document. They are served by chi handlers (Inspect, Convert), not by huma.
func (h *CatalogHandler) RegisterRawEndpoints(api huma.API) {
	registry := api.OpenAPI().Components.Schemas
	problem := &huma.Response{
		Description: "Problem document",
		Content: map[string]*huma.MediaType{
			"application/problem+json": {Schema: registry.Schema(reflect.TypeOf(huma.ErrorModel{}), true, "ErrorModel")},
		},
	}

	mw.DocumentRaw(api, http.MethodPost, "/api/v1/catalog/inspect",
		mw.WithOperationID("inspectCatalog"),
		mw.WithTags("Catalog"),
		mw.WithSummary("Inspect a spreadsheet"),
		mw.WithDescription(`Parses the upload, infers which column holds each role and previews the first products.
No LLM or network calls are made, so this is the cheap way to check column mapping before a conversion.`),
		mw.WithRequestBody(uploadBody()),
		mw.WithResponse("200", &huma.Response{
			Description: "Column mapping and product preview",
			Content: map[string]*huma.MediaType{
				"application/json": {Schema: registry.Schema(reflect.TypeOf(service.InspectOutput{}), true, "InspectOutput")},
			},
		}),
		mw.WithResponse("400", problem),
		mw.WithResponse("413", problem),
		mw.WithResponse("415", problem),
	)

	mw.DocumentRaw(api, http.MethodPost, "/api/v1/catalog/convert",
		mw.WithOperationID("convertCatalog"),
		mw.WithTags("Catalog"),
		mw.WithSummary("Convert a spreadsheet to a Shopify CSV"),
		mw.WithDescription(`Enriches every row (brand, description, SEO fields, images) and returns a Shopify product import CSV.
A product with several images spans several rows sharing its handle.

Example:
`+"```"+`bash
curl -F file=@stock.xlsx -F image_policy=skip \
     -o stock_shopify.csv \
     http://localhost:8080/api/v1/catalog/convert
`+"```"+`
`),
		mw.WithRequestBody(uploadBody()),
		mw.WithResponse("200", &huma.Response{
			Description: "Shopify product CSV",
			Headers: map[string]*huma.Param{
				HeaderRunID:      {Description: "Run identifier used in logs and archive keys", Schema: &huma.Schema{Type: "string"}},
				HeaderRowsIn:     {Description: "Data rows in the upload", Schema: &huma.Schema{Type: "integer"}},
				HeaderRowsOut:    {Description: "CSV rows written, one per image", Schema: &huma.Schema{Type: "integer"}},
				HeaderProducts:   {Description: "Products written", Schema: &huma.Schema{Type: "integer"}},
				HeaderFailed:     {Description: "Rows dropped after an enrichment failure", Schema: &huma.Schema{Type: "integer"}},
				HeaderSkipped:    {Description: "Rows dropped by the skip image policy", Schema: &huma.Schema{Type: "integer"}},
				HeaderFailedRows: {Description: "Comma-separated numbers of failed rows", Schema: &huma.Schema{Type: "string"}},
				HeaderArchiveKey: {Description: "Object key of the archived output", Schema: &huma.Schema{Type: "string"}},
				HeaderArchiveURL: {Description: "Presigned download link of the archived output", Schema: &huma.Schema{Type: "string"}},
			},
			Content: map[string]*huma.MediaType{
				"text/csv": {Schema: &huma.Schema{Type: "string", Description: "UTF-8 CSV with the Shopify product header"}},
			},
		}),
		mw.WithResponse("400", problem),
		mw.WithResponse("413", problem),
		mw.WithResponse("415", problem),
		mw.WithResponse("502", problem),
		mw.WithResponse("504", problem),
	)
}

func uploadBody() *huma.RequestBody {
	props := map[string]*huma.Schema{
		FormFile:           {Type: "string", Format: "binary", Description: "Spreadsheet (.csv, .tsv, .xlsx or .xlsm)"},
		FormImagePolicy:    {Type: "string", Enum: []any{"placeholder", "skip"}, Description: "What to do with products without images"},
		FormBrandMode:      {Type: "string", Enum: []any{"auto", "explicit", "corpus", "regex"}, Description: "Brand strategy"},
		FormRowFailure:     {Type: "string", Enum: []any{"isolate", "abort"}, Description: "Drop failed rows or fail the whole run"},
		FormConcurrency:    {Type: "integer", Description: "Rows enriched in parallel"},
		FormPlaceholderURL: {Type: "string", Format: "uri", Description: "Image used by the placeholder policy"},
	}
	for _, role := range schema.Roles {
		props[FormMapPrefix+string(role)] = &huma.Schema{
			Type:        "string",
			Description: "Column to use for the " + string(role) + " role",
		}
	}
	return &huma.RequestBody{
		Required: true,
		Content: map[string]*huma.MediaType{
			"multipart/form-data": {
				Schema: &huma.Schema{
					Type:       "object",
					Properties: props,
					Required:   []string{FormFile},
				},
			},
		},
	}
}
