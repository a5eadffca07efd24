// Package routes provides shared route registration for the catalogue API.
// The server and the OpenAPI generator use the same definitions, so the
// published document always matches what is served.
package routes

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/refyne-catalog/internal/version"
)

// NewHumaConfig creates the shared Huma configuration for the API.
func NewHumaConfig(baseURL string) huma.Config {
	cfg := huma.DefaultConfig("Refyne Catalog API", version.Get().Short())
	cfg.Info.Description = "Turns supplier spreadsheets into Shopify product import files, with generated descriptions, SEO fields and product images."

	// Disable $schema field in responses - it conflicts with "schema" field in SDK code generators
	cfg.CreateHooks = nil

	if baseURL != "" {
		cfg.Servers = []*huma.Server{
			{URL: baseURL, Description: "API Server"},
		}
	}

	cfg.Tags = []*huma.Tag{
		{Name: "Catalog", Description: "Spreadsheet inspection and Shopify conversion", Extensions: map[string]any{"x-displayName": "Catalog"}},
		{Name: "Health", Description: "System health and status", Extensions: map[string]any{"x-displayName": "Health"}},
	}

	return cfg
}

// NewHiddenConfig is used for routes that must not appear in any document,
// such as Kubernetes probes.
func NewHiddenConfig() huma.Config {
	cfg := huma.DefaultConfig("Refyne Catalog API", version.Get().Short())
	cfg.CreateHooks = nil
	cfg.DocsPath = ""
	cfg.OpenAPIPath = ""
	cfg.SchemasPath = ""
	return cfg
}
