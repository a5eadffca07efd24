package routes

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/jmylchreest/refyne-catalog/internal/http/mw"
)

// Register registers all documented routes with the given Huma API instance.
// Pass real handler implementations for the main server, or stub implementations
// for OpenAPI generation.
func Register(api huma.API, h *Handlers) {
	mw.PublicGet(api, "/api/v1/health", h.HealthCheck,
		mw.WithTags("Health"),
		mw.WithSummary("Health check"),
		mw.WithOperationID("healthCheck"))

	mw.PublicGet(api, "/api/v1/catalog/schema", h.Catalog.GetSchema,
		mw.WithTags("Catalog"),
		mw.WithSummary("Describe roles, modes and defaults"),
		mw.WithDescription("Lists the canonical roles with their header keywords, the accepted upload formats, the Shopify output columns and the options a conversion accepts."),
		mw.WithOperationID("getCatalogSchema"))

	h.Catalog.RegisterRawEndpoints(api)
}

// RegisterProbes registers the hidden probe routes.
func RegisterProbes(api huma.API, h *Handlers) {
	mw.HiddenGet(api, "/healthz", h.Livez)
}

// MountRaw mounts the handlers that huma only documents.
func MountRaw(r chi.Router, h *Handlers) {
	r.Post("/api/v1/catalog/inspect", h.Catalog.Inspect)
	r.Post("/api/v1/catalog/convert", h.Catalog.Convert)
}
