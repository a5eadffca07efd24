package routes

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/refyne-catalog/internal/http/handlers"
)

// CatalogHandlers defines the catalogue operations.
type CatalogHandlers interface {
	GetSchema(ctx context.Context, input *struct{}) (*handlers.SchemaOutput, error)

	// Inspect and Convert take multipart uploads and are served by chi.
	Inspect(w http.ResponseWriter, r *http.Request)
	Convert(w http.ResponseWriter, r *http.Request)

	// RegisterRawEndpoints documents Inspect and Convert in the OpenAPI document.
	RegisterRawEndpoints(api huma.API)
}

// Handlers aggregates all handlers for route registration.
// For the main server, pass real handler implementations.
// For OpenAPI generation, pass stub implementations.
type Handlers struct {
	HealthCheck func(ctx context.Context, input *struct{}) (*handlers.HealthCheckOutput, error)

	// Kubernetes probe (hidden from docs)
	Livez func(ctx context.Context, input *struct{}) (*handlers.LivezOutput, error)

	Catalog CatalogHandlers
}
