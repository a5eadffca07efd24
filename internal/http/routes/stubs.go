package routes

import (
	"context"

	"github.com/jmylchreest/refyne-catalog/internal/http/handlers"
)

// StubHandlers returns a Handlers instance with stub implementations.
// All handlers return nil responses - these are only used for OpenAPI generation
// where Huma extracts type information from function signatures.
func StubHandlers() *Handlers {
	return &Handlers{
		HealthCheck: stubHealthCheck,
		Livez:       stubLivez,
		Catalog:     &stubCatalogHandlers{},
	}
}

func stubHealthCheck(_ context.Context, _ *struct{}) (*handlers.HealthCheckOutput, error) {
	return nil, nil
}

func stubLivez(_ context.Context, _ *struct{}) (*handlers.LivezOutput, error) {
	return nil, nil
}

// stubCatalogHandlers keeps the real documentation of the raw endpoints and
// stubs everything that would do work.
type stubCatalogHandlers struct {
	handlers.CatalogHandler
}

func (s *stubCatalogHandlers) GetSchema(_ context.Context, _ *struct{}) (*handlers.SchemaOutput, error) {
	return nil, nil
}
