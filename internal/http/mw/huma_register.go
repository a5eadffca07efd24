package mw

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// OperationOption is a function that modifies an operation.
type OperationOption func(*huma.Operation)

// WithTags adds tags to the operation.
func WithTags(tags ...string) OperationOption {
	return func(op *huma.Operation) {
		op.Tags = append(op.Tags, tags...)
	}
}

// WithDescription sets the operation description.
func WithDescription(desc string) OperationOption {
	return func(op *huma.Operation) {
		op.Description = desc
	}
}

// WithSummary sets the operation summary.
func WithSummary(summary string) OperationOption {
	return func(op *huma.Operation) {
		op.Summary = summary
	}
}

// WithOperationID sets a custom operation ID.
func WithOperationID(id string) OperationOption {
	return func(op *huma.Operation) {
		op.OperationID = id
	}
}

// WithHidden hides the operation from OpenAPI documentation.
func WithHidden() OperationOption {
	return func(op *huma.Operation) {
		op.Hidden = true
	}
}

// WithRequestBody replaces the generated request body documentation.
func WithRequestBody(body *huma.RequestBody) OperationOption {
	return func(op *huma.Operation) {
		op.RequestBody = body
	}
}

// WithResponse documents the response for one status code.
func WithResponse(status string, resp *huma.Response) OperationOption {
	return func(op *huma.Operation) {
		if op.Responses == nil {
			op.Responses = make(map[string]*huma.Response)
		}
		op.Responses[status] = resp
	}
}

func newOperation(method, path string, opts []OperationOption) huma.Operation {
	op := huma.Operation{
		Method: method,
		Path:   path,
	}
	for _, opt := range opts {
		opt(&op)
	}
	return op
}

// PublicGet registers a GET endpoint.
func PublicGet[I, O any](api huma.API, path string, handler func(ctx context.Context, input *I) (*O, error), opts ...OperationOption) {
	huma.Register(api, newOperation(http.MethodGet, path, opts), handler)
}

// HiddenGet registers a GET endpoint that won't appear in OpenAPI docs.
// Used for internal endpoints like K8s probes.
func HiddenGet[I, O any](api huma.API, path string, handler func(ctx context.Context, input *I) (*O, error), opts ...OperationOption) {
	huma.Register(api, newOperation(http.MethodGet, path, append(opts, WithHidden())), handler)
}

// DocumentRaw adds an operation served by a plain chi handler to the OpenAPI
// document without routing it through huma. Multipart uploads and CSV
// downloads are documented this way.
func DocumentRaw(api huma.API, method, path string, opts ...OperationOption) {
	op := newOperation(method, path, opts)
	api.OpenAPI().AddOperation(&op)
}
