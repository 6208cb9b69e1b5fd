package handlers

import (
	"context"
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/maruel/wishlist/internal/server/dto"
)

// SchemaHandler publishes the JSON Schema of every request body the API
// accepts, so clients can validate payloads before sending them.
type SchemaHandler struct {
	schemas map[string]any
}

// NewSchemaHandler reflects the request body schemas once.
func NewSchemaHandler() *SchemaHandler {
	r := jsonschema.Reflector{Anonymous: true, DoNotReference: true}
	schemas := make(map[string]any)
	for _, v := range []any{
		dto.ReplaceGroupsRequest{},
		dto.SetGroupNamesRequest{},
		dto.SetNamesRequest{},
		dto.SaveGroupContentRequest{},
		dto.SaveContentRequest{},
	} {
		t := reflect.TypeOf(v)
		schemas[t.Name()] = r.ReflectFromType(t)
	}
	return &SchemaHandler{schemas: schemas}
}

// Schema returns the request body schemas keyed by request type name.
func (h *SchemaHandler) Schema(ctx context.Context, req *dto.SchemaRequest) (*dto.SchemaResponse, error) {
	return &dto.SchemaResponse{Schemas: h.schemas}, nil
}
