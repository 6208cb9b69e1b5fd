package handlers

import (
	"context"

	"github.com/maruel/wishlist/internal/server/dto"
)

// HealthHandler reports whether the data directory is usable.
type HealthHandler struct {
	svc     *Services
	version string
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(svc *Services, version string) *HealthHandler {
	return &HealthHandler{svc: svc, version: version}
}

// Health reads the group registry. A data directory that cannot be read or
// written answers with a storage error instead of "ok".
func (h *HealthHandler) Health(ctx context.Context, req *dto.HealthRequest) (*dto.HealthResponse, error) {
	groups, err := h.svc.Store.ListGroups()
	if err != nil {
		return nil, storageError(err)
	}
	return &dto.HealthResponse{
		Status:  dto.StatusOK,
		Version: h.version,
		Groups:  len(groups),
	}, nil
}
