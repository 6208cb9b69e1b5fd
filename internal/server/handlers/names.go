package handlers

import (
	"context"

	"github.com/maruel/wishlist/internal/server/dto"
)

// NameHandler handles roster requests.
type NameHandler struct {
	svc *Services
}

// NewNameHandler creates a new name handler.
func NewNameHandler(svc *Services) *NameHandler {
	return &NameHandler{svc: svc}
}

// GroupNames returns the names of a group. Serves both the visitor and the
// admin routes.
func (h *NameHandler) GroupNames(ctx context.Context, req *dto.GroupNamesRequest) (*dto.GroupNamesResponse, error) {
	group, err := resolveGroup(h.svc.Store, req.Group)
	if err != nil {
		return nil, err
	}
	names, err := h.svc.Store.GetGroupNames(group)
	if err != nil {
		return nil, storageError(err)
	}
	return &dto.GroupNamesResponse{Group: group, Names: names}, nil
}

// SetGroupNames replaces the names of a group.
func (h *NameHandler) SetGroupNames(ctx context.Context, req *dto.SetGroupNamesRequest) (*dto.SetGroupNamesResponse, error) {
	group, err := resolveGroup(h.svc.Store, req.Group)
	if err != nil {
		return nil, err
	}
	names, err := h.svc.Store.SetGroupNames(group, req.Names)
	if err != nil {
		return nil, storageError(err)
	}
	return &dto.SetGroupNamesResponse{Status: dto.StatusOK, Group: group, Names: names}, nil
}

// Names returns the names of the default group.
func (h *NameHandler) Names(ctx context.Context, req *dto.ListNamesRequest) (*dto.NamesResponse, error) {
	names, err := h.svc.Store.GetNames()
	if err != nil {
		return nil, storageError(err)
	}
	return &dto.NamesResponse{Names: names}, nil
}

// SetNames replaces the names of the default group.
func (h *NameHandler) SetNames(ctx context.Context, req *dto.SetNamesRequest) (*dto.SetNamesResponse, error) {
	names, err := h.svc.Store.SetNames(req.Names)
	if err != nil {
		return nil, storageError(err)
	}
	return &dto.SetNamesResponse{Status: dto.StatusOK, Names: names}, nil
}
