package handlers

import (
	"context"
	"log/slog"

	"github.com/maruel/wishlist/internal/server/dto"
	"github.com/maruel/wishlist/internal/storage"
)

// GroupHandler handles group registry requests.
type GroupHandler struct {
	svc *Services
}

// NewGroupHandler creates a new group handler.
func NewGroupHandler(svc *Services) *GroupHandler {
	return &GroupHandler{svc: svc}
}

// ListGroups returns the groups visitors can see.
func (h *GroupHandler) ListGroups(ctx context.Context, req *dto.ListGroupsRequest) (*dto.ListGroupsResponse, error) {
	groups, err := h.svc.Store.ListPublicGroups()
	if err != nil {
		return nil, storageError(err)
	}
	out := make([]dto.GroupSummary, len(groups))
	for i, g := range groups {
		out[i] = dto.GroupSummary{Slug: g.Slug, Title: g.Title}
	}
	return &dto.ListGroupsResponse{Groups: out}, nil
}

// ListAdminGroups returns every group, hidden ones included.
func (h *GroupHandler) ListAdminGroups(ctx context.Context, req *dto.ListAdminGroupsRequest) (*dto.ListAdminGroupsResponse, error) {
	groups, err := h.svc.Store.ListGroups()
	if err != nil {
		return nil, storageError(err)
	}
	return &dto.ListAdminGroupsResponse{Groups: groupsToDTO(groups)}, nil
}

// ReplaceGroups replaces the group list, renaming groups that carry an
// oldSlug.
func (h *GroupHandler) ReplaceGroups(ctx context.Context, req *dto.ReplaceGroupsRequest) (*dto.ReplaceGroupsResponse, error) {
	updates := make([]storage.GroupUpdate, len(req.Groups))
	for i, g := range req.Groups {
		updates[i] = storage.GroupUpdate{Slug: g.Slug, Title: g.Title, Hidden: g.Hidden, OldSlug: g.OldSlug}
	}
	groups, err := h.svc.Store.ReplaceGroups(updates)
	if err != nil {
		return nil, storageError(err)
	}
	slog.InfoContext(ctx, "Groups replaced", "count", len(groups))
	return &dto.ReplaceGroupsResponse{Status: dto.StatusOK, Groups: groupsToDTO(groups)}, nil
}

func groupsToDTO(groups []storage.Group) []dto.Group {
	out := make([]dto.Group, len(groups))
	for i, g := range groups {
		out[i] = dto.Group{Slug: g.Slug, Title: g.Title, Hidden: g.Hidden}
	}
	return out
}
