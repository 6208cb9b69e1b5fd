package handlers

import (
	"context"

	"github.com/maruel/wishlist/internal/server/dto"
)

// ActivityHandler exposes the activity log to administrators.
type ActivityHandler struct {
	svc *Services
}

// NewActivityHandler creates a new activity handler.
func NewActivityHandler(svc *Services) *ActivityHandler {
	return &ActivityHandler{svc: svc}
}

// ListActivity returns the most recent changes, newest first.
func (h *ActivityHandler) ListActivity(ctx context.Context, req *dto.ListActivityRequest) (*dto.ListActivityResponse, error) {
	entries := h.svc.Store.Activity.Recent(req.Limit)
	out := make([]dto.ActivityEntry, len(entries))
	for i, e := range entries {
		out[i] = dto.ActivityEntry{
			ID:     e.ID.String(),
			Time:   e.Time,
			Action: string(e.Action),
			Group:  e.Group,
			Name:   e.Name,
			Count:  e.Count,
		}
	}
	return &dto.ListActivityResponse{Entries: out}, nil
}
