package handlers

import (
	"context"

	"github.com/maruel/wishlist/internal/server/dto"
)

// ContentHandler handles wishlist content requests.
type ContentHandler struct {
	svc *Services
}

// NewContentHandler creates a new content handler.
func NewContentHandler(svc *Services) *ContentHandler {
	return &ContentHandler{svc: svc}
}

// GetGroupContent returns the content saved for a name. Unknown names yield
// an empty content.
func (h *ContentHandler) GetGroupContent(ctx context.Context, req *dto.GetGroupContentRequest) (*dto.GroupContentResponse, error) {
	group, err := resolveGroup(h.svc.Store, req.Group)
	if err != nil {
		return nil, err
	}
	content, err := h.svc.Store.GetGroupContent(group, req.Name)
	if err != nil {
		return nil, storageError(err)
	}
	return &dto.GroupContentResponse{Group: group, Name: req.Name, Content: content}, nil
}

// SaveGroupContent replaces the content of a name, adding the name to the
// group if needed.
func (h *ContentHandler) SaveGroupContent(ctx context.Context, req *dto.SaveGroupContentRequest) (*dto.StatusResponse, error) {
	group, err := resolveGroup(h.svc.Store, req.Group)
	if err != nil {
		return nil, err
	}
	if err := h.svc.Store.SaveGroupContent(group, req.Name, req.Content); err != nil {
		return nil, storageError(err)
	}
	return &dto.StatusResponse{Status: dto.StatusOK}, nil
}

// GetContent returns the content of a name in the default group.
func (h *ContentHandler) GetContent(ctx context.Context, req *dto.GetContentRequest) (*dto.ContentResponse, error) {
	content, err := h.svc.Store.GetContent(req.Name)
	if err != nil {
		return nil, storageError(err)
	}
	return &dto.ContentResponse{Name: req.Name, Content: content}, nil
}

// SaveContent replaces the content of a name in the default group.
func (h *ContentHandler) SaveContent(ctx context.Context, req *dto.SaveContentRequest) (*dto.StatusResponse, error) {
	if err := h.svc.Store.SaveContent(req.Name, req.Content); err != nil {
		return nil, storageError(err)
	}
	return &dto.StatusResponse{Status: dto.StatusOK}, nil
}
