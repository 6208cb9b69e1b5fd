package handlers

import (
	"context"
	"testing"

	"github.com/maruel/wishlist/internal/server/dto"
)

func TestActivityHandler_ListActivity(t *testing.T) {
	ctx := context.Background()
	svc := newTestServices(t)
	for _, name := range []string{"Alice", "Bob", "Carol"} {
		if err := svc.Store.SaveContent(name, "x"); err != nil {
			t.Fatal(err)
		}
	}
	h := NewActivityHandler(svc)

	req := &dto.ListActivityRequest{Limit: 2}
	if err := req.Validate(); err != nil {
		t.Fatal(err)
	}
	resp, err := h.ListActivity(ctx, req)
	if err != nil {
		t.Fatalf("ListActivity() error = %v", err)
	}
	if len(resp.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(resp.Entries))
	}
	if e := resp.Entries[0]; e.Name != "Carol" || e.Action != "content_saved" || e.Group != "default" || e.ID == "" {
		t.Errorf("Entries[0] = %+v", e)
	}

	req = &dto.ListActivityRequest{}
	if err := req.Validate(); err != nil {
		t.Fatal(err)
	}
	if req.Limit != 50 {
		t.Errorf("default Limit = %d, want 50", req.Limit)
	}
	if err := (&dto.ListActivityRequest{Limit: -1}).Validate(); err == nil {
		t.Error("negative limit accepted")
	}
}
