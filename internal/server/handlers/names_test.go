package handlers

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"testing"

	"github.com/maruel/wishlist/internal/server/dto"
	"github.com/maruel/wishlist/internal/storage"
)

func TestNameHandler(t *testing.T) {
	ctx := context.Background()
	svc := newTestServices(t)
	if _, err := svc.Store.ReplaceGroups([]storage.GroupUpdate{{Slug: "xmas"}}); err != nil {
		t.Fatal(err)
	}
	h := NewNameHandler(svc)

	t.Run("set and list group names", func(t *testing.T) {
		resp, err := h.SetGroupNames(ctx, &dto.SetGroupNamesRequest{Group: "XMAS", Names: []string{"Alice", " Bob", "Alice"}})
		if err != nil {
			t.Fatalf("SetGroupNames() error = %v", err)
		}
		want := []string{"Alice", "Bob"}
		if resp.Status != "ok" || resp.Group != "xmas" || !reflect.DeepEqual(resp.Names, want) {
			t.Errorf("SetGroupNames() = %+v", resp)
		}
		got, err := h.GroupNames(ctx, &dto.GroupNamesRequest{Group: "xmas"})
		if err != nil {
			t.Fatalf("GroupNames() error = %v", err)
		}
		if got.Group != "xmas" || !reflect.DeepEqual(got.Names, want) {
			t.Errorf("GroupNames() = %+v", got)
		}
	})

	t.Run("unknown group is 404", func(t *testing.T) {
		for _, call := range []func() error{
			func() error { _, err := h.GroupNames(ctx, &dto.GroupNamesRequest{Group: "easter"}); return err },
			func() error {
				_, err := h.SetGroupNames(ctx, &dto.SetGroupNamesRequest{Group: "easter", Names: []string{}})
				return err
			},
			func() error { _, err := h.GroupNames(ctx, &dto.GroupNamesRequest{Group: "!!"}); return err },
		} {
			var apiErr *dto.APIError
			if err := call(); !errors.As(err, &apiErr) || apiErr.StatusCode() != http.StatusNotFound {
				t.Errorf("error = %v, want 404", err)
			}
		}
	})

	t.Run("legacy names use the default group", func(t *testing.T) {
		set, err := h.SetNames(ctx, &dto.SetNamesRequest{Names: []string{"Carol"}})
		if err != nil {
			t.Fatalf("SetNames() error = %v", err)
		}
		if set.Status != "ok" || !reflect.DeepEqual(set.Names, []string{"Carol"}) {
			t.Errorf("SetNames() = %+v", set)
		}
		got, err := h.Names(ctx, &dto.ListNamesRequest{})
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(got.Names, []string{"Carol"}) {
			t.Errorf("Names() = %v", got.Names)
		}
		viaGroup, err := h.GroupNames(ctx, &dto.GroupNamesRequest{Group: "default"})
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(viaGroup.Names, got.Names) {
			t.Errorf("GroupNames(default) = %v, want %v", viaGroup.Names, got.Names)
		}
	})
}
