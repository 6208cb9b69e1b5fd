package storage

import (
	"errors"
	"testing"
)

func TestActivityLog(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.ReplaceGroups([]GroupUpdate{{Slug: "xmas"}}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SetGroupNames("xmas", []string{"Alice", "Bob"}); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveGroupContent("xmas", " Alice ", "socks"); err != nil {
		t.Fatal(err)
	}
	// Failed changes are not recorded.
	if err := s.SaveGroupContent("xmas", "", "x"); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("SaveGroupContent() error = %v", err)
	}

	got := s.Activity.Recent(10)
	want := []Activity{
		{Action: ActionContentSaved, Group: "xmas", Name: "Alice"},
		{Action: ActionNamesSet, Group: "xmas", Count: 2},
		{Action: ActionGroupsReplaced, Count: 2},
	}
	if len(got) != len(want) {
		t.Fatalf("Recent() = %+v, want %d entries", got, len(want))
	}
	for i, w := range want {
		g := got[i]
		if g.Action != w.Action || g.Group != w.Group || g.Name != w.Name || g.Count != w.Count {
			t.Errorf("Recent()[%d] = %+v, want %+v", i, g, w)
		}
		if g.ID.IsZero() || g.Time.IsZero() {
			t.Errorf("Recent()[%d] missing id or time: %+v", i, g)
		}
	}
	if got[0].ID == got[1].ID {
		t.Errorf("duplicate id %v", got[0].ID)
	}

	// The log survives a reopen.
	s2, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(s2.Activity.Recent(10)); n != 3 {
		t.Errorf("Recent() after reopen has %d entries, want 3", n)
	}
}
