package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"sync"
	"testing"
)

func TestNameDirectory_Replace(t *testing.T) {
	t.Run("trims, drops empty and deduplicates", func(t *testing.T) {
		s := newTestStore(t)
		got, err := s.SetGroupNames(DefaultGroup, []string{" Alice ", "Bob", "", "  ", "Alice"})
		if err != nil {
			t.Fatalf("SetGroupNames() error = %v", err)
		}
		want := []string{"Alice", "Bob"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("SetGroupNames() = %v, want %v", got, want)
		}
		listed, err := s.GetGroupNames(DefaultGroup)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(listed, want) {
			t.Errorf("GetGroupNames() = %v, want %v", listed, want)
		}
	})

	t.Run("ids are stable across reordering", func(t *testing.T) {
		s := newTestStore(t)
		if _, err := s.SetGroupNames(DefaultGroup, []string{"Alice", "Bob"}); err != nil {
			t.Fatal(err)
		}
		before := mustID(t, s, DefaultGroup, "Alice")
		if _, err := s.SetGroupNames(DefaultGroup, []string{"Carol", "Bob", "Alice"}); err != nil {
			t.Fatal(err)
		}
		if after := mustID(t, s, DefaultGroup, "Alice"); after != before {
			t.Errorf("id of Alice changed from %q to %q", before, after)
		}
	})

	t.Run("persisted ids win over derivation", func(t *testing.T) {
		s := newTestStore(t)
		path := filepath.Join(s.Root(), mappingFile)
		data := `{"names":["Alice"],"map":{"Alice":"legacy-id"}}`
		if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := s.SetGroupNames(DefaultGroup, []string{"Bob", "Alice"}); err != nil {
			t.Fatal(err)
		}
		if id := mustID(t, s, DefaultGroup, "Alice"); id != "legacy-id" {
			t.Errorf("id of Alice = %q, want %q", id, "legacy-id")
		}
		if id := mustID(t, s, DefaultGroup, "Bob"); id != DeriveID(DefaultGroup, "Bob") {
			t.Errorf("id of Bob = %q, want derived id", id)
		}
	})

	t.Run("removed names lose their id but keep their content", func(t *testing.T) {
		s := newTestStore(t)
		if err := s.SaveGroupContent(DefaultGroup, "Alice", "books"); err != nil {
			t.Fatal(err)
		}
		id := mustID(t, s, DefaultGroup, "Alice")
		if _, err := s.SetGroupNames(DefaultGroup, []string{"Bob"}); err != nil {
			t.Fatal(err)
		}
		if _, ok, _ := s.Names.ID(DefaultGroup, "Alice"); ok {
			t.Error("Alice still has an id after removal")
		}
		if _, err := os.Stat(filepath.Join(s.Root(), id+contentExt)); err != nil {
			t.Errorf("content file was removed: %v", err)
		}
		if _, err := s.SetGroupNames(DefaultGroup, []string{"Bob", "Alice"}); err != nil {
			t.Fatal(err)
		}
		content, err := s.GetContent("Alice")
		if err != nil {
			t.Fatal(err)
		}
		if content != "books" {
			t.Errorf("GetContent(Alice) after re-adding = %q, want %q", content, "books")
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		s := newTestStore(t)
		if _, err := s.SetGroupNames(DefaultGroup, []string{"Alice", "Bob"}); err != nil {
			t.Fatal(err)
		}
		if err := s.SaveContent("Bob", "socks"); err != nil {
			t.Fatal(err)
		}
		path := filepath.Join(s.Root(), mappingFile)
		before, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		names, err := s.GetNames()
		if err != nil {
			t.Fatal(err)
		}
		if _, err := s.SetNames(names); err != nil {
			t.Fatal(err)
		}
		after, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(before) != string(after) {
			t.Errorf("mapping changed:\nbefore: %s\nafter:  %s", before, after)
		}
		if content, _ := s.GetContent("Bob"); content != "socks" {
			t.Errorf("GetContent(Bob) = %q, want %q", content, "socks")
		}
	})
}

func TestNameDirectory_EnsureID(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.ReplaceGroups([]GroupUpdate{{Slug: "xmas"}}); err != nil {
		t.Fatal(err)
	}
	id, err := s.Names.EnsureID("xmas", "Dana")
	if err != nil {
		t.Fatalf("EnsureID() error = %v", err)
	}
	if id != DeriveID("xmas", "Dana") {
		t.Errorf("EnsureID() = %q, want derived id", id)
	}
	again, err := s.Names.EnsureID("xmas", "Dana")
	if err != nil {
		t.Fatal(err)
	}
	if again != id {
		t.Errorf("EnsureID() second call = %q, want %q", again, id)
	}
	names, err := s.GetGroupNames("xmas")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(names, []string{"Dana"}) {
		t.Errorf("GetGroupNames() = %v, want [Dana]", names)
	}
	if _, err := s.Names.EnsureID("xmas", ""); !errors.Is(err, ErrNameRequired) {
		t.Errorf("EnsureID(empty) error = %v, want ErrNameRequired", err)
	}
}

func TestNameDirectory_LegacyFiles(t *testing.T) {
	t.Run("empty mapping encoded as array", func(t *testing.T) {
		s := newTestStore(t)
		path := filepath.Join(s.Root(), mappingFile)
		if err := os.WriteFile(path, []byte(`{"names":["Alice"],"map":[]}`), 0o600); err != nil {
			t.Fatal(err)
		}
		names, err := s.GetNames()
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(names, []string{"Alice"}) {
			t.Errorf("GetNames() = %v, want [Alice]", names)
		}
		if _, ok, err := s.Names.ID(DefaultGroup, "Alice"); err != nil || ok {
			t.Errorf("ID(Alice) = %v, %v; want absent", ok, err)
		}
		if _, err := s.SetNames(names); err != nil {
			t.Fatal(err)
		}
		if id := mustID(t, s, DefaultGroup, "Alice"); id != DeriveID(DefaultGroup, "Alice") {
			t.Errorf("id of Alice = %q, want derived id", id)
		}
	})

	t.Run("mapping encoded as list", func(t *testing.T) {
		s := newTestStore(t)
		const id = "0123456789abcdef0123456789abcdef"
		path := filepath.Join(s.Root(), mappingFile)
		if err := os.WriteFile(path, []byte(`{"names":["Bob","0"],"map":["`+id+`"]}`), 0o600); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(s.Root(), id+contentExt), []byte("a kite"), 0o600); err != nil {
			t.Fatal(err)
		}
		names, err := s.GetNames()
		if err != nil {
			t.Fatalf("GetNames() error = %v", err)
		}
		if !reflect.DeepEqual(names, []string{"Bob", "0"}) {
			t.Errorf("GetNames() = %v, want [Bob 0]", names)
		}
		if got := mustID(t, s, DefaultGroup, "0"); got != id {
			t.Errorf("id of 0 = %q, want %q", got, id)
		}
		if _, ok, err := s.Names.ID(DefaultGroup, "Bob"); err != nil || ok {
			t.Errorf("ID(Bob) = %v, %v; want absent", ok, err)
		}
		if _, err := s.SetNames(names); err != nil {
			t.Fatal(err)
		}
		if got := mustID(t, s, DefaultGroup, "0"); got != id {
			t.Errorf("id of 0 after SetNames = %q, want %q", got, id)
		}
		content, err := s.GetContent("0")
		if err != nil {
			t.Fatal(err)
		}
		if content != "a kite" {
			t.Errorf("GetContent(0) = %q, want %q", content, "a kite")
		}
	})

	t.Run("malformed mapping is empty", func(t *testing.T) {
		s := newTestStore(t)
		path := filepath.Join(s.Root(), mappingFile)
		if err := os.WriteFile(path, []byte(`garbage`), 0o600); err != nil {
			t.Fatal(err)
		}
		names, err := s.GetNames()
		if err != nil {
			t.Fatalf("GetNames() error = %v", err)
		}
		if len(names) != 0 {
			t.Errorf("GetNames() = %v, want empty", names)
		}
	})

	t.Run("unsafe ids are ignored", func(t *testing.T) {
		s := newTestStore(t)
		path := filepath.Join(s.Root(), mappingFile)
		if err := os.WriteFile(path, []byte(`{"names":["Eve"],"map":{"Eve":"../../etc/passwd"}}`), 0o600); err != nil {
			t.Fatal(err)
		}
		content, err := s.GetContent("Eve")
		if err != nil {
			t.Fatalf("GetContent() error = %v", err)
		}
		if content != "" {
			t.Errorf("GetContent() = %q, want empty", content)
		}
	})
}

func TestNameDirectory_ConcurrentSaves(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.ReplaceGroups([]GroupUpdate{{Slug: "party"}}); err != nil {
		t.Fatal(err)
	}
	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.SaveGroupContent("party", fmt.Sprintf("guest-%02d", i), fmt.Sprintf("gift %d", i))
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("SaveGroupContent() error = %v", err)
		}
	}
	names, err := s.GetGroupNames("party")
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != n {
		t.Fatalf("got %d names, want %d: %v", len(names), n, names)
	}
	for i := range n {
		name := fmt.Sprintf("guest-%02d", i)
		if !slices.Contains(names, name) {
			t.Errorf("missing %s", name)
		}
		content, err := s.GetGroupContent("party", name)
		if err != nil {
			t.Fatal(err)
		}
		if want := fmt.Sprintf("gift %d", i); content != want {
			t.Errorf("GetGroupContent(%s) = %q, want %q", name, content, want)
		}
	}
}

func mustID(t *testing.T, s *Store, group, name string) string {
	t.Helper()
	id, ok, err := s.Names.ID(group, name)
	if err != nil {
		t.Fatalf("ID(%s, %s) error = %v", group, name, err)
	}
	if !ok {
		t.Fatalf("ID(%s, %s) not found", group, name)
	}
	return id
}
