package jsonldb

import (
	"os"
	"path/filepath"
	"testing"
)

type testRow struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ids returns the ids of rows in order.
func ids(rows []testRow) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func equalIDs(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "test.jsonl")

	table, err := NewTable[testRow](path, 0)
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}
	if got := table.Last(10); len(got) != 0 {
		t.Fatalf("Last(10) = %+v on a new table", got)
	}
	for _, r := range []testRow{{ID: 1, Name: "One"}, {ID: 2, Name: "Two"}} {
		if err := table.Append(r); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	reloaded, err := NewTable[testRow](path, 0)
	if err != nil {
		t.Fatalf("NewTable (reload) failed: %v", err)
	}
	got := reloaded.Last(10)
	if len(got) != 2 || got[0].Name != "Two" || got[1].Name != "One" {
		t.Errorf("Last(10) after reload = %+v", got)
	}
}

func TestTable_Last(t *testing.T) {
	table, err := NewTable[testRow](filepath.Join(t.TempDir(), "t.jsonl"), 0)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 3; i++ {
		if err := table.Append(testRow{ID: i}); err != nil {
			t.Fatal(err)
		}
	}
	tests := []struct {
		n    int
		want []int
	}{
		{0, []int{}},
		{2, []int{3, 2}},
		{10, []int{3, 2, 1}},
		{-1, []int{}},
	}
	for _, tt := range tests {
		if got := ids(table.Last(tt.n)); !equalIDs(got, tt.want) {
			t.Errorf("Last(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestTable_MaxRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.jsonl")
	table, err := NewTable[testRow](path, 3)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 5; i++ {
		if err := table.Append(testRow{ID: i}); err != nil {
			t.Fatal(err)
		}
	}
	if got := ids(table.Last(10)); !equalIDs(got, []int{5, 4, 3}) {
		t.Errorf("Last(10) = %v, want [5 4 3]", got)
	}
	reloaded, err := NewTable[testRow](path, 3)
	if err != nil {
		t.Fatal(err)
	}
	if got := ids(reloaded.Last(10)); !equalIDs(got, []int{5, 4, 3}) {
		t.Errorf("Last(10) after reload = %v, want [5 4 3]", got)
	}
}

func TestTable_MalformedLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.jsonl")
	content := "{\"id\":1,\"name\":\"One\"}\n{\"id\":2,\"na\n\n{\"id\":3,\"name\":\"Three\"}\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	table, err := NewTable[testRow](path, 0)
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}
	if got := ids(table.Last(10)); !equalIDs(got, []int{3, 1}) {
		t.Errorf("Last(10) = %v, want [3 1]", got)
	}
}
