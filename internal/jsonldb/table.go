// Package jsonldb stores append-mostly rows as JSON lines.
package jsonldb

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Table is a JSONL file with its rows cached in memory.
//
// When MaxRows is positive, appending beyond it rewrites the file keeping the
// most recent MaxRows rows.
type Table[T any] struct {
	path    string
	maxRows int

	mu   sync.RWMutex
	rows []T
}

// NewTable opens the table at path and loads its rows. A missing file is an
// empty table. A line that does not decode is skipped with a warning, so a
// torn final line left by a crash does not make the table unreadable.
func NewTable[T any](path string, maxRows int) (*Table[T], error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:gosec // G301: 0o755 is intentional for data directories
		return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	t := &Table[T]{path: path, maxRows: maxRows}
	if err := t.load(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Table[T]) load() error {
	f, err := os.Open(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open table file %s: %w", t.path, err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for n := 1; scanner.Scan(); n++ {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var row T
		if err := json.Unmarshal(line, &row); err != nil {
			slog.Warn("Skipping malformed row", "path", t.path, "line", n, "err", err)
			continue
		}
		t.rows = append(t.rows, row)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read table file %s: %w", t.path, err)
	}
	return nil
}

// Last returns up to n of the most recent rows, newest first.
func (t *Table[T]) Last(n int) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n = min(max(n, 0), len(t.rows))
	out := make([]T, n)
	for i := range n {
		out[i] = t.rows[len(t.rows)-1-i]
	}
	return out
}

// Append adds a row and persists it.
func (t *Table[T]) Append(row T) error {
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("failed to marshal row: %w", err)
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.maxRows > 0 && len(t.rows) >= t.maxRows {
		rows := append(t.rows[len(t.rows)-t.maxRows+1:len(t.rows):len(t.rows)], row)
		if err := t.rewrite(rows); err != nil {
			return err
		}
		t.rows = append([]T(nil), rows...)
		return nil
	}

	f, err := os.OpenFile(t.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // G302: rows are not secret
	if err != nil {
		return fmt.Errorf("failed to open table file for append: %w", err)
	}
	data = append(data, '\n')
	_, err = f.Write(data)
	if err2 := f.Close(); err == nil {
		err = err2
	}
	if err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}
	t.rows = append(t.rows, row)
	return nil
}

// rewrite atomically replaces the file content with rows.
func (t *Table[T]) rewrite(rows []T) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return fmt.Errorf("failed to marshal row: %w", err)
		}
	}
	tmp, err := os.CreateTemp(filepath.Dir(t.path), "."+filepath.Base(t.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	_, err = tmp.Write(buf.Bytes())
	if err2 := tmp.Close(); err == nil {
		err = err2
	}
	if err == nil {
		err = os.Rename(tmp.Name(), t.path)
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to rewrite table file %s: %w", t.path, err)
	}
	return nil
}
