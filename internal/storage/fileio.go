// On-disk layout, per-group locking and atomic file writes.

package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

const (
	registryFile = "groups.json"
	mappingFile  = "map.json"
	groupsDir    = "groups"
	contentExt   = ".dat"
)

// layout maps groups to paths under the data directory.
//
//	<root>/groups.json               group registry
//	<root>/map.json, <root>/<id>.dat default group
//	<root>/groups/<slug>/map.json    every other group
//	<root>/groups/<slug>/<id>.dat
//
// The default group shares the root directory with the registry because that
// is where installations predating groups kept their data.
type layout struct {
	root  string
	locks groupLocks
}

func (l *layout) registryPath() string {
	return filepath.Join(l.root, registryFile)
}

// groupDir returns the namespace directory of a group.
func (l *layout) groupDir(group string) (string, error) {
	if group == "" || Slugify(group) != group {
		return "", fmt.Errorf("%w: %q", ErrInvalidGroup, group)
	}
	if group == DefaultGroup {
		return l.root, nil
	}
	return filepath.Join(l.root, groupsDir, group), nil
}

func (l *layout) mappingPath(group string) (string, error) {
	dir, err := l.groupDir(group)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, mappingFile), nil
}

func (l *layout) contentPath(group, id string) (string, error) {
	if !isValidID(id) {
		return "", fmt.Errorf("%w: %q", errInvalidID, id)
	}
	dir, err := l.groupDir(group)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, id+contentExt), nil
}

// groupLocks serializes read-modify-write cycles on one group's files.
//
// It only protects against writers in the same process. Two processes sharing
// a data directory still race, and the last write wins.
type groupLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// lock acquires the locks of all given groups in a stable order and returns
// the function releasing them.
func (g *groupLocks) lock(groups ...string) func() {
	groups = slices.Clone(groups)
	slices.Sort(groups)
	groups = slices.Compact(groups)
	held := make([]*sync.Mutex, 0, len(groups))
	for _, name := range groups {
		g.mu.Lock()
		if g.locks == nil {
			g.locks = make(map[string]*sync.Mutex)
		}
		m, ok := g.locks[name]
		if !ok {
			m = &sync.Mutex{}
			g.locks[name] = m
		}
		g.mu.Unlock()
		m.Lock()
		held = append(held, m)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}

// writeFileAtomic writes data to a temporary file next to path and renames it
// over path, so readers see either the old or the new content.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := f.Name()
	if _, err := f.Write(data); err != nil {
		return errors.Join(fmt.Errorf("failed to write temp file: %w", err), f.Close(), os.Remove(tmpPath))
	}
	if err := f.Chmod(perm); err != nil {
		return errors.Join(fmt.Errorf("failed to chmod temp file: %w", err), f.Close(), os.Remove(tmpPath))
	}
	if err := f.Close(); err != nil {
		return errors.Join(fmt.Errorf("failed to close temp file: %w", err), os.Remove(tmpPath))
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return errors.Join(fmt.Errorf("failed to rename temp file: %w", err), os.Remove(tmpPath))
	}
	return nil
}

// WriteJSONFile atomically writes v as indented JSON to path.
func WriteJSONFile(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	return writeFileAtomic(path, buf.Bytes(), 0o644) //nolint:gosec // G306: data files are not secret.
}

// readJSONFile decodes path into v.
//
// A missing file leaves v untouched. A file that does not decode is logged and
// also leaves v untouched: malformed records are treated as empty and get
// rewritten by the next mutation. Only I/O failures are returned.
func readJSONFile[T any](path string, v *T) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is built from the data directory and a validated slug.
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		slog.Warn("Ignoring malformed data file", "path", path, "err", err)
		return nil
	}
	*v = out
	return nil
}
