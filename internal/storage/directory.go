// Manages the per-group name list and name to id mapping stored in map.json.

package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// idMap maps a name to its content id.
type idMap map[string]string

// UnmarshalJSON accepts a JSON array in place of an object. PHP encodes a map
// whose keys are exactly 0..n-1 as a list, so an empty mapping is [] and a
// mapping holding only the name "0" is ["<id>"].
func (m *idMap) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*m = idMap{}
		return nil
	}
	if len(b) > 0 && b[0] == '[' {
		var list []string
		if err := json.Unmarshal(b, &list); err != nil {
			return err
		}
		out := make(idMap, len(list))
		for i, id := range list {
			out[strconv.Itoa(i)] = id
		}
		*m = out
		return nil
	}
	raw := map[string]string{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*m = raw
	return nil
}

// mapping is the content of a group's map.json.
type mapping struct {
	Names []string `json:"names"`
	IDs   idMap    `json:"map"`
}

// NameDirectory holds the ordered roster of each group and the id assigned to
// every listed name.
type NameDirectory struct {
	l *layout
}

// List returns the persisted names of group in order.
func (d *NameDirectory) List(group string) ([]string, error) {
	m, err := d.read(group)
	if err != nil {
		return nil, err
	}
	return m.Names, nil
}

// Replace makes names the authoritative roster of group and returns it.
//
// Entries are trimmed, empty ones dropped and duplicates removed keeping the
// first occurrence. Names that already had an id keep it; new names get one
// from DeriveID. Names no longer listed lose their mapping entry but their
// content file is left on disk, so re-adding the name restores its content.
func (d *NameDirectory) Replace(group string, names []string) ([]string, error) {
	unlock := d.l.locks.lock(group)
	defer unlock()
	m, err := d.read(group)
	if err != nil {
		return nil, err
	}
	clean := normalizeNames(names)
	ids := make(idMap, len(clean))
	for _, name := range clean {
		if id, ok := m.IDs[name]; ok {
			ids[name] = id
		} else {
			ids[name] = DeriveID(group, name)
		}
	}
	m.Names = clean
	m.IDs = ids
	if err := d.write(group, m); err != nil {
		return nil, err
	}
	return clean, nil
}

// ID returns the id of name in group.
func (d *NameDirectory) ID(group, name string) (string, bool, error) {
	m, err := d.read(group)
	if err != nil {
		return "", false, err
	}
	id, ok := m.IDs[name]
	return id, ok, nil
}

// EnsureID returns the id of name in group, assigning one when needed.
//
// A newly assigned name is appended to the roster if it is not already listed,
// so content saved for an unlisted name stays reachable.
func (d *NameDirectory) EnsureID(group, name string) (string, error) {
	if name == "" {
		return "", ErrNameRequired
	}
	unlock := d.l.locks.lock(group)
	defer unlock()
	m, err := d.read(group)
	if err != nil {
		return "", err
	}
	if id, ok := m.IDs[name]; ok {
		return id, nil
	}
	id := DeriveID(group, name)
	m.IDs[name] = id
	if !slices.Contains(m.Names, name) {
		m.Names = append(m.Names, name)
	}
	if err := d.write(group, m); err != nil {
		return "", err
	}
	return id, nil
}

// read loads the mapping of group. Entries whose id cannot be used as a file
// name are dropped.
func (d *NameDirectory) read(group string) (*mapping, error) {
	path, err := d.l.mappingPath(group)
	if err != nil {
		return nil, err
	}
	m := &mapping{}
	if err := readJSONFile(path, m); err != nil {
		return nil, err
	}
	if m.Names == nil {
		m.Names = []string{}
	}
	if m.IDs == nil {
		m.IDs = idMap{}
	}
	for name, id := range m.IDs {
		if !isValidID(id) {
			slog.Warn("Dropping invalid content id", "group", group, "name", name, "id", id)
			delete(m.IDs, name)
		}
	}
	return m, nil
}

func (d *NameDirectory) write(group string, m *mapping) error {
	path, err := d.l.mappingPath(group)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:gosec // G301: 0o755 is intentional for data directories
		return fmt.Errorf("failed to create group directory %q: %w", group, err)
	}
	if err := WriteJSONFile(path, m); err != nil {
		return fmt.Errorf("failed to write names of group %q: %w", group, err)
	}
	return nil
}

// normalizeNames trims names, drops empty ones and removes duplicates while
// keeping the order of first occurrence.
func normalizeNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
