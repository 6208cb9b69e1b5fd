package storage

import (
	"fmt"
	"os"
)

// ContentStore keeps the opaque content of each (group, id) pair in
// <group dir>/<id>.dat.
type ContentStore struct {
	l *layout
}

// Read returns the stored content, or an empty string when nothing was saved.
func (c *ContentStore) Read(group, id string) (string, error) {
	path, err := c.l.contentPath(group, id)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is built from a validated slug and id.
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read content %s/%s: %w", group, id, err)
	}
	return string(data), nil
}

// Write replaces the stored content, creating the group namespace if needed.
func (c *ContentStore) Write(group, id, content string) error {
	path, err := c.l.contentPath(group, id)
	if err != nil {
		return err
	}
	dir, err := c.l.groupDir(group)
	if err != nil {
		return err
	}
	unlock := c.l.locks.lock(group)
	defer unlock()
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec // G301: 0o755 is intentional for data directories
		return fmt.Errorf("failed to create group directory %q: %w", group, err)
	}
	if err := writeFileAtomic(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write content %s/%s: %w", group, id, err)
	}
	return nil
}
