// Package storage maps (group, name) pairs to durable wishlist content.
//
// A Store is rooted at a data directory and composes three parts:
//   - GroupRegistry: the ordered list of groups, with the default group always present.
//   - NameDirectory: per group, the roster of names and the id assigned to each name.
//   - ContentStore: per group, the opaque content addressed by id.
//
// Successful changes are also appended to an ActivityLog.
//
// Every file is replaced atomically (temp file + rename) and read-modify-write
// cycles on one group are serialized inside the process. Separate processes
// writing the same data directory race and the last write wins.
package storage

import (
	"fmt"
	"os"
	"strings"
)

// Store is the storage façade used by request handlers.
//
// Group-scoped methods expect a normalized slug of an existing group; callers
// check GroupExists first. Store does not re-validate group membership.
type Store struct {
	Groups   *GroupRegistry
	Names    *NameDirectory
	Content  *ContentStore
	Activity *ActivityLog

	root string
}

// New opens the store rooted at dataDir, creating the directory and seeding
// the registry and default roster when they are missing.
func New(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil { //nolint:gosec // G301: 0o755 is intentional for data directories
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	activity, err := newActivityLog(dataDir)
	if err != nil {
		return nil, err
	}
	l := &layout{root: dataDir}
	s := &Store{
		Groups:   &GroupRegistry{l: l},
		Names:    &NameDirectory{l: l},
		Content:  &ContentStore{l: l},
		Activity: activity,
		root:     dataDir,
	}
	if _, err := os.Stat(l.registryPath()); os.IsNotExist(err) {
		if err := s.Groups.write([]Group{newDefaultGroup()}); err != nil {
			return nil, err
		}
	}
	path, err := l.mappingPath(DefaultGroup)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.Names.write(DefaultGroup, &mapping{Names: []string{}, IDs: idMap{}}); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Root returns the data directory.
func (s *Store) Root() string {
	return s.root
}

// ListGroups returns all groups, hidden ones included.
func (s *Store) ListGroups() ([]Group, error) {
	return s.Groups.List()
}

// ListPublicGroups returns the groups visitors can see.
func (s *Store) ListPublicGroups() ([]Group, error) {
	return s.Groups.ListPublic()
}

// GroupExists reports whether slug names a registered group.
func (s *Store) GroupExists(slug string) (bool, error) {
	return s.Groups.Exists(slug)
}

// ReplaceGroups replaces the group list. See GroupRegistry.Replace.
func (s *Store) ReplaceGroups(updates []GroupUpdate) ([]Group, error) {
	groups, err := s.Groups.Replace(updates)
	if err != nil {
		return nil, err
	}
	s.Activity.record(Activity{Action: ActionGroupsReplaced, Count: len(groups)})
	return groups, nil
}

// GetGroupNames returns the roster of group.
func (s *Store) GetGroupNames(group string) ([]string, error) {
	return s.Names.List(group)
}

// SetGroupNames replaces the roster of group and returns it normalized.
func (s *Store) SetGroupNames(group string, names []string) ([]string, error) {
	out, err := s.Names.Replace(group, names)
	if err != nil {
		return nil, err
	}
	s.Activity.record(Activity{Action: ActionNamesSet, Group: group, Count: len(out)})
	return out, nil
}

// GetGroupContent returns the content of name in group. A name without an id
// or without saved content yields an empty string.
func (s *Store) GetGroupContent(group, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil
	}
	id, ok, err := s.Names.ID(group, name)
	if err != nil || !ok {
		return "", err
	}
	return s.Content.Read(group, id)
}

// SaveGroupContent stores content for name in group, assigning an id and
// listing the name first if needed.
func (s *Store) SaveGroupContent(group, name, content string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameRequired
	}
	id, err := s.Names.EnsureID(group, name)
	if err != nil {
		return err
	}
	if err := s.Content.Write(group, id, content); err != nil {
		return err
	}
	s.Activity.record(Activity{Action: ActionContentSaved, Group: group, Name: name})
	return nil
}

// GetNames returns the roster of the default group.
func (s *Store) GetNames() ([]string, error) {
	return s.GetGroupNames(DefaultGroup)
}

// SetNames replaces the roster of the default group.
func (s *Store) SetNames(names []string) ([]string, error) {
	return s.SetGroupNames(DefaultGroup, names)
}

// GetContent returns the content of name in the default group.
func (s *Store) GetContent(name string) (string, error) {
	return s.GetGroupContent(DefaultGroup, name)
}

// SaveContent stores content for name in the default group.
func (s *Store) SaveContent(name, content string) error {
	return s.SaveGroupContent(DefaultGroup, name, content)
}
