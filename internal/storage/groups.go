// Manages the group registry stored in groups.json.

package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Group is a partition of the roster with its own names and content.
type Group struct {
	Slug   string `json:"slug"`
	Title  string `json:"title"`
	Hidden bool   `json:"hidden"`
}

// GroupUpdate is one entry of the desired group list passed to
// GroupRegistry.Replace.
//
// OldSlug, when set and different from Slug after normalization, renames the
// group and moves its namespace on disk.
type GroupUpdate struct {
	Slug    string
	Title   string
	Hidden  bool
	OldSlug string
}

// GroupRegistry is the durable, ordered list of groups.
type GroupRegistry struct {
	l  *layout
	mu sync.Mutex
}

func newDefaultGroup() Group {
	return Group{Slug: DefaultGroup, Title: defaultTitle}
}

// List returns the groups in registry order.
//
// A missing or malformed registry yields the default group. When the default
// group is absent from the persisted list it is appended and the corrected list
// is written back.
func (r *GroupRegistry) List() ([]Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var raw []Group
	if err := readJSONFile(r.l.registryPath(), &raw); err != nil {
		return nil, err
	}
	out := make([]Group, 0, len(raw)+1)
	seen := make(map[string]bool, len(raw))
	for _, g := range raw {
		slug := Slugify(g.Slug)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true
		out = append(out, Group{Slug: slug, Title: titleOrSlug(g.Title, slug), Hidden: g.Hidden})
	}
	if !seen[DefaultGroup] {
		out = append(out, newDefaultGroup())
		if err := r.write(out); err != nil {
			return nil, err
		}
		slog.Info("Restored default group in registry", "groups", len(out))
	}
	return out, nil
}

// ListPublic returns the groups that are not hidden.
func (r *GroupRegistry) ListPublic() ([]Group, error) {
	groups, err := r.List()
	if err != nil {
		return nil, err
	}
	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		if !g.Hidden {
			out = append(out, g)
		}
	}
	return out, nil
}

// Exists reports whether slug, once normalized, names a registered group.
func (r *GroupRegistry) Exists(slug string) (bool, error) {
	slug = Slugify(slug)
	if slug == "" {
		return false, nil
	}
	groups, err := r.List()
	if err != nil {
		return false, err
	}
	for _, g := range groups {
		if g.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

// groupRename is a namespace move planned by Replace.
type groupRename struct {
	from, to string
}

// Replace makes updates the new group list and returns it as persisted.
//
// Slugs are normalized; entries with an empty slug or a slug already seen are
// dropped. An entry renaming the default group is forced back to "default".
// Renamed groups have their namespace moved before the registry is written: a
// crash in between leaves an orphaned directory, never a registry entry
// without data. All renames are checked before any of them runs so a conflict
// leaves the data directory untouched. Renames that depend on each other, such
// as moving a to b and b to c in the same call, are rejected with
// ErrSlugConflict.
func (r *GroupRegistry) Replace(updates []GroupUpdate) ([]Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Group, 0, len(updates)+1)
	seen := make(map[string]bool, len(updates))
	var renames []groupRename
	for _, u := range updates {
		slug := Slugify(u.Slug)
		if slug == "" || seen[slug] {
			continue
		}
		oldSlug := Slugify(u.OldSlug)
		if oldSlug != "" && oldSlug != slug {
			switch {
			case oldSlug == DefaultGroup:
				slog.Warn("Refusing to rename default group", "to", slug)
				slug = DefaultGroup
			case slug == DefaultGroup:
				return nil, fmt.Errorf("%w: cannot rename %q to %q", ErrSlugConflict, oldSlug, slug)
			default:
				renames = append(renames, groupRename{from: oldSlug, to: slug})
			}
		}
		if seen[slug] {
			continue
		}
		seen[slug] = true
		out = append(out, Group{Slug: slug, Title: titleOrSlug(u.Title, slug), Hidden: u.Hidden})
	}
	if !seen[DefaultGroup] {
		out = append(out, newDefaultGroup())
	}

	if err := checkRenameChain(renames); err != nil {
		return nil, err
	}
	for _, mv := range renames {
		if err := r.checkRename(mv); err != nil {
			return nil, err
		}
	}
	for _, mv := range renames {
		if err := r.migrate(mv); err != nil {
			return nil, err
		}
	}
	for _, g := range out {
		if err := r.ensureDir(g.Slug); err != nil {
			return nil, err
		}
	}
	if err := r.write(out); err != nil {
		return nil, err
	}
	return out, nil
}

// checkRenameChain fails when a rename moves a namespace that another rename
// of the same call reads or writes. Each rename is checked against the
// directories as they are before any move, so the moves must be independent.
func checkRenameChain(renames []groupRename) error {
	sources := make(map[string]bool, len(renames))
	for _, mv := range renames {
		if sources[mv.from] {
			return fmt.Errorf("%w: %q is renamed twice", ErrSlugConflict, mv.from)
		}
		sources[mv.from] = true
	}
	for _, mv := range renames {
		if sources[mv.to] {
			return fmt.Errorf("%w: cannot rename %q to %q while %q is renamed", ErrSlugConflict, mv.from, mv.to, mv.to)
		}
	}
	return nil
}

// checkRename fails when the destination namespace already holds data.
func (r *GroupRegistry) checkRename(mv groupRename) error {
	dst, err := r.l.groupDir(mv.to)
	if err != nil {
		return err
	}
	entries, err := os.ReadDir(dst)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to inspect group directory %q: %w", mv.to, err)
	}
	if len(entries) > 0 {
		return fmt.Errorf("%w: cannot rename %q to %q", ErrSlugConflict, mv.from, mv.to)
	}
	return nil
}

// migrate moves a group's namespace. A missing source is a no-op: the new
// namespace is simply created empty later.
func (r *GroupRegistry) migrate(mv groupRename) error {
	unlock := r.l.locks.lock(mv.from, mv.to)
	defer unlock()
	src, err := r.l.groupDir(mv.from)
	if err != nil {
		return err
	}
	dst, err := r.l.groupDir(mv.to)
	if err != nil {
		return err
	}
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat group directory %q: %w", mv.from, err)
	}
	// An empty destination left over from an earlier save is replaced.
	if err := os.Remove(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear group directory %q: %w", mv.to, err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil { //nolint:gosec // G301: 0o755 is intentional for data directories
		return fmt.Errorf("failed to create groups directory: %w", err)
	}
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("failed to move group %q to %q: %w", mv.from, mv.to, err)
	}
	slog.Info("Migrated group namespace", "from", mv.from, "to", mv.to)
	return nil
}

func (r *GroupRegistry) ensureDir(slug string) error {
	dir, err := r.l.groupDir(slug)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec // G301: 0o755 is intentional for data directories
		return fmt.Errorf("failed to create group directory %q: %w", slug, err)
	}
	return nil
}

func (r *GroupRegistry) write(groups []Group) error {
	if err := WriteJSONFile(r.l.registryPath(), groups); err != nil {
		return fmt.Errorf("failed to write group registry: %w", err)
	}
	return nil
}

func titleOrSlug(title, slug string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	return slug
}
