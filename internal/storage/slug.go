// Normalizes group slugs and derives content identifiers.

package storage

import (
	"crypto/md5" //nolint:gosec // G501: ids must match the values already persisted by existing installations.
	"encoding/hex"
	"regexp"
	"strings"
)

// DefaultGroup is the slug of the legacy group. It always exists and cannot be
// renamed or deleted.
const DefaultGroup = "default"

// defaultTitle is the title given to a synthesized default group.
const defaultTitle = "Default"

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9-]+`)
	validID     = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// Slugify normalizes a group slug.
//
// The value is trimmed and lowercased, every run of characters outside
// [a-z0-9-] becomes a single hyphen, and leading/trailing hyphens are removed.
// An empty result means the input cannot name a group.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugInvalid.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// DeriveID returns the content identifier for a name in a group.
//
// The default group hashes the name alone, which is what installations
// predating groups wrote to disk. Every other group hashes "group|name" so the
// same name in two groups never collides.
//
// DeriveID is only called the first time a name is seen; the result is kept in
// the group's mapping and must never be recomputed for an existing name.
func DeriveID(group, name string) string {
	var sum [md5.Size]byte
	if group == DefaultGroup {
		sum = md5.Sum([]byte(name)) //nolint:gosec // G401: not used for security.
	} else {
		sum = md5.Sum([]byte(group + "|" + name)) //nolint:gosec // G401: not used for security.
	}
	return hex.EncodeToString(sum[:])
}

// isValidID reports whether id can safely be used as a file name.
func isValidID(id string) bool {
	return validID.MatchString(id)
}
