package dto

import "strings"

// --- Health ---

// HealthRequest is a request to check system health.
type HealthRequest struct{}

// Validate is a no-op for HealthRequest.
func (r *HealthRequest) Validate() error {
	return nil
}

// SchemaRequest is a request for the JSON Schemas of the request bodies.
type SchemaRequest struct{}

// Validate is a no-op for SchemaRequest.
func (r *SchemaRequest) Validate() error {
	return nil
}

// --- Groups ---

// ListGroupsRequest is a request to list the visible groups.
type ListGroupsRequest struct{}

// Validate is a no-op for ListGroupsRequest.
func (r *ListGroupsRequest) Validate() error {
	return nil
}

// ListAdminGroupsRequest is a request to list all groups, hidden ones included.
type ListAdminGroupsRequest struct{}

// Validate is a no-op for ListAdminGroupsRequest.
func (r *ListAdminGroupsRequest) Validate() error {
	return nil
}

// GroupInput is one entry of a group replacement.
type GroupInput struct {
	Slug   string `json:"slug"`
	Title  string `json:"title"`
	Hidden bool   `json:"hidden"`
	// OldSlug renames the group from OldSlug to Slug and moves its data.
	OldSlug string `json:"oldSlug,omitempty"`
}

// ReplaceGroupsRequest replaces the whole group list.
type ReplaceGroupsRequest struct {
	Groups []GroupInput `json:"groups"`
}

// Validate validates the replace groups request fields.
func (r *ReplaceGroupsRequest) Validate() error {
	if r.Groups == nil {
		return MissingField("groups")
	}
	return nil
}

// --- Names ---

// GroupNamesRequest is a request for the names of a group.
type GroupNamesRequest struct {
	Group string `path:"group" json:"-"`
}

// Validate validates the group names request fields.
func (r *GroupNamesRequest) Validate() error {
	if r.Group == "" {
		return MissingField("group")
	}
	return nil
}

// SetGroupNamesRequest replaces the names of a group.
type SetGroupNamesRequest struct {
	Group string   `path:"group" json:"-"`
	Names []string `json:"names"`
}

// Validate validates the set group names request fields.
func (r *SetGroupNamesRequest) Validate() error {
	if r.Group == "" {
		return MissingField("group")
	}
	if r.Names == nil {
		return MissingField("names")
	}
	return nil
}

// ListNamesRequest is a request for the names of the default group.
type ListNamesRequest struct{}

// Validate is a no-op for ListNamesRequest.
func (r *ListNamesRequest) Validate() error {
	return nil
}

// SetNamesRequest replaces the names of the default group.
type SetNamesRequest struct {
	Names []string `json:"names"`
}

// Validate validates the set names request fields.
func (r *SetNamesRequest) Validate() error {
	if r.Names == nil {
		return MissingField("names")
	}
	return nil
}

// --- Content ---

// GetGroupContentRequest is a request for the content of a name in a group.
type GetGroupContentRequest struct {
	Group string `path:"group" json:"-"`
	Name  string `query:"name" json:"-"`
}

// Validate validates the get group content request fields.
func (r *GetGroupContentRequest) Validate() error {
	if r.Group == "" {
		return MissingField("group")
	}
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return MissingField("name")
	}
	return nil
}

// SaveGroupContentRequest stores the content of a name in a group.
type SaveGroupContentRequest struct {
	Group   string `path:"group" json:"-"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Validate validates the save group content request fields.
func (r *SaveGroupContentRequest) Validate() error {
	if r.Group == "" {
		return MissingField("group")
	}
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return MissingField("name")
	}
	return nil
}

// GetContentRequest is a request for the content of a name in the default
// group.
type GetContentRequest struct {
	Name string `query:"name" json:"-"`
}

// Validate validates the get content request fields.
func (r *GetContentRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return MissingField("name")
	}
	return nil
}

// SaveContentRequest stores the content of a name in the default group.
type SaveContentRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Validate validates the save content request fields.
func (r *SaveContentRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return MissingField("name")
	}
	return nil
}

// --- Activity ---

// ListActivityRequest is a request for the most recent changes.
type ListActivityRequest struct {
	Limit int `query:"limit" json:"-"`
}

// Validate applies the default limit and bounds it.
func (r *ListActivityRequest) Validate() error {
	if r.Limit < 0 {
		return BadRequest("limit must be non-negative").WithDetail("field", "limit")
	}
	if r.Limit == 0 {
		r.Limit = 50
	}
	r.Limit = min(r.Limit, 1000)
	return nil
}
