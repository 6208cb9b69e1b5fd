package dto

import "time"

// StatusOK is the status value of successful mutations.
const StatusOK = "ok"

// --- Common Responses ---

// StatusResponse is a simple success response.
type StatusResponse struct {
	Status string `json:"status"`
}

// --- Health Responses ---

// HealthResponse is a response from a health check.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Groups  int    `json:"groups"`
}

// SchemaResponse maps request type names to their JSON Schema.
type SchemaResponse struct {
	Schemas map[string]any `json:"schemas"`
}

// --- Group Responses ---

// GroupSummary is a group as shown to visitors.
type GroupSummary struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

// Group is a group as shown to administrators.
type Group struct {
	Slug   string `json:"slug"`
	Title  string `json:"title"`
	Hidden bool   `json:"hidden"`
}

// ListGroupsResponse is a response containing the visible groups.
type ListGroupsResponse struct {
	Groups []GroupSummary `json:"groups"`
}

// ListAdminGroupsResponse is a response containing all groups.
type ListAdminGroupsResponse struct {
	Groups []Group `json:"groups"`
}

// ReplaceGroupsResponse is a response from replacing the group list.
type ReplaceGroupsResponse struct {
	Status string  `json:"status"`
	Groups []Group `json:"groups"`
}

// --- Name Responses ---

// GroupNamesResponse is a response containing the names of a group.
type GroupNamesResponse struct {
	Group string   `json:"group"`
	Names []string `json:"names"`
}

// SetGroupNamesResponse is a response from replacing the names of a group.
type SetGroupNamesResponse struct {
	Status string   `json:"status"`
	Group  string   `json:"group"`
	Names  []string `json:"names"`
}

// NamesResponse is a response containing the names of the default group.
type NamesResponse struct {
	Names []string `json:"names"`
}

// SetNamesResponse is a response from replacing the names of the default group.
type SetNamesResponse struct {
	Status string   `json:"status"`
	Names  []string `json:"names"`
}

// --- Content Responses ---

// GroupContentResponse is a response containing the content of a name.
type GroupContentResponse struct {
	Group   string `json:"group"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

// ContentResponse is a response containing the content of a name in the
// default group.
type ContentResponse struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// ActivityEntry is one recorded change.
type ActivityEntry struct {
	ID     string    `json:"id"`
	Time   time.Time `json:"time"`
	Action string    `json:"action"`
	Group  string    `json:"group,omitempty"`
	Name   string    `json:"name,omitempty"`
	Count  int       `json:"count,omitempty"`
}

// ListActivityResponse lists recent changes, newest first.
type ListActivityResponse struct {
	Entries []ActivityEntry `json:"entries"`
}
