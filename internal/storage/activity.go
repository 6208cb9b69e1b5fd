// Records the changes made to the data directory.

package storage

import (
	"log/slog"
	"path/filepath"
	"time"

	"github.com/maruel/ksid"
	"github.com/maruel/wishlist/internal/jsonldb"
)

const (
	activityFile = "activity.jsonl"
	// maxActivity bounds activity.jsonl.
	maxActivity = 1000
)

// Action identifies the kind of change recorded in the activity log.
type Action string

// Recorded actions.
const (
	ActionGroupsReplaced Action = "groups_replaced"
	ActionNamesSet       Action = "names_set"
	ActionContentSaved   Action = "content_saved"
)

// Activity is one entry of the activity log.
type Activity struct {
	ID     ksid.ID   `json:"id"`
	Time   time.Time `json:"time"`
	Action Action    `json:"action"`
	Group  string    `json:"group,omitempty"`
	Name   string    `json:"name,omitempty"`
	Count  int       `json:"count,omitempty"`
}

// ActivityLog is the bounded, append-only history of changes.
type ActivityLog struct {
	table *jsonldb.Table[Activity]
}

func newActivityLog(dataDir string) (*ActivityLog, error) {
	t, err := jsonldb.NewTable[Activity](filepath.Join(dataDir, activityFile), maxActivity)
	if err != nil {
		return nil, err
	}
	return &ActivityLog{table: t}, nil
}

// Recent returns up to n entries, newest first.
func (a *ActivityLog) Recent(n int) []Activity {
	return a.table.Last(n)
}

// record appends an entry. Failing to record never fails the change itself.
func (a *ActivityLog) record(e Activity) {
	e.ID = ksid.NewID()
	e.Time = time.Now().UTC()
	if err := a.table.Append(e); err != nil {
		slog.Warn("Failed to record activity", "action", e.Action, "group", e.Group, "err", err)
	}
}
