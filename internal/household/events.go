package household

import (
	"context"
	"time"
)

const (
	EventStateChanged = "household.state.changed"
	EventItemCreated  = "household.item.created"
	EventItemUpdated  = "household.item.updated"
	EventItemDeleted  = "household.item.deleted"
	EventNoteCreated  = "household.note.created"
	EventNoteDeleted  = "household.note.deleted"
)

// Event describes a committed change to one family's data.
type Event struct {
	Type   string    `json:"type"`
	Family string    `json:"family"`
	Entity string    `json:"entity"`
	ID     string    `json:"id,omitempty"`
	Data   any       `json:"data,omitempty"`
	At     time.Time `json:"at"`
}

// Notifier fans events out to realtime clients, the device bus, etc.
// Delivery is best effort; an error is logged and never fails the request.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}
