package workspace

import (
	"time"

	"github.com/ziadkadry99/vizlab/internal/render"
)

// Variant is the visual weight of a notice.
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notice is a transient message shown to the user.
type Notice struct {
	ID          string    `json:"id"`
	Variant     Variant   `json:"variant"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// EventKind identifies the payload of an Event.
type EventKind string

const (
	// EventCanvas carries a new canvas snapshot.
	EventCanvas EventKind = "canvas"
	// EventText carries text or options that changed on the server side
	// (generate, repair, load, option change).
	EventText EventKind = "text"
	// EventNotice carries a notice.
	EventNotice EventKind = "notice"
)

// Event is what subscribers receive.
type Event struct {
	Kind   EventKind        `json:"type"`
	Canvas *render.Snapshot `json:"canvas,omitempty"`
	Text   *TextState       `json:"text,omitempty"`
	Notice *Notice          `json:"notice,omitempty"`
}

// TextState is the editable part of the workspace.
type TextState struct {
	Text    string         `json:"text"`
	Options render.Options `json:"options"`
}

// State is the full observable state of the workspace.
type State struct {
	Text      string          `json:"text"`
	Options   render.Options  `json:"options"`
	Canvas    render.Snapshot `json:"canvas"`
	CanSave   bool            `json:"can_save"`
	CanExport bool            `json:"can_export"`
}
