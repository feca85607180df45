// Package id mints TypeID-based correlation identifiers for events the
// engine emits, modeled on the teacher module's single-prefix-per-entity
// identifier convention.
package id

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

// EventID is a K-sortable, globally unique identifier attached to every
// event eventsink.ChannelSink publishes, so an external transport can
// correlate, dedupe, or order them once they leave the engine.
type EventID struct {
	inner typeid.TypeID
	valid bool
}

// NilEventID is the zero-value EventID.
var NilEventID EventID

const eventPrefix = "evt"

// NewEventID mints a fresh EventID.
func NewEventID() EventID {
	tid, err := typeid.Generate(eventPrefix)
	if err != nil {
		panic(fmt.Sprintf("id: invalid event prefix %q: %v", eventPrefix, err))
	}
	return EventID{inner: tid, valid: true}
}

// ParseEventID parses a TypeID string of the form "evt_<suffix>".
func ParseEventID(s string) (EventID, error) {
	if s == "" {
		return NilEventID, fmt.Errorf("id: parse %q: empty string", s)
	}
	tid, err := typeid.Parse(s)
	if err != nil {
		return NilEventID, fmt.Errorf("id: parse %q: %w", s, err)
	}
	if tid.Prefix() != eventPrefix {
		return NilEventID, fmt.Errorf("id: expected prefix %q, got %q", eventPrefix, tid.Prefix())
	}
	return EventID{inner: tid, valid: true}, nil
}

// String returns the TypeID string form, or "" for the nil EventID.
func (i EventID) String() string {
	if !i.valid {
		return ""
	}
	return i.inner.String()
}

// IsNil reports whether this is the zero-value EventID.
func (i EventID) IsNil() bool { return !i.valid }
