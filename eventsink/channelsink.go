package eventsink

import (
	"context"
	"time"

	"github.com/xraph/nodeward"
	"github.com/xraph/nodeward/id"
)

// EventKind discriminates the tagged union carried on ChannelSink's
// channel.
type EventKind int

const (
	EventNodeSet EventKind = iota
	EventNodeUnset
	EventNodeExpire
	EventGroupAdd
	EventGroupRemove
)

// Event is the tagged-union payload ChannelSink publishes. Only the
// fields relevant to Kind are populated; the rest are zero.
type Event struct {
	ID         id.EventID
	Kind       EventKind
	HolderName string
	HolderKind nodeward.HolderKind

	Node nodeward.Node // NodeSet, NodeUnset, NodeExpire

	GroupName string // GroupAdd, GroupRemove
	Server    string
	World     string
	ExpireAt  time.Time
	HasExpiry bool
	Temporary bool // GroupRemove
}

// ChannelSink publishes every event onto a buffered channel for a caller
// to drain into its own transport — the out-of-scope "event delivery
// transport" collaborator named in spec.md §1. A full channel drops the
// event rather than blocking the mutating caller, consistent with events
// being advisory (spec.md §4.6: "loss or reordering must not break engine
// correctness").
type ChannelSink struct {
	events chan Event
}

var _ nodeward.EventSink = (*ChannelSink)(nil)

// NewChannelSink returns a ChannelSink with the given channel buffer size.
func NewChannelSink(buffer int) *ChannelSink {
	return &ChannelSink{events: make(chan Event, buffer)}
}

// Events returns the channel callers should drain.
func (s *ChannelSink) Events() <-chan Event { return s.events }

func (s *ChannelSink) publish(e Event) {
	e.ID = id.NewEventID()
	select {
	case s.events <- e:
	default:
	}
}

func (s *ChannelSink) EmitNodeSet(_ context.Context, holder *nodeward.PermissionHolder, n nodeward.Node) {
	s.publish(Event{Kind: EventNodeSet, HolderName: holder.ObjectName(), HolderKind: holder.Kind(), Node: n})
}

func (s *ChannelSink) EmitNodeUnset(_ context.Context, holder *nodeward.PermissionHolder, n nodeward.Node) {
	s.publish(Event{Kind: EventNodeUnset, HolderName: holder.ObjectName(), HolderKind: holder.Kind(), Node: n})
}

func (s *ChannelSink) EmitNodeExpire(_ context.Context, holder *nodeward.PermissionHolder, n nodeward.Node) {
	s.publish(Event{Kind: EventNodeExpire, HolderName: holder.ObjectName(), HolderKind: holder.Kind(), Node: n})
}

func (s *ChannelSink) EmitGroupAdd(_ context.Context, holder *nodeward.PermissionHolder, groupName, server, world string, expireAt time.Time, hasExpiry bool) {
	s.publish(Event{
		Kind: EventGroupAdd, HolderName: holder.ObjectName(), HolderKind: holder.Kind(),
		GroupName: groupName, Server: server, World: world, ExpireAt: expireAt, HasExpiry: hasExpiry,
	})
}

func (s *ChannelSink) EmitGroupRemove(_ context.Context, holder *nodeward.PermissionHolder, groupName, server, world string, temporary bool) {
	s.publish(Event{
		Kind: EventGroupRemove, HolderName: holder.ObjectName(), HolderKind: holder.Kind(),
		GroupName: groupName, Server: server, World: world, Temporary: temporary,
	})
}
