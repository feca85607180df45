// Package eventsink provides nodeward.EventSink implementations: a
// slog-backed sink for local observability, and a channel-backed sink for
// callers that want to pump events into their own transport.
package eventsink

import (
	"context"
	"log/slog"
	"time"

	"github.com/xraph/nodeward"
)

// LogSink logs every event at debug level through a *slog.Logger. It is
// grounded on the teacher module's WithLogger/slog.Default() convention
// (warden/options.go, warden/engine.go).
type LogSink struct {
	logger *slog.Logger
}

var _ nodeward.EventSink = (*LogSink)(nil)

// NewLogSink returns a LogSink backed by logger, or slog.Default() if nil.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) EmitNodeSet(_ context.Context, holder *nodeward.PermissionHolder, n nodeward.Node) {
	s.logger.Debug("nodeward: node set", slog.String("holder", holder.ObjectName()), slog.String("permission", n.Permission()), slog.Bool("value", n.Value()))
}

func (s *LogSink) EmitNodeUnset(_ context.Context, holder *nodeward.PermissionHolder, n nodeward.Node) {
	s.logger.Debug("nodeward: node unset", slog.String("holder", holder.ObjectName()), slog.String("permission", n.Permission()))
}

func (s *LogSink) EmitNodeExpire(_ context.Context, holder *nodeward.PermissionHolder, n nodeward.Node) {
	s.logger.Debug("nodeward: node expired", slog.String("holder", holder.ObjectName()), slog.String("permission", n.Permission()))
}

func (s *LogSink) EmitGroupAdd(_ context.Context, holder *nodeward.PermissionHolder, groupName, server, world string, expireAt time.Time, hasExpiry bool) {
	attrs := []any{slog.String("holder", holder.ObjectName()), slog.String("group", groupName)}
	if server != "" {
		attrs = append(attrs, slog.String("server", server))
	}
	if world != "" {
		attrs = append(attrs, slog.String("world", world))
	}
	if hasExpiry {
		attrs = append(attrs, slog.Time("expire_at", expireAt))
	}
	s.logger.Debug("nodeward: group inherited", attrs...)
}

func (s *LogSink) EmitGroupRemove(_ context.Context, holder *nodeward.PermissionHolder, groupName, server, world string, temporary bool) {
	s.logger.Debug("nodeward: group uninherited",
		slog.String("holder", holder.ObjectName()),
		slog.String("group", groupName),
		slog.String("server", server),
		slog.String("world", world),
		slog.Bool("temporary", temporary),
	)
}
