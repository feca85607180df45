package nodeward

import "log/slog"

// Option configures a PermissionHolder at construction.
type Option func(*PermissionHolder)

// WithEventSink injects the sink that receives mutation events. Holders
// built without this option use a no-op sink, so the engine never has to
// nil-check it.
func WithEventSink(sink EventSink) Option {
	return func(h *PermissionHolder) { h.events = sink }
}

// WithClock injects the clock used for expiry checks. Holders built
// without this option use the system wall clock.
func WithClock(clock Clock) Option {
	return func(h *PermissionHolder) { h.clock = clock }
}

// ResolverOption configures an InheritanceResolver at construction.
type ResolverOption func(*resolverConfig)

// WithResolverConfig sets the Config the resolver consults for
// ApplyingRegex, ApplyingShorthand, and MaxGraphDepth.
func WithResolverConfig(cfg Config) ResolverOption {
	return func(rc *resolverConfig) { rc.cfg = cfg }
}

// WithResolverLogger sets the logger the resolver uses to trace skipped
// and unknown groups at debug level. Defaults to slog.Default().
func WithResolverLogger(logger *slog.Logger) ResolverOption {
	return func(rc *resolverConfig) { rc.logger = logger }
}
