// Package nodeward resolves permission nodes held by users and groups in a
// hierarchical access-control graph.
//
// A PermissionHolder owns an enduring (persisted) and a transient
// (in-memory) set of Node values. InheritanceResolver walks a holder's
// group nodes transitively, merging inherited permissions under
// priority-ordering and context-filtering rules, and produces the
// exported permission map a caller ultimately consumes.
//
// Persistence, wire formats, and event transport are external concerns;
// this package only defines the collaborator interfaces (EventSink,
// GroupRegistry, Clock) it needs from them.
package nodeward
