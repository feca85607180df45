package nodeward

import "context"

// GroupRegistry looks up a group holder by its lowercased name.
// InheritanceResolver uses it to resolve the parents named by a holder's
// group nodes. A group unknown to the registry is skipped, not an error
// (spec.md §7, §8 invariant: "a group node referring to a nonexistent
// group is skipped in getAllNodes, not an error").
type GroupRegistry interface {
	GetGroup(ctx context.Context, name string) (*PermissionHolder, bool)
}
