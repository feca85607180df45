package nodeward

import "errors"

var (
	// ErrAlreadyHeld is returned by SetPermission, SetTransientPermission,
	// and SetInheritGroup when the holder already has a node that
	// almostEquals the candidate, or when SetInheritGroup targets the
	// holder's own name.
	ErrAlreadyHeld = errors.New("nodeward: node already held")

	// ErrNotHeld is returned by UnsetPermission, UnsetTransientPermission,
	// and UnsetInheritGroup when no node almostEquals the candidate.
	ErrNotHeld = errors.New("nodeward: node not held")
)
