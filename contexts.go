package nodeward

// Contexts is the per-call input to InheritanceResolver: the context tags
// a check is being evaluated under, plus the flags that decide how
// aggressively global (unscoped) nodes and group nodes are included.
type Contexts struct {
	// Contexts carries arbitrary key/value tags, including the reserved
	// "server" and "world" keys, which InheritanceResolver extracts and
	// matches against Node.ShouldApplyOnServer/World rather than treating
	// as ordinary context tags.
	Contexts ContextSet

	// ApplyGroups enables transitive group inheritance in
	// GetAllNodesFiltered. When false, only the holder's own merged
	// permissions are considered.
	ApplyGroups bool

	// ApplyGlobalGroups includes server-unscoped group nodes when
	// selecting parents to walk during GetAllNodes.
	ApplyGlobalGroups bool

	// ApplyGlobalWorldGroups includes world-unscoped group nodes when
	// selecting parents to walk during GetAllNodes.
	ApplyGlobalWorldGroups bool

	// IncludeGlobal includes server-unscoped nodes in GetAllNodesFiltered.
	IncludeGlobal bool

	// IncludeGlobalWorld includes world-unscoped nodes in
	// GetAllNodesFiltered.
	IncludeGlobalWorld bool
}

// AllowAllContexts returns a Contexts with every apply/include flag set
// and no context tags: every global (unscoped) node applies and every
// unscoped group node is walked. Because it names no server, world or
// other tag, nodes scoped to a server or world, or requiring context
// tags, do not apply under it.
func AllowAllContexts() Contexts {
	return Contexts{
		ApplyGroups:            true,
		ApplyGlobalGroups:      true,
		ApplyGlobalWorldGroups: true,
		IncludeGlobal:          true,
		IncludeGlobalWorld:     true,
	}
}

// serverWorld extracts the reserved "server"/"world" tags from c.Contexts,
// returning the remaining tags as rest. Mirrors the legacy source's
// MutableContextSet.getValues("server")/"world".findAny() behavior: if a
// key has multiple values, an arbitrary one is used.
func (c Contexts) serverWorld() (server string, hasServer bool, world string, hasWorld bool, rest ContextSet) {
	var pairs []ContextPair
	for _, p := range c.Contexts.Pairs() {
		switch p.Key {
		case "server":
			if !hasServer {
				server, hasServer = p.Value, true
			}
		case "world":
			if !hasWorld {
				world, hasWorld = p.Value, true
			}
		default:
			pairs = append(pairs, p)
		}
	}
	rest = NewContextSet(pairs...)
	return
}
