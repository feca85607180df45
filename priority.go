package nodeward

// ComparePriority implements the PriorityComparator: a reverse total order
// over nodes where higher-priority nodes sort first. It returns a negative
// number when a outranks b, a positive number when b outranks a, and zero
// when the two are equal under every tiebreaker (the caller's ordered
// collection then keeps whichever was inserted first).
//
// Ranking, most significant first:
//  1. server-specific nodes outrank global ones
//  2. world-specific nodes outrank global ones (within equal server rank)
//  3. fewer wildcard segments outranks more
//  4. temporary nodes outrank permanent ones
//  5. lexicographic by permission string, as a stable tiebreaker
func ComparePriority(a, b Node) int {
	if c := compareBool(a.hasServer, b.hasServer); c != 0 {
		return c
	}
	if c := compareBool(a.hasWorld, b.hasWorld); c != 0 {
		return c
	}
	if c := compareInt(a.wildcardDepth(), b.wildcardDepth()); c != 0 {
		return c
	}
	if c := compareBool(a.hasExpiry, b.hasExpiry); c != 0 {
		return c
	}
	if a.permission < b.permission {
		return -1
	}
	if a.permission > b.permission {
		return 1
	}
	return 0
}

// compareBool ranks true above false (true "wins", so it sorts first).
func compareBool(a, b bool) int {
	if a == b {
		return 0
	}
	if a {
		return -1
	}
	return 1
}

// compareInt ranks the smaller value first (fewer wildcards outranks more).
func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
