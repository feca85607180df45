package nodeward

// Config holds the engine-wide configuration flags consumed by Node and
// InheritanceResolver.
type Config struct {
	// ApplyingRegex, when true, treats a node's server/world field as a
	// regular expression during context filtering instead of an exact,
	// case-insensitive match.
	ApplyingRegex bool `json:"applying_regex,omitempty"`

	// ApplyingShorthand, when true, makes ExportNodes expand shorthand
	// permissions (e.g. "build.(create|destroy)") via Node.ResolveShorthand.
	ApplyingShorthand bool `json:"applying_shorthand,omitempty"`

	// MaxGraphDepth bounds InheritanceResolver's recursion depth as a
	// defensive backstop against a malformed GroupRegistry. Cycle
	// termination is already guaranteed by the strictly-growing
	// excludedGroups set (spec.md §8, invariant 5); this is a belt, not
	// the buckle. Zero means unbounded.
	MaxGraphDepth int `json:"max_graph_depth,omitempty"`
}

// DefaultConfig returns a Config with every flag at its conservative
// default: no regex matching, no shorthand expansion, unbounded depth.
func DefaultConfig() Config {
	return Config{}
}
