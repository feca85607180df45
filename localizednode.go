package nodeward

// LocalizedNode pairs a Node with the objectName of the holder that
// supplied it during resolution. A holder's own nodes are localized to
// itself; nodes pulled in through InheritanceResolver keep the
// contributing group's objectName, so callers can tell where an effective
// permission actually came from.
type LocalizedNode struct {
	Node       Node
	HolderName string
}

// LocalizeNode tags a node with the given holder's objectName.
func LocalizeNode(n Node, holderName string) LocalizedNode {
	return LocalizedNode{Node: n, HolderName: holderName}
}
