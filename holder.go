package nodeward

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// HolderKind discriminates the two concrete roles a PermissionHolder can
// play. The abstract PermissionHolder-with-User/Group-subclasses split in
// the legacy design collapses into one struct plus this discriminator
// (spec.md §9); group-only behavior — being a referable inheritance
// parent — lives in GroupRegistry instead of a Group type.
type HolderKind int

const (
	// HolderUser is a holder identified by a stable user UUID.
	HolderUser HolderKind = iota
	// HolderGroup is a holder identified by its lowercased group name.
	HolderGroup
)

// String implements fmt.Stringer.
func (k HolderKind) String() string {
	if k == HolderGroup {
		return "group"
	}
	return "user"
}

// NewUserObjectName mints a fresh UUID-format object name for a user
// holder, matching the UUID identity convention spec.md §3 calls for.
func NewUserObjectName() string {
	return uuid.NewString()
}

// PermissionHolder owns a holder's enduring and transient node sets and
// the four derivation caches built over them (spec.md §4.5). Every
// mutation acquires the exclusive lock on the relevant set, makes the
// change, invalidates the affected caches, and only then emits an event —
// after the lock has already been released, so a slow or misbehaving
// EventSink can never hold up a subsequent mutation.
type PermissionHolder struct {
	objectName string
	kind       HolderKind

	events EventSink
	clock  Clock
	ioLock sync.Mutex

	enduringMu sync.RWMutex
	enduring   []Node

	transientMu sync.RWMutex
	transient   []Node

	enduringCache   *SnapshotCache[[]Node]
	transientCache  *SnapshotCache[[]Node]
	mergedCache     *SnapshotCache[[]LocalizedNode]
	resolutionCache *SnapshotCache[[]LocalizedNode]
}

// NewPermissionHolder constructs a holder with empty node sets.
func NewPermissionHolder(objectName string, kind HolderKind, opts ...Option) *PermissionHolder {
	h := &PermissionHolder{
		objectName: objectName,
		kind:       kind,
		events:     noopEventSink{},
		clock:      systemClock{},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.enduringCache = NewSnapshotCache(h.computeEnduring)
	h.transientCache = NewSnapshotCache(h.computeTransient)
	h.mergedCache = NewSnapshotCache(func() []LocalizedNode { return h.computeCombined(true) })
	h.resolutionCache = NewSnapshotCache(func() []LocalizedNode { return h.computeCombined(false) })
	return h
}

// ObjectName returns the holder's stable identity: the UUID for a user,
// the lowercased name for a group.
func (h *PermissionHolder) ObjectName() string { return h.objectName }

// Kind returns whether this holder is a user or a group.
func (h *PermissionHolder) Kind() HolderKind { return h.kind }

// IOLock returns the handle external persistence code should acquire to
// serialize save/load against administrative operations. The engine
// itself never acquires it (spec.md §5).
func (h *PermissionHolder) IOLock() *sync.Mutex { return &h.ioLock }

func (h *PermissionHolder) invalidate(enduring bool) {
	if enduring {
		h.enduringCache.Invalidate()
	} else {
		h.transientCache.Invalidate()
	}
	h.mergedCache.Invalidate()
	h.resolutionCache.Invalidate()
}

func (h *PermissionHolder) computeEnduring() []Node {
	h.enduringMu.RLock()
	raw := append([]Node(nil), h.enduring...)
	h.enduringMu.RUnlock()
	return filterExpiredSorted(raw, h.clock.Now())
}

func (h *PermissionHolder) computeTransient() []Node {
	h.transientMu.RLock()
	raw := append([]Node(nil), h.transient...)
	h.transientMu.RUnlock()
	return filterExpiredSorted(raw, h.clock.Now())
}

// filterExpiredSorted drops expired nodes and sorts the remainder by
// serialized form, so GetNodes/GetTransientNodes return a deterministic
// snapshot. Expiry checks occur on every access, per spec.md §8: a
// temporary node past its expiry is filtered from derived views even
// before AuditTemporaryPermissions runs.
func filterExpiredSorted(nodes []Node, now time.Time) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if !n.HasExpired(now) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ToSerializedNode() < out[j].ToSerializedNode() })
	return out
}

func (h *PermissionHolder) computeCombined(mergeTemp bool) []LocalizedNode {
	enduring := h.GetNodes()
	transient := h.GetTransientNodes()

	combined := make([]LocalizedNode, 0, len(enduring)+len(transient))
	for _, n := range enduring {
		combined = append(combined, LocalizeNode(n, h.objectName))
	}
	for _, n := range transient {
		combined = append(combined, LocalizeNode(n, h.objectName))
	}

	sort.SliceStable(combined, func(i, j int) bool {
		return ComparePriority(combined[i].Node, combined[j].Node) < 0
	})

	dedup := almostEquals
	if mergeTemp {
		dedup = equalsIgnoringValueOrTemp
	}

	out := make([]LocalizedNode, 0, len(combined))
outer:
	for _, ln := range combined {
		for _, kept := range out {
			if dedup(kept.Node, ln.Node) {
				continue outer
			}
		}
		out = append(out, ln)
	}
	return out
}

// GetNodes returns an immutable snapshot of the holder's enduring nodes.
func (h *PermissionHolder) GetNodes() []Node { return h.enduringCache.Get() }

// GetTransientNodes returns an immutable snapshot of the holder's
// transient nodes.
func (h *PermissionHolder) GetTransientNodes() []Node { return h.transientCache.Get() }

// GetPermissions combines enduring and transient nodes in priority order,
// deduplicated by equalsIgnoringValueOrTemp when mergeTemp is true, or by
// almostEquals when mergeTemp is false.
func (h *PermissionHolder) GetPermissions(mergeTemp bool) []LocalizedNode {
	if mergeTemp {
		return h.mergedCache.Get()
	}
	return h.resolutionCache.Get()
}

// GetTemporaryNodes returns the holder's merged permissions filtered to
// those carrying an expiry.
func (h *PermissionHolder) GetTemporaryNodes() []Node {
	var out []Node
	for _, ln := range h.GetPermissions(false) {
		if ln.Node.IsTemporary() {
			out = append(out, ln.Node)
		}
	}
	return out
}

// GetPermanentNodes returns the holder's merged permissions filtered to
// those with no expiry.
func (h *PermissionHolder) GetPermanentNodes() []Node {
	var out []Node
	for _, ln := range h.GetPermissions(false) {
		if ln.Node.IsPermanent() {
			out = append(out, ln.Node)
		}
	}
	return out
}

// HasPermission scans the chosen node set (transient or enduring) for the
// first node that almostEquals the argument, returning its value as a
// Tristate, or Undefined if none match.
func (h *PermissionHolder) HasPermission(node Node, transient bool) Tristate {
	var nodes []Node
	if transient {
		nodes = h.GetTransientNodes()
	} else {
		nodes = h.GetNodes()
	}
	for _, n := range nodes {
		if almostEquals(n, node) {
			return TristateFromBool(n.Value())
		}
	}
	return Undefined
}

// HasPermissionValue is the convenience probe-and-compare form of
// HasPermission: it builds a probe node from permission/value/opts,
// checks it against the enduring set, and reports whether the result
// equals value.
//
// This is asymmetric for Undefined outcomes exactly as the legacy
// hasPermission(String, boolean) was: Undefined collapses to false before
// the comparison, so a holder that holds no matching node at all reports
// true when value is false, the same answer as an explicit deny. See DESIGN.md for the rationale (spec.md §9 open
// question) behind keeping this behavior.
func (h *PermissionHolder) HasPermissionValue(permission string, value bool, opts ...NodeOption) bool {
	probe := NewNode(permission, value, opts...)
	return h.HasPermission(probe, false).AsBoolean() == value
}

// SetPermission adds node to the enduring set, failing with ErrAlreadyHeld
// if an almost-equal node already exists.
func (h *PermissionHolder) SetPermission(ctx context.Context, node Node) error {
	if h.HasPermission(node, false) != Undefined {
		return ErrAlreadyHeld
	}
	h.enduringMu.Lock()
	h.enduring = append(h.enduring, node)
	h.enduringMu.Unlock()
	h.invalidate(true)

	dispatch(func() { h.events.EmitNodeSet(ctx, h, node) })
	return nil
}

// SetTransientPermission is the transient-set analogue of SetPermission.
func (h *PermissionHolder) SetTransientPermission(ctx context.Context, node Node) error {
	if h.HasPermission(node, true) != Undefined {
		return ErrAlreadyHeld
	}
	h.transientMu.Lock()
	h.transient = append(h.transient, node)
	h.transientMu.Unlock()
	h.invalidate(false)

	dispatch(func() { h.events.EmitNodeSet(ctx, h, node) })
	return nil
}

// UnsetPermission removes every node almostEqual to the argument from the
// enduring set, failing with ErrNotHeld if none match.
func (h *PermissionHolder) UnsetPermission(ctx context.Context, node Node) error {
	if h.HasPermission(node, false) == Undefined {
		return ErrNotHeld
	}
	h.enduringMu.Lock()
	h.enduring = removeAlmostEqual(h.enduring, node)
	h.enduringMu.Unlock()
	h.invalidate(true)

	h.emitUnset(ctx, node)
	return nil
}

// UnsetTransientPermission is the transient-set analogue of
// UnsetPermission.
func (h *PermissionHolder) UnsetTransientPermission(ctx context.Context, node Node) error {
	if h.HasPermission(node, true) == Undefined {
		return ErrNotHeld
	}
	h.transientMu.Lock()
	h.transient = removeAlmostEqual(h.transient, node)
	h.transientMu.Unlock()
	h.invalidate(false)

	h.emitUnset(ctx, node)
	return nil
}

func (h *PermissionHolder) emitUnset(ctx context.Context, node Node) {
	if groupName, ok := node.GroupName(); ok {
		server, _ := node.Server()
		world, _ := node.World()
		temporary := node.IsTemporary()
		dispatch(func() { h.events.EmitGroupRemove(ctx, h, groupName, server, world, temporary) })
		return
	}
	dispatch(func() { h.events.EmitNodeUnset(ctx, h, node) })
}

func removeAlmostEqual(nodes []Node, target Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if !almostEquals(n, target) {
			out = append(out, n)
		}
	}
	return out
}

// SetNodes fully replaces the enduring set. It is a no-op — no
// invalidation, no events — if the new set equals the current one.
func (h *PermissionHolder) SetNodes(nodes []Node) {
	h.enduringMu.Lock()
	if nodeSetEqual(h.enduring, nodes) {
		h.enduringMu.Unlock()
		return
	}
	h.enduring = append([]Node(nil), nodes...)
	h.enduringMu.Unlock()
	h.invalidate(true)
}

// SetTransientNodes is the transient-set analogue of SetNodes.
func (h *PermissionHolder) SetTransientNodes(nodes []Node) {
	h.transientMu.Lock()
	if nodeSetEqual(h.transient, nodes) {
		h.transientMu.Unlock()
		return
	}
	h.transient = append([]Node(nil), nodes...)
	h.transientMu.Unlock()
	h.invalidate(false)
}

// AddNodeUnchecked adds node to the enduring set without the
// almost-equal precondition SetPermission enforces. Intended for bulk
// loader paths that already know the incoming nodes are distinct.
func (h *PermissionHolder) AddNodeUnchecked(node Node) {
	h.enduringMu.Lock()
	h.enduring = append(h.enduring, node)
	h.enduringMu.Unlock()
	h.invalidate(true)
}

func nodeExactEqual(a, b Node) bool {
	return a.permission == b.permission &&
		a.value == b.value &&
		a.hasServer == b.hasServer && a.server == b.server &&
		a.hasWorld == b.hasWorld && a.world == b.world &&
		a.context.Equal(b.context) &&
		a.hasExpiry == b.hasExpiry && a.expiry.Equal(b.expiry)
}

func nodeSetEqual(a, b []Node) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
	for _, x := range a {
		found := false
		for i, y := range b {
			if used[i] {
				continue
			}
			if nodeExactEqual(x, y) {
				used[i] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// ──────────────────────────────────────────────────
// Scoped clearing
// ──────────────────────────────────────────────────

func sentinelOrDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func nodeServerSentinel(n Node) string {
	s, ok := n.Server()
	if !ok {
		return "global"
	}
	return s
}

func nodeWorldSentinel(n Node) string {
	w, ok := n.World()
	if !ok {
		return "null"
	}
	return w
}

// filterEnduring replaces the enduring set with only the nodes for which
// keep returns true, invalidating caches iff anything was actually
// removed.
func (h *PermissionHolder) filterEnduring(keep func(Node) bool) {
	h.enduringMu.Lock()
	out := make([]Node, 0, len(h.enduring))
	changed := false
	for _, n := range h.enduring {
		if keep(n) {
			out = append(out, n)
		} else {
			changed = true
		}
	}
	h.enduring = out
	h.enduringMu.Unlock()
	if changed {
		h.invalidate(true)
	}
}

// ClearNodes removes every enduring node.
func (h *PermissionHolder) ClearNodes() {
	h.filterEnduring(func(Node) bool { return false })
}

// ClearNodesServer removes every enduring node scoped to server. An empty
// server matches the "global" sentinel.
func (h *PermissionHolder) ClearNodesServer(server string) {
	target := sentinelOrDefault(server, "global")
	h.filterEnduring(func(n Node) bool {
		return !strings.EqualFold(nodeServerSentinel(n), target)
	})
}

// ClearNodesServerWorld removes every enduring node scoped to both server
// and world. Empty values match the "global"/"null" sentinels.
func (h *PermissionHolder) ClearNodesServerWorld(server, world string) {
	ts := sentinelOrDefault(server, "global")
	tw := sentinelOrDefault(world, "null")
	h.filterEnduring(func(n Node) bool {
		return !(strings.EqualFold(nodeServerSentinel(n), ts) && strings.EqualFold(nodeWorldSentinel(n), tw))
	})
}

// ClearParents removes every enduring group node.
func (h *PermissionHolder) ClearParents() {
	h.filterEnduring(func(n Node) bool { return !n.IsGroupNode() })
}

// ClearParentsServer removes every enduring group node scoped to server.
func (h *PermissionHolder) ClearParentsServer(server string) {
	target := sentinelOrDefault(server, "global")
	h.filterEnduring(func(n Node) bool {
		return !(n.IsGroupNode() && strings.EqualFold(nodeServerSentinel(n), target))
	})
}

// ClearParentsServerWorld removes every enduring group node scoped to
// both server and world.
func (h *PermissionHolder) ClearParentsServerWorld(server, world string) {
	ts := sentinelOrDefault(server, "global")
	tw := sentinelOrDefault(world, "null")
	h.filterEnduring(func(n Node) bool {
		return !(n.IsGroupNode() && strings.EqualFold(nodeServerSentinel(n), ts) && strings.EqualFold(nodeWorldSentinel(n), tw))
	})
}

func isDisplayNode(n Node) bool {
	return n.IsMeta() || n.IsPrefix() || n.IsSuffix()
}

// ClearMeta removes every enduring meta, prefix, or suffix node.
func (h *PermissionHolder) ClearMeta() {
	h.filterEnduring(func(n Node) bool { return !isDisplayNode(n) })
}

// ClearMetaServer removes every enduring meta/prefix/suffix node scoped
// to server.
func (h *PermissionHolder) ClearMetaServer(server string) {
	target := sentinelOrDefault(server, "global")
	h.filterEnduring(func(n Node) bool {
		return !(isDisplayNode(n) && strings.EqualFold(nodeServerSentinel(n), target))
	})
}

// ClearMetaServerWorld removes every enduring meta/prefix/suffix node
// scoped to both server and world.
func (h *PermissionHolder) ClearMetaServerWorld(server, world string) {
	ts := sentinelOrDefault(server, "global")
	tw := sentinelOrDefault(world, "null")
	h.filterEnduring(func(n Node) bool {
		return !(isDisplayNode(n) && strings.EqualFold(nodeServerSentinel(n), ts) && strings.EqualFold(nodeWorldSentinel(n), tw))
	})
}

func metaKeyMatches(n Node, key string) bool {
	mk, ok := n.MetaKey()
	return ok && strings.EqualFold(mk, key)
}

// ClearMetaKeys removes every enduring meta node with the given key and
// temporariness.
func (h *PermissionHolder) ClearMetaKeys(key string, temp bool) {
	h.filterEnduring(func(n Node) bool {
		return !(n.IsMeta() && n.IsTemporary() == temp && metaKeyMatches(n, key))
	})
}

// ClearMetaKeysServer is ClearMetaKeys scoped to server.
func (h *PermissionHolder) ClearMetaKeysServer(key, server string, temp bool) {
	target := sentinelOrDefault(server, "global")
	h.filterEnduring(func(n Node) bool {
		return !(n.IsMeta() && n.IsTemporary() == temp && metaKeyMatches(n, key) && strings.EqualFold(nodeServerSentinel(n), target))
	})
}

// ClearMetaKeysServerWorld is ClearMetaKeys scoped to server and world.
func (h *PermissionHolder) ClearMetaKeysServerWorld(key, server, world string, temp bool) {
	ts := sentinelOrDefault(server, "global")
	tw := sentinelOrDefault(world, "null")
	h.filterEnduring(func(n Node) bool {
		return !(n.IsMeta() && n.IsTemporary() == temp && metaKeyMatches(n, key) &&
			strings.EqualFold(nodeServerSentinel(n), ts) && strings.EqualFold(nodeWorldSentinel(n), tw))
	})
}

// ClearTransientNodes drops every transient node.
func (h *PermissionHolder) ClearTransientNodes() {
	h.transientMu.Lock()
	changed := len(h.transient) > 0
	h.transient = nil
	h.transientMu.Unlock()
	if changed {
		h.invalidate(false)
	}
}

// ──────────────────────────────────────────────────
// Expiry auditing
// ──────────────────────────────────────────────────

// AuditTemporaryPermissions removes every expired node from both the
// enduring and transient sets, emitting one NodeExpire event per removal,
// and reports whether anything was removed.
func (h *PermissionHolder) AuditTemporaryPermissions(ctx context.Context) bool {
	now := h.clock.Now()
	var expired []Node

	h.enduringMu.Lock()
	keep := make([]Node, 0, len(h.enduring))
	for _, n := range h.enduring {
		if n.HasExpired(now) {
			expired = append(expired, n)
		} else {
			keep = append(keep, n)
		}
	}
	enduringChanged := len(keep) != len(h.enduring)
	h.enduring = keep
	h.enduringMu.Unlock()
	if enduringChanged {
		h.invalidate(true)
	}

	h.transientMu.Lock()
	keepT := make([]Node, 0, len(h.transient))
	for _, n := range h.transient {
		if n.HasExpired(now) {
			expired = append(expired, n)
		} else {
			keepT = append(keepT, n)
		}
	}
	transientChanged := len(keepT) != len(h.transient)
	h.transient = keepT
	h.transientMu.Unlock()
	if transientChanged {
		h.invalidate(false)
	}

	for _, n := range expired {
		node := n
		dispatch(func() { h.events.EmitNodeExpire(ctx, h, node) })
	}

	return len(expired) > 0
}

// ──────────────────────────────────────────────────
// Group inheritance convenience
// ──────────────────────────────────────────────────

// InheritsGroup reports whether the holder inherits groupName, either
// because it IS that group (self-inheritance) or because it directly
// holds a permanent "group.<groupName>" grant matching the optional
// server/world scope.
func (h *PermissionHolder) InheritsGroup(groupName string, opts ...NodeOption) bool {
	if strings.EqualFold(groupName, h.objectName) {
		return true
	}
	probe := NewNode("group."+groupName, true, opts...)
	return h.HasPermission(probe, false) == True
}

// SetInheritGroup grants inheritance of groupName, failing with
// ErrAlreadyHeld if the holder already inherits it or if groupName names
// the holder itself.
func (h *PermissionHolder) SetInheritGroup(ctx context.Context, groupName string, opts ...NodeOption) error {
	if strings.EqualFold(groupName, h.objectName) {
		return ErrAlreadyHeld
	}
	node := NewNode("group."+groupName, true, opts...)
	if err := h.SetPermission(ctx, node); err != nil {
		return err
	}

	server, _ := node.Server()
	world, _ := node.World()
	expireAt, hasExpiry := node.Expiry()
	dispatch(func() { h.events.EmitGroupAdd(ctx, h, groupName, server, world, expireAt, hasExpiry) })
	return nil
}

// UnsetInheritGroup revokes inheritance of groupName, failing with
// ErrNotHeld if the holder does not directly hold the grant.
func (h *PermissionHolder) UnsetInheritGroup(ctx context.Context, groupName string, opts ...NodeOption) error {
	node := NewNode("group."+groupName, true, opts...)
	return h.UnsetPermission(ctx, node)
}

// GroupNames returns the lowercased names of every group this holder
// directly inherits, on any server or world.
func (h *PermissionHolder) GroupNames() []string {
	var out []string
	for _, n := range h.GetNodes() {
		if g, ok := n.GroupName(); ok {
			out = append(out, g)
		}
	}
	return out
}

// LocalGroups returns the groups this holder directly inherits that apply
// to server (server field matched as a regex, matching the legacy
// behavior this is grounded on).
func (h *PermissionHolder) LocalGroups(server string) []string {
	var out []string
	for _, n := range h.GetNodes() {
		g, ok := n.GroupName()
		if !ok || !n.ShouldApplyOnServer(server, false, true) {
			continue
		}
		out = append(out, g)
	}
	return out
}

// LocalGroupsInWorld is LocalGroups further scoped to world.
func (h *PermissionHolder) LocalGroupsInWorld(server, world string) []string {
	var out []string
	for _, n := range h.GetNodes() {
		g, ok := n.GroupName()
		if !ok || !n.ShouldApplyOnServer(server, false, true) || !n.ShouldApplyOnWorld(world, false, true) {
			continue
		}
		out = append(out, g)
	}
	return out
}
