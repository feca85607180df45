package nodeward

import (
	"context"
	"log/slog"
	"sort"
	"strings"
)

// InheritanceResolver performs the transitive, cycle-safe, context-filtered
// walk over a holder's group graph described in spec.md §4.4.
type InheritanceResolver interface {
	// GetAllNodes returns the holder's own merged permissions plus every
	// node inherited transitively through its group nodes, subject to
	// excludedGroups and the context filter. excludedGroups is read-only:
	// the resolver copies it on entry and never mutates the caller's
	// slice, even though the legacy source it is grounded on did.
	GetAllNodes(ctx context.Context, holder *PermissionHolder, excludedGroups []string, c Contexts) ([]LocalizedNode, error)

	// GetAllNodesFiltered applies context filtering (and, if c.ApplyGroups,
	// inheritance) and then reduces to one entry per permission string,
	// "first permission wins" in priority order.
	GetAllNodesFiltered(ctx context.Context, holder *PermissionHolder, c Contexts) ([]LocalizedNode, error)

	// ExportNodes renders GetAllNodesFiltered into the permission -> bool
	// map callers ultimately consume, expanding shorthand permissions
	// when the resolver's Config enables it.
	ExportNodes(ctx context.Context, holder *PermissionHolder, c Contexts, lowerCase bool) (map[string]bool, error)

	// InheritsPermissionInfo walks holder's full transitive inheritance
	// graph under AllowAllContexts and reports the first node that
	// almostEquals probe, together with the holder or group that
	// contributed it. Unlike PermissionHolder.InheritsGroup, a direct,
	// non-transitive lookup against the enduring set, this descends the
	// whole graph: a holder inherits admin's permissions even without
	// directly holding group.admin, as long as group.admin is reachable
	// through some chain of group nodes.
	InheritsPermissionInfo(ctx context.Context, holder *PermissionHolder, probe Node) (PermissionInheritanceInfo, error)

	// InheritsPermission is the Tristate-only convenience form of
	// InheritsPermissionInfo.
	InheritsPermission(ctx context.Context, holder *PermissionHolder, probe Node) (Tristate, error)
}

// PermissionInheritanceInfo pairs the Tristate result of a transitive
// InheritsPermissionInfo lookup with the LocalizedNode that produced it.
// Found is false when no node anywhere in the graph almostEquals the
// probe, in which case Result is Undefined and Node is the zero value.
type PermissionInheritanceInfo struct {
	Result Tristate
	Node   LocalizedNode
	Found  bool
}

type resolverConfig struct {
	cfg    Config
	logger *slog.Logger
}

// DefaultInheritanceResolver returns the standard InheritanceResolver,
// backed by registry for parent-group lookups.
func DefaultInheritanceResolver(registry GroupRegistry, cfg Config, opts ...ResolverOption) InheritanceResolver {
	rc := resolverConfig{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(&rc)
	}
	return &defaultResolver{registry: registry, cfg: rc.cfg, logger: rc.logger}
}

type defaultResolver struct {
	registry GroupRegistry
	cfg      Config
	logger   *slog.Logger
}

func (r *defaultResolver) GetAllNodes(ctx context.Context, holder *PermissionHolder, excludedGroups []string, c Contexts) ([]LocalizedNode, error) {
	excluded := append([]string(nil), excludedGroups...)
	return r.walk(ctx, holder, excluded, c, 0)
}

func (r *defaultResolver) walk(ctx context.Context, holder *PermissionHolder, excludedGroups []string, c Contexts, depth int) ([]LocalizedNode, error) {
	all := append([]LocalizedNode(nil), holder.GetPermissions(true)...)

	if r.cfg.MaxGraphDepth > 0 && depth >= r.cfg.MaxGraphDepth {
		r.logger.Debug("nodeward: inheritance depth backstop reached", slog.String("holder", holder.ObjectName()), slog.Int("depth", depth))
		return all, nil
	}

	excluded := append(append([]string(nil), excludedGroups...), strings.ToLower(holder.ObjectName()))

	server, _, world, _, rest := c.serverWorld()

	var parents []Node
	for _, ln := range all {
		n := ln.Node
		if !n.Value() || !n.IsGroupNode() {
			continue
		}
		if !n.ShouldApplyOnServer(server, c.ApplyGlobalGroups, r.cfg.ApplyingRegex) {
			continue
		}
		if !n.ShouldApplyOnWorld(world, c.ApplyGlobalWorldGroups, r.cfg.ApplyingRegex) {
			continue
		}
		if !n.ShouldApplyWithContext(rest, false) {
			continue
		}
		parents = append(parents, n)
	}

	for _, parent := range parents {
		groupName, _ := parent.GroupName()

		group, ok := r.registry.GetGroup(ctx, groupName)
		if !ok {
			r.logger.Debug("nodeward: unknown group skipped during inheritance", slog.String("group", groupName))
			continue
		}
		if containsFold(excluded, group.ObjectName()) {
			r.logger.Debug("nodeward: inheritance cycle avoided", slog.String("group", groupName))
			continue
		}

		inherited, err := r.walk(ctx, group, excluded, c, depth+1)
		if err != nil {
			return nil, err
		}

		for _, in := range inherited {
			if !containsAlmostEqual(all, in.Node) {
				all = append(all, in)
			}
		}
	}

	sort.SliceStable(all, func(i, j int) bool { return ComparePriority(all[i].Node, all[j].Node) < 0 })
	return all, nil
}

func containsFold(names []string, name string) bool {
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

func containsAlmostEqual(nodes []LocalizedNode, n Node) bool {
	for _, ln := range nodes {
		if almostEquals(ln.Node, n) {
			return true
		}
	}
	return false
}

func (r *defaultResolver) GetAllNodesFiltered(ctx context.Context, holder *PermissionHolder, c Contexts) ([]LocalizedNode, error) {
	var all []LocalizedNode
	if c.ApplyGroups {
		nodes, err := r.GetAllNodes(ctx, holder, nil, c)
		if err != nil {
			return nil, err
		}
		all = nodes
	} else {
		all = holder.GetPermissions(true)
	}

	server, _, world, _, rest := c.serverWorld()

	filtered := make([]LocalizedNode, 0, len(all))
	for _, ln := range all {
		n := ln.Node
		if !n.ShouldApplyOnServer(server, c.IncludeGlobal, r.cfg.ApplyingRegex) {
			continue
		}
		if !n.ShouldApplyOnWorld(world, c.IncludeGlobalWorld, r.cfg.ApplyingRegex) {
			continue
		}
		if !n.ShouldApplyWithContext(rest, false) {
			continue
		}
		filtered = append(filtered, ln)
	}

	sort.SliceStable(filtered, func(i, j int) bool { return ComparePriority(filtered[i].Node, filtered[j].Node) < 0 })

	out := make([]LocalizedNode, 0, len(filtered))
	for _, ln := range filtered {
		if containsPermission(out, ln.Node.Permission()) {
			continue
		}
		out = append(out, ln)
	}
	return out, nil
}

func (r *defaultResolver) InheritsPermissionInfo(ctx context.Context, holder *PermissionHolder, probe Node) (PermissionInheritanceInfo, error) {
	all, err := r.GetAllNodes(ctx, holder, nil, AllowAllContexts())
	if err != nil {
		return PermissionInheritanceInfo{}, err
	}
	for _, ln := range all {
		if almostEquals(ln.Node, probe) {
			return PermissionInheritanceInfo{Result: TristateFromBool(ln.Node.Value()), Node: ln, Found: true}, nil
		}
	}
	return PermissionInheritanceInfo{Result: Undefined}, nil
}

func (r *defaultResolver) InheritsPermission(ctx context.Context, holder *PermissionHolder, probe Node) (Tristate, error) {
	info, err := r.InheritsPermissionInfo(ctx, holder, probe)
	if err != nil {
		return Undefined, err
	}
	return info.Result, nil
}

func containsPermission(nodes []LocalizedNode, permission string) bool {
	for _, ln := range nodes {
		if ln.Node.Permission() == permission {
			return true
		}
	}
	return false
}

func (r *defaultResolver) ExportNodes(ctx context.Context, holder *PermissionHolder, c Contexts, lowerCase bool) (map[string]bool, error) {
	filtered, err := r.GetAllNodesFiltered(ctx, holder, c)
	if err != nil {
		return nil, err
	}

	perms := make(map[string]bool, len(filtered))
	for _, ln := range filtered {
		n := ln.Node
		key := n.Permission()
		if lowerCase {
			key = strings.ToLower(key)
		}
		perms[key] = n.Value()

		if !r.cfg.ApplyingShorthand {
			continue
		}
		for _, sh := range n.ResolveShorthand() {
			if lowerCase {
				sh = strings.ToLower(sh)
			}
			if _, exists := perms[sh]; !exists {
				perms[sh] = n.Value()
			}
		}
	}
	return perms, nil
}
