// Package registry provides an in-memory nodeward.GroupRegistry.
package registry

import (
	"context"
	"strings"
	"sync"

	"github.com/xraph/nodeward"
)

// MapRegistry is a mutex-guarded, in-memory GroupRegistry keyed by the
// lowercased group name.
type MapRegistry struct {
	mu     sync.RWMutex
	groups map[string]*nodeward.PermissionHolder
}

// New returns an empty MapRegistry.
func New() *MapRegistry {
	return &MapRegistry{groups: make(map[string]*nodeward.PermissionHolder)}
}

// Register adds or replaces a group holder under its ObjectName, lowered.
func (r *MapRegistry) Register(group *nodeward.PermissionHolder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups[strings.ToLower(group.ObjectName())] = group
}

// Unregister removes a group holder by name.
func (r *MapRegistry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.groups, strings.ToLower(name))
}

// GetGroup implements nodeward.GroupRegistry.
func (r *MapRegistry) GetGroup(_ context.Context, name string) (*nodeward.PermissionHolder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.groups[strings.ToLower(name)]
	return g, ok
}

// Names returns every registered group name.
func (r *MapRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.groups))
	for n := range r.groups {
		names = append(names, n)
	}
	return names
}
