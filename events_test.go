package nodeward

import (
	"context"
	"sync"
	"testing"
	"time"
)

// recordingSink is a test EventSink that records every emission under a
// mutex, so assertions can run after dispatch's goroutine has had a chance
// to deliver them.
type recordingSink struct {
	mu      sync.Mutex
	sets    []Node
	unsets  []Node
	expires []Node
	adds    int
	removes int
}

var _ EventSink = (*recordingSink)(nil)

func (s *recordingSink) EmitNodeSet(_ context.Context, _ *PermissionHolder, n Node) {
	s.mu.Lock()
	s.sets = append(s.sets, n)
	s.mu.Unlock()
}

func (s *recordingSink) EmitNodeUnset(_ context.Context, _ *PermissionHolder, n Node) {
	s.mu.Lock()
	s.unsets = append(s.unsets, n)
	s.mu.Unlock()
}

func (s *recordingSink) EmitNodeExpire(_ context.Context, _ *PermissionHolder, n Node) {
	s.mu.Lock()
	s.expires = append(s.expires, n)
	s.mu.Unlock()
}

func (s *recordingSink) EmitGroupAdd(_ context.Context, _ *PermissionHolder, _, _, _ string, _ time.Time, _ bool) {
	s.mu.Lock()
	s.adds++
	s.mu.Unlock()
}

func (s *recordingSink) EmitGroupRemove(_ context.Context, _ *PermissionHolder, _, _, _ string, _ bool) {
	s.mu.Lock()
	s.removes++
	s.mu.Unlock()
}

func (s *recordingSink) expireCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.expires)
}

// wait polls until at least n expire events have been recorded, or fails
// the test after a short deadline. Events are dispatched on their own
// goroutine (spec.md §5), so tests observing them must not assume they
// land synchronously.
func (s *recordingSink) wait(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if s.expireCount() >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d expire events, got %d", n, s.expireCount())
}
