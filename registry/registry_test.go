package registry

import (
	"context"
	"testing"

	"github.com/xraph/nodeward"
)

func TestRegisterAndGetGroup(t *testing.T) {
	r := New()
	admin := nodeward.NewPermissionHolder("Admin", nodeward.HolderGroup)
	r.Register(admin)

	got, ok := r.GetGroup(context.Background(), "admin")
	if !ok {
		t.Fatal("expected lookup to be case-insensitive")
	}
	if got.ObjectName() != "Admin" {
		t.Fatalf("got %q", got.ObjectName())
	}
}

func TestUnregister(t *testing.T) {
	r := New()
	r.Register(nodeward.NewPermissionHolder("admin", nodeward.HolderGroup))
	r.Unregister("admin")

	if _, ok := r.GetGroup(context.Background(), "admin"); ok {
		t.Fatal("expected group to be gone after Unregister")
	}
}

func TestNames(t *testing.T) {
	r := New()
	r.Register(nodeward.NewPermissionHolder("admin", nodeward.HolderGroup))
	r.Register(nodeward.NewPermissionHolder("builder", nodeward.HolderGroup))

	names := r.Names()
	if len(names) != 2 {
		t.Fatalf("expected 2 names, got %v", names)
	}
}

func TestGetGroupMissing(t *testing.T) {
	r := New()
	if _, ok := r.GetGroup(context.Background(), "ghost"); ok {
		t.Fatal("expected lookup of an unregistered group to fail")
	}
}
