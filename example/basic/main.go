// Command basic demonstrates wiring together a PermissionHolder,
// InheritanceResolver, GroupRegistry, and EventSink: a user inherits from
// a group, holds a server-specific override, and a temporary grant that
// has already expired.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/nodeward"
	"github.com/xraph/nodeward/eventsink"
	"github.com/xraph/nodeward/registry"
)

func main() {
	ctx := context.Background()
	groups := registry.New()

	admin := nodeward.NewPermissionHolder("admin", nodeward.HolderGroup)
	must(admin.SetPermission(ctx, nodeward.NewNode("command.reload", true)))
	must(admin.SetPermission(ctx, nodeward.NewNode("build.(create|destroy)", true)))
	groups.Register(admin)

	sink := eventsink.NewLogSink(slog.Default())
	user := nodeward.NewPermissionHolder(nodeward.NewUserObjectName(), nodeward.HolderUser, nodeward.WithEventSink(sink))

	must(user.SetInheritGroup(ctx, "admin"))
	must(user.SetPermission(ctx, nodeward.NewNode("command.reload", false, nodeward.WithServer("lobby"))))
	must(user.SetPermission(ctx, nodeward.NewNode("feature.beta", true, nodeward.WithExpiry(time.Now().Add(-time.Minute)))))

	resolver := nodeward.DefaultInheritanceResolver(groups, nodeward.Config{ApplyingShorthand: true})

	exported, err := resolver.ExportNodes(ctx, user, nodeward.AllowAllContexts(), false)
	must(err)

	fmt.Println("effective permissions:")
	for permission, value := range exported {
		fmt.Printf("  %s = %t\n", permission, value)
	}

	fmt.Println()
	fmt.Println("command.reload on lobby:", user.HasPermissionValue("command.reload", false, nodeward.WithServer("lobby")))
	fmt.Println("feature.beta (expired):", user.HasPermissionValue("feature.beta", true))

	if removed := user.AuditTemporaryPermissions(ctx); removed {
		fmt.Println("audit removed the expired feature.beta grant")
	}
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
