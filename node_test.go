package nodeward

import (
	"testing"
	"time"
)

func TestNewNodeDefaults(t *testing.T) {
	n := NewNode("command.fly", true)
	if n.Permission() != "command.fly" {
		t.Fatalf("got permission %q", n.Permission())
	}
	if !n.Value() {
		t.Fatal("expected value true")
	}
	if _, ok := n.Server(); ok {
		t.Fatal("expected no server scope by default")
	}
	if !n.IsPermanent() {
		t.Fatal("expected a node built without WithExpiry to be permanent")
	}
}

func TestNodeHasExpired(t *testing.T) {
	past := NewNode("feature.beta", true, WithExpiry(time.Now().Add(-time.Hour)))
	future := NewNode("feature.beta", true, WithExpiry(time.Now().Add(time.Hour)))
	now := time.Now()

	if !past.HasExpired(now) {
		t.Fatal("expected past expiry to report expired")
	}
	if future.HasExpired(now) {
		t.Fatal("expected future expiry to report not expired")
	}
	permanent := NewNode("feature.beta", true)
	if permanent.HasExpired(now) {
		t.Fatal("expected a permanent node to never expire")
	}
}

func TestNodeGroupName(t *testing.T) {
	n := NewNode("group.admin", true)
	name, ok := n.GroupName()
	if !ok || name != "admin" {
		t.Fatalf("got (%q, %v)", name, ok)
	}

	if NewNode("command.fly", true).IsGroupNode() {
		t.Fatal("expected a non-group permission to not be a group node")
	}
	if _, ok := NewNode("group.", true).GroupName(); ok {
		t.Fatal("expected an empty group name segment to be rejected")
	}
}

func TestNodeMeta(t *testing.T) {
	n := NewNode("meta.rank.vip", true)
	if !n.IsMeta() {
		t.Fatal("expected meta.rank.vip to be a meta node")
	}
	key, _ := n.MetaKey()
	val, _ := n.MetaValue()
	if key != "rank" || val != "vip" {
		t.Fatalf("got key=%q val=%q", key, val)
	}

	dotted := NewNode("meta.url.https://example.com/path", true)
	_, val2 := dotted.MetaValue()
	_ = val2
	v, _ := dotted.MetaValue()
	if v != "https://example.com/path" {
		t.Fatalf("expected dotted meta value to be rejoined, got %q", v)
	}
}

func TestNodePrefixSuffix(t *testing.T) {
	p := NewNode("prefix.10.[Admin]", true)
	if !p.IsPrefix() {
		t.Fatal("expected prefix.10.[Admin] to be a prefix node")
	}
	s := NewNode("suffix.5.[VIP]", true)
	if !s.IsSuffix() {
		t.Fatal("expected suffix.5.[VIP] to be a suffix node")
	}
	bad := NewNode("prefix.notanumber.[Admin]", true)
	if bad.IsPrefix() {
		t.Fatal("expected a non-numeric priority segment to disqualify a prefix node")
	}
}

func TestAlmostEqualsIgnoresExpiryInstant(t *testing.T) {
	a := NewNode("command.fly", true, WithExpiry(time.Now().Add(time.Hour)))
	b := NewNode("command.fly", true, WithExpiry(time.Now().Add(24*time.Hour)))
	if !a.AlmostEquals(b) {
		t.Fatal("expected almostEquals to ignore the exact expiry instant")
	}

	c := NewNode("command.fly", false, WithExpiry(time.Now().Add(time.Hour)))
	if a.AlmostEquals(c) {
		t.Fatal("expected almostEquals to distinguish differing values")
	}
}

func TestEqualsIgnoringValueOrTemp(t *testing.T) {
	a := NewNode("command.fly", true)
	b := NewNode("command.fly", false, WithExpiry(time.Now().Add(time.Hour)))
	if !a.EqualsIgnoringValueOrTemp(b) {
		t.Fatal("expected equalsIgnoringValueOrTemp to ignore value and temporariness")
	}

	c := NewNode("command.fly", true, WithServer("survival"))
	if a.EqualsIgnoringValueOrTemp(c) {
		t.Fatal("expected differing server scope to break equalsIgnoringValueOrTemp")
	}
}

func TestShouldApplyOnServer(t *testing.T) {
	global := NewNode("command.fly", true)
	if !global.ShouldApplyOnServer("survival", true, false) {
		t.Fatal("expected a global node to apply when includeGlobal is true")
	}
	if global.ShouldApplyOnServer("survival", false, false) {
		t.Fatal("expected a global node to not apply when includeGlobal is false")
	}

	scoped := NewNode("command.fly", true, WithServer("survival"))
	if !scoped.ShouldApplyOnServer("survival", false, false) {
		t.Fatal("expected exact server match to apply")
	}
	if scoped.ShouldApplyOnServer("creative", false, false) {
		t.Fatal("expected mismatched server to not apply")
	}

	regexScoped := NewNode("command.fly", true, WithServer("survival.*"))
	if !regexScoped.ShouldApplyOnServer("survival-2", false, true) {
		t.Fatal("expected regex server matching to apply")
	}
}

func TestShouldApplyWithContext(t *testing.T) {
	// "world" is a reserved key stripped by WithContext (it is tracked
	// separately via Node.World), so this must use an ordinary tag.
	required := NewNode("command.fly", true, WithContext(NewContextSet(ContextPair{Key: "region", Value: "nether"})))
	supplied := NewContextSet(ContextPair{Key: "region", Value: "nether"})
	if !required.ShouldApplyWithContext(supplied, false) {
		t.Fatal("expected satisfied context requirement to apply")
	}
	if required.ShouldApplyWithContext(NewContextSet(), false) {
		t.Fatal("expected unsatisfied context requirement to not apply")
	}
}

func TestResolveShorthand(t *testing.T) {
	n := NewNode("build.(create|destroy)", true)
	got := n.ResolveShorthand()
	want := map[string]bool{"build.create": true, "build.destroy": true}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for _, p := range got {
		if !want[p] {
			t.Fatalf("unexpected expansion %q", p)
		}
	}

	if NewNode("build.create", true).ResolveShorthand() != nil {
		t.Fatal("expected a plain permission to have no shorthand expansion")
	}
}

func TestResolveShorthandMultipleSegments(t *testing.T) {
	n := NewNode("(build|mine).(create|destroy)", true)
	got := n.ResolveShorthand()
	if len(got) != 4 {
		t.Fatalf("expected 4 combinations, got %v", got)
	}
}

func TestSerializedNodeRoundTrip(t *testing.T) {
	cases := []Node{
		NewNode("command.fly", true),
		NewNode("command.fly", false, WithServer("survival")),
		NewNode("command.fly", true, WithServer("survival"), WithWorld("overworld")),
		NewNode("command.fly", true, WithContext(NewContextSet(ContextPair{Key: "region", Value: "spawn"}))),
		NewNode("command.fly", true, WithExpiry(time.Unix(1_700_000_000, 0))),
		// Shorthand permissions carry literal parentheses, which would
		// collide with the "(context)" block delimiters if not escaped.
		NewNode("build.(create|destroy)", true),
		NewNode("build.(create|destroy)", true, WithServer("survival"), WithWorld("overworld"),
			WithContext(NewContextSet(ContextPair{Key: "region", Value: "spawn"}))),
		// A hyphenated server name must not be misparsed as "server-world".
		NewNode("command.fly", true, WithServer("us-east")),
		NewNode("command.fly", true, WithServer("us-east"), WithWorld("overworld")),
		// An explicit server literally named "global" must stay scoped,
		// distinct from a node with no server at all.
		NewNode("command.fly", true, WithServer("global")),
		// Context keys/values containing the block's own delimiters.
		NewNode("command.fly", true, WithContext(NewContextSet(ContextPair{Key: "a=b", Value: "c,d"}))),
	}
	for _, n := range cases {
		key := n.ToSerializedNode()
		got, err := ParseSerializedNode(key, n.Value())
		if err != nil {
			t.Fatalf("ParseSerializedNode(%q): %v", key, err)
		}
		if !nodeExactEqual(got, n) {
			t.Fatalf("round trip mismatch: got %+v, want %+v (key %q)", got, n, key)
		}
	}
}

func TestSerializedNodeExplicitGlobalServerDistinctFromAbsent(t *testing.T) {
	explicit := NewNode("command.fly", true, WithServer("global"))
	absent := NewNode("command.fly", true)

	if explicit.ToSerializedNode() == absent.ToSerializedNode() {
		t.Fatalf("expected an explicit server named %q to serialize differently from no server at all", "global")
	}

	got, err := ParseSerializedNode(explicit.ToSerializedNode(), true)
	if err != nil {
		t.Fatal(err)
	}
	if server, ok := got.Server(); !ok || server != "global" {
		t.Fatalf("expected server scope %q to survive round trip, got (%q, %v)", "global", server, ok)
	}
}

func TestSerializedNodeHyphenatedServerNotMisparsedAsWorld(t *testing.T) {
	n := NewNode("command.fly", true, WithServer("us-east"))
	got, err := ParseSerializedNode(n.ToSerializedNode(), true)
	if err != nil {
		t.Fatal(err)
	}
	server, hasServer := got.Server()
	if !hasServer || server != "us-east" {
		t.Fatalf("expected server %q, got (%q, %v)", "us-east", server, hasServer)
	}
	if _, hasWorld := got.World(); hasWorld {
		t.Fatal("expected no world to be introduced by a hyphen in the server name")
	}
}

func TestSerializedNodeShorthandPermissionRoundTrips(t *testing.T) {
	n := NewNode("build.(create|destroy)", true)
	key := n.ToSerializedNode()
	got, err := ParseSerializedNode(key, true)
	if err != nil {
		t.Fatalf("ParseSerializedNode(%q): %v", key, err)
	}
	if got.Permission() != "build.(create|destroy)" {
		t.Fatalf("got permission %q", got.Permission())
	}
	// The round-tripped node must still expand the same way.
	shorthand := got.ResolveShorthand()
	if len(shorthand) != 2 {
		t.Fatalf("expected shorthand expansion to survive round trip, got %v", shorthand)
	}
}

func TestExportToLegacy(t *testing.T) {
	nodes := []Node{
		NewNode("command.fly", true),
		NewNode("command.build", false),
	}
	m := ExportToLegacy(nodes)
	if len(m) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(m))
	}
	keys := sortedNodeKeys(m)
	if len(keys) != 2 {
		t.Fatalf("expected 2 sorted keys, got %v", keys)
	}
}

func TestParseSerializedNodeBadExpiry(t *testing.T) {
	if _, err := ParseSerializedNode("command.fly$notanumber", true); err == nil {
		t.Fatal("expected an error for a non-numeric expiry suffix")
	}
}
