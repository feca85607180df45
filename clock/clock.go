// Package clock supplies nodeward.Clock implementations.
package clock

import (
	"time"

	"github.com/xraph/nodeward"
)

type real struct{}

func (real) Now() time.Time { return time.Now() }

// Real returns a Clock backed by the system wall clock.
func Real() nodeward.Clock { return real{} }

type fixed struct{ t time.Time }

func (f fixed) Now() time.Time { return f.t }

// Fixed returns a Clock that always reports t, for deterministic tests of
// expiry-sensitive code.
func Fixed(t time.Time) nodeward.Clock { return fixed{t: t} }
