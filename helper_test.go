package ledger

import (
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// valueComparers make cmp compare the value types by value, they all have unexported fields.
var valueComparers = cmp.Options{
	cmp.Comparer(func(a, b Money) bool { return a.Equal(b) }),
	cmp.Comparer(func(a, b Quantity) bool { return a.Equal(b) }),
	cmp.Comparer(func(a, b Date) bool { return a == b }),
}

// ignoreLastSaved drops the save stamp, which changes on every persist.
var ignoreLastSaved = cmp.FilterPath(func(p cmp.Path) bool {
	return p.Last().String() == ".LastSaved"
}, cmp.Ignore())

var testNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

// newTestStore returns a store on kv with a fixed clock and a silent logger.
func newTestStore(t *testing.T, kv KV, identity IdentityProvider) *Store {
	t.Helper()
	s := NewStore(kv, identity)
	s.now = func() time.Time { return testNow }
	s.Logger = log.New(io.Discard, "", 0)
	return s
}

var errBroken = errors.New("disk full")

// brokenKV reads from an inner KV but fails every write once broken is set.
type brokenKV struct {
	MemoryKV
	broken bool
}

func (b *brokenKV) Set(key string, value []byte) error {
	if b.broken {
		return errBroken
	}
	return b.MemoryKV.Set(key, value)
}

// fixedUser is an IdentityProvider that tests can switch.
type fixedUser struct{ user *User }

func (f *fixedUser) ActiveUser() *User { return f.user }
