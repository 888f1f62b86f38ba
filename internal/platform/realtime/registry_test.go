package realtime

import (
	"sort"
	"sync"
	"testing"
)

func newIdleSession() *Session {
	return NewSession(&fakeConn{})
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	s := newIdleSession()

	if displaced := r.Register("alice", s); displaced != nil {
		t.Fatal("first register should displace nothing")
	}
	if r.Lookup("alice") != s {
		t.Fatal("lookup should return the registered session")
	}
	if r.Count() != 1 {
		t.Fatalf("expected 1 connected user, got %d", r.Count())
	}
}

func TestRegistry_LastWriterWins(t *testing.T) {
	r := NewRegistry()
	first := newIdleSession()
	second := newIdleSession()

	r.Register("alice", first)
	displaced := r.Register("alice", second)

	if displaced != first {
		t.Fatal("registering again should return the displaced session")
	}
	if r.Lookup("alice") != second {
		t.Fatal("the newer session must win")
	}
	if r.Count() != 1 {
		t.Fatalf("expected a single entry, got %d", r.Count())
	}
}

func TestRegistry_UnregisterIsHandleGuarded(t *testing.T) {
	r := NewRegistry()
	first := newIdleSession()
	second := newIdleSession()

	r.Register("alice", first)
	r.Register("alice", second)

	// The displaced session closing late must not evict its replacement.
	r.Unregister("alice", first)
	if r.Lookup("alice") != second {
		t.Fatal("stale unregister evicted the live session")
	}

	r.Unregister("alice", second)
	if r.Lookup("alice") != nil {
		t.Fatal("expected session removed")
	}
}

func TestRegistry_Usernames(t *testing.T) {
	r := NewRegistry()
	r.Register("alice", newIdleSession())
	r.Register("bob", newIdleSession())

	names := r.Usernames()
	sort.Strings(names)
	if len(names) != 2 || names[0] != "alice" || names[1] != "bob" {
		t.Fatalf("expected [alice bob], got %v", names)
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	const n = 100

	var wg sync.WaitGroup
	wg.Add(n * 2)
	for i := 0; i < n; i++ {
		name := string(rune('a' + i%26))
		s := newIdleSession()
		go func() {
			defer wg.Done()
			r.Register(name, s)
		}()
		go func() {
			defer wg.Done()
			r.Unregister(name, s)
			_ = r.Count()
		}()
	}
	wg.Wait()

	if r.Count() < 0 || r.Count() > 26 {
		t.Fatalf("inconsistent count %d", r.Count())
	}
}
