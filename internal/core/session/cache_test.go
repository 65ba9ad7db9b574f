package session

import (
	"testing"
	"time"

	"github.com/solatis/renamer/internal/types"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func TestCache_SetGet(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	c := newCache(time.Minute, clock.now)

	item := &types.Item{TypeID: 35, Damage: 14, Amount: 1}
	c.Set("alice", "default", item)
	item.Damage = 0

	sel, ok := c.Get("alice")
	if !ok {
		t.Fatal("Get(alice) missing")
	}
	if sel.Pack != "default" {
		t.Errorf("Pack = %q, want default", sel.Pack)
	}
	if sel.Item.Damage != 14 {
		t.Errorf("Damage = %d, want 14 (stored copy)", sel.Item.Damage)
	}

	sel.Item.Damage = 3
	again, _ := c.Get("alice")
	if again.Item.Damage != 14 {
		t.Errorf("Damage = %d, want 14 (returned copy)", again.Item.Damage)
	}

	if _, ok := c.Get("bob"); ok {
		t.Error("Get(bob) found a selection")
	}
}

func TestCache_Expiry(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	c := newCache(time.Minute, clock.now)
	c.Set("alice", "default", &types.Item{TypeID: 1})

	clock.t = clock.t.Add(59 * time.Second)
	if _, ok := c.Get("alice"); !ok {
		t.Error("selection expired early")
	}

	clock.t = clock.t.Add(2 * time.Second)
	if _, ok := c.Get("alice"); ok {
		t.Error("expired selection returned")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d before cleanup, want 1", c.Len())
	}
	c.cleanup()
	if c.Len() != 0 {
		t.Errorf("Len() = %d after cleanup, want 0", c.Len())
	}
}

func TestCache_DeleteAndStop(t *testing.T) {
	c := NewCache(time.Minute)
	defer c.Stop()

	c.Set("alice", "default", &types.Item{TypeID: 1})
	c.Delete("alice")
	if _, ok := c.Get("alice"); ok {
		t.Error("deleted selection returned")
	}
	c.Stop()
}
