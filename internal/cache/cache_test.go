package cache

import (
	"bytes"
	"fmt"
	"sync"
	"testing"
	"time"
)

type memoryDurable struct {
	mu     sync.Mutex
	values map[string][]byte
	gets   int
}

func newMemoryDurable() *memoryDurable {
	return &memoryDurable{values: make(map[string][]byte)}
}

func (m *memoryDurable) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memoryDurable) Set(key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func TestSetGetRoundTrip(t *testing.T) {
	c := New()
	want := []byte(`{"success":true}`)
	if err := c.Set("t1/flow1", want); err != nil {
		t.Fatal(err)
	}
	got, ok := c.Get("t1/flow1")
	if !ok {
		t.Fatal("expected hit")
	}
	if !bytes.Equal(got, want) {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestFIFOEvictionIsInsertionOrder(t *testing.T) {
	c := New(WithMaxEntries(3))
	for i := 1; i <= 3; i++ {
		c.Set(fmt.Sprintf("k%d", i), []byte{byte(i)})
	}
	// Re-reading k1 must not protect it; insertion order, not access order.
	if _, ok := c.Get("k1"); !ok {
		t.Fatal("k1 should be present before eviction")
	}
	c.Set("k4", []byte{4})

	if _, ok := c.Get("k1"); ok {
		t.Error("k1 should have been evicted first despite recent access")
	}
	for _, k := range []string{"k2", "k3", "k4"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("%s should survive eviction", k)
		}
	}
	if c.Len() != 3 {
		t.Errorf("len = %d, want 3", c.Len())
	}
}

func TestDurableFallThroughAndRepopulate(t *testing.T) {
	durable := newMemoryDurable()
	c := New(WithMaxEntries(1), WithDurableStore(durable))

	want := []byte(`{"success":true,"workflow_id":"wf1"}`)
	if err := c.Set("t1/wf1", want); err != nil {
		t.Fatal(err)
	}
	// Force eviction of the memory copy.
	c.Set("t1/wf2", []byte(`{}`))
	if c.Len() != 1 {
		t.Fatalf("len = %d, want 1", c.Len())
	}

	got, ok := c.Get("t1/wf1")
	if !ok {
		t.Fatal("durable fall-through should hit")
	}
	if !bytes.Equal(got, want) {
		t.Errorf("durable copy differs: got %s, want %s", got, want)
	}

	// Second read is served from the repopulated memory copy.
	before := durable.gets
	if _, ok := c.Get("t1/wf1"); !ok {
		t.Fatal("repopulated entry should hit")
	}
	if durable.gets != before {
		t.Error("second read should not touch the durable store")
	}
}

func TestExpiredEntryMisses(t *testing.T) {
	now := time.Now()
	c := New(WithTTL(time.Hour))
	c.now = func() time.Time { return now }

	c.Set("k", []byte("v"))
	now = now.Add(2 * time.Hour)

	if _, ok := c.Get("k"); ok {
		t.Error("expired entry should miss")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry should be removed, len = %d", c.Len())
	}
}
