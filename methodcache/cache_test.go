package methodcache

import "testing"

func TestLookupMissThenPopulateThenHit(t *testing.T) {
	c := NewCache()
	if _, ok := c.Lookup("inc", 1); ok {
		t.Fatalf("expected miss before population")
	}
	c.Populate("inc", 1, "Counter.inc")
	ref, ok := c.Lookup("inc", 1)
	if !ok || ref != "Counter.inc" {
		t.Fatalf("expected hit after population, got ref=%v ok=%v", ref, ok)
	}
}

func TestMonomorphicWarmup(t *testing.T) {
	c := NewCache()
	c.Populate("inc", 1, "Counter.inc")
	for i := 0; i < 999; i++ {
		c.Lookup("inc", 1)
	}
	entries := c.Entries("inc")
	if len(entries) != 1 {
		t.Fatalf("expected exactly one entry after warm-up, got %d", len(entries))
	}
	if entries[0].ClassID != 1 || entries[0].HitCount < 1 {
		t.Fatalf("expected class 1 with a positive hit count, got %+v", entries[0])
	}
}

func TestInvalidateClassRemovesOnlyThatClass(t *testing.T) {
	c := NewCache()
	c.Populate("inc", 1, "Counter.inc")
	c.Populate("inc", 2, "OtherCounter.inc")

	c.InvalidateClass(1)

	if _, ok := c.Lookup("inc", 1); ok {
		t.Fatalf("expected class 1 entry gone after invalidation")
	}
	if _, ok := c.Lookup("inc", 2); !ok {
		t.Fatalf("expected class 2 entry to survive invalidation of class 1")
	}
}

func TestPopulateEvictsLeastFrequentlyHitOnOverflow(t *testing.T) {
	c := NewCache()
	for classID := uint32(1); classID <= MaxEntriesPerName; classID++ {
		c.Populate("m", classID, classID)
	}
	// Hit every entry except class 2, so it becomes the LFU victim.
	for classID := uint32(1); classID <= MaxEntriesPerName; classID++ {
		if classID == 2 {
			continue
		}
		c.Lookup("m", classID)
		c.Lookup("m", classID)
	}

	c.Populate("m", MaxEntriesPerName+1, "new")

	if _, ok := c.Lookup("m", 2); ok {
		t.Fatalf("expected the least-frequently-hit entry (class 2) to be evicted")
	}
	if _, ok := c.Lookup("m", MaxEntriesPerName+1); !ok {
		t.Fatalf("expected the newly populated entry to be present")
	}
	if len(c.Entries("m")) != MaxEntriesPerName {
		t.Fatalf("expected bucket to stay at capacity %d, got %d", MaxEntriesPerName, len(c.Entries("m")))
	}
}

func TestClearAll(t *testing.T) {
	c := NewCache()
	c.Populate("inc", 1, "Counter.inc")
	c.ClearAll()
	if _, ok := c.Lookup("inc", 1); ok {
		t.Fatalf("expected ClearAll to drop every entry")
	}
}
