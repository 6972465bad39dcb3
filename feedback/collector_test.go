package feedback

import (
	"testing"

	"github.com/holovm/enginevm/values"
)

func TestEncodeDecodeSiteID(t *testing.T) {
	site := EncodeSiteID(42, CategoryMethodCall)
	ip, cat := DecodeSiteID(site)
	if ip != 42 || cat != CategoryMethodCall {
		t.Fatalf("round-trip mismatch: ip=%d cat=%v", ip, cat)
	}
}

func TestObserveMonomorphic(t *testing.T) {
	c := NewCollector()
	site := EncodeSiteID(10, CategoryCall)
	c.Observe(site, values.TypeInt)
	c.Observe(site, values.TypeInt)

	snap, ok := c.Snapshot(site)
	if !ok {
		t.Fatalf("expected a snapshot for an observed site")
	}
	if !snap.IsMonomorphic() {
		t.Fatalf("expected monomorphic snapshot, got %+v", snap)
	}
	if snap.Counts[0] != 2 {
		t.Fatalf("expected count 2, got %d", snap.Counts[0])
	}
}

func TestHistogramOverflowGoesMegamorphic(t *testing.T) {
	c := NewCollector()
	site := EncodeSiteID(1, CategoryPropertyAccess)
	c.Observe(site, values.TypeInt)
	c.Observe(site, values.TypeFloat)
	c.Observe(site, values.TypeString)
	c.Observe(site, values.TypeBool)
	c.Observe(site, values.TypeArray) // 5th distinct tag overflows 4 slots

	snap, _ := c.Snapshot(site)
	if !snap.Megamorphic {
		t.Fatalf("expected megamorphic sentinel after 5 distinct tags")
	}
}

func TestCheckTypeGuardMissClearsHistogramAndCountsDeopt(t *testing.T) {
	c := NewCollector()
	site := EncodeSiteID(5, CategoryTypeGuard)

	ok := c.CheckTypeGuard(site, values.NewInt(1), values.TypeInt)
	if !ok {
		t.Fatalf("expected matching guard to report true")
	}
	if c.DeoptCount() != 0 {
		t.Fatalf("expected no deopt on a matching guard")
	}

	ok = c.CheckTypeGuard(site, values.NewString("x"), values.TypeInt)
	if ok {
		t.Fatalf("expected mismatched guard to report false")
	}
	if c.DeoptCount() != 1 {
		t.Fatalf("expected one deopt recorded, got %d", c.DeoptCount())
	}

	snap, ok := c.Snapshot(site)
	if !ok {
		t.Fatalf("expected the site to still be tracked after a miss")
	}
	if len(snap.Tags) != 0 {
		t.Fatalf("expected histogram cleared after a guard miss, got %+v", snap)
	}
}
