package las

import "testing"

func TestFilterChainKeepClassificationDrops(t *testing.T) {
	var chain FilterChain
	chain.Add(NewKeepClassificationCriterion(2, 2))

	ground := &Point{Classification: 2}
	veg := &Point{Classification: 5}

	if chain.Drop(ground) {
		t.Error("ground point (class 2) should survive a keep_class=2 filter")
	}
	if !chain.Drop(veg) {
		t.Error("vegetation point (class 5) should be dropped by a keep_class=2 filter")
	}

	counts := chain.DropCounts()
	if counts["classification_range"] != 1 {
		t.Errorf("drop count = %v, want classification_range: 1", counts)
	}
}

func TestFilterChainShortCircuits(t *testing.T) {
	var chain FilterChain
	chain.Add(NewKeepClassificationCriterion(2, 2))
	chain.Add(NewKeepIntensityCriterion(100, 200))

	// Dropped by the first criterion; the second should never see it,
	// so only the first criterion's counter increments.
	p := &Point{Classification: 9, Intensity: 150}
	if !chain.Drop(p) {
		t.Fatal("expected drop")
	}
	counts := chain.DropCounts()
	if counts["classification_range"] != 1 {
		t.Errorf("classification_range count = %d, want 1", counts["classification_range"])
	}
	if counts["intensity_range"] != 0 {
		t.Errorf("intensity_range count = %d, want 0 (short-circuited)", counts["intensity_range"])
	}
}

func TestFilterChainFirstLastOnly(t *testing.T) {
	var keepFirst FilterChain
	keepFirst.Add(NewKeepFirstOnlyCriterion())

	first := &Point{}
	first.SetReturns(1, 3)
	middle := &Point{}
	middle.SetReturns(2, 3)

	if keepFirst.Drop(first) {
		t.Error("first return should survive -first_only")
	}
	if !keepFirst.Drop(middle) {
		t.Error("middle return should be dropped by -first_only")
	}
}

func TestBitmaskAccumulatorTwoPass(t *testing.T) {
	var acc BitmaskAccumulator
	for _, tok := range []string{"2", "3", "5"} {
		if !acc.Accept(tok) {
			t.Fatalf("Accept(%q) = false, want true", tok)
		}
	}
	got := acc.Values()
	want := []int{2, 3, 5}
	if len(got) != len(want) {
		t.Fatalf("Values() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Values()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestKeepClassCriterionBitmask(t *testing.T) {
	crit := NewKeepClassCriterion([]int{2, 6})
	keep2 := &Point{Classification: 2}
	keep6 := &Point{Classification: 6}
	drop5 := &Point{Classification: 5}

	if crit.Drop(keep2) || crit.Drop(keep6) {
		t.Error("classes 2 and 6 should survive -keep_class 2 6")
	}
	if !crit.Drop(drop5) {
		t.Error("class 5 should be dropped by -keep_class 2 6")
	}
}
