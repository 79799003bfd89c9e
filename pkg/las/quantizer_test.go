package las

import "testing"

func TestQuantizerRoundTrip(t *testing.T) {
	q := NewQuantizer(0.001, 0.001, 0.001, 100.0, 200.0, 0.0)
	cases := []float64{100.123, 199.999, -50.5005, 0.0}
	for _, real := range cases {
		raw, overflow := ClampInt32(q.FromX(real))
		if overflow {
			t.Fatalf("unexpected overflow for %v", real)
		}
		got := q.ToX(raw)
		if diff := got - real; diff > 0.0005 || diff < -0.0005 {
			t.Errorf("ToX(FromX(%v)) = %v, want within 0.0005", real, got)
		}
	}
}

func TestQuantizerHalfAwayFromZero(t *testing.T) {
	q := NewQuantizer(1, 1, 1, 0, 0, 0)
	if got := q.FromX(2.5); got != 3 {
		t.Errorf("FromX(2.5) = %d, want 3 (ties away from zero)", got)
	}
	if got := q.FromX(-2.5); got != -3 {
		t.Errorf("FromX(-2.5) = %d, want -3 (ties away from zero)", got)
	}
}

func TestClampInt32Saturates(t *testing.T) {
	v, overflow := ClampInt32(1 << 40)
	if !overflow || v != 1<<31-1 {
		t.Errorf("ClampInt32(huge) = (%d, %v), want (MaxInt32, true)", v, overflow)
	}
	v, overflow = ClampInt32(-(1 << 40))
	if !overflow || v != -(1 << 31) {
		t.Errorf("ClampInt32(-huge) = (%d, %v), want (MinInt32, true)", v, overflow)
	}
	v, overflow = ClampInt32(42)
	if overflow || v != 42 {
		t.Errorf("ClampInt32(42) = (%d, %v), want (42, false)", v, overflow)
	}
}
