package las

import "testing"

func quantizerForTransformTests() Quantizer {
	return NewQuantizer(0.001, 0.001, 0.001, 0, 0, 0)
}

func TestTranslateOpShiftsAxis(t *testing.T) {
	q := quantizerForTransformTests()
	p := &Point{}
	p.SetX(10, q)

	chain := &TransformChain{}
	chain.Add(NewTranslateXOp(5))
	chain.Apply(p, q)

	if got := p.GetX(q); got < 14.999 || got > 15.001 {
		t.Errorf("GetX() = %v, want ~15", got)
	}
	if chain.Mask()&AffectsX == 0 {
		t.Error("Mask() should report AffectsX after a translate_x op")
	}
}

func TestClampOpSaturatesAtBound(t *testing.T) {
	q := quantizerForTransformTests()
	p := &Point{}
	p.SetZ(500, q)

	op := NewClampZOp(0, 100)
	chain := &TransformChain{}
	chain.Add(op)
	chain.Apply(p, q)

	if got := p.GetZ(q, nil); got != 100 {
		t.Errorf("GetZ() after clamp = %v, want 100", got)
	}
}

func TestScaleIntensityOpSaturatesAtMax(t *testing.T) {
	p := &Point{Intensity: 60000}
	op := NewScaleIntensityOp(2.0)
	chain := &TransformChain{}
	chain.Add(op)
	chain.Apply(p, quantizerForTransformTests())

	if p.Intensity != 65535 {
		t.Errorf("Intensity = %d, want 65535 (saturated)", p.Intensity)
	}
	if chain.OverflowCounts()["scale_intensity"] != 1 {
		t.Errorf("scale_intensity overflow count = %d, want 1", chain.OverflowCounts()["scale_intensity"])
	}
}

func TestChangeClassificationFromTo(t *testing.T) {
	p := &Point{}
	p.SetClassification(2)
	op := NewChangeClassificationFromToOp(2, 9)
	op.Apply(p, quantizerForTransformTests())
	if p.GetClassification() != 9 {
		t.Errorf("classification = %d, want 9", p.GetClassification())
	}

	// A non-matching "from" leaves the point untouched.
	op2 := NewChangeClassificationFromToOp(2, 99)
	op2.Apply(p, quantizerForTransformTests())
	if p.GetClassification() != 9 {
		t.Errorf("classification = %d, want unchanged 9", p.GetClassification())
	}
}

func TestSwitchRGBOps(t *testing.T) {
	p := &Point{RGB: [3]uint16{10, 20, 30}}
	NewSwitchXYOp().Apply(p, quantizerForTransformTests())
	if p.RGB != [3]uint16{20, 10, 30} {
		t.Errorf("RGB after switch_x_y = %v, want [20 10 30]", p.RGB)
	}
}

func TestRepairZeroReturnsFillsInDefaults(t *testing.T) {
	p := &Point{}
	p.SetReturns(0, 0)
	NewRepairZeroReturnsOp().Apply(p, quantizerForTransformTests())
	if p.GetReturnNumber() != 1 || p.GetNumberOfReturns() != 1 {
		t.Errorf("returns after repair = (%d,%d), want (1,1)", p.GetReturnNumber(), p.GetNumberOfReturns())
	}
}

func TestRotateXYAroundCenter90Degrees(t *testing.T) {
	q := quantizerForTransformTests()
	p := &Point{}
	p.SetX(10, q)
	p.SetY(0, q)

	NewRotateXYOp(90, 0, 0).Apply(p, q)

	x, y := p.GetX(q), p.GetY(q)
	if x < -0.01 || x > 0.01 {
		t.Errorf("GetX() after 90deg rotate = %v, want ~0", x)
	}
	if y < 9.99 || y > 10.01 {
		t.Errorf("GetY() after 90deg rotate = %v, want ~10", y)
	}
}

func TestApplyPTXPoseIdentityLeavesPointUnchanged(t *testing.T) {
	q := quantizerForTransformTests()
	p := &Point{}
	p.SetX(1, q)
	p.SetY(2, q)
	p.SetZ(3, q)

	identity := [16]float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
	ApplyPTXPose(p, q, identity)

	if x := p.GetX(q); x < 0.99 || x > 1.01 {
		t.Errorf("GetX() after identity pose = %v, want ~1", x)
	}
	if z := p.GetZ(q, nil); z < 2.99 || z > 3.01 {
		t.Errorf("GetZ() after identity pose = %v, want ~3", z)
	}
}

func TestFilteredChainSkipsDroppedPoints(t *testing.T) {
	chain := &TransformChain{}
	chain.Add(NewClassifyAsOp(7))
	filter := &FilterChain{}
	filter.Add(NewKeepClassificationCriterion(2, 2))

	p := &Point{}
	p.SetClassification(9) // filter drops anything but class 2
	fc := NewFilteredChain(chain, filter)
	fc.Apply(p, quantizerForTransformTests())

	if p.GetClassification() != 9 {
		t.Errorf("classification = %d, want unchanged 9 (transform should be skipped)", p.GetClassification())
	}
}
