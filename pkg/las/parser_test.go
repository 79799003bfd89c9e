package las

import "testing"

func TestParseArgsInputPaths(t *testing.T) {
	cmd, err := ParseArgs([]string{"-i", "a.las", "-i", "b.las"})
	if err != nil {
		t.Fatal(err)
	}
	if len(cmd.InputPaths) != 2 || cmd.InputPaths[0] != "a.las" || cmd.InputPaths[1] != "b.las" {
		t.Errorf("InputPaths = %v, want [a.las b.las]", cmd.InputPaths)
	}
}

func TestParseArgsKeepClassAccumulatesDigits(t *testing.T) {
	cmd, err := ParseArgs([]string{"-i", "a.las", "-keep_class", "2", "6", "9", "-stored"})
	if err != nil {
		t.Fatal(err)
	}
	if !cmd.Options.Store {
		t.Error("-stored flag should have been parsed after the accumulated -keep_class digits")
	}
	// the accumulated criterion itself is opaque from here; exercise it
	// through FilterChain.Drop to confirm the accumulated values stuck.
	p := &Point{Classification: 6}
	if cmd.Options.Filters.Drop(p) {
		t.Error("class 6 should survive -keep_class 2 6 9")
	}
	p2 := &Point{Classification: 3}
	if !cmd.Options.Filters.Drop(p2) {
		t.Error("class 3 should be dropped by -keep_class 2 6 9")
	}
}

func TestParseArgsRescaleAndReoffset(t *testing.T) {
	cmd, err := ParseArgs([]string{"-i", "a.las", "-rescale", "0.01", "0.01", "0.01", "-reoffset", "100", "200", "0"})
	if err != nil {
		t.Fatal(err)
	}
	if cmd.Options.Rescale == nil {
		t.Fatal("expected Rescale to be set")
	}
	if cmd.Options.Rescale.ScaleX != 0.01 || cmd.Options.Rescale.OffsetX != 100 {
		t.Errorf("Rescale = %+v, want ScaleX=0.01 OffsetX=100", cmd.Options.Rescale)
	}
}

func TestParseArgsUnknownTokenIsFatal(t *testing.T) {
	_, err := ParseArgs([]string{"-i", "a.las", "-not_a_real_flag"})
	if err == nil {
		t.Fatal("expected a ParseError for an unrecognized token")
	}
	if _, ok := err.(*ParseError); !ok {
		t.Errorf("error type = %T, want *ParseError", err)
	}
}

func TestParseArgsTransformChain(t *testing.T) {
	cmd, err := ParseArgs([]string{"-i", "a.las", "-translate_x", "10", "-classify_as", "2"})
	if err != nil {
		t.Fatal(err)
	}
	p := &Point{Classification: 9}
	cmd.Options.Transforms.Apply(p, NewQuantizer(0.001, 0.001, 0.001, 0, 0, 0))
	if p.GetClassification() != 2 {
		t.Errorf("classification after -classify_as 2 = %d, want 2", p.GetClassification())
	}
}
