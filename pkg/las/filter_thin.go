package las

import (
	"fmt"
	"math"
)

// thinWithGridCriterion keeps only the first point encountered in each
// (step x step) XY grid cell (spec §4.3 `-thin_with_grid`). For a given
// input order the result is deterministic, since cells are keyed on a
// coordinate-derived id rather than a running counter; which point of
// a cell survives depends on arrival order.
type thinWithGridCriterion struct {
	q      Quantizer
	step   float64
	seen   map[[2]int64]bool
}

// NewThinWithGridCriterion builds a `-thin_with_grid step` criterion.
func NewThinWithGridCriterion(q Quantizer, step float64) Criterion {
	return &thinWithGridCriterion{q: q, step: step, seen: make(map[[2]int64]bool)}
}

func (c *thinWithGridCriterion) Name() string    { return "thin_with_grid" }
func (c *thinWithGridCriterion) Command() string { return fmt.Sprintf("-thin_with_grid %g", c.step) }
func (c *thinWithGridCriterion) Reset()          { c.seen = make(map[[2]int64]bool) }

func (c *thinWithGridCriterion) Drop(p *Point) bool {
	x, y := p.GetX(c.q), p.GetY(c.q)
	cell := [2]int64{int64(math.Floor(x / c.step)), int64(math.Floor(y / c.step))}
	if c.seen[cell] {
		return true
	}
	c.seen[cell] = true
	return false
}

// thinWithTimeCriterion keeps only the first point seen within each
// fixed-width GPS-time interval.
type thinWithTimeCriterion struct {
	interval float64
	seen     map[int64]bool
}

// NewThinWithTimeCriterion builds a `-thin_with_time interval` criterion.
func NewThinWithTimeCriterion(interval float64) Criterion {
	return &thinWithTimeCriterion{interval: interval, seen: make(map[int64]bool)}
}

func (c *thinWithTimeCriterion) Name() string    { return "thin_with_time" }
func (c *thinWithTimeCriterion) Command() string { return fmt.Sprintf("-thin_with_time %g", c.interval) }
func (c *thinWithTimeCriterion) Reset()          { c.seen = make(map[int64]bool) }

func (c *thinWithTimeCriterion) Drop(p *Point) bool {
	bucket := int64(math.Floor(p.GPSTime / c.interval))
	if c.seen[bucket] {
		return true
	}
	c.seen[bucket] = true
	return false
}
