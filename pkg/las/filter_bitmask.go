package las

import (
	"fmt"
	"strings"
)

// bitmaskCriterion keeps/drops points whose classification or return
// number has its bit set in mask (spec §4.3's "bitmask over return
// numbers"/"bitmask for classification").
type bitmaskCriterion struct {
	name string
	mask uint64
	get  func(p *Point) uint8
	keep bool
}

func (c *bitmaskCriterion) Name() string { return c.name }
func (c *bitmaskCriterion) Reset()       {}
func (c *bitmaskCriterion) Command() string {
	verb := "keep"
	if !c.keep {
		verb = "drop"
	}
	var bits []string
	for i := 0; i < 64; i++ {
		if c.mask&(1<<uint(i)) != 0 {
			bits = append(bits, fmt.Sprintf("%d", i))
		}
	}
	return fmt.Sprintf("-%s_%s %s", verb, c.name, strings.Join(bits, " "))
}
func (c *bitmaskCriterion) Drop(p *Point) bool {
	bit := uint64(1) << uint(c.get(p))
	set := c.mask&bit != 0
	if c.keep {
		return !set
	}
	return set
}

// NewKeepClassCriterion / NewDropClassCriterion build the
// classification bitmask criterion accumulated by the CommandParser's
// two-pass `-keep_class`/`-drop_class N N N...` handling.
func NewKeepClassCriterion(classes []int) Criterion {
	return &bitmaskCriterion{name: "class", mask: bitmaskFromInts(classes), get: (*Point).GetClassification, keep: true}
}
func NewDropClassCriterion(classes []int) Criterion {
	return &bitmaskCriterion{name: "class", mask: bitmaskFromInts(classes), get: (*Point).GetClassification, keep: false}
}

// NewKeepReturnCriterion / NewDropReturnCriterion build the return-
// number bitmask criterion accumulated by `-keep_return`/`-drop_return`.
func NewKeepReturnCriterion(returns []int) Criterion {
	return &bitmaskCriterion{name: "return", mask: bitmaskFromInts(returns), get: (*Point).GetReturnNumber, keep: true}
}
func NewDropReturnCriterion(returns []int) Criterion {
	return &bitmaskCriterion{name: "return", mask: bitmaskFromInts(returns), get: (*Point).GetReturnNumber, keep: false}
}

// NewKeepNumberOfReturnsCriterion keeps only points whose
// number_of_returns matches one of the given exact counts (the
// "single/double/triple/quadruple/quintuple" family of spec §4.3).
func NewKeepNumberOfReturnsCriterion(counts []int) Criterion {
	return &bitmaskCriterion{name: "number_of_returns", mask: bitmaskFromInts(counts), get: (*Point).GetNumberOfReturns, keep: true}
}

func bitmaskFromInts(vals []int) uint64 {
	var mask uint64
	for _, v := range vals {
		if v >= 0 && v < 64 {
			mask |= 1 << uint(v)
		}
	}
	return mask
}

// BitmaskAccumulator implements the CommandParser's two-pass digit
// accumulation: `-keep_class 2 6 9` collects digits until the next
// non-numeric token (spec §4.5).
type BitmaskAccumulator struct {
	values []int
}

// Accept appends tok if it parses as a non-negative integer, reporting
// whether it was consumed.
func (a *BitmaskAccumulator) Accept(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if r < '0' || r > '9' {
			return false
		}
	}
	var v int
	fmt.Sscanf(tok, "%d", &v)
	a.values = append(a.values, v)
	return true
}

// Values returns the accumulated integers.
func (a *BitmaskAccumulator) Values() []int { return a.values }
