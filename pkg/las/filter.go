package las

import (
	"fmt"

	"github.com/samber/lo"
)

// Criterion is one filter predicate: Drop reports whether point
// should be removed from the stream. Implementations with internal
// state (e.g. scan-direction-change tracking) implement Reset.
type Criterion interface {
	Name() string
	Drop(p *Point) bool
	Command() string
	Reset()
}

// FilterChain is an ordered vector of Criterion; a point survives iff
// no criterion returns true, with short-circuit evaluation on the
// first true (spec §4.3).
type FilterChain struct {
	criteria []Criterion
	dropCounts []uint64
}

// Add appends a criterion to the chain.
func (c *FilterChain) Add(crit Criterion) {
	c.criteria = append(c.criteria, crit)
	c.dropCounts = append(c.dropCounts, 0)
}

// Drop evaluates the chain against p, short-circuiting on the first
// criterion that returns true and incrementing that criterion's
// per-criterion drop counter.
func (c *FilterChain) Drop(p *Point) bool {
	for i, crit := range c.criteria {
		if crit.Drop(p) {
			c.dropCounts[i]++
			return true
		}
	}
	return false
}

// Reset clears all stateful criteria (scan-direction-change tracking
// and similar).
func (c *FilterChain) Reset() {
	for _, crit := range c.criteria {
		crit.Reset()
	}
}

// DropCounts returns a name->count map of how many points each
// criterion dropped, for end-of-run reporting.
func (c *FilterChain) DropCounts() map[string]uint64 {
	return lo.Associate(c.criteria, func(crit Criterion) (string, uint64) {
		idx := lo.IndexOf(c.criteria, crit)
		return crit.Name(), c.dropCounts[idx]
	})
}

// Commands returns the canonical argv form of every installed
// criterion, in chain order.
func (c *FilterChain) Commands() []string {
	return lo.Map(c.criteria, func(crit Criterion, _ int) string { return crit.Command() })
}

// --- Coordinate window criteria ---

type rangeCriterion struct {
	name        string
	min, max    float64
	get         func(p *Point) float64
	keep        bool // true = drop outside [min,max]; false = drop inside
}

func (r *rangeCriterion) Name() string { return r.name }
func (r *rangeCriterion) Reset()       {}
func (r *rangeCriterion) Command() string {
	verb := "keep"
	if !r.keep {
		verb = "drop"
	}
	return fmt.Sprintf("-%s_%s %g %g", verb, r.name, r.min, r.max)
}
func (r *rangeCriterion) Drop(p *Point) bool {
	v := r.get(p)
	inside := v >= r.min && v <= r.max
	if r.keep {
		return !inside
	}
	return inside
}

func newAxisCriterion(name string, min, max float64, get func(p *Point) float64, keep bool) Criterion {
	return &rangeCriterion{name: name, min: min, max: max, get: get, keep: keep}
}

// NewKeepXCriterion, ..., build the raw-integer and real-valued
// coordinate window criteria (spec §4.3's "raw X/Y/Z integers and
// real x/y/z" pairing). Quantizer q is captured for the real-valued
// variants.
func NewKeepRawXCriterion(min, max int32) Criterion {
	return newAxisCriterion("raw_x", float64(min), float64(max), func(p *Point) float64 { return float64(p.X) }, true)
}
func NewKeepRawYCriterion(min, max int32) Criterion {
	return newAxisCriterion("raw_y", float64(min), float64(max), func(p *Point) float64 { return float64(p.Y) }, true)
}
func NewKeepRawZCriterion(min, max int32) Criterion {
	return newAxisCriterion("raw_z", float64(min), float64(max), func(p *Point) float64 { return float64(p.Z) }, true)
}

func NewKeepXCriterion(q Quantizer, min, max float64) Criterion {
	return newAxisCriterion("x", min, max, func(p *Point) float64 { return p.GetX(q) }, true)
}
func NewKeepYCriterion(q Quantizer, min, max float64) Criterion {
	return newAxisCriterion("y", min, max, func(p *Point) float64 { return p.GetY(q) }, true)
}
func NewKeepZCriterion(q Quantizer, min, max float64) Criterion {
	return newAxisCriterion("z", min, max, func(p *Point) float64 { return p.GetZ(q, nil) }, true)
}

// NewKeepTileCriterion keeps points within an (ll, size) square tile.
func NewKeepTileCriterion(q Quantizer, llx, lly, size float64) Criterion {
	return &rectCriterion{name: "tile", q: q, minX: llx, minY: lly, maxX: llx + size, maxY: lly + size, keep: true}
}

// NewKeepCircleCriterion keeps points within radius r of (cx, cy).
func NewKeepCircleCriterion(q Quantizer, cx, cy, r float64) Criterion {
	return &circleCriterion{q: q, cx: cx, cy: cy, r: r, keep: true}
}

// NewKeepRectangleCriterion keeps points within a 2D axis-aligned
// rectangle.
func NewKeepRectangleCriterion(q Quantizer, minX, minY, maxX, maxY float64) Criterion {
	return &rectCriterion{name: "rectangle", q: q, minX: minX, minY: minY, maxX: maxX, maxY: maxY, keep: true}
}

// NewKeepBoxCriterion keeps points within a 3D axis-aligned box.
func NewKeepBoxCriterion(q Quantizer, minX, minY, minZ, maxX, maxY, maxZ float64) Criterion {
	return &boxCriterion{q: q, minX: minX, minY: minY, minZ: minZ, maxX: maxX, maxY: maxY, maxZ: maxZ, keep: true}
}

type rectCriterion struct {
	name                   string
	q                      Quantizer
	minX, minY, maxX, maxY float64
	keep                   bool
}

func (r *rectCriterion) Name() string { return r.name }
func (r *rectCriterion) Reset()       {}
func (r *rectCriterion) Command() string {
	return fmt.Sprintf("-keep_%s %g %g %g %g", r.name, r.minX, r.minY, r.maxX, r.maxY)
}
func (r *rectCriterion) Drop(p *Point) bool {
	x, y := p.GetX(r.q), p.GetY(r.q)
	inside := x >= r.minX && x <= r.maxX && y >= r.minY && y <= r.maxY
	if r.keep {
		return !inside
	}
	return inside
}

type circleCriterion struct {
	q          Quantizer
	cx, cy, r  float64
	keep       bool
}

func (c *circleCriterion) Name() string { return "circle" }
func (c *circleCriterion) Reset()       {}
func (c *circleCriterion) Command() string {
	return fmt.Sprintf("-keep_circle %g %g %g", c.cx, c.cy, c.r)
}
func (c *circleCriterion) Drop(p *Point) bool {
	x, y := p.GetX(c.q), p.GetY(c.q)
	dx, dy := x-c.cx, y-c.cy
	inside := dx*dx+dy*dy <= c.r*c.r
	if c.keep {
		return !inside
	}
	return inside
}

type boxCriterion struct {
	q                                   Quantizer
	minX, minY, minZ, maxX, maxY, maxZ  float64
	keep                                bool
}

func (b *boxCriterion) Name() string { return "box" }
func (b *boxCriterion) Reset()       {}
func (b *boxCriterion) Command() string {
	return fmt.Sprintf("-keep_box %g %g %g %g %g %g", b.minX, b.minY, b.minZ, b.maxX, b.maxY, b.maxZ)
}
func (b *boxCriterion) Drop(p *Point) bool {
	x, y, z := p.GetX(b.q), p.GetY(b.q), p.GetZ(b.q, nil)
	inside := x >= b.minX && x <= b.maxX && y >= b.minY && y <= b.maxY && z >= b.minZ && z <= b.maxZ
	if b.keep {
		return !inside
	}
	return inside
}

// --- Return arithmetic ---

type returnClassCriterion struct {
	class string
	keep  bool
}

func (r *returnClassCriterion) Name() string { return r.class }
func (r *returnClassCriterion) Reset()       {}
func (r *returnClassCriterion) Command() string {
	verb := "keep"
	if !r.keep {
		verb = "drop"
	}
	return fmt.Sprintf("-%s_%s", verb, r.class)
}
func (r *returnClassCriterion) Drop(p *Point) bool {
	rn, nor := p.GetReturnNumber(), p.GetNumberOfReturns()
	var matches bool
	switch r.class {
	case "first":
		matches = rn == 1
	case "last":
		matches = rn == nor
	case "middle":
		matches = rn != 1 && rn != nor
	case "first_of_many":
		matches = rn == 1 && nor > 1
	case "last_of_many":
		matches = rn == nor && nor > 1
	}
	if r.keep {
		return !matches
	}
	return matches
}

// NewKeepFirstOnlyCriterion, etc. build the named return-class
// criteria (spec §4.3).
func NewKeepFirstOnlyCriterion() Criterion     { return &returnClassCriterion{class: "first", keep: true} }
func NewKeepLastOnlyCriterion() Criterion      { return &returnClassCriterion{class: "last", keep: true} }
func NewDropFirstOnlyCriterion() Criterion     { return &returnClassCriterion{class: "first", keep: false} }
func NewDropLastOnlyCriterion() Criterion      { return &returnClassCriterion{class: "last", keep: false} }
func NewKeepMiddleReturnsCriterion() Criterion { return &returnClassCriterion{class: "middle", keep: true} }

// --- Flags ---

type scanDirectionCriterion struct{ direction uint8 }

func (c *scanDirectionCriterion) Name() string    { return "scan_direction" }
func (c *scanDirectionCriterion) Reset()          {}
func (c *scanDirectionCriterion) Command() string { return fmt.Sprintf("-keep_scan_direction %d", c.direction) }
func (c *scanDirectionCriterion) Drop(p *Point) bool { return p.ScanDirection != c.direction }

func NewKeepScanDirectionCriterion(direction uint8) Criterion {
	return &scanDirectionCriterion{direction: direction}
}

// scanDirectionChangeCriterion is stateful: it keeps a point only when
// its scan direction differs from the previous point's, resettable
// between files.
type scanDirectionChangeCriterion struct {
	havePrev bool
	prev     uint8
}

func (c *scanDirectionChangeCriterion) Name() string    { return "scan_direction_change" }
func (c *scanDirectionChangeCriterion) Command() string { return "-keep_scan_direction_change" }
func (c *scanDirectionChangeCriterion) Reset()          { c.havePrev = false }
func (c *scanDirectionChangeCriterion) Drop(p *Point) bool {
	changed := c.havePrev && p.ScanDirection != c.prev
	c.prev, c.havePrev = p.ScanDirection, true
	return !changed
}

func NewKeepScanDirectionChangeCriterion() Criterion { return &scanDirectionChangeCriterion{} }

type boolFlagCriterion struct {
	name string
	get  func(p *Point) bool
	keep bool
}

func (c *boolFlagCriterion) Name() string { return c.name }
func (c *boolFlagCriterion) Reset()       {}
func (c *boolFlagCriterion) Command() string {
	verb := "keep"
	if !c.keep {
		verb = "drop"
	}
	return fmt.Sprintf("-%s_%s", verb, c.name)
}
func (c *boolFlagCriterion) Drop(p *Point) bool {
	v := c.get(p)
	if c.keep {
		return !v
	}
	return v
}

func NewDropSyntheticCriterion() Criterion {
	return &boolFlagCriterion{name: "synthetic", get: func(p *Point) bool { return p.Synthetic }, keep: false}
}
func NewDropKeypointCriterion() Criterion {
	return &boolFlagCriterion{name: "keypoint", get: func(p *Point) bool { return p.KeyPoint }, keep: false}
}
func NewDropWithheldCriterion() Criterion {
	return &boolFlagCriterion{name: "withheld", get: func(p *Point) bool { return p.Withheld }, keep: false}
}
func NewDropOverlapCriterion() Criterion {
	return &boolFlagCriterion{name: "overlap", get: func(p *Point) bool { return p.ExtClassificationFlags&ExtFlagOverlap != 0 }, keep: false}
}

// --- Scalar-range families shared by intensity/scan-angle/classification/user-data/point-source/gps-time ---

type scalarCriterion struct {
	name     string
	min, max float64
	mode     string // "range", "above", "below", "between", "abs_above"
	get      func(p *Point) float64
}

func (c *scalarCriterion) Name() string { return fmt.Sprintf("%s_%s", c.name, c.mode) }
func (c *scalarCriterion) Reset()       {}
func (c *scalarCriterion) Command() string {
	switch c.mode {
	case "above":
		return fmt.Sprintf("-keep_%s_above %g", c.name, c.min)
	case "below":
		return fmt.Sprintf("-keep_%s_below %g", c.name, c.max)
	case "abs_above":
		return fmt.Sprintf("-keep_%s_abs_above %g", c.name, c.max)
	default:
		return fmt.Sprintf("-keep_%s %g %g", c.name, c.min, c.max)
	}
}
func (c *scalarCriterion) Drop(p *Point) bool {
	v := c.get(p)
	switch c.mode {
	case "above":
		return v <= c.min
	case "below":
		return v >= c.max
	case "abs_above":
		return v > -c.max && v < c.max
	default:
		return v < c.min || v > c.max
	}
}

func newScalarCriterion(name, mode string, min, max float64, get func(p *Point) float64) Criterion {
	return &scalarCriterion{name: name, min: min, max: max, mode: mode, get: get}
}

func NewKeepIntensityCriterion(min, max float64) Criterion {
	return newScalarCriterion("intensity", "range", min, max, func(p *Point) float64 { return float64(p.Intensity) })
}
func NewKeepIntensityAboveCriterion(min float64) Criterion {
	return newScalarCriterion("intensity", "above", min, 0, func(p *Point) float64 { return float64(p.Intensity) })
}
func NewKeepIntensityBelowCriterion(max float64) Criterion {
	return newScalarCriterion("intensity", "below", 0, max, func(p *Point) float64 { return float64(p.Intensity) })
}
func NewKeepScanAngleCriterion(min, max float64) Criterion {
	return newScalarCriterion("scan_angle", "range", min, max, func(p *Point) float64 { return p.GetScanAngle() })
}
func NewKeepScanAngleAbsAboveCriterion(threshold float64) Criterion {
	return newScalarCriterion("scan_angle", "abs_above", 0, threshold, func(p *Point) float64 { return p.GetScanAngle() })
}
func NewKeepClassificationCriterion(min, max float64) Criterion {
	return newScalarCriterion("classification", "range", min, max, func(p *Point) float64 { return float64(p.GetClassification()) })
}
func NewKeepUserDataCriterion(min, max float64) Criterion {
	return newScalarCriterion("user_data", "range", min, max, func(p *Point) float64 { return float64(p.UserData) })
}
func NewKeepPointSourceCriterion(min, max float64) Criterion {
	return newScalarCriterion("point_source", "range", min, max, func(p *Point) float64 { return float64(p.PointSourceID) })
}
func NewKeepGPSTimeCriterion(min, max float64) Criterion {
	return newScalarCriterion("gps_time", "range", min, max, func(p *Point) float64 { return p.GPSTime })
}
