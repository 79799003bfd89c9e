package las

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// rotateOp rotates the point's (axis1, axis2) coordinate pair by
// angleDeg around (cx, cy), via a gonum 2x2 rotation matrix (spec
// §4.4's rotate_xy/rotate_xz, grounded on SPEC_FULL.md §1's gonum
// wiring for rotation-matrix math).
type rotateOp struct {
	baseOp
	plane      string // "xy" or "xz"
	angleDeg   float64
	cx, cy     float64
	rot        *mat.Dense
}

// NewRotateXYOp builds `-rotate_xy angle cx cy`.
func NewRotateXYOp(angleDeg, cx, cy float64) Operation {
	return &rotateOp{plane: "xy", angleDeg: angleDeg, cx: cx, cy: cy, rot: rotationMatrix(angleDeg)}
}

// NewRotateXZOp builds `-rotate_xz angle cx cz`.
func NewRotateXZOp(angleDeg, cx, cz float64) Operation {
	return &rotateOp{plane: "xz", angleDeg: angleDeg, cx: cx, cy: cz, rot: rotationMatrix(angleDeg)}
}

func rotationMatrix(angleDeg float64) *mat.Dense {
	theta := angleDeg * math.Pi / 180
	return mat.NewDense(2, 2, []float64{
		math.Cos(theta), -math.Sin(theta),
		math.Sin(theta), math.Cos(theta),
	})
}

func (o *rotateOp) Name() string { return fmt.Sprintf("rotate_%s", o.plane) }
func (o *rotateOp) Mask() CoordinateMask {
	if o.plane == "xy" {
		return AffectsX | AffectsY
	}
	return AffectsX | AffectsZ
}

func (o *rotateOp) Apply(p *Point, q Quantizer) {
	var a, b float64
	if o.plane == "xy" {
		a, b = p.GetX(q), p.GetY(q)
	} else {
		a, b = p.GetX(q), p.GetZ(q, nil)
	}
	in := mat.NewVecDense(2, []float64{a - o.cx, b - o.cy})
	var out mat.VecDense
	out.MulVec(o.rot, in)
	newA := out.AtVec(0) + o.cx
	newB := out.AtVec(1) + o.cy

	var overflowA, overflowB bool
	if o.plane == "xy" {
		overflowA = p.SetX(newA, q)
		overflowB = p.SetY(newB, q)
	} else {
		overflowA = p.SetX(newA, q)
		overflowB = p.SetZ(newB, q)
	}
	if overflowA || overflowB {
		o.overflow++
	}
}

// ApplyPTXPose rigidly transforms (x, y, z) by a row-major 4x4 pose
// matrix (as carried in PTXProvenanceVLR.Pose), via gonum, per spec
// §4.2's requirement that a PTX scanner pose either be preserved as a
// VLR or applied to every decoded point.
func ApplyPTXPose(p *Point, q Quantizer, pose [16]float64) bool {
	m := mat.NewDense(4, 4, pose[:])
	in := mat.NewVecDense(4, []float64{p.GetX(q), p.GetY(q), p.GetZ(q, nil), 1})
	var out mat.VecDense
	out.MulVec(m, in)
	ox := p.SetX(out.AtVec(0), q)
	oy := p.SetY(out.AtVec(1), q)
	oz := p.SetZ(out.AtVec(2), q)
	return ox || oy || oz
}
