package geom

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r2"
)

// FrameID is a human-readable coordinate frame identifier.
type FrameID string

// DefaultFrame is the frame every planned waypoint is expressed in.
const DefaultFrame FrameID = "map"

// ColocationTolerance is the per-axis distance (metres) under which two
// positions are treated as the same point: 100 float32 machine epsilons.
const ColocationTolerance = 100.0 * float32Epsilon

// float32Epsilon is FLT_EPSILON, the gap between 1.0 and the next float32.
const float32Epsilon = 1.1920928955078125e-07

// Pose is a world-frame position plus orientation.
type Pose struct {
	Frame       FrameID
	Position    r2.Vec
	Orientation quat.Number
}

// NewPose builds a pose at (x, y) rotated yaw radians about the vertical axis.
func NewPose(frame FrameID, x, y, yaw float64) Pose {
	return Pose{
		Frame:       frame,
		Position:    r2.Vec{X: x, Y: y},
		Orientation: QuaternionFromYaw(yaw),
	}
}

// WithYaw returns a copy of p facing yaw.
func (p Pose) WithYaw(yaw float64) Pose {
	p.Orientation = QuaternionFromYaw(yaw)
	return p
}

// QuaternionFromYaw returns the unit quaternion for a rotation of yaw radians
// about the z axis.
func QuaternionFromYaw(yaw float64) quat.Number {
	half := yaw / 2
	return quat.Number{Real: math.Cos(half), Kmag: math.Sin(half)}
}

// RotationAngle returns the magnitude of the rotation q represents, in
// [0, 2π]. It is not a signed yaw: a rotation of -π/2 about z reports π/2.
// A zero quaternion is treated as the identity.
func RotationAngle(q quat.Number) float64 {
	n := quat.Abs(q)
	if n == 0 {
		return 0
	}
	w := q.Real / n
	if w > 1 {
		w = 1
	} else if w < -1 {
		w = -1
	}
	return 2 * math.Acos(w)
}

// Yaw returns the signed rotation of q about the z axis in (-π, π].
func Yaw(q quat.Number) float64 {
	n := quat.Abs(q)
	if n == 0 {
		return 0
	}
	q = quat.Scale(1/n, q)
	sinyCosp := 2 * (q.Real*q.Kmag + q.Imag*q.Jmag)
	cosyCosp := 1 - 2*(q.Jmag*q.Jmag+q.Kmag*q.Kmag)
	return math.Atan2(sinyCosp, cosyCosp)
}

// NormalizeAngle wraps a into [0, 2π).
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// Colocated reports whether a and b are within tol of each other on both axes.
func Colocated(a, b r2.Vec, tol float64) bool {
	d := r2.Sub(b, a)
	return math.Abs(d.X) < tol && math.Abs(d.Y) < tol
}

// HeadingTo returns the angle of the vector pointing from a to b.
func HeadingTo(a, b r2.Vec) float64 {
	d := r2.Sub(b, a)
	return math.Atan2(d.Y, d.X)
}
