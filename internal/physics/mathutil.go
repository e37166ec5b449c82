package physics

import (
	"math"

	"github.com/riftforged/gameserver/internal/wire"
)

// Vector and quaternion helpers, grounded 1:1 on
// original_source/Utils/MathUtil.h: client-local +Y is forward, +X is
// right, +Z is up, and quaternion composition/rotation follow the same
// Hamilton-product convention.
const (
	degToRad = math.Pi / 180
	vectorNormalizationEpsilon = 0.00001
)

func vecAdd(a, b wire.Vec3) wire.Vec3 {
	return wire.Vec3{X: a.X + b.X, Y: a.Y + b.Y, Z: a.Z + b.Z}
}

func vecSub(a, b wire.Vec3) wire.Vec3 {
	return wire.Vec3{X: a.X - b.X, Y: a.Y - b.Y, Z: a.Z - b.Z}
}

func vecScale(v wire.Vec3, s float32) wire.Vec3 {
	return wire.Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

func vecDot(a, b wire.Vec3) float32 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

func vecMagnitude(v wire.Vec3) float32 {
	return float32(math.Sqrt(float64(vecDot(v, v))))
}

func vecNormalize(v wire.Vec3) wire.Vec3 {
	magSq := vecDot(v, v)
	if magSq > vectorNormalizationEpsilon*vectorNormalizationEpsilon {
		mag := float32(math.Sqrt(float64(magSq)))
		return wire.Vec3{X: v.X / mag, Y: v.Y / mag, Z: v.Z / mag}
	}
	return wire.Vec3{}
}

func distanceSquared(a, b wire.Vec3) float32 {
	d := vecSub(a, b)
	return vecDot(d, d)
}

func quatNormalize(q wire.Quat) wire.Quat {
	magSq := q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W
	if magSq > vectorNormalizationEpsilon*vectorNormalizationEpsilon {
		mag := float32(math.Sqrt(float64(magSq)))
		return wire.Quat{X: q.X / mag, Y: q.Y / mag, Z: q.Z / mag, W: q.W / mag}
	}
	return wire.Quat{W: 1}
}

// quatFromAngleAxisDegrees builds a rotation quaternion from an axis-angle
// pair, angle in degrees.
func quatFromAngleAxisDegrees(angleDegrees float32, axis wire.Vec3) wire.Quat {
	halfAngle := float64(angleDegrees) * degToRad / 2
	s := float32(math.Sin(halfAngle))
	norm := vecNormalize(axis)
	return wire.Quat{X: norm.X * s, Y: norm.Y * s, Z: norm.Z * s, W: float32(math.Cos(halfAngle))}
}

// quatMultiply composes q1 then q2: the result applies q2's rotation
// first, then q1's — matching MultiplyQuaternions(q1, q2) in the original.
func quatMultiply(q1, q2 wire.Quat) wire.Quat {
	return wire.Quat{
		X: q1.W*q2.X + q1.X*q2.W + q1.Y*q2.Z - q1.Z*q2.Y,
		Y: q1.W*q2.Y - q1.X*q2.Z + q1.Y*q2.W + q1.Z*q2.X,
		Z: q1.W*q2.Z + q1.X*q2.Y - q1.Y*q2.X + q1.Z*q2.W,
		W: q1.W*q2.W - q1.X*q2.X - q1.Y*q2.Y - q1.Z*q2.Z,
	}
}

func quatConjugate(q wire.Quat) wire.Quat {
	return wire.Quat{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

// Normalize returns v scaled to unit length, or the zero vector if v is too
// small to normalize safely.
func Normalize(v wire.Vec3) wire.Vec3 { return vecNormalize(v) }

// Scale returns v scaled by s.
func Scale(v wire.Vec3, s float32) wire.Vec3 { return vecScale(v, s) }

// Add returns a + b.
func Add(a, b wire.Vec3) wire.Vec3 { return vecAdd(a, b) }

// RotateVectorByQuat rotates v by orientation q.
func RotateVectorByQuat(v wire.Vec3, q wire.Quat) wire.Vec3 {
	p := wire.Quat{X: v.X, Y: v.Y, Z: v.Z, W: 0}
	result := quatMultiply(quatMultiply(q, p), quatConjugate(q))
	return wire.Vec3{X: result.X, Y: result.Y, Z: result.Z}
}

// WorldForward returns the world-space forward vector for an orientation:
// client-local +Y rotated into world space.
func WorldForward(orientation wire.Quat) wire.Vec3 {
	return RotateVectorByQuat(wire.Vec3{Y: 1}, orientation)
}

// WorldRight returns the world-space right vector: client-local +X.
func WorldRight(orientation wire.Quat) wire.Vec3 {
	return RotateVectorByQuat(wire.Vec3{X: 1}, orientation)
}

// WorldUp returns the world-space up vector: client-local +Z.
func WorldUp(orientation wire.Quat) wire.Vec3 {
	return RotateVectorByQuat(wire.Vec3{Z: 1}, orientation)
}

// YawQuatDegrees builds a yaw rotation around world-up (+Z), the quaternion
// TurnIntent composes against the player's current orientation.
func YawQuatDegrees(deltaDegrees float32) wire.Quat {
	return quatFromAngleAxisDegrees(deltaDegrees, wire.Vec3{Z: 1})
}

// ComposeOrientation applies delta on top of current, normalizing the
// result: orientation ← normalize(delta · current).
func ComposeOrientation(current, delta wire.Quat) wire.Quat {
	return quatNormalize(quatMultiply(delta, current))
}
