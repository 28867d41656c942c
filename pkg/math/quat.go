package math

import "math"

// Quat represents a quaternion for 3D rotations.
// Components are stored as X, Y, Z, W where W is the scalar part.
type Quat struct {
	X, Y, Z, W float64
}

// QuatIdentity returns an identity quaternion (no rotation).
func QuatIdentity() Quat {
	return Quat{X: 0, Y: 0, Z: 0, W: 1}
}

// QuatFromAxisAngle creates a quaternion from axis-angle rotation.
// axis should be normalized, angle is in radians.
func QuatFromAxisAngle(axis Vec3, angle float64) Quat {
	halfAngle := angle / 2
	s := math.Sin(halfAngle)
	return Quat{
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
		W: math.Cos(halfAngle),
	}
}

// QuatFromEulerXYZ creates a quaternion from Tait-Bryan angles in radians,
// applied in X, then Y, then Z order.
func QuatFromEulerXYZ(x, y, z float64) Quat {
	qx := QuatFromAxisAngle(Vec3{X: 1}, x)
	qy := QuatFromAxisAngle(Vec3{Y: 1}, y)
	qz := QuatFromAxisAngle(Vec3{Z: 1}, z)
	return qz.Mul(qy).Mul(qx)
}

// EulerXYZ decomposes the quaternion into Tait-Bryan angles in radians
// with X-then-Y-then-Z application order. The inverse of QuatFromEulerXYZ.
func (q Quat) EulerXYZ() (x, y, z float64) {
	q = q.Normalize()

	// Rotation matrix entries needed for the XYZ decomposition.
	m00 := 1 - 2*(q.Y*q.Y+q.Z*q.Z)
	m10 := 2 * (q.X*q.Y + q.W*q.Z)
	m20 := 2 * (q.X*q.Z - q.W*q.Y)
	m21 := 2 * (q.Y*q.Z + q.W*q.X)
	m22 := 1 - 2*(q.X*q.X+q.Y*q.Y)

	sy := -m20
	if sy > 1 {
		sy = 1
	} else if sy < -1 {
		sy = -1
	}
	y = math.Asin(sy)

	// Near gimbal lock the X and Z axes collapse; put everything on Z.
	if math.Abs(sy) > 0.999999 {
		m01 := 2 * (q.X*q.Y - q.W*q.Z)
		m11 := 1 - 2*(q.X*q.X+q.Z*q.Z)
		x = 0
		z = math.Atan2(-m01, m11)
		return x, y, z
	}

	x = math.Atan2(m21, m22)
	z = math.Atan2(m10, m00)
	return x, y, z
}

// Normalize returns a normalized quaternion.
func (q Quat) Normalize() Quat {
	length := math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if length < 1e-9 {
		return QuatIdentity()
	}
	invLen := 1.0 / length
	return Quat{
		X: q.X * invLen,
		Y: q.Y * invLen,
		Z: q.Z * invLen,
		W: q.W * invLen,
	}
}

// Dot returns the dot product of two quaternions.
func (q Quat) Dot(other Quat) float64 {
	return q.X*other.X + q.Y*other.Y + q.Z*other.Z + q.W*other.W
}

// Mul multiplies two quaternions (combines rotations).
func (q Quat) Mul(other Quat) Quat {
	return Quat{
		X: q.W*other.X + q.X*other.W + q.Y*other.Z - q.Z*other.Y,
		Y: q.W*other.Y - q.X*other.Z + q.Y*other.W + q.Z*other.X,
		Z: q.W*other.Z + q.X*other.Y - q.Y*other.X + q.Z*other.W,
		W: q.W*other.W - q.X*other.X - q.Y*other.Y - q.Z*other.Z,
	}
}
