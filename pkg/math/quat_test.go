package math

import (
	gomath "math"
	"testing"
)

const quatEps = 1e-9

func quatNear(a, b Quat, eps float64) bool {
	// q and -q represent the same rotation.
	if a.Dot(b) < 0 {
		b = Quat{X: -b.X, Y: -b.Y, Z: -b.Z, W: -b.W}
	}
	return gomath.Abs(a.X-b.X) < eps &&
		gomath.Abs(a.Y-b.Y) < eps &&
		gomath.Abs(a.Z-b.Z) < eps &&
		gomath.Abs(a.W-b.W) < eps
}

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("identity = %+v, want (0,0,0,1)", q)
	}
}

func TestQuatFromAxisAngle(t *testing.T) {
	// 90 degrees around Z.
	q := QuatFromAxisAngle(Vec3{Z: 1}, gomath.Pi/2)
	want := Quat{X: 0, Y: 0, Z: gomath.Sqrt2 / 2, W: gomath.Sqrt2 / 2}
	if !quatNear(q, want, 1e-12) {
		t.Errorf("got %+v, want %+v", q, want)
	}
}

func TestQuatNormalize(t *testing.T) {
	tests := []struct {
		name string
		q    Quat
	}{
		{"unnormalized", Quat{X: 2, Y: 0, Z: 0, W: 2}},
		{"already unit", QuatIdentity()},
		{"negative components", Quat{X: -1, Y: 3, Z: -2, W: 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := tt.q.Normalize()
			length := gomath.Sqrt(n.Dot(n))
			if gomath.Abs(length-1) > quatEps {
				t.Errorf("normalized length = %v, want 1", length)
			}
		})
	}
}

func TestQuatNormalize_Degenerate(t *testing.T) {
	n := Quat{}.Normalize()
	if !quatNear(n, QuatIdentity(), quatEps) {
		t.Errorf("zero quaternion normalized to %+v, want identity", n)
	}
}

func TestQuatEulerRoundTrip(t *testing.T) {
	deg := gomath.Pi / 180
	tests := []struct {
		name    string
		x, y, z float64
	}{
		{"zero", 0, 0, 0},
		{"x only", 30 * deg, 0, 0},
		{"y only", 0, 45 * deg, 0},
		{"z only", 0, 0, 60 * deg},
		{"combined", 10 * deg, 20 * deg, 30 * deg},
		{"negative", -15 * deg, -75 * deg, 120 * deg},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := QuatFromEulerXYZ(tt.x, tt.y, tt.z)
			x, y, z := q.EulerXYZ()
			q2 := QuatFromEulerXYZ(x, y, z)
			if !quatNear(q, q2, 1e-9) {
				t.Errorf("round trip: %+v -> (%v,%v,%v) -> %+v", q, x, y, z, q2)
			}
		})
	}
}

func TestQuatMul_Identity(t *testing.T) {
	q := QuatFromEulerXYZ(0.3, -0.2, 0.9)
	if got := q.Mul(QuatIdentity()); !quatNear(got, q, quatEps) {
		t.Errorf("q * identity = %+v, want %+v", got, q)
	}
	if got := QuatIdentity().Mul(q); !quatNear(got, q, quatEps) {
		t.Errorf("identity * q = %+v, want %+v", got, q)
	}
}
