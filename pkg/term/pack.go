package term

import (
	"errors"

	"github.com/Faultbox/fbxbridge/pkg/math"
)

// ErrArity reports a flat sequence whose length is not a multiple of the
// expected tuple arity. Callers treat the attribute as absent rather than
// failing the surrounding operation.
var ErrArity = errors.New("flat array length is not a multiple of arity")

// PackVec2 flattens 2-component tuples into [x0, y0, x1, y1, ...].
func PackVec2(tuples []math.Vec2) []float64 {
	flat := make([]float64, 0, len(tuples)*2)
	for _, v := range tuples {
		flat = append(flat, v.X, v.Y)
	}
	return flat
}

// PackVec3 flattens 3-component tuples into [x0, y0, z0, x1, ...].
func PackVec3(tuples []math.Vec3) []float64 {
	flat := make([]float64, 0, len(tuples)*3)
	for _, v := range tuples {
		flat = append(flat, v.X, v.Y, v.Z)
	}
	return flat
}

// UnpackVec2 groups a flat sequence into 2-component tuples.
// Returns ErrArity if the length is not a multiple of 2.
func UnpackVec2(flat []float64) ([]math.Vec2, error) {
	if len(flat)%2 != 0 {
		return nil, ErrArity
	}
	tuples := make([]math.Vec2, 0, len(flat)/2)
	for i := 0; i < len(flat); i += 2 {
		tuples = append(tuples, math.Vec2{X: flat[i], Y: flat[i+1]})
	}
	return tuples, nil
}

// UnpackVec3 groups a flat sequence into 3-component tuples.
// Returns ErrArity if the length is not a multiple of 3.
func UnpackVec3(flat []float64) ([]math.Vec3, error) {
	if len(flat)%3 != 0 {
		return nil, ErrArity
	}
	tuples := make([]math.Vec3, 0, len(flat)/3)
	for i := 0; i < len(flat); i += 3 {
		tuples = append(tuples, math.Vec3{X: flat[i], Y: flat[i+1], Z: flat[i+2]})
	}
	return tuples, nil
}

// UnpackQuat interprets a 4-element sequence as a quaternion [x, y, z, w].
// Returns ErrArity for any other length.
func UnpackQuat(flat []float64) (math.Quat, error) {
	if len(flat) != 4 {
		return math.Quat{}, ErrArity
	}
	return math.Quat{X: flat[0], Y: flat[1], Z: flat[2], W: flat[3]}, nil
}

// Vec3Term returns the wire form of a vec3: [x, y, z].
func Vec3Term(v math.Vec3) []float64 {
	return []float64{v.X, v.Y, v.Z}
}

// QuatTerm returns the wire form of a quaternion: [x, y, z, w].
func QuatTerm(q math.Quat) []float64 {
	return []float64{q.X, q.Y, q.Z, q.W}
}

// Vec3FromTerm decodes the wire form of a vec3.
func Vec3FromTerm(flat []float64) (math.Vec3, error) {
	if len(flat) != 3 {
		return math.Vec3{}, ErrArity
	}
	return math.Vec3{X: flat[0], Y: flat[1], Z: flat[2]}, nil
}
