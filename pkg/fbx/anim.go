package fbx

import (
	gomath "math"

	"github.com/Faultbox/fbxbridge/pkg/math"
)

// ktimePerSecond is the number of FBX KTime ticks in one second.
const ktimePerSecond = 46186158000

// AnimTarget identifies which node transform channel a curve set drives.
type AnimTarget int

const (
	AnimTargetTranslation AnimTarget = iota
	AnimTargetRotation
	AnimTargetScale
)

// String returns the target's property name as used in FBX files.
func (t AnimTarget) String() string {
	switch t {
	case AnimTargetTranslation:
		return "Lcl Translation"
	case AnimTargetRotation:
		return "Lcl Rotation"
	case AnimTargetScale:
		return "Lcl Scaling"
	default:
		return "Unknown"
	}
}

// AnimKey is a single timestamped curve sample.
type AnimKey struct {
	Time  float64
	Value float64
}

// AnimCurve is one scalar component curve. Keys are sorted by time.
// Default is the value when no keys exist.
type AnimCurve struct {
	Default float64
	Keys    []AnimKey
}

// Evaluate returns the curve value at time t with linear interpolation,
// clamping outside the keyed range. A nil or empty curve yields Default.
func (c *AnimCurve) Evaluate(t float64) float64 {
	if c == nil {
		return 0
	}
	if len(c.Keys) == 0 {
		return c.Default
	}
	if t <= c.Keys[0].Time {
		return c.Keys[0].Value
	}
	last := c.Keys[len(c.Keys)-1]
	if t >= last.Time {
		return last.Value
	}

	// Keys are sorted; find the surrounding pair.
	for i := 1; i < len(c.Keys); i++ {
		if c.Keys[i].Time >= t {
			k0, k1 := c.Keys[i-1], c.Keys[i]
			span := k1.Time - k0.Time
			if span <= 0 {
				return k1.Value
			}
			f := (t - k0.Time) / span
			return k0.Value + f*(k1.Value-k0.Value)
		}
	}
	return last.Value
}

// TimeRange returns the first and last key times, or ok=false when unkeyed.
func (c *AnimCurve) TimeRange() (begin, end float64, ok bool) {
	if c == nil || len(c.Keys) == 0 {
		return 0, 0, false
	}
	return c.Keys[0].Time, c.Keys[len(c.Keys)-1].Time, true
}

// AnimChannel binds up to three component curves to one transform channel
// of one node. Rotation curves hold Euler angles in degrees, XYZ order.
type AnimChannel struct {
	Node   *Node
	Target AnimTarget
	X      *AnimCurve
	Y      *AnimCurve
	Z      *AnimCurve
}

// Animated reports whether any component has at least one key.
func (ch *AnimChannel) Animated() bool {
	for _, c := range []*AnimCurve{ch.X, ch.Y, ch.Z} {
		if c != nil && len(c.Keys) > 0 {
			return true
		}
	}
	return false
}

// EvaluateVec3 samples all three components at time t. Missing components
// fall back to the channel's neutral value (1 for scale, 0 otherwise).
func (ch *AnimChannel) EvaluateVec3(t float64) math.Vec3 {
	neutral := 0.0
	if ch.Target == AnimTargetScale {
		neutral = 1.0
	}
	eval := func(c *AnimCurve) float64 {
		if c == nil {
			return neutral
		}
		return c.Evaluate(t)
	}
	return math.Vec3{X: eval(ch.X), Y: eval(ch.Y), Z: eval(ch.Z)}
}

// EvaluateQuat samples a rotation channel at time t, converting the
// Euler-degree components into a quaternion.
func (ch *AnimChannel) EvaluateQuat(t float64) math.Quat {
	e := ch.EvaluateVec3(t)
	const degToRad = gomath.Pi / 180
	return math.QuatFromEulerXYZ(e.X*degToRad, e.Y*degToRad, e.Z*degToRad)
}

// TimeRange returns the union of the component curves' keyed ranges.
func (ch *AnimChannel) TimeRange() (begin, end float64, ok bool) {
	for _, c := range []*AnimCurve{ch.X, ch.Y, ch.Z} {
		b, e, has := c.TimeRange()
		if !has {
			continue
		}
		if !ok || b < begin {
			begin = b
		}
		if !ok || e > end {
			end = e
		}
		ok = true
	}
	return begin, end, ok
}

// AnimStack is one animation take: a time range plus the channels that
// play during it.
type AnimStack struct {
	TypedID   uint32
	Name      string
	TimeBegin float64
	TimeEnd   float64
	Channels  []*AnimChannel
}

// TimeRange returns the stack's declared range, falling back to the union
// of channel key ranges when the declaration is missing or degenerate.
func (st *AnimStack) TimeRange() (begin, end float64) {
	if st.TimeEnd > st.TimeBegin {
		return st.TimeBegin, st.TimeEnd
	}
	var ok bool
	for _, ch := range st.Channels {
		b, e, has := ch.TimeRange()
		if !has {
			continue
		}
		if !ok || b < begin {
			begin = b
		}
		if !ok || e > end {
			end = e
		}
		ok = true
	}
	if !ok {
		return st.TimeBegin, st.TimeBegin
	}
	return begin, end
}
