package scene

import (
	"errors"

	"github.com/Faultbox/fbxbridge/pkg/fbx"
	"github.com/Faultbox/fbxbridge/pkg/math"
)

// DefaultSampleRate is the bake rate used when the caller does not choose
// one: 30 samples per second.
const DefaultSampleRate = 30.0

var (
	ErrBadSampleRate   = errors.New("bake sample rate must be positive")
	ErrDegenerateStack = errors.New("animation stack has no playable time range")
)

// BakedKey is one resampled vector value.
type BakedKey struct {
	Time  float64
	Value math.Vec3
}

// BakedQuatKey is one resampled rotation value.
type BakedQuatKey struct {
	Time  float64
	Value math.Quat
}

// BakedNode holds the resampled channels of one node. A channel slice is
// nil when the stack never animates that channel for the node.
type BakedNode struct {
	Node        *fbx.Node
	Translation []BakedKey
	Rotation    []BakedQuatKey
	Scale       []BakedKey
}

// BakedAnim is the result of resampling one animation stack. Buffers are
// temporary: the extractor folds them into the output term and drops them.
type BakedAnim struct {
	Nodes []*BakedNode
}

// BakeStack resamples every animated channel of the stack at a fixed rate
// over the stack's time range. Stacks with a degenerate range cannot be
// baked; callers drop them rather than failing the whole extraction.
func BakeStack(st *fbx.AnimStack, rate float64) (*BakedAnim, error) {
	if rate <= 0 {
		return nil, ErrBadSampleRate
	}
	begin, end := st.TimeRange()
	if end <= begin {
		return nil, ErrDegenerateStack
	}

	times := sampleTimes(begin, end, rate)

	// Group channels by node, keeping the node order in which channels
	// first appear so output is deterministic.
	type nodeChannels struct {
		translation *fbx.AnimChannel
		rotation    *fbx.AnimChannel
		scale       *fbx.AnimChannel
	}
	byNode := make(map[*fbx.Node]*nodeChannels)
	var order []*fbx.Node
	for _, ch := range st.Channels {
		if ch.Node == nil || !ch.Animated() {
			continue
		}
		nc, ok := byNode[ch.Node]
		if !ok {
			nc = &nodeChannels{}
			byNode[ch.Node] = nc
			order = append(order, ch.Node)
		}
		switch ch.Target {
		case fbx.AnimTargetTranslation:
			if nc.translation == nil {
				nc.translation = ch
			}
		case fbx.AnimTargetRotation:
			if nc.rotation == nil {
				nc.rotation = ch
			}
		case fbx.AnimTargetScale:
			if nc.scale == nil {
				nc.scale = ch
			}
		}
	}

	baked := &BakedAnim{}
	for _, node := range order {
		nc := byNode[node]
		bn := &BakedNode{Node: node}
		if nc.translation != nil {
			bn.Translation = bakeVec3(nc.translation, times)
		}
		if nc.rotation != nil {
			bn.Rotation = bakeQuat(nc.rotation, times)
		}
		if nc.scale != nil {
			bn.Scale = bakeVec3(nc.scale, times)
		}
		baked.Nodes = append(baked.Nodes, bn)
	}
	return baked, nil
}

// sampleTimes produces uniformly spaced times covering [begin, end],
// always including the end time.
func sampleTimes(begin, end, rate float64) []float64 {
	step := 1 / rate
	n := int((end-begin)/step) + 1
	times := make([]float64, 0, n+1)
	for i := 0; i < n; i++ {
		times = append(times, begin+float64(i)*step)
	}
	if last := times[len(times)-1]; end-last > step*1e-6 {
		times = append(times, end)
	}
	return times
}

func bakeVec3(ch *fbx.AnimChannel, times []float64) []BakedKey {
	keys := make([]BakedKey, 0, len(times))
	for _, t := range times {
		keys = append(keys, BakedKey{Time: t, Value: ch.EvaluateVec3(t)})
	}
	return keys
}

// bakeQuat samples a rotation channel, flipping signs as needed so that
// consecutive quaternions stay on the same hemisphere.
func bakeQuat(ch *fbx.AnimChannel, times []float64) []BakedQuatKey {
	keys := make([]BakedQuatKey, 0, len(times))
	var prev math.Quat
	for i, t := range times {
		q := ch.EvaluateQuat(t)
		if i > 0 && prev.Dot(q) < 0 {
			q = math.Quat{X: -q.X, Y: -q.Y, Z: -q.Z, W: -q.W}
		}
		keys = append(keys, BakedQuatKey{Time: t, Value: q})
		prev = q
	}
	return keys
}
