package scene

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/fbxbridge/internal/logger"
	"github.com/Faultbox/fbxbridge/pkg/fbx"
	"github.com/Faultbox/fbxbridge/pkg/term"
)

// ExtractOptions tunes the typed-graph → term conversion.
type ExtractOptions struct {
	// SampleRate is the animation bake rate in samples per second.
	// Zero means DefaultSampleRate.
	SampleRate float64
}

// Extract walks a fully built scene graph and produces the generic scene
// term. Entities keep the IDs they already carry; cross-references become
// integer foreign keys. The input scene is read-only to this function.
func Extract(s *fbx.Scene, opts ExtractOptions) *term.Map {
	rate := opts.SampleRate
	if rate <= 0 {
		rate = DefaultSampleRate
	}

	nodeIDs := NewTable[*fbx.Node]()
	for _, n := range s.Nodes {
		nodeIDs.Put(n.TypedID, n)
	}

	out := term.NewMap()
	out.Set("version", versionString(s.Version))

	nodes := make([]*term.Map, 0, len(s.Nodes))
	for _, n := range s.Nodes {
		nodes = append(nodes, extractNode(n))
	}
	out.Set("nodes", nodes)

	meshes := make([]*term.Map, 0, len(s.Meshes))
	for _, m := range s.Meshes {
		meshes = append(meshes, extractMesh(m))
	}
	out.Set("meshes", meshes)

	materials := make([]*term.Map, 0, len(s.Materials))
	for _, m := range s.Materials {
		materials = append(materials, extractMaterial(m))
	}
	out.Set("materials", materials)

	textures := make([]*term.Map, 0, len(s.Textures))
	for _, t := range s.Textures {
		textures = append(textures, extractTexture(t))
	}
	out.Set("textures", textures)

	anims := make([]*term.Map, 0, len(s.AnimStacks))
	for _, st := range s.AnimStacks {
		baked, err := BakeStack(st, rate)
		if err != nil {
			logger.Debug("dropping animation stack",
				zap.String("stack", st.Name), zap.Error(err))
			continue
		}
		anims = append(anims, extractAnimation(st, baked, nodeIDs))
	}
	out.Set("animations", anims)

	return out
}

// versionString renders an integer FBX version code such as 7400 in the
// "FBX <major>.<minor>" form.
func versionString(code int) string {
	return fmt.Sprintf("FBX %d.%d", code/1000, (code%1000)/100)
}

func extractNode(n *fbx.Node) *term.Map {
	out := term.NewMap()
	out.Set("id", n.TypedID)
	out.Set("name", n.Name)
	if n.Parent != nil {
		out.Set("parent_id", n.Parent.TypedID)
	}
	if len(n.Children) > 0 {
		children := make([]uint32, 0, len(n.Children))
		for _, c := range n.Children {
			children = append(children, c.TypedID)
		}
		out.Set("children", children)
	}
	out.Set("translation", term.Vec3Term(n.Translation))
	out.Set("rotation", term.QuatTerm(n.Rotation))
	out.Set("scale", term.Vec3Term(n.Scale))
	if n.Mesh != nil {
		out.Set("mesh_id", n.Mesh.TypedID)
	}
	return out
}

func extractMesh(m *fbx.Mesh) *term.Map {
	out := term.NewMap()
	out.Set("id", m.TypedID)
	out.Set("name", m.Name)
	if len(m.Positions) > 0 {
		out.Set("positions", term.PackVec3(m.Positions))
	}
	if len(m.Indices) > 0 {
		out.Set("indices", append([]uint32(nil), m.Indices...))
	}
	if len(m.Normals) > 0 {
		out.Set("normals", term.PackVec3(m.Normals))
	}
	if len(m.TexCoords) > 0 {
		out.Set("texcoords", term.PackVec2(m.TexCoords))
	}
	if len(m.Materials) > 0 {
		ids := make([]uint32, 0, len(m.Materials))
		for _, mat := range m.Materials {
			ids = append(ids, mat.TypedID)
		}
		out.Set("material_ids", ids)
	}
	return out
}

func extractMaterial(m *fbx.Material) *term.Map {
	out := term.NewMap()
	out.Set("id", m.TypedID)
	out.Set("name", m.Name)
	setColor(out, "diffuse_color", m.PBRBaseColor, m.DiffuseColor)
	setColor(out, "specular_color", m.PBRSpecularColor, m.SpecularColor)
	setColor(out, "emissive_color", m.PBREmissionColor, m.EmissiveColor)
	return out
}

// setColor emits one material color, preferring the physically-based
// source over the legacy one. A source with fewer than 3 numeric
// components is treated as absent.
func setColor(out *term.Map, key string, pbr, legacy *fbx.ColorProp) {
	pick := legacy
	if pbr != nil && pbr.Components >= 3 {
		pick = pbr
	}
	if pick == nil || pick.Components < 3 {
		return
	}
	out.Set(key, term.Vec3Term(pick.Value))
}

func extractTexture(t *fbx.Texture) *term.Map {
	out := term.NewMap()
	out.Set("id", t.TypedID)
	out.Set("name", t.Name)
	if t.FilePath != "" {
		out.Set("file_path", t.FilePath)
	}
	return out
}

// extractAnimation flattens a baked stack into one keyframe list. Within a
// node, each channel's keyframes stay in sample order; each keyframe names
// exactly one channel.
func extractAnimation(st *fbx.AnimStack, baked *BakedAnim, nodeIDs *Table[*fbx.Node]) *term.Map {
	out := term.NewMap()
	out.Set("id", st.TypedID)
	out.Set("name", st.Name)

	var keys []*term.Map
	for _, bn := range baked.Nodes {
		nodeID, ok := nodeIDs.ID(bn.Node)
		if !ok {
			continue
		}
		for _, k := range bn.Translation {
			keys = append(keys, keyframe(nodeID, k.Time, "translation", term.Vec3Term(k.Value)))
		}
		for _, k := range bn.Rotation {
			keys = append(keys, keyframe(nodeID, k.Time, "rotation", term.QuatTerm(k.Value)))
		}
		for _, k := range bn.Scale {
			keys = append(keys, keyframe(nodeID, k.Time, "scale", term.Vec3Term(k.Value)))
		}
	}
	if len(keys) > 0 {
		out.Set("keyframes", keys)
	}
	return out
}

func keyframe(nodeID uint32, time float64, channel string, value []float64) *term.Map {
	k := term.NewMap()
	k.Set("node_id", nodeID)
	k.Set("time", time)
	k.Set(channel, value)
	return k
}
