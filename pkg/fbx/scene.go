// Package fbx provides a typed FBX scene graph and readers/writers for the
// FBX 7.x binary and ascii container formats. The scene model covers nodes,
// meshes, materials, textures and baked-animation sources; cameras, lights
// and deformers are out of scope.
package fbx

import (
	"github.com/Faultbox/fbxbridge/pkg/math"
)

// DefaultVersion is the FBX version written by Save.
const DefaultVersion = 7400

// Scene is a fully linked scene graph. Entity lists are in document order;
// every entity carries a TypedID that is its index within its own kind.
type Scene struct {
	Version    int
	Nodes      []*Node
	Meshes     []*Mesh
	Materials  []*Material
	Textures   []*Texture
	AnimStacks []*AnimStack

	freed bool
}

// Node is one element of the scene hierarchy. Parent is nil for root-level
// nodes; Mesh is nil for nodes without a renderable payload.
type Node struct {
	TypedID  uint32
	Name     string
	Parent   *Node
	Children []*Node
	Mesh     *Mesh

	Translation math.Vec3
	Rotation    math.Quat
	Scale       math.Vec3
}

// Mesh holds vertex attributes and the materials assigned to it.
// Indices address Positions; Normals and TexCoords are value lists.
type Mesh struct {
	TypedID   uint32
	Name      string
	Positions []math.Vec3
	Indices   []uint32
	Normals   []math.Vec3
	TexCoords []math.Vec2
	Materials []*Material
}

// ColorProp is a material color channel as it appears in the source file.
// Components records how many numeric values backed it; consumers treat
// fewer than 3 components as unusable.
type ColorProp struct {
	Value      math.Vec3
	Components int
}

// Material carries both the physically-based and the legacy FBX color
// sources. Either side may be absent.
type Material struct {
	TypedID uint32
	Name    string

	PBRBaseColor     *ColorProp
	PBRSpecularColor *ColorProp
	PBREmissionColor *ColorProp

	DiffuseColor  *ColorProp
	SpecularColor *ColorProp
	EmissiveColor *ColorProp
}

// Texture references an external image file.
type Texture struct {
	TypedID  uint32
	Name     string
	FilePath string
}

// NewScene creates an empty scene targeting DefaultVersion.
func NewScene() *Scene {
	return &Scene{Version: DefaultVersion}
}

// CreateNode adds a new node with identity transform and returns it.
func (s *Scene) CreateNode() *Node {
	n := &Node{
		TypedID:  uint32(len(s.Nodes)),
		Rotation: math.QuatIdentity(),
		Scale:    math.Vec3One(),
	}
	s.Nodes = append(s.Nodes, n)
	return n
}

// CreateMesh adds a new empty mesh and returns it.
func (s *Scene) CreateMesh() *Mesh {
	m := &Mesh{TypedID: uint32(len(s.Meshes))}
	s.Meshes = append(s.Meshes, m)
	return m
}

// CreateMaterial adds a new material and returns it.
func (s *Scene) CreateMaterial() *Material {
	m := &Material{TypedID: uint32(len(s.Materials))}
	s.Materials = append(s.Materials, m)
	return m
}

// SetParent attaches n under parent, detaching it from any previous parent.
// Passing nil makes n root-level.
func (n *Node) SetParent(parent *Node) {
	if n.Parent != nil {
		siblings := n.Parent.Children
		for i, c := range siblings {
			if c == n {
				n.Parent.Children = append(siblings[:i], siblings[i+1:]...)
				break
			}
		}
	}
	n.Parent = parent
	if parent != nil {
		parent.Children = append(parent.Children, n)
	}
}

// SetMesh attaches m as the node's renderable payload.
func (n *Node) SetMesh(m *Mesh) {
	n.Mesh = m
}

// Free releases the scene's buffers and breaks entity cross-references.
// The scene must not be used afterwards. Free is idempotent.
func (s *Scene) Free() {
	if s.freed {
		return
	}
	s.freed = true
	for _, n := range s.Nodes {
		n.Parent = nil
		n.Children = nil
		n.Mesh = nil
	}
	for _, m := range s.Meshes {
		m.Positions = nil
		m.Indices = nil
		m.Normals = nil
		m.TexCoords = nil
		m.Materials = nil
	}
	for _, st := range s.AnimStacks {
		st.Channels = nil
	}
	s.Nodes = nil
	s.Meshes = nil
	s.Materials = nil
	s.Textures = nil
	s.AnimStacks = nil
}

// Freed reports whether Free has been called.
func (s *Scene) Freed() bool {
	return s.freed
}
