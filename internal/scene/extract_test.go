package scene

import (
	"testing"

	"github.com/Faultbox/fbxbridge/pkg/fbx"
	"github.com/Faultbox/fbxbridge/pkg/math"
)

func TestVersionString(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{7400, "FBX 7.4"},
		{7100, "FBX 7.1"},
		{7700, "FBX 7.7"},
		{6100, "FBX 6.1"},
	}
	for _, tt := range tests {
		if got := versionString(tt.code); got != tt.want {
			t.Errorf("versionString(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestExtractNodePresence(t *testing.T) {
	s := fbx.NewScene()
	mesh := s.CreateMesh()
	root := s.CreateNode()
	root.Name = "Root"
	child := s.CreateNode()
	child.SetParent(root)
	child.SetMesh(mesh)

	out := Extract(s, ExtractOptions{})

	if v, _ := out.String("version"); v != "FBX 7.4" {
		t.Errorf("version = %q", v)
	}
	nodes, ok := out.Maps("nodes")
	if !ok || len(nodes) != 2 {
		t.Fatalf("nodes = %v, %v", nodes, ok)
	}

	rootTerm, childTerm := nodes[0], nodes[1]

	// Transforms are always present, with defaults.
	if flat, _ := rootTerm.Floats("translation"); len(flat) != 3 || flat[0] != 0 {
		t.Errorf("root translation = %v", flat)
	}
	if flat, _ := rootTerm.Floats("rotation"); len(flat) != 4 || flat[3] != 1 {
		t.Errorf("root rotation = %v", flat)
	}
	if flat, _ := rootTerm.Floats("scale"); len(flat) != 3 || flat[0] != 1 {
		t.Errorf("root scale = %v", flat)
	}

	// Optional keys appear only when backed by data.
	if rootTerm.Has("parent_id") {
		t.Errorf("root should have no parent_id")
	}
	if !rootTerm.Has("children") {
		t.Errorf("root should list its children")
	}
	if rootTerm.Has("mesh_id") {
		t.Errorf("root should have no mesh_id")
	}

	if pid, ok := childTerm.Uint("parent_id"); !ok || pid != root.TypedID {
		t.Errorf("child parent_id = %d, %v; want %d", pid, ok, root.TypedID)
	}
	if mid, ok := childTerm.Uint("mesh_id"); !ok || mid != mesh.TypedID {
		t.Errorf("child mesh_id = %d, %v; want %d", mid, ok, mesh.TypedID)
	}
	if childTerm.Has("children") {
		t.Errorf("leaf node should not carry a children key")
	}
}

func TestExtractMeshPresence(t *testing.T) {
	s := fbx.NewScene()
	mat := s.CreateMaterial()
	full := s.CreateMesh()
	full.Name = "Cube"
	full.Positions = []math.Vec3{{X: 1}, {Y: 1}, {Z: 1}}
	full.Indices = []uint32{0, 1, 2}
	full.Normals = []math.Vec3{{Z: 1}, {Z: 1}, {Z: 1}}
	full.TexCoords = []math.Vec2{{}, {X: 1}, {Y: 1}}
	full.Materials = []*fbx.Material{mat}
	_ = s.CreateMesh()

	out := Extract(s, ExtractOptions{})
	meshes, _ := out.Maps("meshes")
	if len(meshes) != 2 {
		t.Fatalf("meshes = %d, want 2", len(meshes))
	}

	fullTerm := meshes[0]
	if flat, _ := fullTerm.Floats("positions"); len(flat) != 9 {
		t.Errorf("positions = %v", flat)
	}
	if idx, _ := fullTerm.Uints("indices"); len(idx) != 3 {
		t.Errorf("indices = %v", idx)
	}
	if flat, _ := fullTerm.Floats("normals"); len(flat) != 9 {
		t.Errorf("normals = %v", flat)
	}
	if flat, _ := fullTerm.Floats("texcoords"); len(flat) != 6 {
		t.Errorf("texcoords = %v", flat)
	}
	if ids, _ := fullTerm.Uints("material_ids"); len(ids) != 1 || ids[0] != mat.TypedID {
		t.Errorf("material_ids = %v", ids)
	}

	emptyTerm := meshes[1]
	for _, key := range []string{"positions", "indices", "normals", "texcoords", "material_ids"} {
		if emptyTerm.Has(key) {
			t.Errorf("empty mesh should omit %q", key)
		}
	}
}

func TestExtractMaterialColorPrecedence(t *testing.T) {
	color := func(x float64, comps int) *fbx.ColorProp {
		return &fbx.ColorProp{Value: math.Vec3{X: x}, Components: comps}
	}

	tests := []struct {
		name   string
		mat    *fbx.Material
		wantX  float64
		wantOK bool
	}{
		{
			name:   "pbr wins over legacy",
			mat:    &fbx.Material{PBRBaseColor: color(1, 3), DiffuseColor: color(2, 3)},
			wantX:  1,
			wantOK: true,
		},
		{
			name:   "legacy when pbr underspecified",
			mat:    &fbx.Material{PBRBaseColor: color(1, 2), DiffuseColor: color(2, 3)},
			wantX:  2,
			wantOK: true,
		},
		{
			name:   "pbr alone",
			mat:    &fbx.Material{PBRBaseColor: color(1, 4)},
			wantX:  1,
			wantOK: true,
		},
		{
			name:   "legacy alone",
			mat:    &fbx.Material{DiffuseColor: color(2, 3)},
			wantX:  2,
			wantOK: true,
		},
		{
			name:   "both underspecified",
			mat:    &fbx.Material{PBRBaseColor: color(1, 1), DiffuseColor: color(2, 2)},
			wantOK: false,
		},
		{
			name:   "absent",
			mat:    &fbx.Material{},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := fbx.NewScene()
			s.Materials = append(s.Materials, tt.mat)

			out := Extract(s, ExtractOptions{})
			mats, _ := out.Maps("materials")
			if len(mats) != 1 {
				t.Fatalf("materials = %d", len(mats))
			}
			flat, ok := mats[0].Floats("diffuse_color")
			if ok != tt.wantOK {
				t.Fatalf("diffuse_color present = %v, want %v", ok, tt.wantOK)
			}
			if ok && flat[0] != tt.wantX {
				t.Errorf("diffuse_color = %v, want X %v", flat, tt.wantX)
			}
		})
	}
}

func TestExtractTexture(t *testing.T) {
	s := fbx.NewScene()
	s.Textures = append(s.Textures,
		&fbx.Texture{TypedID: 0, Name: "Skin", FilePath: "skin.png"},
		&fbx.Texture{TypedID: 1, Name: "Unbound"},
	)

	out := Extract(s, ExtractOptions{})
	textures, _ := out.Maps("textures")
	if len(textures) != 2 {
		t.Fatalf("textures = %d", len(textures))
	}
	if p, ok := textures[0].String("file_path"); !ok || p != "skin.png" {
		t.Errorf("file_path = %q, %v", p, ok)
	}
	if textures[1].Has("file_path") {
		t.Errorf("empty file path should be omitted")
	}
}

func TestExtractEmptyAnimations(t *testing.T) {
	s := fbx.NewScene()
	out := Extract(s, ExtractOptions{})
	anims, ok := out.Maps("animations")
	if !ok {
		t.Fatalf("animations key missing")
	}
	if len(anims) != 0 {
		t.Errorf("animations = %d, want 0", len(anims))
	}
}

func TestExtractAnimationKeyframes(t *testing.T) {
	s := fbx.NewScene()
	node := s.CreateNode()

	s.AnimStacks = append(s.AnimStacks,
		&fbx.AnimStack{
			TypedID:   0,
			Name:      "Take 001",
			TimeBegin: 0,
			TimeEnd:   1,
			Channels: []*fbx.AnimChannel{{
				Node:   node,
				Target: fbx.AnimTargetTranslation,
				X:      linearCurve(0, 10, 0, 1),
			}},
		},
		// Degenerate stack: dropped, not an error.
		&fbx.AnimStack{TypedID: 1, Name: "Broken"},
	)

	out := Extract(s, ExtractOptions{SampleRate: 10})
	anims, _ := out.Maps("animations")
	if len(anims) != 1 {
		t.Fatalf("animations = %d, want 1 (degenerate stack dropped)", len(anims))
	}
	if name, _ := anims[0].String("name"); name != "Take 001" {
		t.Errorf("name = %q", name)
	}

	keys, ok := anims[0].Maps("keyframes")
	if !ok || len(keys) != 11 {
		t.Fatalf("keyframes = %d, %v; want 11", len(keys), ok)
	}

	var prev float64 = -1
	for i, k := range keys {
		if id, ok := k.Uint("node_id"); !ok || id != node.TypedID {
			t.Fatalf("keyframe %d node_id = %d, %v", i, id, ok)
		}
		tv, ok := k.Float("time")
		if !ok || tv < prev {
			t.Fatalf("keyframe %d time = %v after %v", i, tv, prev)
		}
		prev = tv

		// Exactly one channel per keyframe.
		channels := 0
		for _, key := range []string{"translation", "rotation", "scale"} {
			if k.Has(key) {
				channels++
			}
		}
		if channels != 1 {
			t.Fatalf("keyframe %d names %d channels", i, channels)
		}
	}
}

func TestExtractReferentialIdentity(t *testing.T) {
	s := fbx.NewScene()
	mesh := s.CreateMesh()
	mesh.TypedID = 42 // IDs are carried, never renumbered
	parent := s.CreateNode()
	parent.TypedID = 7
	child := s.CreateNode()
	child.SetParent(parent)
	child.SetMesh(mesh)

	out := Extract(s, ExtractOptions{})
	nodes, _ := out.Maps("nodes")

	if pid, _ := nodes[1].Uint("parent_id"); pid != 7 {
		t.Errorf("parent_id = %d, want 7", pid)
	}
	if mid, _ := nodes[1].Uint("mesh_id"); mid != 42 {
		t.Errorf("mesh_id = %d, want 42", mid)
	}
	if children, _ := nodes[0].Uints("children"); len(children) != 1 || children[0] != child.TypedID {
		t.Errorf("children = %v", children)
	}
}

func TestExtractOrderMatchesSource(t *testing.T) {
	s := fbx.NewScene()
	for i := 0; i < 5; i++ {
		n := s.CreateNode()
		n.Name = string(rune('a' + i))
	}

	out := Extract(s, ExtractOptions{})
	nodes, _ := out.Maps("nodes")
	for i, nt := range nodes {
		if id, _ := nt.Uint("id"); id != uint32(i) {
			t.Fatalf("nodes[%d].id = %d", i, id)
		}
		if name, _ := nt.String("name"); name != string(rune('a'+i)) {
			t.Fatalf("nodes[%d].name = %q", i, name)
		}
	}
}
