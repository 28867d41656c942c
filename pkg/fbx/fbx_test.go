package fbx

import (
	"errors"
	gomath "math"
	"testing"

	"github.com/Faultbox/fbxbridge/pkg/math"
)

func rad(deg float64) float64 { return deg * gomath.Pi / 180 }

func buildTestScene() *Scene {
	s := NewScene()

	mesh := s.CreateMesh()
	mesh.Name = "Cube"
	mesh.Positions = []math.Vec3{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 1, Y: 1, Z: 0},
		{X: 0, Y: 1, Z: 0},
	}
	mesh.Indices = []uint32{0, 1, 2, 0, 2, 3}
	mesh.Normals = []math.Vec3{
		{Z: 1}, {Z: 1}, {Z: 1}, {Z: 1},
	}
	mesh.TexCoords = []math.Vec2{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1},
	}

	root := s.CreateNode()
	root.Name = "Root"
	root.Translation = math.Vec3{X: 1, Y: 2, Z: 3}

	child := s.CreateNode()
	child.Name = "Child"
	child.SetParent(root)
	child.SetMesh(mesh)
	child.Rotation = math.QuatFromEulerXYZ(rad(30), rad(45), rad(60))
	child.Scale = math.Vec3{X: 2, Y: 2, Z: 2}

	mat := s.CreateMaterial()
	mat.Name = "Red"
	mat.DiffuseColor = &ColorProp{Value: math.Vec3{X: 1}, Components: 3}
	mesh.Materials = []*Material{mat}

	return s
}

func vec3Near(a, b math.Vec3, eps float64) bool {
	return gomath.Abs(a.X-b.X) < eps && gomath.Abs(a.Y-b.Y) < eps && gomath.Abs(a.Z-b.Z) < eps
}

// quatSameRotation treats q and -q as equal.
func quatSameRotation(a, b math.Quat, eps float64) bool {
	return gomath.Abs(gomath.Abs(a.Dot(b))-1) < eps
}

func verifyTestScene(t *testing.T, s *Scene) {
	t.Helper()

	if len(s.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(s.Nodes))
	}
	if len(s.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(s.Meshes))
	}
	if len(s.Materials) != 1 {
		t.Fatalf("expected 1 material, got %d", len(s.Materials))
	}

	root, child := s.Nodes[0], s.Nodes[1]
	if root.Name != "Root" || child.Name != "Child" {
		t.Fatalf("node names = %q, %q", root.Name, child.Name)
	}
	if child.Parent != root {
		t.Errorf("child is not parented to root")
	}
	if root.Parent != nil {
		t.Errorf("root should have no parent")
	}
	if !vec3Near(root.Translation, math.Vec3{X: 1, Y: 2, Z: 3}, 1e-9) {
		t.Errorf("root translation = %+v", root.Translation)
	}
	want := math.QuatFromEulerXYZ(rad(30), rad(45), rad(60))
	if !quatSameRotation(child.Rotation, want, 1e-6) {
		t.Errorf("child rotation = %+v, want %+v", child.Rotation, want)
	}
	if !vec3Near(child.Scale, math.Vec3{X: 2, Y: 2, Z: 2}, 1e-9) {
		t.Errorf("child scale = %+v", child.Scale)
	}

	mesh := s.Meshes[0]
	if child.Mesh != mesh {
		t.Fatalf("child has no mesh attached")
	}
	if len(mesh.Positions) != 4 {
		t.Fatalf("expected 4 positions, got %d", len(mesh.Positions))
	}
	if !vec3Near(mesh.Positions[2], math.Vec3{X: 1, Y: 1, Z: 0}, 1e-9) {
		t.Errorf("positions[2] = %+v", mesh.Positions[2])
	}
	wantIdx := []uint32{0, 1, 2, 0, 2, 3}
	if len(mesh.Indices) != len(wantIdx) {
		t.Fatalf("expected %d indices, got %d", len(wantIdx), len(mesh.Indices))
	}
	for i, idx := range wantIdx {
		if mesh.Indices[i] != idx {
			t.Fatalf("indices[%d] = %d, want %d", i, mesh.Indices[i], idx)
		}
	}
	if len(mesh.Normals) != 4 || !vec3Near(mesh.Normals[0], math.Vec3{Z: 1}, 1e-9) {
		t.Errorf("normals = %+v", mesh.Normals)
	}
	if len(mesh.TexCoords) != 4 || mesh.TexCoords[1].X != 1 {
		t.Errorf("texcoords = %+v", mesh.TexCoords)
	}

	if len(mesh.Materials) != 1 || mesh.Materials[0].Name != "Red" {
		t.Fatalf("mesh materials = %+v", mesh.Materials)
	}
	diffuse := mesh.Materials[0].DiffuseColor
	if diffuse == nil || diffuse.Components < 3 || diffuse.Value.X != 1 {
		t.Errorf("diffuse color = %+v", diffuse)
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	src := buildTestScene()
	data, err := Encode(src, SaveOptions{})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !isBinary(data) {
		t.Fatalf("binary encoding did not produce a binary file")
	}

	got, err := Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Version != DefaultVersion {
		t.Errorf("version = %d, want %d", got.Version, DefaultVersion)
	}
	verifyTestScene(t, got)
}

func TestASCIIRoundTrip(t *testing.T) {
	src := buildTestScene()
	data, err := Encode(src, SaveOptions{ASCII: true})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if isBinary(data) {
		t.Fatalf("ascii encoding produced a binary file")
	}

	got, err := Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Version != DefaultVersion {
		t.Errorf("version = %d, want %d", got.Version, DefaultVersion)
	}
	verifyTestScene(t, got)
}

func TestParseTruncatedBinary(t *testing.T) {
	src := buildTestScene()
	data, err := Encode(src, SaveOptions{})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	if _, err := Parse(data[:40]); err == nil {
		t.Errorf("expected error for truncated binary data")
	}
}

func TestParseRejectsRecordlessInput(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"whitespace only", []byte("  \n\t\n")},
		{"comments only", []byte("; FBX 7.4.0 project file\n; nothing else\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			if !errors.Is(err, ErrEmptyDocument) {
				t.Errorf("Parse = %v, want ErrEmptyDocument", err)
			}
		})
	}
}

func TestParseVersionOverride(t *testing.T) {
	src := buildTestScene()
	data, err := Encode(src, SaveOptions{Version: 7300})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Version != 7300 {
		t.Errorf("version = %d, want 7300", got.Version)
	}
}

func TestDecodePolygons(t *testing.T) {
	tests := []struct {
		name        string
		poly        []int64
		vertexCount int
		want        []uint32
	}{
		{
			name:        "single triangle",
			poly:        []int64{0, 1, ^int64(2)},
			vertexCount: 3,
			want:        []uint32{0, 1, 2},
		},
		{
			name:        "quad fan",
			poly:        []int64{0, 1, 2, ^int64(3)},
			vertexCount: 4,
			want:        []uint32{0, 1, 2, 0, 2, 3},
		},
		{
			name:        "pentagon fan",
			poly:        []int64{0, 1, 2, 3, ^int64(4)},
			vertexCount: 5,
			want:        []uint32{0, 1, 2, 0, 2, 3, 0, 3, 4},
		},
		{
			name:        "degenerate two-corner face dropped",
			poly:        []int64{0, ^int64(1), 0, 1, ^int64(2)},
			vertexCount: 3,
			want:        []uint32{0, 1, 2},
		},
		{
			name:        "out of range face dropped",
			poly:        []int64{0, 1, ^int64(9), 0, 1, ^int64(2)},
			vertexCount: 3,
			want:        []uint32{0, 1, 2},
		},
		{
			name:        "unterminated trailing face dropped",
			poly:        []int64{0, 1, ^int64(2), 0, 1},
			vertexCount: 3,
			want:        []uint32{0, 1, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodePolygons(tt.poly, tt.vertexCount)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestEncodePolygons(t *testing.T) {
	got := encodePolygons([]uint32{0, 1, 2, 0, 2, 3, 7})
	want := []int32{0, 1, ^int32(2), 0, 2, ^int32(3)}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestAnimCurveEvaluate(t *testing.T) {
	curve := &AnimCurve{
		Default: 5,
		Keys: []AnimKey{
			{Time: 0, Value: 0},
			{Time: 1, Value: 10},
			{Time: 3, Value: 20},
		},
	}

	tests := []struct {
		name  string
		curve *AnimCurve
		t     float64
		want  float64
	}{
		{"nil curve", nil, 1, 0},
		{"empty curve uses default", &AnimCurve{Default: 5}, 1, 5},
		{"clamp before first key", curve, -1, 0},
		{"clamp after last key", curve, 99, 20},
		{"exact key", curve, 1, 10},
		{"lerp first span", curve, 0.5, 5},
		{"lerp second span", curve, 2, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.curve.Evaluate(tt.t); gomath.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Evaluate(%v) = %v, want %v", tt.t, got, tt.want)
			}
		})
	}
}

func TestChannelEvaluateNeutral(t *testing.T) {
	xOnly := &AnimCurve{Keys: []AnimKey{{Time: 0, Value: 4}}}

	trans := &AnimChannel{Target: AnimTargetTranslation, X: xOnly}
	if got := trans.EvaluateVec3(0); !vec3Near(got, math.Vec3{X: 4}, 1e-9) {
		t.Errorf("translation sample = %+v, want missing components at 0", got)
	}

	scale := &AnimChannel{Target: AnimTargetScale, X: xOnly}
	if got := scale.EvaluateVec3(0); !vec3Near(got, math.Vec3{X: 4, Y: 1, Z: 1}, 1e-9) {
		t.Errorf("scale sample = %+v, want missing components at 1", got)
	}
}

func TestAnimStackTimeRange(t *testing.T) {
	keyed := &AnimChannel{X: &AnimCurve{Keys: []AnimKey{{Time: 0.5}, {Time: 2.5}}}}

	declared := &AnimStack{TimeBegin: 0, TimeEnd: 1, Channels: []*AnimChannel{keyed}}
	if b, e := declared.TimeRange(); b != 0 || e != 1 {
		t.Errorf("declared range = [%v, %v], want [0, 1]", b, e)
	}

	fallback := &AnimStack{Channels: []*AnimChannel{keyed}}
	if b, e := fallback.TimeRange(); b != 0.5 || e != 2.5 {
		t.Errorf("fallback range = [%v, %v], want [0.5, 2.5]", b, e)
	}

	empty := &AnimStack{TimeBegin: 3, TimeEnd: 3}
	if b, e := empty.TimeRange(); b != 3 || e != 3 {
		t.Errorf("degenerate range = [%v, %v], want [3, 3]", b, e)
	}
}

func TestSetParentDetaches(t *testing.T) {
	s := NewScene()
	a := s.CreateNode()
	b := s.CreateNode()
	c := s.CreateNode()

	c.SetParent(a)
	if len(a.Children) != 1 || a.Children[0] != c {
		t.Fatalf("a.Children = %v", a.Children)
	}

	c.SetParent(b)
	if len(a.Children) != 0 {
		t.Errorf("old parent kept the child")
	}
	if len(b.Children) != 1 || c.Parent != b {
		t.Errorf("child not moved to new parent")
	}

	c.SetParent(nil)
	if c.Parent != nil || len(b.Children) != 0 {
		t.Errorf("child not detached")
	}
}

func TestFreeIdempotent(t *testing.T) {
	s := buildTestScene()
	s.Free()
	if !s.Freed() {
		t.Fatalf("scene not marked freed")
	}
	if len(s.Nodes) != 0 || len(s.Meshes) != 0 {
		t.Errorf("entity lists survived Free")
	}
	s.Free() // must not panic
}

func TestObjectName(t *testing.T) {
	tests := []struct {
		name string
		attr string
		want string
	}{
		{"binary convention", "Cube\x00\x01Model", "Cube"},
		{"ascii convention", "Model::Cube", "Cube"},
		{"plain name", "Cube", "Cube"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRecord("Model", int64(1), tt.attr, "Mesh")
			if got := objectName(r); got != tt.want {
				t.Errorf("objectName(%q) = %q, want %q", tt.attr, got, tt.want)
			}
		})
	}
}

func TestParseASCIIDocument(t *testing.T) {
	doc := `; FBX 7.4.0 project file
FBXHeaderExtension: {
	FBXVersion: 7400
}
Objects: {
	Geometry: 100, "Geometry::Tri", "Mesh" {
		Vertices: *9 {
			a: 0,0,0,1,0,0,0,1,0
		}
		PolygonVertexIndex: *3 {
			a: 0,1,-3
		}
	}
	Model: 200, "Model::Tri", "Mesh" {
		Properties70: {
			P: "Lcl Translation", "Lcl Translation", "", "A", 4, 5, 6
		}
	}
}
Connections: {
	C: "OO", 200, 0
	C: "OO", 100, 200
}
`
	s, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if s.Version != 7400 {
		t.Errorf("version = %d, want 7400", s.Version)
	}
	if len(s.Nodes) != 1 || len(s.Meshes) != 1 {
		t.Fatalf("got %d nodes, %d meshes", len(s.Nodes), len(s.Meshes))
	}
	node := s.Nodes[0]
	if node.Name != "Tri" {
		t.Errorf("node name = %q", node.Name)
	}
	if !vec3Near(node.Translation, math.Vec3{X: 4, Y: 5, Z: 6}, 1e-9) {
		t.Errorf("translation = %+v", node.Translation)
	}
	if node.Mesh == nil {
		t.Fatalf("mesh connection not resolved")
	}
	if len(node.Mesh.Positions) != 3 {
		t.Errorf("positions = %+v", node.Mesh.Positions)
	}
	wantIdx := []uint32{0, 1, 2}
	if len(node.Mesh.Indices) != 3 {
		t.Fatalf("indices = %v", node.Mesh.Indices)
	}
	for i, idx := range wantIdx {
		if node.Mesh.Indices[i] != idx {
			t.Fatalf("indices = %v, want %v", node.Mesh.Indices, wantIdx)
		}
	}
}
