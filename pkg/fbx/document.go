package fbx

import (
	gomath "math"

	"github.com/Faultbox/fbxbridge/pkg/math"
)

// buildScene assembles a typed scene graph from a raw record tree. Objects
// are instantiated first and indexed by document ID; the Connections block
// is resolved by lookup afterwards. Unknown object classes and dangling
// connections are ignored.
func buildScene(root *Record, version int) (*Scene, error) {
	if version == 0 {
		version = int(root.Child("FBXHeaderExtension").Child("FBXVersion").Int(0, DefaultVersion))
	}
	s := &Scene{Version: version}

	objects := root.Child("Objects")
	if objects == nil {
		return s, nil
	}

	d := &docIndex{
		scene:     s,
		nodes:     make(map[int64]*Node),
		meshes:    make(map[int64]*Mesh),
		materials: make(map[int64]*Material),
		stacks:    make(map[int64]*AnimStack),
		layers:    make(map[int64][]*AnimChannel),
		channels:  make(map[int64]*AnimChannel),
		curves:    make(map[int64]*AnimCurve),
	}

	for _, obj := range objects.Children {
		switch obj.Name {
		case "Model":
			d.addModel(obj)
		case "Geometry":
			d.addGeometry(obj)
		case "Material":
			d.addMaterial(obj)
		case "Texture":
			d.addTexture(obj)
		case "AnimationStack":
			d.addStack(obj)
		case "AnimationLayer":
			d.layers[obj.Int(0, 0)] = nil
		case "AnimationCurveNode":
			d.addCurveNode(obj)
		case "AnimationCurve":
			d.addCurve(obj)
		}
	}

	d.wire(root.Child("Connections"))
	return s, nil
}

// docIndex maps document object IDs to the typed entities built from them.
type docIndex struct {
	scene     *Scene
	nodes     map[int64]*Node
	meshes    map[int64]*Mesh
	materials map[int64]*Material
	stacks    map[int64]*AnimStack
	layers    map[int64][]*AnimChannel
	channels  map[int64]*AnimChannel
	curves    map[int64]*AnimCurve
}

func (d *docIndex) addModel(obj *Record) {
	n := &Node{
		TypedID:  uint32(len(d.scene.Nodes)),
		Name:     objectName(obj),
		Rotation: math.QuatIdentity(),
		Scale:    math.Vec3One(),
	}

	const degToRad = gomath.Pi / 180
	for _, p := range obj.Child("Properties70").ChildAll("P") {
		switch p.Str(0) {
		case "Lcl Translation":
			n.Translation = propVec3(p)
		case "Lcl Rotation":
			e := propVec3(p)
			n.Rotation = math.QuatFromEulerXYZ(e.X*degToRad, e.Y*degToRad, e.Z*degToRad)
		case "Lcl Scaling":
			n.Scale = propVec3(p)
		}
	}

	d.scene.Nodes = append(d.scene.Nodes, n)
	d.nodes[obj.Int(0, 0)] = n
}

func (d *docIndex) addGeometry(obj *Record) {
	m := &Mesh{
		TypedID: uint32(len(d.scene.Meshes)),
		Name:    objectName(obj),
	}

	if verts := obj.Child("Vertices").Floats(0); len(verts) > 0 && len(verts)%3 == 0 {
		m.Positions = make([]math.Vec3, 0, len(verts)/3)
		for i := 0; i < len(verts); i += 3 {
			m.Positions = append(m.Positions, math.Vec3{X: verts[i], Y: verts[i+1], Z: verts[i+2]})
		}
	}

	m.Indices = decodePolygons(obj.Child("PolygonVertexIndex").Ints(0), len(m.Positions))

	if normals := obj.Child("LayerElementNormal").Child("Normals").Floats(0); len(normals) > 0 && len(normals)%3 == 0 {
		m.Normals = make([]math.Vec3, 0, len(normals)/3)
		for i := 0; i < len(normals); i += 3 {
			m.Normals = append(m.Normals, math.Vec3{X: normals[i], Y: normals[i+1], Z: normals[i+2]})
		}
	}

	if uvs := obj.Child("LayerElementUV").Child("UV").Floats(0); len(uvs) > 0 && len(uvs)%2 == 0 {
		m.TexCoords = make([]math.Vec2, 0, len(uvs)/2)
		for i := 0; i < len(uvs); i += 2 {
			m.TexCoords = append(m.TexCoords, math.Vec2{X: uvs[i], Y: uvs[i+1]})
		}
	}

	d.scene.Meshes = append(d.scene.Meshes, m)
	d.meshes[obj.Int(0, 0)] = m
}

// decodePolygons expands an FBX polygon vertex index list into triangle
// indices. The last index of each polygon is stored bitwise-complemented;
// polygons with more than three corners are fan-triangulated. Faces with
// out-of-range indices are dropped.
func decodePolygons(poly []int64, vertexCount int) []uint32 {
	var out []uint32
	var face []int64
	for _, idx := range poly {
		if idx < 0 {
			face = append(face, ^idx)
			out = appendFace(out, face, vertexCount)
			face = face[:0]
			continue
		}
		face = append(face, idx)
	}
	return out
}

func appendFace(out []uint32, face []int64, vertexCount int) []uint32 {
	if len(face) < 3 {
		return out
	}
	for _, idx := range face {
		if idx < 0 || idx >= int64(vertexCount) {
			return out
		}
	}
	for i := 1; i+1 < len(face); i++ {
		out = append(out, uint32(face[0]), uint32(face[i]), uint32(face[i+1]))
	}
	return out
}

func (d *docIndex) addMaterial(obj *Record) {
	m := &Material{
		TypedID: uint32(len(d.scene.Materials)),
		Name:    objectName(obj),
	}

	for _, p := range obj.Child("Properties70").ChildAll("P") {
		color := propColor(p)
		if color == nil {
			continue
		}
		switch p.Str(0) {
		case "DiffuseColor":
			m.DiffuseColor = color
		case "SpecularColor":
			m.SpecularColor = color
		case "EmissiveColor":
			m.EmissiveColor = color
		case "BaseColor", "Maya|baseColor":
			m.PBRBaseColor = color
		case "EmissionColor", "Maya|emissionColor":
			m.PBREmissionColor = color
		case "Maya|specularColor":
			m.PBRSpecularColor = color
		}
	}

	d.scene.Materials = append(d.scene.Materials, m)
	d.materials[obj.Int(0, 0)] = m
}

func (d *docIndex) addTexture(obj *Record) {
	t := &Texture{
		TypedID: uint32(len(d.scene.Textures)),
		Name:    objectName(obj),
	}
	t.FilePath = obj.Child("FileName").Str(0)
	if t.FilePath == "" {
		t.FilePath = obj.Child("RelativeFilename").Str(0)
	}
	d.scene.Textures = append(d.scene.Textures, t)
}

func (d *docIndex) addStack(obj *Record) {
	st := &AnimStack{
		TypedID: uint32(len(d.scene.AnimStacks)),
		Name:    objectName(obj),
	}
	for _, p := range obj.Child("Properties70").ChildAll("P") {
		switch p.Str(0) {
		case "LocalStart":
			st.TimeBegin = float64(p.Int(4, 0)) / ktimePerSecond
		case "LocalStop":
			st.TimeEnd = float64(p.Int(4, 0)) / ktimePerSecond
		}
	}
	d.scene.AnimStacks = append(d.scene.AnimStacks, st)
	d.stacks[obj.Int(0, 0)] = st
}

func (d *docIndex) addCurveNode(obj *Record) {
	ch := &AnimChannel{}
	for _, p := range obj.Child("Properties70").ChildAll("P") {
		def := p.Float(4, 0)
		switch p.Str(0) {
		case "d|X":
			ch.X = &AnimCurve{Default: def}
		case "d|Y":
			ch.Y = &AnimCurve{Default: def}
		case "d|Z":
			ch.Z = &AnimCurve{Default: def}
		}
	}
	d.channels[obj.Int(0, 0)] = ch
}

func (d *docIndex) addCurve(obj *Record) {
	times := obj.Child("KeyTime").Ints(0)
	values := obj.Child("KeyValueFloat").Floats(0)
	n := len(times)
	if len(values) < n {
		n = len(values)
	}

	c := &AnimCurve{Keys: make([]AnimKey, 0, n)}
	for i := 0; i < n; i++ {
		c.Keys = append(c.Keys, AnimKey{
			Time:  float64(times[i]) / ktimePerSecond,
			Value: values[i],
		})
	}
	d.curves[obj.Int(0, 0)] = c
}

// wire resolves the Connections block. References into objects that were
// not indexed resolve to nothing and are skipped.
func (d *docIndex) wire(conns *Record) {
	if conns == nil {
		return
	}

	type connection struct {
		kind          string
		child, parent int64
		prop          string
	}
	var all []connection
	for _, c := range conns.ChildAll("C") {
		all = append(all, connection{
			kind:   c.Str(0),
			child:  c.Int(1, 0),
			parent: c.Int(2, 0),
			prop:   c.Str(3),
		})
	}

	// Hierarchy and mesh payload first, then materials (which need the
	// payload in place), then animation bindings.
	for _, c := range all {
		if c.kind != "OO" {
			continue
		}
		if child, ok := d.nodes[c.child]; ok {
			if parent, ok := d.nodes[c.parent]; ok {
				child.SetParent(parent)
			}
		}
		if mesh, ok := d.meshes[c.child]; ok {
			if node, ok := d.nodes[c.parent]; ok {
				node.SetMesh(mesh)
			}
		}
	}

	for _, c := range all {
		if c.kind != "OO" {
			continue
		}
		if mat, ok := d.materials[c.child]; ok {
			if node, ok := d.nodes[c.parent]; ok && node.Mesh != nil {
				node.Mesh.Materials = append(node.Mesh.Materials, mat)
			}
		}
	}

	for _, c := range all {
		ch, isChannel := d.channels[c.child]
		switch {
		case c.kind == "OP" && isChannel:
			if node, ok := d.nodes[c.parent]; ok {
				ch.Node = node
				switch c.prop {
				case "Lcl Translation":
					ch.Target = AnimTargetTranslation
				case "Lcl Rotation":
					ch.Target = AnimTargetRotation
				case "Lcl Scaling":
					ch.Target = AnimTargetScale
				default:
					ch.Node = nil
				}
			}
		case c.kind == "OP":
			if curve, ok := d.curves[c.child]; ok {
				if target, ok := d.channels[c.parent]; ok {
					attachCurve(target, c.prop, curve)
				}
			}
		case c.kind == "OO" && isChannel:
			if _, isLayer := d.layers[c.parent]; isLayer {
				d.layers[c.parent] = append(d.layers[c.parent], ch)
			}
		}
	}

	for _, c := range all {
		if c.kind != "OO" {
			continue
		}
		channels, ok := d.layers[c.child]
		if !ok {
			continue
		}
		if stack, ok := d.stacks[c.parent]; ok {
			for _, ch := range channels {
				if ch.Node != nil {
					stack.Channels = append(stack.Channels, ch)
				}
			}
		}
	}
}

// attachCurve binds a curve to one component of a channel, carrying over
// the component's default value.
func attachCurve(ch *AnimChannel, prop string, curve *AnimCurve) {
	carry := func(old *AnimCurve) *AnimCurve {
		if old != nil {
			curve.Default = old.Default
		}
		return curve
	}
	switch prop {
	case "d|X":
		ch.X = carry(ch.X)
	case "d|Y":
		ch.Y = carry(ch.Y)
	case "d|Z":
		ch.Z = carry(ch.Z)
	}
}

// propVec3 reads the three value slots of a Properties70 "P" record.
func propVec3(p *Record) math.Vec3 {
	return math.Vec3{X: p.Float(4, 0), Y: p.Float(5, 0), Z: p.Float(6, 0)}
}

// propColor reads a color property, recording how many numeric components
// backed it. Returns nil when no numeric values are present.
func propColor(p *Record) *ColorProp {
	comps := len(p.Attrs) - 4
	if comps <= 0 {
		return nil
	}
	return &ColorProp{Value: propVec3(p), Components: comps}
}
