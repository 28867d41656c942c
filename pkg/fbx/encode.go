package fbx

import (
	gomath "math"

	"github.com/Faultbox/fbxbridge/pkg/math"
)

// encodeScene renders the typed scene into a raw record tree ready for a
// writer. Animation stacks are not emitted; the save path carries none.
func encodeScene(s *Scene, version int) *Record {
	enc := &sceneEncoder{
		nextID:  1000000,
		nodeIDs: make(map[*Node]int64),
		meshIDs: make(map[*Mesh]int64),
		matIDs:  make(map[*Material]int64),
	}

	header := NewRecord("FBXHeaderExtension").Add(
		NewRecord("FBXHeaderVersion", int32(1003)),
		NewRecord("FBXVersion", int32(version)),
		NewRecord("Creator", "fbxbridge"),
	)

	global := NewRecord("GlobalSettings").Add(
		NewRecord("Version", int32(1000)),
		NewRecord("Properties70").Add(
			NewRecord("P", "UpAxis", "int", "Integer", "", int32(1)),
			NewRecord("P", "UpAxisSign", "int", "Integer", "", int32(1)),
			NewRecord("P", "FrontAxis", "int", "Integer", "", int32(2)),
			NewRecord("P", "CoordAxis", "int", "Integer", "", int32(0)),
			NewRecord("P", "UnitScaleFactor", "double", "Number", "", float64(1)),
		),
	)

	definitions := NewRecord("Definitions").Add(
		NewRecord("Version", int32(100)),
		NewRecord("Count", int32(1+len(s.Nodes)+len(s.Meshes)+len(s.Materials))),
		NewRecord("ObjectType", "GlobalSettings").Add(NewRecord("Count", int32(1))),
	)
	if len(s.Nodes) > 0 {
		definitions.Add(NewRecord("ObjectType", "Model").Add(NewRecord("Count", int32(len(s.Nodes)))))
	}
	if len(s.Meshes) > 0 {
		definitions.Add(NewRecord("ObjectType", "Geometry").Add(NewRecord("Count", int32(len(s.Meshes)))))
	}
	if len(s.Materials) > 0 {
		definitions.Add(NewRecord("ObjectType", "Material").Add(NewRecord("Count", int32(len(s.Materials)))))
	}

	objects := NewRecord("Objects")
	for _, mesh := range s.Meshes {
		objects.Add(enc.geometryRecord(mesh))
	}
	for _, node := range s.Nodes {
		objects.Add(enc.modelRecord(node))
	}
	for _, mat := range s.Materials {
		objects.Add(enc.materialRecord(mat))
	}

	connections := NewRecord("Connections")
	for _, node := range s.Nodes {
		parentID := int64(0)
		if node.Parent != nil {
			parentID = enc.nodeIDs[node.Parent]
		}
		connections.Add(NewRecord("C", "OO", enc.nodeIDs[node], parentID))
		if node.Mesh != nil {
			if meshID, ok := enc.meshIDs[node.Mesh]; ok {
				connections.Add(NewRecord("C", "OO", meshID, enc.nodeIDs[node]))
			}
			for _, mat := range node.Mesh.Materials {
				if matID, ok := enc.matIDs[mat]; ok {
					connections.Add(NewRecord("C", "OO", matID, enc.nodeIDs[node]))
				}
			}
		}
	}

	root := &Record{}
	root.Add(header, global, definitions, objects, connections)
	return root
}

type sceneEncoder struct {
	nextID  int64
	nodeIDs map[*Node]int64
	meshIDs map[*Mesh]int64
	matIDs  map[*Material]int64
}

func (enc *sceneEncoder) newID() int64 {
	enc.nextID++
	return enc.nextID
}

func (enc *sceneEncoder) modelRecord(node *Node) *Record {
	id := enc.newID()
	enc.nodeIDs[node] = id

	class := "Null"
	if node.Mesh != nil {
		class = "Mesh"
	}

	const radToDeg = 180 / gomath.Pi
	ex, ey, ez := node.Rotation.EulerXYZ()

	props := NewRecord("Properties70").Add(
		lclProp("Lcl Translation", node.Translation),
		lclProp("Lcl Rotation", math.Vec3{X: ex * radToDeg, Y: ey * radToDeg, Z: ez * radToDeg}),
		lclProp("Lcl Scaling", node.Scale),
	)

	return NewRecord("Model", id, joinObjectName(node.Name, "Model"), class).Add(
		NewRecord("Version", int32(232)),
		props,
	)
}

func (enc *sceneEncoder) geometryRecord(mesh *Mesh) *Record {
	id := enc.newID()
	enc.meshIDs[mesh] = id

	rec := NewRecord("Geometry", id, joinObjectName(mesh.Name, "Geometry"), "Mesh").Add(
		NewRecord("GeometryVersion", int32(124)),
	)

	if len(mesh.Positions) > 0 {
		verts := make([]float64, 0, len(mesh.Positions)*3)
		for _, v := range mesh.Positions {
			verts = append(verts, v.X, v.Y, v.Z)
		}
		rec.Add(NewRecord("Vertices", verts))
	}
	if poly := encodePolygons(mesh.Indices); len(poly) > 0 {
		rec.Add(NewRecord("PolygonVertexIndex", poly))
	}
	if len(mesh.Normals) > 0 {
		normals := make([]float64, 0, len(mesh.Normals)*3)
		for _, n := range mesh.Normals {
			normals = append(normals, n.X, n.Y, n.Z)
		}
		rec.Add(NewRecord("LayerElementNormal", int32(0)).Add(
			NewRecord("Version", int32(101)),
			NewRecord("Name", ""),
			NewRecord("MappingInformationType", "ByVertice"),
			NewRecord("ReferenceInformationType", "Direct"),
			NewRecord("Normals", normals),
		))
	}
	if len(mesh.TexCoords) > 0 {
		uvs := make([]float64, 0, len(mesh.TexCoords)*2)
		for _, uv := range mesh.TexCoords {
			uvs = append(uvs, uv.X, uv.Y)
		}
		rec.Add(NewRecord("LayerElementUV", int32(0)).Add(
			NewRecord("Version", int32(101)),
			NewRecord("Name", ""),
			NewRecord("MappingInformationType", "ByVertice"),
			NewRecord("ReferenceInformationType", "Direct"),
			NewRecord("UV", uvs),
		))
	}
	return rec
}

// encodePolygons packs triangle indices into the FBX polygon form, with the
// closing index of each triangle bitwise-complemented. Trailing indices
// that do not form a full triangle are dropped.
func encodePolygons(indices []uint32) []int32 {
	n := len(indices) / 3 * 3
	out := make([]int32, 0, n)
	for i := 0; i+2 < len(indices); i += 3 {
		out = append(out, int32(indices[i]), int32(indices[i+1]), ^int32(indices[i+2]))
	}
	return out
}

func (enc *sceneEncoder) materialRecord(mat *Material) *Record {
	id := enc.newID()
	enc.matIDs[mat] = id

	props := NewRecord("Properties70")
	if mat.DiffuseColor != nil {
		c := mat.DiffuseColor.Value
		props.Add(NewRecord("P", "DiffuseColor", "Color", "", "A", c.X, c.Y, c.Z))
	}

	return NewRecord("Material", id, joinObjectName(mat.Name, "Material"), "").Add(
		NewRecord("Version", int32(102)),
		NewRecord("ShadingModel", "lambert"),
		NewRecord("MultiLayer", int32(0)),
		props,
	)
}

func lclProp(name string, v math.Vec3) *Record {
	return NewRecord("P", name, name, "", "A", v.X, v.Y, v.Z)
}
