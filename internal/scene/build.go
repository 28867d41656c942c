package scene

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/fbxbridge/internal/logger"
	"github.com/Faultbox/fbxbridge/pkg/fbx"
	"github.com/Faultbox/fbxbridge/pkg/term"
)

// ErrAllocation reports a failure to create the native scene container.
// It is the only hard failure the builder produces outside strict mode.
var ErrAllocation = errors.New("failed to allocate scene")

// BuildOptions tunes the term → typed-graph conversion.
type BuildOptions struct {
	// Strict turns unresolved parent_id/mesh_id references into errors
	// instead of silently dropping them.
	Strict bool
}

// Build reconstructs a typed scene graph from a generic scene term in two
// phases: phase 1 creates every entity and sets its self-contained
// attributes, recording id → handle mappings; phase 2 re-walks the node
// entries and resolves the integer foreign keys through those mappings.
//
// Malformed optional fields are absorbed by defaulting or omission, never
// surfaced. Entries without a usable id are skipped.
func Build(t *term.Map, opts BuildOptions) (*fbx.Scene, error) {
	s := fbx.NewScene()
	if t == nil {
		return s, nil
	}

	nodes := NewTable[*fbx.Node]()
	meshes := NewTable[*fbx.Mesh]()
	materials := NewTable[*fbx.Material]()

	nodeTerms, _ := t.Maps("nodes")
	meshTerms, _ := t.Maps("meshes")
	materialTerms, _ := t.Maps("materials")

	// Phase 1: create entities and set scalar attributes.
	for _, nt := range nodeTerms {
		id, ok := nt.Uint("id")
		if !ok {
			continue
		}
		n := s.CreateNode()
		nodes.Put(id, n)
		n.TypedID = id
		if name, ok := nt.String("name"); ok {
			n.Name = name
		}
		if flat, ok := nt.Floats("translation"); ok {
			if v, err := term.Vec3FromTerm(flat); err == nil {
				n.Translation = v
			}
		}
		if flat, ok := nt.Floats("rotation"); ok {
			if q, err := term.UnpackQuat(flat); err == nil {
				n.Rotation = q
			}
		}
		if flat, ok := nt.Floats("scale"); ok {
			if v, err := term.Vec3FromTerm(flat); err == nil {
				n.Scale = v
			}
		}
	}

	for _, mt := range meshTerms {
		id, ok := mt.Uint("id")
		if !ok {
			continue
		}
		m := s.CreateMesh()
		meshes.Put(id, m)
		m.TypedID = id
		if name, ok := mt.String("name"); ok {
			m.Name = name
		}
		if flat, ok := mt.Floats("positions"); ok {
			if tuples, err := term.UnpackVec3(flat); err == nil {
				m.Positions = tuples
			}
		}
		if indices, ok := mt.Uints("indices"); ok {
			m.Indices = indices
		}
		if flat, ok := mt.Floats("normals"); ok {
			if tuples, err := term.UnpackVec3(flat); err == nil {
				m.Normals = tuples
			}
		}
		if flat, ok := mt.Floats("texcoords"); ok {
			if tuples, err := term.UnpackVec2(flat); err == nil {
				m.TexCoords = tuples
			}
		}
	}

	for _, mt := range materialTerms {
		id, ok := mt.Uint("id")
		if !ok {
			continue
		}
		m := s.CreateMaterial()
		materials.Put(id, m)
		m.TypedID = id
		if name, ok := mt.String("name"); ok {
			m.Name = name
		}
		// Only the diffuse color survives the write direction.
		if flat, ok := mt.Floats("diffuse_color"); ok {
			if v, err := term.Vec3FromTerm(flat); err == nil {
				m.DiffuseColor = &fbx.ColorProp{Value: v, Components: 3}
			}
		}
	}

	// Phase 2: resolve foreign keys.
	for _, nt := range nodeTerms {
		id, ok := nt.Uint("id")
		if !ok {
			continue
		}
		n, ok := nodes.Handle(id)
		if !ok {
			continue
		}
		if parentID, ok := nt.Uint("parent_id"); ok {
			if parent, found := nodes.Handle(parentID); found {
				n.SetParent(parent)
			} else if opts.Strict {
				s.Free()
				return nil, fmt.Errorf("node %d: unresolved parent_id %d", id, parentID)
			} else {
				logger.Debug("dropping unresolved parent reference",
					zap.Uint32("node", id), zap.Uint32("parent_id", parentID))
			}
		}
		if meshID, ok := nt.Uint("mesh_id"); ok {
			if mesh, found := meshes.Handle(meshID); found {
				n.SetMesh(mesh)
			} else if opts.Strict {
				s.Free()
				return nil, fmt.Errorf("node %d: unresolved mesh_id %d", id, meshID)
			} else {
				logger.Debug("dropping unresolved mesh reference",
					zap.Uint32("node", id), zap.Uint32("mesh_id", meshID))
			}
		}
	}

	// Material assignment follows the mesh entries' material_ids.
	for _, mt := range meshTerms {
		id, ok := mt.Uint("id")
		if !ok {
			continue
		}
		m, ok := meshes.Handle(id)
		if !ok {
			continue
		}
		matIDs, ok := mt.Uints("material_ids")
		if !ok {
			continue
		}
		for _, matID := range matIDs {
			if mat, found := materials.Handle(matID); found {
				m.Materials = append(m.Materials, mat)
			}
		}
	}

	return s, nil
}
