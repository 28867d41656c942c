// Package fbx reads and writes a subset of the Autodesk FBX 7.x format:
// model hierarchy, mesh geometry, materials, textures and keyframed
// node animation. Both the binary and the ascii encodings are handled on
// load; Save picks the encoding through SaveOptions.
package fbx

import "os"

// SaveOptions selects the on-disk encoding for Save.
type SaveOptions struct {
	// ASCII switches the writer to the text form. The default is binary.
	ASCII bool
	// Version is the FBX version code to stamp, e.g. 7400. Zero means
	// DefaultVersion.
	Version int
}

// Load reads and parses an FBX file from disk.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes an FBX document from memory, accepting either the binary
// or the ascii form.
func Parse(data []byte) (*Scene, error) {
	var (
		root    *Record
		version int
		err     error
	)
	if isBinary(data) {
		root, version, err = parseBinary(data)
	} else {
		root, err = parseASCII(data)
	}
	if err != nil {
		return nil, err
	}
	// An input with nothing to decode is garbage, not an empty scene.
	if len(root.Children) == 0 {
		return nil, ErrEmptyDocument
	}
	return buildScene(root, version)
}

// Encode serializes the scene to a byte form without touching the disk.
func Encode(s *Scene, opts SaveOptions) ([]byte, error) {
	version := opts.Version
	if version == 0 {
		version = s.Version
	}
	if version == 0 {
		version = DefaultVersion
	}
	// The binary writer emits the 32-bit record header form only.
	if !opts.ASCII && version >= 7500 {
		version = DefaultVersion
	}
	root := encodeScene(s, version)
	if opts.ASCII {
		return encodeASCII(root, version)
	}
	return encodeBinary(root, version)
}

// Save serializes the scene and writes it to path.
func Save(s *Scene, path string, opts SaveOptions) error {
	data, err := Encode(s, opts)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
