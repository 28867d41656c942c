// Package fbxbridge marshals FBX scenes between their typed, pointer-linked
// in-memory form and a generic ordered map/list term that can cross a
// foreign-function boundary. Loading parses a file into the typed graph and
// extracts the term; saving rebuilds the graph from a term and writes it out.
package fbxbridge

import (
	"errors"
	"fmt"

	"github.com/Faultbox/fbxbridge/internal/scene"
	"github.com/Faultbox/fbxbridge/pkg/fbx"
	"github.com/Faultbox/fbxbridge/pkg/term"
)

// Format selects the on-disk encoding for Save. Unrecognized values fall
// back to binary.
type Format string

const (
	FormatBinary Format = "binary"
	FormatASCII  Format = "ascii"
)

// ParseFormat maps a format token to a Format. Anything other than
// "ascii" means binary.
func ParseFormat(s string) Format {
	if s == string(FormatASCII) {
		return FormatASCII
	}
	return FormatBinary
}

var (
	// ErrLoad wraps a parser rejection; the parser's diagnostic is
	// carried verbatim.
	ErrLoad = errors.New("load failed")
	// ErrSave wraps a writer failure; its diagnostic is truncated to
	// maxDiagnostic bytes.
	ErrSave = errors.New("save failed")
	// ErrAllocation reports a hard failure creating the native scene
	// during Save.
	ErrAllocation = scene.ErrAllocation
)

// maxDiagnostic bounds the writer diagnostic carried by ErrSave.
const maxDiagnostic = 256

// Converter applies configured marshaling options. The zero value uses the
// defaults: 30 samples per second bake rate and permissive wiring. A
// Converter holds no state between calls; concurrent use is safe.
type Converter struct {
	// SampleRate is the animation bake rate in samples per second.
	// Zero means the default of 30.
	SampleRate float64
	// Strict makes Save fail on unresolved parent_id/mesh_id references
	// instead of dropping them.
	Strict bool
	// Version overrides the FBX version code written by Save.
	Version int
}

// Load parses the FBX file at path and extracts its scene term. The typed
// scene is released before returning, on success and failure alike.
func (c Converter) Load(path string) (*term.Map, error) {
	s, err := fbx.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrLoad, err.Error())
	}
	defer s.Free()
	return scene.Extract(s, scene.ExtractOptions{SampleRate: c.SampleRate}), nil
}

// LoadBytes is Load for an in-memory FBX document.
func (c Converter) LoadBytes(data []byte) (*term.Map, error) {
	s, err := fbx.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrLoad, err.Error())
	}
	defer s.Free()
	return scene.Extract(s, scene.ExtractOptions{SampleRate: c.SampleRate}), nil
}

// Save rebuilds a typed scene from the term and writes it to path in the
// given format. The rebuilt scene is released unconditionally before
// returning. On success the written path is returned.
func (c Converter) Save(path string, t *term.Map, format Format) (string, error) {
	s, err := scene.Build(t, scene.BuildOptions{Strict: c.Strict})
	if err != nil {
		return "", err
	}
	defer s.Free()

	opts := fbx.SaveOptions{
		ASCII:   format == FormatASCII,
		Version: c.Version,
	}
	if err := fbx.Save(s, path, opts); err != nil {
		return "", fmt.Errorf("%w: %s", ErrSave, truncate(err.Error(), maxDiagnostic))
	}
	return path, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// Load parses the FBX file at path with default options.
func Load(path string) (*term.Map, error) {
	return Converter{}.Load(path)
}

// LoadBytes parses an in-memory FBX document with default options.
func LoadBytes(data []byte) (*term.Map, error) {
	return Converter{}.LoadBytes(data)
}

// Save writes the scene term to path with default options.
func Save(path string, t *term.Map, format Format) (string, error) {
	return Converter{}.Save(path, t, format)
}
