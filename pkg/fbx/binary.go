package fbx

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	gomath "math"
)

// FBX format errors.
var (
	ErrInvalidMagic       = errors.New("invalid FBX binary magic")
	ErrTruncatedData      = errors.New("truncated FBX data")
	ErrUnsupportedVersion = errors.New("unsupported FBX version")
	ErrCorruptRecord      = errors.New("corrupt FBX record")
	ErrEmptyDocument      = errors.New("FBX document contains no records")
)

// binaryMagic is the 21-byte file signature followed by 0x1A 0x00.
const binaryMagic = "Kaydara FBX Binary  \x00"

// isBinary reports whether data starts with the binary FBX signature.
func isBinary(data []byte) bool {
	return len(data) >= len(binaryMagic) && string(data[:len(binaryMagic)]) == binaryMagic
}

// binReader is a cursor over a binary FBX byte slice. wide selects the
// 64-bit record header layout used from version 7500 onwards.
type binReader struct {
	data []byte
	off  int
	wide bool
}

func (r *binReader) remaining() int {
	return len(r.data) - r.off
}

func (r *binReader) bytes(n int) ([]byte, error) {
	if n < 0 || r.remaining() < n {
		return nil, ErrTruncatedData
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *binReader) u8() (uint8, error) {
	b, err := r.bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *binReader) u32() (uint32, error) {
	b, err := r.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *binReader) u64() (uint64, error) {
	b, err := r.bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// headerWord reads an end-offset/count field in the width selected by the
// file version.
func (r *binReader) headerWord() (uint64, error) {
	if r.wide {
		return r.u64()
	}
	v, err := r.u32()
	return uint64(v), err
}

// parseBinary reads a binary FBX file into a raw record tree.
func parseBinary(data []byte) (*Record, int, error) {
	if !isBinary(data) {
		return nil, 0, ErrInvalidMagic
	}
	if len(data) < len(binaryMagic)+2+4 {
		return nil, 0, ErrTruncatedData
	}

	version := int(binary.LittleEndian.Uint32(data[len(binaryMagic)+2:]))
	if version < 7100 || version > 7700 {
		return nil, 0, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	r := &binReader{data: data, off: len(binaryMagic) + 2 + 4, wide: version >= 7500}
	root := &Record{}
	for {
		rec, err := r.readRecord()
		if err != nil {
			return nil, 0, err
		}
		if rec == nil {
			break
		}
		root.Children = append(root.Children, rec)
		if r.remaining() == 0 {
			break
		}
	}
	return root, version, nil
}

// readRecord reads one record. Returns nil for the null sentinel that
// terminates a child list.
func (r *binReader) readRecord() (*Record, error) {
	endOffset, err := r.headerWord()
	if err != nil {
		return nil, err
	}
	numAttrs, err := r.headerWord()
	if err != nil {
		return nil, err
	}
	attrBytes, err := r.headerWord()
	if err != nil {
		return nil, err
	}
	nameLen, err := r.u8()
	if err != nil {
		return nil, err
	}

	if endOffset == 0 && numAttrs == 0 && attrBytes == 0 && nameLen == 0 {
		return nil, nil
	}
	if endOffset > uint64(len(r.data)) || int(endOffset) < r.off {
		return nil, ErrCorruptRecord
	}
	if numAttrs > 1<<24 {
		return nil, ErrCorruptRecord
	}

	nameBytes, err := r.bytes(int(nameLen))
	if err != nil {
		return nil, err
	}
	rec := &Record{Name: string(nameBytes)}

	for i := uint64(0); i < numAttrs; i++ {
		attr, err := r.readAttr()
		if err != nil {
			return nil, err
		}
		rec.Attrs = append(rec.Attrs, attr)
	}

	for r.off < int(endOffset) {
		child, err := r.readRecord()
		if err != nil {
			return nil, err
		}
		if child == nil {
			break
		}
		rec.Children = append(rec.Children, child)
	}
	if r.off > int(endOffset) {
		return nil, ErrCorruptRecord
	}
	r.off = int(endOffset)
	return rec, nil
}

// readAttr reads one typed attribute value.
func (r *binReader) readAttr() (any, error) {
	code, err := r.u8()
	if err != nil {
		return nil, err
	}

	switch code {
	case 'Y':
		b, err := r.bytes(2)
		if err != nil {
			return nil, err
		}
		return int16(binary.LittleEndian.Uint16(b)), nil
	case 'C':
		b, err := r.u8()
		if err != nil {
			return nil, err
		}
		return b != 0, nil
	case 'I':
		v, err := r.u32()
		if err != nil {
			return nil, err
		}
		return int32(v), nil
	case 'L':
		v, err := r.u64()
		if err != nil {
			return nil, err
		}
		return int64(v), nil
	case 'F':
		v, err := r.u32()
		if err != nil {
			return nil, err
		}
		return gomath.Float32frombits(v), nil
	case 'D':
		v, err := r.u64()
		if err != nil {
			return nil, err
		}
		return gomath.Float64frombits(v), nil
	case 'S', 'R':
		n, err := r.u32()
		if err != nil {
			return nil, err
		}
		b, err := r.bytes(int(n))
		if err != nil {
			return nil, err
		}
		if code == 'S' {
			return string(b), nil
		}
		return append([]byte(nil), b...), nil
	case 'f', 'd', 'i', 'l', 'b':
		return r.readArray(code)
	default:
		return nil, fmt.Errorf("%w: unknown attribute type %q", ErrCorruptRecord, code)
	}
}

// elemSize returns the element width for a binary array type code.
func elemSize(code uint8) int {
	switch code {
	case 'b':
		return 1
	case 'i', 'f':
		return 4
	default:
		return 8
	}
}

// readArray reads a possibly zlib-deflated numeric array attribute.
func (r *binReader) readArray(code uint8) (any, error) {
	count, err := r.u32()
	if err != nil {
		return nil, err
	}
	encoding, err := r.u32()
	if err != nil {
		return nil, err
	}
	byteLen, err := r.u32()
	if err != nil {
		return nil, err
	}

	if count > 1<<28 {
		return nil, ErrCorruptRecord
	}

	var raw []byte
	switch encoding {
	case 0:
		raw, err = r.bytes(int(byteLen))
		if err != nil {
			return nil, err
		}
	case 1:
		comp, err := r.bytes(int(byteLen))
		if err != nil {
			return nil, err
		}
		zr, err := zlib.NewReader(bytes.NewReader(comp))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
		}
		raw, err = io.ReadAll(zr)
		zr.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown array encoding %d", ErrCorruptRecord, encoding)
	}

	if len(raw) < int(count)*elemSize(code) {
		return nil, ErrTruncatedData
	}

	switch code {
	case 'f':
		out := make([]float32, count)
		for i := range out {
			out[i] = gomath.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
		}
		return out, nil
	case 'd':
		out := make([]float64, count)
		for i := range out {
			out[i] = gomath.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
		}
		return out, nil
	case 'i':
		out := make([]int32, count)
		for i := range out {
			out[i] = int32(binary.LittleEndian.Uint32(raw[i*4:]))
		}
		return out, nil
	case 'l':
		out := make([]int64, count)
		for i := range out {
			out[i] = int64(binary.LittleEndian.Uint64(raw[i*8:]))
		}
		return out, nil
	default: // 'b'
		out := make([]byte, count)
		copy(out, raw)
		return out, nil
	}
}
