package fbx

import (
	"bytes"
	"encoding/binary"
	"fmt"
	gomath "math"
)

// encodeBinary serializes a raw record tree into the binary FBX layout.
// Arrays are written uncompressed. Only the 32-bit record header form is
// emitted; callers should not pass versions >= 7500.
func encodeBinary(root *Record, version int) ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.WriteString(binaryMagic)
	buf.Write([]byte{0x1a, 0x00})

	var verBytes [4]byte
	binary.LittleEndian.PutUint32(verBytes[:], uint32(version))
	buf.Write(verBytes[:])

	for _, rec := range root.Children {
		if err := writeBinaryRecord(buf, rec); err != nil {
			return nil, err
		}
	}
	buf.Write(make([]byte, 13))
	return buf.Bytes(), nil
}

// writeBinaryRecord writes one record, patching its absolute end offset
// after the children are known.
func writeBinaryRecord(buf *bytes.Buffer, rec *Record) error {
	start := buf.Len()
	buf.Write(make([]byte, 4)) // end offset placeholder

	attrs := &bytes.Buffer{}
	for _, a := range rec.Attrs {
		if err := writeBinaryAttr(attrs, a); err != nil {
			return err
		}
	}

	var word [4]byte
	binary.LittleEndian.PutUint32(word[:], uint32(len(rec.Attrs)))
	buf.Write(word[:])
	binary.LittleEndian.PutUint32(word[:], uint32(attrs.Len()))
	buf.Write(word[:])

	if len(rec.Name) > 255 {
		return fmt.Errorf("%w: record name too long", ErrCorruptRecord)
	}
	buf.WriteByte(byte(len(rec.Name)))
	buf.WriteString(rec.Name)
	buf.Write(attrs.Bytes())

	for _, child := range rec.Children {
		if err := writeBinaryRecord(buf, child); err != nil {
			return err
		}
	}
	if len(rec.Children) > 0 {
		buf.Write(make([]byte, 13))
	}

	binary.LittleEndian.PutUint32(buf.Bytes()[start:], uint32(buf.Len()))
	return nil
}

// writeBinaryAttr writes one typed attribute.
func writeBinaryAttr(buf *bytes.Buffer, attr any) error {
	var scratch [8]byte
	switch v := attr.(type) {
	case int16:
		buf.WriteByte('Y')
		binary.LittleEndian.PutUint16(scratch[:2], uint16(v))
		buf.Write(scratch[:2])
	case bool:
		buf.WriteByte('C')
		if v {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	case int32:
		buf.WriteByte('I')
		binary.LittleEndian.PutUint32(scratch[:4], uint32(v))
		buf.Write(scratch[:4])
	case int64:
		buf.WriteByte('L')
		binary.LittleEndian.PutUint64(scratch[:], uint64(v))
		buf.Write(scratch[:])
	case float32:
		buf.WriteByte('F')
		binary.LittleEndian.PutUint32(scratch[:4], gomath.Float32bits(v))
		buf.Write(scratch[:4])
	case float64:
		buf.WriteByte('D')
		binary.LittleEndian.PutUint64(scratch[:], gomath.Float64bits(v))
		buf.Write(scratch[:])
	case string:
		buf.WriteByte('S')
		binary.LittleEndian.PutUint32(scratch[:4], uint32(len(v)))
		buf.Write(scratch[:4])
		buf.WriteString(v)
	case []byte:
		buf.WriteByte('R')
		binary.LittleEndian.PutUint32(scratch[:4], uint32(len(v)))
		buf.Write(scratch[:4])
		buf.Write(v)
	case []int32:
		writeArrayHeader(buf, 'i', len(v), 4)
		for _, n := range v {
			binary.LittleEndian.PutUint32(scratch[:4], uint32(n))
			buf.Write(scratch[:4])
		}
	case []int64:
		writeArrayHeader(buf, 'l', len(v), 8)
		for _, n := range v {
			binary.LittleEndian.PutUint64(scratch[:], uint64(n))
			buf.Write(scratch[:])
		}
	case []float32:
		writeArrayHeader(buf, 'f', len(v), 4)
		for _, f := range v {
			binary.LittleEndian.PutUint32(scratch[:4], gomath.Float32bits(f))
			buf.Write(scratch[:4])
		}
	case []float64:
		writeArrayHeader(buf, 'd', len(v), 8)
		for _, f := range v {
			binary.LittleEndian.PutUint64(scratch[:], gomath.Float64bits(f))
			buf.Write(scratch[:])
		}
	default:
		return fmt.Errorf("%w: unsupported attribute type %T", ErrCorruptRecord, attr)
	}
	return nil
}

func writeArrayHeader(buf *bytes.Buffer, code byte, count, size int) {
	var word [4]byte
	buf.WriteByte(code)
	binary.LittleEndian.PutUint32(word[:], uint32(count))
	buf.Write(word[:])
	binary.LittleEndian.PutUint32(word[:], 0) // encoding: raw
	buf.Write(word[:])
	binary.LittleEndian.PutUint32(word[:], uint32(count*size))
	buf.Write(word[:])
}
