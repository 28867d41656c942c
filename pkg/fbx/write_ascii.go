package fbx

import (
	"fmt"
	"strconv"
	"strings"
)

// encodeASCII serializes a raw record tree into the ascii FBX layout.
func encodeASCII(root *Record, version int) ([]byte, error) {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "; FBX %d.%d.0 project file\n", version/1000, (version%1000)/100)
	sb.WriteString("; ----------------------------------------------------\n\n")

	for _, rec := range root.Children {
		if err := writeASCIIRecord(sb, rec, 0); err != nil {
			return nil, err
		}
	}
	return []byte(sb.String()), nil
}

func writeASCIIRecord(sb *strings.Builder, rec *Record, depth int) error {
	indent := strings.Repeat("\t", depth)
	sb.WriteString(indent)
	sb.WriteString(rec.Name)
	sb.WriteString(":")

	// An array attribute is rendered as its own brace block and excludes
	// other attributes and children on the same record.
	if len(rec.Attrs) == 1 {
		if done, err := writeASCIIArray(sb, rec.Attrs[0], indent); err != nil {
			return err
		} else if done {
			return nil
		}
	}

	for i, a := range rec.Attrs {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(" ")
		if err := writeASCIIAttr(sb, a); err != nil {
			return err
		}
	}

	if len(rec.Children) > 0 {
		sb.WriteString(" {\n")
		for _, child := range rec.Children {
			if err := writeASCIIRecord(sb, child, depth+1); err != nil {
				return err
			}
		}
		sb.WriteString(indent)
		sb.WriteString("}\n")
	} else {
		sb.WriteString("\n")
	}
	return nil
}

// writeASCIIArray renders numeric array attributes in the "*N { a: ... }"
// form. Returns done=false when the attribute is not an array.
func writeASCIIArray(sb *strings.Builder, attr any, indent string) (bool, error) {
	var vals []string
	switch v := attr.(type) {
	case []int32:
		vals = make([]string, len(v))
		for i, n := range v {
			vals[i] = strconv.FormatInt(int64(n), 10)
		}
	case []int64:
		vals = make([]string, len(v))
		for i, n := range v {
			vals[i] = strconv.FormatInt(n, 10)
		}
	case []float32:
		vals = make([]string, len(v))
		for i, f := range v {
			vals[i] = strconv.FormatFloat(float64(f), 'g', -1, 32)
		}
	case []float64:
		vals = make([]string, len(v))
		for i, f := range v {
			vals[i] = strconv.FormatFloat(f, 'g', -1, 64)
		}
	default:
		return false, nil
	}

	fmt.Fprintf(sb, " *%d {\n%s\ta: %s\n%s}\n", len(vals), indent, strings.Join(vals, ","), indent)
	return true, nil
}

func writeASCIIAttr(sb *strings.Builder, attr any) error {
	switch v := attr.(type) {
	case string:
		sb.WriteString(`"`)
		sb.WriteString(asciiObjectName(v))
		sb.WriteString(`"`)
	case bool:
		if v {
			sb.WriteString("1")
		} else {
			sb.WriteString("0")
		}
	case int16:
		sb.WriteString(strconv.FormatInt(int64(v), 10))
	case int32:
		sb.WriteString(strconv.FormatInt(int64(v), 10))
	case int64:
		sb.WriteString(strconv.FormatInt(v, 10))
	case float32:
		sb.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
	case float64:
		sb.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	default:
		return fmt.Errorf("%w: unsupported ascii attribute type %T", ErrCorruptRecord, attr)
	}
	return nil
}

// asciiObjectName converts the binary "Name\x00\x01Class" convention to the
// ascii "Class::Name" convention. Other strings pass through unchanged.
func asciiObjectName(s string) string {
	if i := strings.Index(s, "\x00\x01"); i >= 0 {
		return s[i+2:] + "::" + s[:i]
	}
	return s
}
