package rules

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// Field is one key/value pair of a canonical object.
type Field struct {
	Key   string
	Value any
}

// Object is an ordered JSON object. Keys are written in slice order, never sorted.
type Object []Field

// MarshalCanonical encodes v as compact canonical JSON.
//
// Supported values are string, nil and Object. Strings are written as the
// UTF-8 bytes given, without HTML, slash or non-ASCII escaping; only quote,
// backslash and control characters are escaped. Identifiers compare by bytes
// in storage, so they are never normalized here.
func MarshalCanonical(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Hash returns the lowercase hex SHA-256 digest of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func writeCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
	case string:
		return writeCanonicalString(buf, val)
	case Object:
		buf.WriteByte('{')
		seen := make(map[string]bool, len(val))
		for i, f := range val {
			if seen[f.Key] {
				return fmt.Errorf("canonical: duplicate key %q", f.Key)
			}
			seen[f.Key] = true

			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonicalString(buf, f.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeCanonical(buf, f.Value); err != nil {
				return fmt.Errorf("%s: %w", f.Key, err)
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("canonical: unsupported type %T", v)
	}
	return nil
}

func writeCanonicalString(buf *bytes.Buffer, s string) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("canonical: invalid UTF-8 in %q", s)
	}

	var enc bytes.Buffer
	e := json.NewEncoder(&enc)
	e.SetEscapeHTML(false)
	if err := e.Encode(s); err != nil {
		return err
	}

	buf.Write(unescapeLineSeparators(bytes.TrimSuffix(enc.Bytes(), []byte("\n"))))
	return nil
}

// unescapeLineSeparators turns the \u2028 and \u2029 escapes that
// encoding/json adds back into literal characters. Escape sequences are
// consumed pairwise so an escaped backslash followed by "u2028" is kept.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}

	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] != '\\' || i+1 >= len(data) {
			out = append(out, data[i])
			continue
		}

		if data[i+1] == 'u' && i+6 <= len(data) {
			switch string(data[i+2 : i+6]) {
			case "2028":
				out = utf8.AppendRune(out, '\u2028')
				i += 5
				continue
			case "2029":
				out = utf8.AppendRune(out, '\u2029')
				i += 5
				continue
			}
		}

		out = append(out, data[i], data[i+1])
		i++
	}
	return out
}
