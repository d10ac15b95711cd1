// Package jsonfmt parses JSON documents and renders them in the canonical
// on-disk form of the card repository.
//
// # Canonical form
//
//   - object keys sorted ascending at every nesting level
//   - four-space indentation, one member or element per line
//   - "," between items and ": " between a key and its value
//   - empty objects and arrays written as {} and []
//   - a single trailing newline
//   - non-ASCII characters written literally, never as \u escapes
//
// Numbers keep their parsed meaning: integers are written in plain decimal with
// arbitrary precision, other numbers in their shortest round-trip form.
package jsonfmt

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/nrdb/cardlint/pkg/logger"
)

var log = logger.New("jsonfmt:jsonfmt")

const indentUnit = "    "

// ErrInvalidUTF8 is returned by Parse when the input is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("file is not valid UTF-8")

// SyntaxError describes malformed JSON with a 1-based line and column.
type SyntaxError struct {
	Msg    string
	Line   int
	Column int
	Offset int64
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: line %d column %d (char %d)", e.Msg, e.Line, e.Column, e.Offset)
}

// Parse decodes a single JSON value. Numbers are kept as json.Number so no
// precision is lost; trailing data after the value is an error. Numbers that
// overflow a float64 and \u escapes of unpaired surrogates are rejected, since
// neither has a canonical form.
func Parse(raw []byte) (any, error) {
	if !utf8.Valid(raw) {
		return nil, ErrInvalidUTF8
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, newSyntaxError(raw, "Expecting value", 0)
		}
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, newSyntaxError(raw, syntaxErr.Error(), syntaxErr.Offset)
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, newSyntaxError(raw, "unexpected end of JSON input", int64(len(raw)))
		}
		return nil, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, newSyntaxError(raw, "Extra data", dec.InputOffset())
	}

	if err := checkSurrogates(raw); err != nil {
		return nil, err
	}
	if err := checkNumberRange(raw); err != nil {
		return nil, err
	}
	return doc, nil
}

// checkSurrogates scans the string literals of well-formed JSON for \u escapes
// in the surrogate range that are not part of a high/low pair. The decoder
// would otherwise replace them with U+FFFD.
func checkSurrogates(raw []byte) error {
	inString := false
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if !inString {
			if c == '"' {
				inString = true
			}
			continue
		}
		switch c {
		case '"':
			inString = false
		case '\\':
			if i+1 < len(raw) && raw[i+1] == 'u' {
				r, ok := hexEscape(raw, i)
				switch {
				case ok && utf16.IsSurrogate(r) && r < 0xdc00:
					low, lowOK := hexEscape(raw, i+6)
					if !lowOK || low < 0xdc00 || low > 0xdfff {
						return newSyntaxError(raw, "Unpaired surrogate escape", int64(i))
					}
					i += 11
					continue
				case ok && utf16.IsSurrogate(r):
					return newSyntaxError(raw, "Unpaired surrogate escape", int64(i))
				}
				i += 5
				continue
			}
			i++
		}
	}
	return nil
}

// hexEscape decodes the \uXXXX escape starting at raw[i].
func hexEscape(raw []byte, i int) (rune, bool) {
	if i+6 > len(raw) || raw[i] != '\\' || raw[i+1] != 'u' {
		return 0, false
	}
	v, err := strconv.ParseUint(string(raw[i+2:i+6]), 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(v), true
}

// checkNumberRange reports the first non-integer number literal that does not
// fit in a float64. Integers are kept at arbitrary precision and never overflow.
func checkNumberRange(raw []byte) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	for {
		tok, err := dec.Token()
		if err != nil {
			// Parse already decoded raw successfully, so this is io.EOF.
			return nil
		}
		n, ok := tok.(json.Number)
		if !ok || !strings.ContainsAny(n.String(), ".eE") {
			continue
		}
		if _, err := strconv.ParseFloat(n.String(), 64); errors.Is(err, strconv.ErrRange) {
			offset := dec.InputOffset() - int64(len(n))
			return newSyntaxError(raw, fmt.Sprintf("Number %s out of range", n), offset)
		}
	}
}

func newSyntaxError(raw []byte, msg string, offset int64) *SyntaxError {
	if offset > int64(len(raw)) {
		offset = int64(len(raw))
	}
	prefix := raw[:offset]
	line := bytes.Count(prefix, []byte("\n")) + 1
	column := int(offset) + 1
	if i := bytes.LastIndexByte(prefix, '\n'); i >= 0 {
		column = int(offset) - i
	}
	return &SyntaxError{Msg: msg, Line: line, Column: column, Offset: offset}
}

// Canonical renders a decoded value (as produced by Parse) in canonical form.
func Canonical(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeValue(&buf, v, 0); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Format parses raw JSON and returns its canonical form.
func Format(raw []byte) ([]byte, error) {
	doc, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	return Canonical(doc)
}

// IsCanonical reports whether raw is byte-identical to its canonical form.
func IsCanonical(raw []byte) (bool, error) {
	formatted, err := Format(raw)
	if err != nil {
		return false, err
	}
	return bytes.Equal(formatted, raw), nil
}

func writeValue(buf *bytes.Buffer, v any, depth int) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		buf.WriteString(strconv.FormatBool(val))
	case string:
		writeString(buf, val)
	case json.Number:
		s, err := formatNumber(val)
		if err != nil {
			return err
		}
		buf.WriteString(s)
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return fmt.Errorf("cannot canonicalize non-finite number %v", val)
		}
		buf.WriteString(formatFloat(val))
	case int:
		buf.WriteString(strconv.Itoa(val))
	case int64:
		buf.WriteString(strconv.FormatInt(val, 10))
	case map[string]any:
		return writeObject(buf, val, depth)
	case []any:
		return writeArray(buf, val, depth)
	default:
		log.Printf("Unsupported value type: %T", v)
		return fmt.Errorf("cannot canonicalize value of type %T", v)
	}
	return nil
}

func writeObject(buf *bytes.Buffer, obj map[string]any, depth int) error {
	if len(obj) == 0 {
		buf.WriteString("{}")
		return nil
	}

	// Byte order of UTF-8 strings equals code point order.
	keys := make([]string, 0, len(obj))
	for key := range obj {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	inner := strings.Repeat(indentUnit, depth+1)
	buf.WriteByte('{')
	for i, key := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
		buf.WriteString(inner)
		writeString(buf, key)
		buf.WriteString(": ")
		if err := writeValue(buf, obj[key], depth+1); err != nil {
			return err
		}
	}
	buf.WriteByte('\n')
	buf.WriteString(strings.Repeat(indentUnit, depth))
	buf.WriteByte('}')
	return nil
}

func writeArray(buf *bytes.Buffer, arr []any, depth int) error {
	if len(arr) == 0 {
		buf.WriteString("[]")
		return nil
	}

	inner := strings.Repeat(indentUnit, depth+1)
	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
		buf.WriteString(inner)
		if err := writeValue(buf, elem, depth+1); err != nil {
			return err
		}
	}
	buf.WriteByte('\n')
	buf.WriteString(strings.Repeat(indentUnit, depth))
	buf.WriteByte(']')
	return nil
}

// writeString escapes only quotes, backslashes and control characters.
func writeString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		default:
			if r < 0x20 {
				fmt.Fprintf(buf, `\u%04x`, r)
				continue
			}
			buf.WriteRune(r)
		}
	}
	buf.WriteByte('"')
}

func formatNumber(n json.Number) (string, error) {
	literal := n.String()
	if !strings.ContainsAny(literal, ".eE") {
		i, ok := new(big.Int).SetString(literal, 10)
		if !ok {
			return "", fmt.Errorf("invalid integer literal %q", literal)
		}
		return i.String(), nil
	}

	f, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return "", fmt.Errorf("invalid number literal %q: %w", literal, err)
	}
	return formatFloat(f), nil
}

// formatFloat writes the shortest round-trip digits of a finite f, in fixed
// notation when the decimal exponent lies in [-4, 16) and in d.ddde±XX
// notation otherwise.
func formatFloat(f float64) string {
	sign := ""
	if math.Signbit(f) {
		sign = "-"
		f = -f
	}

	// "d.dddde±XX" → digits "ddddd", decimal point after digit number exp+1.
	sci := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, expPart, _ := strings.Cut(sci, "e")
	exp, _ := strconv.Atoi(expPart)
	digits := strings.Replace(mantissa, ".", "", 1)
	point := exp + 1

	if point > -4 && point <= 16 {
		switch {
		case point <= 0:
			return sign + "0." + strings.Repeat("0", -point) + digits
		case point >= len(digits):
			return sign + digits + strings.Repeat("0", point-len(digits)) + ".0"
		default:
			return sign + digits[:point] + "." + digits[point:]
		}
	}

	expSign := "+"
	if exp < 0 {
		expSign = "-"
		exp = -exp
	}
	out := digits[:1]
	if len(digits) > 1 {
		out += "." + digits[1:]
	}
	return fmt.Sprintf("%s%se%s%02d", sign, out, expSign, exp)
}
