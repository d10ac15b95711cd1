//go:build !integration

package jsonfmt

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "sorts keys and indents with four spaces",
			input: `[{"pack_code":"core","code":"01001","name":"Noise"}]`,
			want: "[\n" +
				"    {\n" +
				"        \"code\": \"01001\",\n" +
				"        \"name\": \"Noise\",\n" +
				"        \"pack_code\": \"core\"\n" +
				"    }\n" +
				"]\n",
		},
		{
			name:  "sorts nested objects",
			input: `{"b":{"z":1,"a":[true,false,null]},"a":{}}`,
			want: "{\n" +
				"    \"a\": {},\n" +
				"    \"b\": {\n" +
				"        \"a\": [\n" +
				"            true,\n" +
				"            false,\n" +
				"            null\n" +
				"        ],\n" +
				"        \"z\": 1\n" +
				"    }\n" +
				"}\n",
		},
		{
			name:  "empty containers stay compact",
			input: `{"keywords": [ ], "extra": { }}`,
			want:  "{\n    \"extra\": {},\n    \"keywords\": []\n}\n",
		},
		{
			name:  "non-ASCII is preserved literally",
			input: `{"name":"Ĉaŭ — Déjà vu ☃"}`,
			want:  "{\n    \"name\": \"Ĉaŭ — Déjà vu ☃\"\n}\n",
		},
		{
			name:  "escaped non-ASCII is unescaped",
			input: `{"name":"D\u00e9j\u00e0"}`,
			want:  "{\n    \"name\": \"Déjà\"\n}\n",
		},
		{
			name:  "control characters and quotes are escaped",
			input: `{"text":"line\nbreak \"quoted\" tab\t back\\slash \u0001"}`,
			want:  "{\n    \"text\": \"line\\nbreak \\\"quoted\\\" tab\\t back\\\\slash \\u0001\"\n}\n",
		},
		{
			name:  "html characters are not escaped",
			input: `{"text":"<strong>&</strong>"}`,
			want:  "{\n    \"text\": \"<strong>&</strong>\"\n}\n",
		},
		{
			name:  "top-level scalar",
			input: `  "core"  `,
			want:  "\"core\"\n",
		},
		{
			name:  "duplicate keys keep the last value",
			input: `{"code":"a","code":"b"}`,
			want:  "{\n    \"code\": \"b\"\n}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Format([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestFormat_Numbers(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"0", "0"},
		{"-0", "0"},
		{"42", "42"},
		{"-17", "-17"},
		{"123456789012345678901234567890", "123456789012345678901234567890"},
		{"1.0", "1.0"},
		{"1.50", "1.5"},
		{"-0.0", "-0.0"},
		{"0.5", "0.5"},
		{"123.456", "123.456"},
		{"1e2", "100.0"},
		{"1E2", "100.0"},
		{"0.0001", "0.0001"},
		{"0.00001", "1e-05"},
		{"1.5e-7", "1.5e-07"},
		{"1e15", "1000000000000000.0"},
		{"1e16", "1e+16"},
		{"1.2345e100", "1.2345e+100"},
		{"0.1", "0.1"},
		{"1e-400", "0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Format([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want+"\n", string(got))
		})
	}
}

func TestFormat_Idempotent(t *testing.T) {
	inputs := []string{
		`[{"code":"core","name":"Core Set","position":1,"size":3.5,"tags":["a","b"],"meta":{}}]`,
		`{"ß":"é","a":[[],[{}],[1,2.25,-3e-9]]}`,
		`"plain"`,
		`[]`,
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			first, err := Format([]byte(input))
			require.NoError(t, err)

			second, err := Format(first)
			require.NoError(t, err)
			assert.Equal(t, string(first), string(second), "canonicalizing canonical output must be a no-op")

			canonical, err := IsCanonical(first)
			require.NoError(t, err)
			assert.True(t, canonical)
		})
	}
}

func TestIsCanonical(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "canonical", input: "[\n    {\n        \"code\": \"core\"\n    }\n]\n", want: true},
		{name: "two-space indent", input: "[\n  {\n    \"code\": \"core\"\n  }\n]\n", want: false},
		{name: "missing trailing newline", input: "[\n    {\n        \"code\": \"core\"\n    }\n]", want: false},
		{name: "unsorted keys", input: "{\n    \"name\": \"x\",\n    \"code\": \"y\"\n}\n", want: false},
		{name: "escaped unicode", input: "{\n    \"name\": \"D\\u00e9j\\u00e0\"\n}\n", want: false},
		{name: "CRLF line endings", input: "[\r\n    1\r\n]\r\n", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IsCanonical([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse(t *testing.T) {
	t.Run("numbers are kept as json.Number", func(t *testing.T) {
		doc, err := Parse([]byte(`{"cost": 3, "strength": 2.5}`))
		require.NoError(t, err)

		obj, ok := doc.(map[string]any)
		require.True(t, ok, "expected an object, got %T", doc)
		assert.Equal(t, json.Number("3"), obj["cost"])
		assert.Equal(t, json.Number("2.5"), obj["strength"])
	})

	t.Run("invalid UTF-8", func(t *testing.T) {
		_, err := Parse([]byte{'"', 0xff, 0xfe, '"'})
		require.ErrorIs(t, err, ErrInvalidUTF8)
	})

	errorCases := []struct {
		name   string
		input  string
		line   int
		column int
	}{
		{name: "empty input", input: "", line: 1, column: 1},
		{name: "whitespace only", input: "  \n ", line: 1, column: 1},
		{name: "truncated array", input: "[\n    1,\n", line: 3, column: 1},
		{name: "bad token on second line", input: "[\n    nope\n]", line: 2, column: 6},
		{name: "trailing data", input: "[]\n[]", line: 2, column: 1},
		{name: "utf-8 byte order mark", input: "\ufeff[]", line: 1, column: 1},
	}

	for _, tt := range errorCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			require.Error(t, err)

			var syntaxErr *SyntaxError
			require.ErrorAs(t, err, &syntaxErr)
			assert.Equal(t, tt.line, syntaxErr.Line, "line")
			assert.GreaterOrEqual(t, syntaxErr.Column, 1, "column is 1-based")

			assert.Contains(t, err.Error(), "line")
		})
	}
}

func TestParse_UnrepresentableValues(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		line    int
		column  int
		message string
	}{
		{name: "number overflows float64", input: "[\n    1e400\n]", line: 2, column: 5, message: "Number 1e400 out of range"},
		{name: "negative number overflows float64", input: `{"strength": -1.5e999}`, line: 1, column: 14, message: "out of range"},
		{name: "lone high surrogate", input: `"\ud800"`, line: 1, column: 2, message: "Unpaired surrogate escape"},
		{name: "lone low surrogate", input: `["ok", "\udc00"]`, line: 1, column: 9, message: "Unpaired surrogate escape"},
		{name: "high surrogate followed by text", input: `"\ud800x"`, line: 1, column: 2, message: "Unpaired surrogate escape"},
		{name: "two high surrogates", input: `"\ud83d\ud83d"`, line: 1, column: 2, message: "Unpaired surrogate escape"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.input))
			require.Error(t, err)
			assert.Nil(t, doc)

			var syntaxErr *SyntaxError
			require.ErrorAs(t, err, &syntaxErr)
			assert.Equal(t, tt.line, syntaxErr.Line, "line")
			assert.Equal(t, tt.column, syntaxErr.Column, "column")
			assert.Contains(t, syntaxErr.Msg, tt.message)
		})
	}
}

func TestParse_SurrogateEscapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "surrogate pair", input: `"\ud83d\ude00"`, want: "😀"},
		{name: "escaped backslash before u", input: `"\\ud800"`, want: `\ud800`},
		{name: "plain escape", input: `"\u00e9"`, want: "é"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, doc)
		})
	}
}

func TestFormat_RejectsUnrepresentableValues(t *testing.T) {
	for _, input := range []string{"[1e400]", `"\udfff"`} {
		t.Run(input, func(t *testing.T) {
			got, err := Format([]byte(input))
			require.Error(t, err)
			assert.Nil(t, got, "nothing may be written back for %s", input)
		})
	}

	_, err := Canonical([]any{math.Inf(1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-finite")
}

func TestCanonical_UnsupportedType(t *testing.T) {
	_, err := Canonical(map[string]any{"ch": make(chan int)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chan int")
}

func TestCanonical_GoValues(t *testing.T) {
	got, err := Canonical(map[string]any{"count": 3, "big": int64(1) << 40, "ratio": 0.25})
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"big\": 1099511627776,\n    \"count\": 3,\n    \"ratio\": 0.25\n}\n", string(got))
}
