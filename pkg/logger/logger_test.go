//go:build !integration

package logger

import (
	"bytes"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

// captureOutput redirects logger output for the duration of f.
func captureOutput(f func()) string {
	var buf bytes.Buffer
	prev := SetOutput(&buf)
	defer SetOutput(prev)
	f()
	return buf.String()
}

func withDebugEnv(t *testing.T, value string) {
	t.Helper()
	orig := debugEnv
	debugEnv = value
	t.Cleanup(func() { debugEnv = orig })
}

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		debugEnv  string
		namespace string
		enabled   bool
	}{
		{name: "empty DEBUG disables all loggers", debugEnv: "", namespace: "validator:loader", enabled: false},
		{name: "wildcard enables all loggers", debugEnv: "*", namespace: "validator:loader", enabled: true},
		{name: "exact match", debugEnv: "schema:compile", namespace: "schema:compile", enabled: true},
		{name: "exact match different namespace", debugEnv: "schema:compile", namespace: "validator:loader", enabled: false},
		{name: "namespace wildcard", debugEnv: "validator:*", namespace: "validator:hierarchy", enabled: true},
		{name: "namespace wildcard other prefix", debugEnv: "validator:*", namespace: "cli:validate", enabled: false},
		{name: "second pattern matches", debugEnv: "schema:*,cli:*", namespace: "cli:validate", enabled: true},
		{name: "exclusion wins", debugEnv: "validator:*,-validator:loader", namespace: "validator:loader", enabled: false},
		{name: "exclusion leaves others", debugEnv: "validator:*,-validator:loader", namespace: "validator:report", enabled: true},
		{name: "suffix wildcard", debugEnv: "*:loader", namespace: "validator:loader", enabled: true},
		{name: "spaces are trimmed", debugEnv: "schema:* , cli:*", namespace: "cli:validate", enabled: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withDebugEnv(t, tt.debugEnv)
			assert.Equal(t, tt.enabled, New(tt.namespace).Enabled(), "DEBUG=%q namespace=%q", tt.debugEnv, tt.namespace)
		})
	}
}

func TestLogger_Printf(t *testing.T) {
	t.Run("enabled logger prints namespace, message and time diff", func(t *testing.T) {
		withDebugEnv(t, "*")
		log := New("validator:loader")

		out := captureOutput(func() { log.Printf("loaded %s", "cycles.json") })

		assert.Contains(t, out, "validator:loader")
		assert.Contains(t, out, "loaded cycles.json")
		assert.Contains(t, out, "+")
	})

	t.Run("disabled logger is silent", func(t *testing.T) {
		withDebugEnv(t, "")
		log := New("validator:loader")

		out := captureOutput(func() { log.Printf("loaded %s", "cycles.json") })

		assert.Empty(t, out)
	})
}

func TestLogger_Print(t *testing.T) {
	withDebugEnv(t, "*")
	log := New("schema:compile")

	out := captureOutput(func() { log.Print("compiled ", 3, " schemas") })

	assert.Contains(t, out, "compiled 3 schemas")
}

func TestColorSelection(t *testing.T) {
	origColors, origTTY := debugColors, isTTY
	defer func() { debugColors, isTTY = origColors, origTTY }()

	debugColors, isTTY = true, true
	first := selectColor("validator:loader")
	assert.Equal(t, first, selectColor("validator:loader"), "colors are stable per namespace")
	assert.True(t, slices.Contains(colorPalette, first), "color comes from the palette")

	debugColors, isTTY = false, true
	assert.Empty(t, selectColor("validator:loader"), "DEBUG_COLORS=0 disables colors")

	debugColors, isTTY = true, false
	assert.Empty(t, selectColor("validator:loader"), "non-TTY stderr disables colors")
}

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		namespace string
		pattern   string
		want      bool
	}{
		{"validator:loader", "validator:loader", true},
		{"validator:loader", "*", true},
		{"validator:loader", "", false},
		{"validator:loader", "validator:*", true},
		{"validator:loader", "schema:*", false},
		{"validator:loader", "*:loader", true},
		{"validator:stage:cards", "validator:*:cards", true},
		{"validator:stage:packs", "validator:*:cards", false},
		{"a:b", "a:b*:b", false},
	}

	for _, tt := range tests {
		t.Run(tt.namespace+"~"+tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, matchPattern(tt.namespace, tt.pattern))
		})
	}
}
