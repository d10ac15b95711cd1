//go:build !integration

package tty

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPipesAreNotTerminals(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer r.Close()
	defer w.Close()

	origStdout, origStderr := os.Stdout, os.Stderr
	os.Stdout, os.Stderr = w, w
	defer func() { os.Stdout, os.Stderr = origStdout, origStderr }()

	assert.False(t, IsStdoutTerminal(), "a pipe on stdout is not a terminal")
	assert.False(t, IsStderrTerminal(), "a pipe on stderr is not a terminal")
}
