// Package fileutil provides the filesystem checks and writes the validator needs.
package fileutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/nrdb/cardlint/pkg/logger"
)

var log = logger.New("fileutil:fileutil")

// defaultFileMode is used when rewriting a file whose mode cannot be read.
const defaultFileMode fs.FileMode = 0o644

// FileExists checks if a file exists and is not a directory.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists checks if a directory exists.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// CheckDirAccess returns an error unless path is an existing, readable directory.
func CheckDirAccess(path string) error {
	if !DirExists(path) {
		return fmt.Errorf("%s is not a valid path", path)
	}
	f, err := os.Open(path)
	if err != nil {
		log.Printf("Directory not readable: path=%s, err=%v", path, err)
		return fmt.Errorf("%s is not a readable directory: %w", path, err)
	}
	defer f.Close()
	if _, err := f.ReadDir(1); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%s is not a readable directory: %w", path, err)
	}
	return nil
}

// CheckFileAccess returns an error unless path is an existing, readable regular file.
func CheckFileAccess(path string) error {
	if !FileExists(path) {
		return fmt.Errorf("%s does not exist", path)
	}
	f, err := os.Open(path)
	if err != nil {
		log.Printf("File not readable: path=%s, err=%v", path, err)
		return fmt.Errorf("%s is not a readable file: %w", path, err)
	}
	return f.Close()
}

// RewriteFile replaces the contents of an existing file, keeping its permission bits.
// The write is not atomic.
func RewriteFile(path string, data []byte) error {
	mode := defaultFileMode
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	log.Printf("Rewriting file: path=%s, size=%d bytes, mode=%s", path, len(data), mode)
	if err := os.WriteFile(path, data, mode); err != nil {
		return fmt.Errorf("cannot open %s to write: %w", path, err)
	}
	return nil
}
