package validator

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/nrdb/cardlint/pkg/fileutil"
	"github.com/nrdb/cardlint/pkg/jsonfmt"
	"github.com/nrdb/cardlint/pkg/logger"
)

var loaderLog = logger.New("validator:loader")

// ErrNotCanonical is recorded for files that differ from their canonical form.
var ErrNotCanonical = errors.New("file is not correctly formatted JSON")

// Loader reads JSON documents, records parse and formatting defects, and
// optionally rewrites files into canonical form.
type Loader struct {
	fix bool
	out *printer
	// rewrite replaces a file's contents in fix mode.
	rewrite func(path string, data []byte) error
}

// NewLoader creates a loader. When fix is set, files that are not in canonical
// form are rewritten in place.
func NewLoader(fix bool, out *printer) *Loader {
	if out == nil {
		out = &printer{}
	}
	return &Loader{fix: fix, out: out, rewrite: fileutil.RewriteFile}
}

// Load reads and parses the file at path. It returns the parsed document and
// true, or nil and false when the file could not be read or parsed. Every
// problem is recorded in report; nothing is returned as an error.
func (l *Loader) Load(path string, report *Report) (any, bool) {
	loaderLog.Printf("Loading %s", path)

	raw, err := os.ReadFile(path)
	if err != nil {
		loaderLog.Printf("Read failed: %v", err)
		l.out.fileError(path, "Cannot read file.")
		l.out.detail(err.Error())
		report.AddValidation(path, "", fmt.Errorf("cannot read file: %w", err))
		return nil, false
	}

	doc, err := jsonfmt.Parse(raw)
	if err != nil {
		loaderLog.Printf("Parse failed: %v", err)
		l.out.fileError(path, "File is not valid JSON.")
		l.out.detail(err.Error())
		report.AddValidation(path, "", err)
		return nil, false
	}

	l.out.fileProgress(path, "Checking JSON formatting...")
	canonical, err := jsonfmt.Canonical(doc)
	if err != nil {
		// Parse only yields values the encoder accepts.
		loaderLog.Printf("Canonical encoding failed: %v", err)
		return doc, true
	}

	if bytes.Equal(raw, canonical) {
		return doc, true
	}

	loaderLog.Printf("Formatting differs: raw=%d bytes, canonical=%d bytes", len(raw), len(canonical))
	l.out.fileError(path, "File is not correctly formatted JSON.")
	report.AddFormatting(path, ErrNotCanonical)

	if l.fix && len(canonical) > 0 {
		l.out.fileProgress(path, "Fixing JSON formatting...")
		if err := l.rewrite(path, canonical); err != nil {
			loaderLog.Printf("Rewrite failed: %v", err)
			l.out.fileError(path, "Cannot open file to write.")
			l.out.detail(err.Error())
		}
	}

	return doc, true
}
