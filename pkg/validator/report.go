package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nrdb/cardlint/pkg/logger"
)

var reportLog = logger.New("validator:report")

// ErrValidationFailed is returned by Report.Err when any defect was recorded.
var ErrValidationFailed = errors.New("validation failed")

// DefectKind separates formatting drift from validation failures.
type DefectKind int

const (
	// FormattingDefect means a file differs from its canonical form.
	FormattingDefect DefectKind = iota
	// ValidationDefect covers parse errors, schema self-check errors,
	// schema violations and cross-reference violations.
	ValidationDefect
)

func (k DefectKind) String() string {
	switch k {
	case FormattingDefect:
		return "formatting"
	case ValidationDefect:
		return "validation"
	default:
		return fmt.Sprintf("DefectKind(%d)", int(k))
	}
}

// Defect is one recorded problem.
type Defect struct {
	Kind DefectKind
	// Path is the file the defect was found in.
	Path string
	// Subject identifies the entity inside the file, e.g. "card 01001". Empty
	// when the defect concerns the whole file.
	Subject string
	Err     error
}

func (d Defect) Error() string {
	if d.Subject == "" {
		return fmt.Sprintf("%s: %v", d.Path, d.Err)
	}
	return fmt.Sprintf("%s: %s: %v", d.Path, d.Subject, d.Err)
}

func (d Defect) Unwrap() error {
	return d.Err
}

// Stats counts the entities that reached schema validation.
type Stats struct {
	Cycles int
	Packs  int
	Cards  int
}

// Report accumulates the defects of one run. Counters only ever grow.
// A Report belongs to a single run and is not safe for concurrent use.
type Report struct {
	formatting int
	validation int
	defects    []Defect
	Stats      Stats
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{}
}

// AddFormatting records a formatting defect for a file.
func (r *Report) AddFormatting(path string, err error) {
	reportLog.Printf("Formatting defect: path=%s", path)
	r.formatting++
	r.defects = append(r.defects, Defect{Kind: FormattingDefect, Path: path, Err: err})
}

// AddValidation records a validation defect.
func (r *Report) AddValidation(path, subject string, err error) {
	reportLog.Printf("Validation defect: path=%s, subject=%s, err=%v", path, subject, err)
	r.validation++
	r.defects = append(r.defects, Defect{Kind: ValidationDefect, Path: path, Subject: subject, Err: err})
}

// FormattingErrors returns the number of formatting defects.
func (r *Report) FormattingErrors() int {
	return r.formatting
}

// ValidationErrors returns the number of validation defects.
func (r *Report) ValidationErrors() int {
	return r.validation
}

// Defects returns the recorded defects in the order they were found.
func (r *Report) Defects() []Defect {
	return append([]Defect(nil), r.defects...)
}

// DefectsOf returns the recorded defects of one kind.
func (r *Report) DefectsOf(kind DefectKind) []Defect {
	var out []Defect
	for _, d := range r.defects {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// OK reports whether the run found no defects at all.
func (r *Report) OK() bool {
	return r.formatting == 0 && r.validation == 0
}

// Summary returns the one-line outcome of the run.
func (r *Report) Summary() string {
	return fmt.Sprintf("Found %d formatting and %d validation errors", r.formatting, r.validation)
}

// Err returns nil for a clean run, otherwise an error wrapping
// ErrValidationFailed that lists every defect.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s", ErrValidationFailed, r.Summary())
	for _, d := range r.defects {
		sb.WriteString("\n  • ")
		sb.WriteString(d.Kind.String())
		sb.WriteString(" ")
		sb.WriteString(strings.ReplaceAll(d.Error(), "\n", "\n    "))
	}
	return &reportError{msg: sb.String()}
}

type reportError struct {
	msg string
}

func (e *reportError) Error() string { return e.msg }

func (e *reportError) Unwrap() error { return ErrValidationFailed }
