package validator

import (
	"fmt"
	"io"

	"github.com/nrdb/cardlint/pkg/console"
	"github.com/nrdb/cardlint/pkg/constants"
)

// printer writes verbosity-gated diagnostics.
type printer struct {
	w         io.Writer
	verbosity int
}

func (p *printer) enabled(level int) bool {
	return p.w != nil && p.verbosity >= level
}

func (p *printer) println(level int, line string) {
	if !p.enabled(level) {
		return
	}
	fmt.Fprintln(p.w, line)
}

// stage prints stage progress (verbosity 1).
func (p *printer) stage(format string, args ...any) {
	p.println(constants.VerbosityStages, console.FormatProgressMessage(fmt.Sprintf(format, args...)))
}

// fileProgress prints per-file progress (verbosity 1).
func (p *printer) fileProgress(path, message string) {
	p.println(constants.VerbosityStages, console.FormatFileMessage(path, message))
}

// item prints a per-entity result line (verbosity 2).
func (p *printer) item(kind, label string, ok bool) {
	result := "OK"
	if !ok {
		result = "ERROR"
	}
	p.println(constants.VerbosityPerItem, console.FormatVerboseMessage(fmt.Sprintf("Validating %s %s... %s", kind, label, result)))
}

// fileError prints a defect concerning a file (always shown).
func (p *printer) fileError(path, message string) {
	p.println(constants.VerbosityErrors, console.FormatErrorMessage(console.FormatFileMessage(path, message)))
}

// errorf prints a defect not tied to a single file (always shown).
func (p *printer) errorf(format string, args ...any) {
	p.println(constants.VerbosityErrors, console.FormatErrorMessage(fmt.Sprintf(format, args...)))
}

// warnf prints a notice about skipped work (always shown).
func (p *printer) warnf(format string, args ...any) {
	p.println(constants.VerbosityErrors, console.FormatWarningMessage(fmt.Sprintf(format, args...)))
}

// detail prints an indented multi-line diagnostic under the previous message.
func (p *printer) detail(text string) {
	if indented := console.IndentDetail(text); indented != "" {
		p.println(constants.VerbosityErrors, indented)
	}
}
