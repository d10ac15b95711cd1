package schema

import (
	"fmt"
	"strings"
)

// Violation is a structural or cross-reference failure of one document.
//
// Schema failures form a tree: the root describes the schema as a whole and
// the leaves name the individual failing keywords. Cross-reference rules
// produce single-node violations.
type Violation struct {
	// InstancePath is a JSON pointer into the document; empty means the root.
	InstancePath string
	// Keyword is the failing schema keyword path, or the field a custom rule checked.
	Keyword string
	Message string
	Causes  []*Violation
}

// NewViolation creates a single-node violation.
func NewViolation(instancePath, keyword, message string) *Violation {
	return &Violation{InstancePath: instancePath, Keyword: keyword, Message: message}
}

// Leaves returns the violations without causes, in depth-first order.
func (v *Violation) Leaves() []*Violation {
	if len(v.Causes) == 0 {
		return []*Violation{v}
	}
	var leaves []*Violation
	for _, cause := range v.Causes {
		leaves = append(leaves, cause.Leaves()...)
	}
	return leaves
}

// Error renders one line per leaf.
func (v *Violation) Error() string {
	leaves := v.Leaves()
	lines := make([]string, 0, len(leaves))
	for _, leaf := range leaves {
		lines = append(lines, leaf.line())
	}
	return strings.Join(lines, "\n")
}

func (v *Violation) line() string {
	location := v.InstancePath
	if location == "" {
		location = "/"
	}
	if v.Keyword == "" {
		return fmt.Sprintf("at '%s': %s", location, v.Message)
	}
	return fmt.Sprintf("at '%s' [%s]: %s", location, v.Keyword, v.Message)
}
