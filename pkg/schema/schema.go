// Package schema checks JSON Schema documents and validates data documents
// against them.
//
// Schemas default to draft 4. A schema is compiled only after it validates
// against its dialect's meta-schema, so a usable *Schema is always a
// well-formed one. Validation failures are returned as *Violation values that
// carry the failing instance location and keyword for every leaf error.
package schema

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nrdb/cardlint/pkg/logger"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var log = logger.New("schema:schema")

var printer = message.NewPrinter(language.English)

// Schema is a compiled, self-checked schema document.
type Schema struct {
	// Path is the file the schema was read from.
	Path     string
	compiled *jsonschema.Schema
}

// SelfCheckError reports a schema document that is not a valid schema.
type SelfCheckError struct {
	Path string
	Err  error
}

func (e *SelfCheckError) Error() string {
	return fmt.Sprintf("%s: schema file is not valid Draft 4 JSON schema: %v", e.Path, e.Err)
}

func (e *SelfCheckError) Unwrap() error {
	return e.Err
}

// Compile self-checks a decoded schema document and compiles it.
// The document must be a value produced by jsonfmt.Parse. Any failure is
// returned as a *SelfCheckError.
func Compile(path string, doc any) (*Schema, error) {
	log.Printf("Compiling schema: %s", path)

	url, err := resourceURL(path)
	if err != nil {
		return nil, &SelfCheckError{Path: path, Err: err}
	}

	c := jsonschema.NewCompiler()
	c.DefaultDraft(jsonschema.Draft4)
	c.AssertFormat()

	if err := c.AddResource(url, doc); err != nil {
		log.Printf("Adding schema resource failed: %v", err)
		return nil, &SelfCheckError{Path: path, Err: err}
	}

	compiled, err := c.Compile(url)
	if err != nil {
		log.Printf("Schema self-check failed: %v", err)
		return nil, &SelfCheckError{Path: path, Err: err}
	}

	return &Schema{Path: path, compiled: compiled}, nil
}

func resourceURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve schema path: %w", err)
	}
	slashed := filepath.ToSlash(abs)
	if !strings.HasPrefix(slashed, "/") {
		slashed = "/" + slashed
	}
	return "file://" + slashed, nil
}

// Validate checks doc against the schema. It returns nil when doc conforms.
func (s *Schema) Validate(doc any) *Violation {
	err := s.compiled.Validate(doc)
	if err == nil {
		return nil
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return &Violation{Message: err.Error()}
	}
	return fromValidationError(verr)
}

func fromValidationError(verr *jsonschema.ValidationError) *Violation {
	v := &Violation{
		InstancePath: pointer(verr.InstanceLocation),
		Keyword:      strings.Join(verr.ErrorKind.KeywordPath(), "/"),
		Message:      verr.ErrorKind.LocalizedString(printer),
	}
	for _, cause := range verr.Causes {
		v.Causes = append(v.Causes, fromValidationError(cause))
	}
	return v
}

// pointer renders instance location tokens as a JSON pointer.
func pointer(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	escaped := make([]string, len(tokens))
	for i, tok := range tokens {
		tok = strings.ReplaceAll(tok, "~", "~0")
		escaped[i] = strings.ReplaceAll(tok, "/", "~1")
	}
	return "/" + strings.Join(escaped, "/")
}
