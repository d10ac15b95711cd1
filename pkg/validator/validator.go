// Package validator checks a card repository: the cycle index, the pack index
// and one card list per pack, each against its schema and the cross-reference
// rules between them.
package validator

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/nrdb/cardlint/pkg/cards"
	"github.com/nrdb/cardlint/pkg/constants"
	"github.com/nrdb/cardlint/pkg/fileutil"
	"github.com/nrdb/cardlint/pkg/logger"
	"github.com/nrdb/cardlint/pkg/schema"
)

var log = logger.New("validator:validator")

// ErrNotAList is recorded when a document that must hold a list holds something else.
var ErrNotAList = errors.New("document is not a list")

// Options configures a validation run.
type Options struct {
	// BasePath holds cycles.json and packs.json.
	BasePath string
	// PackPath holds one card list per pack. Defaults to <BasePath>/pack.
	PackPath string
	// SchemaPath holds the three schema files. Defaults to <BasePath>/schema.
	SchemaPath string
	// FixFormatting rewrites files that are not in canonical form.
	FixFormatting bool
	// Verbosity selects how much progress is printed (0 to 2).
	Verbosity int
	// Out receives diagnostics. Nil discards them.
	Out io.Writer
}

// WithDefaults fills empty paths from the base path.
func (o Options) WithDefaults() Options {
	if o.BasePath == "" {
		o.BasePath = "."
	}
	if o.PackPath == "" {
		o.PackPath = constants.DefaultPackPath(o.BasePath)
	}
	if o.SchemaPath == "" {
		o.SchemaPath = constants.DefaultSchemaPath(o.BasePath)
	}
	return o
}

// CheckEnvironment verifies that the base, pack and schema directories exist
// and are readable.
func (o Options) CheckEnvironment() error {
	for _, dir := range []string{o.BasePath, o.PackPath, o.SchemaPath} {
		if err := fileutil.CheckDirAccess(dir); err != nil {
			return err
		}
	}
	return nil
}

// Validator runs the three validation stages over one repository.
type Validator struct {
	opts   Options
	out    *printer
	loader *Loader
}

// New creates a validator. Empty paths in opts are filled by WithDefaults.
func New(opts Options) *Validator {
	opts = opts.WithDefaults()
	out := &printer{w: opts.Out, verbosity: opts.Verbosity}
	return &Validator{
		opts:   opts,
		out:    out,
		loader: NewLoader(opts.FixFormatting, out),
	}
}

// Run validates cycles, then packs, then cards, recording every defect in
// report. Each stage runs only when the previous one produced usable data.
// The returned error is non-nil only for environment problems, which abort the
// run: an inaccessible directory or a missing card file for a valid pack.
func (v *Validator) Run(report *Report) error {
	log.Printf("Starting run: base=%s, packs=%s, schemas=%s, fix=%v",
		v.opts.BasePath, v.opts.PackPath, v.opts.SchemaPath, v.opts.FixFormatting)

	if err := v.opts.CheckEnvironment(); err != nil {
		return err
	}

	cycles, failed := v.validateCycles(report)
	if failed != "" {
		v.out.warnf("Couldn't load %s correctly, skipping pack and card validation...", failed)
		return nil
	}

	packs, failed, err := v.validatePacks(report, cycles)
	if err != nil {
		return err
	}
	if failed != "" {
		v.out.warnf("Couldn't load %s correctly, skipping card validation...", failed)
		return nil
	}
	if len(packs) == 0 {
		v.out.warnf("No valid packs, skipping card validation...")
		return nil
	}

	v.validateCards(report, packs)

	log.Printf("Run finished: formatting=%d, validation=%d", report.FormattingErrors(), report.ValidationErrors())
	return nil
}

func (v *Validator) schemaFile(name constants.FileName) string {
	return filepath.Join(v.opts.SchemaPath, name.String())
}

func (v *Validator) baseFile(name constants.FileName) string {
	return filepath.Join(v.opts.BasePath, name.String())
}

// loadIndex loads an index document together with its schema and applies the
// whole-stage checks. It returns the list items and the compiled schema, or
// the name of the unusable input ("cycles file", "cycle schema") when the
// stage cannot proceed.
func (v *Validator) loadIndex(report *Report, kind, docPath, schemaPath string) ([]any, *schema.Schema, string) {
	docFile := kind + " file"
	schemaFile := strings.TrimSuffix(kind, "s") + " schema"

	doc, docOK := v.loader.Load(docPath, report)
	schemaDoc, schemaOK := v.loader.Load(schemaPath, report)

	if !docOK {
		return nil, nil, docFile
	}

	items, isList := doc.([]any)
	if !isList {
		v.out.fileError(docPath, fmt.Sprintf("Insides of %s are not a list!", docFile))
		report.AddValidation(docPath, "", ErrNotAList)
		return nil, nil, docFile
	}

	if !schemaOK {
		v.out.fileError(schemaPath, fmt.Sprintf("Couldn't load %s, %s validation abandoned.", schemaFile, kind))
		return nil, nil, schemaFile
	}

	s := v.compileSchema(report, schemaPath, schemaDoc)
	if s == nil {
		return nil, nil, schemaFile
	}
	return items, s, ""
}

// compileSchema self-checks and compiles a schema document, recording one
// validation defect on failure.
func (v *Validator) compileSchema(report *Report, path string, doc any) *schema.Schema {
	v.out.fileProgress(path, "Checking schema...")
	s, err := schema.Compile(path, doc)
	if err != nil {
		v.out.fileError(path, "Schema file is not valid Draft 4 JSON schema.")
		var selfCheck *schema.SelfCheckError
		if errors.As(err, &selfCheck) {
			v.out.detail(selfCheck.Err.Error())
		} else {
			v.out.detail(err.Error())
		}
		report.AddValidation(path, "", err)
		return nil
	}
	return s
}

// entityCheck describes the validation of one list item.
type entityCheck struct {
	kind     string
	path     string
	label    string
	identity string
	doc      any
	schema   *schema.Schema
	// rules decodes the item and applies its cross-reference rules. It runs
	// only after schema validation succeeded.
	rules func() *schema.Violation
}

// validateEntity validates one item and records a defect when it fails.
func (v *Validator) validateEntity(report *Report, c entityCheck) bool {
	violation := c.schema.Validate(c.doc)
	if violation == nil {
		violation = c.rules()
	}

	v.out.item(c.kind, c.label, violation == nil)
	if violation == nil {
		return true
	}

	v.out.errorf("Validation error in %s: %s", c.kind, c.identity)
	v.out.detail(violation.Error())
	report.AddValidation(c.path, c.kind+" "+c.label, violation)
	return false
}

// validateCycles runs the cycle stage and returns the cycles that passed, or
// the name of the input that stopped the stage.
func (v *Validator) validateCycles(report *Report) ([]cards.Cycle, string) {
	path := v.baseFile(constants.CyclesFileName)
	v.out.stage("Validating cycles...")

	items, s, failed := v.loadIndex(report, "cycles", path, v.schemaFile(constants.CycleSchemaFileName))
	if failed != "" {
		return nil, failed
	}

	var valid []cards.Cycle
	for _, item := range items {
		report.Stats.Cycles++
		var cycle cards.Cycle
		passed := v.validateEntity(report, entityCheck{
			kind:     "cycle",
			path:     path,
			label:    labelOf(item),
			identity: fmt.Sprintf("(code: '%s' name: '%s')", cards.PeekField(item, "code"), cards.PeekField(item, "name")),
			doc:      item,
			schema:   s,
			rules: func() *schema.Violation {
				var violation *schema.Violation
				cycle, violation = cards.DecodeCycle(item)
				return violation
			},
		})
		if passed {
			valid = append(valid, cycle)
		}
	}
	log.Printf("Cycles: %d of %d valid", len(valid), len(items))
	return valid, ""
}

// validatePacks runs the pack index stage against the cycles that passed and
// returns the packs that passed, or the name of the input that stopped the
// stage. The error is an environment error.
func (v *Validator) validatePacks(report *Report, cycles []cards.Cycle) ([]cards.Pack, string, error) {
	path := v.baseFile(constants.PacksFileName)
	v.out.stage("Validating packs...")

	items, s, failed := v.loadIndex(report, "packs", path, v.schemaFile(constants.PackSchemaFileName))
	if failed != "" {
		return nil, failed, nil
	}

	var valid []cards.Pack
	for _, item := range items {
		report.Stats.Packs++
		var pack cards.Pack
		passed := v.validateEntity(report, entityCheck{
			kind:     "pack",
			path:     path,
			label:    labelOf(item),
			identity: fmt.Sprintf("(code: '%s' name: '%s')", cards.PeekField(item, "code"), cards.PeekField(item, "name")),
			doc:      item,
			schema:   s,
			rules: func() *schema.Violation {
				var violation *schema.Violation
				pack, violation = cards.DecodePack(item)
				if violation != nil {
					return violation
				}
				return cards.CheckPackCycle(pack, cycles)
			},
		})
		if passed {
			valid = append(valid, pack)
		}
	}
	log.Printf("Packs: %d of %d valid", len(valid), len(items))

	for _, pack := range valid {
		if err := fileutil.CheckFileAccess(v.packFile(pack)); err != nil {
			return nil, "", fmt.Errorf("card file for pack '%s': %w", pack.Code, err)
		}
	}
	return valid, "", nil
}

func (v *Validator) packFile(pack cards.Pack) string {
	return filepath.Join(v.opts.PackPath, constants.PackFileName(pack.Code).String())
}

// validateCards runs the card stage over the packs that passed.
func (v *Validator) validateCards(report *Report, packs []cards.Pack) {
	schemaPath := v.schemaFile(constants.CardSchemaFileName)
	v.out.stage("Validating cards...")

	schemaDoc, ok := v.loader.Load(schemaPath, report)
	if !ok {
		v.out.fileError(schemaPath, "Couldn't load card schema, card validation abandoned.")
		return
	}
	s := v.compileSchema(report, schemaPath, schemaDoc)
	if s == nil {
		return
	}

	for _, pack := range packs {
		v.validatePackCards(report, pack, s)
	}
}

func (v *Validator) validatePackCards(report *Report, pack cards.Pack, s *schema.Schema) {
	path := v.packFile(pack)
	v.out.fileProgress(path, "Validating cards...")

	doc, ok := v.loader.Load(path, report)
	if !ok {
		return
	}
	items, isList := doc.([]any)
	if !isList {
		v.out.fileError(path, "Insides of pack file are not a list!")
		report.AddValidation(path, "", ErrNotAList)
		return
	}

	for _, item := range items {
		report.Stats.Cards++
		v.validateEntity(report, entityCheck{
			kind:  "card",
			path:  path,
			label: labelOf(item),
			identity: fmt.Sprintf("(pack code: '%s' card code: '%s' name: '%s')",
				pack.Code, cards.PeekField(item, "code"), cards.PeekField(item, "name")),
			doc:    item,
			schema: s,
			rules: func() *schema.Violation {
				card, violation := cards.DecodeCard(item)
				if violation != nil {
					return violation
				}
				return cards.CheckCardPack(card, pack.Code)
			},
		})
	}
}

// labelOf names a list item in progress output: its name, else its code.
func labelOf(item any) string {
	if name := cards.PeekLabel(item); name != "" {
		return name
	}
	return "<unnamed>"
}
