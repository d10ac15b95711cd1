// Package constants holds the fixed names of the card repository layout and CLI.
package constants

import "path/filepath"

// CLIName is the name of the command-line tool.
const CLIName = "cardlint"

// FileName is the base name of a file in the card repository.
type FileName string

// String returns the file name.
func (f FileName) String() string {
	return string(f)
}

// DirName is the name of a directory relative to the repository base path.
type DirName string

// String returns the directory name.
func (d DirName) String() string {
	return string(d)
}

// Repository layout.
const (
	// CyclesFileName is the cycle index at the base path.
	CyclesFileName FileName = "cycles.json"
	// PacksFileName is the pack index at the base path.
	PacksFileName FileName = "packs.json"

	CycleSchemaFileName FileName = "cycle_schema.json"
	PackSchemaFileName  FileName = "pack_schema.json"
	CardSchemaFileName  FileName = "card_schema.json"

	// ConfigFileName is the optional config file looked up at the base path.
	ConfigFileName FileName = ".cardlint.yaml"

	// PackDir holds one <pack_code>.json card list per pack.
	PackDir DirName = "pack"
	// SchemaDir holds the three schema documents.
	SchemaDir DirName = "schema"
)

// JSONExt is the extension of every data file.
const JSONExt = ".json"

// PackFileName returns the file name of the card list for a pack code.
func PackFileName(packCode string) FileName {
	return FileName(packCode + JSONExt)
}

// DefaultPackPath returns the pack directory under a base path.
func DefaultPackPath(basePath string) string {
	return filepath.Join(basePath, PackDir.String())
}

// DefaultSchemaPath returns the schema directory under a base path.
func DefaultSchemaPath(basePath string) string {
	return filepath.Join(basePath, SchemaDir.String())
}

// Verbosity levels for progress output.
const (
	VerbosityErrors   = 0 // errors and the summary only
	VerbosityStages   = 1 // stage progress
	VerbosityPerItem  = 2 // one line per cycle, pack and card
	MaxVerbosityLevel = VerbosityPerItem
)

// Watch mode debounce, overridable through WatchDebounceEnvVar (milliseconds).
const (
	WatchDebounceEnvVar    = "CARDLINT_WATCH_DEBOUNCE_MS"
	DefaultWatchDebounceMS = 300
	MinWatchDebounceMS     = 10
	MaxWatchDebounceMS     = 60000
)
