package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/nrdb/cardlint/pkg/config"
	"github.com/nrdb/cardlint/pkg/console"
	"github.com/nrdb/cardlint/pkg/constants"
	"github.com/nrdb/cardlint/pkg/envutil"
	"github.com/nrdb/cardlint/pkg/logger"
	"github.com/nrdb/cardlint/pkg/validator"
	"github.com/nrdb/cardlint/pkg/watch"
	"github.com/spf13/cobra"
)

var validateLog = logger.New("cli:validate_command")

// ValidateConfig holds the resolved settings of one validate invocation.
type ValidateConfig struct {
	BasePath      string
	PackPath      string
	SchemaPath    string
	FixFormatting bool
	Verbose       int
	Watch         bool
}

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the cycles, packs and cards of a card repository",
		Long: `Validate a card repository against its JSON schemas.

Checks run in order and each one only runs when the previous one produced
usable data:
  1. cycles.json against schema/cycle_schema.json
  2. packs.json against schema/pack_schema.json; every pack's cycle_code
     must name a valid cycle
  3. pack/<pack_code>.json of every valid pack against schema/card_schema.json;
     every card's pack_code must match the file it appears in

Every file must also be in canonical JSON form (sorted keys, 4-space indent,
trailing newline). Use --fix_formatting to rewrite files into that form.

Settings can also be read from ` + constants.ConfigFileName.String() + ` in the base path.
Flags given on the command line take precedence.

Examples:
  ` + constants.CLIName + ` validate                       # Validate the current directory
  ` + constants.CLIName + ` validate -b ../netrunner-cards # Validate another repository
  ` + constants.CLIName + ` validate -f                    # Fix formatting while validating
  ` + constants.CLIName + ` validate -vv                   # Show one line per cycle, pack and card
  ` + constants.CLIName + ` validate --watch               # Re-validate whenever a JSON file changes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidateCommand(cmd)
		},
	}

	AddValidateFlags(cmd)
	return cmd
}

// AddValidateFlags registers the validate flags on cmd.
func AddValidateFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("fix_formatting", "f", false, "Rewrite files that are not in canonical JSON form")
	cmd.Flags().CountP("verbose", "v", "Verbose output; repeat for more detail (-v stages, -vv every item)")
	cmd.Flags().StringP("base_path", "b", "", "Root directory of the card data (default: current directory)")
	cmd.Flags().StringP("pack_path", "p", "", "Directory of the per-pack card files (default: <base_path>/pack)")
	cmd.Flags().StringP("schema_path", "c", "", "Directory of the schema files (default: <base_path>/schema)")
	cmd.Flags().String("config", "", "Config file (default: <base_path>/"+constants.ConfigFileName.String()+" if present)")
	cmd.Flags().BoolP("watch", "w", false, "Re-validate whenever a JSON file changes")
}

func runValidateCommand(cmd *cobra.Command) error {
	cfg, err := resolveValidateConfig(cmd)
	if err != nil {
		return err
	}
	return RunValidate(cmd.Context(), cfg, cmd.OutOrStdout())
}

// resolveValidateConfig merges the config file with the flags. Flags that
// were set explicitly win over the file.
func resolveValidateConfig(cmd *cobra.Command) (ValidateConfig, error) {
	flags := cmd.Flags()
	basePath, _ := flags.GetString("base_path")
	packPath, _ := flags.GetString("pack_path")
	schemaPath, _ := flags.GetString("schema_path")
	fix, _ := flags.GetBool("fix_formatting")
	verbose, _ := flags.GetCount("verbose")
	watchMode, _ := flags.GetBool("watch")
	configFile, _ := flags.GetString("config")

	var fileCfg *config.Config
	var err error
	if configFile != "" {
		fileCfg, err = config.Load(configFile)
	} else {
		dir := basePath
		if dir == "" {
			dir = "."
		}
		fileCfg, err = config.LoadDefault(dir)
	}
	if err != nil {
		return ValidateConfig{}, err
	}
	if fileCfg.Path() != "" {
		validateLog.Printf("Using config file %s", fileCfg.Path())
	}

	cfg := ValidateConfig{
		BasePath:      basePath,
		PackPath:      packPath,
		SchemaPath:    schemaPath,
		FixFormatting: fix,
		Verbose:       verbose,
		Watch:         watchMode,
	}
	if !flags.Changed("base_path") && fileCfg.BasePath != "" {
		cfg.BasePath = fileCfg.BasePath
	}
	if !flags.Changed("pack_path") && fileCfg.PackPath != "" {
		cfg.PackPath = fileCfg.PackPath
	}
	if !flags.Changed("schema_path") && fileCfg.SchemaPath != "" {
		cfg.SchemaPath = fileCfg.SchemaPath
	}
	if !flags.Changed("fix_formatting") && fileCfg.FixFormatting != nil {
		cfg.FixFormatting = *fileCfg.FixFormatting
	}
	if !flags.Changed("verbose") && fileCfg.Verbose != nil {
		cfg.Verbose = *fileCfg.Verbose
	}
	cfg.Verbose = min(cfg.Verbose, constants.MaxVerbosityLevel)

	validateLog.Printf("Resolved config: base=%q, packs=%q, schemas=%q, fix=%v, verbose=%d, watch=%v",
		cfg.BasePath, cfg.PackPath, cfg.SchemaPath, cfg.FixFormatting, cfg.Verbose, cfg.Watch)
	return cfg, nil
}

func (c ValidateConfig) options(out io.Writer) validator.Options {
	return validator.Options{
		BasePath:      c.BasePath,
		PackPath:      c.PackPath,
		SchemaPath:    c.SchemaPath,
		FixFormatting: c.FixFormatting,
		Verbosity:     c.Verbose,
		Out:           out,
	}.WithDefaults()
}

// RunValidate validates the repository once, or keeps re-validating it on
// changes in watch mode. The summary line is written to out after every run.
//
// The returned error wraps validator.ErrValidationFailed when defects were
// found. Any other error is an environment error and no summary is printed.
func RunValidate(ctx context.Context, cfg ValidateConfig, out io.Writer) error {
	opts := cfg.options(out)

	err := validateOnce(opts, out)
	if !cfg.Watch {
		return err
	}
	if err != nil && !errors.Is(err, validator.ErrValidationFailed) {
		return err
	}
	return watchAndValidate(ctx, opts, out)
}

func validateOnce(opts validator.Options, out io.Writer) error {
	report := validator.NewReport()
	if err := validator.New(opts).Run(report); err != nil {
		validateLog.Printf("Run aborted: %v", err)
		return err
	}
	fmt.Fprintln(out, console.FormatSummary(report.FormattingErrors(), report.ValidationErrors()))
	if err := report.Err(); err != nil {
		validateLog.Print(err.Error())
		return err
	}
	return nil
}

func watchAndValidate(ctx context.Context, opts validator.Options, out io.Writer) error {
	debounceMS := envutil.GetIntFromEnv(constants.WatchDebounceEnvVar,
		constants.DefaultWatchDebounceMS, constants.MinWatchDebounceMS, constants.MaxWatchDebounceMS, validateLog)

	w, err := watch.New(watch.Config{
		Dirs:     []string{opts.BasePath, opts.PackPath, opts.SchemaPath},
		Debounce: time.Duration(debounceMS) * time.Millisecond,
		Stderr:   os.Stderr,
		OnChange: func(_ context.Context, changed []string) error {
			fmt.Fprintln(out, console.FormatInfoMessage(fmt.Sprintf("Change detected in %d file(s), re-validating...", len(changed))))
			err := validateOnce(opts, out)
			if errors.Is(err, validator.ErrValidationFailed) {
				return nil
			}
			return err
		},
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(out, console.FormatInfoMessage("Watching for changes (Ctrl+C to stop)..."))
	return w.Run(ctx)
}
