package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nrdb/cardlint/pkg/cards"
	"github.com/nrdb/cardlint/pkg/console"
	"github.com/nrdb/cardlint/pkg/constants"
	"github.com/nrdb/cardlint/pkg/fileutil"
	"github.com/nrdb/cardlint/pkg/logger"
	"github.com/spf13/cobra"
)

var schemaLog = logger.New("cli:schema_command")

// NewSchemaCommand creates the schema command group.
func NewSchemaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Manage the schema files of a card repository",
	}
	cmd.AddCommand(newSchemaInitCommand())
	return cmd
}

func newSchemaInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write starter draft 4 schemas for cycles, packs and cards",
		Long: `Write starter schemas for cycles, packs and cards into the schema directory.

The schemas require the identity fields every record needs (code, name and the
cycle_code or pack_code reference) and allow any other property. They are
written in canonical JSON form. Existing files are kept unless --force is given.

Examples:
  ` + constants.CLIName + ` schema init            # Write ./schema/*_schema.json
  ` + constants.CLIName + ` schema init -b data    # Write data/schema/*_schema.json
  ` + constants.CLIName + ` schema init --force    # Overwrite existing schemas`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			basePath, _ := cmd.Flags().GetString("base_path")
			schemaPath, _ := cmd.Flags().GetString("schema_path")
			force, _ := cmd.Flags().GetBool("force")
			if schemaPath == "" {
				if basePath == "" {
					basePath = "."
				}
				schemaPath = constants.DefaultSchemaPath(basePath)
			}
			return RunSchemaInit(schemaPath, force, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringP("base_path", "b", "", "Root directory of the card data (default: current directory)")
	cmd.Flags().StringP("schema_path", "c", "", "Directory to write the schemas to (default: <base_path>/schema)")
	cmd.Flags().Bool("force", false, "Overwrite existing schema files")
	return cmd
}

// RunSchemaInit writes the starter schemas into schemaPath, creating it when needed.
func RunSchemaInit(schemaPath string, force bool, out io.Writer) error {
	schemaLog.Printf("Writing starter schemas: dir=%s, force=%v", schemaPath, force)

	files := []struct {
		name     constants.FileName
		scaffold func() ([]byte, error)
	}{
		{constants.CycleSchemaFileName, cards.ScaffoldCycleSchema},
		{constants.PackSchemaFileName, cards.ScaffoldPackSchema},
		{constants.CardSchemaFileName, cards.ScaffoldCardSchema},
	}

	if !force {
		for _, f := range files {
			path := filepath.Join(schemaPath, f.name.String())
			if fileutil.FileExists(path) {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
		}
	}

	if err := os.MkdirAll(schemaPath, 0o755); err != nil {
		return fmt.Errorf("failed to create schema directory %s: %w", schemaPath, err)
	}

	for _, f := range files {
		data, err := f.scaffold()
		if err != nil {
			return fmt.Errorf("failed to generate %s: %w", f.name, err)
		}
		path := filepath.Join(schemaPath, f.name.String())
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		fmt.Fprintln(out, console.FormatSuccessMessage("Wrote "+path))
	}
	return nil
}
