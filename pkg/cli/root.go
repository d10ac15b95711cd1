package cli

import (
	"fmt"

	"github.com/nrdb/cardlint/pkg/constants"
	"github.com/spf13/cobra"
)

// NewRootCommand creates the cardlint command tree. Running the root command
// without a subcommand validates, and accepts the validate flags.
func NewRootCommand(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   constants.CLIName,
		Short: "Validate and format the JSON data of a card repository",
		Long: `Validate the cycles, packs and cards of a card repository against their JSON
schemas and check that every file is in canonical JSON form.

Running ` + constants.CLIName + ` without a command is the same as running "` + constants.CLIName + ` validate".`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidateCommand(cmd)
		},
	}
	AddValidateFlags(cmd)
	cmd.SetVersionTemplate(constants.CLIName + " version {{.Version}}\n")

	cmd.AddCommand(NewValidateCommand())
	cmd.AddCommand(NewSchemaCommand())
	cmd.AddCommand(NewVersionCommand(version))
	return cmd
}

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the " + constants.CLIName + " version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", constants.CLIName, version)
		},
	}
}
