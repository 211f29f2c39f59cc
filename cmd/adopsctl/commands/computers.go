package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newComputersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "computers",
		Short: "List and pre-stage computer accounts",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List computer accounts",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				dir, err := a.dir(cmd.Context())
				if err != nil {
					return err
				}

				computers, err := dir.ListComputers(cmd.Context(), a.actor())
				if err != nil {
					return fmt.Errorf("failed to list computers: %w", err)
				}

				return a.printer.List(computers, computersTable(computers), "No computers found.")
			},
		},
		&cobra.Command{
			Use:   "create <name>",
			Short: "Pre-stage a workstation account",
			Long: `Pre-stage a workstation account in the Computers container so a machine
can join the domain with it. The name is upper-cased and must be at most 15
characters.`,
			Args: cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				dir, err := a.dir(cmd.Context())
				if err != nil {
					return err
				}

				return a.report(dir.CreateComputer(cmd.Context(), a.actor(), args[0]))
			},
		},
	)

	return cmd
}
