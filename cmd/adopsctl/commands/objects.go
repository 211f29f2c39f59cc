package commands

import (
	"github.com/spf13/cobra"
)

func newObjectsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "objects",
		Short: "Operate on arbitrary directory objects",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <dn>",
		Short: "Delete an object by distinguished name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := a.dir(cmd.Context())
			if err != nil {
				return err
			}

			return a.report(dir.DeleteObject(cmd.Context(), a.actor(), args[0]))
		},
	})

	return cmd
}
