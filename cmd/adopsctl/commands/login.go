package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	ldapclient "github.com/isometry/terraform-provider-adops/internal/ldap"
)

func newLoginCmd(a *app) *cobra.Command {
	var secret secretFlags

	cmd := &cobra.Command{
		Use:   "login <name>",
		Short: "Check a user's credentials with a bind",
		Long: `Bind as <name> with the given password and report whether the directory
accepted it. The name may be a sAMAccountName or a user principal name.
Nothing is stored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := secret.read(cmd.InOrStdin())
			if err != nil {
				return err
			}

			dir, err := a.dir(cmd.Context())
			if err != nil {
				return err
			}

			return a.report(dir.VerifyLogin(cmd.Context(), args[0], password))
		},
	}

	secret.register(cmd)
	return cmd
}

// whoAmI is the encoded form of the whoami command.
type whoAmI struct {
	Identity string `json:"identity" yaml:"identity"`
	Format   string `json:"format" yaml:"format"`
	Actor    bool   `json:"actor" yaml:"actor"`
	Domain   string `json:"domain" yaml:"domain"`
}

func newWhoAmICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the identity operations run as",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := a.dir(cmd.Context())
			if err != nil {
				return err
			}

			actor := a.actor()
			identity, err := dir.WhoAmI(cmd.Context(), actor)
			if err != nil {
				return fmt.Errorf("failed to bind: %w", err)
			}

			result := whoAmI{
				Identity: identity,
				Format:   ldapclient.ClassifyIdentity(identity).Format.String(),
				Actor:    actor != nil,
				Domain:   dir.Config().DomainSuffix(),
			}
			return a.printer.Object(result, [][2]string{
				{"Identity", result.Identity},
				{"Format", result.Format},
				{"Actor", strconv.FormatBool(result.Actor)},
				{"Domain", result.Domain},
			})
		},
	}
}
