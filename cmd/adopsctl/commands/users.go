package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	ldapclient "github.com/isometry/terraform-provider-adops/internal/ldap"
)

// secretFlags are the two ways a command accepts a password.
type secretFlags struct {
	value     string
	fromStdin bool
}

func (f *secretFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.value, "password", "p", "", "Password (visible in shell history; prefer --password-stdin)")
	cmd.Flags().BoolVar(&f.fromStdin, "password-stdin", false, "Read the password from the first line of stdin")
	cmd.MarkFlagsMutuallyExclusive("password", "password-stdin")
}

// read returns the password from the flag or the first line of r.
func (f *secretFlags) read(r io.Reader) (string, error) {
	if !f.fromStdin {
		if f.value == "" {
			return "", errors.New("a password is required: use --password or --password-stdin")
		}
		return f.value, nil
	}

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password from stdin: %w", err)
	}
	secret := strings.TrimRight(line, "\r\n")
	if secret == "" {
		return "", errors.New("empty password on stdin")
	}
	return secret, nil
}

func newUsersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List, create and reset passwords of user accounts",
		Long: `Manage user accounts in the Users container.

Examples:
  # List enabled users whose name contains "svc"
  adopsctl users list --name-contains svc --enabled-only

  # Create a user, reading the password from stdin
  echo 'S3cret!' | adopsctl users create jdoe --given-name John --surname Doe --password-stdin

  # Reset a password
  adopsctl users passwd jdoe --password-stdin < secret.txt`,
	}

	cmd.AddCommand(newUsersListCmd(a), newUsersCreateCmd(a), newUsersPasswdCmd(a))
	return cmd
}

func newUsersListCmd(a *app) *cobra.Command {
	var (
		nameContains string
		enabledOnly  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List user accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := a.dir(cmd.Context())
			if err != nil {
				return err
			}

			users, err := dir.ListUsers(cmd.Context(), a.actor())
			if err != nil {
				return fmt.Errorf("failed to list users: %w", err)
			}

			users = filterUsers(users, nameContains, enabledOnly)
			return a.printer.List(users, usersTable(users), "No users found.")
		},
	}

	cmd.Flags().StringVar(&nameContains, "name-contains", "", "Only list accounts whose name contains this text (case-insensitive)")
	cmd.Flags().BoolVar(&enabledOnly, "enabled-only", false, "Only list enabled accounts")
	return cmd
}

func filterUsers(users []ldapclient.User, nameContains string, enabledOnly bool) []ldapclient.User {
	needle := strings.ToLower(nameContains)
	filtered := make([]ldapclient.User, 0, len(users))
	for _, u := range users {
		if enabledOnly && !u.Enabled {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(u.AccountName), needle) {
			continue
		}
		filtered = append(filtered, u)
	}
	return filtered
}

func newUsersCreateCmd(a *app) *cobra.Command {
	var (
		secret    secretFlags
		givenName string
		surname   string
	)

	cmd := &cobra.Command{
		Use:   "create <account-name>",
		Short: "Create an enabled user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := secret.read(cmd.InOrStdin())
			if err != nil {
				return err
			}

			dir, err := a.dir(cmd.Context())
			if err != nil {
				return err
			}

			return a.report(dir.CreateUser(cmd.Context(), a.actor(), args[0], password, givenName, surname))
		},
	}

	secret.register(cmd)
	cmd.Flags().StringVar(&givenName, "given-name", "", "First name")
	cmd.Flags().StringVar(&surname, "surname", "", "Last name")
	return cmd
}

func newUsersPasswdCmd(a *app) *cobra.Command {
	var secret secretFlags

	cmd := &cobra.Command{
		Use:   "passwd <account-name>",
		Short: "Reset a user's password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := secret.read(cmd.InOrStdin())
			if err != nil {
				return err
			}

			dir, err := a.dir(cmd.Context())
			if err != nil {
				return err
			}

			return a.report(dir.ResetPassword(cmd.Context(), a.actor(), args[0], password))
		},
	}

	secret.register(cmd)
	return cmd
}
