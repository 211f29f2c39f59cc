package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	ldapclient "github.com/isometry/terraform-provider-adops/internal/ldap"
)

func newGroupsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "List groups and manage their members",
		Long: `List groups and manage group membership.

Examples:
  # List groups whose name starts with "app-"
  adopsctl groups list --name-prefix app-

  # Show the members of a group
  adopsctl groups members app-admins

  # Add and remove a member
  adopsctl groups add-member app-admins jdoe
  adopsctl groups remove-member app-admins jdoe`,
	}

	cmd.AddCommand(
		newGroupsListCmd(a),
		newGroupsMembersCmd(a),
		newMembershipCmd(a, ldapclient.MemberAdd, "add-member", "Add a user to a group"),
		newMembershipCmd(a, ldapclient.MemberRemove, "remove-member", "Remove a user from a group"),
	)
	return cmd
}

func newGroupsListCmd(a *app) *cobra.Command {
	var namePrefix string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := a.dir(cmd.Context())
			if err != nil {
				return err
			}

			groups, err := dir.ListGroups(cmd.Context(), a.actor())
			if err != nil {
				return fmt.Errorf("failed to list groups: %w", err)
			}

			if namePrefix != "" {
				prefix := strings.ToLower(namePrefix)
				matched := make([]ldapclient.Group, 0, len(groups))
				for _, g := range groups {
					if strings.HasPrefix(strings.ToLower(g.Name), prefix) {
						matched = append(matched, g)
					}
				}
				groups = matched
			}

			return a.printer.List(groups, groupsTable(groups), "No groups found.")
		},
	}

	cmd.Flags().StringVar(&namePrefix, "name-prefix", "", "Only list groups whose name starts with this text (case-insensitive)")
	return cmd
}

func newGroupsMembersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "members <group>",
		Short: "List the members of a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := a.dir(cmd.Context())
			if err != nil {
				return err
			}

			members, err := dir.GroupMembers(cmd.Context(), a.actor(), args[0])
			if err != nil {
				return fmt.Errorf("failed to list members of %s: %w", args[0], err)
			}

			return a.printer.List(members, membersTable(members), "Group has no members.")
		},
	}
}

func newMembershipCmd(a *app, action ldapclient.MemberAction, use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <group> <user>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := a.dir(cmd.Context())
			if err != nil {
				return err
			}

			return a.report(dir.ManageGroupMember(cmd.Context(), a.actor(), action, args[0], args[1]))
		},
	}
}
