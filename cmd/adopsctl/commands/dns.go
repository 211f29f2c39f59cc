package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	ldapclient "github.com/isometry/terraform-provider-adops/internal/ldap"
)

func newZonesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "zones",
		Short: "List DNS zones stored in the directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := a.dir(cmd.Context())
			if err != nil {
				return err
			}

			zones, err := dir.ListZones(cmd.Context(), a.actor())
			if err != nil {
				return fmt.Errorf("failed to list zones: %w", err)
			}

			return a.printer.List(zones, zonesTable(zones), "No zones found.")
		},
	}
}

func newRecordsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Manage A and CNAME records in a zone",
		Long: `Manage DNS records stored as dnsNode objects under a zone.

Examples:
  # List records in a zone
  adopsctl records list DC=corp.local,CN=MicrosoftDNS,DC=DomainDnsZones,DC=corp,DC=local

  # Add an A record with the default TTL
  adopsctl records add <zone-dn> www A 10.0.0.5

  # Add a CNAME record
  adopsctl records add <zone-dn> alias CNAME www.corp.local --ttl 300

  # Delete a record by DN
  adopsctl records delete DC=www,<zone-dn>`,
	}

	cmd.AddCommand(newRecordsListCmd(a), newRecordsAddCmd(a), newRecordsDeleteCmd(a))
	return cmd
}

func newRecordsListCmd(a *app) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "list <zone-dn>",
		Short: "List records in a zone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter *ldapclient.RecordKind
			if kind != "" {
				parsed, err := ldapclient.ParseRecordKind(kind)
				if err != nil {
					return err
				}
				filter = &parsed
			}

			dir, err := a.dir(cmd.Context())
			if err != nil {
				return err
			}

			records, err := dir.ListRecords(cmd.Context(), a.actor(), args[0])
			if err != nil {
				return fmt.Errorf("failed to list records: %w", err)
			}

			if filter != nil {
				matched := make([]ldapclient.ResourceRecord, 0, len(records))
				for _, r := range records {
					if r.Kind == *filter {
						matched = append(matched, r)
					}
				}
				records = matched
			}

			return a.printer.List(records, recordsTable(records), "No records found.")
		},
	}

	cmd.Flags().StringVar(&kind, "type", "", "Only list records of this type (A|CNAME)")
	return cmd
}

func newRecordsAddCmd(a *app) *cobra.Command {
	var ttl uint32

	cmd := &cobra.Command{
		Use:   "add <zone-dn> <name> <type> <value>",
		Short: "Add an A or CNAME record",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := ldapclient.ParseRecordKind(args[2])
			if err != nil {
				return err
			}

			dir, err := a.dir(cmd.Context())
			if err != nil {
				return err
			}

			return a.report(dir.CreateRecord(cmd.Context(), a.actor(), args[0], args[1], kind, args[3], ttl))
		},
	}

	cmd.Flags().Uint32Var(&ttl, "ttl", ldapclient.DefaultTTL, "Time to live in seconds")
	return cmd
}

func newRecordsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <record-dn>",
		Short: "Delete a record by distinguished name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := a.dir(cmd.Context())
			if err != nil {
				return err
			}

			return a.report(dir.DeleteRecord(cmd.Context(), a.actor(), args[0]))
		},
	}
}
