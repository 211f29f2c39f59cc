package commands

import (
	"strconv"
	"strings"

	"github.com/isometry/terraform-provider-adops/internal/cli/output"
	ldapclient "github.com/isometry/terraform-provider-adops/internal/ldap"
)

func zonesTable(zones []ldapclient.Zone) *output.Table {
	table := output.NewTable("Name", "DN")
	for _, z := range zones {
		table.AddRow(z.Name, z.DN)
	}
	return table
}

func recordsTable(records []ldapclient.ResourceRecord) *output.Table {
	table := output.NewTable("Name", "Type", "Value", "TTL")
	for _, r := range records {
		table.AddRow(r.Name, r.Kind.String(), orDash(r.Value), strconv.FormatUint(uint64(r.TTL), 10))
	}
	return table
}

func usersTable(users []ldapclient.User) *output.Table {
	table := output.NewTable("Account", "Display Name", "Principal Name", "Enabled")
	for _, u := range users {
		table.AddRow(u.AccountName, orDash(u.DisplayName), orDash(u.PrincipalName), strconv.FormatBool(u.Enabled))
	}
	return table
}

func groupsTable(groups []ldapclient.Group) *output.Table {
	table := output.NewTable("Name", "Description", "Members")
	for _, g := range groups {
		table.AddRow(g.Name, orDash(g.Description), strconv.Itoa(len(g.Members)))
	}
	return table
}

func membersTable(members []ldapclient.GroupMember) *output.Table {
	table := output.NewTable("Account", "Display Name", "DN")
	for _, m := range members {
		table.AddRow(m.AccountName, m.DisplayName, m.DN)
	}
	return table
}

func computersTable(computers []ldapclient.Computer) *output.Table {
	table := output.NewTable("Name", "Account", "Host Name", "Operating System")
	for _, c := range computers {
		table.AddRow(c.Name, orDash(c.AccountName), orDash(c.HostName), orDash(c.OperatingSystem))
	}
	return table
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
