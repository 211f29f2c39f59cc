package ldap

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-ldap/ldap/v3"
	"github.com/hashicorp/terraform-plugin-log/tflog"
)

// ComputerControlFlags is the userAccountControl of a pre-staged machine account.
const ComputerControlFlags = UACWorkstationTrustAccount | UACPasswordNotRequired

var computerAttributes = []string{
	"cn",
	"sAMAccountName",
	"userAccountControl",
	"dNSHostName",
	"servicePrincipalName",
	"operatingSystem",
	"objectSid",
	"distinguishedName",
}

// ComputerSpec is the attribute set of a machine account about to be created.
type ComputerSpec struct {
	Name                  string
	AccountName           string
	DN                    string
	HostName              string
	ServicePrincipalNames []string
	ControlFlags          int32
	DisplayName           string
}

// PlanComputer validates name and derives the attributes CreateComputer
// would write.
func (m *ObjectManager) PlanComputer(name string) (*ComputerSpec, error) {
	safe, err := ValidateName(name)
	if err != nil {
		return nil, err
	}

	upper := strings.ToUpper(safe)
	host := upper + "." + m.config.DomainSuffix()

	return &ComputerSpec{
		Name:        upper,
		AccountName: upper + "$",
		DN:          fmt.Sprintf("CN=%s,%s", ldap.EscapeDN(upper), m.containerDN("Computers")),
		HostName:    host,
		ServicePrincipalNames: []string{
			"HOST/" + host,
			"HOST/" + upper,
			"RestrictedKrbHost/" + host,
			"RestrictedKrbHost/" + upper,
		},
		ControlFlags: ComputerControlFlags,
		DisplayName:  upper + " (Web Created)",
	}, nil
}

// CreateComputer pre-stages a workstation account.
func (m *ObjectManager) CreateComputer(ctx context.Context, s Session, name string) (*ComputerSpec, error) {
	spec, err := m.PlanComputer(name)
	if err != nil {
		return nil, err
	}

	tflog.SubsystemInfo(ctx, Subsystem, "Creating computer account", map[string]any{
		"dn":        spec.DN,
		"host_name": spec.HostName,
	})

	err = s.Add(ctx, &AddRequest{
		DN: spec.DN,
		Attributes: map[string][]string{
			"objectClass":          {"top", "person", "organizationalPerson", "user", "computer"},
			"sAMAccountName":       {spec.AccountName},
			"userAccountControl":   {strconv.Itoa(int(spec.ControlFlags))},
			"dNSHostName":          {spec.HostName},
			"servicePrincipalName": spec.ServicePrincipalNames,
			"displayName":          {spec.DisplayName},
		},
	})
	if err != nil {
		return nil, err
	}
	return spec, nil
}

// ListComputers returns every computer account under the base DN.
func (m *ObjectManager) ListComputers(ctx context.Context, s Session) ([]Computer, error) {
	result, err := s.Search(ctx, &SearchRequest{
		BaseDN:     m.config.BaseDN,
		Scope:      ScopeWholeSubtree,
		Filter:     "(objectClass=computer)",
		Attributes: computerAttributes,
	})
	if err != nil {
		return nil, err
	}

	computers := make([]Computer, 0, len(result.Entries))
	for _, entry := range result.Entries {
		computers = append(computers, computerFromEntry(entry))
	}
	return computers, nil
}

// FindComputer looks up a single computer account by name, returning a
// *NotFoundError when none exists.
func (m *ObjectManager) FindComputer(ctx context.Context, s Session, name string) (*Computer, error) {
	safe, err := ValidateName(name)
	if err != nil {
		return nil, err
	}

	filter, err := filterFor(ObjectKindComputer, safe)
	if err != nil {
		return nil, err
	}

	result, err := s.Search(ctx, &SearchRequest{
		BaseDN:     m.config.BaseDN,
		Scope:      ScopeWholeSubtree,
		Filter:     filter,
		Attributes: computerAttributes,
		SizeLimit:  1,
	})
	if err != nil {
		return nil, err
	}
	if len(result.Entries) == 0 {
		return nil, &NotFoundError{Kind: ObjectKindComputer.String(), Name: safe}
	}

	computer := computerFromEntry(result.Entries[0])
	return &computer, nil
}

func computerFromEntry(entry *ldap.Entry) Computer {
	computer := Computer{
		Name:                  entry.GetAttributeValue("cn"),
		AccountName:           entry.GetAttributeValue("sAMAccountName"),
		HostName:              entry.GetAttributeValue("dNSHostName"),
		ServicePrincipalNames: entry.GetAttributeValues("servicePrincipalName"),
		OperatingSystem:       entry.GetAttributeValue("operatingSystem"),
		ObjectSID:             objectSID(entry),
		DN:                    entry.DN,
	}
	if uac, err := strconv.ParseInt(entry.GetAttributeValue("userAccountControl"), 10, 32); err == nil {
		computer.ControlFlags = int32(uac)
	}
	return computer
}
