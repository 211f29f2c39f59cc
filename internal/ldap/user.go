package ldap

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-ldap/ldap/v3"
	"github.com/hashicorp/terraform-plugin-log/tflog"
)

const userListFilter = "(&(objectClass=user)(!(objectClass=computer)))"

var userAttributes = []string{
	"sAMAccountName",
	"displayName",
	"userPrincipalName",
	"userAccountControl",
	"objectGUID",
	"distinguishedName",
}

// UserDN returns the DN a new user account named accountName is created at.
func (m *ObjectManager) UserDN(accountName string) string {
	return fmt.Sprintf("CN=%s,%s", ldap.EscapeDN(accountName), m.containerDN("Users"))
}

// PrincipalName returns accountName@<domain suffix>.
func (m *ObjectManager) PrincipalName(accountName string) string {
	return accountName + "@" + m.config.DomainSuffix()
}

// CreateUser provisions an enabled user account with an initial password.
func (m *ObjectManager) CreateUser(ctx context.Context, s Session, accountName, secret, givenName, surname string) (string, error) {
	name, err := ValidateName(accountName)
	if err != nil {
		return "", err
	}
	if secret == "" {
		return "", NewValidationError("password", "password cannot be empty")
	}

	pwd, err := encodePassword(secret)
	if err != nil {
		return "", err
	}

	givenName = strings.TrimSpace(givenName)
	surname = strings.TrimSpace(surname)
	dn := m.UserDN(name)

	attrs := map[string][]string{
		"objectClass":        {"top", "person", "organizationalPerson", "user"},
		"sAMAccountName":     {name},
		"userPrincipalName":  {m.PrincipalName(name)},
		"userAccountControl": {strconv.Itoa(int(UACNormalAccount))},
		"unicodePwd":         {pwd},
	}
	if displayName := strings.TrimSpace(givenName + " " + surname); displayName != "" {
		attrs["displayName"] = []string{displayName}
	}
	if givenName != "" {
		attrs["givenName"] = []string{givenName}
	}
	if surname != "" {
		attrs["sn"] = []string{surname}
	}

	tflog.SubsystemInfo(ctx, Subsystem, "Creating user account", map[string]any{
		"dn":             dn,
		"principal_name": m.PrincipalName(name),
	})

	if err := s.Add(ctx, &AddRequest{DN: dn, Attributes: attrs}); err != nil {
		return "", err
	}
	return dn, nil
}

// ResetPassword replaces the user's unicodePwd. The directory derives the
// stored credentials from the quoted UTF-16LE value.
func (m *ObjectManager) ResetPassword(ctx context.Context, s Session, userName, newSecret string) error {
	if newSecret == "" {
		return NewValidationError("password", "password cannot be empty")
	}

	pwd, err := encodePassword(newSecret)
	if err != nil {
		return err
	}

	dn, err := m.resolver.Resolve(ctx, s, userName, ObjectKindUser)
	if err != nil {
		return err
	}

	tflog.SubsystemInfo(ctx, Subsystem, "Resetting user password", map[string]any{"dn": dn})

	return s.Modify(ctx, &ModifyRequest{
		DN:                dn,
		ReplaceAttributes: map[string][]string{"unicodePwd": {pwd}},
	})
}

// ListUsers returns every non-computer user account under the base DN.
func (m *ObjectManager) ListUsers(ctx context.Context, s Session) ([]User, error) {
	result, err := s.Search(ctx, &SearchRequest{
		BaseDN:     m.config.BaseDN,
		Scope:      ScopeWholeSubtree,
		Filter:     userListFilter,
		Attributes: userAttributes,
	})
	if err != nil {
		return nil, err
	}

	users := make([]User, 0, len(result.Entries))
	for _, entry := range result.Entries {
		users = append(users, entryToUser(entry))
	}
	return users, nil
}

func entryToUser(entry *ldap.Entry) User {
	user := User{
		AccountName:   entry.GetAttributeValue("sAMAccountName"),
		DisplayName:   entry.GetAttributeValue("displayName"),
		PrincipalName: entry.GetAttributeValue("userPrincipalName"),
		ObjectGUID:    objectGUID(entry),
		DN:            entry.DN,
	}

	if uac, err := strconv.ParseInt(entry.GetAttributeValue("userAccountControl"), 10, 32); err == nil {
		user.ControlFlags = int32(uac)
	}
	user.Enabled = user.ControlFlags&UACAccountDisabled == 0

	return user
}
