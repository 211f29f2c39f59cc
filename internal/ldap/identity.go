package ldap

import (
	"strings"

	"github.com/go-ldap/ldap/v3"
)

// IdentityFormat is the syntactic form of a bind identity.
type IdentityFormat int

const (
	IdentityUnknown IdentityFormat = iota
	IdentityDN                     // CN=jdoe,OU=Users,DC=corp,DC=local
	IdentityUPN                    // jdoe@corp.local
	IdentityDownLevel              // CORP\jdoe
	IdentitySAM                    // jdoe
)

func (f IdentityFormat) String() string {
	switch f {
	case IdentityDN:
		return "dn"
	case IdentityUPN:
		return "upn"
	case IdentityDownLevel, IdentitySAM:
		return "sam"
	default:
		return "unknown"
	}
}

// Identity is a classified bind identity.
type Identity struct {
	Raw     string
	Format  IdentityFormat
	Account string // account name part for the upn, down-level and sam forms
	Domain  string // realm or NetBIOS domain when the name carries one
}

// ClassifyIdentity determines the form of name. A DN must parse; a name with
// an "@" is a UPN; a backslash marks the down-level DOMAIN\account form.
func ClassifyIdentity(name string) Identity {
	name = strings.TrimSpace(name)
	id := Identity{Raw: name}

	switch {
	case name == "":
		return id
	case strings.Contains(name, "="):
		if _, err := ldap.ParseDN(name); err == nil {
			id.Format = IdentityDN
			return id
		}
	}

	if account, domain, ok := strings.Cut(name, "@"); ok {
		if account == "" || domain == "" || strings.Contains(domain, "@") {
			return id
		}
		id.Format, id.Account, id.Domain = IdentityUPN, account, domain
		return id
	}

	if domain, account, ok := strings.Cut(name, `\`); ok {
		if domain == "" || account == "" || strings.Contains(account, `\`) {
			return id
		}
		id.Format, id.Account, id.Domain = IdentityDownLevel, account, domain
		return id
	}

	if strings.ContainsAny(name, " =,") {
		return id
	}
	id.Format, id.Account = IdentitySAM, name
	return id
}

// BindName returns the name to bind with. DN, UPN and down-level names are
// passed through; any other name without an "@" becomes a principal in domain.
func (id Identity) BindName(domain string) string {
	switch id.Format {
	case IdentityDN, IdentityUPN, IdentityDownLevel:
		return id.Raw
	}
	if strings.Contains(id.Raw, "@") {
		return id.Raw
	}
	return id.Raw + "@" + domain
}
