package ldap

import (
	"context"
	"time"

	"github.com/go-ldap/ldap/v3"
)

// Session is an identity-bound directory handle. It is opened for a single
// operation and must be closed by whoever opened it.
type Session interface {
	// Identity returns the principal the session is bound as.
	Identity() string

	Search(ctx context.Context, req *SearchRequest) (*SearchResult, error)
	Add(ctx context.Context, req *AddRequest) error
	Modify(ctx context.Context, req *ModifyRequest) error
	Delete(ctx context.Context, dn string) error

	Close() error
}

// Actor is the optional per-call identity supplied by the caller's own
// authenticated context. A nil Actor selects the fallback service account.
type Actor struct {
	Name   string
	Secret string
}

// valid reports whether the actor carries both a name and a secret.
func (a *Actor) valid() bool {
	return a != nil && a.Name != "" && a.Secret != ""
}

// SearchRequest encapsulates LDAP search parameters.
type SearchRequest struct {
	BaseDN     string
	Scope      SearchScope
	Filter     string
	Attributes []string
	SizeLimit  int
	TimeLimit  time.Duration
}

// SearchResult contains search results.
type SearchResult struct {
	Entries []*ldap.Entry
	Total   int
}

// AddRequest encapsulates LDAP add parameters.
// Values are passed through as octet strings, so binary attributes are
// carried as string(bytes).
type AddRequest struct {
	DN         string
	Attributes map[string][]string
}

// ModifyRequest encapsulates LDAP modify parameters.
type ModifyRequest struct {
	DN                string
	AddAttributes     map[string][]string
	ReplaceAttributes map[string][]string
	DeleteAttributes  map[string][]string
}

// SearchScope defines LDAP search scope.
type SearchScope int

const (
	ScopeBaseObject SearchScope = iota
	ScopeSingleLevel
	ScopeWholeSubtree
)

func (s SearchScope) String() string {
	switch s {
	case ScopeBaseObject:
		return "base"
	case ScopeSingleLevel:
		return "one"
	case ScopeWholeSubtree:
		return "sub"
	default:
		return "unknown"
	}
}

// ObjectKind selects the search filter used to resolve a short name.
type ObjectKind int

const (
	ObjectKindUser ObjectKind = iota
	ObjectKindGroup
	ObjectKindComputer
)

func (k ObjectKind) String() string {
	switch k {
	case ObjectKindUser:
		return "user"
	case ObjectKindGroup:
		return "group"
	case ObjectKindComputer:
		return "computer"
	default:
		return "unknown"
	}
}

// Zone is a DNS zone container discovered in the directory.
type Zone struct {
	Name string `json:"name" yaml:"name"`
	DN   string `json:"dn" yaml:"dn"`
}

// ResourceRecord is a dnsNode entry surfaced to callers.
type ResourceRecord struct {
	Name  string     `json:"name" yaml:"name"`
	Kind  RecordKind `json:"kind" yaml:"kind"`
	Value string     `json:"value,omitempty" yaml:"value,omitempty"`
	TTL   uint32     `json:"ttl,omitempty" yaml:"ttl,omitempty"`
	DN    string     `json:"dn" yaml:"dn"`
}

// User is a user account as returned by listings.
type User struct {
	AccountName   string `json:"sAMAccountName" yaml:"sam_account_name"`
	DisplayName   string `json:"displayName,omitempty" yaml:"display_name,omitempty"`
	PrincipalName string `json:"userPrincipalName,omitempty" yaml:"principal_name,omitempty"`
	ControlFlags  int32  `json:"userAccountControl" yaml:"control_flags"`
	Enabled       bool   `json:"enabled" yaml:"enabled"`
	ObjectGUID    string `json:"objectGUID,omitempty" yaml:"object_guid,omitempty"`
	DN            string `json:"distinguishedName" yaml:"dn"`
}

// Group is a group as returned by listings.
type Group struct {
	Name        string   `json:"cn" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Members     []string `json:"member,omitempty" yaml:"members,omitempty"`
	DN          string   `json:"distinguishedName" yaml:"dn"`
}

// GroupMember is a member of a group with its display attributes resolved.
type GroupMember struct {
	AccountName string `json:"sAMAccountName" yaml:"sam_account_name"`
	DisplayName string `json:"displayName" yaml:"display_name"`
	DN          string `json:"distinguishedName" yaml:"dn"`
}

// Computer is a machine account.
type Computer struct {
	Name                  string   `json:"cn" yaml:"name"`
	AccountName           string   `json:"sAMAccountName,omitempty" yaml:"sam_account_name,omitempty"`
	ControlFlags          int32    `json:"userAccountControl,omitempty" yaml:"control_flags,omitempty"`
	HostName              string   `json:"dNSHostName,omitempty" yaml:"host_name,omitempty"`
	ServicePrincipalNames []string `json:"servicePrincipalName,omitempty" yaml:"service_principal_names,omitempty"`
	OperatingSystem       string   `json:"operatingSystem,omitempty" yaml:"operating_system,omitempty"`
	ObjectSID             string   `json:"objectSid,omitempty" yaml:"object_sid,omitempty"`
	DN                    string   `json:"distinguishedName" yaml:"dn"`
}

// MemberAction selects the direction of a membership change.
type MemberAction string

const (
	MemberAdd    MemberAction = "add"
	MemberRemove MemberAction = "remove"
)
