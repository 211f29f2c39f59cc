package ldap

import (
	"context"
	"fmt"
)

// Resolver maps a short name of a given kind to its distinguished name.
type Resolver struct {
	config *Config
}

// NewResolver returns a resolver searching beneath cfg.BaseDN.
func NewResolver(cfg *Config) *Resolver {
	return &Resolver{config: cfg}
}

// filterFor builds the search filter for name. The value is escaped even
// though callers have already validated it.
func filterFor(kind ObjectKind, name string) (string, error) {
	escaped := EscapeFilterValue(name)

	switch kind {
	case ObjectKindUser:
		return fmt.Sprintf("(&(objectClass=user)(sAMAccountName=%s)(!(objectClass=computer)))", escaped), nil
	case ObjectKindGroup:
		return fmt.Sprintf("(&(objectClass=group)(cn=%s))", escaped), nil
	case ObjectKindComputer:
		return fmt.Sprintf("(&(objectClass=computer)(sAMAccountName=%s$))", escaped), nil
	default:
		return "", NewValidationError("kind", fmt.Sprintf("unsupported object kind %d", int(kind)))
	}
}

// Resolve returns the DN of the first object matching name, or a
// *NotFoundError when nothing matches.
func (r *Resolver) Resolve(ctx context.Context, s Session, name string, kind ObjectKind) (string, error) {
	safe, err := validateNameFor(kind, name)
	if err != nil {
		return "", err
	}

	filter, err := filterFor(kind, safe)
	if err != nil {
		return "", err
	}

	result, err := s.Search(ctx, &SearchRequest{
		BaseDN:     r.config.BaseDN,
		Scope:      ScopeWholeSubtree,
		Filter:     filter,
		Attributes: []string{"distinguishedName"},
	})
	if err != nil {
		return "", err
	}

	if len(result.Entries) == 0 {
		return "", &NotFoundError{Kind: kind.String(), Name: safe}
	}

	return result.Entries[0].DN, nil
}
