package ldap

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/go-ldap/ldap/v3"
	"github.com/miekg/dns"
)

var safeNameRegex = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

const (
	maxLabelLength = 63
	maxNameLength  = 255
)

// ValidateName checks an untrusted short name (account, computer or host
// name) and returns it trimmed. Only letters, digits and hyphens are allowed.
func ValidateName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", NewValidationError("name", "name cannot be empty")
	}

	if !safeNameRegex.MatchString(trimmed) {
		return "", NewValidationError("name", "name contains illegal characters, only A-Z, a-z, 0-9 and '-' are allowed")
	}

	return trimmed, nil
}

// ValidateGroupName checks a group common name and returns it trimmed. Group
// names such as "Domain Admins" may hold spaces and punctuation, so only empty
// names and control characters are rejected; filters escape the rest.
func ValidateGroupName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", NewValidationError("group", "group name cannot be empty")
	}

	if strings.ContainsFunc(trimmed, unicode.IsControl) {
		return "", NewValidationError("group", "group name contains control characters")
	}

	return trimmed, nil
}

// validateNameFor applies the rule of kind to name.
func validateNameFor(kind ObjectKind, name string) (string, error) {
	if kind == ObjectKindGroup {
		return ValidateGroupName(name)
	}
	return ValidateName(name)
}

// EscapeFilterValue escapes a value for embedding in a search filter.
// It is applied in addition to name validation, never instead of it.
func EscapeFilterValue(value string) string {
	return ldap.EscapeFilter(value)
}

// ValidateHostTarget checks a CNAME target and returns it without surrounding
// whitespace or a trailing dot.
func ValidateHostTarget(value string) (string, error) {
	target := strings.TrimSuffix(strings.TrimSpace(value), ".")
	if target == "" {
		return "", NewValidationError("value", "target host name cannot be empty")
	}

	if _, ok := dns.IsDomainName(target); !ok {
		return "", NewValidationError("value", "target is not a valid DNS name: "+target)
	}

	for label := range strings.SplitSeq(target, ".") {
		if len(label) > maxLabelLength {
			return "", NewValidationError("value", "label exceeds 63 bytes: "+label)
		}
		if !isASCII(label) {
			return "", NewValidationError("value", "label is not ASCII: "+label)
		}
	}

	return target, nil
}
