package ldap

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-ldap/ldap/v3"
	"github.com/hashicorp/terraform-plugin-log/tflog"
	"golang.org/x/text/encoding/unicode"
)

// userAccountControl flags.
const (
	UACAccountDisabled         int32 = 0x00000002 // Account is disabled
	UACPasswordNotRequired     int32 = 0x00000020 // No password required
	UACNormalAccount           int32 = 0x00000200 // Normal user account
	UACWorkstationTrustAccount int32 = 0x00001000 // Workstation trust account
	UACPasswordNeverExpires    int32 = 0x00010000 // Password never expires
)

// ObjectManager provisions and deletes accounts, manages group membership
// and resets passwords.
type ObjectManager struct {
	config   *Config
	resolver *Resolver
}

// NewObjectManager returns a manager resolving names through resolver.
func NewObjectManager(cfg *Config, resolver *Resolver) *ObjectManager {
	return &ObjectManager{config: cfg, resolver: resolver}
}

// containerDN places new objects under the well-known container when the
// base DN is a domain root, and directly under the base DN otherwise.
func (m *ObjectManager) containerDN(wellKnown string) string {
	if m.config.IsDomainRootBase() {
		return fmt.Sprintf("CN=%s,%s", wellKnown, m.config.BaseDN)
	}
	return m.config.BaseDN
}

// DeleteObject removes the object at dn.
func (m *ObjectManager) DeleteObject(ctx context.Context, s Session, dn string) error {
	dn = strings.TrimSpace(dn)
	if dn == "" {
		return NewValidationError("dn", "DN cannot be empty")
	}
	if _, err := ldap.ParseDN(dn); err != nil {
		return &ValidationError{Field: "dn", Reason: "malformed distinguished name", Cause: err}
	}

	tflog.SubsystemInfo(ctx, Subsystem, "Deleting directory object", map[string]any{"dn": dn})

	return s.Delete(ctx, dn)
}

var passwordEncoder = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// encodePassword returns the unicodePwd value for secret: the secret in
// double quotes, encoded as UTF-16LE.
func encodePassword(secret string) (string, error) {
	encoded, err := passwordEncoder.NewEncoder().String(`"` + secret + `"`)
	if err != nil {
		return "", &ValidationError{Field: "password", Reason: "password cannot be encoded as UTF-16LE", Cause: err}
	}
	return encoded, nil
}

func firstOr(entry *ldap.Entry, attr, fallback string) string {
	if v := entry.GetAttributeValue(attr); v != "" {
		return v
	}
	return fallback
}
