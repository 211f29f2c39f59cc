package ldap

import (
	"fmt"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

// UnclassifiedPolicy controls whether records of an unrecognised type are listed.
type UnclassifiedPolicy string

const (
	UnclassifiedHide UnclassifiedPolicy = "hide"
	UnclassifiedShow UnclassifiedPolicy = "show"
)

// Config is the read-only configuration shared by every operation.
// It is built once and passed to constructors; it is never mutated afterwards.
type Config struct {
	// Connection settings
	ServerURL     string        `mapstructure:"server_url" validate:"required,url"`
	BaseDN        string        `mapstructure:"base_dn" validate:"required"`
	Domain        string        `mapstructure:"domain" validate:"omitempty,fqdn|hostname"`
	Timeout       time.Duration `mapstructure:"timeout" default:"30s" validate:"gte=0"`

	// VerifyCertificates enables certificate and hostname verification.
	// Off by default so self-signed domain controller certificates are accepted.
	VerifyCertificates bool `mapstructure:"verify_certificates"`

	// Fallback service account
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`

	// Kerberos settings for the fallback account (optional)
	KerberosRealm  string `mapstructure:"kerberos_realm"`
	KerberosKeytab string `mapstructure:"kerberos_keytab"`
	KerberosConfig string `mapstructure:"kerberos_config" default:"/etc/krb5.conf"`
	KerberosSPN    string `mapstructure:"kerberos_spn"`

	// Listing behaviour
	UnclassifiedPolicy UnclassifiedPolicy `mapstructure:"unclassified_records" default:"hide" validate:"oneof=hide show"`
}

var configValidator = validator.New()

// NewConfig returns a Config with defaults applied.
func NewConfig() *Config {
	cfg := &Config{}
	_ = defaults.Set(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields from their default tags.
func (c *Config) ApplyDefaults() error {
	if err := defaults.Set(c); err != nil {
		return fmt.Errorf("failed to apply config defaults: %w", err)
	}
	return nil
}

// Validate checks the configuration before any connection is attempted.
func (c *Config) Validate() error {
	if c == nil {
		return NewValidationError("config", "configuration cannot be nil")
	}

	if err := configValidator.Struct(c); err != nil {
		return &ValidationError{Field: "config", Reason: err.Error(), Cause: err}
	}

	scheme := strings.ToLower(c.ServerURL)
	if !strings.HasPrefix(scheme, "ldaps://") && !strings.HasPrefix(scheme, "ldap://") {
		return NewValidationError("server_url", "must use the ldaps:// or ldap:// scheme")
	}

	hasSimple := c.Username != "" && c.Password != ""
	hasKerberos := c.KerberosRealm != "" && c.Username != ""
	if !hasSimple && !hasKerberos {
		return NewValidationError("username", "a fallback account with password or Kerberos realm is required")
	}

	return nil
}

// UsesKerberos reports whether the fallback account binds with GSSAPI.
func (c *Config) UsesKerberos() bool {
	return c.KerberosRealm != ""
}

// DomainSuffix returns the DNS domain used for principal names and host names.
// The configured Domain wins; otherwise it is derived from the DC components
// of the base DN, and "local" is the last resort.
func (c *Config) DomainSuffix() string {
	if c.Domain != "" {
		return c.Domain
	}

	var parts []string
	for rdn := range strings.SplitSeq(c.BaseDN, ",") {
		rdn = strings.TrimSpace(rdn)
		if len(rdn) > 3 && strings.EqualFold(rdn[:3], "dc=") {
			parts = append(parts, rdn[3:])
		}
	}

	if len(parts) == 0 {
		return "local"
	}
	return strings.Join(parts, ".")
}

// DomainRoot returns the suffix of the base DN starting at its first DC
// component, lower-cased. It is empty when the base DN has no DC component.
func (c *Config) DomainRoot() string {
	lower := strings.ToLower(c.BaseDN)
	idx := strings.Index(lower, "dc=")
	if idx < 0 {
		return ""
	}
	return lower[idx:]
}

// IsDomainRootBase reports whether the base DN is a pure domain-component root.
func (c *Config) IsDomainRootBase() bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(c.BaseDN)), "dc=")
}

// Redacted returns log-safe fields describing the configuration.
func (c *Config) Redacted() map[string]any {
	return map[string]any{
		"server_url":           c.ServerURL,
		"base_dn":              c.BaseDN,
		"domain":               c.DomainSuffix(),
		"username":             c.Username,
		"kerberos":             c.UsesKerberos(),
		"verify_certificates":  c.VerifyCertificates,
		"unclassified_records": string(c.UnclassifiedPolicy),
	}
}
