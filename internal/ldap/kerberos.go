package ldap

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/go-ldap/ldap/v3"
	"github.com/go-ldap/ldap/v3/gssapi"
	krb5client "github.com/jcmturner/gokrb5/v8/client"
)

// gssapiClientFactory builds the GSSAPI client for the fallback identity.
// Tests replace it to avoid touching a KDC.
var gssapiClientFactory = newGSSAPIClient

// kerberosBind performs a GSSAPI bind on conn as the fallback identity.
func kerberosBind(ctx context.Context, conn Conn, cfg *Config) error {
	client, err := gssapiClientFactory(ctx, cfg)
	if err != nil {
		LogKerberosEvent(ctx, "client_creation_failed", map[string]any{
			"realm": cfg.KerberosRealm,
			"error": err.Error(),
		})
		return fmt.Errorf("failed to create GSSAPI client: %w", err)
	}
	defer func() {
		_ = client.DeleteSecContext()
	}()

	spn, err := servicePrincipal(cfg)
	if err != nil {
		return fmt.Errorf("failed to build service principal: %w", err)
	}

	if err := conn.GSSAPIBind(client, spn, ""); err != nil {
		LogKerberosEvent(ctx, "gssapi_bind_failed", map[string]any{
			"spn":   spn,
			"error": err.Error(),
		})
		return fmt.Errorf("GSSAPI bind failed: %w", err)
	}

	LogKerberosEvent(ctx, "gssapi_bind_success", map[string]any{
		"spn":   spn,
		"realm": cfg.KerberosRealm,
	})
	return nil
}

// newGSSAPIClient prefers an explicit keytab and falls back to the
// configured password.
func newGSSAPIClient(ctx context.Context, cfg *Config) (ldap.GSSAPIClient, error) {
	username, realm := splitPrincipal(cfg.Username, cfg.KerberosRealm)
	if realm == "" {
		return nil, fmt.Errorf("kerberos realm is required (set kerberos_realm or include realm in username)")
	}

	if cfg.KerberosKeytab == "" && cfg.Password == "" {
		return nil, fmt.Errorf("no suitable credentials found for Kerberos authentication: provide kerberos_keytab or password")
	}

	if cfg.KerberosKeytab != "" && !fileExists(cfg.KerberosKeytab) {
		return nil, fmt.Errorf("kerberos keytab not readable: %s", cfg.KerberosKeytab)
	}

	// The client parses the file while it is constructed, so a runtime
	// configuration can be removed straight afterwards.
	krb5conf, cleanup, err := krb5ConfigPath(ctx, cfg, realm)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	if cfg.KerberosKeytab != "" {
		return gssapi.NewClientWithKeytab(username, realm, cfg.KerberosKeytab, krb5conf, krb5client.DisablePAFXFAST(true))
	}
	return gssapi.NewClientWithPassword(username, realm, cfg.Password, krb5conf, krb5client.DisablePAFXFAST(true))
}

// splitPrincipal separates "user@REALM" and lets an explicit realm win.
func splitPrincipal(username, realm string) (string, string) {
	user, principalRealm, found := strings.Cut(username, "@")
	if !found {
		return username, realm
	}
	if realm == "" {
		realm = principalRealm
	}
	return user, realm
}

// servicePrincipal returns the configured SPN or "ldap/<host>" from the server URL.
func servicePrincipal(cfg *Config) (string, error) {
	if cfg.KerberosSPN != "" {
		return cfg.KerberosSPN, nil
	}

	parsed, err := url.Parse(cfg.ServerURL)
	if err != nil {
		return "", fmt.Errorf("invalid LDAP URL: %w", err)
	}

	host := parsed.Hostname()
	if host == "" {
		return "", fmt.Errorf("no hostname found in URL: %s", cfg.ServerURL)
	}

	return "ldap/" + host, nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	_ = file.Close()
	return true
}
