package ldap

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// DefaultKrb5ConfigPath is the system Kerberos configuration used when
// kerberos_config is not set.
const DefaultKrb5ConfigPath = "/etc/krb5.conf"

// renderKrb5Conf builds a minimal krb5.conf for realm. The domain controller
// behind the server URL is listed as the KDC and DNS lookup finds the rest.
func renderKrb5Conf(cfg *Config, realm string) string {
	realm = strings.ToUpper(realm)
	domain := strings.ToLower(cfg.DomainSuffix())

	var kdc string
	if parsed, err := url.Parse(cfg.ServerURL); err == nil && parsed.Hostname() != "" {
		kdc = fmt.Sprintf("        kdc = %s\n", parsed.Hostname())
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[libdefaults]\n")
	fmt.Fprintf(&b, "    default_realm = %s\n", realm)
	fmt.Fprintf(&b, "    dns_lookup_kdc = true\n")
	fmt.Fprintf(&b, "    dns_lookup_realm = false\n")
	fmt.Fprintf(&b, "    rdns = false\n")
	fmt.Fprintf(&b, "    forwardable = true\n\n")
	fmt.Fprintf(&b, "[realms]\n")
	fmt.Fprintf(&b, "    %s = {\n%s    }\n\n", realm, kdc)
	fmt.Fprintf(&b, "[domain_realm]\n")
	fmt.Fprintf(&b, "    .%s = %s\n", domain, realm)
	fmt.Fprintf(&b, "    %s = %s\n", domain, realm)
	return b.String()
}

// krb5ConfigPath returns the krb5.conf to load and a cleanup func.
//
// An explicit kerberos_config must exist. When only the system default is
// configured and it is absent, a runtime configuration is written to a
// temporary file.
func krb5ConfigPath(ctx context.Context, cfg *Config, realm string) (string, func(), error) {
	path := cfg.KerberosConfig
	if path == "" {
		path = DefaultKrb5ConfigPath
	}

	if fileExists(path) {
		return path, func() {}, nil
	}

	if path != DefaultKrb5ConfigPath {
		return "", nil, fmt.Errorf("kerberos configuration file not found at %s; set kerberos_config to a valid krb5.conf", path)
	}

	file, err := os.CreateTemp("", "adops-krb5-*.conf")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create runtime krb5.conf: %w", err)
	}
	cleanup := func() { _ = os.Remove(file.Name()) }

	content := renderKrb5Conf(cfg, realm)
	if _, err := file.WriteString(content); err != nil {
		_ = file.Close()
		cleanup()
		return "", nil, fmt.Errorf("failed to write runtime krb5.conf: %w", err)
	}
	if err := file.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to write runtime krb5.conf: %w", err)
	}

	LogKerberosEvent(ctx, "runtime_krb5_conf", map[string]any{
		"realm": strings.ToUpper(realm),
		"path":  file.Name(),
	})

	return file.Name(), cleanup, nil
}
