package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	ldapclient "github.com/isometry/terraform-provider-adops/internal/ldap"
)

// EnvPrefix prefixes every environment variable adopsctl reads.
const EnvPrefix = "ADOPS"

// configKeys are the mapstructure keys of ldap.Config, plus the actor
// credentials. Each is bound to ADOPS_<KEY> so Unmarshal sees environment
// values even when no file mentions the key.
var configKeys = []string{
	"server_url",
	"base_dn",
	"domain",
	"timeout",
	"verify_certificates",
	"username",
	"password",
	"kerberos_realm",
	"kerberos_keytab",
	"kerberos_config",
	"kerberos_spn",
	"unclassified_records",
	"as_user",
	"as_password",
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for _, key := range configKeys {
		_ = v.BindEnv(key)
	}
	return v
}

// loadConfig reads the optional file at path, overlays the environment and
// returns a validated configuration. Without a server_url the domain
// controller is located through DNS SRV records of the domain.
//
// Precedence, highest first: ADOPS_* environment variables, the file, defaults.
func loadConfig(ctx context.Context, v *viper.Viper, path string, discovery *ldapclient.SRVDiscovery) (*ldapclient.Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.Is(err, os.ErrNotExist) || errors.As(err, &notFound) {
				return nil, fmt.Errorf("configuration file not found: %s", path)
			}
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := ldapclient.NewConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.ApplyDefaults(); err != nil {
		return nil, err
	}

	if err := ldapclient.ResolveServerURL(ctx, cfg, discovery); err != nil {
		return nil, fmt.Errorf("failed to discover a domain controller: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}
