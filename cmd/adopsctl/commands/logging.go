package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/terraform-plugin-log/tflog"
	"github.com/hashicorp/terraform-plugin-log/tfsdklog"

	ldapclient "github.com/isometry/terraform-provider-adops/internal/ldap"
)

// parseLogLevel maps a --log-level value to an hclog level.
func parseLogLevel(level string) (hclog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "off", "none":
		return hclog.Off, nil
	}
	parsed := hclog.LevelFromString(level)
	if parsed == hclog.NoLevel {
		return hclog.NoLevel, fmt.Errorf("invalid log level %q (valid: off, error, warn, info, debug, trace)", level)
	}
	return parsed, nil
}

// newLoggerContext installs the root logger and the ldap subsystem, both at
// level and writing JSON lines to stderr. The directory code logs through
// tflog, so the same lines appear here as under Terraform.
func newLoggerContext(ctx context.Context, level string) (context.Context, error) {
	parsed, err := parseLogLevel(level)
	if err != nil {
		return ctx, err
	}

	ctx = tfsdklog.NewRootProviderLogger(ctx,
		tfsdklog.WithLogName("adopsctl"),
		tfsdklog.WithLevel(parsed),
		tfsdklog.WithoutLocation(),
	)
	ctx = tflog.NewSubsystem(ctx, ldapclient.Subsystem, tflog.WithLevel(parsed))

	return ctx, nil
}
