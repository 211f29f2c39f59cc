package ldap

import (
	"context"
	"errors"
	"maps"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"
	"github.com/hashicorp/terraform-plugin-log/tflog"
)

// Subsystem is the tflog subsystem used by this package.
const Subsystem = "ldap"

// LogOperation runs fn between start and finish log lines carrying its timing
// and, on failure, the error category.
func LogOperation(ctx context.Context, subsystem, operation string, fields map[string]any, fn func() error) error {
	start := time.Now()

	logFields := SanitizeFields(fields)
	logFields["operation"] = operation

	tflog.SubsystemDebug(ctx, subsystem, "Starting operation", logFields)

	err := fn()

	logFields["duration_ms"] = time.Since(start).Milliseconds()

	if err != nil {
		logFields["error"] = err.Error()
		logFields["error_category"] = string(CategoryOf(err))
		tflog.SubsystemError(ctx, subsystem, "Operation failed", logFields)
	} else {
		tflog.SubsystemDebug(ctx, subsystem, "Operation completed successfully", logFields)
	}

	return err
}

// LogLDAPError logs LDAP-specific error information.
func LogLDAPError(ctx context.Context, subsystem string, operation string, err error, fields map[string]any) {
	logFields := SanitizeFields(fields)
	logFields["operation"] = operation
	logFields["error"] = err.Error()

	var ldapErr *ldap.Error
	if errors.As(err, &ldapErr) {
		logFields["ldap_result_code"] = ldapErr.ResultCode
		if ldapErr.MatchedDN != "" {
			logFields["ldap_matched_dn"] = ldapErr.MatchedDN
		}
		if ldapErr.Err != nil {
			logFields["ldap_diagnostic_message"] = ldapErr.Err.Error()
		}
	}

	tflog.SubsystemError(ctx, subsystem, "LDAP operation failed", logFields)
}

// LogKerberosEvent logs Kerberos-specific events.
func LogKerberosEvent(ctx context.Context, event string, fields map[string]any) {
	logFields := SanitizeFields(fields)
	logFields["event"] = event

	switch event {
	case "gssapi_bind_success", "keytab_loaded":
		tflog.SubsystemInfo(ctx, Subsystem, "Kerberos event", logFields)
	case "gssapi_bind_failed", "client_creation_failed":
		tflog.SubsystemError(ctx, Subsystem, "Kerberos event", logFields)
	default:
		tflog.SubsystemDebug(ctx, Subsystem, "Kerberos event", logFields)
	}
}

var sensitiveKeys = map[string]bool{
	"password":    true,
	"passwd":      true,
	"secret":      true,
	"token":       true,
	"key":         true,
	"unicodepwd":  true,
	"credential":  true,
	"credentials": true,
}

// SanitizeFields returns a copy of fields with sensitive values redacted.
// A nil map yields an empty, writable map.
func SanitizeFields(fields map[string]any) map[string]any {
	sanitized := make(map[string]any, len(fields)+4)

	for k, v := range fields {
		if sensitiveKeys[strings.ToLower(k)] {
			sanitized[k] = "[REDACTED]"
			continue
		}
		if str, ok := v.(string); ok && containsSensitivePattern(str) {
			sanitized[k] = "[REDACTED]"
			continue
		}
		sanitized[k] = v
	}

	return sanitized
}

func containsSensitivePattern(s string) bool {
	lower := strings.ToLower(s)
	for _, pattern := range []string{"password=", "passwd=", "secret=", "unicodepwd="} {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

// LogResourceOperation provides standardized entry/exit logging for Terraform resource operations.
func LogResourceOperation(ctx context.Context, resource, operation string, fields map[string]any) func(error) {
	return logSurfaceOperation(ctx, "resource", resource, operation, fields)
}

// LogDataSourceOperation provides standardized entry/exit logging for Terraform data source operations.
func LogDataSourceOperation(ctx context.Context, dataSource, operation string, fields map[string]any) func(error) {
	return logSurfaceOperation(ctx, "data_source", dataSource, operation, fields)
}

func logSurfaceOperation(ctx context.Context, kindKey, name, operation string, fields map[string]any) func(error) {
	start := time.Now()
	base := SanitizeFields(fields)
	base[kindKey] = name
	base["operation"] = operation

	tflog.SubsystemDebug(ctx, "provider", "Starting "+strings.ReplaceAll(kindKey, "_", " ")+" operation", base)

	return func(err error) {
		exitFields := make(map[string]any, len(base)+3)
		maps.Copy(exitFields, base)
		exitFields["duration_ms"] = time.Since(start).Milliseconds()
		exitFields["has_error"] = err != nil

		if err != nil {
			exitFields["error"] = err.Error()
			tflog.SubsystemError(ctx, "provider", "Operation failed", exitFields)
		} else {
			tflog.SubsystemDebug(ctx, "provider", "Operation completed", exitFields)
		}
	}
}
