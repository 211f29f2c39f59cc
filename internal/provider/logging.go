package provider

import (
	"context"
	"fmt"

	"github.com/hashicorp/terraform-plugin-framework/diag"
	"github.com/hashicorp/terraform-plugin-log/tflog"

	ldapclient "github.com/isometry/terraform-provider-adops/internal/ldap"
)

// initializeLogging initializes the provider subsystem for consistent logging.
// This should be called at the beginning of each data source Read method
// and resource Create/Read/Update/Delete methods.
func initializeLogging(ctx context.Context) context.Context {
	// Pattern: TF_LOG_PROVIDER_ADOPS_<SUBSYSTEM>
	ctx = tflog.NewSubsystem(ctx, "provider",
		tflog.WithLevelFromEnv("TF_LOG_PROVIDER_ADOPS_PROVIDER"))
	return tflog.NewSubsystem(ctx, ldapclient.Subsystem,
		tflog.WithLevelFromEnv("TF_LOG_PROVIDER_ADOPS_LDAP"))
}

// providerDataFrom unwraps the value handed to Configure. A nil value means
// the provider is not configured yet and is not an error.
func providerDataFrom(providerData any, diags *diag.Diagnostics) *ldapclient.ProviderData {
	if providerData == nil {
		return nil
	}

	data, ok := providerData.(*ldapclient.ProviderData)
	if !ok {
		diags.AddError(
			"Unexpected Configure Type",
			fmt.Sprintf("Expected *ldap.ProviderData, got: %T. Please report this issue to the provider developers.", providerData),
		)
		return nil
	}

	return data
}

// outcomeError turns a failed Outcome into a diagnostic. It reports whether
// the outcome failed.
func outcomeError(diags *diag.Diagnostics, summary string, outcome ldapclient.Outcome) bool {
	if outcome.Success {
		return false
	}
	diags.AddError(summary, outcome.Message)
	return true
}
