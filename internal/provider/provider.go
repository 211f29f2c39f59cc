package provider

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/terraform-plugin-framework-validators/providervalidator"
	"github.com/hashicorp/terraform-plugin-framework-validators/stringvalidator"
	"github.com/hashicorp/terraform-plugin-framework/datasource"
	"github.com/hashicorp/terraform-plugin-framework/diag"
	"github.com/hashicorp/terraform-plugin-framework/path"
	"github.com/hashicorp/terraform-plugin-framework/provider"
	"github.com/hashicorp/terraform-plugin-framework/provider/schema"
	"github.com/hashicorp/terraform-plugin-framework/resource"
	"github.com/hashicorp/terraform-plugin-framework/schema/validator"
	"github.com/hashicorp/terraform-plugin-framework/types"
	"github.com/hashicorp/terraform-plugin-log/tflog"

	ldapclient "github.com/isometry/terraform-provider-adops/internal/ldap"
	"github.com/isometry/terraform-provider-adops/internal/provider/validators"
)

// Ensure AdopsProvider satisfies various provider interfaces.
var _ provider.Provider = &AdopsProvider{}
var _ provider.ProviderWithConfigValidators = &AdopsProvider{}

// AdopsProvider defines the provider implementation.
type AdopsProvider struct {
	// Version is set to the provider version on release, "dev" when the
	// provider is built and ran locally, and "test" when running acceptance
	// testing.
	Version string
}

// AdopsProviderModel describes the provider data model.
type AdopsProviderModel struct {
	// Connection settings
	LdapURL        types.String `tfsdk:"ldap_url"`
	BaseDN         types.String `tfsdk:"base_dn"`
	Domain         types.String `tfsdk:"domain"`
	SkipTLSVerify  types.Bool   `tfsdk:"skip_tls_verify"`
	ConnectTimeout types.Int64  `tfsdk:"connect_timeout"`

	// Fallback service account
	Username types.String `tfsdk:"username"`
	Password types.String `tfsdk:"password"`

	// Per-run actor, overrides the service account for every operation
	ActorUsername types.String `tfsdk:"actor_username"`
	ActorPassword types.String `tfsdk:"actor_password"`

	// Kerberos settings (optional)
	KerberosRealm  types.String `tfsdk:"kerberos_realm"`
	KerberosKeytab types.String `tfsdk:"kerberos_keytab"`
	KerberosConfig types.String `tfsdk:"kerberos_config"`
	KerberosSPN    types.String `tfsdk:"kerberos_spn"`

	UnclassifiedRecords types.String `tfsdk:"unclassified_records"`
}

func (p *AdopsProvider) Metadata(ctx context.Context, req provider.MetadataRequest, resp *provider.MetadataResponse) {
	resp.TypeName = "adops"
	resp.Version = p.Version
}

func (p *AdopsProvider) Schema(ctx context.Context, req provider.SchemaRequest, resp *provider.SchemaResponse) {
	resp.Schema = schema.Schema{
		MarkdownDescription: "The `adops` provider performs day-to-day Active Directory administration over LDAPS: " +
			"DNS records in AD-integrated zones, user and computer accounts, and group membership. " +
			"Every operation opens its own session, bound either as the configured actor or as the fallback service account.",
		Attributes: map[string]schema.Attribute{
			"ldap_url": schema.StringAttribute{
				MarkdownDescription: "LDAP/LDAPS URL of the domain controller (e.g., `ldaps://dc1.example.com:636`). " +
					"When unset and `domain` is set, a controller is located through the domain's DNS SRV records. " +
					"Can be set via the `AD_LDAP_URL` environment variable.",
				Optional: true,
				Validators: []validator.String{
					stringvalidator.LengthAtLeast(1),
				},
			},
			"base_dn": schema.StringAttribute{
				MarkdownDescription: "Base DN for searches and object placement (e.g., `DC=example,DC=com`). " +
					"Can be set via the `AD_BASE_DN` environment variable.",
				Optional: true,
				Validators: []validator.String{
					validators.IsValidDN(),
				},
			},
			"domain": schema.StringAttribute{
				MarkdownDescription: "DNS domain used for principal names, host names and zone discovery. " +
					"Derived from the `DC` components of `base_dn` when unset. " +
					"Can be set via the `AD_DOMAIN` environment variable.",
				Optional: true,
			},
			"skip_tls_verify": schema.BoolAttribute{
				MarkdownDescription: "Accept the domain controller certificate without verification. Defaults to `true` " +
					"because domain controllers commonly present self-signed certificates. " +
					"Can be set via the `AD_SKIP_TLS_VERIFY` environment variable.",
				Optional: true,
			},
			"connect_timeout": schema.Int64Attribute{
				MarkdownDescription: "Connection and request timeout in seconds. Defaults to `30`. " +
					"Can be set via the `AD_CONNECT_TIMEOUT` environment variable.",
				Optional: true,
			},

			"username": schema.StringAttribute{
				MarkdownDescription: "Fallback service account, used when no actor is configured. " +
					"Can be set via the `AD_USERNAME` environment variable.",
				Optional: true,
			},
			"password": schema.StringAttribute{
				MarkdownDescription: "Password of the fallback service account. " +
					"Can be set via the `AD_PASSWORD` environment variable.",
				Optional:  true,
				Sensitive: true,
			},

			"actor_username": schema.StringAttribute{
				MarkdownDescription: "Account to act as. A bare name is qualified with `@<domain>`. " +
					"Can be set via the `AD_ACTOR_USERNAME` environment variable.",
				Optional: true,
			},
			"actor_password": schema.StringAttribute{
				MarkdownDescription: "Password of the acting account. " +
					"Can be set via the `AD_ACTOR_PASSWORD` environment variable.",
				Optional:  true,
				Sensitive: true,
			},

			"kerberos_realm": schema.StringAttribute{
				MarkdownDescription: "Kerberos realm for a GSSAPI bind of the fallback account (e.g., `EXAMPLE.COM`). " +
					"Can be set via the `AD_KERBEROS_REALM` environment variable.",
				Optional: true,
			},
			"kerberos_keytab": schema.StringAttribute{
				MarkdownDescription: "Path to a keytab for the fallback account. " +
					"Can be set via the `AD_KERBEROS_KEYTAB` environment variable.",
				Optional: true,
			},
			"kerberos_config": schema.StringAttribute{
				MarkdownDescription: "Path to krb5.conf. Defaults to `/etc/krb5.conf`; when that file is absent a minimal " +
					"configuration naming the domain controller as KDC is generated. " +
					"Can be set via the `AD_KERBEROS_CONFIG` environment variable.",
				Optional: true,
			},
			"kerberos_spn": schema.StringAttribute{
				MarkdownDescription: "Override Service Principal Name for the GSSAPI bind. " +
					"Format: `ldap/<hostname>`. " +
					"Can be set via the `AD_KERBEROS_SPN` environment variable.",
				Optional: true,
			},

			"unclassified_records": schema.StringAttribute{
				MarkdownDescription: "Whether DNS records that are neither `A` nor `CNAME` are listed: `hide` (default) or `show`. " +
					"Can be set via the `AD_UNCLASSIFIED_RECORDS` environment variable.",
				Optional: true,
				Validators: []validator.String{
					validators.CaseInsensitiveOneOf(string(ldapclient.UnclassifiedHide), string(ldapclient.UnclassifiedShow)),
				},
			},
		},
	}
}

// ConfigValidators implements provider.ProviderWithConfigValidators.
func (p *AdopsProvider) ConfigValidators(ctx context.Context) []provider.ConfigValidator {
	return []provider.ConfigValidator{
		providervalidator.RequiredTogether(
			path.MatchRoot("actor_username"),
			path.MatchRoot("actor_password"),
		),
		providervalidator.RequiredTogether(
			path.MatchRoot("username"),
			path.MatchRoot("password"),
		),
	}
}

func (p *AdopsProvider) Configure(ctx context.Context, req provider.ConfigureRequest, resp *provider.ConfigureResponse) {
	var data AdopsProviderModel

	resp.Diagnostics.Append(req.Config.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	ctx = p.configureLogging(ctx)

	tflog.Info(ctx, "Configuring adops provider", map[string]any{
		"version": p.Version,
	})

	config := p.buildLDAPConfig(ctx, &data, &resp.Diagnostics)
	if resp.Diagnostics.HasError() {
		return
	}

	directory, err := ldapclient.NewDirectory(config)
	if err != nil {
		resp.Diagnostics.AddError(
			"Invalid Provider Configuration",
			"The provider configuration could not be validated. "+
				"Check ldap_url, base_dn and the credential settings.\n\n"+
				"Configuration Error: "+err.Error(),
		)
		return
	}

	actor := p.buildActor(&data)
	providerData := ldapclient.NewProviderData(directory, actor)

	// Bind once so credential problems surface at configure time.
	start := time.Now()
	if err := providerData.ValidateConnection(ctx); err != nil {
		tflog.Error(ctx, "Connection test failed", map[string]any{
			"error":       err.Error(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
		resp.Diagnostics.AddError(
			"Unable to Connect to Active Directory",
			"The provider could not bind to the domain controller. "+
				"Please verify your configuration settings.\n\n"+
				"Connection Error: "+err.Error(),
		)
		return
	}

	tflog.Info(ctx, "adops provider configured successfully", map[string]any{
		"duration_ms": time.Since(start).Milliseconds(),
		"actor":       actor != nil,
	})

	resp.DataSourceData = providerData
	resp.ResourceData = providerData
}

// configureLogging adds persistent provider fields to every log line.
func (p *AdopsProvider) configureLogging(ctx context.Context) context.Context {
	ctx = tflog.SetField(ctx, "provider", "adops")
	ctx = tflog.SetField(ctx, "provider_version", p.Version)
	return ctx
}

// buildLDAPConfig constructs the directory configuration from provider config and environment variables.
func (p *AdopsProvider) buildLDAPConfig(ctx context.Context, data *AdopsProviderModel, diags *diag.Diagnostics) *ldapclient.Config {
	config := ldapclient.NewConfig()

	config.ServerURL = p.getStringValue(data.LdapURL, "AD_LDAP_URL")
	config.BaseDN = p.getStringValue(data.BaseDN, "AD_BASE_DN")
	config.Domain = p.getStringValue(data.Domain, "AD_DOMAIN")

	if err := ldapclient.ResolveServerURL(ctx, config, ldapclient.NewSRVDiscovery()); err != nil {
		diags.AddAttributeError(
			path.Root("ldap_url"),
			"Domain Controller Discovery Failed",
			"No ldap_url was configured and discovery for domain "+config.Domain+" failed: "+err.Error(),
		)
	}
	if config.ServerURL == "" {
		diags.AddAttributeError(
			path.Root("ldap_url"),
			"Missing LDAP URL",
			"The provider requires an LDAP URL. Set 'ldap_url' or the AD_LDAP_URL environment variable, "+
				"or set 'domain' to discover a domain controller.",
		)
	}
	if config.BaseDN == "" {
		diags.AddAttributeError(
			path.Root("base_dn"),
			"Missing Base DN",
			"The provider requires a base DN. Set 'base_dn' or the AD_BASE_DN environment variable.",
		)
	}

	config.Username = p.getStringValue(data.Username, "AD_USERNAME")
	config.Password = p.getStringValue(data.Password, "AD_PASSWORD")
	config.KerberosRealm = p.getStringValue(data.KerberosRealm, "AD_KERBEROS_REALM")
	config.KerberosKeytab = p.getStringValue(data.KerberosKeytab, "AD_KERBEROS_KEYTAB")
	config.KerberosSPN = p.getStringValue(data.KerberosSPN, "AD_KERBEROS_SPN")
	if krb5conf := p.getStringValue(data.KerberosConfig, "AD_KERBEROS_CONFIG"); krb5conf != "" {
		config.KerberosConfig = krb5conf
	}

	hasPasswordAuth := config.Username != "" && config.Password != ""
	hasKerberosAuth := config.Username != "" && config.KerberosRealm != ""
	if !hasPasswordAuth && !hasKerberosAuth {
		diags.AddError(
			"Missing Authentication Configuration",
			"A fallback service account is required. "+
				"For username/password: provide 'username' and 'password' or set AD_USERNAME and AD_PASSWORD. "+
				"For Kerberos: provide 'username' and 'kerberos_realm', plus 'kerberos_keytab' or 'password'.",
		)
	}

	config.VerifyCertificates = !p.getBoolValue(data.SkipTLSVerify, "AD_SKIP_TLS_VERIFY", true)

	if connectTimeout := p.getInt64Value(data.ConnectTimeout, "AD_CONNECT_TIMEOUT", 30); connectTimeout > 0 {
		config.Timeout = time.Duration(connectTimeout) * time.Second
	}

	if policy := p.getStringValue(data.UnclassifiedRecords, "AD_UNCLASSIFIED_RECORDS"); policy != "" {
		config.UnclassifiedPolicy = ldapclient.UnclassifiedPolicy(validators.Canonical(policy,
			string(ldapclient.UnclassifiedHide), string(ldapclient.UnclassifiedShow)))
	}

	return config
}

// buildActor returns the configured actor, or nil when either half is missing.
func (p *AdopsProvider) buildActor(data *AdopsProviderModel) *ldapclient.Actor {
	name := p.getStringValue(data.ActorUsername, "AD_ACTOR_USERNAME")
	secret := p.getStringValue(data.ActorPassword, "AD_ACTOR_PASSWORD")
	if name == "" || secret == "" {
		return nil
	}
	return &ldapclient.Actor{Name: name, Secret: secret}
}

// Helper functions for configuration value resolution

func (p *AdopsProvider) getStringValue(configValue types.String, envVar string) string {
	if !configValue.IsNull() && configValue.ValueString() != "" {
		return configValue.ValueString()
	}
	return os.Getenv(envVar)
}

func (p *AdopsProvider) getBoolValue(configValue types.Bool, envVar string, defaultValue bool) bool {
	if !configValue.IsNull() {
		return configValue.ValueBool()
	}
	if envValue := os.Getenv(envVar); envValue != "" {
		if parsed, err := strconv.ParseBool(envValue); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func (p *AdopsProvider) getInt64Value(configValue types.Int64, envVar string, defaultValue int64) int64 {
	if !configValue.IsNull() {
		return configValue.ValueInt64()
	}
	if envValue := os.Getenv(envVar); envValue != "" {
		if parsed, err := strconv.ParseInt(envValue, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func (p *AdopsProvider) Resources(ctx context.Context) []func() resource.Resource {
	return []func() resource.Resource{
		NewDNSRecordResource,
		NewUserResource,
		NewComputerResource,
		NewGroupMemberResource,
	}
}

func (p *AdopsProvider) DataSources(ctx context.Context) []func() datasource.DataSource {
	return []func() datasource.DataSource{
		NewDNSZonesDataSource,
		NewDNSRecordsDataSource,
		NewUsersDataSource,
		NewGroupsDataSource,
		NewGroupMembersDataSource,
		NewComputersDataSource,
		NewWhoAmIDataSource,
	}
}

func New(version string) func() provider.Provider {
	return func() provider.Provider {
		return &AdopsProvider{
			Version: version,
		}
	}
}
