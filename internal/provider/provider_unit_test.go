package provider_test

import (
	"context"
	"strings"
	"testing"

	"github.com/hashicorp/terraform-plugin-framework/datasource"
	"github.com/hashicorp/terraform-plugin-framework/provider"
	"github.com/hashicorp/terraform-plugin-framework/providerserver"
	"github.com/hashicorp/terraform-plugin-framework/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	this "github.com/isometry/terraform-provider-adops/internal/provider"
)

// TestProviderMetadata tests the provider metadata.
func TestProviderMetadata(t *testing.T) {
	p := &this.AdopsProvider{Version: "test"}

	req := provider.MetadataRequest{}
	resp := &provider.MetadataResponse{}

	p.Metadata(t.Context(), req, resp)

	assert.Equal(t, "adops", resp.TypeName)
	assert.Equal(t, "test", resp.Version)
}

// TestProviderSchema tests the provider schema.
func TestProviderSchema(t *testing.T) {
	p := &this.AdopsProvider{}

	req := provider.SchemaRequest{}
	resp := &provider.SchemaResponse{}

	p.Schema(t.Context(), req, resp)

	require.False(t, resp.Diagnostics.HasError(), "Schema creation failed: %v", resp.Diagnostics)

	expectedAttributes := []string{
		"ldap_url", "base_dn", "domain",
		"skip_tls_verify", "connect_timeout",
		"username", "password",
		"actor_username", "actor_password",
		"kerberos_realm", "kerberos_keytab", "kerberos_config", "kerberos_spn",
		"unclassified_records",
	}

	for _, attr := range expectedAttributes {
		assert.Contains(t, resp.Schema.Attributes, attr)
	}
	assert.Len(t, resp.Schema.Attributes, len(expectedAttributes))

	for _, secret := range []string{"password", "actor_password"} {
		assert.True(t, resp.Schema.Attributes[secret].IsSensitive(), "%s should be sensitive", secret)
	}
}

// TestProviderResources checks every resource is registered under its type name.
func TestProviderResources(t *testing.T) {
	p := &this.AdopsProvider{}

	expected := []string{
		"adops_dns_record",
		"adops_user",
		"adops_computer",
		"adops_group_member",
	}

	var names []string
	for _, resourceFunc := range p.Resources(t.Context()) {
		r := resourceFunc()
		require.NotNil(t, r)

		resp := &resource.MetadataResponse{}
		r.Metadata(t.Context(), resource.MetadataRequest{ProviderTypeName: "adops"}, resp)
		names = append(names, resp.TypeName)

		schemaResp := &resource.SchemaResponse{}
		r.Schema(t.Context(), resource.SchemaRequest{}, schemaResp)
		assert.False(t, schemaResp.Diagnostics.HasError(), "%s schema: %v", resp.TypeName, schemaResp.Diagnostics)
	}

	assert.ElementsMatch(t, expected, names)
}

// TestProviderDataSources checks every data source is registered under its type name.
func TestProviderDataSources(t *testing.T) {
	p := &this.AdopsProvider{}

	expected := []string{
		"adops_dns_zones",
		"adops_dns_records",
		"adops_users",
		"adops_groups",
		"adops_group_members",
		"adops_computers",
		"adops_whoami",
	}

	var names []string
	for _, dataSourceFunc := range p.DataSources(t.Context()) {
		d := dataSourceFunc()
		require.NotNil(t, d)

		resp := &datasource.MetadataResponse{}
		d.Metadata(t.Context(), datasource.MetadataRequest{ProviderTypeName: "adops"}, resp)
		names = append(names, resp.TypeName)

		schemaResp := &datasource.SchemaResponse{}
		d.Schema(t.Context(), datasource.SchemaRequest{}, schemaResp)
		assert.False(t, schemaResp.Diagnostics.HasError(), "%s schema: %v", resp.TypeName, schemaResp.Diagnostics)
	}

	assert.ElementsMatch(t, expected, names)
}

// TestProviderConfigValidators tests the provider config validators.
func TestProviderConfigValidators(t *testing.T) {
	p := &this.AdopsProvider{}

	validators := p.ConfigValidators(t.Context())

	require.Len(t, validators, 2)
	for i, validator := range validators {
		assert.NotNil(t, validator, "config validator %d", i)
		assert.NotEmpty(t, validator.Description(context.Background()))
	}
}

// TestNewProvider tests the New provider function.
func TestNewProvider(t *testing.T) {
	testCases := []struct {
		name    string
		version string
	}{
		{name: "test version", version: "test"},
		{name: "dev version", version: "dev"},
		{name: "release version", version: "1.0.0"},
		{name: "empty version", version: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			providerFunc := this.New(tc.version)
			require.NotNil(t, providerFunc)

			p, ok := providerFunc().(*this.AdopsProvider)
			require.True(t, ok, "Provider is not of type *AdopsProvider")
			assert.Equal(t, tc.version, p.Version)
		})
	}
}

// TestProviderServer tests provider server creation.
func TestProviderServer(t *testing.T) {
	serverFactory := providerserver.NewProtocol6WithError(this.New("test")())
	require.NotNil(t, serverFactory)

	server, err := serverFactory()
	require.NoError(t, err)
	assert.NotNil(t, server)
}

// TestProviderEnvironmentVariables checks that every environment variable
// the provider reads is documented on its attribute.
func TestProviderEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"ldap_url":             "AD_LDAP_URL",
		"base_dn":              "AD_BASE_DN",
		"domain":               "AD_DOMAIN",
		"skip_tls_verify":      "AD_SKIP_TLS_VERIFY",
		"connect_timeout":      "AD_CONNECT_TIMEOUT",
		"username":             "AD_USERNAME",
		"password":             "AD_PASSWORD",
		"actor_username":       "AD_ACTOR_USERNAME",
		"actor_password":       "AD_ACTOR_PASSWORD",
		"kerberos_realm":       "AD_KERBEROS_REALM",
		"kerberos_keytab":      "AD_KERBEROS_KEYTAB",
		"kerberos_config":      "AD_KERBEROS_CONFIG",
		"kerberos_spn":         "AD_KERBEROS_SPN",
		"unclassified_records": "AD_UNCLASSIFIED_RECORDS",
	}

	p := &this.AdopsProvider{}
	resp := &provider.SchemaResponse{}
	p.Schema(t.Context(), provider.SchemaRequest{}, resp)

	for attr, envVar := range envVars {
		description := resp.Schema.Attributes[attr].GetMarkdownDescription()
		assert.True(t, strings.Contains(description, envVar), "%s should document %s", attr, envVar)
	}
}
