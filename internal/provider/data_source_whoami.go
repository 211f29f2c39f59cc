package provider

import (
	"context"
	"fmt"

	"github.com/hashicorp/terraform-plugin-framework/datasource"
	"github.com/hashicorp/terraform-plugin-framework/datasource/schema"
	"github.com/hashicorp/terraform-plugin-framework/types"
	"github.com/hashicorp/terraform-plugin-log/tflog"

	ldapclient "github.com/isometry/terraform-provider-adops/internal/ldap"
)

// Ensure provider defined types fully satisfy framework interfaces.
var _ datasource.DataSource = &WhoAmIDataSource{}

func NewWhoAmIDataSource() datasource.DataSource {
	return &WhoAmIDataSource{}
}

// WhoAmIDataSource reports the identity operations are performed as.
type WhoAmIDataSource struct {
	data *ldapclient.ProviderData
}

// WhoAmIDataSourceModel describes the data source data model.
type WhoAmIDataSourceModel struct {
	ID                types.String `tfsdk:"id"`
	Identity          types.String `tfsdk:"identity"`
	Format            types.String `tfsdk:"format"`
	UserPrincipalName types.String `tfsdk:"upn"`
	SAMAccountName    types.String `tfsdk:"sam_account_name"`
	DN                types.String `tfsdk:"dn"`
	Actor             types.Bool   `tfsdk:"actor"`
	Domain            types.String `tfsdk:"domain"`
}

func (d *WhoAmIDataSource) Metadata(ctx context.Context, req datasource.MetadataRequest, resp *datasource.MetadataResponse) {
	resp.TypeName = req.ProviderTypeName + "_whoami"
}

func (d *WhoAmIDataSource) Schema(ctx context.Context, req datasource.SchemaRequest, resp *datasource.SchemaResponse) {
	resp.Schema = schema.Schema{
		MarkdownDescription: "Binds as the configured identity and reports who that is: the actor when one is configured, " +
			"otherwise the fallback service account. This data source takes no arguments.",

		Attributes: map[string]schema.Attribute{
			"id": schema.StringAttribute{
				MarkdownDescription: "Same as `identity`.",
				Computed:            true,
			},
			"identity": schema.StringAttribute{
				MarkdownDescription: "The principal the session bound as.",
				Computed:            true,
			},
			"format": schema.StringAttribute{
				MarkdownDescription: "Form of `identity`: `upn`, `dn`, `sam` or `unknown`.",
				Computed:            true,
			},
			"upn": schema.StringAttribute{
				MarkdownDescription: "Populated when `identity` is a user principal name.",
				Computed:            true,
			},
			"sam_account_name": schema.StringAttribute{
				MarkdownDescription: "The account name part of `identity` for the `upn` and `sam` forms.",
				Computed:            true,
			},
			"dn": schema.StringAttribute{
				MarkdownDescription: "Populated when `identity` is a distinguished name.",
				Computed:            true,
			},
			"actor": schema.BoolAttribute{
				MarkdownDescription: "Whether the identity is the configured actor rather than the fallback account.",
				Computed:            true,
			},
			"domain": schema.StringAttribute{
				MarkdownDescription: "The DNS domain the provider is configured for.",
				Computed:            true,
			},
		},
	}
}

func (d *WhoAmIDataSource) Configure(ctx context.Context, req datasource.ConfigureRequest, resp *datasource.ConfigureResponse) {
	d.data = providerDataFrom(req.ProviderData, &resp.Diagnostics)
}

func (d *WhoAmIDataSource) Read(ctx context.Context, req datasource.ReadRequest, resp *datasource.ReadResponse) {
	var data WhoAmIDataSourceModel

	ctx = initializeLogging(ctx)

	resp.Diagnostics.Append(req.Config.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	done := ldapclient.LogDataSourceOperation(ctx, "adops_whoami", "read", nil)
	identity, err := d.data.Directory.WhoAmI(ctx, d.data.Actor)
	done(err)
	if err != nil {
		resp.Diagnostics.AddError(
			"Error Binding to Active Directory",
			fmt.Sprintf("Could not bind as the configured identity: %s", err.Error()),
		)
		return
	}

	tflog.Debug(ctx, "Resolved bind identity", map[string]any{
		"identity": identity,
	})

	mapIdentityToModel(identity, &data)
	data.Actor = types.BoolValue(d.data.Actor != nil)
	data.Domain = types.StringValue(d.data.Directory.Config().DomainSuffix())

	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}

// mapIdentityToModel classifies identity and fills the format-specific fields.
func mapIdentityToModel(identity string, data *WhoAmIDataSourceModel) {
	data.ID = types.StringValue(identity)
	data.Identity = types.StringValue(identity)
	data.UserPrincipalName = types.StringNull()
	data.SAMAccountName = types.StringNull()
	data.DN = types.StringNull()

	id := ldapclient.ClassifyIdentity(identity)
	data.Format = types.StringValue(id.Format.String())

	switch id.Format {
	case ldapclient.IdentityDN:
		data.DN = types.StringValue(identity)
	case ldapclient.IdentityUPN:
		data.UserPrincipalName = types.StringValue(identity)
		data.SAMAccountName = types.StringValue(id.Account)
	case ldapclient.IdentityDownLevel, ldapclient.IdentitySAM:
		data.SAMAccountName = types.StringValue(id.Account)
	}
}
