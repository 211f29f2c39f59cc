package provider

import (
	"context"
	"fmt"

	"github.com/hashicorp/terraform-plugin-framework/datasource"
	"github.com/hashicorp/terraform-plugin-framework/datasource/schema"
	"github.com/hashicorp/terraform-plugin-framework/types"
	"github.com/hashicorp/terraform-plugin-log/tflog"

	ldapclient "github.com/isometry/terraform-provider-adops/internal/ldap"
	"github.com/isometry/terraform-provider-adops/internal/provider/helpers"
)

// Ensure provider defined types fully satisfy framework interfaces.
var _ datasource.DataSource = &ComputersDataSource{}

func NewComputersDataSource() datasource.DataSource {
	return &ComputersDataSource{}
}

// ComputersDataSource lists machine accounts.
type ComputersDataSource struct {
	data *ldapclient.ProviderData
}

// ComputersDataSourceModel describes the data source data model.
type ComputersDataSourceModel struct {
	Computers     []ComputerModel `tfsdk:"computers"`
	ComputerCount types.Int64     `tfsdk:"computer_count"`
	ID            types.String    `tfsdk:"id"`
}

// ComputerModel describes a single machine account.
type ComputerModel struct {
	Name                  types.String `tfsdk:"name"`
	SAMAccountName        types.String `tfsdk:"sam_account_name"`
	ControlFlags          types.Int64  `tfsdk:"control_flags"`
	DNSHostName           types.String `tfsdk:"dns_host_name"`
	ServicePrincipalNames types.List   `tfsdk:"service_principal_names"`
	OperatingSystem       types.String `tfsdk:"operating_system"`
	SID                   types.String `tfsdk:"sid"`
	DN                    types.String `tfsdk:"dn"`
}

func (d *ComputersDataSource) Metadata(ctx context.Context, req datasource.MetadataRequest, resp *datasource.MetadataResponse) {
	resp.TypeName = req.ProviderTypeName + "_computers"
}

func (d *ComputersDataSource) Schema(ctx context.Context, req datasource.SchemaRequest, resp *datasource.SchemaResponse) {
	resp.Schema = schema.Schema{
		MarkdownDescription: "Lists the computer accounts under the provider's base DN.",

		Attributes: map[string]schema.Attribute{
			"id": schema.StringAttribute{
				MarkdownDescription: "Identifier of the listing.",
				Computed:            true,
			},
			"computer_count": schema.Int64Attribute{
				MarkdownDescription: "Number of computers returned.",
				Computed:            true,
			},
			"computers": schema.ListNestedAttribute{
				MarkdownDescription: "The computers found.",
				Computed:            true,
				NestedObject: schema.NestedAttributeObject{
					Attributes: map[string]schema.Attribute{
						"name": schema.StringAttribute{
							Computed: true,
						},
						"sam_account_name": schema.StringAttribute{
							Computed: true,
						},
						"control_flags": schema.Int64Attribute{
							MarkdownDescription: "Raw userAccountControl value.",
							Computed:            true,
						},
						"dns_host_name": schema.StringAttribute{
							Computed: true,
						},
						"service_principal_names": schema.ListAttribute{
							Computed:    true,
							ElementType: types.StringType,
						},
						"operating_system": schema.StringAttribute{
							MarkdownDescription: "Reported by the machine after it joins; null for pre-staged accounts.",
							Computed:            true,
						},
						"sid": schema.StringAttribute{
							MarkdownDescription: "objectSid in `S-1-5-...` form.",
							Computed:            true,
						},
						"dn": schema.StringAttribute{
							Computed: true,
						},
					},
				},
			},
		},
	}
}

func (d *ComputersDataSource) Configure(ctx context.Context, req datasource.ConfigureRequest, resp *datasource.ConfigureResponse) {
	d.data = providerDataFrom(req.ProviderData, &resp.Diagnostics)
}

func (d *ComputersDataSource) Read(ctx context.Context, req datasource.ReadRequest, resp *datasource.ReadResponse) {
	var data ComputersDataSourceModel

	ctx = initializeLogging(ctx)

	resp.Diagnostics.Append(req.Config.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	done := ldapclient.LogDataSourceOperation(ctx, "adops_computers", "read", nil)
	computers, err := d.data.Directory.ListComputers(ctx, d.data.Actor)
	done(err)
	if err != nil {
		resp.Diagnostics.AddError(
			"Error Listing Computers",
			fmt.Sprintf("Could not list Active Directory computers: %s", err.Error()),
		)
		return
	}

	data.Computers = make([]ComputerModel, 0, len(computers))
	for _, computer := range computers {
		spns, diags := helpers.StringList(ctx, computer.ServicePrincipalNames)
		resp.Diagnostics.Append(diags...)
		if diags.HasError() {
			return
		}

		data.Computers = append(data.Computers, ComputerModel{
			Name:                  types.StringValue(computer.Name),
			SAMAccountName:        helpers.StringOrNull(computer.AccountName),
			ControlFlags:          types.Int64Value(int64(computer.ControlFlags)),
			DNSHostName:           helpers.StringOrNull(computer.HostName),
			ServicePrincipalNames: spns,
			OperatingSystem:       helpers.StringOrNull(computer.OperatingSystem),
			SID:                   helpers.StringOrNull(computer.ObjectSID),
			DN:                    types.StringValue(computer.DN),
		})
	}

	tflog.Debug(ctx, "Found computers", map[string]any{
		"computer_count": len(computers),
	})

	data.ComputerCount = types.Int64Value(int64(len(computers)))
	data.ID = types.StringValue(fmt.Sprintf("computers-search-%d", len(computers)))

	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}
