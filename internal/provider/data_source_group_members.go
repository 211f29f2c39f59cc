package provider

import (
	"context"
	"fmt"

	"github.com/hashicorp/terraform-plugin-framework/datasource"
	"github.com/hashicorp/terraform-plugin-framework/datasource/schema"
	"github.com/hashicorp/terraform-plugin-framework/schema/validator"
	"github.com/hashicorp/terraform-plugin-framework/types"

	ldapclient "github.com/isometry/terraform-provider-adops/internal/ldap"
	"github.com/isometry/terraform-provider-adops/internal/provider/validators"
)

// Ensure provider defined types fully satisfy framework interfaces.
var _ datasource.DataSource = &GroupMembersDataSource{}

func NewGroupMembersDataSource() datasource.DataSource {
	return &GroupMembersDataSource{}
}

// GroupMembersDataSource resolves the direct members of one group.
type GroupMembersDataSource struct {
	data *ldapclient.ProviderData
}

// GroupMembersDataSourceModel describes the data source data model.
type GroupMembersDataSourceModel struct {
	Group       types.String       `tfsdk:"group"`
	Members     []GroupMemberModel `tfsdk:"members"`
	MemberCount types.Int64        `tfsdk:"member_count"`
	ID          types.String       `tfsdk:"id"`
}

// GroupMemberModel describes a single member.
type GroupMemberModel struct {
	AccountName types.String `tfsdk:"account_name"`
	DisplayName types.String `tfsdk:"display_name"`
	DN          types.String `tfsdk:"dn"`
}

func (d *GroupMembersDataSource) Metadata(ctx context.Context, req datasource.MetadataRequest, resp *datasource.MetadataResponse) {
	resp.TypeName = req.ProviderTypeName + "_group_members"
}

func (d *GroupMembersDataSource) Schema(ctx context.Context, req datasource.SchemaRequest, resp *datasource.SchemaResponse) {
	resp.Schema = schema.Schema{
		MarkdownDescription: "Lists the direct members of a group. Members whose entry cannot be read are left out; " +
			"attributes a member does not carry are reported as `N/A`.",

		Attributes: map[string]schema.Attribute{
			"group": schema.StringAttribute{
				MarkdownDescription: "Common name of the group.",
				Required:            true,
				Validators: []validator.String{
					validators.IsValidGroupName(),
				},
			},
			"id": schema.StringAttribute{
				MarkdownDescription: "Identifier of the listing.",
				Computed:            true,
			},
			"member_count": schema.Int64Attribute{
				MarkdownDescription: "Number of members returned.",
				Computed:            true,
			},
			"members": schema.ListNestedAttribute{
				MarkdownDescription: "The members found.",
				Computed:            true,
				NestedObject: schema.NestedAttributeObject{
					Attributes: map[string]schema.Attribute{
						"account_name": schema.StringAttribute{
							MarkdownDescription: "sAMAccountName of the member.",
							Computed:            true,
						},
						"display_name": schema.StringAttribute{
							MarkdownDescription: "displayName of the member.",
							Computed:            true,
						},
						"dn": schema.StringAttribute{
							MarkdownDescription: "Distinguished name of the member.",
							Computed:            true,
						},
					},
				},
			},
		},
	}
}

func (d *GroupMembersDataSource) Configure(ctx context.Context, req datasource.ConfigureRequest, resp *datasource.ConfigureResponse) {
	d.data = providerDataFrom(req.ProviderData, &resp.Diagnostics)
}

func (d *GroupMembersDataSource) Read(ctx context.Context, req datasource.ReadRequest, resp *datasource.ReadResponse) {
	var data GroupMembersDataSourceModel

	ctx = initializeLogging(ctx)

	resp.Diagnostics.Append(req.Config.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	group := data.Group.ValueString()

	done := ldapclient.LogDataSourceOperation(ctx, "adops_group_members", "read", map[string]any{
		"group": group,
	})
	members, err := d.data.Directory.GroupMembers(ctx, d.data.Actor, group)
	done(err)
	if err != nil {
		resp.Diagnostics.AddError(
			"Error Listing Group Members",
			fmt.Sprintf("Could not list members of group %q: %s", group, err.Error()),
		)
		return
	}

	data.Members = make([]GroupMemberModel, 0, len(members))
	for _, member := range members {
		data.Members = append(data.Members, GroupMemberModel{
			AccountName: types.StringValue(member.AccountName),
			DisplayName: types.StringValue(member.DisplayName),
			DN:          types.StringValue(member.DN),
		})
	}

	data.MemberCount = types.Int64Value(int64(len(members)))
	data.ID = types.StringValue(group)

	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}
