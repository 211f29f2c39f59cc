package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/terraform-plugin-framework/attr"
	"github.com/hashicorp/terraform-plugin-framework/datasource"
	"github.com/hashicorp/terraform-plugin-framework/datasource/schema"
	"github.com/hashicorp/terraform-plugin-framework/diag"
	"github.com/hashicorp/terraform-plugin-framework/types"
	"github.com/hashicorp/terraform-plugin-log/tflog"

	ldapclient "github.com/isometry/terraform-provider-adops/internal/ldap"
	"github.com/isometry/terraform-provider-adops/internal/provider/helpers"
)

// Ensure provider defined types fully satisfy framework interfaces.
var _ datasource.DataSource = &UsersDataSource{}

func NewUsersDataSource() datasource.DataSource {
	return &UsersDataSource{}
}

// UsersDataSource defines the data source implementation.
type UsersDataSource struct {
	data *ldapclient.ProviderData
}

// UsersDataSourceModel describes the data source data model.
type UsersDataSourceModel struct {
	// Filters applied to the listing
	NameContains types.String `tfsdk:"name_contains"`
	EnabledOnly  types.Bool   `tfsdk:"enabled_only"`

	// Output
	Users     types.List   `tfsdk:"users"`
	UserCount types.Int64  `tfsdk:"user_count"`
	ID        types.String `tfsdk:"id"`
}

var userObjectType = types.ObjectType{
	AttrTypes: map[string]attr.Type{
		"account_name":   types.StringType,
		"display_name":   types.StringType,
		"principal_name": types.StringType,
		"control_flags":  types.Int64Type,
		"enabled":        types.BoolType,
		"object_guid":    types.StringType,
		"dn":             types.StringType,
	},
}

func (d *UsersDataSource) Metadata(ctx context.Context, req datasource.MetadataRequest, resp *datasource.MetadataResponse) {
	resp.TypeName = req.ProviderTypeName + "_users"
}

func (d *UsersDataSource) Schema(ctx context.Context, req datasource.SchemaRequest, resp *datasource.SchemaResponse) {
	resp.Schema = schema.Schema{
		MarkdownDescription: "Lists the user accounts under the provider's base DN.",

		Attributes: map[string]schema.Attribute{
			"name_contains": schema.StringAttribute{
				MarkdownDescription: "Only return users whose sAMAccountName contains this string (case-insensitive).",
				Optional:            true,
			},
			"enabled_only": schema.BoolAttribute{
				MarkdownDescription: "Only return accounts without the `ACCOUNTDISABLE` flag.",
				Optional:            true,
			},
			"id": schema.StringAttribute{
				MarkdownDescription: "Identifier of the listing.",
				Computed:            true,
			},
			"user_count": schema.Int64Attribute{
				MarkdownDescription: "Number of users returned.",
				Computed:            true,
			},
			"users": schema.ListNestedAttribute{
				MarkdownDescription: "The users found.",
				Computed:            true,
				NestedObject: schema.NestedAttributeObject{
					Attributes: map[string]schema.Attribute{
						"account_name": schema.StringAttribute{
							MarkdownDescription: "sAMAccountName.",
							Computed:            true,
						},
						"display_name": schema.StringAttribute{
							MarkdownDescription: "displayName, null when unset.",
							Computed:            true,
						},
						"principal_name": schema.StringAttribute{
							MarkdownDescription: "userPrincipalName, null when unset.",
							Computed:            true,
						},
						"control_flags": schema.Int64Attribute{
							MarkdownDescription: "Raw userAccountControl value.",
							Computed:            true,
						},
						"enabled": schema.BoolAttribute{
							MarkdownDescription: "Whether the account is enabled.",
							Computed:            true,
						},
						"object_guid": schema.StringAttribute{
							MarkdownDescription: "objectGUID in its string form.",
							Computed:            true,
						},
						"dn": schema.StringAttribute{
							MarkdownDescription: "Distinguished name.",
							Computed:            true,
						},
					},
				},
			},
		},
	}
}

func (d *UsersDataSource) Configure(ctx context.Context, req datasource.ConfigureRequest, resp *datasource.ConfigureResponse) {
	d.data = providerDataFrom(req.ProviderData, &resp.Diagnostics)
}

func (d *UsersDataSource) Read(ctx context.Context, req datasource.ReadRequest, resp *datasource.ReadResponse) {
	var data UsersDataSourceModel

	ctx = initializeLogging(ctx)

	resp.Diagnostics.Append(req.Config.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	done := ldapclient.LogDataSourceOperation(ctx, "adops_users", "read", map[string]any{
		"name_contains": data.NameContains.ValueString(),
		"enabled_only":  data.EnabledOnly.ValueBool(),
	})
	users, err := d.data.Directory.ListUsers(ctx, d.data.Actor)
	done(err)
	if err != nil {
		resp.Diagnostics.AddError(
			"Error Listing Users",
			fmt.Sprintf("Could not list Active Directory users: %s", err.Error()),
		)
		return
	}

	users = filterUsers(users, data.NameContains.ValueString(), data.EnabledOnly.ValueBool())

	d.mapUsersToModel(ctx, users, &data, &resp.Diagnostics)
	if resp.Diagnostics.HasError() {
		return
	}

	data.UserCount = types.Int64Value(int64(len(users)))
	data.ID = types.StringValue(fmt.Sprintf("users-search-%d", len(users)))

	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}

func filterUsers(users []ldapclient.User, nameContains string, enabledOnly bool) []ldapclient.User {
	needle := strings.ToLower(strings.TrimSpace(nameContains))
	if needle == "" && !enabledOnly {
		return users
	}

	filtered := make([]ldapclient.User, 0, len(users))
	for _, user := range users {
		if needle != "" && !strings.Contains(strings.ToLower(user.AccountName), needle) {
			continue
		}
		if enabledOnly && !user.Enabled {
			continue
		}
		filtered = append(filtered, user)
	}
	return filtered
}

// mapUsersToModel converts the listing to the Terraform model.
func (d *UsersDataSource) mapUsersToModel(ctx context.Context, users []ldapclient.User, data *UsersDataSourceModel, diags *diag.Diagnostics) {
	elements := make([]attr.Value, len(users))
	for i, user := range users {
		obj, objDiags := types.ObjectValue(userObjectType.AttrTypes, map[string]attr.Value{
			"account_name":   types.StringValue(user.AccountName),
			"display_name":   helpers.StringOrNull(user.DisplayName),
			"principal_name": helpers.StringOrNull(user.PrincipalName),
			"control_flags":  types.Int64Value(int64(user.ControlFlags)),
			"enabled":        types.BoolValue(user.Enabled),
			"object_guid":    helpers.StringOrNull(user.ObjectGUID),
			"dn":             types.StringValue(user.DN),
		})
		diags.Append(objDiags...)
		if objDiags.HasError() {
			return
		}
		elements[i] = obj
	}

	list, listDiags := types.ListValue(userObjectType, elements)
	diags.Append(listDiags...)
	if listDiags.HasError() {
		return
	}
	data.Users = list

	tflog.Trace(ctx, "Mapped users data to model", map[string]any{
		"total_users": len(users),
	})
}
