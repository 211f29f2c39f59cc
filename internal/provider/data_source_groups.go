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
var _ datasource.DataSource = &GroupsDataSource{}

func NewGroupsDataSource() datasource.DataSource {
	return &GroupsDataSource{}
}

// GroupsDataSource defines the data source implementation.
type GroupsDataSource struct {
	data *ldapclient.ProviderData
}

// GroupsDataSourceModel describes the data source data model.
type GroupsDataSourceModel struct {
	NamePrefix types.String `tfsdk:"name_prefix"`
	HasMembers types.Bool   `tfsdk:"has_members"`

	Groups     types.List   `tfsdk:"groups"`
	GroupCount types.Int64  `tfsdk:"group_count"`
	ID         types.String `tfsdk:"id"`
}

var groupObjectType = types.ObjectType{
	AttrTypes: map[string]attr.Type{
		"name":         types.StringType,
		"description":  types.StringType,
		"dn":           types.StringType,
		"members":      types.ListType{ElemType: types.StringType},
		"member_count": types.Int64Type,
	},
}

func (d *GroupsDataSource) Metadata(ctx context.Context, req datasource.MetadataRequest, resp *datasource.MetadataResponse) {
	resp.TypeName = req.ProviderTypeName + "_groups"
}

func (d *GroupsDataSource) Schema(ctx context.Context, req datasource.SchemaRequest, resp *datasource.SchemaResponse) {
	resp.Schema = schema.Schema{
		MarkdownDescription: "Lists the groups under the provider's base DN with the DNs of their direct members.",

		Attributes: map[string]schema.Attribute{
			"name_prefix": schema.StringAttribute{
				MarkdownDescription: "Only return groups whose name starts with this string (case-insensitive).",
				Optional:            true,
			},
			"has_members": schema.BoolAttribute{
				MarkdownDescription: "When `true` only groups with members are returned, when `false` only empty groups.",
				Optional:            true,
			},
			"id": schema.StringAttribute{
				MarkdownDescription: "Identifier of the listing.",
				Computed:            true,
			},
			"group_count": schema.Int64Attribute{
				MarkdownDescription: "Number of groups returned.",
				Computed:            true,
			},
			"groups": schema.ListNestedAttribute{
				MarkdownDescription: "The groups found.",
				Computed:            true,
				NestedObject: schema.NestedAttributeObject{
					Attributes: map[string]schema.Attribute{
						"name": schema.StringAttribute{
							MarkdownDescription: "Common name.",
							Computed:            true,
						},
						"description": schema.StringAttribute{
							MarkdownDescription: "Description, null when unset.",
							Computed:            true,
						},
						"dn": schema.StringAttribute{
							MarkdownDescription: "Distinguished name.",
							Computed:            true,
						},
						"members": schema.ListAttribute{
							MarkdownDescription: "Distinguished names of the direct members.",
							Computed:            true,
							ElementType:         types.StringType,
						},
						"member_count": schema.Int64Attribute{
							MarkdownDescription: "Number of direct members.",
							Computed:            true,
						},
					},
				},
			},
		},
	}
}

func (d *GroupsDataSource) Configure(ctx context.Context, req datasource.ConfigureRequest, resp *datasource.ConfigureResponse) {
	d.data = providerDataFrom(req.ProviderData, &resp.Diagnostics)
}

func (d *GroupsDataSource) Read(ctx context.Context, req datasource.ReadRequest, resp *datasource.ReadResponse) {
	var data GroupsDataSourceModel

	ctx = initializeLogging(ctx)

	resp.Diagnostics.Append(req.Config.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	done := ldapclient.LogDataSourceOperation(ctx, "adops_groups", "read", map[string]any{
		"name_prefix": data.NamePrefix.ValueString(),
	})
	groups, err := d.data.Directory.ListGroups(ctx, d.data.Actor)
	done(err)
	if err != nil {
		resp.Diagnostics.AddError(
			"Error Searching Groups",
			fmt.Sprintf("Could not search Active Directory groups: %s", err.Error()),
		)
		return
	}

	groups = filterGroups(groups, data.NamePrefix.ValueString(), data.HasMembers)

	d.mapGroupsToModel(ctx, groups, &data, &resp.Diagnostics)
	if resp.Diagnostics.HasError() {
		return
	}

	data.GroupCount = types.Int64Value(int64(len(groups)))
	data.ID = types.StringValue(fmt.Sprintf("groups-search-%d", len(groups)))

	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}

func filterGroups(groups []ldapclient.Group, namePrefix string, hasMembers types.Bool) []ldapclient.Group {
	prefix := strings.ToLower(strings.TrimSpace(namePrefix))
	filterMembers := !hasMembers.IsNull() && !hasMembers.IsUnknown()

	filtered := make([]ldapclient.Group, 0, len(groups))
	for _, group := range groups {
		if prefix != "" && !strings.HasPrefix(strings.ToLower(group.Name), prefix) {
			continue
		}
		if filterMembers && (len(group.Members) > 0) != hasMembers.ValueBool() {
			continue
		}
		filtered = append(filtered, group)
	}
	return filtered
}

// mapGroupsToModel converts the listing to the Terraform model.
func (d *GroupsDataSource) mapGroupsToModel(ctx context.Context, groups []ldapclient.Group, data *GroupsDataSourceModel, diags *diag.Diagnostics) {
	elements := make([]attr.Value, len(groups))
	for i, group := range groups {
		members, memberDiags := helpers.StringList(ctx, group.Members)
		diags.Append(memberDiags...)
		if memberDiags.HasError() {
			return
		}

		obj, objDiags := types.ObjectValue(groupObjectType.AttrTypes, map[string]attr.Value{
			"name":         types.StringValue(group.Name),
			"description":  helpers.StringOrNull(group.Description),
			"dn":           types.StringValue(group.DN),
			"members":      members,
			"member_count": types.Int64Value(int64(len(group.Members))),
		})
		diags.Append(objDiags...)
		if objDiags.HasError() {
			return
		}
		elements[i] = obj
	}

	list, listDiags := types.ListValue(groupObjectType, elements)
	diags.Append(listDiags...)
	if listDiags.HasError() {
		return
	}
	data.Groups = list

	tflog.Trace(ctx, "Mapped groups data to model", map[string]any{
		"total_groups": len(groups),
	})
}
