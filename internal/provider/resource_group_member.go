package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/terraform-plugin-framework/path"
	"github.com/hashicorp/terraform-plugin-framework/resource"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/planmodifier"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/stringplanmodifier"
	"github.com/hashicorp/terraform-plugin-framework/schema/validator"
	"github.com/hashicorp/terraform-plugin-framework/types"
	"github.com/hashicorp/terraform-plugin-log/tflog"

	ldapclient "github.com/isometry/terraform-provider-adops/internal/ldap"
	customtypes "github.com/isometry/terraform-provider-adops/internal/provider/types"
	"github.com/isometry/terraform-provider-adops/internal/provider/validators"
)

// Ensure provider defined types fully satisfy framework interfaces.
var _ resource.Resource = &GroupMemberResource{}
var _ resource.ResourceWithImportState = &GroupMemberResource{}

func NewGroupMemberResource() resource.Resource {
	return &GroupMemberResource{}
}

// GroupMemberResource manages a single user's membership of a group.
type GroupMemberResource struct {
	data *ldapclient.ProviderData
}

// GroupMemberResourceModel describes the resource data model.
type GroupMemberResourceModel struct {
	ID       types.String              `tfsdk:"id"`
	Group    types.String              `tfsdk:"group"`
	User     types.String              `tfsdk:"user"`
	MemberDN customtypes.DNStringValue `tfsdk:"member_dn"`
}

func (r *GroupMemberResource) Metadata(ctx context.Context, req resource.MetadataRequest, resp *resource.MetadataResponse) {
	resp.TypeName = req.ProviderTypeName + "_group_member"
}

func (r *GroupMemberResource) Schema(ctx context.Context, req resource.SchemaRequest, resp *resource.SchemaResponse) {
	resp.Schema = schema.Schema{
		MarkdownDescription: "Adds a user to a group. Destroying the resource removes the user from the group; " +
			"neither the group nor the user is created or deleted.",

		Attributes: map[string]schema.Attribute{
			"id": schema.StringAttribute{
				MarkdownDescription: "Composite identifier, `<group>/<user>`.",
				Computed:            true,
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.UseStateForUnknown(),
				},
			},
			"group": schema.StringAttribute{
				MarkdownDescription: "The common name of the group.",
				Required:            true,
				Validators: []validator.String{
					validators.IsValidGroupName(),
				},
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.RequiresReplace(),
				},
			},
			"user": schema.StringAttribute{
				MarkdownDescription: "The sAMAccountName of the user.",
				Required:            true,
				Validators: []validator.String{
					validators.IsValidName(),
				},
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.RequiresReplace(),
				},
			},
			"member_dn": schema.StringAttribute{
				MarkdownDescription: "The distinguished name written to the group's `member` attribute.",
				Computed:            true,
				CustomType:          customtypes.DNStringType{},
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.UseStateForUnknown(),
				},
			},
		},
	}
}

func (r *GroupMemberResource) Configure(ctx context.Context, req resource.ConfigureRequest, resp *resource.ConfigureResponse) {
	r.data = providerDataFrom(req.ProviderData, &resp.Diagnostics)
}

func (r *GroupMemberResource) Create(ctx context.Context, req resource.CreateRequest, resp *resource.CreateResponse) {
	var data GroupMemberResourceModel

	ctx = initializeLogging(ctx)

	resp.Diagnostics.Append(req.Plan.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	group := data.Group.ValueString()
	user := data.User.ValueString()

	done := ldapclient.LogResourceOperation(ctx, "adops_group_member", "create", map[string]any{
		"group": group,
		"user":  user,
	})

	outcome := r.data.Directory.ManageGroupMember(ctx, r.data.Actor, ldapclient.MemberAdd, group, user)
	done(outcome.Err)
	if outcomeError(&resp.Diagnostics, "Error Adding Group Member", outcome) {
		return
	}

	data.ID = types.StringValue(memberID(group, user))
	data.MemberDN = customtypes.DNString(r.data.Directory.Objects().UserDN(user))

	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}

func (r *GroupMemberResource) Read(ctx context.Context, req resource.ReadRequest, resp *resource.ReadResponse) {
	var data GroupMemberResourceModel

	ctx = initializeLogging(ctx)

	resp.Diagnostics.Append(req.State.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	members, err := r.data.Directory.GroupMembers(ctx, r.data.Actor, data.Group.ValueString())
	if err != nil {
		if ldapclient.IsNotFoundError(err) {
			tflog.Debug(ctx, "Group not found, removing membership from state", map[string]any{
				"group": data.Group.ValueString(),
			})
			resp.State.RemoveResource(ctx)
			return
		}
		resp.Diagnostics.AddError(
			"Error Reading Group Member",
			fmt.Sprintf("Could not list members of group %q: %s", data.Group.ValueString(), err.Error()),
		)
		return
	}

	member := findMember(members, data.User.ValueString())
	if member == nil {
		tflog.Debug(ctx, "User is no longer a member, removing from state", map[string]any{
			"group": data.Group.ValueString(),
			"user":  data.User.ValueString(),
		})
		resp.State.RemoveResource(ctx)
		return
	}

	data.ID = types.StringValue(memberID(data.Group.ValueString(), data.User.ValueString()))
	data.MemberDN = customtypes.DNString(member.DN)

	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}

// Update is never called; every attribute forces replacement.
func (r *GroupMemberResource) Update(ctx context.Context, req resource.UpdateRequest, resp *resource.UpdateResponse) {
	var data GroupMemberResourceModel
	resp.Diagnostics.Append(req.Plan.Get(ctx, &data)...)
	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}

func (r *GroupMemberResource) Delete(ctx context.Context, req resource.DeleteRequest, resp *resource.DeleteResponse) {
	var data GroupMemberResourceModel

	ctx = initializeLogging(ctx)

	resp.Diagnostics.Append(req.State.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	done := ldapclient.LogResourceOperation(ctx, "adops_group_member", "delete", map[string]any{
		"group": data.Group.ValueString(),
		"user":  data.User.ValueString(),
	})

	outcome := r.data.Directory.ManageGroupMember(ctx, r.data.Actor, ldapclient.MemberRemove,
		data.Group.ValueString(), data.User.ValueString())
	done(outcome.Err)
	if !outcome.Success && ldapclient.IsNotFoundError(outcome.Err) {
		return
	}
	outcomeError(&resp.Diagnostics, "Error Removing Group Member", outcome)
}

// ImportState accepts "<group>/<user>".
func (r *GroupMemberResource) ImportState(ctx context.Context, req resource.ImportStateRequest, resp *resource.ImportStateResponse) {
	group, user, ok := splitMemberID(req.ID)
	if !ok {
		resp.Diagnostics.AddError(
			"Invalid Import ID",
			fmt.Sprintf("Expected an import ID of the form <group>/<user>, got %q.", req.ID),
		)
		return
	}

	resp.Diagnostics.Append(resp.State.SetAttribute(ctx, path.Root("id"), memberID(group, user))...)
	resp.Diagnostics.Append(resp.State.SetAttribute(ctx, path.Root("group"), group)...)
	resp.Diagnostics.Append(resp.State.SetAttribute(ctx, path.Root("user"), user)...)
}

func memberID(group, user string) string {
	return group + "/" + user
}

func splitMemberID(id string) (group, user string, ok bool) {
	group, user, ok = strings.Cut(strings.TrimSpace(id), "/")
	if !ok || group == "" || user == "" || strings.Contains(user, "/") {
		return "", "", false
	}
	return group, user, true
}

func findMember(members []ldapclient.GroupMember, user string) *ldapclient.GroupMember {
	for i := range members {
		if strings.EqualFold(members[i].AccountName, user) {
			return &members[i]
		}
	}
	return nil
}
