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
var _ resource.Resource = &UserResource{}
var _ resource.ResourceWithImportState = &UserResource{}

func NewUserResource() resource.Resource {
	return &UserResource{}
}

// UserResource provisions an enabled user account in the Users container.
type UserResource struct {
	data *ldapclient.ProviderData
}

// UserResourceModel describes the resource data model.
type UserResourceModel struct {
	ID            types.String              `tfsdk:"id"`
	AccountName   types.String              `tfsdk:"account_name"`
	Password      types.String              `tfsdk:"password"`
	GivenName     types.String              `tfsdk:"given_name"`
	Surname       types.String              `tfsdk:"surname"`
	DN            customtypes.DNStringValue `tfsdk:"dn"`
	PrincipalName types.String              `tfsdk:"principal_name"`
	DisplayName   types.String              `tfsdk:"display_name"`
}

func (r *UserResource) Metadata(ctx context.Context, req resource.MetadataRequest, resp *resource.MetadataResponse) {
	resp.TypeName = req.ProviderTypeName + "_user"
}

func (r *UserResource) Schema(ctx context.Context, req resource.SchemaRequest, resp *resource.SchemaResponse) {
	resp.Schema = schema.Schema{
		MarkdownDescription: "Manages an enabled Active Directory user account. " +
			"Changing `password` resets it in place; any other change replaces the account.",

		Attributes: map[string]schema.Attribute{
			"id": schema.StringAttribute{
				MarkdownDescription: "The sAMAccountName of the user.",
				Computed:            true,
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.UseStateForUnknown(),
				},
			},
			"account_name": schema.StringAttribute{
				MarkdownDescription: "The sAMAccountName. Letters, digits and hyphens only.",
				Required:            true,
				Validators: []validator.String{
					validators.IsValidName(),
				},
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.RequiresReplace(),
				},
			},
			"password": schema.StringAttribute{
				MarkdownDescription: "The account password. Changing it performs an administrative reset.",
				Required:            true,
				Sensitive:           true,
			},
			"given_name": schema.StringAttribute{
				MarkdownDescription: "First name.",
				Optional:            true,
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.RequiresReplace(),
				},
			},
			"surname": schema.StringAttribute{
				MarkdownDescription: "Last name.",
				Optional:            true,
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.RequiresReplace(),
				},
			},
			"dn": schema.StringAttribute{
				MarkdownDescription: "The distinguished name of the user.",
				Computed:            true,
				CustomType:          customtypes.DNStringType{},
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.UseStateForUnknown(),
				},
			},
			"principal_name": schema.StringAttribute{
				MarkdownDescription: "The userPrincipalName, `account_name@domain`.",
				Computed:            true,
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.UseStateForUnknown(),
				},
			},
			"display_name": schema.StringAttribute{
				MarkdownDescription: "The display name built from `given_name` and `surname`.",
				Computed:            true,
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.UseStateForUnknown(),
				},
			},
		},
	}
}

func (r *UserResource) Configure(ctx context.Context, req resource.ConfigureRequest, resp *resource.ConfigureResponse) {
	r.data = providerDataFrom(req.ProviderData, &resp.Diagnostics)
}

func (r *UserResource) Create(ctx context.Context, req resource.CreateRequest, resp *resource.CreateResponse) {
	var data UserResourceModel

	ctx = initializeLogging(ctx)

	resp.Diagnostics.Append(req.Plan.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	accountName := strings.TrimSpace(data.AccountName.ValueString())

	done := ldapclient.LogResourceOperation(ctx, "adops_user", "create", map[string]any{
		"account_name": accountName,
	})

	outcome := r.data.Directory.CreateUser(ctx, r.data.Actor,
		accountName,
		data.Password.ValueString(),
		data.GivenName.ValueString(),
		data.Surname.ValueString(),
	)
	done(outcome.Err)
	if outcomeError(&resp.Diagnostics, "Error Creating User", outcome) {
		return
	}

	data.ID = types.StringValue(accountName)
	data.DN = customtypes.DNString(outcome.DN)
	data.PrincipalName = types.StringValue(r.data.Directory.Objects().PrincipalName(accountName))
	data.DisplayName = types.StringValue(strings.TrimSpace(
		strings.TrimSpace(data.GivenName.ValueString()) + " " + strings.TrimSpace(data.Surname.ValueString()),
	))

	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}

func (r *UserResource) Read(ctx context.Context, req resource.ReadRequest, resp *resource.ReadResponse) {
	var data UserResourceModel

	ctx = initializeLogging(ctx)

	resp.Diagnostics.Append(req.State.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	users, err := r.data.Directory.ListUsers(ctx, r.data.Actor)
	if err != nil {
		resp.Diagnostics.AddError(
			"Error Reading User",
			fmt.Sprintf("Could not list users: %s", err.Error()),
		)
		return
	}

	accountName := data.AccountName.ValueString()
	var found *ldapclient.User
	for i := range users {
		if strings.EqualFold(users[i].AccountName, accountName) {
			found = &users[i]
			break
		}
	}

	if found == nil {
		tflog.Debug(ctx, "User not found, removing from state", map[string]any{
			"account_name": accountName,
		})
		resp.State.RemoveResource(ctx)
		return
	}

	data.ID = types.StringValue(accountName)
	data.DN = customtypes.DNString(found.DN)
	data.PrincipalName = types.StringValue(found.PrincipalName)
	data.DisplayName = types.StringValue(found.DisplayName)

	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}

// Update only handles password changes; everything else forces replacement.
func (r *UserResource) Update(ctx context.Context, req resource.UpdateRequest, resp *resource.UpdateResponse) {
	var plan, state UserResourceModel

	ctx = initializeLogging(ctx)

	resp.Diagnostics.Append(req.Plan.Get(ctx, &plan)...)
	resp.Diagnostics.Append(req.State.Get(ctx, &state)...)
	if resp.Diagnostics.HasError() {
		return
	}

	if !plan.Password.Equal(state.Password) {
		done := ldapclient.LogResourceOperation(ctx, "adops_user", "reset_password", map[string]any{
			"account_name": plan.AccountName.ValueString(),
		})

		outcome := r.data.Directory.ResetPassword(ctx, r.data.Actor,
			plan.AccountName.ValueString(),
			plan.Password.ValueString(),
		)
		done(outcome.Err)
		if outcomeError(&resp.Diagnostics, "Error Resetting Password", outcome) {
			return
		}
	}

	plan.ID = state.ID
	plan.DN = state.DN
	plan.PrincipalName = state.PrincipalName
	plan.DisplayName = state.DisplayName

	resp.Diagnostics.Append(resp.State.Set(ctx, &plan)...)
}

func (r *UserResource) Delete(ctx context.Context, req resource.DeleteRequest, resp *resource.DeleteResponse) {
	var data UserResourceModel

	ctx = initializeLogging(ctx)

	resp.Diagnostics.Append(req.State.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	done := ldapclient.LogResourceOperation(ctx, "adops_user", "delete", map[string]any{
		"dn": data.DN.ValueString(),
	})

	outcome := r.data.Directory.DeleteObject(ctx, r.data.Actor, data.DN.ValueString())
	done(outcome.Err)
	if !outcome.Success && ldapclient.IsNotFoundError(outcome.Err) {
		return
	}
	outcomeError(&resp.Diagnostics, "Error Deleting User", outcome)
}

// ImportState accepts the sAMAccountName. The password is not readable, so
// the next apply resets it to the configured value.
func (r *UserResource) ImportState(ctx context.Context, req resource.ImportStateRequest, resp *resource.ImportStateResponse) {
	accountName := strings.TrimSpace(req.ID)
	if _, err := ldapclient.ValidateName(accountName); err != nil {
		resp.Diagnostics.AddError(
			"Invalid Import ID",
			fmt.Sprintf("Import ID must be a sAMAccountName: %s", err.Error()),
		)
		return
	}

	resp.Diagnostics.Append(resp.State.SetAttribute(ctx, path.Root("id"), accountName)...)
	resp.Diagnostics.Append(resp.State.SetAttribute(ctx, path.Root("account_name"), accountName)...)
}
