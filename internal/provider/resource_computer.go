package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/terraform-plugin-framework/diag"
	"github.com/hashicorp/terraform-plugin-framework/path"
	"github.com/hashicorp/terraform-plugin-framework/resource"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/planmodifier"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/stringplanmodifier"
	"github.com/hashicorp/terraform-plugin-framework/schema/validator"
	"github.com/hashicorp/terraform-plugin-framework/types"
	"github.com/hashicorp/terraform-plugin-log/tflog"

	ldapclient "github.com/isometry/terraform-provider-adops/internal/ldap"
	"github.com/isometry/terraform-provider-adops/internal/provider/helpers"
	"github.com/isometry/terraform-provider-adops/internal/provider/planmodifiers"
	customtypes "github.com/isometry/terraform-provider-adops/internal/provider/types"
	"github.com/isometry/terraform-provider-adops/internal/provider/validators"
)

// Ensure provider defined types fully satisfy framework interfaces.
var _ resource.Resource = &ComputerResource{}
var _ resource.ResourceWithModifyPlan = &ComputerResource{}
var _ resource.ResourceWithImportState = &ComputerResource{}

func NewComputerResource() resource.Resource {
	return &ComputerResource{}
}

// ComputerResource pre-stages a workstation account so a machine can join
// the domain with it.
type ComputerResource struct {
	data *ldapclient.ProviderData
}

// ComputerResourceModel describes the resource data model.
type ComputerResourceModel struct {
	ID                    types.String              `tfsdk:"id"`
	Name                  types.String              `tfsdk:"name"`
	SAMAccountName        types.String              `tfsdk:"sam_account_name"`
	DNSHostName           types.String              `tfsdk:"dns_host_name"`
	DN                    customtypes.DNStringValue `tfsdk:"dn"`
	ServicePrincipalNames types.List                `tfsdk:"service_principal_names"`
}

func (r *ComputerResource) Metadata(ctx context.Context, req resource.MetadataRequest, resp *resource.MetadataResponse) {
	resp.TypeName = req.ProviderTypeName + "_computer"
}

func (r *ComputerResource) Schema(ctx context.Context, req resource.SchemaRequest, resp *resource.SchemaResponse) {
	resp.Schema = schema.Schema{
		MarkdownDescription: "Pre-stages a workstation account in the Computers container. " +
			"The name is upper-cased and all derived attributes are known at plan time.",

		Attributes: map[string]schema.Attribute{
			"id": schema.StringAttribute{
				MarkdownDescription: "The upper-cased computer name.",
				Computed:            true,
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.UseStateForUnknown(),
				},
			},
			"name": schema.StringAttribute{
				MarkdownDescription: "Computer name, at most 15 characters. Letters, digits and hyphens only.",
				Required:            true,
				Validators: []validator.String{
					validators.IsValidName(),
				},
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.RequiresReplaceIf(
						func(ctx context.Context, req planmodifier.StringRequest, resp *stringplanmodifier.RequiresReplaceIfFuncResponse) {
							resp.RequiresReplace = !strings.EqualFold(req.StateValue.ValueString(), req.PlanValue.ValueString())
						},
						"Renaming a computer replaces it; a change of case does not.",
						"Renaming a computer replaces it; a change of case does not.",
					),
				},
			},
			"sam_account_name": schema.StringAttribute{
				MarkdownDescription: "The machine account name, `NAME$`.",
				Computed:            true,
				PlanModifiers: []planmodifier.String{
					planmodifiers.UseNameForSAMAccountName(),
				},
			},
			"dns_host_name": schema.StringAttribute{
				MarkdownDescription: "The fully qualified host name, `NAME.domain`.",
				Computed:            true,
			},
			"dn": schema.StringAttribute{
				MarkdownDescription: "The distinguished name of the computer account.",
				Computed:            true,
				CustomType:          customtypes.DNStringType{},
			},
			"service_principal_names": schema.ListAttribute{
				MarkdownDescription: "The `HOST` and `RestrictedKrbHost` service principal names registered for the account.",
				Computed:            true,
				ElementType:         types.StringType,
			},
		},
	}
}

func (r *ComputerResource) Configure(ctx context.Context, req resource.ConfigureRequest, resp *resource.ConfigureResponse) {
	r.data = providerDataFrom(req.ProviderData, &resp.Diagnostics)
}

// ModifyPlan fills the derived attributes so they are known before apply.
func (r *ComputerResource) ModifyPlan(ctx context.Context, req resource.ModifyPlanRequest, resp *resource.ModifyPlanResponse) {
	if req.Plan.Raw.IsNull() || r.data == nil {
		return
	}

	var plan ComputerResourceModel
	resp.Diagnostics.Append(req.Plan.Get(ctx, &plan)...)
	if resp.Diagnostics.HasError() || plan.Name.IsUnknown() {
		return
	}

	spec, err := r.data.Directory.Objects().PlanComputer(plan.Name.ValueString())
	if err != nil {
		resp.Diagnostics.AddAttributeError(path.Root("name"), "Invalid Computer Name", err.Error())
		return
	}

	r.applySpec(ctx, &plan, spec, &resp.Diagnostics)
	if resp.Diagnostics.HasError() {
		return
	}

	resp.Diagnostics.Append(resp.Plan.Set(ctx, &plan)...)
}

func (r *ComputerResource) Create(ctx context.Context, req resource.CreateRequest, resp *resource.CreateResponse) {
	var data ComputerResourceModel

	ctx = initializeLogging(ctx)

	resp.Diagnostics.Append(req.Plan.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	done := ldapclient.LogResourceOperation(ctx, "adops_computer", "create", map[string]any{
		"name": data.Name.ValueString(),
	})

	outcome := r.data.Directory.CreateComputer(ctx, r.data.Actor, data.Name.ValueString())
	done(outcome.Err)
	if outcomeError(&resp.Diagnostics, "Error Creating Computer", outcome) {
		return
	}

	spec, err := r.data.Directory.Objects().PlanComputer(data.Name.ValueString())
	if err != nil {
		resp.Diagnostics.AddError("Error Creating Computer", err.Error())
		return
	}

	r.applySpec(ctx, &data, spec, &resp.Diagnostics)
	data.DN = customtypes.DNString(outcome.DN)

	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}

func (r *ComputerResource) Read(ctx context.Context, req resource.ReadRequest, resp *resource.ReadResponse) {
	var data ComputerResourceModel

	ctx = initializeLogging(ctx)

	resp.Diagnostics.Append(req.State.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	found, err := r.data.Directory.FindComputer(ctx, r.data.Actor, data.Name.ValueString())
	if ldapclient.IsNotFoundError(err) {
		tflog.Debug(ctx, "Computer not found, removing from state", map[string]any{
			"name": data.Name.ValueString(),
		})
		resp.State.RemoveResource(ctx)
		return
	}
	if err != nil {
		resp.Diagnostics.AddError(
			"Error Reading Computer",
			fmt.Sprintf("Could not read computer %s: %s", data.Name.ValueString(), err.Error()),
		)
		return
	}

	data.ID = types.StringValue(strings.ToUpper(found.Name))
	data.DN = customtypes.DNString(found.DN)
	if found.AccountName != "" {
		data.SAMAccountName = types.StringValue(found.AccountName)
	}
	if found.HostName != "" {
		data.DNSHostName = types.StringValue(found.HostName)
	}
	if len(found.ServicePrincipalNames) > 0 {
		spns, diags := helpers.StringList(ctx, found.ServicePrincipalNames)
		resp.Diagnostics.Append(diags...)
		data.ServicePrincipalNames = spns
	}

	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}

// Update only runs for a change of case in name, which needs no directory call.
func (r *ComputerResource) Update(ctx context.Context, req resource.UpdateRequest, resp *resource.UpdateResponse) {
	var plan, state ComputerResourceModel

	resp.Diagnostics.Append(req.Plan.Get(ctx, &plan)...)
	resp.Diagnostics.Append(req.State.Get(ctx, &state)...)
	if resp.Diagnostics.HasError() {
		return
	}

	state.Name = plan.Name
	resp.Diagnostics.Append(resp.State.Set(ctx, &state)...)
}

func (r *ComputerResource) Delete(ctx context.Context, req resource.DeleteRequest, resp *resource.DeleteResponse) {
	var data ComputerResourceModel

	ctx = initializeLogging(ctx)

	resp.Diagnostics.Append(req.State.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	done := ldapclient.LogResourceOperation(ctx, "adops_computer", "delete", map[string]any{
		"dn": data.DN.ValueString(),
	})

	outcome := r.data.Directory.DeleteObject(ctx, r.data.Actor, data.DN.ValueString())
	done(outcome.Err)
	if !outcome.Success && ldapclient.IsNotFoundError(outcome.Err) {
		return
	}
	outcomeError(&resp.Diagnostics, "Error Deleting Computer", outcome)
}

func (r *ComputerResource) ImportState(ctx context.Context, req resource.ImportStateRequest, resp *resource.ImportStateResponse) {
	resource.ImportStatePassthroughID(ctx, path.Root("name"), req, resp)
}

func (r *ComputerResource) applySpec(ctx context.Context, data *ComputerResourceModel, spec *ldapclient.ComputerSpec, diags *diag.Diagnostics) {
	data.ID = types.StringValue(spec.Name)
	data.SAMAccountName = types.StringValue(spec.AccountName)
	data.DNSHostName = types.StringValue(spec.HostName)
	data.DN = customtypes.DNString(spec.DN)

	spns, d := helpers.StringList(ctx, spec.ServicePrincipalNames)
	diags.Append(d...)
	data.ServicePrincipalNames = spns
}
