package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-ldap/ldap/v3"
	"github.com/hashicorp/terraform-plugin-framework-validators/int64validator"
	"github.com/hashicorp/terraform-plugin-framework/path"
	"github.com/hashicorp/terraform-plugin-framework/resource"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/int64default"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/int64planmodifier"
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
var _ resource.Resource = &DNSRecordResource{}
var _ resource.ResourceWithImportState = &DNSRecordResource{}

func NewDNSRecordResource() resource.Resource {
	return &DNSRecordResource{}
}

// DNSRecordResource manages one A or CNAME record in an AD-integrated zone.
type DNSRecordResource struct {
	data *ldapclient.ProviderData
}

// DNSRecordResourceModel describes the resource data model.
type DNSRecordResourceModel struct {
	ID     types.String              `tfsdk:"id"`
	ZoneDN customtypes.DNStringValue `tfsdk:"zone_dn"`
	Name   types.String              `tfsdk:"name"`
	Type   types.String              `tfsdk:"type"`
	Value  types.String              `tfsdk:"value"`
	TTL    types.Int64               `tfsdk:"ttl"`
	DN     customtypes.DNStringValue `tfsdk:"dn"`
}

func (r *DNSRecordResource) Metadata(ctx context.Context, req resource.MetadataRequest, resp *resource.MetadataResponse) {
	resp.TypeName = req.ProviderTypeName + "_dns_record"
}

func (r *DNSRecordResource) Schema(ctx context.Context, req resource.SchemaRequest, resp *resource.SchemaResponse) {
	resp.Schema = schema.Schema{
		MarkdownDescription: "Manages an `A` or `CNAME` record stored as a `dnsNode` object in an AD-integrated DNS zone. " +
			"Records cannot be updated in place: any change replaces the record.",

		Attributes: map[string]schema.Attribute{
			"id": schema.StringAttribute{
				MarkdownDescription: "The distinguished name of the record node.",
				Computed:            true,
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.UseStateForUnknown(),
				},
			},
			"zone_dn": schema.StringAttribute{
				MarkdownDescription: "DN of the zone, as returned by the `adops_dns_zones` data source.",
				Required:            true,
				CustomType:          customtypes.DNStringType{},
				Validators: []validator.String{
					validators.IsDomainDN(),
				},
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.RequiresReplace(),
				},
			},
			"name": schema.StringAttribute{
				MarkdownDescription: "Host name relative to the zone. Letters, digits and hyphens only.",
				Required:            true,
				Validators: []validator.String{
					validators.IsValidName(),
				},
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.RequiresReplace(),
				},
			},
			"type": schema.StringAttribute{
				MarkdownDescription: "Record type: `A` or `CNAME` (case-insensitive).",
				Required:            true,
				Validators: []validator.String{
					validators.CaseInsensitiveOneOf("A", "CNAME"),
				},
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.RequiresReplace(),
				},
			},
			"value": schema.StringAttribute{
				MarkdownDescription: "IPv4 address for `A` records, target host name for `CNAME` records.",
				Required:            true,
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.RequiresReplace(),
				},
			},
			"ttl": schema.Int64Attribute{
				MarkdownDescription: fmt.Sprintf("Time to live in seconds. Defaults to `%d`.", ldapclient.DefaultTTL),
				Optional:            true,
				Computed:            true,
				Default:             int64default.StaticInt64(int64(ldapclient.DefaultTTL)),
				Validators: []validator.Int64{
					int64validator.Between(1, 2147483647),
				},
				PlanModifiers: []planmodifier.Int64{
					int64planmodifier.RequiresReplace(),
				},
			},
			"dn": schema.StringAttribute{
				MarkdownDescription: "The distinguished name of the record node.",
				Computed:            true,
				CustomType:          customtypes.DNStringType{},
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.UseStateForUnknown(),
				},
			},
		},
	}
}

func (r *DNSRecordResource) Configure(ctx context.Context, req resource.ConfigureRequest, resp *resource.ConfigureResponse) {
	r.data = providerDataFrom(req.ProviderData, &resp.Diagnostics)
}

func (r *DNSRecordResource) Create(ctx context.Context, req resource.CreateRequest, resp *resource.CreateResponse) {
	var data DNSRecordResourceModel

	ctx = initializeLogging(ctx)

	resp.Diagnostics.Append(req.Plan.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	kind, err := ldapclient.ParseRecordKind(data.Type.ValueString())
	if err != nil {
		resp.Diagnostics.AddAttributeError(path.Root("type"), "Invalid Record Type", err.Error())
		return
	}

	done := ldapclient.LogResourceOperation(ctx, "adops_dns_record", "create", map[string]any{
		"zone_dn": data.ZoneDN.ValueString(),
		"name":    data.Name.ValueString(),
		"type":    kind.String(),
	})

	outcome := r.data.Directory.CreateRecord(ctx, r.data.Actor,
		data.ZoneDN.ValueString(),
		data.Name.ValueString(),
		kind,
		data.Value.ValueString(),
		uint32(data.TTL.ValueInt64()),
	)
	done(outcome.Err)
	if outcomeError(&resp.Diagnostics, "Error Creating DNS Record", outcome) {
		return
	}

	data.ID = types.StringValue(outcome.DN)
	data.DN = customtypes.DNString(outcome.DN)

	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}

func (r *DNSRecordResource) Read(ctx context.Context, req resource.ReadRequest, resp *resource.ReadResponse) {
	var data DNSRecordResourceModel

	ctx = initializeLogging(ctx)

	resp.Diagnostics.Append(req.State.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	records, err := r.data.Directory.ListRecords(ctx, r.data.Actor, data.ZoneDN.ValueString())
	if err != nil {
		if ldapclient.IsNotFoundError(err) {
			tflog.Debug(ctx, "Zone not found, removing record from state", map[string]any{
				"zone_dn": data.ZoneDN.ValueString(),
			})
			resp.State.RemoveResource(ctx)
			return
		}
		resp.Diagnostics.AddError(
			"Error Reading DNS Record",
			fmt.Sprintf("Could not list zone %s: %s", data.ZoneDN.ValueString(), err.Error()),
		)
		return
	}

	record, found := findRecord(records, data.DN.ValueString(), data.Name.ValueString())
	if !found {
		tflog.Debug(ctx, "DNS record not found, removing from state", map[string]any{
			"dn": data.DN.ValueString(),
		})
		resp.State.RemoveResource(ctx)
		return
	}

	data.ID = types.StringValue(record.DN)
	data.DN = customtypes.DNString(record.DN)
	// Keep the configured spelling when it only differs in case or a
	// trailing dot, so a refresh does not force replacement.
	if !strings.EqualFold(data.Name.ValueString(), record.Name) {
		data.Name = types.StringValue(record.Name)
	}
	if !strings.EqualFold(data.Type.ValueString(), record.Kind.String()) {
		data.Type = types.StringValue(record.Kind.String())
	}
	if record.Value != "" && !sameHostValue(data.Value.ValueString(), record.Value) {
		data.Value = types.StringValue(record.Value)
	}
	if record.TTL > 0 {
		data.TTL = types.Int64Value(int64(record.TTL))
	}

	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}

// Update is never called: every attribute forces replacement.
func (r *DNSRecordResource) Update(ctx context.Context, req resource.UpdateRequest, resp *resource.UpdateResponse) {
	resp.Diagnostics.AddError(
		"Update Not Supported",
		"DNS records are replaced rather than updated. Please report this issue to the provider developers.",
	)
}

func (r *DNSRecordResource) Delete(ctx context.Context, req resource.DeleteRequest, resp *resource.DeleteResponse) {
	var data DNSRecordResourceModel

	ctx = initializeLogging(ctx)

	resp.Diagnostics.Append(req.State.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	done := ldapclient.LogResourceOperation(ctx, "adops_dns_record", "delete", map[string]any{
		"dn": data.DN.ValueString(),
	})

	outcome := r.data.Directory.DeleteRecord(ctx, r.data.Actor, data.DN.ValueString())
	done(outcome.Err)
	if !outcome.Success && ldapclient.IsNotFoundError(outcome.Err) {
		tflog.Debug(ctx, "DNS record already removed", map[string]any{"dn": data.DN.ValueString()})
		return
	}
	outcomeError(&resp.Diagnostics, "Error Deleting DNS Record", outcome)
}

// ImportState accepts the record DN. The zone and host name are taken from it
// and the rest is filled by Read.
func (r *DNSRecordResource) ImportState(ctx context.Context, req resource.ImportStateRequest, resp *resource.ImportStateResponse) {
	recordDN := strings.TrimSpace(req.ID)

	name, zoneDN, err := splitRecordDN(recordDN)
	if err != nil {
		resp.Diagnostics.AddError(
			"Invalid Import ID",
			fmt.Sprintf("Import ID must be the DN of a DNS record node: %s", err.Error()),
		)
		return
	}

	resp.Diagnostics.Append(resp.State.SetAttribute(ctx, path.Root("id"), recordDN)...)
	resp.Diagnostics.Append(resp.State.SetAttribute(ctx, path.Root("dn"), customtypes.DNString(recordDN))...)
	resp.Diagnostics.Append(resp.State.SetAttribute(ctx, path.Root("zone_dn"), customtypes.DNString(zoneDN))...)
	resp.Diagnostics.Append(resp.State.SetAttribute(ctx, path.Root("name"), name)...)
}

// findRecord matches on DN first and falls back to the host name.
func findRecord(records []ldapclient.ResourceRecord, dn, name string) (ldapclient.ResourceRecord, bool) {
	for _, record := range records {
		if dn != "" && customtypes.SameDN(record.DN, dn) {
			return record, true
		}
	}
	for _, record := range records {
		if name != "" && strings.EqualFold(record.Name, name) {
			return record, true
		}
	}
	return ldapclient.ResourceRecord{}, false
}

func sameHostValue(configured, stored string) bool {
	return strings.EqualFold(strings.TrimSuffix(strings.TrimSpace(configured), "."), stored)
}

// splitRecordDN returns the host name and zone DN of a record node DN.
func splitRecordDN(recordDN string) (string, string, error) {
	parsed, err := ldap.ParseDN(recordDN)
	if err != nil {
		return "", "", err
	}
	if len(parsed.RDNs) < 2 || len(parsed.RDNs[0].Attributes) == 0 {
		return "", "", fmt.Errorf("%q has no parent zone", recordDN)
	}

	first := parsed.RDNs[0].Attributes[0]
	if !strings.EqualFold(first.Type, "DC") {
		return "", "", fmt.Errorf("%q does not start with a DC component", recordDN)
	}

	// The parent starts after the first comma that is not escaped.
	escaped := false
	for i, c := range recordDN {
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == ',':
			return first.Value, strings.TrimSpace(recordDN[i+1:]), nil
		}
	}

	return "", "", fmt.Errorf("%q has no parent zone", recordDN)
}
