package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/terraform-plugin-framework/datasource"
	"github.com/hashicorp/terraform-plugin-framework/datasource/schema"
	"github.com/hashicorp/terraform-plugin-framework/schema/validator"
	"github.com/hashicorp/terraform-plugin-framework/types"
	"github.com/hashicorp/terraform-plugin-log/tflog"

	ldapclient "github.com/isometry/terraform-provider-adops/internal/ldap"
	"github.com/isometry/terraform-provider-adops/internal/provider/helpers"
	"github.com/isometry/terraform-provider-adops/internal/provider/validators"
)

// Ensure provider defined types fully satisfy framework interfaces.
var _ datasource.DataSource = &DNSRecordsDataSource{}

func NewDNSRecordsDataSource() datasource.DataSource {
	return &DNSRecordsDataSource{}
}

// DNSRecordsDataSource lists the records of one zone.
type DNSRecordsDataSource struct {
	data *ldapclient.ProviderData
}

// DNSRecordsDataSourceModel describes the data source data model.
type DNSRecordsDataSourceModel struct {
	ZoneDN      types.String     `tfsdk:"zone_dn"`
	Type        types.String     `tfsdk:"type"`
	Records     []DNSRecordModel `tfsdk:"records"`
	RecordCount types.Int64      `tfsdk:"record_count"`
	ID          types.String     `tfsdk:"id"`
}

// DNSRecordModel describes a single record in the result set.
type DNSRecordModel struct {
	Name  types.String `tfsdk:"name"`
	Type  types.String `tfsdk:"type"`
	Value types.String `tfsdk:"value"`
	TTL   types.Int64  `tfsdk:"ttl"`
	DN    types.String `tfsdk:"dn"`
}

func (d *DNSRecordsDataSource) Metadata(ctx context.Context, req datasource.MetadataRequest, resp *datasource.MetadataResponse) {
	resp.TypeName = req.ProviderTypeName + "_dns_records"
}

func (d *DNSRecordsDataSource) Schema(ctx context.Context, req datasource.SchemaRequest, resp *datasource.SchemaResponse) {
	resp.Schema = schema.Schema{
		MarkdownDescription: "Lists the records of a DNS zone. Zone apex (`@`) and SOA entries are never listed. " +
			"Records that are neither `A` nor `CNAME` are listed with an empty value only when the provider's " +
			"`unclassified_records` is `show`.",

		Attributes: map[string]schema.Attribute{
			"zone_dn": schema.StringAttribute{
				MarkdownDescription: "Distinguished name of the zone, as returned by `adops_dns_zones`.",
				Required:            true,
				Validators: []validator.String{
					validators.IsValidDN(),
				},
			},
			"type": schema.StringAttribute{
				MarkdownDescription: "Only return records of this type: `A`, `CNAME` or `Unknown`.",
				Optional:            true,
				Validators: []validator.String{
					validators.CaseInsensitiveOneOf(
						ldapclient.RecordA.String(),
						ldapclient.RecordCNAME.String(),
						ldapclient.RecordUnclassified.String(),
					),
				},
			},
			"id": schema.StringAttribute{
				MarkdownDescription: "Identifier of the listing.",
				Computed:            true,
			},
			"record_count": schema.Int64Attribute{
				MarkdownDescription: "Number of records returned.",
				Computed:            true,
			},
			"records": schema.ListNestedAttribute{
				MarkdownDescription: "The records found.",
				Computed:            true,
				NestedObject: schema.NestedAttributeObject{
					Attributes: map[string]schema.Attribute{
						"name": schema.StringAttribute{
							MarkdownDescription: "Host name relative to the zone.",
							Computed:            true,
						},
						"type": schema.StringAttribute{
							MarkdownDescription: "`A`, `CNAME` or `Unknown`.",
							Computed:            true,
						},
						"value": schema.StringAttribute{
							MarkdownDescription: "IPv4 address or canonical name. Null for other record types.",
							Computed:            true,
						},
						"ttl": schema.Int64Attribute{
							MarkdownDescription: "Time to live in seconds.",
							Computed:            true,
						},
						"dn": schema.StringAttribute{
							MarkdownDescription: "Distinguished name of the `dnsNode` entry.",
							Computed:            true,
						},
					},
				},
			},
		},
	}
}

func (d *DNSRecordsDataSource) Configure(ctx context.Context, req datasource.ConfigureRequest, resp *datasource.ConfigureResponse) {
	d.data = providerDataFrom(req.ProviderData, &resp.Diagnostics)
}

func (d *DNSRecordsDataSource) Read(ctx context.Context, req datasource.ReadRequest, resp *datasource.ReadResponse) {
	var data DNSRecordsDataSourceModel

	ctx = initializeLogging(ctx)

	resp.Diagnostics.Append(req.Config.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	zoneDN := data.ZoneDN.ValueString()

	done := ldapclient.LogDataSourceOperation(ctx, "adops_dns_records", "read", map[string]any{
		"zone_dn": zoneDN,
	})
	records, err := d.data.Directory.ListRecords(ctx, d.data.Actor, zoneDN)
	done(err)
	if err != nil {
		resp.Diagnostics.AddError(
			"Error Listing DNS Records",
			fmt.Sprintf("Could not list records of zone %q: %s", zoneDN, err.Error()),
		)
		return
	}

	wantType := data.Type.ValueString()

	data.Records = make([]DNSRecordModel, 0, len(records))
	for _, record := range records {
		if wantType != "" && !strings.EqualFold(wantType, record.Kind.String()) {
			continue
		}
		data.Records = append(data.Records, DNSRecordModel{
			Name:  types.StringValue(record.Name),
			Type:  types.StringValue(record.Kind.String()),
			Value: helpers.StringOrNull(record.Value),
			TTL:   types.Int64Value(int64(record.TTL)),
			DN:    types.StringValue(record.DN),
		})
	}

	tflog.Debug(ctx, "Found DNS records", map[string]any{
		"zone_dn":      zoneDN,
		"listed":       len(records),
		"record_count": len(data.Records),
	})

	data.RecordCount = types.Int64Value(int64(len(data.Records)))
	data.ID = types.StringValue(zoneDN)

	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}
