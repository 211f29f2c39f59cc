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
var _ datasource.DataSource = &DNSZonesDataSource{}

func NewDNSZonesDataSource() datasource.DataSource {
	return &DNSZonesDataSource{}
}

// DNSZonesDataSource lists the AD-integrated DNS zones visible to the actor.
type DNSZonesDataSource struct {
	data *ldapclient.ProviderData
}

// DNSZonesDataSourceModel describes the data source data model.
type DNSZonesDataSourceModel struct {
	Zones     []DNSZoneModel `tfsdk:"zones"`
	ZoneCount types.Int64    `tfsdk:"zone_count"`
	ID        types.String   `tfsdk:"id"`
}

// DNSZoneModel describes a single zone.
type DNSZoneModel struct {
	Name types.String `tfsdk:"name"`
	DN   types.String `tfsdk:"dn"`
}

func (d *DNSZonesDataSource) Metadata(ctx context.Context, req datasource.MetadataRequest, resp *datasource.MetadataResponse) {
	resp.TypeName = req.ProviderTypeName + "_dns_zones"
}

func (d *DNSZonesDataSource) Schema(ctx context.Context, req datasource.SchemaRequest, resp *datasource.SchemaResponse) {
	resp.Schema = schema.Schema{
		MarkdownDescription: "Lists the DNS zones stored in the directory. The domain zone is looked up in the " +
			"`DomainDnsZones` partition first and in the legacy `System` container second. " +
			"Reverse lookup zones are not listed.",

		Attributes: map[string]schema.Attribute{
			"id": schema.StringAttribute{
				MarkdownDescription: "Identifier of the listing.",
				Computed:            true,
			},
			"zone_count": schema.Int64Attribute{
				MarkdownDescription: "Number of zones found.",
				Computed:            true,
			},
			"zones": schema.ListNestedAttribute{
				MarkdownDescription: "The zones found.",
				Computed:            true,
				NestedObject: schema.NestedAttributeObject{
					Attributes: map[string]schema.Attribute{
						"name": schema.StringAttribute{
							MarkdownDescription: "Zone name.",
							Computed:            true,
						},
						"dn": schema.StringAttribute{
							MarkdownDescription: "Distinguished name of the `dnsZone` container. Pass it to `adops_dns_record`.",
							Computed:            true,
						},
					},
				},
			},
		},
	}
}

func (d *DNSZonesDataSource) Configure(ctx context.Context, req datasource.ConfigureRequest, resp *datasource.ConfigureResponse) {
	d.data = providerDataFrom(req.ProviderData, &resp.Diagnostics)
}

func (d *DNSZonesDataSource) Read(ctx context.Context, req datasource.ReadRequest, resp *datasource.ReadResponse) {
	var data DNSZonesDataSourceModel

	ctx = initializeLogging(ctx)

	resp.Diagnostics.Append(req.Config.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	done := ldapclient.LogDataSourceOperation(ctx, "adops_dns_zones", "read", nil)
	zones, err := d.data.Directory.ListZones(ctx, d.data.Actor)
	done(err)
	if err != nil {
		resp.Diagnostics.AddError(
			"Error Listing DNS Zones",
			fmt.Sprintf("Could not list DNS zones: %s", err.Error()),
		)
		return
	}

	tflog.Debug(ctx, "Found DNS zones", map[string]any{
		"zone_count": len(zones),
	})

	data.Zones = make([]DNSZoneModel, 0, len(zones))
	for _, zone := range zones {
		data.Zones = append(data.Zones, DNSZoneModel{
			Name: types.StringValue(zone.Name),
			DN:   types.StringValue(zone.DN),
		})
	}

	data.ZoneCount = types.Int64Value(int64(len(zones)))
	data.ID = types.StringValue(fmt.Sprintf("dns-zones-%d", len(zones)))

	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}
