package provider

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/go-ldap/ldap/v3"
	"github.com/hashicorp/terraform-plugin-framework/resource"
	"github.com/hashicorp/terraform-plugin-framework/tfsdk"
	"github.com/hashicorp/terraform-plugin-go/tftypes"
	tfresource "github.com/hashicorp/terraform-plugin-testing/helper/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	ldapclient "github.com/isometry/terraform-provider-adops/internal/ldap"
)

func dnsRecordSchema(t *testing.T) (resource.SchemaResponse, tftypes.Type) {
	t.Helper()
	resp := resource.SchemaResponse{}
	NewDNSRecordResource().Schema(context.Background(), resource.SchemaRequest{}, &resp)
	require.False(t, resp.Diagnostics.HasError())
	return resp, resp.Schema.Type().TerraformType(context.Background())
}

func TestSplitRecordDN(t *testing.T) {
	tests := []struct {
		name     string
		dn       string
		wantHost string
		wantZone string
		wantErr  bool
	}{
		{
			name:     "record node",
			dn:       "DC=web," + testZoneDN,
			wantHost: "web",
			wantZone: testZoneDN,
		},
		{
			name:     "escaped comma in host",
			dn:       `DC=a\,b,` + testZoneDN,
			wantHost: "a,b",
			wantZone: testZoneDN,
		},
		{
			name:    "not a DC component",
			dn:      "CN=web," + testZoneDN,
			wantErr: true,
		},
		{
			name:    "no parent",
			dn:      "DC=web",
			wantErr: true,
		},
		{
			name:    "malformed",
			dn:      "not a dn",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, zone, err := splitRecordDN(tt.dn)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHost, host)
			assert.Equal(t, tt.wantZone, zone)
		})
	}
}

func TestFindRecord(t *testing.T) {
	records := []ldapclient.ResourceRecord{
		{Name: "api", Kind: ldapclient.RecordA, Value: "10.0.0.1", DN: "DC=api," + testZoneDN},
		{Name: "web", Kind: ldapclient.RecordCNAME, Value: "api.corp.local", DN: "DC=web," + testZoneDN},
	}

	record, ok := findRecord(records, "dc=WEB,"+testZoneDN, "")
	require.True(t, ok, "DN match is case-insensitive")
	assert.Equal(t, "web", record.Name)

	record, ok = findRecord(records, "", "API")
	require.True(t, ok, "falls back to the host name")
	assert.Equal(t, "10.0.0.1", record.Value)

	_, ok = findRecord(records, "DC=gone,"+testZoneDN, "gone")
	assert.False(t, ok)
}

func TestSameHostValue(t *testing.T) {
	assert.True(t, sameHostValue("API.corp.local.", "api.corp.local"))
	assert.True(t, sameHostValue(" 10.0.0.1 ", "10.0.0.1"))
	assert.False(t, sameHostValue("api.corp.local", "web.corp.local"))
}

func TestDNSRecordResource_Create(t *testing.T) {
	conn := newMockConn()
	conn.On("Add", mock.MatchedBy(func(req *ldap.AddRequest) bool {
		return req.DN == "DC=web,"+testZoneDN
	})).Return(nil).Once()

	r := &DNSRecordResource{data: newTestProviderData(t, conn, nil)}
	schemaResp, typ := dnsRecordSchema(t)

	plan := objectValue(typ, map[string]tftypes.Value{
		"zone_dn": str(testZoneDN),
		"name":    str("web"),
		"type":    str("a"),
		"value":   str("10.0.0.5"),
		"ttl":     num(3600),
		"id":      tftypes.NewValue(tftypes.String, tftypes.UnknownValue),
		"dn":      tftypes.NewValue(tftypes.String, tftypes.UnknownValue),
	})

	resp := &resource.CreateResponse{State: tfsdk.State{Schema: schemaResp.Schema, Raw: tftypes.NewValue(typ, nil)}}
	r.Create(context.Background(), resource.CreateRequest{Plan: tfsdk.Plan{Schema: schemaResp.Schema, Raw: plan}}, resp)

	require.False(t, resp.Diagnostics.HasError(), "%v", resp.Diagnostics)

	var state DNSRecordResourceModel
	require.False(t, resp.State.Get(context.Background(), &state).HasError())
	assert.Equal(t, "DC=web,"+testZoneDN, state.ID.ValueString())
	assert.Equal(t, "DC=web,"+testZoneDN, state.DN.ValueString())
	assert.Equal(t, "a", state.Type.ValueString(), "configured spelling is kept")
	conn.AssertExpectations(t)
}

func TestDNSRecordResource_CreateConflict(t *testing.T) {
	conn := newMockConn()
	conn.On("Add", mock.Anything).
		Return(ldap.NewError(ldap.LDAPResultEntryAlreadyExists, errors.New("00000524: UpdErr"))).Once()

	r := &DNSRecordResource{data: newTestProviderData(t, conn, nil)}
	schemaResp, typ := dnsRecordSchema(t)

	plan := objectValue(typ, map[string]tftypes.Value{
		"zone_dn": str(testZoneDN),
		"name":    str("web"),
		"type":    str("A"),
		"value":   str("10.0.0.5"),
		"ttl":     num(3600),
	})

	resp := &resource.CreateResponse{State: tfsdk.State{Schema: schemaResp.Schema, Raw: tftypes.NewValue(typ, nil)}}
	r.Create(context.Background(), resource.CreateRequest{Plan: tfsdk.Plan{Schema: schemaResp.Schema, Raw: plan}}, resp)

	require.True(t, resp.Diagnostics.HasError())
	assert.Contains(t, resp.Diagnostics.Errors()[0].Detail(), "already exists")
}

func TestDNSRecordResource_Read(t *testing.T) {
	blob, err := ldapclient.EncodeRecord(ldapclient.RecordCNAME, "api.corp.local", 600)
	require.NoError(t, err)

	conn := newMockConn()
	conn.On("SearchWithPaging", mock.Anything, mock.Anything).Return(entries(
		ldap.NewEntry("DC=web,"+testZoneDN, map[string][]string{
			"name":      {"web"},
			"dnsRecord": {string(blob)},
		}),
	), nil)

	r := &DNSRecordResource{data: newTestProviderData(t, conn, nil)}
	schemaResp, typ := dnsRecordSchema(t)

	current := objectValue(typ, map[string]tftypes.Value{
		"id":      str("DC=web," + testZoneDN),
		"dn":      str("DC=web," + testZoneDN),
		"zone_dn": str(testZoneDN),
		"name":    str("web"),
		"type":    str("cname"),
		"value":   str("API.corp.local."),
		"ttl":     num(3600),
	})

	resp := &resource.ReadResponse{State: tfsdk.State{Schema: schemaResp.Schema, Raw: current}}
	r.Read(context.Background(), resource.ReadRequest{State: tfsdk.State{Schema: schemaResp.Schema, Raw: current}}, resp)

	require.False(t, resp.Diagnostics.HasError(), "%v", resp.Diagnostics)

	var state DNSRecordResourceModel
	require.False(t, resp.State.Get(context.Background(), &state).HasError())
	assert.Equal(t, "cname", state.Type.ValueString())
	assert.Equal(t, "API.corp.local.", state.Value.ValueString(), "equivalent spelling is kept")
	assert.Equal(t, int64(600), state.TTL.ValueInt64())
}

func TestDNSRecordResource_ReadRemovesMissingRecord(t *testing.T) {
	conn := newMockConn()
	conn.On("SearchWithPaging", mock.Anything, mock.Anything).Return(entries(), nil)

	r := &DNSRecordResource{data: newTestProviderData(t, conn, nil)}
	schemaResp, typ := dnsRecordSchema(t)

	current := objectValue(typ, map[string]tftypes.Value{
		"dn":      str("DC=web," + testZoneDN),
		"zone_dn": str(testZoneDN),
		"name":    str("web"),
		"type":    str("A"),
		"value":   str("10.0.0.5"),
	})

	resp := &resource.ReadResponse{State: tfsdk.State{Schema: schemaResp.Schema, Raw: current}}
	r.Read(context.Background(), resource.ReadRequest{State: tfsdk.State{Schema: schemaResp.Schema, Raw: current}}, resp)

	require.False(t, resp.Diagnostics.HasError())
	assert.True(t, resp.State.Raw.IsNull())
}

func TestDNSRecordResource_DeleteIgnoresMissingRecord(t *testing.T) {
	conn := newMockConn()
	conn.On("Del", mock.Anything).Return(ldap.NewError(ldap.LDAPResultNoSuchObject, errors.New("0000208D: NameErr"))).Once()

	r := &DNSRecordResource{data: newTestProviderData(t, conn, nil)}
	schemaResp, typ := dnsRecordSchema(t)

	current := objectValue(typ, map[string]tftypes.Value{
		"dn":      str("DC=web," + testZoneDN),
		"zone_dn": str(testZoneDN),
		"name":    str("web"),
	})

	resp := &resource.DeleteResponse{State: tfsdk.State{Schema: schemaResp.Schema, Raw: current}}
	r.Delete(context.Background(), resource.DeleteRequest{State: tfsdk.State{Schema: schemaResp.Schema, Raw: current}}, resp)

	assert.False(t, resp.Diagnostics.HasError(), "%v", resp.Diagnostics)
	conn.AssertExpectations(t)
}

func TestAccDNSRecordResource(t *testing.T) {
	testAccPreCheckZone(t)

	name := GenerateTestName(TestRecordPrefix)
	generator := NewTestDataGenerator()

	tfresource.Test(t, tfresource.TestCase{
		ProtoV6ProviderFactories: testAccProtoV6ProviderFactories,
		CheckDestroy:             TestCheckObjectsDestroyed("adops_dns_record"),
		Steps: []tfresource.TestStep{
			{
				Config: TestProviderConfig() + generator.GenerateDNSRecordConfig(name, "A", "192.0.2.10"),
				Check: tfresource.ComposeAggregateTestCheckFunc(
					tfresource.TestCheckResourceAttr("adops_dns_record.test", "name", name),
					tfresource.TestCheckResourceAttr("adops_dns_record.test", "ttl", "3600"),
					tfresource.TestCheckResourceAttrSet("adops_dns_record.test", "dn"),
				),
			},
			{
				ResourceName:            "adops_dns_record.test",
				ImportState:             true,
				ImportStateVerify:       true,
				ImportStateVerifyIgnore: []string{"type"},
			},
			{
				Config: TestProviderConfig() + generator.GenerateDNSRecordConfig(name, "CNAME", fmt.Sprintf("%s-alias.example.com", name)),
				Check: tfresource.ComposeAggregateTestCheckFunc(
					tfresource.TestCheckResourceAttr("adops_dns_record.test", "type", "CNAME"),
				),
			},
		},
	})
}
