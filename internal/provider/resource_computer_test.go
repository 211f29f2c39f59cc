package provider

import (
	"context"
	"testing"

	"github.com/go-ldap/ldap/v3"
	"github.com/hashicorp/terraform-plugin-framework/resource"
	"github.com/hashicorp/terraform-plugin-framework/tfsdk"
	"github.com/hashicorp/terraform-plugin-go/tftypes"
	tfresource "github.com/hashicorp/terraform-plugin-testing/helper/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/isometry/terraform-provider-adops/internal/provider/helpers"
)

func computerSchema(t *testing.T) (resource.SchemaResponse, tftypes.Type) {
	t.Helper()
	resp := resource.SchemaResponse{}
	NewComputerResource().Schema(context.Background(), resource.SchemaRequest{}, &resp)
	require.False(t, resp.Diagnostics.HasError())
	return resp, resp.Schema.Type().TerraformType(context.Background())
}

func TestComputerResource_ModifyPlanDerivesAttributes(t *testing.T) {
	r := &ComputerResource{data: newTestProviderData(t, newMockConn(), nil)}
	schemaResp, typ := computerSchema(t)

	unknown := tftypes.NewValue(tftypes.String, tftypes.UnknownValue)
	raw := objectValue(typ, map[string]tftypes.Value{
		"name":             str("ws01"),
		"id":               unknown,
		"sam_account_name": unknown,
		"dns_host_name":    unknown,
		"dn":               unknown,
		"service_principal_names": tftypes.NewValue(
			tftypes.List{ElementType: tftypes.String}, tftypes.UnknownValue),
	})

	plan := tfsdk.Plan{Schema: schemaResp.Schema, Raw: raw}
	resp := &resource.ModifyPlanResponse{Plan: plan}
	r.ModifyPlan(context.Background(), resource.ModifyPlanRequest{
		Plan:  plan,
		State: tfsdk.State{Schema: schemaResp.Schema, Raw: tftypes.NewValue(typ, nil)},
	}, resp)

	require.False(t, resp.Diagnostics.HasError(), "%v", resp.Diagnostics)

	var planned ComputerResourceModel
	require.False(t, resp.Plan.Get(context.Background(), &planned).HasError())
	assert.Equal(t, "WS01", planned.ID.ValueString())
	assert.Equal(t, "WS01$", planned.SAMAccountName.ValueString())
	assert.Equal(t, "WS01.corp.local", planned.DNSHostName.ValueString())
	assert.Equal(t, "CN=WS01,CN=Computers,"+testBaseDN, planned.DN.ValueString())

	spns, diags := helpers.Strings(context.Background(), planned.ServicePrincipalNames)
	require.False(t, diags.HasError())
	assert.ElementsMatch(t, []string{
		"HOST/WS01.corp.local",
		"HOST/WS01",
		"RestrictedKrbHost/WS01.corp.local",
		"RestrictedKrbHost/WS01",
	}, spns)
}

func TestComputerResource_ModifyPlanRejectsBadName(t *testing.T) {
	r := &ComputerResource{data: newTestProviderData(t, newMockConn(), nil)}
	schemaResp, typ := computerSchema(t)

	plan := tfsdk.Plan{Schema: schemaResp.Schema, Raw: objectValue(typ, map[string]tftypes.Value{
		"name": str("ws 01"),
	})}
	resp := &resource.ModifyPlanResponse{Plan: plan}
	r.ModifyPlan(context.Background(), resource.ModifyPlanRequest{Plan: plan}, resp)

	assert.True(t, resp.Diagnostics.HasError())
}

func TestComputerResource_Create(t *testing.T) {
	conn := newMockConn()
	conn.On("Add", mock.MatchedBy(func(req *ldap.AddRequest) bool {
		return req.DN == "CN=WS01,CN=Computers,"+testBaseDN
	})).Return(nil).Once()

	r := &ComputerResource{data: newTestProviderData(t, conn, nil)}
	schemaResp, typ := computerSchema(t)

	plan := objectValue(typ, map[string]tftypes.Value{"name": str("ws01")})

	resp := &resource.CreateResponse{State: tfsdk.State{Schema: schemaResp.Schema, Raw: tftypes.NewValue(typ, nil)}}
	r.Create(context.Background(), resource.CreateRequest{Plan: tfsdk.Plan{Schema: schemaResp.Schema, Raw: plan}}, resp)

	require.False(t, resp.Diagnostics.HasError(), "%v", resp.Diagnostics)

	var state ComputerResourceModel
	require.False(t, resp.State.Get(context.Background(), &state).HasError())
	assert.Equal(t, "ws01", state.Name.ValueString(), "configured spelling is kept")
	assert.Equal(t, "WS01$", state.SAMAccountName.ValueString())
	conn.AssertExpectations(t)
}

func TestAccComputerResource(t *testing.T) {
	testAccPreCheck(t)

	name := GenerateTestName(TestComputerPrefix)
	generator := NewTestDataGenerator()

	tfresource.Test(t, tfresource.TestCase{
		ProtoV6ProviderFactories: testAccProtoV6ProviderFactories,
		CheckDestroy:             TestCheckObjectsDestroyed("adops_computer"),
		Steps: []tfresource.TestStep{
			{
				Config: TestProviderConfig() + generator.GenerateComputerConfig(name),
				Check: tfresource.ComposeAggregateTestCheckFunc(
					tfresource.TestCheckResourceAttrSet("adops_computer.test", "dn"),
					tfresource.TestCheckResourceAttrSet("adops_computer.test", "dns_host_name"),
					tfresource.TestCheckResourceAttr("adops_computer.test", "service_principal_names.#", "4"),
				),
			},
		},
	})
}

func TestComputerResource_ReadSearchesByName(t *testing.T) {
	conn := newMockConn()
	conn.On("SearchWithPaging", mock.MatchedBy(func(req *ldap.SearchRequest) bool {
		return req.Filter == "(&(objectClass=computer)(sAMAccountName=ws01$))"
	}), mock.Anything).Return(entries(ldap.NewEntry("CN=WS01,CN=Computers,"+testBaseDN, map[string][]string{
		"cn":             {"WS01"},
		"sAMAccountName": {"WS01$"},
		"dNSHostName":    {"ws01.corp.local"},
	})), nil).Once()

	r := &ComputerResource{data: newTestProviderData(t, conn, nil)}
	schemaResp, typ := computerSchema(t)
	state := tfsdk.State{Schema: schemaResp.Schema, Raw: objectValue(typ, map[string]tftypes.Value{"name": str("ws01")})}

	resp := &resource.ReadResponse{State: state}
	r.Read(context.Background(), resource.ReadRequest{State: state}, resp)
	require.False(t, resp.Diagnostics.HasError(), "%v", resp.Diagnostics)

	var got ComputerResourceModel
	require.False(t, resp.State.Get(context.Background(), &got).HasError())
	assert.Equal(t, "WS01", got.ID.ValueString())
	assert.Equal(t, "CN=WS01,CN=Computers,"+testBaseDN, got.DN.ValueString())
	assert.Equal(t, "ws01.corp.local", got.DNSHostName.ValueString())
	conn.AssertExpectations(t)
}

func TestComputerResource_ReadRemovesMissing(t *testing.T) {
	conn := newMockConn()
	conn.On("SearchWithPaging", mock.Anything, mock.Anything).Return(entries(), nil).Once()

	r := &ComputerResource{data: newTestProviderData(t, conn, nil)}
	schemaResp, typ := computerSchema(t)
	state := tfsdk.State{Schema: schemaResp.Schema, Raw: objectValue(typ, map[string]tftypes.Value{"name": str("ws01")})}

	resp := &resource.ReadResponse{State: state}
	r.Read(context.Background(), resource.ReadRequest{State: state}, resp)

	require.False(t, resp.Diagnostics.HasError(), "%v", resp.Diagnostics)
	assert.True(t, resp.State.Raw.IsNull())
	conn.AssertExpectations(t)
}
