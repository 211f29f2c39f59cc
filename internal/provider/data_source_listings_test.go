package provider

import (
	"context"
	"testing"

	"github.com/go-ldap/ldap/v3"
	"github.com/hashicorp/terraform-plugin-framework/types"
	"github.com/hashicorp/terraform-plugin-go/tftypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	ldapclient "github.com/isometry/terraform-provider-adops/internal/ldap"
)

func TestFilterUsers(t *testing.T) {
	users := []ldapclient.User{
		{AccountName: "alice", Enabled: true},
		{AccountName: "Alfred", Enabled: false},
		{AccountName: "bob", Enabled: true},
	}

	assert.Len(t, filterUsers(users, "", false), 3)
	assert.Len(t, filterUsers(users, "AL", false), 2)
	assert.Len(t, filterUsers(users, "al", true), 1)
	assert.Len(t, filterUsers(users, "", true), 2)
}

func TestFilterGroups(t *testing.T) {
	groups := []ldapclient.Group{
		{Name: "ops-admins", Members: []string{"CN=a"}},
		{Name: "ops-readers"},
		{Name: "dev"},
	}

	assert.Len(t, filterGroups(groups, "OPS", types.BoolNull()), 2)
	assert.Len(t, filterGroups(groups, "ops", types.BoolValue(true)), 1)
	assert.Len(t, filterGroups(groups, "", types.BoolValue(false)), 2)
}

func TestDNSRecordsDataSource_Read(t *testing.T) {
	a, err := ldapclient.EncodeRecord(ldapclient.RecordA, "10.0.0.1", 3600)
	require.NoError(t, err)
	cname, err := ldapclient.EncodeRecord(ldapclient.RecordCNAME, "api.corp.local", 300)
	require.NoError(t, err)

	conn := newMockConn()
	conn.On("SearchWithPaging", mock.Anything, mock.Anything).Return(entries(
		ldap.NewEntry("DC=web,"+testZoneDN, map[string][]string{"name": {"web"}, "dnsRecord": {string(cname)}}),
		ldap.NewEntry("DC=@,"+testZoneDN, map[string][]string{"name": {"@"}, "dnsRecord": {string(a)}}),
		ldap.NewEntry("DC=api,"+testZoneDN, map[string][]string{"name": {"api"}, "dnsRecord": {string(a)}}),
	), nil)

	d := &DNSRecordsDataSource{data: newTestProviderData(t, conn, nil)}

	resp := readDataSource(t, d, map[string]tftypes.Value{"zone_dn": str(testZoneDN)})
	require.False(t, resp.Diagnostics.HasError(), "%v", resp.Diagnostics)

	var data DNSRecordsDataSourceModel
	require.False(t, resp.State.Get(context.Background(), &data).HasError())
	require.Len(t, data.Records, 2, "zone apex is hidden")
	assert.Equal(t, "api", data.Records[0].Name.ValueString(), "sorted by name")
	assert.Equal(t, "A", data.Records[0].Type.ValueString())
	assert.Equal(t, "10.0.0.1", data.Records[0].Value.ValueString())
	assert.Equal(t, "CNAME", data.Records[1].Type.ValueString())
	assert.Equal(t, int64(300), data.Records[1].TTL.ValueInt64())

	resp = readDataSource(t, d, map[string]tftypes.Value{"zone_dn": str(testZoneDN), "type": str("cname")})
	require.False(t, resp.Diagnostics.HasError())
	require.False(t, resp.State.Get(context.Background(), &data).HasError())
	require.Len(t, data.Records, 1)
	assert.Equal(t, int64(1), data.RecordCount.ValueInt64())
}

func TestGroupMembersDataSource_Read(t *testing.T) {
	conn := resolvingConn()
	conn.On("SearchWithPaging", mock.MatchedBy(func(req *ldap.SearchRequest) bool {
		return req.BaseDN == testGroupDN && req.Filter == "(objectClass=group)"
	}), mock.Anything).Return(entries(ldap.NewEntry(testGroupDN, map[string][]string{
		"member": {testUserDN},
	})), nil)
	conn.On("SearchWithPaging", mock.MatchedBy(func(req *ldap.SearchRequest) bool {
		return req.BaseDN == testUserDN
	}), mock.Anything).Return(entries(ldap.NewEntry(testUserDN, map[string][]string{
		"sAMAccountName": {"alice"},
	})), nil)

	d := &GroupMembersDataSource{data: newTestProviderData(t, conn, nil)}

	resp := readDataSource(t, d, map[string]tftypes.Value{"group": str("ops")})
	require.False(t, resp.Diagnostics.HasError(), "%v", resp.Diagnostics)

	var data GroupMembersDataSourceModel
	require.False(t, resp.State.Get(context.Background(), &data).HasError())
	require.Len(t, data.Members, 1)
	assert.Equal(t, "alice", data.Members[0].AccountName.ValueString())
	assert.Equal(t, "N/A", data.Members[0].DisplayName.ValueString())
}

func TestComputersDataSource_ListingFailure(t *testing.T) {
	conn := newMockConn()
	conn.On("SearchWithPaging", mock.Anything, mock.Anything).
		Return(nil, ldap.NewError(ldap.LDAPResultInsufficientAccessRights, assert.AnError))

	d := &ComputersDataSource{data: newTestProviderData(t, conn, nil)}

	resp := readDataSource(t, d, nil)
	require.True(t, resp.Diagnostics.HasError())
	assert.Equal(t, "Error Listing Computers", resp.Diagnostics.Errors()[0].Summary())
}
