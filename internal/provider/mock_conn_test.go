package provider

import (
	"context"
	"testing"

	"github.com/go-ldap/ldap/v3"
	"github.com/hashicorp/terraform-plugin-go/tftypes"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	ldapclient "github.com/isometry/terraform-provider-adops/internal/ldap"
)

const (
	testBaseDN = "DC=corp,DC=local"
	testZoneDN = "DC=corp.local,CN=MicrosoftDNS,DC=DomainDnsZones,DC=corp,DC=local"
)

// MockConn is a testify mock of the directory transport.
type MockConn struct {
	mock.Mock
}

var _ ldapclient.Conn = &MockConn{}

func (m *MockConn) Bind(username, password string) error {
	args := m.Called(username, password)
	return args.Error(0)
}

func (m *MockConn) GSSAPIBind(client ldap.GSSAPIClient, servicePrincipal, authzid string) error {
	args := m.Called(client, servicePrincipal, authzid)
	return args.Error(0)
}

func (m *MockConn) SearchWithPaging(req *ldap.SearchRequest, pagingSize uint32) (*ldap.SearchResult, error) {
	args := m.Called(req, pagingSize)
	result, _ := args.Get(0).(*ldap.SearchResult)
	return result, args.Error(1)
}

func (m *MockConn) Add(req *ldap.AddRequest) error {
	args := m.Called(req)
	return args.Error(0)
}

func (m *MockConn) Modify(req *ldap.ModifyRequest) error {
	args := m.Called(req)
	return args.Error(0)
}

func (m *MockConn) Del(req *ldap.DelRequest) error {
	args := m.Called(req)
	return args.Error(0)
}

func (m *MockConn) Close() error {
	args := m.Called()
	return args.Error(0)
}

// newMockConn returns a conn that accepts the service account bind and
// any number of closes.
func newMockConn() *MockConn {
	conn := &MockConn{}
	conn.On("Bind", "svc-admin@corp.local", "svc-secret").Return(nil).Maybe()
	conn.On("Close").Return(nil).Maybe()
	return conn
}

// newTestProviderData wires a directory whose every session uses conn.
func newTestProviderData(t *testing.T, conn *MockConn, actor *ldapclient.Actor) *ldapclient.ProviderData {
	t.Helper()

	cfg := ldapclient.NewConfig()
	cfg.ServerURL = "ldaps://dc1.corp.local:636"
	cfg.BaseDN = testBaseDN
	cfg.Domain = "corp.local"
	cfg.Username = "svc-admin@corp.local"
	cfg.Password = "svc-secret"

	provider, err := ldapclient.NewConnectionProviderWithDialer(cfg, func(context.Context, *ldapclient.Config) (ldapclient.Conn, error) {
		return conn, nil
	})
	require.NoError(t, err)

	return ldapclient.NewProviderData(ldapclient.NewDirectoryWithProvider(provider), actor)
}

// searchFor matches a search by filter.
func searchFor(filter string) any {
	return mock.MatchedBy(func(req *ldap.SearchRequest) bool {
		return req.Filter == filter
	})
}

func entries(e ...*ldap.Entry) *ldap.SearchResult {
	return &ldap.SearchResult{Entries: e}
}

// objectValue builds a value of typ with the given attributes set and the
// rest null.
func objectValue(typ tftypes.Type, values map[string]tftypes.Value) tftypes.Value {
	objType := typ.(tftypes.Object)
	attrs := make(map[string]tftypes.Value, len(objType.AttributeTypes))
	for name, attrType := range objType.AttributeTypes {
		if v, ok := values[name]; ok {
			attrs[name] = v
		} else {
			attrs[name] = tftypes.NewValue(attrType, nil)
		}
	}
	return tftypes.NewValue(objType, attrs)
}

func str(s string) tftypes.Value {
	return tftypes.NewValue(tftypes.String, s)
}

func num(n int64) tftypes.Value {
	return tftypes.NewValue(tftypes.Number, n)
}
