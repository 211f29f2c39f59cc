package ldap

import (
	"context"
	"sync"
	"testing"

	"github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSession implements Session for component tests.
type MockSession struct {
	mock.Mock
}

func (m *MockSession) Identity() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockSession) Search(ctx context.Context, req *SearchRequest) (*SearchResult, error) {
	args := m.Called(ctx, req)
	result, _ := args.Get(0).(*SearchResult)
	return result, args.Error(1)
}

func (m *MockSession) Add(ctx context.Context, req *AddRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockSession) Modify(ctx context.Context, req *ModifyRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockSession) Delete(ctx context.Context, dn string) error {
	args := m.Called(ctx, dn)
	return args.Error(0)
}

func (m *MockSession) Close() error {
	args := m.Called()
	return args.Error(0)
}

// fakeConn records the calls a session makes on the transport.
type fakeConn struct {
	mu sync.Mutex

	bindErr   error
	gssapiErr error
	searchFn  func(req *ldap.SearchRequest) (*ldap.SearchResult, error)
	addErr    error
	modifyErr error
	delErr    error

	binds      [][2]string
	gssapiSPNs []string
	searches   []*ldap.SearchRequest
	adds       []*ldap.AddRequest
	modifies   []*ldap.ModifyRequest
	dels       []*ldap.DelRequest
	closed     int
}

func (f *fakeConn) Bind(username, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.binds = append(f.binds, [2]string{username, password})
	return f.bindErr
}

func (f *fakeConn) GSSAPIBind(_ ldap.GSSAPIClient, servicePrincipal, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gssapiSPNs = append(f.gssapiSPNs, servicePrincipal)
	return f.gssapiErr
}

func (f *fakeConn) SearchWithPaging(req *ldap.SearchRequest, _ uint32) (*ldap.SearchResult, error) {
	f.mu.Lock()
	f.searches = append(f.searches, req)
	fn := f.searchFn
	f.mu.Unlock()

	if fn == nil {
		return &ldap.SearchResult{}, nil
	}
	return fn(req)
}

func (f *fakeConn) Add(req *ldap.AddRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.adds = append(f.adds, req)
	return f.addErr
}

func (f *fakeConn) Modify(req *ldap.ModifyRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.modifies = append(f.modifies, req)
	return f.modifyErr
}

func (f *fakeConn) Del(req *ldap.DelRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dels = append(f.dels, req)
	return f.delErr
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

// fakeDialer hands out conn and counts dials.
type fakeDialer struct {
	conn    *fakeConn
	dialErr error
	dials   int
}

func (d *fakeDialer) dial(context.Context, *Config) (Conn, error) {
	d.dials++
	if d.dialErr != nil {
		return nil, d.dialErr
	}
	return d.conn, nil
}

func testConfig() *Config {
	cfg := NewConfig()
	cfg.ServerURL = "ldaps://dc1.corp.local:636"
	cfg.BaseDN = "DC=corp,DC=local"
	cfg.Domain = "corp.local"
	cfg.Username = "svc-admin@corp.local"
	cfg.Password = "svc-secret"
	return cfg
}

func newTestDirectory(t *testing.T, cfg *Config) (*Directory, *fakeDialer) {
	t.Helper()
	dialer := &fakeDialer{conn: &fakeConn{}}
	provider, err := NewConnectionProviderWithDialer(cfg, dialer.dial)
	require.NoError(t, err)
	return NewDirectoryWithProvider(provider), dialer
}

func searchResult(entries ...*ldap.Entry) *SearchResult {
	return &SearchResult{Entries: entries, Total: len(entries)}
}

func recordEntry(name, dn string, blob []byte) *ldap.Entry {
	attrs := map[string][]string{"name": {name}}
	if blob != nil {
		attrs["dnsRecord"] = []string{string(blob)}
	}
	return ldap.NewEntry(dn, attrs)
}

func mustEncode(t *testing.T, kind RecordKind, value string) []byte {
	t.Helper()
	blob, err := EncodeRecord(kind, value, DefaultTTL)
	require.NoError(t, err)
	return blob
}
