package ldap

import (
	"context"
	"crypto/tls"
	"maps"
	"net"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-ldap/ldap/v3"
	"github.com/hashicorp/terraform-plugin-log/tflog"
)

// searchPageSize stays under the Active Directory MaxPageSize default of 1000.
const searchPageSize uint32 = 500

// Conn is the subset of *ldap.Conn used by a session.
type Conn interface {
	Bind(username, password string) error
	GSSAPIBind(client ldap.GSSAPIClient, servicePrincipal, authzid string) error
	SearchWithPaging(req *ldap.SearchRequest, pagingSize uint32) (*ldap.SearchResult, error)
	Add(req *ldap.AddRequest) error
	Modify(req *ldap.ModifyRequest) error
	Del(req *ldap.DelRequest) error
	Close() error
}

// DialFunc opens an unauthenticated transport to the configured server.
type DialFunc func(ctx context.Context, cfg *Config) (Conn, error)

// ConnectionProvider resolves the bind identity for each operation and opens
// a session bound as that identity.
type ConnectionProvider struct {
	config *Config
	dial   DialFunc
}

// NewConnectionProvider validates cfg and returns a provider dialing over TLS.
func NewConnectionProvider(cfg *Config) (*ConnectionProvider, error) {
	return NewConnectionProviderWithDialer(cfg, dialTLS)
}

// NewConnectionProviderWithDialer is NewConnectionProvider with a custom transport.
func NewConnectionProviderWithDialer(cfg *Config, dial DialFunc) (*ConnectionProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if dial == nil {
		return nil, NewValidationError("dialer", "dial function cannot be nil")
	}
	return &ConnectionProvider{config: cfg, dial: dial}, nil
}

// Config returns the provider's configuration. Callers must not modify it.
func (p *ConnectionProvider) Config() *Config {
	return p.config
}

// dialTLS connects with certificate verification governed by
// Config.VerifyCertificates.
func dialTLS(_ context.Context, cfg *Config) (Conn, error) {
	tlsConfig := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: !cfg.VerifyCertificates, // #nosec G402 -- self-signed DC certificates are accepted unless verification is enabled
	}

	conn, err := ldap.DialURL(cfg.ServerURL,
		ldap.DialWithTLSConfig(tlsConfig),
		ldap.DialWithDialer(&net.Dialer{Timeout: cfg.Timeout}),
	)
	if err != nil {
		return nil, err
	}

	if cfg.Timeout > 0 {
		conn.SetTimeout(cfg.Timeout)
	}

	return conn, nil
}

// resolveIdentity returns the bind principal and secret. A valid actor
// overrides the fallback account; a bare actor name gets the domain suffix.
func (p *ConnectionProvider) resolveIdentity(actor *Actor) (string, string) {
	if !actor.valid() {
		return p.config.Username, p.config.Password
	}
	return ClassifyIdentity(actor.Name).BindName(p.config.DomainSuffix()), actor.Secret
}

// Open dials the server and binds as the resolved identity. The returned
// session must be closed by the caller.
func (p *ConnectionProvider) Open(ctx context.Context, actor *Actor) (Session, error) {
	identity, secret := p.resolveIdentity(actor)
	useKerberos := !actor.valid() && p.config.UsesKerberos()

	fields := map[string]any{
		"server_url": p.config.ServerURL,
		"identity":   identity,
		"actor":      actor.valid(),
		"kerberos":   useKerberos,
	}

	start := time.Now()
	tflog.SubsystemDebug(ctx, Subsystem, "Opening directory session", fields)

	conn, err := p.dial(ctx, p.config)
	if err != nil {
		fields["duration_ms"] = time.Since(start).Milliseconds()
		LogLDAPError(ctx, Subsystem, "dial", err, fields)
		return nil, newConnectionError(p.config.ServerURL, identity, err)
	}

	if useKerberos {
		err = kerberosBind(ctx, conn, p.config)
	} else {
		err = conn.Bind(identity, secret)
	}

	fields["duration_ms"] = time.Since(start).Milliseconds()

	if err != nil {
		_ = conn.Close()
		LogLDAPError(ctx, Subsystem, "bind", err, fields)
		return nil, newConnectionError(p.config.ServerURL, identity, err)
	}

	tflog.SubsystemDebug(ctx, Subsystem, "Directory session opened", fields)

	return &session{conn: conn, identity: identity}, nil
}

// VerifyLogin binds as the given actor and closes the session immediately.
func (p *ConnectionProvider) VerifyLogin(ctx context.Context, name, secret string) error {
	if strings.TrimSpace(name) == "" || secret == "" {
		return NewValidationError("credentials", "name and secret are required")
	}

	s, err := p.Open(ctx, &Actor{Name: strings.TrimSpace(name), Secret: secret})
	if err != nil {
		return err
	}
	return s.Close()
}

// session is a bound connection used for one operation.
type session struct {
	conn     Conn
	identity string

	closeOnce sync.Once
	closeErr  error
}

var _ Session = &session{}

func (s *session) Identity() string {
	return s.identity
}

func (s *session) Search(ctx context.Context, req *SearchRequest) (*SearchResult, error) {
	if req == nil {
		return nil, NewValidationError("search", "search request cannot be nil")
	}

	ldapReq := ldap.NewSearchRequest(
		req.BaseDN,
		int(req.Scope),
		ldap.NeverDerefAliases,
		req.SizeLimit,
		int(req.TimeLimit.Seconds()),
		false,
		req.Filter,
		req.Attributes,
		nil,
	)

	tflog.SubsystemTrace(ctx, Subsystem, "Search", map[string]any{
		"base_dn": req.BaseDN,
		"scope":   req.Scope.String(),
		"filter":  req.Filter,
	})

	result, err := s.conn.SearchWithPaging(ldapReq, searchPageSize)
	if err != nil {
		return nil, ClassifyError("search", req.BaseDN, err)
	}

	return &SearchResult{Entries: result.Entries, Total: len(result.Entries)}, nil
}

func (s *session) Add(ctx context.Context, req *AddRequest) error {
	if req == nil || req.DN == "" {
		return NewValidationError("dn", "DN cannot be empty")
	}

	ldapReq := ldap.NewAddRequest(req.DN, nil)
	for _, attr := range sortedKeys(req.Attributes) {
		ldapReq.Attribute(attr, req.Attributes[attr])
	}

	tflog.SubsystemTrace(ctx, Subsystem, "Add", map[string]any{"dn": req.DN})

	return ClassifyError("add", req.DN, s.conn.Add(ldapReq))
}

func (s *session) Modify(ctx context.Context, req *ModifyRequest) error {
	if req == nil || req.DN == "" {
		return NewValidationError("dn", "DN cannot be empty")
	}

	ldapReq := ldap.NewModifyRequest(req.DN, nil)
	for _, attr := range sortedKeys(req.AddAttributes) {
		ldapReq.Add(attr, req.AddAttributes[attr])
	}
	for _, attr := range sortedKeys(req.ReplaceAttributes) {
		ldapReq.Replace(attr, req.ReplaceAttributes[attr])
	}
	for _, attr := range sortedKeys(req.DeleteAttributes) {
		ldapReq.Delete(attr, req.DeleteAttributes[attr])
	}

	tflog.SubsystemTrace(ctx, Subsystem, "Modify", map[string]any{"dn": req.DN})

	return ClassifyError("modify", req.DN, s.conn.Modify(ldapReq))
}

func (s *session) Delete(ctx context.Context, dn string) error {
	if dn == "" {
		return NewValidationError("dn", "DN cannot be empty")
	}

	tflog.SubsystemTrace(ctx, Subsystem, "Delete", map[string]any{"dn": dn})

	return ClassifyError("delete", dn, s.conn.Del(ldap.NewDelRequest(dn, nil)))
}

// Close releases the connection. It is safe to call more than once.
func (s *session) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}

func sortedKeys(m map[string][]string) []string {
	return slices.Sorted(maps.Keys(m))
}
