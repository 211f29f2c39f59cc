package ldap

import (
	"context"
	"fmt"
	"net"
	"slices"
	"strings"
	"time"

	"github.com/hashicorp/terraform-plugin-log/tflog"
)

// SRVLookupFunc matches net.Resolver.LookupSRV.
type SRVLookupFunc func(ctx context.Context, service, proto, name string) (string, []*net.SRV, error)

// ServerInfo is a domain controller found by discovery.
type ServerInfo struct {
	Host     string
	Port     int
	Priority int
	Weight   int
	Source   string
}

// URL returns the LDAPS URL of the server. Discovered servers are always
// reached over TLS on the LDAPS port, whatever port the SRV record names
// for plain LDAP.
func (s *ServerInfo) URL() string {
	return fmt.Sprintf("ldaps://%s:%d", s.Host, s.Port)
}

// SRVDiscovery locates domain controllers for a DNS domain.
type SRVDiscovery struct {
	lookup SRVLookupFunc
}

// NewSRVDiscovery returns a discovery using the system resolver.
func NewSRVDiscovery() *SRVDiscovery {
	return NewSRVDiscoveryWithLookup(net.DefaultResolver.LookupSRV)
}

// NewSRVDiscoveryWithLookup returns a discovery that resolves SRV records
// through lookup, letting callers substitute a custom resolver.
func NewSRVDiscoveryWithLookup(lookup SRVLookupFunc) *SRVDiscovery {
	return &SRVDiscovery{lookup: lookup}
}

// srvQueries are tried in order; the first with answers wins.
var srvQueries = []struct {
	name     string
	ldapsSRV bool
}{
	{name: "_ldaps._tcp.%s", ldapsSRV: true},
	{name: "_ldap._tcp.dc._msdcs.%s"},
}

// DiscoverServers returns the controllers of domain ordered by SRV priority,
// then by descending weight. When no record answers, the domain name itself
// on port 636 is returned.
func (d *SRVDiscovery) DiscoverServers(ctx context.Context, domain string) ([]*ServerInfo, error) {
	domain = strings.TrimSuffix(strings.TrimSpace(domain), ".")
	if domain == "" {
		return nil, NewValidationError("domain", "domain is required for server discovery")
	}

	start := time.Now()

	for _, query := range srvQueries {
		name := fmt.Sprintf(query.name, domain)

		_, records, err := d.lookup(ctx, "", "", name)
		if err != nil || len(records) == 0 {
			tflog.SubsystemDebug(ctx, Subsystem, "SRV lookup returned nothing", map[string]any{
				"query": name,
				"error": fmt.Sprint(err),
			})
			continue
		}

		servers := make([]*ServerInfo, 0, len(records))
		for _, srv := range records {
			port := 636
			if query.ldapsSRV && srv.Port != 0 {
				port = int(srv.Port)
			}
			servers = append(servers, &ServerInfo{
				Host:     strings.TrimSuffix(srv.Target, "."),
				Port:     port,
				Priority: int(srv.Priority),
				Weight:   int(srv.Weight),
				Source:   name,
			})
		}
		sortServers(servers)

		tflog.SubsystemDebug(ctx, Subsystem, "Discovered domain controllers", map[string]any{
			"query":        name,
			"server_count": len(servers),
			"duration_ms":  time.Since(start).Milliseconds(),
		})
		return servers, nil
	}

	tflog.SubsystemDebug(ctx, Subsystem, "No SRV records found, falling back to the domain name", map[string]any{
		"domain":      domain,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return []*ServerInfo{{Host: domain, Port: 636, Source: "fallback"}}, nil
}

func sortServers(servers []*ServerInfo) {
	slices.SortStableFunc(servers, func(a, b *ServerInfo) int {
		if a.Priority != b.Priority {
			return a.Priority - b.Priority
		}
		return b.Weight - a.Weight
	})
}

// ResolveServerURL fills cfg.ServerURL from the first discovered controller
// when it is empty and a domain is configured. A configured URL is left alone.
func ResolveServerURL(ctx context.Context, cfg *Config, discovery *SRVDiscovery) error {
	if cfg.ServerURL != "" || cfg.Domain == "" {
		return nil
	}

	servers, err := discovery.DiscoverServers(ctx, cfg.Domain)
	if err != nil {
		return err
	}

	cfg.ServerURL = servers[0].URL()

	tflog.SubsystemInfo(ctx, Subsystem, "Using discovered domain controller", map[string]any{
		"server_url": cfg.ServerURL,
		"source":     servers[0].Source,
	})
	return nil
}
