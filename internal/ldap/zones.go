package ldap

import (
	"context"
	"strings"

	"github.com/hashicorp/terraform-plugin-log/tflog"
)

// zoneContainers are probed in order; the first occurrence of a zone wins.
var zoneContainers = []string{
	"CN=MicrosoftDNS,DC=DomainDnsZones,",
	"CN=MicrosoftDNS,CN=System,",
	"CN=MicrosoftDNS,DC=ForestDnsZones,",
}

// ZoneCatalog discovers the DNS zone containers of the configured domain.
type ZoneCatalog struct {
	config *Config
}

// NewZoneCatalog returns a catalog for cfg.
func NewZoneCatalog(cfg *Config) *ZoneCatalog {
	return &ZoneCatalog{config: cfg}
}

// ListZones probes each candidate container for zones named after the
// configured domain. A failed probe is logged and skipped.
func (c *ZoneCatalog) ListZones(ctx context.Context, s Session) []Zone {
	root := c.config.DomainRoot()
	if root == "" {
		tflog.SubsystemDebug(ctx, Subsystem, "Base DN has no domain component, no zones to probe", map[string]any{
			"base_dn": c.config.BaseDN,
		})
		return []Zone{}
	}

	domain := c.config.DomainSuffix()
	seen := make(map[string]struct{})
	zones := []Zone{}

	for _, prefix := range zoneContainers {
		container := prefix + root

		result, err := s.Search(ctx, &SearchRequest{
			BaseDN:     container,
			Scope:      ScopeWholeSubtree,
			Filter:     "(objectClass=dnsZone)",
			Attributes: []string{"dc", "distinguishedName"},
		})
		if err != nil {
			tflog.SubsystemWarn(ctx, Subsystem, "Zone probe failed, skipping container", map[string]any{
				"container":      container,
				"error":          err.Error(),
				"error_category": string(CategoryOf(err)),
			})
			continue
		}

		for _, entry := range result.Entries {
			name := entry.GetAttributeValue("dc")
			if !strings.EqualFold(name, domain) {
				continue
			}

			key := strings.ToLower(name)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}

			zones = append(zones, Zone{Name: name, DN: entry.DN})
		}
	}

	tflog.SubsystemDebug(ctx, Subsystem, "Zone discovery complete", map[string]any{
		"domain":     domain,
		"zone_count": len(zones),
	})

	return zones
}
