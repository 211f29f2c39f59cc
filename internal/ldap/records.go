package ldap

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/go-ldap/ldap/v3"
	"github.com/hashicorp/terraform-plugin-log/tflog"
)

const recordNodeFilter = "(&(objectClass=dnsNode)(!(dNSTombstoned=TRUE)))"

// reservedRecordNames are zone-level nodes that are never surfaced.
var reservedRecordNames = map[string]struct{}{
	"@":              {},
	"domaindnszones": {},
	"forestdnszones": {},
}

// RecordRepository lists, creates and deletes dnsNode objects in a zone.
type RecordRepository struct {
	config  *Config
	objects *ObjectManager
}

// NewRecordRepository returns a repository that deletes through objects.
func NewRecordRepository(cfg *Config, objects *ObjectManager) *RecordRepository {
	return &RecordRepository{config: cfg, objects: objects}
}

// hiddenRecordName reports whether a node name is reserved or a locator
// (service) record.
func hiddenRecordName(name string) bool {
	if _, ok := reservedRecordNames[strings.ToLower(name)]; ok {
		return true
	}
	return strings.HasPrefix(name, "_")
}

// List returns the host and alias records of a zone sorted by name.
func (r *RecordRepository) List(ctx context.Context, s Session, zoneDN string) ([]ResourceRecord, error) {
	if strings.TrimSpace(zoneDN) == "" {
		return nil, NewValidationError("zone_dn", "zone DN cannot be empty")
	}

	result, err := s.Search(ctx, &SearchRequest{
		BaseDN:     zoneDN,
		Scope:      ScopeWholeSubtree,
		Filter:     recordNodeFilter,
		Attributes: []string{"name", "dnsRecord", "distinguishedName"},
	})
	if err != nil {
		return nil, err
	}

	records := make([]ResourceRecord, 0, len(result.Entries))
	for _, entry := range result.Entries {
		record, ok := r.toRecord(ctx, entry)
		if ok {
			records = append(records, record)
		}
	}

	slices.SortStableFunc(records, func(a, b ResourceRecord) int {
		return strings.Compare(a.Name, b.Name)
	})

	return records, nil
}

func (r *RecordRepository) toRecord(ctx context.Context, entry *ldap.Entry) (ResourceRecord, bool) {
	name := strings.TrimSpace(entry.GetAttributeValue("name"))
	if hiddenRecordName(name) {
		return ResourceRecord{}, false
	}

	record := ResourceRecord{Name: name, DN: entry.DN}

	blobs := entry.GetRawAttributeValues("dnsRecord")
	if len(blobs) > 0 {
		record.Kind = ClassifyRecord(blobs[0])
		if decoded, err := DecodeRecord(blobs[0]); err == nil {
			record.Value = decoded.Value
			record.TTL = decoded.TTL
		} else {
			tflog.SubsystemDebug(ctx, Subsystem, "Undecodable dnsRecord value", map[string]any{
				"dn":    entry.DN,
				"error": err.Error(),
			})
		}
	}

	if record.Kind == RecordUnclassified && r.config.UnclassifiedPolicy != UnclassifiedShow {
		return ResourceRecord{}, false
	}

	return record, true
}

// Create adds a dnsNode named hostname to the zone. An existing node yields
// a *ConflictError.
func (r *RecordRepository) Create(ctx context.Context, s Session, zoneDN, hostname string, kind RecordKind, value string, ttl uint32) (string, error) {
	host, err := ValidateName(hostname)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(zoneDN) == "" {
		return "", NewValidationError("zone_dn", "zone DN cannot be empty")
	}

	value = strings.TrimSpace(value)
	if kind == RecordCNAME {
		if value, err = ValidateHostTarget(value); err != nil {
			return "", err
		}
	}

	if ttl == 0 {
		ttl = DefaultTTL
	}

	blob, err := EncodeRecord(kind, value, ttl)
	if err != nil {
		return "", err
	}

	dn := fmt.Sprintf("DC=%s,%s", ldap.EscapeDN(host), zoneDN)

	tflog.SubsystemInfo(ctx, Subsystem, "Creating DNS record", map[string]any{
		"dn":   dn,
		"kind": kind.String(),
		"ttl":  ttl,
	})

	err = s.Add(ctx, &AddRequest{
		DN: dn,
		Attributes: map[string][]string{
			"objectClass":   {"top", "dnsNode"},
			"dnsRecord":     {string(blob)},
			"dNSTombstoned": {"FALSE"},
		},
	})
	if err != nil {
		return "", err
	}

	return dn, nil
}

// Delete removes a record node.
func (r *RecordRepository) Delete(ctx context.Context, s Session, recordDN string) error {
	return r.objects.DeleteObject(ctx, s, recordDN)
}
