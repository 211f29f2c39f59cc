package ldap

import (
	"fmt"

	"github.com/go-ldap/ldap/v3"
	"github.com/google/uuid"
)

// guidLength is the size of a binary objectGUID value.
const guidLength = 16

// guidFromBytes converts an Active Directory objectGUID to its canonical
// string form. The first three fields are stored little-endian.
func guidFromBytes(raw []byte) (string, error) {
	if len(raw) != guidLength {
		return "", fmt.Errorf("invalid GUID byte length: expected %d, got %d", guidLength, len(raw))
	}

	standard := make([]byte, guidLength)

	// Data1, Data2 and Data3 are reversed; Data4 keeps its order.
	standard[0], standard[1], standard[2], standard[3] = raw[3], raw[2], raw[1], raw[0]
	standard[4], standard[5] = raw[5], raw[4]
	standard[6], standard[7] = raw[7], raw[6]
	copy(standard[8:], raw[8:])

	id, err := uuid.FromBytes(standard)
	if err != nil {
		return "", fmt.Errorf("invalid GUID bytes: %w", err)
	}
	return id.String(), nil
}

// objectGUID returns the entry's objectGUID, or "" when absent or malformed.
func objectGUID(entry *ldap.Entry) string {
	raw := entry.GetRawAttributeValue("objectGUID")
	if len(raw) == 0 {
		return ""
	}
	guid, err := guidFromBytes(raw)
	if err != nil {
		return ""
	}
	return guid
}
