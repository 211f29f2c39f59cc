package ldap

import (
	"strings"

	"github.com/bwmarrin/go-objectsid"
	"github.com/go-ldap/ldap/v3"
)

// minSIDLength is the revision, sub-authority count and identifier authority.
const minSIDLength = 8

// objectSID returns the entry's objectSid in S-1-5-21-... form. Values that
// are already textual are returned unchanged; anything else yields "".
func objectSID(entry *ldap.Entry) string {
	raw := entry.GetRawAttributeValue("objectSid")
	if len(raw) == 0 {
		return ""
	}

	if strings.HasPrefix(string(raw), "S-") {
		return string(raw)
	}

	if len(raw) < minSIDLength || len(raw) != minSIDLength+4*int(raw[1]) {
		return ""
	}

	return objectsid.Decode(raw).String()
}
