package ldap

import (
	"testing"

	"github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGUIDFromBytes(t *testing.T) {
	raw := []byte{0x78, 0x56, 0x34, 0x12, 0xbc, 0x9a, 0xf0, 0xde, 0x01, 0x23, 0x45, 0x67, 0x89, 0xab, 0xcd, 0xef}

	got, err := guidFromBytes(raw)
	require.NoError(t, err)
	assert.Equal(t, "12345678-9abc-def0-0123-456789abcdef", got)

	_, err = guidFromBytes(raw[:15])
	assert.Error(t, err)
}

func TestObjectGUID_Missing(t *testing.T) {
	assert.Equal(t, "", objectGUID(ldap.NewEntry("CN=x", nil)))
	assert.Equal(t, "", objectGUID(ldap.NewEntry("CN=x", map[string][]string{"objectGUID": {"short"}})))
}

func TestObjectSID(t *testing.T) {
	domainUser := []byte{
		1, 5, 0, 0, 0, 0, 0, 5,
		21, 0, 0, 0,
		0x15, 0xcd, 0x5b, 0x07,
		0x15, 0xcd, 0x5b, 0x07,
		0x15, 0xcd, 0x5b, 0x07,
		0xe9, 0x03, 0, 0,
	}

	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "binary", value: string(domainUser), want: "S-1-5-21-123456789-123456789-123456789-1001"},
		{name: "textual", value: "S-1-5-32-544", want: "S-1-5-32-544"},
		{name: "truncated", value: string(domainUser[:10]), want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := ldap.NewEntry("CN=x", map[string][]string{"objectSid": {tt.value}})
			assert.Equal(t, tt.want, objectSID(entry))
		})
	}

	assert.Equal(t, "", objectSID(ldap.NewEntry("CN=x", nil)))
}
