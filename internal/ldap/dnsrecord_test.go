package ldap

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeRecord_A(t *testing.T) {
	blob, err := EncodeRecord(RecordA, "10.0.0.5", DefaultTTL)
	require.NoError(t, err)
	require.Len(t, blob, recordHeaderLength+4)

	assert.Equal(t, []byte{10, 0, 0, 5}, blob[recordHeaderLength:])
	assert.Equal(t, RecordA, ClassifyRecord(blob))

	decoded, err := DecodeRecord(blob)
	require.NoError(t, err)
	assert.Equal(t, RecordA, decoded.Kind)
	assert.Equal(t, "10.0.0.5", decoded.Value)
	assert.Equal(t, uint32(3600), decoded.TTL)
}

func TestEncodeRecord_HeaderLayout(t *testing.T) {
	blob, err := EncodeRecord(RecordA, "192.168.1.20", 3600)
	require.NoError(t, err)

	assert.Equal(t, uint16(4), binary.LittleEndian.Uint16(blob[0:2]), "payload length")
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(blob[2:4]), "type id")
	assert.Equal(t, byte(5), blob[4], "version")
	assert.Equal(t, byte(0xF0), blob[5], "rank")
	assert.Equal(t, []byte{0, 0}, blob[6:8], "flags")
	assert.Equal(t, []byte{0, 0, 0, 0}, blob[8:12], "serial")
	assert.Equal(t, uint32(3600), binary.BigEndian.Uint32(blob[12:16]), "ttl")
	assert.Equal(t, []byte{0x00, 0x00, 0x0E, 0x10}, blob[12:16])
	assert.Equal(t, make([]byte, 8), blob[16:24], "reserved and timestamp")
}

func TestEncodeRecord_CNAME(t *testing.T) {
	blob, err := EncodeRecord(RecordCNAME, "www.example.com", DefaultTTL)
	require.NoError(t, err)

	payload := blob[recordHeaderLength:]
	want := []byte{
		3, 'w', 'w', 'w',
		7, 'e', 'x', 'a', 'm', 'p', 'l', 'e',
		3, 'c', 'o', 'm',
		0,
	}

	assert.Equal(t, byte(len(want)), payload[0], "total encoded name length")
	assert.Equal(t, byte(3), payload[1], "label count")
	assert.Equal(t, want, payload[2:])
	assert.Equal(t, uint16(len(payload)), binary.LittleEndian.Uint16(blob[0:2]))
	assert.Equal(t, uint16(5), binary.LittleEndian.Uint16(blob[2:4]))

	decoded, err := DecodeRecord(blob)
	require.NoError(t, err)
	assert.Equal(t, RecordCNAME, decoded.Kind)
	assert.Equal(t, "www.example.com", decoded.Value)
}

func TestEncodeRecord_CNAMENormalisesTarget(t *testing.T) {
	plain, err := EncodeRecord(RecordCNAME, "host.corp.local", DefaultTTL)
	require.NoError(t, err)

	for _, variant := range []string{"  host.corp.local.  ", "host..corp.local", "host.corp.local."} {
		t.Run(variant, func(t *testing.T) {
			blob, err := EncodeRecord(RecordCNAME, variant, DefaultTTL)
			require.NoError(t, err)
			assert.Equal(t, plain, blob)
		})
	}
}

func TestEncodeRecord_Errors(t *testing.T) {
	long := make([]byte, 64)
	for i := range long {
		long[i] = 'a'
	}

	tests := []struct {
		name  string
		kind  RecordKind
		value string
	}{
		{name: "unsupported kind", kind: RecordKind(16), value: "text"},
		{name: "unclassified kind", kind: RecordUnclassified, value: "10.0.0.1"},
		{name: "malformed ipv4", kind: RecordA, value: "10.0.0"},
		{name: "ipv6 for A", kind: RecordA, value: "2001:db8::1"},
		{name: "hostname for A", kind: RecordA, value: "host.corp.local"},
		{name: "empty CNAME", kind: RecordCNAME, value: " . "},
		{name: "label too long", kind: RecordCNAME, value: string(long) + ".corp.local"},
		{name: "non-ascii label", kind: RecordCNAME, value: "wŵw.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EncodeRecord(tt.kind, tt.value, DefaultTTL)
			require.Error(t, err)
			assert.Equal(t, ErrorCategoryCodec, CategoryOf(err))
		})
	}
}

func TestClassifyRecord(t *testing.T) {
	a, err := EncodeRecord(RecordA, "10.1.1.1", DefaultTTL)
	require.NoError(t, err)

	srv := make([]byte, recordHeaderLength)
	binary.LittleEndian.PutUint16(srv[2:4], 33)

	// A type id above 255 whose low byte is 1 must not read as A.
	wide := make([]byte, recordHeaderLength)
	binary.LittleEndian.PutUint16(wide[2:4], 0x0101)

	tests := []struct {
		name string
		blob []byte
		want RecordKind
	}{
		{name: "A", blob: a, want: RecordA},
		{name: "SRV", blob: srv, want: RecordUnclassified},
		{name: "wide type id", blob: wide, want: RecordUnclassified},
		{name: "short blob", blob: []byte{4, 0, 1}, want: RecordUnclassified},
		{name: "empty", blob: nil, want: RecordUnclassified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyRecord(tt.blob))
		})
	}
}

func TestDecodeRecord_Errors(t *testing.T) {
	_, err := DecodeRecord([]byte{1, 2, 3})
	require.Error(t, err)
	assert.Equal(t, ErrorCategoryCodec, CategoryOf(err))

	blob, err := EncodeRecord(RecordA, "10.0.0.5", DefaultTTL)
	require.NoError(t, err)

	_, err = DecodeRecord(append(blob, 0xFF))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "header declares 4 payload bytes, found 5")
}

func TestRecordKind_String(t *testing.T) {
	assert.Equal(t, "A", RecordA.String())
	assert.Equal(t, "CNAME", RecordCNAME.String())
	assert.Equal(t, "Unknown", RecordUnclassified.String())
	assert.Equal(t, "Unknown", RecordKind(33).String())
}

func TestParseRecordKind(t *testing.T) {
	kind, err := ParseRecordKind("cname")
	require.NoError(t, err)
	assert.Equal(t, RecordCNAME, kind)

	kind, err = ParseRecordKind(" A ")
	require.NoError(t, err)
	assert.Equal(t, RecordA, kind)

	_, err = ParseRecordKind("MX")
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}
