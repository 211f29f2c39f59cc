package ldap

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"net/netip"
	"strings"

	"github.com/miekg/dns"
)

// dnsRecord attribute layout. All fields are little-endian except the TTL,
// which is stored big-endian.
const (
	recordHeaderLength = 24
	recordVersion      = 5
	recordRank         = 0xF0

	// DefaultTTL is applied when the caller does not choose one.
	DefaultTTL uint32 = 3600
)

// RecordKind is the classification of a stored record. Its value is the DNS
// type id carried in the record header.
type RecordKind uint16

const (
	RecordUnclassified RecordKind = 0
	RecordA            RecordKind = RecordKind(dns.TypeA)
	RecordCNAME        RecordKind = RecordKind(dns.TypeCNAME)
)

func (k RecordKind) String() string {
	switch k {
	case RecordA, RecordCNAME:
		return dns.TypeToString[uint16(k)]
	default:
		return "Unknown"
	}
}

// MarshalText renders the kind by name in JSON and YAML output.
func (k RecordKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ParseRecordKind accepts "A" or "CNAME" in any case.
func ParseRecordKind(s string) (RecordKind, error) {
	t, ok := dns.StringToType[strings.ToUpper(strings.TrimSpace(s))]
	if ok && (t == dns.TypeA || t == dns.TypeCNAME) {
		return RecordKind(t), nil
	}
	return RecordUnclassified, NewValidationError("type", fmt.Sprintf("unsupported record type %q, expected A or CNAME", s))
}

// recordHeader is the fixed 24-byte prefix of a dnsRecord value.
type recordHeader struct {
	DataLength uint16
	Type       uint16
	Version    uint8
	Rank       uint8
	Flags      uint16
	Serial     uint32
	TTL        uint32
	Reserved   uint32
	Timestamp  uint32
}

func (h recordHeader) appendTo(dst []byte) []byte {
	var b [recordHeaderLength]byte
	binary.LittleEndian.PutUint16(b[0:2], h.DataLength)
	binary.LittleEndian.PutUint16(b[2:4], h.Type)
	b[4] = h.Version
	b[5] = h.Rank
	binary.LittleEndian.PutUint16(b[6:8], h.Flags)
	binary.LittleEndian.PutUint32(b[8:12], h.Serial)
	binary.BigEndian.PutUint32(b[12:16], h.TTL)
	binary.LittleEndian.PutUint32(b[16:20], h.Reserved)
	binary.LittleEndian.PutUint32(b[20:24], h.Timestamp)
	return append(dst, b[:]...)
}

func parseRecordHeader(blob []byte) (recordHeader, error) {
	if len(blob) < recordHeaderLength {
		return recordHeader{}, &CodecError{Reason: fmt.Sprintf("record is %d bytes, shorter than the %d-byte header", len(blob), recordHeaderLength)}
	}
	return recordHeader{
		DataLength: binary.LittleEndian.Uint16(blob[0:2]),
		Type:       binary.LittleEndian.Uint16(blob[2:4]),
		Version:    blob[4],
		Rank:       blob[5],
		Flags:      binary.LittleEndian.Uint16(blob[6:8]),
		Serial:     binary.LittleEndian.Uint32(blob[8:12]),
		TTL:        binary.BigEndian.Uint32(blob[12:16]),
		Reserved:   binary.LittleEndian.Uint32(blob[16:20]),
		Timestamp:  binary.LittleEndian.Uint32(blob[20:24]),
	}, nil
}

// EncodeRecord builds the dnsRecord attribute value for an A or CNAME record.
func EncodeRecord(kind RecordKind, value string, ttl uint32) ([]byte, error) {
	var payload []byte

	switch kind {
	case RecordA:
		addr, err := netip.ParseAddr(strings.TrimSpace(value))
		if err != nil || !addr.Is4() {
			return nil, &CodecError{Reason: fmt.Sprintf("%q is not an IPv4 address", value), Cause: err}
		}
		ip := addr.As4()
		payload = ip[:]
	case RecordCNAME:
		encoded, err := encodeCountName(value)
		if err != nil {
			return nil, err
		}
		payload = encoded
	default:
		return nil, &CodecError{Reason: fmt.Sprintf("unsupported record kind %d", uint16(kind))}
	}

	header := recordHeader{
		DataLength: uint16(len(payload)),
		Type:       uint16(kind),
		Version:    recordVersion,
		Rank:       recordRank,
		TTL:        ttl,
	}

	blob := header.appendTo(make([]byte, 0, recordHeaderLength+len(payload)))
	return append(blob, payload...), nil
}

// encodeCountName writes [total length][label count] followed by the
// length-prefixed labels and a zero terminator.
func encodeCountName(name string) ([]byte, error) {
	target := strings.TrimSuffix(strings.TrimSpace(name), ".")

	var labels bytes.Buffer
	count := 0
	for label := range strings.SplitSeq(target, ".") {
		if len(label) == 0 {
			continue
		}
		if len(label) > maxLabelLength {
			return nil, &CodecError{Reason: fmt.Sprintf("label %q exceeds %d bytes", label, maxLabelLength)}
		}
		if !isASCII(label) {
			return nil, &CodecError{Reason: fmt.Sprintf("label %q is not ASCII", label)}
		}
		labels.WriteByte(byte(len(label)))
		labels.WriteString(label)
		count++
	}
	labels.WriteByte(0)

	if count == 0 {
		return nil, &CodecError{Reason: "CNAME target is empty"}
	}
	if labels.Len() > maxNameLength {
		return nil, &CodecError{Reason: fmt.Sprintf("CNAME target encodes to %d bytes, limit is %d", labels.Len(), maxNameLength)}
	}

	out := make([]byte, 0, 2+labels.Len())
	out = append(out, byte(labels.Len()), byte(count))
	return append(out, labels.Bytes()...), nil
}

func isASCII(label string) bool {
	for i := 0; i < len(label); i++ {
		if label[i] >= 0x80 {
			return false
		}
	}
	return true
}

func decodeCountName(payload []byte) (string, error) {
	if len(payload) < 2 {
		return "", &CodecError{Reason: "CNAME payload too short"}
	}

	total := int(payload[0])
	seq := payload[2:]
	if len(seq) < total {
		return "", &CodecError{Reason: fmt.Sprintf("CNAME payload declares %d bytes, has %d", total, len(seq))}
	}

	var labels []string
	for pos := 0; pos < total; {
		n := int(seq[pos])
		if n == 0 {
			break
		}
		if pos+1+n > total {
			return "", &CodecError{Reason: "CNAME label overruns payload"}
		}
		labels = append(labels, string(seq[pos+1:pos+1+n]))
		pos += 1 + n
	}

	return strings.Join(labels, "."), nil
}

// ClassifyRecord reads the two-byte type id from the header. Blobs shorter
// than the header, and types other than A and CNAME, are unclassified.
func ClassifyRecord(blob []byte) RecordKind {
	if len(blob) < recordHeaderLength {
		return RecordUnclassified
	}

	switch kind := RecordKind(binary.LittleEndian.Uint16(blob[2:4])); kind {
	case RecordA, RecordCNAME:
		return kind
	default:
		return RecordUnclassified
	}
}

// DecodedRecord is the display form of a dnsRecord value.
type DecodedRecord struct {
	Kind   RecordKind
	TypeID uint16
	TTL    uint32
	Value  string
}

// DecodeRecord parses a dnsRecord value for display. The payload length
// declared in the header must match the bytes present.
func DecodeRecord(blob []byte) (*DecodedRecord, error) {
	header, err := parseRecordHeader(blob)
	if err != nil {
		return nil, err
	}

	payload := blob[recordHeaderLength:]
	if int(header.DataLength) != len(payload) {
		return nil, &CodecError{Reason: fmt.Sprintf("header declares %d payload bytes, found %d", header.DataLength, len(payload))}
	}

	decoded := &DecodedRecord{
		Kind:   ClassifyRecord(blob),
		TypeID: header.Type,
		TTL:    header.TTL,
	}

	switch decoded.Kind {
	case RecordA:
		if len(payload) != 4 {
			return nil, &CodecError{Reason: fmt.Sprintf("A payload is %d bytes, expected 4", len(payload))}
		}
		decoded.Value = netip.AddrFrom4([4]byte(payload)).String()
	case RecordCNAME:
		target, err := decodeCountName(payload)
		if err != nil {
			return nil, err
		}
		decoded.Value = target
	}

	return decoded, nil
}
