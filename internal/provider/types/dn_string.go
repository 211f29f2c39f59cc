package types

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-ldap/ldap/v3"
	"github.com/hashicorp/terraform-plugin-framework/attr"
	"github.com/hashicorp/terraform-plugin-framework/attr/xattr"
	"github.com/hashicorp/terraform-plugin-framework/diag"
	"github.com/hashicorp/terraform-plugin-framework/types/basetypes"
	"github.com/hashicorp/terraform-plugin-go/tftypes"
)

var (
	_ basetypes.StringTypable                    = DNStringType{}
	_ basetypes.StringValuableWithSemanticEquals = DNStringValue{}
	_ xattr.ValidateableAttribute                = DNStringValue{}
)

// DNStringType holds zone, record and object DNs. The directory may return a
// DN in a different case or spacing than configured; such values compare
// equal so they never show as drift.
type DNStringType struct {
	basetypes.StringType
}

// String returns a human readable name for the type.
func (t DNStringType) String() string { return "DNStringType" }

// ValueType returns the value type of this type.
func (t DNStringType) ValueType(context.Context) attr.Value { return DNStringValue{} }

// Equal reports whether o is also a DNStringType.
func (t DNStringType) Equal(o attr.Type) bool {
	other, ok := o.(DNStringType)
	return ok && t.StringType.Equal(other.StringType)
}

// ValueFromString wraps a plain string value as a DNStringValue.
func (t DNStringType) ValueFromString(_ context.Context, in basetypes.StringValue) (basetypes.StringValuable, diag.Diagnostics) {
	return DNStringValue{StringValue: in}, nil
}

// ValueFromTerraform converts a Terraform value into a DNStringValue.
func (t DNStringType) ValueFromTerraform(ctx context.Context, in tftypes.Value) (attr.Value, error) {
	value, err := t.StringType.ValueFromTerraform(ctx, in)
	if err != nil {
		return nil, err
	}

	str, ok := value.(basetypes.StringValue)
	if !ok {
		return nil, fmt.Errorf("expected basetypes.StringValue, got: %T", value)
	}
	return DNStringValue{StringValue: str}, nil
}

// DNStringValue is a DN compared by parsed RDNs rather than by text.
type DNStringValue struct {
	basetypes.StringValue
}

// Type returns DNStringType.
func (v DNStringValue) Type(context.Context) attr.Type { return DNStringType{} }

// Equal compares text exactly; use StringSemanticEquals to compare entries.
func (v DNStringValue) Equal(o attr.Value) bool {
	other, ok := o.(DNStringValue)
	return ok && v.StringValue.Equal(other.StringValue)
}

// ValidateAttribute rejects a configured value that is not a DN.
func (v DNStringValue) ValidateAttribute(_ context.Context, req xattr.ValidateAttributeRequest, resp *xattr.ValidateAttributeResponse) {
	if v.IsNull() || v.IsUnknown() {
		return
	}

	if _, err := ldap.ParseDN(v.ValueString()); err != nil || strings.TrimSpace(v.ValueString()) == "" {
		resp.Diagnostics.AddAttributeError(
			req.Path,
			"Invalid Distinguished Name",
			fmt.Sprintf("%q is not a valid distinguished name, for example DC=corp.local,CN=MicrosoftDNS,DC=DomainDnsZones,DC=corp,DC=local.", v.ValueString()),
		)
	}
}

// StringSemanticEquals reports whether both values name the same entry.
func (v DNStringValue) StringSemanticEquals(_ context.Context, newValuable basetypes.StringValuable) (bool, diag.Diagnostics) {
	var diags diag.Diagnostics

	newValue, ok := newValuable.(DNStringValue)
	if !ok {
		diags.AddError(
			"Semantic Equality Check Error",
			fmt.Sprintf("Expected DNStringValue, but got: %T. This is always an error in the provider.", newValuable),
		)
		return false, diags
	}

	if v.IsNull() || v.IsUnknown() || newValue.IsNull() || newValue.IsUnknown() {
		return v.Equal(newValue), diags
	}
	return SameDN(v.ValueString(), newValue.ValueString()), diags
}

// SameDN compares parsed DNs case-insensitively. Text that does not parse
// is compared with strings.EqualFold after trimming.
func SameDN(a, b string) bool {
	if a == b {
		return true
	}

	left, err := ldap.ParseDN(a)
	if err != nil {
		return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
	}
	right, err := ldap.ParseDN(b)
	if err != nil {
		return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
	}
	return left.EqualFold(right)
}

// DNString returns a known DN value.
func DNString(value string) DNStringValue {
	return DNStringValue{StringValue: basetypes.NewStringValue(value)}
}

// DNStringNull returns a null DN value.
func DNStringNull() DNStringValue {
	return DNStringValue{StringValue: basetypes.NewStringNull()}
}

// DNStringUnknown returns an unknown DN value.
func DNStringUnknown() DNStringValue {
	return DNStringValue{StringValue: basetypes.NewStringUnknown()}
}
