package validators

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/terraform-plugin-framework/schema/validator"
)

var _ validator.String = caseInsensitiveOneOfValidator{}

// caseInsensitiveOneOfValidator accepts any casing of one of validValues.
type caseInsensitiveOneOfValidator struct {
	validValues []string
}

// Description describes the validation in plain text formatting.
func (v caseInsensitiveOneOfValidator) Description(_ context.Context) string {
	return fmt.Sprintf("value must be one of: %s (case-insensitive)", strings.Join(v.validValues, ", "))
}

// MarkdownDescription describes the validation in Markdown formatting.
func (v caseInsensitiveOneOfValidator) MarkdownDescription(ctx context.Context) string {
	return v.Description(ctx)
}

// ValidateString performs the validation, skipping null and unknown values.
func (v caseInsensitiveOneOfValidator) ValidateString(ctx context.Context, request validator.StringRequest, response *validator.StringResponse) {
	if request.ConfigValue.IsNull() || request.ConfigValue.IsUnknown() {
		return
	}

	value := request.ConfigValue.ValueString()
	if Canonical(value, v.validValues...) != "" {
		return
	}

	response.Diagnostics.AddAttributeError(
		request.Path,
		"Invalid Value",
		fmt.Sprintf(
			"The value %q is not valid. Must be one of: %s (case-insensitive)",
			value,
			strings.Join(v.validValues, ", "),
		),
	)
}

// CaseInsensitiveOneOf returns a validator which ensures that any configured
// attribute value matches one of the provided values, ignoring case and
// surrounding whitespace. Unknown and null values are skipped.
func CaseInsensitiveOneOf(values ...string) validator.String {
	return caseInsensitiveOneOfValidator{
		validValues: values,
	}
}

// Canonical returns the entry of values matching value case-insensitively,
// or "" when none does.
func Canonical(value string, values ...string) string {
	normalized := strings.TrimSpace(value)
	for _, candidate := range values {
		if strings.EqualFold(normalized, candidate) {
			return candidate
		}
	}
	return ""
}
