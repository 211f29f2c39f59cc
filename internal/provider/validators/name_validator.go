package validators

import (
	"context"
	"fmt"

	"github.com/hashicorp/terraform-plugin-framework/schema/validator"

	ldapclient "github.com/isometry/terraform-provider-adops/internal/ldap"
)

var _ validator.String = nameValidator{}

// nameValidator applies one of the directory's name rules at plan time so a
// bad name never reaches the server.
type nameValidator struct {
	description string
	markdown    string
	check       func(string) (string, error)
}

// Description describes the validation in plain text formatting.
func (v nameValidator) Description(_ context.Context) string {
	return v.description
}

// MarkdownDescription describes the validation in Markdown formatting.
func (v nameValidator) MarkdownDescription(_ context.Context) string {
	return v.markdown
}

// ValidateString performs the validation.
func (v nameValidator) ValidateString(ctx context.Context, request validator.StringRequest, response *validator.StringResponse) {
	if request.ConfigValue.IsNull() || request.ConfigValue.IsUnknown() {
		return
	}

	value := request.ConfigValue.ValueString()
	if _, err := v.check(value); err != nil {
		response.Diagnostics.AddAttributeError(
			request.Path,
			"Invalid Name",
			fmt.Sprintf("The value %q is not a valid name: %s", value, err.Error()),
		)
	}
}

// IsValidName returns a validator enforcing the short-name rule used for
// account, computer and host names.
func IsValidName() validator.String {
	return nameValidator{
		description: "value must contain only letters, digits and hyphens",
		markdown:    "value must contain only `A-Z`, `a-z`, `0-9` and `-`",
		check:       ldapclient.ValidateName,
	}
}

// IsValidGroupName returns a validator for group common names, which may
// contain spaces and punctuation but no control characters.
func IsValidGroupName() validator.String {
	return nameValidator{
		description: "value must be a non-empty group name without control characters",
		markdown:    "value must be a non-empty group name without control characters",
		check:       ldapclient.ValidateGroupName,
	}
}
