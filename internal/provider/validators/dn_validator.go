package validators

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-ldap/ldap/v3"
	"github.com/hashicorp/terraform-plugin-framework/schema/validator"
)

var _ validator.String = dnValidator{}

// dnValidator checks DN syntax and, for domainOnly, that the DN ends in a
// domain component.
type dnValidator struct {
	domainOnly bool
}

func (v dnValidator) Description(_ context.Context) string {
	if v.domainOnly {
		return "value must be a Distinguished Name ending in DC components"
	}
	return "value must be a valid Distinguished Name (DN)"
}

func (v dnValidator) MarkdownDescription(ctx context.Context) string {
	return v.Description(ctx)
}

func (v dnValidator) ValidateString(ctx context.Context, request validator.StringRequest, response *validator.StringResponse) {
	if request.ConfigValue.IsNull() || request.ConfigValue.IsUnknown() {
		return
	}

	value := request.ConfigValue.ValueString()
	if problem := v.check(value); problem != "" {
		response.Diagnostics.AddAttributeError(
			request.Path,
			"Invalid Distinguished Name",
			fmt.Sprintf("The value %q is not a valid Distinguished Name: %s", value, problem),
		)
	}
}

func (v dnValidator) check(value string) string {
	if strings.TrimSpace(value) == "" {
		return "DN cannot be empty"
	}

	dn, err := ldap.ParseDN(value)
	if err != nil {
		return err.Error()
	}

	if !v.domainOnly {
		return ""
	}

	if len(dn.RDNs) == 0 {
		return "DN has no components"
	}
	last := dn.RDNs[len(dn.RDNs)-1]
	if len(last.Attributes) == 0 || !strings.EqualFold(last.Attributes[0].Type, "DC") {
		return "DN must end in a DC component"
	}
	return ""
}

// IsValidDN returns a validator which ensures the value parses as a DN.
// Unknown and null values are skipped.
func IsValidDN() validator.String {
	return dnValidator{}
}

// IsDomainDN is IsValidDN that also requires the DN to sit beneath a
// domain root, as zone and object DNs do.
func IsDomainDN() validator.String {
	return dnValidator{domainOnly: true}
}
