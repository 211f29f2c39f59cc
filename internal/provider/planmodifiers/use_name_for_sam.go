package planmodifiers

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/terraform-plugin-framework/path"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/planmodifier"
	"github.com/hashicorp/terraform-plugin-framework/types"

	ldapclient "github.com/isometry/terraform-provider-adops/internal/ldap"
)

// netbiosNameLimit is the longest computer name a sAMAccountName can carry
// before the trailing "$".
const netbiosNameLimit = 15

// useNameForSAMAccountName derives a machine account name from name.
type useNameForSAMAccountName struct{}

// UseNameForSAMAccountName returns a plan modifier that sets sam_account_name
// to the upper-cased computer name followed by "$". Names the directory would
// reject, or that exceed the NetBIOS limit, produce an error at plan time.
func UseNameForSAMAccountName() planmodifier.String {
	return useNameForSAMAccountName{}
}

func (m useNameForSAMAccountName) Description(_ context.Context) string {
	return "derives the machine account name from name as NAME$"
}

func (m useNameForSAMAccountName) MarkdownDescription(_ context.Context) string {
	return "derives the machine account name from `name` as `NAME$`"
}

func (m useNameForSAMAccountName) PlanModifyString(ctx context.Context, req planmodifier.StringRequest, resp *planmodifier.StringResponse) {
	var name types.String
	resp.Diagnostics.Append(req.Plan.GetAttribute(ctx, path.Root("name"), &name)...)
	if resp.Diagnostics.HasError() {
		return
	}

	if name.IsUnknown() || name.IsNull() {
		return
	}

	safe, err := ldapclient.ValidateName(name.ValueString())
	if err != nil {
		resp.Diagnostics.AddAttributeError(
			path.Root("name"),
			"Invalid Computer Name",
			fmt.Sprintf("The computer name %q cannot be used: %s", name.ValueString(), err.Error()),
		)
		return
	}

	if len(safe) > netbiosNameLimit {
		resp.Diagnostics.AddAttributeError(
			path.Root("name"),
			"Invalid Computer Name",
			fmt.Sprintf(
				"The computer name %q is %d characters long, which exceeds the %d character NetBIOS limit.",
				safe, len(safe), netbiosNameLimit,
			),
		)
		return
	}

	resp.PlanValue = types.StringValue(strings.ToUpper(safe) + "$")
}
