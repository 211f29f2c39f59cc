package planmodifiers_test

import (
	"testing"

	"github.com/hashicorp/terraform-plugin-framework/path"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/planmodifier"
	"github.com/hashicorp/terraform-plugin-framework/tfsdk"
	"github.com/hashicorp/terraform-plugin-framework/types"
	"github.com/hashicorp/terraform-plugin-go/tftypes"

	"github.com/isometry/terraform-provider-adops/internal/provider/planmodifiers"
)

func TestUseNameForSAMAccountName_Description(t *testing.T) {
	modifier := planmodifiers.UseNameForSAMAccountName()

	expected := "derives the machine account name from name as NAME$"
	if actual := modifier.Description(t.Context()); actual != expected {
		t.Errorf("Expected description %q, got %q", expected, actual)
	}

	expected = "derives the machine account name from `name` as `NAME$`"
	if actual := modifier.MarkdownDescription(t.Context()); actual != expected {
		t.Errorf("Expected markdown description %q, got %q", expected, actual)
	}
}

func TestUseNameForSAMAccountName_PlanModifyString(t *testing.T) {
	tests := map[string]struct {
		nameValue          types.String
		expectedPlanValue  types.String
		expectDiagnostics  bool
		expectErrorSummary string
	}{
		"lowercase_name": {
			nameValue:         types.StringValue("web01"),
			expectedPlanValue: types.StringValue("WEB01$"),
		},
		"hyphenated_name": {
			nameValue:         types.StringValue("app-srv-2"),
			expectedPlanValue: types.StringValue("APP-SRV-2$"),
		},
		"name_at_netbios_limit": {
			nameValue:         types.StringValue("ABCDEFGHIJKLMNO"),
			expectedPlanValue: types.StringValue("ABCDEFGHIJKLMNO$"),
		},
		"name_over_netbios_limit": {
			nameValue:          types.StringValue("ABCDEFGHIJKLMNOP"),
			expectedPlanValue:  types.StringUnknown(),
			expectDiagnostics:  true,
			expectErrorSummary: "Invalid Computer Name",
		},
		"name_with_invalid_characters": {
			nameValue:          types.StringValue("web_01"),
			expectedPlanValue:  types.StringUnknown(),
			expectDiagnostics:  true,
			expectErrorSummary: "Invalid Computer Name",
		},
		"name_unknown": {
			nameValue:         types.StringUnknown(),
			expectedPlanValue: types.StringUnknown(),
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			modifier := planmodifiers.UseNameForSAMAccountName()

			nameValue, err := test.nameValue.ToTerraformValue(t.Context())
			if err != nil {
				t.Fatalf("Failed to convert name value: %v", err)
			}

			plan := tfsdk.Plan{
				Raw: tftypes.NewValue(tftypes.Object{
					AttributeTypes: map[string]tftypes.Type{
						"name":             tftypes.String,
						"sam_account_name": tftypes.String,
					},
				}, map[string]tftypes.Value{
					"name":             nameValue,
					"sam_account_name": tftypes.NewValue(tftypes.String, tftypes.UnknownValue),
				}),
				Schema: schema.Schema{
					Attributes: map[string]schema.Attribute{
						"name": schema.StringAttribute{
							Required: true,
						},
						"sam_account_name": schema.StringAttribute{
							Computed: true,
						},
					},
				},
			}

			req := planmodifier.StringRequest{
				Path:        path.Root("sam_account_name"),
				ConfigValue: types.StringNull(),
				Plan:        plan,
				PlanValue:   types.StringUnknown(),
			}
			resp := &planmodifier.StringResponse{
				PlanValue: types.StringUnknown(),
			}

			modifier.PlanModifyString(t.Context(), req, resp)

			if test.expectDiagnostics != resp.Diagnostics.HasError() {
				t.Fatalf("Expected diagnostics=%v, got: %v", test.expectDiagnostics, resp.Diagnostics)
			}

			if test.expectDiagnostics {
				if summary := resp.Diagnostics.Errors()[0].Summary(); summary != test.expectErrorSummary {
					t.Errorf("Expected error summary %q, got %q", test.expectErrorSummary, summary)
				}
			}

			if !resp.PlanValue.Equal(test.expectedPlanValue) {
				t.Errorf("Expected plan value %v, got %v", test.expectedPlanValue, resp.PlanValue)
			}
		})
	}
}
