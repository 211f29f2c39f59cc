package validators_test

import (
	"strings"
	"testing"

	"github.com/hashicorp/terraform-plugin-framework/path"
	"github.com/hashicorp/terraform-plugin-framework/schema/validator"
	"github.com/hashicorp/terraform-plugin-framework/types"

	"github.com/isometry/terraform-provider-adops/internal/provider/validators"
)

func TestDNValidator(t *testing.T) {
	t.Parallel()

	type testCase struct {
		val          types.String
		domainOnly   bool
		expectError  bool
		detailSuffix string
	}

	testCases := map[string]testCase{
		"valid DN simple": {
			val: types.StringValue("CN=Test,DC=example,DC=com"),
		},
		"valid DN with escaped characters": {
			val: types.StringValue("CN=Test\\, User,OU=Users,DC=example,DC=com"),
		},
		"invalid DN empty": {
			val:          types.StringValue(""),
			expectError:  true,
			detailSuffix: "DN cannot be empty",
		},
		"invalid DN malformed": {
			val:         types.StringValue("invalid-dn"),
			expectError: true,
		},
		"invalid DN missing attribute": {
			val:         types.StringValue("=Test,DC=example,DC=com"),
			expectError: true,
		},
		"zone DN": {
			val:        types.StringValue("DC=corp.local,CN=MicrosoftDNS,DC=DomainDnsZones,DC=corp,DC=local"),
			domainOnly: true,
		},
		"domain DN not ending in DC": {
			val:          types.StringValue("CN=Computers,OU=Servers"),
			domainOnly:   true,
			expectError:  true,
			detailSuffix: "DN must end in a DC component",
		},
		"null value": {
			val: types.StringNull(),
		},
		"unknown value": {
			val: types.StringUnknown(),
		},
	}

	for name, test := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			request := validator.StringRequest{
				Path:        path.Root("test"),
				ConfigValue: test.val,
			}
			response := validator.StringResponse{}

			v := validators.IsValidDN()
			if test.domainOnly {
				v = validators.IsDomainDN()
			}
			v.ValidateString(t.Context(), request, &response)

			if !response.Diagnostics.HasError() && test.expectError {
				t.Fatal("expected error, got no error")
			}
			if response.Diagnostics.HasError() && !test.expectError {
				t.Fatalf("got unexpected error: %s", response.Diagnostics)
			}

			if test.expectError {
				if len(response.Diagnostics) != 1 {
					t.Fatalf("expected exactly 1 error, got %d", len(response.Diagnostics))
				}
				err := response.Diagnostics[0]
				if err.Summary() != "Invalid Distinguished Name" {
					t.Errorf("unexpected summary %q", err.Summary())
				}
				if test.detailSuffix != "" && !strings.HasSuffix(err.Detail(), test.detailSuffix) {
					t.Errorf("expected detail to end with %q, got %q", test.detailSuffix, err.Detail())
				}
			}
		})
	}
}

func TestDNValidatorDescription(t *testing.T) {
	expected := "value must be a valid Distinguished Name (DN)"
	if got := validators.IsValidDN().Description(t.Context()); got != expected {
		t.Errorf("expected description %q, got %q", expected, got)
	}

	expected = "value must be a Distinguished Name ending in DC components"
	if got := validators.IsDomainDN().MarkdownDescription(t.Context()); got != expected {
		t.Errorf("expected markdown description %q, got %q", expected, got)
	}
}
