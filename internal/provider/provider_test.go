package provider

import (
	"testing"

	"github.com/hashicorp/terraform-plugin-framework/providerserver"
	"github.com/hashicorp/terraform-plugin-go/tfprotov6"
	"github.com/hashicorp/terraform-plugin-testing/helper/resource"
)

// testAccProtoV6ProviderFactories is used to instantiate a provider during acceptance testing.
// The factory function is called for each Terraform CLI command to create a provider
// server that the CLI can connect to and interact with.
var testAccProtoV6ProviderFactories = map[string]func() (tfprotov6.ProviderServer, error){
	"adops": providerserver.NewProtocol6WithError(New("test")()),
}

func testAccPreCheck(t *testing.T) {
	testAccPreCheckWithConfig(t)
}

// TestAccProvider_WhoAmI configures the provider against a real domain
// controller and checks the bind identity.
func TestAccProvider_WhoAmI(t *testing.T) {
	config := testAccPreCheckWithConfig(t)

	resource.Test(t, resource.TestCase{
		ProtoV6ProviderFactories: testAccProtoV6ProviderFactories,
		Steps: []resource.TestStep{
			{
				Config: TestProviderConfig() + `data "adops_whoami" "test" {}`,
				Check: resource.ComposeAggregateTestCheckFunc(
					resource.TestCheckResourceAttr("data.adops_whoami.test", "identity", config.Username),
					resource.TestCheckResourceAttr("data.adops_whoami.test", "actor", "false"),
				),
			},
		},
	})
}

// TestAccProvider_DNSZones lists the zones of the test domain.
func TestAccProvider_DNSZones(t *testing.T) {
	testAccPreCheck(t)

	resource.Test(t, resource.TestCase{
		ProtoV6ProviderFactories: testAccProtoV6ProviderFactories,
		Steps: []resource.TestStep{
			{
				Config: TestProviderConfig() + `data "adops_dns_zones" "test" {}`,
				Check: resource.ComposeAggregateTestCheckFunc(
					resource.TestCheckResourceAttrSet("data.adops_dns_zones.test", "zone_count"),
					resource.TestCheckResourceAttrSet("data.adops_dns_zones.test", "zones.0.dn"),
				),
			},
		},
	})
}
