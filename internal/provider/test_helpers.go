package provider

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/hashicorp/terraform-plugin-testing/helper/resource"
	"github.com/hashicorp/terraform-plugin-testing/terraform"

	ldapclient "github.com/isometry/terraform-provider-adops/internal/ldap"
)

// Test environment configuration constants.
const (
	// Environment variables for test configuration.
	EnvTestLDAPURL  = "AD_TEST_LDAP_URL"
	EnvTestBaseDN   = "AD_TEST_BASE_DN"
	EnvTestDomain   = "AD_TEST_DOMAIN"
	EnvTestUsername = "AD_TEST_USERNAME"
	EnvTestPassword = "AD_TEST_PASSWORD"
	EnvTestZoneDN   = "AD_TEST_ZONE_DN"
	EnvTestGroup    = "AD_TEST_GROUP"
	EnvTestKeytab   = "AD_TEST_KEYTAB"
	EnvTestRealm    = "AD_TEST_REALM"

	// Default values for testing.
	DefaultTestBaseDN = "DC=example,DC=com"

	// Test object name prefixes to avoid conflicts. Computer names are
	// limited to 15 characters, so prefixes stay short.
	TestUserPrefix     = "tfu-"
	TestComputerPrefix = "tfc-"
	TestRecordPrefix   = "tfr-"
)

// TestConfig holds common test configuration.
type TestConfig struct {
	LDAPURL     string
	BaseDN      string
	Domain      string
	Username    string
	Password    string
	ZoneDN      string
	Group       string
	Keytab      string
	Realm       string
	UseKerberos bool
}

// GetTestConfig returns the test configuration from environment variables.
func GetTestConfig() *TestConfig {
	config := &TestConfig{
		LDAPURL:  os.Getenv(EnvTestLDAPURL),
		BaseDN:   getEnvWithDefault(EnvTestBaseDN, DefaultTestBaseDN),
		Domain:   os.Getenv(EnvTestDomain),
		Username: os.Getenv(EnvTestUsername),
		Password: os.Getenv(EnvTestPassword),
		ZoneDN:   os.Getenv(EnvTestZoneDN),
		Group:    os.Getenv(EnvTestGroup),
		Keytab:   os.Getenv(EnvTestKeytab),
		Realm:    os.Getenv(EnvTestRealm),
	}

	config.UseKerberos = config.Keytab != "" && config.Realm != ""

	return config
}

// IsAccTest returns true if acceptance tests should run.
func IsAccTest() bool {
	return os.Getenv("TF_ACC") != ""
}

// SkipIfNotAccTest skips the test if TF_ACC is not set.
func SkipIfNotAccTest(t *testing.T) {
	if !IsAccTest() {
		t.Skip("Skipping acceptance test - set TF_ACC=1 to run")
	}
}

// testAccPreCheckWithConfig validates the acceptance test environment.
func testAccPreCheckWithConfig(t *testing.T) *TestConfig {
	SkipIfNotAccTest(t)

	config := GetTestConfig()

	if config.LDAPURL == "" {
		t.Skipf("Skipping test: %s must be set to a real domain controller", EnvTestLDAPURL)
	}

	if config.Username == "" {
		t.Skipf("Skipping test: %s must be set", EnvTestUsername)
	}

	if config.Password == "" && !config.UseKerberos {
		t.Skipf("Skipping test: %s must be set (or configure Kerberos)", EnvTestPassword)
	}

	return config
}

// testAccPreCheckZone additionally requires a zone to create records in.
func testAccPreCheckZone(t *testing.T) *TestConfig {
	config := testAccPreCheckWithConfig(t)
	if config.ZoneDN == "" {
		t.Skipf("Skipping test: %s must be set", EnvTestZoneDN)
	}
	return config
}

// testAccPreCheckGroup additionally requires a group to add members to.
func testAccPreCheckGroup(t *testing.T) *TestConfig {
	config := testAccPreCheckWithConfig(t)
	if config.Group == "" {
		t.Skipf("Skipping test: %s must be set", EnvTestGroup)
	}
	return config
}

// TestProviderConfig generates provider configuration for tests.
func TestProviderConfig() string {
	config := GetTestConfig()

	var providerConfig strings.Builder
	providerConfig.WriteString("provider \"adops\" {\n")
	fmt.Fprintf(&providerConfig, "  ldap_url = %q\n", config.LDAPURL)
	fmt.Fprintf(&providerConfig, "  base_dn  = %q\n", config.BaseDN)
	if config.Domain != "" {
		fmt.Fprintf(&providerConfig, "  domain   = %q\n", config.Domain)
	}
	fmt.Fprintf(&providerConfig, "  username = %q\n", config.Username)

	if config.UseKerberos {
		fmt.Fprintf(&providerConfig, "  kerberos_realm  = %q\n", config.Realm)
		fmt.Fprintf(&providerConfig, "  kerberos_keytab = %q\n", config.Keytab)
	} else {
		fmt.Fprintf(&providerConfig, "  password = %q\n", config.Password)
	}

	providerConfig.WriteString("}\n")
	return providerConfig.String()
}

// GenerateTestName returns prefix followed by random hex, at most 15
// characters, so the result is valid for every object kind.
func GenerateTestName(prefix string) string {
	name := prefix + strings.ReplaceAll(uuid.New().String(), "-", "")
	if len(name) > 15 {
		name = name[:15]
	}
	return name
}

// TestDataGenerator provides test data generation utilities.
type TestDataGenerator struct {
	config *TestConfig
}

// NewTestDataGenerator creates a new test data generator.
func NewTestDataGenerator() *TestDataGenerator {
	return &TestDataGenerator{
		config: GetTestConfig(),
	}
}

// GenerateDNSRecordConfig generates a test DNS record configuration.
func (g *TestDataGenerator) GenerateDNSRecordConfig(name, recordType, value string) string {
	return fmt.Sprintf(`
resource "adops_dns_record" "test" {
  zone_dn = %[1]q
  name    = %[2]q
  type    = %[3]q
  value   = %[4]q
}`, g.config.ZoneDN, name, recordType, value)
}

// GenerateUserConfig generates a test user configuration.
func (g *TestDataGenerator) GenerateUserConfig(accountName, password string) string {
	return fmt.Sprintf(`
resource "adops_user" "test" {
  account_name = %[1]q
  password     = %[2]q
  given_name   = "Test"
  surname      = "User"
}`, accountName, password)
}

// GenerateComputerConfig generates a test computer configuration.
func (g *TestDataGenerator) GenerateComputerConfig(name string) string {
	return fmt.Sprintf(`
resource "adops_computer" "test" {
  name = %[1]q
}`, name)
}

// GenerateGroupMemberConfig adds the test user to the configured group.
func (g *TestDataGenerator) GenerateGroupMemberConfig() string {
	return fmt.Sprintf(`
resource "adops_group_member" "test" {
  group = %[1]q
  user  = adops_user.test.account_name
}`, g.config.Group)
}

// testDirectory builds a directory from the acceptance test environment.
func testDirectory() (*ldapclient.Directory, error) {
	config := GetTestConfig()

	cfg := ldapclient.NewConfig()
	cfg.ServerURL = config.LDAPURL
	cfg.BaseDN = config.BaseDN
	cfg.Domain = config.Domain
	cfg.Username = config.Username
	cfg.Password = config.Password
	cfg.KerberosRealm = config.Realm
	cfg.KerberosKeytab = config.Keytab

	return ldapclient.NewDirectory(cfg)
}

// Test check functions for acceptance tests

// TestCheckUserExists verifies that the user in state exists in AD.
func TestCheckUserExists(resourceName string) resource.TestCheckFunc {
	return func(s *terraform.State) error {
		rs, ok := s.RootModule().Resources[resourceName]
		if !ok {
			return fmt.Errorf("resource not found: %s", resourceName)
		}

		directory, err := testDirectory()
		if err != nil {
			return fmt.Errorf("failed to create directory: %v", err)
		}

		users, err := directory.ListUsers(context.Background(), nil)
		if err != nil {
			return fmt.Errorf("failed to list users: %v", err)
		}

		for _, user := range users {
			if strings.EqualFold(user.AccountName, rs.Primary.Attributes["account_name"]) {
				if !user.Enabled {
					return fmt.Errorf("user %s exists but is disabled", user.AccountName)
				}
				return nil
			}
		}

		return fmt.Errorf("user %s does not exist", rs.Primary.Attributes["account_name"])
	}
}

// TestCheckLogin verifies that the user in state can bind with password.
func TestCheckLogin(resourceName, password string) resource.TestCheckFunc {
	return func(s *terraform.State) error {
		rs, ok := s.RootModule().Resources[resourceName]
		if !ok {
			return fmt.Errorf("resource not found: %s", resourceName)
		}

		directory, err := testDirectory()
		if err != nil {
			return fmt.Errorf("failed to create directory: %v", err)
		}

		outcome := directory.VerifyLogin(context.Background(), rs.Primary.Attributes["principal_name"], password)
		if !outcome.Success {
			return fmt.Errorf("login failed: %s", outcome.Message)
		}
		return nil
	}
}

// TestCheckObjectsDestroyed verifies that every object of resourceType in
// state is gone, by DN.
func TestCheckObjectsDestroyed(resourceType string) resource.TestCheckFunc {
	return func(s *terraform.State) error {
		directory, err := testDirectory()
		if err != nil {
			return fmt.Errorf("failed to create directory: %v", err)
		}

		ctx := context.Background()

		for _, rs := range s.RootModule().Resources {
			if rs.Type != resourceType {
				continue
			}

			dn := rs.Primary.Attributes["dn"]
			var dns []string

			switch resourceType {
			case "adops_user":
				users, err := directory.ListUsers(ctx, nil)
				if err != nil {
					return err
				}
				for _, user := range users {
					dns = append(dns, user.DN)
				}
			case "adops_computer":
				computers, err := directory.ListComputers(ctx, nil)
				if err != nil {
					return err
				}
				for _, computer := range computers {
					dns = append(dns, computer.DN)
				}
			case "adops_dns_record":
				records, err := directory.ListRecords(ctx, nil, rs.Primary.Attributes["zone_dn"])
				if err != nil {
					return err
				}
				for _, record := range records {
					dns = append(dns, record.DN)
				}
			default:
				return fmt.Errorf("unsupported resource type %s", resourceType)
			}

			for _, candidate := range dns {
				if strings.EqualFold(candidate, dn) {
					return fmt.Errorf("%s %s still exists", resourceType, dn)
				}
			}
		}

		return nil
	}
}

// TestCheckNotMember verifies that group_member resources in state are gone.
func TestCheckNotMember(s *terraform.State) error {
	directory, err := testDirectory()
	if err != nil {
		return fmt.Errorf("failed to create directory: %v", err)
	}

	for _, rs := range s.RootModule().Resources {
		if rs.Type != "adops_group_member" {
			continue
		}

		members, err := directory.GroupMembers(context.Background(), nil, rs.Primary.Attributes["group"])
		if err != nil {
			return err
		}
		for _, member := range members {
			if strings.EqualFold(member.AccountName, rs.Primary.Attributes["user"]) {
				return fmt.Errorf("%s is still a member of %s", member.AccountName, rs.Primary.Attributes["group"])
			}
		}
	}

	return nil
}

// getEnvWithDefault returns the environment variable value or a default.
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
