// Package commands implements the adopsctl command tree.
package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/isometry/terraform-provider-adops/internal/cli/output"
	ldapclient "github.com/isometry/terraform-provider-adops/internal/ldap"
)

// Version information injected at build time.
var (
	Version = "dev"
	Commit  = "none"
)

// DirectoryFactory builds the directory a command runs against.
type DirectoryFactory func(cfg *ldapclient.Config) (*ldapclient.Directory, error)

// globalFlags holds the persistent flag values.
type globalFlags struct {
	ConfigFile string
	Output     string
	AsUser     string
	AsPassword string
	LogLevel   string
}

// app is the state shared by every command of one invocation.
type app struct {
	flags     globalFlags
	viper     *viper.Viper
	newDir    DirectoryFactory
	printer   *output.Printer
	discovery *ldapclient.SRVDiscovery
	config    *ldapclient.Config
	directory *ldapclient.Directory
}

// reportedError marks a failure whose details were already written to stdout.
type reportedError struct {
	error
}

func (e reportedError) Unwrap() error { return e.error }

// Reported reports whether err was already shown to the user.
func Reported(err error) bool {
	var r reportedError
	return errors.As(err, &r)
}

// Execute runs the command tree against the real directory.
func Execute() error {
	return NewRootCmd(ldapclient.NewDirectory).Execute()
}

// NewRootCmd builds a fresh command tree. Each call has its own flag and
// configuration state.
func NewRootCmd(newDir DirectoryFactory) *cobra.Command {
	a := &app{
		viper:     newViper(),
		newDir:    newDir,
		discovery: ldapclient.NewSRVDiscovery(),
	}

	root := &cobra.Command{
		Use:   "adopsctl",
		Short: "Active Directory operations from the command line",
		Long: `adopsctl manages DNS records, users, computers and group membership in
Active Directory over LDAPS.

Connection settings come from a YAML file (--config) and ADOPS_* environment
variables, for example ADOPS_SERVER_URL, ADOPS_BASE_DN, ADOPS_USERNAME and
ADOPS_PASSWORD. Operations run as the configured service account unless
--as-user and --as-password name an actor to bind as instead.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.flags.ConfigFile, "config", "", "Path to a YAML configuration file")
	flags.StringVarP(&a.flags.Output, "output", "o", "table", "Output format (table|json|yaml)")
	flags.StringVar(&a.flags.AsUser, "as-user", "", "Bind as this actor instead of the service account (env ADOPS_AS_USER)")
	flags.StringVar(&a.flags.AsPassword, "as-password", "", "Password of the actor (env ADOPS_AS_PASSWORD)")
	flags.StringVar(&a.flags.LogLevel, "log-level", "off", "Log level written to stderr (off|error|warn|info|debug|trace)")

	root.AddCommand(
		newVersionCmd(),
		newLoginCmd(a),
		newWhoAmICmd(a),
		newZonesCmd(a),
		newRecordsCmd(a),
		newUsersCmd(a),
		newComputersCmd(a),
		newGroupsCmd(a),
		newObjectsCmd(a),
	)

	root.CompletionOptions.DisableDefaultCmd = true

	return root
}

// setup runs before every command: it fixes the output format and installs
// the logger. Configuration is loaded on first use by dir.
func (a *app) setup(cmd *cobra.Command) error {
	format, err := output.ParseFormat(a.flags.Output)
	if err != nil {
		return err
	}
	a.printer = output.NewPrinter(cmd.OutOrStdout(), format)

	ctx, err := newLoggerContext(cmd.Context(), a.flags.LogLevel)
	if err != nil {
		return err
	}
	cmd.SetContext(ctx)

	return nil
}

// dir returns the directory, loading configuration on first call.
func (a *app) dir(ctx context.Context) (*ldapclient.Directory, error) {
	if a.directory != nil {
		return a.directory, nil
	}

	cfg, err := loadConfig(ctx, a.viper, a.flags.ConfigFile, a.discovery)
	if err != nil {
		return nil, err
	}

	directory, err := a.newDir(cfg)
	if err != nil {
		return nil, err
	}

	a.config = cfg
	a.directory = directory
	return directory, nil
}

// actor returns the identity named by --as-user/--as-password or their
// environment variables, or nil for the service account.
func (a *app) actor() *ldapclient.Actor {
	name := a.flags.AsUser
	if name == "" {
		name = a.viper.GetString("as_user")
	}
	secret := a.flags.AsPassword
	if secret == "" {
		secret = a.viper.GetString("as_password")
	}
	if name == "" || secret == "" {
		return nil
	}
	return &ldapclient.Actor{Name: name, Secret: secret}
}

// report prints the outcome of a mutation. A failed outcome in table format
// is returned as a plain error; in the structured formats it is printed and
// returned as already reported.
func (a *app) report(outcome ldapclient.Outcome) error {
	result := output.Result{Success: outcome.Success, Message: outcome.Message, DN: outcome.DN}

	if outcome.Success {
		return a.printer.Result(result)
	}

	err := outcome.Err
	if err == nil {
		err = errors.New(outcome.Message)
	}
	if a.printer.Format() == output.FormatTable {
		return err
	}
	if printErr := a.printer.Result(result); printErr != nil {
		return printErr
	}
	return reportedError{err}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("adopsctl %s (commit %s)\n", Version, Commit)
		},
	}
}
