package ldap

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/terraform-plugin-log/tflog"
)

// Outcome is the uniform result of a mutating operation. Err keeps the
// structured error for callers that inspect it with errors.As.
type Outcome struct {
	Success bool
	Message string
	DN      string
	Err     error
}

func succeeded(dn, format string, args ...any) Outcome {
	return Outcome{Success: true, Message: fmt.Sprintf(format, args...), DN: dn}
}

func failed(err error) Outcome {
	return Outcome{Success: false, Message: err.Error(), Err: err}
}

// Directory runs each operation in its own session: open as the resolved
// identity, perform, close. Mutations return an Outcome; listings return an
// empty slice together with the error when they fail.
type Directory struct {
	config   *Config
	provider *ConnectionProvider
	resolver *Resolver
	zones    *ZoneCatalog
	records  *RecordRepository
	objects  *ObjectManager
}

// NewDirectory validates cfg and wires the components over a TLS transport.
func NewDirectory(cfg *Config) (*Directory, error) {
	provider, err := NewConnectionProvider(cfg)
	if err != nil {
		return nil, err
	}
	return NewDirectoryWithProvider(provider), nil
}

// NewDirectoryWithProvider wires the components over an existing provider.
func NewDirectoryWithProvider(provider *ConnectionProvider) *Directory {
	cfg := provider.Config()
	resolver := NewResolver(cfg)
	objects := NewObjectManager(cfg, resolver)

	return &Directory{
		config:   cfg,
		provider: provider,
		resolver: resolver,
		zones:    NewZoneCatalog(cfg),
		records:  NewRecordRepository(cfg, objects),
		objects:  objects,
	}
}

// Config returns the directory configuration. Callers must not modify it.
func (d *Directory) Config() *Config {
	return d.config
}

// Objects exposes the object manager for attribute derivation that needs no session.
func (d *Directory) Objects() *ObjectManager {
	return d.objects
}

func (d *Directory) withSession(ctx context.Context, actor *Actor, operation string, fields map[string]any, fn func(Session) error) error {
	if fields == nil {
		fields = map[string]any{}
	}
	fields["actor"] = actor.valid()

	return LogOperation(ctx, Subsystem, operation, fields, func() error {
		s, err := d.provider.Open(ctx, actor)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := s.Close(); cerr != nil {
				tflog.SubsystemDebug(ctx, Subsystem, "Session close failed", map[string]any{"error": cerr.Error()})
			}
		}()

		return fn(s)
	})
}

// degrade logs a failed bulk read as a warning.
func degrade(ctx context.Context, operation string, err error) {
	tflog.SubsystemWarn(ctx, Subsystem, "Listing failed, returning empty result", map[string]any{
		"operation":      operation,
		"error":          err.Error(),
		"error_category": string(CategoryOf(err)),
	})
}

// VerifyLogin checks name and secret with a bind.
func (d *Directory) VerifyLogin(ctx context.Context, name, secret string) Outcome {
	err := LogOperation(ctx, Subsystem, "verify_login", map[string]any{"name": name}, func() error {
		return d.provider.VerifyLogin(ctx, name, secret)
	})
	if err != nil {
		return failed(err)
	}
	return succeeded("", "login succeeded for %s", name)
}

// WhoAmI binds as actor, or the fallback account when actor is nil, and
// returns the principal the session is bound as.
func (d *Directory) WhoAmI(ctx context.Context, actor *Actor) (string, error) {
	var identity string
	err := d.withSession(ctx, actor, "whoami", nil, func(s Session) error {
		identity = s.Identity()
		return nil
	})
	return identity, err
}

// ListZones returns the zones of the configured domain.
func (d *Directory) ListZones(ctx context.Context, actor *Actor) ([]Zone, error) {
	var zones []Zone
	err := d.withSession(ctx, actor, "list_zones", nil, func(s Session) error {
		zones = d.zones.ListZones(ctx, s)
		return nil
	})
	if err != nil {
		degrade(ctx, "list_zones", err)
		return []Zone{}, err
	}
	return zones, nil
}

// ListRecords returns the visible records of a zone.
func (d *Directory) ListRecords(ctx context.Context, actor *Actor, zoneDN string) ([]ResourceRecord, error) {
	if strings.TrimSpace(zoneDN) == "" {
		return []ResourceRecord{}, NewValidationError("zone_dn", "zone DN cannot be empty")
	}

	var records []ResourceRecord
	err := d.withSession(ctx, actor, "list_records", map[string]any{"zone_dn": zoneDN}, func(s Session) error {
		var err error
		records, err = d.records.List(ctx, s, zoneDN)
		return err
	})
	if err != nil {
		degrade(ctx, "list_records", err)
		return []ResourceRecord{}, err
	}
	return records, nil
}

// CreateRecord adds an A or CNAME record to a zone.
func (d *Directory) CreateRecord(ctx context.Context, actor *Actor, zoneDN, hostname string, kind RecordKind, value string, ttl uint32) Outcome {
	host, err := ValidateName(hostname)
	if err != nil {
		return failed(err)
	}

	var dn string
	err = d.withSession(ctx, actor, "create_record", map[string]any{
		"zone_dn":  zoneDN,
		"hostname": host,
		"kind":     kind.String(),
	}, func(s Session) error {
		var err error
		dn, err = d.records.Create(ctx, s, zoneDN, host, kind, value, ttl)
		return err
	})
	if err != nil {
		if IsConflictError(err) {
			return Outcome{
				Message: fmt.Sprintf("record %s already exists, delete it first", host),
				Err:     err,
			}
		}
		return failed(err)
	}
	return succeeded(dn, "DNS record %s created", host)
}

// DeleteRecord removes a record node.
func (d *Directory) DeleteRecord(ctx context.Context, actor *Actor, recordDN string) Outcome {
	if strings.TrimSpace(recordDN) == "" {
		return failed(NewValidationError("dn", "DN cannot be empty"))
	}

	err := d.withSession(ctx, actor, "delete_record", map[string]any{"dn": recordDN}, func(s Session) error {
		return d.records.Delete(ctx, s, recordDN)
	})
	if err != nil {
		return failed(err)
	}
	return succeeded(recordDN, "DNS record deleted")
}

// DeleteObject removes any directory object.
func (d *Directory) DeleteObject(ctx context.Context, actor *Actor, dn string) Outcome {
	if strings.TrimSpace(dn) == "" {
		return failed(NewValidationError("dn", "DN cannot be empty"))
	}

	err := d.withSession(ctx, actor, "delete_object", map[string]any{"dn": dn}, func(s Session) error {
		return d.objects.DeleteObject(ctx, s, dn)
	})
	if err != nil {
		return failed(err)
	}
	return succeeded(dn, "object deleted")
}

// ListUsers returns user accounts.
func (d *Directory) ListUsers(ctx context.Context, actor *Actor) ([]User, error) {
	var users []User
	err := d.withSession(ctx, actor, "list_users", nil, func(s Session) error {
		var err error
		users, err = d.objects.ListUsers(ctx, s)
		return err
	})
	if err != nil {
		degrade(ctx, "list_users", err)
		return []User{}, err
	}
	return users, nil
}

// CreateUser provisions an enabled user account.
func (d *Directory) CreateUser(ctx context.Context, actor *Actor, accountName, secret, givenName, surname string) Outcome {
	name, err := ValidateName(accountName)
	if err != nil {
		return failed(err)
	}
	if secret == "" {
		return failed(NewValidationError("password", "password cannot be empty"))
	}

	var dn string
	err = d.withSession(ctx, actor, "create_user", map[string]any{"account_name": name}, func(s Session) error {
		var err error
		dn, err = d.objects.CreateUser(ctx, s, name, secret, givenName, surname)
		return err
	})
	if err != nil {
		return failed(err)
	}
	return succeeded(dn, "user %s created", name)
}

// ResetPassword sets a new password for userName.
func (d *Directory) ResetPassword(ctx context.Context, actor *Actor, userName, newSecret string) Outcome {
	name, err := ValidateName(userName)
	if err != nil {
		return failed(err)
	}
	if newSecret == "" {
		return failed(NewValidationError("password", "password cannot be empty"))
	}

	err = d.withSession(ctx, actor, "reset_password", map[string]any{"account_name": name}, func(s Session) error {
		return d.objects.ResetPassword(ctx, s, name, newSecret)
	})
	if err != nil {
		return failed(err)
	}
	return succeeded("", "password reset for %s", name)
}

// ListGroups returns groups.
func (d *Directory) ListGroups(ctx context.Context, actor *Actor) ([]Group, error) {
	var groups []Group
	err := d.withSession(ctx, actor, "list_groups", nil, func(s Session) error {
		var err error
		groups, err = d.objects.ListGroups(ctx, s)
		return err
	})
	if err != nil {
		degrade(ctx, "list_groups", err)
		return []Group{}, err
	}
	return groups, nil
}

// GroupMembers returns the members of groupName with their display attributes.
func (d *Directory) GroupMembers(ctx context.Context, actor *Actor, groupName string) ([]GroupMember, error) {
	name, err := ValidateGroupName(groupName)
	if err != nil {
		return []GroupMember{}, err
	}

	var members []GroupMember
	err = d.withSession(ctx, actor, "group_members", map[string]any{"group": name}, func(s Session) error {
		var err error
		members, err = d.objects.GroupMembers(ctx, s, name)
		return err
	})
	if err != nil {
		degrade(ctx, "group_members", err)
		return []GroupMember{}, err
	}
	return members, nil
}

// ManageGroupMember adds or removes a user from a group.
func (d *Directory) ManageGroupMember(ctx context.Context, actor *Actor, action MemberAction, groupName, userName string) Outcome {
	if action != MemberAdd && action != MemberRemove {
		return failed(NewValidationError("action", "action must be add or remove, got "+string(action)))
	}
	group, err := ValidateGroupName(groupName)
	if err != nil {
		return failed(err)
	}
	user, err := ValidateName(userName)
	if err != nil {
		return failed(err)
	}

	err = d.withSession(ctx, actor, "manage_group_member", map[string]any{
		"action": string(action),
		"group":  group,
		"user":   user,
	}, func(s Session) error {
		return d.objects.ManageGroupMember(ctx, s, action, group, user)
	})
	if err != nil {
		return failed(err)
	}
	return succeeded("", "group %s updated", group)
}

// ListComputers returns computer accounts.
func (d *Directory) ListComputers(ctx context.Context, actor *Actor) ([]Computer, error) {
	var computers []Computer
	err := d.withSession(ctx, actor, "list_computers", nil, func(s Session) error {
		var err error
		computers, err = d.objects.ListComputers(ctx, s)
		return err
	})
	if err != nil {
		degrade(ctx, "list_computers", err)
		return []Computer{}, err
	}
	return computers, nil
}

// FindComputer returns the computer account named name.
func (d *Directory) FindComputer(ctx context.Context, actor *Actor, name string) (*Computer, error) {
	if _, err := ValidateName(name); err != nil {
		return nil, err
	}

	var computer *Computer
	err := d.withSession(ctx, actor, "find_computer", map[string]any{"name": name}, func(s Session) error {
		var err error
		computer, err = d.objects.FindComputer(ctx, s, name)
		return err
	})
	if err != nil {
		return nil, err
	}
	return computer, nil
}

// CreateComputer pre-stages a workstation account.
func (d *Directory) CreateComputer(ctx context.Context, actor *Actor, name string) Outcome {
	spec, err := d.objects.PlanComputer(name)
	if err != nil {
		return failed(err)
	}

	err = d.withSession(ctx, actor, "create_computer", map[string]any{"name": spec.Name}, func(s Session) error {
		_, err := d.objects.CreateComputer(ctx, s, spec.Name)
		return err
	})
	if err != nil {
		return failed(err)
	}
	return succeeded(spec.DN, "computer %s created", spec.Name)
}
