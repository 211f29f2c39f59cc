package ldap

import (
	"context"

	"github.com/hashicorp/terraform-plugin-log/tflog"
)

// missingAttribute is shown for member attributes the directory did not return.
const missingAttribute = "N/A"

// ManageGroupMember adds userName to, or removes it from, groupName.
func (m *ObjectManager) ManageGroupMember(ctx context.Context, s Session, action MemberAction, groupName, userName string) error {
	var modify func(dn, member string) *ModifyRequest
	switch action {
	case MemberAdd:
		modify = func(dn, member string) *ModifyRequest {
			return &ModifyRequest{DN: dn, AddAttributes: map[string][]string{"member": {member}}}
		}
	case MemberRemove:
		modify = func(dn, member string) *ModifyRequest {
			return &ModifyRequest{DN: dn, DeleteAttributes: map[string][]string{"member": {member}}}
		}
	default:
		return NewValidationError("action", "action must be add or remove, got "+string(action))
	}

	// Both names are checked before the first lookup.
	if _, err := ValidateGroupName(groupName); err != nil {
		return err
	}
	if _, err := ValidateName(userName); err != nil {
		return err
	}

	groupDN, err := m.resolver.Resolve(ctx, s, groupName, ObjectKindGroup)
	if err != nil {
		return err
	}
	userDN, err := m.resolver.Resolve(ctx, s, userName, ObjectKindUser)
	if err != nil {
		return err
	}

	tflog.SubsystemInfo(ctx, Subsystem, "Updating group membership", map[string]any{
		"action":   string(action),
		"group_dn": groupDN,
		"user_dn":  userDN,
	})

	return s.Modify(ctx, modify(groupDN, userDN))
}

// ListGroups returns every group under the base DN.
func (m *ObjectManager) ListGroups(ctx context.Context, s Session) ([]Group, error) {
	result, err := s.Search(ctx, &SearchRequest{
		BaseDN:     m.config.BaseDN,
		Scope:      ScopeWholeSubtree,
		Filter:     "(objectClass=group)",
		Attributes: []string{"cn", "description", "member", "distinguishedName"},
	})
	if err != nil {
		return nil, err
	}

	groups := make([]Group, 0, len(result.Entries))
	for _, entry := range result.Entries {
		groups = append(groups, Group{
			Name:        entry.GetAttributeValue("cn"),
			Description: entry.GetAttributeValue("description"),
			Members:     entry.GetAttributeValues("member"),
			DN:          entry.DN,
		})
	}
	return groups, nil
}

// GroupMembers resolves groupName and reads the display attributes of each
// member. Members that cannot be read are skipped.
func (m *ObjectManager) GroupMembers(ctx context.Context, s Session, groupName string) ([]GroupMember, error) {
	groupDN, err := m.resolver.Resolve(ctx, s, groupName, ObjectKindGroup)
	if err != nil {
		return nil, err
	}

	result, err := s.Search(ctx, &SearchRequest{
		BaseDN:     groupDN,
		Scope:      ScopeBaseObject,
		Filter:     "(objectClass=group)",
		Attributes: []string{"member"},
	})
	if err != nil {
		return nil, err
	}
	if len(result.Entries) == 0 {
		return []GroupMember{}, nil
	}

	memberDNs := result.Entries[0].GetAttributeValues("member")
	members := make([]GroupMember, 0, len(memberDNs))

	for _, memberDN := range memberDNs {
		memberResult, err := s.Search(ctx, &SearchRequest{
			BaseDN:     memberDN,
			Scope:      ScopeBaseObject,
			Filter:     "(objectClass=*)",
			Attributes: []string{"sAMAccountName", "displayName"},
		})
		if err != nil || len(memberResult.Entries) == 0 {
			tflog.SubsystemDebug(ctx, Subsystem, "Skipping unreadable group member", map[string]any{
				"member_dn": memberDN,
			})
			continue
		}

		entry := memberResult.Entries[0]
		members = append(members, GroupMember{
			AccountName: firstOr(entry, "sAMAccountName", missingAttribute),
			DisplayName: firstOr(entry, "displayName", missingAttribute),
			DN:          memberDN,
		})
	}

	return members, nil
}
