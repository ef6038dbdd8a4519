// Package identity maps case roles to portal users. Only initiator
// roles are considered; the identification scheme for companies (KVK
// number or RSIN) is a deployment-wide configuration choice.
package identity

import (
	"context"
	"fmt"

	"github.com/goliatone/go-zaaknotify/core"
)

// Resolver finds the portal users behind a case's initiator roles.
type Resolver struct {
	directory core.UserDirectory
	scheme    string
}

func New(directory core.UserDirectory, companyIDScheme string) *Resolver {
	return &Resolver{directory: directory, scheme: companyIDScheme}
}

// Resolve returns the portal users matching the initiator roles,
// deduplicated by user id. Inactive accounts and accounts without a
// usable email address are excluded here; the opt-out preference is the
// dispatcher's concern so those users still get feed entries.
func (r *Resolver) Resolve(ctx context.Context, roles []core.Role) ([]core.User, error) {
	if r == nil || r.directory == nil {
		return nil, fmt.Errorf("identity: user directory is required")
	}

	var resolved []core.User
	seen := map[string]bool{}
	for _, role := range roles {
		if !role.IsInitiator() {
			continue
		}
		users, err := r.usersForIdentity(ctx, role.Identity)
		if err != nil {
			return nil, err
		}
		for _, user := range users {
			if !user.Active || !user.HasUsableEmail() || seen[user.ID] {
				continue
			}
			seen[user.ID] = true
			resolved = append(resolved, user)
		}
	}
	return resolved, nil
}

func (r *Resolver) usersForIdentity(ctx context.Context, identity core.RoleIdentity) ([]core.User, error) {
	switch id := identity.(type) {
	case core.NaturalPerson:
		if id.CitizenID == "" {
			return nil, nil
		}
		return r.directory.FindByCitizenID(ctx, id.CitizenID)
	case core.NonNaturalPerson:
		return r.companyUsers(ctx, id)
	case core.OtherParty, nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("identity: %w: %T", core.ErrInvalidRoleIdentity, identity)
	}
}

func (r *Resolver) companyUsers(ctx context.Context, id core.NonNaturalPerson) ([]core.User, error) {
	switch r.scheme {
	case core.CompanyIDSchemeRSIN:
		if id.FiscalID == "" {
			return nil, nil
		}
		return r.directory.FindByFiscalID(ctx, id.FiscalID)
	default:
		if id.CompanyID == "" {
			return nil, nil
		}
		return r.directory.FindByCompanyID(ctx, id.CompanyID)
	}
}
