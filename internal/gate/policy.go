package gate

import (
	_ "embed"
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"
)

//go:embed model.conf
var policyModel string

//go:embed policy.csv
var defaultPolicy string

// protectedAreas are the areas decided by the role policy. Public and
// auth-only areas never reach it.
var protectedAreas = []Area{AreaAdmin, AreaMentor, AreaPartner, AreaAuthenticated}

// Policy answers "may role r enter area a". It is backed by a casbin RBAC
// model where admin inherits the mentor and partner roles. The full
// role×area matrix is computed once at construction so reads take no locks.
type Policy struct {
	permitted map[Area]map[Role]bool
}

// NewPolicy builds the default policy.
func NewPolicy() (*Policy, error) {
	return NewPolicyFromCSV(defaultPolicy)
}

// NewPolicyFromCSV builds a policy from casbin policy lines
// ("p, role, area" and "g, role, inherited-role").
func NewPolicyFromCSV(lines string) (*Policy, error) {
	m, err := model.NewModelFromString(policyModel)
	if err != nil {
		return nil, fmt.Errorf("parse policy model: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, stringadapter.NewAdapter(lines))
	if err != nil {
		return nil, fmt.Errorf("create policy enforcer: %w", err)
	}

	p := &Policy{permitted: make(map[Area]map[Role]bool, len(protectedAreas))}
	for _, area := range protectedAreas {
		p.permitted[area] = make(map[Role]bool, len(Roles))
		for _, role := range Roles {
			ok, err := enforcer.Enforce(string(role), string(area))
			if err != nil {
				return nil, fmt.Errorf("evaluate policy %s on %s: %w", role, area, err)
			}
			p.permitted[area][role] = ok
		}
	}
	return p, nil
}

// Permits reports whether role may enter area. Unknown roles and areas are denied.
func (p *Policy) Permits(role Role, area Area) bool {
	switch area {
	case AreaPublic, AreaAuthOnly:
		return true
	}
	return p.permitted[area][role]
}

// PermittedRoles lists the roles allowed in area, in Roles order.
func (p *Policy) PermittedRoles(area Area) []Role {
	var out []Role
	for _, r := range Roles {
		if p.Permits(r, area) {
			out = append(out, r)
		}
	}
	return out
}
