package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicy_DefaultMatrix(t *testing.T) {
	p, err := NewPolicy()
	require.NoError(t, err)

	assert.Equal(t, []Role{RoleAdmin}, p.PermittedRoles(AreaAdmin))
	assert.Equal(t, []Role{RoleMentor, RoleAdmin}, p.PermittedRoles(AreaMentor))
	assert.Equal(t, []Role{RolePartner, RoleAdmin}, p.PermittedRoles(AreaPartner))
	assert.Equal(t, Roles, p.PermittedRoles(AreaAuthenticated))
	assert.Equal(t, Roles, p.PermittedRoles(AreaPublic))

	// admin is permitted on every protected area
	for _, area := range protectedAreas {
		assert.True(t, p.Permits(RoleAdmin, area), area)
	}

	assert.False(t, p.Permits(Role("superuser"), AreaAuthenticated))
	assert.False(t, p.Permits(RoleAdmin, Area("unknown")))
}

func TestPolicy_FromCSV(t *testing.T) {
	p, err := NewPolicyFromCSV("p, mentor, mentor\ng, partner, mentor\n")
	require.NoError(t, err)

	assert.True(t, p.Permits(RolePartner, AreaMentor))
	assert.False(t, p.Permits(RoleAdmin, AreaMentor))
	assert.Empty(t, p.PermittedRoles(AreaAdmin))
}
