package leave

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoles(t *testing.T) {
	t.Parallel()

	roles, err := ParseRoles("part_leader, team_leader")
	require.NoError(t, err)
	assert.True(t, roles.Has(RoleTeamLeader))
	assert.True(t, roles.Has(RolePartLeader))
	assert.False(t, roles.Has(RoleMember))
	assert.Equal(t, "team_leader,part_leader", roles.String())

	empty, err := ParseRoles("")
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.False(t, empty.IsApprover())

	_, err = ParseRoles("member,ceo")
	assert.Error(t, err)
}

func TestStatusPredicates(t *testing.T) {
	t.Parallel()

	assert.True(t, StatusPendingPartLeader.Blocks())
	assert.True(t, StatusApproved.Blocks())
	assert.False(t, StatusRejected.Blocks())
	assert.True(t, StatusRejected.IsFinal())
	assert.False(t, StatusPendingTeamLeader.IsFinal())
	assert.False(t, Status("cancelled").Valid())
}

func TestDaysInclusive(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, DaysInclusive(date(t, "2025-03-01"), date(t, "2025-03-01")))
	assert.Equal(t, 3, DaysInclusive(date(t, "2024-02-28"), date(t, "2024-03-01")))
}
