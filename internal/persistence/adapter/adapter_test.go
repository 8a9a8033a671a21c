package adapter_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vacation-approval/internal/application"
	"github.com/example/vacation-approval/internal/leave"
	"github.com/example/vacation-approval/internal/persistence"
	"github.com/example/vacation-approval/internal/persistence/adapter"
	"github.com/example/vacation-approval/internal/persistence/sqlite"
	"github.com/example/vacation-approval/internal/testfixtures"
)

func TestStoreTranslatesUsers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := sqlite.NewMemory()
	store := adapter.New(backend)

	broken := testfixtures.NewUserFixture(testfixtures.WithUsername("broken")).Persistence()
	broken.Roles = "wizard"
	require.NoError(t, backend.CreateUser(ctx, broken))

	user, err := store.GetUser(ctx, broken.ID)
	require.NoError(t, err)
	assert.True(t, user.Roles.Has(leave.RoleMember))

	leader := testfixtures.NewUserFixture(
		testfixtures.WithRoles(leave.RolePartLeader, leave.RoleTeamLeader),
		testfixtures.WithPasswordHash("secret-hash"),
	)
	require.NoError(t, store.CreateUser(ctx, leader.Application(), leader.PasswordHash))

	app := leader.Application()
	app.Part = "Design"
	require.NoError(t, store.UpdateUser(ctx, app))

	stored, err := backend.GetUser(ctx, leader.ID)
	require.NoError(t, err)
	assert.Equal(t, "secret-hash", stored.PasswordHash)
	assert.Equal(t, "Design", stored.Part)

	leaders, err := store.ListUsersByRole(ctx, leave.RoleTeamLeader, "")
	require.NoError(t, err)
	require.Len(t, leaders, 1)
	assert.Equal(t, leader.ID, leaders[0].ID)

	at := testfixtures.ReferenceTime().Add(time.Hour)
	require.NoError(t, store.UpdatePassword(ctx, leader.ID, "new-hash", true, at))
	creds, err := store.GetUserCredentials(ctx, leader.Username)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", creds.PasswordHash)
	assert.True(t, creds.User.TempPassword)
	assert.True(t, creds.User.UpdatedAt.Equal(at))
}

func TestStoreTranslatesVacations(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := sqlite.NewMemory()
	store := adapter.New(backend)

	owner := testfixtures.NewUserFixture()
	testfixtures.SeedUsers(t, backend, owner)

	request := testfixtures.NewVacationFixture(owner.ID, testfixtures.WithVacationType(leave.TypePMHalfDay))
	require.NoError(t, store.CreateVacation(ctx, request.Application()))

	got, err := store.GetVacation(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.TypePMHalfDay, got.Type)
	assert.Equal(t, 0.5, got.Days())

	err = store.DeleteVacation(ctx, request.ID, leave.StatusApproved)
	assert.ErrorIs(t, err, persistence.ErrStatusConflict)
	require.NoError(t, store.DeleteVacation(ctx, request.ID, leave.StatusPendingPartLeader))
}

func TestStoreWithinTx(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := adapter.New(sqlite.NewMemory())
	owner := testfixtures.NewUserFixture()
	require.NoError(t, store.CreateUser(ctx, owner.Application(), owner.PasswordHash))

	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(repos application.Repositories) error {
		if err := repos.CreateVacation(ctx, testfixtures.NewVacationFixture(owner.ID, testfixtures.WithVacationID("tx-1")).Application()); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = store.GetVacation(ctx, "tx-1")
	assert.ErrorIs(t, err, persistence.ErrNotFound)
}
