package persistence_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vacation-approval/internal/leave"
	"github.com/example/vacation-approval/internal/persistence"
	"github.com/example/vacation-approval/internal/testfixtures"
)

func TestUserRepository(t *testing.T) {
	t.Parallel()

	for _, b := range testfixtures.Backends(t) {
		t.Run(b.Name, func(t *testing.T) {
			ctx := context.Background()
			store := b.Backend

			lead := testfixtures.NewUserFixture(
				testfixtures.WithUsername("lead"),
				testfixtures.WithEmployeeNumber("E0001"),
				testfixtures.WithRoles(leave.RoleTeamLeader, leave.RolePartLeader),
				testfixtures.WithPart("Management"),
			)
			member := testfixtures.NewUserFixture(
				testfixtures.WithUsername("member"),
				testfixtures.WithEmployeeNumber("E0002"),
				testfixtures.WithTempPassword(true),
			)
			testfixtures.SeedUsers(t, store, lead, member)

			fetched, err := store.GetUserByUsername(ctx, " member ")
			require.NoError(t, err)
			assert.Equal(t, member.ID, fetched.ID)
			assert.True(t, fetched.TempPassword)
			assert.True(t, fetched.HireDate.Equal(member.HireDate))

			dup := testfixtures.NewUserFixture(testfixtures.WithUsername("member"))
			assert.ErrorIs(t, store.CreateUser(ctx, dup.Persistence()), persistence.ErrDuplicate)
			dup = testfixtures.NewUserFixture(testfixtures.WithEmployeeNumber("E0001"))
			assert.ErrorIs(t, store.CreateUser(ctx, dup.Persistence()), persistence.ErrDuplicate)

			leaders, err := store.ListUsersByRole(ctx, string(leave.RolePartLeader), "")
			require.NoError(t, err)
			require.Len(t, leaders, 1)
			assert.Equal(t, lead.ID, leaders[0].ID)

			scoped, err := store.ListUsersByRole(ctx, string(leave.RolePartLeader), "Development")
			require.NoError(t, err)
			assert.Empty(t, scoped)

			// Role names are matched literally; "_" is not a wildcard.
			lookalike := testfixtures.NewUserFixture(testfixtures.WithEmployeeNumber("E0003")).Persistence()
			lookalike.Roles = "partXleader"
			require.NoError(t, store.CreateUser(ctx, lookalike))
			leaders, err = store.ListUsersByRole(ctx, string(leave.RolePartLeader), "")
			require.NoError(t, err)
			require.Len(t, leaders, 1)
			assert.Equal(t, lead.ID, leaders[0].ID)
			require.NoError(t, store.DeleteUser(ctx, lookalike.ID))

			all, err := store.ListUsers(ctx)
			require.NoError(t, err)
			require.Len(t, all, 2)
			assert.Equal(t, "E0001", all[0].EmployeeNumber)

			updated := fetched
			updated.Part = "Design"
			updated.TempPassword = false
			require.NoError(t, store.UpdateUser(ctx, updated))
			fetched, err = store.GetUser(ctx, member.ID)
			require.NoError(t, err)
			assert.Equal(t, "Design", fetched.Part)
			assert.False(t, fetched.TempPassword)

			assert.ErrorIs(t, store.LockUser(ctx, "missing"), persistence.ErrNotFound)
			assert.ErrorIs(t, store.DeleteUser(ctx, "missing"), persistence.ErrNotFound)
			_, err = store.GetUser(ctx, "missing")
			assert.ErrorIs(t, err, persistence.ErrNotFound)
		})
	}
}

func TestVacationRepository(t *testing.T) {
	t.Parallel()

	for _, b := range testfixtures.Backends(t) {
		t.Run(b.Name, func(t *testing.T) {
			ctx := context.Background()
			store := b.Backend

			dev := testfixtures.NewUserFixture(testfixtures.WithPart("Development"))
			design := testfixtures.NewUserFixture(testfixtures.WithPart("Design"))
			testfixtures.SeedUsers(t, store, dev, design)

			first := testfixtures.NewVacationFixture(dev.ID,
				testfixtures.WithVacationID("v1"),
				testfixtures.WithVacationDates("2024-06-10", "2024-06-11"))
			second := testfixtures.NewVacationFixture(dev.ID,
				testfixtures.WithVacationID("v2"),
				testfixtures.WithVacationDates("2024-07-01", "2024-07-01"),
				testfixtures.WithVacationStatus(leave.StatusPendingTeamLeader))
			third := testfixtures.NewVacationFixture(design.ID,
				testfixtures.WithVacationID("v3"),
				testfixtures.WithVacationDates("2024-06-05", "2024-06-05"))
			testfixtures.SeedVacations(t, store, first, second, third)

			history, err := store.ListVacationsByUser(ctx, dev.ID)
			require.NoError(t, err)
			require.Len(t, history, 2)
			assert.Equal(t, "v2", history[0].ID)
			assert.True(t, history[1].EndDate.Equal(first.End))

			pending, err := store.ListVacationsByStatus(ctx, string(leave.StatusPendingPartLeader))
			require.NoError(t, err)
			require.Len(t, pending, 2)
			assert.Equal(t, "v3", pending[0].ID)

			devPending, err := store.ListVacationsByStatusAndPart(ctx, string(leave.StatusPendingPartLeader), "Development")
			require.NoError(t, err)
			require.Len(t, devPending, 1)
			assert.Equal(t, "v1", devPending[0].ID)

			at := testfixtures.ReferenceTime().Add(time.Hour)
			require.NoError(t, store.UpdateVacationStatus(ctx, "v1",
				string(leave.StatusPendingPartLeader), string(leave.StatusPendingTeamLeader), at))
			err = store.UpdateVacationStatus(ctx, "v1",
				string(leave.StatusPendingPartLeader), string(leave.StatusRejected), at)
			assert.ErrorIs(t, err, persistence.ErrStatusConflict)
			err = store.UpdateVacationStatus(ctx, "missing", "a", "b", at)
			assert.ErrorIs(t, err, persistence.ErrNotFound)

			stored, err := store.GetVacation(ctx, "v1")
			require.NoError(t, err)
			assert.Equal(t, string(leave.StatusPendingTeamLeader), stored.Status)
			assert.True(t, stored.UpdatedAt.Equal(at))

			err = store.DeleteVacation(ctx, "v1", string(leave.StatusPendingPartLeader))
			assert.ErrorIs(t, err, persistence.ErrStatusConflict)
			require.NoError(t, store.DeleteVacation(ctx, "v1",
				string(leave.StatusPendingPartLeader), string(leave.StatusPendingTeamLeader)))
			_, err = store.GetVacation(ctx, "v1")
			assert.ErrorIs(t, err, persistence.ErrNotFound)

			orphan := testfixtures.NewVacationFixture("missing-user")
			err = store.CreateVacation(ctx, orphan.Persistence())
			assert.ErrorIs(t, err, persistence.ErrForeignKey)
		})
	}
}

func TestNotificationRepository(t *testing.T) {
	t.Parallel()

	for _, b := range testfixtures.Backends(t) {
		t.Run(b.Name, func(t *testing.T) {
			ctx := context.Background()
			store := b.Backend

			owner := testfixtures.NewUserFixture()
			other := testfixtures.NewUserFixture()
			testfixtures.SeedUsers(t, store, owner, other)

			base := testfixtures.ReferenceTime()
			for i, id := range []string{"n1", "n2", "n3"} {
				require.NoError(t, store.CreateNotification(ctx, persistence.Notification{
					ID:        id,
					UserID:    owner.ID,
					Message:   "message " + id,
					CreatedAt: base.Add(time.Duration(i) * time.Minute),
				}))
			}

			list, err := store.ListNotificationsByUser(ctx, owner.ID)
			require.NoError(t, err)
			require.Len(t, list, 3)
			assert.Equal(t, "n3", list[0].ID)

			count, err := store.CountUnreadNotifications(ctx, owner.ID)
			require.NoError(t, err)
			assert.Equal(t, 3, count)

			assert.ErrorIs(t, store.MarkNotificationRead(ctx, "n1", other.ID), persistence.ErrNotFound)
			require.NoError(t, store.MarkNotificationRead(ctx, "n1", owner.ID))
			count, err = store.CountUnreadNotifications(ctx, owner.ID)
			require.NoError(t, err)
			assert.Equal(t, 2, count)

			require.NoError(t, store.MarkNotificationsRead(ctx, owner.ID))
			count, err = store.CountUnreadNotifications(ctx, owner.ID)
			require.NoError(t, err)
			assert.Zero(t, count)
		})
	}
}

func TestDeleteUserCascades(t *testing.T) {
	t.Parallel()

	for _, b := range testfixtures.Backends(t) {
		t.Run(b.Name, func(t *testing.T) {
			ctx := context.Background()
			store := b.Backend

			u := testfixtures.NewUserFixture()
			testfixtures.SeedUsers(t, store, u)
			request := testfixtures.NewVacationFixture(u.ID)
			testfixtures.SeedVacations(t, store, request)
			require.NoError(t, store.CreateNotification(ctx, persistence.Notification{
				ID: "n1", UserID: u.ID, Message: "hello", CreatedAt: testfixtures.ReferenceTime(),
			}))

			require.NoError(t, store.DeleteUser(ctx, u.ID))

			_, err := store.GetVacation(ctx, request.ID)
			assert.ErrorIs(t, err, persistence.ErrNotFound)
			notifications, err := store.ListNotificationsByUser(ctx, u.ID)
			require.NoError(t, err)
			assert.Empty(t, notifications)
		})
	}
}

func TestTransactor(t *testing.T) {
	t.Parallel()

	for _, b := range testfixtures.Backends(t) {
		t.Run(b.Name, func(t *testing.T) {
			ctx := context.Background()
			store := b.Backend
			u := testfixtures.NewUserFixture()
			testfixtures.SeedUsers(t, store, u)

			boom := errors.New("boom")
			err := store.WithinTx(ctx, func(tx persistence.Store) error {
				if err := tx.LockUser(ctx, u.ID); err != nil {
					return err
				}
				if err := tx.CreateVacation(ctx, testfixtures.NewVacationFixture(u.ID, testfixtures.WithVacationID("rolled-back")).Persistence()); err != nil {
					return err
				}
				return boom
			})
			require.ErrorIs(t, err, boom)
			_, err = store.GetVacation(ctx, "rolled-back")
			assert.ErrorIs(t, err, persistence.ErrNotFound)

			err = store.WithinTx(ctx, func(tx persistence.Store) error {
				return tx.CreateVacation(ctx, testfixtures.NewVacationFixture(u.ID, testfixtures.WithVacationID("kept")).Persistence())
			})
			require.NoError(t, err)
			_, err = store.GetVacation(ctx, "kept")
			assert.NoError(t, err)
		})
	}
}

func TestTransactorSerialisesGuardedUpdates(t *testing.T) {
	t.Parallel()

	for _, b := range testfixtures.Backends(t) {
		t.Run(b.Name, func(t *testing.T) {
			ctx := context.Background()
			store := b.Backend
			u := testfixtures.NewUserFixture()
			testfixtures.SeedUsers(t, store, u)
			request := testfixtures.NewVacationFixture(u.ID, testfixtures.WithVacationStatus(leave.StatusPendingTeamLeader))
			testfixtures.SeedVacations(t, store, request)

			const workers = 4
			var (
				wg        sync.WaitGroup
				mu        sync.Mutex
				successes int
				conflicts int
			)
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					err := store.WithinTx(ctx, func(tx persistence.Store) error {
						return tx.UpdateVacationStatus(ctx, request.ID,
							string(leave.StatusPendingTeamLeader), string(leave.StatusApproved), testfixtures.ReferenceTime())
					})
					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						successes++
					case errors.Is(err, persistence.ErrStatusConflict):
						conflicts++
					default:
						t.Errorf("unexpected error: %v", err)
					}
				}()
			}
			wg.Wait()

			assert.Equal(t, 1, successes)
			assert.Equal(t, workers-1, conflicts)
		})
	}
}
