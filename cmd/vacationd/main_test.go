package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vacation-approval/internal/config"
	"github.com/example/vacation-approval/internal/leave"
	"github.com/example/vacation-approval/internal/persistence/adapter"
	"github.com/example/vacation-approval/internal/persistence/sqlite"
	"github.com/example/vacation-approval/internal/testfixtures"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

func testConfig() config.Config {
	return config.Config{
		Storage:           config.StorageMemory,
		JWTSecret:         "test-secret",
		SessionTTL:        time.Hour,
		TemporaryPassword: "a123456!",
		Seed:              true,
		Location:          time.UTC,
	}
}

type loginEnvelope struct {
	OK   bool   `json:"ok"`
	Kind string `json:"kind"`
	Data struct {
		Token                  string `json:"token"`
		PasswordChangeRequired bool   `json:"password_change_required"`
		User                   struct {
			Username string   `json:"username"`
			Roles    []string `json:"roles"`
		} `json:"user"`
	} `json:"data"`
}

func login(t *testing.T, handler http.Handler, username, password string) (int, loginEnvelope) {
	t.Helper()
	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var out loginEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec.Code, out
}

func TestSeedOrganisation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := adapter.New(sqlite.NewMemory())
	ids := testfixtures.NewIDGenerator("u")
	now := time.Date(2024, time.June, 3, 9, 0, 0, 0, time.UTC)

	created, err := seedOrganisation(ctx, store, testfixtures.FastHashPassword, "", ids.NextFunc(), now)
	require.NoError(t, err)
	assert.Equal(t, len(defaultOrganisation), created)

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, len(defaultOrganisation))
	assert.Equal(t, "E0001", users[0].EmployeeNumber)
	assert.Equal(t, "admin", users[0].Username)
	assert.True(t, users[0].Roles.Has(leave.RoleTeamLeader))
	assert.Equal(t, time.Date(2019, time.June, 3, 0, 0, 0, 0, time.UTC), users[0].HireDate)
	for _, u := range users {
		assert.True(t, u.TempPassword, u.Username)
	}

	leaders, err := store.ListUsersByRole(ctx, leave.RolePartLeader, "Design")
	require.NoError(t, err)
	require.Len(t, leaders, 1)
	assert.Equal(t, "design_part_leader", leaders[0].Username)

	again, err := seedOrganisation(ctx, store, testfixtures.FastHashPassword, "", ids.NextFunc(), now)
	require.NoError(t, err)
	assert.Zero(t, again)
	assert.Equal(t, uint64(len(defaultOrganisation)), ids.Issued())
}

func TestNewApp(t *testing.T) {
	t.Parallel()

	t.Run("memory storage serves seeded accounts", func(t *testing.T) {
		t.Parallel()

		svc, err := newApp(context.Background(), testConfig(), testfixtures.DiscardLogger())
		require.NoError(t, err)
		t.Cleanup(func() { _ = svc.Close() })

		code, out := login(t, svc.Handler, "admin", "a123456!")
		require.Equal(t, http.StatusOK, code)
		assert.True(t, out.OK)
		assert.True(t, out.Data.PasswordChangeRequired)
		assert.Equal(t, "admin", out.Data.User.Username)
		assert.Equal(t, []string{"team_leader"}, out.Data.User.Roles)

		req := httptest.NewRequest(http.MethodGet, "/me/balance", nil)
		req.Header.Set("Authorization", "Bearer "+out.Data.Token)
		rec := httptest.NewRecorder()
		svc.Handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "password_change_required")
	})

	t.Run("sqlite storage is migrated and seeded once", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig()
		cfg.Storage = config.StorageSQLite
		cfg.SQLiteDSN = filepath.Join(t.TempDir(), "vacation.db")

		first, err := newApp(context.Background(), cfg, testfixtures.DiscardLogger())
		require.NoError(t, err)
		code, _ := login(t, first.Handler, "dev_john", "a123456!")
		assert.Equal(t, http.StatusOK, code)
		require.NoError(t, first.Close())

		cfg.TemporaryPassword = "Changed1!"
		second, err := newApp(context.Background(), cfg, testfixtures.DiscardLogger())
		require.NoError(t, err)
		t.Cleanup(func() { _ = second.Close() })

		code, _ = login(t, second.Handler, "dev_john", "a123456!")
		assert.Equal(t, http.StatusOK, code, "existing accounts keep their password")
		code, out := login(t, second.Handler, "nobody", "a123456!")
		assert.Equal(t, http.StatusUnauthorized, code)
		assert.Equal(t, "invalid_credentials", out.Kind)
	})

	t.Run("rejects an empty secret", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig()
		cfg.JWTSecret = ""
		_, err := newApp(context.Background(), cfg, testfixtures.DiscardLogger())
		assert.Error(t, err)
	})
}
