package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vacation-approval/internal/application"
	"github.com/example/vacation-approval/internal/testfixtures"
)

func seedCredentials(t *testing.T, svc *testfixtures.Services, username, password string, temporary bool) testfixtures.UserFixture {
	t.Helper()
	hash, err := testfixtures.FastHashPassword(password)
	require.NoError(t, err)
	user := testfixtures.NewUserFixture(
		testfixtures.WithUsername(username),
		testfixtures.WithPasswordHash(hash),
		testfixtures.WithTempPassword(temporary),
	)
	testfixtures.SeedUsers(t, svc.Backend, user)
	return user
}

func TestAuthService_Authenticate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := testfixtures.NewServiceFactory().NewServices(nil, nil)
	user := seedCredentials(t, svc, "jung", "Winter2024!", false)

	result, err := svc.Auth.Authenticate(ctx, application.AuthenticateParams{Username: " jung ", Password: "Winter2024!"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, result.User.ID)
	assert.False(t, result.PasswordChangeRequired)

	cases := []application.AuthenticateParams{
		{Username: "jung", Password: "winter2024!"},
		{Username: "nobody", Password: "Winter2024!"},
		{Username: "", Password: "Winter2024!"},
		{Username: "jung", Password: ""},
	}
	for _, params := range cases {
		_, err := svc.Auth.Authenticate(ctx, params)
		assert.ErrorIs(t, err, application.ErrInvalidCredentials, params.Username)
		assert.Equal(t, application.KindInvalidCredentials, application.ErrorKind(err))
	}
}

func TestAuthService_Identify(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := testfixtures.NewServiceFactory().NewServices(nil, nil)
	user := seedCredentials(t, svc, "yoon", "Spring2024!", false)

	identified, err := svc.Auth.Identify(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "yoon", identified.Username)
	assert.Equal(t, user.Principal(), identified.Principal())

	_, err = svc.Auth.Identify(ctx, "deleted-user")
	assert.ErrorIs(t, err, application.ErrUnauthorized)
}

func TestAuthService_ChangePassword(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := testfixtures.NewServiceFactory().NewServices(nil, nil)
	user := seedCredentials(t, svc, "han", application.DefaultTemporaryPassword, true)

	err := svc.Auth.ChangePassword(ctx, application.ChangePasswordParams{
		Principal:       user.Principal(),
		NewPassword:     application.DefaultTemporaryPassword,
		ConfirmPassword: application.DefaultTemporaryPassword,
	})
	var vErr *application.ValidationError
	require.True(t, errors.As(err, &vErr))

	err = svc.Auth.ChangePassword(ctx, application.ChangePasswordParams{
		Principal:       user.Principal(),
		NewPassword:     "Autumn2024!",
		ConfirmPassword: "Autumn2024?",
	})
	require.True(t, errors.As(err, &vErr))
	assert.Contains(t, vErr.FieldErrors, "confirm_password")

	require.NoError(t, svc.Auth.ChangePassword(ctx, application.ChangePasswordParams{
		Principal:       user.Principal(),
		NewPassword:     "Autumn2024!",
		ConfirmPassword: "Autumn2024!",
	}))

	result, err := svc.Auth.Authenticate(ctx, application.AuthenticateParams{Username: "han", Password: "Autumn2024!"})
	require.NoError(t, err)
	assert.False(t, result.PasswordChangeRequired)

	_, err = svc.Auth.Authenticate(ctx, application.AuthenticateParams{Username: "han", Password: application.DefaultTemporaryPassword})
	assert.ErrorIs(t, err, application.ErrInvalidCredentials)

	err = svc.Auth.ChangePassword(ctx, application.ChangePasswordParams{NewPassword: "Autumn2024!", ConfirmPassword: "Autumn2024!"})
	assert.ErrorIs(t, err, application.ErrUnauthorized)
}
