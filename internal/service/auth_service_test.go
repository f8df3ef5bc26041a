package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/freightline/services/settlement/internal/models"
	"example.com/freightline/services/settlement/internal/service"
	"example.com/freightline/services/settlement/internal/testutil"
)

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := testutil.NewService(t)

	user := &models.User{Email: "driver@example.com", FirstName: "Pat"}
	token, err := svc.Register(ctx, user, "hunter22")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, models.RoleUser, user.Role)

	token, got, err := svc.Login(ctx, "driver@example.com", "hunter22")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, got.ID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	svc, _ := testutil.NewService(t)

	user := &models.User{Email: "driver@example.com"}
	_, err := svc.Register(ctx, user, "hunter22")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "driver@example.com", "wrong")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc, _ := testutil.NewService(t)
	_, err := svc.Register(context.Background(), &models.User{Email: "a@example.com"}, "abc")
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	svc, _ := testutil.NewService(t)
	user := &models.User{Email: "a@example.com", Role: models.RoleAdmin}
	_, err := svc.Register(context.Background(), user, "hunter22")
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, _ := testutil.NewService(t)

	_, err := svc.Register(ctx, &models.User{Email: "a@example.com"}, "hunter22")
	require.NoError(t, err)

	_, err = svc.Register(ctx, &models.User{Email: "a@example.com"}, "hunter22")
	assert.ErrorIs(t, err, service.ErrDuplicate)
}

func TestPasswordResetFlow(t *testing.T) {
	ctx := context.Background()
	svc, _ := testutil.NewService(t)

	user := &models.User{Email: "driver@example.com"}
	_, err := svc.Register(ctx, user, "hunter22")
	require.NoError(t, err)

	resetToken, err := svc.ForgotPassword(ctx, "driver@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, resetToken)

	token, err := svc.ResetPassword(ctx, resetToken, "newpassword")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	// Old password no longer works, new one does
	_, _, err = svc.Login(ctx, "driver@example.com", "hunter22")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "driver@example.com", "newpassword")
	assert.NoError(t, err)

	// Token is single use
	_, err = svc.ResetPassword(ctx, resetToken, "another")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestResetPasswordRejectsUnknownToken(t *testing.T) {
	svc, _ := testutil.NewService(t)
	_, err := svc.ResetPassword(context.Background(), "bogus", "newpassword")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}
