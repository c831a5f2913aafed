package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/docask/docask/internal/pkg/errs"
	"github.com/docask/docask/internal/repo"
)

func TestAuthService_RegisterLoginRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(repo.NewMemoryUserRepo(), []byte("secret"), time.Hour)

	res, err := svc.Register(ctx, "User@Example.com", "longenoughpassword")
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	require.Equal(t, "user@example.com", res.User.Email)

	// The repo reports duplicates as a wrapped conflict; the service must
	// still recognize it.
	_, err = svc.Register(ctx, "user@example.com", "longenoughpassword")
	require.True(t, errors.Is(err, errs.ErrConflict))

	login, err := svc.Login(ctx, "user@example.com", "longenoughpassword")
	require.NoError(t, err)
	require.Equal(t, res.User.ID, login.User.ID)

	_, err = svc.Login(ctx, "user@example.com", "wrongpassword")
	require.True(t, errors.Is(err, errs.ErrUnauthorized))

	_, err = svc.Login(ctx, "nobody@example.com", "longenoughpassword")
	require.True(t, errors.Is(err, errs.ErrUnauthorized))
}

func TestRegister_InputValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(nil, []byte("secret"), time.Hour)

	_, err := svc.Register(ctx, "not-an-email", "longenoughpassword")
	require.True(t, errors.Is(err, errs.ErrInvalid))

	_, err = svc.Register(ctx, "missing-tld@host", "longenoughpassword")
	require.True(t, errors.Is(err, errs.ErrInvalid))

	_, err = svc.Register(ctx, "user@example.com", "short")
	require.True(t, errors.Is(err, errs.ErrInvalid))
}

func TestValidateEmail(t *testing.T) {
	require.NoError(t, validateEmail("user@example.com"))
	require.Error(t, validateEmail("@example.com"))
	require.Error(t, validateEmail("user@"))
	require.Error(t, validateEmail("userexample.com"))
}
