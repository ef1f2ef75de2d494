package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forzencookie/sie-server/internal/models"
)

func TestSignUpAndLogin(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)

	signUp, err := svc.SignUp(context.Background(), models.SignUpRequest{
		Email:    "anna@example.com",
		Password: "hemligt-losenord",
		Name:     "Anna",
	})
	require.NoError(t, err)
	assert.Equal(t, "success", signUp.Status)
	assert.NotEmpty(t, signUp.UserID)

	// Duplicate email is rejected.
	_, err = svc.SignUp(context.Background(), models.SignUpRequest{
		Email:    "anna@example.com",
		Password: "annat-losenord",
		Name:     "Anna Igen",
	})
	assert.Error(t, err)

	login, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "anna@example.com",
		Password: "hemligt-losenord",
	})
	require.NoError(t, err)
	assert.Equal(t, signUp.UserID, login.UserID)
	assert.NotEmpty(t, login.Token)

	_, err = svc.Login(context.Background(), models.LoginRequest{
		Email:    "anna@example.com",
		Password: "fel-losenord",
	})
	assert.Error(t, err)
}
