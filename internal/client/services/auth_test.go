package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/vmgen/internal/client/client"
	"github.com/dmitrijs2005/vmgen/internal/client/models"
	"github.com/dmitrijs2005/vmgen/internal/client/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_PasswordMismatchIsLocal(t *testing.T) {
	e := newEnv(t)

	_, err := e.auth.Register(context.Background(), "ann@example.com", "a", "b")
	require.ErrorIs(t, err, ErrPasswordMismatch)
	assert.Zero(t, e.b.Calls(http.MethodPost, "/auth/create"))
}

func TestRegisterThenLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	reg, err := e.auth.Register(ctx, "ann@example.com", "secret", "secret")
	require.NoError(t, err)
	require.NotEmpty(t, reg.UUID)

	u, err := e.auth.Login(ctx, "ann@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, reg.UUID, u.ID)
	assert.Equal(t, models.RoleUser, u.Role)

	assert.True(t, e.store.IsAuthenticated())
	stored, ok := e.store.User()
	require.True(t, ok)
	assert.Equal(t, u, stored)
	assert.Equal(t, 1, e.b.Calls(http.MethodGet, "/auth/me"))
}

func TestRegister_DuplicateIsConflict(t *testing.T) {
	e := newEnv(t)
	e.b.AddUser("ann@example.com", "secret", models.RoleUser)

	_, err := e.auth.Register(context.Background(), "ann@example.com", "x", "x")
	var herr *client.HTTPError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, http.StatusConflict, herr.StatusCode)
}

func TestLogin_WrongPassword(t *testing.T) {
	e := newEnv(t)
	e.b.AddUser("ann@example.com", "secret", models.RoleUser)

	_, err := e.auth.Login(context.Background(), "ann@example.com", "nope")
	require.ErrorIs(t, err, client.ErrUnauthorized)
	assert.False(t, e.store.IsAuthenticated())
}

func TestLogin_FallsBackToClaimsWhenProfileFails(t *testing.T) {
	e := newEnv(t)
	u := e.b.AddUser("ann@example.com", "secret", models.RoleAdmin)
	e.b.Fail(http.MethodGet, "/auth/me", http.StatusInternalServerError, nil, 1)

	got, err := e.auth.Login(context.Background(), "ann@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, u, got)

	stored, ok := e.store.User()
	require.True(t, ok)
	assert.Equal(t, u.ID, stored.ID)
}

func TestLoginAndRegister_RefusedInLocalMode(t *testing.T) {
	e := newEnv(t)
	e.store.InitLocal(context.Background())

	_, err := e.auth.Login(context.Background(), "ann@example.com", "secret")
	assert.ErrorIs(t, err, ErrLocalMode)
	_, err = e.auth.Register(context.Background(), "ann@example.com", "secret", "secret")
	assert.ErrorIs(t, err, ErrLocalMode)
	assert.Zero(t, e.b.Calls(http.MethodPost, "/auth/login"))
}

func TestLogout_ClearsSession(t *testing.T) {
	e := newEnv(t)
	e.signIn(t, "ann@example.com", models.RoleUser)

	require.NoError(t, e.auth.Logout(context.Background()))
	assert.False(t, e.store.IsAuthenticated())
	_, ok := e.store.User()
	assert.False(t, ok)
}

func TestUpdateMe_UpdatesStoredUser(t *testing.T) {
	e := newEnv(t)
	e.signIn(t, "ann@example.com", models.RoleUser)

	email := "anna@example.com"
	u, err := e.auth.UpdateMe(context.Background(), models.UpdateUserRequest{Email: &email})
	require.NoError(t, err)
	assert.Equal(t, email, u.Email)

	stored, _ := e.store.User()
	assert.Equal(t, email, stored.Email)
}

func TestUsersAndUserByID(t *testing.T) {
	e := newEnv(t)
	admin := e.signIn(t, "root@example.com", models.RoleAdmin)
	other := e.b.AddUser("bob@example.com", "pw", models.RoleUser)

	users, err := e.auth.Users(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []models.User{admin, other}, users)

	got, err := e.auth.UserByID(context.Background(), other.ID)
	require.NoError(t, err)
	assert.Equal(t, other, got)

	_, err = e.auth.UserByID(context.Background(), "missing")
	assert.ErrorIs(t, err, client.ErrNotFound)
}

func TestUsers_ForbiddenForPlainUser(t *testing.T) {
	e := newEnv(t)
	e.signIn(t, "ann@example.com", models.RoleUser)

	_, err := e.auth.Users(context.Background())
	assert.ErrorIs(t, err, client.ErrUnauthorized)
}

func TestUpdateRole_CapturesTokensAndUpdatesSelf(t *testing.T) {
	e := newEnv(t)
	admin := e.signIn(t, "root@example.com", models.RoleAdmin)
	before := e.store.AccessToken()

	require.NoError(t, e.auth.UpdateRole(context.Background(), admin.ID, models.RoleUser))
	assert.NotEqual(t, before, e.store.AccessToken())

	stored, _ := e.store.User()
	assert.Equal(t, models.RoleUser, stored.Role)

	claims, err := session.ParseClaims(e.store.AccessToken())
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, claims.Role)
}

func TestUpdateRole_RejectsUnknownRole(t *testing.T) {
	e := newEnv(t)
	err := e.auth.UpdateRole(context.Background(), "x", models.Role("ROOT"))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestPing(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.auth.Ping(context.Background()))
	assert.Equal(t, 1, e.b.Calls(http.MethodGet, "/health"))
}
