package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/vmgen/internal/client/client"
	"github.com/dmitrijs2005/vmgen/internal/client/models"
	"github.com/dmitrijs2005/vmgen/internal/client/session"
	"github.com/dmitrijs2005/vmgen/internal/logging"
)

// Session is the part of session.Store the services mutate.
type Session interface {
	IsLocal() bool
	AccessToken() string
	RefreshToken() string
	User() (models.User, bool)
	Login(ctx context.Context, accessToken, refreshToken string, user models.User) error
	UpdateUser(ctx context.Context, user models.User) error
	Clear(ctx context.Context) error
}

// AuthService covers the /auth endpoints.
//
// Login and Register are refused in local mode with ErrLocalMode. Login
// stores the session; Logout clears it.
type AuthService interface {
	Register(ctx context.Context, email, password, confirm string) (models.RegisterResponse, error)
	Login(ctx context.Context, email, password string) (models.User, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (models.User, error)
	UpdateMe(ctx context.Context, req models.UpdateUserRequest) (models.User, error)
	UserByID(ctx context.Context, id string) (models.User, error)
	Users(ctx context.Context) ([]models.User, error)
	UpdateRole(ctx context.Context, id string, role models.Role) error
	Ping(ctx context.Context) error
}

type authService struct {
	doer    Doer
	session Session
	log     logging.Logger
}

func NewAuthService(doer Doer, s Session, log logging.Logger) AuthService {
	if log == nil {
		log = logging.Nop()
	}
	return &authService{doer: doer, session: s, log: log}
}

func (a *authService) Register(ctx context.Context, email, password, confirm string) (models.RegisterResponse, error) {
	if a.session.IsLocal() {
		return models.RegisterResponse{}, ErrLocalMode
	}
	if password != confirm {
		return models.RegisterResponse{}, ErrPasswordMismatch
	}
	return callJSON[models.RegisterResponse](ctx, a.doer, http.MethodPost, "/auth/create", models.RegisterRequest{
		Email:           email,
		Password:        password,
		ConfirmPassword: confirm,
	})
}

// Login authenticates and stores the session. The user record comes from
// /auth/me; if that call fails for any reason other than an expired session
// the access token's claims are used instead.
func (a *authService) Login(ctx context.Context, email, password string) (models.User, error) {
	if a.session.IsLocal() {
		return models.User{}, ErrLocalMode
	}
	tokens, err := callJSON[models.TokenResponse](ctx, a.doer, http.MethodPost, "/auth/login", models.LoginRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return models.User{}, err
	}

	user, err := a.Me(ctx)
	if err != nil {
		if errors.Is(err, client.ErrSessionExpired) {
			return models.User{}, err
		}
		a.log.Warn(ctx, "profile unavailable, using token claims", "error", err)
		user, err = userFromTokens(tokens)
		if err != nil {
			return models.User{}, err
		}
	}

	if err := a.session.Login(ctx, tokens.AccessToken, tokens.RefreshToken, user); err != nil {
		return models.User{}, fmt.Errorf("store session: %w", err)
	}
	a.log.Info(ctx, "logged in", "user", user.Email)
	return user, nil
}

func userFromTokens(t models.TokenResponse) (models.User, error) {
	claims, err := session.ParseClaims(t.AccessToken)
	if err != nil && t.UserUUID == "" {
		return models.User{}, err
	}
	u := claims.User()
	if u.ID == "" {
		u.ID = t.UserUUID
	}
	if u.ID == "" {
		return models.User{}, fmt.Errorf("access token carries no subject: %w", models.ErrInvalidPayload)
	}
	return u, nil
}

func (a *authService) Logout(ctx context.Context) error {
	return a.session.Clear(ctx)
}

func (a *authService) Me(ctx context.Context) (models.User, error) {
	return get[models.User](ctx, a.doer, "/auth/me", nil)
}

// UpdateMe changes the caller's email or password and refreshes the stored
// user record.
func (a *authService) UpdateMe(ctx context.Context, req models.UpdateUserRequest) (models.User, error) {
	u, err := callJSON[models.User](ctx, a.doer, http.MethodPost, "/auth/me", req)
	if err != nil {
		return models.User{}, err
	}
	if err := a.session.UpdateUser(ctx, u); err != nil {
		return models.User{}, fmt.Errorf("store session: %w", err)
	}
	return u, nil
}

func (a *authService) UserByID(ctx context.Context, id string) (models.User, error) {
	return get[models.User](ctx, a.doer, "/auth/user/"+seg(id), nil)
}

func (a *authService) Users(ctx context.Context) ([]models.User, error) {
	list, err := get[models.UserList](ctx, a.doer, "/auth/users", nil)
	if err != nil {
		return nil, err
	}
	return list.Users, nil
}

// UpdateRole changes a user's role. The reissued tokens in the response are
// captured by the client; when the caller changed their own role the stored
// user is updated too.
func (a *authService) UpdateRole(ctx context.Context, id string, role models.Role) error {
	if !role.Valid() {
		return fmt.Errorf("role %q: %w", role, ErrInvalidArgument)
	}
	if _, err := callJSON[models.TokenResponse](ctx, a.doer, http.MethodPut, "/auth/user/"+seg(id)+"/role",
		models.UpdateRoleRequest{Role: role}); err != nil {
		return err
	}
	if me, ok := a.session.User(); ok && me.ID == id {
		me.Role = role
		if err := a.session.UpdateUser(ctx, me); err != nil {
			return fmt.Errorf("store session: %w", err)
		}
	}
	return nil
}

func (a *authService) Ping(ctx context.Context) error {
	_, err := a.doer.Do(ctx, client.Request{Method: http.MethodGet, Path: client.HealthPath})
	return err
}
