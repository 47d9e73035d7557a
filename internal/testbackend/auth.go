package testbackend

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/vmgen/internal/client/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const ctxUser = "user"

// AddUser registers an account directly.
func (b *Backend) AddUser(email, password string, role models.Role) models.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := models.User{ID: uuid.NewString(), Email: email, Role: role}
	b.accounts[email] = &account{user: u, password: password}
	return u
}

// Tokens issues a fresh pair for user, as a login would.
func (b *Backend) Tokens(user models.User) (access, refresh string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.issueLocked(user)
}

// Rotate invalidates every access token issued so far. Refresh tokens stay
// valid.
func (b *Backend) Rotate() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.generation++
}

// RevokeRefreshTokens makes every outstanding refresh token unusable.
func (b *Backend) RevokeRefreshTokens() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshTokens = make(map[string]string)
}

func (b *Backend) issueLocked(u models.User) (string, string) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   u.ID,
		"email": u.Email,
		"role":  string(u.Role),
		"gen":   b.generation,
		"jti":   uuid.NewString(),
		"iat":   now.Unix(),
		"exp":   now.Add(b.AccessTTL).Unix(),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.secret)
	if err != nil {
		panic(fmt.Sprintf("sign token: %v", err))
	}
	refresh := "rt-" + uuid.NewString()
	b.refreshTokens[refresh] = u.ID
	return access, refresh
}

func (b *Backend) tokenResponseLocked(u models.User) models.TokenResponse {
	access, refresh := b.issueLocked(u)
	return models.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int64(b.AccessTTL / time.Second),
		UserUUID:     u.ID,
	}
}

func (b *Backend) userByIDLocked(id string) (*account, bool) {
	for _, a := range b.accounts {
		if a.user.ID == id {
			return a, true
		}
	}
	return nil, false
}

func (b *Backend) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw, ok := strings.CutPrefix(c.Request().Header.Get("Authorization"), "Bearer ")
		if !ok {
			return b.deny(c, "Not authenticated")
		}
		tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return b.secret, nil
		})
		if err != nil || !tok.Valid {
			return b.deny(c, "Could not validate credentials")
		}
		claims, _ := tok.Claims.(jwt.MapClaims)
		gen, _ := claims["gen"].(float64)
		sub, _ := claims["sub"].(string)

		b.mu.Lock()
		current := b.generation
		acc, found := b.userByIDLocked(sub)
		b.mu.Unlock()
		if int(gen) != current || !found {
			return b.deny(c, "Token has expired")
		}
		c.Set(ctxUser, acc.user)
		return next(c)
	}
}

func (b *Backend) deny(c echo.Context, msg string) error {
	b.mu.Lock()
	b.unauthorized++
	b.mu.Unlock()
	return detail(c, http.StatusUnauthorized, msg)
}

func (b *Backend) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if current(c).Role != models.RoleAdmin {
			return detail(c, http.StatusForbidden, "Admin role required")
		}
		return next(c)
	}
}

func current(c echo.Context) models.User {
	u, _ := c.Get(ctxUser).(models.User)
	return u
}

func (b *Backend) register(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "invalid body")
	}
	if req.Email == "" || req.Password == "" {
		return detail(c, http.StatusUnprocessableEntity, "email and password are required")
	}
	if req.Password != req.ConfirmPassword {
		return detail(c, http.StatusBadRequest, "Passwords do not match")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.accounts[req.Email]; exists {
		return detail(c, http.StatusConflict, "User already exists")
	}
	u := models.User{ID: uuid.NewString(), Email: req.Email, Role: models.RoleUser}
	b.accounts[req.Email] = &account{user: u, password: req.Password}
	return c.JSON(http.StatusCreated, models.RegisterResponse{Message: "User created", UUID: u.ID})
}

func (b *Backend) login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "invalid body")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	acc, ok := b.accounts[req.Email]
	if !ok || acc.password != req.Password {
		return detail(c, http.StatusUnauthorized, "Invalid email or password")
	}
	return c.JSON(http.StatusOK, b.tokenResponseLocked(acc.user))
}

func (b *Backend) refresh(c echo.Context) error {
	b.mu.Lock()
	hook := b.refreshHook
	b.mu.Unlock()
	if hook != nil {
		hook()
	}

	var req models.RefreshRequest
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "invalid body")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	id, ok := b.refreshTokens[req.RefreshToken]
	if !ok {
		return detail(c, http.StatusUnauthorized, "Invalid refresh token")
	}
	delete(b.refreshTokens, req.RefreshToken)
	acc, ok := b.userByIDLocked(id)
	if !ok {
		return detail(c, http.StatusUnauthorized, "Unknown user")
	}
	return c.JSON(http.StatusOK, b.tokenResponseLocked(acc.user))
}

func (b *Backend) me(c echo.Context) error {
	return c.JSON(http.StatusOK, current(c))
}

func (b *Backend) updateMe(c echo.Context) error {
	var req models.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "invalid body")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	acc, ok := b.userByIDLocked(current(c).ID)
	if !ok {
		return detail(c, http.StatusNotFound, "User not found")
	}
	if req.Password != nil {
		acc.password = *req.Password
	}
	if req.Email != nil && *req.Email != acc.user.Email {
		delete(b.accounts, acc.user.Email)
		acc.user.Email = *req.Email
		b.accounts[acc.user.Email] = acc
	}
	return c.JSON(http.StatusOK, acc.user)
}

func (b *Backend) userByID(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	acc, ok := b.userByIDLocked(c.Param("id"))
	if !ok {
		return detail(c, http.StatusNotFound, "User not found")
	}
	return c.JSON(http.StatusOK, acc.user)
}

func (b *Backend) users(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := models.UserList{Users: []models.User{}}
	for _, a := range b.accounts {
		list.Users = append(list.Users, a.user)
	}
	return c.JSON(http.StatusOK, list)
}

func (b *Backend) updateRole(c echo.Context) error {
	var req models.UpdateRoleRequest
	if err := c.Bind(&req); err != nil || !req.Role.Valid() {
		return detail(c, http.StatusUnprocessableEntity, "invalid role")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	acc, ok := b.userByIDLocked(c.Param("id"))
	if !ok {
		return detail(c, http.StatusNotFound, "User not found")
	}
	acc.user.Role = req.Role
	// the caller's tokens are reissued so role changes take effect at once
	caller, _ := b.userByIDLocked(current(c).ID)
	return c.JSON(http.StatusOK, b.tokenResponseLocked(caller.user))
}
