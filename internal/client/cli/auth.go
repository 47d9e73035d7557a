package cli

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/vmgen/internal/client/models"
	"github.com/dmitrijs2005/vmgen/internal/client/services"
	"github.com/dmitrijs2005/vmgen/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

func (a *App) promptEmail(email string) (string, error) {
	if email != "" {
		return email, nil
	}
	return getSimpleText(a.reader, "Enter email", a.out)
}

// Register prompts for missing credentials and creates an account. The
// password is asked twice.
func (a *App) Register(ctx context.Context, email string) error {
	if a.session.IsLocal() {
		a.println(services.ErrLocalMode.Error())
		return nil
	}
	email, err := a.promptEmail(email)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	confirm, err := getPassword(a.reader, "Confirm password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	res, err := a.authService.Register(ctx, email, string(password), string(confirm))
	if err != nil {
		return err
	}
	a.printf("Registered %s (%s). You can log in now.\n", email, res.UUID)
	return nil
}

// Login authenticates and persists the session.
func (a *App) Login(ctx context.Context, email string) error {
	if a.session.IsLocal() {
		a.println(services.ErrLocalMode.Error())
		return nil
	}
	email, err := a.promptEmail(email)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.authService.Login(ctx, email, string(password))
	if err != nil {
		return err
	}
	a.printf("Logged in as %s.\n", u.Email)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	a.println("Logged out.")
	return nil
}

// WhoAmI prints the stored user and the access token's expiry.
func (a *App) WhoAmI(ctx context.Context, refresh bool) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	u, _ := a.session.User()
	if refresh && !a.session.IsLocal() {
		var err error
		if u, err = a.authService.Me(ctx); err != nil {
			return err
		}
	}

	t := newTable(a.out)
	t.row("ID:", u.ID)
	t.row("Email:", u.Email)
	t.row("Role:", orDash(string(u.Role)))
	if a.session.IsLocal() {
		t.row("Mode:", "local")
	} else if c, err := a.session.Claims(); err == nil && !c.ExpiresAt.IsZero() {
		exp := c.ExpiresAt.Local().Format(time.DateTime)
		if c.Expired(time.Now()) {
			exp += " (expired)"
		}
		t.row("Token expires:", exp)
	}
	return t.flush()
}

// UpdateMe changes the caller's email and, when asked, the password.
func (a *App) UpdateMe(ctx context.Context, email string, changePassword bool) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	var req models.UpdateUserRequest
	if email != "" {
		req.Email = &email
	}
	if changePassword {
		pw, err := getPassword(a.reader, "New password", a.out)
		if err != nil {
			return err
		}
		defer common.WipeByteArray(pw)
		confirm, err := getPassword(a.reader, "Confirm password", a.out)
		if err != nil {
			return err
		}
		defer common.WipeByteArray(confirm)
		if string(pw) != string(confirm) {
			return services.ErrPasswordMismatch
		}
		s := string(pw)
		req.Password = &s
	}
	if req.Email == nil && req.Password == nil {
		return errors.New("nothing to update: pass --email or --password")
	}
	u, err := a.authService.UpdateMe(ctx, req)
	if err != nil {
		return err
	}
	a.printf("Updated %s.\n", u.Email)
	return nil
}

func (a *App) ListUsers(ctx context.Context) error {
	users, err := a.authService.Users(ctx)
	if err != nil {
		return err
	}
	return a.printUsers(users)
}

func (a *App) ShowUser(ctx context.Context, id string) error {
	u, err := a.authService.UserByID(ctx, id)
	if err != nil {
		return err
	}
	return a.printUsers([]models.User{u})
}

func (a *App) SetRole(ctx context.Context, id, role string) error {
	r := models.Role(strings.ToUpper(strings.TrimSpace(role)))
	if err := a.authService.UpdateRole(ctx, id, r); err != nil {
		return err
	}
	a.printf("User %s is now %s.\n", id, r)
	return nil
}

func (a *App) Ping(ctx context.Context) error {
	if err := a.authService.Ping(ctx); err != nil {
		return err
	}
	a.printf("%s is up.\n", a.client.BaseURL())
	return nil
}
