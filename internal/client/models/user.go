package models

// Role is a user's permission level.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is the backend's view of an account.
type User struct {
	ID    string `json:"uuid"`
	Email string `json:"email"`
	Role  Role   `json:"role,omitempty"`
}

func (u User) Validate() error {
	if u.ID == "" {
		return invalid("user uuid is empty")
	}
	if u.Role != "" && !u.Role.Valid() {
		return invalid("unknown role %q", u.Role)
	}
	return nil
}

type UserList struct {
	Users []User `json:"users"`
}

func (l UserList) Validate() error {
	for i, u := range l.Users {
		if err := u.Validate(); err != nil {
			return invalid("users[%d]: %v", i, err)
		}
	}
	return nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type RegisterResponse struct {
	Message string `json:"message"`
	UUID    string `json:"uuid"`
}

func (r RegisterResponse) Validate() error {
	if r.UUID == "" {
		return invalid("registration returned no uuid")
	}
	return nil
}

// UpdateUserRequest carries only the fields being changed.
type UpdateUserRequest struct {
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

type UpdateRoleRequest struct {
	Role Role `json:"role"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse is returned by login, refresh and role updates.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	UserUUID     string `json:"user_uuid"`
}

func (t TokenResponse) Validate() error {
	if t.AccessToken == "" {
		return invalid("access_token is empty")
	}
	if t.RefreshToken == "" {
		return invalid("refresh_token is empty")
	}
	return nil
}
