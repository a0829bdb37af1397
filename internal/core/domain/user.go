package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// UserID identifies a user. The backend emits it as a number on some
// endpoints and as a string on others, so both are accepted.
type UserID string

func (id *UserID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = UserID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("user id: %w", err)
	}
	*id = UserID(n.String())
	return nil
}

func (id UserID) String() string { return string(id) }

// User is a directory entry as returned by the ERP backend.
type User struct {
	ID        UserID    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      Role      `json:"role"`
	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
}

// UnmarshalJSON decodes a user record. A record without a role is an
// employee.
func (u *User) UnmarshalJSON(b []byte) error {
	type plain User
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	if p.Role == "" {
		p.Role = RoleEmployee
	}
	*u = User(p)
	return nil
}

// FullName joins first and last name, falling back to the username.
func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// Initials returns the avatar initials, "U" when the name is unknown.
func (u User) Initials() string {
	if u.FirstName == "" || u.LastName == "" {
		return "U"
	}
	return strings.ToUpper(string([]rune(u.FirstName)[:1]) + string([]rune(u.LastName)[:1]))
}

// Matches reports whether term occurs (case-insensitively) in the user's
// names, email, username or role.
func (u User) Matches(term string) bool {
	term = strings.ToLower(term)
	for _, field := range []string{u.FirstName, u.LastName, u.Email, u.Username, string(u.Role)} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// FilterUsers keeps the users matching term, preserving order.
func FilterUsers(users []User, term string) []User {
	out := make([]User, 0, len(users))
	for _, u := range users {
		if u.Matches(term) {
			out = append(out, u)
		}
	}
	return out
}

// UserFields carries the editable attributes of a user for create and update.
// An empty Password on update means "keep the current password".
type UserFields struct {
	Username        string `json:"username"         validate:"required,max=150"`
	Email           string `json:"email"            validate:"required,email"`
	FirstName       string `json:"first_name"       validate:"required,max=150"`
	LastName        string `json:"last_name"        validate:"required,max=150"`
	Role            Role   `json:"role"             validate:"required,oneof=admin manager employee"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm" validate:"eqfield=Password"`
}

// HasPassword reports whether a new password was supplied.
func (f UserFields) HasPassword() bool {
	return f.Password != "" || f.PasswordConfirm != ""
}

// FieldsFromUser prefills UserFields for editing an existing user.
func FieldsFromUser(u User) UserFields {
	return UserFields{
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
	}
}
