// Package models holds the user profile and the wire types exchanged with
// the backend's auth endpoints.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type Role string

const (
	RoleOwnerAdmin Role = "OWNER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleManager    Role = "MANAGER"
	RoleCashier    Role = "CASHIER"
	RoleTechnician Role = "TECHNICIAN"
)

// LoginRoles are the roles offered at sign-in. Owners sign in as ADMIN.
var LoginRoles = []Role{RoleAdmin, RoleManager, RoleCashier, RoleTechnician}

// ParseRole reads a sign-in role, case-insensitively. An empty string means
// ADMIN.
func ParseRole(s string) (Role, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return RoleAdmin, nil
	}
	for _, r := range LoginRoles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// UserProfile is the signed-in user as the client presents it.
type UserProfile struct {
	ID          string `json:"id"`
	Role        Role   `json:"role"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

// FlexibleID accepts both JSON numbers and strings; the backend uses either.
type FlexibleID string

func (id *FlexibleID) UnmarshalJSON(b []byte) error {
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
		*id = FlexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("user id: %w", err)
	}
	if i, err := n.Int64(); err == nil {
		*id = FlexibleID(strconv.FormatInt(i, 10))
		return nil
	}
	*id = FlexibleID(n.String())
	return nil
}

// APIUser is the user record as the backend sends it.
type APIUser struct {
	ID       FlexibleID `json:"id"`
	Role     Role       `json:"role"`
	Name     string     `json:"name,omitempty"`
	FullName string     `json:"fullName,omitempty"`
	Username string     `json:"username,omitempty"`
	Email    string     `json:"email,omitempty"`
	Phone    string     `json:"phone,omitempty"`
}

// Profile normalises a backend user: owners are presented as admins and the
// display name falls back through name, fullName, username and finally the id.
func (u APIUser) Profile() UserProfile {
	role := u.Role
	if role == RoleOwnerAdmin {
		role = RoleAdmin
	}

	name := string(u.ID)
	for _, candidate := range []string{u.Name, u.FullName, u.Username} {
		if candidate != "" {
			name = candidate
			break
		}
	}

	return UserProfile{
		ID:          string(u.ID),
		Role:        role,
		DisplayName: name,
		Email:       u.Email,
		Phone:       u.Phone,
	}
}
