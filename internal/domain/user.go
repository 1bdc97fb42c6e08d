package domain

import "time"

type UserRole string

const (
	UserRoleStudent  UserRole = "student"
	UserRoleOwner    UserRole = "owner"
	UserRoleEmployee UserRole = "employee"
	UserRoleAdmin    UserRole = "admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case UserRoleStudent, UserRoleOwner, UserRoleEmployee, UserRoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           int64     `db:"user_id" json:"user_id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         UserRole  `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type RefreshSession struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	Role      UserRole  `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}
