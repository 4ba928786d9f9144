package models

import "time"

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

type User struct {
	ID          uint       `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	Email       string     `json:"email" gorm:"column:email;type:varchar(255);not null;uniqueIndex"`
	Name        string     `json:"name" gorm:"column:name;type:varchar(255)"`
	Role        string     `json:"role" gorm:"column:role;type:varchar(16);not null;default:'member'"`
	Active      bool       `json:"active" gorm:"column:active;not null"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty" gorm:"column:last_login_at"`
	CreatedAt   time.Time  `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string { return "users" }

func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

// ValidRole reports whether role is assignable.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleMember
}
