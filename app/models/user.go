package models

import (
	"time"

	"github.com/volatiletech/null/v8"
)

type User struct {
	ID           int64       `json:"id" db:"id"`
	Name         string      `json:"name" db:"name"`
	Role         Role        `json:"role" db:"role"`
	IDNum        null.String `json:"id_num" db:"id_num"`
	Roll         null.String `json:"roll" db:"roll"`
	RegNo        null.String `json:"reg_no" db:"reg_no"`
	Photo        null.String `json:"photo" db:"photo"`
	Phone        string      `json:"phone" db:"phone"`
	PasswordHash string      `json:"-" db:"password_hash"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// OptionalString maps an empty form value to a NULL column.
func OptionalString(s string) null.String {
	if s == "" {
		return null.String{}
	}
	return null.StringFrom(s)
}
