package domain

import (
	"github.com/fundwit/go-commons/types"
)

type User struct {
	ID     types.ID `json:"id" gorm:"primary_key"`
	Name   string   `json:"name"`
	Email  string   `json:"email" gorm:"unique_index:email_unique"`
	Role   Role     `json:"role"`
	Secret string   `json:"-"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

type UserInfo struct {
	ID    types.ID `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Role  Role     `json:"role"`
}

func (u *User) Info() UserInfo {
	return UserInfo{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

type Area struct {
	ID          types.ID `json:"id" gorm:"primary_key"`
	Name        string   `json:"name" gorm:"unique_index:area_name_unique"`
	Description string   `json:"description"`
}

// Tag doubles as a project category.
type Tag struct {
	ID    types.ID `json:"id" gorm:"primary_key"`
	Name  string   `json:"name" gorm:"unique_index:tag_name_unique"`
	Color string   `json:"color"`
}

type UserCreation struct {
	Name     string `json:"name" binding:"required,max=60"`
	Email    string `json:"email" binding:"required,email,max=120"`
	Password string `json:"password" binding:"required,min=6,max=64"`
	Role     Role   `json:"role" binding:"required,oneof=admin editor viewer"`
}

type UserUpdating struct {
	Name     *string `json:"name" binding:"omitempty,min=1,max=60"`
	Password *string `json:"password" binding:"omitempty,min=6,max=64"`
	Role     *Role   `json:"role" binding:"omitempty,oneof=admin editor viewer"`
}

type AreaCreation struct {
	Name        string `json:"name" binding:"required,max=60"`
	Description string `json:"description" binding:"max=500"`
}

type TagCreation struct {
	Name  string `json:"name" binding:"required,max=60"`
	Color string `json:"color" binding:"max=20"`
}
