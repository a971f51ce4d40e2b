package domain

import (
	"context"
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Name         string    `gorm:"size:64;not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;size:191;not null" json:"email"`
	PasswordHash string    `gorm:"size:100;not null" json:"-"`
	Role         string    `gorm:"size:16;not null;default:user" json:"role"` // "user"/"admin"
	Phone        string    `gorm:"size:32" json:"phone"`
	Street       string    `gorm:"size:191" json:"street"`
	Apartment    string    `gorm:"size:64" json:"apartment"`
	Zip          string    `gorm:"size:16" json:"zip"`
	City         string    `gorm:"size:64" json:"city"`
	Country      string    `gorm:"size:64" json:"country"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

// UserRepository returns (nil, nil) from the Find methods when nothing matches.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, u *User) error
}
