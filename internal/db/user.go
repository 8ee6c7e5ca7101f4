package db

import "time"

// Roles assigned to a User. Keepers run campaigns; admins maintain the
// reference catalogs.
const (
	RolePlayer = "player"
	RoleKeeper = "keeper"
	RoleAdmin  = "admin"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:254;not null;uniqueIndex" json:"email"`
	Name      string    `gorm:"size:64;not null" json:"name"`
	Role      string    `gorm:"size:16;not null;default:player" json:"role"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
