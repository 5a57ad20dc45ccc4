package domain

import "time"

// Role define los roles de usuario que existen.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User representa un usuario registrado en el sistema.
type User struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Email       string    `gorm:"unique;not null" json:"email"`
	Password    string    `gorm:"not null" json:"-"` // el "-" oculta el hash en JSON
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	PhoneNumber string    `json:"phone_number"`
	Role        Role      `gorm:"type:varchar(20);default:'USER'" json:"role"`
	Enabled     bool      `gorm:"default:true" json:"enabled"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName especifica el nombre de la tabla en MySQL.
func (User) TableName() string {
	return "users"
}

// Actor is the authenticated identity performing a request, extracted from
// the JWT claims by the auth middleware.
type Actor struct {
	ID   string
	Role Role
}

// IsAdmin reports whether the actor carries the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
