package model

import (
	"time"

	"github.com/google/uuid"
)

// Roles. The clinic runs with three: admin manages everything, secretaria
// handles the counter, medico can resolve returns in addition to clinical
// work (out of scope here).
const (
	RolAdmin      = "admin"
	RolSecretaria = "secretaria"
	RolMedico     = "medico"
)

// Usuario stores system users with role-based access.
type Usuario struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Nombre       string    `gorm:"not null"`
	Email        *string
	PasswordHash string `gorm:"not null"`
	Rol          string `gorm:"type:varchar(20);not null"`
	Activo       bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Usuario) TableName() string { return "usuarios" }
