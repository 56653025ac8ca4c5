package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Persona is a counterparty: the customer of a sale or the supplier of a purchase.
type Persona struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"not null"`
	Documento *string   `gorm:"type:varchar(20);index"`
	Activo    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Persona) TableName() string { return "personas" }
