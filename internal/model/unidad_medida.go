package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UnidadMedida is the unit a product is bought and sold in.
// PermiteDecimales=false means every quantity expressed in this unit must be integral.
type UnidadMedida struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre           string    `gorm:"not null"`
	Abreviatura      string    `gorm:"type:varchar(10);not null"`
	PermiteDecimales bool      `gorm:"not null;default:false"`
	Activo           bool      `gorm:"not null;default:true"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

func (UnidadMedida) TableName() string { return "unidades_medida" }
