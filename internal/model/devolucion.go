package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Devolucion is a refund against a Venta.
type Devolucion struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID   uuid.UUID `gorm:"type:uuid;index;not null"`
	Fecha     time.Time `gorm:"not null"`
	Motivo    string
	CreatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	Detalles []DevolucionDetalle `gorm:"foreignKey:DevolucionID"`
}

func (Devolucion) TableName() string { return "devoluciones" }

type DevolucionDetalle struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DevolucionID uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductoID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	Cantidad     decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	CreatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (DevolucionDetalle) TableName() string { return "devolucion_detalles" }
