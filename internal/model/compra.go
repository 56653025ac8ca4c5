package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Compra is a purchase header, structurally identical to Venta.
type Compra struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PersonaID uuid.UUID       `gorm:"type:uuid;index;not null"`
	CajaID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	Fecha     time.Time       `gorm:"not null"`
	Numero    string          `gorm:"type:varchar(30);uniqueIndex;not null"`
	Estado    string          `gorm:"type:varchar(20);not null;default:'activa'"`
	Total     decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	Detalles []CompraDetalle `gorm:"foreignKey:CompraID"`
}

func (Compra) TableName() string { return "compras" }

type CompraDetalle struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompraID      uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductoID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	CostoUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Cantidad      decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	CreatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (CompraDetalle) TableName() string { return "compra_detalles" }
