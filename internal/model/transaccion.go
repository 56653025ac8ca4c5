package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TipoTransaccion distinguishes the two structurally identical header variants.
type TipoTransaccion string

const (
	TipoVenta  TipoTransaccion = "venta"
	TipoCompra TipoTransaccion = "compra"
)

// Header status values shared by Venta and Compra.
const (
	EstadoActiva    = "activa"
	EstadoCancelada = "cancelada"
	EstadoDevuelta  = "devuelta"
)

// Transaccion is the variant-neutral view of a Venta or Compra header with its
// live lines. Repositories convert to and from the concrete tables.
type Transaccion struct {
	ID          uuid.UUID
	Tipo        TipoTransaccion
	PersonaID   uuid.UUID
	CajaID      uuid.UUID
	Fecha       time.Time
	Numero      string
	Estado      string
	Total       decimal.Decimal
	EliminadaEn *time.Time
	CreatedAt   time.Time
	Lineas      []LineaTransaccion
}

// LineaTransaccion is one line item. Monto is the unit price for sales and the
// unit cost for purchases.
type LineaTransaccion struct {
	ID         uuid.UUID
	ProductoID uuid.UUID
	Monto      decimal.Decimal
	Cantidad   decimal.Decimal
}

// Eliminada reports whether the header carries a tombstone.
func (t Transaccion) Eliminada() bool { return t.EliminadaEn != nil }
