package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// TransaccionFilter is bound from the query string of GET /v1/ventas and
// GET /v1/compras.
type TransaccionFilter struct {
	Fecha     string `form:"fecha"      validate:"omitempty,datetime=2006-01-02"`
	Estado    string `form:"estado,default=all" validate:"omitempty,oneof=activa cancelada devuelta all"`
	PersonaID string `form:"persona_id" validate:"omitempty,uuid"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type TransaccionListResponse struct {
	Data  []TransaccionResponse `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

// LineaRequest is one line item. Quantity positivity and the unit decimal
// policy are checked by the service against the product's unit.
type LineaRequest struct {
	ProductoID string          `json:"producto_id" validate:"required,uuid"`
	Monto      decimal.Decimal `json:"monto"       validate:"min=0"`
	Cantidad   decimal.Decimal `json:"cantidad"`
}

type PagoRequest struct {
	Monto      decimal.Decimal `json:"monto"        validate:"gt=0"`
	TipoPagoID string          `json:"tipo_pago_id" validate:"required,uuid"`
	Descriptor *string         `json:"descriptor"   validate:"omitempty,max=255"`
}

// CrearTransaccionRequest is the body of POST /v1/ventas and POST /v1/compras.
type CrearTransaccionRequest struct {
	PersonaID string         `json:"persona_id" validate:"required,uuid"`
	Fecha     string         `json:"fecha"      validate:"required,datetime=2006-01-02"`
	Numero    string         `json:"numero"     validate:"required,max=30"`
	CajaID    string         `json:"caja_id"    validate:"required,uuid"`
	Lineas    []LineaRequest `json:"lineas"     validate:"required,min=1,dive"`
	Pagos     []PagoRequest  `json:"pagos"      validate:"required,min=1,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// TransaccionCreadaResponse is the 201 body for a created sale or purchase.
type TransaccionCreadaResponse struct {
	ID     string `json:"id"`
	Numero string `json:"numero"`
	Fecha  string `json:"fecha"`
}

type TransaccionEliminadaResponse struct {
	ID string `json:"id"`
}

type LineaResponse struct {
	ID         string          `json:"id"`
	ProductoID string          `json:"producto_id"`
	Monto      decimal.Decimal `json:"monto"`
	Cantidad   decimal.Decimal `json:"cantidad"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

type TransaccionResponse struct {
	ID          string          `json:"id"`
	Tipo        string          `json:"tipo"`
	PersonaID   string          `json:"persona_id"`
	CajaID      string          `json:"caja_id"`
	Fecha       string          `json:"fecha"`
	Numero      string          `json:"numero"`
	Estado      string          `json:"estado"`
	Total       decimal.Decimal `json:"total"`
	Lineas      []LineaResponse `json:"lineas"`
	EliminadaEn *string         `json:"eliminada_en"`
	CreatedAt   string          `json:"created_at"`
}
