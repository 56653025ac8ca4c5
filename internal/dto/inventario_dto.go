package dto

import "github.com/shopspring/decimal"

// MovimientoStockFilter is bound from the query string of
// GET /v1/inventario/movimientos.
type MovimientoStockFilter struct {
	ProductoID   string `form:"producto_id"   validate:"omitempty,uuid"`
	ReferenciaID string `form:"referencia_id" validate:"omitempty,uuid"`
	Tipo         string `form:"tipo"`
	Page         int    `form:"page,default=1"   validate:"min=1"`
	Limit        int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type MovimientoStockResponse struct {
	ID               string          `json:"id"`
	ProductoID       string          `json:"producto_id"`
	Tipo             string          `json:"tipo"`
	Cantidad         decimal.Decimal `json:"cantidad"`
	CantidadAnterior decimal.Decimal `json:"cantidad_anterior"`
	CantidadNueva    decimal.Decimal `json:"cantidad_nueva"`
	Motivo           string          `json:"motivo"`
	ReferenciaID     *string         `json:"referencia_id"`
	CreatedAt        string          `json:"created_at"`
}

type MovimientoStockListResponse struct {
	Data  []MovimientoStockResponse `json:"data"`
	Total int64                     `json:"total"`
	Page  int                       `json:"page"`
	Limit int                       `json:"limit"`
}

// AlertaStock is the payload of an alerta_stock job and the value stored per
// product once the worker consumes it.
type AlertaStock struct {
	ProductoID   string          `json:"producto_id"`
	Nombre       string          `json:"nombre"`
	Cantidad     decimal.Decimal `json:"cantidad"`
	Operacion    string          `json:"operacion"`
	ReferenciaID string          `json:"referencia_id"`
	DetectadaEn  string          `json:"detectada_en"`
}
