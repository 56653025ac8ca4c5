package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// MovimientoManualRequest funds or withdraws from a till outside any sale or
// purchase. Manual movements carry no reference id.
type MovimientoManualRequest struct {
	CajaID      string          `json:"caja_id"     validate:"required,uuid"`
	Tipo        string          `json:"tipo"        validate:"required,oneof=ingreso_manual egreso_manual"`
	TipoPagoID  string          `json:"tipo_pago_id" validate:"required,uuid"`
	Monto       decimal.Decimal `json:"monto"       validate:"gt=0"`
	Descripcion string          `json:"descripcion" validate:"required,min=3,max=255"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaldoResponse struct {
	CajaID string          `json:"caja_id"`
	Saldo  decimal.Decimal `json:"saldo"`
}

type MovimientoCajaResponse struct {
	ID           string          `json:"id"`
	CajaID       string          `json:"caja_id"`
	ReferenciaID *string         `json:"referencia_id"`
	Descripcion  string          `json:"descripcion"`
	Monto        decimal.Decimal `json:"monto"`
	Direccion    string          `json:"direccion"`
	Fecha        string          `json:"fecha"`
}
