package dto

import "github.com/shopspring/decimal"

type ItemDevolucionRequest struct {
	ProductoID string          `json:"producto_id" validate:"required,uuid"`
	Cantidad   decimal.Decimal `json:"cantidad"`
}

// CrearDevolucionRequest is the body of POST /v1/devoluciones.
type CrearDevolucionRequest struct {
	VentaID string                  `json:"venta_id" validate:"required,uuid"`
	Fecha   string                  `json:"fecha"    validate:"required,datetime=2006-01-02"`
	Motivo  string                  `json:"motivo"   validate:"required,min=3,max=255"`
	Items   []ItemDevolucionRequest `json:"items"    validate:"required,min=1,dive"`
}

type ItemDevolucionResponse struct {
	ProductoID string          `json:"producto_id"`
	Cantidad   decimal.Decimal `json:"cantidad"`
}

type DevolucionResponse struct {
	ID          string                   `json:"id"`
	VentaID     string                   `json:"venta_id"`
	Fecha       string                   `json:"fecha"`
	Motivo      string                   `json:"motivo"`
	Items       []ItemDevolucionResponse `json:"items"`
	EstadoVenta string                   `json:"estado_venta"`
}
