package service

import (
	"context"

	"contalink/internal/model"
	"contalink/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OperacionStock is the closed set of operations that move product stock.
// Each one has a fixed sign; no caller passes a signed quantity.
type OperacionStock int

const (
	OpVenta OperacionStock = iota + 1
	OpCompra
	OpReversaVenta
	OpReversaCompra
	OpDevolucion
	OpReversaDevolucion
)

var (
	entrada = decimal.NewFromInt(1)
	salida  = decimal.NewFromInt(-1)
)

// Signo is +1 for operations that put goods back on the shelf and -1 for
// those that take them off.
func (o OperacionStock) Signo() decimal.Decimal {
	switch o {
	case OpCompra, OpReversaVenta, OpDevolucion:
		return entrada
	default:
		return salida
	}
}

// Reversa returns the operation that undoes o.
func (o OperacionStock) Reversa() OperacionStock {
	switch o {
	case OpVenta:
		return OpReversaVenta
	case OpCompra:
		return OpReversaCompra
	case OpDevolucion:
		return OpReversaDevolucion
	case OpReversaVenta:
		return OpVenta
	case OpReversaCompra:
		return OpCompra
	default:
		return OpDevolucion
	}
}

func (o OperacionStock) String() string {
	switch o {
	case OpVenta:
		return "venta"
	case OpCompra:
		return "compra"
	case OpReversaVenta:
		return "reversa_venta"
	case OpReversaCompra:
		return "reversa_compra"
	case OpDevolucion:
		return "devolucion"
	case OpReversaDevolucion:
		return "reversa_devolucion"
	default:
		return "desconocida"
	}
}

// StockLedger is the only writer of Producto.Cantidad. Every application is
// mirrored by an append-only MovimientoStock row.
type StockLedger interface {
	// Aplicar moves cantidad units of p in the direction of op and returns the
	// resulting quantity. p must be row-locked by the caller; its Cantidad is
	// advanced in place so that repeated lines on the same product chain.
	Aplicar(ctx context.Context, tx *gorm.DB, op OperacionStock, p *model.Producto, cantidad decimal.Decimal, referenciaID uuid.UUID, motivo string) (decimal.Decimal, error)
	ActualizarCosto(ctx context.Context, tx *gorm.DB, productoID uuid.UUID, costo decimal.Decimal) error
}

type stockLedger struct {
	productos   repository.ProductoRepository
	movimientos repository.MovimientoStockRepository
}

func NewStockLedger(productos repository.ProductoRepository, movimientos repository.MovimientoStockRepository) StockLedger {
	return &stockLedger{productos: productos, movimientos: movimientos}
}

func (l *stockLedger) Aplicar(ctx context.Context, tx *gorm.DB, op OperacionStock, p *model.Producto, cantidad decimal.Decimal, referenciaID uuid.UUID, motivo string) (decimal.Decimal, error) {
	delta := cantidad.Mul(op.Signo())
	if err := l.productos.AjustarCantidadTx(ctx, tx, p.ID, delta); err != nil {
		return decimal.Zero, err
	}

	anterior := p.Cantidad
	p.Cantidad = anterior.Add(delta)

	ref := referenciaID
	mov := &model.MovimientoStock{
		ProductoID:       p.ID,
		Tipo:             op.String(),
		Cantidad:         delta,
		CantidadAnterior: anterior,
		CantidadNueva:    p.Cantidad,
		Motivo:           motivo,
		ReferenciaID:     &ref,
	}
	if err := l.movimientos.CreateTx(ctx, tx, mov); err != nil {
		return decimal.Zero, err
	}
	return p.Cantidad, nil
}

func (l *stockLedger) ActualizarCosto(ctx context.Context, tx *gorm.DB, productoID uuid.UUID, costo decimal.Decimal) error {
	return l.productos.ActualizarCostoTx(ctx, tx, productoID, costo)
}
