package service

import (
	"context"
	"time"

	"contalink/internal/model"
	"contalink/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Pago is one tender line settling a transaction.
type Pago struct {
	Monto      decimal.Decimal
	TipoPagoID uuid.UUID
	Descriptor *string
}

// Asiento groups the movements to write for one settlement.
type Asiento struct {
	CajaID       uuid.UUID
	ReferenciaID *uuid.UUID
	Direccion    model.Direccion
	Fecha        time.Time
	Descripcion  string
	Pagos        []Pago
}

// CajaLedger is the only writer of MovimientoCaja and ComprobantePago rows.
type CajaLedger interface {
	// Saldo is the sum of the till's live signed movements, computed inside tx.
	Saldo(ctx context.Context, tx *gorm.DB, cajaID uuid.UUID) (decimal.Decimal, error)
	// Registrar writes one movement and one payment proof per tender.
	Registrar(ctx context.Context, tx *gorm.DB, a Asiento) ([]model.MovimientoCaja, error)
	// Revertir tombstones every proof and movement referencing referenciaID and
	// fails with ErrReversionIncompleta if any of them is still live afterwards.
	Revertir(ctx context.Context, tx *gorm.DB, referenciaID uuid.UUID) error
}

type cajaLedger struct {
	repo repository.CajaRepository
}

func NewCajaLedger(repo repository.CajaRepository) CajaLedger {
	return &cajaLedger{repo: repo}
}

func (l *cajaLedger) Saldo(ctx context.Context, tx *gorm.DB, cajaID uuid.UUID) (decimal.Decimal, error) {
	return l.repo.SaldoTx(ctx, tx, cajaID)
}

func (l *cajaLedger) Registrar(ctx context.Context, tx *gorm.DB, a Asiento) ([]model.MovimientoCaja, error) {
	out := make([]model.MovimientoCaja, 0, len(a.Pagos))
	for _, pago := range a.Pagos {
		monto := pago.Monto.Abs()
		if a.Direccion == model.DireccionEgreso {
			monto = monto.Neg()
		}
		mov := model.MovimientoCaja{
			ID:           uuid.New(),
			CajaID:       a.CajaID,
			ReferenciaID: a.ReferenciaID,
			Descripcion:  a.Descripcion,
			Monto:        monto,
			Direccion:    a.Direccion,
			Fecha:        a.Fecha,
		}
		if err := l.repo.CreateMovimientoTx(ctx, tx, &mov); err != nil {
			return nil, err
		}
		comp := model.ComprobantePago{
			ID:               uuid.New(),
			MovimientoCajaID: mov.ID,
			TipoPagoID:       pago.TipoPagoID,
			Descriptor:       pago.Descriptor,
		}
		if err := l.repo.CreateComprobanteTx(ctx, tx, &comp); err != nil {
			return nil, err
		}
		mov.Comprobantes = []model.ComprobantePago{comp}
		out = append(out, mov)
	}
	return out, nil
}

func (l *cajaLedger) Revertir(ctx context.Context, tx *gorm.DB, referenciaID uuid.UUID) error {
	movs, err := l.repo.ListMovimientosPorReferenciaTx(ctx, tx, referenciaID)
	if err != nil {
		return err
	}
	ids := make([]uuid.UUID, 0, len(movs))
	for _, m := range movs {
		ids = append(ids, m.ID)
	}

	// Proofs first: a movement is never removed while a proof still hangs from it.
	if _, err := l.repo.DeleteComprobantesTx(ctx, tx, ids); err != nil {
		return err
	}
	if _, err := l.repo.DeleteMovimientosTx(ctx, tx, ids); err != nil {
		return err
	}

	quedanMovs, quedanComps, err := l.repo.CountPorReferenciaTx(ctx, tx, referenciaID)
	if err != nil {
		return err
	}
	if quedanMovs > 0 || quedanComps > 0 {
		return ErrReversionIncompleta.Conf(
			"quedan %d movimientos y %d comprobantes de caja para %s", quedanMovs, quedanComps, referenciaID)
	}
	return nil
}
