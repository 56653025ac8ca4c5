package repository

import (
	"context"

	"contalink/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CajaRepository persists tills, their movements and the payment proofs
// backing each movement.
type CajaRepository interface {
	FindCaja(ctx context.Context, id uuid.UUID) (*model.Caja, error)
	ListMovimientos(ctx context.Context, cajaID uuid.UUID) ([]model.MovimientoCaja, error)

	// FindCajaTx loads a live till; with bloquear it is row-locked so that
	// balance checks on the same till serialize.
	FindCajaTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, bloquear bool) (*model.Caja, error)
	// SaldoTx aggregates the signed amounts of the till's live movements.
	SaldoTx(ctx context.Context, tx *gorm.DB, cajaID uuid.UUID) (decimal.Decimal, error)
	CreateMovimientoTx(ctx context.Context, tx *gorm.DB, m *model.MovimientoCaja) error
	CreateComprobanteTx(ctx context.Context, tx *gorm.DB, c *model.ComprobantePago) error
	ListMovimientosPorReferenciaTx(ctx context.Context, tx *gorm.DB, referenciaID uuid.UUID) ([]model.MovimientoCaja, error)
	DeleteComprobantesTx(ctx context.Context, tx *gorm.DB, movimientoIDs []uuid.UUID) (int64, error)
	DeleteMovimientosTx(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (int64, error)
	// CountPorReferenciaTx counts live movements referencing referenciaID and
	// live proofs hanging from any movement with that reference.
	CountPorReferenciaTx(ctx context.Context, tx *gorm.DB, referenciaID uuid.UUID) (movimientos int64, comprobantes int64, err error)
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) FindCaja(ctx context.Context, id uuid.UUID) (*model.Caja, error) {
	return r.FindCajaTx(ctx, r.db, id, false)
}

func (r *cajaRepo) ListMovimientos(ctx context.Context, cajaID uuid.UUID) ([]model.MovimientoCaja, error) {
	var movs []model.MovimientoCaja
	err := r.db.WithContext(ctx).Preload("Comprobantes").
		Where("caja_id = ?", cajaID).
		Order("fecha ASC, created_at ASC").
		Find(&movs).Error
	return movs, err
}

func (r *cajaRepo) FindCajaTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, bloquear bool) (*model.Caja, error) {
	q := tx.WithContext(ctx)
	if bloquear {
		q = paraActualizar(q)
	}
	var c model.Caja
	err := q.First(&c, "id = ?", id).Error
	return &c, err
}

func (r *cajaRepo) SaldoTx(ctx context.Context, tx *gorm.DB, cajaID uuid.UUID) (decimal.Decimal, error) {
	var saldo decimal.NullDecimal
	err := tx.WithContext(ctx).Model(&model.MovimientoCaja{}).
		Where("caja_id = ?", cajaID).
		Select("COALESCE(SUM(monto), 0)").
		Scan(&saldo).Error
	if err != nil {
		return decimal.Zero, err
	}
	return saldo.Decimal, nil
}

func (r *cajaRepo) CreateMovimientoTx(ctx context.Context, tx *gorm.DB, m *model.MovimientoCaja) error {
	return tx.WithContext(ctx).Omit("Comprobantes").Create(m).Error
}

func (r *cajaRepo) CreateComprobanteTx(ctx context.Context, tx *gorm.DB, c *model.ComprobantePago) error {
	return tx.WithContext(ctx).Create(c).Error
}

func (r *cajaRepo) ListMovimientosPorReferenciaTx(ctx context.Context, tx *gorm.DB, referenciaID uuid.UUID) ([]model.MovimientoCaja, error) {
	var movs []model.MovimientoCaja
	err := tx.WithContext(ctx).Preload("Comprobantes").
		Where("referencia_id = ?", referenciaID).
		Order("created_at ASC").
		Find(&movs).Error
	return movs, err
}

func (r *cajaRepo) DeleteComprobantesTx(ctx context.Context, tx *gorm.DB, movimientoIDs []uuid.UUID) (int64, error) {
	if len(movimientoIDs) == 0 {
		return 0, nil
	}
	res := tx.WithContext(ctx).Where("movimiento_caja_id IN ?", movimientoIDs).Delete(&model.ComprobantePago{})
	return res.RowsAffected, res.Error
}

func (r *cajaRepo) DeleteMovimientosTx(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := tx.WithContext(ctx).Where("id IN ?", ids).Delete(&model.MovimientoCaja{})
	return res.RowsAffected, res.Error
}

func (r *cajaRepo) CountPorReferenciaTx(ctx context.Context, tx *gorm.DB, referenciaID uuid.UUID) (int64, int64, error) {
	var movs int64
	if err := tx.WithContext(ctx).Model(&model.MovimientoCaja{}).
		Where("referencia_id = ?", referenciaID).
		Count(&movs).Error; err != nil {
		return 0, 0, err
	}

	// Proofs are counted through every movement ever tagged with the reference,
	// tombstoned or not: a live proof under a deleted movement is still residue.
	var comps int64
	sub := tx.Unscoped().Model(&model.MovimientoCaja{}).Select("id").Where("referencia_id = ?", referenciaID)
	if err := tx.WithContext(ctx).Model(&model.ComprobantePago{}).
		Where("movimiento_caja_id IN (?)", sub).
		Count(&comps).Error; err != nil {
		return 0, 0, err
	}
	return movs, comps, nil
}
