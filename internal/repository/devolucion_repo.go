package repository

import (
	"context"
	"time"

	"contalink/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DevolucionRepository interface {
	// FindByID reads a refund header, tombstoned or not, without locking it.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Devolucion, error)
	CreateTx(ctx context.Context, tx *gorm.DB, d *model.Devolucion) error
	// FindByIDTx row-locks the refund header, including a tombstoned one, and
	// loads its live details.
	FindByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Devolucion, error)
	// CantidadesDevueltasTx sums refunded quantities per product across the
	// live refunds of a sale. The refund rows are locked while summing.
	CantidadesDevueltasTx(ctx context.Context, tx *gorm.DB, ventaID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)
	CountActivasPorVentaTx(ctx context.Context, tx *gorm.DB, ventaID uuid.UUID) (int64, error)
	DeleteTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) error
}

type devolucionRepo struct{ db *gorm.DB }

func NewDevolucionRepository(db *gorm.DB) DevolucionRepository { return &devolucionRepo{db: db} }

func (r *devolucionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Devolucion, error) {
	var d model.Devolucion
	err := r.db.WithContext(ctx).Unscoped().
		Preload("Detalles", "deleted_at IS NULL").
		First(&d, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *devolucionRepo) CreateTx(ctx context.Context, tx *gorm.DB, d *model.Devolucion) error {
	return tx.WithContext(ctx).Create(d).Error
}

func (r *devolucionRepo) FindByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Devolucion, error) {
	var d model.Devolucion
	if err := paraActualizar(tx.WithContext(ctx).Unscoped()).First(&d, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if err := tx.WithContext(ctx).Where("devolucion_id = ?", id).Find(&d.Detalles).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *devolucionRepo) CantidadesDevueltasTx(ctx context.Context, tx *gorm.DB, ventaID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	var ids []uuid.UUID
	if err := paraActualizar(tx.WithContext(ctx).Model(&model.Devolucion{})).
		Where("venta_id = ?", ventaID).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]decimal.Decimal)
	if len(ids) == 0 {
		return out, nil
	}

	var rows []struct {
		ProductoID uuid.UUID
		Total      decimal.Decimal
	}
	err := tx.WithContext(ctx).Model(&model.DevolucionDetalle{}).
		Select("producto_id, COALESCE(SUM(cantidad), 0) AS total").
		Where("devolucion_id IN ?", ids).
		Group("producto_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ProductoID] = row.Total
	}
	return out, nil
}

func (r *devolucionRepo) CountActivasPorVentaTx(ctx context.Context, tx *gorm.DB, ventaID uuid.UUID) (int64, error) {
	var n int64
	err := tx.WithContext(ctx).Model(&model.Devolucion{}).Where("venta_id = ?", ventaID).Count(&n).Error
	return n, err
}

func (r *devolucionRepo) DeleteTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) error {
	if err := tx.WithContext(ctx).Table("devolucion_detalles").
		Where("devolucion_id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", at).Error; err != nil {
		return err
	}
	res := tx.WithContext(ctx).Table("devoluciones").
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
