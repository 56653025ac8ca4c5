package repository

import (
	"context"
	"time"

	"contalink/internal/dto"
	"contalink/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransaccionRepository is the header/line store shared by sales and purchases.
// It is the only writer of header and line rows.
type TransaccionRepository interface {
	Tipo() model.TipoTransaccion
	// CreateTx inserts the header and its lines. A duplicated Numero surfaces as
	// gorm.ErrDuplicatedKey.
	CreateTx(ctx context.Context, tx *gorm.DB, t *model.Transaccion) error
	// FindByIDTx row-locks the header, including a tombstoned one, and loads its
	// live lines.
	FindByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Transaccion, error)
	CountLineasTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (int64, error)
	DeleteLineasTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) (int64, error)
	TombstoneTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) error
	UpdateEstadoTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, estado string) error

	FindByID(ctx context.Context, id uuid.UUID) (*model.Transaccion, error)
	List(ctx context.Context, filter dto.TransaccionFilter) ([]model.Transaccion, int64, error)
}

// tablasTransaccion implements the operations that only differ by table name.
type tablasTransaccion struct {
	cabecera string
	detalle  string
	fk       string
}

func (t tablasTransaccion) CountLineasTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (int64, error) {
	var n int64
	err := tx.WithContext(ctx).Table(t.detalle).
		Where(t.fk+" = ? AND deleted_at IS NULL", id).
		Count(&n).Error
	return n, err
}

func (t tablasTransaccion) DeleteLineasTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) (int64, error) {
	res := tx.WithContext(ctx).Table(t.detalle).
		Where(t.fk+" = ? AND deleted_at IS NULL", id).
		Update("deleted_at", at)
	return res.RowsAffected, res.Error
}

func (t tablasTransaccion) TombstoneTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) error {
	res := tx.WithContext(ctx).Table(t.cabecera).
		Where("id = ? AND deleted_at IS NULL", id).
		Updates(map[string]interface{}{"deleted_at": at, "updated_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (t tablasTransaccion) UpdateEstadoTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, estado string) error {
	return tx.WithContext(ctx).Table(t.cabecera).
		Where("id = ?", id).
		Updates(map[string]interface{}{"estado": estado, "updated_at": time.Now()}).Error
}

func normalizarFiltro(filter *dto.TransaccionFilter) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 200 {
		filter.Limit = 50
	}
}

func deletedAtPtr(d gorm.DeletedAt) *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time
	return &t
}
