package repository

import (
	"context"

	"contalink/internal/dto"
	"contalink/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ventaRepo struct {
	tablasTransaccion
	db *gorm.DB
}

func NewVentaRepository(db *gorm.DB) TransaccionRepository {
	return &ventaRepo{
		tablasTransaccion: tablasTransaccion{cabecera: "ventas", detalle: "venta_detalles", fk: "venta_id"},
		db:                db,
	}
}

func (r *ventaRepo) Tipo() model.TipoTransaccion { return model.TipoVenta }

func (r *ventaRepo) CreateTx(ctx context.Context, tx *gorm.DB, t *model.Transaccion) error {
	v := ventaFromTransaccion(t)
	if err := tx.WithContext(ctx).Create(v).Error; err != nil {
		return err
	}
	*t = *ventaToTransaccion(v)
	return nil
}

func (r *ventaRepo) FindByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Transaccion, error) {
	var v model.Venta
	if err := paraActualizar(tx.WithContext(ctx).Unscoped()).First(&v, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if err := tx.WithContext(ctx).Where("venta_id = ?", id).Order("created_at ASC").Find(&v.Detalles).Error; err != nil {
		return nil, err
	}
	return ventaToTransaccion(&v), nil
}

func (r *ventaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Transaccion, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).Unscoped().
		Preload("Detalles", "deleted_at IS NULL").
		First(&v, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return ventaToTransaccion(&v), nil
}

func (r *ventaRepo) List(ctx context.Context, filter dto.TransaccionFilter) ([]model.Transaccion, int64, error) {
	normalizarFiltro(&filter)
	q := r.db.WithContext(ctx).Model(&model.Venta{})
	if filter.Estado != "" && filter.Estado != "all" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.Fecha != "" {
		q = q.Where("DATE(fecha) = ?", filter.Fecha)
	}
	if filter.PersonaID != "" {
		q = q.Where("persona_id = ?", filter.PersonaID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ventas []model.Venta
	err := q.Preload("Detalles").
		Order("fecha DESC").
		Offset((filter.Page - 1) * filter.Limit).Limit(filter.Limit).
		Find(&ventas).Error
	if err != nil {
		return nil, 0, err
	}
	out := make([]model.Transaccion, 0, len(ventas))
	for i := range ventas {
		out = append(out, *ventaToTransaccion(&ventas[i]))
	}
	return out, total, nil
}

func ventaFromTransaccion(t *model.Transaccion) *model.Venta {
	v := &model.Venta{
		ID:        t.ID,
		PersonaID: t.PersonaID,
		CajaID:    t.CajaID,
		Fecha:     t.Fecha,
		Numero:    t.Numero,
		Estado:    t.Estado,
		Total:     t.Total,
	}
	for _, l := range t.Lineas {
		v.Detalles = append(v.Detalles, model.VentaDetalle{
			ID:             l.ID,
			ProductoID:     l.ProductoID,
			PrecioUnitario: l.Monto,
			Cantidad:       l.Cantidad,
		})
	}
	return v
}

func ventaToTransaccion(v *model.Venta) *model.Transaccion {
	t := &model.Transaccion{
		ID:          v.ID,
		Tipo:        model.TipoVenta,
		PersonaID:   v.PersonaID,
		CajaID:      v.CajaID,
		Fecha:       v.Fecha,
		Numero:      v.Numero,
		Estado:      v.Estado,
		Total:       v.Total,
		EliminadaEn: deletedAtPtr(v.DeletedAt),
		CreatedAt:   v.CreatedAt,
	}
	for _, d := range v.Detalles {
		t.Lineas = append(t.Lineas, model.LineaTransaccion{
			ID:         d.ID,
			ProductoID: d.ProductoID,
			Monto:      d.PrecioUnitario,
			Cantidad:   d.Cantidad,
		})
	}
	return t
}
