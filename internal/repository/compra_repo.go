package repository

import (
	"context"

	"contalink/internal/dto"
	"contalink/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type compraRepo struct {
	tablasTransaccion
	db *gorm.DB
}

func NewCompraRepository(db *gorm.DB) TransaccionRepository {
	return &compraRepo{
		tablasTransaccion: tablasTransaccion{cabecera: "compras", detalle: "compra_detalles", fk: "compra_id"},
		db:                db,
	}
}

func (r *compraRepo) Tipo() model.TipoTransaccion { return model.TipoCompra }

func (r *compraRepo) CreateTx(ctx context.Context, tx *gorm.DB, t *model.Transaccion) error {
	c := compraFromTransaccion(t)
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		return err
	}
	*t = *compraToTransaccion(c)
	return nil
}

func (r *compraRepo) FindByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Transaccion, error) {
	var c model.Compra
	if err := paraActualizar(tx.WithContext(ctx).Unscoped()).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if err := tx.WithContext(ctx).Where("compra_id = ?", id).Order("created_at ASC").Find(&c.Detalles).Error; err != nil {
		return nil, err
	}
	return compraToTransaccion(&c), nil
}

func (r *compraRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Transaccion, error) {
	var c model.Compra
	err := r.db.WithContext(ctx).Unscoped().
		Preload("Detalles", "deleted_at IS NULL").
		First(&c, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return compraToTransaccion(&c), nil
}

func (r *compraRepo) List(ctx context.Context, filter dto.TransaccionFilter) ([]model.Transaccion, int64, error) {
	normalizarFiltro(&filter)
	q := r.db.WithContext(ctx).Model(&model.Compra{})
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

	var compras []model.Compra
	err := q.Preload("Detalles").
		Order("fecha DESC").
		Offset((filter.Page - 1) * filter.Limit).Limit(filter.Limit).
		Find(&compras).Error
	if err != nil {
		return nil, 0, err
	}
	out := make([]model.Transaccion, 0, len(compras))
	for i := range compras {
		out = append(out, *compraToTransaccion(&compras[i]))
	}
	return out, total, nil
}

func compraFromTransaccion(t *model.Transaccion) *model.Compra {
	c := &model.Compra{
		ID:        t.ID,
		PersonaID: t.PersonaID,
		CajaID:    t.CajaID,
		Fecha:     t.Fecha,
		Numero:    t.Numero,
		Estado:    t.Estado,
		Total:     t.Total,
	}
	for _, l := range t.Lineas {
		c.Detalles = append(c.Detalles, model.CompraDetalle{
			ID:            l.ID,
			ProductoID:    l.ProductoID,
			CostoUnitario: l.Monto,
			Cantidad:      l.Cantidad,
		})
	}
	return c
}

func compraToTransaccion(c *model.Compra) *model.Transaccion {
	t := &model.Transaccion{
		ID:          c.ID,
		Tipo:        model.TipoCompra,
		PersonaID:   c.PersonaID,
		CajaID:      c.CajaID,
		Fecha:       c.Fecha,
		Numero:      c.Numero,
		Estado:      c.Estado,
		Total:       c.Total,
		EliminadaEn: deletedAtPtr(c.DeletedAt),
		CreatedAt:   c.CreatedAt,
	}
	for _, d := range c.Detalles {
		t.Lineas = append(t.Lineas, model.LineaTransaccion{
			ID:         d.ID,
			ProductoID: d.ProductoID,
			Monto:      d.CostoUnitario,
			Cantidad:   d.Cantidad,
		})
	}
	return t
}
