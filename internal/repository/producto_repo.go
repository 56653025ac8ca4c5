package repository

import (
	"context"
	"sort"

	"contalink/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductoRepository defines the data access the stock ledger needs.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via in-memory stubs.
type ProductoRepository interface {
	// Used inside transactions; callers must pass the tx instance.
	FindByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Producto, error)
	// LockTx row-locks the live products among ids (ascending id order, to keep
	// lock acquisition deadlock-free) and returns them keyed by id. Missing or
	// tombstoned ids are simply absent from the map.
	LockTx(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]*model.Producto, error)
	AjustarCantidadTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, delta decimal.Decimal) error
	ActualizarCostoTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, costo decimal.Decimal) error
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) FindByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := tx.WithContext(ctx).
		Preload("UnidadMedida", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		First(&p, "id = ?", id).Error
	return &p, err
}

func (r *productoRepo) LockTx(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]*model.Producto, error) {
	ordenados := OrdenarIDs(ids)
	var productos []model.Producto
	err := paraActualizar(tx.WithContext(ctx)).
		Where("id IN ?", ordenados).
		Order("id ASC").
		Find(&productos).Error
	if err != nil {
		return nil, err
	}

	// Units are read separately: FOR UPDATE cannot be combined with the outer
	// join a Joins() preload would produce.
	unidadIDs := make([]uuid.UUID, 0, len(productos))
	for _, p := range productos {
		if p.UnidadMedidaID != nil {
			unidadIDs = append(unidadIDs, *p.UnidadMedidaID)
		}
	}
	unidades := make(map[uuid.UUID]*model.UnidadMedida, len(unidadIDs))
	if len(unidadIDs) > 0 {
		var rows []model.UnidadMedida
		if err := tx.WithContext(ctx).Unscoped().Where("id IN ?", unidadIDs).Find(&rows).Error; err != nil {
			return nil, err
		}
		for i := range rows {
			unidades[rows[i].ID] = &rows[i]
		}
	}

	out := make(map[uuid.UUID]*model.Producto, len(productos))
	for i := range productos {
		p := &productos[i]
		if p.UnidadMedidaID != nil {
			p.UnidadMedida = unidades[*p.UnidadMedidaID]
		}
		out[p.ID] = p
	}
	return out, nil
}

func (r *productoRepo) AjustarCantidadTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, delta decimal.Decimal) error {
	res := tx.WithContext(ctx).Model(&model.Producto{}).Where("id = ?", id).
		Update("cantidad", gorm.Expr("cantidad + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productoRepo) ActualizarCostoTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, costo decimal.Decimal) error {
	return tx.WithContext(ctx).Model(&model.Producto{}).Where("id = ?", id).
		Update("precio_costo", costo).Error
}

// OrdenarIDs returns the distinct ids in ascending order.
func OrdenarIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
