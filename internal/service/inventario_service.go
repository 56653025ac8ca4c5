package service

import (
	"context"
	"time"

	"contalink/internal/dto"
	"contalink/internal/repository"

	"github.com/google/uuid"
)

// AlertaStore reads the stock alerts the worker has persisted.
type AlertaStore interface {
	Listar(ctx context.Context) ([]dto.AlertaStock, error)
}

// InventarioService exposes the stock audit trail and the negative-stock alerts.
type InventarioService interface {
	ListarMovimientos(ctx context.Context, filter dto.MovimientoStockFilter) (*dto.MovimientoStockListResponse, error)
	ObtenerAlertas(ctx context.Context) ([]dto.AlertaStock, error)
}

type inventarioService struct {
	movimientos repository.MovimientoStockRepository
	alertas     AlertaStore
}

func NewInventarioService(movimientos repository.MovimientoStockRepository, alertas AlertaStore) InventarioService {
	return &inventarioService{movimientos: movimientos, alertas: alertas}
}

func (s *inventarioService) ListarMovimientos(ctx context.Context, filter dto.MovimientoStockFilter) (*dto.MovimientoStockListResponse, error) {
	f := repository.MovimientoStockFilter{Tipo: filter.Tipo, Page: filter.Page, Limit: filter.Limit}
	if filter.ProductoID != "" {
		id, err := uuid.Parse(filter.ProductoID)
		if err != nil {
			return nil, ErrValidacion.Campo("producto_id", "uuid")
		}
		f.ProductoID = &id
	}
	if filter.ReferenciaID != "" {
		id, err := uuid.Parse(filter.ReferenciaID)
		if err != nil {
			return nil, ErrValidacion.Campo("referencia_id", "uuid")
		}
		f.ReferenciaID = &id
	}

	movs, total, err := s.movimientos.List(ctx, f)
	if err != nil {
		return nil, traducir(err, "movimientos de stock")
	}
	data := make([]dto.MovimientoStockResponse, 0, len(movs))
	for _, m := range movs {
		var ref *string
		if m.ReferenciaID != nil {
			r := m.ReferenciaID.String()
			ref = &r
		}
		data = append(data, dto.MovimientoStockResponse{
			ID:               m.ID.String(),
			ProductoID:       m.ProductoID.String(),
			Tipo:             m.Tipo,
			Cantidad:         m.Cantidad,
			CantidadAnterior: m.CantidadAnterior,
			CantidadNueva:    m.CantidadNueva,
			Motivo:           m.Motivo,
			ReferenciaID:     ref,
			CreatedAt:        m.CreatedAt.Format(time.RFC3339),
		})
	}
	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	return &dto.MovimientoStockListResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

func (s *inventarioService) ObtenerAlertas(ctx context.Context) ([]dto.AlertaStock, error) {
	if s.alertas == nil {
		return []dto.AlertaStock{}, nil
	}
	alertas, err := s.alertas.Listar(ctx)
	if err != nil {
		return nil, ErrInterno.Conf("alertas de stock").envolver(err)
	}
	return alertas, nil
}
