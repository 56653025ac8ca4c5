package service

import (
	"context"
	"fmt"
	"time"

	"contalink/internal/dto"
	"contalink/internal/model"
	"contalink/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DevolucionService refunds goods against a sale. Refunds move stock only;
// the till is never touched.
type DevolucionService interface {
	Crear(ctx context.Context, req dto.CrearDevolucionRequest) (*dto.DevolucionResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) (*dto.TransaccionEliminadaResponse, error)
}

type devolucionService struct {
	LedgerDeps
	ventas repository.TransaccionRepository
}

// NewDevolucionService panics unless ventas is the sale repository.
func NewDevolucionService(ventas repository.TransaccionRepository, deps LedgerDeps) DevolucionService {
	if ventas.Tipo() != model.TipoVenta {
		panic(fmt.Sprintf("service: las devoluciones requieren el repositorio de ventas, no de %s", ventas.Tipo()))
	}
	return &devolucionService{LedgerDeps: deps, ventas: ventas}
}

const varianteDevolucion = "devolucion"

// ── Crear ─────────────────────────────────────────────────────────────────────

func (s *devolucionService) Crear(ctx context.Context, req dto.CrearDevolucionRequest) (*dto.DevolucionResponse, error) {
	ventaID, err := uuid.Parse(req.VentaID)
	if err != nil {
		return nil, registrarResultado("crear", varianteDevolucion, ErrValidacion.Campo("venta_id", "uuid"))
	}
	fecha, err := time.Parse("2006-01-02", req.Fecha)
	if err != nil {
		return nil, registrarResultado("crear", varianteDevolucion, ErrValidacion.Campo("fecha", "datetime"))
	}
	if len(req.Items) == 0 {
		return nil, registrarResultado("crear", varianteDevolucion, ErrValidacion.Campo("items", "min"))
	}
	type item struct {
		productoID uuid.UUID
		cantidad   decimal.Decimal
	}
	items := make([]item, 0, len(req.Items))
	for i, it := range req.Items {
		pid, err := uuid.Parse(it.ProductoID)
		if err != nil {
			return nil, registrarResultado("crear", varianteDevolucion,
				ErrValidacion.Campo(fmt.Sprintf("items[%d].producto_id", i), "uuid"))
		}
		items = append(items, item{productoID: pid, cantidad: it.Cantidad})
	}

	id := uuid.New()
	var estadoVenta string
	txErr := s.Tx.Run(ctx, func(tx *gorm.DB) error {
		venta, err := s.ventas.FindByIDTx(ctx, tx, ventaID)
		if err != nil {
			return traducir(err, "venta")
		}
		if venta.Eliminada() {
			return ErrYaEliminada.Conf("la venta %s fue eliminada", ventaID)
		}
		if venta.Estado != model.EstadoActiva {
			return ErrEstadoInvalido.Conf("la venta %s en estado %s no admite devoluciones", ventaID, venta.Estado)
		}

		vendido := make(map[uuid.UUID]decimal.Decimal, len(venta.Lineas))
		for _, l := range venta.Lineas {
			vendido[l.ProductoID] = vendido[l.ProductoID].Add(l.Cantidad)
		}

		ids := make([]uuid.UUID, 0, len(items))
		for _, it := range items {
			ids = append(ids, it.productoID)
		}
		productos, err := s.Productos.LockTx(ctx, tx, ids)
		if err != nil {
			return traducir(err, "productos")
		}

		pedido := make(map[uuid.UUID]decimal.Decimal, len(items))
		for i, it := range items {
			if _, ok := vendido[it.productoID]; !ok {
				return ErrDevolucionExcedeVendido.
					Conf("el producto %s no forma parte de la venta %s", it.productoID, ventaID).
					Campo(fmt.Sprintf("items[%d].producto_id", i), "vendido")
			}
			p, ok := productos[it.productoID]
			if !ok {
				return ErrReferenciaHuerfana.Conf("el producto %s de la venta ya no existe", it.productoID)
			}
			if err := ValidarCantidad(it.cantidad, p.UnidadMedida); err != nil {
				if e, ok := err.(*Error); ok {
					return e.Campo(fmt.Sprintf("items[%d].cantidad", i), e.Fields["cantidad"])
				}
				return err
			}
			pedido[it.productoID] = pedido[it.productoID].Add(it.cantidad)
		}

		devuelto, err := s.Devoluciones.CantidadesDevueltasTx(ctx, tx, ventaID)
		if err != nil {
			return traducir(err, "devoluciones")
		}
		for _, pid := range repository.OrdenarIDs(ids) {
			acumulado := devuelto[pid].Add(pedido[pid])
			if acumulado.GreaterThan(vendido[pid]) {
				return ErrDevolucionExcedeVendido.Conf(
					"producto %s: vendido %s, devuelto %s, solicitado %s",
					pid, vendido[pid].String(), devuelto[pid].String(), pedido[pid].String())
			}
			devuelto[pid] = acumulado
		}

		d := &model.Devolucion{ID: id, VentaID: ventaID, Fecha: fecha, Motivo: req.Motivo}
		for _, it := range items {
			d.Detalles = append(d.Detalles, model.DevolucionDetalle{
				ID:           uuid.New(),
				DevolucionID: id,
				ProductoID:   it.productoID,
				Cantidad:     it.cantidad,
			})
		}
		if err := s.Devoluciones.CreateTx(ctx, tx, d); err != nil {
			return traducir(err, "devolucion")
		}

		motivo := fmt.Sprintf("devolucion venta %s", venta.Numero)
		for _, it := range items {
			if _, err := s.Stock.Aplicar(ctx, tx, OpDevolucion, productos[it.productoID], it.cantidad, id, motivo); err != nil {
				return traducir(err, "stock")
			}
		}

		estadoVenta = venta.Estado
		if ventaDevueltaCompleta(vendido, devuelto) {
			if err := s.ventas.UpdateEstadoTx(ctx, tx, ventaID, model.EstadoDevuelta); err != nil {
				return traducir(err, "venta")
			}
			estadoVenta = model.EstadoDevuelta
		}
		return nil
	})
	if txErr != nil {
		return nil, registrarResultado("crear", varianteDevolucion, txErr)
	}
	registrarResultado("crear", varianteDevolucion, nil)
	log.Info().Str("id", id.String()).Str("venta_id", ventaID.String()).Str("estado_venta", estadoVenta).Msg("devolucion registrada")

	resp := &dto.DevolucionResponse{
		ID:          id.String(),
		VentaID:     ventaID.String(),
		Fecha:       fecha.Format("2006-01-02"),
		Motivo:      req.Motivo,
		EstadoVenta: estadoVenta,
	}
	for _, it := range items {
		resp.Items = append(resp.Items, dto.ItemDevolucionResponse{ProductoID: it.productoID.String(), Cantidad: it.cantidad})
	}
	return resp, nil
}

func ventaDevueltaCompleta(vendido, devuelto map[uuid.UUID]decimal.Decimal) bool {
	for pid, cant := range vendido {
		if devuelto[pid].LessThan(cant) {
			return false
		}
	}
	return true
}

// ── Eliminar ──────────────────────────────────────────────────────────────────

func (s *devolucionService) Eliminar(ctx context.Context, id uuid.UUID) (*dto.TransaccionEliminadaResponse, error) {
	previa, err := s.Devoluciones.FindByID(ctx, id)
	if err != nil {
		return nil, registrarResultado("eliminar", varianteDevolucion, traducir(err, "devolucion"))
	}

	var alertas []dto.AlertaStock
	txErr := s.Tx.Run(ctx, func(tx *gorm.DB) error {
		alertas = nil

		// Sale before refund: the same order Crear takes its locks in.
		venta, err := s.ventas.FindByIDTx(ctx, tx, previa.VentaID)
		if err != nil {
			return traducir(err, "venta")
		}
		d, err := s.Devoluciones.FindByIDTx(ctx, tx, id)
		if err != nil {
			return traducir(err, "devolucion")
		}
		if d.DeletedAt.Valid {
			return ErrYaEliminada.Conf("la devolucion %s ya fue eliminada", id)
		}

		ids := make([]uuid.UUID, 0, len(d.Detalles))
		for _, det := range d.Detalles {
			ids = append(ids, det.ProductoID)
		}
		productos, err := s.Productos.LockTx(ctx, tx, ids)
		if err != nil {
			return traducir(err, "productos")
		}
		for i, det := range d.Detalles {
			p, ok := productos[det.ProductoID]
			if !ok {
				return ErrReferenciaHuerfana.Conf("la devolucion %s referencia el producto inexistente %s", id, det.ProductoID)
			}
			if err := ValidarCantidad(det.Cantidad, p.UnidadMedida); err != nil {
				if e, ok := err.(*Error); ok {
					return e.Campo(fmt.Sprintf("detalles[%d].cantidad", i), e.Fields["cantidad"])
				}
				return err
			}
		}
		motivo := fmt.Sprintf("eliminacion devolucion venta %s", venta.Numero)
		for _, det := range d.Detalles {
			if _, err := s.Stock.Aplicar(ctx, tx, OpReversaDevolucion, productos[det.ProductoID], det.Cantidad, id, motivo); err != nil {
				return traducir(err, "stock")
			}
		}
		alertas, err = s.verificarStockNegativo(ctx, tx, ids, OpReversaDevolucion, id)
		if err != nil {
			return err
		}

		if err := s.Devoluciones.DeleteTx(ctx, tx, id, time.Now()); err != nil {
			return traducir(err, "devolucion")
		}
		if venta.Estado == model.EstadoDevuelta {
			if err := s.ventas.UpdateEstadoTx(ctx, tx, venta.ID, model.EstadoActiva); err != nil {
				return traducir(err, "venta")
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, registrarResultado("eliminar", varianteDevolucion, txErr)
	}
	registrarResultado("eliminar", varianteDevolucion, nil)
	log.Info().Str("id", id.String()).Str("venta_id", previa.VentaID.String()).Msg("devolucion eliminada")
	publicarAlertas(ctx, s.Alertas, alertas)
	return &dto.TransaccionEliminadaResponse{ID: id.String()}, nil
}
