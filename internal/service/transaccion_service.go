package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"contalink/internal/dto"
	"contalink/internal/metrics"
	"contalink/internal/model"
	"contalink/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransaccionService creates and deletes one header variant (sales or
// purchases). Both operations run as a single unit of work.
type TransaccionService interface {
	Crear(ctx context.Context, req dto.CrearTransaccionRequest) (*dto.TransaccionCreadaResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) (*dto.TransaccionEliminadaResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.TransaccionResponse, error)
	Listar(ctx context.Context, filter dto.TransaccionFilter) (*dto.TransaccionListResponse, error)
}

// AlertaPublisher receives stock alerts once the unit of work that produced
// them has committed.
type AlertaPublisher interface {
	PublicarAlertaStock(ctx context.Context, alerta dto.AlertaStock) error
}

// LedgerDeps bundles the collaborators shared by the ledger services.
type LedgerDeps struct {
	Tx           repository.Transactor
	Productos    repository.ProductoRepository
	Personas     repository.PersonaRepository
	Cajas        repository.CajaRepository
	Devoluciones repository.DevolucionRepository
	Stock        StockLedger
	Caja         CajaLedger
	Alertas      AlertaPublisher // optional
}

// variante captures everything that differs between a sale and a purchase.
type variante struct {
	tipo      model.TipoTransaccion
	alta      OperacionStock
	direccion model.Direccion
}

var (
	varianteVenta  = variante{tipo: model.TipoVenta, alta: OpVenta, direccion: model.DireccionIngreso}
	varianteCompra = variante{tipo: model.TipoCompra, alta: OpCompra, direccion: model.DireccionEgreso}
)

type transaccionService struct {
	LedgerDeps
	v    variante
	repo repository.TransaccionRepository
}

// NewVentaService returns the sale orchestrator: stock goes out, cash comes in.
func NewVentaService(repo repository.TransaccionRepository, deps LedgerDeps) TransaccionService {
	return newTransaccionService(repo, deps, varianteVenta)
}

// NewCompraService returns the purchase orchestrator: stock comes in, cash
// goes out, and the till must hold enough to pay.
func NewCompraService(repo repository.TransaccionRepository, deps LedgerDeps) TransaccionService {
	return newTransaccionService(repo, deps, varianteCompra)
}

// newTransaccionService panics when repo stores the other variant: wiring a
// purchase repository into the sale orchestrator would silently book sales
// as purchases.
func newTransaccionService(repo repository.TransaccionRepository, deps LedgerDeps, v variante) *transaccionService {
	if repo.Tipo() != v.tipo {
		panic(fmt.Sprintf("service: repositorio de %s usado para %s", repo.Tipo(), v.tipo))
	}
	return &transaccionService{LedgerDeps: deps, v: v, repo: repo}
}

// ── Crear ─────────────────────────────────────────────────────────────────────

type lineaResuelta struct {
	productoID uuid.UUID
	monto      decimal.Decimal
	cantidad   decimal.Decimal
}

type altaResuelta struct {
	personaID uuid.UUID
	cajaID    uuid.UUID
	fecha     time.Time
	numero    string
	lineas    []lineaResuelta
	pagos     []Pago
}

// resolverAlta parses identifiers and dates. It never touches the store.
func resolverAlta(req dto.CrearTransaccionRequest) (*altaResuelta, error) {
	personaID, err := uuid.Parse(req.PersonaID)
	if err != nil {
		return nil, ErrValidacion.Campo("persona_id", "uuid")
	}
	cajaID, err := uuid.Parse(req.CajaID)
	if err != nil {
		return nil, ErrValidacion.Campo("caja_id", "uuid")
	}
	fecha, err := time.Parse("2006-01-02", req.Fecha)
	if err != nil {
		return nil, ErrValidacion.Campo("fecha", "datetime")
	}
	if req.Numero == "" {
		return nil, ErrValidacion.Campo("numero", "required")
	}
	if len(req.Lineas) == 0 {
		return nil, ErrValidacion.Campo("lineas", "min")
	}
	if len(req.Pagos) == 0 {
		return nil, ErrValidacion.Campo("pagos", "min")
	}

	in := &altaResuelta{personaID: personaID, cajaID: cajaID, fecha: fecha, numero: req.Numero}
	for i, l := range req.Lineas {
		pid, err := uuid.Parse(l.ProductoID)
		if err != nil {
			return nil, ErrValidacion.Campo(fmt.Sprintf("lineas[%d].producto_id", i), "uuid")
		}
		if l.Monto.IsNegative() {
			return nil, ErrValidacion.Campo(fmt.Sprintf("lineas[%d].monto", i), "min")
		}
		if err := validarMonto(l.Monto, fmt.Sprintf("lineas[%d].monto", i)); err != nil {
			return nil, err
		}
		if excedeEscala(l.Cantidad, EscalaCantidad) {
			return nil, conIndice(ValidarCantidad(l.Cantidad, nil), i)
		}
		in.lineas = append(in.lineas, lineaResuelta{productoID: pid, monto: l.Monto, cantidad: l.Cantidad})
	}
	for i, p := range req.Pagos {
		tid, err := uuid.Parse(p.TipoPagoID)
		if err != nil {
			return nil, ErrValidacion.Campo(fmt.Sprintf("pagos[%d].tipo_pago_id", i), "uuid")
		}
		if !p.Monto.IsPositive() {
			return nil, ErrValidacion.Campo(fmt.Sprintf("pagos[%d].monto", i), "gt")
		}
		if err := validarMonto(p.Monto, fmt.Sprintf("pagos[%d].monto", i)); err != nil {
			return nil, err
		}
		in.pagos = append(in.pagos, Pago{Monto: p.Monto, TipoPagoID: tid, Descriptor: p.Descriptor})
	}
	return in, nil
}

func (s *transaccionService) Crear(ctx context.Context, req dto.CrearTransaccionRequest) (*dto.TransaccionCreadaResponse, error) {
	in, err := resolverAlta(req)
	if err != nil {
		return nil, s.finalizar("crear", err)
	}

	id := uuid.New()
	motivo := fmt.Sprintf("%s %s", s.v.tipo, in.numero)

	txErr := s.Tx.Run(ctx, func(tx *gorm.DB) error {
		existe, err := s.Personas.ExistsTx(ctx, tx, in.personaID)
		if err != nil {
			return traducir(err, "persona")
		}
		if !existe {
			return ErrNoEncontrado.Conf("persona %s no encontrada", in.personaID)
		}

		// 1. Resolve and lock products, validate quantities and stock.
		ids := make([]uuid.UUID, 0, len(in.lineas))
		for _, l := range in.lineas {
			ids = append(ids, l.productoID)
		}
		productos, err := s.Productos.LockTx(ctx, tx, ids)
		if err != nil {
			return traducir(err, "productos")
		}
		pedido := make(map[uuid.UUID]decimal.Decimal, len(productos))
		for i, l := range in.lineas {
			p, ok := productos[l.productoID]
			if !ok {
				return ErrNoEncontrado.Conf("producto %s no encontrado", l.productoID)
			}
			if err := ValidarCantidad(l.cantidad, p.UnidadMedida); err != nil {
				return conIndice(err, i)
			}
			pedido[l.productoID] = pedido[l.productoID].Add(l.cantidad)
		}
		if s.v.tipo == model.TipoVenta {
			for _, pid := range repository.OrdenarIDs(ids) {
				p := productos[pid]
				if p.Cantidad.LessThan(pedido[pid]) {
					return ErrStockInsuficiente.Conf("stock insuficiente para %s: disponible %s, solicitado %s",
						p.Nombre, p.Cantidad.String(), pedido[pid].String())
				}
			}
		}

		// 2. Total, rounded to the scale of the header column so the checks
		// below compare against what gets stored.
		total := decimal.Zero
		for _, l := range in.lineas {
			total = total.Add(l.monto.Mul(l.cantidad))
		}
		total = total.Round(EscalaMonto)
		pagado := decimal.Zero
		for _, p := range in.pagos {
			pagado = pagado.Add(p.Monto)
		}

		// 3. Till: locked so the balance read below stays valid until commit.
		if _, err := s.Cajas.FindCajaTx(ctx, tx, in.cajaID, true); err != nil {
			return traducir(err, "caja")
		}
		if s.v.tipo == model.TipoCompra {
			saldo, err := s.Caja.Saldo(ctx, tx, in.cajaID)
			if err != nil {
				return traducir(err, "saldo de caja")
			}
			// The outflow written is the tender sum, which an overpaid
			// purchase makes larger than the total.
			egreso := decimal.Max(total, pagado)
			if saldo.LessThan(egreso) {
				return ErrFondosCajaInsuficientes.Conf("saldo de caja %s menor al egreso %s", saldo.String(), egreso.String())
			}
		}

		// 4. Payment coverage; overpayment is accepted.
		if pagado.LessThan(total) {
			return ErrPagoInsuficiente.Conf("pagos %s menores al total %s", pagado.String(), total.String())
		}

		// 5. Stock.
		for _, l := range in.lineas {
			if _, err := s.Stock.Aplicar(ctx, tx, s.v.alta, productos[l.productoID], l.cantidad, id, motivo); err != nil {
				return traducir(err, "stock")
			}
			if s.v.tipo == model.TipoCompra {
				if err := s.Stock.ActualizarCosto(ctx, tx, l.productoID, l.monto); err != nil {
					return traducir(err, "costo")
				}
			}
		}

		// 6. Header and lines.
		t := &model.Transaccion{
			ID:        id,
			Tipo:      s.v.tipo,
			PersonaID: in.personaID,
			CajaID:    in.cajaID,
			Fecha:     in.fecha,
			Numero:    in.numero,
			Estado:    model.EstadoActiva,
			Total:     total,
		}
		for _, l := range in.lineas {
			t.Lineas = append(t.Lineas, model.LineaTransaccion{
				ID:         uuid.New(),
				ProductoID: l.productoID,
				Monto:      l.monto,
				Cantidad:   l.cantidad,
			})
		}
		if err := s.repo.CreateTx(ctx, tx, t); err != nil {
			return traducir(err, string(s.v.tipo))
		}

		// 7. One till movement and one proof per tender.
		ref := id
		_, err = s.Caja.Registrar(ctx, tx, Asiento{
			CajaID:       in.cajaID,
			ReferenciaID: &ref,
			Direccion:    s.v.direccion,
			Fecha:        in.fecha,
			Descripcion:  motivo,
			Pagos:        in.pagos,
		})
		return traducir(err, "movimientos de caja")
	})
	if txErr != nil {
		return nil, s.finalizar("crear", txErr)
	}

	s.finalizar("crear", nil)
	log.Info().Str("tipo", string(s.v.tipo)).Str("id", id.String()).Str("numero", in.numero).Msg("transaccion creada")
	return &dto.TransaccionCreadaResponse{
		ID:     id.String(),
		Numero: in.numero,
		Fecha:  in.fecha.Format("2006-01-02"),
	}, nil
}

// ── Eliminar ──────────────────────────────────────────────────────────────────

func (s *transaccionService) Eliminar(ctx context.Context, id uuid.UUID) (*dto.TransaccionEliminadaResponse, error) {
	var alertas []dto.AlertaStock

	txErr := s.Tx.Run(ctx, func(tx *gorm.DB) error {
		alertas = nil

		t, err := s.repo.FindByIDTx(ctx, tx, id)
		if err != nil {
			return traducir(err, string(s.v.tipo))
		}
		if t.Eliminada() {
			return ErrYaEliminada.Conf("%s %s ya fue eliminada", s.v.tipo, id)
		}
		if t.Estado == model.EstadoCancelada || t.Estado == model.EstadoDevuelta {
			return ErrEstadoInvalido.Conf("%s %s en estado %s no puede eliminarse", s.v.tipo, id, t.Estado)
		}
		if s.v.tipo == model.TipoVenta {
			n, err := s.Devoluciones.CountActivasPorVentaTx(ctx, tx, id)
			if err != nil {
				return traducir(err, "devoluciones")
			}
			if n > 0 {
				return ErrEstadoInvalido.Conf("la venta %s tiene %d devoluciones activas", id, n)
			}
		}
		if len(t.Lineas) == 0 {
			return ErrTransaccionIncompleta.Conf("%s %s no tiene lineas", s.v.tipo, id)
		}
		movs, err := s.Cajas.ListMovimientosPorReferenciaTx(ctx, tx, id)
		if err != nil {
			return traducir(err, "movimientos de caja")
		}
		if len(movs) == 0 {
			return ErrTransaccionIncompleta.Conf("%s %s no tiene movimientos de caja", s.v.tipo, id)
		}

		ids := make([]uuid.UUID, 0, len(t.Lineas))
		for _, l := range t.Lineas {
			ids = append(ids, l.ProductoID)
		}
		productos, err := s.Productos.LockTx(ctx, tx, ids)
		if err != nil {
			return traducir(err, "productos")
		}
		for _, l := range t.Lineas {
			if _, ok := productos[l.ProductoID]; !ok {
				return ErrReferenciaHuerfana.Conf("la linea %s referencia el producto inexistente %s", l.ID, l.ProductoID)
			}
		}
		cajas := make(map[uuid.UUID]struct{}, 1)
		for _, m := range movs {
			if _, visto := cajas[m.CajaID]; visto {
				continue
			}
			if _, err := s.Cajas.FindCajaTx(ctx, tx, m.CajaID, true); err != nil {
				if KindOf(traducir(err, "caja")) == KindNoEncontro {
					return ErrReferenciaHuerfana.Conf("el movimiento %s referencia la caja inexistente %s", m.ID, m.CajaID)
				}
				return traducir(err, "caja")
			}
			cajas[m.CajaID] = struct{}{}
		}

		// 1. Stock, with the original unit cost left untouched.
		motivo := fmt.Sprintf("eliminacion %s %s", s.v.tipo, t.Numero)
		for _, l := range t.Lineas {
			if _, err := s.Stock.Aplicar(ctx, tx, s.v.alta.Reversa(), productos[l.ProductoID], l.Cantidad, id, motivo); err != nil {
				return traducir(err, "stock")
			}
		}
		alertas, err = s.verificarStockNegativo(ctx, tx, ids, s.v.alta.Reversa(), id)
		if err != nil {
			return err
		}

		// 2. Cash ledger.
		if err := s.Caja.Revertir(ctx, tx, id); err != nil {
			return traducir(err, "reversion de caja")
		}

		// 3. Lines, then the header tombstone.
		ahora := time.Now()
		if _, err := s.repo.DeleteLineasTx(ctx, tx, id, ahora); err != nil {
			return traducir(err, "lineas")
		}
		if err := s.repo.TombstoneTx(ctx, tx, id, ahora); err != nil {
			return traducir(err, string(s.v.tipo))
		}
		quedan, err := s.repo.CountLineasTx(ctx, tx, id)
		if err != nil {
			return traducir(err, "lineas")
		}
		if quedan > 0 {
			return ErrReversionIncompleta.Conf("quedan %d lineas vivas en %s %s", quedan, s.v.tipo, id)
		}
		despues, err := s.repo.FindByIDTx(ctx, tx, id)
		if err != nil {
			return traducir(err, string(s.v.tipo))
		}
		if !despues.Eliminada() {
			return ErrReversionIncompleta.Conf("%s %s no quedo marcada como eliminada", s.v.tipo, id)
		}
		return nil
	})
	if txErr != nil {
		return nil, s.finalizar("eliminar", txErr)
	}

	s.finalizar("eliminar", nil)
	log.Info().Str("tipo", string(s.v.tipo)).Str("id", id.String()).Msg("transaccion eliminada")
	publicarAlertas(ctx, s.Alertas, alertas)
	return &dto.TransaccionEliminadaResponse{ID: id.String()}, nil
}

// verificarStockNegativo re-reads the products a reversal touched. A negative
// quantity is logged and turned into an alert; it never fails the operation.
func (d LedgerDeps) verificarStockNegativo(ctx context.Context, tx *gorm.DB, ids []uuid.UUID, op OperacionStock, ref uuid.UUID) ([]dto.AlertaStock, error) {
	var alertas []dto.AlertaStock
	for _, pid := range repository.OrdenarIDs(ids) {
		p, err := d.Productos.FindByIDTx(ctx, tx, pid)
		if err != nil {
			return nil, traducir(err, "producto")
		}
		if !p.Cantidad.IsNegative() {
			continue
		}
		log.Warn().
			Str("producto_id", pid.String()).
			Str("cantidad", p.Cantidad.String()).
			Str("operacion", op.String()).
			Str("referencia_id", ref.String()).
			Msg("stock negativo tras reversion")
		alertas = append(alertas, dto.AlertaStock{
			ProductoID:   pid.String(),
			Nombre:       p.Nombre,
			Cantidad:     p.Cantidad,
			Operacion:    op.String(),
			ReferenciaID: ref.String(),
			DetectadaEn:  time.Now().UTC().Format(time.RFC3339),
		})
	}
	return alertas, nil
}

func publicarAlertas(ctx context.Context, pub AlertaPublisher, alertas []dto.AlertaStock) {
	if pub == nil {
		return
	}
	for _, a := range alertas {
		if err := pub.PublicarAlertaStock(ctx, a); err != nil {
			log.Error().Err(err).Str("producto_id", a.ProductoID).Msg("no se pudo publicar alerta de stock")
		}
	}
}

// finalizar records the outcome of an orchestrator run and returns err typed.
func (s *transaccionService) finalizar(operacion string, err error) error {
	return registrarResultado(operacion, string(s.v.tipo), err)
}

func registrarResultado(operacion, variante string, err error) error {
	if err == nil {
		metrics.LedgerOperations.WithLabelValues(operacion, variante, "ok").Inc()
		return nil
	}
	err = traducir(err, operacion+" "+variante)
	kind := KindOf(err)
	metrics.LedgerOperations.WithLabelValues(operacion, variante, string(kind)).Inc()

	switch kind {
	case KindIntegridad:
		var code string
		var e *Error
		if errors.As(err, &e) {
			code = e.Code
		}
		metrics.IntegrityFailures.WithLabelValues(code).Inc()
		log.Error().Err(err).Str("operacion", operacion).Str("tipo", variante).Str("code", code).
			Msg("verificacion de integridad fallida")
	case KindInterno:
		log.Error().Err(err).Str("operacion", operacion).Str("tipo", variante).Msg("error interno del ledger")
	}
	return err
}

// conIndice prefixes the field name of a line-level validation error.
func conIndice(err error, i int) error {
	e, ok := err.(*Error)
	if !ok || len(e.Fields) == 0 {
		return err
	}
	c := *e
	c.Fields = make(map[string]string, len(e.Fields))
	for k, v := range e.Fields {
		c.Fields[fmt.Sprintf("lineas[%d].%s", i, k)] = v
	}
	return &c
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *transaccionService) Obtener(ctx context.Context, id uuid.UUID) (*dto.TransaccionResponse, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, traducir(err, string(s.v.tipo))
	}
	return transaccionToResponse(t), nil
}

func (s *transaccionService) Listar(ctx context.Context, filter dto.TransaccionFilter) (*dto.TransaccionListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	ts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, traducir(err, "listar "+string(s.v.tipo))
	}
	data := make([]dto.TransaccionResponse, 0, len(ts))
	for i := range ts {
		data = append(data, *transaccionToResponse(&ts[i]))
	}
	return &dto.TransaccionListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func transaccionToResponse(t *model.Transaccion) *dto.TransaccionResponse {
	lineas := make([]dto.LineaResponse, 0, len(t.Lineas))
	for _, l := range t.Lineas {
		lineas = append(lineas, dto.LineaResponse{
			ID:         l.ID.String(),
			ProductoID: l.ProductoID.String(),
			Monto:      l.Monto,
			Cantidad:   l.Cantidad,
			Subtotal:   l.Monto.Mul(l.Cantidad),
		})
	}
	var eliminada *string
	if t.EliminadaEn != nil {
		s := t.EliminadaEn.Format(time.RFC3339)
		eliminada = &s
	}
	return &dto.TransaccionResponse{
		ID:          t.ID.String(),
		Tipo:        string(t.Tipo),
		PersonaID:   t.PersonaID.String(),
		CajaID:      t.CajaID.String(),
		Fecha:       t.Fecha.Format("2006-01-02"),
		Numero:      t.Numero,
		Estado:      t.Estado,
		Total:       t.Total,
		Lineas:      lineas,
		EliminadaEn: eliminada,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
	}
}
