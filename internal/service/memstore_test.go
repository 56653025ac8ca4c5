package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"contalink/internal/dto"
	"contalink/internal/model"
	"contalink/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory store ───────────────────────────────────────────────────────────
// One memState backs every repository stub. memTransactor snapshots it before
// running a unit of work and restores the snapshot when the work fails, which
// gives the stubs the same all-or-nothing behaviour as a database transaction.

type memLinea struct {
	padre     uuid.UUID
	linea     model.LineaTransaccion
	eliminada bool
}

type memState struct {
	productos   map[uuid.UUID]model.Producto
	personas    map[uuid.UUID]bool
	cajas       map[uuid.UUID]model.Caja
	movs        map[uuid.UUID]model.MovimientoCaja
	comps       map[uuid.UUID]model.ComprobantePago
	cabeceras   map[uuid.UUID]model.Transaccion
	lineas      map[uuid.UUID]memLinea
	devs        map[uuid.UUID]model.Devolucion
	devDetalles map[uuid.UUID]model.DevolucionDetalle
	movStock    []model.MovimientoStock
}

func newMemState() *memState {
	return &memState{
		productos:   make(map[uuid.UUID]model.Producto),
		personas:    make(map[uuid.UUID]bool),
		cajas:       make(map[uuid.UUID]model.Caja),
		movs:        make(map[uuid.UUID]model.MovimientoCaja),
		comps:       make(map[uuid.UUID]model.ComprobantePago),
		cabeceras:   make(map[uuid.UUID]model.Transaccion),
		lineas:      make(map[uuid.UUID]memLinea),
		devs:        make(map[uuid.UUID]model.Devolucion),
		devDetalles: make(map[uuid.UUID]model.DevolucionDetalle),
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memState) clone() *memState {
	return &memState{
		productos:   cloneMap(s.productos),
		personas:    cloneMap(s.personas),
		cajas:       cloneMap(s.cajas),
		movs:        cloneMap(s.movs),
		comps:       cloneMap(s.comps),
		cabeceras:   cloneMap(s.cabeceras),
		lineas:      cloneMap(s.lineas),
		devs:        cloneMap(s.devs),
		devDetalles: cloneMap(s.devDetalles),
		movStock:    append([]model.MovimientoStock(nil), s.movStock...),
	}
}

type memStore struct {
	st *memState
	// fallas makes the named repository method return the error.
	fallas map[string]error
	// omitir makes the named mutating method report success without writing.
	omitir map[string]bool
	// escrituras counts successful mutations.
	escrituras int
}

func newMemStore() *memStore {
	return &memStore{st: newMemState(), fallas: map[string]error{}, omitir: map[string]bool{}}
}

func (s *memStore) falla(metodo string) error { return s.fallas[metodo] }

func (s *memStore) escribir(metodo string) (bool, error) {
	if err := s.falla(metodo); err != nil {
		return false, err
	}
	if s.omitir[metodo] {
		return false, nil
	}
	s.escrituras++
	return true, nil
}

func marcar(at time.Time) gorm.DeletedAt { return gorm.DeletedAt{Time: at, Valid: true} }

// ── Transactor ────────────────────────────────────────────────────────────────

type memTransactor struct{ s *memStore }

func (t memTransactor) Run(_ context.Context, fn func(tx *gorm.DB) error) error {
	snap := t.s.st.clone()
	escrituras := t.s.escrituras
	if err := fn(nil); err != nil {
		t.s.st = snap
		t.s.escrituras = escrituras
		return err
	}
	return nil
}

var _ repository.Transactor = memTransactor{}

// ── Productos ─────────────────────────────────────────────────────────────────

type memProductos struct{ s *memStore }

func (r memProductos) FindByIDTx(_ context.Context, _ *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	p, ok := r.s.st.productos[id]
	if !ok || p.DeletedAt.Valid {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r memProductos) LockTx(_ context.Context, _ *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]*model.Producto, error) {
	if err := r.s.falla("LockTx"); err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]*model.Producto)
	for _, id := range repository.OrdenarIDs(ids) {
		p, ok := r.s.st.productos[id]
		if !ok || p.DeletedAt.Valid {
			continue
		}
		cp := p
		out[id] = &cp
	}
	return out, nil
}

func (r memProductos) AjustarCantidadTx(_ context.Context, _ *gorm.DB, id uuid.UUID, delta decimal.Decimal) error {
	p, ok := r.s.st.productos[id]
	if !ok || p.DeletedAt.Valid {
		return gorm.ErrRecordNotFound
	}
	if ok, err := r.s.escribir("AjustarCantidadTx"); !ok {
		return err
	}
	p.Cantidad = p.Cantidad.Add(delta)
	r.s.st.productos[id] = p
	return nil
}

func (r memProductos) ActualizarCostoTx(_ context.Context, _ *gorm.DB, id uuid.UUID, costo decimal.Decimal) error {
	if ok, err := r.s.escribir("ActualizarCostoTx"); !ok {
		return err
	}
	p := r.s.st.productos[id]
	p.PrecioCosto = costo
	r.s.st.productos[id] = p
	return nil
}

var _ repository.ProductoRepository = memProductos{}

// ── Personas ──────────────────────────────────────────────────────────────────

type memPersonas struct{ s *memStore }

func (r memPersonas) ExistsTx(_ context.Context, _ *gorm.DB, id uuid.UUID) (bool, error) {
	return r.s.st.personas[id], nil
}

var _ repository.PersonaRepository = memPersonas{}

// ── Cajas ─────────────────────────────────────────────────────────────────────

type memCajas struct{ s *memStore }

func (r memCajas) FindCaja(ctx context.Context, id uuid.UUID) (*model.Caja, error) {
	return r.FindCajaTx(ctx, nil, id, false)
}

func (r memCajas) FindCajaTx(_ context.Context, _ *gorm.DB, id uuid.UUID, _ bool) (*model.Caja, error) {
	c, ok := r.s.st.cajas[id]
	if !ok || c.DeletedAt.Valid {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (r memCajas) vivos(filtro func(model.MovimientoCaja) bool) []model.MovimientoCaja {
	var out []model.MovimientoCaja
	for _, m := range r.s.st.movs {
		if m.DeletedAt.Valid || !filtro(m) {
			continue
		}
		m.Comprobantes = nil
		for _, c := range r.s.st.comps {
			if c.MovimientoCajaID == m.ID && !c.DeletedAt.Valid {
				m.Comprobantes = append(m.Comprobantes, c)
			}
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out
}

func (r memCajas) ListMovimientos(_ context.Context, cajaID uuid.UUID) ([]model.MovimientoCaja, error) {
	return r.vivos(func(m model.MovimientoCaja) bool { return m.CajaID == cajaID }), nil
}

func (r memCajas) SaldoTx(_ context.Context, _ *gorm.DB, cajaID uuid.UUID) (decimal.Decimal, error) {
	saldo := decimal.Zero
	for _, m := range r.vivos(func(m model.MovimientoCaja) bool { return m.CajaID == cajaID }) {
		saldo = saldo.Add(m.Monto)
	}
	return saldo, nil
}

func (r memCajas) CreateMovimientoTx(_ context.Context, _ *gorm.DB, m *model.MovimientoCaja) error {
	if ok, err := r.s.escribir("CreateMovimientoTx"); !ok {
		return err
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	cp := *m
	cp.Comprobantes = nil
	r.s.st.movs[m.ID] = cp
	return nil
}

func (r memCajas) CreateComprobanteTx(_ context.Context, _ *gorm.DB, c *model.ComprobantePago) error {
	if ok, err := r.s.escribir("CreateComprobanteTx"); !ok {
		return err
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.s.st.comps[c.ID] = *c
	return nil
}

func (r memCajas) ListMovimientosPorReferenciaTx(_ context.Context, _ *gorm.DB, ref uuid.UUID) ([]model.MovimientoCaja, error) {
	return r.vivos(func(m model.MovimientoCaja) bool { return m.ReferenciaID != nil && *m.ReferenciaID == ref }), nil
}

func (r memCajas) DeleteComprobantesTx(_ context.Context, _ *gorm.DB, movIDs []uuid.UUID) (int64, error) {
	if ok, err := r.s.escribir("DeleteComprobantesTx"); !ok {
		return 0, err
	}
	objetivo := make(map[uuid.UUID]bool, len(movIDs))
	for _, id := range movIDs {
		objetivo[id] = true
	}
	var n int64
	for id, c := range r.s.st.comps {
		if objetivo[c.MovimientoCajaID] && !c.DeletedAt.Valid {
			c.DeletedAt = marcar(time.Now())
			r.s.st.comps[id] = c
			n++
		}
	}
	return n, nil
}

func (r memCajas) DeleteMovimientosTx(_ context.Context, _ *gorm.DB, ids []uuid.UUID) (int64, error) {
	if ok, err := r.s.escribir("DeleteMovimientosTx"); !ok {
		return 0, err
	}
	var n int64
	for _, id := range ids {
		m, ok := r.s.st.movs[id]
		if ok && !m.DeletedAt.Valid {
			m.DeletedAt = marcar(time.Now())
			r.s.st.movs[id] = m
			n++
		}
	}
	return n, nil
}

func (r memCajas) CountPorReferenciaTx(_ context.Context, _ *gorm.DB, ref uuid.UUID) (int64, int64, error) {
	var movs, comps int64
	conRef := make(map[uuid.UUID]bool)
	for _, m := range r.s.st.movs {
		if m.ReferenciaID == nil || *m.ReferenciaID != ref {
			continue
		}
		conRef[m.ID] = true
		if !m.DeletedAt.Valid {
			movs++
		}
	}
	for _, c := range r.s.st.comps {
		if conRef[c.MovimientoCajaID] && !c.DeletedAt.Valid {
			comps++
		}
	}
	return movs, comps, nil
}

var _ repository.CajaRepository = memCajas{}

// ── Transacciones ─────────────────────────────────────────────────────────────

type memTransacciones struct {
	s    *memStore
	tipo model.TipoTransaccion
}

func (r memTransacciones) Tipo() model.TipoTransaccion { return r.tipo }

func (r memTransacciones) CreateTx(_ context.Context, _ *gorm.DB, t *model.Transaccion) error {
	for _, c := range r.s.st.cabeceras {
		if c.Tipo == r.tipo && c.Numero == t.Numero {
			return gorm.ErrDuplicatedKey
		}
	}
	if ok, err := r.s.escribir("CreateTx:" + string(r.tipo)); !ok {
		return err
	}
	cab := *t
	cab.Tipo = r.tipo
	cab.Lineas = nil
	cab.CreatedAt = time.Now()
	r.s.st.cabeceras[t.ID] = cab
	for _, l := range t.Lineas {
		r.s.st.lineas[l.ID] = memLinea{padre: t.ID, linea: l}
	}
	return nil
}

func (r memTransacciones) FindByIDTx(_ context.Context, _ *gorm.DB, id uuid.UUID) (*model.Transaccion, error) {
	c, ok := r.s.st.cabeceras[id]
	if !ok || c.Tipo != r.tipo {
		return nil, gorm.ErrRecordNotFound
	}
	var lineas []model.LineaTransaccion
	for _, l := range r.s.st.lineas {
		if l.padre == id && !l.eliminada {
			lineas = append(lineas, l.linea)
		}
	}
	sort.Slice(lineas, func(i, j int) bool { return lineas[i].ID.String() < lineas[j].ID.String() })
	c.Lineas = lineas
	return &c, nil
}

func (r memTransacciones) FindByID(ctx context.Context, id uuid.UUID) (*model.Transaccion, error) {
	return r.FindByIDTx(ctx, nil, id)
}

func (r memTransacciones) CountLineasTx(_ context.Context, _ *gorm.DB, id uuid.UUID) (int64, error) {
	var n int64
	for _, l := range r.s.st.lineas {
		if l.padre == id && !l.eliminada {
			n++
		}
	}
	return n, nil
}

func (r memTransacciones) DeleteLineasTx(_ context.Context, _ *gorm.DB, id uuid.UUID, _ time.Time) (int64, error) {
	if ok, err := r.s.escribir("DeleteLineasTx"); !ok {
		return 0, err
	}
	var n int64
	for lid, l := range r.s.st.lineas {
		if l.padre == id && !l.eliminada {
			l.eliminada = true
			r.s.st.lineas[lid] = l
			n++
		}
	}
	return n, nil
}

func (r memTransacciones) TombstoneTx(_ context.Context, _ *gorm.DB, id uuid.UUID, at time.Time) error {
	c, ok := r.s.st.cabeceras[id]
	if !ok || c.EliminadaEn != nil {
		return gorm.ErrRecordNotFound
	}
	if ok, err := r.s.escribir("TombstoneTx"); !ok {
		return err
	}
	c.EliminadaEn = &at
	r.s.st.cabeceras[id] = c
	return nil
}

func (r memTransacciones) UpdateEstadoTx(_ context.Context, _ *gorm.DB, id uuid.UUID, estado string) error {
	if ok, err := r.s.escribir("UpdateEstadoTx"); !ok {
		return err
	}
	c := r.s.st.cabeceras[id]
	c.Estado = estado
	r.s.st.cabeceras[id] = c
	return nil
}

func (r memTransacciones) List(ctx context.Context, filter dto.TransaccionFilter) ([]model.Transaccion, int64, error) {
	var out []model.Transaccion
	for id, c := range r.s.st.cabeceras {
		if c.Tipo != r.tipo || c.EliminadaEn != nil {
			continue
		}
		if filter.Estado != "" && filter.Estado != "all" && c.Estado != filter.Estado {
			continue
		}
		t, _ := r.FindByID(ctx, id)
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Numero < out[j].Numero })
	return out, int64(len(out)), nil
}

var _ repository.TransaccionRepository = memTransacciones{}

// ── Devoluciones ──────────────────────────────────────────────────────────────

type memDevoluciones struct{ s *memStore }

func (r memDevoluciones) cargar(id uuid.UUID) (*model.Devolucion, error) {
	d, ok := r.s.st.devs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	d.Detalles = nil
	for _, det := range r.s.st.devDetalles {
		if det.DevolucionID == id && !det.DeletedAt.Valid {
			d.Detalles = append(d.Detalles, det)
		}
	}
	return &d, nil
}

func (r memDevoluciones) FindByID(_ context.Context, id uuid.UUID) (*model.Devolucion, error) {
	return r.cargar(id)
}

func (r memDevoluciones) FindByIDTx(_ context.Context, _ *gorm.DB, id uuid.UUID) (*model.Devolucion, error) {
	return r.cargar(id)
}

func (r memDevoluciones) CreateTx(_ context.Context, _ *gorm.DB, d *model.Devolucion) error {
	if ok, err := r.s.escribir("CreateTx:devolucion"); !ok {
		return err
	}
	cab := *d
	cab.Detalles = nil
	r.s.st.devs[d.ID] = cab
	for _, det := range d.Detalles {
		det.DevolucionID = d.ID
		r.s.st.devDetalles[det.ID] = det
	}
	return nil
}

func (r memDevoluciones) CantidadesDevueltasTx(_ context.Context, _ *gorm.DB, ventaID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	out := make(map[uuid.UUID]decimal.Decimal)
	for _, det := range r.s.st.devDetalles {
		d := r.s.st.devs[det.DevolucionID]
		if d.VentaID != ventaID || d.DeletedAt.Valid || det.DeletedAt.Valid {
			continue
		}
		out[det.ProductoID] = out[det.ProductoID].Add(det.Cantidad)
	}
	return out, nil
}

func (r memDevoluciones) CountActivasPorVentaTx(_ context.Context, _ *gorm.DB, ventaID uuid.UUID) (int64, error) {
	var n int64
	for _, d := range r.s.st.devs {
		if d.VentaID == ventaID && !d.DeletedAt.Valid {
			n++
		}
	}
	return n, nil
}

func (r memDevoluciones) DeleteTx(_ context.Context, _ *gorm.DB, id uuid.UUID, at time.Time) error {
	d, ok := r.s.st.devs[id]
	if !ok || d.DeletedAt.Valid {
		return gorm.ErrRecordNotFound
	}
	if ok, err := r.s.escribir("DeleteTx:devolucion"); !ok {
		return err
	}
	d.DeletedAt = marcar(at)
	r.s.st.devs[id] = d
	for did, det := range r.s.st.devDetalles {
		if det.DevolucionID == id && !det.DeletedAt.Valid {
			det.DeletedAt = marcar(at)
			r.s.st.devDetalles[did] = det
		}
	}
	return nil
}

var _ repository.DevolucionRepository = memDevoluciones{}

// ── Movimientos de stock ──────────────────────────────────────────────────────

type memMovStock struct{ s *memStore }

func (r memMovStock) CreateTx(_ context.Context, _ *gorm.DB, m *model.MovimientoStock) error {
	if ok, err := r.s.escribir("CreateTx:movimiento_stock"); !ok {
		return err
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	r.s.st.movStock = append(r.s.st.movStock, *m)
	return nil
}

func (r memMovStock) List(_ context.Context, f repository.MovimientoStockFilter) ([]model.MovimientoStock, int64, error) {
	var out []model.MovimientoStock
	for _, m := range r.s.st.movStock {
		if f.ProductoID != nil && m.ProductoID != *f.ProductoID {
			continue
		}
		if f.ReferenciaID != nil && (m.ReferenciaID == nil || *m.ReferenciaID != *f.ReferenciaID) {
			continue
		}
		if f.Tipo != "" && m.Tipo != f.Tipo {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

var _ repository.MovimientoStockRepository = memMovStock{}

// ── Alert publisher ───────────────────────────────────────────────────────────

type memAlertas struct {
	publicadas []dto.AlertaStock
	err        error
}

func (p *memAlertas) PublicarAlertaStock(_ context.Context, a dto.AlertaStock) error {
	if p.err != nil {
		return p.err
	}
	p.publicadas = append(p.publicadas, a)
	return nil
}

func (p *memAlertas) Listar(_ context.Context) ([]dto.AlertaStock, error) {
	return p.publicadas, p.err
}

var errInyectado = errors.New("fallo inyectado")
