package service

import (
	"context"
	"testing"
	"time"

	"contalink/internal/dto"
	"contalink/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	store   *memStore
	alertas *memAlertas

	ventas       TransaccionService
	compras      TransaccionService
	devoluciones DevolucionService
	cajaSvc      CajaService

	personaID  uuid.UUID
	cajaID     uuid.UUID
	tipoPagoID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := newMemStore()
	f := &fixture{
		store:      s,
		alertas:    &memAlertas{},
		personaID:  uuid.New(),
		cajaID:     uuid.New(),
		tipoPagoID: uuid.New(),
	}
	s.st.personas[f.personaID] = true
	s.st.cajas[f.cajaID] = model.Caja{ID: f.cajaID, Nombre: "Principal", Estado: "abierta", Tipo: "principal"}

	cajas := memCajas{s}
	deps := LedgerDeps{
		Tx:           memTransactor{s},
		Productos:    memProductos{s},
		Personas:     memPersonas{s},
		Cajas:        cajas,
		Devoluciones: memDevoluciones{s},
		Stock:        NewStockLedger(memProductos{s}, memMovStock{s}),
		Caja:         NewCajaLedger(cajas),
		Alertas:      f.alertas,
	}
	ventasRepo := memTransacciones{s: s, tipo: model.TipoVenta}
	f.ventas = NewVentaService(ventasRepo, deps)
	f.compras = NewCompraService(memTransacciones{s: s, tipo: model.TipoCompra}, deps)
	f.devoluciones = NewDevolucionService(ventasRepo, deps)
	f.cajaSvc = NewCajaService(deps.Tx, cajas, deps.Caja)
	return f
}

// producto seeds a product with the given stock. decimales selects the unit policy.
func (f *fixture) producto(stock string, decimales bool) uuid.UUID {
	id := uuid.New()
	unidadID := uuid.New()
	f.store.st.productos[id] = model.Producto{
		ID:             id,
		Nombre:         "producto " + id.String()[:8],
		PrecioCosto:    dec("1"),
		PrecioVenta:    dec("5"),
		Cantidad:       dec(stock),
		UnidadMedidaID: &unidadID,
		Activo:         true,
		UnidadMedida:   &model.UnidadMedida{ID: unidadID, Abreviatura: "u", PermiteDecimales: decimales},
	}
	return id
}

func (f *fixture) stock(id uuid.UUID) decimal.Decimal {
	return f.store.st.productos[id].Cantidad
}

// fondear puts money in the till through the manual movement path.
func (f *fixture) fondear(t *testing.T, monto string) {
	t.Helper()
	_, err := f.cajaSvc.RegistrarMovimiento(context.Background(), dto.MovimientoManualRequest{
		CajaID:      f.cajaID.String(),
		Tipo:        "ingreso_manual",
		TipoPagoID:  f.tipoPagoID.String(),
		Monto:       dec(monto),
		Descripcion: "fondo inicial",
	})
	require.NoError(t, err)
}

func (f *fixture) saldo(t *testing.T) decimal.Decimal {
	t.Helper()
	resp, err := f.cajaSvc.Saldo(context.Background(), f.cajaID)
	require.NoError(t, err)
	return resp.Saldo
}

func (f *fixture) linea(productoID uuid.UUID, monto, cantidad string) dto.LineaRequest {
	return dto.LineaRequest{ProductoID: productoID.String(), Monto: dec(monto), Cantidad: dec(cantidad)}
}

func (f *fixture) pago(monto string) dto.PagoRequest {
	return dto.PagoRequest{Monto: dec(monto), TipoPagoID: f.tipoPagoID.String()}
}

func (f *fixture) alta(numero string, lineas []dto.LineaRequest, pagos ...dto.PagoRequest) dto.CrearTransaccionRequest {
	return dto.CrearTransaccionRequest{
		PersonaID: f.personaID.String(),
		Fecha:     time.Now().Format("2006-01-02"),
		Numero:    numero,
		CajaID:    f.cajaID.String(),
		Lineas:    lineas,
		Pagos:     pagos,
	}
}

// vivos counts live till movements and payment proofs referencing ref.
func (f *fixture) vivos(ref uuid.UUID) (int64, int64) {
	movs, comps, _ := memCajas{f.store}.CountPorReferenciaTx(context.Background(), nil, ref)
	return movs, comps
}

func (f *fixture) cabecera(id uuid.UUID) model.Transaccion {
	return f.store.st.cabeceras[id]
}
