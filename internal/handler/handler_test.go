package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"contalink/internal/apierror"
	"contalink/internal/dto"
	"contalink/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

// ── Stubs ─────────────────────────────────────────────────────────────────────

type stubTransacciones struct {
	err      error
	recibido *dto.CrearTransaccionRequest
}

func (s *stubTransacciones) Crear(_ context.Context, req dto.CrearTransaccionRequest) (*dto.TransaccionCreadaResponse, error) {
	s.recibido = &req
	if s.err != nil {
		return nil, s.err
	}
	return &dto.TransaccionCreadaResponse{ID: uuid.NewString(), Numero: req.Numero, Fecha: req.Fecha}, nil
}

func (s *stubTransacciones) Eliminar(_ context.Context, id uuid.UUID) (*dto.TransaccionEliminadaResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.TransaccionEliminadaResponse{ID: id.String()}, nil
}

func (s *stubTransacciones) Obtener(_ context.Context, id uuid.UUID) (*dto.TransaccionResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.TransaccionResponse{ID: id.String()}, nil
}

func (s *stubTransacciones) Listar(_ context.Context, f dto.TransaccionFilter) (*dto.TransaccionListResponse, error) {
	return &dto.TransaccionListResponse{Data: []dto.TransaccionResponse{}, Page: f.Page, Limit: f.Limit}, s.err
}

var _ service.TransaccionService = (*stubTransacciones)(nil)

type stubDevoluciones struct{ err error }

func (s *stubDevoluciones) Crear(_ context.Context, req dto.CrearDevolucionRequest) (*dto.DevolucionResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.DevolucionResponse{ID: uuid.NewString(), VentaID: req.VentaID}, nil
}

func (s *stubDevoluciones) Eliminar(_ context.Context, id uuid.UUID) (*dto.TransaccionEliminadaResponse, error) {
	return &dto.TransaccionEliminadaResponse{ID: id.String()}, s.err
}

var _ service.DevolucionService = (*stubDevoluciones)(nil)

// ── Helpers ───────────────────────────────────────────────────────────────────

func newEngine(ventas service.TransaccionService, devs service.DevolucionService) *gin.Engine {
	r := gin.New()
	h := NewTransaccionesHandler(ventas)
	r.POST("/v1/ventas", h.Crear)
	r.GET("/v1/ventas", h.Listar)
	r.GET("/v1/ventas/:id", h.Obtener)
	r.DELETE("/v1/ventas/:id", h.Eliminar)
	d := NewDevolucionesHandler(devs)
	r.POST("/v1/devoluciones", d.Crear)
	return r
}

func request(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apierror.APIError {
	t.Helper()
	var e apierror.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	return e
}

func ventaValida() map[string]any {
	return map[string]any{
		"persona_id": uuid.NewString(),
		"fecha":      "2026-10-16",
		"numero":     "V-0001",
		"caja_id":    uuid.NewString(),
		"lineas":     []map[string]any{{"producto_id": uuid.NewString(), "monto": "5", "cantidad": "2"}},
		"pagos":      []map[string]any{{"monto": "10", "tipo_pago_id": uuid.NewString()}},
	}
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestCrearVenta_201(t *testing.T) {
	stub := &stubTransacciones{}
	w := request(t, newEngine(stub, &stubDevoluciones{}), http.MethodPost, "/v1/ventas", ventaValida())

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, stub.recibido)
	assert.True(t, stub.recibido.Lineas[0].Cantidad.Equal(decimal.NewFromInt(2)))

	var resp dto.TransaccionCreadaResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "V-0001", resp.Numero)
}

func TestCrearVenta_JSONInvalido(t *testing.T) {
	w := request(t, newEngine(&stubTransacciones{}, &stubDevoluciones{}), http.MethodPost, "/v1/ventas", "{")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", decodeError(t, w).Code)
}

func TestCrearVenta_ValidacionDeCampos(t *testing.T) {
	body := ventaValida()
	body["numero"] = ""
	body["pagos"] = []map[string]any{{"monto": "0", "tipo_pago_id": uuid.NewString()}}
	stub := &stubTransacciones{}

	w := request(t, newEngine(stub, &stubDevoluciones{}), http.MethodPost, "/v1/ventas", body)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	e := decodeError(t, w)
	assert.Equal(t, "validation_error", e.Code)
	assert.Contains(t, e.Fields, "Numero")
	assert.Contains(t, e.Fields, "Monto")
	assert.Nil(t, stub.recibido, "invalid input never reaches the service")
}

func TestRespondError_MapeoDeEstados(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{service.ErrDecimalesNoPermitidos.Campo("lineas[0].cantidad", "entero"), http.StatusUnprocessableEntity, "decimals_not_allowed"},
		{service.ErrStockInsuficiente, http.StatusUnprocessableEntity, "insufficient_stock"},
		{service.ErrEstadoInvalido, http.StatusUnprocessableEntity, "invalid_status"},
		{service.ErrYaEliminada, http.StatusUnprocessableEntity, "already_deleted"},
		{service.ErrNoEncontrado, http.StatusNotFound, "not_found"},
		{service.ErrReferenciaHuerfana, http.StatusNotFound, "dangling_reference"},
		{service.ErrConflictoIntegridad, http.StatusConflict, "integrity_conflict"},
		{service.ErrReversionIncompleta, http.StatusInternalServerError, "internal_error"},
		{service.ErrTransaccionIncompleta, http.StatusInternalServerError, "internal_error"},
		{errors.New("pq: connection reset"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			r := newEngine(&stubTransacciones{err: tc.err}, &stubDevoluciones{})
			w := request(t, r, http.MethodDelete, "/v1/ventas/"+uuid.NewString(), nil)
			require.Equal(t, tc.status, w.Code)
			e := decodeError(t, w)
			assert.Equal(t, tc.code, e.Code)
			if tc.status == http.StatusInternalServerError {
				assert.Equal(t, "Error interno del servidor", e.Detail)
			}
		})
	}
}

func TestRespondError_IncluyeCampos(t *testing.T) {
	err := service.ErrDecimalesNoPermitidos.Campo("lineas[0].cantidad", "entero")
	w := request(t, newEngine(&stubTransacciones{err: err}, &stubDevoluciones{}), http.MethodPost, "/v1/ventas", ventaValida())
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, map[string]string{"lineas[0].cantidad": "entero"}, decodeError(t, w).Fields)
}

func TestEliminarVenta_IDInvalido(t *testing.T) {
	w := request(t, newEngine(&stubTransacciones{}, &stubDevoluciones{}), http.MethodDelete, "/v1/ventas/123", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListarVentas_Filtros(t *testing.T) {
	r := newEngine(&stubTransacciones{}, &stubDevoluciones{})

	w := request(t, r, http.MethodGet, "/v1/ventas", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.TransaccionListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 50, resp.Limit)

	w = request(t, r, http.MethodGet, "/v1/ventas?estado=perdida", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = request(t, r, http.MethodGet, "/v1/ventas?limit=500", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCrearDevolucion(t *testing.T) {
	body := map[string]any{
		"venta_id": uuid.NewString(),
		"fecha":    "2026-10-16",
		"motivo":   "vencido",
		"items":    []map[string]any{{"producto_id": uuid.NewString(), "cantidad": "1"}},
	}
	w := request(t, newEngine(&stubTransacciones{}, &stubDevoluciones{}), http.MethodPost, "/v1/devoluciones", body)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = request(t, newEngine(&stubTransacciones{}, &stubDevoluciones{err: service.ErrDevolucionExcedeVendido}),
		http.MethodPost, "/v1/devoluciones", body)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "refund_exceeds_sold", decodeError(t, w).Code)

	body["items"] = []map[string]any{}
	w = request(t, newEngine(&stubTransacciones{}, &stubDevoluciones{}), http.MethodPost, "/v1/devoluciones", body)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
