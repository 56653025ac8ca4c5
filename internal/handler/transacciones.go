package handler

import (
	"net/http"

	"contalink/internal/dto"
	"contalink/internal/service"

	"github.com/gin-gonic/gin"
)

// TransaccionesHandler serves one header variant; the router mounts one
// instance for /v1/ventas and another for /v1/compras.
type TransaccionesHandler struct{ svc service.TransaccionService }

func NewTransaccionesHandler(svc service.TransaccionService) *TransaccionesHandler {
	return &TransaccionesHandler{svc: svc}
}

// Crear godoc
// @Summary      Registrar una venta o compra
// @Description  Valida cantidades, stock y fondos de caja, aplica el stock, crea cabecera y lineas y registra un movimiento de caja por cada pago, todo en una sola transaccion.
// @Tags         transacciones
// @Accept       json
// @Produce      json
// @Param        body body dto.CrearTransaccionRequest true "Cabecera, lineas y pagos"
// @Success      201  {object} dto.TransaccionCreadaResponse
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Router       /v1/ventas [post]
// @Router       /v1/compras [post]
func (h *TransaccionesHandler) Crear(c *gin.Context) {
	var req dto.CrearTransaccionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Eliminar godoc
// @Summary      Eliminar una venta o compra
// @Description  Revierte stock y caja, elimina las lineas y marca la cabecera como eliminada.
// @Tags         transacciones
// @Produce      json
// @Param        id   path     string true "UUID de la transaccion"
// @Success      200  {object} dto.TransaccionEliminadaResponse
// @Failure      404  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Failure      500  {object} apierror.APIError
// @Router       /v1/ventas/{id} [delete]
// @Router       /v1/compras/{id} [delete]
func (h *TransaccionesHandler) Eliminar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Eliminar(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Obtener godoc
// @Summary      Obtener una venta o compra
// @Tags         transacciones
// @Produce      json
// @Param        id   path     string true "UUID de la transaccion"
// @Success      200  {object} dto.TransaccionResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/ventas/{id} [get]
// @Router       /v1/compras/{id} [get]
func (h *TransaccionesHandler) Obtener(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar godoc
// @Summary      Listar ventas o compras
// @Tags         transacciones
// @Produce      json
// @Param        fecha      query string false "YYYY-MM-DD"
// @Param        estado     query string false "activa | cancelada | devuelta | all"
// @Param        persona_id query string false "UUID de la persona"
// @Param        page       query int    false "Pagina"
// @Param        limit      query int    false "Tamano de pagina"
// @Success      200  {object} dto.TransaccionListResponse
// @Router       /v1/ventas [get]
// @Router       /v1/compras [get]
func (h *TransaccionesHandler) Listar(c *gin.Context) {
	var filter dto.TransaccionFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
