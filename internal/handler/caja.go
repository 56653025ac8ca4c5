package handler

import (
	"net/http"

	"contalink/internal/dto"
	"contalink/internal/service"

	"github.com/gin-gonic/gin"
)

type CajaHandler struct{ svc service.CajaService }

func NewCajaHandler(svc service.CajaService) *CajaHandler { return &CajaHandler{svc: svc} }

// Saldo godoc
// @Summary Saldo actual de la caja
// @Description Suma de los movimientos vivos de la caja, calculada en cada consulta.
// @Tags caja
// @Produce json
// @Param id path string true "UUID de la caja"
// @Success 200 {object} dto.SaldoResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/cajas/{id}/saldo [get]
func (h *CajaHandler) Saldo(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Saldo(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Movimientos godoc
// @Summary Movimientos vivos de la caja
// @Tags caja
// @Produce json
// @Param id path string true "UUID de la caja"
// @Success 200 {array} dto.MovimientoCajaResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/cajas/{id}/movimientos [get]
func (h *CajaHandler) Movimientos(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ListarMovimientos(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegistrarMovimiento godoc
// @Summary Registra un ingreso o egreso manual
// @Tags caja
// @Accept json
// @Produce json
// @Param body body dto.MovimientoManualRequest true "Movimiento"
// @Success 201 {object} dto.MovimientoCajaResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/cajas/movimiento [post]
func (h *CajaHandler) RegistrarMovimiento(c *gin.Context) {
	var req dto.MovimientoManualRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarMovimiento(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
