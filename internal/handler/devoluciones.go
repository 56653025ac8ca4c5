package handler

import (
	"net/http"

	"contalink/internal/dto"
	"contalink/internal/service"

	"github.com/gin-gonic/gin"
)

type DevolucionesHandler struct{ svc service.DevolucionService }

func NewDevolucionesHandler(svc service.DevolucionService) *DevolucionesHandler {
	return &DevolucionesHandler{svc: svc}
}

// Crear godoc
// @Summary      Registrar devolucion
// @Description  Devuelve mercaderia de una venta al stock sin superar lo vendido por producto.
// @Tags         devoluciones
// @Accept       json
// @Produce      json
// @Param        body body dto.CrearDevolucionRequest true "Venta e items devueltos"
// @Success      201  {object} dto.DevolucionResponse
// @Failure      404  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Router       /v1/devoluciones [post]
func (h *DevolucionesHandler) Crear(c *gin.Context) {
	var req dto.CrearDevolucionRequest
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
// @Summary      Eliminar devolucion
// @Tags         devoluciones
// @Produce      json
// @Param        id   path     string true "UUID de la devolucion"
// @Success      200  {object} dto.TransaccionEliminadaResponse
// @Failure      404  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Router       /v1/devoluciones/{id} [delete]
func (h *DevolucionesHandler) Eliminar(c *gin.Context) {
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
