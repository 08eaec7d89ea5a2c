package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yuseponub/varixcenter-sub001/internal/apperror"
	"github.com/yuseponub/varixcenter-sub001/internal/dto"
	"github.com/yuseponub/varixcenter-sub001/internal/middleware"
	"github.com/yuseponub/varixcenter-sub001/internal/service"
)

type DevolucionesHandler struct{ svc service.DevolucionService }

func NewDevolucionesHandler(svc service.DevolucionService) *DevolucionesHandler {
	return &DevolucionesHandler{svc: svc}
}

// CrearDevolucion godoc
// @Summary      Solicitar una devolución
// @Description  Crea una devolución pendiente sobre un item de venta. El stock no cambia hasta la aprobación.
// @Tags         devoluciones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearDevolucionRequest true "Detalle de la devolución"
// @Success      201  {object} dto.DevolucionResponse
// @Failure      409  {object} apperror.APIError
// @Router       /v1/devoluciones [post]
func (h *DevolucionesHandler) CrearDevolucion(c *gin.Context) {
	var req dto.CrearDevolucionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearDevolucion(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// AprobarDevolucion godoc
// @Summary      Aprobar devolución pendiente
// @Description  Aprueba la devolución e ingresa las unidades al pool de devoluciones.
// @Tags         devoluciones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                        true "UUID de la devolución"
// @Param        body body dto.ResolverDevolucionRequest false "Notas del aprobador"
// @Success      204
// @Failure      409  {object} apperror.APIError
// @Router       /v1/devoluciones/{id}/aprobar [post]
func (h *DevolucionesHandler) AprobarDevolucion(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.ResolverDevolucionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.AprobarDevolucion(c.Request.Context(), middleware.GetActor(c), id, req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RechazarDevolucion godoc
// @Summary      Rechazar devolución pendiente
// @Description  Rechaza la devolución sin efecto en stock; la cantidad vuelve a estar disponible para otra solicitud.
// @Tags         devoluciones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                        true "UUID de la devolución"
// @Param        body body dto.ResolverDevolucionRequest false "Notas del aprobador"
// @Success      204
// @Failure      409  {object} apperror.APIError
// @Router       /v1/devoluciones/{id}/rechazar [post]
func (h *DevolucionesHandler) RechazarDevolucion(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.ResolverDevolucionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.RechazarDevolucion(c.Request.Context(), middleware.GetActor(c), id, req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListarDevoluciones godoc
// @Summary      Listar devoluciones
// @Tags         devoluciones
// @Produce      json
// @Security     BearerAuth
// @Param        estado   query string false "pendiente | aprobada | rechazada | all"
// @Param        venta_id query string false "Filtrar por venta"
// @Param        page     query int    false "Página (default 1)"
// @Param        limit    query int    false "Registros por página (default 50)"
// @Success      200 {object} dto.DevolucionListResponse
// @Router       /v1/devoluciones [get]
func (h *DevolucionesHandler) ListarDevoluciones(c *gin.Context) {
	var filter dto.DevolucionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apperror.New(err.Error()))
		return
	}
	resp, err := h.svc.ListarDevoluciones(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
