package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yuseponub/varixcenter-sub001/internal/apperror"
	"github.com/yuseponub/varixcenter-sub001/internal/dto"
	"github.com/yuseponub/varixcenter-sub001/internal/middleware"
	"github.com/yuseponub/varixcenter-sub001/internal/service"
)

type CierresHandler struct{ svc service.CierreService }

func NewCierresHandler(svc service.CierreService) *CierresHandler {
	return &CierresHandler{svc: svc}
}

// CerrarDia godoc
// @Summary      Cerrar caja del día
// @Description  Calcula los totales por método desde las ventas activas de la fecha y los reconcilia contra el conteo físico de efectivo.
// @Tags         cierres
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CerrarDiaRequest true "Conteo físico y evidencia"
// @Success      201  {object} dto.CierreResponse
// @Failure      409  {object} apperror.APIError
// @Failure      422  {object} apperror.APIError
// @Router       /v1/cierres [post]
func (h *CierresHandler) CerrarDia(c *gin.Context) {
	var req dto.CerrarDiaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CerrarDia(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ReabrirCierre godoc
// @Summary      Reabrir un cierre
// @Description  Reabre un cierre cerrado con justificación. Un nuevo cierre del mismo día crea una fila nueva con número propio.
// @Tags         cierres
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                   true "UUID del cierre"
// @Param        body body dto.ReabrirCierreRequest true "Justificación de la reapertura"
// @Success      204
// @Failure      409 {object} apperror.APIError
// @Router       /v1/cierres/{id}/reabrir [post]
func (h *CierresHandler) ReabrirCierre(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.ReabrirCierreRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.ReabrirCierre(c.Request.Context(), middleware.GetActor(c), id, req.Justificacion); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ObtenerCierre godoc
// @Summary      Obtener cierre por ID
// @Tags         cierres
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID del cierre"
// @Success      200 {object} dto.CierreResponse
// @Failure      404 {object} apperror.APIError
// @Router       /v1/cierres/{id} [get]
func (h *CierresHandler) ObtenerCierre(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerCierre(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarCierres godoc
// @Summary      Listar cierres de caja
// @Tags         cierres
// @Produce      json
// @Security     BearerAuth
// @Param        estado query string false "cerrado | reabierto | all"
// @Param        desde  query string false "Fecha inicial YYYY-MM-DD"
// @Param        hasta  query string false "Fecha final YYYY-MM-DD"
// @Param        page   query int    false "Página (default 1)"
// @Param        limit  query int    false "Registros por página (default 50)"
// @Success      200 {object} dto.CierreListResponse
// @Router       /v1/cierres [get]
func (h *CierresHandler) ListarCierres(c *gin.Context) {
	var filter dto.CierreFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apperror.New(err.Error()))
		return
	}
	resp, err := h.svc.ListarCierres(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
