package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yuseponub/varixcenter-sub001/internal/apperror"
	"github.com/yuseponub/varixcenter-sub001/internal/dto"
	"github.com/yuseponub/varixcenter-sub001/internal/middleware"
	"github.com/yuseponub/varixcenter-sub001/internal/service"
)

type ComprasHandler struct{ svc service.CompraService }

func NewComprasHandler(svc service.CompraService) *ComprasHandler {
	return &ComprasHandler{svc: svc}
}

// CrearCompra godoc
// @Summary      Registrar compra a proveedor
// @Description  Registra la factura de compra en estado pendiente_recepcion; el stock no cambia hasta la recepción.
// @Tags         compras
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearCompraRequest true "Detalle de la compra"
// @Success      201  {object} dto.CompraResponse
// @Failure      422  {object} apperror.APIError
// @Router       /v1/compras [post]
func (h *ComprasHandler) CrearCompra(c *gin.Context) {
	var req dto.CrearCompraRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearCompra(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// RecibirCompra godoc
// @Summary      Recibir mercadería de una compra
// @Description  Marca la compra como recibida e ingresa cada item al stock normal con su movimiento.
// @Tags         compras
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID de la compra"
// @Success      204
// @Failure      409 {object} apperror.APIError
// @Router       /v1/compras/{id}/recibir [post]
func (h *ComprasHandler) RecibirCompra(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.RecibirCompra(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AnularCompra godoc
// @Summary      Anular compra pendiente
// @Description  Anula una compra que aún no fue recibida. Una compra recibida se corrige con ajustes de inventario.
// @Tags         compras
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                  true "UUID de la compra"
// @Param        body body dto.AnularCompraRequest true "Justificación"
// @Success      204
// @Failure      409 {object} apperror.APIError
// @Router       /v1/compras/{id} [delete]
func (h *ComprasHandler) AnularCompra(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.AnularCompraRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.AnularCompra(c.Request.Context(), middleware.GetActor(c), id, req.Justificacion); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ObtenerCompra godoc
// @Summary      Obtener compra por ID
// @Tags         compras
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID de la compra"
// @Success      200 {object} dto.CompraResponse
// @Failure      404 {object} apperror.APIError
// @Router       /v1/compras/{id} [get]
func (h *ComprasHandler) ObtenerCompra(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerCompra(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarCompras godoc
// @Summary      Listar compras
// @Tags         compras
// @Produce      json
// @Security     BearerAuth
// @Param        estado    query string false "pendiente_recepcion | recibido | anulado | all"
// @Param        proveedor query string false "Filtrar por proveedor"
// @Param        page      query int    false "Página (default 1)"
// @Param        limit     query int    false "Registros por página (default 50)"
// @Success      200 {object} dto.CompraListResponse
// @Router       /v1/compras [get]
func (h *ComprasHandler) ListarCompras(c *gin.Context) {
	var filter dto.CompraFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apperror.New(err.Error()))
		return
	}
	resp, err := h.svc.ListarCompras(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
