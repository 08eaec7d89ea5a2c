package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yuseponub/varixcenter-sub001/internal/service"
)

type HistorialPreciosHandler struct{ svc service.ProductoService }

func NewHistorialPreciosHandler(svc service.ProductoService) *HistorialPreciosHandler {
	return &HistorialPreciosHandler{svc: svc}
}

// Listar godoc
// @Summary      Historial de precios de un producto
// @Tags         productos
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string true  "UUID del producto"
// @Param        page  query int    false "Página (default 1)"
// @Param        limit query int    false "Registros por página (default 50)"
// @Success      200 {array} dto.HistorialPrecioResponse
// @Router       /v1/productos/{id}/historial-precios [get]
func (h *HistorialPreciosHandler) Listar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	rows, total, err := h.svc.HistorialPrecios(c.Request.Context(), id, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":  rows,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}
