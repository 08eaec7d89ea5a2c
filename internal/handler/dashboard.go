package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yuseponub/varixcenter-sub001/internal/service"
)

type DashboardHandler struct{ svc service.DashboardService }

func NewDashboardHandler(svc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Resumen godoc
// @Summary      Resumen del dashboard
// @Description  Contadores del día: ventas de hoy, total del mes, devoluciones pendientes y productos con stock bajo. Cacheado brevemente.
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.DashboardResponse
// @Router       /v1/dashboard [get]
func (h *DashboardHandler) Resumen(c *gin.Context) {
	resp, err := h.svc.Resumen(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
