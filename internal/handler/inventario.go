package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yuseponub/varixcenter-sub001/internal/apperror"
	"github.com/yuseponub/varixcenter-sub001/internal/dto"
	"github.com/yuseponub/varixcenter-sub001/internal/middleware"
	"github.com/yuseponub/varixcenter-sub001/internal/repository"
	"github.com/yuseponub/varixcenter-sub001/internal/service"
)

// InventarioHandler exposes manual adjustments, pool transfers and the
// read-only movement ledger.
type InventarioHandler struct {
	ajustes service.AjusteService
	ledger  service.LedgerService
}

func NewInventarioHandler(ajustes service.AjusteService, ledger service.LedgerService) *InventarioHandler {
	return &InventarioHandler{ajustes: ajustes, ledger: ledger}
}

// CrearAjuste godoc
// @Summary      Registrar ajuste de inventario
// @Description  Corrige el stock de un pool con motivo obligatorio; genera el movimiento correspondiente.
// @Tags         inventario
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearAjusteRequest true "Detalle del ajuste"
// @Success      201  {object} dto.AjusteResponse
// @Failure      409  {object} apperror.APIError
// @Router       /v1/inventario/ajustes [post]
func (h *InventarioHandler) CrearAjuste(c *gin.Context) {
	var req dto.CrearAjusteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.ajustes.CrearAjuste(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Transferir godoc
// @Summary      Transferir stock entre pools
// @Description  Mueve unidades entre el pool normal y el de devoluciones de un producto sin alterar el total.
// @Tags         inventario
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.TransferirStockRequest true "Detalle de la transferencia"
// @Success      201  {object} dto.TransferenciaResponse
// @Failure      409  {object} apperror.APIError
// @Router       /v1/inventario/transferencias [post]
func (h *InventarioHandler) Transferir(c *gin.Context) {
	var req dto.TransferirStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.ajustes.Transferir(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarMovimientos godoc
// @Summary      Consultar el ledger de movimientos
// @Description  Lista paginada y filtrable del historial inmutable de movimientos de stock.
// @Tags         inventario
// @Produce      json
// @Security     BearerAuth
// @Param        producto_id     query string false "Filtrar por producto"
// @Param        tipo            query string false "compra | venta | devolucion | ajuste_entrada | ajuste_salida | transferencia"
// @Param        referencia_tipo query string false "venta | devolucion | compra | ajuste | transferencia"
// @Param        referencia_id   query string false "UUID de la entidad referenciada"
// @Param        page            query int    false "Página (default 1)"
// @Param        limit           query int    false "Registros por página (default 100)"
// @Success      200 {object} dto.MovimientoListResponse
// @Router       /v1/inventario/movimientos [get]
func (h *InventarioHandler) ListarMovimientos(c *gin.Context) {
	var q dto.MovimientoFilter
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, apperror.New(err.Error()))
		return
	}

	filter := repository.MovimientoStockFilter{
		Tipo:           q.Tipo,
		ReferenciaTipo: q.ReferenciaTipo,
		Page:           q.Page,
		Limit:          q.Limit,
	}
	if q.ProductoID != "" {
		id, err := uuid.Parse(q.ProductoID)
		if err != nil {
			c.JSON(http.StatusBadRequest, apperror.New("producto_id inválido"))
			return
		}
		filter.ProductoID = &id
	}
	if q.ReferenciaID != "" {
		id, err := uuid.Parse(q.ReferenciaID)
		if err != nil {
			c.JSON(http.StatusBadRequest, apperror.New("referencia_id inválido"))
			return
		}
		filter.ReferenciaID = &id
	}

	resp, err := h.ledger.ListarMovimientos(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarAjustesProducto godoc
// @Summary      Ajustes de un producto
// @Tags         inventario
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID del producto"
// @Success      200 {array} dto.AjusteResponse
// @Router       /v1/inventario/ajustes/producto/{id} [get]
func (h *InventarioHandler) ListarAjustesProducto(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.ajustes.ListarAjustesPorProducto(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
