package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yuseponub/varixcenter-sub001/internal/apperror"
	"github.com/yuseponub/varixcenter-sub001/internal/auth"
	"github.com/yuseponub/varixcenter-sub001/internal/dto"
	"github.com/yuseponub/varixcenter-sub001/internal/model"
	"github.com/yuseponub/varixcenter-sub001/internal/repository"
)

// CompraService is the purchase-reception state machine:
// pendiente_recepcion → recibido (stock enters the normal pool) or
// pendiente_recepcion → anulado. A received purchase cannot be voided —
// corrections go through inventory adjustments so the trail stays auditable.
type CompraService interface {
	CrearCompra(ctx context.Context, actor auth.Actor, req dto.CrearCompraRequest) (*dto.CompraResponse, error)
	RecibirCompra(ctx context.Context, actor auth.Actor, id uuid.UUID) error
	AnularCompra(ctx context.Context, actor auth.Actor, id uuid.UUID, justificacion string) error
	ObtenerCompra(ctx context.Context, id uuid.UUID) (*dto.CompraResponse, error)
	ListarCompras(ctx context.Context, filter dto.CompraFilter) (*dto.CompraListResponse, error)
}

type compraService struct {
	repo          repository.CompraRepository
	productoRepo  repository.ProductoRepository
	secuenciaRepo repository.SecuenciaRepository
	ledger        LedgerService
}

func NewCompraService(
	repo repository.CompraRepository,
	productoRepo repository.ProductoRepository,
	secuenciaRepo repository.SecuenciaRepository,
	ledger LedgerService,
) CompraService {
	return &compraService{
		repo:          repo,
		productoRepo:  productoRepo,
		secuenciaRepo: secuenciaRepo,
		ledger:        ledger,
	}
}

// ── CrearCompra ───────────────────────────────────────────────────────────────
// The invoice may be entered before the goods arrive, so creation has no
// stock effect; items snapshot product identity and unit cost.

func (s *compraService) CrearCompra(ctx context.Context, actor auth.Actor, req dto.CrearCompraRequest) (*dto.CompraResponse, error) {
	if err := auth.Authorize(actor, auth.OpCrearCompra); err != nil {
		return nil, err
	}

	fecha, err := time.Parse("2006-01-02", req.FechaFactura)
	if err != nil {
		return nil, apperror.Validation("fecha_factura inválida, se espera YYYY-MM-DD")
	}

	type resolvedItem struct {
		producto *model.Producto
		cantidad int
		costo    decimal.Decimal
		subtotal decimal.Decimal
	}
	resolved := make([]resolvedItem, 0, len(req.Items))
	total := decimal.Zero
	for _, item := range req.Items {
		pid, err := uuid.Parse(item.ProductoID)
		if err != nil {
			return nil, apperror.Validation("producto_id inválido")
		}
		p, err := s.productoRepo.FindByID(ctx, pid)
		if err != nil {
			return nil, apperror.NotFound(fmt.Sprintf("producto %s no encontrado", item.ProductoID))
		}
		lineSubtotal := item.CostoUnitario.Mul(decimal.NewFromInt(int64(item.Cantidad)))
		total = total.Add(lineSubtotal)
		resolved = append(resolved, resolvedItem{
			producto: p,
			cantidad: item.Cantidad,
			costo:    item.CostoUnitario,
			subtotal: lineSubtotal,
		})
	}

	var compra model.Compra
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		numero, err := s.secuenciaRepo.NextTx(tx, model.SeqCompras)
		if err != nil {
			return apperror.Internal("error asignando numero de compra", err)
		}

		compra = model.Compra{
			Numero:        numero,
			Proveedor:     req.Proveedor,
			FechaFactura:  fecha,
			NumeroFactura: req.NumeroFactura,
			Total:         total,
			FacturaPath:   req.FacturaPath,
			Estado:        model.CompraPendienteRecepcion,
			Notas:         req.Notas,
			CreadaPor:     actor.ID,
		}
		for _, r := range resolved {
			compra.Items = append(compra.Items, model.CompraItem{
				ProductoID:     r.producto.ID,
				ProductoCodigo: r.producto.Codigo,
				ProductoTipo:   r.producto.Tipo,
				ProductoTalla:  r.producto.Talla,
				Cantidad:       r.cantidad,
				CostoUnitario:  r.costo,
				Subtotal:       r.subtotal,
			})
		}
		if err := s.repo.CreateTx(tx, &compra); err != nil {
			return apperror.Internal("error creando compra", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return compraToResponse(&compra), nil
}

// ── RecibirCompra ─────────────────────────────────────────────────────────────

func (s *compraService) RecibirCompra(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if err := auth.Authorize(actor, auth.OpRecibirCompra); err != nil {
		return err
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		compra, err := s.repo.FindByIDForUpdateTx(tx, id)
		if err != nil {
			return apperror.NotFound("compra no encontrada")
		}
		// Idempotency guard under lock.
		switch compra.Estado {
		case model.CompraRecibida:
			return apperror.BusinessRule(apperror.CodeAlreadyReceived, "la compra ya fue recibida")
		case model.CompraAnulada:
			return apperror.BusinessRule(apperror.CodeAlreadyVoided, "la compra está anulada")
		}

		items, err := s.repo.FindItemsTx(tx, compra.ID)
		if err != nil {
			return apperror.Internal("error cargando items de la compra", err)
		}
		sort.Slice(items, func(i, j int) bool {
			return items[i].ProductoID.String() < items[j].ProductoID.String()
		})
		for _, item := range items {
			if _, err := s.ledger.AplicarMovimientoTx(tx, MovimientoParams{
				ProductoID:     item.ProductoID,
				Tipo:           model.MovimientoCompra,
				Cantidad:       item.Cantidad,
				ReferenciaTipo: model.RefCompra,
				ReferenciaID:   compra.ID,
				Notas:          fmt.Sprintf("Recepción compra %s", compra.NumeroFormateado()),
				Actor:          actor.ID,
			}); err != nil {
				return err
			}
		}

		now := time.Now()
		compra.Estado = model.CompraRecibida
		compra.RecibidaPor = &actor.ID
		compra.RecibidaAt = &now
		if err := s.repo.UpdateEstadoTx(tx, compra); err != nil {
			return apperror.Internal("error marcando compra como recibida", err)
		}
		return nil
	})
}

// ── AnularCompra ──────────────────────────────────────────────────────────────
// Only legal from pendiente_recepcion: a received purchase's stock effect is
// never silently undone here.

func (s *compraService) AnularCompra(ctx context.Context, actor auth.Actor, id uuid.UUID, justificacion string) error {
	if err := auth.Authorize(actor, auth.OpAnularCompra); err != nil {
		return err
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		compra, err := s.repo.FindByIDForUpdateTx(tx, id)
		if err != nil {
			return apperror.NotFound("compra no encontrada")
		}
		switch compra.Estado {
		case model.CompraRecibida:
			return apperror.BusinessRule(apperror.CodeAlreadyReceived,
				"una compra recibida no puede anularse; use un ajuste de inventario")
		case model.CompraAnulada:
			return apperror.BusinessRule(apperror.CodeAlreadyVoided, "la compra ya está anulada")
		}

		now := time.Now()
		compra.Estado = model.CompraAnulada
		compra.AnuladaPor = &actor.ID
		compra.AnuladaAt = &now
		compra.JustificacionAnulacion = &justificacion
		if err := s.repo.UpdateEstadoTx(tx, compra); err != nil {
			return apperror.Internal("error anulando compra", err)
		}
		return nil
	})
}

func (s *compraService) ObtenerCompra(ctx context.Context, id uuid.UUID) (*dto.CompraResponse, error) {
	compra, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("compra no encontrada")
	}
	return compraToResponse(compra), nil
}

func (s *compraService) ListarCompras(ctx context.Context, filter dto.CompraFilter) (*dto.CompraListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	compras, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperror.Internal("error listando compras", err)
	}
	items := make([]dto.CompraResponse, 0, len(compras))
	for i := range compras {
		items = append(items, *compraToResponse(&compras[i]))
	}
	return &dto.CompraListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func compraToResponse(c *model.Compra) *dto.CompraResponse {
	items := make([]dto.ItemCompraResponse, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, dto.ItemCompraResponse{
			ID:             item.ID.String(),
			ProductoID:     item.ProductoID.String(),
			ProductoCodigo: item.ProductoCodigo,
			ProductoTipo:   item.ProductoTipo,
			ProductoTalla:  item.ProductoTalla,
			Cantidad:       item.Cantidad,
			CostoUnitario:  item.CostoUnitario,
			Subtotal:       item.Subtotal,
		})
	}
	return &dto.CompraResponse{
		ID:            c.ID.String(),
		Numero:        c.Numero,
		NumeroCompra:  c.NumeroFormateado(),
		Proveedor:     c.Proveedor,
		FechaFactura:  c.FechaFactura.Format("2006-01-02"),
		NumeroFactura: c.NumeroFactura,
		Total:         c.Total,
		FacturaPath:   c.FacturaPath,
		Estado:        c.Estado,
		Notas:         c.Notas,
		Items:         items,
		CreatedAt:     c.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
