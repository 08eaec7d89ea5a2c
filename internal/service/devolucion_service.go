package service

import (
	"context"
	"fmt"
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

// DevolucionService is the return-request state machine:
// pendiente → aprobada (stock restored to the devoluciones pool) or
// pendiente → rechazada (no stock effect). Both end states are terminal.
type DevolucionService interface {
	CrearDevolucion(ctx context.Context, actor auth.Actor, req dto.CrearDevolucionRequest) (*dto.DevolucionResponse, error)
	AprobarDevolucion(ctx context.Context, actor auth.Actor, id uuid.UUID, req dto.ResolverDevolucionRequest) error
	RechazarDevolucion(ctx context.Context, actor auth.Actor, id uuid.UUID, req dto.ResolverDevolucionRequest) error
	ListarDevoluciones(ctx context.Context, filter dto.DevolucionFilter) (*dto.DevolucionListResponse, error)
}

type devolucionService struct {
	repo          repository.DevolucionRepository
	ventaRepo     repository.VentaRepository
	secuenciaRepo repository.SecuenciaRepository
	ledger        LedgerService
}

func NewDevolucionService(
	repo repository.DevolucionRepository,
	ventaRepo repository.VentaRepository,
	secuenciaRepo repository.SecuenciaRepository,
	ledger LedgerService,
) DevolucionService {
	return &devolucionService{
		repo:          repo,
		ventaRepo:     ventaRepo,
		secuenciaRepo: secuenciaRepo,
		ledger:        ledger,
	}
}

// ── CrearDevolucion ───────────────────────────────────────────────────────────
// Validates the sale is still active and the requested quantity fits within
// the item's returnable quantity (item quantity minus pendiente + aprobada
// returns). Inserts the request as pendiente — no stock effect until approval.

func (s *devolucionService) CrearDevolucion(ctx context.Context, actor auth.Actor, req dto.CrearDevolucionRequest) (*dto.DevolucionResponse, error) {
	if err := auth.Authorize(actor, auth.OpCrearDevolucion); err != nil {
		return nil, err
	}

	ventaID, err := uuid.Parse(req.VentaID)
	if err != nil {
		return nil, apperror.Validation("venta_id inválido")
	}
	itemID, err := uuid.Parse(req.VentaItemID)
	if err != nil {
		return nil, apperror.Validation("venta_item_id inválido")
	}

	venta, err := s.ventaRepo.FindByID(ctx, ventaID)
	if err != nil {
		return nil, apperror.NotFound("venta no encontrada")
	}
	if venta.Estado != model.VentaActiva {
		return nil, apperror.BusinessRule(apperror.CodeSaleNotActive,
			"no se pueden solicitar devoluciones sobre una venta anulada")
	}

	var item *model.VentaItem
	for i := range venta.Items {
		if venta.Items[i].ID == itemID {
			item = &venta.Items[i]
			break
		}
	}
	if item == nil {
		return nil, apperror.NotFound("el item no pertenece a la venta indicada")
	}

	var devolucion model.Devolucion
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Returnable bound is checked inside the transaction so two
		// concurrent requests cannot both pass against the same remainder.
		devueltas, err := s.repo.SumNoRechazadasPorItemTx(tx, item.ID)
		if err != nil {
			return apperror.Internal("error calculando cantidad devuelta", err)
		}
		disponible := item.Cantidad - devueltas
		if req.Cantidad > disponible {
			return apperror.BusinessRule(apperror.CodeReturnQtyExceeded,
				fmt.Sprintf("cantidad a devolver (%d) excede la disponible (%d) para el item", req.Cantidad, disponible))
		}

		numero, err := s.secuenciaRepo.NextTx(tx, model.SeqDevoluciones)
		if err != nil {
			return apperror.Internal("error asignando numero de devolución", err)
		}

		devolucion = model.Devolucion{
			Numero:          numero,
			VentaID:         venta.ID,
			VentaItemID:     item.ID,
			Cantidad:        req.Cantidad,
			MontoReembolso:  item.PrecioUnitario.Mul(decimal.NewFromInt(int64(req.Cantidad))),
			MetodoReembolso: req.MetodoReembolso,
			Motivo:          req.Motivo,
			FotoPath:        req.FotoPath,
			Estado:          model.DevolucionPendiente,
			SolicitadaPor:   actor.ID,
		}
		if err := s.repo.CreateTx(tx, &devolucion); err != nil {
			return apperror.Internal("error creando devolución", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return devolucionToResponse(&devolucion), nil
}

// ── AprobarDevolucion ─────────────────────────────────────────────────────────

func (s *devolucionService) AprobarDevolucion(ctx context.Context, actor auth.Actor, id uuid.UUID, req dto.ResolverDevolucionRequest) error {
	if err := auth.Authorize(actor, auth.OpResolverDevolucion); err != nil {
		return err
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		devolucion, err := s.repo.FindByIDForUpdateTx(tx, id)
		if err != nil {
			return apperror.NotFound("devolución no encontrada")
		}
		// Re-check under lock: guards against a double-approval race.
		if devolucion.Estado != model.DevolucionPendiente {
			return apperror.BusinessRule(apperror.CodeAlreadyApproved,
				fmt.Sprintf("la devolución ya fue resuelta (%s)", devolucion.Estado))
		}

		productoID, err := s.productoIDDeItemTx(tx, devolucion)
		if err != nil {
			return err
		}

		if _, err := s.ledger.AplicarMovimientoTx(tx, MovimientoParams{
			ProductoID:     productoID,
			Tipo:           model.MovimientoDevolucion,
			Cantidad:       devolucion.Cantidad,
			ReferenciaTipo: model.RefDevolucion,
			ReferenciaID:   devolucion.ID,
			Notas:          fmt.Sprintf("Devolución %s aprobada", devolucion.NumeroFormateado()),
			Actor:          actor.ID,
		}); err != nil {
			return err
		}

		now := time.Now()
		devolucion.Estado = model.DevolucionAprobada
		devolucion.AprobadaPor = &actor.ID
		devolucion.AprobadaAt = &now
		devolucion.NotasAprobador = req.Notas
		if err := s.repo.UpdateResolucionTx(tx, devolucion); err != nil {
			return apperror.Internal("error aprobando devolución", err)
		}
		return nil
	})
}

// ── RechazarDevolucion ────────────────────────────────────────────────────────
// No stock effect. Rejected quantities stop counting against the item's
// returnable quantity.

func (s *devolucionService) RechazarDevolucion(ctx context.Context, actor auth.Actor, id uuid.UUID, req dto.ResolverDevolucionRequest) error {
	if err := auth.Authorize(actor, auth.OpResolverDevolucion); err != nil {
		return err
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		devolucion, err := s.repo.FindByIDForUpdateTx(tx, id)
		if err != nil {
			return apperror.NotFound("devolución no encontrada")
		}
		if devolucion.Estado != model.DevolucionPendiente {
			return apperror.BusinessRule(apperror.CodeAlreadyApproved,
				fmt.Sprintf("la devolución ya fue resuelta (%s)", devolucion.Estado))
		}

		now := time.Now()
		devolucion.Estado = model.DevolucionRechazada
		devolucion.AprobadaPor = &actor.ID
		devolucion.AprobadaAt = &now
		devolucion.NotasAprobador = req.Notas
		if err := s.repo.UpdateResolucionTx(tx, devolucion); err != nil {
			return apperror.Internal("error rechazando devolución", err)
		}
		return nil
	})
}

// productoIDDeItemTx resolves the product behind the returned sale item,
// inside the approval transaction.
func (s *devolucionService) productoIDDeItemTx(tx *gorm.DB, d *model.Devolucion) (uuid.UUID, error) {
	venta, err := s.ventaRepo.FindByIDTx(tx, d.VentaID)
	if err != nil {
		return uuid.Nil, apperror.Internal("error cargando venta de la devolución", err)
	}
	for _, item := range venta.Items {
		if item.ID == d.VentaItemID {
			return item.ProductoID, nil
		}
	}
	return uuid.Nil, apperror.NotFound("item de venta de la devolución no encontrado")
}

func (s *devolucionService) ListarDevoluciones(ctx context.Context, filter dto.DevolucionFilter) (*dto.DevolucionListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	devoluciones, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperror.Internal("error listando devoluciones", err)
	}
	items := make([]dto.DevolucionResponse, 0, len(devoluciones))
	for i := range devoluciones {
		items = append(items, *devolucionToResponse(&devoluciones[i]))
	}
	return &dto.DevolucionListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func devolucionToResponse(d *model.Devolucion) *dto.DevolucionResponse {
	var aprobadaPor *string
	if d.AprobadaPor != nil {
		ap := d.AprobadaPor.String()
		aprobadaPor = &ap
	}
	return &dto.DevolucionResponse{
		ID:               d.ID.String(),
		Numero:           d.Numero,
		NumeroDevolucion: d.NumeroFormateado(),
		VentaID:          d.VentaID.String(),
		VentaItemID:      d.VentaItemID.String(),
		Cantidad:         d.Cantidad,
		MontoReembolso:   d.MontoReembolso,
		MetodoReembolso:  d.MetodoReembolso,
		Motivo:           d.Motivo,
		FotoPath:         d.FotoPath,
		Estado:           d.Estado,
		SolicitadaPor:    d.SolicitadaPor.String(),
		AprobadaPor:      aprobadaPor,
		NotasAprobador:   d.NotasAprobador,
		CreatedAt:        d.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
