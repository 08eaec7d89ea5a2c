package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yuseponub/varixcenter-sub001/internal/apperror"
	"github.com/yuseponub/varixcenter-sub001/internal/auth"
	"github.com/yuseponub/varixcenter-sub001/internal/dto"
	"github.com/yuseponub/varixcenter-sub001/internal/model"
	"github.com/yuseponub/varixcenter-sub001/internal/repository"
)

// AjusteService covers manual stock corrections and pool-to-pool transfers.
// Both are thin wrappers over the ledger: the adjustment/transfer row records
// the mandatory motivo, the movement row carries the stock change.
type AjusteService interface {
	CrearAjuste(ctx context.Context, actor auth.Actor, req dto.CrearAjusteRequest) (*dto.AjusteResponse, error)
	Transferir(ctx context.Context, actor auth.Actor, req dto.TransferirStockRequest) (*dto.TransferenciaResponse, error)
	ListarAjustesPorProducto(ctx context.Context, productoID uuid.UUID) ([]dto.AjusteResponse, error)
}

type ajusteService struct {
	repo   repository.AjusteRepository
	ledger LedgerService
}

func NewAjusteService(repo repository.AjusteRepository, ledger LedgerService) AjusteService {
	return &ajusteService{repo: repo, ledger: ledger}
}

func (s *ajusteService) CrearAjuste(ctx context.Context, actor auth.Actor, req dto.CrearAjusteRequest) (*dto.AjusteResponse, error) {
	if err := auth.Authorize(actor, auth.OpAjustarInventario); err != nil {
		return nil, err
	}

	productoID, err := uuid.Parse(req.ProductoID)
	if err != nil {
		return nil, apperror.Validation("producto_id inválido")
	}

	tipoMovimiento := model.MovimientoAjusteEntrada
	if req.Direccion == model.AjusteSalida {
		tipoMovimiento = model.MovimientoAjusteSalida
	}

	ajuste := model.AjusteInventario{
		ProductoID: productoID,
		Direccion:  req.Direccion,
		Pool:       req.Pool,
		Cantidad:   req.Cantidad,
		Motivo:     req.Motivo,
		CreadoPor:  actor.ID,
	}
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, &ajuste); err != nil {
			return apperror.Internal("error creando ajuste", err)
		}
		if _, err := s.ledger.AplicarMovimientoTx(tx, MovimientoParams{
			ProductoID:     productoID,
			Tipo:           tipoMovimiento,
			Cantidad:       req.Cantidad,
			Pool:           req.Pool,
			ReferenciaTipo: model.RefAjuste,
			ReferenciaID:   ajuste.ID,
			Notas:          req.Motivo,
			Actor:          actor.ID,
		}); err != nil {
			return err
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return ajusteToResponse(&ajuste), nil
}

// Transferir moves units between the product's two pools in one atomic
// movement, so the combined total never changes.
func (s *ajusteService) Transferir(ctx context.Context, actor auth.Actor, req dto.TransferirStockRequest) (*dto.TransferenciaResponse, error) {
	if err := auth.Authorize(actor, auth.OpTransferirStock); err != nil {
		return nil, err
	}

	productoID, err := uuid.Parse(req.ProductoID)
	if err != nil {
		return nil, apperror.Validation("producto_id inválido")
	}

	transferencia := model.TransferenciaStock{
		ProductoID: productoID,
		Destino:    req.Destino,
		Cantidad:   req.Cantidad,
		Motivo:     req.Motivo,
		CreadoPor:  actor.ID,
	}
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTransferenciaTx(tx, &transferencia); err != nil {
			return apperror.Internal("error creando transferencia", err)
		}
		if _, err := s.ledger.AplicarMovimientoTx(tx, MovimientoParams{
			ProductoID:     productoID,
			Tipo:           model.MovimientoTransferencia,
			Cantidad:       req.Cantidad,
			Pool:           req.Destino,
			ReferenciaTipo: model.RefTransferencia,
			ReferenciaID:   transferencia.ID,
			Notas:          fmt.Sprintf("Transferencia hacia pool %s: %s", req.Destino, req.Motivo),
			Actor:          actor.ID,
		}); err != nil {
			return err
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return transferenciaToResponse(&transferencia), nil
}

func (s *ajusteService) ListarAjustesPorProducto(ctx context.Context, productoID uuid.UUID) ([]dto.AjusteResponse, error) {
	ajustes, err := s.repo.ListByProducto(ctx, productoID)
	if err != nil {
		return nil, apperror.Internal("error listando ajustes", err)
	}
	out := make([]dto.AjusteResponse, 0, len(ajustes))
	for i := range ajustes {
		out = append(out, *ajusteToResponse(&ajustes[i]))
	}
	return out, nil
}

func ajusteToResponse(a *model.AjusteInventario) *dto.AjusteResponse {
	return &dto.AjusteResponse{
		ID:         a.ID.String(),
		ProductoID: a.ProductoID.String(),
		Direccion:  a.Direccion,
		Pool:       a.Pool,
		Cantidad:   a.Cantidad,
		Motivo:     a.Motivo,
		CreatedAt:  a.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func transferenciaToResponse(t *model.TransferenciaStock) *dto.TransferenciaResponse {
	return &dto.TransferenciaResponse{
		ID:         t.ID.String(),
		ProductoID: t.ProductoID.String(),
		Destino:    t.Destino,
		Cantidad:   t.Cantidad,
		Motivo:     t.Motivo,
		CreatedAt:  t.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
