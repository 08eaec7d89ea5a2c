package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yuseponub/varixcenter-sub001/internal/apperror"
	"github.com/yuseponub/varixcenter-sub001/internal/dto"
	"github.com/yuseponub/varixcenter-sub001/internal/model"
	"github.com/yuseponub/varixcenter-sub001/internal/repository"
)

// MovimientoParams describes one stock change to apply through the ledger.
// Pool is only meaningful for ajuste_entrada/ajuste_salida (the affected
// pool) and transferencia (the destination pool); other types imply it.
type MovimientoParams struct {
	ProductoID     uuid.UUID
	Tipo           string
	Cantidad       int
	Pool           string
	ReferenciaTipo string
	ReferenciaID   uuid.UUID
	Notas          string
	Actor          uuid.UUID
}

// LedgerService is the single write path for stock. Every workflow calls
// AplicarMovimientoTx inside its own transaction; the ledger locks the
// product row, applies the signed delta to the right pool(s), rejects any
// change that would drive a pool negative, and appends the immutable
// movement row with before/after snapshots.
type LedgerService interface {
	AplicarMovimientoTx(tx *gorm.DB, p MovimientoParams) (*model.Producto, error)
	ListarMovimientos(ctx context.Context, filter repository.MovimientoStockFilter) (*dto.MovimientoListResponse, error)
	MovimientosPorReferencia(ctx context.Context, refTipo string, refID uuid.UUID) ([]dto.MovimientoResponse, error)
}

type ledgerService struct {
	productoRepo   repository.ProductoRepository
	movimientoRepo repository.MovimientoStockRepository
}

func NewLedgerService(
	productoRepo repository.ProductoRepository,
	movimientoRepo repository.MovimientoStockRepository,
) LedgerService {
	return &ledgerService{productoRepo: productoRepo, movimientoRepo: movimientoRepo}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

func (s *ledgerService) AplicarMovimientoTx(tx *gorm.DB, p MovimientoParams) (*model.Producto, error) {
	if p.Cantidad <= 0 {
		return nil, apperror.Validation("la cantidad del movimiento debe ser mayor a cero")
	}

	producto, err := s.productoRepo.FindByIDForUpdateTx(tx, p.ProductoID)
	if err != nil {
		return nil, apperror.NotFound("producto no encontrado")
	}

	normal := producto.StockNormal
	devoluciones := producto.StockDevoluciones
	antesNormal, antesDevoluciones := normal, devoluciones

	switch p.Tipo {
	case model.MovimientoCompra:
		normal += p.Cantidad
	case model.MovimientoVenta:
		normal -= p.Cantidad
	case model.MovimientoDevolucion:
		devoluciones += p.Cantidad
	case model.MovimientoAjusteEntrada:
		if p.Pool == model.PoolDevoluciones {
			devoluciones += p.Cantidad
		} else {
			normal += p.Cantidad
		}
	case model.MovimientoAjusteSalida:
		if p.Pool == model.PoolDevoluciones {
			devoluciones -= p.Cantidad
		} else {
			normal -= p.Cantidad
		}
	case model.MovimientoTransferencia:
		if p.Pool == model.PoolNormal {
			devoluciones -= p.Cantidad
			normal += p.Cantidad
		} else {
			normal -= p.Cantidad
			devoluciones += p.Cantidad
		}
	default:
		return nil, apperror.Validation(fmt.Sprintf("tipo de movimiento desconocido: %q", p.Tipo))
	}

	if normal < 0 || devoluciones < 0 {
		return nil, apperror.BusinessRule(apperror.CodeInsufficientStock,
			fmt.Sprintf("stock insuficiente para %s: disponible normal=%d, devoluciones=%d",
				producto.Codigo, antesNormal, antesDevoluciones))
	}

	if err := s.productoRepo.UpdateStockTx(tx, producto.ID, normal, devoluciones); err != nil {
		return nil, apperror.Internal("error actualizando stock", err)
	}

	mov := &model.MovimientoStock{
		ProductoID:               producto.ID,
		Tipo:                     p.Tipo,
		Cantidad:                 p.Cantidad,
		StockNormalAntes:         antesNormal,
		StockNormalDespues:       normal,
		StockDevolucionesAntes:   antesDevoluciones,
		StockDevolucionesDespues: devoluciones,
		ReferenciaTipo:           p.ReferenciaTipo,
		ReferenciaID:             p.ReferenciaID,
		Notas:                    p.Notas,
		ActorID:                  p.Actor,
	}
	if err := s.movimientoRepo.CreateTx(tx, mov); err != nil {
		return nil, apperror.Internal("error registrando movimiento de stock", err)
	}

	producto.StockNormal = normal
	producto.StockDevoluciones = devoluciones
	return producto, nil
}

func (s *ledgerService) ListarMovimientos(ctx context.Context, filter repository.MovimientoStockFilter) (*dto.MovimientoListResponse, error) {
	movimientos, total, err := s.movimientoRepo.List(ctx, filter)
	if err != nil {
		return nil, apperror.Internal("error listando movimientos", err)
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 100
	}
	items := make([]dto.MovimientoResponse, 0, len(movimientos))
	for i := range movimientos {
		items = append(items, movimientoToResponse(&movimientos[i]))
	}
	return &dto.MovimientoListResponse{Data: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *ledgerService) MovimientosPorReferencia(ctx context.Context, refTipo string, refID uuid.UUID) ([]dto.MovimientoResponse, error) {
	movimientos, err := s.movimientoRepo.ListByReferencia(ctx, refTipo, refID)
	if err != nil {
		return nil, apperror.Internal("error consultando movimientos", err)
	}
	items := make([]dto.MovimientoResponse, 0, len(movimientos))
	for i := range movimientos {
		items = append(items, movimientoToResponse(&movimientos[i]))
	}
	return items, nil
}

func movimientoToResponse(m *model.MovimientoStock) dto.MovimientoResponse {
	resp := dto.MovimientoResponse{
		ID:                       m.ID.String(),
		ProductoID:               m.ProductoID.String(),
		Tipo:                     m.Tipo,
		Cantidad:                 m.Cantidad,
		StockNormalAntes:         m.StockNormalAntes,
		StockNormalDespues:       m.StockNormalDespues,
		StockDevolucionesAntes:   m.StockDevolucionesAntes,
		StockDevolucionesDespues: m.StockDevolucionesDespues,
		ReferenciaTipo:           m.ReferenciaTipo,
		ReferenciaID:             m.ReferenciaID.String(),
		Notas:                    m.Notas,
		ActorID:                  m.ActorID.String(),
		CreatedAt:                m.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if m.Producto != nil {
		resp.ProductoCodigo = m.Producto.Codigo
	}
	return resp
}
