package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yuseponub/varixcenter-sub001/internal/apperror"
	"github.com/yuseponub/varixcenter-sub001/internal/auth"
	"github.com/yuseponub/varixcenter-sub001/internal/dto"
	"github.com/yuseponub/varixcenter-sub001/internal/model"
	"github.com/yuseponub/varixcenter-sub001/internal/repository"
)

// ProductoService manages the catalog. Product identity is the (tipo, talla)
// pair; the codigo is derived from it ("MUSLO"+"M" → MUS-M style upper-cased
// {TIPO}-{TALLA}) and never edited by hand. Products are deactivated instead
// of deleted so old sales keep valid references.
type ProductoService interface {
	CrearProducto(ctx context.Context, actor auth.Actor, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	ObtenerProducto(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	ListarProductos(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	ActualizarPrecio(ctx context.Context, actor auth.Actor, id uuid.UUID, precio decimal.Decimal) (*dto.ProductoResponse, error)
	CambiarActivo(ctx context.Context, actor auth.Actor, id uuid.UUID, activo bool) error
	StockBajo(ctx context.Context) ([]dto.ProductoResponse, error)
	HistorialPrecios(ctx context.Context, id uuid.UUID, page, limit int) ([]dto.HistorialPrecioResponse, int64, error)
}

type productoService struct {
	repo          repository.ProductoRepository
	historialRepo repository.HistorialPrecioRepository
}

func NewProductoService(
	repo repository.ProductoRepository,
	historialRepo repository.HistorialPrecioRepository,
) ProductoService {
	return &productoService{repo: repo, historialRepo: historialRepo}
}

func (s *productoService) CrearProducto(ctx context.Context, actor auth.Actor, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	if err := auth.Authorize(actor, auth.OpGestionarCatalogo); err != nil {
		return nil, err
	}

	if req.Precio.LessThanOrEqual(decimal.Zero) {
		return nil, apperror.Validation("el precio debe ser mayor que cero")
	}

	tipo := strings.ToUpper(strings.TrimSpace(req.Tipo))
	talla := strings.ToUpper(strings.TrimSpace(req.Talla))

	if existente, err := s.repo.FindByTipoTalla(ctx, tipo, talla); err == nil && existente != nil && existente.ID != uuid.Nil {
		return nil, apperror.BusinessRule(apperror.CodeDuplicateCode,
			fmt.Sprintf("ya existe un producto %s talla %s", tipo, talla))
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Internal("error verificando duplicados", err)
	}

	umbral := req.UmbralAlerta
	if umbral <= 0 {
		umbral = 5
	}

	producto := model.Producto{
		Tipo:         tipo,
		Talla:        talla,
		Codigo:       codigoProducto(tipo, talla),
		Precio:       req.Precio,
		UmbralAlerta: umbral,
		Activo:       true,
	}
	if err := s.repo.Create(ctx, &producto); err != nil {
		return nil, apperror.Internal("error creando producto", err)
	}

	return productoToResponse(&producto), nil
}

func (s *productoService) ObtenerProducto(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	producto, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("producto no encontrado")
	}
	return productoToResponse(producto), nil
}

func (s *productoService) ListarProductos(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	productos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperror.Internal("error listando productos", err)
	}
	items := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		items = append(items, *productoToResponse(&productos[i]))
	}
	return &dto.ProductoListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// ActualizarPrecio changes the catalog price and appends the historial row in
// the same transaction. Existing sale items keep their snapshot price.
func (s *productoService) ActualizarPrecio(ctx context.Context, actor auth.Actor, id uuid.UUID, precio decimal.Decimal) (*dto.ProductoResponse, error) {
	if err := auth.Authorize(actor, auth.OpGestionarCatalogo); err != nil {
		return nil, err
	}
	if precio.LessThanOrEqual(decimal.Zero) {
		return nil, apperror.Validation("el precio debe ser mayor que cero")
	}

	var actualizado *model.Producto
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		producto, err := s.repo.FindByIDForUpdateTx(tx, id)
		if err != nil {
			return apperror.NotFound("producto no encontrado")
		}
		if producto.Precio.Equal(precio) {
			actualizado = producto
			return nil
		}
		if err := s.repo.UpdatePrecioTx(tx, id, precio); err != nil {
			return apperror.Internal("error actualizando precio", err)
		}
		if err := s.historialRepo.CreateTx(tx, &model.HistorialPrecio{
			ProductoID:     id,
			PrecioAnterior: producto.Precio,
			PrecioNuevo:    precio,
			CambiadoPor:    actor.ID,
		}); err != nil {
			return apperror.Internal("error registrando historial de precio", err)
		}
		producto.Precio = precio
		actualizado = producto
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return productoToResponse(actualizado), nil
}

func (s *productoService) CambiarActivo(ctx context.Context, actor auth.Actor, id uuid.UUID, activo bool) error {
	if err := auth.Authorize(actor, auth.OpGestionarCatalogo); err != nil {
		return err
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return apperror.NotFound("producto no encontrado")
	}
	if err := s.repo.SetActivo(ctx, id, activo); err != nil {
		return apperror.Internal("error cambiando estado del producto", err)
	}
	return nil
}

func (s *productoService) StockBajo(ctx context.Context) ([]dto.ProductoResponse, error) {
	productos, err := s.repo.StockBajo(ctx)
	if err != nil {
		return nil, apperror.Internal("error consultando stock bajo", err)
	}
	items := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		items = append(items, *productoToResponse(&productos[i]))
	}
	return items, nil
}

func (s *productoService) HistorialPrecios(ctx context.Context, id uuid.UUID, page, limit int) ([]dto.HistorialPrecioResponse, int64, error) {
	rows, total, err := s.historialRepo.ListByProducto(ctx, id, page, limit)
	if err != nil {
		return nil, 0, apperror.Internal("error listando historial de precios", err)
	}
	out := make([]dto.HistorialPrecioResponse, 0, len(rows))
	for _, h := range rows {
		out = append(out, dto.HistorialPrecioResponse{
			ID:             h.ID.String(),
			ProductoID:     h.ProductoID.String(),
			PrecioAnterior: h.PrecioAnterior,
			PrecioNuevo:    h.PrecioNuevo,
			CambiadoPor:    h.CambiadoPor.String(),
			CreatedAt:      h.CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}
	return out, total, nil
}

// codigoProducto derives the display code from the identity pair:
// ("MUS", "M") → "MUS-M". Inputs are already upper-cased by the caller.
func codigoProducto(tipo, talla string) string {
	return fmt.Sprintf("%s-%s", tipo, talla)
}

func productoToResponse(p *model.Producto) *dto.ProductoResponse {
	return &dto.ProductoResponse{
		ID:                p.ID.String(),
		Tipo:              p.Tipo,
		Talla:             p.Talla,
		Codigo:            p.Codigo,
		Precio:            p.Precio,
		StockNormal:       p.StockNormal,
		StockDevoluciones: p.StockDevoluciones,
		UmbralAlerta:      p.UmbralAlerta,
		Activo:            p.Activo,
	}
}
