package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yuseponub/varixcenter-sub001/internal/apperror"
	"github.com/yuseponub/varixcenter-sub001/internal/dto"
	"github.com/yuseponub/varixcenter-sub001/internal/model"
	"github.com/yuseponub/varixcenter-sub001/internal/repository"
)

// ── In-memory AjusteRepository stub ──────────────────────────────────────────

type stubAjusteRepo struct {
	ajustes        []model.AjusteInventario
	transferencias []model.TransferenciaStock
}

func newStubAjusteRepo() *stubAjusteRepo { return &stubAjusteRepo{} }

func (r *stubAjusteRepo) CreateTx(_ *gorm.DB, a *model.AjusteInventario) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	r.ajustes = append(r.ajustes, *a)
	return nil
}

func (r *stubAjusteRepo) CreateTransferenciaTx(_ *gorm.DB, t *model.TransferenciaStock) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	r.transferencias = append(r.transferencias, *t)
	return nil
}

func (r *stubAjusteRepo) ListByProducto(_ context.Context, productoID uuid.UUID) ([]model.AjusteInventario, error) {
	var result []model.AjusteInventario
	for _, a := range r.ajustes {
		if a.ProductoID == productoID {
			result = append(result, a)
		}
	}
	return result, nil
}

func (r *stubAjusteRepo) DB() *gorm.DB { return nil }

var _ repository.AjusteRepository = (*stubAjusteRepo)(nil)

// ── Fixture ───────────────────────────────────────────────────────────────────

type ajusteFixture struct {
	ajusteRepo   *stubAjusteRepo
	productoRepo *stubProductoRepo
	movRepo      *stubMovimientoRepo
	svc          AjusteService
}

func buildAjusteSvc() ajusteFixture {
	ajusteRepo := newStubAjusteRepo()
	productoRepo := newStubProductoRepo()
	movRepo := newStubMovimientoRepo()
	ledger := NewLedgerService(productoRepo, movRepo)
	return ajusteFixture{
		ajusteRepo:   ajusteRepo,
		productoRepo: productoRepo,
		movRepo:      movRepo,
		svc:          NewAjusteService(ajusteRepo, ledger),
	}
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestCrearAjuste_EntradaPoolNormal(t *testing.T) {
	f := buildAjusteSvc()
	p := seedProducto(f.productoRepo, "MUS", "M", 50000, 10, 0)

	resp, err := f.svc.CrearAjuste(context.Background(), adminActor(), dto.CrearAjusteRequest{
		ProductoID: p.ID.String(),
		Direccion:  model.AjusteEntrada,
		Pool:       model.PoolNormal,
		Cantidad:   5,
		Motivo:     "conteo físico encontró unidades extra",
	})

	require.NoError(t, err)
	assert.Equal(t, model.AjusteEntrada, resp.Direccion)
	assert.Equal(t, 15, f.productoRepo.productos[p.ID].StockNormal)

	require.Len(t, f.movRepo.movimientos, 1)
	mov := f.movRepo.movimientos[0]
	assert.Equal(t, model.MovimientoAjusteEntrada, mov.Tipo)
	assert.Equal(t, model.RefAjuste, mov.ReferenciaTipo)
	// The movement references the adjustment row carrying the motivo.
	assert.Equal(t, f.ajusteRepo.ajustes[0].ID, mov.ReferenciaID)
}

func TestCrearAjuste_SalidaPoolDevoluciones(t *testing.T) {
	f := buildAjusteSvc()
	p := seedProducto(f.productoRepo, "MUS", "M", 50000, 10, 3)

	_, err := f.svc.CrearAjuste(context.Background(), adminActor(), dto.CrearAjusteRequest{
		ProductoID: p.ID.String(),
		Direccion:  model.AjusteSalida,
		Pool:       model.PoolDevoluciones,
		Cantidad:   2,
		Motivo:     "unidades devueltas dañadas, se dan de baja",
	})

	require.NoError(t, err)
	assert.Equal(t, 10, f.productoRepo.productos[p.ID].StockNormal)
	assert.Equal(t, 1, f.productoRepo.productos[p.ID].StockDevoluciones)
}

func TestCrearAjuste_SalidaSinSaldo(t *testing.T) {
	f := buildAjusteSvc()
	p := seedProducto(f.productoRepo, "MUS", "M", 50000, 1, 0)

	_, err := f.svc.CrearAjuste(context.Background(), adminActor(), dto.CrearAjusteRequest{
		ProductoID: p.ID.String(),
		Direccion:  model.AjusteSalida,
		Pool:       model.PoolNormal,
		Cantidad:   3,
		Motivo:     "baja por deterioro en bodega",
	})

	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))
}

func TestCrearAjuste_SoloAdmin(t *testing.T) {
	f := buildAjusteSvc()

	_, err := f.svc.CrearAjuste(context.Background(), secretariaActor(), dto.CrearAjusteRequest{
		ProductoID: uuid.NewString(),
		Direccion:  model.AjusteEntrada,
		Pool:       model.PoolNormal,
		Cantidad:   1,
		Motivo:     "intento sin permisos suficientes",
	})

	require.Error(t, err)
	e, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindAuthorization, e.Kind)
}

func TestTransferir_DevolucionesANormal(t *testing.T) {
	f := buildAjusteSvc()
	p := seedProducto(f.productoRepo, "MUS", "M", 50000, 6, 4)

	resp, err := f.svc.Transferir(context.Background(), adminActor(), dto.TransferirStockRequest{
		ProductoID: p.ID.String(),
		Destino:    model.PoolNormal,
		Cantidad:   3,
		Motivo:     "devoluciones inspeccionadas, vuelven a la venta",
	})

	require.NoError(t, err)
	assert.Equal(t, model.PoolNormal, resp.Destino)
	assert.Equal(t, 9, f.productoRepo.productos[p.ID].StockNormal)
	assert.Equal(t, 1, f.productoRepo.productos[p.ID].StockDevoluciones)

	require.Len(t, f.movRepo.movimientos, 1)
	assert.Equal(t, model.MovimientoTransferencia, f.movRepo.movimientos[0].Tipo)
	assert.Equal(t, model.RefTransferencia, f.movRepo.movimientos[0].ReferenciaTipo)
}

func TestListarAjustesPorProducto(t *testing.T) {
	f := buildAjusteSvc()
	p := seedProducto(f.productoRepo, "MUS", "M", 50000, 10, 0)
	otro := seedProducto(f.productoRepo, "PAN", "L", 65000, 10, 0)
	admin := adminActor()

	for _, producto := range []*model.Producto{p, p, otro} {
		_, err := f.svc.CrearAjuste(context.Background(), admin, dto.CrearAjusteRequest{
			ProductoID: producto.ID.String(),
			Direccion:  model.AjusteEntrada,
			Pool:       model.PoolNormal,
			Cantidad:   1,
			Motivo:     "ajuste de prueba para el listado",
		})
		require.NoError(t, err)
	}

	ajustes, err := f.svc.ListarAjustesPorProducto(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Len(t, ajustes, 2)
}
