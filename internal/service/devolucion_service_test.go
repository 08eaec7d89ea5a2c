package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yuseponub/varixcenter-sub001/internal/apperror"
	"github.com/yuseponub/varixcenter-sub001/internal/dto"
	"github.com/yuseponub/varixcenter-sub001/internal/model"
	"github.com/yuseponub/varixcenter-sub001/internal/repository"
)

// ── In-memory DevolucionRepository stub ──────────────────────────────────────

type stubDevolucionRepo struct {
	devoluciones map[uuid.UUID]*model.Devolucion
}

func newStubDevolucionRepo() *stubDevolucionRepo {
	return &stubDevolucionRepo{devoluciones: make(map[uuid.UUID]*model.Devolucion)}
}

func (r *stubDevolucionRepo) CreateTx(_ *gorm.DB, d *model.Devolucion) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	r.devoluciones[d.ID] = d
	return nil
}

func (r *stubDevolucionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Devolucion, error) {
	d, ok := r.devoluciones[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return d, nil
}

func (r *stubDevolucionRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Devolucion, error) {
	d, ok := r.devoluciones[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return d, nil
}

func (r *stubDevolucionRepo) UpdateResolucionTx(_ *gorm.DB, d *model.Devolucion) error {
	r.devoluciones[d.ID] = d
	return nil
}

func (r *stubDevolucionRepo) SumNoRechazadasPorItem(_ context.Context, ventaItemID uuid.UUID) (int, error) {
	return r.sumNoRechazadas(ventaItemID), nil
}

func (r *stubDevolucionRepo) SumNoRechazadasPorItemTx(_ *gorm.DB, ventaItemID uuid.UUID) (int, error) {
	return r.sumNoRechazadas(ventaItemID), nil
}

func (r *stubDevolucionRepo) sumNoRechazadas(ventaItemID uuid.UUID) int {
	total := 0
	for _, d := range r.devoluciones {
		if d.VentaItemID == ventaItemID && d.Estado != model.DevolucionRechazada {
			total += d.Cantidad
		}
	}
	return total
}

func (r *stubDevolucionRepo) List(_ context.Context, filter dto.DevolucionFilter) ([]model.Devolucion, int64, error) {
	var result []model.Devolucion
	for _, d := range r.devoluciones {
		if filter.Estado != "" && filter.Estado != "all" && d.Estado != filter.Estado {
			continue
		}
		result = append(result, *d)
	}
	return result, int64(len(result)), nil
}

func (r *stubDevolucionRepo) CountPendientes(_ context.Context) (int64, error) {
	var count int64
	for _, d := range r.devoluciones {
		if d.Estado == model.DevolucionPendiente {
			count++
		}
	}
	return count, nil
}

func (r *stubDevolucionRepo) DB() *gorm.DB { return nil }

var _ repository.DevolucionRepository = (*stubDevolucionRepo)(nil)

// ── Fixture ───────────────────────────────────────────────────────────────────

type devolucionFixture struct {
	ventaFixture
	devRepo *stubDevolucionRepo
	devSvc  DevolucionService
}

func buildDevolucionSvc() devolucionFixture {
	vf := buildVentaSvc()
	devRepo := newStubDevolucionRepo()
	ledger := NewLedgerService(vf.productoRepo, vf.movRepo)
	devSvc := NewDevolucionService(devRepo, vf.ventaRepo, newStubSecuenciaRepo(), ledger)
	return devolucionFixture{ventaFixture: vf, devRepo: devRepo, devSvc: devSvc}
}

// ventaConItem registers a sale of cantidad units and returns (ventaID, itemID).
func ventaConItem(t *testing.T, f devolucionFixture, p *model.Producto, cantidad int) (uuid.UUID, uuid.UUID) {
	t.Helper()
	monto := p.Precio.Mul(decimal.NewFromInt(int64(cantidad)))
	resp, err := f.svc.RegistrarVenta(context.Background(), secretariaActor(), dto.RegistrarVentaRequest{
		Items:   []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: cantidad}},
		Metodos: []dto.MetodoPagoRequest{{Metodo: model.MetodoEfectivo, Monto: monto}},
	})
	require.NoError(t, err)
	return uuid.MustParse(resp.ID), uuid.MustParse(resp.Items[0].ID)
}

func solicitudDevolucion(ventaID, itemID uuid.UUID, cantidad int) dto.CrearDevolucionRequest {
	return dto.CrearDevolucionRequest{
		VentaID:         ventaID.String(),
		VentaItemID:     itemID.String(),
		Cantidad:        cantidad,
		MetodoReembolso: model.MetodoEfectivo,
		Motivo:          "talla incorrecta para el paciente",
	}
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestCrearDevolucion_Pendiente(t *testing.T) {
	f := buildDevolucionSvc()
	p := seedProducto(f.productoRepo, "MUS", "M", 50000, 10, 0)
	ventaID, itemID := ventaConItem(t, f, p, 2)

	resp, err := f.devSvc.CrearDevolucion(context.Background(), secretariaActor(), solicitudDevolucion(ventaID, itemID, 1))

	require.NoError(t, err)
	assert.Equal(t, model.DevolucionPendiente, resp.Estado)
	assert.Equal(t, "DEV-000001", resp.NumeroDevolucion)
	// Refund amount derives from the item's snapshot price.
	assert.True(t, resp.MontoReembolso.Equal(p.Precio))
	// No stock effect until approval.
	assert.Equal(t, 8, f.productoRepo.productos[p.ID].StockNormal)
	assert.Equal(t, 0, f.productoRepo.productos[p.ID].StockDevoluciones)
}

func TestCrearDevolucion_ExcedeCantidadDevolvible(t *testing.T) {
	f := buildDevolucionSvc()
	p := seedProducto(f.productoRepo, "MUS", "M", 50000, 10, 0)
	ventaID, itemID := ventaConItem(t, f, p, 2)

	// First request consumes 1 of the 2 returnable units.
	primera, err := f.devSvc.CrearDevolucion(context.Background(), secretariaActor(), solicitudDevolucion(ventaID, itemID, 1))
	require.NoError(t, err)
	require.NoError(t, f.devSvc.AprobarDevolucion(context.Background(), adminActor(), uuid.MustParse(primera.ID), dto.ResolverDevolucionRequest{}))

	// Second single unit still fits.
	_, err = f.devSvc.CrearDevolucion(context.Background(), secretariaActor(), solicitudDevolucion(ventaID, itemID, 1))
	require.NoError(t, err)

	// Third exceeds the sold quantity.
	_, err = f.devSvc.CrearDevolucion(context.Background(), secretariaActor(), solicitudDevolucion(ventaID, itemID, 1))
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeReturnQtyExceeded))
}

func TestCrearDevolucion_RechazadasNoCuentan(t *testing.T) {
	f := buildDevolucionSvc()
	p := seedProducto(f.productoRepo, "MUS", "M", 50000, 10, 0)
	ventaID, itemID := ventaConItem(t, f, p, 2)

	resp, err := f.devSvc.CrearDevolucion(context.Background(), secretariaActor(), solicitudDevolucion(ventaID, itemID, 2))
	require.NoError(t, err)
	require.NoError(t, f.devSvc.RechazarDevolucion(context.Background(), medicoActor(), uuid.MustParse(resp.ID), dto.ResolverDevolucionRequest{}))

	// The rejected quantity frees up again.
	_, err = f.devSvc.CrearDevolucion(context.Background(), secretariaActor(), solicitudDevolucion(ventaID, itemID, 2))
	assert.NoError(t, err)
}

func TestCrearDevolucion_VentaAnulada(t *testing.T) {
	f := buildDevolucionSvc()
	p := seedProducto(f.productoRepo, "MUS", "M", 50000, 10, 0)
	ventaID, itemID := ventaConItem(t, f, p, 1)

	require.NoError(t, f.svc.AnularVenta(context.Background(), adminActor(), ventaID, "venta registrada por error"))

	_, err := f.devSvc.CrearDevolucion(context.Background(), secretariaActor(), solicitudDevolucion(ventaID, itemID, 1))
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeSaleNotActive))
}

func TestCrearDevolucion_ItemAjeno(t *testing.T) {
	f := buildDevolucionSvc()
	p := seedProducto(f.productoRepo, "MUS", "M", 50000, 10, 0)
	ventaID, _ := ventaConItem(t, f, p, 1)

	_, err := f.devSvc.CrearDevolucion(context.Background(), secretariaActor(), solicitudDevolucion(ventaID, uuid.New(), 1))
	require.Error(t, err)
	e, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindNotFound, e.Kind)
}

func TestAprobarDevolucion_RestauraPoolDevoluciones(t *testing.T) {
	f := buildDevolucionSvc()
	p := seedProducto(f.productoRepo, "MUS", "M", 50000, 10, 0)
	ventaID, itemID := ventaConItem(t, f, p, 3)

	resp, err := f.devSvc.CrearDevolucion(context.Background(), secretariaActor(), solicitudDevolucion(ventaID, itemID, 2))
	require.NoError(t, err)

	err = f.devSvc.AprobarDevolucion(context.Background(), medicoActor(), uuid.MustParse(resp.ID), dto.ResolverDevolucionRequest{})
	require.NoError(t, err)

	// Units return to the devoluciones pool, never to normal.
	assert.Equal(t, 7, f.productoRepo.productos[p.ID].StockNormal)
	assert.Equal(t, 2, f.productoRepo.productos[p.ID].StockDevoluciones)
	assert.Equal(t, model.DevolucionAprobada, f.devRepo.devoluciones[uuid.MustParse(resp.ID)].Estado)
}

func TestAprobarDevolucion_DobleResolucion(t *testing.T) {
	f := buildDevolucionSvc()
	p := seedProducto(f.productoRepo, "MUS", "M", 50000, 10, 0)
	ventaID, itemID := ventaConItem(t, f, p, 1)

	resp, err := f.devSvc.CrearDevolucion(context.Background(), secretariaActor(), solicitudDevolucion(ventaID, itemID, 1))
	require.NoError(t, err)
	devID := uuid.MustParse(resp.ID)

	require.NoError(t, f.devSvc.AprobarDevolucion(context.Background(), adminActor(), devID, dto.ResolverDevolucionRequest{}))

	err = f.devSvc.AprobarDevolucion(context.Background(), adminActor(), devID, dto.ResolverDevolucionRequest{})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeAlreadyApproved))
	// Stock restored exactly once.
	assert.Equal(t, 1, f.productoRepo.productos[p.ID].StockDevoluciones)
}

func TestRechazarDevolucion_SinEfectoDeStock(t *testing.T) {
	f := buildDevolucionSvc()
	p := seedProducto(f.productoRepo, "MUS", "M", 50000, 10, 0)
	ventaID, itemID := ventaConItem(t, f, p, 1)

	resp, err := f.devSvc.CrearDevolucion(context.Background(), secretariaActor(), solicitudDevolucion(ventaID, itemID, 1))
	require.NoError(t, err)

	err = f.devSvc.RechazarDevolucion(context.Background(), medicoActor(), uuid.MustParse(resp.ID), dto.ResolverDevolucionRequest{})
	require.NoError(t, err)

	assert.Equal(t, 9, f.productoRepo.productos[p.ID].StockNormal)
	assert.Equal(t, 0, f.productoRepo.productos[p.ID].StockDevoluciones)
	assert.Equal(t, model.DevolucionRechazada, f.devRepo.devoluciones[uuid.MustParse(resp.ID)].Estado)
}

func TestResolverDevolucion_SecretariaNoPuede(t *testing.T) {
	f := buildDevolucionSvc()

	err := f.devSvc.AprobarDevolucion(context.Background(), secretariaActor(), uuid.New(), dto.ResolverDevolucionRequest{})
	require.Error(t, err)
	e, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindAuthorization, e.Kind)
}
