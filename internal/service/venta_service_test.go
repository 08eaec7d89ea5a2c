package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yuseponub/varixcenter-sub001/internal/apperror"
	"github.com/yuseponub/varixcenter-sub001/internal/auth"
	"github.com/yuseponub/varixcenter-sub001/internal/dto"
	"github.com/yuseponub/varixcenter-sub001/internal/model"
	"github.com/yuseponub/varixcenter-sub001/internal/repository"
)

// ── In-memory VentaRepository stub ───────────────────────────────────────────

type stubVentaRepo struct {
	ventas map[uuid.UUID]*model.Venta
}

func newStubVentaRepo() *stubVentaRepo {
	return &stubVentaRepo{ventas: make(map[uuid.UUID]*model.Venta)}
}

func (r *stubVentaRepo) CreateTx(_ *gorm.DB, v *model.Venta) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	for i := range v.Items {
		if v.Items[i].ID == uuid.Nil {
			v.Items[i].ID = uuid.New()
		}
		v.Items[i].VentaID = v.ID
	}
	for i := range v.Metodos {
		if v.Metodos[i].ID == uuid.Nil {
			v.Metodos[i].ID = uuid.New()
		}
		v.Metodos[i].VentaID = v.ID
	}
	r.ventas[v.ID] = v
	return nil
}

func (r *stubVentaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Venta, error) {
	v, ok := r.ventas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (r *stubVentaRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Venta, error) {
	v, ok := r.ventas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (r *stubVentaRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Venta, error) {
	v, ok := r.ventas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (r *stubVentaRepo) UpdateAnulacionTx(_ *gorm.DB, v *model.Venta) error {
	r.ventas[v.ID] = v
	return nil
}

func (r *stubVentaRepo) List(_ context.Context, filter dto.VentaFilter) ([]model.Venta, int64, error) {
	var result []model.Venta
	for _, v := range r.ventas {
		if filter.Estado != "" && filter.Estado != "all" && v.Estado != filter.Estado {
			continue
		}
		result = append(result, *v)
	}
	return result, int64(len(result)), nil
}

func (r *stubVentaRepo) SumMetodosPorFecha(_ context.Context, fecha time.Time) (map[string]decimal.Decimal, error) {
	sumas := make(map[string]decimal.Decimal)
	dia := fecha.Format("2006-01-02")
	for _, v := range r.ventas {
		if v.Estado != model.VentaActiva || v.CreatedAt.Format("2006-01-02") != dia {
			continue
		}
		for _, m := range v.Metodos {
			sumas[m.Metodo] = sumas[m.Metodo].Add(m.Monto)
		}
	}
	return sumas, nil
}

func (r *stubVentaRepo) SumMetodosPorFechaTx(_ *gorm.DB, fecha time.Time) (map[string]decimal.Decimal, error) {
	return r.SumMetodosPorFecha(context.Background(), fecha)
}

func (r *stubVentaRepo) CountAndTotalPorFecha(_ context.Context, fecha time.Time) (int64, decimal.Decimal, error) {
	var count int64
	total := decimal.Zero
	dia := fecha.Format("2006-01-02")
	for _, v := range r.ventas {
		if v.Estado != model.VentaActiva || v.CreatedAt.Format("2006-01-02") != dia {
			continue
		}
		count++
		total = total.Add(v.Total)
	}
	return count, total, nil
}

func (r *stubVentaRepo) TotalMes(_ context.Context, anio int, mes time.Month) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, v := range r.ventas {
		if v.Estado == model.VentaActiva && v.CreatedAt.Year() == anio && v.CreatedAt.Month() == mes {
			total = total.Add(v.Total)
		}
	}
	return total, nil
}

func (r *stubVentaRepo) DB() *gorm.DB { return nil }

var _ repository.VentaRepository = (*stubVentaRepo)(nil)

// ── Helpers ───────────────────────────────────────────────────────────────────

func adminActor() auth.Actor      { return auth.Actor{ID: uuid.New(), Rol: model.RolAdmin} }
func secretariaActor() auth.Actor { return auth.Actor{ID: uuid.New(), Rol: model.RolSecretaria} }
func medicoActor() auth.Actor     { return auth.Actor{ID: uuid.New(), Rol: model.RolMedico} }

type ventaFixture struct {
	ventaRepo    *stubVentaRepo
	productoRepo *stubProductoRepo
	movRepo      *stubMovimientoRepo
	cierreRepo   *stubCierreRepo
	svc          VentaService
}

func buildVentaSvc() ventaFixture {
	ventaRepo := newStubVentaRepo()
	productoRepo := newStubProductoRepo()
	movRepo := newStubMovimientoRepo()
	cierreRepo := newStubCierreRepo()
	ledger := NewLedgerService(productoRepo, movRepo)
	svc := NewVentaService(ventaRepo, productoRepo, newStubSecuenciaRepo(), cierreRepo, ledger)
	return ventaFixture{
		ventaRepo: ventaRepo, productoRepo: productoRepo,
		movRepo: movRepo, cierreRepo: cierreRepo, svc: svc,
	}
}

func efectivo(monto int64) dto.MetodoPagoRequest {
	return dto.MetodoPagoRequest{Metodo: model.MetodoEfectivo, Monto: decimal.NewFromInt(monto)}
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestRegistrarVenta_Exitosa(t *testing.T) {
	f := buildVentaSvc()
	p := seedProducto(f.productoRepo, "MUS", "M", 50000, 10, 0)

	resp, err := f.svc.RegistrarVenta(context.Background(), secretariaActor(), dto.RegistrarVentaRequest{
		Items:   []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 2}},
		Metodos: []dto.MetodoPagoRequest{efectivo(100000)},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Numero)
	assert.Equal(t, "VTA-000001", resp.NumeroVenta)
	assert.Equal(t, model.VentaActiva, resp.Estado)
	assert.True(t, resp.Total.Equal(decimal.NewFromInt(100000)))

	// Item snapshots the product identity and price at sale time.
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "MUS-M", resp.Items[0].ProductoCodigo)
	assert.Equal(t, "MUS", resp.Items[0].ProductoTipo)
	assert.Equal(t, "M", resp.Items[0].ProductoTalla)
	assert.True(t, resp.Items[0].PrecioUnitario.Equal(decimal.NewFromInt(50000)))

	assert.Equal(t, 8, f.productoRepo.productos[p.ID].StockNormal)
	require.Len(t, f.movRepo.movimientos, 1)
	assert.Equal(t, model.MovimientoVenta, f.movRepo.movimientos[0].Tipo)
}

func TestRegistrarVenta_NumerosSecuenciales(t *testing.T) {
	f := buildVentaSvc()
	p := seedProducto(f.productoRepo, "MUS", "M", 50000, 10, 0)

	for esperado := int64(1); esperado <= 3; esperado++ {
		resp, err := f.svc.RegistrarVenta(context.Background(), medicoActor(), dto.RegistrarVentaRequest{
			Items:   []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 1}},
			Metodos: []dto.MetodoPagoRequest{efectivo(50000)},
		})
		require.NoError(t, err)
		assert.Equal(t, esperado, resp.Numero)
	}
}

func TestRegistrarVenta_SumaMetodosNoCoincide(t *testing.T) {
	f := buildVentaSvc()
	p := seedProducto(f.productoRepo, "MUS", "M", 50000, 10, 0)

	_, err := f.svc.RegistrarVenta(context.Background(), secretariaActor(), dto.RegistrarVentaRequest{
		Items:   []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 2}},
		Metodos: []dto.MetodoPagoRequest{efectivo(90000)},
	})

	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodePaymentMismatch))
	// Rejected before any stock movement.
	assert.Equal(t, 10, f.productoRepo.productos[p.ID].StockNormal)
	assert.Empty(t, f.movRepo.movimientos)
	assert.Empty(t, f.ventaRepo.ventas)
}

func TestRegistrarVenta_MontoNegativoRechazado(t *testing.T) {
	f := buildVentaSvc()
	p := seedProducto(f.productoRepo, "MUS", "M", 50000, 10, 0)

	// Los montos se compensan y cuadran con el total, pero una fila negativa
	// corrompería los totales por método del cierre.
	comprobante := "uploads/comprobantes/trj-001.jpg"
	_, err := f.svc.RegistrarVenta(context.Background(), secretariaActor(), dto.RegistrarVentaRequest{
		Items: []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 2}},
		Metodos: []dto.MetodoPagoRequest{
			efectivo(150000),
			{Metodo: model.MetodoTarjeta, Monto: decimal.NewFromInt(-50000), ComprobantePath: &comprobante},
		},
	})

	require.Error(t, err)
	e, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindValidation, e.Kind)
	assert.Empty(t, f.ventaRepo.ventas)
	assert.Equal(t, 10, f.productoRepo.productos[p.ID].StockNormal)
	assert.Empty(t, f.movRepo.movimientos)
}

func TestRegistrarVenta_DiaCerrado(t *testing.T) {
	f := buildVentaSvc()
	p := seedProducto(f.productoRepo, "MUS", "M", 50000, 10, 0)
	cierre := &model.CierreCaja{
		ID:          uuid.New(),
		Numero:      1,
		FechaCierre: time.Now(),
		Estado:      model.CierreCerrado,
	}
	f.cierreRepo.cierres[cierre.ID] = cierre

	_, err := f.svc.RegistrarVenta(context.Background(), secretariaActor(), dto.RegistrarVentaRequest{
		Items:   []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 1}},
		Metodos: []dto.MetodoPagoRequest{efectivo(50000)},
	})

	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeDateClosed))
	assert.Empty(t, f.ventaRepo.ventas)
	assert.Equal(t, 10, f.productoRepo.productos[p.ID].StockNormal)
}

func TestRegistrarVenta_DiaReabiertoAceptaVentas(t *testing.T) {
	f := buildVentaSvc()
	p := seedProducto(f.productoRepo, "MUS", "M", 50000, 10, 0)
	cierre := &model.CierreCaja{
		ID:          uuid.New(),
		Numero:      1,
		FechaCierre: time.Now(),
		Estado:      model.CierreReabierto,
	}
	f.cierreRepo.cierres[cierre.ID] = cierre

	resp, err := f.svc.RegistrarVenta(context.Background(), secretariaActor(), dto.RegistrarVentaRequest{
		Items:   []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 1}},
		Metodos: []dto.MetodoPagoRequest{efectivo(50000)},
	})

	require.NoError(t, err)
	assert.Equal(t, model.VentaActiva, resp.Estado)
	assert.Equal(t, 9, f.productoRepo.productos[p.ID].StockNormal)
}

func TestRegistrarVenta_MultiMetodo(t *testing.T) {
	f := buildVentaSvc()
	p := seedProducto(f.productoRepo, "MUS", "M", 50000, 10, 0)

	comprobante := "uploads/comprobantes/abc123.jpg"
	resp, err := f.svc.RegistrarVenta(context.Background(), secretariaActor(), dto.RegistrarVentaRequest{
		Items: []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 2}},
		Metodos: []dto.MetodoPagoRequest{
			efectivo(60000),
			{Metodo: model.MetodoTarjeta, Monto: decimal.NewFromInt(40000), ComprobantePath: &comprobante},
		},
	})

	require.NoError(t, err)
	assert.Len(t, resp.Metodos, 2)
}

func TestRegistrarVenta_MetodoSinComprobante(t *testing.T) {
	f := buildVentaSvc()
	p := seedProducto(f.productoRepo, "MUS", "M", 50000, 10, 0)

	_, err := f.svc.RegistrarVenta(context.Background(), secretariaActor(), dto.RegistrarVentaRequest{
		Items: []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 1}},
		Metodos: []dto.MetodoPagoRequest{
			{Metodo: model.MetodoTransferencia, Monto: decimal.NewFromInt(50000)},
		},
	})

	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeMissingComprobante))
}

func TestRegistrarVenta_ProductoInactivo(t *testing.T) {
	f := buildVentaSvc()
	p := seedProducto(f.productoRepo, "MUS", "M", 50000, 10, 0)
	p.Activo = false

	_, err := f.svc.RegistrarVenta(context.Background(), secretariaActor(), dto.RegistrarVentaRequest{
		Items:   []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 1}},
		Metodos: []dto.MetodoPagoRequest{efectivo(50000)},
	})

	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInactiveProduct))
}

func TestRegistrarVenta_StockInsuficiente(t *testing.T) {
	f := buildVentaSvc()
	p := seedProducto(f.productoRepo, "MUS", "M", 50000, 3, 0)

	_, err := f.svc.RegistrarVenta(context.Background(), secretariaActor(), dto.RegistrarVentaRequest{
		Items:   []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 4}},
		Metodos: []dto.MetodoPagoRequest{efectivo(200000)},
	})

	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))
}

func TestAnularVenta_RestauraStock(t *testing.T) {
	f := buildVentaSvc()
	p := seedProducto(f.productoRepo, "MUS", "M", 50000, 10, 0)
	admin := adminActor()

	resp, err := f.svc.RegistrarVenta(context.Background(), admin, dto.RegistrarVentaRequest{
		Items:   []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 3}},
		Metodos: []dto.MetodoPagoRequest{efectivo(150000)},
	})
	require.NoError(t, err)
	assert.Equal(t, 7, f.productoRepo.productos[p.ID].StockNormal)

	ventaID := uuid.MustParse(resp.ID)
	err = f.svc.AnularVenta(context.Background(), admin, ventaID, "error de digitación del vendedor")
	require.NoError(t, err)

	assert.Equal(t, 10, f.productoRepo.productos[p.ID].StockNormal)
	assert.Equal(t, model.VentaAnulada, f.ventaRepo.ventas[ventaID].Estado)
	// One venta movement plus one reversal, both referencing the sale.
	assert.Len(t, f.movRepo.movimientos, 2)
	assert.Equal(t, model.MovimientoCompra, f.movRepo.movimientos[1].Tipo)
	assert.Equal(t, model.RefVenta, f.movRepo.movimientos[1].ReferenciaTipo)
}

func TestAnularVenta_DobleAnulacion(t *testing.T) {
	f := buildVentaSvc()
	p := seedProducto(f.productoRepo, "MUS", "M", 50000, 10, 0)
	admin := adminActor()

	resp, err := f.svc.RegistrarVenta(context.Background(), admin, dto.RegistrarVentaRequest{
		Items:   []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 1}},
		Metodos: []dto.MetodoPagoRequest{efectivo(50000)},
	})
	require.NoError(t, err)

	ventaID := uuid.MustParse(resp.ID)
	require.NoError(t, f.svc.AnularVenta(context.Background(), admin, ventaID, "venta duplicada por error"))

	err = f.svc.AnularVenta(context.Background(), admin, ventaID, "venta duplicada por error")
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeAlreadyVoided))
	// Stock restored exactly once.
	assert.Equal(t, 10, f.productoRepo.productos[p.ID].StockNormal)
}

func TestAnularVenta_JustificacionCorta(t *testing.T) {
	f := buildVentaSvc()

	err := f.svc.AnularVenta(context.Background(), adminActor(), uuid.New(), "corta")
	require.Error(t, err)
	e, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindValidation, e.Kind)
}

func TestAnularVenta_RolNoAutorizado(t *testing.T) {
	f := buildVentaSvc()

	err := f.svc.AnularVenta(context.Background(), secretariaActor(), uuid.New(), "justificación suficientemente larga")
	require.Error(t, err)
	e, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindAuthorization, e.Kind)
}

func TestListarVentas_DefaultSoloActivas(t *testing.T) {
	f := buildVentaSvc()
	p := seedProducto(f.productoRepo, "MUS", "M", 50000, 10, 0)
	admin := adminActor()

	resp, err := f.svc.RegistrarVenta(context.Background(), admin, dto.RegistrarVentaRequest{
		Items:   []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 1}},
		Metodos: []dto.MetodoPagoRequest{efectivo(50000)},
	})
	require.NoError(t, err)
	_, err = f.svc.RegistrarVenta(context.Background(), admin, dto.RegistrarVentaRequest{
		Items:   []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 1}},
		Metodos: []dto.MetodoPagoRequest{efectivo(50000)},
	})
	require.NoError(t, err)
	require.NoError(t, f.svc.AnularVenta(context.Background(), admin, uuid.MustParse(resp.ID), "anulada para la prueba de listado"))

	lista, err := f.svc.ListarVentas(context.Background(), dto.VentaFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), lista.Total)
}
