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
	"github.com/yuseponub/varixcenter-sub001/internal/dto"
	"github.com/yuseponub/varixcenter-sub001/internal/model"
	"github.com/yuseponub/varixcenter-sub001/internal/repository"
)

// ── In-memory CierreRepository stub ──────────────────────────────────────────

type stubCierreRepo struct {
	cierres map[uuid.UUID]*model.CierreCaja
}

func newStubCierreRepo() *stubCierreRepo {
	return &stubCierreRepo{cierres: make(map[uuid.UUID]*model.CierreCaja)}
}

func (r *stubCierreRepo) CreateTx(_ *gorm.DB, c *model.CierreCaja) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.cierres[c.ID] = c
	return nil
}

func (r *stubCierreRepo) FindByID(_ context.Context, id uuid.UUID) (*model.CierreCaja, error) {
	c, ok := r.cierres[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubCierreRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.CierreCaja, error) {
	c, ok := r.cierres[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubCierreRepo) ExisteCerradoPorFechaTx(_ *gorm.DB, fecha time.Time) (bool, error) {
	dia := fecha.Format("2006-01-02")
	for _, c := range r.cierres {
		if c.Estado == model.CierreCerrado && c.FechaCierre.Format("2006-01-02") == dia {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubCierreRepo) UpdateReaperturaTx(_ *gorm.DB, c *model.CierreCaja) error {
	r.cierres[c.ID] = c
	return nil
}

func (r *stubCierreRepo) List(_ context.Context, filter dto.CierreFilter) ([]model.CierreCaja, int64, error) {
	var result []model.CierreCaja
	for _, c := range r.cierres {
		if filter.Estado != "" && filter.Estado != "all" && c.Estado != filter.Estado {
			continue
		}
		result = append(result, *c)
	}
	return result, int64(len(result)), nil
}

func (r *stubCierreRepo) DB() *gorm.DB { return nil }

var _ repository.CierreRepository = (*stubCierreRepo)(nil)

// ── Fixture ───────────────────────────────────────────────────────────────────

type cierreFixture struct {
	cierreRepo *stubCierreRepo
	ventaRepo  *stubVentaRepo
	svc        CierreService
}

func buildCierreSvc() cierreFixture {
	cierreRepo := newStubCierreRepo()
	ventaRepo := newStubVentaRepo()
	svc := NewCierreService(cierreRepo, ventaRepo, newStubSecuenciaRepo())
	return cierreFixture{cierreRepo: cierreRepo, ventaRepo: ventaRepo, svc: svc}
}

const fechaPrueba = "2026-01-29"

// seedVentaDelDia inserts a sale directly, dated to the closing date under test.
func seedVentaDelDia(repo *stubVentaRepo, estado string, metodos ...model.VentaMetodo) {
	fecha, _ := time.Parse("2006-01-02", fechaPrueba)
	v := &model.Venta{
		ID:         uuid.New(),
		Numero:     int64(len(repo.ventas) + 1),
		Estado:     estado,
		VendedorID: uuid.New(),
		CreatedAt:  fecha.Add(10 * time.Hour),
		Metodos:    metodos,
	}
	for _, m := range metodos {
		v.Total = v.Total.Add(m.Monto)
	}
	v.Subtotal = v.Total
	repo.ventas[v.ID] = v
}

func metodoMonto(metodo string, monto int64) model.VentaMetodo {
	return model.VentaMetodo{Metodo: metodo, Monto: decimal.NewFromInt(monto)}
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestCerrarDia_CuadraExacto(t *testing.T) {
	f := buildCierreSvc()
	seedVentaDelDia(f.ventaRepo, model.VentaActiva, metodoMonto(model.MetodoEfectivo, 300000))
	seedVentaDelDia(f.ventaRepo, model.VentaActiva,
		metodoMonto(model.MetodoEfectivo, 200000),
		metodoMonto(model.MetodoTarjeta, 150000))

	resp, err := f.svc.CerrarDia(context.Background(), secretariaActor(), dto.CerrarDiaRequest{
		Fecha:                fechaPrueba,
		ConteoFisicoEfectivo: decimal.NewFromInt(500000),
		FotoPath:             "uploads/cierres/2026-01-29.jpg",
	})

	require.NoError(t, err)
	assert.Equal(t, "CIE-000001", resp.NumeroCierre)
	assert.True(t, resp.TotalEfectivo.Equal(decimal.NewFromInt(500000)))
	assert.True(t, resp.TotalTarjeta.Equal(decimal.NewFromInt(150000)))
	assert.True(t, resp.GranTotal.Equal(decimal.NewFromInt(650000)))
	assert.True(t, resp.Diferencia.IsZero())
	assert.Equal(t, model.CierreCerrado, resp.Estado)
}

func TestCerrarDia_DiferenciaSinJustificacion(t *testing.T) {
	f := buildCierreSvc()
	seedVentaDelDia(f.ventaRepo, model.VentaActiva, metodoMonto(model.MetodoEfectivo, 500000))

	_, err := f.svc.CerrarDia(context.Background(), secretariaActor(), dto.CerrarDiaRequest{
		Fecha:                fechaPrueba,
		ConteoFisicoEfectivo: decimal.NewFromInt(495000),
		FotoPath:             "uploads/cierres/2026-01-29.jpg",
	})

	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeMissingJustification))
	assert.Empty(t, f.cierreRepo.cierres)
}

func TestCerrarDia_DiferenciaJustificada(t *testing.T) {
	f := buildCierreSvc()
	seedVentaDelDia(f.ventaRepo, model.VentaActiva, metodoMonto(model.MetodoEfectivo, 500000))

	justificacion := "faltante de caja reportado"
	resp, err := f.svc.CerrarDia(context.Background(), secretariaActor(), dto.CerrarDiaRequest{
		Fecha:                fechaPrueba,
		ConteoFisicoEfectivo: decimal.NewFromInt(495000),
		Justificacion:        &justificacion,
		FotoPath:             "uploads/cierres/2026-01-29.jpg",
	})

	require.NoError(t, err)
	assert.True(t, resp.Diferencia.Equal(decimal.NewFromInt(-5000)))
	require.NotNil(t, resp.DiferenciaJustificacion)
	assert.Equal(t, justificacion, *resp.DiferenciaJustificacion)
}

func TestCerrarDia_ExcluyeVentasAnuladas(t *testing.T) {
	f := buildCierreSvc()
	seedVentaDelDia(f.ventaRepo, model.VentaActiva, metodoMonto(model.MetodoEfectivo, 300000))
	seedVentaDelDia(f.ventaRepo, model.VentaAnulada, metodoMonto(model.MetodoEfectivo, 900000))

	resp, err := f.svc.CerrarDia(context.Background(), adminActor(), dto.CerrarDiaRequest{
		Fecha:                fechaPrueba,
		ConteoFisicoEfectivo: decimal.NewFromInt(300000),
		FotoPath:             "uploads/cierres/2026-01-29.jpg",
	})

	require.NoError(t, err)
	assert.True(t, resp.TotalEfectivo.Equal(decimal.NewFromInt(300000)))
}

func TestCerrarDia_FechaFutura(t *testing.T) {
	f := buildCierreSvc()

	_, err := f.svc.CerrarDia(context.Background(), adminActor(), dto.CerrarDiaRequest{
		Fecha:                "2030-01-01",
		ConteoFisicoEfectivo: decimal.Zero,
		FotoPath:             "uploads/cierres/2030-01-01.jpg",
	})

	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeFutureDateClosing))
	e, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindBusinessRule, e.Kind)
}

// The comparison is on calendar dates in server time, so today is never a
// future date regardless of the hour.
func TestCerrarDia_HoyEsPermitido(t *testing.T) {
	f := buildCierreSvc()
	hoy := time.Now().Format("2006-01-02")

	resp, err := f.svc.CerrarDia(context.Background(), adminActor(), dto.CerrarDiaRequest{
		Fecha:                hoy,
		ConteoFisicoEfectivo: decimal.Zero,
		FotoPath:             "uploads/cierres/" + hoy + ".jpg",
	})

	require.NoError(t, err)
	assert.True(t, resp.GranTotal.IsZero())
	assert.True(t, resp.Diferencia.IsZero())
}

func TestCerrarDia_CierreDuplicado(t *testing.T) {
	f := buildCierreSvc()
	actor := secretariaActor()
	req := dto.CerrarDiaRequest{
		Fecha:                fechaPrueba,
		ConteoFisicoEfectivo: decimal.Zero,
		FotoPath:             "uploads/cierres/2026-01-29.jpg",
	}

	_, err := f.svc.CerrarDia(context.Background(), actor, req)
	require.NoError(t, err)

	_, err = f.svc.CerrarDia(context.Background(), actor, req)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeDuplicateClosing))
}

func TestCerrarDia_MedicoNoPuede(t *testing.T) {
	f := buildCierreSvc()

	_, err := f.svc.CerrarDia(context.Background(), medicoActor(), dto.CerrarDiaRequest{
		Fecha:                fechaPrueba,
		ConteoFisicoEfectivo: decimal.Zero,
		FotoPath:             "uploads/cierres/2026-01-29.jpg",
	})
	require.Error(t, err)
	e, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindAuthorization, e.Kind)
}

func TestReabrirCierre_PermiteNuevoCierre(t *testing.T) {
	f := buildCierreSvc()
	admin := adminActor()
	req := dto.CerrarDiaRequest{
		Fecha:                fechaPrueba,
		ConteoFisicoEfectivo: decimal.Zero,
		FotoPath:             "uploads/cierres/2026-01-29.jpg",
	}

	primero, err := f.svc.CerrarDia(context.Background(), admin, req)
	require.NoError(t, err)

	err = f.svc.ReabrirCierre(context.Background(), admin, uuid.MustParse(primero.ID), "se encontró una venta sin registrar")
	require.NoError(t, err)
	assert.Equal(t, model.CierreReabierto, f.cierreRepo.cierres[uuid.MustParse(primero.ID)].Estado)

	// Re-closing the same date inserts a fresh row with the next numero.
	segundo, err := f.svc.CerrarDia(context.Background(), admin, req)
	require.NoError(t, err)
	assert.Equal(t, "CIE-000002", segundo.NumeroCierre)
}

func TestReabrirCierre_DobleReapertura(t *testing.T) {
	f := buildCierreSvc()
	admin := adminActor()

	resp, err := f.svc.CerrarDia(context.Background(), admin, dto.CerrarDiaRequest{
		Fecha:                fechaPrueba,
		ConteoFisicoEfectivo: decimal.Zero,
		FotoPath:             "uploads/cierres/2026-01-29.jpg",
	})
	require.NoError(t, err)
	cierreID := uuid.MustParse(resp.ID)

	require.NoError(t, f.svc.ReabrirCierre(context.Background(), admin, cierreID, "se encontró una venta sin registrar"))

	err = f.svc.ReabrirCierre(context.Background(), admin, cierreID, "segundo intento de reapertura")
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeAlreadyReopened))
}

func TestReabrirCierre_SoloAdmin(t *testing.T) {
	f := buildCierreSvc()

	err := f.svc.ReabrirCierre(context.Background(), secretariaActor(), uuid.New(), "justificación suficientemente larga")
	require.Error(t, err)
	e, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindAuthorization, e.Kind)
}
