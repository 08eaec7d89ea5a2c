package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuseponub/varixcenter-sub001/internal/dto"
	"github.com/yuseponub/varixcenter-sub001/internal/model"
)

// nil Redis client: the resumen is computed fresh on every call.
func TestDashboardResumen_SinCache(t *testing.T) {
	f := buildVentaSvc()
	devRepo := newStubDevolucionRepo()
	svc := NewDashboardService(f.ventaRepo, devRepo, f.productoRepo, nil, time.Minute)

	p := seedProducto(f.productoRepo, "MUS", "M", 50000, 2, 0) // below threshold
	seedProducto(f.productoRepo, "PAN", "L", 65000, 20, 0)

	_, err := f.svc.RegistrarVenta(context.Background(), secretariaActor(), dto.RegistrarVentaRequest{
		Items:   []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 1}},
		Metodos: []dto.MetodoPagoRequest{efectivo(50000)},
	})
	require.NoError(t, err)

	pendiente := &model.Devolucion{ID: uuid.New(), Estado: model.DevolucionPendiente, Cantidad: 1}
	devRepo.devoluciones[pendiente.ID] = pendiente

	resumen, err := svc.Resumen(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), resumen.VentasHoy)
	assert.True(t, resumen.TotalHoy.Equal(decimal.NewFromInt(50000)))
	assert.True(t, resumen.TotalMes.Equal(decimal.NewFromInt(50000)))
	assert.Equal(t, int64(1), resumen.DevolucionesPendientes)
	require.Len(t, resumen.StockBajo, 1)
	assert.Equal(t, "MUS-M", resumen.StockBajo[0].Codigo)
}
