package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yuseponub/varixcenter-sub001/internal/apperror"
	"github.com/yuseponub/varixcenter-sub001/internal/dto"
	"github.com/yuseponub/varixcenter-sub001/internal/repository"
)

const dashboardCacheKey = "dashboard:resumen"

// DashboardService aggregates the read-only counters for the home screen.
// Results are cached in Redis for a short TTL; the dashboard tolerates
// slightly stale numbers and the cache is best effort — a Redis outage only
// costs the query.
type DashboardService interface {
	Resumen(ctx context.Context) (*dto.DashboardResponse, error)
}

type dashboardService struct {
	ventaRepo      repository.VentaRepository
	devolucionRepo repository.DevolucionRepository
	productoRepo   repository.ProductoRepository
	rdb            *redis.Client
	cacheTTL       time.Duration
}

func NewDashboardService(
	ventaRepo repository.VentaRepository,
	devolucionRepo repository.DevolucionRepository,
	productoRepo repository.ProductoRepository,
	rdb *redis.Client,
	cacheTTL time.Duration,
) DashboardService {
	return &dashboardService{
		ventaRepo:      ventaRepo,
		devolucionRepo: devolucionRepo,
		productoRepo:   productoRepo,
		rdb:            rdb,
		cacheTTL:       cacheTTL,
	}
}

func (s *dashboardService) Resumen(ctx context.Context) (*dto.DashboardResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, dashboardCacheKey).Bytes(); err == nil {
			var resp dto.DashboardResponse
			if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
				return &resp, nil
			}
		}
	}

	hoy := time.Now()
	ventasHoy, totalHoy, err := s.ventaRepo.CountAndTotalPorFecha(ctx, hoy)
	if err != nil {
		return nil, apperror.Internal("error calculando ventas del día", err)
	}
	totalMes, err := s.ventaRepo.TotalMes(ctx, hoy.Year(), hoy.Month())
	if err != nil {
		return nil, apperror.Internal("error calculando total del mes", err)
	}
	pendientes, err := s.devolucionRepo.CountPendientes(ctx)
	if err != nil {
		return nil, apperror.Internal("error contando devoluciones pendientes", err)
	}
	stockBajo, err := s.productoRepo.StockBajo(ctx)
	if err != nil {
		return nil, apperror.Internal("error consultando stock bajo", err)
	}

	resp := dto.DashboardResponse{
		VentasHoy:              ventasHoy,
		TotalHoy:               totalHoy,
		TotalMes:               totalMes,
		DevolucionesPendientes: pendientes,
	}
	for i := range stockBajo {
		resp.StockBajo = append(resp.StockBajo, *productoToResponse(&stockBajo[i]))
	}

	if s.rdb != nil {
		if b, jsonErr := json.Marshal(resp); jsonErr == nil {
			_ = s.rdb.Set(context.Background(), dashboardCacheKey, b, s.cacheTTL).Err()
		}
	}

	return &resp, nil
}
