package dto

import "github.com/shopspring/decimal"

// DashboardResponse aggregates the read-only counters shown on the home
// screen. Derived views only — no write path.
type DashboardResponse struct {
	VentasHoy             int64              `json:"ventas_hoy"`
	TotalHoy              decimal.Decimal    `json:"total_hoy"`
	TotalMes              decimal.Decimal    `json:"total_mes"`
	DevolucionesPendientes int64             `json:"devoluciones_pendientes"`
	StockBajo             []ProductoResponse `json:"stock_bajo"`
}
