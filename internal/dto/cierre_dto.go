package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CerrarDiaRequest struct {
	Fecha                string          `json:"fecha" validate:"required,datetime=2006-01-02"`
	// min=0 and not required: a zero physical count is a valid declaration
	// (all-card day with an empty drawer).
	ConteoFisicoEfectivo decimal.Decimal `json:"conteo_fisico_efectivo" validate:"min=0"`
	// Justificacion is mandatory iff the computed diferencia is non-zero;
	// the conditional rule lives in the service.
	Justificacion *string `json:"justificacion"`
	FotoPath      string  `json:"foto_path" validate:"required"`
	Notas         *string `json:"notas"`
}

type ReabrirCierreRequest struct {
	Justificacion string `json:"justificacion" validate:"required,min=10"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

type CierreFilter struct {
	Estado string `form:"estado"` // cerrado | reabierto | all
	Desde  string `form:"desde"`  // YYYY-MM-DD
	Hasta  string `form:"hasta"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CierreResponse struct {
	ID                      string          `json:"id"`
	Numero                  int64           `json:"numero"`
	NumeroCierre            string          `json:"numero_cierre"` // CIE-000015
	FechaCierre             string          `json:"fecha_cierre"`
	TotalEfectivo           decimal.Decimal `json:"total_efectivo"`
	TotalTarjeta            decimal.Decimal `json:"total_tarjeta"`
	TotalTransferencia      decimal.Decimal `json:"total_transferencia"`
	TotalNequi              decimal.Decimal `json:"total_nequi"`
	GranTotal               decimal.Decimal `json:"gran_total"`
	ConteoFisicoEfectivo    decimal.Decimal `json:"conteo_fisico_efectivo"`
	Diferencia              decimal.Decimal `json:"diferencia"`
	DiferenciaJustificacion *string         `json:"diferencia_justificacion"`
	FotoPath                string          `json:"foto_path"`
	Notas                   *string         `json:"notas"`
	Estado                  string          `json:"estado"`
	CreatedAt               string          `json:"created_at"`
}

type CierreListResponse struct {
	Data  []CierreResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}
