package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearDevolucionRequest struct {
	VentaID         string  `json:"venta_id"         validate:"required,uuid"`
	VentaItemID     string  `json:"venta_item_id"    validate:"required,uuid"`
	Cantidad        int     `json:"cantidad"         validate:"required,min=1"`
	MetodoReembolso string  `json:"metodo_reembolso" validate:"required,oneof=efectivo tarjeta transferencia nequi"`
	Motivo          string  `json:"motivo"           validate:"required,min=10"`
	FotoPath        *string `json:"foto_path"`
}

type ResolverDevolucionRequest struct {
	Notas *string `json:"notas"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

type DevolucionFilter struct {
	Estado  string `form:"estado"` // pendiente | aprobada | rechazada | all
	VentaID string `form:"venta_id"`
	Page    int    `form:"page,default=1"   validate:"min=1"`
	Limit   int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type DevolucionResponse struct {
	ID               string          `json:"id"`
	Numero           int64           `json:"numero"`
	NumeroDevolucion string          `json:"numero_devolucion"` // DEV-000042
	VentaID          string          `json:"venta_id"`
	VentaItemID      string          `json:"venta_item_id"`
	Cantidad         int             `json:"cantidad"`
	MontoReembolso   decimal.Decimal `json:"monto_reembolso"`
	MetodoReembolso  string          `json:"metodo_reembolso"`
	Motivo           string          `json:"motivo"`
	FotoPath         *string         `json:"foto_path"`
	Estado           string          `json:"estado"`
	SolicitadaPor    string          `json:"solicitada_por"`
	AprobadaPor      *string         `json:"aprobada_por"`
	NotasAprobador   *string         `json:"notas_aprobador"`
	CreatedAt        string          `json:"created_at"`
}

type DevolucionListResponse struct {
	Data  []DevolucionResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}
