package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// VentaFilter is bound from query string of GET /v1/ventas.
type VentaFilter struct {
	Fecha      string `form:"fecha"`                  // YYYY-MM-DD; empty = today
	Estado     string `form:"estado,default=activo"`  // activo | anulado | all
	PacienteID string `form:"paciente_id"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemVentaRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"required,min=1"`
}

type MetodoPagoRequest struct {
	Metodo string          `json:"metodo" validate:"required,oneof=efectivo tarjeta transferencia nequi"`
	Monto  decimal.Decimal `json:"monto"  validate:"gt=0"`
	// ComprobantePath is required for every method except efectivo; the
	// cross-field rule is enforced in the service, not here.
	ComprobantePath *string `json:"comprobante_path"`
}

type RegistrarVentaRequest struct {
	Items   []ItemVentaRequest  `json:"items"   validate:"required,min=1,dive"`
	Metodos []MetodoPagoRequest `json:"metodos" validate:"required,min=1,dive"`
	// PacienteID links the sale to a clinic patient when known.
	PacienteID *string `json:"paciente_id" validate:"omitempty,uuid"`
	// RecibioEfectivoID: who physically received the cash, when different
	// from the seller.
	RecibioEfectivoID *string `json:"recibio_efectivo_id" validate:"omitempty,uuid"`
}

type AnularVentaRequest struct {
	Justificacion string `json:"justificacion" validate:"required,min=10"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemVentaResponse struct {
	ID             string          `json:"id"`
	ProductoID     string          `json:"producto_id"`
	ProductoCodigo string          `json:"producto_codigo"`
	ProductoTipo   string          `json:"producto_tipo"`
	ProductoTalla  string          `json:"producto_talla"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Cantidad       int             `json:"cantidad"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type MetodoPagoResponse struct {
	Metodo          string          `json:"metodo"`
	Monto           decimal.Decimal `json:"monto"`
	ComprobantePath *string         `json:"comprobante_path"`
}

type VentaResponse struct {
	ID          string               `json:"id"`
	Numero      int64                `json:"numero"`
	NumeroVenta string               `json:"numero_venta"` // VTA-000123
	PacienteID  *string              `json:"paciente_id"`
	Items       []ItemVentaResponse  `json:"items"`
	Metodos     []MetodoPagoResponse `json:"metodos"`
	Subtotal    decimal.Decimal      `json:"subtotal"`
	Total       decimal.Decimal      `json:"total"`
	Estado      string               `json:"estado"`
	VendedorID  string               `json:"vendedor_id"`
	CreatedAt   string               `json:"created_at"`
}

type VentaListResponse struct {
	Data  []VentaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
