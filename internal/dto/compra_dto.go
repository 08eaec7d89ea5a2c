package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemCompraRequest struct {
	ProductoID    string          `json:"producto_id"    validate:"required,uuid"`
	Cantidad      int             `json:"cantidad"       validate:"required,min=1"`
	CostoUnitario decimal.Decimal `json:"costo_unitario" validate:"gt=0"`
}

type CrearCompraRequest struct {
	Proveedor     string              `json:"proveedor"      validate:"required,min=2"`
	FechaFactura  string              `json:"fecha_factura"  validate:"required,datetime=2006-01-02"`
	NumeroFactura *string             `json:"numero_factura"`
	FacturaPath   string              `json:"factura_path"   validate:"required"`
	Notas         *string             `json:"notas"`
	Items         []ItemCompraRequest `json:"items" validate:"required,min=1,dive"`
}

type AnularCompraRequest struct {
	Justificacion string `json:"justificacion" validate:"required,min=10"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

type CompraFilter struct {
	Estado    string `form:"estado"` // pendiente_recepcion | recibido | anulado | all
	Proveedor string `form:"proveedor"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemCompraResponse struct {
	ID             string          `json:"id"`
	ProductoID     string          `json:"producto_id"`
	ProductoCodigo string          `json:"producto_codigo"`
	ProductoTipo   string          `json:"producto_tipo"`
	ProductoTalla  string          `json:"producto_talla"`
	Cantidad       int             `json:"cantidad"`
	CostoUnitario  decimal.Decimal `json:"costo_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type CompraResponse struct {
	ID            string               `json:"id"`
	Numero        int64                `json:"numero"`
	NumeroCompra  string               `json:"numero_compra"` // COM-000007
	Proveedor     string               `json:"proveedor"`
	FechaFactura  string               `json:"fecha_factura"`
	NumeroFactura *string              `json:"numero_factura"`
	Total         decimal.Decimal      `json:"total"`
	FacturaPath   string               `json:"factura_path"`
	Estado        string               `json:"estado"`
	Notas         *string              `json:"notas"`
	Items         []ItemCompraResponse `json:"items"`
	CreatedAt     string               `json:"created_at"`
}

type CompraListResponse struct {
	Data  []CompraResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}
