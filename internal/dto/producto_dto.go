package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	Tipo         string          `json:"tipo"          validate:"required,min=2,max=30"`
	Talla        string          `json:"talla"         validate:"required,min=1,max=10"`
	Precio       decimal.Decimal `json:"precio"        validate:"required"`
	UmbralAlerta int             `json:"umbral_alerta" validate:"min=0"`
}

type ActualizarPrecioRequest struct {
	Precio decimal.Decimal `json:"precio" validate:"required"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductoFilter struct {
	Tipo   string `form:"tipo"`
	Talla  string `form:"talla"`
	Codigo string `form:"codigo"`
	Activo string `form:"activo"` // "false" | "all" | default activos
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID                string          `json:"id"`
	Tipo              string          `json:"tipo"`
	Talla             string          `json:"talla"`
	Codigo            string          `json:"codigo"`
	Precio            decimal.Decimal `json:"precio"`
	StockNormal       int             `json:"stock_normal"`
	StockDevoluciones int             `json:"stock_devoluciones"`
	UmbralAlerta      int             `json:"umbral_alerta"`
	Activo            bool            `json:"activo"`
}

type ProductoListResponse struct {
	Data  []ProductoResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

type HistorialPrecioResponse struct {
	ID             string          `json:"id"`
	ProductoID     string          `json:"producto_id"`
	PrecioAnterior decimal.Decimal `json:"precio_anterior"`
	PrecioNuevo    decimal.Decimal `json:"precio_nuevo"`
	CambiadoPor    string          `json:"cambiado_por"`
	CreatedAt      string          `json:"created_at"`
}
