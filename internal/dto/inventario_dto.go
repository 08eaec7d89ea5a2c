package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearAjusteRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Direccion  string `json:"direccion"   validate:"required,oneof=entrada salida"`
	Pool       string `json:"pool"        validate:"required,oneof=normal devoluciones"`
	Cantidad   int    `json:"cantidad"    validate:"required,min=1"`
	Motivo     string `json:"motivo"      validate:"required,min=10"`
}

type TransferirStockRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Destino    string `json:"destino"     validate:"required,oneof=normal devoluciones"`
	Cantidad   int    `json:"cantidad"    validate:"required,min=1"`
	Motivo     string `json:"motivo"      validate:"required,min=10"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

type MovimientoFilter struct {
	ProductoID     string `form:"producto_id"     validate:"omitempty,uuid"`
	Tipo           string `form:"tipo"`
	ReferenciaTipo string `form:"referencia_tipo"`
	ReferenciaID   string `form:"referencia_id"   validate:"omitempty,uuid"`
	Page           int    `form:"page,default=1"   validate:"min=1"`
	Limit          int    `form:"limit,default=100" validate:"min=1,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MovimientoResponse struct {
	ID                       string `json:"id"`
	ProductoID               string `json:"producto_id"`
	ProductoCodigo           string `json:"producto_codigo,omitempty"`
	Tipo                     string `json:"tipo"`
	Cantidad                 int    `json:"cantidad"`
	StockNormalAntes         int    `json:"stock_normal_antes"`
	StockNormalDespues       int    `json:"stock_normal_despues"`
	StockDevolucionesAntes   int    `json:"stock_devoluciones_antes"`
	StockDevolucionesDespues int    `json:"stock_devoluciones_despues"`
	ReferenciaTipo           string `json:"referencia_tipo"`
	ReferenciaID             string `json:"referencia_id"`
	Notas                    string `json:"notas,omitempty"`
	ActorID                  string `json:"actor_id"`
	CreatedAt                string `json:"created_at"`
}

type MovimientoListResponse struct {
	Data  []MovimientoResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}

type AjusteResponse struct {
	ID         string `json:"id"`
	ProductoID string `json:"producto_id"`
	Direccion  string `json:"direccion"`
	Pool       string `json:"pool"`
	Cantidad   int    `json:"cantidad"`
	Motivo     string `json:"motivo"`
	CreatedAt  string `json:"created_at"`
}

type TransferenciaResponse struct {
	ID         string `json:"id"`
	ProductoID string `json:"producto_id"`
	Destino    string `json:"destino"`
	Cantidad   int    `json:"cantidad"`
	Motivo     string `json:"motivo"`
	CreatedAt  string `json:"created_at"`
}
