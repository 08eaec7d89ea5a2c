package model

import (
	"time"

	"github.com/google/uuid"
)

// Movement types. Each one implies a fixed signed delta per stock pool —
// see service.LedgerService for the delta table.
const (
	MovimientoCompra        = "compra"
	MovimientoVenta         = "venta"
	MovimientoDevolucion    = "devolucion"
	MovimientoAjusteEntrada = "ajuste_entrada"
	MovimientoAjusteSalida  = "ajuste_salida"
	MovimientoTransferencia = "transferencia"
)

// Reference types — the tagged variant pointing at the operation that caused
// the movement. Kept closed so ledger queries stay exhaustive.
const (
	RefVenta         = "venta"
	RefDevolucion    = "devolucion"
	RefCompra        = "compra"
	RefAjuste        = "ajuste"
	RefTransferencia = "transferencia"
)

// Stock pools.
const (
	PoolNormal       = "normal"
	PoolDevoluciones = "devoluciones"
)

// MovimientoStock is the append-only audit row for every stock change.
// Exactly one row exists per product affected by a committed operation,
// written in the same transaction as the stock update it describes.
// Rows are NEVER modified or deleted.
type MovimientoStock struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID uuid.UUID `gorm:"type:uuid;not null;index"`
	Tipo       string    `gorm:"type:varchar(20);not null"`
	Cantidad   int       `gorm:"not null"` // always > 0; sign is implied by Tipo

	StockNormalAntes         int `gorm:"not null"`
	StockNormalDespues       int `gorm:"not null"`
	StockDevolucionesAntes   int `gorm:"not null"`
	StockDevolucionesDespues int `gorm:"not null"`

	ReferenciaTipo string    `gorm:"type:varchar(20);not null;index:idx_movimientos_referencia"`
	ReferenciaID   uuid.UUID `gorm:"type:uuid;not null;index:idx_movimientos_referencia"`

	Notas     string
	ActorID   uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

// TableName overrides GORM's default pluralization (movimiento_stocks → movimientos_stock).
func (MovimientoStock) TableName() string { return "movimientos_stock" }
