package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producto is a compression-garment SKU identified by (tipo, talla).
// Stock lives in two independent pools: StockNormal (sellable fresh stock)
// and StockDevoluciones (restored from approved returns, sold separately).
// Both pools are mutated exclusively through MovimientoStock entries.
// Products are soft-disabled, never deleted.
type Producto struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Tipo   string    `gorm:"not null;uniqueIndex:idx_productos_tipo_talla"`
	Talla  string    `gorm:"not null;uniqueIndex:idx_productos_tipo_talla"`
	Codigo string    `gorm:"uniqueIndex;not null"` // "{TIPO}-{TALLA}", e.g. MUS-M
	Precio decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	StockNormal       int `gorm:"not null;default:0"`
	StockDevoluciones int `gorm:"not null;default:0"`
	// UmbralAlerta feeds the low-stock dashboard list
	UmbralAlerta int  `gorm:"not null;default:5"`
	Activo       bool `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides GORM's default pluralization for Spanish names.
func (Producto) TableName() string { return "productos" }
