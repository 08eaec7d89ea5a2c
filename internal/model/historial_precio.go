package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HistorialPrecio records every price change on a product. Written in the
// same transaction as the catalog update.
type HistorialPrecio struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	PrecioAnterior decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PrecioNuevo    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CambiadoPor    uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedAt      time.Time
}

func (HistorialPrecio) TableName() string { return "historial_precios" }
