package model

import (
	"time"

	"github.com/google/uuid"
)

// Adjustment directions.
const (
	AjusteEntrada = "entrada"
	AjusteSalida  = "salida"
)

// AjusteInventario is a manual stock correction. It exists as a distinct row
// only to capture the mandatory human-readable reason; the actual stock
// change is the ajuste_entrada/ajuste_salida movement referencing it.
type AjusteInventario struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID uuid.UUID `gorm:"type:uuid;not null;index"`
	Direccion  string    `gorm:"type:varchar(10);not null"`
	Pool       string    `gorm:"type:varchar(15);not null"`
	Cantidad   int       `gorm:"not null"`
	Motivo     string    `gorm:"not null"`
	CreadoPor  uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt  time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (AjusteInventario) TableName() string { return "ajustes_inventario" }

// TransferenciaStock moves units between the two pools of one product —
// typically inspected returned stock going back on sale. Destino names the
// receiving pool; the source pool is the other one.
type TransferenciaStock struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID uuid.UUID `gorm:"type:uuid;not null;index"`
	Destino    string    `gorm:"type:varchar(15);not null"`
	Cantidad   int       `gorm:"not null"`
	Motivo     string    `gorm:"not null"`
	CreadoPor  uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt  time.Time
}

func (TransferenciaStock) TableName() string { return "transferencias_stock" }
