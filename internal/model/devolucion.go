package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Devolucion states. pendiente is the only non-terminal state.
const (
	DevolucionPendiente = "pendiente"
	DevolucionAprobada  = "aprobada"
	DevolucionRechazada = "rechazada"
)

// Devolucion is a return request against one sale item. Stock is restored to
// the devoluciones pool only on approval; rejected returns have no stock
// effect and do not count against the item's returnable quantity.
type Devolucion struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Numero      int64     `gorm:"uniqueIndex;not null"`
	VentaID     uuid.UUID `gorm:"type:uuid;not null;index"`
	VentaItemID uuid.UUID `gorm:"type:uuid;not null;index"`
	Cantidad    int       `gorm:"not null"`

	// MontoReembolso = venta_item.precio_unitario × cantidad, derived
	// server-side, never taken from the request.
	MontoReembolso  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MetodoReembolso string          `gorm:"type:varchar(20);not null"`
	Motivo          string          `gorm:"not null"`
	FotoPath        *string

	Estado        string    `gorm:"type:varchar(20);not null;default:'pendiente';index"`
	SolicitadaPor uuid.UUID `gorm:"type:uuid;not null"`
	AprobadaPor   *uuid.UUID `gorm:"type:uuid"`
	AprobadaAt    *time.Time
	NotasAprobador *string

	CreatedAt time.Time

	Venta     *Venta     `gorm:"foreignKey:VentaID"`
	VentaItem *VentaItem `gorm:"foreignKey:VentaItemID"`
}

func (Devolucion) TableName() string { return "devoluciones" }

// NumeroFormateado renders the sequential return number, e.g. DEV-000042.
func (d *Devolucion) NumeroFormateado() string { return fmt.Sprintf("DEV-%06d", d.Numero) }
