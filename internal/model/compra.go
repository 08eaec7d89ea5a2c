package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Compra states. Stock only moves on the pendiente_recepcion → recibido
// transition; a received purchase can no longer be voided (corrections go
// through inventory adjustments so the audit trail stays intact).
const (
	CompraPendienteRecepcion = "pendiente_recepcion"
	CompraRecibida           = "recibido"
	CompraAnulada            = "anulado"
)

// Compra is a supplier purchase. The invoice may be entered before the goods
// arrive, so creation has no stock effect.
type Compra struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Numero        int64     `gorm:"uniqueIndex;not null"`
	Proveedor     string    `gorm:"not null"`
	FechaFactura  time.Time `gorm:"type:date;not null"`
	NumeroFactura *string
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// FacturaPath points at the scanned invoice; opaque, recorded only.
	FacturaPath string `gorm:"not null"`
	Estado      string `gorm:"type:varchar(30);not null;default:'pendiente_recepcion';index"`
	Notas       *string

	CreadaPor  uuid.UUID  `gorm:"type:uuid;not null"`
	RecibidaPor *uuid.UUID `gorm:"type:uuid"`
	RecibidaAt  *time.Time

	AnuladaPor             *uuid.UUID `gorm:"type:uuid"`
	AnuladaAt              *time.Time
	JustificacionAnulacion *string

	CreatedAt time.Time

	Items []CompraItem `gorm:"foreignKey:CompraID"`
}

func (Compra) TableName() string { return "compras" }

// NumeroFormateado renders the sequential purchase number, e.g. COM-000007.
func (c *Compra) NumeroFormateado() string { return fmt.Sprintf("COM-%06d", c.Numero) }

// CompraItem snapshots product identity and unit cost at purchase time.
type CompraItem struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompraID   uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductoID uuid.UUID `gorm:"type:uuid;not null;index"`

	ProductoCodigo string `gorm:"not null"`
	ProductoTipo   string `gorm:"not null"`
	ProductoTalla  string `gorm:"not null"`

	Cantidad      int             `gorm:"not null"`
	CostoUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

func (CompraItem) TableName() string { return "compra_items" }
