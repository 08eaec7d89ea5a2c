package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Venta sale states.
const (
	VentaActiva  = "activo"
	VentaAnulada = "anulado"
)

// Payment methods accepted at the counter. Every method except efectivo
// requires a comprobante (transfer screenshot / voucher) path.
const (
	MetodoEfectivo      = "efectivo"
	MetodoTarjeta       = "tarjeta"
	MetodoTransferencia = "transferencia"
	MetodoNequi         = "nequi"
)

// Venta is a completed multi-item, multi-payment-method sale.
// Numero is allocated gaplessly from the secuencias counter inside the same
// transaction as the stock decrements.
type Venta struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Numero     int64      `gorm:"uniqueIndex;not null"`
	PacienteID *uuid.UUID `gorm:"type:uuid;index"`
	Subtotal   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Total      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Estado     string          `gorm:"type:varchar(20);not null;default:'activo';index"`

	VendedorID uuid.UUID `gorm:"type:uuid;not null"`
	// RecibioEfectivoID records who physically received the cash, for
	// accountability at closing time; nil when no cash changed hands.
	RecibioEfectivoID *uuid.UUID `gorm:"type:uuid"`

	AnuladaPor             *uuid.UUID `gorm:"type:uuid"`
	AnuladaAt              *time.Time
	JustificacionAnulacion *string

	CreatedAt time.Time `gorm:"index"`

	Items   []VentaItem   `gorm:"foreignKey:VentaID"`
	Metodos []VentaMetodo `gorm:"foreignKey:VentaID"`
}

func (Venta) TableName() string { return "ventas" }

// NumeroFormateado renders the sequential sale number, e.g. VTA-000123.
func (v *Venta) NumeroFormateado() string { return fmt.Sprintf("VTA-%06d", v.Numero) }

// VentaItem snapshots the product identity and price at sale time, so later
// catalog edits never alter historical sales. Do not normalize these fields
// away to a join.
type VentaItem struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductoID uuid.UUID `gorm:"type:uuid;not null;index"`

	ProductoCodigo string `gorm:"not null"`
	ProductoTipo   string `gorm:"not null"`
	ProductoTalla  string `gorm:"not null"`

	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Cantidad       int             `gorm:"not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

func (VentaItem) TableName() string { return "venta_items" }

// VentaMetodo splits the sale total across payment methods.
// Invariant: Σ Monto == Venta.Total, enforced at creation. Voiding a sale
// does not retract these rows; they remain for audit.
type VentaMetodo struct {
	ID      uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Metodo  string          `gorm:"type:varchar(20);not null"`
	Monto   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// ComprobantePath is required unless Metodo == efectivo. Opaque path;
	// the upload itself happens before the transactional call.
	ComprobantePath *string
}

func (VentaMetodo) TableName() string { return "venta_metodos" }
