package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CierreCaja states.
const (
	CierreCerrado   = "cerrado"
	CierreReabierto = "reabierto"
)

// CierreCaja is the daily cash settlement for one calendar date. At most one
// cerrado row may exist per fecha (partial unique index, see infra schema
// patches). Reopening flips Estado and keeps the row; re-closing the same day
// inserts a new row with a new Numero.
type CierreCaja struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Numero      int64     `gorm:"uniqueIndex;not null"`
	FechaCierre time.Time `gorm:"type:date;not null;index"`

	// Per-method totals summed over the date's activo sales.
	TotalEfectivo      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalTarjeta       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalTransferencia decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalNequi         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	GranTotal          decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	ConteoFisicoEfectivo decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// Diferencia = ConteoFisicoEfectivo − TotalEfectivo. A non-zero value
	// requires a written justification — never silently accepted.
	Diferencia              decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DiferenciaJustificacion *string

	// FotoPath is the signed closing report photo; required.
	FotoPath string `gorm:"not null"`
	Notas    *string

	Estado     string    `gorm:"type:varchar(20);not null;default:'cerrado'"`
	CerradoPor uuid.UUID `gorm:"type:uuid;not null"`

	ReabiertoPor            *uuid.UUID `gorm:"type:uuid"`
	ReabiertoAt             *time.Time
	JustificacionReapertura *string

	CreatedAt time.Time
}

func (CierreCaja) TableName() string { return "cierres_caja" }

// NumeroFormateado renders the sequential closing number, e.g. CIE-000015.
func (c *CierreCaja) NumeroFormateado() string { return fmt.Sprintf("CIE-%06d", c.Numero) }
