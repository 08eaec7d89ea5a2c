package model

// Counter names, one row per sequentially numbered entity type.
const (
	SeqVentas       = "ventas"
	SeqDevoluciones = "devoluciones"
	SeqCompras      = "compras"
	SeqCierres      = "cierres"
)

// Secuencia is the counter row backing gapless sequential numbers. The row
// is locked FOR UPDATE and incremented inside the same transaction that
// inserts the numbered entity, so an abort rolls the counter back — no gaps,
// no duplicates, even with multiple service instances running. Never replace
// this with an in-process counter.
type Secuencia struct {
	Nombre string `gorm:"primaryKey"`
	Valor  int64  `gorm:"not null;default:0"`
}

func (Secuencia) TableName() string { return "secuencias" }
