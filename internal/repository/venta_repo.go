package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yuseponub/varixcenter-sub001/internal/dto"
	"github.com/yuseponub/varixcenter-sub001/internal/model"
)

type VentaRepository interface {
	CreateTx(tx *gorm.DB, v *model.Venta) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Venta, error)
	// FindByIDForUpdateTx locks the sale row (no preloads) so concurrent
	// voids cannot both observe estado = activo.
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Venta, error)
	UpdateAnulacionTx(tx *gorm.DB, v *model.Venta) error
	List(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, int64, error)

	// SumMetodosPorFecha sums payment-method amounts over the date's activo
	// sales — the read side of the daily cash closing. The Tx variant runs
	// inside the closing transaction so a sale committing concurrently cannot
	// be excluded from the stored totals.
	SumMetodosPorFecha(ctx context.Context, fecha time.Time) (map[string]decimal.Decimal, error)
	SumMetodosPorFechaTx(tx *gorm.DB, fecha time.Time) (map[string]decimal.Decimal, error)

	// Dashboard aggregates.
	CountAndTotalPorFecha(ctx context.Context, fecha time.Time) (int64, decimal.Decimal, error)
	TotalMes(ctx context.Context, anio int, mes time.Month) (decimal.Decimal, error)

	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) CreateTx(tx *gorm.DB, v *model.Venta) error {
	return tx.Create(v).Error
}

func (r *ventaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).Preload("Items").Preload("Metodos").First(&v, id).Error
	return &v, err
}

func (r *ventaRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := tx.Preload("Items").Preload("Metodos").First(&v, id).Error
	return &v, err
}

func (r *ventaRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&v, id).Error
	return &v, err
}

func (r *ventaRepo) UpdateAnulacionTx(tx *gorm.DB, v *model.Venta) error {
	return tx.Model(&model.Venta{}).Where("id = ?", v.ID).Updates(map[string]interface{}{
		"estado":                  v.Estado,
		"anulada_por":             v.AnuladaPor,
		"anulada_at":              v.AnuladaAt,
		"justificacion_anulacion": v.JustificacionAnulacion,
	}).Error
}

func (r *ventaRepo) List(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, int64, error) {
	var ventas []model.Venta
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Venta{})

	if filter.Estado != "" && filter.Estado != "all" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.Fecha != "" {
		q = q.Where("DATE(created_at) = ?", filter.Fecha)
	} else {
		// Default: today
		q = q.Where("DATE(created_at) = CURRENT_DATE")
	}
	if filter.PacienteID != "" {
		q = q.Where("paciente_id = ?", filter.PacienteID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	offset := (page - 1) * limit

	err := q.Preload("Items").Preload("Metodos").
		Order("numero DESC").
		Offset(offset).Limit(limit).
		Find(&ventas).Error

	return ventas, total, err
}

func (r *ventaRepo) SumMetodosPorFecha(ctx context.Context, fecha time.Time) (map[string]decimal.Decimal, error) {
	return sumMetodosPorFecha(r.db.WithContext(ctx), fecha)
}

func (r *ventaRepo) SumMetodosPorFechaTx(tx *gorm.DB, fecha time.Time) (map[string]decimal.Decimal, error) {
	return sumMetodosPorFecha(tx, fecha)
}

func sumMetodosPorFecha(q *gorm.DB, fecha time.Time) (map[string]decimal.Decimal, error) {
	type row struct {
		Metodo string
		Total  decimal.Decimal
	}
	var rows []row
	err := q.
		Model(&model.VentaMetodo{}).
		Select("venta_metodos.metodo AS metodo, COALESCE(SUM(venta_metodos.monto), 0) AS total").
		Joins("JOIN ventas ON ventas.id = venta_metodos.venta_id").
		Where("ventas.estado = ? AND DATE(ventas.created_at) = ?", model.VentaActiva, fecha.Format("2006-01-02")).
		Group("venta_metodos.metodo").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	sums := make(map[string]decimal.Decimal, len(rows))
	for _, rw := range rows {
		sums[rw.Metodo] = rw.Total
	}
	return sums, nil
}

func (r *ventaRepo) CountAndTotalPorFecha(ctx context.Context, fecha time.Time) (int64, decimal.Decimal, error) {
	type row struct {
		Cantidad int64
		Total    decimal.Decimal
	}
	var rw row
	err := r.db.WithContext(ctx).
		Model(&model.Venta{}).
		Select("COUNT(*) AS cantidad, COALESCE(SUM(total), 0) AS total").
		Where("estado = ? AND DATE(created_at) = ?", model.VentaActiva, fecha.Format("2006-01-02")).
		Scan(&rw).Error
	return rw.Cantidad, rw.Total, err
}

func (r *ventaRepo) TotalMes(ctx context.Context, anio int, mes time.Month) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&model.Venta{}).
		Select("COALESCE(SUM(total), 0)").
		Where("estado = ? AND EXTRACT(YEAR FROM created_at) = ? AND EXTRACT(MONTH FROM created_at) = ?",
			model.VentaActiva, anio, int(mes)).
		Scan(&total).Error
	return total, err
}
