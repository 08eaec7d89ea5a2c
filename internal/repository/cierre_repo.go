package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yuseponub/varixcenter-sub001/internal/dto"
	"github.com/yuseponub/varixcenter-sub001/internal/model"
)

type CierreRepository interface {
	CreateTx(tx *gorm.DB, c *model.CierreCaja) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CierreCaja, error)
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.CierreCaja, error)
	// ExisteCerradoPorFechaTx checks the one-closing-per-date rule inside the
	// closing transaction. The partial unique index is the final arbiter
	// under true concurrency; this check gives the friendly error.
	ExisteCerradoPorFechaTx(tx *gorm.DB, fecha time.Time) (bool, error)
	UpdateReaperturaTx(tx *gorm.DB, c *model.CierreCaja) error
	List(ctx context.Context, filter dto.CierreFilter) ([]model.CierreCaja, int64, error)
	DB() *gorm.DB
}

type cierreRepo struct{ db *gorm.DB }

func NewCierreRepository(db *gorm.DB) CierreRepository { return &cierreRepo{db: db} }

func (r *cierreRepo) DB() *gorm.DB { return r.db }

func (r *cierreRepo) CreateTx(tx *gorm.DB, c *model.CierreCaja) error {
	return tx.Create(c).Error
}

func (r *cierreRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CierreCaja, error) {
	var c model.CierreCaja
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}

func (r *cierreRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.CierreCaja, error) {
	var c model.CierreCaja
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, id).Error
	return &c, err
}

func (r *cierreRepo) ExisteCerradoPorFechaTx(tx *gorm.DB, fecha time.Time) (bool, error) {
	var total int64
	err := tx.Model(&model.CierreCaja{}).
		Where("fecha_cierre = ? AND estado = ?", fecha.Format("2006-01-02"), model.CierreCerrado).
		Count(&total).Error
	return total > 0, err
}

func (r *cierreRepo) UpdateReaperturaTx(tx *gorm.DB, c *model.CierreCaja) error {
	return tx.Model(&model.CierreCaja{}).Where("id = ?", c.ID).Updates(map[string]interface{}{
		"estado":                   c.Estado,
		"reabierto_por":            c.ReabiertoPor,
		"reabierto_at":             c.ReabiertoAt,
		"justificacion_reapertura": c.JustificacionReapertura,
	}).Error
}

func (r *cierreRepo) List(ctx context.Context, filter dto.CierreFilter) ([]model.CierreCaja, int64, error) {
	var cierres []model.CierreCaja
	var total int64

	q := r.db.WithContext(ctx).Model(&model.CierreCaja{})
	if filter.Estado != "" && filter.Estado != "all" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.Desde != "" {
		q = q.Where("fecha_cierre >= ?", filter.Desde)
	}
	if filter.Hasta != "" {
		q = q.Where("fecha_cierre <= ?", filter.Hasta)
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

	err := q.Order("numero DESC").Offset(offset).Limit(limit).Find(&cierres).Error
	return cierres, total, err
}
