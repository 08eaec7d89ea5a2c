package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yuseponub/varixcenter-sub001/internal/dto"
	"github.com/yuseponub/varixcenter-sub001/internal/model"
)

type DevolucionRepository interface {
	CreateTx(tx *gorm.DB, d *model.Devolucion) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Devolucion, error)
	// FindByIDForUpdateTx locks the return row so two concurrent approvals
	// cannot both observe estado = pendiente.
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Devolucion, error)
	UpdateResolucionTx(tx *gorm.DB, d *model.Devolucion) error
	// SumNoRechazadasPorItem sums requested quantities of pendiente and
	// aprobada returns for one sale item (the returnable-quantity bound).
	SumNoRechazadasPorItem(ctx context.Context, ventaItemID uuid.UUID) (int, error)
	SumNoRechazadasPorItemTx(tx *gorm.DB, ventaItemID uuid.UUID) (int, error)
	List(ctx context.Context, filter dto.DevolucionFilter) ([]model.Devolucion, int64, error)
	CountPendientes(ctx context.Context) (int64, error)
	DB() *gorm.DB
}

type devolucionRepo struct{ db *gorm.DB }

func NewDevolucionRepository(db *gorm.DB) DevolucionRepository { return &devolucionRepo{db: db} }

func (r *devolucionRepo) DB() *gorm.DB { return r.db }

func (r *devolucionRepo) CreateTx(tx *gorm.DB, d *model.Devolucion) error {
	return tx.Create(d).Error
}

func (r *devolucionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Devolucion, error) {
	var d model.Devolucion
	err := r.db.WithContext(ctx).Preload("VentaItem").First(&d, id).Error
	return &d, err
}

func (r *devolucionRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Devolucion, error) {
	var d model.Devolucion
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&d, id).Error
	return &d, err
}

func (r *devolucionRepo) UpdateResolucionTx(tx *gorm.DB, d *model.Devolucion) error {
	return tx.Model(&model.Devolucion{}).Where("id = ?", d.ID).Updates(map[string]interface{}{
		"estado":          d.Estado,
		"aprobada_por":    d.AprobadaPor,
		"aprobada_at":     d.AprobadaAt,
		"notas_aprobador": d.NotasAprobador,
	}).Error
}

func (r *devolucionRepo) SumNoRechazadasPorItem(ctx context.Context, ventaItemID uuid.UUID) (int, error) {
	return sumNoRechazadas(r.db.WithContext(ctx), ventaItemID)
}

func (r *devolucionRepo) SumNoRechazadasPorItemTx(tx *gorm.DB, ventaItemID uuid.UUID) (int, error) {
	return sumNoRechazadas(tx, ventaItemID)
}

func sumNoRechazadas(db *gorm.DB, ventaItemID uuid.UUID) (int, error) {
	var suma int
	err := db.Model(&model.Devolucion{}).
		Select("COALESCE(SUM(cantidad), 0)").
		Where("venta_item_id = ? AND estado <> ?", ventaItemID, model.DevolucionRechazada).
		Scan(&suma).Error
	return suma, err
}

func (r *devolucionRepo) List(ctx context.Context, filter dto.DevolucionFilter) ([]model.Devolucion, int64, error) {
	var devoluciones []model.Devolucion
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Devolucion{})
	if filter.Estado != "" && filter.Estado != "all" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.VentaID != "" {
		q = q.Where("venta_id = ?", filter.VentaID)
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

	err := q.Preload("VentaItem").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&devoluciones).Error
	return devoluciones, total, err
}

func (r *devolucionRepo) CountPendientes(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Devolucion{}).
		Where("estado = ?", model.DevolucionPendiente).
		Count(&total).Error
	return total, err
}
