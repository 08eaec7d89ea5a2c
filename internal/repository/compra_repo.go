package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yuseponub/varixcenter-sub001/internal/dto"
	"github.com/yuseponub/varixcenter-sub001/internal/model"
)

type CompraRepository interface {
	CreateTx(tx *gorm.DB, c *model.Compra) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Compra, error)
	// FindByIDForUpdateTx locks the purchase row — the idempotency guard for
	// concurrent receive/void attempts.
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Compra, error)
	FindItemsTx(tx *gorm.DB, compraID uuid.UUID) ([]model.CompraItem, error)
	UpdateEstadoTx(tx *gorm.DB, c *model.Compra) error
	List(ctx context.Context, filter dto.CompraFilter) ([]model.Compra, int64, error)
	DB() *gorm.DB
}

type compraRepo struct{ db *gorm.DB }

func NewCompraRepository(db *gorm.DB) CompraRepository { return &compraRepo{db: db} }

func (r *compraRepo) DB() *gorm.DB { return r.db }

func (r *compraRepo) CreateTx(tx *gorm.DB, c *model.Compra) error {
	return tx.Create(c).Error
}

func (r *compraRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Compra, error) {
	var c model.Compra
	err := r.db.WithContext(ctx).Preload("Items").First(&c, id).Error
	return &c, err
}

func (r *compraRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Compra, error) {
	var c model.Compra
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, id).Error
	return &c, err
}

func (r *compraRepo) FindItemsTx(tx *gorm.DB, compraID uuid.UUID) ([]model.CompraItem, error) {
	var items []model.CompraItem
	err := tx.Where("compra_id = ?", compraID).Order("producto_codigo").Find(&items).Error
	return items, err
}

func (r *compraRepo) UpdateEstadoTx(tx *gorm.DB, c *model.Compra) error {
	return tx.Model(&model.Compra{}).Where("id = ?", c.ID).Updates(map[string]interface{}{
		"estado":                  c.Estado,
		"recibida_por":            c.RecibidaPor,
		"recibida_at":             c.RecibidaAt,
		"anulada_por":             c.AnuladaPor,
		"anulada_at":              c.AnuladaAt,
		"justificacion_anulacion": c.JustificacionAnulacion,
	}).Error
}

func (r *compraRepo) List(ctx context.Context, filter dto.CompraFilter) ([]model.Compra, int64, error) {
	var compras []model.Compra
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Compra{})
	if filter.Estado != "" && filter.Estado != "all" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.Proveedor != "" {
		q = q.Where("proveedor ILIKE ?", "%"+filter.Proveedor+"%")
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

	err := q.Preload("Items").
		Order("numero DESC").
		Offset(offset).Limit(limit).
		Find(&compras).Error
	return compras, total, err
}
