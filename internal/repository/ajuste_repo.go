package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yuseponub/varixcenter-sub001/internal/model"
)

type AjusteRepository interface {
	CreateTx(tx *gorm.DB, a *model.AjusteInventario) error
	CreateTransferenciaTx(tx *gorm.DB, t *model.TransferenciaStock) error
	ListByProducto(ctx context.Context, productoID uuid.UUID) ([]model.AjusteInventario, error)
	DB() *gorm.DB
}

type ajusteRepo struct{ db *gorm.DB }

func NewAjusteRepository(db *gorm.DB) AjusteRepository { return &ajusteRepo{db: db} }

func (r *ajusteRepo) DB() *gorm.DB { return r.db }

func (r *ajusteRepo) CreateTx(tx *gorm.DB, a *model.AjusteInventario) error {
	return tx.Create(a).Error
}

func (r *ajusteRepo) CreateTransferenciaTx(tx *gorm.DB, t *model.TransferenciaStock) error {
	return tx.Create(t).Error
}

func (r *ajusteRepo) ListByProducto(ctx context.Context, productoID uuid.UUID) ([]model.AjusteInventario, error) {
	var ajustes []model.AjusteInventario
	err := r.db.WithContext(ctx).
		Where("producto_id = ?", productoID).
		Order("created_at DESC").
		Find(&ajustes).Error
	return ajustes, err
}
