package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yuseponub/varixcenter-sub001/internal/model"
)

// SecuenciaRepository allocates gapless sequential numbers. NextTx locks the
// counter row FOR UPDATE inside the caller's transaction, so the increment
// commits or rolls back together with the entity insert using the number.
type SecuenciaRepository interface {
	NextTx(tx *gorm.DB, nombre string) (int64, error)
	EnsureTx(tx *gorm.DB, nombre string) error
}

type secuenciaRepo struct{ db *gorm.DB }

func NewSecuenciaRepository(db *gorm.DB) SecuenciaRepository { return &secuenciaRepo{db: db} }

func (r *secuenciaRepo) NextTx(tx *gorm.DB, nombre string) (int64, error) {
	var seq model.Secuencia
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("nombre = ?", nombre).
		First(&seq).Error
	if err != nil {
		return 0, err
	}
	seq.Valor++
	if err := tx.Model(&model.Secuencia{}).
		Where("nombre = ?", nombre).
		Update("valor", seq.Valor).Error; err != nil {
		return 0, err
	}
	return seq.Valor, nil
}

// EnsureTx creates the counter row if missing (startup seeding).
func (r *secuenciaRepo) EnsureTx(tx *gorm.DB, nombre string) error {
	return tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.Secuencia{Nombre: nombre, Valor: 0}).Error
}
