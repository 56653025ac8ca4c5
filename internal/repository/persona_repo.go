package repository

import (
	"context"

	"contalink/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PersonaRepository interface {
	ExistsTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error)
}

type personaRepo struct{ db *gorm.DB }

func NewPersonaRepository(db *gorm.DB) PersonaRepository { return &personaRepo{db: db} }

func (r *personaRepo) ExistsTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error) {
	var n int64
	err := tx.WithContext(ctx).Model(&model.Persona{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}
