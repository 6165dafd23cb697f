package repository

import (
	"learnpath_backend/internal/model"

	"gorm.io/gorm"
)

type PersonalizationRepository struct {
	DB *gorm.DB
}

func NewPersonalizationRepository(db *gorm.DB) *PersonalizationRepository {
	return &PersonalizationRepository{DB: db}
}

func (r *PersonalizationRepository) Create(p *model.Personalization) error {
	return r.DB.Create(p).Error
}

func (r *PersonalizationRepository) FindByID(id string) (*model.Personalization, error) {
	var p model.Personalization
	err := r.DB.Where("id = ?", id).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PersonalizationRepository) ListByUser(userID uint) ([]model.Personalization, error) {
	var ps []model.Personalization
	err := r.DB.Where("user_id = ?", userID).Order("created_at desc").Find(&ps).Error
	return ps, err
}
