package repository

import (
	"learnpath_backend/internal/model"

	"gorm.io/gorm"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) Create(p *model.UserProgress) error {
	return r.DB.Create(p).Error
}

func (r *ProgressRepository) FindByUserAndRoadmap(userID uint, roadmapID string) (*model.UserProgress, error) {
	var p model.UserProgress
	err := r.DB.Where("user_id = ? AND roadmap_id = ?", userID, roadmapID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProgressRepository) Save(tx *gorm.DB, p *model.UserProgress) error {
	return tx.Save(p).Error
}
