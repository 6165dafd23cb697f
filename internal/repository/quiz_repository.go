package repository

import (
	"learnpath_backend/internal/model"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) Create(q *model.Quiz) error {
	return r.DB.Create(q).Error
}

func (r *QuizRepository) FindByID(id string) (*model.Quiz, error) {
	var q model.Quiz
	err := r.DB.Where("id = ?", id).First(&q).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// FindActiveByParent 同一 parent 至多一份激活的小测
func (r *QuizRepository) FindActiveByParent(parentID string, parentType model.QuizParentType) (*model.Quiz, error) {
	var q model.Quiz
	err := r.DB.Where("parent_id = ? AND parent_type = ? AND is_active = ?", parentID, parentType, true).
		First(&q).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *QuizRepository) ListByParent(parentID string, parentType model.QuizParentType) ([]model.Quiz, error) {
	var qs []model.Quiz
	err := r.DB.Where("parent_id = ? AND parent_type = ?", parentID, parentType).
		Order("created_at asc").Find(&qs).Error
	return qs, err
}

func (r *QuizRepository) Update(q *model.Quiz) error {
	return r.DB.Save(q).Error
}

// DeactivateForParent 把 parent 下所有小测置为非激活，替换前调用
func (r *QuizRepository) DeactivateForParent(tx *gorm.DB, parentID string, parentType model.QuizParentType) error {
	return tx.Model(&model.Quiz{}).
		Where("parent_id = ? AND parent_type = ?", parentID, parentType).
		Update("is_active", false).Error
}
