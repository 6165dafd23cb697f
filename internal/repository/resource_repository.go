package repository

import (
	"learnpath_backend/internal/model"

	"gorm.io/gorm"
)

type ResourceRepository struct {
	DB *gorm.DB
}

func NewResourceRepository(db *gorm.DB) *ResourceRepository {
	return &ResourceRepository{DB: db}
}

func (r *ResourceRepository) FindByID(id string) (*model.Resource, error) {
	var res model.Resource
	err := r.DB.Where("id = ?", id).First(&res).Error
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *ResourceRepository) FindByNaturalKey(key string) (*model.Resource, error) {
	var res model.Resource
	err := r.DB.Where("natural_key = ?", key).First(&res).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// FindByIDs 按传入的 id 顺序返回资源（课时内资源顺序保存在 Lesson.ResourceIDs）
func (r *ResourceRepository) FindByIDs(ids []string) ([]model.Resource, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []model.Resource
	if err := r.DB.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]model.Resource, len(rows))
	for _, res := range rows {
		byID[res.ID] = res
	}
	ordered := make([]model.Resource, 0, len(ids))
	for _, id := range ids {
		if res, ok := byID[id]; ok {
			ordered = append(ordered, res)
		}
	}
	return ordered, nil
}

// MarkCompleted 条件原子更新：仅当资源尚未完成时置为完成，
// 返回是否真的发生了状态变更（并发重复完成时为 false）
func (r *ResourceRepository) MarkCompleted(tx *gorm.DB, id string) (bool, error) {
	result := tx.Model(&model.Resource{}).
		Where("id = ? AND status <> ?", id, model.StatusCompleted).
		Update("status", model.StatusCompleted)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *ResourceRepository) UpdateStatus(tx *gorm.DB, id string, status model.UnitStatus) error {
	return tx.Model(&model.Resource{}).Where("id = ?", id).Update("status", status).Error
}
