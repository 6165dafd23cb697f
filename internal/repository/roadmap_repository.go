package repository

import (
	"learnpath_backend/internal/model"

	"gorm.io/gorm"
)

// RoadmapRepository 管理 roadmap/module/lesson 聚合
type RoadmapRepository struct {
	DB *gorm.DB
}

func NewRoadmapRepository(db *gorm.DB) *RoadmapRepository {
	return &RoadmapRepository{DB: db}
}

func (r *RoadmapRepository) FindByKey(userID uint, assessmentID, personalizationID string) (*model.Roadmap, error) {
	var rm model.Roadmap
	err := r.DB.Where("user_id = ? AND assessment_id = ? AND personalization_id = ?",
		userID, assessmentID, personalizationID).First(&rm).Error
	if err != nil {
		return nil, err
	}
	return &rm, nil
}

func (r *RoadmapRepository) FindByID(id string) (*model.Roadmap, error) {
	var rm model.Roadmap
	err := r.DB.Where("id = ?", id).First(&rm).Error
	if err != nil {
		return nil, err
	}
	return &rm, nil
}

// FindTree 读取整棵课程树，模块与课时按 order 排序
func (r *RoadmapRepository) FindTree(id string) (*model.Roadmap, error) {
	var rm model.Roadmap
	err := r.DB.
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("modules.order asc")
		}).
		Preload("Modules.Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("lessons.order asc")
		}).
		Where("id = ?", id).First(&rm).Error
	if err != nil {
		return nil, err
	}
	return &rm, nil
}

func (r *RoadmapRepository) ListByUser(userID uint) ([]model.Roadmap, error) {
	var rms []model.Roadmap
	err := r.DB.Where("user_id = ?", userID).Order("created_at desc").Find(&rms).Error
	return rms, err
}

func (r *RoadmapRepository) UpdateStatus(id string, status model.RoadmapStatus) error {
	return r.DB.Model(&model.Roadmap{}).Where("id = ?", id).Update("status", status).Error
}

func (r *RoadmapRepository) FindModuleByID(id string) (*model.Module, error) {
	var m model.Module
	err := r.DB.Where("id = ?", id).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *RoadmapRepository) FindLessonByID(id string) (*model.Lesson, error) {
	var l model.Lesson
	err := r.DB.Where("id = ?", id).First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *RoadmapRepository) LessonsByModule(moduleID string) ([]model.Lesson, error) {
	var ls []model.Lesson
	err := r.DB.Where("module_id = ?", moduleID).Order("`order` asc").Find(&ls).Error
	return ls, err
}

// NextLesson 返回模块内 order 紧随其后的课时，没有则返回 nil
func (r *RoadmapRepository) NextLesson(moduleID string, afterOrder int) (*model.Lesson, error) {
	var l model.Lesson
	err := r.DB.Where("module_id = ? AND `order` > ?", moduleID, afterOrder).
		Order("`order` asc").First(&l).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// NextModule 返回路线内 order 紧随其后的模块，没有则返回 nil
func (r *RoadmapRepository) NextModule(roadmapID string, afterOrder int) (*model.Module, error) {
	var m model.Module
	err := r.DB.Where("roadmap_id = ? AND `order` > ?", roadmapID, afterOrder).
		Order("`order` asc").First(&m).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// LessonsContainingResource 查出资源 id 出现在 ResourceIDs 里的全部课时。
// 资源按自然键全局共享，可能被多个用户的课时引用
func (r *RoadmapRepository) LessonsContainingResource(resourceID string) ([]model.Lesson, error) {
	var ls []model.Lesson
	err := r.DB.Where("JSON_CONTAINS(resource_ids, JSON_QUOTE(?))", resourceID).Find(&ls).Error
	return ls, err
}

func (r *RoadmapRepository) SaveLesson(tx *gorm.DB, l *model.Lesson) error {
	return tx.Save(l).Error
}

func (r *RoadmapRepository) SaveModule(tx *gorm.DB, m *model.Module) error {
	return tx.Save(m).Error
}

func (r *RoadmapRepository) FirstLesson(moduleID string) (*model.Lesson, error) {
	var l model.Lesson
	err := r.DB.Where("module_id = ?", moduleID).Order("`order` asc").First(&l).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}
