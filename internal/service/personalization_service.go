package service

import (
	"learnpath_backend/internal/model"
	"learnpath_backend/internal/repository"
	"learnpath_backend/internal/util"
)

// PersonalizationService 学习偏好管理。偏好创建后不可修改，改需求就新建一份
type PersonalizationService struct {
	Repo *repository.PersonalizationRepository
}

func NewPersonalizationService(repo *repository.PersonalizationRepository) *PersonalizationService {
	return &PersonalizationService{Repo: repo}
}

func (s *PersonalizationService) Create(p *model.Personalization) error {
	return s.Repo.Create(p)
}

func (s *PersonalizationService) Get(userID uint, id string) (*model.Personalization, error) {
	p, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, util.ErrNotFound
	}
	if p.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	return p, nil
}

func (s *PersonalizationService) ListByUser(userID uint) ([]model.Personalization, error) {
	return s.Repo.ListByUser(userID)
}
