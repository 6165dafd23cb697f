package service

import (
	"context"
	"learnpath_backend/internal/model"
	"learnpath_backend/internal/repository"
	"learnpath_backend/internal/util"
)

// AssessmentService 学前评估：每个 personalization 只生成一份，提交单向
type AssessmentService struct {
	Gen                 *GenerationService
	AssessmentRepo      *repository.AssessmentRepository
	PersonalizationRepo *repository.PersonalizationRepository
}

func NewAssessmentService(gen *GenerationService, assessmentRepo *repository.AssessmentRepository, personalizationRepo *repository.PersonalizationRepository) *AssessmentService {
	return &AssessmentService{
		Gen:                 gen,
		AssessmentRepo:      assessmentRepo,
		PersonalizationRepo: personalizationRepo,
	}
}

// GenerateAssessment 幂等生成评估：同一 personalization 重复请求返回已有的一份。
// 返回的 bool 表示是否新建
func (s *AssessmentService) GenerateAssessment(ctx context.Context, userID uint, personalizationID string) (*model.Assessment, bool, error) {
	personalization, err := s.PersonalizationRepo.FindByID(personalizationID)
	if err != nil {
		return nil, false, util.ErrNotFound
	}
	if personalization.UserID != userID {
		return nil, false, util.ErrPermissionDenied
	}

	if existing, err := s.AssessmentRepo.FindByPersonalization(personalizationID); err == nil && existing != nil {
		return existing, false, nil
	}

	questions, err := s.Gen.GenerateAssessmentQuestions(ctx, personalization)
	if err != nil {
		return nil, false, err
	}

	assessment := &model.Assessment{
		UserID:            userID,
		PersonalizationID: personalizationID,
		Questions:         questions,
	}
	if err := s.AssessmentRepo.Create(assessment); err != nil {
		// 并发生成撞唯一键：返回先落库的那份
		if isDuplicateKey(err) {
			if winner, ferr := s.AssessmentRepo.FindByPersonalization(personalizationID); ferr == nil && winner != nil {
				return winner, false, nil
			}
		}
		return nil, false, err
	}
	return assessment, true, nil
}

// GetAssessment 查询本人的评估
func (s *AssessmentService) GetAssessment(userID uint, assessmentID string) (*model.Assessment, error) {
	assessment, err := s.AssessmentRepo.FindByID(assessmentID)
	if err != nil {
		return nil, util.ErrNotFound
	}
	if assessment.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	return assessment, nil
}

// SubmitAssessment 提交作答并计分。已提交的评估拒绝再次提交
func (s *AssessmentService) SubmitAssessment(userID uint, assessmentID string, answers map[int]string) (*model.Assessment, error) {
	assessment, err := s.AssessmentRepo.FindByID(assessmentID)
	if err != nil {
		return nil, util.ErrNotFound
	}
	if assessment.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	if assessment.IsSubmitted {
		return nil, util.ErrAlreadySubmitted
	}

	assessment.Answers = answers
	assessment.Score = ScoreQuiz(assessment.Questions, answers)
	assessment.MaxScore = len(assessment.Questions)
	assessment.IsSubmitted = true

	if err := s.AssessmentRepo.Update(assessment); err != nil {
		return nil, err
	}
	return assessment, nil
}
