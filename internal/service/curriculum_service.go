package service

import (
	"context"
	"errors"
	"learnpath_backend/internal/model"
	"learnpath_backend/internal/repository"
	"learnpath_backend/internal/util"
	"learnpath_backend/pkg/logger"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	videosPerLesson   = 2
	articlesPerLesson = 2
)

// CurriculumService 编排结构化生成与资源检索，物化整棵课程树。
// 创建对 (user, assessment, personalization) 幂等，可安全重试
type CurriculumService struct {
	DB                  *gorm.DB
	Gen                 *GenerationService
	Search              *SearchService
	Ownership           *OwnershipService
	RoadmapRepo         *repository.RoadmapRepository
	ResourceRepo        *repository.ResourceRepository
	QuizRepo            *repository.QuizRepository
	AssessmentRepo      *repository.AssessmentRepository
	PersonalizationRepo *repository.PersonalizationRepository
	ProgressRepo        *repository.ProgressRepository
}

func NewCurriculumService(
	db *gorm.DB,
	gen *GenerationService,
	search *SearchService,
	ownership *OwnershipService,
	roadmapRepo *repository.RoadmapRepository,
	resourceRepo *repository.ResourceRepository,
	quizRepo *repository.QuizRepository,
	assessmentRepo *repository.AssessmentRepository,
	personalizationRepo *repository.PersonalizationRepository,
	progressRepo *repository.ProgressRepository,
) *CurriculumService {
	return &CurriculumService{
		DB:                  db,
		Gen:                 gen,
		Search:              search,
		Ownership:           ownership,
		RoadmapRepo:         roadmapRepo,
		ResourceRepo:        resourceRepo,
		QuizRepo:            quizRepo,
		AssessmentRepo:      assessmentRepo,
		PersonalizationRepo: personalizationRepo,
		ProgressRepo:        progressRepo,
	}
}

// PlanShape 预计学习时长决定模块数与每模块课时数
func PlanShape(estimatedDuration string) (modules, lessonsPerModule int) {
	switch estimatedDuration {
	case "short":
		return 1, 2
	case "long":
		return 5, 4
	default: // medium
		return 3, 3
	}
}

// CreateRoadmap 创建学习路线。返回的 bool 表示是否新建（false = 命中已有路线）
func (s *CurriculumService) CreateRoadmap(ctx context.Context, userID uint, assessmentID, personalizationID string) (*model.Roadmap, bool, error) {
	assessment, err := s.AssessmentRepo.FindByID(assessmentID)
	if err != nil {
		return nil, false, util.ErrNotFound
	}
	personalization, err := s.PersonalizationRepo.FindByID(personalizationID)
	if err != nil {
		return nil, false, util.ErrNotFound
	}
	if assessment.UserID != userID || personalization.UserID != userID {
		return nil, false, util.ErrPermissionDenied
	}

	// 幂等：同一组合的路线已存在则直接返回
	if existing, err := s.RoadmapRepo.FindByKey(userID, assessmentID, personalizationID); err == nil {
		return existing, false, nil
	}

	moduleCount, lessonsPerModule := PlanShape(personalization.EstimatedDuration)
	plan, err := s.Gen.GenerateRoadmapPlan(ctx, personalization, assessment, moduleCount, lessonsPerModule)
	if err != nil {
		return nil, false, err
	}

	// 外部检索放在数据库事务之前：只有第一个模块的课时急加载资源，
	// 其余模块的资源等学习者推进到时再懒物化，控制同步外呼的数量
	firstModuleSets := make([]LessonResourceSet, len(plan.Modules[0].Lessons))
	for j, lp := range plan.Modules[0].Lessons {
		firstModuleSets[j] = s.Search.FindLessonResources(ctx, lp.VideoPhrases, lp.ArticlePhrases, videosPerLesson, articlesPerLesson)
	}

	var roadmap *model.Roadmap
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		roadmap = &model.Roadmap{
			UserID:            userID,
			AssessmentID:      assessmentID,
			PersonalizationID: personalizationID,
			Title:             plan.Title,
			Description:       plan.Description,
			Tags:              plan.Tags,
			Status:            model.RoadmapActive,
		}
		if err := tx.Create(roadmap).Error; err != nil {
			return err
		}

		for i, mp := range plan.Modules {
			moduleStatus := model.StatusLocked
			if i == 0 {
				moduleStatus = model.StatusInProgress
			}
			module := &model.Module{
				RoadmapID:   roadmap.ID,
				Title:       mp.Title,
				Description: mp.Description,
				Order:       i,
				Status:      moduleStatus,
			}
			if err := tx.Create(module).Error; err != nil {
				return err
			}

			for j, lp := range mp.Lessons {
				lessonStatus := model.StatusLocked
				if i == 0 && j == 0 {
					lessonStatus = model.StatusInProgress
				}
				lesson := &model.Lesson{
					ModuleID:       module.ID,
					Title:          lp.Title,
					Description:    lp.Description,
					Order:          j,
					Topics:         lp.Topics,
					VideoPhrases:   lp.VideoPhrases,
					ArticlePhrases: lp.ArticlePhrases,
					Status:         lessonStatus,
				}
				if err := tx.Create(lesson).Error; err != nil {
					return err
				}

				if i == 0 {
					set := firstModuleSets[j]
					ids, err := persistCandidates(tx, lesson.ID, set, lessonStatus == model.StatusInProgress)
					if err != nil {
						return err
					}
					lesson.ResourceIDs = ids
					lesson.Duration = set.PrimaryDuration
					if err := tx.Save(lesson).Error; err != nil {
						return err
					}
				}
			}
		}

		progress := &model.UserProgress{
			UserID:             userID,
			RoadmapID:          roadmap.ID,
			CompletedResources: []string{},
			CompletedLessons:   []string{},
			CompletedModules:   []string{},
			FailedQuizLessons:  []string{},
		}
		return tx.Create(progress).Error
	})

	if err != nil {
		// 并发创建撞唯一键：重查并返回赢家
		if isDuplicateKey(err) {
			if winner, ferr := s.RoadmapRepo.FindByKey(userID, assessmentID, personalizationID); ferr == nil {
				return winner, false, nil
			}
		}
		logger.Log.Error("roadmap creation failed", zap.Uint("user", userID), zap.Error(err))
		return nil, false, err
	}

	return roadmap, true, nil
}

// ListRoadmaps 列出本人的全部路线（不含子树）
func (s *CurriculumService) ListRoadmaps(userID uint) ([]model.Roadmap, error) {
	return s.RoadmapRepo.ListByUser(userID)
}

// GetRoadmapTree 返回整棵课程树，模块课时按序排列
func (s *CurriculumService) GetRoadmapTree(userID uint, roadmapID string) (*model.Roadmap, error) {
	tree, err := s.RoadmapRepo.FindTree(roadmapID)
	if err != nil {
		return nil, util.ErrNotFound
	}
	if tree.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	return tree, nil
}

// GetResource 查询单个资源，沿课程树校验归属
func (s *CurriculumService) GetResource(ctx context.Context, userID uint, resourceID string) (*model.Resource, error) {
	if _, err := s.ResourceRepo.FindByID(resourceID); err != nil {
		return nil, util.ErrNotFound
	}
	chain, err := s.Ownership.ResolveResource(ctx, resourceID, userID)
	if err != nil {
		return nil, err
	}
	if chain == nil {
		return nil, util.ErrPermissionDenied
	}
	return chain.Resource, nil
}

// GetQuiz 查询小测。返回给学习者的题目隐藏答案与解析
func (s *CurriculumService) GetQuiz(ctx context.Context, userID uint, quizID string) (*model.Quiz, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		return nil, util.ErrNotFound
	}
	chain, err := s.Ownership.ResolveQuizParent(ctx, quiz, userID)
	if err != nil {
		return nil, err
	}
	if chain == nil {
		return nil, util.ErrPermissionDenied
	}

	sanitized := *quiz
	sanitized.Questions = make([]model.Question, len(quiz.Questions))
	for i, q := range quiz.Questions {
		q.CorrectAnswer = ""
		q.Explanation = ""
		sanitized.Questions[i] = q
	}
	return &sanitized, nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "Duplicate entry")
}

// persistCandidates 把候选资源写库并返回有序 id 列表。
// 视频按自然键全局去重：已存在就重链接，不再新建；
// 文章每次生成新键（不跨课时去重）。activeLesson 时解锁第一个资源
func persistCandidates(tx *gorm.DB, lessonID string, set LessonResourceSet, activeLesson bool) ([]string, error) {
	ids := make([]string, 0, len(set.Candidates))
	for idx, c := range set.Candidates {
		key := c.NaturalKey
		if key == "" {
			key = "article_" + model.GenerateUUID()
		}

		var existing model.Resource
		err := tx.Where("natural_key = ?", key).First(&existing).Error
		if err == nil {
			ids = append(ids, existing.ID)
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}

		status := model.StatusLocked
		if activeLesson && idx == 0 {
			status = model.StatusInProgress
		}
		res := &model.Resource{
			NaturalKey:     key,
			Type:           c.Type,
			Title:          c.Title,
			URL:            c.URL,
			Thumbnail:      c.Thumbnail,
			SentimentScore: c.Sentiment.Score,
			SentimentLabel: c.Sentiment.Label,
			Views:          c.Views,
			Likes:          c.Likes,
			CommentCount:   c.CommentCount,
			Duration:       c.Duration,
			PublishedAt:    c.PublishedAt,
			Status:         status,
			LessonID:       lessonID,
		}
		if err := tx.Create(res).Error; err != nil {
			// 两个并发构建同时写同一个视频：让赢家的记录生效
			if isDuplicateKey(err) {
				if ferr := tx.Where("natural_key = ?", key).First(&existing).Error; ferr == nil {
					ids = append(ids, existing.ID)
					continue
				}
			}
			return nil, err
		}
		ids = append(ids, res.ID)
	}
	return ids, nil
}
