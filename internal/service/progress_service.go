package service

import (
	"context"
	"learnpath_backend/internal/model"
	"learnpath_backend/internal/repository"
	"learnpath_backend/internal/util"
	"learnpath_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	resourceXP    = 10
	quizXP        = 50
	passThreshold = 0.8
)

// ProgressService 进度与解锁状态机。
// 状态只向前推进：locked → in_progress → completed，所有写入同事务提交
type ProgressService struct {
	DB           *gorm.DB
	Gen          *GenerationService
	Search       *SearchService
	Ownership    *OwnershipService
	RoadmapRepo  *repository.RoadmapRepository
	ResourceRepo *repository.ResourceRepository
	QuizRepo     *repository.QuizRepository
	ProgressRepo *repository.ProgressRepository
	UserRepo     *repository.UserRepository
}

func NewProgressService(
	db *gorm.DB,
	gen *GenerationService,
	search *SearchService,
	ownership *OwnershipService,
	roadmapRepo *repository.RoadmapRepository,
	resourceRepo *repository.ResourceRepository,
	quizRepo *repository.QuizRepository,
	progressRepo *repository.ProgressRepository,
	userRepo *repository.UserRepository,
) *ProgressService {
	return &ProgressService{
		DB:           db,
		Gen:          gen,
		Search:       search,
		Ownership:    ownership,
		RoadmapRepo:  roadmapRepo,
		ResourceRepo: resourceRepo,
		QuizRepo:     quizRepo,
		ProgressRepo: progressRepo,
		UserRepo:     userRepo,
	}
}

// ScoreQuiz 按题目下标精确匹配计分
func ScoreQuiz(questions []model.Question, answers map[int]string) int {
	score := 0
	for i, q := range questions {
		if ans, ok := answers[i]; ok && ans == q.CorrectAnswer {
			score++
		}
	}
	return score
}

// Passed 通过线：正确率 >= 80%
func Passed(score, total int) bool {
	if total <= 0 {
		return false
	}
	return float64(score)/float64(total) >= passThreshold
}

// ReattemptAllowed 换题重考的前置条件：所有小测均已作答且没有任何一次达标
func ReattemptAllowed(quizzes []model.Quiz) error {
	if len(quizzes) == 0 {
		return util.ErrLessonNotActionable
	}
	for _, q := range quizzes {
		if len(q.Attempts) == 0 {
			return util.ErrQuizUnattempted
		}
		for _, a := range q.Attempts {
			if Passed(a.Score, a.Total) {
				return util.ErrQuizNotAllFailed
			}
		}
	}
	return nil
}

// ProgressPercent 完成资源占比，夹在 [0, 100]
func ProgressPercent(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	pct := float64(completed) / float64(total) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// WeakTopics 把答错的题目下标映射回课时主题（下标对主题数取模），去重后返回
func WeakTopics(questions []model.Question, attempt *model.Attempt, topics []string) []string {
	if attempt == nil || len(topics) == 0 {
		return nil
	}
	var weak []string
	for i, q := range questions {
		if attempt.Answers[i] != q.CorrectAnswer {
			weak = appendUnique(weak, topics[i%len(topics)])
		}
	}
	return weak
}

func appendUnique(list []string, v string) []string {
	for _, item := range list {
		if item == v {
			return list
		}
	}
	return append(list, v)
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// GetProgress 查询某条路线的进度记录
func (s *ProgressService) GetProgress(userID uint, roadmapID string) (*model.UserProgress, error) {
	progress, err := s.ProgressRepo.FindByUserAndRoadmap(userID, roadmapID)
	if err != nil {
		return nil, util.ErrNotFound
	}
	return progress, nil
}

// CompleteResource 标记资源完成并解锁该课时内下一个资源。
// 完成判定走条件更新，重复提交返回 ErrAlreadyCompleted 且不重复计 XP。
// 课时内全部资源完成后，确保存在一份可作答的课时小测
func (s *ProgressService) CompleteResource(ctx context.Context, userID uint, resourceID string) (*model.UserProgress, error) {
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

	progress, err := s.ProgressRepo.FindByUserAndRoadmap(userID, chain.Roadmap.ID)
	if err != nil {
		return nil, util.ErrNotFound
	}

	lesson := chain.Lesson
	siblings, err := s.ResourceRepo.FindByIDs(lesson.ResourceIDs)
	if err != nil {
		return nil, err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		updated, err := s.ResourceRepo.MarkCompleted(tx, resourceID)
		if err != nil {
			return err
		}
		if !updated {
			return util.ErrAlreadyCompleted
		}

		progress.CompletedResources = appendUnique(progress.CompletedResources, resourceID)
		progress.XP += resourceXP
		if err := s.UserRepo.AddXP(tx, userID, resourceXP); err != nil {
			return err
		}

		// 按课时内顺序解锁下一个还锁着的资源
		for _, sib := range siblings {
			if sib.ID == resourceID {
				continue
			}
			if sib.Status == model.StatusLocked && !containsString(progress.CompletedResources, sib.ID) {
				if err := s.ResourceRepo.UpdateStatus(tx, sib.ID, model.StatusInProgress); err != nil {
					return err
				}
				break
			}
		}

		total, err := s.countMaterializedResources(chain.Roadmap.ID)
		if err != nil {
			return err
		}
		progress.ProgressPercentage = ProgressPercent(len(progress.CompletedResources), total)
		return s.ProgressRepo.Save(tx, progress)
	})
	if err != nil {
		return nil, err
	}

	// 课时内资源全部完成后准备小测，生成失败只影响本次请求，可重试
	if s.lessonResourcesDone(lesson, progress) {
		if err := s.ensureQuiz(ctx, lesson.ID, model.QuizParentLesson, lesson.Topics); err != nil {
			logger.Log.Warn("quiz preparation failed",
				zap.String("lesson", lesson.ID), zap.Error(err))
		}
	}

	return progress, nil
}

func (s *ProgressService) lessonResourcesDone(lesson *model.Lesson, progress *model.UserProgress) bool {
	if len(lesson.ResourceIDs) == 0 {
		return false
	}
	for _, id := range lesson.ResourceIDs {
		if !containsString(progress.CompletedResources, id) {
			return false
		}
	}
	return true
}

// countMaterializedResources 统计整棵树已物化的资源数（懒加载模块还没有资源，不计入）
func (s *ProgressService) countMaterializedResources(roadmapID string) (int, error) {
	tree, err := s.RoadmapRepo.FindTree(roadmapID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, m := range tree.Modules {
		for _, l := range m.Lessons {
			total += len(l.ResourceIDs)
		}
	}
	return total, nil
}

// ensureQuiz 保证 parent 下有一份可作答的小测：
// 没有就生成；最近一次作答未达标就替换成避开历史题目的新题；已通过或未作答则不动
func (s *ProgressService) ensureQuiz(ctx context.Context, parentID string, parentType model.QuizParentType, topics []string) error {
	quizzes, err := s.QuizRepo.ListByParent(parentID, parentType)
	if err != nil {
		return err
	}

	if len(quizzes) == 0 {
		questions, err := s.Gen.GenerateQuiz(ctx, topics, nil)
		if err != nil {
			return err
		}
		return s.QuizRepo.Create(&model.Quiz{
			ParentID:   parentID,
			ParentType: parentType,
			Questions:  questions,
			IsActive:   true,
		})
	}

	active, err := s.QuizRepo.FindActiveByParent(parentID, parentType)
	if err != nil {
		return err
	}
	if active == nil {
		return nil
	}
	latest := active.LatestAttempt()
	if latest == nil || Passed(latest.Score, latest.Total) {
		return nil
	}

	return s.replaceQuiz(ctx, parentID, parentType, topics, quizzes)
}

// replaceQuiz 废弃当前小测并生成避开所有历史题目的新题
func (s *ProgressService) replaceQuiz(ctx context.Context, parentID string, parentType model.QuizParentType, topics []string, history []model.Quiz) error {
	var avoid []model.Question
	for _, q := range history {
		avoid = append(avoid, q.Questions...)
	}
	questions, err := s.Gen.GenerateQuiz(ctx, topics, avoid)
	if err != nil {
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.QuizRepo.DeactivateForParent(tx, parentID, parentType); err != nil {
			return err
		}
		return tx.Create(&model.Quiz{
			ParentID:   parentID,
			ParentType: parentType,
			Questions:  questions,
			IsActive:   true,
		}).Error
	})
}

// SubmitQuiz 提交小测作答。作答记录只追加；通过则推进状态机：
// 课时小测通过解锁下一课时（或触发模块小测），模块小测通过解锁下一模块（或完结路线）
func (s *ProgressService) SubmitQuiz(ctx context.Context, userID uint, quizID string, answers map[int]string) (*model.Quiz, *model.UserProgress, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		return nil, nil, util.ErrNotFound
	}
	if !quiz.IsActive {
		return nil, nil, util.ErrNotFound
	}
	chain, err := s.Ownership.ResolveQuizParent(ctx, quiz, userID)
	if err != nil {
		return nil, nil, err
	}
	if chain == nil {
		return nil, nil, util.ErrPermissionDenied
	}

	progress, err := s.ProgressRepo.FindByUserAndRoadmap(userID, chain.Roadmap.ID)
	if err != nil {
		return nil, nil, util.ErrNotFound
	}

	score := ScoreQuiz(quiz.Questions, answers)
	passed := Passed(score, len(quiz.Questions))
	xp := 0
	if passed {
		xp = quizXP
	}
	quiz.Attempts = append(quiz.Attempts, model.Attempt{
		Score:     score,
		Total:     len(quiz.Questions),
		XPAwarded: xp,
		Answers:   answers,
		Timestamp: time.Now(),
	})

	// 推进需要物化的下一课时提前检索，外部调用不进事务
	var nextLesson *model.Lesson
	var nextModule *model.Module
	var pendingSet LessonResourceSet
	var needMaterialize bool
	if passed {
		switch quiz.ParentType {
		case model.QuizParentLesson:
			nextLesson, err = s.RoadmapRepo.NextLesson(chain.Lesson.ModuleID, chain.Lesson.Order)
		case model.QuizParentModule:
			nextModule, err = s.RoadmapRepo.NextModule(chain.Roadmap.ID, chain.Module.Order)
			if err == nil && nextModule != nil {
				nextLesson, err = s.RoadmapRepo.FirstLesson(nextModule.ID)
			}
		}
		if err != nil {
			return nil, nil, err
		}
		if nextLesson != nil && len(nextLesson.ResourceIDs) == 0 {
			needMaterialize = true
			pendingSet = s.Search.FindLessonResources(ctx, nextLesson.VideoPhrases, nextLesson.ArticlePhrases, videosPerLesson, articlesPerLesson)
		}
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(quiz).Error; err != nil {
			return err
		}
		progress.XP += xp
		if xp > 0 {
			if err := s.UserRepo.AddXP(tx, userID, xp); err != nil {
				return err
			}
		}

		if !passed {
			if quiz.ParentType == model.QuizParentLesson {
				progress.FailedQuizLessons = appendUnique(progress.FailedQuizLessons, chain.Lesson.ID)
			}
			return s.ProgressRepo.Save(tx, progress)
		}

		switch quiz.ParentType {
		case model.QuizParentLesson:
			if err := s.advanceAfterLesson(tx, chain, progress, nextLesson, pendingSet, needMaterialize); err != nil {
				return err
			}
		case model.QuizParentModule:
			if err := s.advanceAfterModule(tx, chain, progress, nextModule, nextLesson, pendingSet, needMaterialize); err != nil {
				return err
			}
		}
		return s.ProgressRepo.Save(tx, progress)
	})
	if err != nil {
		return nil, nil, err
	}

	// 模块最后一个课时通过后，准备模块小测
	if passed && quiz.ParentType == model.QuizParentLesson && nextLesson == nil {
		if err := s.ensureQuiz(ctx, chain.Module.ID, model.QuizParentModule, s.moduleTopics(chain.Module.ID)); err != nil {
			logger.Log.Warn("module quiz preparation failed",
				zap.String("module", chain.Module.ID), zap.Error(err))
		}
	}

	return quiz, progress, nil
}

func (s *ProgressService) advanceAfterLesson(tx *gorm.DB, chain *OwnershipChain, progress *model.UserProgress, next *model.Lesson, set LessonResourceSet, materialize bool) error {
	lesson := chain.Lesson
	lesson.Status = model.StatusCompleted
	if err := s.RoadmapRepo.SaveLesson(tx, lesson); err != nil {
		return err
	}
	progress.CompletedLessons = appendUnique(progress.CompletedLessons, lesson.ID)

	if next == nil {
		return nil
	}
	return s.unlockLesson(tx, next, set, materialize)
}

func (s *ProgressService) advanceAfterModule(tx *gorm.DB, chain *OwnershipChain, progress *model.UserProgress, nextModule *model.Module, firstLesson *model.Lesson, set LessonResourceSet, materialize bool) error {
	module := chain.Module
	module.Status = model.StatusCompleted
	if err := s.RoadmapRepo.SaveModule(tx, module); err != nil {
		return err
	}
	progress.CompletedModules = appendUnique(progress.CompletedModules, module.ID)

	if nextModule == nil {
		// 最后一个模块通过，整条路线完结
		return tx.Model(&model.Roadmap{}).
			Where("id = ?", chain.Roadmap.ID).
			Update("status", model.RoadmapCompleted).Error
	}

	nextModule.Status = model.StatusInProgress
	if err := s.RoadmapRepo.SaveModule(tx, nextModule); err != nil {
		return err
	}
	if firstLesson == nil {
		return nil
	}
	return s.unlockLesson(tx, firstLesson, set, materialize)
}

func (s *ProgressService) unlockLesson(tx *gorm.DB, lesson *model.Lesson, set LessonResourceSet, materialize bool) error {
	lesson.Status = model.StatusInProgress
	if materialize {
		ids, err := persistCandidates(tx, lesson.ID, set, true)
		if err != nil {
			return err
		}
		lesson.ResourceIDs = ids
		lesson.Duration = set.PrimaryDuration
	} else if len(lesson.ResourceIDs) > 0 {
		// 资源已物化（例如重开路线）：把第一个资源置为进行中
		var first model.Resource
		if err := tx.First(&first, "id = ?", lesson.ResourceIDs[0]).Error; err == nil && first.Status == model.StatusLocked {
			if err := s.ResourceRepo.UpdateStatus(tx, first.ID, model.StatusInProgress); err != nil {
				return err
			}
		}
	}
	return s.RoadmapRepo.SaveLesson(tx, lesson)
}

func (s *ProgressService) moduleTopics(moduleID string) []string {
	lessons, err := s.RoadmapRepo.LessonsByModule(moduleID)
	if err != nil {
		return nil
	}
	var topics []string
	for _, l := range lessons {
		for _, t := range l.Topics {
			topics = appendUnique(topics, t)
		}
	}
	return topics
}

// ReattemptQuiz 学习者主动要求换一份新题重考。
// 仅当该 parent 下所有小测都有作答且全部未达标时才允许
func (s *ProgressService) ReattemptQuiz(ctx context.Context, userID uint, parentID string, parentType model.QuizParentType) (*model.Quiz, error) {
	var topics []string
	switch parentType {
	case model.QuizParentLesson:
		chain, err := s.Ownership.ResolveLesson(ctx, parentID, userID)
		if err != nil {
			return nil, err
		}
		if chain == nil {
			return nil, util.ErrPermissionDenied
		}
		topics = chain.Lesson.Topics
	case model.QuizParentModule:
		chain, err := s.Ownership.ResolveModule(ctx, parentID, userID)
		if err != nil {
			return nil, err
		}
		if chain == nil {
			return nil, util.ErrPermissionDenied
		}
		topics = s.moduleTopics(parentID)
	default:
		return nil, util.ErrNotFound
	}

	quizzes, err := s.QuizRepo.ListByParent(parentID, parentType)
	if err != nil {
		return nil, err
	}
	if err := ReattemptAllowed(quizzes); err != nil {
		return nil, err
	}

	if err := s.replaceQuiz(ctx, parentID, parentType, topics, quizzes); err != nil {
		return nil, err
	}
	return s.QuizRepo.FindActiveByParent(parentID, parentType)
}

// AddTargetedResources 针对最近一次未达标作答的薄弱主题补充资源。
// 每个薄弱主题补一个指定类型的资源，追加到课时资源列表并立即解锁
func (s *ProgressService) AddTargetedResources(ctx context.Context, userID uint, lessonID string, resourceType model.ResourceType) ([]model.Resource, error) {
	chain, err := s.Ownership.ResolveLesson(ctx, lessonID, userID)
	if err != nil {
		return nil, err
	}
	if chain == nil {
		return nil, util.ErrPermissionDenied
	}
	lesson := chain.Lesson

	quiz, err := s.QuizRepo.FindActiveByParent(lessonID, model.QuizParentLesson)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, util.ErrNoFailedAttempt
	}
	latest := quiz.LatestAttempt()
	if latest == nil || Passed(latest.Score, latest.Total) {
		return nil, util.ErrNoFailedAttempt
	}

	weak := WeakTopics(quiz.Questions, latest, lesson.Topics)
	if len(weak) == 0 {
		return nil, util.ErrNoFailedAttempt
	}

	var candidates []ResourceCandidate
	for _, topic := range weak {
		var found []ResourceCandidate
		if resourceType == model.VideoResource {
			found = s.Search.FindVideoResources(ctx, []string{topic}, 1)
		} else {
			found = s.Search.FindArticleResources(ctx, []string{topic}, 1)
		}
		candidates = append(candidates, found...)
	}
	if len(candidates) == 0 {
		return nil, util.ErrNotFound
	}

	var addedIDs []string
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		for _, c := range candidates {
			// 逐个写入，补充的资源不经过 locked 状态
			ids, err := persistCandidates(tx, lesson.ID, LessonResourceSet{Candidates: []ResourceCandidate{c}}, true)
			if err != nil {
				return err
			}
			for _, id := range ids {
				if !containsString(lesson.ResourceIDs, id) {
					lesson.ResourceIDs = append(lesson.ResourceIDs, id)
					addedIDs = append(addedIDs, id)
				}
			}
		}
		return s.RoadmapRepo.SaveLesson(tx, lesson)
	})
	if err != nil {
		return nil, err
	}
	if len(addedIDs) == 0 {
		return []model.Resource{}, nil
	}
	return s.ResourceRepo.FindByIDs(addedIDs)
}
