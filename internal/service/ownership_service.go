package service

import (
	"context"
	"encoding/json"
	"fmt"
	"learnpath_backend/internal/model"
	"learnpath_backend/internal/repository"
	"time"

	"github.com/go-redis/redis/v8"
)

const ownershipCacheTTL = 5 * time.Minute

// OwnershipChain 从叶子实体到路线根的归属链。解析失败或归属不符时整体为 nil
type OwnershipChain struct {
	Resource *model.Resource
	Lesson   *model.Lesson
	Module   *model.Module
	Roadmap  *model.Roadmap
}

// cachedChain 缓存只存 id 链，命中后按 id 重新取行，避免缓存整行过期数据
type cachedChain struct {
	LessonID  string `json:"lessonId"`
	ModuleID  string `json:"moduleId"`
	RoadmapID string `json:"roadmapId"`
}

// OwnershipService 做 resource→lesson→module→roadmap 的有界链式查询并校验归属。
// 链按 (leafId, userId) 缓存 5 分钟，只靠 TTL 失效
type OwnershipService struct {
	RoadmapRepo  *repository.RoadmapRepository
	ResourceRepo *repository.ResourceRepository
	Redis        *redis.Client
}

func NewOwnershipService(roadmapRepo *repository.RoadmapRepository, resourceRepo *repository.ResourceRepository, rdb *redis.Client) *OwnershipService {
	return &OwnershipService{
		RoadmapRepo:  roadmapRepo,
		ResourceRepo: resourceRepo,
		Redis:        rdb,
	}
}

func ownershipCacheKey(leafType, leafID string, userID uint) string {
	return fmt.Sprintf("ownership:%s:%s:%d", leafType, leafID, userID)
}

// ResolveResource 任何一环断开或归属不符都返回 (nil, nil)，由调用方译为 403/404
func (s *OwnershipService) ResolveResource(ctx context.Context, resourceID string, userID uint) (*OwnershipChain, error) {
	res, err := s.ResourceRepo.FindByID(resourceID)
	if err != nil {
		return nil, nil
	}

	cacheKey := ownershipCacheKey("resource", resourceID, userID)
	if chain := s.fromCache(ctx, cacheKey); chain != nil {
		chain.Resource = res
		return chain, nil
	}

	// 资源可能被重链接到多个课时，找属于该用户的那条链
	lessons, err := s.RoadmapRepo.LessonsContainingResource(resourceID)
	if err != nil {
		return nil, err
	}
	for i := range lessons {
		lesson := lessons[i]
		chain, err := s.chainFromLesson(&lesson, userID)
		if err != nil {
			return nil, err
		}
		if chain != nil {
			chain.Resource = res
			s.toCache(ctx, cacheKey, chain)
			return chain, nil
		}
	}
	return nil, nil
}

func (s *OwnershipService) ResolveLesson(ctx context.Context, lessonID string, userID uint) (*OwnershipChain, error) {
	cacheKey := ownershipCacheKey("lesson", lessonID, userID)
	if chain := s.fromCache(ctx, cacheKey); chain != nil {
		return chain, nil
	}

	lesson, err := s.RoadmapRepo.FindLessonByID(lessonID)
	if err != nil {
		return nil, nil
	}
	chain, err := s.chainFromLesson(lesson, userID)
	if err != nil {
		return nil, err
	}
	if chain != nil {
		s.toCache(ctx, cacheKey, chain)
	}
	return chain, nil
}

func (s *OwnershipService) ResolveModule(ctx context.Context, moduleID string, userID uint) (*OwnershipChain, error) {
	cacheKey := ownershipCacheKey("module", moduleID, userID)
	if chain := s.fromCache(ctx, cacheKey); chain != nil {
		return chain, nil
	}

	module, err := s.RoadmapRepo.FindModuleByID(moduleID)
	if err != nil {
		return nil, nil
	}
	roadmap, err := s.RoadmapRepo.FindByID(module.RoadmapID)
	if err != nil {
		return nil, nil
	}
	if roadmap.UserID != userID {
		return nil, nil
	}
	chain := &OwnershipChain{Module: module, Roadmap: roadmap}
	s.toCache(ctx, cacheKey, chain)
	return chain, nil
}

// ResolveQuizParent 依据小测的 parent 类型解析归属链
func (s *OwnershipService) ResolveQuizParent(ctx context.Context, quiz *model.Quiz, userID uint) (*OwnershipChain, error) {
	switch quiz.ParentType {
	case model.QuizParentLesson:
		return s.ResolveLesson(ctx, quiz.ParentID, userID)
	case model.QuizParentModule:
		return s.ResolveModule(ctx, quiz.ParentID, userID)
	default:
		return nil, nil
	}
}

func (s *OwnershipService) chainFromLesson(lesson *model.Lesson, userID uint) (*OwnershipChain, error) {
	module, err := s.RoadmapRepo.FindModuleByID(lesson.ModuleID)
	if err != nil {
		return nil, nil
	}
	roadmap, err := s.RoadmapRepo.FindByID(module.RoadmapID)
	if err != nil {
		return nil, nil
	}
	if roadmap.UserID != userID {
		return nil, nil
	}
	return &OwnershipChain{Lesson: lesson, Module: module, Roadmap: roadmap}, nil
}

func (s *OwnershipService) fromCache(ctx context.Context, key string) *OwnershipChain {
	val, err := s.Redis.Get(ctx, key).Result()
	if err != nil {
		return nil
	}
	var ids cachedChain
	if json.Unmarshal([]byte(val), &ids) != nil {
		return nil
	}

	chain := &OwnershipChain{}
	if ids.LessonID != "" {
		lesson, err := s.RoadmapRepo.FindLessonByID(ids.LessonID)
		if err != nil {
			return nil
		}
		chain.Lesson = lesson
	}
	module, err := s.RoadmapRepo.FindModuleByID(ids.ModuleID)
	if err != nil {
		return nil
	}
	roadmap, err := s.RoadmapRepo.FindByID(ids.RoadmapID)
	if err != nil {
		return nil
	}
	chain.Module = module
	chain.Roadmap = roadmap
	return chain
}

func (s *OwnershipService) toCache(ctx context.Context, key string, chain *OwnershipChain) {
	ids := cachedChain{ModuleID: chain.Module.ID, RoadmapID: chain.Roadmap.ID}
	if chain.Lesson != nil {
		ids.LessonID = chain.Lesson.ID
	}
	if data, err := json.Marshal(ids); err == nil {
		s.Redis.Set(ctx, key, data, ownershipCacheTTL)
	}
}
