package controller

import (
	"errors"
	"learnpath_backend/internal/model"
	"learnpath_backend/internal/service"
	"learnpath_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	Progress *service.ProgressService
}

func NewProgressController(progress *service.ProgressService) *ProgressController {
	return &ProgressController{Progress: progress}
}

// SubmitQuizRequest 小测作答，键为题目下标
// swagger:model SubmitQuizRequest
type SubmitQuizRequest struct {
	Answers map[int]string `json:"answers" binding:"required"`
}

// NewResourceRequest 补充薄弱主题资源请求
// swagger:model NewResourceRequest
type NewResourceRequest struct {
	ResourceType string `json:"resourceType" binding:"required,oneof=youtube article"`
}

// ReattemptQuizRequest 换题重考请求
// swagger:model ReattemptQuizRequest
type ReattemptQuizRequest struct {
	ParentID   string `json:"parentId" binding:"required"`
	ParentType string `json:"parentType" binding:"required,oneof=lesson module"`
}

// CompleteResource godoc
// @Summary 标记资源完成
// @Description 完成资源得 10 XP 并解锁课时内下一个资源。重复标记返回 400 且不重复计 XP
// @Tags 学习进度
// @Produce  json
// @Param   resourceId path string true "资源 ID"
// @Success 200 {object} util.Response{data=model.UserProgress}
// @Failure 400 {object} util.Response "已完成过"
// @Failure 403 {object} util.Response "无权访问"
// @Failure 404 {object} util.Response "不存在"
// @Security BearerAuth
// @Router /api/learning-roadmap/resource/completed/{resourceId} [put]
func (c *ProgressController) CompleteResource(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	progress, err := c.Progress.CompleteResource(ctx.Request.Context(), claims.UserID, ctx.Param("resourceId"))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		case errors.Is(err, util.ErrAlreadyCompleted):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, progress)
}

// SubmitQuiz godoc
// @Summary 提交小测作答
// @Description 通过（正确率 >= 80%）得 50 XP 并推进解锁；未通过记录薄弱课时
// @Tags 学习进度
// @Accept  json
// @Produce  json
// @Param   quizId path string true "小测 ID"
// @Param   body body SubmitQuizRequest true "作答"
// @Success 200 {object} util.Response{data=object}
// @Failure 403 {object} util.Response "无权访问"
// @Failure 404 {object} util.Response "不存在或已失效"
// @Security BearerAuth
// @Router /api/learning-roadmap/submit-quiz/{quizId} [put]
func (c *ProgressController) SubmitQuiz(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SubmitQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, progress, err := c.Progress.SubmitQuiz(ctx.Request.Context(), claims.UserID, ctx.Param("quizId"), req.Answers)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	attempt := quiz.LatestAttempt()
	util.Success(ctx, gin.H{
		"attempt":  attempt,
		"passed":   attempt.XPAwarded > 0,
		"progress": progress,
	})
}

// AddResources godoc
// @Summary 补充薄弱主题资源
// @Description 根据最近一次未通过的作答，为答错的主题各补一个指定类型的资源
// @Tags 学习进度
// @Accept  json
// @Produce  json
// @Param   lessonId path string true "课时 ID"
// @Param   body body NewResourceRequest true "资源类型"
// @Success 200 {object} util.Response{data=[]model.Resource}
// @Failure 400 {object} util.Response "没有可补救的作答"
// @Failure 403 {object} util.Response "无权访问"
// @Security BearerAuth
// @Router /api/learning-roadmap/new-resource/{lessonId} [put]
func (c *ProgressController) AddResources(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req NewResourceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resources, err := c.Progress.AddTargetedResources(ctx.Request.Context(), claims.UserID, ctx.Param("lessonId"), model.ResourceType(req.ResourceType))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrNoFailedAttempt):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, resources)
}

// ReattemptQuiz godoc
// @Summary 换题重考
// @Description 仅当该课时/模块下所有小测都作答过且全部未通过时，生成一份避开历史题目的新小测
// @Tags 学习进度
// @Accept  json
// @Produce  json
// @Param   body body ReattemptQuizRequest true "重考参数"
// @Success 201 {object} util.Response{data=model.Quiz}
// @Failure 400 {object} util.Response "条件不满足"
// @Failure 403 {object} util.Response "无权访问"
// @Security BearerAuth
// @Router /api/learning-roadmap/create-reattempt-new-quiz [put]
func (c *ProgressController) ReattemptQuiz(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req ReattemptQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.Progress.ReattemptQuiz(ctx.Request.Context(), claims.UserID, req.ParentID, model.QuizParentType(req.ParentType))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrLessonNotActionable),
			errors.Is(err, util.ErrQuizUnattempted),
			errors.Is(err, util.ErrQuizNotAllFailed):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, quiz)
}

// GetProgress godoc
// @Summary 查询路线进度
// @Tags 学习进度
// @Produce  json
// @Param   roadmapId path string true "路线 ID"
// @Success 200 {object} util.Response{data=model.UserProgress}
// @Failure 404 {object} util.Response "不存在"
// @Security BearerAuth
// @Router /api/learning-roadmap/progress/{roadmapId} [get]
func (c *ProgressController) GetProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	progress, err := c.Progress.GetProgress(claims.UserID, ctx.Param("roadmapId"))
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, progress)
}
