package controller

import (
	"errors"
	"learnpath_backend/internal/service"
	"learnpath_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type RoadmapController struct {
	Curriculum *service.CurriculumService
}

func NewRoadmapController(curriculum *service.CurriculumService) *RoadmapController {
	return &RoadmapController{Curriculum: curriculum}
}

// CreateRoadmapRequest 创建路线请求
// swagger:model CreateRoadmapRequest
type CreateRoadmapRequest struct {
	AssessmentID      string `json:"assessmentId" binding:"required"`
	PersonalizationID string `json:"personalizationId" binding:"required"`
}

// Create godoc
// @Summary 创建学习路线
// @Description 基于评估与偏好生成个性化课程树。同一组合重复请求返回已有路线
// @Tags 学习路线
// @Accept  json
// @Produce  json
// @Param   body body CreateRoadmapRequest true "创建参数"
// @Success 201 {object} util.Response{data=model.Roadmap}
// @Failure 403 {object} util.Response "无权访问"
// @Failure 404 {object} util.Response "评估或偏好不存在"
// @Failure 500 {object} util.Response "生成失败"
// @Security BearerAuth
// @Router /api/create-learning-roadmap [post]
func (c *RoadmapController) Create(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req CreateRoadmapRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	roadmap, created, err := c.Curriculum.CreateRoadmap(ctx.Request.Context(), claims.UserID, req.AssessmentID, req.PersonalizationID)
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

	if created {
		util.Created(ctx, roadmap)
	} else {
		util.CreatedExisting(ctx, roadmap)
	}
}

// List godoc
// @Summary 列出本人的学习路线
// @Tags 学习路线
// @Produce  json
// @Success 200 {object} util.Response{data=[]model.Roadmap}
// @Security BearerAuth
// @Router /api/learning-roadmap [get]
func (c *RoadmapController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	list, err := c.Curriculum.ListRoadmaps(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// Get godoc
// @Summary 查询学习路线全树
// @Description 返回路线下全部模块与课时，按序排列
// @Tags 学习路线
// @Produce  json
// @Param   id path string true "路线 ID"
// @Success 200 {object} util.Response{data=model.Roadmap}
// @Failure 403 {object} util.Response "无权访问"
// @Failure 404 {object} util.Response "不存在"
// @Security BearerAuth
// @Router /api/learning-roadmap/{id} [get]
func (c *RoadmapController) Get(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	tree, err := c.Curriculum.GetRoadmapTree(claims.UserID, ctx.Param("id"))
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
	util.Success(ctx, tree)
}

// GetResource godoc
// @Summary 查询学习资源
// @Tags 学习路线
// @Produce  json
// @Param   resourceId path string true "资源 ID"
// @Success 200 {object} util.Response{data=model.Resource}
// @Failure 403 {object} util.Response "无权访问"
// @Failure 404 {object} util.Response "不存在"
// @Security BearerAuth
// @Router /api/learning-roadmap/resource/{resourceId} [get]
func (c *RoadmapController) GetResource(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	resource, err := c.Curriculum.GetResource(ctx.Request.Context(), claims.UserID, ctx.Param("resourceId"))
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
	util.Success(ctx, resource)
}

// GetQuiz godoc
// @Summary 查询小测
// @Description 题目不包含正确答案与解析
// @Tags 学习路线
// @Produce  json
// @Param   quizId path string true "小测 ID"
// @Success 200 {object} util.Response{data=model.Quiz}
// @Failure 403 {object} util.Response "无权访问"
// @Failure 404 {object} util.Response "不存在"
// @Security BearerAuth
// @Router /api/learning-roadmap/quiz/{quizId} [get]
func (c *RoadmapController) GetQuiz(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	quiz, err := c.Curriculum.GetQuiz(ctx.Request.Context(), claims.UserID, ctx.Param("quizId"))
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
	util.Success(ctx, quiz)
}
