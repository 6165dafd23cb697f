package controller

import (
	"errors"
	"learnpath_backend/internal/service"
	"learnpath_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AssessmentController struct {
	Service *service.AssessmentService
}

func NewAssessmentController(svc *service.AssessmentService) *AssessmentController {
	return &AssessmentController{Service: svc}
}

// GenerateAssessmentRequest 生成评估请求
// swagger:model GenerateAssessmentRequest
type GenerateAssessmentRequest struct {
	PersonalizationID string `json:"personalizationId" binding:"required"`
}

// SubmitAssessmentRequest 评估作答，键为题目下标
// swagger:model SubmitAssessmentRequest
type SubmitAssessmentRequest struct {
	Answers map[int]string `json:"answers" binding:"required"`
}

// Generate godoc
// @Summary 生成学前评估
// @Description 同一偏好重复请求返回已有评估，不重复生成
// @Tags 评估
// @Accept  json
// @Produce  json
// @Param   body body GenerateAssessmentRequest true "生成参数"
// @Success 201 {object} util.Response{data=model.Assessment} "新建"
// @Failure 403 {object} util.Response "无权访问"
// @Failure 404 {object} util.Response "偏好不存在"
// @Failure 500 {object} util.Response "生成失败"
// @Security BearerAuth
// @Router /api/generate-assessment [post]
func (c *AssessmentController) Generate(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req GenerateAssessmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	assessment, created, err := c.Service.GenerateAssessment(ctx.Request.Context(), claims.UserID, req.PersonalizationID)
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
		util.Created(ctx, assessment)
	} else {
		util.CreatedExisting(ctx, assessment)
	}
}

// Get godoc
// @Summary 查询评估
// @Tags 评估
// @Produce  json
// @Param   id path string true "评估 ID"
// @Success 200 {object} util.Response{data=model.Assessment}
// @Failure 403 {object} util.Response "无权访问"
// @Failure 404 {object} util.Response "不存在"
// @Security BearerAuth
// @Router /api/assessment/{id} [get]
func (c *AssessmentController) Get(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	assessment, err := c.Service.GetAssessment(claims.UserID, ctx.Param("id"))
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
	util.Success(ctx, assessment)
}

// Submit godoc
// @Summary 提交评估作答
// @Description 提交是单向的，已提交的评估拒绝再次提交
// @Tags 评估
// @Accept  json
// @Produce  json
// @Param   assessmentId path string true "评估 ID"
// @Param   body body SubmitAssessmentRequest true "作答"
// @Success 200 {object} util.Response{data=model.Assessment}
// @Failure 400 {object} util.Response "已提交过"
// @Failure 403 {object} util.Response "无权访问"
// @Failure 404 {object} util.Response "不存在"
// @Security BearerAuth
// @Router /api/assessment-submit/{assessmentId} [put]
func (c *AssessmentController) Submit(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SubmitAssessmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	assessment, err := c.Service.SubmitAssessment(claims.UserID, ctx.Param("assessmentId"), req.Answers)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		case errors.Is(err, util.ErrAlreadySubmitted):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, assessment)
}
