package controller

import (
	"errors"
	"learnpath_backend/internal/model"
	"learnpath_backend/internal/service"
	"learnpath_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type PersonalizationController struct {
	Service *service.PersonalizationService
}

func NewPersonalizationController(svc *service.PersonalizationService) *PersonalizationController {
	return &PersonalizationController{Service: svc}
}

// PersonalizationRequest 学习偏好
// swagger:model PersonalizationRequest
type PersonalizationRequest struct {
	Prompt            string                  `json:"prompt" binding:"required"`
	Difficulty        string                  `json:"difficulty" binding:"omitempty,oneof=beginner intermediate advanced"`
	EstimatedDuration string                  `json:"estimatedDuration" binding:"omitempty,oneof=short medium long"`
	Pace              string                  `json:"pace"`
	ResourceTypes     []string                `json:"resourceTypes"`
	Platforms         []string                `json:"platforms"`
	Topics            []model.TopicPreference `json:"topics"`
}

// Create godoc
// @Summary 创建学习偏好
// @Description 偏好创建后不可修改，调整需求请新建一份
// @Tags 个性化
// @Accept  json
// @Produce  json
// @Param   body body PersonalizationRequest true "学习偏好"
// @Success 201 {object} util.Response{data=model.Personalization}
// @Failure 400 {object} util.Response "请求参数错误"
// @Security BearerAuth
// @Router /api/personalization [post]
func (c *PersonalizationController) Create(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req PersonalizationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	p := &model.Personalization{
		UserID:            claims.UserID,
		Prompt:            req.Prompt,
		Difficulty:        req.Difficulty,
		EstimatedDuration: req.EstimatedDuration,
		Pace:              req.Pace,
		ResourceTypes:     req.ResourceTypes,
		Platforms:         req.Platforms,
		Topics:            req.Topics,
	}
	if p.Difficulty == "" {
		p.Difficulty = "beginner"
	}
	if p.EstimatedDuration == "" {
		p.EstimatedDuration = "medium"
	}
	if p.Pace == "" {
		p.Pace = "steady"
	}

	if err := c.Service.Create(p); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, p)
}

// Get godoc
// @Summary 查询学习偏好
// @Tags 个性化
// @Produce  json
// @Param   id path string true "偏好 ID"
// @Success 200 {object} util.Response{data=model.Personalization}
// @Failure 403 {object} util.Response "无权访问"
// @Failure 404 {object} util.Response "不存在"
// @Security BearerAuth
// @Router /api/personalization/{id} [get]
func (c *PersonalizationController) Get(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	p, err := c.Service.Get(claims.UserID, ctx.Param("id"))
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
	util.Success(ctx, p)
}

// List godoc
// @Summary 列出本人的学习偏好
// @Tags 个性化
// @Produce  json
// @Success 200 {object} util.Response{data=[]model.Personalization}
// @Security BearerAuth
// @Router /api/personalization [get]
func (c *PersonalizationController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	list, err := c.Service.ListByUser(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, list)
}
