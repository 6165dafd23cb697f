package app

import (
	"learnpath_backend/docs"
	"learnpath_backend/internal/config"
	"learnpath_backend/internal/middleware"
	"learnpath_backend/internal/model"
	"learnpath_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/profile", c.auth.Profile)

		// 个性化偏好
		authGroup.POST("/personalization", c.personalization.Create)
		authGroup.GET("/personalization", c.personalization.List)
		authGroup.GET("/personalization/:id", c.personalization.Get)

		// 学前评估
		authGroup.POST("/generate-assessment", c.assessment.Generate)
		authGroup.GET("/assessment/:id", c.assessment.Get)
		authGroup.PUT("/assessment-submit/:assessmentId", c.assessment.Submit)

		// 学习路线
		authGroup.POST("/create-learning-roadmap", c.roadmap.Create)
		authGroup.GET("/learning-roadmap", c.roadmap.List)
		authGroup.GET("/learning-roadmap/:id", c.roadmap.Get)
		authGroup.GET("/learning-roadmap/resource/:resourceId", c.roadmap.GetResource)
		authGroup.GET("/learning-roadmap/quiz/:quizId", c.roadmap.GetQuiz)

		// 学习进度
		authGroup.GET("/learning-roadmap/progress/:roadmapId", c.progress.GetProgress)
		authGroup.PUT("/learning-roadmap/resource/completed/:resourceId", c.progress.CompleteResource)
		authGroup.PUT("/learning-roadmap/submit-quiz/:quizId", c.progress.SubmitQuiz)
		authGroup.PUT("/learning-roadmap/new-resource/:lessonId", c.progress.AddResources)
		authGroup.PUT("/learning-roadmap/create-reattempt-new-quiz", c.progress.ReattemptQuiz)
	}

	// 管理员接口
	adminGroup := router.Group("/api/admin")
	adminGroup.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		adminGroup.GET("/users", c.auth.ListUsers)
	}
}
