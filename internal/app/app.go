package app

import (
	"context"
	"learnpath_backend/internal/config"
	"learnpath_backend/internal/controller"
	"learnpath_backend/internal/repository"
	"learnpath_backend/internal/service"
	"learnpath_backend/pkg/database"
	"learnpath_backend/pkg/logger"
	"learnpath_backend/pkg/monitoring"
	"learnpath_backend/pkg/security"
	"learnpath_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/language/v1"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	services *services
}

type repositories struct {
	user            *repository.UserRepository
	personalization *repository.PersonalizationRepository
	assessment      *repository.AssessmentRepository
	roadmap         *repository.RoadmapRepository
	resource        *repository.ResourceRepository
	quiz            *repository.QuizRepository
	progress        *repository.ProgressRepository
}

type services struct {
	auth            *service.AuthService
	personalization *service.PersonalizationService
	assessment      *service.AssessmentService
	curriculum      *service.CurriculumService
	progress        *service.ProgressService
	generation      *service.GenerationService
	search          *service.SearchService
	sentiment       *service.SentimentService
	ownership       *service.OwnershipService
}

type controllers struct {
	auth            *controller.AuthController
	personalization *controller.PersonalizationController
	assessment      *controller.AssessmentController
	roadmap         *controller.RoadmapController
	progress        *controller.ProgressController
	health          *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:            repository.NewUserRepository(db),
		personalization: repository.NewPersonalizationRepository(db),
		assessment:      repository.NewAssessmentRepository(db),
		roadmap:         repository.NewRoadmapRepository(db),
		resource:        repository.NewResourceRepository(db),
		quiz:            repository.NewQuizRepository(db),
		progress:        repository.NewProgressRepository(db),
	}
}

// initServices 外部客户端在启动时构建一次，注入各服务
func (a *App) initServices(ctx context.Context, repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	gen, err := service.NewGenerationService(ctx, cfg.AI)
	if err != nil {
		logger.Log.Fatal("Failed to initialize generation client", zap.Error(err))
	}
	s.generation = gen

	googleKey := option.WithAPIKey(cfg.Google.APIKey)
	yt, err := youtube.NewService(ctx, googleKey)
	if err != nil {
		logger.Log.Fatal("Failed to initialize youtube client", zap.Error(err))
	}
	cs, err := customsearch.NewService(ctx, googleKey)
	if err != nil {
		logger.Log.Fatal("Failed to initialize customsearch client", zap.Error(err))
	}
	lang, err := language.NewService(ctx, googleKey)
	if err != nil {
		logger.Log.Fatal("Failed to initialize language client", zap.Error(err))
	}

	s.sentiment = service.NewSentimentService(yt, lang, rdb)
	s.search = service.NewSearchService(yt, cs, s.sentiment, rdb, cfg.Google)
	s.ownership = service.NewOwnershipService(repos.roadmap, repos.resource, rdb)

	s.auth = service.NewAuthService(repos.user, cfg)
	s.personalization = service.NewPersonalizationService(repos.personalization)
	s.assessment = service.NewAssessmentService(s.generation, repos.assessment, repos.personalization)
	s.curriculum = service.NewCurriculumService(
		db,
		s.generation,
		s.search,
		s.ownership,
		repos.roadmap,
		repos.resource,
		repos.quiz,
		repos.assessment,
		repos.personalization,
		repos.progress,
	)
	s.progress = service.NewProgressService(
		db,
		s.generation,
		s.search,
		s.ownership,
		repos.roadmap,
		repos.resource,
		repos.quiz,
		repos.progress,
		repos.user,
	)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:            controller.NewAuthController(s.auth),
		personalization: controller.NewPersonalizationController(s.personalization),
		assessment:      controller.NewAssessmentController(s.assessment),
		roadmap:         controller.NewRoadmapController(s.curriculum),
		progress:        controller.NewProgressController(s.progress),
		health:          controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	gin.SetMode(cfg.Server.Mode)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	// 仅迁移模式不需要外部客户端
	if cfg.MigrateOnly {
		return app
	}

	ctx := context.Background()
	repos := app.initRepositories(db)
	services := app.initServices(ctx, repos, cfg, db, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("learnpath-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	if a.services != nil && a.services.generation != nil {
		a.services.generation.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
