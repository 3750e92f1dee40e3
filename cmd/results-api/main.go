package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/brightclass/results-api/api/swagger"
	"github.com/brightclass/results-api/internal/handler"
	"github.com/brightclass/results-api/internal/middleware"
	"github.com/brightclass/results-api/internal/models"
	"github.com/brightclass/results-api/internal/repository"
	"github.com/brightclass/results-api/internal/service"
	"github.com/brightclass/results-api/pkg/cache"
	"github.com/brightclass/results-api/pkg/config"
	"github.com/brightclass/results-api/pkg/database"
	"github.com/brightclass/results-api/pkg/logger"
	corsmiddleware "github.com/brightclass/results-api/pkg/middleware/cors"
	reqidmiddleware "github.com/brightclass/results-api/pkg/middleware/requestid"
)

// @title BrightClass Results API
// @version 1.0.0
// @description Result computation and publication engine
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	validate := validator.New()

	// Repositories.
	students := repository.NewStudentRepository(db)
	publications := repository.NewPublicationRepository(db)
	views := repository.NewResultViewRepository(db)
	assignments := repository.NewAssignmentRepository(db)
	rollovers := repository.NewRolloverRepository(db)
	settings := repository.NewSettingsRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Results.RankingCacheTTL, logr, cfg.Results.CacheEnabled)
	tokenSvc := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.Expiration)
	settingsSvc := service.NewSettingsService(settings, validate, logr)
	scoreSvc := service.NewScoreService(students, publications, settings, cacheSvc, validate, logr)
	publicationSvc := service.NewPublicationService(publications, students, settings, views, assignments, cacheSvc, metricsSvc, logr)
	rankingSvc := service.NewRankingService(students, publications, settings, cacheSvc, cfg.Results.RankingCacheTTL, logr)
	subjectSvc := service.NewSubjectConfigService(settings, students, settings, validate, logr)
	rolloverSvc := service.NewRolloverService(rollovers, students, settings, settings, subjectSvc, validate, logr)
	assignmentSvc := service.NewAssignmentService(assignments, validate, logr)
	exportSvc := service.NewExportService(publications, rankingSvc, nil, nil, cfg.Results.ExportsEnabled, logr)

	// Handlers.
	scoreHandler := handler.NewScoreHandler(scoreSvc)
	resultHandler := handler.NewResultHandler(publicationSvc)
	rankingHandler := handler.NewRankingHandler(rankingSvc)
	rolloverHandler := handler.NewRolloverHandler(rolloverSvc)
	configHandler := handler.NewConfigHandler(settingsSvc, subjectSvc)
	assignmentHandler := handler.NewAssignmentHandler(assignmentSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db, redisClient)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(tokenSvc))

	staff := api.Group("")
	staff.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher))
	{
		staff.PUT("/scores", scoreHandler.Save)
		staff.GET("/scores/classes/:classname/completeness", scoreHandler.Completeness)
		staff.POST("/results/publish", resultHandler.Publish)
		staff.GET("/results/classes/:classname", resultHandler.ClassResults)
		staff.GET("/rankings/classes/:classname", rankingHandler.ClassRanking)
		staff.GET("/exports/classes/:classname", exportHandler.ClassResultSheet)
		staff.GET("/assignments", assignmentHandler.List)
	}

	admin := api.Group("")
	admin.Use(middleware.RequireRoles(models.RoleAdmin))
	{
		admin.POST("/results/unpublish", resultHandler.Unpublish)
		admin.GET("/results/status", resultHandler.Statuses)
		admin.POST("/rollover", rolloverHandler.Rollover)
		admin.POST("/rollover/promotions", rolloverHandler.Promote)
		admin.GET("/config/school", configHandler.School)
		admin.PUT("/config/thresholds", configHandler.SaveThresholds)
		admin.GET("/config/assessment/:level", configHandler.Assessment)
		admin.PUT("/config/assessment", configHandler.SaveAssessment)
		admin.GET("/config/subjects/:classname", configHandler.SubjectConfig)
		admin.PUT("/config/subjects", configHandler.SaveSubjectConfig)
		admin.DELETE("/config/subjects/:classname", configHandler.DeleteSubjectConfig)
		admin.POST("/config/subjects/:classname/sync", configHandler.SyncSubjects)
		admin.POST("/assignments", assignmentHandler.Assign)
		admin.DELETE("/assignments/:classname", assignmentHandler.Remove)
		admin.GET("/metrics/snapshot", metricsHandler.Snapshot)
	}

	// Students may read their own published results.
	student := api.Group("")
	student.Use(middleware.RBAC(string(models.RoleAdmin), string(models.RoleTeacher), "SELF"))
	{
		student.GET("/results/students/:studentId", resultHandler.StudentResult)
		student.GET("/results/students/:studentId/terms", resultHandler.StudentTerms)
		student.GET("/rankings/students/:studentId", rankingHandler.StudentStanding)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("forced shutdown", zap.Error(err))
	}
}
