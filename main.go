package main

import (
	"context"
	"errors"
	"fair-audit/config"
	"fair-audit/models"
	"fair-audit/services"
	"fair-audit/storage"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var assessedLinksCounter prometheus.Counter
var completedRunsCounter prometheus.Counter

func init() {
	assessedLinksCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "assessed_links_total",
			Help: "Total number of data links assessed.",
		},
	)
	completedRunsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "assessment_runs_completed_total",
			Help: "Total number of completed assessment runs.",
		},
	)
	prometheus.MustRegister(assessedLinksCounter, completedRunsCounter)
}

func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey == "" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey != cfg.APISecretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	// Setup Database Connection
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	logging.Info("Successfully connected to assessment database.")

	logging.Info("Running database auto-migration...")
	db.AutoMigrate(&models.Run{}, &models.Assessment{})

	// Setup Services
	var s3Client *s3.Client
	if cfg.ArchiveEnabled() {
		s3Client, err = storage.NewS3Client(cfg)
		if err != nil {
			logging.Fatal("S3 client creation failed", zap.Error(err))
		}
		logging.Info("XML archive enabled", zap.String("bucket", cfg.ArchiveS3Bucket))
	}
	assessmentService := services.NewAssessmentService(cfg, db, logging)
	routerService := services.NewRouterService(cfg, s3Client, logging)

	// Läufe werden sequenziell abgearbeitet, damit die Wartezeiten
	// gegenüber den Drittanbieter-APIs eingehalten werden.
	queue := newRunQueue(assessmentService, db, logging)

	// Setup Router
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(apiKeyAuthMiddleware(cfg))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "fair-audit"})
	})

	// Setup Routes
	setupRunRoutes(router, db, queue, logging)
	setupAssessmentRoutes(router, db, logging)
	setupRouteRoutes(router, routerService, logging)

	// Setup Cron
	cronScheduler := cron.New()
	cronScheduler.AddFunc(cfg.CronSchedule, func() {
		if cfg.WatchInput == "" {
			return
		}
		logging.Info("Running scheduled assessment job...", zap.String("input", cfg.WatchInput))
		run := models.Run{InputPath: cfg.WatchInput, Status: models.RunStatusQueued}
		if err := db.Create(&run).Error; err != nil {
			logging.Error("Cron job failed to create run", zap.Error(err))
			return
		}
		if !queue.Enqueue(run.ID) {
			db.Model(&run).Updates(map[string]interface{}{"status": models.RunStatusFailed, "error": "run queue is full"})
			logging.Warn("Run queue full, scheduled run skipped", zap.Uint("run_id", run.ID))
		}
	})
	cronScheduler.Start()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

// runQueue arbeitet Bewertungsläufe nacheinander in einem einzelnen
// Worker ab. Enqueue blockiert nie; bei voller Warteschlange wird der
// Lauf abgelehnt.
type runQueue struct {
	jobs    chan uint
	service *services.AssessmentService
	db      *gorm.DB
	logger  *zap.Logger
}

func newRunQueue(service *services.AssessmentService, db *gorm.DB, logger *zap.Logger) *runQueue {
	q := &runQueue{
		jobs:    make(chan uint, 16),
		service: service,
		db:      db,
		logger:  logger,
	}
	go q.work()
	return q
}

func (q *runQueue) Enqueue(runID uint) bool {
	select {
	case q.jobs <- runID:
		return true
	default:
		return false
	}
}

func (q *runQueue) work() {
	for runID := range q.jobs {
		q.process(runID)
	}
}

func (q *runQueue) process(runID uint) {
	var run models.Run
	if err := q.db.First(&run, runID).Error; err != nil {
		q.logger.Error("Queued run not found", zap.Uint("run_id", runID), zap.Error(err))
		return
	}

	run.Status = models.RunStatusRunning
	q.db.Save(&run)

	result, err := q.service.RunFile(context.Background(), run.InputPath, run.ID)
	if err != nil {
		run.Status = models.RunStatusFailed
		run.Error = err.Error()
		q.db.Save(&run)
		q.logger.Error("Assessment run failed", zap.Uint("run_id", run.ID), zap.Error(err))
		return
	}

	run.Status = models.RunStatusCompleted
	run.OutputCSV = result.OutputCSV
	run.LogFile = result.LogFile
	run.TotalLinks = result.Summary.Total
	run.AverageScore = result.Summary.AverageScore
	q.db.Save(&run)

	assessedLinksCounter.Add(float64(len(result.Results)))
	completedRunsCounter.Inc()
	q.logger.Info("Assessment run completed",
		zap.Uint("run_id", run.ID),
		zap.Int("links", result.Summary.Total),
		zap.Float64("average_score", result.Summary.AverageScore))
}

func setupRunRoutes(router *gin.Engine, db *gorm.DB, queue *runQueue, log *zap.Logger) {
	rg := router.Group("/runs")

	// POST - Bewertungslauf für eine Eingabedatei einreihen
	rg.POST("/", func(c *gin.Context) {
		var req struct {
			InputPath string `json:"input_path" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body. 'input_path' field is required."})
			return
		}
		if _, err := os.Stat(req.InputPath); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "input file not found"})
			return
		}

		run := models.Run{InputPath: req.InputPath, Status: models.RunStatusQueued}
		if err := db.Create(&run).Error; err != nil {
			log.Error("Failed to create run", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		if !queue.Enqueue(run.ID) {
			db.Model(&run).Updates(map[string]interface{}{"status": models.RunStatusFailed, "error": "run queue is full"})
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run queue is full"})
			return
		}

		log.Info("Assessment run queued", zap.Uint("run_id", run.ID), zap.String("input", run.InputPath))
		c.JSON(http.StatusAccepted, run)
	})

	// Einfacher GET-Endpunkt, um alle Läufe abzurufen
	rg.GET("/", func(c *gin.Context) {
		query := db.Model(&models.Run{})
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}

		var runs []models.Run
		if err := query.Order("created_at desc").Find(&runs).Error; err != nil {
			log.Error("Database query for runs failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, runs)
	})

	rg.GET("/:id", func(c *gin.Context) {
		id := c.Param("id")
		var run models.Run
		if err := db.First(&run, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
				return
			}
			log.Error("DB error fetching run", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, run)
	})

	// GET - Alle Bewertungen eines Laufs
	rg.GET("/:id/assessments", func(c *gin.Context) {
		id := c.Param("id")
		var run models.Run
		if err := db.First(&run, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
				return
			}
			log.Error("DB error fetching run", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		var assessments []models.Assessment
		if err := db.Where("run_id = ?", run.ID).Order("fair_score desc").Find(&assessments).Error; err != nil {
			log.Error("Database query for run assessments failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, assessments)
	})
}

func setupAssessmentRoutes(router *gin.Engine, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/assessments")

	// Einfacher GET-Endpunkt, um alle Bewertungen abzurufen (ohne Filter)
	rg.GET("/", func(c *gin.Context) {
		var assessments []models.Assessment
		if err := db.Find(&assessments).Error; err != nil {
			log.Error("Database query for all assessments failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, assessments)
	})

	// Body-gesteuerter Endpunkt für gefilterte Abfragen
	rg.POST("/query", func(c *gin.Context) {
		type AssessmentQuery struct {
			PaperDOI   string `json:"paper_doi"`
			RunID      *uint  `json:"run_id"`
			Repository string `json:"repository"`
			MinScore   *int   `json:"min_score"`
			Limit      int    `json:"limit"`
		}

		var req AssessmentQuery
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		query := db.Model(&models.Assessment{})

		if req.PaperDOI != "" {
			query = query.Where("paper_doi = ?", req.PaperDOI)
		}
		if req.RunID != nil {
			query = query.Where("run_id = ?", *req.RunID)
		}
		if req.Repository != "" {
			query = query.Where("repository = ?", req.Repository)
		}
		if req.MinScore != nil {
			query = query.Where("fair_score >= ?", *req.MinScore)
		}
		if req.Limit > 0 {
			query = query.Limit(req.Limit)
		}

		var assessments []models.Assessment
		if err := query.Order("fair_score desc, created_at desc").Find(&assessments).Error; err != nil {
			log.Error("Database query for assessments failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, assessments)
	})
}

// setupRouteRoutes konfiguriert den Verlags-Routing-Endpunkt
func setupRouteRoutes(router *gin.Engine, routerService *services.RouterService, log *zap.Logger) {
	rg := router.Group("/route")

	rg.POST("/", func(c *gin.Context) {
		var req struct {
			DOI string `json:"doi" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body. 'doi' field is required."})
			return
		}
		if !strings.Contains(req.DOI, "/") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid DOI format"})
			return
		}

		log.Info("Routing DOI", zap.String("doi", req.DOI))
		reply := routerService.RouteJSON(req.DOI)
		c.JSON(http.StatusOK, reply)
	})
}
