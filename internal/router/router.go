// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/fuelwatch/compliance-backend/internal/config"
	"github.com/fuelwatch/compliance-backend/internal/handlers"
	"github.com/fuelwatch/compliance-backend/internal/metrics"
	"github.com/fuelwatch/compliance-backend/internal/middleware"
	"github.com/fuelwatch/compliance-backend/internal/services"
	"github.com/fuelwatch/compliance-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	auditService := services.NewAuditService(db)
	periodService := services.NewPeriodService(db)
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize storage service")
	}

	authService := services.NewAuthService(db, &cfg.JWT, auditService)
	companyService := services.NewCompanyService(db, auditService)
	stationService := services.NewStationService(db, auditService)
	catalogService := services.NewCatalogService(db, auditService)
	submissionService := services.NewSubmissionService(db, periodService, storageService, auditService)
	complianceService := services.NewComplianceService(db, periodService)
	forwardService := services.NewForwardService(db, auditService)
	taskService := services.NewTaskService(db, auditService)
	dashboardService := services.NewDashboardService(db, periodService, complianceService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	companyHandler := handlers.NewCompanyHandler(companyService)
	stationHandler := handlers.NewStationHandler(stationService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	periodHandler := handlers.NewPeriodHandler(periodService)
	submissionHandler := handlers.NewSubmissionHandler(submissionService)
	complianceHandler := handlers.NewComplianceHandler(complianceService, dashboardService)
	forwardHandler := handlers.NewForwardHandler(forwardService)
	taskHandler := handlers.NewTaskHandler(taskService)

	utils.SetJWTSecret(cfg.JWT.SecretKey)

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(metrics.Middleware())
	r.Use(middleware.CORS())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditTrail(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})
	r.GET("/metrics", metrics.Handler())

	v1 := r.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", middleware.AuthRequired(authService), authHandler.Me)
		}

		protected := v1.Group("")
		protected.Use(middleware.AuthRequired(authService))
		{
			// Companies
			protected.GET("/companies", companyHandler.ListCompanies)
			protected.GET("/companies/:id", companyHandler.GetCompany)
			protected.GET("/companies/:id/dashboard", complianceHandler.GetCompanyDashboard)

			// Stations
			protected.GET("/stations", stationHandler.ListStations)
			protected.GET("/stations/:id", stationHandler.GetStation)
			protected.GET("/stations/:id/compliance", complianceHandler.GetStationCompliance)
			protected.POST("/stations/:id/submissions/current", submissionHandler.EnsureActiveSubmission)

			// Obligation catalog
			protected.GET("/catalog/versions", catalogHandler.ListVersions)
			protected.GET("/catalog/obligations", catalogHandler.ListObligations)

			// Periods
			protected.GET("/periods/current", periodHandler.GetCurrentPeriod)
			protected.GET("/periods/upcoming", periodHandler.GetUpcomingPeriods)
			protected.GET("/periods/:id", periodHandler.GetPeriod)

			// Submissions
			protected.GET("/submissions", submissionHandler.ListSubmissions)
			protected.GET("/submissions/:id", submissionHandler.GetSubmission)
			protected.POST("/submissions/:id/submit", submissionHandler.Submit)
			protected.POST("/submissions/:id/recall", submissionHandler.Recall)
			protected.POST("/submissions/:id/reopen", submissionHandler.Reopen)
			protected.POST("/submissions/:id/review", submissionHandler.StartReview)
			protected.POST("/submissions/:id/approve", submissionHandler.Approve)
			protected.POST("/submissions/:id/return", submissionHandler.Return)
			protected.PUT("/submissions/:id/checks", submissionHandler.UpsertCheck)
			protected.POST("/submissions/:id/evidence", middleware.UploadRateLimit(), submissionHandler.AddEvidence)
			protected.GET("/evidence/:id/download", submissionHandler.DownloadEvidence)
			protected.DELETE("/evidence/:id", submissionHandler.DeleteEvidence)

			// Customs decision
			protected.PUT("/submissions/:id/status", middleware.OversightRequired(), submissionHandler.UpdateStatus)

			// Bulk forward
			protected.POST("/forward", forwardHandler.BulkForward)
			protected.GET("/forward/batches", forwardHandler.ListBatches)
			protected.GET("/forward/batches/:id", forwardHandler.GetBatch)

			// Tasks
			protected.GET("/tasks", taskHandler.ListTasks)
			protected.GET("/tasks/:id", taskHandler.GetTask)
			protected.POST("/tasks", middleware.OversightRequired(), taskHandler.CreateTask)
			protected.POST("/tasks/:id/reply", taskHandler.Reply)
			protected.POST("/tasks/:id/escalate", middleware.OversightRequired(), taskHandler.Escalate)
			protected.POST("/tasks/:id/close", middleware.OversightRequired(), taskHandler.Close)

			// Oversight dashboard
			protected.GET("/oversight/dashboard", middleware.OversightRequired(), complianceHandler.GetOversightDashboard)

			// Reference-data administration
			admin := protected.Group("/admin")
			admin.Use(middleware.SystemAdminRequired())
			{
				admin.POST("/companies", companyHandler.CreateCompany)
				admin.POST("/stations", stationHandler.CreateStation)
				admin.PUT("/stations/:id", stationHandler.UpdateStation)
				admin.POST("/catalog/versions", catalogHandler.CreateVersion)
				admin.POST("/catalog/obligations", catalogHandler.CreateObligation)
				admin.POST("/periods/generate", periodHandler.GeneratePeriods)
				admin.POST("/users", authHandler.CreateUser)
				admin.DELETE("/users/:id", authHandler.DeactivateUser)
			}
		}
	}

	return r
}
