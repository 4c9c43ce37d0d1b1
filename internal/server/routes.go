// Package server contain implementation of go-gin-server and each route handlers
package server

import (
	"CampusReady-backend/internal/auth"
	"CampusReady-backend/internal/controller/application"
	"CampusReady-backend/internal/controller/catalog"
	"CampusReady-backend/internal/controller/interest"
	"CampusReady-backend/internal/controller/jobs"
	"CampusReady-backend/internal/controller/matching"
	"CampusReady-backend/internal/controller/review"
	"CampusReady-backend/internal/controller/skills"
	"CampusReady-backend/internal/controller/tracker"
	"CampusReady-backend/internal/middleware"
	"CampusReady-backend/internal/model"
	"net/http"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	// Load env
	_ "github.com/joho/godotenv/autoload"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes will register each http endpoint routes to bound Server instance
func (s *MyServer) RegisterRoutes() http.Handler {
	r := gin.Default()

	allowOriginsStr := os.Getenv("ALLOW_ORIGIN")
	allowOrigins := strings.Split(allowOriginsStr, ",")

	lAuth := auth.NewLocalAuthHandler(s.DB)
	catalogCtrl := catalog.NewCatalogController(s.DB)
	trackerCtrl := tracker.NewTrackerController(s.DB, s.Notifier)
	skillCtrl := skills.NewSkillController(s.DB, s.Notifier)
	matchCtrl := matching.NewMatchController(s.DB, s.Cache)
	applicationCtrl := application.NewApplicationController(s.DB)
	interestCtrl := interest.NewInterestController(s.DB, s.Notifier)
	reviewCtrl := review.NewReviewController(s.DB, s.Notifier)
	jobCtrl := jobs.NewJobController(s.DB)

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(middleware.SafeHeader())

	r.GET("/", s.HelloWorldHandler)
	r.GET("/health", s.healthHandler)
	v1 := r.Group("/api/v1")
	{
		authRoute := v1.Group("/auth")
		{
			authRoute.Use(middleware.EnvRateLimitMiddleware())
			authRoute.POST("login", lAuth.LocalLoginHandler)
			authRoute.POST("register", lAuth.LocalRegisterHandler)
		}

		needAuth := v1.Group("")
		{
			needAuth.Use(middleware.RequireAuth(s.DB))

			// Catalog reads are open to everyone; writes are coordinator territory.
			catalogRoute := needAuth.Group("/criteria")
			{
				catalogRoute.GET("", catalogCtrl.GetCriteria)
				catalogRoute.Use(middleware.CheckRole(model.RoleCoordinator, model.RoleManager, model.RoleAdmin))
				catalogRoute.POST("", catalogCtrl.CreateCriterion)
				catalogRoute.PATCH(":id", catalogCtrl.EditCriterion)
				catalogRoute.DELETE(":id", catalogCtrl.DeleteCriterion)
			}

			readinessRoute := needAuth.Group("/readiness")
			{
				readinessRoute.GET("", trackerCtrl.GetReadiness)
				readinessRoute.POST("report", middleware.CheckRole(model.RoleStudent), trackerCtrl.ReportCriterion)

				needPOC := readinessRoute.Group("")
				{
					needPOC.Use(middleware.CheckRole(model.ReviewerRoles...))
					needPOC.PATCH("verify", trackerCtrl.VerifyCriterion)
					needPOC.DELETE("verify", trackerCtrl.UnverifyCriterion)
					needPOC.POST("job-ready", trackerCtrl.ApproveJobReady)
				}
			}

			skillRoute := needAuth.Group("/skills")
			{
				skillRoute.GET("", skillCtrl.ListSkills)
				skillRoute.POST("", middleware.CheckRole(model.RoleStudent), skillCtrl.AddSkill)
				skillRoute.PATCH(":id/decision", middleware.CheckRole(model.ReviewerRoles...), skillCtrl.DecideSkill)
				skillRoute.POST("decisions", middleware.CheckRole(model.ReviewerRoles...), skillCtrl.BulkDecideSkills)
			}

			profileRoute := needAuth.Group("/profile")
			{
				profileRoute.GET("", reviewCtrl.GetProfile)
				profileRoute.PATCH("", middleware.CheckRole(model.RoleStudent), reviewCtrl.EditProfile)
				profileRoute.POST("submit", middleware.CheckRole(model.RoleStudent), reviewCtrl.SubmitProfile)
				profileRoute.GET("pending", middleware.CheckRole(model.ReviewerRoles...), reviewCtrl.ListPendingProfiles)
				profileRoute.PATCH("decision", middleware.CheckRole(model.ReviewerRoles...), reviewCtrl.DecideProfile)
			}

			jobRoute := needAuth.Group("/jobs")
			{
				jobRoute.GET("", jobCtrl.ListJobs)
				jobRoute.GET(":id", jobCtrl.GetJob)
				jobRoute.Use(middleware.CheckRole(model.RoleCoordinator, model.RoleManager, model.RoleAdmin))
				jobRoute.POST("", jobCtrl.CreateJob)
				jobRoute.PUT(":id", jobCtrl.EditJob)
				jobRoute.DELETE(":id", jobCtrl.DeleteJob)
			}

			needStudent := needAuth.Group("")
			{
				needStudent.Use(middleware.CheckRole(model.RoleStudent))
				needStudent.GET("match/:job_id", matchCtrl.GetMatch)
				needStudent.GET("eligibility/:job_id", matchCtrl.GetEligibility)
				needStudent.POST("applications", applicationCtrl.Apply)
				needStudent.GET("applications", applicationCtrl.ListApplications)
				needStudent.DELETE("applications/:job_id", applicationCtrl.Withdraw)
				needStudent.POST("interest", interestCtrl.SubmitInterest)
			}

			needReviewer := needAuth.Group("")
			{
				needReviewer.Use(middleware.CheckRole(model.ReviewerRoles...))
				needReviewer.GET("interest/pending", interestCtrl.ListPendingInterests)
				needReviewer.PATCH("interest/:id/decision", interestCtrl.DecideInterest)
			}

			needCoordinator := needAuth.Group("")
			{
				needCoordinator.Use(middleware.CheckRole(model.RoleCoordinator, model.RoleManager, model.RoleAdmin))
				needCoordinator.PATCH("applications/:id/status", applicationCtrl.UpdateStatus)
			}
		}
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// HelloWorldHandler handle request by return message "Hello World"
func (s *MyServer) HelloWorldHandler(c *gin.Context) {
	resp := make(map[string]string)
	resp["message"] = "Hello World"

	c.JSON(http.StatusOK, resp)
}

func (s *MyServer) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.DB.Health())
}
