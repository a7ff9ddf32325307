package server

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/onlyplans/server/config"
	"github.com/onlyplans/server/internal/handlers"
	"github.com/onlyplans/server/internal/mailer"
	"github.com/onlyplans/server/internal/metrics"
	"github.com/onlyplans/server/internal/middleware"
	"github.com/onlyplans/server/internal/models"
	"github.com/onlyplans/server/internal/scheduler"
)

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	m := mailer.New(config.LoadMailConfig())

	reminders := scheduler.New(db, m)
	reminders.Start(context.Background())

	promMetrics := metrics.New()

	r := gin.Default()
	r.Use(promMetrics.Middleware())

	corsConfig := cors.DefaultConfig()
	origin := os.Getenv("CORS_ORIGIN")
	if origin == "" {
		origin = "http://localhost:5173"
	}
	corsConfig.AllowOrigins = []string{origin}
	corsConfig.AllowCredentials = true
	corsConfig.AddAllowHeaders("Authorization")
	r.Use(cors.New(corsConfig))

	r.Static("/uploads", "./uploads")

	r.GET("/metrics", promMetrics.Handler())

	setupRoutes(r, db, m)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return r.Run(":" + port)
}

func setupRoutes(r *gin.Engine, db *gorm.DB, m *mailer.Mailer) {
	r.Use(middleware.DatabaseMiddleware(db))
	r.Use(middleware.MailerMiddleware(m))

	api := r.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"success": true, "message": "OK"})
	})

	auth := api.Group("/auth")
	{
		auth.POST("/register", handlers.Register)
		auth.POST("/login", handlers.Login)
		auth.GET("/logout", handlers.Logout)
		auth.POST("/forgot-password", handlers.ForgotPassword)
		auth.POST("/reset-password/:token", handlers.ResetPassword)
		auth.GET("/me", middleware.JWTAuthMiddleware(), handlers.Me)
	}

	events := api.Group("/events")
	{
		events.GET("", middleware.OptionalJWTAuthMiddleware(), handlers.ListEvents)
		events.GET("/:id", handlers.GetEvent)

		events.POST("", middleware.JWTAuthMiddleware(), middleware.RequireRoles(models.RoleAdmin), handlers.CreateEvent)
		events.PUT("/:id", middleware.JWTAuthMiddleware(), middleware.RequireEventManager(), handlers.UpdateEvent)
		events.DELETE("/:id", middleware.JWTAuthMiddleware(), middleware.RequireRoles(models.RoleAdmin), handlers.DeleteEvent)
		events.PATCH("/:id/status", middleware.JWTAuthMiddleware(), middleware.RequireRoles(models.RoleAdmin), handlers.UpdateEventStatus)
		events.PUT("/:id/speakers/:speakerIndex/image", middleware.JWTAuthMiddleware(), middleware.RequireRoles(models.RoleAdmin), handlers.UpdateSpeakerImage)

		events.POST("/:id/register", middleware.JWTAuthMiddleware(), handlers.RegisterForEvent)
		events.POST("/:id/reviews", middleware.JWTAuthMiddleware(), handlers.CreateReview)

		events.GET("/:id/registrations", middleware.JWTAuthMiddleware(), middleware.RequireEventManager(), handlers.ListEventRegistrations)
		events.PUT("/:id/registrations/:registrationId", middleware.JWTAuthMiddleware(), middleware.RequireEventManager(), handlers.UpdateRegistrationStatus)
		events.GET("/:id/export", middleware.JWTAuthMiddleware(), middleware.RequireEventManager(), handlers.ExportEventRegistrations)

		events.POST("/:id/volunteers", middleware.JWTAuthMiddleware(), middleware.RequireRoles(models.RoleAdmin), handlers.AssignVolunteers)
		events.DELETE("/:id/volunteers/:volunteerId", middleware.JWTAuthMiddleware(), middleware.RequireRoles(models.RoleAdmin), handlers.UnassignVolunteer)

		events.PUT("/:id/registration-form", middleware.JWTAuthMiddleware(), middleware.RequireRoles(models.RoleAdmin, models.RoleVolunteer), handlers.UpdateRegistrationForm)
	}

	forms := api.Group("/forms")
	{
		forms.GET("/event/:eventId", handlers.GetFormByEvent)

		staff := forms.Group("", middleware.JWTAuthMiddleware(), middleware.RequireRoles(models.RoleAdmin, models.RoleVolunteer))
		{
			staff.POST("", handlers.CreateForm)
			staff.PUT("/:id", handlers.UpdateForm)
			staff.DELETE("/:id", handlers.DeleteForm)
			staff.GET("/:id/export", handlers.ExportFormResponses)
		}
	}

	volunteers := api.Group("/volunteers")
	volunteers.Use(middleware.JWTAuthMiddleware())
	{
		volunteers.GET("", middleware.RequireRoles(models.RoleAdmin), handlers.ListVolunteers)
		volunteers.POST("/:userId", middleware.RequireRoles(models.RoleAdmin), handlers.MakeVolunteer)
		volunteers.DELETE("/:userId", middleware.RequireRoles(models.RoleAdmin), handlers.RemoveVolunteer)
		volunteers.GET("/my-events", middleware.RequireRoles(models.RoleVolunteer), handlers.MyEvents)
		volunteers.GET("/:userId/dashboard", middleware.RequireRoles(models.RoleVolunteer, models.RoleAdmin), handlers.VolunteerDashboard)
	}

	users := api.Group("/users")
	users.Use(middleware.JWTAuthMiddleware())
	{
		users.GET("", middleware.RequireRoles(models.RoleAdmin), handlers.ListUsers)
		users.GET("/:id", handlers.GetUser)
		users.PUT("/:id", handlers.UpdateUser)
		users.PUT("/:id/role", middleware.RequireRoles(models.RoleAdmin), handlers.UpdateUserRole)
		users.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), handlers.DeleteUser)
		users.PUT("/:id/profile-picture", handlers.UpdateProfilePicture)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.JWTAuthMiddleware(), middleware.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/statistics", handlers.GetStatistics)
	}

	api.POST("/contact", handlers.SubmitContactForm)
}
