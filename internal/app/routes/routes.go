package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ucu/innovators-hub/internal/app/controllers"
	"github.com/ucu/innovators-hub/internal/app/models/dto"
	"github.com/ucu/innovators-hub/internal/middleware"
)

// ServiceName is reported by the health endpoints
const ServiceName = "innovators-hub"

// Controllers groups the HTTP handlers mounted by SetupRouter
type Controllers struct {
	Auth      *controllers.AuthController
	User      *controllers.UserController
	Project   *controllers.ProjectController
	Faculty   *controllers.FacultyController
	Dashboard *controllers.DashboardController
}

// SetupRouter configures all application routes. apiLimiter may be nil.
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware, apiLimiter gin.HandlerFunc) {
	router.GET("/", health)

	api := router.Group("/api")
	if apiLimiter != nil {
		api.Use(apiLimiter)
	}
	api.GET("/health", health)

	v1 := api.Group("/v1")
	requireAuth := authMiddleware.JWTAuth()

	// --- Org directory (public) ---
	v1.GET("/faculties", c.Faculty.GetAllFaculties)
	v1.GET("/faculties/:id", c.Faculty.GetFacultyByID)
	v1.GET("/departments", c.Faculty.GetAllDepartments)

	auth := v1.Group("/auth")
	{
		auth.POST("/login", c.Auth.Login)
		auth.POST("/forgot-password", c.Auth.ForgotPassword)
		auth.POST("/reset-password/:token", c.Auth.ResetPassword)

		auth.POST("/register", requireAuth, c.Auth.Register)
		auth.POST("/change-password", requireAuth, c.Auth.ChangePassword)
	}

	users := v1.Group("/users", requireAuth)
	{
		users.GET("", c.User.ListUsers)
		users.POST("", c.User.CreateUser)
		users.GET("/profile", c.User.GetProfile)
		users.PUT("/profile", c.User.UpdateProfile)
		users.PUT("/profile/photo", c.User.UpdateProfilePhoto)
		users.GET("/:id", c.User.GetUser)
		users.PUT("/:id", c.User.UpdateUser)
		users.DELETE("/:id", c.User.DeactivateUser)
		users.PATCH("/:id/reactivate", c.User.ReactivateUser)
	}

	projects := v1.Group("/projects")
	{
		// Public gallery
		projects.GET("", c.Project.ListProjects)
		projects.GET("/:id", c.Project.GetProject)
		projects.GET("/:id/comments", c.Project.ListComments)

		projects.GET("/my-projects", requireAuth, c.Project.ListMyProjects)
		projects.GET("/faculty/my-projects", requireAuth, c.Project.ListReviewQueue)
		projects.POST("", requireAuth, c.Project.CreateProject)
		projects.PUT("/:id", requireAuth, c.Project.UpdateProject)
		projects.PATCH("/:id/review", requireAuth, c.Project.ReviewProject)
		projects.DELETE("/:id", requireAuth, c.Project.DeleteProject)
		projects.POST("/:id/comments", requireAuth, c.Project.AddComment)
	}

	v1.GET("/dashboard/stats", requireAuth, c.Dashboard.GetStats)
}

// health reports that the process is serving
func health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.HealthResponse{Status: "ok", Service: ServiceName}, ""))
}
