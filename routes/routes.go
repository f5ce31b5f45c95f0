package routes

import (
	"strings"

	"elabcrm-backend/config"
	"elabcrm-backend/controllers"
	"elabcrm-backend/middleware"
	"elabcrm-backend/monitoring"
	"elabcrm-backend/services"
	"elabcrm-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Dependencies are the wired services the router exposes. TokenStore may be
// nil, in which case logout is a no-op and tokens are never revoked.
type Dependencies struct {
	Config         config.Config
	DB             *gorm.DB
	Clients        *services.ClientService
	Applications   *services.ApplicationService
	Documents      *services.DocumentService
	Communications *services.CommunicationService
	Auth           *services.AuthService
	Dashboard      *services.DashboardService
	TokenStore     utils.TokenStore
}

func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.Default()

	origins := allowedOrigins(deps.Config.FrontendURL)
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())
	r.Use(middleware.PrometheusMetrics())
	r.Use(middleware.SentryMiddleware())
	r.Use(middleware.ErrorHandler())

	health := controllers.NewHealthController(deps.DB)
	r.GET("/api/health", health.Check)
	r.GET("/metrics", gin.WrapH(monitoring.Handler()))

	var revoked utils.RevocationChecker
	if deps.TokenStore != nil {
		revoked = deps.TokenStore
	}
	requireAuth := utils.AuthMiddleware(deps.Config.JWTSecret, revoked)

	authController := controllers.NewAuthController(deps.Auth, deps.Config.IsProduction())
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)

		auth.Use(requireAuth)
		auth.GET("/me", authController.Me)
		auth.POST("/logout", authController.Logout)
	}

	api := r.Group("/api")
	api.Use(requireAuth)
	{
		clientController := controllers.NewClientController(deps.Clients)
		clients := api.Group("/clients")
		{
			clients.GET("", clientController.GetClients)
			clients.GET("/search", clientController.SearchClients)
			clients.GET("/:id", clientController.GetClient)
			clients.POST("", clientController.CreateClient)
			clients.PUT("/:id", clientController.UpdateClient)
			clients.DELETE("/:id", clientController.DeleteClient)
		}

		applicationController := controllers.NewApplicationController(deps.Applications)
		applications := api.Group("/applications")
		{
			applications.GET("", applicationController.List)
			applications.GET("/:id", applicationController.Get)
			applications.POST("", applicationController.Create)
			applications.PUT("/:id", applicationController.Update)
			applications.DELETE("/:id", applicationController.Delete)
		}

		documentController := controllers.NewDocumentController(deps.Documents)
		documents := api.Group("/documents")
		{
			documents.GET("", documentController.List)
			documents.GET("/:id", documentController.Get)
			documents.POST("", documentController.Create)
			documents.PUT("/:id", documentController.Update)
			documents.DELETE("/:id", documentController.Delete)
		}

		communicationController := controllers.NewCommunicationController(deps.Communications)
		communications := api.Group("/communications")
		{
			communications.GET("", communicationController.List)
			communications.GET("/:id", communicationController.Get)
			communications.POST("", communicationController.Create)
			communications.PUT("/:id", communicationController.Update)
			communications.DELETE("/:id", communicationController.Delete)
		}

		dashboardController := controllers.NewDashboardController(deps.Dashboard)
		api.GET("/dashboard", dashboardController.GetOverview)
	}

	return r
}

// allowedOrigins splits a comma-separated FRONTEND_URL.
func allowedOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, strings.TrimRight(o, "/"))
		}
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}
	return origins
}
