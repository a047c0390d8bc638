package api

import (
	"joja_garden/internal/config"     // Custom package for configuration
	"joja_garden/internal/middleware" // Custom package for middleware
	"joja_garden/internal/validation" // Custom binding tags

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// NewRouter wires every route of the service. rdb may be nil, which disables caching.
func NewRouter(db *gorm.DB, rdb *redis.Client, cfg *config.Config) (*gin.Engine, error) {
	if err := validation.Register(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.RequestLogger(), gin.Recovery())

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		return nil, err
	}

	auth := middleware.JWTAuthMiddleware(cfg.JWTSecret)
	adminOnly := middleware.AdminOnlyMiddleware(db)
	loginLimiter := middleware.NewRateLimiter(cfg.LoginRatePerMin)

	// Public routes
	r.GET("/health", HealthHandler(db, rdb))
	r.POST("/auth/token", loginLimiter.Middleware(), LoginHandler(db, cfg.JWTSecret, cfg.TokenTTL))
	r.POST("/admins", middleware.OptionalJWTMiddleware(cfg.JWTSecret), CreateAdminHandler(db)) // Open until the first admin exists
	r.GET("/users/email", EmailByCPFHandler(db))                                               // Password recovery hint

	// Current account
	me := r.Group("/me", auth)
	me.GET("", MeHandler(db))
	me.PUT("/password", ChangePasswordHandler(db))

	// Administration
	admins := r.Group("/admins", auth, adminOnly)
	admins.GET("/:id", GetAdminHandler(db))
	admins.DELETE("/:id", DeleteAdminHandler(db))

	users := r.Group("/users", auth, adminOnly)
	users.POST("", CreateUserHandler(db))
	users.GET("", ListUsersHandler(db))
	users.GET("/lookup", LookupUserHandler(db))
	users.DELETE("/:id", DeleteUserHandler(db))
	users.PUT("/:id/password", ResetPasswordHandler(db))
	users.POST("/:id/plants", AssignPlantHandler(db))

	// Catalog: reads for any account, writes for admins
	catalog := r.Group("/catalog", auth)
	catalog.GET("", ListCatalogHandler(db, rdb, cfg.CacheTTL))
	catalog.GET("/:id", GetCatalogPlantHandler(db, rdb, cfg.CacheTTL))
	catalog.POST("", adminOnly, CreateCatalogPlantHandler(db, rdb))
	catalog.PUT("/:id", adminOnly, UpdateCatalogPlantHandler(db, rdb))
	catalog.DELETE("/:id", adminOnly, DeleteCatalogPlantHandler(db, rdb))

	// Plants owned by the caller
	plants := r.Group("/plants", auth)
	plants.GET("", ListMyPlantsHandler(db))
	plants.GET("/:id", GetPlantHandler(db))
	plants.PUT("/:id", UpdatePlantHandler(db))
	plants.DELETE("/:id", DeletePlantHandler(db))
	plants.GET("/:id/schedule", ScheduleHandler(db))
	plants.POST("/:id/actions", CreateActionHandler(db))
	plants.GET("/:id/actions", ListActionsHandler(db))
	plants.POST("/:id/images", CreateImageHandler(db))
	plants.GET("/:id/images", ListImagesHandler(db))
	plants.DELETE("/:id/images/:image_id", DeleteImageHandler(db))

	// Gardens owned by the caller
	gardens := r.Group("/gardens", auth)
	gardens.POST("", CreateGardenHandler(db))
	gardens.GET("", ListGardensHandler(db))
	gardens.GET("/:id", GetGardenHandler(db))
	gardens.DELETE("/:id", DeleteGardenHandler(db))
	gardens.POST("/:id/plants/:plant_id", AddPlantToGardenHandler(db))
	gardens.DELETE("/:id/plants/:plant_id", RemovePlantFromGardenHandler(db))

	return r, nil
}
