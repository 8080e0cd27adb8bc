package handlers

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "finbot/internal/docs" // swagger docs
	"finbot/internal/middleware"
)

// RouterConfig collects what the local API serves.
type RouterConfig struct {
	DB     *gorm.DB
	Rates  RateFetcher
	APIKey string
}

// NewRouter builds the local HTTP API.
//
// @title                      finbot local API
// @version                    1.0
// @description                Local HTTP surface of the finbot Telegram bot: exchange rates and health.
// @BasePath                   /api
// @securityDefinitions.apikey APIKey
// @in                         header
// @name                       X-API-Key
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api")
	api.GET("/health", NewHealthHandler(cfg.DB).GetHealth)

	protected := api.Group("", middleware.APIKeyAuth(cfg.APIKey))
	protected.GET("/rates", NewRatesHandler(cfg.Rates).GetRates)

	return router
}
