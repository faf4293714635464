package routes

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/hxzhou/filebin/config"
	"github.com/hxzhou/filebin/controllers"
	"github.com/hxzhou/filebin/middleware"
	"github.com/hxzhou/filebin/store"
	"github.com/hxzhou/filebin/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(tokens store.TokenStore, docs store.DocumentStore, blobs store.BlobStore) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(utils.GinLogger())
	r.Use(utils.GinRecovery())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Token"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	appController := controllers.NewAppController(tokens, docs)
	authController := controllers.NewAuthController(tokens, docs)
	filesController := controllers.NewFilesController(tokens, docs, blobs)

	authed := middleware.AuthRequired(tokens)

	r.GET("/status", appController.Status)
	r.GET("/stats", appController.Stats)

	r.GET("/connect", middleware.RateLimitMiddleware(), authController.Connect)
	r.GET("/disconnect", authController.Disconnect)

	r.POST("/files", authed, filesController.Upload)
	r.GET("/files", authed, filesController.Index)
	r.GET("/files/:id", authed, filesController.Show)
	r.PUT("/files/:id/publish", authed, filesController.Publish)
	r.PUT("/files/:id/unpublish", authed, filesController.Unpublish)
	// Content is visibility-gated inside the handler; the token is optional here.
	r.GET("/files/:id/data", filesController.Content)

	r.NoRoute(func(ctx *gin.Context) {
		utils.NotFound(ctx)
	})

	return r
}
