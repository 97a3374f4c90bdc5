package api

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/gin-blog/config"
	_ "github.com/d60-Lab/gin-blog/docs"
	"github.com/d60-Lab/gin-blog/internal/api/handler"
	"github.com/d60-Lab/gin-blog/internal/api/middleware"
)

// NewRouter 组装中间件与路由
func NewRouter(cfg *config.Config, h *handler.Handler) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)
	handler.RegisterValidatorNames()

	r := gin.New()
	r.Use(middleware.Recovery(), middleware.Logger())
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.GET("/healthz", h.Health)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	writes := []gin.HandlerFunc{}
	if cfg.RateLimit.Enabled {
		writes = append(writes, middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst).Middleware())
	}

	v1 := r.Group("/api/v1")
	{
		v1.GET("/posts", h.ListPosts)
		v1.GET("/posts/:slug", h.GetPost)
		v1.POST("/posts", append(writes, h.CreatePost)...)
		v1.POST("/comments", append(writes, h.AddComment)...)
		v1.POST("/tags/suggest", append(writes, h.SuggestTags)...)
	}
	return r
}
