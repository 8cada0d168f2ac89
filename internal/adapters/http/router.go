package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dkeye/Bridge/internal/adapters/signal"
	"github.com/dkeye/Bridge/internal/app"
	"github.com/dkeye/Bridge/internal/config"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

func genClientToken() string {
	idStr := uuid.NewString()
	return idStr
}

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

type GreetRequest struct {
	Name string `json:"name" binding:"required"`
}

type GreetResponse struct {
	Message string `json:"message"`
}

func SetupRouter(ctx context.Context, cfg *config.Config, orch *app.Orchestrator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("BridgeSessions", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	limiter := signal.NewCallRateLimiter(cfg.Hub.CallBudget, cfg.Hub.CallWindow)
	ctrl := signal.NewBridgeWSController(orch, limiter)

	api := r.Group("/api")

	api.GET("/ws/bridge", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("sid", c.GetString("client_token")).Msg("ws bridge endpoint hit")
		ctrl.HandleBridge(ctx, c)
	})

	api.GET("/peers", func(c *gin.Context) {
		c.JSON(http.StatusOK, orch.Roster.Snapshot())
	})

	api.POST("/greet", func(c *gin.Context) {
		var req GreetRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid name"})
			return
		}
		c.JSON(http.StatusOK, GreetResponse{Message: fmt.Sprintf("Hello %s!", req.Name)})
	})

	return r
}
