package http

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Sketch/internal/adapters/signal"
	"github.com/dkeye/Sketch/internal/app"
	"github.com/dkeye/Sketch/internal/config"
)

// ClientTokenMiddleware tags each browser with a stable cookie token.
// It identifies a returning client in logs; the per-connection session
// id is minted separately at upgrade time.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = uuid.NewString()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

// SetupRouter wires HTTP routes (REST + WS) with the orchestrator.
// - Static files are served from cfg.StaticPath.
// - Room REST lives at the root, matching what clients already call.
// - WebSocket upgrade lives at /api/ws.
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
	r.Use(sessions.Sessions("SketchSessions", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	api := &API{Rooms: orch.Rooms}
	r.GET("/create-room", api.CreateRoom)
	r.GET("/health", api.Health)

	group := r.Group("/api")
	group.GET("/rooms", api.ListRooms)
	group.GET("/recent-room", api.RecentRoom)

	ctrl := signal.NewSessionWSController(orch, cfg)
	group.GET("/ws", func(c *gin.Context) {
		ctrl.HandleSession(ctx, c)
	})

	return r
}
