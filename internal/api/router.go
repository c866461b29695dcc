package api

import (
	"net/http"

	"github.com/EvertonDSS/corrida-app11/internal/api/handler"
	"github.com/EvertonDSS/corrida-app11/internal/api/middleware"
	"github.com/EvertonDSS/corrida-app11/internal/config"
	"github.com/EvertonDSS/corrida-app11/internal/metrics"
	"github.com/EvertonDSS/corrida-app11/internal/service"
	"github.com/gin-gonic/gin"
)

// RouterDeps bundles every dependency needed to build the router.
// Populated once in main() and passed to SetupRouter.
type RouterDeps struct {
	ChampionshipSvc *service.ChampionshipService
	SettlementSvc   *service.SettlementService
	Metrics         *metrics.Metrics
	Cfg             *config.Config
}

// SetupRouter creates the public read-only engine: championships, balances
// and settlement reports.
func SetupRouter(deps RouterDeps) *gin.Engine {
	if deps.Cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(deps.Metrics.Middleware())

	// ── CORS ─────────────────────────────────────────────────────────────────
	r.Use(corsMiddleware(deps.Cfg))

	// ── Health check / metrics ───────────────────────────────────────────────
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if deps.Metrics != nil && deps.Cfg.Metrics.Enabled {
		r.GET(deps.Cfg.Metrics.Path, gin.WrapH(deps.Metrics.Handler()))
	}

	// ── Handlers ─────────────────────────────────────────────────────────────
	champH := handler.NewChampionshipHandler(deps.ChampionshipSvc)
	settleH := handler.NewSettlementHandler(deps.SettlementSvc)

	api := r.Group("/api")
	api.Use(middleware.RateLimitMiddleware(deps.Cfg.Server.RateLimitPerMinute))
	{
		api.GET("/balances", settleH.Multiple)

		champs := api.Group("/championships")
		{
			champs.GET("", champH.List)
			champs.GET("/:id", champH.GetByID)
			champs.GET("/:id/pairs", champH.Pairs)
			champs.GET("/:id/balances", settleH.Championship)
			champs.GET("/:id/winners", settleH.Winners)
			champs.GET("/:id/possible-winners", settleH.PossibleWinners)
			champs.GET("/:id/exclusions/details", settleH.ExclusionDetails)
			champs.GET("/:id/groups", settleH.Groups)
			champs.GET("/:id/parties", settleH.Parties)
		}
	}

	return r
}

// ── CORS helper ───────────────────────────────────────────────────────────────

// corsMiddleware allows any origin in development and only same-origin
// requests in production. The surface is read-only.
func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.IsProd() {
			c.Header("Access-Control-Allow-Origin", "*")
		}
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
