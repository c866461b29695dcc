package backoffice

import (
	"net/http"

	"github.com/EvertonDSS/corrida-app11/internal/api/middleware"
	"github.com/EvertonDSS/corrida-app11/internal/backoffice/handler"
	"github.com/EvertonDSS/corrida-app11/internal/config"
	"github.com/EvertonDSS/corrida-app11/internal/metrics"
	"github.com/EvertonDSS/corrida-app11/internal/service"
	"github.com/gin-gonic/gin"
)

// BackofficeDeps bundles every dependency needed for the operator router.
type BackofficeDeps struct {
	AuthSvc         *service.AuthService
	ChampionshipSvc *service.ChampionshipService
	WagerSvc        *service.WagerService
	ExclusionSvc    *service.ExclusionService
	WinnerSvc       *service.WinnerService
	GroupSvc        *service.GroupService
	HouseSvc        *service.HouseService
	SettlementSvc   *service.SettlementService
	Metrics         *metrics.Metrics
	Cfg             *config.Config
}

// SetupBackofficeRouter creates the operator Gin engine. Every write to the
// settlement inputs goes through here.
func SetupBackofficeRouter(deps BackofficeDeps) *gin.Engine {
	if deps.Cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(deps.Metrics.Middleware())
	r.Use(middleware.IPWhitelist(deps.Cfg.AllowedIPs()))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authH := handler.NewAuthHandler(deps.AuthSvc)
	dashH := handler.NewDashboardHandler(deps.ChampionshipSvc, deps.SettlementSvc, deps.Cfg)
	champH := handler.NewChampionshipAdminHandler(deps.ChampionshipSvc)
	wagerH := handler.NewWagerAdminHandler(deps.WagerSvc)
	rulesH := handler.NewRulesHandler(deps.ExclusionSvc, deps.WinnerSvc)
	groupH := handler.NewGroupHandler(deps.GroupSvc)
	houseH := handler.NewHouseHandler(deps.HouseSvc)

	bo := r.Group("/backoffice")

	// Public: login and refresh
	auth := bo.Group("/auth")
	{
		auth.POST("/login", authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	op := bo.Group("")
	op.Use(middleware.OperatorAuth(deps.AuthSvc))
	{
		op.GET("/dashboard", dashH.Dashboard)

		// Round types
		rt := op.Group("/round-types")
		{
			rt.GET("", champH.ListRoundTypes)
			rt.POST("", champH.CreateRoundType)
			rt.PUT("/:rtId", champH.UpdateRoundType)
			rt.DELETE("/:rtId", champH.DeleteRoundType)
		}

		// Championships
		ch := op.Group("/championships")
		{
			ch.GET("", champH.List)
			ch.POST("", champH.Create)
			ch.DELETE("/:id", champH.Delete)

			ch.GET("/:id/pairs", champH.ListPairs)
			ch.POST("/:id/pairs", champH.CreatePair)

			ch.GET("/:id/round-types/:rtId/rounds/:roundName/wagers", wagerH.List)
			ch.PUT("/:id/round-types/:rtId/rounds/:roundName/wagers", wagerH.Replace)

			ch.GET("/:id/exclusions", rulesH.ListExclusions)
			ch.POST("/:id/exclusions", rulesH.AddExclusion)
			ch.DELETE("/:id/exclusions/:exclusionId", rulesH.DeleteExclusion)

			ch.GET("/:id/winners", rulesH.ListWinners)
			ch.PUT("/:id/winners", rulesH.ReplaceWinners)
			ch.POST("/:id/winners", rulesH.AddWinner)

			ch.GET("/:id/overrides", rulesH.ListOverrides)
			ch.PUT("/:id/overrides", rulesH.UpsertOverride)
			ch.DELETE("/:id/overrides/:roundName", rulesH.DeleteOverride)

			ch.GET("/:id/possible-winners", rulesH.ListPossibleWinners)
			ch.PUT("/:id/possible-winners", rulesH.DefinePossibleWinners)
			ch.POST("/:id/possible-winners/mark", rulesH.MarkPossibleWinner)

			ch.POST("/:id/groups", groupH.Define)
			ch.POST("/:id/groups/dissolve", groupH.Dissolve)

			ch.GET("/:id/house-stakes", houseH.List)
			ch.POST("/:id/house-stakes", houseH.Create)
			ch.GET("/:id/house-stakes/:stakeId", houseH.Get)
			ch.DELETE("/:id/house-stakes/:stakeId", houseH.Delete)
		}
	}

	return r
}
