package handler

import (
	"net/http"
	"time"

	"github.com/EvertonDSS/corrida-app11/internal/config"
	"github.com/EvertonDSS/corrida-app11/internal/service"
	"github.com/EvertonDSS/corrida-app11/internal/settlement"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DashboardHandler serves the /backoffice/dashboard endpoint.
type DashboardHandler struct {
	champSvc  *service.ChampionshipService
	settleSvc *service.SettlementService
	cfg       *config.Config
}

// NewDashboardHandler creates a DashboardHandler.
func NewDashboardHandler(
	champSvc *service.ChampionshipService,
	settleSvc *service.SettlementService,
	cfg *config.Config,
) *DashboardHandler {
	return &DashboardHandler{champSvc: champSvc, settleSvc: settleSvc, cfg: cfg}
}

// Dashboard godoc
// GET /backoffice/dashboard
//
// Settles every championship at once and summarises the consolidated book.
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	champs, err := h.champSvc.List(ctx)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	roundTypes, err := h.champSvc.ListRoundTypes(ctx)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// ── Consolidated book ────────────────────────────────────────────────────
	var (
		totalStaked = decimal.Zero
		parties     int
		negatives   int
		house       *settlement.PartyBalance
	)
	if len(champs) > 0 {
		ids := make([]uuid.UUID, len(champs))
		for i, ch := range champs {
			ids[i] = ch.ID
		}
		book, err := h.settleSvc.SettleMultiple(ctx, ids, settlement.FilterAll)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		for i := range book.Bettors {
			p := &book.Bettors[i]
			if p.Nome == settlement.HouseName {
				house = p
				continue
			}
			parties++
			totalStaked = totalStaked.Add(p.TotalApostado.Decimal())
			if p.SaldoFinal < 0 {
				negatives++
			}
		}
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"championships":    len(champs),
		"round_types":      len(roundTypes),
		"parties":          parties,
		"negative_parties": negatives,
		"total_staked":     totalStaked.StringFixed(2),
		"house":            house,
		"rounding_policy":  h.settleSvc.Policy(),
		"cache_enabled":    h.cfg.Redis.Enabled,
		"server_time":      time.Now().UTC(),
	})
}
