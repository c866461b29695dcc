package handler

import (
	"net/http"

	"github.com/EvertonDSS/corrida-app11/internal/api/middleware"
	"github.com/EvertonDSS/corrida-app11/internal/domain"
	"github.com/EvertonDSS/corrida-app11/internal/service"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// ChampionshipAdminHandler serves championship, round type and pair roster
// endpoints.
type ChampionshipAdminHandler struct {
	champSvc *service.ChampionshipService
}

// NewChampionshipAdminHandler creates a ChampionshipAdminHandler.
func NewChampionshipAdminHandler(champSvc *service.ChampionshipService) *ChampionshipAdminHandler {
	return &ChampionshipAdminHandler{champSvc: champSvc}
}

// ── Championships ───────────────────────────────────────────────────────────

// Create godoc
// POST /backoffice/championships
func (h *ChampionshipAdminHandler) Create(c *gin.Context) {
	var req domain.NameRequest
	if !bind(c, &req) {
		return
	}
	champ, err := h.champSvc.Create(c.Request.Context(), req.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	log.WithFields(log.Fields{
		"operator":        middleware.GetOperator(c),
		"championship_id": champ.ID,
	}).Info("championship created")
	respondSuccess(c, http.StatusCreated, champ)
}

// List godoc
// GET /backoffice/championships
func (h *ChampionshipAdminHandler) List(c *gin.Context) {
	items, err := h.champSvc.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondList(c, items, len(items))
}

// Delete godoc
// DELETE /backoffice/championships/:id
func (h *ChampionshipAdminHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	summary, err := h.champSvc.Delete(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, summary)
}

// ── Pairs ───────────────────────────────────────────────────────────────────

// CreatePair godoc
// POST /backoffice/championships/:id/pairs
func (h *ChampionshipAdminHandler) CreatePair(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req domain.CreatePairRequest
	if !bind(c, &req) {
		return
	}
	pair, err := h.champSvc.CreatePair(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, pair)
}

// ListPairs godoc
// GET /backoffice/championships/:id/pairs
func (h *ChampionshipAdminHandler) ListPairs(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	pairs, err := h.champSvc.ListPairs(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondList(c, pairs, len(pairs))
}

// ── Round types ─────────────────────────────────────────────────────────────

// CreateRoundType godoc
// POST /backoffice/round-types
func (h *ChampionshipAdminHandler) CreateRoundType(c *gin.Context) {
	var req domain.NameRequest
	if !bind(c, &req) {
		return
	}
	rt, err := h.champSvc.CreateRoundType(c.Request.Context(), req.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, rt)
}

// ListRoundTypes godoc
// GET /backoffice/round-types
func (h *ChampionshipAdminHandler) ListRoundTypes(c *gin.Context) {
	items, err := h.champSvc.ListRoundTypes(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondList(c, items, len(items))
}

// UpdateRoundType godoc
// PUT /backoffice/round-types/:rtId
func (h *ChampionshipAdminHandler) UpdateRoundType(c *gin.Context) {
	id, ok := paramID(c, "rtId")
	if !ok {
		return
	}
	var req domain.NameRequest
	if !bind(c, &req) {
		return
	}
	rt, err := h.champSvc.RenameRoundType(c.Request.Context(), id, req.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, rt)
}

// DeleteRoundType godoc
// DELETE /backoffice/round-types/:rtId
func (h *ChampionshipAdminHandler) DeleteRoundType(c *gin.Context) {
	id, ok := paramID(c, "rtId")
	if !ok {
		return
	}
	if err := h.champSvc.DeleteRoundType(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"deleted": id})
}
