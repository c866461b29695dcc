package handler

import (
	"net/http"

	"github.com/EvertonDSS/corrida-app11/internal/domain"
	"github.com/EvertonDSS/corrida-app11/internal/service"
	"github.com/gin-gonic/gin"
)

// RulesHandler serves the settlement rules an operator sets after the fact:
// excluded pairs, declared winners, round overrides and possible winners.
type RulesHandler struct {
	exclusionSvc *service.ExclusionService
	winnerSvc    *service.WinnerService
}

// NewRulesHandler creates a RulesHandler.
func NewRulesHandler(exclusionSvc *service.ExclusionService, winnerSvc *service.WinnerService) *RulesHandler {
	return &RulesHandler{exclusionSvc: exclusionSvc, winnerSvc: winnerSvc}
}

// ── Exclusions ──────────────────────────────────────────────────────────────

// AddExclusion godoc
// POST /backoffice/championships/:id/exclusions
func (h *RulesHandler) AddExclusion(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req domain.ExclusionRequest
	if !bind(c, &req) {
		return
	}
	e, err := h.exclusionSvc.Add(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, e)
}

// ListExclusions godoc
// GET /backoffice/championships/:id/exclusions
func (h *RulesHandler) ListExclusions(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	items, err := h.exclusionSvc.List(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondList(c, items, len(items))
}

// DeleteExclusion godoc
// DELETE /backoffice/championships/:id/exclusions/:exclusionId
func (h *RulesHandler) DeleteExclusion(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	exID, ok := paramID(c, "exclusionId")
	if !ok {
		return
	}
	if err := h.exclusionSvc.Delete(c.Request.Context(), id, exID); err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"deleted": exID})
}

// ── Winners ─────────────────────────────────────────────────────────────────

// ReplaceWinners godoc
// PUT /backoffice/championships/:id/winners
func (h *RulesHandler) ReplaceWinners(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req domain.WinnersRequest
	if !bind(c, &req) {
		return
	}
	items, err := h.winnerSvc.ReplaceWinners(c.Request.Context(), id, req.ContestantIDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondList(c, items, len(items))
}

// AddWinner godoc
// POST /backoffice/championships/:id/winners
func (h *RulesHandler) AddWinner(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req domain.WinnerRequest
	if !bind(c, &req) {
		return
	}
	items, err := h.winnerSvc.AddWinner(c.Request.Context(), id, req.ContestantID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondList(c, items, len(items))
}

// ListWinners godoc
// GET /backoffice/championships/:id/winners
func (h *RulesHandler) ListWinners(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	items, err := h.winnerSvc.ListWinners(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondList(c, items, len(items))
}

// ── Round overrides ─────────────────────────────────────────────────────────

// UpsertOverride godoc
// PUT /backoffice/championships/:id/overrides
func (h *RulesHandler) UpsertOverride(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req domain.OverrideRequest
	if !bind(c, &req) {
		return
	}
	o, err := h.winnerSvc.UpsertOverride(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, o)
}

// ListOverrides godoc
// GET /backoffice/championships/:id/overrides
func (h *RulesHandler) ListOverrides(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	items, err := h.winnerSvc.ListOverrides(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondList(c, items, len(items))
}

// DeleteOverride godoc
// DELETE /backoffice/championships/:id/overrides/:roundName
func (h *RulesHandler) DeleteOverride(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	round := c.Param("roundName")
	if err := h.winnerSvc.DeleteOverride(c.Request.Context(), id, round); err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"deleted": round})
}

// ── Possible winners ────────────────────────────────────────────────────────

// DefinePossibleWinners godoc
// PUT /backoffice/championships/:id/possible-winners
func (h *RulesHandler) DefinePossibleWinners(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req domain.PossibleWinnersRequest
	if !bind(c, &req) {
		return
	}
	items, err := h.winnerSvc.DefinePossibleWinners(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondList(c, items, len(items))
}

// MarkPossibleWinner godoc
// POST /backoffice/championships/:id/possible-winners/mark
func (h *RulesHandler) MarkPossibleWinner(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req domain.MarkWinnerRequest
	if !bind(c, &req) {
		return
	}
	items, err := h.winnerSvc.MarkPossibleWinner(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondList(c, items, len(items))
}

// ListPossibleWinners godoc
// GET /backoffice/championships/:id/possible-winners
func (h *RulesHandler) ListPossibleWinners(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	items, err := h.winnerSvc.ListPossibleWinners(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondList(c, items, len(items))
}
