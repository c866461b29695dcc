package handler

import (
	"net/http"

	"github.com/EvertonDSS/corrida-app11/internal/service"
	"github.com/gin-gonic/gin"
)

// ChampionshipHandler serves championship query endpoints.
type ChampionshipHandler struct {
	champSvc *service.ChampionshipService
}

// NewChampionshipHandler creates a ChampionshipHandler.
func NewChampionshipHandler(champSvc *service.ChampionshipService) *ChampionshipHandler {
	return &ChampionshipHandler{champSvc: champSvc}
}

// List godoc
// GET /api/championships
func (h *ChampionshipHandler) List(c *gin.Context) {
	items, err := h.champSvc.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondList(c, items, len(items))
}

// GetByID godoc
// GET /api/championships/:id
func (h *ChampionshipHandler) GetByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	champ, err := h.champSvc.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, champ)
}

// Pairs godoc
// GET /api/championships/:id/pairs
func (h *ChampionshipHandler) Pairs(c *gin.Context) {
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
