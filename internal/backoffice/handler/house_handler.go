package handler

import (
	"net/http"

	"github.com/EvertonDSS/corrida-app11/internal/domain"
	"github.com/EvertonDSS/corrida-app11/internal/service"
	"github.com/gin-gonic/gin"
)

// HouseHandler serves the operator's per-round stakes.
type HouseHandler struct {
	houseSvc *service.HouseService
}

// NewHouseHandler creates a HouseHandler.
func NewHouseHandler(houseSvc *service.HouseService) *HouseHandler {
	return &HouseHandler{houseSvc: houseSvc}
}

// Create godoc
// POST /backoffice/championships/:id/house-stakes
func (h *HouseHandler) Create(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req domain.HouseStakeRequest
	if !bind(c, &req) {
		return
	}
	stake, err := h.houseSvc.Create(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, stake)
}

// List godoc
// GET /backoffice/championships/:id/house-stakes
func (h *HouseHandler) List(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	items, err := h.houseSvc.List(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondList(c, items, len(items))
}

// Get godoc
// GET /backoffice/championships/:id/house-stakes/:stakeId
func (h *HouseHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	stakeID, ok := paramID(c, "stakeId")
	if !ok {
		return
	}
	stake, err := h.houseSvc.Get(c.Request.Context(), id, stakeID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, stake)
}

// Delete godoc
// DELETE /backoffice/championships/:id/house-stakes/:stakeId
func (h *HouseHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	stakeID, ok := paramID(c, "stakeId")
	if !ok {
		return
	}
	if err := h.houseSvc.Delete(c.Request.Context(), id, stakeID); err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"deleted": stakeID})
}
