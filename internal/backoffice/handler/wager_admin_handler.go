package handler

import (
	"net/http"

	"github.com/EvertonDSS/corrida-app11/internal/domain"
	"github.com/EvertonDSS/corrida-app11/internal/service"
	"github.com/gin-gonic/gin"
)

// WagerAdminHandler serves round wager batches.
type WagerAdminHandler struct {
	wagerSvc *service.WagerService
}

// NewWagerAdminHandler creates a WagerAdminHandler.
func NewWagerAdminHandler(wagerSvc *service.WagerService) *WagerAdminHandler {
	return &WagerAdminHandler{wagerSvc: wagerSvc}
}

// Replace godoc
// PUT /backoffice/championships/:id/round-types/:rtId/rounds/:roundName/wagers
//
// The body is a tokenized slip batch; the round name comes from the path.
func (h *WagerAdminHandler) Replace(c *gin.Context) {
	champID, ok := paramID(c, "id")
	if !ok {
		return
	}
	rtID, ok := paramID(c, "rtId")
	if !ok {
		return
	}
	var batch domain.SlipBatch
	if !bind(c, &batch) {
		return
	}
	batch.RoundName = c.Param("roundName")

	res, err := h.wagerSvc.ReplaceBatch(c.Request.Context(), champID, rtID, &batch)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, res)
}

// List godoc
// GET /backoffice/championships/:id/round-types/:rtId/rounds/:roundName/wagers
func (h *WagerAdminHandler) List(c *gin.Context) {
	champID, ok := paramID(c, "id")
	if !ok {
		return
	}
	rtID, ok := paramID(c, "rtId")
	if !ok {
		return
	}
	items, err := h.wagerSvc.ListRound(c.Request.Context(), champID, rtID, c.Param("roundName"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondList(c, items, len(items))
}
