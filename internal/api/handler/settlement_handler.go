package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/EvertonDSS/corrida-app11/internal/domain"
	"github.com/EvertonDSS/corrida-app11/internal/service"
	"github.com/EvertonDSS/corrida-app11/internal/settlement"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SettlementHandler serves balances and settlement reports.
type SettlementHandler struct {
	settleSvc *service.SettlementService
}

// NewSettlementHandler creates a SettlementHandler.
func NewSettlementHandler(settleSvc *service.SettlementService) *SettlementHandler {
	return &SettlementHandler{settleSvc: settleSvc}
}

func queryFilter(c *gin.Context) (settlement.Filter, bool) {
	f, err := settlement.ParseFilter(c.Query("filter"))
	if err != nil {
		respondServiceError(c, err)
		return "", false
	}
	return f, true
}

// Championship godoc
// GET /api/championships/:id/balances?filter=all|negative|positive
func (h *SettlementHandler) Championship(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	filter, ok := queryFilter(c)
	if !ok {
		return
	}
	res, err := h.settleSvc.SettleChampionship(c.Request.Context(), id, filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, res)
}

// Multiple godoc
// GET /api/balances?ids=a,b&filter=negative
func (h *SettlementHandler) Multiple(c *gin.Context) {
	var ids []uuid.UUID
	for _, raw := range strings.Split(c.Query("ids"), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid championship id "+strconv.Quote(raw))
			return
		}
		ids = append(ids, id)
	}
	filter, ok := queryFilter(c)
	if !ok {
		return
	}

	res, err := h.settleSvc.SettleMultiple(c.Request.Context(), ids, filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, res)
}

// Winners godoc
// GET /api/championships/:id/winners
func (h *SettlementHandler) Winners(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	res, err := h.settleSvc.WinnerReport(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondList(c, res, len(res))
}

// PossibleWinners godoc
// GET /api/championships/:id/possible-winners?grouped=true
func (h *SettlementHandler) PossibleWinners(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	grouped := false
	if raw := c.Query("grouped"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			respondServiceError(c, domain.NewValidationError("grouped", "must be a boolean"))
			return
		}
		grouped = v
	}
	res, err := h.settleSvc.PossibleWinners(c.Request.Context(), id, grouped)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, res)
}

// ExclusionDetails godoc
// GET /api/championships/:id/exclusions/details
func (h *SettlementHandler) ExclusionDetails(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	res, err := h.settleSvc.ExclusionDetails(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondList(c, res, len(res))
}

// Groups godoc
// GET /api/championships/:id/groups
func (h *SettlementHandler) Groups(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	res, err := h.settleSvc.Groups(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondList(c, res, len(res))
}

// Parties godoc
// GET /api/championships/:id/parties
func (h *SettlementHandler) Parties(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	res, err := h.settleSvc.Parties(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondList(c, res, len(res))
}
