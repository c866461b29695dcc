package handler

import (
	"net/http"

	"github.com/EvertonDSS/corrida-app11/internal/service"
	"github.com/EvertonDSS/corrida-app11/internal/settlement"
	"github.com/gin-gonic/gin"
)

// GroupHandler serves combined-bettor group definitions.
type GroupHandler struct {
	groupSvc *service.GroupService
}

// NewGroupHandler creates a GroupHandler.
func NewGroupHandler(groupSvc *service.GroupService) *GroupHandler {
	return &GroupHandler{groupSvc: groupSvc}
}

// Define godoc
// POST /backoffice/championships/:id/groups
//
//	{"groups": [{"groupIdentifier": "", "names": ["Ana", "Bruno"]}]}
func (h *GroupHandler) Define(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Groups []settlement.GroupSpec `json:"groups" binding:"required,min=1"`
	}
	if !bind(c, &req) {
		return
	}
	groups, err := h.groupSvc.Define(c.Request.Context(), id, req.Groups)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondList(c, groups, len(groups))
}

// Dissolve godoc
// POST /backoffice/championships/:id/groups/dissolve
//
//	{"groupIdentifier": "ana__bruno"} or {"names": ["Bruno"]} or both
func (h *GroupHandler) Dissolve(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var sel settlement.DissolveSelector
	if !bind(c, &sel) {
		return
	}
	released, err := h.groupSvc.Dissolve(c.Request.Context(), id, sel)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"released": released})
}
