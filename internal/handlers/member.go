package handlers

import (
	"strconv"

	"github.com/gamepool/backend/internal/services"
	"github.com/gamepool/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type MemberHandler struct {
	memberService *services.MemberService
	ledgerService *services.LedgerService
}

func NewMemberHandler(db *gorm.DB) *MemberHandler {
	return &MemberHandler{
		memberService: services.NewMemberService(db),
		ledgerService: services.NewLedgerService(db),
	}
}

// List returns members, optionally filtered by active flag
// GET /api/members?active=true
func (h *MemberHandler) List(c *gin.Context) {
	var req services.MemberListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	members, err := h.memberService.List(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, members)
}

// Balances returns the derived balance of every active member
// GET /api/members/balances
func (h *MemberHandler) Balances(c *gin.Context) {
	result, err := h.ledgerService.AllBalances()
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

type setActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SetActive flips a member's active flag
// PUT /api/members/:id/active
func (h *MemberHandler) SetActive(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid member id")
		return
	}

	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	member, svcErr := h.memberService.SetActive(uint(id), *req.Active)
	if svcErr != nil {
		response.Error(c, svcErr)
		return
	}

	response.Success(c, member)
}
