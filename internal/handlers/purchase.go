package handlers

import (
	"strconv"

	"github.com/gamepool/backend/internal/middleware"
	"github.com/gamepool/backend/internal/services"
	"github.com/gamepool/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PurchaseHandler struct {
	settlementService *services.SettlementService
	purchaseService   *services.PurchaseService
}

func NewPurchaseHandler(db *gorm.DB, groupSize int) *PurchaseHandler {
	return &PurchaseHandler{
		settlementService: services.NewSettlementService(db, groupSize),
		purchaseService:   services.NewPurchaseService(db),
	}
}

// SettleFromProposal executes the purchase of a voted proposal
// POST /api/purchases/from-proposal/:id
func (h *PurchaseHandler) SettleFromProposal(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid proposal id")
		return
	}

	var req services.SettleFromProposalRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	}

	result, svcErr := h.settlementService.FromProposal(uint(id), &req, middleware.GetMemberID(c))
	if svcErr != nil {
		response.Error(c, svcErr)
		return
	}

	response.Created(c, result)
}

// SettleManual executes a purchase outside any voting round
// POST /api/purchases
func (h *PurchaseHandler) SettleManual(c *gin.Context) {
	var req services.ManualPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.settlementService.Manual(&req, middleware.GetMemberID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// List returns all purchases
// GET /api/purchases
func (h *PurchaseHandler) List(c *gin.Context) {
	purchases, err := h.purchaseService.List()
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, purchases)
}

// Get returns a purchase with its share breakdown
// GET /api/purchases/:id
func (h *PurchaseHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid purchase id")
		return
	}

	detail, svcErr := h.purchaseService.Get(uint(id))
	if svcErr != nil {
		response.Error(c, svcErr)
		return
	}

	response.Success(c, detail)
}

// MyPendingShares lists the logged-in member's unpaid shares
// GET /api/purchases/my-shares/pending
func (h *PurchaseHandler) MyPendingShares(c *gin.Context) {
	result, err := h.purchaseService.PendingShares(middleware.GetMemberID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
