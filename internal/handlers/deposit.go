package handlers

import (
	"strconv"

	"github.com/gamepool/backend/internal/services"
	"github.com/gamepool/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type DepositHandler struct {
	depositService *services.DepositService
	ledgerService  *services.LedgerService
}

func NewDepositHandler(db *gorm.DB) *DepositHandler {
	return &DepositHandler{
		depositService: services.NewDepositService(db),
		ledgerService:  services.NewLedgerService(db),
	}
}

// Create records a deposit for a member
// POST /api/deposits
func (h *DepositHandler) Create(c *gin.Context) {
	var req services.CreateDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	deposit, err := h.depositService.Create(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, deposit)
}

// List returns all deposits
// GET /api/deposits
func (h *DepositHandler) List(c *gin.Context) {
	deposits, err := h.depositService.ListAll()
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, deposits)
}

// ListByMember returns one member's deposits
// GET /api/deposits/member/:id
func (h *DepositHandler) ListByMember(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid member id")
		return
	}

	deposits, svcErr := h.depositService.ListByMember(uint(id))
	if svcErr != nil {
		response.Error(c, svcErr)
		return
	}

	response.Success(c, deposits)
}

// Balance returns a member's derived balance
// GET /api/balance/:id
func (h *DepositHandler) Balance(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid member id")
		return
	}

	balance, svcErr := h.ledgerService.Balance(uint(id))
	if svcErr != nil {
		response.Error(c, svcErr)
		return
	}

	response.Success(c, balance)
}
