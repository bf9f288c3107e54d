package handlers

import (
	"strconv"

	"github.com/gamepool/backend/internal/middleware"
	"github.com/gamepool/backend/internal/services"
	"github.com/gamepool/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ProposalHandler struct {
	proposalService *services.ProposalService
	voteService     *services.VoteService
}

func NewProposalHandler(db *gorm.DB) *ProposalHandler {
	return &ProposalHandler{
		proposalService: services.NewProposalService(db),
		voteService:     services.NewVoteService(db),
	}
}

// Create registers a new proposal for the logged-in member
// POST /api/proposals
func (h *ProposalHandler) Create(c *gin.Context) {
	var req services.CreateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	proposal, err := h.proposalService.Create(&req, middleware.GetMemberID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, proposal)
}

// List returns proposals, optionally filtered by status
// GET /api/proposals?status=proposed
func (h *ProposalHandler) List(c *gin.Context) {
	proposals, err := h.proposalService.List(c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, proposals)
}

// Get returns a proposal with its vote detail
// GET /api/proposals/:id
func (h *ProposalHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid proposal id")
		return
	}

	detail, svcErr := h.proposalService.GetWithVotes(uint(id))
	if svcErr != nil {
		response.Error(c, svcErr)
		return
	}

	response.Success(c, detail)
}

// Vote casts the logged-in member's vote on a proposal
// POST /api/proposals/:id/vote
func (h *ProposalHandler) Vote(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid proposal id")
		return
	}

	result, svcErr := h.voteService.Cast(uint(id), middleware.GetMemberID(c))
	if svcErr != nil {
		response.Error(c, svcErr)
		return
	}

	response.Success(c, result)
}

// MyVote reports where the logged-in member's active vote sits
// GET /api/proposals/my-vote
func (h *ProposalHandler) MyVote(c *gin.Context) {
	result, err := h.voteService.MyVote(middleware.GetMemberID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// RemoveVote deletes the logged-in member's active vote
// DELETE /api/proposals/my-vote
func (h *ProposalHandler) RemoveVote(c *gin.Context) {
	result, err := h.voteService.Remove(middleware.GetMemberID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// SelectWinner resolves the current voting round
// POST /api/proposals/:id/select-winner
func (h *ProposalHandler) SelectWinner(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid proposal id")
		return
	}

	result, svcErr := h.proposalService.SelectWinner(uint(id))
	if svcErr != nil {
		response.Error(c, svcErr)
		return
	}

	response.Success(c, result)
}

// Delete removes a proposal and its votes
// DELETE /api/proposals/:id
func (h *ProposalHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid proposal id")
		return
	}

	result, svcErr := h.proposalService.Delete(uint(id))
	if svcErr != nil {
		response.Error(c, svcErr)
		return
	}

	response.Success(c, result)
}
