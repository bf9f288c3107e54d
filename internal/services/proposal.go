package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gamepool/backend/internal/models"
	"github.com/gamepool/backend/pkg/response"
	"gorm.io/gorm"
)

// ProposalService governs the proposal lifecycle: creation with round
// numbering, winner selection and deletion. The clock is injected so period
// tagging is testable.
type ProposalService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewProposalService(db *gorm.DB) *ProposalService {
	return &ProposalService{db: db, now: time.Now}
}

type CreateProposalRequest struct {
	Title string `json:"title" binding:"required"`
	Price int64  `json:"price" binding:"required,gt=0"`
}

// Create registers a new proposal for the given proposer. A proposer may hold
// at most one proposal in {proposed, voted}; the round number is shared by all
// proposals of the current period and the first proposal of a period takes
// the previous maximum plus one.
func (s *ProposalService) Create(req *CreateProposalRequest, proposerID uint) (*models.Proposal, error) {
	now := s.now().UTC()
	period := now.Year()*100 + int(now.Month())

	var proposal models.Proposal
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Proposal
		err := tx.Where("proposer_id = ? AND status IN ?", proposerID,
			[]string{models.ProposalStatusProposed, models.ProposalStatusVoted}).
			First(&existing).Error
		if err == nil {
			return response.NewConflict(fmt.Sprintf(
				"you already have an active proposal: %q (id %d, status %s)",
				existing.Title, existing.ID, existing.Status))
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		number, err := s.proposalNumber(tx, period)
		if err != nil {
			return err
		}

		proposal = models.Proposal{
			Title:          req.Title,
			ProposerID:     proposerID,
			Price:          req.Price,
			Status:         models.ProposalStatusProposed,
			ProposalNumber: number,
			Period:         period,
			ProposedAt:     now,
		}
		return tx.Create(&proposal).Error
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	return &proposal, nil
}

// proposalNumber resolves the round number for a period: reuse the number
// already established for this period, otherwise previous max plus one.
func (s *ProposalService) proposalNumber(tx *gorm.DB, period int) (int, error) {
	var existing models.Proposal
	err := tx.Where("period = ?", period).First(&existing).Error
	if err == nil {
		return existing.ProposalNumber, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	var max sql.NullInt64
	if err := tx.Model(&models.Proposal{}).
		Select("MAX(proposal_number)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	if !max.Valid {
		return 1, nil
	}
	return int(max.Int64) + 1, nil
}

// List returns proposals, most recent first, optionally filtered by status.
func (s *ProposalService) List(status string) ([]models.Proposal, error) {
	query := s.db.Preload("Proposer")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var proposals []models.Proposal
	if err := query.Order("proposed_at DESC").Find(&proposals).Error; err != nil {
		return nil, err
	}
	return proposals, nil
}

type ProposalVoteDetail struct {
	MemberID   uint      `json:"member_id"`
	MemberName string    `json:"member_name"`
	VotedAt    time.Time `json:"voted_at"`
}

type ProposalDetail struct {
	Proposal       *models.Proposal     `json:"proposal"`
	TotalVotes     int64                `json:"total_votes"`
	EligibleVoters int64                `json:"eligible_voters"`
	Votes          []ProposalVoteDetail `json:"votes"`
}

// GetWithVotes returns a proposal together with its vote detail and the count
// of active members eligible to vote on it (everyone active except the
// proposer).
func (s *ProposalService) GetWithVotes(proposalID uint) (*ProposalDetail, error) {
	var proposal models.Proposal
	if err := s.db.Preload("Proposer").First(&proposal, proposalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("proposal not found")
		}
		return nil, err
	}

	var votes []ProposalVoteDetail
	if err := s.db.Model(&models.Vote{}).
		Select("votes.member_id, members.name AS member_name, votes.voted_at").
		Joins("JOIN members ON members.id = votes.member_id").
		Where("votes.proposal_id = ?", proposalID).
		Scan(&votes).Error; err != nil {
		return nil, err
	}

	var eligible int64
	if err := s.db.Model(&models.Member{}).
		Where("active = ? AND id <> ?", true, proposal.ProposerID).
		Count(&eligible).Error; err != nil {
		return nil, err
	}

	return &ProposalDetail{
		Proposal:       &proposal,
		TotalVotes:     int64(len(votes)),
		EligibleVoters: eligible,
		Votes:          votes,
	}, nil
}

type RejectedProposal struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
	Votes int64  `json:"votes"`
}

type SelectWinnerResult struct {
	Winner      *models.Proposal   `json:"winner"`
	WinnerVotes int64              `json:"winner_votes"`
	Rejected    []RejectedProposal `json:"rejected"`
}

// SelectWinner resolves a voting round: the chosen proposal moves to voted and
// every other proposal currently proposed moves to rejected. The transition is
// a single transaction; no caller can observe a partially resolved round.
func (s *ProposalService) SelectWinner(proposalID uint) (*SelectWinnerResult, error) {
	var result SelectWinnerResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var winner models.Proposal
		if err := tx.First(&winner, proposalID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("proposal not found")
			}
			return err
		}
		if winner.Status != models.ProposalStatusProposed {
			return response.NewInvalidState(fmt.Sprintf(
				"proposal must be in status %q to win, current status is %q",
				models.ProposalStatusProposed, winner.Status))
		}

		var winnerVotes int64
		if err := tx.Model(&models.Vote{}).
			Where("proposal_id = ?", winner.ID).
			Count(&winnerVotes).Error; err != nil {
			return err
		}

		var losers []models.Proposal
		if err := tx.Where("status = ? AND id <> ?", models.ProposalStatusProposed, winner.ID).
			Find(&losers).Error; err != nil {
			return err
		}

		rejected := make([]RejectedProposal, 0, len(losers))
		for _, p := range losers {
			var votes int64
			if err := tx.Model(&models.Vote{}).
				Where("proposal_id = ?", p.ID).
				Count(&votes).Error; err != nil {
				return err
			}
			rejected = append(rejected, RejectedProposal{ID: p.ID, Title: p.Title, Votes: votes})
		}

		if err := tx.Model(&winner).
			Update("status", models.ProposalStatusVoted).Error; err != nil {
			return err
		}
		if len(losers) > 0 {
			if err := tx.Model(&models.Proposal{}).
				Where("status = ? AND id <> ?", models.ProposalStatusProposed, winner.ID).
				Update("status", models.ProposalStatusRejected).Error; err != nil {
				return err
			}
		}

		winner.Status = models.ProposalStatusVoted
		result = SelectWinnerResult{
			Winner:      &winner,
			WinnerVotes: winnerVotes,
			Rejected:    rejected,
		}
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

type DeletedProposal struct {
	ID           uint   `json:"id"`
	Title        string `json:"title"`
	VotesRemoved int64  `json:"votes_removed"`
}

// Delete removes a proposal and, in the same transaction, the votes it owns.
// Purchased proposals are not deletable: their purchase references them.
func (s *ProposalService) Delete(proposalID uint) (*DeletedProposal, error) {
	var deleted DeletedProposal
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var proposal models.Proposal
		if err := tx.First(&proposal, proposalID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("proposal not found")
			}
			return err
		}
		if proposal.Status == models.ProposalStatusPurchased {
			return response.NewInvalidState("a purchased proposal cannot be deleted")
		}

		res := tx.Where("proposal_id = ?", proposal.ID).Delete(&models.Vote{})
		if res.Error != nil {
			return res.Error
		}
		if err := tx.Delete(&proposal).Error; err != nil {
			return err
		}

		deleted = DeletedProposal{
			ID:           proposal.ID,
			Title:        proposal.Title,
			VotesRemoved: res.RowsAffected,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}
