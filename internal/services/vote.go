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

// VoteService records votes under the proposal state machine's guard. A member
// holds at most one active vote (a vote whose target is still proposed);
// voting elsewhere transfers it.
type VoteService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewVoteService(db *gorm.DB) *VoteService {
	return &VoteService{db: db, now: time.Now}
}

type CastVoteResult struct {
	ProposalID    uint      `json:"proposal_id"`
	ProposalTitle string    `json:"proposal_title"`
	MemberID      uint      `json:"member_id"`
	VotedAt       time.Time `json:"voted_at"`
	CurrentVotes  int64     `json:"current_votes"`
	Transferred   bool      `json:"transferred"`
	PreviousTitle string    `json:"previous_title,omitempty"`
}

// activeVote finds the member's vote whose target proposal is still proposed.
// By construction at most one such vote exists.
func activeVote(tx *gorm.DB, memberID uint) (*models.Vote, error) {
	var vote models.Vote
	err := tx.Joins("JOIN game_proposals ON game_proposals.id = votes.proposal_id").
		Where("votes.member_id = ? AND game_proposals.status = ?",
			memberID, models.ProposalStatusProposed).
		First(&vote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &vote, nil
}

// Cast votes for a proposal on behalf of a member. Failure ladder: the
// proposal must exist, must still be proposed, must not be the member's own,
// and must not already hold this member's vote. An active vote on a different
// proposal is deleted and the transfer reported.
func (s *VoteService) Cast(proposalID, memberID uint) (*CastVoteResult, error) {
	var result CastVoteResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var proposal models.Proposal
		if err := tx.First(&proposal, proposalID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("proposal not found")
			}
			return err
		}
		if proposal.Status != models.ProposalStatusProposed {
			return response.NewInvalidState(fmt.Sprintf(
				"cannot vote: proposal is in status %q", proposal.Status))
		}
		if proposal.ProposerID == memberID {
			return response.NewForbidden("you cannot vote for your own proposal")
		}

		existing, err := activeVote(tx, memberID)
		if err != nil {
			return err
		}

		var previousTitle string
		transferred := false
		if existing != nil {
			if existing.ProposalID == proposalID {
				return response.NewConflict("you have already voted for this proposal")
			}

			var previous models.Proposal
			if err := tx.First(&previous, existing.ProposalID).Error; err == nil {
				previousTitle = previous.Title
			}
			if err := tx.Delete(existing).Error; err != nil {
				return err
			}
			transferred = true
		}

		vote := models.Vote{
			ProposalID: proposalID,
			MemberID:   memberID,
			VotedAt:    s.now().UTC(),
		}
		if err := tx.Create(&vote).Error; err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.Vote{}).
			Where("proposal_id = ?", proposalID).
			Count(&count).Error; err != nil {
			return err
		}

		result = CastVoteResult{
			ProposalID:    proposalID,
			ProposalTitle: proposal.Title,
			MemberID:      memberID,
			VotedAt:       vote.VotedAt,
			CurrentVotes:  count,
			Transferred:   transferred,
			PreviousTitle: previousTitle,
		}
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

type RemovedVote struct {
	ProposalID    uint   `json:"proposal_id"`
	ProposalTitle string `json:"proposal_title"`
}

// Remove deletes the member's active vote.
func (s *VoteService) Remove(memberID uint) (*RemovedVote, error) {
	var removed RemovedVote
	err := s.db.Transaction(func(tx *gorm.DB) error {
		vote, err := activeVote(tx, memberID)
		if err != nil {
			return err
		}
		if vote == nil {
			return response.NewNotFound("you have no active vote to remove")
		}

		var proposal models.Proposal
		if err := tx.First(&proposal, vote.ProposalID).Error; err != nil {
			return err
		}
		if err := tx.Delete(vote).Error; err != nil {
			return err
		}

		removed = RemovedVote{ProposalID: proposal.ID, ProposalTitle: proposal.Title}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &removed, nil
}

type MyVoteResult struct {
	HasVote       bool      `json:"has_vote"`
	ProposalID    uint      `json:"proposal_id,omitempty"`
	ProposalTitle string    `json:"proposal_title,omitempty"`
	ProposerID    uint      `json:"proposer_id,omitempty"`
	Price         int64     `json:"price,omitempty"`
	VotedAt       time.Time `json:"voted_at,omitzero"`
	TotalVotes    int64     `json:"total_votes,omitempty"`
}

// MyVote reports where the member's active vote currently sits, if anywhere.
func (s *VoteService) MyVote(memberID uint) (*MyVoteResult, error) {
	vote, err := activeVote(s.db, memberID)
	if err != nil {
		return nil, err
	}
	if vote == nil {
		return &MyVoteResult{HasVote: false}, nil
	}

	var proposal models.Proposal
	if err := s.db.First(&proposal, vote.ProposalID).Error; err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.Vote{}).
		Where("proposal_id = ?", proposal.ID).
		Count(&count).Error; err != nil {
		return nil, err
	}

	return &MyVoteResult{
		HasVote:       true,
		ProposalID:    proposal.ID,
		ProposalTitle: proposal.Title,
		ProposerID:    proposal.ProposerID,
		Price:         proposal.Price,
		VotedAt:       vote.VotedAt,
		TotalVotes:    count,
	}, nil
}
