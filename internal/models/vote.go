package models

import (
	"time"
)

// Vote records one member's vote on one proposal. The (proposal, member)
// uniqueness constraint is load-bearing: it is what makes double-voting a
// database-level impossibility rather than only an application check.
// Votes are owned by their proposal and deleted with it.
type Vote struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ProposalID uint      `gorm:"not null;uniqueIndex:idx_votes_proposal_member" json:"proposal_id"`
	MemberID   uint      `gorm:"not null;uniqueIndex:idx_votes_proposal_member" json:"member_id"`
	VotedAt    time.Time `gorm:"not null" json:"voted_at"`
}

func (Vote) TableName() string { return "votes" }
