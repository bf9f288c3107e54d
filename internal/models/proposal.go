package models

import (
	"time"
)

// Proposal lifecycle states. A proposal starts as proposed; a voting round
// resolves it to voted or rejected; only a voted proposal can become purchased.
const (
	ProposalStatusProposed  = "proposed"
	ProposalStatusVoted     = "voted"
	ProposalStatusPurchased = "purchased"
	ProposalStatusRejected  = "rejected"
)

// Proposal is a member's nomination of a game to buy next. At most one
// proposal per proposer may be in {proposed, voted} at a time.
//
// ProposalNumber and Period implement round numbering: every proposal created
// within the same period (YYYYMM) shares the number established by the first
// proposal of that period, which is the previous maximum plus one.
type Proposal struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Title          string    `gorm:"size:200;not null" json:"title"`
	ProposerID     uint      `gorm:"index;not null" json:"proposer_id"`
	Proposer       *Member   `gorm:"foreignKey:ProposerID" json:"proposer,omitempty"`
	Price          int64     `gorm:"not null" json:"price"`
	Status         string    `gorm:"size:20;not null;default:proposed;index" json:"status"`
	ProposalNumber int       `json:"proposal_number"`
	Period         int       `gorm:"index" json:"period"` // YYYYMM
	ProposedAt     time.Time `gorm:"not null" json:"proposed_at"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Proposal) TableName() string { return "game_proposals" }

// IsActive reports whether the proposal still occupies its proposer's slot.
func (p *Proposal) IsActive() bool {
	return p.Status == ProposalStatusProposed || p.Status == ProposalStatusVoted
}
