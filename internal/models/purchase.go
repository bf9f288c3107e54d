package models

import (
	"time"
)

// Purchase is an executed game purchase. Immutable once created. ProposalID
// is nil for manual purchases that did not come out of a voting round.
type Purchase struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ProposalID    *uint     `gorm:"index" json:"proposal_id"`
	Proposal      *Proposal `gorm:"foreignKey:ProposalID" json:"proposal,omitempty"`
	Title         string    `gorm:"size:200;not null" json:"title"`
	TotalPrice    int64     `gorm:"not null" json:"total_price"`
	PurchaserID   uint      `gorm:"not null" json:"purchaser_id"` // operator who executed the purchase
	OwnerID       uint      `gorm:"not null" json:"owner_id"`     // member whose library holds the game
	WasOnSale     bool      `gorm:"default:false" json:"was_on_sale"`
	OriginalPrice *int64    `json:"original_price"`
	PurchasedAt   time.Time `gorm:"not null;index" json:"purchased_at"`
}

func (Purchase) TableName() string { return "purchases" }

// PurchaseShare is one member's portion of a purchase's total price. Shares
// for a purchase always sum to the purchase total exactly. They are created
// together with the purchase, one per active member, already marked paid:
// cash is deducted immediately, not invoiced.
type PurchaseShare struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	PurchaseID  uint       `gorm:"not null;uniqueIndex:idx_shares_purchase_member" json:"purchase_id"`
	MemberID    uint       `gorm:"not null;uniqueIndex:idx_shares_purchase_member" json:"member_id"`
	ShareAmount int64      `gorm:"not null" json:"share_amount"`
	Paid        bool       `gorm:"default:false" json:"paid"`
	PaidAt      *time.Time `json:"paid_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (PurchaseShare) TableName() string { return "purchase_shares" }
