package services

import (
	"errors"
	"time"

	"github.com/gamepool/backend/internal/models"
	"github.com/gamepool/backend/pkg/response"
	"gorm.io/gorm"
)

// PurchaseService serves the read side of executed purchases.
type PurchaseService struct {
	db *gorm.DB
}

func NewPurchaseService(db *gorm.DB) *PurchaseService {
	return &PurchaseService{db: db}
}

// List returns all purchases, most recent first.
func (s *PurchaseService) List() ([]models.Purchase, error) {
	var purchases []models.Purchase
	if err := s.db.Order("purchased_at DESC").Find(&purchases).Error; err != nil {
		return nil, err
	}
	return purchases, nil
}

type PurchaseShareDetail struct {
	ShareID     uint       `json:"share_id"`
	MemberID    uint       `json:"member_id"`
	MemberName  string     `json:"member_name"`
	ShareAmount int64      `json:"share_amount"`
	Paid        bool       `json:"paid"`
	PaidAt      *time.Time `json:"paid_at"`
}

type PurchaseSummary struct {
	TotalAmount    int64 `json:"total_amount"`
	TotalPaid      int64 `json:"total_paid"`
	TotalPending   int64 `json:"total_pending"`
	MembersPaid    int   `json:"members_paid"`
	MembersPending int   `json:"members_pending"`
}

type PurchaseDetail struct {
	Purchase *models.Purchase      `json:"purchase"`
	Shares   []PurchaseShareDetail `json:"shares"`
	Summary  PurchaseSummary       `json:"summary"`
}

// Get returns a purchase with its full share breakdown.
func (s *PurchaseService) Get(purchaseID uint) (*PurchaseDetail, error) {
	var purchase models.Purchase
	if err := s.db.First(&purchase, purchaseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("purchase not found")
		}
		return nil, err
	}

	var shares []PurchaseShareDetail
	if err := s.db.Model(&models.PurchaseShare{}).
		Select("purchase_shares.id AS share_id, purchase_shares.member_id, members.name AS member_name, purchase_shares.share_amount, purchase_shares.paid, purchase_shares.paid_at").
		Joins("JOIN members ON members.id = purchase_shares.member_id").
		Where("purchase_shares.purchase_id = ?", purchaseID).
		Scan(&shares).Error; err != nil {
		return nil, err
	}

	summary := PurchaseSummary{TotalAmount: purchase.TotalPrice}
	for _, sh := range shares {
		if sh.Paid {
			summary.TotalPaid += sh.ShareAmount
			summary.MembersPaid++
		} else {
			summary.TotalPending += sh.ShareAmount
			summary.MembersPending++
		}
	}

	return &PurchaseDetail{
		Purchase: &purchase,
		Shares:   shares,
		Summary:  summary,
	}, nil
}

type PendingShare struct {
	ShareID     uint      `json:"share_id"`
	PurchaseID  uint      `json:"purchase_id"`
	GameTitle   string    `json:"game_title"`
	ShareAmount int64     `json:"share_amount"`
	PurchasedAt time.Time `json:"purchased_at"`
}

type PendingSharesResponse struct {
	MemberID     uint           `json:"member_id"`
	Shares       []PendingShare `json:"shares"`
	TotalPending int64          `json:"total_pending"`
	Count        int            `json:"count"`
}

// PendingShares lists a member's unpaid shares. Under the current business
// rule shares are created already paid, so this normally comes back empty; it
// exists for the day deferred payment becomes a thing.
func (s *PurchaseService) PendingShares(memberID uint) (*PendingSharesResponse, error) {
	var shares []PendingShare
	if err := s.db.Model(&models.PurchaseShare{}).
		Select("purchase_shares.id AS share_id, purchase_shares.purchase_id, purchases.title AS game_title, purchase_shares.share_amount, purchases.purchased_at").
		Joins("JOIN purchases ON purchases.id = purchase_shares.purchase_id").
		Where("purchase_shares.member_id = ? AND purchase_shares.paid = ?", memberID, false).
		Scan(&shares).Error; err != nil {
		return nil, err
	}

	resp := &PendingSharesResponse{
		MemberID: memberID,
		Shares:   shares,
		Count:    len(shares),
	}
	for _, sh := range shares {
		resp.TotalPending += sh.ShareAmount
	}
	return resp, nil
}
