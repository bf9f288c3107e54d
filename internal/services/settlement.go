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

// SettlementService executes purchases: it computes the deterministic cost
// split over the active roster, verifies every participant's balance under the
// same transactional snapshot it writes against, and materializes the purchase
// with all shares in one atomic unit.
type SettlementService struct {
	db        *gorm.DB
	groupSize int
	now       func() time.Time
}

func NewSettlementService(db *gorm.DB, groupSize int) *SettlementService {
	return &SettlementService{db: db, groupSize: groupSize, now: time.Now}
}

// Split is the deterministic cost split of a total price over N members:
// the owner pays 40% rounded down plus whatever remainder integer division
// leaves over, each of the N-1 others pays an equal floor share. Shares always
// sum back to the total exactly.
type Split struct {
	Total       int64 `json:"total_price"`
	OwnerShare  int64 `json:"owner_share"`
	PerOther    int64 `json:"per_other"`
	OthersTotal int64 `json:"others_total"`
	Remainder   int64 `json:"remainder"`
}

// ComputeSplit derives the split for a positive total price and a group of n
// members. n must be at least 2: a single-member group has no others to split
// with.
func ComputeSplit(total int64, n int) (Split, error) {
	if total <= 0 {
		return Split{}, response.NewBadRequest("total price must be positive")
	}
	if n < 2 {
		return Split{}, response.NewPrecondition(
			fmt.Sprintf("group size must be at least 2, got %d", n))
	}

	others := int64(n - 1)
	ownerBase := total * 40 / 100
	remaining := total - ownerBase
	perOther := remaining / others
	remainder := total - (ownerBase + perOther*others)

	return Split{
		Total:       total,
		OwnerShare:  ownerBase + remainder,
		PerOther:    perOther,
		OthersTotal: perOther * others,
		Remainder:   remainder,
	}, nil
}

// Shortfall describes one underfunded member in an insufficient-funds failure.
type Shortfall struct {
	MemberID   uint   `json:"member_id"`
	MemberName string `json:"member_name"`
	Required   int64  `json:"required"`
	Available  int64  `json:"available"`
}

type ShareBreakdown struct {
	MemberID        uint   `json:"member_id"`
	MemberName      string `json:"member_name"`
	ShareAmount     int64  `json:"share_amount"`
	IsOwner         bool   `json:"is_owner"`
	PreviousBalance int64  `json:"previous_balance"`
	NewBalance      int64  `json:"new_balance"`
}

type SettlementResult struct {
	Purchase *models.Purchase `json:"purchase"`
	Split    Split            `json:"split"`
	Shares   []ShareBreakdown `json:"shares"`
}

type SettleFromProposalRequest struct {
	WasOnSale     bool   `json:"was_on_sale"`
	OriginalPrice *int64 `json:"original_price"`
}

type ManualPurchaseRequest struct {
	Title         string `json:"title" binding:"required"`
	TotalPrice    int64  `json:"total_price" binding:"required,gt=0"`
	OwnerID       uint   `json:"owner_id" binding:"required"`
	WasOnSale     bool   `json:"was_on_sale"`
	OriginalPrice *int64 `json:"original_price"`
}

// FromProposal settles the winning proposal of a voting round: the proposal
// must be in status voted, and it transitions to purchased inside the same
// transaction that writes the purchase and its shares.
func (s *SettlementService) FromProposal(proposalID uint, req *SettleFromProposalRequest, operatorID uint) (*SettlementResult, error) {
	var result *SettlementResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var proposal models.Proposal
		if err := tx.First(&proposal, proposalID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("proposal not found")
			}
			return err
		}
		if proposal.Status != models.ProposalStatusVoted {
			return response.NewInvalidState(fmt.Sprintf(
				"proposal must be in status %q to settle, current status is %q",
				models.ProposalStatusVoted, proposal.Status))
		}

		res, err := s.settle(tx, settleParams{
			proposalID:    &proposal.ID,
			title:         proposal.Title,
			totalPrice:    proposal.Price,
			ownerID:       proposal.ProposerID,
			operatorID:    operatorID,
			wasOnSale:     req.WasOnSale,
			originalPrice: req.OriginalPrice,
		})
		if err != nil {
			return err
		}

		if err := tx.Model(&proposal).
			Update("status", models.ProposalStatusPurchased).Error; err != nil {
			return err
		}

		result = res
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Manual settles a purchase that did not come out of a voting round. The
// owner is supplied explicitly and must be an active member.
func (s *SettlementService) Manual(req *ManualPurchaseRequest, operatorID uint) (*SettlementResult, error) {
	var result *SettlementResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var owner models.Member
		err := tx.Where("id = ? AND active = ?", req.OwnerID, true).First(&owner).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("owner not found or not active")
			}
			return err
		}

		res, err := s.settle(tx, settleParams{
			title:         req.Title,
			totalPrice:    req.TotalPrice,
			ownerID:       owner.ID,
			operatorID:    operatorID,
			wasOnSale:     req.WasOnSale,
			originalPrice: req.OriginalPrice,
		})
		if err != nil {
			return err
		}

		result = res
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	return result, nil
}

type settleParams struct {
	proposalID    *uint
	title         string
	totalPrice    int64
	ownerID       uint
	operatorID    uint
	wasOnSale     bool
	originalPrice *int64
}

// settle runs steps common to both settlement paths on the caller's
// transaction: roster check, split, sufficiency check over every participant,
// then purchase and share materialization. Balance reads and share writes
// share one transactional snapshot, so two concurrent settlements cannot both
// pass the sufficiency check against the same stale balance.
func (s *SettlementService) settle(tx *gorm.DB, p settleParams) (*SettlementResult, error) {
	var roster []models.Member
	if err := tx.Where("active = ?", true).Order("id").Find(&roster).Error; err != nil {
		return nil, err
	}
	if len(roster) != s.groupSize {
		return nil, response.NewPrecondition(fmt.Sprintf(
			"the group must have exactly %d active members, currently has %d",
			s.groupSize, len(roster)))
	}

	var owner *models.Member
	for i := range roster {
		if roster[i].ID == p.ownerID {
			owner = &roster[i]
			break
		}
	}
	if owner == nil {
		return nil, response.NewNotFound("owner is not part of the active roster")
	}

	split, err := ComputeSplit(p.totalPrice, len(roster))
	if err != nil {
		return nil, err
	}

	// Balance check for every participant; all shortfalls are collected and
	// reported in one failure.
	balances := make(map[uint]int64, len(roster))
	var shortfalls []Shortfall
	for _, m := range roster {
		deposits, expenses, err := memberBalance(tx, m.ID)
		if err != nil {
			return nil, err
		}
		balance := deposits - expenses
		balances[m.ID] = balance

		required := split.PerOther
		if m.ID == owner.ID {
			required = split.OwnerShare
		}
		if balance < required {
			shortfalls = append(shortfalls, Shortfall{
				MemberID:   m.ID,
				MemberName: m.Name,
				Required:   required,
				Available:  balance,
			})
		}
	}
	if len(shortfalls) > 0 {
		return nil, response.NewInsufficientFunds(
			fmt.Sprintf("insufficient funds for %d member(s)", len(shortfalls)),
			shortfalls)
	}

	purchasedAt := s.now().UTC()
	purchase := models.Purchase{
		ProposalID:    p.proposalID,
		Title:         p.title,
		TotalPrice:    p.totalPrice,
		PurchaserID:   p.operatorID,
		OwnerID:       owner.ID,
		WasOnSale:     p.wasOnSale,
		OriginalPrice: p.originalPrice,
		PurchasedAt:   purchasedAt,
	}
	if err := tx.Create(&purchase).Error; err != nil {
		return nil, err
	}

	shares := make([]ShareBreakdown, 0, len(roster))
	for _, m := range roster {
		amount := split.PerOther
		if m.ID == owner.ID {
			amount = split.OwnerShare
		}

		paidAt := purchasedAt
		share := models.PurchaseShare{
			PurchaseID:  purchase.ID,
			MemberID:    m.ID,
			ShareAmount: amount,
			Paid:        true,
			PaidAt:      &paidAt,
		}
		if err := tx.Create(&share).Error; err != nil {
			return nil, err
		}

		shares = append(shares, ShareBreakdown{
			MemberID:        m.ID,
			MemberName:      m.Name,
			ShareAmount:     amount,
			IsOwner:         m.ID == owner.ID,
			PreviousBalance: balances[m.ID],
			NewBalance:      balances[m.ID] - amount,
		})
	}

	return &SettlementResult{
		Purchase: &purchase,
		Split:    split,
		Shares:   shares,
	}, nil
}
