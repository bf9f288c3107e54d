package services

import (
	"errors"
	"sort"

	"github.com/gamepool/backend/internal/models"
	"github.com/gamepool/backend/pkg/response"
	"gorm.io/gorm"
)

// LedgerService derives member balances from deposits and paid purchase
// shares. Balances are never cached or stored; every call recomputes from the
// source rows so the ledger cannot drift.
type LedgerService struct {
	db *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{db: db}
}

// BalanceSummary is a member's derived financial position.
type BalanceSummary struct {
	MemberID       uint   `json:"member_id"`
	MemberName     string `json:"member_name"`
	ProfileImage   string `json:"profile_image,omitempty"`
	Role           string `json:"role,omitempty"`
	TotalDeposits  int64  `json:"total_deposits"`
	TotalExpenses  int64  `json:"total_expenses"`
	CurrentBalance int64  `json:"current_balance"`
}

type AllBalancesResponse struct {
	Balances     []BalanceSummary `json:"balances"`
	TotalMembers int              `json:"total_members"`
	GrandTotal   int64            `json:"grand_total"`
}

// memberBalance computes total deposits, total paid expenses and the net
// balance for one member on the given handle. Settlement passes its own
// transaction here so the sufficiency check reads the same snapshot it will
// write against.
func memberBalance(tx *gorm.DB, memberID uint) (deposits, expenses int64, err error) {
	if err = tx.Model(&models.Deposit{}).
		Where("member_id = ?", memberID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&deposits).Error; err != nil {
		return 0, 0, err
	}

	if err = tx.Model(&models.PurchaseShare{}).
		Where("member_id = ? AND paid = ?", memberID, true).
		Select("COALESCE(SUM(share_amount), 0)").
		Scan(&expenses).Error; err != nil {
		return 0, 0, err
	}

	return deposits, expenses, nil
}

// Balance returns the derived balance for one member. Absent deposit or share
// rows count as zero; only a missing member is an error.
func (s *LedgerService) Balance(memberID uint) (*BalanceSummary, error) {
	var member models.Member
	if err := s.db.First(&member, memberID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("member not found")
		}
		return nil, err
	}

	deposits, expenses, err := memberBalance(s.db, memberID)
	if err != nil {
		return nil, err
	}

	return &BalanceSummary{
		MemberID:       member.ID,
		MemberName:     member.Name,
		ProfileImage:   member.ProfileImage,
		Role:           member.Role,
		TotalDeposits:  deposits,
		TotalExpenses:  expenses,
		CurrentBalance: deposits - expenses,
	}, nil
}

// AllBalances returns the derived balance of every active member, sorted by
// balance descending, plus the pool's grand total.
func (s *LedgerService) AllBalances() (*AllBalancesResponse, error) {
	var members []models.Member
	if err := s.db.Where("active = ?", true).Find(&members).Error; err != nil {
		return nil, err
	}

	balances := make([]BalanceSummary, 0, len(members))
	var grandTotal int64
	for _, m := range members {
		deposits, expenses, err := memberBalance(s.db, m.ID)
		if err != nil {
			return nil, err
		}
		balance := deposits - expenses
		grandTotal += balance
		balances = append(balances, BalanceSummary{
			MemberID:       m.ID,
			MemberName:     m.Name,
			ProfileImage:   m.ProfileImage,
			Role:           m.Role,
			TotalDeposits:  deposits,
			TotalExpenses:  expenses,
			CurrentBalance: balance,
		})
	}

	sort.Slice(balances, func(i, j int) bool {
		return balances[i].CurrentBalance > balances[j].CurrentBalance
	})

	return &AllBalancesResponse{
		Balances:     balances,
		TotalMembers: len(balances),
		GrandTotal:   grandTotal,
	}, nil
}
