package services

import (
	"errors"
	"time"

	"github.com/gamepool/backend/internal/models"
	"github.com/gamepool/backend/pkg/response"
	"gorm.io/gorm"
)

type DepositService struct {
	db *gorm.DB
}

func NewDepositService(db *gorm.DB) *DepositService {
	return &DepositService{db: db}
}

type CreateDepositRequest struct {
	MemberID uint       `json:"member_id" binding:"required"`
	Amount   int64      `json:"amount" binding:"required,gt=0"`
	Note     string     `json:"note"`
	Date     *time.Time `json:"date"`
}

type DepositRecord struct {
	ID         uint      `json:"id"`
	MemberID   uint      `json:"member_id"`
	MemberName string    `json:"member_name"`
	Amount     int64     `json:"amount"`
	Note       string    `json:"note"`
	Date       time.Time `json:"date"`
	CreatedAt  time.Time `json:"created_at"`
}

// Create records an immutable deposit for a member.
func (s *DepositService) Create(req *CreateDepositRequest) (*DepositRecord, error) {
	var member models.Member
	if err := s.db.First(&member, req.MemberID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("member not found")
		}
		return nil, err
	}

	date := time.Now().UTC()
	if req.Date != nil {
		date = *req.Date
	}

	deposit := models.Deposit{
		MemberID: req.MemberID,
		Amount:   req.Amount,
		Note:     req.Note,
		Date:     date,
	}
	if err := s.db.Create(&deposit).Error; err != nil {
		return nil, err
	}

	return &DepositRecord{
		ID:         deposit.ID,
		MemberID:   deposit.MemberID,
		MemberName: member.Name,
		Amount:     deposit.Amount,
		Note:       deposit.Note,
		Date:       deposit.Date,
		CreatedAt:  deposit.CreatedAt,
	}, nil
}

// ListByMember returns a member's deposits, most recent first.
func (s *DepositService) ListByMember(memberID uint) ([]models.Deposit, error) {
	var member models.Member
	if err := s.db.First(&member, memberID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("member not found")
		}
		return nil, err
	}

	var deposits []models.Deposit
	if err := s.db.Where("member_id = ?", memberID).
		Order("date DESC").
		Find(&deposits).Error; err != nil {
		return nil, err
	}
	return deposits, nil
}

// ListAll returns every deposit in the pool, most recent first.
func (s *DepositService) ListAll() ([]models.Deposit, error) {
	var deposits []models.Deposit
	if err := s.db.Preload("Member").
		Order("date DESC").
		Find(&deposits).Error; err != nil {
		return nil, err
	}
	return deposits, nil
}
