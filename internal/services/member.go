package services

import (
	"errors"

	"github.com/gamepool/backend/internal/models"
	"github.com/gamepool/backend/pkg/response"
	"gorm.io/gorm"
)

type MemberService struct {
	db *gorm.DB
}

func NewMemberService(db *gorm.DB) *MemberService {
	return &MemberService{db: db}
}

type MemberListRequest struct {
	Active *bool `form:"active"`
}

// List returns members, optionally filtered by the active flag.
func (s *MemberService) List(req *MemberListRequest) ([]models.Member, error) {
	query := s.db.Order("id")
	if req.Active != nil {
		query = query.Where("active = ?", *req.Active)
	}

	var members []models.Member
	if err := query.Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// SetActive flips a member's roster eligibility. Members are never deleted,
// only deactivated, so their deposit and share history stays attributable.
func (s *MemberService) SetActive(memberID uint, active bool) (*models.Member, error) {
	var member models.Member
	if err := s.db.First(&member, memberID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("member not found")
		}
		return nil, err
	}

	if err := s.db.Model(&member).Update("active", active).Error; err != nil {
		return nil, err
	}
	member.Active = active
	return &member, nil
}
