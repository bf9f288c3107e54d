package services

import (
	"errors"
	"os"
	"time"

	"github.com/gamepool/backend/internal/config"
	"github.com/gamepool/backend/internal/models"
	"github.com/gamepool/backend/internal/utils"
	"github.com/gamepool/backend/pkg/logger"
	"github.com/gamepool/backend/pkg/response"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuthService struct {
	db        *gorm.DB
	jwtConfig *config.JWTConfig
}

func NewAuthService(db *gorm.DB, jwtCfg *config.JWTConfig) *AuthService {
	return &AuthService{db: db, jwtConfig: jwtCfg}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token    string         `json:"token"`
	Member   *models.Member `json:"member"`
	ExpireAt time.Time      `json:"expire_at"`
}

// Register creates a new standard member and returns a signed session token.
func (s *AuthService) Register(req *RegisterRequest) (*LoginResponse, error) {
	var existing models.Member
	err := s.db.Where("name = ?", req.Name).First(&existing).Error
	if err == nil {
		return nil, response.NewConflict("member name is already taken")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	member := models.Member{
		Name:     req.Name,
		Password: hash,
		AuthUID:  uuid.NewString(),
		Role:     models.RoleStandard,
		Active:   true,
	}
	if err := s.db.Create(&member).Error; err != nil {
		return nil, err
	}

	return s.issueToken(&member)
}

// Login authenticates a member by name and password.
func (s *AuthService) Login(req *LoginRequest) (*LoginResponse, error) {
	var member models.Member
	if err := s.db.Where("name = ?", req.Name).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewUnauthorized("invalid name or password")
		}
		return nil, err
	}

	if !utils.CheckPassword(req.Password, member.Password) {
		return nil, response.NewUnauthorized("invalid name or password")
	}
	if !member.Active {
		return nil, response.NewForbidden("member is deactivated")
	}

	return s.issueToken(&member)
}

func (s *AuthService) issueToken(member *models.Member) (*LoginResponse, error) {
	token, err := utils.GenerateToken(member.ID, member.Name, member.Role, s.jwtConfig.ExpireHour)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{
		Token:    token,
		Member:   member,
		ExpireAt: time.Now().Add(time.Duration(s.jwtConfig.ExpireHour) * time.Hour),
	}, nil
}

// GetMemberByID loads a member by primary key.
func (s *AuthService) GetMemberByID(id uint) (*models.Member, error) {
	var member models.Member
	if err := s.db.First(&member, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("member not found")
		}
		return nil, err
	}
	return &member, nil
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

func (s *AuthService) ChangePassword(memberID uint, req *ChangePasswordRequest) error {
	member, err := s.GetMemberByID(memberID)
	if err != nil {
		return err
	}
	if !utils.CheckPassword(req.OldPassword, member.Password) {
		return response.NewUnauthorized("old password is incorrect")
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.db.Model(member).Update("password", hash).Error
}

// CreateAdminIfNotExists seeds the default administrator account on first
// startup. The password comes from ADMIN_PASSWORD when set.
func (s *AuthService) CreateAdminIfNotExists() error {
	var count int64
	if err := s.db.Model(&models.Member{}).
		Where("role = ?", models.RoleAdmin).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin12345"
		logger.Warn().Msg("ADMIN_PASSWORD not set, using default admin password")
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	admin := models.Member{
		Name:     "admin",
		Password: hash,
		AuthUID:  uuid.NewString(),
		Role:     models.RoleAdmin,
		Active:   true,
	}
	if err := s.db.Create(&admin).Error; err != nil {
		return err
	}

	logger.Info().Str("name", admin.Name).Msg("default admin member created")
	return nil
}
