package services

import (
	"encoding/json"
	"time"

	"github.com/gamepool/backend/internal/models"
	"github.com/gamepool/backend/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

var auditDB *gorm.DB

// InitAuditLogger sets the database handle used by the package-level Audit
// helper. Call once at startup.
func InitAuditLogger(db *gorm.DB) {
	auditDB = db
}

// Audit records an administrative action. Best-effort: a failed audit write is
// logged but never fails the operation it describes.
func Audit(module, action, message string, actorID *uint, ip, userAgent string, extra interface{}) {
	if auditDB == nil {
		return
	}

	var extraStr string
	if extra != nil {
		if b, err := json.Marshal(extra); err == nil {
			extraStr = string(b)
		}
	}

	entry := &models.AuditLog{
		Module:    module,
		Action:    action,
		Message:   message,
		ActorID:   actorID,
		IP:        ip,
		UserAgent: userAgent,
		Extra:     extraStr,
		CreatedAt: time.Now(),
	}
	if err := auditDB.Create(entry).Error; err != nil {
		logger.Error().Err(err).Str("action", action).Msg("failed to write audit log")
	}
}

type AuditService struct {
	db            *gorm.DB
	cronScheduler *cron.Cron
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

type AuditListRequest struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size" binding:"max=100"`
	Module   string `form:"module"`
	Action   string `form:"action"`
	ActorID  *uint  `form:"actor_id"`
}

type AuditListResponse struct {
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	Items    []models.AuditLog `json:"items"`
}

func (s *AuditService) List(req *AuditListRequest) (*AuditListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	query := s.db.Model(&models.AuditLog{})
	if req.Module != "" {
		query = query.Where("module = ?", req.Module)
	}
	if req.Action != "" {
		query = query.Where("action LIKE ?", "%"+req.Action+"%")
	}
	if req.ActorID != nil {
		query = query.Where("actor_id = ?", *req.ActorID)
	}

	var total int64
	query.Count(&total)

	var items []models.AuditLog
	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}

	return &AuditListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    items,
	}, nil
}

// CleanupOldLogs deletes audit entries older than retentionDays. Returns the
// number of deleted rows.
func (s *AuditService) CleanupOldLogs(retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	result := s.db.Where("created_at < ?", cutoff).Delete(&models.AuditLog{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// StartCleanupScheduler prunes old audit entries every night.
func (s *AuditService) StartCleanupScheduler(retentionDays int) {
	if retentionDays <= 0 {
		logger.Info().Msg("audit log cleanup disabled (retention <= 0)")
		return
	}

	s.cronScheduler = cron.New()
	_, err := s.cronScheduler.AddFunc("30 3 * * *", func() {
		deleted, err := s.CleanupOldLogs(retentionDays)
		if err != nil {
			logger.Error().Err(err).Msg("audit log cleanup failed")
			return
		}
		if deleted > 0 {
			logger.Info().Int64("deleted", deleted).Msg("audit log cleanup done")
		}
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to schedule audit log cleanup")
		return
	}
	s.cronScheduler.Start()
}

// StopCleanupScheduler stops the nightly cleanup job.
func (s *AuditService) StopCleanupScheduler() {
	if s.cronScheduler != nil {
		s.cronScheduler.Stop()
	}
}
