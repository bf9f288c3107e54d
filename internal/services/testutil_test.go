package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/gamepool/backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestDB opens an in-memory sqlite database migrated with the full
// schema. The pool is pinned to a single connection so every session sees the
// same in-memory database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.Member{},
		&models.Deposit{},
		&models.Proposal{},
		&models.Vote{},
		&models.Purchase{},
		&models.PurchaseShare{},
		&models.AuditLog{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// seedMembers creates n active members named member-1..member-n and returns
// them in creation order.
func seedMembers(t *testing.T, db *gorm.DB, n int) []models.Member {
	t.Helper()

	members := make([]models.Member, 0, n)
	for i := 1; i <= n; i++ {
		m := models.Member{
			Name:    fmt.Sprintf("member-%d", i),
			AuthUID: fmt.Sprintf("uid-%d", i),
			Role:    models.RoleStandard,
			Active:  true,
		}
		if err := db.Create(&m).Error; err != nil {
			t.Fatalf("failed to seed member %d: %v", i, err)
		}
		members = append(members, m)
	}
	return members
}

// seedDeposit credits a member with the given amount.
func seedDeposit(t *testing.T, db *gorm.DB, memberID uint, amount int64) {
	t.Helper()

	d := models.Deposit{
		MemberID: memberID,
		Amount:   amount,
		Date:     time.Now().UTC(),
	}
	if err := db.Create(&d).Error; err != nil {
		t.Fatalf("failed to seed deposit for member %d: %v", memberID, err)
	}
}
