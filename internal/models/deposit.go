package models

import (
	"time"
)

// Deposit is an immutable record of money a member paid into the pool.
// Amounts are in the minor currency unit.
type Deposit struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MemberID  uint      `gorm:"index;not null" json:"member_id"`
	Member    *Member   `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	Amount    int64     `gorm:"not null" json:"amount"`
	Note      string    `gorm:"size:500" json:"note"`
	Date      time.Time `gorm:"not null" json:"date"`
	CreatedAt time.Time `json:"created_at"`
}

func (Deposit) TableName() string { return "deposits" }
