package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Table binds a physical table to its current session credential.
// The token+expiry pair on this row is the single active session for
// the table; it is never exposed through the default JSON encoding.
type Table struct {
	ID               string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	RestaurantID     string     `gorm:"type:varchar(36);not null;index" json:"restaurant_id"`
	Restaurant       Restaurant `gorm:"foreignKey:RestaurantID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	TableNumber      int        `gorm:"not null" json:"table_number"`
	SessionToken     *string    `gorm:"type:varchar(64)" json:"-"`
	SessionExpiresAt *time.Time `json:"-"`
	IsActive         bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt        time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"not null" json:"updated_at"`
}

func (t *Table) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// HasValidSession reports whether the stored token exists and has not
// expired at the given instant.
func (t *Table) HasValidSession(now time.Time) bool {
	return t.SessionToken != nil && *t.SessionToken != "" &&
		t.SessionExpiresAt != nil && now.Before(*t.SessionExpiresAt)
}
