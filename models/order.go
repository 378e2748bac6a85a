package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order is append-only: created by the submission gateway, mutated
// only by status transitions, never deleted.
type Order struct {
	ID           string      `gorm:"type:varchar(36);primaryKey" json:"id"`
	RestaurantID string      `gorm:"type:varchar(36);not null;index" json:"restaurant_id"`
	TableID      string      `gorm:"type:varchar(36);not null;index" json:"table_id"`
	Table        Table       `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	// SessionToken records the credential presented at submission for
	// traceability. It is never used for auth after the insert and
	// never echoed to clients.
	SessionToken string      `gorm:"type:varchar(64);not null" json:"-"`
	Status       OrderStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Items        []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	AllergyNotes *string     `gorm:"type:varchar(500)" json:"allergy_notes"`
	Notes        *string     `gorm:"type:varchar(500)" json:"notes"`
	Subtotal     float64     `gorm:"type:decimal(10,2);not null;default:0.00" json:"subtotal"`
	Tax          float64     `gorm:"type:decimal(10,2);not null;default:0.00" json:"tax"`
	Total        float64     `gorm:"type:decimal(10,2);not null;default:0.00" json:"total"`
	CreatedAt    time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"not null" json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}
