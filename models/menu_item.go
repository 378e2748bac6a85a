package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MenuItem is owner-managed catalog data. The ordering flow reads it
// and copies name/price by value into order items, so later edits or
// deletions never change historical orders.
type MenuItem struct {
	ID           string       `gorm:"type:varchar(36);primaryKey" json:"id"`
	RestaurantID string       `gorm:"type:varchar(36);not null;index" json:"restaurant_id"`
	CategoryID   string       `gorm:"type:varchar(36);not null;index" json:"category_id"`
	Category     MenuCategory `gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Name         string       `gorm:"type:varchar(120);not null" json:"name"`
	Description  string       `gorm:"type:text" json:"description"`
	Price        float64      `gorm:"type:decimal(10,2);not null" json:"price"`
	Images       []string     `gorm:"serializer:json" json:"images"`
	Allergens    []string     `gorm:"serializer:json" json:"allergens"`
	Available    bool         `gorm:"not null;default:true" json:"available"`
	CreatedAt    time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null" json:"updated_at"`
}

func (m *MenuItem) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
