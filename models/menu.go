package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID    uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Title string `gorm:"unique;not null" json:"title"`
	Slug  string `json:"slug"`
}

type MenuItem struct {
	ID         uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string          `gorm:"not null" json:"name"`
	Price      decimal.Decimal `gorm:"type:numeric(8,2);not null" json:"price"`
	CategoryID uint            `json:"category_id"`
	Category   Category        `gorm:"foreignKey:CategoryID" json:"category"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
