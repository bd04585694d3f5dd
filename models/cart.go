package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is one pending selection in a customer's cart. The unique index
// keeps at most one line per (user, menu item) pair; re-adding the same item
// updates the existing line instead of duplicating it.
type CartLine struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	UserID     uint            `gorm:"not null;uniqueIndex:idx_cart_user_item" json:"user_id"`
	MenuItemID uint            `gorm:"not null;uniqueIndex:idx_cart_user_item" json:"menuitem_id"`
	MenuItem   MenuItem        `gorm:"foreignKey:MenuItemID" json:"menuitem"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:numeric(8,2);not null" json:"unit_price"`
	Price      decimal.Decimal `gorm:"type:numeric(8,2);not null" json:"price"`
	AddedAt    time.Time       `json:"added_at"`
}
