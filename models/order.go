package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"   // Placed at checkout, not yet delivered
	OrderStatusDelivered OrderStatus = "delivered" // Terminal; no reverse transition
)

type Order struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	OrderRef       string          `gorm:"unique;not null" json:"order_ref"`
	UserID         uint            `gorm:"not null" json:"user_id"`
	User           User            `gorm:"foreignKey:UserID" json:"user"`
	DeliveryCrewID *uint           `json:"delivery_crew_id"`
	DeliveryCrew   *User           `gorm:"foreignKey:DeliveryCrewID" json:"delivery_crew,omitempty"`
	Status         OrderStatus     `gorm:"type:VARCHAR(20);default:'pending'" json:"status"`
	Total          decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total"`
	Date           time.Time       `json:"date"`
	Items          []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// OrderItem is a line captured from the cart at checkout. Prices are copied
// from the cart line, never recomputed from the menu afterwards.
type OrderItem struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	OrderID    uint            `gorm:"index;not null" json:"order_id"`
	MenuItemID uint            `gorm:"not null" json:"menuitem_id"`
	MenuItem   MenuItem        `gorm:"foreignKey:MenuItemID" json:"menuitem"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:numeric(8,2);not null" json:"unit_price"`
	Price      decimal.Decimal `gorm:"type:numeric(8,2);not null" json:"price"`
}
