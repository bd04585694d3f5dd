package cartControllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kofnet002/LittleLemonAPI/middleware"
	"github.com/kofnet002/LittleLemonAPI/models"
	"github.com/kofnet002/LittleLemonAPI/policy"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartLineInput struct {
	MenuItemID uint `json:"menuitem_id" binding:"required"`
	Quantity   int  `json:"quantity" binding:"required,min=1"`
}

// GET /api/cart/menu-items
func GetCartLines(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		if !policy.Allows(policy.RolesOf(user), policy.OpViewCart) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only customers have a cart"})
			return
		}

		var lines []models.CartLine
		if err := db.Preload("MenuItem.Category").Where("user_id = ?", user.ID).Find(&lines).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}
		c.JSON(http.StatusOK, lines)
	}
}

// POST /api/cart/menu-items
//
// The unit price is captured from the current menu price; re-adding an item
// the cart already holds updates that line instead of duplicating it.
func AddCartLine(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		if !policy.Allows(policy.RolesOf(user), policy.OpEditCart) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only customers have a cart"})
			return
		}

		var input CartLineInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		var item models.MenuItem
		if err := db.First(&item, input.MenuItemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Menu item does not exist"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate menu item"})
			}
			return
		}

		var existing models.CartLine
		err := db.Where("user_id = ? AND menu_item_id = ?", user.ID, item.ID).First(&existing).Error
		isNew := errors.Is(err, gorm.ErrRecordNotFound)
		if err != nil && !isNew {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart line"})
			return
		}

		line := models.CartLine{
			UserID:     user.ID,
			MenuItemID: item.ID,
			Quantity:   input.Quantity,
			UnitPrice:  item.Price,
			Price:      item.Price.Mul(decimal.NewFromInt(int64(input.Quantity))),
			AddedAt:    time.Now(),
		}
		// Concurrent adds of the same item race on the (user, item) unique
		// index; the upsert turns the loser into an update instead of a
		// constraint error.
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "menu_item_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity", "unit_price", "price", "added_at"}),
		}).Create(&line).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add item to cart"})
			return
		}

		var saved models.CartLine
		if err := db.Preload("MenuItem.Category").
			Where("user_id = ? AND menu_item_id = ?", user.ID, item.ID).
			First(&saved).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart line"})
			return
		}

		if isNew {
			c.JSON(http.StatusCreated, saved)
			return
		}
		c.JSON(http.StatusOK, saved)
	}
}

// DELETE /api/cart/menu-items/:id
func DeleteCartLine(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		if !policy.Allows(policy.RolesOf(user), policy.OpEditCart) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only customers have a cart"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cart line ID"})
			return
		}

		var line models.CartLine
		if err := db.First(&line, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart line not found"})
			return
		}
		if line.UserID != user.ID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Cart line belongs to another customer"})
			return
		}

		// Ownership repeated in the delete itself so the check holds at the
		// moment of mutation.
		result := db.Where("id = ? AND user_id = ?", id, user.ID).Delete(&models.CartLine{})
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete cart line"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart line not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Cart line deleted"})
	}
}
