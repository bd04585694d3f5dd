package menuitemControllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kofnet002/LittleLemonAPI/middleware"
	"github.com/kofnet002/LittleLemonAPI/models"
	"github.com/kofnet002/LittleLemonAPI/policy"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MenuItemInput struct {
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	CategoryID uint            `json:"category_id"`
}

// validate returns a field-error map, empty when the input is good.
func (in *MenuItemInput) validate(db *gorm.DB) gin.H {
	fields := gin.H{}
	if in.Name == "" {
		fields["name"] = "name is required"
	}
	if in.Price.Sign() <= 0 {
		fields["price"] = "price must be a positive number"
	}
	if in.CategoryID == 0 {
		fields["category_id"] = "category_id is required"
	} else if err := db.First(&models.Category{}, in.CategoryID).Error; err != nil {
		fields["category_id"] = "category does not exist"
	}
	return fields
}

// GET /api/menu-items
func GetMenuItems(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		roles := policy.RolesOf(middleware.CurrentUser(c))
		if !policy.HasCapability(roles, policy.CapViewMenuItem) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to view menu items"})
			return
		}

		var items []models.MenuItem
		if err := db.Preload("Category").Find(&items).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch menu items"})
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// GET /api/menu-items/:id
func GetMenuItemByID(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		roles := policy.RolesOf(middleware.CurrentUser(c))
		if !policy.HasCapability(roles, policy.CapViewMenuItem) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to view menu items"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid menu item ID"})
			return
		}

		var item models.MenuItem
		if err := db.Preload("Category").First(&item, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve menu item"})
			}
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// POST /api/menu-items (Manager)
func CreateMenuItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		roles := policy.RolesOf(middleware.CurrentUser(c))
		if !policy.Allows(roles, policy.OpEditMenu) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only managers can add menu items"})
			return
		}

		var input MenuItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if fields := input.validate(db); len(fields) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": fields})
			return
		}

		item := models.MenuItem{
			Name:       input.Name,
			Price:      input.Price,
			CategoryID: input.CategoryID,
		}
		if err := db.Create(&item).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create menu item"})
			return
		}
		if err := db.Preload("Category").First(&item, item.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve menu item"})
			return
		}

		c.JSON(http.StatusCreated, item)
	}
}

// PUT /api/menu-items/:id (Manager)
func UpdateMenuItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		roles := policy.RolesOf(middleware.CurrentUser(c))
		if !policy.Allows(roles, policy.OpEditMenu) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only managers can update menu items"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid menu item ID"})
			return
		}

		var item models.MenuItem
		if err := db.First(&item, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
			return
		}

		var input MenuItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if fields := input.validate(db); len(fields) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": fields})
			return
		}

		item.Name = input.Name
		item.Price = input.Price
		item.CategoryID = input.CategoryID
		if err := db.Save(&item).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update menu item"})
			return
		}
		if err := db.Preload("Category").First(&item, item.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve menu item"})
			return
		}

		c.JSON(http.StatusOK, item)
	}
}

// DELETE /api/menu-items/:id (Manager)
func DeleteMenuItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		roles := policy.RolesOf(middleware.CurrentUser(c))
		if !policy.Allows(roles, policy.OpEditMenu) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only managers can remove menu items"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid menu item ID"})
			return
		}

		result := db.Delete(&models.MenuItem{}, id)
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete menu item"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Menu item deleted"})
	}
}
