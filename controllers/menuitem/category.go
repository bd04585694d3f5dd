package menuitemControllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kofnet002/LittleLemonAPI/middleware"
	"github.com/kofnet002/LittleLemonAPI/models"
	"github.com/kofnet002/LittleLemonAPI/policy"
	"gorm.io/gorm"
)

type CategoryInput struct {
	Title string `json:"title" binding:"required"`
	Slug  string `json:"slug"`
}

// GET /api/categories
func GetCategories(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var categories []models.Category
		if err := db.Find(&categories).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
			return
		}
		c.JSON(http.StatusOK, categories)
	}
}

// POST /api/categories (Manager)
func CreateCategory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		roles := policy.RolesOf(middleware.CurrentUser(c))
		if !policy.Allows(roles, policy.OpEditMenu) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only managers can add categories"})
			return
		}

		var input CategoryInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if input.Slug == "" {
			input.Slug = strings.ToLower(strings.ReplaceAll(input.Title, " ", "-"))
		}

		category := models.Category{Title: input.Title, Slug: input.Slug}
		if err := db.Create(&category).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Category already exists"})
			return
		}

		c.JSON(http.StatusCreated, category)
	}
}
