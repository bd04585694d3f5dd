package menuitemControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kofnet002/LittleLemonAPI/middleware"
	"github.com/kofnet002/LittleLemonAPI/models"
	"github.com/kofnet002/LittleLemonAPI/policy"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

// GET /api/menu-items/export-excel (Manager)
func ExportMenuToExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		roles := policy.RolesOf(middleware.CurrentUser(c))
		if !policy.Allows(roles, policy.OpEditMenu) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only managers can export the menu"})
			return
		}

		var items []models.MenuItem
		if err := db.Preload("Category").Find(&items).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch menu items"})
			return
		}

		file := xlsx.NewFile()
		sheet, err := file.AddSheet("Menu")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel sheet"})
			return
		}

		headerRow := sheet.AddRow()
		for _, h := range []string{"ID", "Name", "Price", "Category", "UpdatedAt"} {
			headerRow.AddCell().SetValue(h)
		}

		for _, item := range items {
			row := sheet.AddRow()
			row.AddCell().SetValue(item.ID)
			row.AddCell().SetValue(item.Name)
			row.AddCell().SetValue(item.Price.String())
			row.AddCell().SetValue(item.Category.Title)
			row.AddCell().SetValue(item.UpdatedAt.Format("2006-01-02 15:04:05"))
		}

		c.Header("Content-Disposition", "attachment; filename=menu.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")

		if err := file.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file"})
			return
		}
	}
}
