package groupControllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kofnet002/LittleLemonAPI/middleware"
	"github.com/kofnet002/LittleLemonAPI/models"
	"github.com/kofnet002/LittleLemonAPI/policy"
	"gorm.io/gorm"
)

type GroupUserInput struct {
	Username string `json:"username" binding:"required"`
}

// GET /api/groups/{manager|delivery-crew}/users (Manager)
func GetGroupUsers(db *gorm.DB, groupName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roles := policy.RolesOf(middleware.CurrentUser(c))
		if !policy.Allows(roles, policy.OpManageGroups) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only managers can view group membership"})
			return
		}

		group, ok := findGroup(c, db, groupName)
		if !ok {
			return
		}

		var users []models.User
		if err := db.Model(group).Association("Users").Find(&users); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch group members"})
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

// POST /api/groups/{manager|delivery-crew}/users (Manager)
func AddGroupUser(db *gorm.DB, groupName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roles := policy.RolesOf(middleware.CurrentUser(c))
		if !policy.Allows(roles, policy.OpManageGroups) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only managers can change group membership"})
			return
		}

		var input GroupUserInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		group, ok := findGroup(c, db, groupName)
		if !ok {
			return
		}

		var user models.User
		if err := db.Where("username = ?", input.Username).First(&user).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		if err := db.Model(group).Association("Users").Append(&user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add user to group"})
			return
		}

		c.JSON(http.StatusCreated, user)
	}
}

// DELETE /api/groups/{manager|delivery-crew}/users/:id (Manager)
func RemoveGroupUser(db *gorm.DB, groupName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roles := policy.RolesOf(middleware.CurrentUser(c))
		if !policy.Allows(roles, policy.OpManageGroups) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only managers can change group membership"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
			return
		}

		group, ok := findGroup(c, db, groupName)
		if !ok {
			return
		}

		var user models.User
		if err := db.Preload("Groups").First(&user, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		if !user.InGroup(groupName) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User is not in this group"})
			return
		}

		if err := db.Model(group).Association("Users").Delete(&user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove user from group"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "User removed from group"})
	}
}

func findGroup(c *gin.Context, db *gorm.DB, name string) (*models.Group, bool) {
	var group models.Group
	if err := db.Where("name = ?", name).First(&group).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch group"})
		return nil, false
	}
	return &group, true
}
