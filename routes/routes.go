package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/kofnet002/LittleLemonAPI/auth"
	cartControllers "github.com/kofnet002/LittleLemonAPI/controllers/cart"
	groupControllers "github.com/kofnet002/LittleLemonAPI/controllers/group"
	menuitemControllers "github.com/kofnet002/LittleLemonAPI/controllers/menuitem"
	orderControllers "github.com/kofnet002/LittleLemonAPI/controllers/order"
	"github.com/kofnet002/LittleLemonAPI/middleware"
	"github.com/kofnet002/LittleLemonAPI/models"
	"gorm.io/gorm"
)

// SetupRoutes wires the auth endpoints, the token-protected API surface and
// the websocket order feed.
func SetupRoutes(r *gin.Engine, db *gorm.DB) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", auth.Register(db))
		authGroup.POST("/login", auth.Login(db))
	}

	// Live order feed; pushed to on checkout and status updates.
	r.GET("/orders/ws", orderControllers.OrderFeedHandler)

	api := r.Group("/api")
	api.Use(middleware.Authenticate(db))
	{
		// ─────────── Menu ───────────
		api.GET("/menu-items", menuitemControllers.GetMenuItems(db))
		api.POST("/menu-items", menuitemControllers.CreateMenuItem(db))
		api.GET("/menu-items/export-excel", menuitemControllers.ExportMenuToExcel(db))
		api.GET("/menu-items/:id", menuitemControllers.GetMenuItemByID(db))
		api.PUT("/menu-items/:id", menuitemControllers.UpdateMenuItem(db))
		api.DELETE("/menu-items/:id", menuitemControllers.DeleteMenuItem(db))

		api.GET("/categories", menuitemControllers.GetCategories(db))
		api.POST("/categories", menuitemControllers.CreateCategory(db))

		// ─────────── Group Membership ───────────
		managerGroup := api.Group("/groups/manager/users")
		{
			managerGroup.GET("", groupControllers.GetGroupUsers(db, models.GroupManager))
			managerGroup.POST("", groupControllers.AddGroupUser(db, models.GroupManager))
			managerGroup.DELETE("/:id", groupControllers.RemoveGroupUser(db, models.GroupManager))
		}
		crewGroup := api.Group("/groups/delivery-crew/users")
		{
			crewGroup.GET("", groupControllers.GetGroupUsers(db, models.GroupDeliveryCrew))
			crewGroup.POST("", groupControllers.AddGroupUser(db, models.GroupDeliveryCrew))
			crewGroup.DELETE("/:id", groupControllers.RemoveGroupUser(db, models.GroupDeliveryCrew))
		}

		// ─────────── Shopping Cart ───────────
		cartGroup := api.Group("/cart/menu-items")
		{
			cartGroup.GET("", cartControllers.GetCartLines(db))
			cartGroup.POST("", cartControllers.AddCartLine(db))
			cartGroup.DELETE("/:id", cartControllers.DeleteCartLine(db))
		}

		// ─────────── Orders ───────────
		orderGroup := api.Group("/orders")
		{
			orderGroup.POST("", orderControllers.PlaceOrderHandler(db))
			orderGroup.GET("", orderControllers.GetOrdersHandler(db))
			orderGroup.GET("/:id", orderControllers.GetOrderHandler(db))
			orderGroup.PUT("/:id", orderControllers.UpdateOrderHandler(db))
			orderGroup.DELETE("/:id", orderControllers.DeleteOrderHandler(db))
		}
	}
}
