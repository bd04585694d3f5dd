package orderControllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kofnet002/LittleLemonAPI/middleware"
	"github.com/kofnet002/LittleLemonAPI/models"
	"github.com/kofnet002/LittleLemonAPI/policy"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrEmptyCart = errors.New("cart is empty")

type UpdateOrderInput struct {
	DeliveryCrewID *uint   `json:"delivery_crew_id"`
	Status         *string `json:"status"`
}

// -------- Helpers --------

func mapOrderStatus(status string) (models.OrderStatus, error) {
	switch strings.ToLower(status) {
	case string(models.OrderStatusPending):
		return models.OrderStatusPending, nil
	case string(models.OrderStatusDelivered):
		return models.OrderStatusDelivered, nil
	default:
		return "", errors.New("invalid order status")
	}
}

func generateOrderRef() string {
	return time.Now().Format("20060102150405") + "-" + uuid.NewString()
}

// lockForUpdate adds a row lock on dialects that support it. The sqlite
// driver used in tests has no FOR UPDATE.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// -------- Core Logic --------

// Checkout converts the customer's cart into a pending order. The cart read,
// order-item creation and cart clear run in one transaction: a failure at any
// point leaves no order, no items, and the cart untouched.
func Checkout(db *gorm.DB, customer *models.User) (*models.Order, error) {
	var order models.Order

	err := db.Transaction(func(tx *gorm.DB) error {
		var lines []models.CartLine
		if err := lockForUpdate(tx).Where("user_id = ?", customer.ID).Find(&lines).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(lines))
		for _, line := range lines {
			total = total.Add(line.Price)
			items = append(items, models.OrderItem{
				MenuItemID: line.MenuItemID,
				Quantity:   line.Quantity,
				UnitPrice:  line.UnitPrice,
				Price:      line.Price,
			})
		}

		order = models.Order{
			OrderRef: generateOrderRef(),
			UserID:   customer.ID,
			Status:   models.OrderStatusPending,
			Total:    total,
			Date:     time.Now(),
			Items:    items,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		return tx.Where("user_id = ?", customer.ID).Delete(&models.CartLine{}).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// -------- Handlers --------

// POST /api/orders (Customer)
func PlaceOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		if !policy.Allows(policy.RolesOf(user), policy.OpCheckout) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only customers can place orders"})
			return
		}

		order, err := Checkout(db, user)
		if err != nil {
			if errors.Is(err, ErrEmptyCart) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to place order"})
			return
		}

		if err := db.Preload("User").Preload("Items.MenuItem").First(order, order.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve order"})
			return
		}
		broadcastOrderUpdate(*order)

		c.JSON(http.StatusCreated, order)
	}
}

// GET /api/orders
//
// The result shape is dispatched by role: customers get their own orders,
// delivery crew the orders assigned to them, and managers a flat list of
// every order item across all orders.
func GetOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		roles := policy.RolesOf(user)
		if !policy.Allows(roles, policy.OpListOrders) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to list orders"})
			return
		}

		switch {
		case roles.Manager:
			var items []models.OrderItem
			if err := db.Preload("MenuItem").Find(&items).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order items"})
				return
			}
			c.JSON(http.StatusOK, items)

		case roles.DeliveryCrew:
			var orders []models.Order
			if err := db.Preload("User").Preload("Items.MenuItem").
				Where("delivery_crew_id = ?", user.ID).
				Order("date DESC").
				Find(&orders).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
				return
			}
			c.JSON(http.StatusOK, orders)

		default:
			var orders []models.Order
			if err := db.Preload("User").Preload("Items.MenuItem").
				Where("user_id = ?", user.ID).
				Order("date DESC").
				Find(&orders).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
				return
			}
			c.JSON(http.StatusOK, orders)
		}
	}
}

// GET /api/orders/:id
func GetOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		roles := policy.RolesOf(user)
		if !roles.Authenticated {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
			return
		}

		var order models.Order
		if err := db.Preload("User").Preload("DeliveryCrew").Preload("Items.MenuItem").
			First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve order"})
			}
			return
		}

		if !canReadOrder(roles, user, &order) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to view this order"})
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

func canReadOrder(roles policy.Roles, user *models.User, order *models.Order) bool {
	if roles.Manager {
		return true
	}
	if order.UserID == user.ID {
		return true
	}
	if roles.DeliveryCrew && order.DeliveryCrewID != nil && *order.DeliveryCrewID == user.ID {
		return true
	}
	return false
}

// PUT /api/orders/:id
//
// Managers may assign delivery crew and set the status. The owning customer
// and the assigned crew member may set the status only; a delivered order is
// terminal.
func UpdateOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		roles := policy.RolesOf(user)
		if !roles.Authenticated {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
			return
		}

		var order models.Order
		if err := db.First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve order"})
			}
			return
		}

		var input UpdateOrderInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if input.DeliveryCrewID == nil && input.Status == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
			return
		}

		isOwner := order.UserID == user.ID
		isAssignedCrew := roles.DeliveryCrew && order.DeliveryCrewID != nil && *order.DeliveryCrewID == user.ID
		if !roles.Manager && !isOwner && !isAssignedCrew {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to update this order"})
			return
		}
		if input.DeliveryCrewID != nil && !roles.Manager {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only managers can assign delivery crew"})
			return
		}

		updates := map[string]interface{}{}

		if input.Status != nil {
			newStatus, err := mapOrderStatus(*input.Status)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if order.Status == models.OrderStatusDelivered && newStatus != models.OrderStatusDelivered {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Delivered orders cannot go back to pending"})
				return
			}
			updates["status"] = newStatus
		}

		if input.DeliveryCrewID != nil {
			var crew models.User
			if err := db.Preload("Groups").First(&crew, *input.DeliveryCrewID).Error; err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Delivery crew user does not exist"})
				return
			}
			if !crew.InGroup(models.GroupDeliveryCrew) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "User is not in the delivery crew group"})
				return
			}
			updates["delivery_crew_id"] = *input.DeliveryCrewID
		}

		// Repeat the role predicate and the status the decision above was
		// based on in the update itself, so a role revoked or a delivery
		// completed between the read and the write cannot slip through.
		query := db.Model(&models.Order{}).
			Where("id = ?", order.ID).
			Where("status = ?", order.Status)
		switch {
		case roles.Manager:
		case isAssignedCrew:
			query = query.Where("delivery_crew_id = ?", user.ID)
		default:
			query = query.Where("user_id = ?", user.ID)
		}

		result := query.Updates(updates)
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
			return
		}
		if result.RowsAffected == 0 {
			var check models.Order
			if errors.Is(db.First(&check, order.ID).Error, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			} else {
				c.JSON(http.StatusConflict, gin.H{"error": "Order was updated concurrently"})
			}
			return
		}

		if err := db.Preload("User").Preload("DeliveryCrew").Preload("Items.MenuItem").
			First(&order, order.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve order"})
			return
		}
		broadcastOrderUpdate(order)

		c.JSON(http.StatusOK, order)
	}
}

// DELETE /api/orders/:id (Manager)
func DeleteOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		roles := policy.RolesOf(middleware.CurrentUser(c))
		if !policy.Allows(roles, policy.OpDeleteOrder) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only managers can remove orders"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
			return
		}

		var order models.Order
		if err := db.First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve order"})
			}
			return
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
				return err
			}
			return tx.Delete(&order).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete order"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
	}
}
