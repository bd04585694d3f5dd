package menuitemControllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kofnet002/LittleLemonAPI/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Group{}, &models.Category{}, &models.MenuItem{},
	))
	for _, name := range []string{models.GroupManager, models.GroupDeliveryCrew} {
		require.NoError(t, db.Create(&models.Group{Name: name}).Error)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string, groups ...string) *models.User {
	t.Helper()
	user := models.User{Username: username, Email: username + "@test.local", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)
	for _, name := range groups {
		var group models.Group
		require.NoError(t, db.Where("name = ?", name).First(&group).Error)
		require.NoError(t, db.Model(&group).Association("Users").Append(&user))
	}
	require.NoError(t, db.Preload("Groups").First(&user, user.ID).Error)
	return &user
}

func createCategory(t *testing.T, db *gorm.DB, title string) *models.Category {
	t.Helper()
	category := models.Category{Title: title, Slug: strings.ToLower(title)}
	require.NoError(t, db.Create(&category).Error)
	return &category
}

func request(user *models.User, method, body string, params ...gin.Param) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	if body == "" {
		body = "{}"
	}
	c.Request = httptest.NewRequest(method, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	if user != nil {
		c.Set("user", user)
	}
	c.Params = params
	return c, w
}

func TestCreateMenuItem(t *testing.T) {
	db := newTestDB(t)
	manager := createUser(t, db, "mary", models.GroupManager)
	customer := createUser(t, db, "alice")
	crew := createUser(t, db, "dan", models.GroupDeliveryCrew)
	category := createCategory(t, db, "Mains")

	body := `{"name": "Greek Salad", "price": 12.00, "category_id": ` + strconv.Itoa(int(category.ID)) + `}`

	t.Run("customer denied", func(t *testing.T) {
		c, w := request(customer, http.MethodPost, body)
		CreateMenuItem(db)(c)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("delivery crew denied", func(t *testing.T) {
		c, w := request(crew, http.MethodPost, body)
		CreateMenuItem(db)(c)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("manager creates the item", func(t *testing.T) {
		c, w := request(manager, http.MethodPost, body)
		CreateMenuItem(db)(c)
		require.Equal(t, http.StatusCreated, w.Code)

		var item models.MenuItem
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &item))
		assert.Equal(t, "Greek Salad", item.Name)
		assert.True(t, item.Price.Equal(decimal.RequireFromString("12.00")))
		assert.Equal(t, "Mains", item.Category.Title)

		// Round trip through the read endpoint.
		c, w = request(customer, http.MethodGet, "", gin.Param{Key: "id", Value: strconv.Itoa(int(item.ID))})
		GetMenuItemByID(db)(c)
		require.Equal(t, http.StatusOK, w.Code)

		var fetched models.MenuItem
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
		assert.Equal(t, "Greek Salad", fetched.Name)
		assert.True(t, fetched.Price.Equal(decimal.RequireFromString("12.00")))
	})
}

func TestCreateMenuItemValidation(t *testing.T) {
	db := newTestDB(t)
	manager := createUser(t, db, "mary", models.GroupManager)
	category := createCategory(t, db, "Mains")

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing name", `{"price": 12.00, "category_id": ` + strconv.Itoa(int(category.ID)) + `}`, "name"},
		{"zero price", `{"name": "Water", "price": 0, "category_id": ` + strconv.Itoa(int(category.ID)) + `}`, "price"},
		{"negative price", `{"name": "Water", "price": -1, "category_id": ` + strconv.Itoa(int(category.ID)) + `}`, "price"},
		{"missing category", `{"name": "Water", "price": 1.00}`, "category_id"},
		{"unknown category", `{"name": "Water", "price": 1.00, "category_id": 9999}`, "category_id"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, w := request(manager, http.MethodPost, tc.body)
			CreateMenuItem(db)(c)
			require.Equal(t, http.StatusBadRequest, w.Code)

			var resp struct {
				Fields map[string]string `json:"fields"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Contains(t, resp.Fields, tc.field)
		})
	}
}

func TestGetMenuItems(t *testing.T) {
	db := newTestDB(t)
	customer := createUser(t, db, "alice")
	category := createCategory(t, db, "Mains")
	require.NoError(t, db.Create(&models.MenuItem{
		Name: "Greek Salad", Price: decimal.RequireFromString("12.00"), CategoryID: category.ID,
	}).Error)

	c, w := request(customer, http.MethodGet, "")
	GetMenuItems(db)(c)
	require.Equal(t, http.StatusOK, w.Code)

	var items []models.MenuItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Mains", items[0].Category.Title)
}

func TestGetMenuItemNotFound(t *testing.T) {
	db := newTestDB(t)
	customer := createUser(t, db, "alice")

	c, w := request(customer, http.MethodGet, "", gin.Param{Key: "id", Value: "9999"})
	GetMenuItemByID(db)(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateMenuItem(t *testing.T) {
	db := newTestDB(t)
	manager := createUser(t, db, "mary", models.GroupManager)
	customer := createUser(t, db, "alice")
	category := createCategory(t, db, "Mains")

	item := models.MenuItem{Name: "Greek Salad", Price: decimal.RequireFromString("12.00"), CategoryID: category.ID}
	require.NoError(t, db.Create(&item).Error)
	idParam := gin.Param{Key: "id", Value: strconv.Itoa(int(item.ID))}
	body := `{"name": "Greek Salad XL", "price": 15.50, "category_id": ` + strconv.Itoa(int(category.ID)) + `}`

	t.Run("customer denied", func(t *testing.T) {
		c, w := request(customer, http.MethodPut, body, idParam)
		UpdateMenuItem(db)(c)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("manager updates", func(t *testing.T) {
		c, w := request(manager, http.MethodPut, body, idParam)
		UpdateMenuItem(db)(c)
		require.Equal(t, http.StatusOK, w.Code)

		var updated models.MenuItem
		require.NoError(t, db.First(&updated, item.ID).Error)
		assert.Equal(t, "Greek Salad XL", updated.Name)
		assert.True(t, updated.Price.Equal(decimal.RequireFromString("15.50")))
	})

	t.Run("unknown item is not found", func(t *testing.T) {
		c, w := request(manager, http.MethodPut, body, gin.Param{Key: "id", Value: "9999"})
		UpdateMenuItem(db)(c)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDeleteMenuItem(t *testing.T) {
	db := newTestDB(t)
	manager := createUser(t, db, "mary", models.GroupManager)
	customer := createUser(t, db, "alice")
	category := createCategory(t, db, "Mains")

	item := models.MenuItem{Name: "Greek Salad", Price: decimal.RequireFromString("12.00"), CategoryID: category.ID}
	require.NoError(t, db.Create(&item).Error)
	idParam := gin.Param{Key: "id", Value: strconv.Itoa(int(item.ID))}

	t.Run("customer denied", func(t *testing.T) {
		c, w := request(customer, http.MethodDelete, "", idParam)
		DeleteMenuItem(db)(c)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("manager deletes", func(t *testing.T) {
		c, w := request(manager, http.MethodDelete, "", idParam)
		DeleteMenuItem(db)(c)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("second delete is not found", func(t *testing.T) {
		c, w := request(manager, http.MethodDelete, "", idParam)
		DeleteMenuItem(db)(c)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCategories(t *testing.T) {
	db := newTestDB(t)
	manager := createUser(t, db, "mary", models.GroupManager)
	customer := createUser(t, db, "alice")

	t.Run("customer cannot create", func(t *testing.T) {
		c, w := request(customer, http.MethodPost, `{"title": "Desserts"}`)
		CreateCategory(db)(c)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("manager creates with derived slug", func(t *testing.T) {
		c, w := request(manager, http.MethodPost, `{"title": "Hot Drinks"}`)
		CreateCategory(db)(c)
		require.Equal(t, http.StatusCreated, w.Code)

		var category models.Category
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &category))
		assert.Equal(t, "hot-drinks", category.Slug)
	})

	t.Run("anyone lists", func(t *testing.T) {
		c, w := request(customer, http.MethodGet, "")
		GetCategories(db)(c)
		require.Equal(t, http.StatusOK, w.Code)

		var categories []models.Category
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &categories))
		assert.Len(t, categories, 1)
	})
}

func TestExportMenuToExcel(t *testing.T) {
	db := newTestDB(t)
	manager := createUser(t, db, "mary", models.GroupManager)
	customer := createUser(t, db, "alice")
	category := createCategory(t, db, "Mains")
	require.NoError(t, db.Create(&models.MenuItem{
		Name: "Greek Salad", Price: decimal.RequireFromString("12.00"), CategoryID: category.ID,
	}).Error)

	t.Run("customer denied", func(t *testing.T) {
		c, w := request(customer, http.MethodGet, "")
		ExportMenuToExcel(db)(c)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("manager downloads spreadsheet", func(t *testing.T) {
		c, w := request(manager, http.MethodGet, "")
		ExportMenuToExcel(db)(c)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Disposition"), "menu.xlsx")
		assert.NotZero(t, w.Body.Len())
	})
}
