package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kofnet002/LittleLemonAPI/auth"
	"github.com/kofnet002/LittleLemonAPI/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Group{}))
	require.NoError(t, db.Create(&models.Group{Name: models.GroupManager}).Error)
	return db
}

func TestAuthenticate(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)

	user := models.User{Username: "alice", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)

	r := gin.New()
	r.GET("/whoami", Authenticate(db), func(c *gin.Context) {
		caller := CurrentUser(c)
		require.NotNil(t, caller)
		c.JSON(http.StatusOK, gin.H{"username": caller.Username, "groups": len(caller.Groups)})
	})

	whoami := func(header string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("missing header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, whoami("").Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, whoami("Bearer not-a-token").Code)
	})

	t.Run("valid token resolves the caller", func(t *testing.T) {
		token, err := auth.IssueToken(&user)
		require.NoError(t, err)
		w := whoami("Bearer " + token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "alice")
	})

	t.Run("roles reloaded per request", func(t *testing.T) {
		// Group granted after the token was issued is still visible.
		var managers models.Group
		require.NoError(t, db.Where("name = ?", models.GroupManager).First(&managers).Error)
		require.NoError(t, db.Model(&managers).Association("Users").Append(&user))

		token, err := auth.IssueToken(&user)
		require.NoError(t, err)
		w := whoami("Bearer " + token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"groups":1`)
	})

	t.Run("token for a deleted user", func(t *testing.T) {
		ghost := models.User{Username: "ghost", PasswordHash: "x"}
		require.NoError(t, db.Create(&ghost).Error)
		token, err := auth.IssueToken(&ghost)
		require.NoError(t, err)
		require.NoError(t, db.Delete(&models.User{}, ghost.ID).Error)

		assert.Equal(t, http.StatusUnauthorized, whoami("Bearer "+token).Code)
	})
}
