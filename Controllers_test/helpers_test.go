package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mesalink/mesalink/config"
	"github.com/mesalink/mesalink/models"
	"github.com/mesalink/mesalink/router"
	"github.com/mesalink/mesalink/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Restaurant{},
		&models.Table{},
		&models.MenuCategory{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
	))
	return db
}

func setupRouter(db *gorm.DB) *gin.Engine {
	return router.SetupRouter(db, config.Load())
}

// seedTable creates a fresh restaurant with one active table. Every
// test works against its own restaurant so the shared in-memory DB
// never bleeds state between tests.
func seedTable(t *testing.T, db *gorm.DB) (models.Restaurant, models.Table) {
	t.Helper()
	restaurant := models.Restaurant{Name: "La Mesa"}
	require.NoError(t, db.Create(&restaurant).Error)
	table := models.Table{RestaurantID: restaurant.ID, TableNumber: 1, IsActive: true}
	require.NoError(t, db.Create(&table).Error)
	return restaurant, table
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req, err := http.NewRequest(method, path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doAuthJSON(t *testing.T, r *gin.Engine, method, path string, payload interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req, err := http.NewRequest(method, path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// ensureSession issues a session for the table via the public endpoint
// and returns the token.
func ensureSession(t *testing.T, r *gin.Engine, restaurantID, tableID string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/sessions", map[string]interface{}{
		"restaurantId": restaurantID,
		"tableId":      tableID,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	token, _ := body["sessionToken"].(string)
	require.NotEmpty(t, token)
	return token
}
