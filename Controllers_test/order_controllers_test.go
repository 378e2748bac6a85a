package Controllers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesalink/mesalink/models"
)

func orderPayload(restaurantID, tableID, token string) map[string]interface{} {
	return map[string]interface{}{
		"restaurantId": restaurantID,
		"tableId":      tableID,
		"sessionToken": token,
		"items": []map[string]interface{}{
			{"menuItemId": uuid.NewString(), "name": "Tacos al pastor", "price": 95.0, "quantity": 2},
		},
		"subtotal": 190.0,
		"tax":      30.4,
		"total":    220.4,
	}
}

func createOrder(t *testing.T, r *gin.Engine, restaurantID, tableID, token string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/orders", orderPayload(restaurantID, tableID, token))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	orderID, _ := decodeBody(t, w)["orderId"].(string)
	require.NotEmpty(t, orderID)
	return orderID
}

func TestCreateOrderHappyPath(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)
	restaurant, table := seedTable(t, db)
	token := ensureSession(t, r, restaurant.ID, table.ID)

	orderID := createOrder(t, r, restaurant.ID, table.ID, token)

	var order models.Order
	require.NoError(t, db.Preload("Items").First(&order, "id = ?", orderID).Error)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, table.ID, order.TableID)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Tacos al pastor", order.Items[0].Name)
	assert.Equal(t, 2, order.Items[0].Quantity)
}

func TestCreateOrderWithoutSession(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)
	restaurant, table := seedTable(t, db)

	w := doJSON(t, r, http.MethodPost, "/orders", orderPayload(restaurant.ID, table.ID, uuid.NewString()))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateOrderTokenMismatch(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)
	restaurant, table := seedTable(t, db)
	ensureSession(t, r, restaurant.ID, table.ID)

	w := doJSON(t, r, http.MethodPost, "/orders", orderPayload(restaurant.ID, table.ID, uuid.NewString()))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateOrderExpiredSession(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)
	restaurant, table := seedTable(t, db)
	token := ensureSession(t, r, restaurant.ID, table.ID)

	expired := time.Now().Add(-time.Minute)
	require.NoError(t, db.Model(&table).Update("session_expires_at", expired).Error)

	w := doJSON(t, r, http.MethodPost, "/orders", orderPayload(restaurant.ID, table.ID, token))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateOrderUnknownTable(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)
	restaurant, _ := seedTable(t, db)

	w := doJSON(t, r, http.MethodPost, "/orders", orderPayload(restaurant.ID, uuid.NewString(), uuid.NewString()))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateOrderValidation(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)
	restaurant, table := seedTable(t, db)
	token := ensureSession(t, r, restaurant.ID, table.ID)

	cases := []struct {
		name   string
		mutate func(payload map[string]interface{})
	}{
		{"empty items", func(p map[string]interface{}) {
			p["items"] = []map[string]interface{}{}
		}},
		{"quantity zero", func(p map[string]interface{}) {
			p["items"].([]map[string]interface{})[0]["quantity"] = 0
		}},
		{"quantity above cap", func(p map[string]interface{}) {
			p["items"].([]map[string]interface{})[0]["quantity"] = 100
		}},
		{"negative price", func(p map[string]interface{}) {
			p["items"].([]map[string]interface{})[0]["price"] = -1.0
		}},
		{"allergy notes with line break", func(p map[string]interface{}) {
			p["allergyNotes"] = "peanuts\nshellfish"
		}},
		{"notes with emoji", func(p map[string]interface{}) {
			p["notes"] = "extra salsa \U0001F336"
		}},
		{"notes with control character", func(p map[string]interface{}) {
			p["notes"] = "extra\x00salsa"
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload := orderPayload(restaurant.ID, table.ID, token)
			tc.mutate(payload)
			w := doJSON(t, r, http.MethodPost, "/orders", payload)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestCreateOrderNotesAllowLineBreaks(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)
	restaurant, table := seedTable(t, db)
	token := ensureSession(t, r, restaurant.ID, table.ID)

	payload := orderPayload(restaurant.ID, table.ID, token)
	payload["notes"] = "no onions\nbring cutlery"

	w := doJSON(t, r, http.MethodPost, "/orders", payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var order models.Order
	require.NoError(t, db.First(&order, "id = ?", decodeBody(t, w)["orderId"]).Error)
	require.NotNil(t, order.Notes)
	assert.Equal(t, "no onions\nbring cutlery", *order.Notes)
}

// Orders snapshot the item name and price at submission; a later menu
// edit must not rewrite what the kitchen already saw.
func TestOrderItemsSnapshotMenuEdits(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)
	restaurant, table := seedTable(t, db)
	token := ensureSession(t, r, restaurant.ID, table.ID)

	category := models.MenuCategory{RestaurantID: restaurant.ID, Name: "Mains"}
	require.NoError(t, db.Create(&category).Error)
	item := models.MenuItem{
		RestaurantID: restaurant.ID,
		CategoryID:   category.ID,
		Name:         "Tacos al pastor",
		Price:        95.0,
		Available:    true,
	}
	require.NoError(t, db.Create(&item).Error)

	payload := orderPayload(restaurant.ID, table.ID, token)
	payload["items"].([]map[string]interface{})[0]["menuItemId"] = item.ID
	w := doJSON(t, r, http.MethodPost, "/orders", payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	orderID := decodeBody(t, w)["orderId"].(string)

	require.NoError(t, db.Model(&item).Updates(map[string]interface{}{
		"name":  "Tacos de canasta",
		"price": 120.0,
	}).Error)

	var order models.Order
	require.NoError(t, db.Preload("Items").First(&order, "id = ?", orderID).Error)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Tacos al pastor", order.Items[0].Name)
	assert.Equal(t, 95.0, order.Items[0].Price)
}

func TestListOrdersRequiresRestaurantID(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)

	w := doJSON(t, r, http.MethodGet, "/orders", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListOrdersRejectsUnknownStatus(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)
	restaurant, _ := seedTable(t, db)

	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/orders?restaurantId=%s&status=cancelled", restaurant.ID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListOrdersStatusFilter(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)
	restaurant, table := seedTable(t, db)
	token := ensureSession(t, r, restaurant.ID, table.ID)

	first := createOrder(t, r, restaurant.ID, table.ID, token)
	second := createOrder(t, r, restaurant.ID, table.ID, token)

	patchStatus(t, r, restaurant.ID, second, "preparing", http.StatusOK)

	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/orders?restaurantId=%s&status=pending", restaurant.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	orders := decodeBody(t, w)["orders"].([]interface{})
	require.Len(t, orders, 1)
	assert.Equal(t, first, orders[0].(map[string]interface{})["id"])
}

func patchStatus(t *testing.T, r *gin.Engine, restaurantID, orderID, next string, wantCode int) map[string]interface{} {
	t.Helper()
	w := doJSON(t, r, http.MethodPatch, "/orders", map[string]interface{}{
		"restaurantId": restaurantID,
		"orderId":      orderID,
		"nextStatus":   next,
	})
	require.Equal(t, wantCode, w.Code, w.Body.String())
	return decodeBody(t, w)
}

func TestUpdateOrderStatusChain(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)
	restaurant, table := seedTable(t, db)
	token := ensureSession(t, r, restaurant.ID, table.ID)
	orderID := createOrder(t, r, restaurant.ID, table.ID, token)

	body := patchStatus(t, r, restaurant.ID, orderID, "preparing", http.StatusOK)
	assert.Equal(t, "preparing", body["status"])

	// repeating the current status is an idempotent success
	body = patchStatus(t, r, restaurant.ID, orderID, "preparing", http.StatusOK)
	assert.Equal(t, "preparing", body["status"])

	body = patchStatus(t, r, restaurant.ID, orderID, "ready", http.StatusOK)
	assert.Equal(t, "ready", body["status"])

	var order models.Order
	require.NoError(t, db.First(&order, "id = ?", orderID).Error)
	assert.Equal(t, models.StatusReady, order.Status)
}

func TestUpdateOrderStatusRejectsBackwardMove(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)
	restaurant, table := seedTable(t, db)
	token := ensureSession(t, r, restaurant.ID, table.ID)
	orderID := createOrder(t, r, restaurant.ID, table.ID, token)

	patchStatus(t, r, restaurant.ID, orderID, "preparing", http.StatusOK)
	patchStatus(t, r, restaurant.ID, orderID, "ready", http.StatusOK)

	body := patchStatus(t, r, restaurant.ID, orderID, "pending", http.StatusBadRequest)
	assert.Equal(t, "ready", body["currentStatus"])
	assert.Equal(t, []interface{}{"delivered"}, body["allowedStatuses"])

	// the rejected request must not have touched the row
	var order models.Order
	require.NoError(t, db.First(&order, "id = ?", orderID).Error)
	assert.Equal(t, models.StatusReady, order.Status)
}

func TestUpdateOrderStatusRejectsSkippedStep(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)
	restaurant, table := seedTable(t, db)
	token := ensureSession(t, r, restaurant.ID, table.ID)
	orderID := createOrder(t, r, restaurant.ID, table.ID, token)

	body := patchStatus(t, r, restaurant.ID, orderID, "ready", http.StatusBadRequest)
	assert.Equal(t, "pending", body["currentStatus"])
	assert.Equal(t, []interface{}{"preparing"}, body["allowedStatuses"])
}

func TestUpdateOrderStatusDeliveredIsTerminal(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)
	restaurant, table := seedTable(t, db)
	token := ensureSession(t, r, restaurant.ID, table.ID)
	orderID := createOrder(t, r, restaurant.ID, table.ID, token)

	patchStatus(t, r, restaurant.ID, orderID, "preparing", http.StatusOK)
	patchStatus(t, r, restaurant.ID, orderID, "ready", http.StatusOK)
	patchStatus(t, r, restaurant.ID, orderID, "delivered", http.StatusOK)

	body := patchStatus(t, r, restaurant.ID, orderID, "preparing", http.StatusBadRequest)
	assert.Equal(t, "delivered", body["currentStatus"])
	assert.Equal(t, []interface{}{}, body["allowedStatuses"])
}

func TestUpdateOrderStatusUnknownOrder(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)
	restaurant, _ := seedTable(t, db)

	patchStatus(t, r, restaurant.ID, uuid.NewString(), "preparing", http.StatusNotFound)
}

func TestUpdateOrderStatusRejectsUnknownStatusValue(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)
	restaurant, table := seedTable(t, db)
	token := ensureSession(t, r, restaurant.ID, table.ID)
	orderID := createOrder(t, r, restaurant.ID, table.ID, token)

	patchStatus(t, r, restaurant.ID, orderID, "cancelled", http.StatusBadRequest)
}
