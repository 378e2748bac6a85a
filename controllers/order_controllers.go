package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mesalink/mesalink/kds"
	"github.com/mesalink/mesalink/models"
	"github.com/mesalink/mesalink/services"
	"github.com/mesalink/mesalink/utils"
)

type OrderController struct {
	DB      *gorm.DB
	Service *services.OrderService
}

func NewOrderController(db *gorm.DB) *OrderController {
	return &OrderController{
		DB:      db,
		Service: services.NewOrderService(db),
	}
}

type orderItemReq struct {
	MenuItemID string  `json:"menuItemId" binding:"required,uuid"`
	Name       string  `json:"name" binding:"required,max=120"`
	Price      float64 `json:"price" binding:"gte=0"`
	Quantity   int     `json:"quantity" binding:"required,gte=1,lte=99"`
}

type orderReq struct {
	RestaurantID string         `json:"restaurantId" binding:"required,uuid"`
	TableID      string         `json:"tableId" binding:"required,uuid"`
	SessionToken string         `json:"sessionToken" binding:"required"`
	Items        []orderItemReq `json:"items" binding:"required,min=1,max=99,dive"`
	AllergyNotes *string        `json:"allergyNotes"`
	Notes        *string        `json:"notes"`
	Subtotal     float64        `json:"subtotal" binding:"gte=0"`
	Tax          float64        `json:"tax" binding:"gte=0"`
	Total        float64        `json:"total" binding:"gte=0"`
}

// CreateOrder handles POST /orders. Validation runs in a fixed order:
// shape first, then table ownership, then the session gate; the
// service owns the latter two.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req orderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	allergyNotes, err := utils.SanitizeOptional(req.AllergyNotes, utils.SanitizeOptions{
		FieldLabel: "allergy notes",
		MaxLength:  500,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	notes, err := utils.SanitizeOptional(req.Notes, utils.SanitizeOptions{
		FieldLabel:    "notes",
		MaxLength:     500,
		AllowNewlines: true,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	in := services.OrderInput{
		RestaurantID: req.RestaurantID,
		TableID:      req.TableID,
		SessionToken: req.SessionToken,
		AllergyNotes: allergyNotes,
		Notes:        notes,
		Subtotal:     req.Subtotal,
		Tax:          req.Tax,
		Total:        req.Total,
	}
	for _, item := range req.Items {
		in.Items = append(in.Items, services.OrderItemInput{
			MenuItemID: item.MenuItemID,
			Name:       item.Name,
			Price:      item.Price,
			Quantity:   item.Quantity,
		})
	}

	orderID, err := oc.Service.Submit(in)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var created models.Order
	if err := oc.DB.Preload("Items").First(&created, "id = ?", orderID).Error; err == nil {
		kds.BroadcastOrderCreated(created)
	}

	c.JSON(http.StatusCreated, gin.H{"orderId": orderID})
}

// ListOrders handles GET /orders?restaurantId=&status=.
func (oc *OrderController) ListOrders(c *gin.Context) {
	restaurantID := c.Query("restaurantId")
	if restaurantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "restaurantId required"})
		return
	}

	var statusFilter *models.OrderStatus
	if raw := c.Query("status"); raw != "" {
		status := models.OrderStatus(raw)
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid status"})
			return
		}
		statusFilter = &status
	}

	orders, err := oc.Service.List(restaurantID, statusFilter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// UpdateOrderStatus handles PATCH /orders: one forward step along the
// status chain, idempotent on repeats.
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	var req struct {
		RestaurantID string `json:"restaurantId" binding:"required,uuid"`
		OrderID      string `json:"orderId" binding:"required,uuid"`
		NextStatus   string `json:"nextStatus" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	next := models.OrderStatus(req.NextStatus)
	if !next.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid status"})
		return
	}

	status, err := oc.Service.Transition(req.OrderID, req.RestaurantID, next)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	kds.BroadcastOrderStatus(req.OrderID, status)

	c.JSON(http.StatusOK, gin.H{"orderId": req.OrderID, "status": status})
}
