package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mesalink/mesalink/models"
	"github.com/mesalink/mesalink/utils"
)

// OrderService implements the submission gateway and the status
// machine over the orders table.
type OrderService struct {
	DB *gorm.DB
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{DB: db}
}

type OrderItemInput struct {
	MenuItemID string
	Name       string
	Price      float64
	Quantity   int
}

type OrderInput struct {
	RestaurantID string
	TableID      string
	SessionToken string
	Items        []OrderItemInput
	AllergyNotes *string
	Notes        *string
	Subtotal     float64
	Tax          float64
	Total        float64
}

// Submit gates order creation on the table's current session. The
// token is re-checked here, not just at page load, because the session
// may have rotated between menu load and submission. On success the
// order is inserted with status pending and its id returned.
func (s *OrderService) Submit(in OrderInput) (string, error) {
	if len(in.Items) == 0 {
		return "", &utils.ValidationError{Message: "order must contain at least one item"}
	}

	var table models.Table
	if err := s.DB.Where("id = ? AND restaurant_id = ?", in.TableID, in.RestaurantID).First(&table).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", &utils.NotFoundError{Resource: "table"}
		}
		return "", &utils.TransientInfraError{Op: "load table", Err: err}
	}

	if table.SessionToken == nil || *table.SessionToken != in.SessionToken {
		return "", &utils.ForbiddenError{Reason: "table session expired"}
	}
	if table.SessionExpiresAt != nil && table.SessionExpiresAt.Before(time.Now()) {
		return "", &utils.ForbiddenError{Reason: "table session expired"}
	}

	order := models.Order{
		RestaurantID: in.RestaurantID,
		TableID:      in.TableID,
		SessionToken: in.SessionToken,
		Status:       models.StatusPending,
		AllergyNotes: in.AllergyNotes,
		Notes:        in.Notes,
		Subtotal:     in.Subtotal,
		Tax:          in.Tax,
		Total:        in.Total,
	}
	for _, item := range in.Items {
		order.Items = append(order.Items, models.OrderItem{
			MenuItemID: item.MenuItemID,
			Name:       item.Name,
			Price:      item.Price,
			Quantity:   item.Quantity,
		})
	}

	if err := s.DB.Create(&order).Error; err != nil {
		return "", &utils.TransientInfraError{Op: "insert order", Err: err}
	}

	utils.InfoLogger.Printf("order %s created for table %s (%d lines)", order.ID, order.TableID, len(order.Items))
	return order.ID, nil
}

// List returns the restaurant's orders, newest first, optionally
// filtered by status. Items are preloaded for the kitchen board.
func (s *OrderService) List(restaurantID string, status *models.OrderStatus) ([]models.Order, error) {
	query := s.DB.Preload("Items").Where("restaurant_id = ?", restaurantID).Order("created_at DESC")
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, &utils.TransientInfraError{Op: "list orders", Err: err}
	}
	return orders, nil
}

// Transition advances an order one step along the status chain.
// Repeating the current status is a no-op success so retried clicks
// stay idempotent; anything else outside the allowed set is rejected
// with the current status and its allowed successors.
func (s *OrderService) Transition(orderID, restaurantID string, next models.OrderStatus) (models.OrderStatus, error) {
	var order models.Order
	if err := s.DB.Where("id = ? AND restaurant_id = ?", orderID, restaurantID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", &utils.NotFoundError{Resource: "order"}
		}
		return "", &utils.TransientInfraError{Op: "load order", Err: err}
	}

	if order.Status == next {
		return order.Status, nil
	}

	if !order.Status.CanAdvanceTo(next) {
		return "", &models.InvalidTransitionError{
			Current: order.Status,
			Next:    next,
			Allowed: models.AllowedTransitions[order.Status],
		}
	}

	if err := s.DB.Model(&models.Order{}).Where("id = ?", order.ID).Update("status", next).Error; err != nil {
		return "", &utils.TransientInfraError{Op: "update order status", Err: err}
	}

	utils.InfoLogger.Printf("order %s moved %s -> %s", order.ID, order.Status, next)
	return next, nil
}
