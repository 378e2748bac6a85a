// Package kitchen drives the staff-facing order board: a cooperative
// polling loop that groups non-terminal orders into status columns and
// issues guarded transition requests.
package kitchen

import (
	"context"
	"sync"
	"time"

	"github.com/mesalink/mesalink/client"
	"github.com/mesalink/mesalink/models"
	"github.com/mesalink/mesalink/utils"
)

// DefaultPollInterval keeps /orders traffic low without losing
// board freshness.
const DefaultPollInterval = 12 * time.Second

// Column order on the board. Delivered orders are dropped entirely
// once fetched; the server is not asked to filter.
var StatusColumns = []models.OrderStatus{
	models.StatusPending,
	models.StatusPreparing,
	models.StatusReady,
}

// nextStatus maps each column to the single forward move its action
// button performs.
var nextStatus = map[models.OrderStatus]models.OrderStatus{
	models.StatusPending:   models.StatusPreparing,
	models.StatusPreparing: models.StatusReady,
	models.StatusReady:     models.StatusDelivered,
}

type Columns struct {
	Pending   []client.Order
	Preparing []client.Order
	Ready     []client.Order
}

// Board polls the order list on a fixed interval and exposes guarded
// advance actions. Ticks are driven by the timer alone; a hung fetch
// cannot delay the next tick because the API client's transport
// timeout bounds every call.
type Board struct {
	api          *client.API
	restaurantID string
	interval     time.Duration

	onUpdate func(Columns)
	onError  func(error)

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewBoard(api *client.API, restaurantID string, interval time.Duration, onUpdate func(Columns), onError func(error)) *Board {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Board{
		api:          api,
		restaurantID: restaurantID,
		interval:     interval,
		onUpdate:     onUpdate,
		onError:      onError,
		inflight:     make(map[string]struct{}),
	}
}

// Run refreshes immediately, then on every tick until ctx is
// cancelled. Transient failures surface through onError and polling
// simply continues; there is no circuit breaker.
func (b *Board) Run(ctx context.Context) {
	b.Refresh(ctx)

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.Refresh(ctx)
		}
	}
}

// Refresh fetches the restaurant's orders and regroups the columns.
func (b *Board) Refresh(ctx context.Context) {
	orders, err := b.api.ListOrders(ctx, b.restaurantID, "")
	if err != nil {
		if ctx.Err() == nil && b.onError != nil {
			b.onError(err)
		}
		return
	}

	var cols Columns
	for _, order := range orders {
		switch models.OrderStatus(order.Status) {
		case models.StatusPending:
			cols.Pending = append(cols.Pending, order)
		case models.StatusPreparing:
			cols.Preparing = append(cols.Preparing, order)
		case models.StatusReady:
			cols.Ready = append(cols.Ready, order)
		default:
			// delivered never appears on the board
		}
	}

	if b.onUpdate != nil {
		b.onUpdate(cols)
	}
}

// Advance moves the order to its column's next status. While a request
// for a given order id is in flight, further advances for that id are
// ignored; server-side idempotency is the backstop for anything that
// slips through.
func (b *Board) Advance(ctx context.Context, order client.Order) {
	next, ok := nextStatus[models.OrderStatus(order.Status)]
	if !ok {
		return
	}

	b.mu.Lock()
	if _, busy := b.inflight[order.ID]; busy {
		b.mu.Unlock()
		return
	}
	b.inflight[order.ID] = struct{}{}
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.inflight, order.ID)
		b.mu.Unlock()
	}()

	if _, err := b.api.AdvanceOrder(ctx, b.restaurantID, order.ID, string(next)); err != nil {
		utils.ErrorLogger.Printf("board: advance %s -> %s failed: %v", order.ID, next, err)
		if ctx.Err() == nil && b.onError != nil {
			b.onError(err)
		}
		return
	}

	b.Refresh(ctx)
}

// Advancing reports whether an advance request for the order id is
// currently in flight. UIs disable the action button off this.
func (b *Board) Advancing(orderID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, busy := b.inflight[orderID]
	return busy
}
