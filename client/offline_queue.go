package client

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/mesalink/mesalink/utils"
)

const orderQueueKey = "mesalink-order-queue"

// QueuedOrder wraps a fully-formed submission payload with the moment
// it was parked.
type QueuedOrder struct {
	CreatedAt int64        `json:"createdAt"`
	Payload   OrderPayload `json:"payload"`
}

// SubmitResult tells the UI whether the order reached the server or
// was parked locally; the two must never look the same to the diner.
type SubmitResult struct {
	OrderID string
	Queued  bool
}

// OfflineQueue buffers order submissions across connectivity gaps.
// Entries are appended, never overwritten, and the queue is persisted
// after every mutation so partial flushes survive restarts.
type OfflineQueue struct {
	storage Storage
	api     *API
	mu      sync.Mutex
}

func NewOfflineQueue(storage Storage, api *API) *OfflineQueue {
	return &OfflineQueue{storage: storage, api: api}
}

func (q *OfflineQueue) load() []QueuedOrder {
	raw, ok := q.storage.Get(orderQueueKey)
	if !ok {
		return nil
	}
	var queue []QueuedOrder
	if err := json.Unmarshal([]byte(raw), &queue); err != nil {
		// corrupt queue data behaves as empty
		return nil
	}
	return queue
}

func (q *OfflineQueue) save(queue []QueuedOrder) error {
	if len(queue) == 0 {
		return q.storage.Delete(orderQueueKey)
	}
	raw, err := json.Marshal(queue)
	if err != nil {
		return err
	}
	return q.storage.Set(orderQueueKey, string(raw))
}

// Enqueue appends the payload to the durable queue.
func (q *OfflineQueue) Enqueue(payload OrderPayload) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	queue := append(q.load(), QueuedOrder{
		CreatedAt: time.Now().UnixMilli(),
		Payload:   payload,
	})
	return q.save(queue)
}

// Len reports how many orders are waiting.
func (q *OfflineQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.load())
}

// Submit sends the order, parking it in the queue when the failure is
// connectivity (no server response). Validation and auth rejections
// are returned to the caller untouched; queuing those would only
// replay a guaranteed failure.
func (q *OfflineQueue) Submit(ctx context.Context, payload OrderPayload) (SubmitResult, error) {
	orderID, err := q.api.SubmitOrder(ctx, payload)
	if err == nil {
		return SubmitResult{OrderID: orderID}, nil
	}
	if !IsConnectivityError(err) || ctx.Err() != nil {
		return SubmitResult{}, err
	}

	if qErr := q.Enqueue(payload); qErr != nil {
		utils.ErrorLogger.Printf("offline queue: enqueue failed: %v", qErr)
		return SubmitResult{}, err
	}
	utils.InfoLogger.Printf("offline queue: order for table %s parked until reconnect", payload.TableID)
	return SubmitResult{Queued: true}, nil
}

// Flush retries every queued entry through the normal submission call.
// Entries that succeed are removed, entries that fail are kept, and
// the queue is persisted after the attempt so partial success sticks.
func (q *OfflineQueue) Flush(ctx context.Context) (sent, kept int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	queue := q.load()
	if len(queue) == 0 {
		return 0, 0
	}

	remaining := make([]QueuedOrder, 0, len(queue))
	for _, entry := range queue {
		if ctx.Err() != nil {
			remaining = append(remaining, entry)
			continue
		}
		if _, err := q.api.SubmitOrder(ctx, entry.Payload); err != nil {
			remaining = append(remaining, entry)
			continue
		}
		sent++
	}

	if err := q.save(remaining); err != nil {
		utils.ErrorLogger.Printf("offline queue: persist after flush failed: %v", err)
	}
	return sent, len(remaining)
}

// Run flushes opportunistically at start when online, then on every
// offline->online transition. It is event-driven, not polled, and
// detaches when ctx is cancelled.
func (q *OfflineQueue) Run(ctx context.Context, online <-chan bool, startOnline bool) {
	if startOnline {
		q.Flush(ctx)
	}
	wasOnline := startOnline
	for {
		select {
		case <-ctx.Done():
			return
		case isOnline, ok := <-online:
			if !ok {
				return
			}
			if isOnline && !wasOnline {
				q.Flush(ctx)
			}
			wasOnline = isOnline
		}
	}
}
