package client

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mesalink/mesalink/utils"
)

const cartStorageKey = "mesalink-cart"

const (
	minLineQuantity = 1
	maxLineQuantity = 99
)

// CartItem is the menu data a line was built from, held by value so a
// later menu edit never changes what is already in the cart.
type CartItem struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Price     float64  `json:"price"`
	Allergens []string `json:"allergens,omitempty"`
}

type CartLine struct {
	Item     CartItem `json:"item"`
	Quantity int      `json:"quantity"`
}

// Cart is an explicit aggregate over an ordered list of lines keyed by
// item id. It is persisted through the storage port and hydrated once,
// at construction, never again.
type Cart struct {
	storage Storage
	mu      sync.Mutex
	lines   []CartLine
}

func NewCart(storage Storage) *Cart {
	c := &Cart{storage: storage}
	c.hydrate()
	return c
}

func (c *Cart) hydrate() {
	raw, ok := c.storage.Get(cartStorageKey)
	if !ok {
		return
	}
	var lines []CartLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		// corrupt cart data behaves as empty
		return
	}
	c.lines = lines
}

func (c *Cart) persistLocked() {
	raw, err := json.Marshal(c.lines)
	if err != nil {
		return
	}
	if err := c.storage.Set(cartStorageKey, string(raw)); err != nil {
		utils.ErrorLogger.Printf("cart: persist failed: %v", err)
	}
}

func clampQuantity(q int) int {
	if q < minLineQuantity {
		return minLineQuantity
	}
	if q > maxLineQuantity {
		return maxLineQuantity
	}
	return q
}

// Add merges into an existing line for the same item or appends a new
// one, clamping the quantity to the 1..99 range.
func (c *Cart) Add(item CartItem, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].Item.ID == item.ID {
			c.lines[i].Quantity = clampQuantity(c.lines[i].Quantity + quantity)
			c.persistLocked()
			return
		}
	}
	c.lines = append(c.lines, CartLine{Item: item, Quantity: clampQuantity(quantity)})
	c.persistLocked()
}

// UpdateQuantity sets the line's quantity, clamped to 1..99. Unknown
// item ids are ignored.
func (c *Cart) UpdateQuantity(itemID string, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lines {
		if c.lines[i].Item.ID == itemID {
			c.lines[i].Quantity = clampQuantity(quantity)
			c.persistLocked()
			return
		}
	}
}

func (c *Cart) Remove(itemID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.lines[:0]
	for _, line := range c.lines {
		if line.Item.ID != itemID {
			kept = append(kept, line)
		}
	}
	c.lines = kept
	c.persistLocked()
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
	c.persistLocked()
}

// Lines returns a copy of the cart contents in insertion order.
func (c *Cart) Lines() []CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total float64
	for _, line := range c.lines {
		total += line.Item.Price * float64(line.Quantity)
	}
	return total
}

func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	var count int
	for _, line := range c.lines {
		count += line.Quantity
	}
	return count
}

// ToPayload builds the submission payload for the current cart.
func (c *Cart) ToPayload(restaurantID, tableID, sessionToken string, allergyNotes, notes *string) OrderPayload {
	lines := c.Lines()
	payload := OrderPayload{
		RestaurantID: restaurantID,
		TableID:      tableID,
		SessionToken: sessionToken,
		AllergyNotes: allergyNotes,
		Notes:        notes,
	}
	for _, line := range lines {
		payload.Items = append(payload.Items, OrderItemPayload{
			MenuItemID: line.Item.ID,
			Name:       line.Item.Name,
			Price:      line.Item.Price,
			Quantity:   line.Quantity,
		})
		payload.Subtotal += line.Item.Price * float64(line.Quantity)
	}
	payload.Total = payload.Subtotal + payload.Tax
	return payload
}

// FormatTotal renders an amount the way the menu shows prices.
func FormatTotal(amount float64) string {
	return fmt.Sprintf("$%.2f MXN", amount)
}
