package models

import "fmt"

// OrderStatus moves forward one step at a time along
// pending -> preparing -> ready -> delivered.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusDelivered OrderStatus = "delivered"
)

// AllowedTransitions holds the only legal forward moves. Delivered is
// terminal.
var AllowedTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusPreparing},
	StatusPreparing: {StatusReady},
	StatusReady:     {StatusDelivered},
	StatusDelivered: {},
}

func (s OrderStatus) Valid() bool {
	_, ok := AllowedTransitions[s]
	return ok
}

func (s OrderStatus) Terminal() bool {
	return len(AllowedTransitions[s]) == 0 && s.Valid()
}

// CanAdvanceTo reports whether next is in the allowed set for s.
func (s OrderStatus) CanAdvanceTo(next OrderStatus) bool {
	for _, allowed := range AllowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// InvalidTransitionError reports an illegal status move together with
// the allowed next states so the caller can resynchronize.
type InvalidTransitionError struct {
	Current OrderStatus
	Next    OrderStatus
	Allowed []OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %s to %s", e.Current, e.Next)
}
