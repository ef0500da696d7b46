package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus tracks a server order through provisioning.
type OrderStatus string

const (
	// OrderQueued is the state of every new order.
	OrderQueued OrderStatus = "queued"
	// OrderProvisioning means hardware is being prepared.
	OrderProvisioning OrderStatus = "provisioning"
	// OrderActive means the server is running.
	OrderActive OrderStatus = "active"
	// OrderCancelled means the order was withdrawn.
	OrderCancelled OrderStatus = "cancelled"
)

// ParseOrderStatus maps stored text to an order status.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case OrderQueued, OrderProvisioning, OrderActive, OrderCancelled:
		return OrderStatus(s), nil
	default:
		return "", unknownVariant("order status", s)
	}
}

// Plan is the hardware a customer orders.
type Plan struct {
	GPU       GPUClass `json:"gpu"`
	StorageGB uint32   `json:"storage_gb"`
	CPUCores  uint16   `json:"cpu_cores"`
	RAMGB     uint16   `json:"ram_gb"`
}

// Order is a persisted server order.
type Order struct {
	CreatedAt time.Time
	Notes     *string
	Status    OrderStatus
	Plan      Plan
	ID        uuid.UUID
	OrgID     uuid.UUID
	PQEnabled bool
}

// CreateOrderRequest is the body of an order submission.
type CreateOrderRequest struct {
	Notes     *string `json:"notes,omitempty"`
	Plan      Plan    `json:"plan"`
	PQEnabled bool    `json:"pq_enabled"`
}

// CreateOrderResponse acknowledges an order submission.
type CreateOrderResponse struct {
	Status  OrderStatus `json:"status"`
	OrderID uuid.UUID   `json:"order_id"`
}

// OrderSummary is an order as listed to its organization.
type OrderSummary struct {
	Status OrderStatus `json:"status"`
	Plan   Plan        `json:"plan"`
	ID     uuid.UUID   `json:"id"`
}
