// Package catalog turns stored packages into priced listings and files orders.
//
// A Source is chosen once at startup: Persisted reads SQLite through
// service.Storage, Memory serves a built-in demo catalog, and Cached wraps
// either with a Redis listing cache.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/qapish/qapish/internal/common"
	"github.com/qapish/qapish/internal/model"
	"github.com/qapish/qapish/internal/storage"
)

// Source is the read and order capability the API depends on.
type Source interface {
	// Packages returns active packages ordered by setup price.
	Packages(ctx context.Context) ([]model.Package, error)
	// PackageBySKU returns nil, nil when no active package has the SKU.
	PackageBySKU(ctx context.Context, sku string) (*model.Package, error)
	CreateOrder(ctx context.Context, req model.CreateOrderRequest) (model.CreateOrderResponse, error)
	// Orders lists the demo organization's orders, newest first.
	Orders(ctx context.Context) ([]model.OrderSummary, error)
}

// ErrOutOfRange is returned when a stored number does not fit its field.
var ErrOutOfRange = errors.New("stored value out of range")

// ErrMissingGPU is returned for an order whose plan names no GPU class.
var ErrMissingGPU = errors.New("plan.gpu is required")

// DemoOrgID is the organization every order is filed under until accounts exist.
var DemoOrgID = uuid.MustParse(storage.DemoOrgID)

func validatePlan(plan model.Plan) error {
	if plan.GPU == "" {
		return common.NewUserError("plan.gpu is required", ErrMissingGPU)
	}
	if _, err := model.ParseGPUClass(plan.GPU.String()); err != nil {
		return common.NewUserError(fmt.Sprintf("unknown gpu %q", string(plan.GPU)), err)
	}
	return nil
}
