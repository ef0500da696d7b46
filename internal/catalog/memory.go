package catalog

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/qapish/qapish/internal/model"
	"github.com/qapish/qapish/internal/storage"
)

// Memory is a Source holding a fixed catalog and its orders in process.
type Memory struct {
	now      func() time.Time
	packages []model.Package
	orders   []model.Order
	mu       sync.RWMutex
}

// NewMemory composes entries with the same pricing path as Persisted. Inactive
// packages and options are dropped and the rest ordered as storage orders them.
func NewMemory(entries []storage.CatalogEntry) (*Memory, error) {
	packages := make([]model.Package, 0, len(entries))
	for _, entry := range entries {
		if !entry.Package.IsActive {
			continue
		}
		active := make([]storage.ProvenanceRecord, 0, len(entry.Provenances))
		for _, prov := range entry.Provenances {
			if prov.IsActive {
				active = append(active, prov)
			}
		}
		sort.SliceStable(active, func(i, j int) bool {
			return active[i].UsageHours < active[j].UsageHours
		})
		entry.Provenances = active

		images := append([]storage.ImageRecord(nil), entry.Images...)
		sort.SliceStable(images, func(i, j int) bool {
			return images[i].SortOrder < images[j].SortOrder
		})
		entry.Images = images

		pkg, err := compose(entry)
		if err != nil {
			return nil, err
		}
		packages = append(packages, pkg)
	}
	sort.SliceStable(packages, func(i, j int) bool {
		return packages[i].SetupPriceUSDC < packages[j].SetupPriceUSDC
	})
	return &Memory{packages: packages, now: time.Now}, nil
}

// NewDemo returns a Memory source over the built-in demo catalog.
func NewDemo() (*Memory, error) {
	return NewMemory(DemoEntries())
}

// Packages returns the catalog.
func (m *Memory) Packages(_ context.Context) ([]model.Package, error) {
	out := make([]model.Package, len(m.packages))
	copy(out, m.packages)
	return out, nil
}

// PackageBySKU finds a package by SKU.
func (m *Memory) PackageBySKU(_ context.Context, sku string) (*model.Package, error) {
	if sku == "" {
		return nil, nil
	}
	for i := range m.packages {
		if m.packages[i].SKU == sku {
			pkg := m.packages[i]
			return &pkg, nil
		}
	}
	return nil, nil
}

// CreateOrder records an order in memory.
func (m *Memory) CreateOrder(_ context.Context, req model.CreateOrderRequest) (model.CreateOrderResponse, error) {
	if err := validatePlan(req.Plan); err != nil {
		return model.CreateOrderResponse{}, err
	}

	order := model.Order{
		ID:        uuid.New(),
		OrgID:     DemoOrgID,
		Plan:      req.Plan,
		PQEnabled: req.PQEnabled,
		Notes:     req.Notes,
		Status:    model.OrderQueued,
		CreatedAt: m.now().UTC(),
	}

	m.mu.Lock()
	m.orders = append(m.orders, order)
	m.mu.Unlock()

	slog.Info("Order created", "order_id", order.ID, "gpu", order.Plan.GPU, "source", "memory")
	return model.CreateOrderResponse{OrderID: order.ID, Status: order.Status}, nil
}

// Orders returns recorded orders, newest first.
func (m *Memory) Orders(_ context.Context) ([]model.OrderSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summaries := make([]model.OrderSummary, 0, len(m.orders))
	for i := len(m.orders) - 1; i >= 0; i-- {
		o := m.orders[i]
		summaries = append(summaries, model.OrderSummary{ID: o.ID, Plan: o.Plan, Status: o.Status})
	}
	return summaries, nil
}
