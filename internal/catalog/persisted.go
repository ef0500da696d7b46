package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/qapish/qapish/internal/model"
	"github.com/qapish/qapish/internal/service"
	"github.com/qapish/qapish/internal/storage"
)

// Persisted is a Source backed by the SQLite store.
type Persisted struct {
	store service.Storage
	orgID uuid.UUID
}

// NewPersisted creates a Source reading and writing through store.
func NewPersisted(store service.Storage) *Persisted {
	return &Persisted{store: store, orgID: DemoOrgID}
}

// Packages loads every active package with its rule, options and images.
func (p *Persisted) Packages(ctx context.Context) ([]model.Package, error) {
	records, err := p.store.GetActivePackages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	rules, err := p.store.GetDepreciationRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load depreciation rules: %w", err)
	}
	rulesByPackage := make(map[uuid.UUID]*storage.DepreciationRuleRecord, len(rules))
	for i := range rules {
		rulesByPackage[rules[i].PackageID] = &rules[i]
	}

	provenances, err := p.store.GetAllPackageProvenances(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load provenance: %w", err)
	}
	provByPackage := make(map[uuid.UUID][]storage.ProvenanceRecord)
	for _, prov := range provenances {
		provByPackage[prov.PackageID] = append(provByPackage[prov.PackageID], prov)
	}

	packages := make([]model.Package, 0, len(records))
	for _, rec := range records {
		images, err := p.store.GetPackageImages(ctx, rec.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load images for %q: %w", rec.Name, err)
		}

		pkg, err := compose(storage.CatalogEntry{
			Package:     rec,
			Rule:        rulesByPackage[rec.ID],
			Provenances: provByPackage[rec.ID],
			Images:      images,
		})
		if err != nil {
			return nil, err
		}
		packages = append(packages, pkg)
	}

	slog.Debug("Composed catalog", "packages", len(packages))
	return packages, nil
}

// PackageBySKU loads a single active package.
func (p *Persisted) PackageBySKU(ctx context.Context, sku string) (*model.Package, error) {
	rec, err := p.store.GetPackageBySKU(ctx, sku)
	if err != nil {
		return nil, fmt.Errorf("failed to load package %q: %w", sku, err)
	}
	if rec == nil {
		return nil, nil
	}

	rule, err := p.store.GetDepreciationRuleByPackageID(ctx, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load depreciation rule for %q: %w", sku, err)
	}
	provenances, err := p.store.GetPackageProvenances(ctx, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load provenance for %q: %w", sku, err)
	}
	images, err := p.store.GetPackageImages(ctx, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load images for %q: %w", sku, err)
	}

	pkg, err := compose(storage.CatalogEntry{
		Package:     *rec,
		Rule:        rule,
		Provenances: provenances,
		Images:      images,
	})
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}

// CreateOrder files an order for the demo organization.
func (p *Persisted) CreateOrder(ctx context.Context, req model.CreateOrderRequest) (model.CreateOrderResponse, error) {
	if err := validatePlan(req.Plan); err != nil {
		return model.CreateOrderResponse{}, err
	}

	rec := &storage.OrderRecord{
		OrgID:         p.orgID,
		PlanCPUCores:  int64(req.Plan.CPUCores),
		PlanRAMGB:     int64(req.Plan.RAMGB),
		PlanStorageGB: int64(req.Plan.StorageGB),
		PlanGPU:       req.Plan.GPU.String(),
		PQEnabled:     req.PQEnabled,
		Status:        string(model.OrderQueued),
	}
	if req.Notes != nil {
		rec.Notes = sql.NullString{String: *req.Notes, Valid: true}
	}

	if err := p.store.CreateOrder(ctx, rec); err != nil {
		return model.CreateOrderResponse{}, fmt.Errorf("failed to create order: %w", err)
	}

	slog.Info("Order created", "order_id", rec.ID, "gpu", rec.PlanGPU)
	return model.CreateOrderResponse{OrderID: rec.ID, Status: model.OrderQueued}, nil
}

// Orders lists the demo organization's orders.
func (p *Persisted) Orders(ctx context.Context) ([]model.OrderSummary, error) {
	records, err := p.store.GetOrdersForOrg(ctx, p.orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	summaries := make([]model.OrderSummary, 0, len(records))
	for _, rec := range records {
		summary, err := summarize(rec)
		if err != nil {
			return nil, fmt.Errorf("order %s: %w", rec.ID, err)
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func summarize(rec storage.OrderRecord) (model.OrderSummary, error) {
	gpu, err := model.ParseGPUClass(rec.PlanGPU)
	if err != nil {
		return model.OrderSummary{}, err
	}
	status, err := model.ParseOrderStatus(rec.Status)
	if err != nil {
		return model.OrderSummary{}, err
	}

	var errs []error
	plan := model.Plan{GPU: gpu}
	plan.CPUCores, errs = narrow16(rec.PlanCPUCores, "plan_cpu_cores", errs)
	plan.RAMGB, errs = narrow16(rec.PlanRAMGB, "plan_ram_gb", errs)
	plan.StorageGB, errs = narrow32(rec.PlanStorageGB, "plan_storage_gb", errs)
	if len(errs) > 0 {
		return model.OrderSummary{}, errs[0]
	}

	return model.OrderSummary{ID: rec.ID, Plan: plan, Status: status}, nil
}
