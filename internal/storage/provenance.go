package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const provenanceColumns = `
	id, package_id, provenance_type, usage_hours,
	quantity_available, is_active, calculated_price_usdc,
	discount_percentage, created_at, updated_at`

func (s *SQLiteStorage) queryProvenances(ctx context.Context, query string, args ...any) ([]ProvenanceRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query provenance: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []ProvenanceRecord
	for rows.Next() {
		var p ProvenanceRecord
		if err := rows.Scan(
			&p.ID, &p.PackageID, &p.ProvenanceType, &p.UsageHours,
			&p.QuantityAvailable, &p.IsActive, &p.CalculatedPriceUSDC,
			&p.DiscountPercentage, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan provenance: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating provenance: %w", err)
	}
	return out, nil
}

// GetPackageProvenances returns a package's active options, least used first.
func (s *SQLiteStorage) GetPackageProvenances(ctx context.Context, packageID uuid.UUID) ([]ProvenanceRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(packageID, "package_id"); err != nil {
		return nil, err
	}
	return s.queryProvenances(ctx, `
		SELECT `+provenanceColumns+`
		FROM package_provenance
		WHERE package_id = ? AND is_active = 1
		ORDER BY usage_hours ASC, id ASC
	`, packageID)
}

// GetAllPackageProvenances returns every active option grouped by package.
func (s *SQLiteStorage) GetAllPackageProvenances(ctx context.Context) ([]ProvenanceRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.queryProvenances(ctx, `
		SELECT `+provenanceColumns+`
		FROM package_provenance
		WHERE is_active = 1
		ORDER BY package_id, usage_hours ASC, id ASC
	`)
}

// SaveProvenance inserts a provenance option and sets its ID.
func (s *SQLiteStorage) SaveProvenance(ctx context.Context, p *ProvenanceRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateProvenance(p); err != nil {
		return err
	}
	return s.saveProvenanceTx(ctx, s.db, p)
}

func (s *SQLiteStorage) saveProvenanceTx(ctx context.Context, q queryable, p *ProvenanceRecord) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	res, err := q.ExecContext(ctx, `
		INSERT INTO package_provenance
			(package_id, provenance_type, usage_hours, quantity_available, is_active,
			 calculated_price_usdc, discount_percentage, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.PackageID, p.ProvenanceType, p.UsageHours, p.QuantityAvailable, p.IsActive,
		p.CalculatedPriceUSDC, p.DiscountPercentage, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to add provenance: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read provenance id: %w", err)
	}
	p.ID = id
	return nil
}
