package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const packageColumns = `
	id, name, sku, description, hardware_description,
	cpu_cores, ram_gb, storage_gb, gpu_class,
	gpu_count, vram_gb, setup_price_usdc, monthly_price_usdc,
	availability_type, availability_value,
	is_active, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanPackage(row scanner) (PackageRecord, error) {
	var p PackageRecord
	err := row.Scan(
		&p.ID, &p.Name, &p.SKU, &p.Description, &p.HardwareDescription,
		&p.CPUCores, &p.RAMGB, &p.StorageGB, &p.GPUClass,
		&p.GPUCount, &p.VRAMGB, &p.SetupPriceUSDC, &p.MonthlyPriceUSDC,
		&p.AvailabilityType, &p.AvailabilityValue,
		&p.IsActive, &p.CreatedAt,
	)
	return p, err
}

// GetActivePackages returns active packages, cheapest setup price first.
func (s *SQLiteStorage) GetActivePackages(ctx context.Context) ([]PackageRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+packageColumns+`
		FROM packages
		WHERE is_active = 1
		ORDER BY setup_price_usdc ASC, name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query packages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var packages []PackageRecord
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan package: %w", err)
		}
		packages = append(packages, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating packages: %w", err)
	}

	slog.Debug("retrieved packages", "count", len(packages))
	return packages, nil
}

// GetPackageByID returns an active package, or nil if there is none.
func (s *SQLiteStorage) GetPackageByID(ctx context.Context, id uuid.UUID) (*PackageRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}
	return s.getPackage(ctx, s.db, `WHERE id = ? AND is_active = 1`, id)
}

// GetPackageBySKU returns an active package, or nil if there is none.
func (s *SQLiteStorage) GetPackageBySKU(ctx context.Context, sku string) (*PackageRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(sku, "sku"); err != nil {
		return nil, err
	}
	return s.getPackage(ctx, s.db, `WHERE sku = ? AND is_active = 1`, sku)
}

func (s *SQLiteStorage) getPackage(ctx context.Context, q queryable, where string, arg any) (*PackageRecord, error) {
	row := q.QueryRowContext(ctx, `SELECT `+packageColumns+` FROM packages `+where, arg)
	p, err := scanPackage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get package: %w", err)
	}
	return &p, nil
}

// SavePackage inserts or updates a package. A nil ID is assigned a new one.
func (s *SQLiteStorage) SavePackage(ctx context.Context, p *PackageRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validatePackage(p); err != nil {
		return err
	}
	return s.savePackageTx(ctx, s.db, p)
}

func (s *SQLiteStorage) savePackageTx(ctx context.Context, q queryable, p *PackageRecord) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO packages (`+packageColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			sku = excluded.sku,
			description = excluded.description,
			hardware_description = excluded.hardware_description,
			cpu_cores = excluded.cpu_cores,
			ram_gb = excluded.ram_gb,
			storage_gb = excluded.storage_gb,
			gpu_class = excluded.gpu_class,
			gpu_count = excluded.gpu_count,
			vram_gb = excluded.vram_gb,
			setup_price_usdc = excluded.setup_price_usdc,
			monthly_price_usdc = excluded.monthly_price_usdc,
			availability_type = excluded.availability_type,
			availability_value = excluded.availability_value,
			is_active = excluded.is_active
	`,
		p.ID, p.Name, p.SKU, p.Description, p.HardwareDescription,
		p.CPUCores, p.RAMGB, p.StorageGB, p.GPUClass,
		p.GPUCount, p.VRAMGB, p.SetupPriceUSDC, p.MonthlyPriceUSDC,
		p.AvailabilityType, p.AvailabilityValue,
		p.IsActive, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save package: %w", err)
	}
	return nil
}

// SaveCatalogEntry writes a package with its rule, provenance options and
// images in one transaction. Existing options and images for the package are
// replaced; a nil rule removes any stored rule.
func (s *SQLiteStorage) SaveCatalogEntry(ctx context.Context, entry *CatalogEntry) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if entry == nil {
		return fmt.Errorf("%w: catalog entry", ErrNilParameter)
	}
	if err := validatePackage(&entry.Package); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.savePackageTx(ctx, tx, &entry.Package); err != nil {
		return err
	}
	pkgID := entry.Package.ID

	if entry.Rule != nil {
		entry.Rule.PackageID = pkgID
		if err := validateRule(entry.Rule); err != nil {
			return err
		}
		if err := s.saveDepreciationRuleTx(ctx, tx, entry.Rule); err != nil {
			return err
		}
	} else if _, err := tx.ExecContext(ctx, `DELETE FROM package_depreciation_rules WHERE package_id = ?`, pkgID); err != nil {
		return fmt.Errorf("failed to clear depreciation rule: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM package_provenance WHERE package_id = ?`, pkgID); err != nil {
		return fmt.Errorf("failed to clear provenance: %w", err)
	}
	for i := range entry.Provenances {
		prov := &entry.Provenances[i]
		prov.PackageID = pkgID
		if err := validateProvenance(prov); err != nil {
			return fmt.Errorf("provenance at index %d: %w", i, err)
		}
		if err := s.saveProvenanceTx(ctx, tx, prov); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM package_images WHERE package_id = ?`, pkgID); err != nil {
		return fmt.Errorf("failed to clear images: %w", err)
	}
	for i := range entry.Images {
		img := &entry.Images[i]
		img.PackageID = pkgID
		if err := validateImage(img); err != nil {
			return fmt.Errorf("image at index %d: %w", i, err)
		}
		if err := s.savePackageImageTx(ctx, tx, img); err != nil {
			return err
		}
	}

	return tx.Commit()
}
