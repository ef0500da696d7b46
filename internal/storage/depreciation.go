package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const ruleColumns = `
	id, package_id, final_depreciated_percentage,
	full_depreciation_hours, depreciation_curve,
	created_at, updated_at`

func scanRule(row scanner) (DepreciationRuleRecord, error) {
	var r DepreciationRuleRecord
	err := row.Scan(
		&r.ID, &r.PackageID, &r.FinalDepreciatedPercentage,
		&r.FullDepreciationHours, &r.DepreciationCurve,
		&r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

// GetDepreciationRules returns every stored rule ordered by package.
func (s *SQLiteStorage) GetDepreciationRules(ctx context.Context) ([]DepreciationRuleRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+ruleColumns+` FROM package_depreciation_rules ORDER BY package_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query depreciation rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []DepreciationRuleRecord
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan depreciation rule: %w", err)
		}
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating depreciation rules: %w", err)
	}
	return rules, nil
}

// GetDepreciationRuleByPackageID returns the package's rule, or nil if it has none.
func (s *SQLiteStorage) GetDepreciationRuleByPackageID(ctx context.Context, packageID uuid.UUID) (*DepreciationRuleRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(packageID, "package_id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+ruleColumns+` FROM package_depreciation_rules WHERE package_id = ?`, packageID)
	r, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get depreciation rule: %w", err)
	}
	return &r, nil
}

// SaveDepreciationRule inserts or replaces the rule for its package.
func (s *SQLiteStorage) SaveDepreciationRule(ctx context.Context, r *DepreciationRuleRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRule(r); err != nil {
		return err
	}
	return s.saveDepreciationRuleTx(ctx, s.db, r)
}

func (s *SQLiteStorage) saveDepreciationRuleTx(ctx context.Context, q queryable, r *DepreciationRuleRecord) error {
	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now

	err := q.QueryRowContext(ctx, `
		INSERT INTO package_depreciation_rules
			(package_id, final_depreciated_percentage, full_depreciation_hours, depreciation_curve, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(package_id) DO UPDATE SET
			final_depreciated_percentage = excluded.final_depreciated_percentage,
			full_depreciation_hours = excluded.full_depreciation_hours,
			depreciation_curve = excluded.depreciation_curve,
			updated_at = excluded.updated_at
		RETURNING id
	`, r.PackageID, r.FinalDepreciatedPercentage, r.FullDepreciationHours, r.DepreciationCurve, r.CreatedAt, r.UpdatedAt,
	).Scan(&r.ID)
	if err != nil {
		return fmt.Errorf("failed to save depreciation rule: %w", err)
	}
	return nil
}
