package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CreateOrganization inserts an organization and returns its ID.
func (s *SQLiteStorage) CreateOrganization(ctx context.Context, name string) (uuid.UUID, error) {
	if err := validateContext(ctx); err != nil {
		return uuid.Nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return uuid.Nil, err
	}

	orgID := uuid.New()
	if _, err := s.db.ExecContext(ctx, `INSERT INTO organizations (id, name) VALUES (?, ?)`, orgID, name); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create organization: %w", err)
	}
	return orgID, nil
}

// CreateUser inserts a user in an organization and returns its ID.
func (s *SQLiteStorage) CreateUser(ctx context.Context, orgID uuid.UUID, email, pwdHash string) (uuid.UUID, error) {
	if err := validateContext(ctx); err != nil {
		return uuid.Nil, err
	}
	if err := validateID(orgID, "org_id"); err != nil {
		return uuid.Nil, err
	}
	if !strings.Contains(email, "@") {
		return uuid.Nil, fmt.Errorf("%w: malformed email", ErrInvalidUser)
	}
	if err := validateString(pwdHash, "pwdHash"); err != nil {
		return uuid.Nil, err
	}

	userID := uuid.New()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, org_id, email, pwd_hash) VALUES (?, ?, ?, ?)`,
		userID, orgID, strings.ToLower(strings.TrimSpace(email)), pwdHash)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create user: %w", err)
	}
	return userID, nil
}

// CreateOrder inserts a server order. ID, status and creation time are
// filled in when unset; new orders start queued.
func (s *SQLiteStorage) CreateOrder(ctx context.Context, o *OrderRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateOrder(o); err != nil {
		return err
	}

	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Status == "" {
		o.Status = "queued"
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO server_orders
			(id, org_id, plan_cpu_cores, plan_ram_gb, plan_storage_gb, plan_gpu, pq_enabled, notes, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, o.ID, o.OrgID, o.PlanCPUCores, o.PlanRAMGB, o.PlanStorageGB, o.PlanGPU, o.PQEnabled, o.Notes, o.Status, o.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// GetOrdersForOrg returns an organization's orders, newest first.
func (s *SQLiteStorage) GetOrdersForOrg(ctx context.Context, orgID uuid.UUID) ([]OrderRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(orgID, "org_id"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, org_id, plan_cpu_cores, plan_ram_gb, plan_storage_gb,
		       plan_gpu, pq_enabled, notes, status, created_at
		FROM server_orders
		WHERE org_id = ?
		ORDER BY created_at DESC, rowid DESC
	`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var orders []OrderRecord
	for rows.Next() {
		var o OrderRecord
		if err := rows.Scan(
			&o.ID, &o.OrgID, &o.PlanCPUCores, &o.PlanRAMGB, &o.PlanStorageGB,
			&o.PlanGPU, &o.PQEnabled, &o.Notes, &o.Status, &o.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}
	return orders, nil
}
