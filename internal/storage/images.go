package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// GetPackageImages returns a package's images in display order.
func (s *SQLiteStorage) GetPackageImages(ctx context.Context, packageID uuid.UUID) ([]ImageRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(packageID, "package_id"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT filename, title, description, sort_order
		FROM package_images
		WHERE package_id = ?
		ORDER BY sort_order ASC, id ASC
	`, packageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query images: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var images []ImageRecord
	for rows.Next() {
		img := ImageRecord{PackageID: packageID}
		if err := rows.Scan(&img.Filename, &img.Title, &img.Description, &img.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating images: %w", err)
	}
	return images, nil
}

// SavePackageImage appends an image to a package's gallery.
func (s *SQLiteStorage) SavePackageImage(ctx context.Context, img *ImageRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateImage(img); err != nil {
		return err
	}
	return s.savePackageImageTx(ctx, s.db, img)
}

func (s *SQLiteStorage) savePackageImageTx(ctx context.Context, q queryable, img *ImageRecord) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO package_images (package_id, filename, title, description, sort_order)
		VALUES (?, ?, ?, ?, ?)
	`, img.PackageID, img.Filename, img.Title, img.Description, img.SortOrder)
	if err != nil {
		return fmt.Errorf("failed to add image: %w", err)
	}
	return nil
}
