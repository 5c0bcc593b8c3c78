package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/justestif/music-blast/internal/qr"
	"github.com/justestif/music-blast/internal/scan"
)

// DefaultRecentScans is the limit used by Recent when none is given.
const DefaultRecentScans = 50

// ScanRepository stores scan history.
type ScanRepository struct {
	pool *pgxpool.Pool
}

// RecordScan inserts a scan.
func (r *ScanRepository) RecordScan(ctx context.Context, rec scan.Record) error {
	query := `
		INSERT INTO scans (id, device_id, raw, kind, ref_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		uuid.New(),
		rec.DeviceID,
		rec.Raw,
		rec.Intent.Kind.String(),
		refID(rec.Intent),
		rec.ScannedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting scan: %w", err)
	}
	return nil
}

// Recent returns up to limit scans for deviceID, newest first.
func (r *ScanRepository) Recent(ctx context.Context, deviceID string, limit int) ([]scan.Record, error) {
	if limit <= 0 {
		limit = DefaultRecentScans
	}

	query := `
		SELECT device_id, raw, created_at
		FROM scans
		WHERE device_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, deviceID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying scans: %w", err)
	}
	defer rows.Close()

	var records []scan.Record
	for rows.Next() {
		var rec scan.Record
		if err := rows.Scan(&rec.DeviceID, &rec.Raw, &rec.ScannedAt); err != nil {
			return nil, fmt.Errorf("scanning scan row: %w", err)
		}
		// Classification is deterministic, so the stored raw payload is enough.
		rec.Intent = qr.Classify(rec.Raw)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func refID(intent qr.Intent) string {
	if intent.Kind == qr.KindWebURL {
		return intent.URL
	}
	return intent.ID
}

var _ scan.History = (*ScanRepository)(nil)
