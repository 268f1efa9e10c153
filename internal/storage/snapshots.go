package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/lueurxax/trend-pulse/internal/core/domain"
)

// ErrNoSnapshot is returned when no snapshot matches the requested
// country, category and window.
var ErrNoSnapshot = errors.New("no snapshot found")

// SaveSnapshot persists a scored snapshot. A missing ID is filled in with a
// fresh UUID; a missing CreatedAt defaults to now.
func (db *DB) SaveSnapshot(ctx context.Context, snap *domain.Snapshot) error {
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}

	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC()
	}

	id, err := uuid.Parse(snap.ID)
	if err != nil {
		return fmt.Errorf("parse snapshot id: %w", err)
	}

	counts, err := marshalPlatformCounts(snap.PlatformCounts)
	if err != nil {
		return err
	}

	items, err := marshalItems(snap.Items)
	if err != nil {
		return err
	}

	_, err = db.Pool.Exec(ctx, `
		INSERT INTO snapshots (id, country, category, time_window, item_count, platform_counts, items, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, snap.Country, string(snap.Category), string(snap.Window), snap.ItemCount, counts, items, snap.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}

	return nil
}

// LatestSnapshot returns the most recent snapshot for the given country,
// category and window, or ErrNoSnapshot when none exists.
func (db *DB) LatestSnapshot(ctx context.Context, country string, category domain.Category, window domain.TimeWindow) (*domain.Snapshot, error) {
	row := db.Pool.QueryRow(ctx, `
		SELECT id, country, category, time_window, item_count, platform_counts, items, created_at
		FROM snapshots
		WHERE country = $1 AND category = $2 AND time_window = $3
		ORDER BY created_at DESC
		LIMIT 1`,
		country, string(category), string(window),
	)

	snap, err := scanSnapshot(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoSnapshot
		}

		return nil, fmt.Errorf("query latest snapshot: %w", err)
	}

	return snap, nil
}

// ListSnapshots returns up to limit recent snapshots for the given country,
// category and window, newest first. Items are included in full so callers
// can replay history.
func (db *DB) ListSnapshots(ctx context.Context, country string, category domain.Category, window domain.TimeWindow, limit int) ([]*domain.Snapshot, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, country, category, time_window, item_count, platform_counts, items, created_at
		FROM snapshots
		WHERE country = $1 AND category = $2 AND time_window = $3
		ORDER BY created_at DESC
		LIMIT $4`,
		country, string(category), string(window), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []*domain.Snapshot

	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}

		snaps = append(snaps, snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}

	return snaps, nil
}

// DeleteSnapshotsBefore removes snapshots created before the cutoff and
// returns the number of rows deleted.
func (db *DB) DeleteSnapshotsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM snapshots WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete snapshots: %w", err)
	}

	return tag.RowsAffected(), nil
}

func scanSnapshot(row pgx.Row) (*domain.Snapshot, error) {
	var (
		id       uuid.UUID
		snap     domain.Snapshot
		category string
		window   string
		counts   []byte
		items    []byte
	)

	err := row.Scan(&id, &snap.Country, &category, &window, &snap.ItemCount, &counts, &items, &snap.CreatedAt)
	if err != nil {
		return nil, err
	}

	snap.ID = id.String()
	snap.Category = domain.Category(category)
	snap.Window = domain.TimeWindow(window)

	snap.PlatformCounts, err = unmarshalPlatformCounts(counts)
	if err != nil {
		return nil, err
	}

	snap.Items, err = unmarshalItems(items)
	if err != nil {
		return nil, err
	}

	return &snap, nil
}

// JSONB helpers

func marshalItems(items []*domain.TrendItem) ([]byte, error) {
	if items == nil {
		items = []*domain.TrendItem{}
	}

	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot items: %w", err)
	}

	return data, nil
}

func unmarshalItems(data []byte) ([]*domain.TrendItem, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var items []*domain.TrendItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot items: %w", err)
	}

	return items, nil
}

func marshalPlatformCounts(counts domain.PlatformCounts) ([]byte, error) {
	if counts == nil {
		counts = domain.PlatformCounts{}
	}

	data, err := json.Marshal(counts)
	if err != nil {
		return nil, fmt.Errorf("marshal platform counts: %w", err)
	}

	return data, nil
}

func unmarshalPlatformCounts(data []byte) (domain.PlatformCounts, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var counts domain.PlatformCounts
	if err := json.Unmarshal(data, &counts); err != nil {
		return nil, fmt.Errorf("unmarshal platform counts: %w", err)
	}

	return counts, nil
}
