// internal/repository/postgres/tracking_repository.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cheapr/opsboard/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type trackingRepository struct {
	db *DB
}

func NewTrackingRepository(db *DB) *trackingRepository {
	return &trackingRepository{db: db}
}

const trackingColumns = `
	id, carrier, tracking_number, eta_date, status, created_at, updated_at
`

func (r *trackingRepository) CreateTracking(ctx context.Context, t *domain.Tracking) error {
	if t.Status == "" {
		t.Status = domain.TrackingNotStarted
	}

	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO trackings (carrier, tracking_number, eta_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`, t.Carrier, t.TrackingNumber, t.ETADate, string(t.Status)).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create tracking: %w", err)
	}

	return nil
}

func (r *trackingRepository) GetTracking(ctx context.Context, id int64) (*domain.Tracking, error) {
	var t domain.Tracking
	err := sqlx.GetContext(ctx, r.db, &t,
		`SELECT `+trackingColumns+` FROM trackings WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tracking: %w", err)
	}

	return &t, nil
}

func (r *trackingRepository) FindTrackingByNumber(ctx context.Context, carrier, number string) (*domain.Tracking, error) {
	var t domain.Tracking
	err := sqlx.GetContext(ctx, r.db, &t,
		`SELECT `+trackingColumns+` FROM trackings WHERE carrier = $1 AND tracking_number = $2`,
		carrier, number)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find tracking: %w", err)
	}

	return &t, nil
}

func (r *trackingRepository) UpdateTracking(ctx context.Context, id int64, cmd domain.UpdateTracking) (*domain.Tracking, error) {
	var statusStr *string
	if cmd.Status != nil {
		s := string(*cmd.Status)
		statusStr = &s
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE trackings
		SET carrier = COALESCE($2, carrier),
			tracking_number = COALESCE($3, tracking_number),
			status = COALESCE($4, status),
			eta_date = COALESCE($5, eta_date),
			updated_at = NOW()
		WHERE id = $1
	`, id, cmd.Carrier, cmd.TrackingNumber, statusStr, cmd.ETADate)
	if err != nil {
		return nil, fmt.Errorf("failed to update tracking: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return nil, domain.ErrNotFound
	}

	return r.GetTracking(ctx, id)
}

func (r *trackingRepository) ListOverdue(ctx context.Context, asOf time.Time, limit int) ([]*domain.Tracking, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT ` + trackingColumns + `
		FROM trackings
		WHERE status IN ('NotStarted', 'Transit')
			AND eta_date IS NOT NULL
			AND eta_date < $1
		ORDER BY eta_date ASC
		LIMIT $2
	`

	var trackings []*domain.Tracking
	if err := sqlx.SelectContext(ctx, r.db, &trackings, query, asOf, limit); err != nil {
		return nil, fmt.Errorf("failed to list overdue trackings: %w", err)
	}

	return trackings, nil
}

func (r *trackingRepository) MarkIssue(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE trackings
		SET status = 'Issue', updated_at = NOW()
		WHERE id = ANY($1) AND status IN ('NotStarted', 'Transit')
	`, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("failed to mark trackings: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}

	return int(rows), nil
}
