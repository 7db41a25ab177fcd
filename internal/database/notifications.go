package database

import (
	"fmt"
	"time"

	"github.com/lofarb/fund-monitor/internal/models"
)

const dateFormat = "2006-01-02"

// AlreadyNotified reports whether a ledger row exists for the fund on
// the given calendar day.
func (db *DB) AlreadyNotified(fundID string, date time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM fund_notifications
			WHERE fund_id = $1 AND notify_date = $2
		)
	`
	var exists bool
	err := db.conn.QueryRow(query, fundID, date.Format(dateFormat)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check notification ledger: %w", err)
	}
	return exists, nil
}

// RecordNotification creates the ledger row for (fund_id, notify_date),
// or atomically increments notify_count if it already exists. The
// unique constraint plus the upsert make concurrent calls safe: two
// overlapping runs can never produce two rows for the same day.
func (db *DB) RecordNotification(fundID string, date time.Time) (*models.FundNotification, error) {
	query := `
		INSERT INTO fund_notifications (fund_id, notify_date, notify_count, created_at, updated_at)
		VALUES ($1, $2, 1, $3, $3)
		ON CONFLICT (fund_id, notify_date) DO UPDATE SET
			notify_count = fund_notifications.notify_count + 1,
			updated_at = EXCLUDED.updated_at
		RETURNING id, fund_id, notify_date, notify_count, created_at, updated_at
	`
	var n models.FundNotification
	err := db.conn.QueryRow(query, fundID, date.Format(dateFormat), time.Now()).Scan(
		&n.ID, &n.FundID, &n.NotifyDate, &n.NotifyCount, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record notification: %w", err)
	}
	return &n, nil
}

// GetNotificationsByDate retrieves all ledger rows for a calendar day,
// most recently updated first.
func (db *DB) GetNotificationsByDate(date time.Time) ([]*models.FundNotification, error) {
	query := `
		SELECT id, fund_id, notify_date, notify_count, created_at, updated_at
		FROM fund_notifications
		WHERE notify_date = $1
		ORDER BY updated_at DESC
	`
	rows, err := db.conn.Query(query, date.Format(dateFormat))
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*models.FundNotification
	for rows.Next() {
		var n models.FundNotification
		err := rows.Scan(&n.ID, &n.FundID, &n.NotifyDate, &n.NotifyCount, &n.CreatedAt, &n.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, &n)
	}

	return notifications, nil
}
