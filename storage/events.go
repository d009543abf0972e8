package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// LockEvent is one recorded lock attempt.
type LockEvent struct {
	ID           int64
	Timestamp    time.Time
	Source       string
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// SaveLockEvent records a lock attempt in the journal.
func (db *DB) SaveLockEvent(e *LockEvent) error {
	query := `
		INSERT INTO lock_events (source, latency_ms, success, error_message)
		VALUES (?, ?, ?, ?)
	`

	result, err := db.conn.Exec(query, e.Source, e.LatencyMs, e.Success, e.ErrorMessage)
	if err != nil {
		return fmt.Errorf("failed to save lock event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}

	e.ID = id
	return nil
}

// GetLockEvents retrieves lock events with pagination, newest first.
func (db *DB) GetLockEvents(limit, offset int) ([]LockEvent, error) {
	query := `
		SELECT id, timestamp, source, latency_ms, success, error_message
		FROM lock_events
		ORDER BY timestamp DESC, id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := db.conn.Query(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query lock events: %w", err)
	}
	defer rows.Close()

	var events []LockEvent
	for rows.Next() {
		var e LockEvent
		var errorMessage sql.NullString

		err := rows.Scan(&e.ID, &e.Timestamp, &e.Source, &e.LatencyMs, &e.Success, &errorMessage)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lock event: %w", err)
		}

		if errorMessage.Valid {
			e.ErrorMessage = errorMessage.String
		}

		events = append(events, e)
	}

	return events, rows.Err()
}

// GetLockEventCount returns the total number of recorded lock attempts.
func (db *DB) GetLockEventCount() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM lock_events").Scan(&count)
	return count, err
}

// Stats summarizes the journal for the dashboard.
type Stats struct {
	Total        int
	SuccessCount int
	FailureCount int
	AvgLatencyMs float64
}

// GetStats returns aggregate counts over all recorded lock attempts.
func (db *DB) GetStats() (Stats, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN success = 1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(latency_ms), 0)
		FROM lock_events
	`

	var s Stats
	err := db.conn.QueryRow(query).Scan(&s.Total, &s.SuccessCount, &s.FailureCount, &s.AvgLatencyMs)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to query stats: %w", err)
	}
	return s, nil
}
