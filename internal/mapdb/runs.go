package mapdb

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run is one wake (or wind-down) sequence executed against the strip.
type Run struct {
	ID         string
	Condition  string
	Reverse    bool
	StartedAt  time.Time
	FinishedAt *time.Time
	Error      string
}

func (r Run) String() string {
	state := "running"
	if r.FinishedAt != nil {
		state = fmt.Sprintf("finished %s", r.FinishedAt.Format(time.RFC3339))
		if r.Error != "" {
			state = fmt.Sprintf("failed: %s", r.Error)
		}
	}
	dir := "on"
	if r.Reverse {
		dir = "off"
	}
	return fmt.Sprintf("%s %s %s started %s (%s)", r.ID, dir, r.Condition, r.StartedAt.Format(time.RFC3339), state)
}

// StartRun records the beginning of a wake sequence and returns its run ID.
func (db *DB) StartRun(condition string, reverse bool) (string, error) {
	id := uuid.NewString()
	_, err := db.Exec(
		`INSERT INTO runs (run_id, condition, reverse, started_at) VALUES (?, ?, ?, ?)`,
		id, condition, reverse, time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("record run start: %w", err)
	}
	return id, nil
}

// FinishRun marks a run complete. runErr may be nil for a clean finish.
func (db *DB) FinishRun(id string, runErr error) error {
	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}
	_, err := db.Exec(
		`UPDATE runs SET finished_at = ?, error = ? WHERE run_id = ?`,
		time.Now().UTC(), msg, id,
	)
	if err != nil {
		return fmt.Errorf("record run finish: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (db *DB) RecentRuns(limit int) ([]Run, error) {
	rows, err := db.Query(
		`SELECT run_id, condition, reverse, started_at, finished_at, error
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var finished *time.Time
		if err := rows.Scan(&r.ID, &r.Condition, &r.Reverse, &r.StartedAt, &finished, &r.Error); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.FinishedAt = finished
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
