// ABOUTME: Automation run log operations
// ABOUTME: Records each automated insight execution so partial failures can be reviewed and retried
package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/JFernandez0524/leadgen/models"
)

func RecordAutomationRun(ctx context.Context, db *sql.DB, run models.AutomationRun) error {
	if run.RunID == "" {
		return errors.New("automation run id is required")
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO automation_runs (run_id, kind, attempted, failed, success, executed_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.RunID, run.Kind, run.Attempted, run.Failed, run.Success, run.ExecutedAt.UTC())
	return err
}

// ListAutomationRuns returns the most recent runs first.
func ListAutomationRuns(ctx context.Context, db *sql.DB, limit int) ([]models.AutomationRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.QueryContext(ctx, `
		SELECT run_id, kind, attempted, failed, success, executed_at
		FROM automation_runs
		ORDER BY executed_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.AutomationRun
	for rows.Next() {
		var r models.AutomationRun
		if err := rows.Scan(&r.RunID, &r.Kind, &r.Attempted, &r.Failed, &r.Success, &r.ExecutedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
