package stats

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/quaid/total-recall/internal/db"
)

// ProjectStats is one row of the per-project aggregate report.
type ProjectStats struct {
	ProjectPath    string
	SessionCount   int
	MessageCount   int
	AssistantTurns int
	LastActivity   time.Time
}

// Totals summarizes the whole session root.
type Totals struct {
	Projects       int
	Sessions       int
	Messages       int
	AssistantTurns int
}

// Collect aggregates session statistics across every log under the
// projects directory, letting DuckDB's read_json do the heavy lifting
// instead of parsing each file in Go.
func Collect(ctx context.Context, projectsDir string) ([]ProjectStats, Totals, error) {
	globPattern := filepath.Join(projectsDir, "**", "*.jsonl")

	database, err := db.GetDB()
	if err != nil {
		return nil, Totals{}, err
	}

	query := fmt.Sprintf(`
		SELECT
			COALESCE(cwd, 'Unknown') as project_path,
			COUNT(DISTINCT CAST(sessionId AS VARCHAR)) as session_count,
			COUNT(*) as message_count,
			SUM(CASE WHEN type = 'assistant' AND message IS NOT NULL THEN 1 ELSE 0 END) as assistant_events,
			MAX(timestamp) as last_activity
		FROM read_json('%s',
			format = 'newline_delimited',
			union_by_name = true,
			filename = true
		)
		WHERE sessionId IS NOT NULL
		GROUP BY cwd
		ORDER BY MAX(timestamp) DESC
	`, globPattern)

	queryCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rows, err := database.QueryContext(queryCtx, query)
	if err != nil {
		return nil, Totals{}, fmt.Errorf("failed to execute stats query: %w", err)
	}
	defer rows.Close()

	var report []ProjectStats
	var totals Totals
	for rows.Next() {
		var row ProjectStats
		var lastActivity sql.NullString
		var assistantEvents sql.NullInt64

		if err := rows.Scan(&row.ProjectPath, &row.SessionCount, &row.MessageCount, &assistantEvents, &lastActivity); err != nil {
			continue
		}

		row.AssistantTurns = int(assistantEvents.Int64)
		if lastActivity.Valid {
			if t, err := time.Parse(time.RFC3339, lastActivity.String); err == nil {
				row.LastActivity = t.Local()
			}
		}

		totals.Projects++
		totals.Sessions += row.SessionCount
		totals.Messages += row.MessageCount
		totals.AssistantTurns += row.AssistantTurns
		report = append(report, row)
	}
	if err := rows.Err(); err != nil {
		return nil, Totals{}, fmt.Errorf("failed to read stats rows: %w", err)
	}

	return report, totals, nil
}

// SummaryForSession returns the stored summary text for a session, found by
// following the last non-summary event's uuid to a summary entry's leafUuid.
func SummaryForSession(ctx context.Context, projectsDir, sessionID string) (string, error) {
	globPattern := filepath.Join(projectsDir, "**", "*.jsonl")

	database, err := db.GetDB()
	if err != nil {
		return "", err
	}

	lastUUIDQuery := fmt.Sprintf(`
		SELECT CAST(uuid AS VARCHAR) as uuid_str
		FROM read_json('%s',
			format = 'newline_delimited',
			union_by_name = true,
			filename = true
		)
		WHERE CAST(sessionId AS VARCHAR) = ?
		AND type <> 'summary'
		ORDER BY timestamp DESC
		LIMIT 1
	`, globPattern)

	var lastUUID sql.NullString
	if err := database.QueryRowContext(ctx, lastUUIDQuery, sessionID).Scan(&lastUUID); err != nil || !lastUUID.Valid {
		return "", nil
	}

	summaryQuery := fmt.Sprintf(`
		SELECT summary
		FROM read_json('%s',
			format = 'newline_delimited',
			union_by_name = true,
			filename = true
		)
		WHERE type = 'summary'
		AND CAST(leafUuid AS VARCHAR) = ?
		LIMIT 1
	`, globPattern)

	var summary sql.NullString
	if err := database.QueryRowContext(ctx, summaryQuery, lastUUID.String).Scan(&summary); err != nil {
		return "", nil
	}
	return summary.String, nil
}
