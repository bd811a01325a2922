package ledger

import (
	"context"
	"database/sql"
	"time"
)

// DefaultLimit caps listings when the caller passes a non-positive limit.
const DefaultLimit = 20

// Result is the final tally of one finished round.
type Result struct {
	GameID     string    `json:"gameId"`
	Round      int       `json:"round"`
	Mode       string    `json:"mode"`
	Day        string    `json:"day,omitempty"`
	Score      int       `json:"score"`
	SetsFound  int       `json:"setsFound"`
	ExtraDeals int       `json:"extraDeals"`
	FinishedAt time.Time `json:"finishedAt"`
}

// Ledger records finished games.
type Ledger struct{ db *sql.DB }

func New(db *sql.DB) *Ledger { return &Ledger{db: db} }

// Record inserts r. A second insert for the same game and round is ignored;
// inserted reports whether a row was written.
func (l *Ledger) Record(ctx context.Context, r Result) (inserted bool, err error) {
	if r.FinishedAt.IsZero() {
		r.FinishedAt = time.Now().UTC()
	}
	res, err := l.db.ExecContext(ctx, `
        INSERT OR IGNORE INTO results
            (game_id, round, mode, day, score, sets_found, extra_deals, finished_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.GameID, r.Round, r.Mode, r.Day, r.Score, r.SetsFound, r.ExtraDeals, r.FinishedAt,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Top returns the best results of a mode, highest score first; ties go to the
// earlier finish.
func (l *Ledger) Top(ctx context.Context, mode string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := l.db.QueryContext(ctx, `
        SELECT game_id, round, mode, day, score, sets_found, extra_deals, finished_at
        FROM results
        WHERE mode=?
        ORDER BY score DESC, finished_at ASC
        LIMIT ?`, mode, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanResults(rows, limit)
}

func scanResults(rows *sql.Rows, limit int) ([]Result, error) {
	out := make([]Result, 0, limit)
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.GameID, &r.Round, &r.Mode, &r.Day, &r.Score,
			&r.SetsFound, &r.ExtraDeals, &r.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
