package daily

import (
	"context"
	"database/sql"

	"github.com/robalobadob/set3/internal/store"
)

// LBRow is one leaderboard entry.
type LBRow struct {
	GameID     string `json:"gameId"`
	Score      int    `json:"score"`
	SetsFound  int    `json:"setsFound"`
	ExtraDeals int    `json:"extraDeals"`
}

// Store reads daily results from the ledger database.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Leaderboard returns the best daily results for date: highest score, then
// fewest penalized deals, then earliest finish.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT game_id, score, sets_found, extra_deals
        FROM results
        WHERE mode=? AND day=?
        ORDER BY score DESC, extra_deals ASC, finished_at ASC
        LIMIT ?`, store.ModeDaily, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []LBRow{}
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.GameID, &r.Score, &r.SetsFound, &r.ExtraDeals); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
