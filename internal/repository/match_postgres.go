package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/jderrod/Dota2AnalysisTool/internal/models"
)

type MatchPostgres struct {
	db *sql.DB
}

func NewMatchPostgres(db *sql.DB) *MatchPostgres {
	return &MatchPostgres{db: db}
}

// UpsertMatch writes one canonical match and its draft in a single
// transaction. Re-ingesting the same match_id replaces the stored row,
// so the operation is idempotent and last-write-wins.
func (r *MatchPostgres) UpsertMatch(m *models.Match) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	query := `
		INSERT INTO matches (match_id, start_time, duration, patch, league_id, series_id, series_type,
		                     radiant_team_id, dire_team_id, radiant_score, dire_score, radiant_win)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (match_id) DO UPDATE SET
			start_time = EXCLUDED.start_time,
			duration = EXCLUDED.duration,
			patch = EXCLUDED.patch,
			league_id = EXCLUDED.league_id,
			series_id = EXCLUDED.series_id,
			series_type = EXCLUDED.series_type,
			radiant_team_id = EXCLUDED.radiant_team_id,
			dire_team_id = EXCLUDED.dire_team_id,
			radiant_score = EXCLUDED.radiant_score,
			dire_score = EXCLUDED.dire_score,
			radiant_win = EXCLUDED.radiant_win,
			updated_at = NOW()
	`
	_, err = tx.Exec(query, m.MatchID, m.StartTime, m.Duration, m.Patch, m.LeagueID, m.SeriesID,
		m.SeriesType, m.RadiantTeamID, m.DireTeamID, m.RadiantScore, m.DireScore, m.RadiantWin)
	if err != nil {
		return fmt.Errorf("failed to upsert match %d: %w", m.MatchID, err)
	}

	if _, err = tx.Exec("DELETE FROM draft_picks WHERE match_id = $1", m.MatchID); err != nil {
		return fmt.Errorf("failed to clear draft for match %d: %w", m.MatchID, err)
	}
	for _, p := range m.Draft {
		_, err = tx.Exec(`INSERT INTO draft_picks (match_id, hero_id, team, is_pick, pick_order)
		                  VALUES ($1, $2, $3, $4, $5)`,
			m.MatchID, p.HeroID, p.Team, p.IsPick, p.Order)
		if err != nil {
			return fmt.Errorf("failed to insert draft pick for match %d: %w", m.MatchID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit match %d: %w", m.MatchID, err)
	}
	return nil
}

// GetMatches returns matches inside the filter bounds, newest first.
func (r *MatchPostgres) GetMatches(filter models.MatchFilter) ([]models.Match, error) {
	var conditions []string
	var args []interface{}

	addArg := func(cond string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if !filter.From.IsZero() {
		addArg("start_time >= $%d", filter.From)
	}
	if !filter.To.IsZero() {
		addArg("start_time <= $%d", filter.To)
	}
	if filter.TeamID != 0 {
		args = append(args, filter.TeamID)
		conditions = append(conditions, fmt.Sprintf("(radiant_team_id = $%d OR dire_team_id = $%d)", len(args), len(args)))
	}
	if filter.LeagueID != 0 {
		addArg("league_id = $%d", filter.LeagueID)
	}
	if filter.Patch != "" {
		addArg("patch = $%d", filter.Patch)
	}

	query := `SELECT match_id, start_time, duration, patch, league_id, series_id, series_type,
	                 radiant_team_id, dire_team_id, radiant_score, dire_score, radiant_win
	          FROM matches`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY start_time DESC, match_id DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	var matches []models.Match
	var ids []int64
	for rows.Next() {
		var m models.Match
		if err := rows.Scan(&m.MatchID, &m.StartTime, &m.Duration, &m.Patch, &m.LeagueID,
			&m.SeriesID, &m.SeriesType, &m.RadiantTeamID, &m.DireTeamID,
			&m.RadiantScore, &m.DireScore, &m.RadiantWin); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, m)
		ids = append(ids, m.MatchID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate matches: %w", err)
	}

	if err := r.attachDrafts(matches, ids); err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *MatchPostgres) GetMatchByID(matchID int64) (*models.Match, error) {
	query := `SELECT match_id, start_time, duration, patch, league_id, series_id, series_type,
	                 radiant_team_id, dire_team_id, radiant_score, dire_score, radiant_win
	          FROM matches WHERE match_id = $1`

	var m models.Match
	err := r.db.QueryRow(query, matchID).Scan(&m.MatchID, &m.StartTime, &m.Duration, &m.Patch,
		&m.LeagueID, &m.SeriesID, &m.SeriesType, &m.RadiantTeamID, &m.DireTeamID,
		&m.RadiantScore, &m.DireScore, &m.RadiantWin)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match %d: %w", matchID, err)
	}

	matches := []models.Match{m}
	if err := r.attachDrafts(matches, []int64{matchID}); err != nil {
		return nil, err
	}
	return &matches[0], nil
}

func (r *MatchPostgres) CountMatches() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM matches").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}
	return count, nil
}

func (r *MatchPostgres) attachDrafts(matches []models.Match, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	rows, err := r.db.Query(`SELECT match_id, hero_id, team, is_pick, pick_order
	                         FROM draft_picks WHERE match_id = ANY($1) ORDER BY match_id, pick_order`,
		pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to query draft picks: %w", err)
	}
	defer rows.Close()

	byMatch := make(map[int64][]models.DraftPick, len(ids))
	for rows.Next() {
		var p models.DraftPick
		if err := rows.Scan(&p.MatchID, &p.HeroID, &p.Team, &p.IsPick, &p.Order); err != nil {
			return fmt.Errorf("failed to scan draft pick: %w", err)
		}
		byMatch[p.MatchID] = append(byMatch[p.MatchID], p)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate draft picks: %w", err)
	}

	for i := range matches {
		matches[i].Draft = byMatch[matches[i].MatchID]
	}
	return nil
}
