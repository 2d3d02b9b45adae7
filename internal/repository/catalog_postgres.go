package repository

import (
	"database/sql"
	"fmt"

	"github.com/jderrod/Dota2AnalysisTool/internal/models"
)

type CatalogPostgres struct {
	db *sql.DB
}

func NewCatalogPostgres(db *sql.DB) *CatalogPostgres {
	return &CatalogPostgres{db: db}
}

// EnsureTeam creates the team on first reference. An existing row is
// left alone so a richer name from a catalog sync is not overwritten
// by a listing stub.
func (r *CatalogPostgres) EnsureTeam(team models.Team) error {
	_, err := r.db.Exec(`INSERT INTO teams (team_id, name, tag, rating)
	                     VALUES ($1, $2, $3, $4)
	                     ON CONFLICT (team_id) DO NOTHING`,
		team.TeamID, team.Name, team.Tag, team.Rating)
	if err != nil {
		return fmt.Errorf("failed to ensure team %d: %w", team.TeamID, err)
	}
	return nil
}

func (r *CatalogPostgres) EnsureLeague(league models.League) error {
	_, err := r.db.Exec(`INSERT INTO leagues (league_id, name, tier)
	                     VALUES ($1, $2, $3)
	                     ON CONFLICT (league_id) DO NOTHING`,
		league.LeagueID, league.Name, league.Tier)
	if err != nil {
		return fmt.Errorf("failed to ensure league %d: %w", league.LeagueID, err)
	}
	return nil
}

func (r *CatalogPostgres) UpsertTeams(teams []models.Team) error {
	for _, t := range teams {
		_, err := r.db.Exec(`INSERT INTO teams (team_id, name, tag, rating)
		                     VALUES ($1, $2, $3, $4)
		                     ON CONFLICT (team_id) DO UPDATE SET
		                         name = EXCLUDED.name,
		                         tag = EXCLUDED.tag,
		                         rating = EXCLUDED.rating`,
			t.TeamID, t.Name, t.Tag, t.Rating)
		if err != nil {
			return fmt.Errorf("failed to upsert team %d: %w", t.TeamID, err)
		}
	}
	return nil
}

func (r *CatalogPostgres) UpsertHeroes(heroes []models.Hero) error {
	for _, h := range heroes {
		_, err := r.db.Exec(`INSERT INTO heroes (hero_id, name, localized_name, primary_attr, attack_type)
		                     VALUES ($1, $2, $3, $4, $5)
		                     ON CONFLICT (hero_id) DO UPDATE SET
		                         name = EXCLUDED.name,
		                         localized_name = EXCLUDED.localized_name,
		                         primary_attr = EXCLUDED.primary_attr,
		                         attack_type = EXCLUDED.attack_type`,
			h.HeroID, h.Name, h.LocalizedName, h.PrimaryAttr, h.AttackType)
		if err != nil {
			return fmt.Errorf("failed to upsert hero %d: %w", h.HeroID, err)
		}
	}
	return nil
}

func (r *CatalogPostgres) UpsertLeagues(leagues []models.League) error {
	for _, l := range leagues {
		_, err := r.db.Exec(`INSERT INTO leagues (league_id, name, tier)
		                     VALUES ($1, $2, $3)
		                     ON CONFLICT (league_id) DO UPDATE SET
		                         name = EXCLUDED.name,
		                         tier = EXCLUDED.tier`,
			l.LeagueID, l.Name, l.Tier)
		if err != nil {
			return fmt.Errorf("failed to upsert league %d: %w", l.LeagueID, err)
		}
	}
	return nil
}

func (r *CatalogPostgres) GetAllTeams() ([]models.Team, error) {
	rows, err := r.db.Query("SELECT team_id, name, tag, rating FROM teams ORDER BY rating DESC, team_id")
	if err != nil {
		return nil, fmt.Errorf("failed to get teams: %w", err)
	}
	defer rows.Close()

	var teams []models.Team
	for rows.Next() {
		var t models.Team
		if err := rows.Scan(&t.TeamID, &t.Name, &t.Tag, &t.Rating); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (r *CatalogPostgres) GetAllHeroes() ([]models.Hero, error) {
	rows, err := r.db.Query("SELECT hero_id, name, localized_name, primary_attr, attack_type FROM heroes ORDER BY hero_id")
	if err != nil {
		return nil, fmt.Errorf("failed to get heroes: %w", err)
	}
	defer rows.Close()

	var heroes []models.Hero
	for rows.Next() {
		var h models.Hero
		if err := rows.Scan(&h.HeroID, &h.Name, &h.LocalizedName, &h.PrimaryAttr, &h.AttackType); err != nil {
			return nil, fmt.Errorf("failed to scan hero: %w", err)
		}
		heroes = append(heroes, h)
	}
	return heroes, rows.Err()
}

func (r *CatalogPostgres) GetAllLeagues() ([]models.League, error) {
	rows, err := r.db.Query("SELECT league_id, name, tier FROM leagues ORDER BY tier DESC, league_id")
	if err != nil {
		return nil, fmt.Errorf("failed to get leagues: %w", err)
	}
	defer rows.Close()

	var leagues []models.League
	for rows.Next() {
		var l models.League
		if err := rows.Scan(&l.LeagueID, &l.Name, &l.Tier); err != nil {
			return nil, fmt.Errorf("failed to scan league: %w", err)
		}
		leagues = append(leagues, l)
	}
	return leagues, rows.Err()
}
