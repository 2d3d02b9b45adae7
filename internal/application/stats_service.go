package application

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/jderrod/Dota2AnalysisTool/internal/models"
	"github.com/jderrod/Dota2AnalysisTool/internal/repository"
)

type TeamStats struct {
	TeamID  int64   `json:"team_id"`
	Name    string  `json:"name"`
	Tag     string  `json:"tag"`
	Matches int     `json:"matches"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	WinRate float64 `json:"win_rate"`
}

type HeroStats struct {
	HeroID      int     `json:"hero_id"`
	Name        string  `json:"name"`
	Picks       int     `json:"picks"`
	Bans        int     `json:"bans"`
	Wins        int     `json:"wins"`
	WinRate     float64 `json:"win_rate"`
	ContestRate float64 `json:"contest_rate"`
}

type StatsServiceImpl struct {
	matches repository.Match
	catalog repository.Catalog
}

func NewStatsServiceImpl(matches repository.Match, catalog repository.Catalog) *StatsServiceImpl {
	return &StatsServiceImpl{matches: matches, catalog: catalog}
}

// GetTeamStats aggregates wins and losses per team over the matches
// inside the filter bounds.
func (s *StatsServiceImpl) GetTeamStats(filter models.MatchFilter) ([]*TeamStats, error) {
	filter.Limit = 0 // aggregate over the whole range
	matches, err := s.matches.GetMatches(filter)
	if err != nil {
		return nil, err
	}

	names := make(map[int64]models.Team)
	teams, err := s.catalog.GetAllTeams()
	if err != nil {
		return nil, err
	}
	for _, t := range teams {
		names[t.TeamID] = t
	}

	statsMap := make(map[int64]*TeamStats)
	record := func(teamID int64, won bool) {
		if teamID == 0 {
			return
		}
		st, ok := statsMap[teamID]
		if !ok {
			st = &TeamStats{TeamID: teamID}
			if t, known := names[teamID]; known {
				st.Name = t.Name
				st.Tag = t.Tag
			}
			statsMap[teamID] = st
		}
		st.Matches++
		if won {
			st.Wins++
		} else {
			st.Losses++
		}
	}

	for _, m := range matches {
		record(m.RadiantTeamID, m.RadiantWin)
		record(m.DireTeamID, !m.RadiantWin)
	}

	statsList := make([]*TeamStats, 0, len(statsMap))
	for _, st := range statsMap {
		st.WinRate = calculateWinRate(st.Wins, st.Matches)
		statsList = append(statsList, st)
	}
	sort.Slice(statsList, func(i, j int) bool {
		return compareTeamsByPriority(statsList[i], statsList[j])
	})
	return statsList, nil
}

// GetHeroStats aggregates pick, ban and win counts per hero from the
// stored drafts. A picked hero counts as a win when its side won.
func (s *StatsServiceImpl) GetHeroStats(filter models.MatchFilter) ([]*HeroStats, error) {
	filter.Limit = 0
	matches, err := s.matches.GetMatches(filter)
	if err != nil {
		return nil, err
	}

	names := make(map[int]string)
	heroes, err := s.catalog.GetAllHeroes()
	if err != nil {
		return nil, err
	}
	for _, h := range heroes {
		names[h.HeroID] = h.LocalizedName
	}

	drafted := 0
	statsMap := make(map[int]*HeroStats)
	for _, m := range matches {
		if len(m.Draft) == 0 {
			continue
		}
		drafted++
		for _, p := range m.Draft {
			st, ok := statsMap[p.HeroID]
			if !ok {
				st = &HeroStats{HeroID: p.HeroID, Name: names[p.HeroID]}
				statsMap[p.HeroID] = st
			}
			if !p.IsPick {
				st.Bans++
				continue
			}
			st.Picks++
			radiantPick := p.Team == models.TeamRadiant
			if radiantPick == m.RadiantWin {
				st.Wins++
			}
		}
	}

	statsList := make([]*HeroStats, 0, len(statsMap))
	for _, st := range statsMap {
		st.WinRate = calculateWinRate(st.Wins, st.Picks)
		st.ContestRate = calculateContestRate(st.Picks, st.Bans, drafted)
		statsList = append(statsList, st)
	}
	sort.Slice(statsList, func(i, j int) bool {
		return compareHeroesByPriority(statsList[i], statsList[j])
	})
	return statsList, nil
}

// GetExcelReport renders the team leaderboard and the hero meta table
// as an xlsx workbook.
func (s *StatsServiceImpl) GetExcelReport(filter models.MatchFilter) ([]byte, error) {
	teamStats, err := s.GetTeamStats(filter)
	if err != nil {
		return nil, err
	}
	heroStats, err := s.GetHeroStats(filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	f.NewSheet(excelTeamsSheet)
	f.NewSheet(excelHeroesSheet)
	f.DeleteSheet("Sheet1")

	teamHeaders := []string{"Team ID", "Team", "Tag", "Matches", "Wins", "Losses", "WinRate %"}
	for i, h := range teamHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(excelTeamsSheet, cell, h)
	}
	row := 2
	for _, st := range teamStats {
		f.SetCellValue(excelTeamsSheet, fmt.Sprintf("A%d", row), st.TeamID)
		f.SetCellValue(excelTeamsSheet, fmt.Sprintf("B%d", row), st.Name)
		f.SetCellValue(excelTeamsSheet, fmt.Sprintf("C%d", row), st.Tag)
		f.SetCellValue(excelTeamsSheet, fmt.Sprintf("D%d", row), st.Matches)
		f.SetCellValue(excelTeamsSheet, fmt.Sprintf("E%d", row), st.Wins)
		f.SetCellValue(excelTeamsSheet, fmt.Sprintf("F%d", row), st.Losses)
		f.SetCellValue(excelTeamsSheet, fmt.Sprintf("G%d", row), fmt.Sprintf("%.1f%%", st.WinRate))
		row++
	}
	f.SetColWidth(excelTeamsSheet, "A", "A", 12)
	f.SetColWidth(excelTeamsSheet, "B", "B", 24)
	f.SetColWidth(excelTeamsSheet, "C", "G", 12)

	heroHeaders := []string{"Hero ID", "Hero", "Picks", "Bans", "Wins", "WinRate %", "Contest %"}
	for i, h := range heroHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(excelHeroesSheet, cell, h)
	}
	row = 2
	for _, st := range heroStats {
		f.SetCellValue(excelHeroesSheet, fmt.Sprintf("A%d", row), st.HeroID)
		f.SetCellValue(excelHeroesSheet, fmt.Sprintf("B%d", row), st.Name)
		f.SetCellValue(excelHeroesSheet, fmt.Sprintf("C%d", row), st.Picks)
		f.SetCellValue(excelHeroesSheet, fmt.Sprintf("D%d", row), st.Bans)
		f.SetCellValue(excelHeroesSheet, fmt.Sprintf("E%d", row), st.Wins)
		f.SetCellValue(excelHeroesSheet, fmt.Sprintf("F%d", row), fmt.Sprintf("%.1f%%", st.WinRate))
		f.SetCellValue(excelHeroesSheet, fmt.Sprintf("G%d", row), fmt.Sprintf("%.1f%%", st.ContestRate))
		row++
	}
	f.SetColWidth(excelHeroesSheet, "A", "A", 12)
	f.SetColWidth(excelHeroesSheet, "B", "B", 24)
	f.SetColWidth(excelHeroesSheet, "C", "G", 12)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
