package application

import (
	"github.com/jderrod/Dota2AnalysisTool/internal/models"
	"github.com/jderrod/Dota2AnalysisTool/internal/repository"
)

type MatchServiceImpl struct {
	matches repository.Match
	catalog repository.Catalog
}

func NewMatchServiceImpl(matches repository.Match, catalog repository.Catalog) *MatchServiceImpl {
	return &MatchServiceImpl{matches: matches, catalog: catalog}
}

func (s *MatchServiceImpl) GetMatches(filter models.MatchFilter) ([]models.Match, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultMatchLimit
	}
	return s.matches.GetMatches(filter)
}

func (s *MatchServiceImpl) GetMatch(matchID int64) (*models.Match, error) {
	return s.matches.GetMatchByID(matchID)
}

func (s *MatchServiceImpl) GetTeams() ([]models.Team, error) {
	return s.catalog.GetAllTeams()
}

func (s *MatchServiceImpl) GetHeroes() ([]models.Hero, error) {
	return s.catalog.GetAllHeroes()
}

func (s *MatchServiceImpl) GetLeagues() ([]models.League, error) {
	return s.catalog.GetAllLeagues()
}
