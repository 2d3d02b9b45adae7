package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/jderrod/Dota2AnalysisTool/internal/application"
	"github.com/jderrod/Dota2AnalysisTool/internal/models"
)

const dateLayout = "2006-01-02"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetMatches(w http.ResponseWriter, r *http.Request) {
	filter, err := parseMatchFilter(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err)
		return
	}

	matches, err := s.services.Match.GetMatches(filter)
	if err != nil {
		s.logger.Error("failed to get matches: %s", err)
		s.respondError(w, http.StatusInternalServerError, err)
		return
	}
	if matches == nil {
		matches = []models.Match{}
	}
	s.respondJSON(w, http.StatusOK, matches)
}

func (s *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := strconv.ParseInt(mux.Vars(r)["match_id"], 10, 64)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Errorf("invalid match id"))
		return
	}

	match, err := s.services.Match.GetMatch(matchID)
	if errors.Is(err, sql.ErrNoRows) {
		s.respondError(w, http.StatusNotFound, fmt.Errorf("match %d not found", matchID))
		return
	}
	if err != nil {
		s.logger.Error("failed to get match %d: %s", matchID, err)
		s.respondError(w, http.StatusInternalServerError, err)
		return
	}
	s.respondJSON(w, http.StatusOK, match)
}

func (s *Server) handleGetTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := s.services.Match.GetTeams()
	if err != nil {
		s.logger.Error("failed to get teams: %s", err)
		s.respondError(w, http.StatusInternalServerError, err)
		return
	}
	s.respondJSON(w, http.StatusOK, teams)
}

func (s *Server) handleGetHeroes(w http.ResponseWriter, r *http.Request) {
	heroes, err := s.services.Match.GetHeroes()
	if err != nil {
		s.logger.Error("failed to get heroes: %s", err)
		s.respondError(w, http.StatusInternalServerError, err)
		return
	}
	s.respondJSON(w, http.StatusOK, heroes)
}

func (s *Server) handleGetLeagues(w http.ResponseWriter, r *http.Request) {
	leagues, err := s.services.Match.GetLeagues()
	if err != nil {
		s.logger.Error("failed to get leagues: %s", err)
		s.respondError(w, http.StatusInternalServerError, err)
		return
	}
	s.respondJSON(w, http.StatusOK, leagues)
}

func (s *Server) handleGetTeamStats(w http.ResponseWriter, r *http.Request) {
	filter, err := parseMatchFilter(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err)
		return
	}

	stats, err := s.services.Stats.GetTeamStats(filter)
	if err != nil {
		s.logger.Error("failed to compute team stats: %s", err)
		s.respondError(w, http.StatusInternalServerError, err)
		return
	}
	s.respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleGetHeroStats(w http.ResponseWriter, r *http.Request) {
	filter, err := parseMatchFilter(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err)
		return
	}

	stats, err := s.services.Stats.GetHeroStats(filter)
	if err != nil {
		s.logger.Error("failed to compute hero stats: %s", err)
		s.respondError(w, http.StatusInternalServerError, err)
		return
	}
	s.respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleExportStats(w http.ResponseWriter, r *http.Request) {
	filter, err := parseMatchFilter(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err)
		return
	}

	report, err := s.services.Stats.GetExcelReport(filter)
	if err != nil {
		s.logger.Error("failed to build excel report: %s", err)
		s.respondError(w, http.StatusInternalServerError, err)
		return
	}

	filename := fmt.Sprintf("dota_stats_%s.xlsx", time.Now().Format(dateLayout))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(report)
}

type refreshRequest struct {
	Days          int    `json:"days"`
	From          string `json:"from"`
	To            string `json:"to"`
	MinLeagueTier int    `json:"min_league_tier"`
	MaxMatches    int    `json:"max_matches"`
	Resume        bool   `json:"resume"`
	Catalogs      bool   `json:"catalogs"`
}

// handleRefresh runs an ingestion pass synchronously; the desktop
// frontend triggers it and waits for the report.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		s.respondError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	query := application.RefreshQuery{
		MinLeagueTier: req.MinLeagueTier,
		MaxMatches:    req.MaxMatches,
		Resume:        req.Resume,
	}
	if req.From != "" {
		from, err := time.Parse(dateLayout, req.From)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, fmt.Errorf("invalid from date: %w", err))
			return
		}
		query.From = from
	}
	if req.To != "" {
		to, err := time.Parse(dateLayout, req.To)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, fmt.Errorf("invalid to date: %w", err))
			return
		}
		query.To = to.Add(24*time.Hour - time.Second)
	}
	if query.From.IsZero() {
		days := req.Days
		if days <= 0 {
			days = 7
		}
		query.From = time.Now().AddDate(0, 0, -days)
	}

	if req.Catalogs {
		if err := s.services.Ingest.SyncCatalogs(r.Context()); err != nil {
			s.logger.Error("catalog sync failed: %s", err)
			s.respondError(w, http.StatusBadGateway, err)
			return
		}
	}

	report, err := s.services.Ingest.RefreshMatches(r.Context(), query)
	if err != nil {
		s.logger.Error("refresh failed: %s", err)
		s.respondJSON(w, http.StatusBadGateway, map[string]interface{}{
			"error":  err.Error(),
			"report": report,
		})
		return
	}
	s.respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleRefreshStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.services.Ingest.Status()
	if err != nil {
		s.logger.Error("failed to get refresh status: %s", err)
		s.respondError(w, http.StatusInternalServerError, err)
		return
	}
	s.respondJSON(w, http.StatusOK, status)
}

func parseMatchFilter(r *http.Request) (models.MatchFilter, error) {
	var filter models.MatchFilter
	q := r.URL.Query()

	if v := q.Get("from"); v != "" {
		from, err := time.Parse(dateLayout, v)
		if err != nil {
			return filter, fmt.Errorf("invalid from date %q: %w", v, err)
		}
		filter.From = from
	}
	if v := q.Get("to"); v != "" {
		to, err := time.Parse(dateLayout, v)
		if err != nil {
			return filter, fmt.Errorf("invalid to date %q: %w", v, err)
		}
		filter.To = to.Add(24*time.Hour - time.Second)
	}
	if v := q.Get("team_id"); v != "" {
		teamID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filter, fmt.Errorf("invalid team_id %q: %w", v, err)
		}
		filter.TeamID = teamID
	}
	if v := q.Get("league_id"); v != "" {
		leagueID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filter, fmt.Errorf("invalid league_id %q: %w", v, err)
		}
		filter.LeagueID = leagueID
	}
	filter.Patch = q.Get("patch")
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return filter, fmt.Errorf("invalid limit %q", v)
		}
		filter.Limit = limit
	}
	return filter, nil
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response: %s", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, err error) {
	s.respondJSON(w, status, map[string]string{"error": err.Error()})
}
