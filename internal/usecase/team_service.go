package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/wcckavaliers/scorebook/internal/domain/standings"
	"github.com/wcckavaliers/scorebook/internal/platform/logging"
)

// TeamService serves and edits the two team profiles. Profile edits touch
// the descriptive fields only; points, the results window, and the revert
// marker stay owned by the standings flow.
type TeamService struct {
	teams  standings.Repository
	logger *logging.Logger
}

func NewTeamService(teams standings.Repository, logger *logging.Logger) *TeamService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &TeamService{teams: teams, logger: logger}
}

// GetTeams returns both slots, substituting an empty default for any slot
// that has never been saved.
func (s *TeamService) GetTeams(ctx context.Context) ([]standings.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.GetTeams")
	defer span.End()

	teams := make([]standings.Team, 0, 2)
	for _, slotID := range []string{standings.SlotTeam1, standings.SlotTeam2} {
		team, ok, err := s.teams.GetBySlot(ctx, slotID)
		if err != nil {
			return nil, fmt.Errorf("load team slot %q: %w", slotID, err)
		}
		if !ok {
			team = standings.DefaultSlot(slotID)
		}
		teams = append(teams, team)
	}

	return teams, nil
}

// TeamProfileUpdate carries the editable profile fields for one slot.
type TeamProfileUpdate struct {
	TeamName string   `json:"teamName"`
	Captain  string   `json:"captain"`
	CoreTeam []string `json:"coreTeam"`
}

// UpdateTeam writes the profile fields of one slot, carrying the standings
// state of any existing record across unchanged.
func (s *TeamService) UpdateTeam(ctx context.Context, teamID string, update TeamProfileUpdate) (standings.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.UpdateTeam")
	defer span.End()

	if teamID != standings.SlotTeam1 && teamID != standings.SlotTeam2 {
		return standings.Team{}, fmt.Errorf("%w: unknown team slot %q", ErrInvalidInput, teamID)
	}
	if strings.TrimSpace(update.TeamName) == "" {
		return standings.Team{}, fmt.Errorf("%w: team name is required", ErrInvalidInput)
	}

	team, ok, err := s.teams.GetBySlot(ctx, teamID)
	if err != nil {
		return standings.Team{}, fmt.Errorf("load team slot %q: %w", teamID, err)
	}
	if !ok {
		team = standings.DefaultSlot(teamID)
	}

	team.TeamName = strings.TrimSpace(update.TeamName)
	team.Captain = strings.TrimSpace(update.Captain)
	team.CoreTeam = normalizeRoster(update.CoreTeam)

	if err := team.Validate(); err != nil {
		return standings.Team{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.teams.Upsert(ctx, team); err != nil {
		return standings.Team{}, fmt.Errorf("persist team slot %q: %w", teamID, err)
	}

	s.logger.InfoContext(ctx, "team profile updated", "team_id", teamID, "team_name", team.TeamName)

	return team, nil
}

func normalizeRoster(roster []string) []string {
	cleaned := make([]string, 0, len(roster))
	for _, name := range roster {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		cleaned = append(cleaned, name)
	}
	return cleaned
}
