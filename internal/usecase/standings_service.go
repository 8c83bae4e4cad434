package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/wcckavaliers/scorebook/internal/domain/standings"
	"github.com/wcckavaliers/scorebook/internal/platform/logging"
	"github.com/wcckavaliers/scorebook/internal/platform/names"
)

// wonPattern finds the "won" marker inside a free-text result, tolerating a
// missing space before it ("TeamAwon by 5 runs").
var wonPattern = regexp.MustCompile(`(?i)won`)

// StandingsService maintains the two long-lived team slots: points, the
// bounded recent-results window, and the isRevert marker that targets
// rollback.
type StandingsService struct {
	teams  standings.Repository
	now    func() time.Time
	logger *logging.Logger
}

func NewStandingsService(teams standings.Repository, logger *logging.Logger) *StandingsService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StandingsService{
		teams:  teams,
		now:    time.Now,
		logger: logger,
	}
}

// ResolveWinner derives the winner from a noisy free-text result: the text is
// expected to contain the winning team's name immediately before "won",
// possibly with no separating space. The substring before "won" is
// normalized and matched against the two candidate names.
func (s *StandingsService) ResolveWinner(resultText string, candidates [2]string) (winner, loser string, err error) {
	loc := wonPattern.FindStringIndex(resultText)
	if loc == nil {
		return "", "", fmt.Errorf("%w: %q", ErrUnresolvableResult, resultText)
	}

	prefix := names.Normalize(resultText[:loc[0]])
	first := names.Normalize(candidates[0])
	second := names.Normalize(candidates[1])

	switch {
	case prefix != "" && strings.EqualFold(prefix, first):
		return first, second, nil
	case prefix != "" && strings.EqualFold(prefix, second):
		return second, first, nil
	default:
		return "", "", fmt.Errorf("%w: %q names neither %q nor %q", ErrUnresolvableResult, resultText, first, second)
	}
}

// ApplyResult credits the winner with a point and a "W" window entry, the
// loser with an "L", and marks the winner as the revert target. When both
// slots sit at zero points this is the first match of a series, and both get
// stamped with a shared start timestamp.
func (s *StandingsService) ApplyResult(ctx context.Context, winnerName, loserName string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.ApplyResult")
	defer span.End()

	winner, err := s.slotByName(ctx, winnerName)
	if err != nil {
		return err
	}
	loser, err := s.slotByName(ctx, loserName)
	if err != nil {
		return err
	}

	if winner.Points == 0 && loser.Points == 0 {
		startedAt := s.now().UTC()
		winner.SeriesStartedAt = startedAt
		loser.SeriesStartedAt = startedAt
	}

	winner.Points++
	winner.AppendResult(standings.ResultWin)
	winner.IsRevert = true
	loser.AppendResult(standings.ResultLoss)
	loser.IsRevert = false

	if err := s.teams.Upsert(ctx, winner); err != nil {
		return fmt.Errorf("persist winner %q: %w", winner.TeamID, err)
	}
	if err := s.teams.Upsert(ctx, loser); err != nil {
		return fmt.Errorf("persist loser %q after winner was written: %w", loser.TeamID, err)
	}

	return nil
}

// RevertResult rolls back the most recent ApplyResult. The team carrying the
// lone isRevert flag is the winner to unwind; zero or two flags means the
// marker state cannot identify a target.
func (s *StandingsService) RevertResult(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.RevertResult")
	defer span.End()

	slots, err := s.teams.ListSlots(ctx)
	if err != nil {
		return fmt.Errorf("list standings slots: %w", err)
	}
	if len(slots) != 2 {
		return fmt.Errorf("%w: expected 2 standings slots, found %d", ErrAmbiguousRevert, len(slots))
	}

	var winner, loser *standings.Team
	flagged := 0
	for i := range slots {
		if slots[i].IsRevert {
			flagged++
			winner = &slots[i]
		} else {
			loser = &slots[i]
		}
	}
	if flagged != 1 {
		return fmt.Errorf("%w: %d teams carry the revert marker", ErrAmbiguousRevert, flagged)
	}

	if !winner.PopResult(standings.ResultWin) {
		s.logger.WarnContext(ctx, "winner window had no trailing W to pop", "team_id", winner.TeamID)
	}
	if !loser.PopResult(standings.ResultLoss) {
		s.logger.WarnContext(ctx, "loser window had no trailing L to pop", "team_id", loser.TeamID)
	}
	if winner.Points > 0 {
		winner.Points--
	}
	winner.IsRevert = false
	loser.IsRevert = false

	if err := s.teams.Upsert(ctx, *winner); err != nil {
		return fmt.Errorf("persist reverted winner %q: %w", winner.TeamID, err)
	}
	if err := s.teams.Upsert(ctx, *loser); err != nil {
		return fmt.Errorf("persist reverted loser %q after winner was written: %w", loser.TeamID, err)
	}

	return nil
}

func (s *StandingsService) slotByName(ctx context.Context, teamName string) (standings.Team, error) {
	slots, err := s.teams.ListSlots(ctx)
	if err != nil {
		return standings.Team{}, fmt.Errorf("list standings slots: %w", err)
	}
	for _, slot := range slots {
		if names.Equal(slot.TeamName, teamName) {
			return slot, nil
		}
	}
	return standings.Team{}, fmt.Errorf("%w: no standings slot for team %q", ErrNotFound, teamName)
}
