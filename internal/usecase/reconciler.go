package usecase

import (
	"context"
	"fmt"

	"github.com/wcckavaliers/scorebook/internal/domain/match"
	"github.com/wcckavaliers/scorebook/internal/domain/playerstats"
	"github.com/wcckavaliers/scorebook/internal/platform/logging"
)

// ReconcileOutcome reports the side observations of one reconciliation pass:
// players created during Apply, and consistency warnings collected during
// Revert (a missing record means the player was never credited; the reversal
// skips it and continues rather than deadlocking the store).
type ReconcileOutcome struct {
	NewPlayers []string
	Warnings   []string
}

// StatsReconciler folds a match report's batting and bowling lines into
// per-player career aggregates as signed deltas, and can apply the exact
// inverse deltas to undo the most recent match.
type StatsReconciler struct {
	players playerstats.Repository
	logger  *logging.Logger
}

func NewStatsReconciler(players playerstats.Repository, logger *logging.Logger) *StatsReconciler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StatsReconciler{players: players, logger: logger}
}

// Apply credits every batting and bowling line of the report to the named
// players, creating zeroed records on first sight. Derived rates are
// recomputed inside the record after each delta.
func (r *StatsReconciler) Apply(ctx context.Context, report match.Report) (ReconcileOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsReconciler.Apply")
	defer span.End()

	return r.walk(ctx, report, false)
}

// Revert applies the negation of every delta Apply would produce for the same
// report, returning each touched record to its exact prior state. Only the
// most recently applied match may be reverted; the orchestrator enforces the
// ordering.
func (r *StatsReconciler) Revert(ctx context.Context, report match.Report) (ReconcileOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsReconciler.Revert")
	defer span.End()

	return r.walk(ctx, report, true)
}

func (r *StatsReconciler) walk(ctx context.Context, report match.Report, invert bool) (ReconcileOutcome, error) {
	var outcome ReconcileOutcome

	for _, innings := range report.Innings {
		for _, line := range innings.Batsmen {
			if line.IsExtrasPlaceholder() {
				continue
			}
			delta := battingDelta(line)
			if invert {
				delta = delta.Negate()
			}
			if err := r.applyBatting(ctx, line.Name, delta, invert, &outcome); err != nil {
				return outcome, err
			}
		}
		for _, line := range innings.Bowlers {
			delta := bowlingDelta(line)
			if invert {
				delta = delta.Negate()
			}
			if err := r.applyBowling(ctx, line.Name, delta, invert, &outcome); err != nil {
				return outcome, err
			}
		}
	}

	return outcome, nil
}

func (r *StatsReconciler) applyBatting(ctx context.Context, name string, delta playerstats.BattingDelta, invert bool, outcome *ReconcileOutcome) error {
	record, ok, err := r.players.GetByName(ctx, name)
	if err != nil {
		return fmt.Errorf("load player %q: %w", name, err)
	}
	if !ok {
		if invert {
			r.skipMissing(ctx, name, outcome)
			return nil
		}
		record = playerstats.Record{Name: name}
		outcome.NewPlayers = append(outcome.NewPlayers, name)
	}

	record.ApplyBatting(delta)
	if err := r.players.Upsert(ctx, record); err != nil {
		return fmt.Errorf("write batting delta for player %q: %w", name, err)
	}
	return nil
}

func (r *StatsReconciler) applyBowling(ctx context.Context, name string, delta playerstats.BowlingDelta, invert bool, outcome *ReconcileOutcome) error {
	record, ok, err := r.players.GetByName(ctx, name)
	if err != nil {
		return fmt.Errorf("load player %q: %w", name, err)
	}
	if !ok {
		if invert {
			r.skipMissing(ctx, name, outcome)
			return nil
		}
		record = playerstats.Record{Name: name}
		if !containsName(outcome.NewPlayers, name) {
			outcome.NewPlayers = append(outcome.NewPlayers, name)
		}
	}

	record.ApplyBowling(delta)
	if err := r.players.Upsert(ctx, record); err != nil {
		return fmt.Errorf("write bowling delta for player %q: %w", name, err)
	}
	return nil
}

func (r *StatsReconciler) skipMissing(ctx context.Context, name string, outcome *ReconcileOutcome) {
	warning := fmt.Sprintf("player %q has no stats record, skipped during revert", name)
	outcome.Warnings = append(outcome.Warnings, warning)
	r.logger.WarnContext(ctx, "revert skipped uncredited player", "player", name)
}

func battingDelta(line match.BattingLine) playerstats.BattingDelta {
	delta := playerstats.BattingDelta{
		Matches: 1,
		Runs:    line.Runs,
		Balls:   line.Balls,
		Fours:   line.Fours,
		Sixes:   line.Sixes,
	}
	if line.IsNotOut() {
		delta.NotOuts = 1
	}
	return delta
}

func bowlingDelta(line match.BowlingLine) playerstats.BowlingDelta {
	return playerstats.BowlingDelta{
		Matches: 1,
		Overs:   line.Overs,
		Runs:    line.Runs,
		Wickets: line.Wickets,
		Maidens: line.Maidens,
		Dots:    line.Dots,
		Fours:   line.Fours,
		Sixes:   line.Sixes,
		Wides:   line.Wd,
		NoBalls: line.Nb,
	}
}

func containsName(list []string, name string) bool {
	for _, item := range list {
		if item == name {
			return true
		}
	}
	return false
}
