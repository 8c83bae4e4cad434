package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wcckavaliers/scorebook/internal/domain/match"
	"github.com/wcckavaliers/scorebook/internal/domain/playerstats"
	"github.com/wcckavaliers/scorebook/internal/platform/cache"
	idgen "github.com/wcckavaliers/scorebook/internal/platform/id"
	"github.com/wcckavaliers/scorebook/internal/platform/logging"
	"github.com/wcckavaliers/scorebook/internal/platform/names"
)

const (
	cacheKeyPlayerStats = "stats:players"
	cacheKeyAllMatches  = "matches:all"
)

// Notifier is the fire-and-forget notification sink. Implementations must
// never let a sink failure surface into ingestion.
type Notifier interface {
	Notify(ctx context.Context, subject, body string)
}

// Broadcaster receives the newly persisted match report for downstream
// display. Best effort, non-blocking.
type Broadcaster interface {
	Publish(report match.Report)
}

// ScorecardService orchestrates ingestion and reversal: extraction, name
// normalization, winner resolution, stats reconciliation, standings update,
// and persistence of the match document. A single mutex serializes
// ingestions and reversals; the per-record deltas underneath assume
// at-most-one writer in flight.
type ScorecardService struct {
	mu sync.Mutex

	extractor  *ReportExtractor
	reconciler *StatsReconciler
	standings  *StandingsService
	matches    match.Repository
	players    playerstats.Repository
	readCache  *cache.Store
	ids        idgen.Generator
	notifier   Notifier
	broadcast  Broadcaster
	logger     *logging.Logger
}

func NewScorecardService(
	extractor *ReportExtractor,
	reconciler *StatsReconciler,
	standingsSvc *StandingsService,
	matches match.Repository,
	players playerstats.Repository,
	readCache *cache.Store,
	ids idgen.Generator,
	notifier Notifier,
	broadcast Broadcaster,
	logger *logging.Logger,
) *ScorecardService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ScorecardService{
		extractor:  extractor,
		reconciler: reconciler,
		standings:  standingsSvc,
		matches:    matches,
		players:    players,
		readCache:  readCache,
		ids:        ids,
		notifier:   notifier,
		broadcast:  broadcast,
		logger:     logger,
	}
}

// Ingest runs the full pipeline for one raw report text and returns the
// persisted match report. Failures before the first stats delta abort with
// no side effects; failures after a partial mutation are returned with the
// last touched record named, and the caller retries the whole ingestion.
// The content hash written with the report makes such a retry detectable as
// a duplicate only once the document itself was persisted.
func (s *ScorecardService) Ingest(ctx context.Context, rawText string) (match.Report, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScorecardService.Ingest")
	defer span.End()

	if strings.TrimSpace(rawText) == "" {
		return match.Report{}, fmt.Errorf("%w: report text is required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	contentHash := match.HashContent(rawText)
	exists, err := s.matches.ExistsByContentHash(ctx, contentHash)
	if err != nil {
		return match.Report{}, fmt.Errorf("check duplicate report: %w", err)
	}
	if exists {
		return match.Report{}, fmt.Errorf("%w: content hash %s", ErrDuplicateReport, contentHash)
	}

	report, err := s.extractor.Extract(ctx, rawText)
	if err != nil {
		return match.Report{}, err
	}

	report.NormalizeNames()

	winner, loser, err := s.standings.ResolveWinner(report.MatchInfo.Result, [2]string{report.MatchInfo.Teams[0], report.MatchInfo.Teams[1]})
	if err != nil {
		return match.Report{}, err
	}

	outcome, err := s.reconciler.Apply(ctx, report)
	if err != nil {
		return match.Report{}, fmt.Errorf("reconcile player stats (partial, retry the ingestion): %w", err)
	}

	if err := s.standings.ApplyResult(ctx, winner, loser); err != nil {
		return match.Report{}, fmt.Errorf("update standings after stats were applied (retry the ingestion): %w", err)
	}

	reportID, err := s.ids.NewID()
	if err != nil {
		return match.Report{}, fmt.Errorf("allocate report id: %w", err)
	}
	report.ID = reportID
	report.ContentHash = contentHash
	report.CreatedAt = time.Now().UTC()

	if err := s.matches.Insert(ctx, report); err != nil {
		return match.Report{}, fmt.Errorf("persist match report after aggregates were applied (retry the ingestion): %w", err)
	}

	s.invalidateReadCache(ctx)
	s.announceNewPlayers(ctx, outcome.NewPlayers)
	if s.broadcast != nil {
		s.broadcast.Publish(report)
	}

	s.logger.InfoContext(ctx, "scorecard ingested",
		"report_id", report.ID,
		"winner", winner,
		"new_players", len(outcome.NewPlayers),
	)

	return report, nil
}

// RevertLast walks the most recently created match report backwards: inverse
// stats deltas, standings rollback, then deletion of the document itself.
func (s *ScorecardService) RevertLast(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScorecardService.RevertLast")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	report, ok, err := s.matches.Latest(ctx)
	if err != nil {
		return fmt.Errorf("load latest match report: %w", err)
	}
	if !ok {
		return ErrNothingToRevert
	}

	outcome, err := s.reconciler.Revert(ctx, report)
	if err != nil {
		return fmt.Errorf("revert player stats (partial, manual reconciliation may be needed): %w", err)
	}
	for _, warning := range outcome.Warnings {
		s.logger.WarnContext(ctx, "revert consistency warning", "report_id", report.ID, "warning", warning)
	}

	if err := s.standings.RevertResult(ctx); err != nil {
		return fmt.Errorf("revert standings after stats were reverted: %w", err)
	}

	if err := s.matches.Delete(ctx, report.ID); err != nil {
		return fmt.Errorf("delete match report %q after aggregates were reverted: %w", report.ID, err)
	}

	s.invalidateReadCache(ctx)
	s.logger.InfoContext(ctx, "scorecard reverted", "report_id", report.ID, "warnings", len(outcome.Warnings))

	return nil
}

// GetPlayerStats returns every player aggregate, cached.
func (s *ScorecardService) GetPlayerStats(ctx context.Context) ([]playerstats.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScorecardService.GetPlayerStats")
	defer span.End()

	if s.readCache == nil {
		return s.players.List(ctx)
	}

	value, err := s.readCache.GetOrLoad(ctx, cacheKeyPlayerStats, func(ctx context.Context) (any, error) {
		return s.players.List(ctx)
	})
	if err != nil {
		return nil, err
	}

	records, _ := value.([]playerstats.Record)
	return records, nil
}

// GetAllMatches returns every ingested match report, cached.
func (s *ScorecardService) GetAllMatches(ctx context.Context) ([]match.Report, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScorecardService.GetAllMatches")
	defer span.End()

	if s.readCache == nil {
		return s.matches.List(ctx)
	}

	value, err := s.readCache.GetOrLoad(ctx, cacheKeyAllMatches, func(ctx context.Context) (any, error) {
		return s.matches.List(ctx)
	})
	if err != nil {
		return nil, err
	}

	reports, _ := value.([]match.Report)
	return reports, nil
}

// RenamePlayer propagates a corrected player name across the aggregate
// record and every stored report. Dismissal descriptions are rewritten by
// best-effort text substitution: substring collisions between players
// sharing a token are possible, so this is a textual correction, not a
// guaranteed semantic one.
func (s *ScorecardService) RenamePlayer(ctx context.Context, oldName, newName string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScorecardService.RenamePlayer")
	defer span.End()

	oldName = names.Normalize(oldName)
	newName = names.Normalize(newName)
	if oldName == "" || newName == "" {
		return fmt.Errorf("%w: both old and new player names are required", ErrInvalidInput)
	}
	if oldName == newName {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.players.Rename(ctx, oldName, newName); err != nil {
		return fmt.Errorf("rename player record: %w", err)
	}

	reports, err := s.matches.List(ctx)
	if err != nil {
		return fmt.Errorf("list match reports for rename: %w", err)
	}
	for _, report := range reports {
		if !rewriteReportNames(&report, oldName, newName) {
			continue
		}
		if err := s.matches.Update(ctx, report); err != nil {
			return fmt.Errorf("rewrite report %q: %w", report.ID, err)
		}
	}

	s.invalidateReadCache(ctx)
	s.logger.InfoContext(ctx, "player renamed", "old", oldName, "new", newName)

	return nil
}

func rewriteReportNames(report *match.Report, oldName, newName string) bool {
	changed := false
	replaceExact := func(target *string) {
		if *target == oldName {
			*target = newName
			changed = true
		}
	}
	replaceContained := func(target *string) {
		if strings.Contains(*target, oldName) {
			*target = strings.ReplaceAll(*target, oldName, newName)
			changed = true
		}
	}

	replaceExact(&report.MatchInfo.PlayerOfMatch)
	for i := range report.Innings {
		inn := &report.Innings[i]
		for j := range inn.Batsmen {
			replaceExact(&inn.Batsmen[j].Name)
			replaceContained(&inn.Batsmen[j].OutDesc)
		}
		for j := range inn.Bowlers {
			replaceExact(&inn.Bowlers[j].Name)
		}
		for j := range inn.FallOfWickets {
			replaceContained(&inn.FallOfWickets[j])
		}
	}

	return changed
}

func (s *ScorecardService) invalidateReadCache(ctx context.Context) {
	if s.readCache == nil {
		return
	}
	s.readCache.Delete(ctx, cacheKeyPlayerStats)
	s.readCache.Delete(ctx, cacheKeyAllMatches)
}

func (s *ScorecardService) announceNewPlayers(ctx context.Context, players []string) {
	if s.notifier == nil {
		return
	}
	for _, name := range players {
		s.notifier.Notify(ctx,
			fmt.Sprintf("New Player Added: %s", name),
			fmt.Sprintf("A new player named %s has been credited for the first time.", name),
		)
	}
}
