package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/wcckavaliers/scorebook/internal/domain/match"
)

// MatchRepository keeps reports in insertion order, which doubles as
// creation order because ingestion is serialized.
type MatchRepository struct {
	mu      sync.RWMutex
	reports []match.Report
}

func NewMatchRepository() *MatchRepository {
	return &MatchRepository{}
}

func (r *MatchRepository) Insert(_ context.Context, report match.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range r.reports {
		if item.ID == report.ID {
			return fmt.Errorf("report %q already exists", report.ID)
		}
	}
	r.reports = append(r.reports, report)

	return nil
}

func (r *MatchRepository) Update(_ context.Context, report match.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for idx := range r.reports {
		if r.reports[idx].ID == report.ID {
			r.reports[idx] = report
			return nil
		}
	}

	return fmt.Errorf("report %q not found", report.ID)
}

func (r *MatchRepository) Latest(_ context.Context) (match.Report, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.reports) == 0 {
		return match.Report{}, false, nil
	}

	return r.reports[len(r.reports)-1], true, nil
}

func (r *MatchRepository) List(_ context.Context) ([]match.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Report, len(r.reports))
	copy(out, r.reports)

	return out, nil
}

func (r *MatchRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for idx := range r.reports {
		if r.reports[idx].ID == id {
			r.reports = append(r.reports[:idx], r.reports[idx+1:]...)
			return nil
		}
	}

	return fmt.Errorf("report %q not found", id)
}

func (r *MatchRepository) ExistsByContentHash(_ context.Context, hash string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.reports {
		if item.ContentHash == hash {
			return true, nil
		}
	}

	return false, nil
}
