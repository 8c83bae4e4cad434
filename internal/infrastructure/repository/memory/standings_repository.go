package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/wcckavaliers/scorebook/internal/domain/standings"
)

type StandingsRepository struct {
	mu    sync.RWMutex
	slots map[string]standings.Team
}

func NewStandingsRepository() *StandingsRepository {
	return &StandingsRepository{slots: make(map[string]standings.Team)}
}

func (r *StandingsRepository) GetBySlot(_ context.Context, teamID string) (standings.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	team, ok := r.slots[teamID]

	return team, ok, nil
}

func (r *StandingsRepository) ListSlots(_ context.Context) ([]standings.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]standings.Team, 0, 2)
	for _, slotID := range []string{standings.SlotTeam1, standings.SlotTeam2} {
		if team, ok := r.slots[slotID]; ok {
			out = append(out, team)
		}
	}

	return out, nil
}

func (r *StandingsRepository) Upsert(_ context.Context, team standings.Team) error {
	if team.TeamID != standings.SlotTeam1 && team.TeamID != standings.SlotTeam2 {
		return fmt.Errorf("unknown standings slot %q", team.TeamID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots[team.TeamID] = team

	return nil
}
