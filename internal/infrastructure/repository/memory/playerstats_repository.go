package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/wcckavaliers/scorebook/internal/domain/playerstats"
)

type PlayerStatsRepository struct {
	mu      sync.RWMutex
	records map[string]playerstats.Record
}

func NewPlayerStatsRepository() *PlayerStatsRepository {
	return &PlayerStatsRepository{records: make(map[string]playerstats.Record)}
}

func (r *PlayerStatsRepository) GetByName(_ context.Context, name string) (playerstats.Record, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[name]

	return record, ok, nil
}

func (r *PlayerStatsRepository) Upsert(_ context.Context, record playerstats.Record) error {
	name := strings.TrimSpace(record.Name)
	if name == "" {
		return fmt.Errorf("player name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[name] = record

	return nil
}

func (r *PlayerStatsRepository) List(_ context.Context) ([]playerstats.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]playerstats.Record, 0, len(r.records))
	for _, record := range r.records {
		out = append(out, record)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out, nil
}

func (r *PlayerStatsRepository) Rename(_ context.Context, oldName, newName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[oldName]
	if !ok {
		return fmt.Errorf("player %q not found", oldName)
	}
	if _, exists := r.records[newName]; exists {
		return fmt.Errorf("player %q already exists", newName)
	}

	delete(r.records, oldName)
	record.Name = newName
	r.records[newName] = record

	return nil
}
