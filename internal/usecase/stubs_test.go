package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/wcckavaliers/scorebook/internal/domain/match"
	"github.com/wcckavaliers/scorebook/internal/domain/playerstats"
	"github.com/wcckavaliers/scorebook/internal/domain/standings"
)

type memMatchRepo struct {
	mu      sync.Mutex
	reports []match.Report
}

func (m *memMatchRepo) Insert(_ context.Context, report match.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, report)
	return nil
}

func (m *memMatchRepo) Update(_ context.Context, report match.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.reports {
		if m.reports[i].ID == report.ID {
			m.reports[i] = report
			return nil
		}
	}
	return fmt.Errorf("report %q not found", report.ID)
}

func (m *memMatchRepo) Latest(_ context.Context) (match.Report, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.reports) == 0 {
		return match.Report{}, false, nil
	}
	return m.reports[len(m.reports)-1], true, nil
}

func (m *memMatchRepo) List(_ context.Context) ([]match.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]match.Report, len(m.reports))
	copy(out, m.reports)
	return out, nil
}

func (m *memMatchRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.reports {
		if m.reports[i].ID == id {
			m.reports = append(m.reports[:i], m.reports[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("report %q not found", id)
}

func (m *memMatchRepo) ExistsByContentHash(_ context.Context, hash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, report := range m.reports {
		if report.ContentHash == hash {
			return true, nil
		}
	}
	return false, nil
}

type memPlayerRepo struct {
	mu      sync.Mutex
	records map[string]playerstats.Record
	order   []string
}

func newMemPlayerRepo() *memPlayerRepo {
	return &memPlayerRepo{records: make(map[string]playerstats.Record)}
}

func (m *memPlayerRepo) GetByName(_ context.Context, name string) (playerstats.Record, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[name]
	return record, ok, nil
}

func (m *memPlayerRepo) Upsert(_ context.Context, record playerstats.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[record.Name]; !ok {
		m.order = append(m.order, record.Name)
	}
	m.records[record.Name] = record
	return nil
}

func (m *memPlayerRepo) List(_ context.Context) ([]playerstats.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]playerstats.Record, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.records[name])
	}
	return out, nil
}

func (m *memPlayerRepo) Rename(_ context.Context, oldName, newName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[oldName]
	if !ok {
		return fmt.Errorf("player %q not found", oldName)
	}
	delete(m.records, oldName)
	record.Name = newName
	m.records[newName] = record
	for i := range m.order {
		if m.order[i] == oldName {
			m.order[i] = newName
		}
	}
	return nil
}

type memTeamRepo struct {
	mu    sync.Mutex
	slots map[string]standings.Team
}

func newMemTeamRepo() *memTeamRepo {
	return &memTeamRepo{slots: make(map[string]standings.Team)}
}

func (m *memTeamRepo) GetBySlot(_ context.Context, teamID string) (standings.Team, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	team, ok := m.slots[teamID]
	return team, ok, nil
}

func (m *memTeamRepo) ListSlots(_ context.Context) ([]standings.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]standings.Team, 0, 2)
	for _, slotID := range []string{standings.SlotTeam1, standings.SlotTeam2} {
		if team, ok := m.slots[slotID]; ok {
			out = append(out, team)
		}
	}
	return out, nil
}

func (m *memTeamRepo) Upsert(_ context.Context, team standings.Team) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[team.TeamID] = team
	return nil
}

// stubGenerator scripts per-model responses for the extractor: a model not in
// failures answers with response.
type stubGenerator struct {
	mu       sync.Mutex
	models   []string
	response string
	failures map[string]error
	calls    []string
}

func (g *stubGenerator) ListModels(context.Context) ([]string, error) {
	return g.models, nil
}

func (g *stubGenerator) Generate(_ context.Context, modelID, _ string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, modelID)
	if err, ok := g.failures[modelID]; ok {
		return "", err
	}
	return g.response, nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	subjects []string
}

func (n *recordingNotifier) Notify(_ context.Context, subject, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subjects = append(n.subjects, subject)
}

type recordingBroadcaster struct {
	mu        sync.Mutex
	published []match.Report
}

func (b *recordingBroadcaster) Publish(report match.Report) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, report)
}

type sequenceIDs struct {
	mu   sync.Mutex
	next int
}

func (s *sequenceIDs) NewID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return fmt.Sprintf("report-%03d", s.next), nil
}

func seedTeams(repo *memTeamRepo, team1Name, team2Name string) {
	team1 := standings.DefaultSlot(standings.SlotTeam1)
	team1.TeamName = team1Name
	team2 := standings.DefaultSlot(standings.SlotTeam2)
	team2.TeamName = team2Name
	repo.slots[standings.SlotTeam1] = team1
	repo.slots[standings.SlotTeam2] = team2
}

func scorecardJSON(team1, team2, result string) string {
	return strings.TrimSpace(fmt.Sprintf(`{
  "matchInfo": {
    "teams": [%q, %q],
    "date": "2026-08-15",
    "venue": "Green Park",
    "format": "T20",
    "toss": "%s won the toss",
    "result": %q,
    "playerOfMatch": "R Sharma"
  },
  "innings": [
    {
      "team": %q,
      "total": "161/5",
      "overs": "20.0",
      "runRate": 8.05,
      "extras": "9",
      "batsmen": [
        {"name": "R Sharma", "runs": 50, "balls": 40, "fours": 4, "sixes": 2, "sr": 125.0, "outDesc": "not out"},
        {"name": "V Kohli", "runs": 30, "balls": 25, "fours": 3, "sixes": 0, "sr": 120.0, "outDesc": "c A Rahane b J Bumrah"},
        {"name": "Extras", "runs": 9, "balls": 0, "fours": 0, "sixes": 0, "sr": 0, "outDesc": ""}
      ],
      "bowlers": [
        {"name": "J Bumrah", "overs": 4, "maidens": 0, "runs": 20, "wickets": 2, "eco": 5.0, "dots": 10, "fours": 1, "sixes": 0, "wd": 1, "nb": 0}
      ],
      "fallOfWickets": ["30-1 (V Kohli, 8.2)"]
    }
  ]
}`, team1, team2, team1, result, team1))
}
