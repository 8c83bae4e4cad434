package standings

import (
	"fmt"
	"time"
)

const (
	SlotTeam1 = "team1"
	SlotTeam2 = "team2"

	// ScoreWindow bounds the recent-results sequence; the oldest entry is
	// evicted first once the window is full.
	ScoreWindow = 15

	ResultWin  = "W"
	ResultLoss = "L"
)

// Team is one of the two long-lived standings slots. IsRevert is a volatile
// marker: true only on the winner of the most recently ingested match, and it
// is the sole signal used to target a rollback.
type Team struct {
	TeamID          string    `json:"teamId"`
	TeamName        string    `json:"teamName"`
	Captain         string    `json:"captain"`
	CoreTeam        []string  `json:"coreTeam"`
	Points          int       `json:"points"`
	Score           []string  `json:"score"`
	IsRevert        bool      `json:"isRevert"`
	SeriesStartedAt time.Time `json:"seriesStartedAt"`
}

func (t Team) Validate() error {
	if t.TeamID != SlotTeam1 && t.TeamID != SlotTeam2 {
		return fmt.Errorf("team id must be %s or %s, got %q", SlotTeam1, SlotTeam2, t.TeamID)
	}
	if t.Points < 0 {
		return fmt.Errorf("points cannot be negative")
	}
	if len(t.Score) > ScoreWindow {
		return fmt.Errorf("score window exceeds %d entries", ScoreWindow)
	}
	return nil
}

// AppendResult pushes a W/L entry onto the recent-results window, evicting
// the oldest entry when full.
func (t *Team) AppendResult(result string) {
	t.Score = append(t.Score, result)
	if len(t.Score) > ScoreWindow {
		t.Score = t.Score[len(t.Score)-ScoreWindow:]
	}
}

// PopResult removes the trailing entry iff it matches the expected result.
// A mismatched or empty window is left untouched; the caller surfaces it.
func (t *Team) PopResult(expected string) bool {
	if len(t.Score) == 0 || t.Score[len(t.Score)-1] != expected {
		return false
	}
	t.Score = t.Score[:len(t.Score)-1]
	return true
}

// DefaultSlot returns the empty slot shape served before any team profile is
// saved.
func DefaultSlot(teamID string) Team {
	return Team{
		TeamID:   teamID,
		CoreTeam: []string{},
		Score:    []string{},
	}
}
