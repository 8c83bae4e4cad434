package usecase

import (
	"context"
	"testing"

	"github.com/wcckavaliers/scorebook/internal/domain/match"
	"github.com/wcckavaliers/scorebook/internal/domain/playerstats"
)

func reconcilerReport() match.Report {
	return match.Report{
		MatchInfo: match.Info{
			Teams:  []string{"Kavaliers", "Chargers"},
			Result: "Kavaliers won by 5 runs",
		},
		Innings: []match.Innings{
			{
				Team: "Kavaliers",
				Batsmen: []match.BattingLine{
					{Name: "R Sharma", Runs: 50, Balls: 40, Fours: 4, Sixes: 2, OutDesc: "not out"},
					{Name: "V Kohli", Runs: 30, Balls: 25, Fours: 3, OutDesc: "c A Rahane b J Bumrah"},
					{Name: "Extras", Runs: 9},
				},
				Bowlers: []match.BowlingLine{
					{Name: "J Bumrah", Overs: 4, Runs: 20, Wickets: 2, Dots: 10, Fours: 1, Wd: 1},
				},
			},
		},
	}
}

func TestApplyCreditsLinesAndSignalsNewPlayers(t *testing.T) {
	players := newMemPlayerRepo()
	reconciler := NewStatsReconciler(players, nil)

	outcome, err := reconciler.Apply(context.Background(), reconcilerReport())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if len(outcome.NewPlayers) != 3 {
		t.Fatalf("expected 3 new players, got %v", outcome.NewPlayers)
	}
	if _, ok := players.records["Extras"]; ok {
		t.Fatal("extras placeholder row must never reach player aggregates")
	}

	sharma := players.records["R Sharma"]
	wantBatting := playerstats.BattingTotals{Matches: 1, Runs: 50, Balls: 40, Fours: 4, Sixes: 2, NotOuts: 1, StrikeRate: 125.0}
	if sharma.Batting != wantBatting {
		t.Fatalf("R Sharma batting = %+v, want %+v", sharma.Batting, wantBatting)
	}

	bumrah := players.records["J Bumrah"]
	if bumrah.Bowling.Wickets != 2 || bumrah.Bowling.Economy != 5.0 {
		t.Fatalf("J Bumrah bowling = %+v", bumrah.Bowling)
	}
}

func TestApplyThenRevertRestoresPriorState(t *testing.T) {
	players := newMemPlayerRepo()
	seeded := playerstats.Record{Name: "V Kohli"}
	seeded.ApplyBatting(playerstats.BattingDelta{Matches: 3, Runs: 120, Balls: 100, Fours: 11, Sixes: 2})
	if err := players.Upsert(context.Background(), seeded); err != nil {
		t.Fatalf("seed: %v", err)
	}

	reconciler := NewStatsReconciler(players, nil)
	report := reconcilerReport()

	if _, err := reconciler.Apply(context.Background(), report); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if _, err := reconciler.Revert(context.Background(), report); err != nil {
		t.Fatalf("Revert: %v", err)
	}

	kohli := players.records["V Kohli"]
	if kohli != seeded {
		t.Fatalf("revert must restore the exact prior record:\n got %+v\nwant %+v", kohli, seeded)
	}

	sharma := players.records["R Sharma"]
	if !sharma.IsZero() {
		t.Fatalf("player created during apply must return to zero after revert: %+v", sharma)
	}
}

func TestRevertMissingPlayerWarnsAndContinues(t *testing.T) {
	players := newMemPlayerRepo()
	reconciler := NewStatsReconciler(players, nil)

	outcome, err := reconciler.Revert(context.Background(), reconcilerReport())
	if err != nil {
		t.Fatalf("Revert: %v", err)
	}

	if len(outcome.Warnings) != 3 {
		t.Fatalf("expected a warning per missing player, got %v", outcome.Warnings)
	}
	if len(players.records) != 0 {
		t.Fatalf("revert must not create records, got %d", len(players.records))
	}
}

func TestBattingDeltaNotOutVariants(t *testing.T) {
	cases := []struct {
		outDesc string
		notOuts int
	}{
		{"not out", 1},
		{"Not Out", 1},
		{"not-out", 1},
		{"notout", 1},
		{"c A Rahane b J Bumrah", 0},
		{"run out", 0},
	}

	for _, tc := range cases {
		delta := battingDelta(match.BattingLine{Name: "X", OutDesc: tc.outDesc})
		if delta.NotOuts != tc.notOuts {
			t.Fatalf("outDesc %q: NotOuts = %d, want %d", tc.outDesc, delta.NotOuts, tc.notOuts)
		}
	}
}
