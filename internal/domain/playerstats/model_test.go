package playerstats

import "testing"

func TestApplyBattingRecomputesStrikeRate(t *testing.T) {
	t.Parallel()

	var r Record
	r.ApplyBatting(BattingDelta{Matches: 1, Runs: 50, Balls: 40, Fours: 4, Sixes: 2, NotOuts: 1})

	if r.Batting.StrikeRate != 125.0 {
		t.Fatalf("strike rate = %v, want 125.0", r.Batting.StrikeRate)
	}
	if r.Batting.NotOuts != 1 {
		t.Fatalf("not outs = %d, want 1", r.Batting.NotOuts)
	}
}

func TestApplyBowlingRecomputesEconomy(t *testing.T) {
	t.Parallel()

	var r Record
	r.ApplyBowling(BowlingDelta{Matches: 1, Overs: 4, Runs: 20, Wickets: 1})

	if r.Bowling.Economy != 5.0 {
		t.Fatalf("economy = %v, want 5.0", r.Bowling.Economy)
	}
}

func TestDerivedFieldsZeroOnZeroDenominator(t *testing.T) {
	t.Parallel()

	var r Record
	r.ApplyBatting(BattingDelta{Matches: 1})
	r.ApplyBowling(BowlingDelta{Matches: 1, Runs: 3})

	if r.Batting.StrikeRate != 0 {
		t.Fatalf("strike rate = %v, want 0 when balls=0", r.Batting.StrikeRate)
	}
	if r.Bowling.Economy != 0 {
		t.Fatalf("economy = %v, want 0 when overs=0", r.Bowling.Economy)
	}
}

func TestNegatedDeltaRestoresRecordExactly(t *testing.T) {
	t.Parallel()

	r := Record{Name: "R Sharma"}
	r.ApplyBatting(BattingDelta{Matches: 3, Runs: 121, Balls: 97, Fours: 11, Sixes: 4, NotOuts: 1})
	r.ApplyBowling(BowlingDelta{Matches: 2, Overs: 7.5, Runs: 44, Wickets: 3, Dots: 18, Wides: 2})
	before := r

	bat := BattingDelta{Matches: 1, Runs: 37, Balls: 25, Fours: 5, Sixes: 1}
	bowl := BowlingDelta{Matches: 1, Overs: 4, Runs: 31, Wickets: 2, Maidens: 1, Dots: 9, NoBalls: 1}

	r.ApplyBatting(bat)
	r.ApplyBowling(bowl)
	r.ApplyBatting(bat.Negate())
	r.ApplyBowling(bowl.Negate())

	if r != before {
		t.Fatalf("apply+negate is not the identity:\n before %+v\n after  %+v", before, r)
	}
}

func TestDerivedRounding(t *testing.T) {
	t.Parallel()

	var r Record
	r.ApplyBatting(BattingDelta{Runs: 10, Balls: 3})
	// 10/3*100 = 333.333... -> 333.33
	if r.Batting.StrikeRate != 333.33 {
		t.Fatalf("strike rate = %v, want 333.33", r.Batting.StrikeRate)
	}

	r.ApplyBowling(BowlingDelta{Overs: 3, Runs: 10})
	// 10/3 = 3.333... -> 3.33
	if r.Bowling.Economy != 3.33 {
		t.Fatalf("economy = %v, want 3.33", r.Bowling.Economy)
	}
}
