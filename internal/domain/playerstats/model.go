package playerstats

import "math"

// Record holds one player's cumulative career counters, keyed by normalized
// name. StrikeRate and Economy are derived: they are recomputed from the
// counters after every mutation and never written independently.
type Record struct {
	Name    string        `json:"name"`
	Batting BattingTotals `json:"batting"`
	Bowling BowlingTotals `json:"bowling"`
}

type BattingTotals struct {
	Matches    int     `json:"matches"`
	Runs       int     `json:"runs"`
	Balls      int     `json:"balls"`
	Fours      int     `json:"fours"`
	Sixes      int     `json:"sixes"`
	NotOuts    int     `json:"NOs"`
	StrikeRate float64 `json:"strikeRate"`
}

type BowlingTotals struct {
	Matches int     `json:"matches"`
	Overs   float64 `json:"overs"`
	Runs    int     `json:"runs"`
	Wickets int     `json:"wickets"`
	Maidens int     `json:"maidens"`
	Dots    int     `json:"dots"`
	Fours   int     `json:"fours"`
	Sixes   int     `json:"sixes"`
	Wides   int     `json:"wd"`
	NoBalls int     `json:"nb"`
	Economy float64 `json:"economy"`
}

// BattingDelta is one match's signed batting contribution. Negating it yields
// the exact inverse, which is what makes reversal byte-exact.
type BattingDelta struct {
	Matches int
	Runs    int
	Balls   int
	Fours   int
	Sixes   int
	NotOuts int
}

type BowlingDelta struct {
	Matches int
	Overs   float64
	Runs    int
	Wickets int
	Maidens int
	Dots    int
	Fours   int
	Sixes   int
	Wides   int
	NoBalls int
}

func (d BattingDelta) Negate() BattingDelta {
	return BattingDelta{
		Matches: -d.Matches,
		Runs:    -d.Runs,
		Balls:   -d.Balls,
		Fours:   -d.Fours,
		Sixes:   -d.Sixes,
		NotOuts: -d.NotOuts,
	}
}

func (d BowlingDelta) Negate() BowlingDelta {
	return BowlingDelta{
		Matches: -d.Matches,
		Overs:   -d.Overs,
		Runs:    -d.Runs,
		Wickets: -d.Wickets,
		Maidens: -d.Maidens,
		Dots:    -d.Dots,
		Fours:   -d.Fours,
		Sixes:   -d.Sixes,
		Wides:   -d.Wides,
		NoBalls: -d.NoBalls,
	}
}

// ApplyBatting folds a signed delta into the batting counters and recomputes
// the derived strike rate.
func (r *Record) ApplyBatting(d BattingDelta) {
	r.Batting.Matches += d.Matches
	r.Batting.Runs += d.Runs
	r.Batting.Balls += d.Balls
	r.Batting.Fours += d.Fours
	r.Batting.Sixes += d.Sixes
	r.Batting.NotOuts += d.NotOuts
	r.recalcDerived()
}

// ApplyBowling folds a signed delta into the bowling counters and recomputes
// the derived economy.
func (r *Record) ApplyBowling(d BowlingDelta) {
	r.Bowling.Matches += d.Matches
	// Overs carry at most one decimal place; rounding after each fold keeps
	// apply-then-revert exact despite float accumulation.
	r.Bowling.Overs = math.Round((r.Bowling.Overs+d.Overs)*10) / 10
	r.Bowling.Runs += d.Runs
	r.Bowling.Wickets += d.Wickets
	r.Bowling.Maidens += d.Maidens
	r.Bowling.Dots += d.Dots
	r.Bowling.Fours += d.Fours
	r.Bowling.Sixes += d.Sixes
	r.Bowling.Wides += d.Wides
	r.Bowling.NoBalls += d.NoBalls
	r.recalcDerived()
}

func (r *Record) recalcDerived() {
	if r.Batting.Balls > 0 {
		r.Batting.StrikeRate = round2(float64(r.Batting.Runs) / float64(r.Batting.Balls) * 100)
	} else {
		r.Batting.StrikeRate = 0
	}
	if r.Bowling.Overs > 0 {
		r.Bowling.Economy = round2(float64(r.Bowling.Runs) / r.Bowling.Overs)
	} else {
		r.Bowling.Economy = 0
	}
}

// IsZero reports whether every cumulative counter is at its starting value.
func (r Record) IsZero() bool {
	return r.Batting == (BattingTotals{}) && r.Bowling == (BowlingTotals{})
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
