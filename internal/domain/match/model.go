package match

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/wcckavaliers/scorebook/internal/platform/names"
)

// notOutPattern mirrors how scorecard PDFs spell an undismissed batsman:
// "not out", "not-out", "notout".
var notOutPattern = regexp.MustCompile(`(?i)not[\s-]?out`)

// Report is one ingested match scorecard. Immutable once persisted except by
// the whole-document revert delete; only the most recently created report may
// be reverted.
type Report struct {
	ID          string    `json:"id"`
	MatchInfo   Info      `json:"matchInfo" validate:"required"`
	Innings     []Innings `json:"innings" validate:"required,min=1,dive"`
	ContentHash string    `json:"contentHash,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

type Info struct {
	Teams         []string `json:"teams" validate:"len=2,dive,required"`
	Date          string   `json:"date"`
	Venue         string   `json:"venue"`
	Format        string   `json:"format"`
	Toss          string   `json:"toss"`
	Result        string   `json:"result" validate:"required"`
	PlayerOfMatch string   `json:"playerOfMatch"`
}

type Innings struct {
	Team          string        `json:"team" validate:"required"`
	Total         string        `json:"total"`
	Overs         string        `json:"overs"`
	RunRate       float64       `json:"runRate"`
	Extras        string        `json:"extras"`
	Batsmen       []BattingLine `json:"batsmen" validate:"dive"`
	Bowlers       []BowlingLine `json:"bowlers" validate:"dive"`
	FallOfWickets []string      `json:"fallOfWickets"`
}

type BattingLine struct {
	Name    string  `json:"name" validate:"required"`
	Runs    int     `json:"runs" validate:"gte=0"`
	Balls   int     `json:"balls" validate:"gte=0"`
	Fours   int     `json:"fours" validate:"gte=0"`
	Sixes   int     `json:"sixes" validate:"gte=0"`
	SR      float64 `json:"sr"`
	OutDesc string  `json:"outDesc"`
}

type BowlingLine struct {
	Name    string  `json:"name" validate:"required"`
	Overs   float64 `json:"overs" validate:"gte=0"`
	Maidens int     `json:"maidens" validate:"gte=0"`
	Runs    int     `json:"runs" validate:"gte=0"`
	Wickets int     `json:"wickets" validate:"gte=0"`
	Eco     float64 `json:"eco"`
	Dots    int     `json:"dots" validate:"gte=0"`
	Fours   int     `json:"fours" validate:"gte=0"`
	Sixes   int     `json:"sixes" validate:"gte=0"`
	Wd      int     `json:"wd" validate:"gte=0"`
	Nb      int     `json:"nb" validate:"gte=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the structural shape an extraction must satisfy before any
// aggregate is touched.
func (r Report) Validate() error {
	return validate.Struct(r)
}

// IsNotOut reports whether a batting line left the batsman undismissed. A
// not-out line contributes to the NOs counter and credits no bowler wicket.
func (b BattingLine) IsNotOut() bool {
	return notOutPattern.MatchString(b.OutDesc)
}

// IsExtrasPlaceholder reports whether a batting line is the "Extras" summary
// row some extractions emit among real batsmen. Placeholder rows never reach
// player aggregates.
func (b BattingLine) IsExtrasPlaceholder() bool {
	return strings.EqualFold(strings.TrimSpace(b.Name), "extras")
}

// NormalizeNames canonicalizes every team and player name in place.
func (r *Report) NormalizeNames() {
	for i := range r.MatchInfo.Teams {
		r.MatchInfo.Teams[i] = names.Normalize(r.MatchInfo.Teams[i])
	}
	r.MatchInfo.PlayerOfMatch = names.Normalize(r.MatchInfo.PlayerOfMatch)
	for i := range r.Innings {
		inn := &r.Innings[i]
		inn.Team = names.Normalize(inn.Team)
		for j := range inn.Batsmen {
			inn.Batsmen[j].Name = names.Normalize(inn.Batsmen[j].Name)
		}
		for j := range inn.Bowlers {
			inn.Bowlers[j].Name = names.Normalize(inn.Bowlers[j].Name)
		}
	}
}

// HashContent derives the dedupe key for a raw report text. Two uploads of
// the same report map to the same hash regardless of surrounding whitespace.
func HashContent(rawText string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(rawText)))
	return hex.EncodeToString(sum[:])
}
