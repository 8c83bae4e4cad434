package postgres

import (
	"context"
	"database/sql"
	"fmt"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/wcckavaliers/scorebook/internal/domain/standings"
)

// StandingsRepository stores the two team slots as flat columns; the roster
// and the recent-results window are JSONB arrays.
type StandingsRepository struct {
	db *sqlx.DB
}

func NewStandingsRepository(db *sqlx.DB) *StandingsRepository {
	return &StandingsRepository{db: db}
}

type standingsRow struct {
	TeamID          string       `db:"team_id"`
	TeamName        string       `db:"team_name"`
	Captain         string       `db:"captain"`
	CoreTeam        []byte       `db:"core_team"`
	Points          int          `db:"points"`
	Score           []byte       `db:"score"`
	IsRevert        bool         `db:"is_revert"`
	SeriesStartedAt sql.NullTime `db:"series_started_at"`
}

func (r *StandingsRepository) GetBySlot(ctx context.Context, teamID string) (standings.Team, bool, error) {
	const query = `SELECT team_id, team_name, captain, core_team, points, score, is_revert, series_started_at
FROM team_standings WHERE team_id = $1`

	var row standingsRow
	if err := r.db.GetContext(ctx, &row, query, teamID); err != nil {
		if isNotFound(err) {
			return standings.Team{}, false, nil
		}
		return standings.Team{}, false, fmt.Errorf("load team slot %q: %w", teamID, err)
	}

	team, err := decodeStandingsRow(row)
	if err != nil {
		return standings.Team{}, false, err
	}

	return team, true, nil
}

func (r *StandingsRepository) ListSlots(ctx context.Context) ([]standings.Team, error) {
	const query = `SELECT team_id, team_name, captain, core_team, points, score, is_revert, series_started_at
FROM team_standings ORDER BY team_id ASC`

	var rows []standingsRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list team slots: %w", err)
	}

	out := make([]standings.Team, 0, len(rows))
	for _, row := range rows {
		team, err := decodeStandingsRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, team)
	}

	return out, nil
}

func (r *StandingsRepository) Upsert(ctx context.Context, team standings.Team) error {
	coreTeam, err := sonic.Marshal(orEmpty(team.CoreTeam))
	if err != nil {
		return fmt.Errorf("encode roster for slot %q: %w", team.TeamID, err)
	}
	score, err := sonic.Marshal(orEmpty(team.Score))
	if err != nil {
		return fmt.Errorf("encode score window for slot %q: %w", team.TeamID, err)
	}

	const query = `INSERT INTO team_standings
(team_id, team_name, captain, core_team, points, score, is_revert, series_started_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
ON CONFLICT (team_id) DO UPDATE SET
    team_name = EXCLUDED.team_name,
    captain = EXCLUDED.captain,
    core_team = EXCLUDED.core_team,
    points = EXCLUDED.points,
    score = EXCLUDED.score,
    is_revert = EXCLUDED.is_revert,
    series_started_at = EXCLUDED.series_started_at,
    updated_at = NOW()`
	_, err = r.db.ExecContext(ctx, query,
		team.TeamID,
		team.TeamName,
		team.Captain,
		coreTeam,
		team.Points,
		score,
		team.IsRevert,
		timeToNullTime(team.SeriesStartedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert team slot %q: %w", team.TeamID, err)
	}

	return nil
}

func decodeStandingsRow(row standingsRow) (standings.Team, error) {
	team := standings.Team{
		TeamID:          row.TeamID,
		TeamName:        row.TeamName,
		Captain:         row.Captain,
		Points:          row.Points,
		IsRevert:        row.IsRevert,
		SeriesStartedAt: nullTimeToTime(row.SeriesStartedAt),
		CoreTeam:        []string{},
		Score:           []string{},
	}

	if len(row.CoreTeam) > 0 {
		if err := sonic.Unmarshal(row.CoreTeam, &team.CoreTeam); err != nil {
			return standings.Team{}, fmt.Errorf("decode roster for slot %q: %w", row.TeamID, err)
		}
	}
	if len(row.Score) > 0 {
		if err := sonic.Unmarshal(row.Score, &team.Score); err != nil {
			return standings.Team{}, fmt.Errorf("decode score window for slot %q: %w", row.TeamID, err)
		}
	}

	return team, nil
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
