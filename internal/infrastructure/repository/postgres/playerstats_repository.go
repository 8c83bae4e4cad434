package postgres

import (
	"context"
	"fmt"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/wcckavaliers/scorebook/internal/domain/playerstats"
)

// PlayerStatsRepository keys one JSONB aggregate document per normalized
// player name.
type PlayerStatsRepository struct {
	db *sqlx.DB
}

func NewPlayerStatsRepository(db *sqlx.DB) *PlayerStatsRepository {
	return &PlayerStatsRepository{db: db}
}

type playerStatsRow struct {
	Name    string `db:"name"`
	Payload []byte `db:"payload"`
}

func (r *PlayerStatsRepository) GetByName(ctx context.Context, name string) (playerstats.Record, bool, error) {
	const query = `SELECT name, payload FROM player_stats WHERE name = $1`

	var row playerStatsRow
	if err := r.db.GetContext(ctx, &row, query, name); err != nil {
		if isNotFound(err) {
			return playerstats.Record{}, false, nil
		}
		return playerstats.Record{}, false, fmt.Errorf("load player %q: %w", name, err)
	}

	record, err := decodeStatsRow(row)
	if err != nil {
		return playerstats.Record{}, false, err
	}

	return record, true, nil
}

func (r *PlayerStatsRepository) Upsert(ctx context.Context, record playerstats.Record) error {
	payload, err := sonic.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode player %q: %w", record.Name, err)
	}

	const query = `INSERT INTO player_stats (name, payload, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload, updated_at = NOW()`
	if _, err := r.db.ExecContext(ctx, query, record.Name, payload); err != nil {
		return fmt.Errorf("upsert player %q: %w", record.Name, err)
	}

	return nil
}

func (r *PlayerStatsRepository) List(ctx context.Context) ([]playerstats.Record, error) {
	const query = `SELECT name, payload FROM player_stats ORDER BY name ASC`

	var rows []playerStatsRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list player stats: %w", err)
	}

	out := make([]playerstats.Record, 0, len(rows))
	for _, row := range rows {
		record, err := decodeStatsRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}

	return out, nil
}

func (r *PlayerStatsRepository) Rename(ctx context.Context, oldName, newName string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rename tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var row playerStatsRow
	if err := tx.GetContext(ctx, &row, `SELECT name, payload FROM player_stats WHERE name = $1 FOR UPDATE`, oldName); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("player %q not found", oldName)
		}
		return fmt.Errorf("load player %q: %w", oldName, err)
	}

	record, err := decodeStatsRow(row)
	if err != nil {
		return err
	}
	record.Name = newName

	payload, err := sonic.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode player %q: %w", newName, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM player_stats WHERE name = $1`, oldName); err != nil {
		return fmt.Errorf("delete player %q: %w", oldName, err)
	}
	const insert = `INSERT INTO player_stats (name, payload, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload, updated_at = NOW()`
	if _, err := tx.ExecContext(ctx, insert, newName, payload); err != nil {
		return fmt.Errorf("insert renamed player %q: %w", newName, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rename tx: %w", err)
	}

	return nil
}

func decodeStatsRow(row playerStatsRow) (playerstats.Record, error) {
	var record playerstats.Record
	if err := sonic.Unmarshal(row.Payload, &record); err != nil {
		return playerstats.Record{}, fmt.Errorf("decode player %q: %w", row.Name, err)
	}
	record.Name = row.Name

	return record, nil
}
