package postgres

import (
	"context"
	"fmt"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/wcckavaliers/scorebook/internal/domain/match"
)

// MatchRepository stores each report as a JSONB document plus the columns
// ingestion queries on: content hash for dedupe and creation time for the
// latest-report lookup.
type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

type matchReportRow struct {
	ID          string `db:"id"`
	ContentHash string `db:"content_hash"`
	Payload     []byte `db:"payload"`
}

func (r *MatchRepository) Insert(ctx context.Context, report match.Report) error {
	payload, err := sonic.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report %q: %w", report.ID, err)
	}

	const query = `INSERT INTO match_reports (id, content_hash, payload, created_at)
VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, query, report.ID, report.ContentHash, payload, report.CreatedAt); err != nil {
		return fmt.Errorf("insert match report %q: %w", report.ID, err)
	}

	return nil
}

func (r *MatchRepository) Update(ctx context.Context, report match.Report) error {
	payload, err := sonic.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report %q: %w", report.ID, err)
	}

	const query = `UPDATE match_reports SET payload = $2 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, report.ID, payload)
	if err != nil {
		return fmt.Errorf("update match report %q: %w", report.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update match report %q: rows affected: %w", report.ID, err)
	}
	if affected == 0 {
		return fmt.Errorf("match report %q not found", report.ID)
	}

	return nil
}

func (r *MatchRepository) Latest(ctx context.Context) (match.Report, bool, error) {
	const query = `SELECT id, content_hash, payload FROM match_reports
ORDER BY created_at DESC, id DESC LIMIT 1`

	var row matchReportRow
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		if isNotFound(err) {
			return match.Report{}, false, nil
		}
		return match.Report{}, false, fmt.Errorf("load latest match report: %w", err)
	}

	report, err := decodeReportRow(row)
	if err != nil {
		return match.Report{}, false, err
	}

	return report, true, nil
}

func (r *MatchRepository) List(ctx context.Context) ([]match.Report, error) {
	const query = `SELECT id, content_hash, payload FROM match_reports
ORDER BY created_at ASC, id ASC`

	var rows []matchReportRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list match reports: %w", err)
	}

	out := make([]match.Report, 0, len(rows))
	for _, row := range rows {
		report, err := decodeReportRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, report)
	}

	return out, nil
}

func (r *MatchRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM match_reports WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete match report %q: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete match report %q: rows affected: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("match report %q not found", id)
	}

	return nil
}

func (r *MatchRepository) ExistsByContentHash(ctx context.Context, hash string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM match_reports WHERE content_hash = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, hash); err != nil {
		return false, fmt.Errorf("check content hash: %w", err)
	}

	return exists, nil
}

func decodeReportRow(row matchReportRow) (match.Report, error) {
	var report match.Report
	if err := sonic.Unmarshal(row.Payload, &report); err != nil {
		return match.Report{}, fmt.Errorf("decode match report %q: %w", row.ID, err)
	}
	report.ID = row.ID
	report.ContentHash = row.ContentHash

	return report, nil
}
