package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	domain "github.com/mohammadpnp/crm-import/internal/domain/organization"
)

// ImportErrorRepository stores rejected rows of an import job. Writes use
// COPY since a single job can reject thousands of rows.
type ImportErrorRepository struct {
	pool *pgxpool.Pool
}

func NewImportErrorRepository(pool *pgxpool.Pool) *ImportErrorRepository {
	return &ImportErrorRepository{pool: pool}
}

func (r *ImportErrorRepository) SaveErrors(ctx context.Context, jobID string, errs []domain.ImportError) error {
	if len(errs) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// A retried job replaces what an earlier attempt stored.
	if _, err := tx.Exec(ctx, "DELETE FROM import_job_errors WHERE job_id = $1", jobID); err != nil {
		return fmt.Errorf("clear import errors: %w", err)
	}

	rows := make([][]any, 0, len(errs))
	for _, e := range errs {
		data, err := json.Marshal(e.Data)
		if err != nil {
			return fmt.Errorf("encode row %d data: %w", e.Row, err)
		}
		fieldErrs, err := json.Marshal(e.Errors)
		if err != nil {
			return fmt.Errorf("encode row %d errors: %w", e.Row, err)
		}
		rows = append(rows, []any{jobID, int32(e.Row), data, fieldErrs})
	}

	if _, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"import_job_errors"},
		[]string{"job_id", "row_number", "data", "errors"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return fmt.Errorf("copy import errors: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit import errors: %w", err)
	}
	return nil
}

func (r *ImportErrorRepository) ListErrors(ctx context.Context, jobID string, limit int) ([]domain.ImportError, error) {
	rows, err := r.pool.Query(ctx, `
SELECT row_number, data, errors
FROM import_job_errors
WHERE job_id = $1
ORDER BY row_number ASC, id ASC
LIMIT $2
`, jobID, limit)
	if err != nil {
		return nil, fmt.Errorf("list import errors: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ImportError, 0)
	for rows.Next() {
		var (
			rowNumber int32
			data      []byte
			fieldErrs []byte
		)
		if err := rows.Scan(&rowNumber, &data, &fieldErrs); err != nil {
			return nil, fmt.Errorf("scan import error: %w", err)
		}

		item := domain.ImportError{Row: int(rowNumber)}
		if err := json.Unmarshal(data, &item.Data); err != nil {
			return nil, fmt.Errorf("decode row %d data: %w", rowNumber, err)
		}
		if err := json.Unmarshal(fieldErrs, &item.Errors); err != nil {
			return nil, fmt.Errorf("decode row %d errors: %w", rowNumber, err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list import errors: %w", err)
	}

	return out, nil
}
