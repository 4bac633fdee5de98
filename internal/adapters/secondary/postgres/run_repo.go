package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vtds-application-vshasta/internal/core/domain"
	"vtds-application-vshasta/internal/core/ports/output"
)

type runRepo struct {
	pool *pgxpool.Pool
}

func NewRunRepository(pool *pgxpool.Pool) ports.RunRepository {
	return &runRepo{pool: pool}
}

func (r *runRepo) Create(ctx context.Context, run *domain.DeploymentRun) error {
	query := `
		INSERT INTO deployment_run (id, phase, status, error, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		run.ID, string(run.Phase), string(run.Status), run.Error,
		run.StartedAt, run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("create deployment run: %w", err)
	}
	return nil
}

func (r *runRepo) Finish(ctx context.Context, id uuid.UUID, status domain.RunStatus, errText string) error {
	query := `
		UPDATE deployment_run
		SET status = $1, error = $2, finished_at = now()
		WHERE id = $3
	`
	tag, err := r.pool.Exec(ctx, query, string(status), errText, id)
	if err != nil {
		return fmt.Errorf("finish deployment run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRunNotFound
	}
	return nil
}

func (r *runRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.DeploymentRun, error) {
	query := `
		SELECT id, phase, status, error, started_at, finished_at
		FROM deployment_run
		WHERE id = $1
	`
	run, err := scanRun(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRunNotFound
		}
		return nil, fmt.Errorf("get deployment run by id: %w", err)
	}
	return run, nil
}

func (r *runRepo) List(ctx context.Context, limit, offset int) ([]*domain.DeploymentRun, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM deployment_run`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count deployment runs: %w", err)
	}

	query := `
		SELECT id, phase, status, error, started_at, finished_at
		FROM deployment_run
		ORDER BY started_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list deployment runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.DeploymentRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan deployment run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list deployment runs: %w", err)
	}
	return runs, total, nil
}

func scanRun(row pgx.Row) (*domain.DeploymentRun, error) {
	var run domain.DeploymentRun
	var phase, status string
	if err := row.Scan(&run.ID, &phase, &status, &run.Error, &run.StartedAt, &run.FinishedAt); err != nil {
		return nil, err
	}
	run.Phase = domain.RunPhase(phase)
	run.Status = domain.RunStatus(status)
	return &run, nil
}
