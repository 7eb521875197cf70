package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is implemented by both *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgStore is the PostgreSQL implementation of Store.
type PgStore struct {
	pool *pgxpool.Pool
	q    Querier
	inTx bool
}

// NewPgStore creates a Store backed by the given pool.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool, q: pool}
}

func (s *PgStore) Users() UserRepository             { return &pgUserRepository{q: s.q} }
func (s *PgStore) Courses() CourseRepository         { return &pgCourseRepository{q: s.q} }
func (s *PgStore) Grades() GradeRepository           { return &pgGradeRepository{q: s.q} }
func (s *PgStore) Enrollments() EnrollmentRepository { return &pgEnrollmentRepository{q: s.q} }
func (s *PgStore) Submissions() SubmissionRepository { return &pgSubmissionRepository{q: s.q} }
func (s *PgStore) Letters() LetterRepository         { return &pgLetterRepository{q: s.q} }
func (s *PgStore) Internships() InternshipRepository { return &pgInternshipRepository{q: s.q} }
func (s *PgStore) Theses() ThesisRepository          { return &pgThesisRepository{q: s.q} }
func (s *PgStore) Materials() MaterialRepository     { return &pgMaterialRepository{q: s.q} }
func (s *PgStore) Videos() VideoRepository           { return &pgVideoRepository{q: s.q} }
func (s *PgStore) Forum() ForumRepository            { return &pgForumRepository{q: s.q} }
func (s *PgStore) Schedules() ScheduleRepository     { return &pgScheduleRepository{q: s.q} }
func (s *PgStore) Settings() SettingRepository       { return &pgSettingRepository{q: s.q} }

// WithTx executes fn within a transaction.
// The transaction is committed if fn returns nil, rolled back otherwise.
func (s *PgStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(&PgStore{pool: s.pool, q: tx, inTx: true}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("tx error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", mapErr(err))
	}
	return nil
}

// mapErr translates driver errors into the package's storage errors.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
		case "23503":
			return fmt.Errorf("%w: %s", ErrReferenced, pgErr.ConstraintName)
		}
	}
	return err
}

// affected turns a zero-row UPDATE/DELETE into ErrNotFound.
func affected(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// conditions accumulates WHERE clauses with positional arguments.
// Each clause format receives its argument index, e.g. "role = $%d".
type conditions struct {
	clauses []string
	args    []any
}

func (c *conditions) add(format string, arg any) {
	c.args = append(c.args, arg)
	c.clauses = append(c.clauses, fmt.Sprintf(format, len(c.args)))
}

func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

// page appends LIMIT/OFFSET placeholders when limit is positive.
func (c *conditions) page(limit, offset int) (string, []any) {
	if limit <= 0 {
		return "", c.args
	}
	n := len(c.args)
	args := append(append([]any{}, c.args...), limit, offset)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", n+1, n+2), args
}

// collect scans every row with scan and closes rows.
func collect[T any](rows pgx.Rows, err error, scan func(pgx.Row, *T) error) ([]T, error) {
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var item T
		if err := scan(rows, &item); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
