package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/stemsi/siakad-backend/internal/model"
)

const userColumns = `id, nim, name, email, password_hash, study_program, role, advisor_id, created_at, updated_at`

type pgUserRepository struct {
	q Querier
}

func scanUser(row pgx.Row, u *model.User) error {
	return row.Scan(&u.ID, &u.NIM, &u.Name, &u.Email, &u.PasswordHash, &u.StudyProgram,
		&u.Role, &u.AdvisorID, &u.CreatedAt, &u.UpdatedAt)
}

func (r *pgUserRepository) getOne(ctx context.Context, where string, arg any) (*model.User, error) {
	u := &model.User{}
	err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+where+` = $1`, arg), u)
	if err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

// GetByID retrieves a user by ID.
func (r *pgUserRepository) GetByID(ctx context.Context, id int) (*model.User, error) {
	return r.getOne(ctx, "id", id)
}

// GetByNIM retrieves a user by their unique NIM.
func (r *pgUserRepository) GetByNIM(ctx context.Context, nim string) (*model.User, error) {
	return r.getOne(ctx, "nim", nim)
}

// GetByEmail retrieves a user by their unique email.
func (r *pgUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, "email", email)
}

// List retrieves users matching f along with the unpaginated total.
func (r *pgUserRepository) List(ctx context.Context, f UserFilter) ([]model.User, int, error) {
	var c conditions
	if f.Role != "" {
		c.add("role = $%d", f.Role)
	}
	if f.AdvisorID > 0 {
		c.add("advisor_id = $%d", f.AdvisorID)
	}
	if f.Search != "" {
		c.add("(name ILIKE $%[1]d OR nim ILIKE $%[1]d OR email ILIKE $%[1]d)", "%"+f.Search+"%")
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM users`+c.where(), c.args...).Scan(&total); err != nil {
		return nil, 0, mapErr(err)
	}

	limit, args := c.page(f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, `SELECT `+userColumns+` FROM users`+c.where()+` ORDER BY name, id`+limit, args...)
	users, err := collect(rows, err, scanUser)
	return users, total, err
}

// CountByRole counts accounts holding role. The rows are locked so a
// count taken inside WithTx stays valid until commit.
func (r *pgUserRepository) CountByRole(ctx context.Context, role model.Role) (int, error) {
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM (SELECT id FROM users WHERE role = $1 FOR UPDATE) locked`, role,
	).Scan(&n)
	return n, mapErr(err)
}

// Create inserts a new user.
func (r *pgUserRepository) Create(ctx context.Context, u *model.User) error {
	err := r.q.QueryRow(ctx,
		`INSERT INTO users (nim, name, email, password_hash, study_program, role, advisor_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		u.NIM, u.Name, u.Email, u.PasswordHash, u.StudyProgram, u.Role, u.AdvisorID,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	return mapErr(err)
}

// Update replaces every mutable column of a user, password hash included.
func (r *pgUserRepository) Update(ctx context.Context, u *model.User) error {
	err := r.q.QueryRow(ctx,
		`UPDATE users SET name = $1, email = $2, password_hash = $3, study_program = $4, role = $5,
		        advisor_id = $6, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $7
		 RETURNING updated_at`,
		u.Name, u.Email, u.PasswordHash, u.StudyProgram, u.Role, u.AdvisorID, u.ID,
	).Scan(&u.UpdatedAt)
	return mapErr(err)
}

// Delete removes a user by ID.
func (r *pgUserRepository) Delete(ctx context.Context, id int) error {
	return affected(r.q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id))
}
