package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/imovelhub/unit-sales/internal/model"
)

// UserRepo provides data access to the users and builder_profiles tables.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo returns a new UserRepo bound to the provided database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, name, email, password_hash, role, created_at, updated_at`

func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create hashes the password with bcrypt and inserts the user, returning
// the new id. Duplicate emails map to ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, name, email, password, role string, bcryptCost int) (uint64, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, role) VALUES (?, ?, ?, ?)`,
		name, email, string(hash), role)
	if err != nil {
		// 1062 is MySQL's duplicate-entry error on the unique email index.
		if strings.Contains(err.Error(), "1062") || strings.Contains(err.Error(), "Duplicate entry") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by email for login.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

// GetByID fetches a user by primary key.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetByIDTx is GetByID inside a transaction; the signature flow reads the
// client's registered name and email under the same transaction that
// mutates the contract.
func (r *UserRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.User, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// BuilderProfileByUserID fetches the builder profile owned by a user.
func (r *UserRepo) BuilderProfileByUserID(ctx context.Context, userID uint64) (*model.BuilderProfile, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, company_name, cnpj, created_at FROM builder_profiles WHERE user_id = ?`,
		userID)
	var bp model.BuilderProfile
	err := row.Scan(&bp.ID, &bp.UserID, &bp.CompanyName, &bp.CNPJ, &bp.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBuilderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &bp, nil
}
