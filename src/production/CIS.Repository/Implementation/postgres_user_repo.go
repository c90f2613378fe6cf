package implementation

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	cismodels "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Models"
	auth_models "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Models/auth"
)

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

const userColumns = `user_id, name, username, email, password, role, active, last_connection, created_at, updated_at`

func (r *PostgresUserRepository) Create(ctx context.Context, user *auth_models.User) (*auth_models.User, error) {
	if user.UserID == "" {
		user.UserID = uuid.New().String()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query, user.UserID, user.Name, user.Username, user.Email,
		user.Password, user.Role, user.Active, user.LastConnection, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, userID string) (*auth_models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, userID))
}

func (r *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (*auth_models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(username) = LOWER($1)`
	return r.scanOne(r.db.QueryRowContext(ctx, query, username))
}

func (r *PostgresUserRepository) Update(ctx context.Context, user *auth_models.User) error {
	user.UpdatedAt = time.Now()

	query := `
		UPDATE users
		SET name = $1, username = $2, email = $3, password = $4, role = $5, active = $6,
		    last_connection = $7, updated_at = $8
		WHERE user_id = $9
	`

	result, err := r.db.ExecContext(ctx, query, user.Name, user.Username, user.Email, user.Password,
		user.Role, user.Active, user.LastConnection, user.UpdatedAt, user.UserID)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return cismodels.ErrNotFound
	}
	return nil
}

func (r *PostgresUserRepository) scanOne(row *sql.Row) (*auth_models.User, error) {
	var user auth_models.User
	err := row.Scan(&user.UserID, &user.Name, &user.Username, &user.Email, &user.Password,
		&user.Role, &user.Active, &user.LastConnection, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, cismodels.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}
