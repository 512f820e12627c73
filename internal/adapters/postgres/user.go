package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/wisbric/waypoint/internal/db"
	"github.com/wisbric/waypoint/internal/domain"
)

// UserStore implements ports.UserRepository over the users table.
type UserStore struct {
	dbtx db.DBTX
}

func NewUserStore(dbtx db.DBTX) *UserStore {
	return &UserStore{dbtx: dbtx}
}

func scanUserRow(row interface {
	Scan(dest ...any) error
}) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.DisplayName, &u.PasswordHash)
	return u, err
}

func (s *UserStore) Get(ctx context.Context, id uuid.UUID) (domain.User, error) {
	row := s.dbtx.QueryRow(ctx, `
		SELECT id, username, display_name, password_hash
		FROM users
		WHERE id = $1
	`, id)
	u, err := scanUserRow(row)
	if err != nil {
		return domain.User{}, mapError(err, "user not found")
	}
	return u, nil
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	row := s.dbtx.QueryRow(ctx, `
		SELECT id, username, display_name, password_hash
		FROM users
		WHERE username = $1
	`, username)
	u, err := scanUserRow(row)
	if err != nil {
		return domain.User{}, mapError(err, "user not found")
	}
	return u, nil
}

func (s *UserStore) List(ctx context.Context) ([]domain.User, error) {
	rows, err := s.dbtx.Query(ctx, `
		SELECT id, username, display_name, password_hash
		FROM users
		ORDER BY username ASC
	`)
	if err != nil {
		return nil, mapError(err, "")
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUserRow(rows)
		if err != nil {
			return nil, mapError(err, "")
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "")
	}
	return users, nil
}
