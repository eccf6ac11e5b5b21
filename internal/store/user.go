package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/grobuddy/internal/database"
	"github.com/dukerupert/grobuddy/internal/model"
	"github.com/dukerupert/grobuddy/internal/sqlerr"
)

type UserStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db, now: time.Now}
}

func scanUser(s scanner) (*model.User, error) {
	var u model.User
	err := s.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

const userCols = `id, username, password_hash, created_at, updated_at`

// Create inserts a user. A taken username yields ErrConflict.
func (s *UserStore) Create(ctx context.Context, username, passwordHash string) (*model.User, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash) VALUES (?, ?)`,
		username, passwordHash,
	)
	if err != nil {
		if sqlerr.IsUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *UserStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return getUser(ctx, s.db, `WHERE id = ?`, id)
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return getUser(ctx, s.db, `WHERE username = ?`, username)
}

func getUser(ctx context.Context, q queryer, where string, arg any) (*model.User, error) {
	row := q.QueryRowContext(ctx, `SELECT `+userCols+` FROM users `+where, arg)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// ownedAccount loads the account by username and checks the actor is that
// account.
func ownedAccount(ctx context.Context, q queryer, actorID int64, username string) (*model.User, error) {
	u, err := getUser(ctx, q, `WHERE username = ?`, username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	if u.ID != actorID {
		return nil, ErrForbidden
	}
	return u, nil
}

// Update changes the username and/or password hash of the account named
// username. Nil arguments are left unchanged. A new password hash also
// revokes every session of the account in the same transaction.
func (s *UserStore) Update(ctx context.Context, actorID int64, username string, newUsername, newPasswordHash *string) (*model.User, error) {
	var updated *model.User
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		u, err := ownedAccount(ctx, tx, actorID, username)
		if err != nil {
			return err
		}

		if newUsername != nil {
			u.Username = *newUsername
		}
		if newPasswordHash != nil {
			u.PasswordHash = *newPasswordHash
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE users SET username = ?, password_hash = ?, updated_at = ? WHERE id = ?`,
			u.Username, u.PasswordHash, s.now().UTC(), u.ID,
		)
		if err != nil {
			if sqlerr.IsUniqueViolation(err) {
				return ErrConflict
			}
			return fmt.Errorf("update user: %w", err)
		}

		if newPasswordHash != nil {
			if err := deleteUserSessions(ctx, tx, u.ID); err != nil {
				return err
			}
		}

		updated, err = getUser(ctx, tx, `WHERE id = ?`, u.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the account named username. Items and sessions go with it.
func (s *UserStore) Delete(ctx context.Context, actorID int64, username string) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		u, err := ownedAccount(ctx, tx, actorID, username)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, u.ID); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
}
