package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mbolis/quick-form/model"
)

func (s *Store) CreateOwner(ctx context.Context, username, password string) (model.Owner, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.Owner{}, fmt.Errorf("hash password: %w", err)
	}

	owner := model.Owner{ID: uuid.NewString(), Username: username}
	_, err = s.ExecContext(ctx, `
		INSERT INTO owner (id, username, password_hash) VALUES (?, ?, ?)`,
		owner.ID, owner.Username, hash,
	)
	if err != nil {
		return model.Owner{}, fmt.Errorf("insert owner: %w", err)
	}
	return owner, nil
}

// EnsureOwner creates the owner unless one with the same username exists.
func (s *Store) EnsureOwner(ctx context.Context, username, password string) (model.Owner, error) {
	owner, err := s.OwnerByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return s.CreateOwner(ctx, username, password)
	}
	return owner, err
}

func (s *Store) OwnerByUsername(ctx context.Context, username string) (owner model.Owner, err error) {
	err = s.QueryRowContext(ctx, `
		SELECT id, username, external_token FROM owner WHERE username = ?`,
		username,
	).Scan(&owner.ID, &owner.Username, &owner.ExternalToken)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrNotFound
	}
	return
}

func (s *Store) OwnerByID(ctx context.Context, id string) (owner model.Owner, err error) {
	err = s.QueryRowContext(ctx, `
		SELECT id, username, external_token FROM owner WHERE id = ?`,
		id,
	).Scan(&owner.ID, &owner.Username, &owner.ExternalToken)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrNotFound
	}
	return
}

// CheckPassword returns nil when password matches the owner's hash.
func (s *Store) CheckPassword(ctx context.Context, username, password string) error {
	var hash []byte
	err := s.QueryRowContext(ctx,
		"SELECT password_hash FROM owner WHERE username = ?", username,
	).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(password))
}

func (s *Store) SetExternalToken(ctx context.Context, ownerID, token string) error {
	res, err := s.ExecContext(ctx, `
		UPDATE owner SET external_token = ? WHERE id = ?`,
		token, ownerID,
	)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func (s *Store) StoreTokenID(ctx context.Context, username, tokenID, refreshTokenID string, expiration time.Time) error {
	_, err := s.ExecContext(ctx,
		"INSERT INTO token (username, token_id, refresh_token_id, expiration) VALUES (?, ?, ?, ?)",
		username,
		tokenID,
		refreshTokenID,
		expiration.UTC(),
	)
	return err
}

// ConsumeTokenID deletes a stored token pair and returns its expiration.
func (s *Store) ConsumeTokenID(ctx context.Context, username, tokenID, refreshTokenID string) (expiration time.Time, err error) {
	err = s.QueryRowContext(ctx, `
		DELETE FROM token
		WHERE username = ?
			AND token_id = ?
			AND refresh_token_id = ?
		RETURNING expiration`,
		username,
		tokenID,
		refreshTokenID,
	).Scan(&expiration)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrNotFound
	}
	return
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n < 1 {
		return ErrNotFound
	}
	return nil
}
