package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mbolis/quick-form/model"
)

const formColumns = `
	id, owner_id, version, title,
	external_base_id, external_table_id,
	questions, active, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanForm(row scanner) (f model.Form, err error) {
	var questions string
	err = row.Scan(
		&f.ID, &f.OwnerID, &f.Version, &f.Title,
		&f.ExternalBaseID, &f.ExternalTableID,
		&questions, &f.Active, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return
	}
	if err = json.Unmarshal([]byte(questions), &f.Questions); err != nil {
		err = fmt.Errorf("parse questions of form %s: %w", f.ID, err)
	}
	return
}

func (s *Store) CreateForm(ctx context.Context, f model.Form) (model.Form, error) {
	questions, err := json.Marshal(f.Questions)
	if err != nil {
		return model.Form{}, fmt.Errorf("encode questions: %w", err)
	}

	now := time.Now().UTC()
	f.ID = uuid.NewString()
	f.Version = 1
	f.CreatedAt = now
	f.UpdatedAt = now

	_, err = s.ExecContext(ctx, `
		INSERT INTO form (`+formColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.OwnerID, f.Version, f.Title,
		f.ExternalBaseID, f.ExternalTableID,
		string(questions), f.Active, f.CreatedAt, f.UpdatedAt,
	)
	if err != nil {
		return model.Form{}, fmt.Errorf("insert form: %w", err)
	}
	return f, nil
}

func (s *Store) FormByID(ctx context.Context, id string) (model.Form, error) {
	f, err := scanForm(s.QueryRowContext(ctx, `
		SELECT `+formColumns+` FROM form WHERE id = ?`,
		id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return f, ErrNotFound
	}
	return f, err
}

func (s *Store) FormsByOwner(ctx context.Context, ownerID string) ([]model.Form, error) {
	return s.queryForms(ctx, `
		SELECT `+formColumns+` FROM form
		WHERE owner_id = ?
		ORDER BY created_at DESC`,
		ownerID,
	)
}

// FormsByTable returns every form bound to the external table.
func (s *Store) FormsByTable(ctx context.Context, baseID, tableID string) ([]model.Form, error) {
	return s.queryForms(ctx, `
		SELECT `+formColumns+` FROM form
		WHERE external_base_id = ?
			AND external_table_id = ?`,
		baseID, tableID,
	)
}

func (s *Store) queryForms(ctx context.Context, query string, args ...any) ([]model.Form, error) {
	rows, err := s.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	forms := []model.Form{}
	for rows.Next() {
		f, err := scanForm(rows)
		if err != nil {
			return nil, err
		}
		forms = append(forms, f)
	}
	return forms, rows.Err()
}

// UpdateForm replaces the title, questions and active flag of a form.
// f.Version must match the stored version, otherwise ErrConflict is
// returned. The external base and table are never changed.
func (s *Store) UpdateForm(ctx context.Context, f model.Form) (model.Form, error) {
	questions, err := json.Marshal(f.Questions)
	if err != nil {
		return model.Form{}, fmt.Errorf("encode questions: %w", err)
	}

	res, err := s.ExecContext(ctx, `
		UPDATE form
		SET
			title = ?,
			questions = ?,
			active = ?,
			updated_at = ?,
			version = version+1
		WHERE id = ?
			AND version = ?`,
		f.Title,
		string(questions),
		f.Active,
		time.Now().UTC(),
		f.ID,
		f.Version,
	)
	if err != nil {
		return model.Form{}, fmt.Errorf("update form: %w", err)
	}
	// optimistic lock
	if err = expectRow(res); errors.Is(err, ErrNotFound) {
		if _, err := s.FormByID(ctx, f.ID); err != nil {
			return model.Form{}, err
		}
		return model.Form{}, ErrConflict
	} else if err != nil {
		return model.Form{}, err
	}

	return s.FormByID(ctx, f.ID)
}

// DeleteForm removes the form and, by cascade, its responses.
func (s *Store) DeleteForm(ctx context.Context, id string) error {
	res, err := s.ExecContext(ctx, `DELETE FROM form WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectRow(res)
}
