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

const responseColumns = `
	id, form_id, external_record_id, answers,
	created_at, updated_at, deleted_in_external`

func scanResponse(row scanner) (r model.Response, err error) {
	var answers string
	err = row.Scan(
		&r.ID, &r.FormID, &r.ExternalRecordID, &answers,
		&r.CreatedAt, &r.UpdatedAt, &r.DeletedInExternal,
	)
	if err != nil {
		return
	}
	if err = json.Unmarshal([]byte(answers), &r.Answers); err != nil {
		err = fmt.Errorf("parse answers of response %s: %w", r.ID, err)
	}
	return
}

// CreateResponse stores the response of an external record that was just
// written.
func (s *Store) CreateResponse(ctx context.Context, formID, recordID string, answers model.AnswerSet) (model.Response, error) {
	encoded, err := json.Marshal(answers)
	if err != nil {
		return model.Response{}, fmt.Errorf("encode answers: %w", err)
	}

	now := time.Now().UTC()
	r := model.Response{
		ID:               uuid.NewString(),
		FormID:           formID,
		ExternalRecordID: recordID,
		Answers:          answers,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	_, err = s.ExecContext(ctx, `
		INSERT INTO response (`+responseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.FormID, r.ExternalRecordID, string(encoded),
		r.CreatedAt, r.UpdatedAt, r.DeletedInExternal,
	)
	if err != nil {
		return model.Response{}, fmt.Errorf("insert response: %w", err)
	}
	return r, nil
}

func (s *Store) ResponseByID(ctx context.Context, id string) (model.Response, error) {
	r, err := scanResponse(s.QueryRowContext(ctx, `
		SELECT `+responseColumns+` FROM response WHERE id = ?`,
		id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return r, ErrNotFound
	}
	return r, err
}

// ResponsesByForm returns the form's responses, newest first.
func (s *Store) ResponsesByForm(ctx context.Context, formID string) ([]model.Response, error) {
	rows, err := s.QueryContext(ctx, `
		SELECT `+responseColumns+` FROM response
		WHERE form_id = ?
		ORDER BY created_at DESC`,
		formID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	responses := []model.Response{}
	for rows.Next() {
		r, err := scanResponse(rows)
		if err != nil {
			return nil, err
		}
		responses = append(responses, r)
	}
	return responses, rows.Err()
}

func (s *Store) FindResponseByRecord(ctx context.Context, formID, recordID string) (model.Response, bool, error) {
	r, err := scanResponse(s.QueryRowContext(ctx, `
		SELECT `+responseColumns+` FROM response
		WHERE form_id = ?
			AND external_record_id = ?`,
		formID, recordID,
	))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return r, false, nil
	case err != nil:
		return r, false, err
	}
	return r, true, nil
}

// UpdateResponseSync writes the fields mirrored from the external record:
// updated_at and deleted_in_external.
func (s *Store) UpdateResponseSync(ctx context.Context, r model.Response) error {
	res, err := s.ExecContext(ctx, `
		UPDATE response
		SET
			updated_at = ?,
			deleted_in_external = ?
		WHERE id = ?`,
		r.UpdatedAt.UTC(),
		r.DeletedInExternal,
		r.ID,
	)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func (s *Store) DeleteResponse(ctx context.Context, id string) error {
	res, err := s.ExecContext(ctx, `DELETE FROM response WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectRow(res)
}
