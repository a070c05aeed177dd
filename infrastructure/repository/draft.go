package repository

import (
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/jdalisay/tourism-data-api/infrastructure/database/postgres"
	"github.com/jdalisay/tourism-data-api/internal/domain"
)

const (
	draftSubmissionsTable = "draft_submissions ds"
)

type DraftRepository interface {
	SaveDraft(draft *domain.DraftSubmission) error
	GetDraft(userID, year, month int) (*domain.DraftSubmission, error)
	DeleteDraft(userID, year, month int) error
}

type draftRepository struct {
	conn *postgres.Connection
}

func NewDraftRepository(conn *postgres.Connection) DraftRepository {
	return &draftRepository{
		conn: conn,
	}
}

// SaveDraft upserts the draft for (user, year, month); saving again simply
// replaces the payload.
func (r *draftRepository) SaveDraft(draft *domain.DraftSubmission) error {
	query, args, err := squirrel.StatementBuilder.
		Insert("draft_submissions").
		Columns("user_id", "year", "month", "payload").
		Values(draft.UserID, draft.Year, draft.Month, []byte(draft.Payload)).
		Suffix(`
			ON CONFLICT (user_id, year, month) DO UPDATE SET
				payload = EXCLUDED.payload,
				updated_at = NOW()
		`).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("building draft upsert: %w", err)
	}

	if _, err := r.conn.Exec(query, args...); err != nil {
		return fmt.Errorf("saving draft: %w", err)
	}

	return nil
}

func (r *draftRepository) GetDraft(userID, year, month int) (*domain.DraftSubmission, error) {
	query, args, err := squirrel.
		Select("ds.id", "ds.user_id", "ds.year", "ds.month", "ds.payload", "ds.updated_at").
		From(draftSubmissionsTable).
		Where(squirrel.Eq{"ds.user_id": userID, "ds.year": year, "ds.month": month}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building draft query: %w", err)
	}

	draft := &domain.DraftSubmission{}
	var payload []byte

	err = r.conn.QueryRow(query, args...).Scan(
		&draft.ID,
		&draft.UserID,
		&draft.Year,
		&draft.Month,
		&payload,
		&draft.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("querying draft: %w", err)
	}

	draft.Payload = payload

	if err := r.loadStays(draft); err != nil {
		return nil, err
	}

	return draft, nil
}

func (r *draftRepository) DeleteDraft(userID, year, month int) error {
	query, args, err := squirrel.
		Delete("draft_submissions").
		Where(squirrel.Eq{"user_id": userID, "year": year, "month": month}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("building draft delete: %w", err)
	}

	if _, err := r.conn.Exec(query, args...); err != nil {
		return fmt.Errorf("deleting draft: %w", err)
	}

	return nil
}

func (r *draftRepository) loadStays(draft *domain.DraftSubmission) error {
	query, args, err := squirrel.
		Select("id", "draft_submission_id", "payload").
		From("draft_stays").
		Where(squirrel.Eq{"draft_submission_id": draft.ID}).
		OrderBy("id ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("building draft stays query: %w", err)
	}

	rows, err := r.conn.Query(query, args...)
	if err != nil {
		return fmt.Errorf("querying draft stays: %w", err)
	}
	defer rows.Close()

	stays := make([]domain.DraftStay, 0)
	for rows.Next() {
		var stay domain.DraftStay
		var payload []byte
		if err := rows.Scan(&stay.ID, &stay.DraftSubmissionID, &payload); err != nil {
			return fmt.Errorf("scanning draft stay: %w", err)
		}
		stay.Payload = payload
		stays = append(stays, stay)
	}

	if err = rows.Err(); err != nil {
		return fmt.Errorf("iterating draft stay rows: %w", err)
	}

	draft.Stays = stays
	return nil
}
