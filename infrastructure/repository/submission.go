package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/jdalisay/tourism-data-api/infrastructure/database/postgres"
	"github.com/jdalisay/tourism-data-api/internal/domain"
)

type SubmissionRepository interface {
	CreateSubmission(submission *domain.Submission) (*domain.Submission, error)
	GetByID(id int) (*domain.Submission, error)
	GetByUserAndPeriod(userID, year, month int) (*domain.Submission, error)
	ListByUser(userID int) ([]*domain.Submission, error)
	PendingEstablishments(year, month int) ([]*domain.User, error)
}

type submissionRepository struct {
	conn *postgres.Connection
}

func NewSubmissionRepository(conn *postgres.Connection) SubmissionRepository {
	return &submissionRepository{
		conn: conn,
	}
}

// CreateSubmission inserts the submission header together with its daily
// metric and guest rows in one transaction; a failure anywhere rolls the
// whole report back.
func (r *submissionRepository) CreateSubmission(submission *domain.Submission) (*domain.Submission, error) {
	err := r.conn.RunInTransaction(context.Background(), func(tx *sql.Tx) error {
		query, args, err := squirrel.
			Insert("submissions").
			Columns("reference_no", "user_id", "year", "month", "status").
			Values(submission.ReferenceNo, submission.UserID, submission.Year, submission.Month, submission.Status).
			Suffix("RETURNING id, created_at, updated_at").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("building submission insert: %w", err)
		}

		err = tx.QueryRow(query, args...).Scan(&submission.ID, &submission.CreatedAt, &submission.UpdatedAt)
		if err != nil {
			return fmt.Errorf("inserting submission: %w", err)
		}

		for i := range submission.DailyMetrics {
			dm := &submission.DailyMetrics[i]
			dm.SubmissionID = submission.ID

			query, args, err := squirrel.
				Insert("daily_metrics").
				Columns("submission_id", "day", "check_ins", "overnight_guests", "rooms_occupied").
				Values(dm.SubmissionID, dm.Day, dm.CheckIns, dm.OvernightGuests, dm.RoomsOccupied).
				Suffix("RETURNING id").
				PlaceholderFormat(squirrel.Dollar).
				ToSql()
			if err != nil {
				return fmt.Errorf("building daily metric insert: %w", err)
			}

			if err := tx.QueryRow(query, args...).Scan(&dm.ID); err != nil {
				return fmt.Errorf("inserting daily metric for day %d: %w", dm.Day, err)
			}

			for j := range dm.Guests {
				guest := &dm.Guests[j]
				guest.DailyMetricID = dm.ID

				query, args, err := squirrel.
					Insert("guests").
					Columns("daily_metric_id", "nationality", "gender", "age", "nights_stayed").
					Values(guest.DailyMetricID, guest.Nationality, guest.Gender, guest.Age, guest.NightsStayed).
					Suffix("RETURNING id").
					PlaceholderFormat(squirrel.Dollar).
					ToSql()
				if err != nil {
					return fmt.Errorf("building guest insert: %w", err)
				}

				if err := tx.QueryRow(query, args...).Scan(&guest.ID); err != nil {
					return fmt.Errorf("inserting guest: %w", err)
				}
			}
		}

		return nil
	})
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return nil, fmt.Errorf("database error: %w (code: %s)", pqErr, pqErr.Code)
		}
		return nil, err
	}

	return submission, nil
}

func (r *submissionRepository) GetByID(id int) (*domain.Submission, error) {
	query, args, err := submissionSelect().
		Where(squirrel.Eq{"s.id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	submission, err := scanSubmission(r.conn.QueryRow(query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("querying submission: %w", err)
	}

	if err := r.loadDailyMetrics(submission); err != nil {
		return nil, err
	}
	if err := r.loadGuests(submission); err != nil {
		return nil, err
	}

	return submission, nil
}

func (r *submissionRepository) GetByUserAndPeriod(userID, year, month int) (*domain.Submission, error) {
	query, args, err := submissionSelect().
		Where(squirrel.Eq{"s.user_id": userID, "s.year": year, "s.month": month}).
		ToSql()
	if err != nil {
		return nil, err
	}

	submission, err := scanSubmission(r.conn.QueryRow(query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("querying submission by period: %w", err)
	}

	return submission, nil
}

func (r *submissionRepository) ListByUser(userID int) ([]*domain.Submission, error) {
	query, args, err := submissionSelect().
		Where(squirrel.Eq{"s.user_id": userID}).
		OrderBy("s.year DESC", "s.month DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying submissions: %w", err)
	}
	defer rows.Close()

	submissions := make([]*domain.Submission, 0)
	for rows.Next() {
		submission, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning submission: %w", err)
		}
		submissions = append(submissions, submission)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating submission rows: %w", err)
	}

	return submissions, nil
}

// PendingEstablishments returns active establishments with no submission yet
// for the given period. The deadline reminder job mails these.
func (r *submissionRepository) PendingEstablishments(year, month int) ([]*domain.User, error) {
	query, args, err := userSelect().
		Where(squirrel.Eq{
			"u.role_id": domain.RoleEstablishment,
			"u.active":  true,
			"u.deleted": false,
		}).
		Where(squirrel.Expr(
			"NOT EXISTS (SELECT 1 FROM submissions s WHERE s.user_id = u.id AND s.year = ? AND s.month = ?)",
			year, month,
		)).
		OrderBy("u.id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying pending establishments: %w", err)
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning pending establishment: %w", err)
		}
		users = append(users, user)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pending establishment rows: %w", err)
	}

	return users, nil
}

func (r *submissionRepository) loadDailyMetrics(submission *domain.Submission) error {
	query, args, err := squirrel.
		Select("dm.id", "dm.submission_id", "dm.day", "dm.check_ins", "dm.overnight_guests", "dm.rooms_occupied").
		From(dailyMetricsTable).
		Where(squirrel.Eq{"dm.submission_id": submission.ID}).
		OrderBy("dm.day ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	rows, err := r.conn.Query(query, args...)
	if err != nil {
		return fmt.Errorf("querying daily metrics: %w", err)
	}
	defer rows.Close()

	metrics := make([]domain.DailyMetric, 0)
	for rows.Next() {
		var dm domain.DailyMetric
		err := rows.Scan(&dm.ID, &dm.SubmissionID, &dm.Day, &dm.CheckIns, &dm.OvernightGuests, &dm.RoomsOccupied)
		if err != nil {
			return fmt.Errorf("scanning daily metric: %w", err)
		}
		metrics = append(metrics, dm)
	}

	if err = rows.Err(); err != nil {
		return fmt.Errorf("iterating daily metric rows: %w", err)
	}

	submission.DailyMetrics = metrics
	return nil
}

// loadGuests attaches the guest rows to the submission's daily metrics,
// which must be loaded first.
func (r *submissionRepository) loadGuests(submission *domain.Submission) error {
	if len(submission.DailyMetrics) == 0 {
		return nil
	}

	metricIDs := make([]int, 0, len(submission.DailyMetrics))
	for _, dm := range submission.DailyMetrics {
		metricIDs = append(metricIDs, dm.ID)
	}

	query, args, err := squirrel.
		Select("g.id", "g.daily_metric_id", "g.nationality", "g.gender", "g.age", "g.nights_stayed").
		From(guestsTable).
		Where(squirrel.Eq{"g.daily_metric_id": metricIDs}).
		OrderBy("g.id ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	rows, err := r.conn.Query(query, args...)
	if err != nil {
		return fmt.Errorf("querying guests: %w", err)
	}
	defer rows.Close()

	byMetric := make(map[int][]domain.Guest)
	for rows.Next() {
		var g domain.Guest
		err := rows.Scan(&g.ID, &g.DailyMetricID, &g.Nationality, &g.Gender, &g.Age, &g.NightsStayed)
		if err != nil {
			return fmt.Errorf("scanning guest: %w", err)
		}
		byMetric[g.DailyMetricID] = append(byMetric[g.DailyMetricID], g)
	}

	if err = rows.Err(); err != nil {
		return fmt.Errorf("iterating guest rows: %w", err)
	}

	for i := range submission.DailyMetrics {
		submission.DailyMetrics[i].Guests = byMetric[submission.DailyMetrics[i].ID]
	}

	return nil
}

func submissionSelect() squirrel.SelectBuilder {
	return squirrel.
		Select("s.id", "s.reference_no", "s.user_id", "s.year", "s.month", "s.status", "s.created_at", "s.updated_at").
		From(submissionsTable).
		PlaceholderFormat(squirrel.Dollar)
}

func scanSubmission(row rowScanner) (*domain.Submission, error) {
	submission := &domain.Submission{}

	err := row.Scan(
		&submission.ID,
		&submission.ReferenceNo,
		&submission.UserID,
		&submission.Year,
		&submission.Month,
		&submission.Status,
		&submission.CreatedAt,
		&submission.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return submission, nil
}
