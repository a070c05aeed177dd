package repository

import (
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/jdalisay/tourism-data-api/infrastructure/database/postgres"
	"github.com/jdalisay/tourism-data-api/internal/domain"
)

const (
	submissionsTable  = "submissions s"
	dailyMetricsTable = "daily_metrics dm"
	guestsTable       = "guests g"
)

// MetricsRepository exposes the read-only aggregate projections the admin
// dashboards consume. All reads are recomputed per query; nothing is cached.
// Months with no submissions simply produce no row.
type MetricsRepository interface {
	MonthlyAggregates(filters domain.MetricFilters) ([]domain.MonthlyAggregateRow, error)
	MonthlyCheckins(filters domain.MetricFilters) ([]domain.MonthlyCheckinRow, error)
	GuestDemographics(filters domain.MetricFilters) ([]domain.DemographicRow, error)
	NationalityCounts(filters domain.MetricFilters) ([]domain.NationalityCountRow, error)
	Municipalities(scope domain.ScopeFilter) ([]string, error)
	CountActiveEstablishments(scope domain.ScopeFilter) (int, error)
}

type metricsRepository struct {
	conn *postgres.Connection
}

func NewMetricsRepository(conn *postgres.Connection) MetricsRepository {
	return &metricsRepository{
		conn: conn,
	}
}

// applyScope narrows a submissions/users join conjunctively by the scope
// levels that actually constrain the query.
func applyScope(qb squirrel.SelectBuilder, scope domain.ScopeFilter) squirrel.SelectBuilder {
	if domain.Narrows(scope.Region) {
		qb = qb.Where(squirrel.Eq{"u.region": scope.Region})
	}
	if domain.Narrows(scope.Province) {
		qb = qb.Where(squirrel.Eq{"u.province": scope.Province})
	}
	if domain.Narrows(scope.Municipality) {
		qb = qb.Where(squirrel.Eq{"u.municipality": scope.Municipality})
	}
	return qb
}

func applyPeriod(qb squirrel.SelectBuilder, filters domain.MetricFilters) squirrel.SelectBuilder {
	qb = qb.Where(squirrel.Eq{"s.year": filters.Year})
	if filters.Month != nil {
		qb = qb.Where(squirrel.Eq{"s.month": *filters.Month})
	}
	return qb
}

func (r *metricsRepository) MonthlyAggregates(filters domain.MetricFilters) ([]domain.MonthlyAggregateRow, error) {
	qb := squirrel.
		Select(
			"s.month",
			"COALESCE(SUM(dm.check_ins), 0) AS total_check_ins",
			"COALESCE(SUM(dm.overnight_guests), 0) AS total_overnight",
			"COALESCE(SUM(dm.rooms_occupied), 0) AS total_occupied",
			"COALESCE(AVG(dm.overnight_guests::float / NULLIF(dm.check_ins, 0)), 0) AS average_guest_nights",
			"COALESCE(AVG(dm.rooms_occupied::float / NULLIF(u.room_count, 0)) * 100, 0) AS average_room_occupancy_rate",
			"COALESCE(AVG(dm.check_ins::float / NULLIF(dm.rooms_occupied, 0)), 0) AS average_guests_per_room",
			"COUNT(DISTINCT s.id) AS total_submissions",
			"COALESCE(SUM(DISTINCT u.room_count), 0) AS total_rooms",
		).
		From(submissionsTable).
		Join("users u ON u.id = s.user_id").
		LeftJoin("daily_metrics dm ON dm.submission_id = s.id").
		GroupBy("s.month").
		OrderBy("s.month ASC").
		PlaceholderFormat(squirrel.Dollar)

	qb = applyPeriod(qb, filters)
	qb = applyScope(qb, filters.Scope)

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building monthly aggregates query: %w", err)
	}

	rows, err := r.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying monthly aggregates: %w", err)
	}
	defer rows.Close()

	aggregates := make([]domain.MonthlyAggregateRow, 0)
	for rows.Next() {
		var row domain.MonthlyAggregateRow
		err := rows.Scan(
			&row.Month,
			&row.TotalCheckIns,
			&row.TotalOvernight,
			&row.TotalOccupied,
			&row.AverageGuestNights,
			&row.AverageRoomOccupancyRate,
			&row.AverageGuestsPerRoom,
			&row.TotalSubmissions,
			&row.TotalRooms,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning monthly aggregate row: %w", err)
		}
		aggregates = append(aggregates, row)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating monthly aggregate rows: %w", err)
	}

	return aggregates, nil
}

func (r *metricsRepository) MonthlyCheckins(filters domain.MetricFilters) ([]domain.MonthlyCheckinRow, error) {
	qb := squirrel.
		Select(
			"s.month",
			"COALESCE(SUM(dm.check_ins), 0) AS total_check_ins",
			"COALESCE(SUM(dm.overnight_guests), 0) AS total_overnight",
			"COALESCE(SUM(dm.rooms_occupied), 0) AS total_occupied",
		).
		From(submissionsTable).
		Join("users u ON u.id = s.user_id").
		LeftJoin("daily_metrics dm ON dm.submission_id = s.id").
		GroupBy("s.month").
		OrderBy("s.month ASC").
		PlaceholderFormat(squirrel.Dollar)

	qb = applyPeriod(qb, filters)
	qb = applyScope(qb, filters.Scope)

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building monthly checkins query: %w", err)
	}

	rows, err := r.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying monthly checkins: %w", err)
	}
	defer rows.Close()

	checkins := make([]domain.MonthlyCheckinRow, 0)
	for rows.Next() {
		var row domain.MonthlyCheckinRow
		if err := rows.Scan(&row.Month, &row.TotalCheckIns, &row.TotalOvernight, &row.TotalOccupied); err != nil {
			return nil, fmt.Errorf("scanning monthly checkin row: %w", err)
		}
		checkins = append(checkins, row)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating monthly checkin rows: %w", err)
	}

	return checkins, nil
}

func (r *metricsRepository) GuestDemographics(filters domain.MetricFilters) ([]domain.DemographicRow, error) {
	qb := squirrel.
		Select(
			"s.month",
			"COALESCE(SUM(CASE WHEN g.gender = 'male' THEN 1 ELSE 0 END), 0) AS total_male",
			"COALESCE(SUM(CASE WHEN g.gender = 'female' THEN 1 ELSE 0 END), 0) AS total_female",
			"COALESCE(SUM(CASE WHEN g.age < 18 THEN 1 ELSE 0 END), 0) AS total_minors",
			"COALESCE(SUM(CASE WHEN g.nationality <> 'PH' THEN 1 ELSE 0 END), 0) AS total_foreign",
		).
		From(guestsTable).
		Join("daily_metrics dm ON dm.id = g.daily_metric_id").
		Join("submissions s ON s.id = dm.submission_id").
		Join("users u ON u.id = s.user_id").
		GroupBy("s.month").
		OrderBy("s.month ASC").
		PlaceholderFormat(squirrel.Dollar)

	qb = applyPeriod(qb, filters)
	qb = applyScope(qb, filters.Scope)

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building demographics query: %w", err)
	}

	rows, err := r.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying demographics: %w", err)
	}
	defer rows.Close()

	demographics := make([]domain.DemographicRow, 0)
	for rows.Next() {
		var row domain.DemographicRow
		err := rows.Scan(&row.Month, &row.TotalMale, &row.TotalFemale, &row.TotalMinors, &row.TotalForeign)
		if err != nil {
			return nil, fmt.Errorf("scanning demographic row: %w", err)
		}
		demographics = append(demographics, row)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating demographic rows: %w", err)
	}

	return demographics, nil
}

func (r *metricsRepository) NationalityCounts(filters domain.MetricFilters) ([]domain.NationalityCountRow, error) {
	qb := squirrel.
		Select(
			"g.nationality",
			"COUNT(*) AS count",
		).
		From(guestsTable).
		Join("daily_metrics dm ON dm.id = g.daily_metric_id").
		Join("submissions s ON s.id = dm.submission_id").
		Join("users u ON u.id = s.user_id").
		GroupBy("g.nationality").
		OrderBy("count DESC, g.nationality ASC").
		PlaceholderFormat(squirrel.Dollar)

	qb = applyPeriod(qb, filters)
	qb = applyScope(qb, filters.Scope)

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building nationality counts query: %w", err)
	}

	rows, err := r.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying nationality counts: %w", err)
	}
	defer rows.Close()

	counts := make([]domain.NationalityCountRow, 0)
	for rows.Next() {
		var nationality string
		var count int64
		if err := rows.Scan(&nationality, &count); err != nil {
			return nil, fmt.Errorf("scanning nationality count row: %w", err)
		}
		counts = append(counts, domain.NationalityCountRow{Nationality: nationality, Count: count})
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating nationality count rows: %w", err)
	}

	return counts, nil
}

func (r *metricsRepository) Municipalities(scope domain.ScopeFilter) ([]string, error) {
	qb := squirrel.
		Select("DISTINCT u.municipality").
		From(usersTable + " u").
		Where(squirrel.Eq{"u.role_id": domain.RoleEstablishment, "u.deleted": false}).
		Where(squirrel.NotEq{"u.municipality": ""}).
		OrderBy("u.municipality ASC").
		PlaceholderFormat(squirrel.Dollar)

	qb = applyScope(qb, scope)

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building municipalities query: %w", err)
	}

	rows, err := r.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying municipalities: %w", err)
	}
	defer rows.Close()

	municipalities := make([]string, 0)
	for rows.Next() {
		var municipality string
		if err := rows.Scan(&municipality); err != nil {
			return nil, fmt.Errorf("scanning municipality: %w", err)
		}
		municipalities = append(municipalities, municipality)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating municipality rows: %w", err)
	}

	return municipalities, nil
}

// CountActiveEstablishments counts establishments contributing to the scope;
// the submission rate is submissions over this denominator.
func (r *metricsRepository) CountActiveEstablishments(scope domain.ScopeFilter) (int, error) {
	qb := squirrel.
		Select("COUNT(*)").
		From(usersTable + " u").
		Where(squirrel.Eq{
			"u.role_id": domain.RoleEstablishment,
			"u.active":  true,
			"u.deleted": false,
		}).
		PlaceholderFormat(squirrel.Dollar)

	qb = applyScope(qb, scope)

	query, args, err := qb.ToSql()
	if err != nil {
		return 0, fmt.Errorf("building establishment count query: %w", err)
	}

	var count int
	if err := r.conn.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting establishments: %w", err)
	}

	return count, nil
}
