package repository

import (
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"github.com/jdalisay/tourism-data-api/infrastructure/database/postgres"
	"github.com/jdalisay/tourism-data-api/internal/domain"
)

const (
	usersTable = "users"
)

type UserRepository interface {
	CreateUser(user *domain.User) (*domain.User, error)
	UpdateUser(user *domain.User) error
	GetUserByEmail(email string) (*domain.User, error)
	GetUserByID(userID int) (*domain.User, error)
	ListUsers() ([]*domain.User, error)
	ListActiveEstablishments() ([]*domain.User, error)
}

type userRepository struct {
	conn *postgres.Connection
}

func NewUserRepository(conn *postgres.Connection) UserRepository {
	return &userRepository{
		conn: conn,
	}
}

func (r *userRepository) CreateUser(user *domain.User) (*domain.User, error) {
	queryBuilder := squirrel.
		Insert(usersTable).
		Columns(
			"name", "lastname", "email", "password_hash", "active", "role_id",
			"region", "province", "municipality", "establishment_name", "room_count",
		).
		Values(
			user.Name, user.Lastname, user.Email, user.PasswordHash, user.Active, user.RoleID,
			user.Region, user.Province, user.Municipality, user.EstablishmentName, user.RoomCount,
		).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar)

	usersSQL, usersArgs, err := queryBuilder.ToSql()
	if err != nil {
		return nil, err
	}

	err = r.conn.QueryRow(usersSQL, usersArgs...).Scan(&user.ID)
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (r *userRepository) UpdateUser(user *domain.User) error {
	queryBuilder := squirrel.
		Update(usersTable).
		Set("active", user.Active).
		Set("role_id", user.RoleID).
		Set("room_count", user.RoomCount).
		Set("deleted", user.Deleted).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": user.ID})

	if user.Name != "" {
		queryBuilder = queryBuilder.Set("name", user.Name)
	}

	if user.Lastname != "" {
		queryBuilder = queryBuilder.Set("lastname", user.Lastname)
	}

	if user.Email != "" {
		queryBuilder = queryBuilder.Set("email", user.Email)
	}

	if user.PasswordHash != "" {
		queryBuilder = queryBuilder.Set("password_hash", user.PasswordHash)
	}

	if user.Region != "" {
		queryBuilder = queryBuilder.Set("region", user.Region)
	}

	if user.Province != "" {
		queryBuilder = queryBuilder.Set("province", user.Province)
	}

	if user.Municipality != "" {
		queryBuilder = queryBuilder.Set("municipality", user.Municipality)
	}

	if user.EstablishmentName != nil {
		queryBuilder = queryBuilder.Set("establishment_name", user.EstablishmentName)
	}

	if user.DeletedAt != nil {
		queryBuilder = queryBuilder.Set("deleted_at", user.DeletedAt)
	}

	userSQL, userArgs, err := queryBuilder.PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return err
	}

	_, err = r.conn.Exec(userSQL, userArgs...)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}

	return nil
}

func (r *userRepository) GetUserByEmail(email string) (*domain.User, error) {
	query, args, err := userSelect().
		Where(squirrel.Eq{"u.email": email, "u.deleted": false}).
		ToSql()
	if err != nil {
		return nil, err
	}

	user, err := scanUser(r.conn.QueryRow(query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("querying user by email: %w", err)
	}

	return user, nil
}

func (r *userRepository) GetUserByID(userID int) (*domain.User, error) {
	query, args, err := userSelect().
		Where(squirrel.Eq{"u.id": userID, "u.deleted": false}).
		ToSql()
	if err != nil {
		return nil, err
	}

	user, err := scanUser(r.conn.QueryRow(query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("querying user by id: %w", err)
	}

	return user, nil
}

func (r *userRepository) ListUsers() ([]*domain.User, error) {
	query, args, err := userSelect().
		Where(squirrel.Eq{"u.deleted": false}).
		OrderBy("u.id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	return r.queryUsers(query, args)
}

// ListActiveEstablishments returns every active, non-deleted establishment
// user; the reminder jobs mail this list.
func (r *userRepository) ListActiveEstablishments() ([]*domain.User, error) {
	query, args, err := userSelect().
		Where(squirrel.Eq{
			"u.role_id": domain.RoleEstablishment,
			"u.active":  true,
			"u.deleted": false,
		}).
		OrderBy("u.id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	return r.queryUsers(query, args)
}

func (r *userRepository) queryUsers(query string, args []interface{}) ([]*domain.User, error) {
	rows, err := r.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, user)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating user rows: %w", err)
	}

	return users, nil
}

func userSelect() squirrel.SelectBuilder {
	return squirrel.
		Select(
			"u.id", "u.name", "u.lastname", "u.email", "u.password_hash", "u.active",
			"u.role_id", "u.region", "u.province", "u.municipality",
			"u.establishment_name", "u.room_count", "u.deleted", "u.deleted_at",
			"u.created_at", "u.updated_at",
		).
		From(usersTable + " u").
		PlaceholderFormat(squirrel.Dollar)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	user := &domain.User{}

	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Lastname,
		&user.Email,
		&user.PasswordHash,
		&user.Active,
		&user.RoleID,
		&user.Region,
		&user.Province,
		&user.Municipality,
		&user.EstablishmentName,
		&user.RoomCount,
		&user.Deleted,
		&user.DeletedAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return user, nil
}
