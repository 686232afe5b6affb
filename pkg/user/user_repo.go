package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/Pending-Status/CalendarMeet/internal/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repo interface {
	CreateUser(ctx context.Context, user User) (User, error)
	GetUser(ctx context.Context, uid string) (User, error)
	UpdateUser(ctx context.Context, user User) (User, error)
	GetAllUsers(ctx context.Context) ([]User, error)
	// AddFriend appends friendUid to the user's friends unless already present.
	AddFriend(ctx context.Context, uid string, friendUid string) (User, error)
	RemoveFriend(ctx context.Context, uid string, friendUid string) (User, error)
	CountUsers(ctx context.Context) (int, error)
}

type UserRepoImpl struct {
	db *pgxpool.Pool
}

func NewUserRepo(db *pgxpool.Pool) *UserRepoImpl {
	return &UserRepoImpl{db: db}
}

const userColumns = `uid, email, display_name, photo_url, major, year, bio, interests, friends, created_at, updated_at`

func (u *UserRepoImpl) CreateUser(ctx context.Context, user User) (User, error) {
	query := `INSERT INTO users (uid, email, display_name, photo_url, major, year, bio, interests, friends)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING ` + userColumns

	created, err := scanUser(u.db.QueryRow(ctx, query,
		user.Uid,
		user.Email,
		user.DisplayName,
		user.PhotoUrl,
		user.Major,
		user.Year,
		user.Bio,
		nonNil(user.Interests),
		nonNil(user.Friends),
	))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return User{}, ErrUserAlreadyExists
		}
		err := fmt.Errorf("could not create user: %w", err)
		log.Error(err)
		return User{}, err
	}
	return created, nil
}

func (u *UserRepoImpl) GetUser(ctx context.Context, uid string) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1`

	user, err := scanUser(u.db.QueryRow(ctx, query, uid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		err := fmt.Errorf("could not get user %s: %w", uid, err)
		log.Error(err)
		return User{}, err
	}
	return user, nil
}

func (u *UserRepoImpl) UpdateUser(ctx context.Context, user User) (User, error) {
	query := `UPDATE users
			  SET display_name = $2, photo_url = $3, major = $4, year = $5, bio = $6, interests = $7, updated_at = now()
			  WHERE uid = $1
			  RETURNING ` + userColumns

	updated, err := scanUser(u.db.QueryRow(ctx, query,
		user.Uid,
		user.DisplayName,
		user.PhotoUrl,
		user.Major,
		user.Year,
		user.Bio,
		nonNil(user.Interests),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		err := fmt.Errorf("could not update user %s: %w", user.Uid, err)
		log.Error(err)
		return User{}, err
	}
	return updated, nil
}

func (u *UserRepoImpl) GetAllUsers(ctx context.Context) ([]User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY uid`

	rows, err := u.db.Query(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not query users: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			err := fmt.Errorf("could not scan user: %w", err)
			log.Error(err)
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("could not read users: %w", err)
		log.Error(err)
		return nil, err
	}
	return users, nil
}

func (u *UserRepoImpl) AddFriend(ctx context.Context, uid string, friendUid string) (User, error) {
	query := `UPDATE users
			  SET friends = CASE WHEN $2::text = ANY(friends) THEN friends ELSE array_append(friends, $2::text) END,
			      updated_at = now()
			  WHERE uid = $1
			  RETURNING ` + userColumns
	return u.updateFriends(ctx, query, uid, friendUid)
}

func (u *UserRepoImpl) RemoveFriend(ctx context.Context, uid string, friendUid string) (User, error) {
	query := `UPDATE users
			  SET friends = array_remove(friends, $2::text), updated_at = now()
			  WHERE uid = $1
			  RETURNING ` + userColumns
	return u.updateFriends(ctx, query, uid, friendUid)
}

func (u *UserRepoImpl) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := u.db.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&count); err != nil {
		err := fmt.Errorf("could not count users: %w", err)
		log.Error(err)
		return 0, err
	}
	return count, nil
}

func (u *UserRepoImpl) updateFriends(ctx context.Context, query string, uid string, friendUid string) (User, error) {
	user, err := scanUser(u.db.QueryRow(ctx, query, uid, friendUid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		err := fmt.Errorf("could not update friends of %s: %w", uid, err)
		log.Error(err)
		return User{}, err
	}
	return user, nil
}

func scanUser(row pgx.Row) (User, error) {
	var user User
	err := row.Scan(
		&user.Uid,
		&user.Email,
		&user.DisplayName,
		&user.PhotoUrl,
		&user.Major,
		&user.Year,
		&user.Bio,
		&user.Interests,
		&user.Friends,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return User{}, err
	}
	user.Interests = nonNil(user.Interests)
	user.Friends = nonNil(user.Friends)
	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()
	return user, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
