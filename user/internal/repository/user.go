package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	commonErrors "github.com/velora/commerce/internal/common/errors"
	"github.com/velora/commerce/user/pkg/request"
)

const pgUniqueViolation = "23505"

type User struct {
	ID                        uuid.UUID
	Username                  string
	Email                     string
	Password                  string
	IsVerified                bool
	VerifyToken               *string
	VerifyTokenExpiry         *time.Time
	ForgotPasswordToken       *string
	ForgotPasswordTokenExpiry *time.Time
	ShippingAddress           *request.ShippingAddress
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

type InsertUserParams struct {
	Username          string
	Email             string
	HashedPassword    string
	VerifyToken       string
	VerifyTokenExpiry time.Time
}

type UserRepository interface {
	InsertUser(c context.Context, param InsertUserParams) (User, error)
	FindUserByEmail(c context.Context, email string) (User, error)
	FindUserById(c context.Context, id uuid.UUID) (User, error)
	VerifyUserByToken(c context.Context, token string) (User, error)
	SetForgotPasswordToken(c context.Context, userId uuid.UUID, token string, expiry time.Time) error
	ResetPasswordByToken(c context.Context, token, hashedPassword string) (User, error)
	UpdateShippingAddress(c context.Context, userId uuid.UUID, address request.ShippingAddress) (User, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &postgresRepository{pool: pool}
}

const userColumns = `id, username, email, password, is_verified,
	verify_token, verify_token_expiry,
	forgot_password_token, forgot_password_token_expiry,
	shipping_address, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var (
		user    User
		address []byte
	)
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.Password, &user.IsVerified,
		&user.VerifyToken, &user.VerifyTokenExpiry,
		&user.ForgotPasswordToken, &user.ForgotPasswordTokenExpiry,
		&address, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return User{}, err
	}
	if len(address) > 0 {
		user.ShippingAddress = &request.ShippingAddress{}
		if err := json.Unmarshal(address, user.ShippingAddress); err != nil {
			return User{}, fmt.Errorf("failed unmarshalling shipping address with error=%w", err)
		}
	}
	return user, nil
}

func (r *postgresRepository) InsertUser(
	c context.Context,
	param InsertUserParams,
) (User, error) {
	row := r.pool.QueryRow(c, `
		INSERT INTO users (id, username, email, password, verify_token, verify_token_expiry)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+userColumns,
		uuid.New(),
		param.Username,
		param.Email,
		param.HashedPassword,
		param.VerifyToken,
		param.VerifyTokenExpiry,
	)
	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return User{}, commonErrors.ErrEmailTaken
		}
		return User{}, fmt.Errorf("failed inserting user with error=%w", err)
	}
	return user, nil
}

func (r *postgresRepository) FindUserByEmail(c context.Context, email string) (User, error) {
	row := r.pool.QueryRow(c, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, commonErrors.ErrUserNotFound
		}
		return User{}, fmt.Errorf("failed finding user by email with error=%w", err)
	}
	return user, nil
}

func (r *postgresRepository) FindUserById(c context.Context, id uuid.UUID) (User, error) {
	row := r.pool.QueryRow(c, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, commonErrors.ErrUserNotFound
		}
		return User{}, fmt.Errorf("failed finding user by id with error=%w", err)
	}
	return user, nil
}

func (r *postgresRepository) VerifyUserByToken(c context.Context, token string) (User, error) {
	row := r.pool.QueryRow(c, `
		UPDATE users
		SET is_verified = true,
			verify_token = NULL,
			verify_token_expiry = NULL,
			updated_at = now()
		WHERE verify_token = $1 AND verify_token_expiry > now()
		RETURNING `+userColumns,
		token,
	)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, commonErrors.ErrTokenInvalid
		}
		return User{}, fmt.Errorf("failed verifying user with error=%w", err)
	}
	return user, nil
}

func (r *postgresRepository) SetForgotPasswordToken(
	c context.Context,
	userId uuid.UUID,
	token string,
	expiry time.Time,
) error {
	tag, err := r.pool.Exec(c, `
		UPDATE users
		SET forgot_password_token = $1,
			forgot_password_token_expiry = $2,
			updated_at = now()
		WHERE id = $3`,
		token, expiry, userId,
	)
	if err != nil {
		return fmt.Errorf("failed setting forgot password token with error=%w", err)
	}
	if tag.RowsAffected() == 0 {
		return commonErrors.ErrUserNotFound
	}
	return nil
}

func (r *postgresRepository) ResetPasswordByToken(
	c context.Context,
	token, hashedPassword string,
) (User, error) {
	row := r.pool.QueryRow(c, `
		UPDATE users
		SET password = $1,
			forgot_password_token = NULL,
			forgot_password_token_expiry = NULL,
			updated_at = now()
		WHERE forgot_password_token = $2 AND forgot_password_token_expiry > now()
		RETURNING `+userColumns,
		hashedPassword, token,
	)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, commonErrors.ErrTokenInvalid
		}
		return User{}, fmt.Errorf("failed resetting password with error=%w", err)
	}
	return user, nil
}

func (r *postgresRepository) UpdateShippingAddress(
	c context.Context,
	userId uuid.UUID,
	address request.ShippingAddress,
) (User, error) {
	marshalled, err := json.Marshal(address)
	if err != nil {
		return User{}, fmt.Errorf("failed marshalling shipping address with error=%w", err)
	}

	row := r.pool.QueryRow(c, `
		UPDATE users
		SET shipping_address = $1, updated_at = now()
		WHERE id = $2
		RETURNING `+userColumns,
		marshalled, userId,
	)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, commonErrors.ErrUserNotFound
		}
		return User{}, fmt.Errorf("failed updating shipping address with error=%w", err)
	}
	return user, nil
}
