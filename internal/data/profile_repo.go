package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Shiki0138/fleeksonline/internal/data/pgxutil"
	"github.com/Shiki0138/fleeksonline/internal/domain/auth"
	"github.com/Shiki0138/fleeksonline/internal/domain/model"
	apperrors "github.com/Shiki0138/fleeksonline/internal/errors"
)

// Sentinels are AppErrors so callers can branch on errors.Is against the
// sentinel or on the error-code predicates interchangeably.
var (
	// ErrProfileNotFound is returned when a profile is not found.
	ErrProfileNotFound = apperrors.NotFound("profile not found")
	// ErrProfileEmailExists is returned when another profile already owns the email.
	ErrProfileEmailExists = apperrors.Conflict("profile email already exists")
)

const profileColumns = "user_id, email, full_name, role, membership, created_at, updated_at"

// ProfileRepo provides database operations for member profiles.
type ProfileRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewProfileRepo creates a new ProfileRepo with real time provider.
func NewProfileRepo(db *sql.DB) *ProfileRepo {
	return &ProfileRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewProfileRepoWithTimeProvider creates a new ProfileRepo with a custom time provider (useful for tests).
func NewProfileRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *ProfileRepo {
	return &ProfileRepo{DB: db, timeProvider: tp}
}

// GetByUserID retrieves a profile by user ID.
func (r *ProfileRepo) GetByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	return r.getByQuery(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE user_id = $1",
		"failed to get profile by user ID", userID)
}

// GetByEmail retrieves a profile by normalized email.
func (r *ProfileRepo) GetByEmail(ctx context.Context, email string) (*model.Profile, error) {
	return r.getByQuery(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE email = $1",
		"failed to get profile by email", strings.ToLower(strings.TrimSpace(email)))
}

// Upsert creates the profile if missing and refreshes email and full_name
// if present. The stored role of an existing row is intentionally left
// untouched so that role changes made out of band survive sign-ins.
func (r *ProfileRepo) Upsert(ctx context.Context, req *model.UpsertProfileRequest) (*model.Profile, error) {
	if req == nil {
		return nil, errors.New("upsert profile request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := r.timeProvider.Now().UTC()
	var out model.Profile
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO profiles (user_id, email, full_name, role, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $5)
			ON CONFLICT (user_id) DO UPDATE SET
				email = EXCLUDED.email,
				full_name = EXCLUDED.full_name,
				updated_at = EXCLUDED.updated_at
			RETURNING `+profileColumns,
			req.UserID,
			req.Email,
			req.FullName,
			req.Role,
			now,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Profile])
		return err
	}); err != nil {
		return nil, r.mapWriteErr(err, false)
	}
	return &out, nil
}

// UpdateRole sets the stored role for a profile.
func (r *ProfileRepo) UpdateRole(ctx context.Context, userID string, role auth.Role) (*model.Profile, error) {
	if !role.Valid() || role == auth.RoleGuest {
		return nil, fmt.Errorf("role %q cannot be stored", role)
	}

	var out model.Profile
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			UPDATE profiles SET role = $1, updated_at = $2
			WHERE user_id = $3
			RETURNING `+profileColumns,
			role, r.timeProvider.Now().UTC(), userID,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Profile])
		return err
	}); err != nil {
		return nil, r.mapWriteErr(err, true)
	}
	return &out, nil
}

// List retrieves profiles with pagination, newest first.
func (r *ProfileRepo) List(ctx context.Context, limit, offset int) ([]*model.Profile, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var rowsOut []model.Profile
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			"SELECT "+profileColumns+" FROM profiles ORDER BY created_at DESC LIMIT $1 OFFSET $2",
			limit, offset,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Profile])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	res := make([]*model.Profile, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

func (r *ProfileRepo) getByQuery(ctx context.Context, query, errMsg string, arg any) (*model.Profile, error) {
	var out model.Profile
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, arg)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Profile])
		return err
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("%s: %w", errMsg, apperrors.MapDBError(err))
	}
	return &out, nil
}

func (r *ProfileRepo) mapWriteErr(err error, includeNotFound bool) error {
	if err == nil {
		return nil
	}
	if includeNotFound && errors.Is(err, pgx.ErrNoRows) {
		return ErrProfileNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrProfileEmailExists
	}
	return apperrors.MapDBError(err)
}
