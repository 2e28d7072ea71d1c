package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Shiki0138/fleeksonline/internal/data/database"
	"github.com/Shiki0138/fleeksonline/internal/data/pgxutil"
	"github.com/Shiki0138/fleeksonline/internal/domain/model"
	apperrors "github.com/Shiki0138/fleeksonline/internal/errors"
)

// Sentinels are AppErrors so callers can branch on errors.Is against the
// sentinel or on the error-code predicates interchangeably.
var (
	// ErrNotificationNotFound is returned when a notification is not found.
	ErrNotificationNotFound = apperrors.NotFound("notification not found")
	// ErrNotificationUserMissing is returned when the target profile does not exist.
	ErrNotificationUserMissing = apperrors.NotFound("notification target profile does not exist")
)

const notificationColumns = "id, user_id, title, payload, is_read, created_at, read_at"

var notificationColumnList = []string{"id", "user_id", "title", "payload", "is_read", "created_at", "read_at"}

// NotificationRepo provides database operations for notifications.
type NotificationRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewNotificationRepo creates a new NotificationRepo with real time provider.
func NewNotificationRepo(db *sql.DB) *NotificationRepo {
	return &NotificationRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewNotificationRepoWithTimeProvider creates a new NotificationRepo with a custom time provider.
func NewNotificationRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *NotificationRepo {
	return &NotificationRepo{DB: db, timeProvider: tp}
}

// Create inserts a new notification for a user.
func (r *NotificationRepo) Create(ctx context.Context, req *model.CreateNotificationRequest) (*model.Notification, error) {
	if req == nil {
		return nil, errors.New("create notification request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	payload := req.Payload
	if len(payload) == 0 {
		payload = []byte("{}")
	}

	var out model.Notification
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO notifications (user_id, title, payload, created_at)
			VALUES ($1, $2, $3, $4)
			RETURNING `+notificationColumns,
			req.UserID,
			req.Title,
			payload,
			r.timeProvider.Now().UTC(),
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Notification])
		return err
	}); err != nil {
		return nil, r.mapWriteErr(err)
	}
	return &out, nil
}

// GetByID retrieves a notification by ID.
func (r *NotificationRepo) GetByID(ctx context.Context, id string) (*model.Notification, error) {
	var out model.Notification
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			"SELECT "+notificationColumns+" FROM notifications WHERE id = $1", id)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Notification])
		return err
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to get notification by ID: %w", err)
	}
	return &out, nil
}

// ListByUser retrieves notifications for a user, newest first.
func (r *NotificationRepo) ListByUser(
	ctx context.Context,
	userID string,
	opts *model.NotificationsListOptions,
) ([]*model.Notification, error) {
	o := model.NotificationsListOptions{}
	if opts != nil {
		o = *opts
	}
	o.Normalize()

	conds := []database.Condition{
		database.WhereCond("user_id", database.Equal, userID),
	}
	if o.UnreadOnly {
		conds = append(conds, database.WhereRawCond("NOT is_read"))
	}
	query, args := database.BuildListQuery(database.NewListQueryOptions("notifications",
		database.WithColumns(notificationColumnList...),
		database.WithConditions(conds...),
		database.WithOrderBy("created_at", "DESC"),
		database.WithLimit(o.Limit),
		database.WithOffset(o.Offset),
	))

	var rowsOut []model.Notification
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Notification])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	res := make([]*model.Notification, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// CountUnread returns the number of unread notifications for a user.
func (r *NotificationRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	query, args := database.BuildListQuery(database.NewListQueryOptions("notifications",
		database.WithCountOnly(),
		database.WithConditions(
			database.WhereCond("user_id", database.Equal, userID),
			database.WhereRawCond("NOT is_read"),
		),
	))

	var count int
	if err := r.DB.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkAllRead marks every unread notification for a user as read and
// returns the number of rows updated. Zero is not an error.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID string) (int, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE notifications SET is_read = TRUE, read_at = $1
		WHERE user_id = $2 AND NOT is_read`,
		r.timeProvider.Now().UTC(), userID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return int(n), nil
}

// Delete removes a notification. Returns false when nothing was deleted.
func (r *NotificationRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM notifications WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete notification: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

func (r *NotificationRepo) mapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return ErrNotificationUserMissing
	}
	return apperrors.MapDBError(err)
}
