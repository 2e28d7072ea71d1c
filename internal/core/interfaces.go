package core

import (
	"context"

	"github.com/Shiki0138/fleeksonline/internal/domain/auth"
	"github.com/Shiki0138/fleeksonline/internal/domain/model"
)

// This file contains repository interface definitions (ports in hexagonal architecture).
// These interfaces define the contracts between the service layer and data layer.
// Service implementations should depend on these interfaces, not concrete implementations.

// ProfileRepository defines the interface for member profile data operations.
type ProfileRepository interface {
	// GetByUserID returns the profile for the given user ID.
	GetByUserID(ctx context.Context, userID string) (*model.Profile, error)
	// GetByEmail returns the profile with the given (normalized) email.
	GetByEmail(ctx context.Context, email string) (*model.Profile, error)
	// Upsert creates the profile if missing and refreshes email/full_name
	// if present. The stored role of an existing row is never changed.
	Upsert(ctx context.Context, req *model.UpsertProfileRequest) (*model.Profile, error)
	// UpdateRole sets the stored role and returns the updated profile.
	UpdateRole(ctx context.Context, userID string, role auth.Role) (*model.Profile, error)
	List(ctx context.Context, limit, offset int) ([]*model.Profile, error)
}

// NotificationRepository defines the interface for notification data operations.
type NotificationRepository interface {
	Create(ctx context.Context, req *model.CreateNotificationRequest) (*model.Notification, error)
	GetByID(ctx context.Context, id string) (*model.Notification, error)
	// ListByUser returns notifications for a user, newest first.
	ListByUser(ctx context.Context, userID string, opts *model.NotificationsListOptions) ([]*model.Notification, error)
	// CountUnread returns the number of unread notifications for a user.
	CountUnread(ctx context.Context, userID string) (int, error)
	// MarkAllRead marks every unread notification for a user as read and
	// returns the number of rows updated.
	MarkAllRead(ctx context.Context, userID string) (int, error)
	Delete(ctx context.Context, id string) (bool, error)
}
