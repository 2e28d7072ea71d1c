package devseed

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Shiki0138/fleeksonline/internal/core"
	"github.com/Shiki0138/fleeksonline/internal/data"
	"github.com/Shiki0138/fleeksonline/internal/domain/auth"
	"github.com/Shiki0138/fleeksonline/internal/domain/model"
)

// Services bundles the dependencies needed for development seeding.
type Services struct {
	DB            *sql.DB
	profiles      core.ProfileRepository
	notifications core.NotificationRepository
}

// NewServices constructs all required repositories for seeding using the provided DB.
func NewServices(db *sql.DB) Services {
	return Services{
		DB:            db,
		profiles:      data.NewProfileRepo(db),
		notifications: data.NewNotificationRepo(db),
	}
}

// Run executes the full development seeding workflow against the provided DB.
func Run(ctx context.Context, svcs Services, logger *slog.Logger) error {
	failures := 0
	failures += seedProfiles(ctx, svcs.profiles, logger)
	failures += seedNotifications(ctx, svcs.notifications, logger)
	if failures > 0 {
		return fmt.Errorf("%d seed errors; check logs", failures)
	}
	return nil
}

type profileSeed struct {
	request model.UpsertProfileRequest
	role    auth.Role
}

func defaultProfileSeeds() []profileSeed {
	return []profileSeed{
		{
			request: model.UpsertProfileRequest{
				UserID:   "dev-admin",
				Email:    "admin@fleeks.dev",
				FullName: "Dev Admin",
				Role:     auth.RoleAdmin,
			},
			role: auth.RoleAdmin,
		},
		{
			request: model.UpsertProfileRequest{
				UserID:   "dev-moderator",
				Email:    "moderator@fleeks.dev",
				FullName: "Dev Moderator",
				Role:     auth.RoleModerator,
			},
			role: auth.RoleModerator,
		},
		{
			request: model.UpsertProfileRequest{
				UserID:   "dev-member",
				Email:    "member@fleeks.dev",
				FullName: "Dev Member",
				Role:     auth.RoleUser,
			},
			role: auth.RoleUser,
		},
	}
}

func seedProfiles(ctx context.Context, repo core.ProfileRepository, logger *slog.Logger) int {
	failures := 0
	for _, seed := range defaultProfileSeeds() {
		profile, err := repo.Upsert(ctx, &seed.request)
		if err != nil {
			if logger != nil {
				logger.ErrorContext(ctx, "failed to seed profile", "user_id", seed.request.UserID, "error", err)
			}
			failures++
			continue
		}

		// Upsert never changes the stored role of an existing row; seeding
		// must still converge on the role the fixture declares.
		if profile.Role != seed.role {
			if _, err := repo.UpdateRole(ctx, profile.UserID, seed.role); err != nil {
				if logger != nil {
					logger.ErrorContext(ctx, "failed to set seeded role", "user_id", profile.UserID, "error", err)
				}
				failures++
				continue
			}
		}
		if logger != nil {
			logger.InfoContext(ctx, "seeded profile", "user_id", profile.UserID, "role", seed.role)
		}
	}
	return failures
}

type notificationSeed struct {
	userID  string
	title   string
	payload string
}

func defaultNotificationSeeds() []notificationSeed {
	return []notificationSeed{
		{
			userID:  "dev-admin",
			title:   "Welcome to the admin console",
			payload: `{"kind": "system", "action": "welcome"}`,
		},
		{
			userID:  "dev-admin",
			title:   "3 members joined this week",
			payload: `{"kind": "digest", "new_members": 3}`,
		},
		{
			userID:  "dev-member",
			title:   "Your membership is active",
			payload: `{"kind": "billing", "tier": "free"}`,
		},
	}
}

func seedNotifications(ctx context.Context, repo core.NotificationRepository, logger *slog.Logger) int {
	failures := 0
	seeded := map[string]bool{}
	for _, seed := range defaultNotificationSeeds() {
		skip, err := hasNotifications(ctx, repo, seed.userID, seeded)
		if err != nil {
			if logger != nil {
				logger.ErrorContext(ctx, "failed to check existing notifications", "user_id", seed.userID, "error", err)
			}
			failures++
			continue
		}
		if skip {
			if logger != nil {
				logger.InfoContext(ctx, "notifications already seeded", "user_id", seed.userID)
			}
			continue
		}

		_, err = repo.Create(ctx, &model.CreateNotificationRequest{
			UserID:  seed.userID,
			Title:   seed.title,
			Payload: json.RawMessage(seed.payload),
		})
		if err != nil {
			if logger != nil {
				logger.ErrorContext(ctx, "failed to seed notification", "user_id", seed.userID, "title", seed.title, "error", err)
			}
			failures++
			continue
		}
		if logger != nil {
			logger.InfoContext(ctx, "seeded notification", "user_id", seed.userID, "title", seed.title)
		}
	}
	return failures
}

// hasNotifications reports whether userID already had notifications before
// this run. Users touched earlier in the same run stay eligible so multi-row
// fixtures land completely.
func hasNotifications(ctx context.Context, repo core.NotificationRepository, userID string, seeded map[string]bool) (bool, error) {
	if seeded[userID] {
		return false, nil
	}
	existing, err := repo.ListByUser(ctx, userID, &model.NotificationsListOptions{Limit: 1})
	if err != nil {
		return false, err
	}
	seeded[userID] = true
	return len(existing) > 0, nil
}
