// Package mocks provides mock implementations for testing the fleeks services.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our repository interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockRepo := mocks.NewMockProfileRepository(ctrl)
//	mockRepo.EXPECT().GetByUserID(gomock.Any(), gomock.Any()).Return(profile, nil)
package mocks

// Generate mock for ProfileRepository interface from internal/core package.
// This creates MockProfileRepository with methods for all ProfileRepository interface methods:
// GetByUserID, GetByEmail, Upsert, UpdateRole, List
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=profile_repository_mock.go github.com/Shiki0138/fleeksonline/internal/core ProfileRepository

// Generate mock for NotificationRepository interface from internal/core package.
// This creates MockNotificationRepository with methods for all NotificationRepository interface methods:
// Create, GetByID, ListByUser, CountUnread, MarkAllRead, Delete
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=notification_repository_mock.go github.com/Shiki0138/fleeksonline/internal/core NotificationRepository
