// Package mocks provides mock implementations for testing rolegate ports.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks
// for the profile/role store interfaces. The mocks are generated using
// go:generate directives and provide a fluent API for setting up test
// expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	profiles := mocks.NewMockProfileStore(ctrl)
//	profiles.EXPECT().ProfileByID(gomock.Any(), "user-1").Return(profile, nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen -destination=stores.go -package=mocks github.com/meridian/rolegate/internal/ports ProfileStore,RoleStore
