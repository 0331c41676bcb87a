// Package mocks provides mock implementations for testing session and client behavior.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the auth
// port interfaces. The mocks are generated using go:generate directives and provide a
// fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	creds := mocks.NewMockCredentialSource(ctrl)
//	creds.EXPECT().AccessToken(gomock.Any()).Return("token", true)
package mocks

// Generate mocks for CredentialSource and SessionManager interfaces from internal/ports.
// MockCredentialSource covers AccessToken, Refresh, Login; MockSessionManager covers the
// full session lifecycle surface.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=auth_ports_mock.go github.com/pcagrade/planning-client/internal/ports CredentialSource,SessionManager
