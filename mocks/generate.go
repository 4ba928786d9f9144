// Package mocks holds gomock doubles for the repository, mail, event and
// spreadsheet ports.
//
// Regenerate after interface changes with:
//
//	go generate ./mocks
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=mailer_mock.go publishing-ops-api/config Mailer
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=run_log_store_mock.go publishing-ops-api/repository RunLogStore
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=sheet_source_mock.go publishing-ops-api/services SheetSource
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=publisher_mock.go publishing-ops-api/events Publisher
