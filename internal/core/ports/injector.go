package ports

import "go.trai.ch/weft/internal/core/domain"

// Injector is the only legal mutation point into a running schedule.
// Dependency discovery uses it to insert dynamically created tasks ahead of
// the outstanding work while bumping the scheduler's expected total.
//
// InsertFront must only be called from code executing inside a Readiness
// query, i.e. on the scheduling goroutine.
//
//go:generate go run go.uber.org/mock/mockgen -source=injector.go -destination=mocks/mock_injector.go -package=mocks
type Injector interface {
	InsertFront(t domain.Task)
}
