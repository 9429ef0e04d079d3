package ports

import "go.trai.ch/weft/internal/core/domain"

// SignatureStore defines the interface for persisting task signatures
// across builds.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type SignatureStore interface {
	// Get retrieves the record for a task identity.
	// Returns nil, nil if not found.
	Get(taskID string) (*domain.TaskRecord, error)

	// Put stores the record.
	Put(rec domain.TaskRecord) error
}
