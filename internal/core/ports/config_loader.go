package ports

import "go.trai.ch/weft/internal/core/domain"

// UnitLoader defines the interface for loading the declared build units.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type UnitLoader interface {
	// Load reads the configuration file and returns the declared units,
	// with directory and include nodes resolved against the tree.
	Load(path string, tree *domain.Tree) ([]*domain.Unit, error)
}
