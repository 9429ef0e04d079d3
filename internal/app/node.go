package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/weft/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/weft/internal/adapters/shell"     //nolint:depguard // Wired in app layer
	"go.trai.ch/weft/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/weft/internal/adapters/toolchain" //nolint:depguard // Wired in app layer
	"go.trai.ch/weft/internal/core/ports"
)

// NodeID is the unique identifier for the main App Graft node.
const NodeID graft.ID = "app.main"

func init() {
	graft.Register(graft.Node[*App]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			shell.NodeID,
			telemetry.NodeID,
			toolchain.NodeID,
		},
		Run: func(ctx context.Context) (*App, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			loader, err := graft.Dep[ports.UnitLoader](ctx)
			if err != nil {
				return nil, err
			}

			tc, err := graft.Dep[*toolchain.Config](ctx)
			if err != nil {
				return nil, err
			}

			runner, err := graft.Dep[ports.CommandRunner](ctx)
			if err != nil {
				return nil, err
			}

			tel, err := graft.Dep[ports.Telemetry](ctx)
			if err != nil {
				return nil, err
			}

			return New(log, loader, tc, runner, tel), nil
		},
	})
}
