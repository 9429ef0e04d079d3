package state

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/weft/internal/core/ports"
)

const NodeID graft.ID = "adapter.signature_store"

func init() {
	graft.Register(graft.Node[ports.SignatureStore]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.SignatureStore, error) {
			return NewStore(DefaultPath)
		},
	})
}
