package system

import (
	"time"

	coresys "github.com/l1jgo/petd/internal/core/system"
	"github.com/l1jgo/petd/internal/net"
)

// OutputSystem hands every line buffered this tick to the session writers.
// Phase 4 (Output).
type OutputSystem struct {
	store *net.SessionStore
}

func NewOutputSystem(store *net.SessionStore) *OutputSystem {
	return &OutputSystem{store: store}
}

func (s *OutputSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *OutputSystem) Update(_ time.Duration) {
	for _, sess := range s.store.Sorted() {
		sess.FlushOutput()
	}
}
