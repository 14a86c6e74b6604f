package system

import (
	"time"

	coresys "github.com/l1jgo/petd/internal/core/system"
	"github.com/l1jgo/petd/internal/pet"
	"github.com/l1jgo/petd/internal/world"
)

// PetThinkSystem advances the level clock and lets every pet pick its
// target. Phase 2 (Think).
type PetThinkSystem struct {
	world *world.State
	pets  *pet.Manager
}

func NewPetThinkSystem(ws *world.State, pets *pet.Manager) *PetThinkSystem {
	return &PetThinkSystem{world: ws, pets: pets}
}

func (s *PetThinkSystem) Phase() coresys.Phase { return coresys.PhaseThink }

func (s *PetThinkSystem) Update(dt time.Duration) {
	s.world.Advance(dt.Seconds())
	s.pets.Think()
}
