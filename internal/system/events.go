package system

import (
	"time"

	"github.com/l1jgo/petd/internal/core/event"
	coresys "github.com/l1jgo/petd/internal/core/system"
	"github.com/l1jgo/petd/internal/pet"
	"github.com/l1jgo/petd/internal/world"
	"go.uber.org/zap"
)

// EventDispatchSystem rotates the bus and delivers everything emitted since
// the previous tick. It owns the death edge: kills reach the pet manager
// here and dead players are put back in the server. Phase 1 (Events).
type EventDispatchSystem struct {
	bus   *event.Bus
	world *world.State
	pets  *pet.Manager
	log   *zap.Logger
}

func NewEventDispatchSystem(bus *event.Bus, ws *world.State, pets *pet.Manager, log *zap.Logger) *EventDispatchSystem {
	s := &EventDispatchSystem{bus: bus, world: ws, pets: pets, log: log}
	event.Subscribe(bus, s.onKilled)
	return s
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhaseEvents }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}

func (s *EventDispatchSystem) onKilled(ev event.EntityKilled) {
	target := s.world.Get(ev.Target)
	if target == nil {
		return
	}
	inflictor := s.world.Get(ev.Inflictor)
	s.pets.Killed(target, inflictor)

	if !world.IsClient(target) {
		return
	}
	switch {
	case inflictor == nil || inflictor == target:
		s.world.Broadcast(target.NetName() + " died.")
	default:
		s.world.Broadcast(target.NetName() + " was killed by " + inflictor.NetName() + ".")
	}
	s.world.PutClientInServer(target)
	s.log.Debug("player respawned", zap.String("name", target.NetName()))
}
