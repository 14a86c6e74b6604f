package pet

import (
	"fmt"

	"github.com/l1jgo/petd/internal/core/event"
	"github.com/l1jgo/petd/internal/world"
	"go.uber.org/zap"
)

// Riot sets loose every pet the owner has and, with RiotReleaseChance each,
// every other owner's pet on the level. Needs at least two live pets in
// the table; PetCount alone over-counts once pets have been set loose.
func (m *Manager) Riot(owner *world.Entity) bool {
	if !world.IsClient(owner) {
		return false
	}
	name := owner.Client.NetName
	if m.livePets(owner) < 2 {
		m.world.Broadcast(fmt.Sprintf("%s has insufficient monsters to start a riot.", name))
		return false
	}
	m.world.Broadcast(fmt.Sprintf("%s starts a riot.", name))

	released := 0
	for pet := range m.world.Active(world.IsPet) {
		// short-circuit: no roll for the rioter's own pets
		if pet.Monster.PetOwner != owner.ID && m.rng.Float64() >= m.cfg.RiotReleaseChance {
			continue
		}
		info := m.petInfo(pet, m.world.Get(pet.Monster.PetOwner))
		m.OnPetKilledOrReleased(pet, nil)
		pet.Monster.PetOwner = 0
		released++
		event.Emit(m.world.Bus(), event.PetReleased{PetInfo: info, Reason: ReasonRiot})
	}

	event.Emit(m.world.Bus(), event.RiotStarted{Owner: owner.ID, OwnerName: name, Released: released})
	m.log.Info("riot", zap.String("owner", name), zap.Int("released", released))
	return true
}

func (m *Manager) livePets(owner *world.Entity) int {
	n := 0
	for pet := range m.ownedBy(owner, "") {
		if pet.Health > 0 {
			n++
		}
	}
	return n
}
