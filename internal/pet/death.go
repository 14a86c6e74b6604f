package pet

import (
	"github.com/l1jgo/petd/internal/config"
	"github.com/l1jgo/petd/internal/core/event"
	"github.com/l1jgo/petd/internal/world"
	"go.uber.org/zap"
)

// Release reasons carried on PetReleased.
const (
	ReasonOwnerKilled = "owner_killed"
	ReasonKilled      = "killed"
	ReasonRiot        = "riot"
)

// ReleasePolicy decides what happens to ownership and accounting when a
// monster dies or is set loose. Release reports whether it severed the
// ownership link.
type ReleasePolicy interface {
	Release(m *Manager, pet, inflictor *world.Entity) bool
}

// PolicyFor maps the release_accounting config value to a policy. Unknown
// values fall back to "off".
func PolicyFor(name string) ReleasePolicy {
	if name == config.ReleaseAccountingFull {
		return fullRelease{}
	}
	return noRelease{}
}

// noRelease leaves ownership and accounting untouched. Quota held by dead or
// rioting pets is returned when the owner's own death sweep resets it.
type noRelease struct{}

func (noRelease) Release(*Manager, *world.Entity, *world.Entity) bool { return false }

// fullRelease returns the pet's power to its owner's quota, rewards a
// killing player, takes one point of health from the owner and severs the
// ownership link.
type fullRelease struct{}

func (fullRelease) Release(m *Manager, pet, inflictor *world.Entity) bool {
	if !world.IsPet(pet) {
		return false
	}
	owner := m.world.Get(pet.Monster.PetOwner)
	pet.Monster.PetOwner = 0
	if owner == nil || owner.Client == nil {
		return true
	}
	m.debit(owner, pet)
	if world.IsClient(inflictor) {
		inflictor.MaxHealth++
	}
	if owner.Health > 1 {
		owner.Health--
	}
	return true
}

// Killed routes a death notification to the pet or owner hook.
func (m *Manager) Killed(target, inflictor *world.Entity) {
	switch {
	case world.IsMonster(target):
		info := m.petInfo(target, m.world.Get(target.Monster.PetOwner))
		if m.OnPetKilledOrReleased(target, inflictor) {
			event.Emit(m.world.Bus(), event.PetReleased{PetInfo: info, Reason: ReasonKilled})
		}
	case world.IsClient(target):
		m.OnOwnerKilled(target, inflictor)
	}
}

// OnPetKilledOrReleased applies the configured release policy.
func (m *Manager) OnPetKilledOrReleased(pet, inflictor *world.Entity) bool {
	return m.release.Release(m, pet, inflictor)
}

// OnOwnerKilled sweeps the owner's pets: each one either vanishes or goes
// wild at half health. The owner ends with no pets and no power in use.
func (m *Manager) OnOwnerKilled(owner, inflictor *world.Entity) {
	if !world.IsClient(owner) || owner.Client.PetCount == 0 {
		return
	}

	vanished, released := 0, 0
	for pet := range m.ownedBy(owner, "") {
		info := m.petInfo(pet, owner)
		m.debit(owner, pet)
		if m.rng.Float64() < m.cfg.VanishProbability {
			m.world.Free(pet)
			vanished++
			event.Emit(m.world.Bus(), event.PetVanished{PetInfo: info})
			continue
		}
		pet.Monster.PetOwner = 0
		pet.Health /= 2
		if pet.Health < 1 {
			pet.Health = 1
		}
		released++
		event.Emit(m.world.Bus(), event.PetReleased{PetInfo: info, Reason: ReasonOwnerKilled})
	}

	// Pets that died earlier without a release still count against the
	// owner; nothing references the owner any more, so zero is exact.
	owner.Client.PetCount = 0
	owner.Client.PetPower = 0

	var by string
	if inflictor != nil {
		by = inflictor.NetName()
	}
	m.log.Info("owner died, pets dispersed",
		zap.String("owner", owner.Client.NetName),
		zap.String("killer", by),
		zap.Int("vanished", vanished),
		zap.Int("released", released),
	)
}
