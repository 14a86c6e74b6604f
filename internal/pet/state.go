package pet

import "github.com/l1jgo/petd/internal/world"

// Single behavior flags, for SetFlag and ClearFlag.
var (
	FlagFree       = world.PetState{Free: true}
	FlagStay       = world.PetState{Stay: true}
	FlagFreeTarget = world.PetState{FreeTarget: true}
	FlagFollow     = world.PetState{Follow: true}
)

// ApplyMask applies patch to every pet of owner whose name matches filter
// (empty matches all) and returns how many pets it touched.
func (m *Manager) ApplyMask(owner *world.Entity, patch world.PetPatch, filter string) int {
	if !world.IsClient(owner) || owner.Client.PetCount == 0 {
		return 0
	}
	n := 0
	for pet := range m.ownedBy(owner, filter) {
		pet.Monster.PetState = pet.Monster.PetState.Apply(patch)
		n++
	}
	return n
}

// SetFlag turns flag on, leaving the other flags alone.
func (m *Manager) SetFlag(owner *world.Entity, flag world.PetState, filter string) int {
	return m.ApplyMask(owner, world.PetPatch{Set: flag}, filter)
}

// ClearFlag turns flag off, leaving the other flags alone.
func (m *Manager) ClearFlag(owner *world.Entity, flag world.PetState, filter string) int {
	return m.ApplyMask(owner, world.PetPatch{Clear: flag}, filter)
}

// ClearPetEnemies makes matching pets forget what they were fighting or
// walking to.
func (m *Manager) ClearPetEnemies(owner *world.Entity, filter string) int {
	if !world.IsClient(owner) || owner.Client.PetCount == 0 {
		return 0
	}
	n := 0
	for pet := range m.ownedBy(owner, filter) {
		pet.Enemy = 0
		pet.OldEnemy = 0
		pet.MoveTarget = 0
		pet.GoalEntity = 0
		n++
	}
	return n
}
