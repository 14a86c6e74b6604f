package pet

import "github.com/l1jgo/petd/internal/world"

// Think runs one tick of pet AI. Dead pets are frozen. A pet whose owner
// slot was freed without a death sweep goes wild.
func (m *Manager) Think() {
	for self := range m.world.Active(world.IsPet) {
		if self.Health <= 0 {
			continue
		}
		if m.world.Get(self.Monster.PetOwner) == nil {
			self.Monster.PetOwner = 0
			continue
		}
		m.FindTarget(self)
		// STAY wins over whatever FindTarget chose to walk to
		if !DoesMonsterMove(self) {
			self.GoalEntity = 0
		}
	}
}
