package pet

import "github.com/l1jgo/petd/internal/world"

// target tiers, best last; a better tier always replaces a worse one, a
// later candidate of the same tier replaces an earlier one
const (
	tierNone = iota
	tierObject
	tierClient
	tierMonster
)

// DoesMonsterMove reports whether the pet is allowed to walk.
func DoesMonsterMove(e *world.Entity) bool {
	return !world.IsMonster(e) || !e.Monster.PetState.Stay
}

// FindTarget picks self's enemy for this tick. It returns true when an enemy
// was chosen, or when FOLLOW sent the pet after its owner.
func (m *Manager) FindTarget(self *world.Entity) bool {
	if !world.IsMonster(self) {
		return false
	}
	mi := self.Monster
	owner := m.world.Get(mi.PetOwner)

	if mi.PetState.Follow {
		self.Enemy = 0
		self.GoalEntity = idOf(owner)
		return true
	}

	var enemy *world.Entity
	if !mi.PetState.FreeTarget && owner != nil {
		if oe := m.world.Get(owner.Enemy); oe != nil && oe.Health > 0 &&
			owner.Origin.Sub(self.Origin).Len() < m.cfg.AssistRange {
			enemy = oe
		}
	}
	if enemy == nil {
		enemy = m.findEnemy(self)
	}

	if enemy != nil {
		self.Enemy = enemy.ID
		if mi.FoundTarget != nil {
			mi.FoundTarget(self)
		}
		if mi.AIFlags&world.AISoundTarget == 0 && mi.Sight != nil {
			mi.Sight(self, enemy)
		}
		return true
	}

	self.Enemy = 0
	self.GoalEntity = 0
	if !mi.PetState.Free && owner != nil && m.world.Visible(self, owner) {
		if owner.Origin.Sub(self.Origin).Len() > m.cfg.FollowDistance {
			self.GoalEntity = owner.ID
			mi.PauseTime = m.world.Time()
		} else {
			if mi.Stand != nil {
				mi.Stand(self)
			}
			mi.PauseTime = m.world.Time() + m.cfg.IdlePause
		}
	}
	return false
}

// findEnemy scans around self and keeps the best visible candidate:
// monsters over clients over plain damageable objects.
func (m *Manager) findEnemy(self *world.Entity) *world.Entity {
	var enemy *world.Entity
	best := tierNone
	for ent := range m.world.InRadius(self.Origin, m.cfg.SearchRadius) {
		if ent == self {
			continue
		}
		if ent.Flags&world.FlNoTarget != 0 || ent.SvFlags&world.SvNoClient != 0 {
			continue
		}
		if !ent.TakeDamage || ent.Health <= 0 {
			continue
		}

		var t int
		switch {
		case world.IsMonster(ent):
			if m.world.OnSameTeam(self, ent) {
				continue
			}
			t = tierMonster
		case world.IsClient(ent):
			if m.world.OnSameTeam(self, ent) {
				continue
			}
			t = tierClient
		default:
			t = tierObject
		}
		if t < best {
			continue
		}
		if !m.world.Visible(self, ent) {
			continue
		}
		enemy, best = ent, t
	}
	return enemy
}
