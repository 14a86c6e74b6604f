package world

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrUnknownClass is returned by CallSpawn for an unregistered class name.
var ErrUnknownClass = errors.New("unknown entity class")

// ClassTemplate is what the generic construction hook knows about a class.
type ClassTemplate struct {
	Name       string
	Monster    bool
	Health     int
	Mins       mgl64.Vec3
	Maxs       mgl64.Vec3
	ViewHeight float64
	Model      string
	ModelIndex int
	Sight      bool // class has a sight behavior
	NoTarget   bool
}

// RegisterClass makes a class constructible by CallSpawn. A later
// registration with the same name replaces the earlier one.
func (s *State) RegisterClass(t ClassTemplate) {
	s.classes[t.Name] = t
}

// Class returns the registered template for name.
func (s *State) Class(name string) (ClassTemplate, bool) {
	t, ok := s.classes[name]
	return t, ok
}

// CallSpawn is the generic construction-by-classname hook: it reads
// e.ClassName, fills in the class's stats and wires its behavior callbacks,
// then links the entity. A MonsterInfo already attached to e (pet owner,
// name, state) is preserved.
func (s *State) CallSpawn(e *Entity) error {
	t, ok := s.classes[e.ClassName]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownClass, e.ClassName)
	}

	e.Health = t.Health
	e.MaxHealth = t.Health
	e.TakeDamage = true
	e.Solid = SolidBBox
	e.Mins = t.Mins
	e.Maxs = t.Maxs
	e.ViewHeight = t.ViewHeight
	e.Model = t.Model
	e.ModelIndex = t.ModelIndex
	if t.NoTarget {
		e.Flags |= FlNoTarget
	}

	if t.Monster {
		e.SvFlags |= SvMonster
		if e.Monster == nil {
			e.Monster = &MonsterInfo{}
		}
		m := e.Monster
		m.Stand = s.monsterStand
		m.FoundTarget = s.foundTarget
		if t.Sight {
			m.Sight = s.monsterSight
		}
	}

	s.Link(e)
	return nil
}

func (s *State) monsterStand(self *Entity) {
	self.Monster.Standing = true
}

func (s *State) monsterSight(self, _ *Entity) {
	self.Monster.SightTime = s.time
}

// foundTarget is the generic "enemy acquired" reaction: start running at it.
func (s *State) foundTarget(self *Entity) {
	self.GoalEntity = self.Enemy
	self.Monster.Standing = false
}
