package world

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/l1jgo/petd/internal/data"
)

// LoadClasses registers every class of the table with the construction hook.
func (s *State) LoadClasses(t *data.ClassTable) int {
	n := 0
	t.Each(func(c *data.MonsterClass) {
		s.RegisterClass(ClassTemplate{
			Name:       c.ClassName,
			Monster:    c.Monster,
			Health:     c.Health,
			Mins:       mgl64.Vec3(c.Mins),
			Maxs:       mgl64.Vec3(c.Maxs),
			ViewHeight: c.ViewHeight,
			Model:      c.Model,
			ModelIndex: c.ModelIndex,
			Sight:      c.Sight,
			NoTarget:   c.NoTarget,
		})
		n++
	})
	return n
}

// LoadArena installs the arena's geometry and player starts, then spawns
// its wild monsters. Classes must be loaded first.
func (s *State) LoadArena(a *data.Arena) (int, error) {
	for _, b := range a.Solids {
		s.AddBrush(Brush{Mins: mgl64.Vec3(b.Mins), Maxs: mgl64.Vec3(b.Maxs)})
	}
	for _, p := range a.PlayerStarts {
		s.AddSpawnPoint(mgl64.Vec3(p))
	}
	for i, m := range a.Monsters {
		e := s.Spawn()
		if e == nil {
			return i, fmt.Errorf("arena %s: entity table full at monster %d", a.Name, i)
		}
		e.ClassName = m.ClassName
		e.Origin = mgl64.Vec3(m.Origin)
		e.Angles = mgl64.Vec3{0, m.Yaw, 0}
		if err := s.CallSpawn(e); err != nil {
			s.Discard(e)
			return i, fmt.Errorf("arena %s: %w", a.Name, err)
		}
	}
	return len(a.Monsters), nil
}
