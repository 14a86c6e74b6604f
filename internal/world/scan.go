package world

import (
	"iter"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/l1jgo/petd/internal/core/ecs"
)

// Active yields every in-use entity accepted by pred (nil = all) in slot
// order. Each call is a fresh pass. A slot is checked when it is reached, so
// entities freed by the consumer mid-scan are simply skipped.
func (s *State) Active(pred func(*Entity) bool) iter.Seq[*Entity] {
	return func(yield func(*Entity) bool) {
		for i := range s.ents {
			e := &s.ents[i]
			if !e.InUse {
				continue
			}
			if pred != nil && !pred(e) {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

// FindInRadius returns the next in-use entity after cursor whose box centre
// lies within radius of center, or nil when the table is exhausted. A zero
// cursor starts from the first slot. The cursor only contributes its slot
// index, so it may have been freed since it was returned.
func (s *State) FindInRadius(center mgl64.Vec3, radius float64, cursor ecs.EntityID) *Entity {
	start := 0
	if !cursor.IsZero() {
		start = int(cursor.Index()) + 1
	}
	for i := start; i < len(s.ents); i++ {
		e := &s.ents[i]
		if !e.InUse {
			continue
		}
		if e.Center().Sub(center).Len() > radius {
			continue
		}
		return e
	}
	return nil
}

// InRadius drives FindInRadius to completion.
func (s *State) InRadius(center mgl64.Vec3, radius float64) iter.Seq[*Entity] {
	return func(yield func(*Entity) bool) {
		var cursor ecs.EntityID
		for {
			e := s.FindInRadius(center, radius, cursor)
			if e == nil {
				return
			}
			cursor = e.ID
			if !yield(e) {
				return
			}
		}
	}
}

// Clients yields in-use client entities.
func (s *State) Clients() iter.Seq[*Entity] {
	return func(yield func(*Entity) bool) {
		for i := 0; i < s.pool.Reserved(); i++ {
			e := &s.ents[i]
			if !e.InUse || e.Client == nil {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}
