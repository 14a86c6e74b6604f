package world

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/l1jgo/petd/internal/core/ecs"
)

// Brush is an axis-aligned block of static world geometry.
type Brush struct {
	Mins mgl64.Vec3
	Maxs mgl64.Vec3
}

// ContentMask selects what a trace collides with.
type ContentMask uint8

const (
	ContentsSolid   ContentMask = 1 << iota // static brushes
	ContentsBodies                          // linked SolidBBox entities
	MaskOpaque      = ContentsSolid
	MaskPlayerSolid = ContentsSolid | ContentsBodies
)

// Trace is the result of a box sweep.
type Trace struct {
	Fraction   float64 // 1 = nothing hit
	StartSolid bool
	EndPos     mgl64.Vec3
	Ent        ecs.EntityID // zero when the world (or nothing) was hit
}

// AddBrush adds static geometry.
func (s *State) AddBrush(b Brush) {
	s.brushes = append(s.brushes, b)
}

// Link makes the entity take part in collision.
func (s *State) Link(e *Entity) { e.Linked = true }

// Unlink removes the entity from collision.
func (s *State) Unlink(e *Entity) { e.Linked = false }

// TraceBox sweeps a box from start to end and reports the first obstruction.
// A zero-length sweep reports Fraction 0 and StartSolid when the box overlaps
// anything selected by mask. Boxes that only touch do not obstruct.
func (s *State) TraceBox(start, end, mins, maxs mgl64.Vec3, ignore ecs.EntityID, mask ContentMask) Trace {
	tr := Trace{Fraction: 1}

	hit := func(bmin, bmax mgl64.Vec3, id ecs.EntityID) {
		frac, startSolid, ok := sweep(start, end, mins, maxs, bmin, bmax)
		if !ok {
			return
		}
		if startSolid {
			tr.StartSolid = true
		}
		if frac < tr.Fraction {
			tr.Fraction = frac
			tr.Ent = id
		}
	}

	if mask&ContentsSolid != 0 {
		for _, b := range s.brushes {
			hit(b.Mins, b.Maxs, 0)
		}
	}
	if mask&ContentsBodies != 0 {
		for i := range s.ents {
			e := &s.ents[i]
			if !e.InUse || !e.Linked || e.Solid != SolidBBox || e.ID == ignore {
				continue
			}
			hit(e.Origin.Add(e.Mins), e.Origin.Add(e.Maxs), e.ID)
		}
	}

	tr.EndPos = start.Add(end.Sub(start).Mul(tr.Fraction))
	return tr
}

// sweep intersects a moving box with a static one using the slab method on
// the Minkowski-expanded target.
func sweep(start, end, mins, maxs, bmin, bmax mgl64.Vec3) (frac float64, startSolid, ok bool) {
	emin := bmin.Sub(maxs)
	emax := bmax.Sub(mins)

	inside := true
	for i := 0; i < 3; i++ {
		if start[i] <= emin[i] || start[i] >= emax[i] {
			inside = false
			break
		}
	}
	if inside {
		return 0, true, true
	}

	d := end.Sub(start)
	tEnter, tExit := 0.0, 1.0
	for i := 0; i < 3; i++ {
		if d[i] == 0 {
			if start[i] <= emin[i] || start[i] >= emax[i] {
				return 0, false, false
			}
			continue
		}
		t1 := (emin[i] - start[i]) / d[i]
		t2 := (emax[i] - start[i]) / d[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tEnter = math.Max(tEnter, t1)
		tExit = math.Min(tExit, t2)
		if tEnter >= tExit {
			return 0, false, false
		}
	}
	if tEnter >= 1 {
		return 0, false, false
	}
	return tEnter, false, true
}

// Visible reports whether b can be seen from a's eyes through static geometry.
func (s *State) Visible(a, b *Entity) bool {
	tr := s.TraceBox(a.EyePos(), b.EyePos(), mgl64.Vec3{}, mgl64.Vec3{}, a.ID, MaskOpaque)
	return tr.Fraction == 1
}

// OnSameTeam reports whether a and b fight on the same side. Each side is
// keyed by its owning client (pets side with their owner); with teamplay on,
// owners sharing a team name are allies too. Entities without an owner have
// no side.
func (s *State) OnSameTeam(a, b *Entity) bool {
	oa, ob := s.OwnerOf(a), s.OwnerOf(b)
	if oa == nil || ob == nil {
		return false
	}
	if oa == ob {
		return true
	}
	return s.teamplay && oa.Team != "" && oa.Team == ob.Team
}
