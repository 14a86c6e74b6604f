package world

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/l1jgo/petd/internal/core/event"
	"github.com/l1jgo/petd/internal/data"
)

func newTestState(t *testing.T) *State {
	t.Helper()
	s := NewState(Options{MaxEntities: 16, MaxClients: 4})
	s.RegisterClass(ClassTemplate{
		Name:    "monster_soldier",
		Monster: true,
		Health:  30,
		Mins:    mgl64.Vec3{-16, -16, -24},
		Maxs:    mgl64.Vec3{16, 16, 32},
		Sight:   true,
	})
	s.RegisterClass(ClassTemplate{
		Name:   "misc_barrel",
		Health: 10,
		Mins:   mgl64.Vec3{-8, -8, 0},
		Maxs:   mgl64.Vec3{8, 8, 16},
	})
	return s
}

func spawnAt(t *testing.T, s *State, class string, at mgl64.Vec3) *Entity {
	t.Helper()
	e := s.Spawn()
	if e == nil {
		t.Fatalf("pool full")
	}
	e.ClassName = class
	e.Origin = at
	if err := s.CallSpawn(e); err != nil {
		t.Fatalf("CallSpawn(%s): %v", class, err)
	}
	return e
}

func TestClassification(t *testing.T) {
	s := newTestState(t)
	owner := s.SpawnClient("alice")
	wild := spawnAt(t, s, "monster_soldier", mgl64.Vec3{100, 0, 0})
	pet := spawnAt(t, s, "monster_soldier", mgl64.Vec3{200, 0, 0})
	pet.Monster.PetOwner = owner.ID
	barrel := spawnAt(t, s, "misc_barrel", mgl64.Vec3{300, 0, 0})

	cases := []struct {
		name                   string
		e                      *Entity
		monster, isPet, client bool
		owner                  *Entity
	}{
		{"client", owner, false, false, true, owner},
		{"wild", wild, true, false, false, nil},
		{"pet", pet, true, true, false, owner},
		{"barrel", barrel, false, false, false, nil},
		{"nil", nil, false, false, false, nil},
	}
	for _, tc := range cases {
		if got := IsMonster(tc.e); got != tc.monster {
			t.Errorf("%s: IsMonster = %v", tc.name, got)
		}
		if got := IsPet(tc.e); got != tc.isPet {
			t.Errorf("%s: IsPet = %v", tc.name, got)
		}
		if got := IsClient(tc.e); got != tc.client {
			t.Errorf("%s: IsClient = %v", tc.name, got)
		}
		if got := s.OwnerOf(tc.e); got != tc.owner {
			t.Errorf("%s: OwnerOf = %v", tc.name, got)
		}
	}

	// a stale owner handle resolves to no owner
	s.Free(owner)
	if s.OwnerOf(pet) != nil {
		t.Fatalf("stale owner should resolve to nil")
	}
	if !IsPet(pet) {
		t.Fatalf("IsPet only looks at the reference, not its liveness")
	}
}

func TestActiveToleratesFreeDuringScan(t *testing.T) {
	s := newTestState(t)
	var spawned []*Entity
	for i := 0; i < 5; i++ {
		spawned = append(spawned, spawnAt(t, s, "monster_soldier", mgl64.Vec3{float64(i) * 50, 0, 0}))
	}

	seen := 0
	for e := range s.Active(IsMonster) {
		seen++
		if e == spawned[1] {
			// free the current one and a later one
			s.Free(e)
			s.Free(spawned[3])
		}
	}
	if seen != 4 {
		t.Fatalf("saw %d monsters, want 4 (one freed ahead of the scan)", seen)
	}

	// restartable: a second pass sees the survivors
	n := 0
	for range s.Active(nil) {
		n++
	}
	if n != 3 {
		t.Fatalf("second pass saw %d, want 3", n)
	}
}

func TestFindInRadius(t *testing.T) {
	s := newTestState(t)
	near := spawnAt(t, s, "monster_soldier", mgl64.Vec3{100, 0, 0})
	spawnAt(t, s, "monster_soldier", mgl64.Vec3{1000, 0, 0})
	near2 := spawnAt(t, s, "misc_barrel", mgl64.Vec3{0, 200, 0})

	var got []*Entity
	for e := range s.InRadius(mgl64.Vec3{}, 500) {
		got = append(got, e)
	}
	if len(got) != 2 || got[0] != near || got[1] != near2 {
		t.Fatalf("InRadius = %v", got)
	}

	// freeing the cursor entity does not stop the scan
	first := s.FindInRadius(mgl64.Vec3{}, 500, 0)
	cursor := first.ID
	s.Free(first)
	if next := s.FindInRadius(mgl64.Vec3{}, 500, cursor); next != near2 {
		t.Fatalf("scan after freed cursor = %v, want barrel", next)
	}
}

func TestTraceBox(t *testing.T) {
	s := newTestState(t)
	s.AddBrush(Brush{Mins: mgl64.Vec3{100, -50, -50}, Maxs: mgl64.Vec3{120, 50, 50}})
	mins, maxs := mgl64.Vec3{-16, -16, -16}, mgl64.Vec3{16, 16, 16}

	if tr := s.TraceBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 0, 0}, mins, maxs, 0, MaskPlayerSolid); tr.Fraction != 1 {
		t.Fatalf("open space: fraction %v", tr.Fraction)
	}
	if tr := s.TraceBox(mgl64.Vec3{110, 0, 0}, mgl64.Vec3{110, 0, 0}, mins, maxs, 0, MaskPlayerSolid); tr.Fraction >= 1 || !tr.StartSolid {
		t.Fatalf("inside brush: %+v", tr)
	}
	// touching is not overlapping
	if tr := s.TraceBox(mgl64.Vec3{84, 0, 0}, mgl64.Vec3{84, 0, 0}, mins, maxs, 0, MaskPlayerSolid); tr.Fraction != 1 {
		t.Fatalf("touching: fraction %v", tr.Fraction)
	}

	tr := s.TraceBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{200, 0, 0}, mgl64.Vec3{}, mgl64.Vec3{}, 0, MaskOpaque)
	if math.Abs(tr.Fraction-0.5) > 1e-9 {
		t.Fatalf("line hit fraction %v, want 0.5", tr.Fraction)
	}

	body := spawnAt(t, s, "monster_soldier", mgl64.Vec3{0, 200, 0})
	at := mgl64.Vec3{0, 210, 0}
	if tr := s.TraceBox(at, at, mins, maxs, 0, MaskPlayerSolid); tr.Ent != body.ID {
		t.Fatalf("expected body hit, got %+v", tr)
	}
	if tr := s.TraceBox(at, at, mins, maxs, 0, MaskOpaque); tr.Fraction != 1 {
		t.Fatalf("opaque mask must ignore bodies")
	}
	s.Unlink(body)
	if tr := s.TraceBox(at, at, mins, maxs, 0, MaskPlayerSolid); tr.Fraction != 1 {
		t.Fatalf("unlinked body still blocks")
	}
}

func TestVisibleAndTeams(t *testing.T) {
	s := NewState(Options{MaxEntities: 16, MaxClients: 4, Teamplay: true})
	a := s.SpawnClient("a")
	b := s.SpawnClient("b")
	a.Origin = mgl64.Vec3{0, 0, 0}
	b.Origin = mgl64.Vec3{300, 0, 0}

	if !s.Visible(a, b) {
		t.Fatalf("open line should be visible")
	}
	s.AddBrush(Brush{Mins: mgl64.Vec3{100, -10, -100}, Maxs: mgl64.Vec3{110, 10, 100}})
	if s.Visible(a, b) {
		t.Fatalf("wall should block sight")
	}

	if s.OnSameTeam(a, b) {
		t.Fatalf("no team names: not allies")
	}
	a.Team, b.Team = "red", "red"
	if !s.OnSameTeam(a, b) {
		t.Fatalf("same team name under teamplay")
	}
	if !s.OnSameTeam(a, a) {
		t.Fatalf("an owner is on its own side")
	}
}

func TestKillEmitsEvent(t *testing.T) {
	bus := event.NewBus()
	s := NewState(Options{MaxEntities: 8, MaxClients: 2, Bus: bus})
	c := s.SpawnClient("victim")

	var got []event.EntityKilled
	event.Subscribe(bus, func(ev event.EntityKilled) { got = append(got, ev) })

	s.Kill(c, c)
	s.Kill(c, c) // already dead: no second edge
	bus.SwapBuffers()
	bus.DispatchAll()

	if len(got) != 1 || got[0].Target != c.ID || got[0].Inflictor != c.ID {
		t.Fatalf("events = %+v", got)
	}
	if c.Health != 0 {
		t.Fatalf("health = %d", c.Health)
	}
}

func TestAngleVectors(t *testing.T) {
	f, r, u := AngleVectors(mgl64.Vec3{0, 90, 0})
	if !f.ApproxEqual(mgl64.Vec3{0, 1, 0}) || !r.ApproxEqual(mgl64.Vec3{1, 0, 0}) || !u.ApproxEqual(mgl64.Vec3{0, 0, 1}) {
		t.Fatalf("yaw 90: f=%v r=%v u=%v", f, r, u)
	}
	p := ProjectSource(mgl64.Vec3{10, 10, 10}, mgl64.Vec3{40, 40, 14}, f, r)
	if !p.ApproxEqual(mgl64.Vec3{50, 50, 24}) {
		t.Fatalf("ProjectSource = %v", p)
	}
	if Angle2Short(90) != 16384 {
		t.Fatalf("Angle2Short(90) = %d", Angle2Short(90))
	}
}

func TestPetStateApply(t *testing.T) {
	st := PetState{Free: true, Stay: true}
	st = st.Apply(PetPatch{Clear: PetState{Stay: true}, Set: PetState{Follow: true}})
	if st != (PetState{Free: true, Follow: true}) {
		t.Fatalf("apply = %+v", st)
	}
	if st.String() != "free|follow" {
		t.Fatalf("String = %q", st.String())
	}
	if (PetState{}).String() != "default" {
		t.Fatalf("zero state name")
	}
}

func TestLoadClassesAndArena(t *testing.T) {
	classes, err := data.ParseClassTable([]byte(`
classes:
  - classname: monster_soldier
    monster: true
    health: 30
    mins: [-16, -16, -24]
    maxs: [16, 16, 32]
    viewheight: 22
`))
	if err != nil {
		t.Fatalf("ParseClassTable: %v", err)
	}
	s := NewState(Options{MaxEntities: 8, MaxClients: 2})
	if n := s.LoadClasses(classes); n != 1 {
		t.Fatalf("LoadClasses = %d", n)
	}

	arena := &data.Arena{
		Name:         "test",
		Solids:       []data.SolidBox{{Mins: [3]float64{-100, -100, -16}, Maxs: [3]float64{100, 100, 0}}},
		PlayerStarts: [][3]float64{{0, 0, 24}},
		Monsters:     []data.ArenaSpawn{{ClassName: "monster_soldier", Origin: [3]float64{50, 0, 24}, Yaw: 90}},
	}
	n, err := s.LoadArena(arena)
	if err != nil || n != 1 {
		t.Fatalf("LoadArena = %d, %v", n, err)
	}
	c := s.SpawnClient("alice")
	if c.Origin != (mgl64.Vec3{0, 0, 24}) {
		t.Fatalf("client not placed at player start: %v", c.Origin)
	}
	m := s.Slot(2)
	if !IsMonster(m) || m.Angles[Yaw] != 90 || m.Health != 30 {
		t.Fatalf("arena monster = %+v", m)
	}

	arena.Monsters = []data.ArenaSpawn{{ClassName: "nope"}}
	live := s.Live()
	if _, err := s.LoadArena(arena); !errors.Is(err, ErrUnknownClass) {
		t.Fatalf("err = %v, want ErrUnknownClass", err)
	}
	if s.Live() != live {
		t.Fatalf("failed arena spawn leaked an entity")
	}
}

func TestSlotTracksPool(t *testing.T) {
	s := newTestState(t)
	e := spawnAt(t, s, "misc_barrel", mgl64.Vec3{})
	idx := int(e.ID.Index())
	if s.Slot(idx) != e {
		t.Fatalf("Slot(%d) does not return the spawned entity", idx)
	}
	s.Free(e)
	if s.Slot(idx) != nil {
		t.Fatalf("freed slot still resolves")
	}

	d := s.Spawn()
	didx := int(d.ID.Index())
	s.Discard(d)
	if s.Slot(didx) != nil || s.Slot(-1) != nil || s.Slot(s.Capacity()) != nil {
		t.Fatalf("empty or out-of-range slots must resolve to nil")
	}
}
