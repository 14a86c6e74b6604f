package world

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/l1jgo/petd/internal/core/ecs"
	"github.com/l1jgo/petd/internal/core/event"
)

// Client bounding box and eye height.
var (
	ClientMins = mgl64.Vec3{-16, -16, -24}
	ClientMaxs = mgl64.Vec3{16, 16, 32}
)

const (
	ClientViewHeight = 22
	ClientHealth     = 100
)

// Options configure a State.
type Options struct {
	MaxEntities int
	MaxClients  int
	Teamplay    bool
	Messenger   Messenger  // nil = discard
	Bus         *event.Bus // nil = events dropped
}

// State is the entity simulation the pet code runs against: a fixed table of
// entity slots, static geometry, registered classes and the level clock.
// Accessed only from the game loop goroutine; no locks needed.
type State struct {
	pool *ecs.EntityPool
	ents []Entity

	brushes     []Brush
	spawnPoints []mgl64.Vec3
	nextSpawn   int

	classes map[string]ClassTemplate

	teamplay bool
	time     float64

	msg Messenger
	bus *event.Bus
}

func NewState(opts Options) *State {
	if opts.MaxEntities <= 0 {
		opts.MaxEntities = 1024
	}
	if opts.MaxClients < 0 || opts.MaxClients > opts.MaxEntities {
		opts.MaxClients = 0
	}
	msg := opts.Messenger
	if msg == nil {
		msg = discard{}
	}
	return &State{
		pool:     ecs.NewEntityPool(opts.MaxEntities, opts.MaxClients),
		ents:     make([]Entity, opts.MaxEntities),
		classes:  make(map[string]ClassTemplate),
		teamplay: opts.Teamplay,
		msg:      msg,
		bus:      opts.Bus,
	}
}

// Get resolves a handle. Stale or zero handles resolve to nil.
func (s *State) Get(id ecs.EntityID) *Entity {
	if !s.pool.Alive(id) {
		return nil
	}
	return &s.ents[id.Index()]
}

// Slot returns the entity stored at table index i, or nil if the slot is free.
func (s *State) Slot(i int) *Entity {
	if s.pool.At(i).IsZero() {
		return nil
	}
	return &s.ents[i]
}

func (s *State) Capacity() int   { return len(s.ents) }
func (s *State) MaxClients() int { return s.pool.Reserved() }
func (s *State) Live() int       { return s.pool.Live() }
func (s *State) Teamplay() bool  { return s.teamplay }
func (s *State) Bus() *event.Bus { return s.bus }

// SetMessenger replaces the text sink (used once sessions are wired).
func (s *State) SetMessenger(m Messenger) {
	if m == nil {
		m = discard{}
	}
	s.msg = m
}

// Time returns the level clock in seconds.
func (s *State) Time() float64 { return s.time }

// Advance moves the level clock forward.
func (s *State) Advance(dt float64) { s.time += dt }

// Spawn allocates a blank, unlinked entity from the non-client range.
// Returns nil when the table is full.
func (s *State) Spawn() *Entity {
	id, ok := s.pool.Create()
	if !ok {
		return nil
	}
	e := &s.ents[id.Index()]
	*e = Entity{ID: id, InUse: true}
	return e
}

// Free unlinks the entity and returns its slot to the pool. Handles to it
// become stale.
func (s *State) Free(e *Entity) {
	if e == nil || !e.InUse {
		return
	}
	id := e.ID
	s.Unlink(e)
	*e = Entity{}
	s.pool.Destroy(id)
}

// Discard undoes a Spawn whose handle never escaped the caller. Unlike Free
// it keeps the slot generation, leaving the table exactly as it was before
// the Spawn.
func (s *State) Discard(e *Entity) {
	if e == nil || !e.InUse {
		return
	}
	id := e.ID
	*e = Entity{}
	s.pool.Unwind(id)
}

// SpawnClient allocates a client slot and places the player at the next
// arena spawn point. Returns nil when all client slots are taken.
func (s *State) SpawnClient(name string) *Entity {
	id, ok := s.pool.CreateReserved()
	if !ok {
		return nil
	}
	e := &s.ents[id.Index()]
	*e = Entity{
		ID:        id,
		InUse:     true,
		ClassName: "player",
		Client:    &Client{NetName: name},
	}
	s.PutClientInServer(e)
	return e
}

// PutClientInServer resets a client's body and moves it to a spawn point.
// Camera attachments and pet accounting are left alone.
func (s *State) PutClientInServer(e *Entity) {
	s.Unlink(e)
	e.Health = ClientHealth
	e.MaxHealth = ClientHealth
	e.TakeDamage = true
	e.Solid = SolidBBox
	e.SvFlags &^= SvNoClient
	e.Mins = ClientMins
	e.Maxs = ClientMaxs
	e.ViewHeight = ClientViewHeight
	e.Enemy = 0
	e.Origin = s.nextSpawnPoint()
	e.Angles = mgl64.Vec3{}
	e.Client.VAngle = mgl64.Vec3{}
	s.Link(e)
}

// AddSpawnPoint registers a client spawn location.
func (s *State) AddSpawnPoint(p mgl64.Vec3) {
	s.spawnPoints = append(s.spawnPoints, p)
}

func (s *State) nextSpawnPoint() mgl64.Vec3 {
	if len(s.spawnPoints) == 0 {
		return mgl64.Vec3{}
	}
	p := s.spawnPoints[s.nextSpawn%len(s.spawnPoints)]
	s.nextSpawn++
	return p
}

// Kill drops the entity's health to zero and queues an EntityKilled event.
// Damage resolution is the caller's business; this is only the death edge.
func (s *State) Kill(target, inflictor *Entity) {
	if target == nil || !target.InUse || target.Health <= 0 {
		return
	}
	target.Health = 0
	var by ecs.EntityID
	if inflictor != nil {
		by = inflictor.ID
	}
	event.Emit(s.bus, event.EntityKilled{Target: target.ID, Inflictor: by})
}
