package world

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/l1jgo/petd/internal/core/ecs"
)

// SvFlags are server-side capability bits.
type SvFlags uint8

const (
	SvMonster  SvFlags = 1 << iota // entity runs monster AI
	SvNoClient                     // not sent to clients (spectating / invisible)
)

// EntFlags are gameplay flags.
type EntFlags uint8

const (
	FlNoTarget EntFlags = 1 << iota // monsters ignore this entity
)

type Solid uint8

const (
	SolidNot Solid = iota
	SolidTrigger
	SolidBBox
)

// AIFlags mirror the generic monster AI state bits the pet code reads.
type AIFlags uint8

const (
	AISoundTarget AIFlags = 1 << iota // current enemy was heard, not seen
)

// Euler angle indices.
const (
	Pitch = 0
	Yaw   = 1
	Roll  = 2
)

// Entity is one slot of the fixed-capacity entity table. Accessed only from
// the game loop goroutine; no locks needed.
type Entity struct {
	ID        ecs.EntityID
	InUse     bool
	ClassName string

	SvFlags SvFlags
	Flags   EntFlags
	Solid   Solid
	Linked  bool

	Origin     mgl64.Vec3
	Angles     mgl64.Vec3
	Mins       mgl64.Vec3
	Maxs       mgl64.Vec3
	ViewHeight float64

	Health     int
	MaxHealth  int
	TakeDamage bool
	Team       string

	// Cosmetic
	Model       string
	SkinNum     int
	ModelIndex  int
	ModelIndex2 int

	// AI references (zero = none). Never owning.
	Enemy      ecs.EntityID
	OldEnemy   ecs.EntityID
	MoveTarget ecs.EntityID
	GoalEntity ecs.EntityID

	Monster *MonsterInfo // non-nil for the monster variant
	Client  *Client      // non-nil for the client variant
}

// MonsterInfo holds the monster AI record, including pet ownership.
type MonsterInfo struct {
	PetOwner  ecs.EntityID // weak back-reference to the owning client; zero = wild
	PetState  PetState
	Name      string
	AIFlags   AIFlags
	PauseTime float64

	Standing  bool
	SightTime float64

	Stand       func(self *Entity)
	Sight       func(self, other *Entity)
	FoundTarget func(self *Entity)
}

// Client is the per-player record.
type Client struct {
	NetName string

	PetCount int // live pets owned
	PetPower int // sum of MaxHealth of live pets

	PetCam      ecs.EntityID // pet camera attach target
	ChaseTarget ecs.EntityID // chase camera target (client slots only)

	VAngle      mgl64.Vec3 // aim direction
	CmdAngles   mgl64.Vec3 // last angles from the client's input
	DeltaAngles [3]int16
	LastCamYaw  float64
}

// PetState is the set of pet behavior-mode flags. Any combination is legal.
type PetState struct {
	Free       bool // free ranging: do not walk back to the owner
	Stay       bool // frozen in place
	FreeTarget bool // choose own target instead of assisting the owner
	Follow     bool // follow the owner instead of fighting
}

// PetPatch describes a flag update: flags in Clear are switched off first,
// then flags in Set are switched on.
type PetPatch struct {
	Clear PetState
	Set   PetState
}

// Apply returns st with the patch applied.
func (st PetState) Apply(p PetPatch) PetState {
	st.Free = (st.Free && !p.Clear.Free) || p.Set.Free
	st.Stay = (st.Stay && !p.Clear.Stay) || p.Set.Stay
	st.FreeTarget = (st.FreeTarget && !p.Clear.FreeTarget) || p.Set.FreeTarget
	st.Follow = (st.Follow && !p.Clear.Follow) || p.Set.Follow
	return st
}

func (st PetState) String() string {
	s := ""
	add := func(on bool, name string) {
		if !on {
			return
		}
		if s != "" {
			s += "|"
		}
		s += name
	}
	add(st.Free, "free")
	add(st.Stay, "stay")
	add(st.FreeTarget, "freetarget")
	add(st.Follow, "follow")
	if s == "" {
		return "default"
	}
	return s
}

// Center returns the centre of the entity's bounding box in world space.
func (e *Entity) Center() mgl64.Vec3 {
	return e.Origin.Add(e.Mins.Add(e.Maxs).Mul(0.5))
}

// EyePos returns the origin raised by the view height.
func (e *Entity) EyePos() mgl64.Vec3 {
	return e.Origin.Add(mgl64.Vec3{0, 0, e.ViewHeight})
}

// NetName returns the client's display name, or the class name for
// non-client entities.
func (e *Entity) NetName() string {
	if e.Client != nil {
		return e.Client.NetName
	}
	return e.ClassName
}
